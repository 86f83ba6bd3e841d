package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"encounterport/internal/assets"
	"encounterport/internal/importer"
	"encounterport/internal/store"
	"encounterport/internal/target"
)

type ScanExportInput struct {
	Path string `json:"path,omitempty" jsonschema:"export directory under the data root; defaults to the configured source path"`
}

type ResolveAssetInput struct {
	Path             string `json:"path,omitempty" jsonschema:"export directory under the data root; defaults to the configured source path"`
	Ref              string `json:"ref" jsonschema:"file reference as written in the export"`
	Kind             string `json:"kind,omitempty" jsonschema:"monster-image, monster-token, item-image, map-image, map-floor, map-tile, page-image, or generic"`
	AllowNoExtension bool   `json:"allow_no_extension,omitempty" jsonschema:"let extensionless references fall through to folder guesses"`
}

type ListImportedInput struct {
	Kind   string `json:"kind,omitempty" jsonschema:"JournalEntry, Scene, Actor, Item, or RollTable"`
	Folder string `json:"folder,omitempty" jsonschema:"folder id filter"`
}

type GetImportedInput struct {
	ID string `json:"id" jsonschema:"entity id"`
}

type ScanExportOutput struct {
	Root      string   `json:"root"`
	BasePath  string   `json:"base_path"`
	Manifests []string `json:"manifests"`
}

type ResolveAssetOutput struct {
	Found    bool   `json:"found"`
	DataPath string `json:"data_path,omitempty"`
	URL      string `json:"url,omitempty"`
	BasePath string `json:"base_path"`
}

type EntitySummaryOutput struct {
	ID         string `json:"id"`
	Kind       string `json:"kind"`
	Name       string `json:"name"`
	Folder     string `json:"folder,omitempty"`
	SourceKind string `json:"source_kind,omitempty"`
	SourceID   string `json:"source_id,omitempty"`
}

type ListImportedOutput struct {
	Entities []EntitySummaryOutput `json:"entities"`
}

type EntityOutput struct {
	Entity EntitySummaryOutput `json:"entity"`
	Data   map[string]any      `json:"data"`
}

func (s *Server) registerTools() {
	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "scan_export",
		Description: "Find the export base directory and the manifest files it holds",
	}, s.handleScanExport)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "resolve_asset",
		Description: "Resolve one export file reference to a data path and browser URL",
	}, s.handleResolveAsset)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "list_imported",
		Description: "List imported entities with optional filters",
	}, s.handleListImported)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "get_imported",
		Description: "Retrieve one imported entity and its stored document",
	}, s.handleGetImported)
}

func (s *Server) handleScanExport(ctx context.Context, req *sdk.CallToolRequest, input ScanExportInput) (*sdk.CallToolResult, ScanExportOutput, error) {
	tree, err := importer.Scan(ctx, s.optionsFor(input.Path), s.fs, s.logger)
	if err != nil {
		return nil, ScanExportOutput{}, err
	}
	return nil, ScanExportOutput{Root: tree.Root, BasePath: tree.BasePath, Manifests: tree.Names()}, nil
}

func (s *Server) handleResolveAsset(ctx context.Context, req *sdk.CallToolRequest, input ResolveAssetInput) (*sdk.CallToolResult, ResolveAssetOutput, error) {
	if strings.TrimSpace(input.Ref) == "" {
		return nil, ResolveAssetOutput{}, fmt.Errorf("ref is required")
	}
	opts := s.optionsFor(input.Path)
	tree, resolver, err := importer.NewResolver(ctx, opts, s.fs, s.logger)
	if err != nil {
		return nil, ResolveAssetOutput{}, err
	}

	out := ResolveAssetOutput{BasePath: tree.BasePath}
	p, ok := resolver.Resolve(input.Ref, assets.ParseKind(input.Kind), input.AllowNoExtension)
	if !ok {
		return nil, out, nil
	}
	out.Found = true
	out.DataPath = p
	out.URL = opts.URLs.FilesURL(p, true)
	return nil, out, nil
}

func (s *Server) handleListImported(ctx context.Context, req *sdk.CallToolRequest, input ListImportedInput) (*sdk.CallToolResult, ListImportedOutput, error) {
	filter := store.Filter{Folder: input.Folder}
	if input.Kind != "" {
		kind, ok := target.ParseKind(input.Kind)
		if !ok {
			return nil, ListImportedOutput{}, fmt.Errorf("unknown kind %q", input.Kind)
		}
		filter.Kind = kind
	}
	items, err := s.db.ListEntities(ctx, filter)
	if err != nil {
		return nil, ListImportedOutput{}, err
	}

	output := make([]EntitySummaryOutput, 0, len(items))
	for _, item := range items {
		output = append(output, summaryOutput(item))
	}
	return nil, ListImportedOutput{Entities: output}, nil
}

func (s *Server) handleGetImported(ctx context.Context, req *sdk.CallToolRequest, input GetImportedInput) (*sdk.CallToolResult, EntityOutput, error) {
	if input.ID == "" {
		return nil, EntityOutput{}, fmt.Errorf("id is required")
	}
	entity, err := s.db.GetEntity(ctx, input.ID)
	if err != nil {
		return nil, EntityOutput{}, err
	}
	data := map[string]any{}
	if len(entity.Data) > 0 {
		if err := json.Unmarshal(entity.Data, &data); err != nil {
			return nil, EntityOutput{}, fmt.Errorf("decoding %s: %w", input.ID, err)
		}
	}
	return nil, EntityOutput{Entity: summaryOutput(entity.EntitySummary), Data: data}, nil
}

func (s *Server) optionsFor(path string) importer.Options {
	opts := s.opts
	if strings.TrimSpace(path) != "" {
		opts.SourcePath = path
	}
	return opts
}

func summaryOutput(e store.EntitySummary) EntitySummaryOutput {
	return EntitySummaryOutput{
		ID:         e.ID,
		Kind:       string(e.Kind),
		Name:       e.Name,
		Folder:     e.Folder,
		SourceKind: e.SourceKind,
		SourceID:   e.SourceID,
	}
}
