// Package importer runs an export through discovery, indexing, mapping, and creation.
package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"encounterport/internal/assets"
	"encounterport/internal/config"
	"encounterport/internal/crawl"
	"encounterport/internal/datafs"
	"encounterport/internal/mapping"
	"encounterport/internal/source"
	"encounterport/internal/store"
)

var (
	ErrSourcePathRequired = errors.New("source path is required")
	ErrNoRecordFiles      = errors.New("no record files found")
)

// Options configure a run. A nil depth takes its default; 0 scans the root only.
type Options struct {
	SourcePath    string
	Prefix        string
	Destination   string
	UserDataRoots []string
	ManifestDepth *int
	IndexDepth    *int
	RepairDepth   *int
	MaxFiles      int
	URLs          assets.URLBuilder
	Icons         *config.IconRules
}

// OptionsFromConfig copies the run settings out of a project config.
func OptionsFromConfig(cfg *config.ProjectConfig) Options {
	return Options{
		SourcePath:    cfg.SourcePath,
		Prefix:        cfg.Prefix,
		Destination:   cfg.Destination,
		UserDataRoots: cfg.UserDataRoots,
		ManifestDepth: cfg.Scan.ManifestDepth,
		IndexDepth:    cfg.Scan.IndexDepth,
		RepairDepth:   cfg.Scan.RepairDepth,
		MaxFiles:      cfg.Scan.MaxFiles,
		URLs:          assets.URLBuilder{Origin: cfg.PublicURL, RoutePrefix: cfg.RoutePrefix},
	}
}

type Deps struct {
	FS     datafs.FS
	Store  store.Store
	Logger *slog.Logger
}

type records struct {
	pages    []source.Page
	maps     []source.Map
	monsters []source.Monster
	items    []source.Item
	tables   []source.Table
}

// Run imports the export at opts.SourcePath. Preconditions (source path, manifests,
// record files, folders) fail the run before any entity is created; after that, each
// record that fails is counted and the run continues.
func Run(ctx context.Context, opts Options, deps Deps) (*Summary, error) {
	opts = withDefaults(opts)
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if err := checkOptions(opts); err != nil {
		return nil, err
	}

	tree, err := discover(ctx, opts, deps.FS, logger)
	if err != nil {
		return nil, err
	}
	summary := newSummary()
	summary.BasePath = tree.BasePath
	summary.Manifests = tree.Names()

	recs, err := loadRecords(ctx, deps.FS, tree, summary, logger)
	if err != nil {
		return nil, err
	}

	idx, err := assets.Build(ctx, deps.FS, tree.BasePath, *opts.IndexDepth, opts.MaxFiles, logger)
	if err != nil {
		return nil, err
	}
	summary.IndexedFiles = idx.Files()

	folders := make(map[Category]string, len(Categories))
	for _, cat := range Categories {
		id, err := deps.Store.EnsureFolder(ctx, cat.Kind(), cat.FolderName(opts.Prefix))
		if err != nil {
			return nil, fmt.Errorf("preparing %s folder: %w", cat, err)
		}
		folders[cat] = id
	}

	m := mapping.New(mapping.Options{
		Resolver: assets.NewResolver(tree.BasePath, idx, opts.UserDataRoots),
		URLs:     opts.URLs,
		Media:    assets.NewMaterializer(deps.FS, logger),
		Icons:    opts.Icons,
		Logger:   logger,
	})
	r := &run{mapper: m, store: deps.Store, folders: folders, summary: summary, logger: logger}

	process(ctx, r, CategoryJournals, recs.pages)
	process(ctx, r, CategoryScenes, recs.maps)
	process(ctx, r, CategoryMonsters, recs.monsters)
	process(ctx, r, CategoryItems, recs.items)
	process(ctx, r, CategoryTables, recs.tables)

	total := summary.Total()
	logger.Info("import finished",
		"base", summary.BasePath,
		"attempted", total.Attempted,
		"succeeded", total.Succeeded,
		"failed", total.Failed,
	)
	return summary, nil
}

type run struct {
	mapper  *mapping.Mapper
	store   store.Store
	folders map[Category]string
	summary *Summary
	logger  *slog.Logger
}

func process[T source.Record](ctx context.Context, r *run, cat Category, recs []T) {
	for _, rec := range recs {
		if err := ctx.Err(); err != nil {
			r.summary.fail(cat, rec.DisplayName(), err)
			continue
		}
		ent, err := r.mapper.Map(ctx, rec)
		if err != nil {
			r.summary.fail(cat, rec.DisplayName(), fmt.Errorf("mapping: %w", err))
			continue
		}
		ent.SetFolder(r.folders[cat])
		id, err := r.store.Create(ctx, ent)
		if err != nil {
			r.logger.Warn("create failed", "category", string(cat), "name", rec.DisplayName(), "error", err)
			r.summary.fail(cat, rec.DisplayName(), err)
			continue
		}
		r.logger.Debug("created", "kind", string(ent.Kind()), "name", ent.DisplayName(), "id", id)
		r.summary.succeed(cat)
	}
}

func withDefaults(opts Options) Options {
	opts.SourcePath = strings.TrimSpace(opts.SourcePath)
	if strings.TrimSpace(opts.Prefix) == "" {
		opts.Prefix = config.DefaultPrefix
	}
	if opts.Destination == "" {
		opts.Destination = config.DefaultDestination
	}
	if opts.ManifestDepth == nil || *opts.ManifestDepth < 0 {
		opts.ManifestDepth = config.Depth(config.DefaultManifestDepth)
	}
	if opts.IndexDepth == nil || *opts.IndexDepth < 0 {
		opts.IndexDepth = config.Depth(config.DefaultIndexDepth)
	}
	if opts.RepairDepth == nil || *opts.RepairDepth < 0 {
		opts.RepairDepth = config.Depth(config.DefaultRepairDepth)
	}
	return opts
}

func checkOptions(opts Options) error {
	if opts.SourcePath == "" {
		return ErrSourcePathRequired
	}
	if !strings.EqualFold(opts.Destination, config.DefaultDestination) {
		return fmt.Errorf("unsupported destination %q", opts.Destination)
	}
	return nil
}

func discover(ctx context.Context, opts Options, fs datafs.Browser, logger *slog.Logger) (*crawl.ExportTree, error) {
	tree, err := crawl.Discover(ctx, fs, opts.SourcePath, *opts.ManifestDepth, logger)
	if err != nil {
		return nil, err
	}
	if len(tree.Found) == 0 {
		return nil, fmt.Errorf("%s: %w", opts.SourcePath, crawl.ErrNoManifest)
	}
	logger.Info("export discovered", "root", tree.Root, "base", tree.BasePath, "manifests", strings.Join(tree.Names(), ","))
	return tree, nil
}

func loadRecords(ctx context.Context, fs datafs.Fetcher, tree *crawl.ExportTree, summary *Summary, logger *slog.Logger) (*records, error) {
	present := 0
	for _, name := range []string{crawl.ManifestPages, crawl.ManifestMaps, crawl.ManifestMonsters, crawl.ManifestItems, crawl.ManifestTables} {
		if tree.Has(name) {
			present++
		}
	}
	if present == 0 {
		return nil, fmt.Errorf("%s: %w", tree.BasePath, ErrNoRecordFiles)
	}

	recs := &records{}
	recs.pages = loadFile[source.Page](ctx, fs, tree, crawl.ManifestPages, CategoryJournals, summary, logger)
	recs.maps = loadFile[source.Map](ctx, fs, tree, crawl.ManifestMaps, CategoryScenes, summary, logger)
	recs.monsters = loadFile[source.Monster](ctx, fs, tree, crawl.ManifestMonsters, CategoryMonsters, summary, logger)
	recs.items = loadFile[source.Item](ctx, fs, tree, crawl.ManifestItems, CategoryItems, summary, logger)
	recs.tables = loadFile[source.Table](ctx, fs, tree, crawl.ManifestTables, CategoryTables, summary, logger)
	return recs, nil
}

// loadFile returns the records of one file. A missing, unreadable, or malformed file
// yields no records; the latter two are noted in the summary. Records that fail to
// decode are counted as failed for cat and their siblings are kept.
func loadFile[T any](ctx context.Context, fs datafs.Fetcher, tree *crawl.ExportTree, name string, cat Category, summary *Summary, logger *slog.Logger) []T {
	marker, ok := tree.Marker(name)
	if !ok {
		return nil
	}
	data, err := fs.Fetch(ctx, marker.Path)
	if err != nil {
		logger.Warn("record file unreadable", "path", marker.Path, "error", err)
		summary.note(fmt.Sprintf("%s: %v", name, err))
		return nil
	}
	recs, err := source.Decode[T](data)
	var partial *source.DecodeError
	switch {
	case err == nil:
	case errors.As(err, &partial):
		for _, bad := range partial.Records {
			logger.Warn("record malformed", "path", marker.Path, "index", bad.Index, "name", bad.Name, "error", bad.Err)
			summary.fail(cat, bad.Name, fmt.Errorf("decoding %s record %d: %w", name, bad.Index, bad.Err))
		}
	case errors.Is(err, source.ErrEmpty):
		return nil
	default:
		logger.Warn("record file malformed", "path", marker.Path, "error", err)
		summary.note(fmt.Sprintf("%s: %v", name, err))
		return nil
	}
	logger.Debug("record file loaded", "path", marker.Path, "records", len(recs))
	return recs
}
