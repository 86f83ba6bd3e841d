// Package mcp serves export scans, asset resolution, and imported entities over MCP.
package mcp

import (
	"context"
	"log/slog"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"encounterport/internal/datafs"
	"encounterport/internal/importer"
	"encounterport/internal/store"
)

type Server struct {
	opts   importer.Options
	fs     datafs.Browser
	db     store.Store
	logger *slog.Logger
	mcp    *sdk.Server
}

func NewServer(opts importer.Options, fs datafs.Browser, db store.Store, logger *slog.Logger, version string) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Server{
		opts:   opts,
		fs:     fs,
		db:     db,
		logger: logger,
		mcp: sdk.NewServer(&sdk.Implementation{
			Name:    "encounterport",
			Version: version,
		}, nil),
	}
	s.registerTools()
	return s
}

func (s *Server) Run(ctx context.Context, transport sdk.Transport) error {
	return s.mcp.Run(ctx, transport)
}
