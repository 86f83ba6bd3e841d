package importer

import (
	"context"
	"log/slog"

	"encounterport/internal/assets"
	"encounterport/internal/crawl"
	"encounterport/internal/datafs"
)

// Scan runs discovery alone and returns the chosen export tree.
func Scan(ctx context.Context, opts Options, fs datafs.Browser, logger *slog.Logger) (*crawl.ExportTree, error) {
	opts = withDefaults(opts)
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if opts.SourcePath == "" {
		return nil, ErrSourcePathRequired
	}
	return discover(ctx, opts, fs, logger)
}

// NewResolver discovers the export, indexes it at the import depth, and returns a
// resolver over the result.
func NewResolver(ctx context.Context, opts Options, fs datafs.Browser, logger *slog.Logger) (*crawl.ExportTree, *assets.Resolver, error) {
	opts = withDefaults(opts)
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	tree, err := Scan(ctx, opts, fs, logger)
	if err != nil {
		return nil, nil, err
	}
	idx, err := assets.Build(ctx, fs, tree.BasePath, *opts.IndexDepth, opts.MaxFiles, logger)
	if err != nil {
		return nil, nil, err
	}
	return tree, assets.NewResolver(tree.BasePath, idx, opts.UserDataRoots), nil
}
