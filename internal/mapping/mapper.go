// Package mapping transforms source records into target entities.
package mapping

import (
	"context"
	"fmt"
	"log/slog"

	"encounterport/internal/assets"
	"encounterport/internal/config"
	"encounterport/internal/richtext"
	"encounterport/internal/source"
	"encounterport/internal/target"
)

// Mapper holds the run-scoped asset state every transform reads from.
type Mapper struct {
	resolver *assets.Resolver
	urls     assets.URLBuilder
	media    *assets.Materializer
	icons    *config.IconRules
	rich     *richtext.Rewriter
	logger   *slog.Logger
}

type Options struct {
	Resolver *assets.Resolver
	URLs     assets.URLBuilder
	Media    *assets.Materializer
	Icons    *config.IconRules
	Logger   *slog.Logger
}

func New(opts Options) *Mapper {
	icons := opts.Icons
	if icons == nil {
		icons = config.DefaultIconRules()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Mapper{
		resolver: opts.Resolver,
		urls:     opts.URLs,
		media:    opts.Media,
		icons:    icons,
		rich:     richtext.New(opts.Resolver, opts.URLs),
		logger:   logger,
	}
}

// Map dispatches a record to the transform for its kind.
func (m *Mapper) Map(ctx context.Context, rec source.Record) (target.Entity, error) {
	switch r := rec.(type) {
	case source.Page:
		return m.Journal(r), nil
	case source.Map:
		return m.Scene(ctx, r), nil
	case source.Monster:
		return m.Actor(r), nil
	case source.Item:
		return m.Item(r), nil
	case source.Table:
		return RollTable(r), nil
	default:
		return nil, fmt.Errorf("unsupported record type %T", rec)
	}
}

// Rewriter exposes the rich-text rewriter bound to this run's assets.
func (m *Mapper) Rewriter() *richtext.Rewriter {
	return m.rich
}

// url converts a data path to the relative route stored on entities.
func (m *Mapper) url(p string) string {
	if u := m.urls.FilesURL(p, false); u != "" {
		return u
	}
	return p
}

func sourceRef(ref source.Ref) *target.SourceRef {
	return &target.SourceRef{Kind: string(ref.Kind), ID: ref.ID, Slug: ref.Slug}
}
