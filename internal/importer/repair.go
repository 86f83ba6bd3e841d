package importer

import (
	"context"
	"fmt"
	"log/slog"

	"encounterport/internal/assets"
	"encounterport/internal/richtext"
	"encounterport/internal/store"
	"encounterport/internal/target"
)

// RepairJournals re-runs image rewriting over journals already imported under
// opts.Prefix, using an index built at the repair depth. Only text pages are rewritten,
// and only entries with at least one changed page are written back.
func RepairJournals(ctx context.Context, opts Options, deps Deps) (*RepairSummary, error) {
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
	idx, err := assets.Build(ctx, deps.FS, tree.BasePath, *opts.RepairDepth, opts.MaxFiles, logger)
	if err != nil {
		return nil, err
	}

	folderName := CategoryJournals.FolderName(opts.Prefix)
	folder, err := deps.Store.FindFolder(ctx, target.KindJournalEntry, folderName)
	if err != nil {
		return nil, fmt.Errorf("finding journal folder: %w", err)
	}
	entries, err := deps.Store.ListEntitiesWithData(ctx, store.Filter{Kind: target.KindJournalEntry, Folder: folder.ID})
	if err != nil {
		return nil, fmt.Errorf("listing journals: %w", err)
	}

	resolver := assets.NewResolver(tree.BasePath, idx, opts.UserDataRoots)
	rw := richtext.New(resolver, opts.URLs)
	summary := &RepairSummary{BasePath: tree.BasePath, Entries: len(entries)}

	for _, e := range entries {
		decoded, err := e.Decode()
		if err != nil {
			summary.fail(e.Name, fmt.Errorf("decoding: %w", err))
			continue
		}
		journal, ok := decoded.(*target.JournalEntry)
		if !ok {
			summary.fail(e.Name, fmt.Errorf("unexpected %T", decoded))
			continue
		}

		changed := 0
		for i, page := range journal.Pages {
			if page.Type != "text" {
				continue
			}
			content := rw.Rewrite(page.Text.Content)
			if content == page.Text.Content {
				summary.PagesUnchanged++
				continue
			}
			journal.Pages[i].Text.Content = content
			changed++
		}
		if changed == 0 {
			continue
		}
		if err := deps.Store.Update(ctx, e.ID, journal); err != nil {
			summary.fail(e.Name, err)
			continue
		}
		summary.EntriesTouched++
		summary.PagesTouched += changed
	}

	logger.Info("journal repair finished",
		"entries", summary.Entries,
		"entries_touched", summary.EntriesTouched,
		"pages_touched", summary.PagesTouched,
		"pages_unchanged", summary.PagesUnchanged,
	)
	return summary, nil
}
