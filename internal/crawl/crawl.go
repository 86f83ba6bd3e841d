// Package crawl walks a data tree breadth-first through a datafs.Browser.
package crawl

import (
	"context"
	"errors"
	"log/slog"

	"encounterport/internal/datafs"
)

// ErrStop may be returned by a visit function to end the walk early without error.
var ErrStop = errors.New("stop crawl")

type Entry struct {
	Path  string
	Dir   string // directory whose listing produced this entry
	IsDir bool
	Depth int // depth of Dir; root is 0
}

type queued struct {
	path  string
	depth int
}

// Walk visits every file and directory reachable from root, directory by directory in
// breadth-first order, without descending below maxDepth. Within a directory, files are
// visited before subdirectories. Directories that fail to browse are logged and skipped.
func Walk(ctx context.Context, browser datafs.Browser, root string, maxDepth int, logger *slog.Logger, visit func(Entry) error) error {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	queue := []queued{{path: root, depth: 0}}
	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		cur := queue[0]
		queue = queue[1:]

		listing, err := browser.Browse(ctx, cur.path)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			logger.Warn("browse failed", "path", cur.path, "error", err)
			continue
		}

		for _, f := range listing.Files {
			entry := Entry{Path: datafs.NormalizeDataPath(f), Dir: cur.path, Depth: cur.depth}
			if entry.Path == "" {
				continue
			}
			if err := visit(entry); err != nil {
				if errors.Is(err, ErrStop) {
					return nil
				}
				return err
			}
		}

		for _, d := range listing.Dirs {
			dir := datafs.NormalizeDataPath(d)
			if dir == "" {
				dir = d
			}
			if err := visit(Entry{Path: dir, Dir: cur.path, IsDir: true, Depth: cur.depth}); err != nil {
				if errors.Is(err, ErrStop) {
					return nil
				}
				return err
			}
			if cur.depth < maxDepth {
				queue = append(queue, queued{path: dir, depth: cur.depth + 1})
			}
		}
	}
	return nil
}

// Crawl collects every entry Walk would visit.
func Crawl(ctx context.Context, browser datafs.Browser, root string, maxDepth int, logger *slog.Logger) ([]Entry, error) {
	var entries []Entry
	err := Walk(ctx, browser, root, maxDepth, logger, func(e Entry) error {
		entries = append(entries, e)
		return nil
	})
	return entries, err
}
