package assets

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"regexp"

	"encounterport/internal/crawl"
	"encounterport/internal/datafs"
)

var extPattern = regexp.MustCompile(`(?i)\.[a-z0-9]{2,5}$`)

// Entry is one indexed file.
type Entry struct {
	Path string
}

// Index maps lookup keys to candidate data paths. It is owned by a single import run.
type Index struct {
	entries map[string][]Entry
	files   int
}

// NewIndex returns an empty index.
func NewIndex() *Index {
	return &Index{entries: make(map[string][]Entry)}
}

// Add inserts entry under every variant of key.
func (ix *Index) Add(key string, entry Entry) {
	for _, k := range KeyVariants(key) {
		ix.entries[k] = append(ix.entries[k], entry)
	}
}

// Get returns the first non-empty candidate list, scanning variants of key in order.
func (ix *Index) Get(key string) []Entry {
	if ix == nil || key == "" {
		return nil
	}
	for _, k := range KeyVariants(key) {
		if v := ix.entries[k]; len(v) > 0 {
			return v
		}
	}
	return nil
}

// AddFile indexes a data path under its basename and its extension-stripped stem.
func (ix *Index) AddFile(dataPath string) {
	base := path.Base(dataPath)
	ix.Add(base, Entry{Path: dataPath})
	if stem := stripExt(base); stem != "" && stem != base {
		ix.Add(stem, Entry{Path: dataPath})
	}
	ix.files++
}

// Keys is the number of distinct lookup keys.
func (ix *Index) Keys() int {
	return len(ix.entries)
}

// Files is the number of files indexed through AddFile.
func (ix *Index) Files() int {
	return ix.files
}

// Build crawls base up to depth and indexes every file. Indexing stops once maxFiles
// files have been added; a non-positive maxFiles means no cap.
func Build(ctx context.Context, browser datafs.Browser, base string, depth, maxFiles int, logger *slog.Logger) (*Index, error) {
	ix := NewIndex()
	err := crawl.Walk(ctx, browser, base, depth, logger, func(e crawl.Entry) error {
		if e.IsDir {
			return nil
		}
		ix.AddFile(e.Path)
		if maxFiles > 0 && ix.files >= maxFiles {
			return crawl.ErrStop
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("building asset index: %w", err)
	}
	if logger != nil {
		logger.Debug("asset index built", "base", base, "files", ix.files, "keys", len(ix.entries))
	}
	return ix, nil
}

func hasExt(leaf string) bool {
	return extPattern.MatchString(leaf)
}

func stripExt(leaf string) string {
	return extPattern.ReplaceAllString(leaf, "")
}
