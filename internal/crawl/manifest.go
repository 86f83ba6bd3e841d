package crawl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"path"
	"sort"

	"encounterport/internal/datafs"
)

var ErrNoManifest = errors.New("no manifest files found")

const (
	ManifestModuleXML     = "module.xml"
	ManifestCompendiumXML = "compendium.xml"
	ManifestPages         = "pages.json"
	ManifestMaps          = "maps.json"
	ManifestMonsters      = "monsters.json"
	ManifestItems         = "items.json"
	ManifestTables        = "tables.json"
	ManifestGroups        = "groups.json"
	ManifestModuleJSON    = "module.json"
)

var manifestNames = map[string]struct{}{
	ManifestModuleXML:     {},
	ManifestCompendiumXML: {},
	ManifestPages:         {},
	ManifestMaps:          {},
	ManifestMonsters:      {},
	ManifestItems:         {},
	ManifestTables:        {},
	ManifestGroups:        {},
	ManifestModuleJSON:    {},
}

// Base directory precedence, highest first. The requested root is the final fallback.
var basePrecedence = []string{ManifestModuleXML, ManifestPages, ManifestCompendiumXML}

type Marker struct {
	Path string
	Dir  string
}

type ExportTree struct {
	Root     string
	BasePath string
	Found    map[string]Marker
}

func (t *ExportTree) Has(name string) bool {
	if t == nil {
		return false
	}
	_, ok := t.Found[name]
	return ok
}

func (t *ExportTree) Marker(name string) (Marker, bool) {
	if t == nil {
		return Marker{}, false
	}
	m, ok := t.Found[name]
	return m, ok
}

// Names returns the discovered manifest names in lexical order.
func (t *ExportTree) Names() []string {
	if t == nil {
		return nil
	}
	names := make([]string, 0, len(t.Found))
	for name := range t.Found {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Discover scans root up to depth for manifest files and chooses the export base
// directory. The first occurrence of each manifest in crawl order wins.
func Discover(ctx context.Context, browser datafs.Browser, root string, depth int, logger *slog.Logger) (*ExportTree, error) {
	tree := &ExportTree{Root: root, Found: make(map[string]Marker)}

	err := Walk(ctx, browser, root, depth, logger, func(e Entry) error {
		if e.IsDir {
			return nil
		}
		name := basename(e.Path)
		if _, wanted := manifestNames[name]; !wanted {
			return nil
		}
		if _, seen := tree.Found[name]; !seen {
			tree.Found[name] = Marker{Path: e.Path, Dir: e.Dir}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("discovering export: %w", err)
	}

	tree.BasePath = root
	for _, name := range basePrecedence {
		if m, ok := tree.Found[name]; ok {
			tree.BasePath = m.Dir
			break
		}
	}

	return tree, nil
}

func basename(p string) string {
	leaf := path.Base(p)
	if decoded, err := url.PathUnescape(leaf); err == nil {
		return decoded
	}
	return leaf
}
