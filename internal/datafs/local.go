package datafs

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

var _ FS = (*Local)(nil)

// Local serves a data tree rooted at a directory on disk.
type Local struct {
	root string
}

func NewLocal(root string) (*Local, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving data root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("opening data root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("data root %s is not a directory", abs)
	}
	return &Local{root: abs}, nil
}

func (l *Local) Root() string {
	return l.root
}

func (l *Local) Browse(ctx context.Context, dir string) (Listing, error) {
	if err := ctx.Err(); err != nil {
		return Listing{}, err
	}
	rel, err := Clean(dir)
	if err != nil {
		return Listing{}, fmt.Errorf("browsing %s: %w", dir, err)
	}

	entries, err := os.ReadDir(l.abs(rel))
	if err != nil {
		return Listing{}, fmt.Errorf("browsing %s: %w", dir, err)
	}

	var listing Listing
	for _, entry := range entries {
		child := entry.Name()
		if rel != "" {
			child = path.Join(rel, entry.Name())
		}
		if entry.IsDir() {
			listing.Dirs = append(listing.Dirs, child)
			continue
		}
		listing.Files = append(listing.Files, child)
	}
	sort.Strings(listing.Files)
	sort.Strings(listing.Dirs)
	return listing, nil
}

func (l *Local) Upload(ctx context.Context, dir, name string, data []byte, overwrite bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if name == "" || strings.ContainsAny(name, "/\\") {
		return fmt.Errorf("uploading %q: invalid file name", name)
	}
	rel, err := Clean(dir)
	if err != nil {
		return fmt.Errorf("uploading %s: %w", name, err)
	}

	target := l.abs(path.Join(rel, name))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("uploading %s: %w", name, err)
	}

	flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if !overwrite {
		flags = os.O_CREATE | os.O_WRONLY | os.O_EXCL
	}
	file, err := os.OpenFile(target, flags, 0o644)
	if err != nil {
		return fmt.Errorf("uploading %s: %w", name, err)
	}
	if _, err := file.Write(data); err != nil {
		file.Close()
		return fmt.Errorf("uploading %s: %w", name, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("uploading %s: %w", name, err)
	}
	return nil
}

func (l *Local) Fetch(ctx context.Context, ref string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rel, err := Clean(NormalizeDataPath(ref))
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", ref, err)
	}
	data, err := os.ReadFile(l.abs(rel))
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", ref, err)
	}
	return data, nil
}

func (l *Local) Exists(ctx context.Context, p string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	rel, err := Clean(NormalizeDataPath(p))
	if err != nil {
		return false, err
	}
	_, err = os.Stat(l.abs(rel))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

func (l *Local) abs(rel string) string {
	return filepath.Join(l.root, filepath.FromSlash(rel))
}
