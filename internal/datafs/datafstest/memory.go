// Package datafstest provides an in-memory datafs.FS for tests.
package datafstest

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"

	"encounterport/internal/datafs"
)

var _ datafs.FS = (*Memory)(nil)

type Memory struct {
	mu         sync.Mutex
	files      map[string][]byte
	BrowseErr  map[string]error
	UploadErr  error
	FetchErr   map[string]error
	Browsed    []string
	Uploads    []string
	FetchCalls []string
}

// New builds a tree from data path → contents.
func New(files map[string]string) *Memory {
	m := &Memory{files: make(map[string][]byte)}
	for p, contents := range files {
		m.files[strings.Trim(p, "/")] = []byte(contents)
	}
	return m
}

func (m *Memory) Put(p string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[strings.Trim(p, "/")] = data
}

func (m *Memory) Browse(ctx context.Context, dir string) (datafs.Listing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	dir = strings.Trim(dir, "/")
	m.Browsed = append(m.Browsed, dir)
	if err, ok := m.BrowseErr[dir]; ok {
		return datafs.Listing{}, err
	}

	prefix := ""
	if dir != "" {
		prefix = dir + "/"
	}

	found := dir == ""
	files := map[string]struct{}{}
	dirs := map[string]struct{}{}
	for p := range m.files {
		if !strings.HasPrefix(p, prefix) {
			continue
		}
		found = true
		rest := strings.TrimPrefix(p, prefix)
		if idx := strings.Index(rest, "/"); idx >= 0 {
			dirs[prefix+rest[:idx]] = struct{}{}
			continue
		}
		files[p] = struct{}{}
	}
	if !found {
		return datafs.Listing{}, fmt.Errorf("browsing %s: %w", dir, fs.ErrNotExist)
	}

	return datafs.Listing{Files: sortedKeys(files), Dirs: sortedKeys(dirs)}, nil
}

func (m *Memory) Upload(ctx context.Context, dir, name string, data []byte, overwrite bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	target := strings.Trim(path.Join(dir, name), "/")
	m.Uploads = append(m.Uploads, target)
	if m.UploadErr != nil {
		return m.UploadErr
	}
	if _, exists := m.files[target]; exists && !overwrite {
		return fmt.Errorf("uploading %s: %w", name, fs.ErrExist)
	}
	m.files[target] = append([]byte(nil), data...)
	return nil
}

func (m *Memory) Fetch(ctx context.Context, ref string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p := datafs.NormalizeDataPath(ref)
	m.FetchCalls = append(m.FetchCalls, p)
	if err, ok := m.FetchErr[p]; ok {
		return nil, err
	}
	data, ok := m.files[p]
	if !ok {
		return nil, fmt.Errorf("fetching %s: %w", ref, fs.ErrNotExist)
	}
	return data, nil
}

func (m *Memory) Exists(ctx context.Context, p string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.files[datafs.NormalizeDataPath(p)]
	return ok, nil
}

func sortedKeys(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
