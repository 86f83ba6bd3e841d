// Package storetest provides an in-memory store.Store for tests.
package storetest

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"encounterport/internal/store"
	"encounterport/internal/target"
)

var _ store.Store = (*Memory)(nil)

type Memory struct {
	mu       sync.Mutex
	next     int
	folders  []store.Folder
	entities map[string]store.Entity

	// CreateErr, when set, is returned for entities whose name it maps.
	CreateErr map[string]error
	Creates   []string
	Updates   []string
}

func New() *Memory {
	return &Memory{entities: make(map[string]store.Entity)}
}

func (m *Memory) Close(ctx context.Context) error        { return nil }
func (m *Memory) EnsureSchema(ctx context.Context) error { return nil }

func (m *Memory) EnsureFolder(ctx context.Context, kind target.Kind, name string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, f := range m.folders {
		if f.Kind == kind && f.Name == name {
			return f.ID, nil
		}
	}
	m.next++
	f := store.Folder{ID: fmt.Sprintf("folder-%d", m.next), Kind: kind, Name: name}
	m.folders = append(m.folders, f)
	return f.ID, nil
}

func (m *Memory) FindFolder(ctx context.Context, kind target.Kind, name string) (*store.Folder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, f := range m.folders {
		if f.Kind == kind && f.Name == name {
			return &f, nil
		}
	}
	return nil, fmt.Errorf("folder %q: %w", name, store.ErrNotFound)
}

// Folders returns the folders created so far in creation order.
func (m *Memory) Folders() []store.Folder {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]store.Folder(nil), m.folders...)
}

func (m *Memory) Create(ctx context.Context, e target.Entity) (string, error) {
	cols, data, err := store.Columns(e)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.CreateErr[cols.Name]; ok {
		return "", err
	}
	m.next++
	cols.ID = fmt.Sprintf("entity-%d", m.next)
	m.entities[cols.ID] = store.Entity{EntitySummary: cols, Data: data}
	m.Creates = append(m.Creates, cols.ID)
	return cols.ID, nil
}

func (m *Memory) Update(ctx context.Context, id string, e target.Entity) error {
	cols, data, err := store.Columns(e)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.entities[id]
	if !ok || existing.Kind != cols.Kind {
		return fmt.Errorf("entity %s: %w", id, store.ErrNotFound)
	}
	cols.ID = id
	m.entities[id] = store.Entity{EntitySummary: cols, Data: data}
	m.Updates = append(m.Updates, id)
	return nil
}

func (m *Memory) GetEntity(ctx context.Context, id string) (*store.Entity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entities[id]
	if !ok {
		return nil, fmt.Errorf("entity %s: %w", id, store.ErrNotFound)
	}
	return &e, nil
}

func (m *Memory) ListEntities(ctx context.Context, f store.Filter) ([]store.EntitySummary, error) {
	full, err := m.ListEntitiesWithData(ctx, f)
	if err != nil {
		return nil, err
	}
	out := make([]store.EntitySummary, 0, len(full))
	for _, e := range full {
		out = append(out, e.EntitySummary)
	}
	return out, nil
}

func (m *Memory) ListEntitiesWithData(ctx context.Context, f store.Filter) ([]store.Entity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []store.Entity{}
	for _, e := range m.entities {
		if f.Kind != "" && e.Kind != f.Kind {
			continue
		}
		if f.Folder != "" && e.Folder != f.Folder {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.ID < b.ID
	})
	return out, nil
}

// Put stores a pre-built entity under id, for seeding fixtures.
func (m *Memory) Put(id string, e target.Entity) error {
	cols, data, err := store.Columns(e)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cols.ID = id
	m.entities[id] = store.Entity{EntitySummary: cols, Data: data}
	return nil
}
