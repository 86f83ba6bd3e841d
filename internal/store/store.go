package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"encounterport/internal/target"
)

var ErrNotFound = errors.New("not found")

// Store persists folders and created entities. Create is called once per produced
// entity; a failed Create affects only that entity.
type Store interface {
	Close(ctx context.Context) error
	EnsureSchema(ctx context.Context) error

	EnsureFolder(ctx context.Context, kind target.Kind, name string) (string, error)
	FindFolder(ctx context.Context, kind target.Kind, name string) (*Folder, error)

	Create(ctx context.Context, e target.Entity) (string, error)
	Update(ctx context.Context, id string, e target.Entity) error

	GetEntity(ctx context.Context, id string) (*Entity, error)
	ListEntities(ctx context.Context, f Filter) ([]EntitySummary, error)
	ListEntitiesWithData(ctx context.Context, f Filter) ([]Entity, error)
}

// Columns extracts the indexed columns of e and its JSON document.
func Columns(e target.Entity) (EntitySummary, []byte, error) {
	if e == nil {
		return EntitySummary{}, nil, fmt.Errorf("nil entity")
	}
	data, err := json.Marshal(e)
	if err != nil {
		return EntitySummary{}, nil, fmt.Errorf("marshaling %s: %w", e.Kind(), err)
	}
	s := EntitySummary{
		Kind:   e.Kind(),
		Name:   e.DisplayName(),
		Folder: e.FolderID(),
	}
	if ref := e.Source(); ref != nil {
		s.SourceKind = ref.Kind
		s.SourceID = ref.ID
	}
	return s, data, nil
}
