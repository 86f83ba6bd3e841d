package store

import (
	"encoding/json"

	"encounterport/internal/target"
)

type Folder struct {
	ID   string
	Kind target.Kind
	Name string
}

// Filter narrows entity listings. Empty fields match everything.
type Filter struct {
	Kind   target.Kind
	Folder string
}

type EntitySummary struct {
	ID         string
	Kind       target.Kind
	Name       string
	Folder     string
	SourceKind string
	SourceID   string
}

type Entity struct {
	EntitySummary
	Data json.RawMessage
}

// Decode rebuilds the typed entity from its stored document.
func (e *Entity) Decode() (target.Entity, error) {
	return target.Decode(e.Kind, e.Data)
}
