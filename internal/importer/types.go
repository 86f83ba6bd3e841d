package importer

import (
	"fmt"

	"encounterport/internal/target"
)

const maxFirstErrors = 5

// Category groups the records of one source kind and the folder their entities land in.
type Category string

const (
	CategoryJournals Category = "Journals"
	CategoryScenes   Category = "Scenes"
	CategoryMonsters Category = "Monsters"
	CategoryItems    Category = "Items"
	CategoryTables   Category = "Tables"
)

// Categories in processing order.
var Categories = []Category{CategoryJournals, CategoryScenes, CategoryMonsters, CategoryItems, CategoryTables}

func (c Category) Kind() target.Kind {
	switch c {
	case CategoryJournals:
		return target.KindJournalEntry
	case CategoryScenes:
		return target.KindScene
	case CategoryMonsters:
		return target.KindActor
	case CategoryItems:
		return target.KindItem
	default:
		return target.KindRollTable
	}
}

// FolderName is the top-level folder for c under prefix.
func (c Category) FolderName(prefix string) string {
	return prefix + " - " + string(c)
}

type Counts struct {
	Attempted int
	Succeeded int
	Failed    int
}

type Summary struct {
	BasePath     string
	Manifests    []string
	IndexedFiles int
	Counts       map[Category]Counts
	FirstErrors  []string
}

func newSummary() *Summary {
	s := &Summary{Counts: make(map[Category]Counts, len(Categories))}
	for _, c := range Categories {
		s.Counts[c] = Counts{}
	}
	return s
}

func (s *Summary) Total() Counts {
	var t Counts
	for _, c := range s.Counts {
		t.Attempted += c.Attempted
		t.Succeeded += c.Succeeded
		t.Failed += c.Failed
	}
	return t
}

func (s *Summary) succeed(cat Category) {
	c := s.Counts[cat]
	c.Attempted++
	c.Succeeded++
	s.Counts[cat] = c
}

func (s *Summary) fail(cat Category, name string, err error) {
	c := s.Counts[cat]
	c.Attempted++
	c.Failed++
	s.Counts[cat] = c
	s.note(fmt.Sprintf("%s %q: %v", cat, name, err))
}

func (s *Summary) note(msg string) {
	if len(s.FirstErrors) < maxFirstErrors {
		s.FirstErrors = append(s.FirstErrors, msg)
	}
}

type RepairSummary struct {
	BasePath       string
	Entries        int
	EntriesTouched int
	PagesTouched   int
	PagesUnchanged int
	Failed         int
	FirstErrors    []string
}

func (s *RepairSummary) fail(name string, err error) {
	s.Failed++
	if len(s.FirstErrors) < maxFirstErrors {
		s.FirstErrors = append(s.FirstErrors, fmt.Sprintf("%q: %v", name, err))
	}
}
