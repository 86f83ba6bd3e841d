package mapping

import (
	"encounterport/internal/source"
	"encounterport/internal/target"
)

func (m *Mapper) Journal(p source.Page) *target.JournalEntry {
	name := p.Name.OrString("Page")
	return &target.JournalEntry{
		Name: name,
		Pages: []target.JournalPage{{
			Name: name,
			Type: "text",
			Text: target.PageText{Content: m.rich.Rewrite(p.Content.OrString(""))},
		}},
		Flags: target.Flags{Importer: sourceRef(p.Ref())},
	}
}
