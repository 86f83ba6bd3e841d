package validate

import (
	"context"
	"errors"
	"strings"
	"testing"

	"encounterport/internal/datafs/datafstest"
	"encounterport/internal/store"
	"encounterport/internal/store/storetest"
	"encounterport/internal/target"
)

func seed(t *testing.T, entities map[string]target.Entity) *storetest.Memory {
	t.Helper()
	db := storetest.New()
	for id, e := range entities {
		if err := db.Put(id, e); err != nil {
			t.Fatalf("seed %s: %v", id, err)
		}
	}
	return db
}

func codes(report *Report) map[string][]string {
	out := make(map[string][]string)
	for _, issue := range report.Issues {
		out[issue.Code] = append(out[issue.Code], issue.ID)
	}
	return out
}

func TestRunFindsBrokenMedia(t *testing.T) {
	media := datafstest.New(map[string]string{"export/goblin.webp": "RIFF"})
	db := seed(t, map[string]target.Entity{
		"a1": &target.Actor{
			Name:  "Goblin",
			Img:   "/files/data/export/goblin.webp",
			Flags: target.Flags{Importer: &target.SourceRef{Kind: "monster", ID: "g1"}},
		},
		"j1": &target.JournalEntry{
			Name: "Intro",
			Pages: []target.JournalPage{{
				Name: "Intro",
				Type: "text",
				Text: target.PageText{Content: `<img src="http://localhost:30000/files/data/export/My%20Map.png"/>`},
			}},
			Flags: target.Flags{Importer: &target.SourceRef{Kind: "page", ID: "p1"}},
		},
	})

	report, err := Run(context.Background(), db, media)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(report.Issues) != 1 {
		t.Fatalf("expected 1 issue, got %+v", report.Issues)
	}
	issue := report.Issues[0]
	if issue.Code != codeBrokenMedia || issue.Severity != SeverityError || issue.ID != "j1" {
		t.Fatalf("unexpected issue %+v", issue)
	}
	if !strings.Contains(issue.Message, "export/My Map.png") {
		t.Fatalf("expected decoded path in message, got %q", issue.Message)
	}
	if report.Errors() != 1 || report.Warnings() != 0 {
		t.Fatalf("expected 1 error and no warnings, got %d and %d", report.Errors(), report.Warnings())
	}
}

func TestRunSourceRefs(t *testing.T) {
	ref := func(id string) target.Flags {
		return target.Flags{Importer: &target.SourceRef{Kind: "item", ID: id}}
	}
	db := seed(t, map[string]target.Entity{
		"i1": &target.Item{Name: "Rope", Flags: ref("r1")},
		"i2": &target.Item{Name: "Rope", Flags: ref("r1")},
		"i3": &target.Item{Name: "Torch", Flags: ref("t1")},
		"i4": &target.Item{Name: "Loose"},
	})

	report, err := Run(context.Background(), db, datafstest.New(nil))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	got := codes(report)
	if ids := got[codeMissingSourceRef]; len(ids) != 1 || ids[0] != "i4" {
		t.Fatalf("expected i4 missing its source, got %v", ids)
	}
	if ids := got[codeDuplicateSourceRef]; len(ids) != 2 || ids[0] != "i1" || ids[1] != "i2" {
		t.Fatalf("expected i1 and i2 duplicated, got %v", ids)
	}
	if report.Warnings() != 3 || report.Errors() != 0 {
		t.Fatalf("expected 3 warnings, got %d warnings and %d errors", report.Warnings(), report.Errors())
	}
}

func TestRunRequiresDependencies(t *testing.T) {
	if _, err := Run(context.Background(), nil, datafstest.New(nil)); err == nil {
		t.Fatal("expected error without a store")
	}
	if _, err := Run(context.Background(), storetest.New(), nil); err == nil {
		t.Fatal("expected error without a media checker")
	}
}

type failingLister struct{}

func (failingLister) ListEntitiesWithData(ctx context.Context, f store.Filter) ([]store.Entity, error) {
	return nil, errors.New("database is locked")
}

func TestRunListError(t *testing.T) {
	_, err := Run(context.Background(), failingLister{}, datafstest.New(nil))
	if err == nil || !strings.Contains(err.Error(), "database is locked") {
		t.Fatalf("expected list error, got %v", err)
	}
}

func TestMediaRefs(t *testing.T) {
	data := []byte(`{"img": "/files/data/a.png", "pages": [{"text": {"content": "<img src=\"/game/files/data/b.png?v=2\"> and /files/data/a.png"}}]}`)
	refs, err := mediaRefs(data)
	if err != nil {
		t.Fatalf("refs: %v", err)
	}
	if len(refs) != 2 || refs[0] != "/files/data/a.png" || refs[1] != "/files/data/b.png" {
		t.Fatalf("unexpected refs %v", refs)
	}
}
