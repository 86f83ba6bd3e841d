package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"encounterport/internal/store"
	"encounterport/internal/target"
)

func openTestClient(t *testing.T) *Client {
	t.Helper()
	ctx := context.Background()
	c, err := New(ctx, "sqlite://"+filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { c.Close(ctx) })
	if err := c.EnsureSchema(ctx); err != nil {
		t.Fatalf("ensuring schema: %v", err)
	}
	return c
}

func TestEnsureFolderReusesExisting(t *testing.T) {
	c := openTestClient(t)
	ctx := context.Background()

	first, err := c.EnsureFolder(ctx, target.KindActor, "Import - Monsters")
	if err != nil {
		t.Fatalf("ensure folder: %v", err)
	}
	second, err := c.EnsureFolder(ctx, target.KindActor, "Import - Monsters")
	if err != nil {
		t.Fatalf("ensure folder again: %v", err)
	}
	if first == "" || first != second {
		t.Fatalf("expected the same folder id, got %q and %q", first, second)
	}

	other, err := c.EnsureFolder(ctx, target.KindItem, "Import - Monsters")
	if err != nil {
		t.Fatalf("ensure folder for other kind: %v", err)
	}
	if other == first {
		t.Fatalf("expected folders to be scoped by kind")
	}

	if _, err := c.FindFolder(ctx, target.KindScene, "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateAndGetEntity(t *testing.T) {
	c := openTestClient(t)
	ctx := context.Background()

	folder, err := c.EnsureFolder(ctx, target.KindItem, "Import - Items")
	if err != nil {
		t.Fatalf("ensure folder: %v", err)
	}
	item := &target.Item{
		Name:   "Hempen Rope",
		Type:   "loot",
		Folder: folder,
		System: target.ItemSystem{Quantity: 2},
		Flags:  target.Flags{Importer: &target.SourceRef{Kind: "item", ID: "i1", Slug: "rope"}},
	}
	id, err := c.Create(ctx, item)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := c.GetEntity(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Kind != target.KindItem || got.Name != "Hempen Rope" || got.Folder != folder {
		t.Fatalf("unexpected summary %+v", got.EntitySummary)
	}
	if got.SourceKind != "item" || got.SourceID != "i1" {
		t.Fatalf("expected source columns, got %q/%q", got.SourceKind, got.SourceID)
	}

	decoded, err := got.Decode()
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	back, ok := decoded.(*target.Item)
	if !ok {
		t.Fatalf("expected *target.Item, got %T", decoded)
	}
	if back.System.Quantity != 2 || back.Flags.Importer.Slug != "rope" {
		t.Fatalf("unexpected decoded item %+v", back)
	}

	if _, err := c.GetEntity(ctx, "does-not-exist"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateEntity(t *testing.T) {
	c := openTestClient(t)
	ctx := context.Background()

	j := &target.JournalEntry{Name: "Intro", Pages: []target.JournalPage{{Name: "Intro", Type: "text"}}}
	id, err := c.Create(ctx, j)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	j.Pages[0].Text.Content = "<p>rewritten</p>"
	if err := c.Update(ctx, id, j); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err := c.GetEntity(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	decoded, err := got.Decode()
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if content := decoded.(*target.JournalEntry).Pages[0].Text.Content; content != "<p>rewritten</p>" {
		t.Fatalf("expected updated content, got %q", content)
	}

	if err := c.Update(ctx, "missing", j); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListEntitiesFilters(t *testing.T) {
	c := openTestClient(t)
	ctx := context.Background()

	folder, err := c.EnsureFolder(ctx, target.KindActor, "Import - Monsters")
	if err != nil {
		t.Fatalf("ensure folder: %v", err)
	}
	entities := []target.Entity{
		&target.Actor{Name: "Goblin", Folder: folder},
		&target.Actor{Name: "Bugbear"},
		&target.RollTable{Name: "Weather"},
	}
	for _, e := range entities {
		if _, err := c.Create(ctx, e); err != nil {
			t.Fatalf("create %s: %v", e.DisplayName(), err)
		}
	}

	all, err := c.ListEntities(ctx, store.Filter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 entities, got %d", len(all))
	}
	if all[0].Name != "Bugbear" || all[1].Name != "Goblin" || all[2].Name != "Weather" {
		t.Fatalf("expected kind then name order, got %+v", all)
	}

	actors, err := c.ListEntities(ctx, store.Filter{Kind: target.KindActor, Folder: folder})
	if err != nil {
		t.Fatalf("list filtered: %v", err)
	}
	if len(actors) != 1 || actors[0].Name != "Goblin" {
		t.Fatalf("expected only Goblin, got %+v", actors)
	}

	withData, err := c.ListEntitiesWithData(ctx, store.Filter{Kind: target.KindRollTable})
	if err != nil {
		t.Fatalf("list with data: %v", err)
	}
	if len(withData) != 1 || len(withData[0].Data) == 0 {
		t.Fatalf("expected one table with data, got %+v", withData)
	}

	empty, err := c.ListEntities(ctx, store.Filter{Kind: target.KindScene})
	if err != nil {
		t.Fatalf("list empty: %v", err)
	}
	if empty == nil || len(empty) != 0 {
		t.Fatalf("expected empty non-nil list, got %#v", empty)
	}
}
