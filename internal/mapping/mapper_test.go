package mapping

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"strings"
	"testing"

	"encounterport/internal/assets"
	"encounterport/internal/datafs/datafstest"
	"encounterport/internal/source"
	"encounterport/internal/target"
)

const testOrigin = "http://localhost:30000"

func testMapper(t *testing.T, files map[string][]byte) (*Mapper, *datafstest.Memory) {
	t.Helper()
	fs := datafstest.New(nil)
	for p, data := range files {
		fs.Put(p, data)
	}
	ix, err := assets.Build(context.Background(), fs, "root/export", 4, 0, nil)
	if err != nil {
		t.Fatalf("build index: %v", err)
	}
	m := New(Options{
		Resolver: assets.NewResolver("root/export", ix, nil),
		URLs:     assets.URLBuilder{Origin: testOrigin},
		Media:    assets.NewMaterializer(fs, nil),
	})
	return m, fs
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestItemFieldFallbacks(t *testing.T) {
	const itemsJSON = `[
  {"id": "i1", "slug": "rope", "name": "Hempen Rope", "qty": "2", "mass": 10, "price": "1.5", "descr": "<p>50 feet.</p>"},
  {"id": "i2", "name": "Wand of Sparks", "image": "items/wand", "uses": {"max": 7, "value": 3}, "cost": 300},
  {"id": "i3", "charges": 4}
]`
	m, _ := testMapper(t, map[string][]byte{"root/export/items/wand.webp": pngBytes(t, 1, 1)})
	items, err := source.Decode[source.Item]([]byte(itemsJSON))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	rope := m.Item(items[0])
	if rope.Type != "loot" || rope.Img != "/icons/svg/item-bag.svg" {
		t.Fatalf("unexpected rope type/img %q %q", rope.Type, rope.Img)
	}
	if rope.System.Quantity != 2 || rope.System.Weight != 10 || rope.System.Price.Value != 1.5 {
		t.Fatalf("unexpected rope system %+v", rope.System)
	}
	if rope.System.Price.Denomination != "gp" || rope.System.Description.Value != "<p>50 feet.</p>" {
		t.Fatalf("unexpected rope price/description %+v", rope.System)
	}
	if rope.System.Uses != (target.Uses{Value: 0, Max: 0, Per: "charges"}) {
		t.Fatalf("unexpected rope uses %+v", rope.System.Uses)
	}

	wand := m.Item(items[1])
	if wand.Img != "/files/data/root/export/items/wand.webp" {
		t.Fatalf("expected resolved wand image, got %q", wand.Img)
	}
	if wand.System.Uses.Max != 7 || wand.System.Uses.Value != 3 || wand.System.Price.Value != 300 {
		t.Fatalf("unexpected wand system %+v", wand.System)
	}
	if wand.System.Quantity != 1 {
		t.Fatalf("expected default quantity 1, got %d", wand.System.Quantity)
	}

	unnamed := m.Item(items[2])
	if unnamed.Name != "Item" || unnamed.System.Uses.Max != 4 || unnamed.System.Uses.Value != 4 {
		t.Fatalf("expected charges to seed both uses, got %q %+v", unnamed.Name, unnamed.System.Uses)
	}
}

func TestRollTable(t *testing.T) {
	const tablesJSON = `[
  {
    "id": "t1",
    "name": "Random Encounters",
    "rolls": [{"formula": "1d8"}],
    "rows": [
      {"range": [1, 4], "text": "Goblins"},
      {"min": 5, "max": 7, "result": " Wolves "},
      [8, 8, "Dragon"]
    ]
  },
  {"id": "t2", "name": "Weather", "rows": [{"text": "Rain"}, ["Fog"], {"text": "Sun", "weight": 3}]},
  {"id": "t3", "rolls": [{"formula": ""}]}
]`
	tables, err := source.Decode[source.Table]([]byte(tablesJSON))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	enc := RollTable(tables[0])
	if enc.Formula != "1d8" || enc.Name != "Random Encounters" {
		t.Fatalf("unexpected table header %q %q", enc.Name, enc.Formula)
	}
	expected := []target.TableResult{
		{Text: "Goblins", Range: [2]int{1, 4}, Weight: 1},
		{Text: "Wolves", Range: [2]int{5, 7}, Weight: 1},
		{Text: "Dragon", Range: [2]int{8, 8}, Weight: 1},
	}
	if len(enc.Results) != len(expected) {
		t.Fatalf("expected %d results, got %d", len(expected), len(enc.Results))
	}
	for i, e := range expected {
		if enc.Results[i] != e {
			t.Errorf("result %d: expected %+v, got %+v", i, e, enc.Results[i])
		}
	}

	weather := RollTable(tables[1])
	if weather.Formula != "1d3" {
		t.Fatalf("expected formula from row count, got %q", weather.Formula)
	}
	for i, r := range weather.Results {
		if r.Range != [2]int{i + 1, i + 1} {
			t.Errorf("row %d: expected positional range, got %v", i, r.Range)
		}
	}
	if weather.Results[1].Text != "Fog" || weather.Results[2].Weight != 3 {
		t.Fatalf("unexpected weather results %+v", weather.Results)
	}

	empty := RollTable(tables[2])
	if empty.Name != "Table" || empty.Formula != "1d1" || len(empty.Results) != 0 {
		t.Fatalf("unexpected empty table %+v", empty)
	}
}

func TestJournalRewritesImages(t *testing.T) {
	m, _ := testMapper(t, map[string][]byte{"root/export/Images/entrance.png": pngBytes(t, 1, 1)})
	pages, err := source.Decode[source.Page]([]byte(`[
  {"id": "p1", "slug": "intro", "name": "Introduction", "content": "<p>Welcome.</p><img src=\"Images/entrance.png\">"},
  {"id": "p2"}
]`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	j := m.Journal(pages[0])
	if j.Name != "Introduction" || len(j.Pages) != 1 || j.Pages[0].Type != "text" {
		t.Fatalf("unexpected journal %+v", j)
	}
	want := `src="` + testOrigin + `/files/data/root/export/Images/entrance.png"`
	if !strings.Contains(j.Pages[0].Text.Content, want) {
		t.Fatalf("expected %s in %q", want, j.Pages[0].Text.Content)
	}
	if j.Flags.Importer.Slug != "intro" || j.Flags.Importer.Kind != "page" {
		t.Fatalf("unexpected source ref %+v", j.Flags.Importer)
	}

	blank := m.Journal(pages[1])
	if blank.Name != "Page" || blank.Pages[0].Text.Content != "" {
		t.Fatalf("unexpected blank journal %+v", blank)
	}
}

type unknownRecord struct{ source.Meta }

func (unknownRecord) Kind() source.Kind { return "spell" }
func (unknownRecord) Ref() source.Ref   { return source.Ref{Kind: "spell"} }

func TestMapDispatch(t *testing.T) {
	m, _ := testMapper(t, map[string][]byte{"root/export/pages.json": []byte("[]")})
	ctx := context.Background()

	cases := []struct {
		rec      source.Record
		expected target.Kind
	}{
		{source.Page{}, target.KindJournalEntry},
		{source.Map{}, target.KindScene},
		{source.Monster{}, target.KindActor},
		{source.Item{}, target.KindItem},
		{source.Table{}, target.KindRollTable},
	}
	for _, tc := range cases {
		t.Run(string(tc.expected), func(t *testing.T) {
			ent, err := m.Map(ctx, tc.rec)
			if err != nil {
				t.Fatalf("map: %v", err)
			}
			if ent.Kind() != tc.expected {
				t.Fatalf("expected %s, got %s", tc.expected, ent.Kind())
			}
			if ent.Source() == nil {
				t.Fatalf("expected source ref")
			}
		})
	}

	if _, err := m.Map(ctx, unknownRecord{}); err == nil {
		t.Fatalf("expected error for unsupported record")
	}
}
