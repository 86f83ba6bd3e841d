package crawl

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"encounterport/internal/datafs/datafstest"
)

func testTree() *datafstest.Memory {
	return datafstest.New(map[string]string{
		"root/a.txt":             "",
		"root/one/b.txt":         "",
		"root/one/deep/c.txt":    "",
		"root/one/deep/er/d.txt": "",
		"root/two/e.txt":         "",
	})
}

func TestCrawlBreadthFirst(t *testing.T) {
	entries, err := Crawl(context.Background(), testTree(), "root", 5, nil)
	if err != nil {
		t.Fatalf("crawl: %v", err)
	}

	var got []string
	for _, e := range entries {
		got = append(got, e.Path)
	}
	expected := []string{
		"root/a.txt", "root/one", "root/two",
		"root/one/b.txt", "root/one/deep",
		"root/two/e.txt",
		"root/one/deep/c.txt", "root/one/deep/er",
		"root/one/deep/er/d.txt",
	}
	if !reflect.DeepEqual(got, expected) {
		t.Fatalf("unexpected order:\n got %v\nwant %v", got, expected)
	}
}

func TestCrawlDepthBound(t *testing.T) {
	fs := testTree()
	entries, err := Crawl(context.Background(), fs, "root", 1, nil)
	if err != nil {
		t.Fatalf("crawl: %v", err)
	}

	for _, e := range entries {
		if e.Path == "root/one/deep/c.txt" {
			t.Fatalf("expected depth 2 files to be skipped")
		}
	}
	if !reflect.DeepEqual(fs.Browsed, []string{"root", "root/one", "root/two"}) {
		t.Fatalf("unexpected browse calls: %v", fs.Browsed)
	}
}

func TestCrawlToleratesBrowseFailure(t *testing.T) {
	fs := testTree()
	fs.BrowseErr = map[string]error{"root/one": errors.New("permission denied")}

	entries, err := Crawl(context.Background(), fs, "root", 5, nil)
	if err != nil {
		t.Fatalf("crawl: %v", err)
	}

	paths := map[string]bool{}
	for _, e := range entries {
		paths[e.Path] = true
	}
	if paths["root/one/b.txt"] {
		t.Fatalf("expected failed directory contents to be missing")
	}
	if !paths["root/two/e.txt"] {
		t.Fatalf("expected sibling directory to be crawled")
	}
}

func TestWalkStop(t *testing.T) {
	count := 0
	err := Walk(context.Background(), testTree(), "root", 5, nil, func(e Entry) error {
		if e.IsDir {
			return nil
		}
		count++
		if count == 2 {
			return ErrStop
		}
		return nil
	})
	if err != nil {
		t.Fatalf("walk: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected walk to stop after 2 files, got %d", count)
	}
}

func TestWalkPropagatesVisitError(t *testing.T) {
	boom := errors.New("boom")
	err := Walk(context.Background(), testTree(), "root", 5, nil, func(e Entry) error {
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
}

func TestWalkCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Walk(ctx, testTree(), "root", 5, nil, func(e Entry) error { return nil })
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
