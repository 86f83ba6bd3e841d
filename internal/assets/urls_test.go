package assets

import "testing"

func TestFilesURL(t *testing.T) {
	b := URLBuilder{Origin: "http://localhost:30000/", RoutePrefix: "/game/"}

	cases := []struct {
		in       string
		absolute bool
		expected string
	}{
		{"root/a b.png", false, "/game/files/data/root/a%20b.png"},
		{"root/a b.png", true, "http://localhost:30000/game/files/data/root/a%20b.png"},
		{"data/root/x.png", false, "/game/files/data/root/x.png"},
		{`root\maps\x.png`, false, "/game/files/data/root/maps/x.png"},
		{"icons/svg/mystery-man.svg", false, "/game/icons/svg/mystery-man.svg"},
		{"/files/data/root/x.png", false, "/game/files/data/root/x.png"},
		{"files/data/root/x.png", true, "http://localhost:30000/game/files/data/root/x.png"},
		{"https://cdn.example.com/x.png", true, "https://cdn.example.com/x.png"},
		{"", false, ""},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			if got := b.FilesURL(tc.in, tc.absolute); got != tc.expected {
				t.Fatalf("expected %q, got %q", tc.expected, got)
			}
		})
	}

	plain := URLBuilder{}
	if got := plain.FilesURL("root/x.png", false); got != "/files/data/root/x.png" {
		t.Fatalf("expected /files/data/root/x.png without prefix, got %q", got)
	}
}

func TestDataPathRoundTrip(t *testing.T) {
	b := URLBuilder{Origin: "http://localhost:30000", RoutePrefix: "game"}
	u := b.FilesURL("root/Élan Vital.webp", true)
	if got := b.DataPath(u); got != "root/Élan Vital.webp" {
		t.Fatalf("expected data path back, got %q", got)
	}
}

func TestMediaExtensions(t *testing.T) {
	cases := []struct {
		in    string
		media bool
		image bool
	}{
		{"a.webp", true, true},
		{"a.JPG?v=2", true, true},
		{"a.mp4", true, false},
		{"a.svg", false, true},
		{"a.svg#frag", false, true},
		{"a", false, false},
		{"a.txt", false, false},
		{"", false, false},
	}
	for _, tc := range cases {
		if got := HasValidMediaExtension(tc.in); got != tc.media {
			t.Fatalf("media %q: expected %v, got %v", tc.in, tc.media, got)
		}
		if got := HasValidImageExtension(tc.in); got != tc.image {
			t.Fatalf("image %q: expected %v, got %v", tc.in, tc.image, got)
		}
	}
}
