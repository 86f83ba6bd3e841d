// Package assets locates media files in an export tree whose on-disk names rarely
// match the names recorded in the source records.
package assets

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var separators = regexp.MustCompile(`[\s_-]+`)

// KeyVariants returns the ordered, de-duplicated lookup keys for name: lowercase,
// NFC, NFD, diacritic-stripped forms, then every one of those with separators removed.
func KeyVariants(name string) []string {
	var out []string
	seen := make(map[string]struct{})
	add := func(s string) {
		if s == "" {
			return
		}
		s = strings.ToLower(s)
		if _, ok := seen[s]; ok {
			return
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}

	add(name)
	add(norm.NFC.String(name))
	add(norm.NFD.String(name))

	if stripped, ok := stripMarks(name); ok {
		add(stripped)
		add(norm.NFC.String(stripped))
		add(norm.NFD.String(stripped))
	}

	snapshot := append([]string(nil), out...)
	for _, v := range snapshot {
		add(separators.ReplaceAllString(v, ""))
	}
	return out
}

func stripMarks(s string) (string, bool) {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.M)))
	out, _, err := transform.String(t, s)
	if err != nil {
		return "", false
	}
	return out, true
}
