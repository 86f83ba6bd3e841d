package assets

import (
	"sort"
	"strings"
)

// bestCandidate picks the highest scoring path. Ties keep index order.
func bestCandidate(cands []Entry, kind Kind) string {
	if len(cands) == 0 {
		return ""
	}
	sorted := append([]Entry(nil), cands...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return candidateScore(sorted[i].Path, kind) > candidateScore(sorted[j].Path, kind)
	})
	return sorted[0].Path
}

func candidateScore(p string, kind Kind) float64 {
	s := strings.ToLower(p)
	score := 0.0
	switch kind.Family() {
	case FamilyMonster:
		if strings.Contains(s, "/monsters/") {
			score += 40
		}
		if strings.Contains(s, "/resources/monsters/") {
			score += 20
		}
	case FamilyItem:
		if strings.Contains(s, "/items/") {
			score += 40
		}
		if strings.Contains(s, "/resources/items/") {
			score += 20
		}
	case FamilyMap:
		if strings.Contains(s, "/maps/") {
			score += 20
		}
		// root-level images are common for maps
		if len(strings.Split(s, "/")) <= 3 {
			score += 15
		}
	}
	score += max(0, 30-float64(len(s))/5)
	return score
}
