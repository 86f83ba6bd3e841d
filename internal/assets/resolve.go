package assets

import (
	"regexp"
	"strings"

	"encounterport/internal/datafs"
)

type Kind string

const (
	KindMonsterImage Kind = "monster-image"
	KindMonsterToken Kind = "monster-token"
	KindItemImage    Kind = "item-image"
	KindMapImage     Kind = "map-image"
	KindMapFloor     Kind = "map-floor"
	KindMapTile      Kind = "map-tile"
	KindPageImage    Kind = "page-image"
	KindGeneric      Kind = "generic"
)

const (
	FamilyMonster = "monster"
	FamilyItem    = "item"
	FamilyMap     = "map"
	FamilyPage    = "page"
	FamilyGeneric = "generic"
)

// Family is the kind prefix used for scoring and folder guesses.
func (k Kind) Family() string {
	family, _, _ := strings.Cut(strings.ToLower(string(k)), "-")
	switch family {
	case FamilyMonster, FamilyItem, FamilyMap, FamilyPage:
		return family
	default:
		return FamilyGeneric
	}
}

// ParseKind accepts a kind name, falling back to generic.
func ParseKind(s string) Kind {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	switch k {
	case KindMonsterImage, KindMonsterToken, KindItemImage, KindMapImage, KindMapFloor, KindMapTile, KindPageImage:
		return k
	default:
		return KindGeneric
	}
}

// Extensions tried, in order, when a reference has the wrong extension or none.
var mediaExtensions = []string{"webp", "png", "jpg", "jpeg", "gif", "mp4", "webm"}

var staticRoots = map[string]struct{}{
	"modules": {},
	"systems": {},
	"worlds":  {},
	"icons":   {},
}

var passThroughScheme = regexp.MustCompile(`(?i)^(data:|https?:)`)

// Resolver maps asset references to data paths under an export base directory.
type Resolver struct {
	base      string
	index     *Index
	userRoots []string
}

func NewResolver(basePath string, index *Index, userRoots []string) *Resolver {
	roots := make([]string, 0, len(userRoots))
	for _, r := range userRoots {
		if r = strings.Trim(r, "/"); r != "" {
			roots = append(roots, r)
		}
	}
	return &Resolver{base: trimSlashes(basePath), index: index, userRoots: roots}
}

func (r *Resolver) BasePath() string {
	return r.base
}

func (r *Resolver) Index() *Index {
	return r.index
}

// query carries the derived forms of one reference through the resolution stages.
type query struct {
	original   string
	raw        string
	segs       []string
	leaf       string
	hasExt     bool
	kind       Kind
	allowNoExt bool
}

type outcome int

const (
	next outcome = iota
	matched
	failed
)

type stage func(r *Resolver, q *query) (string, outcome)

// stages run in order; the first stage that matches or fails ends resolution.
var stages = []stage{
	(*Resolver).passThrough,
	(*Resolver).exactLookup,
	(*Resolver).retryExtension,
	(*Resolver).retryMissingExtension,
	(*Resolver).guessFolder,
}

// Resolve returns the best data path for ref, or false when it cannot be resolved.
// Extensionless references that are not in the index only fall through to folder
// guesses when allowNoExtension is set.
func (r *Resolver) Resolve(ref string, kind Kind, allowNoExtension bool) (string, bool) {
	original := strings.TrimSpace(ref)
	if original == "" {
		return "", false
	}
	raw := strings.TrimPrefix(normalizeRelativePath(original, r.base), "/")
	segs := strings.Split(raw, "/")
	leaf := segs[len(segs)-1]
	q := &query{
		original:   original,
		raw:        raw,
		segs:       segs,
		leaf:       leaf,
		hasExt:     hasExt(leaf),
		kind:       kind,
		allowNoExt: allowNoExtension,
	}

	for _, s := range stages {
		p, res := s(r, q)
		switch res {
		case matched:
			return p, true
		case failed:
			return "", false
		}
	}
	return "", false
}

func (r *Resolver) passThrough(q *query) (string, outcome) {
	if passThroughScheme.MatchString(q.original) {
		return q.original, matched
	}
	if strings.HasPrefix(q.original, "/files/") || strings.HasPrefix(q.raw, "files/") {
		return datafs.NormalizeDataPath(q.original), matched
	}
	if _, ok := staticRoots[strings.ToLower(q.segs[0])]; ok {
		return q.raw, matched
	}
	if q.hasExt && r.rooted(q.raw) {
		return q.raw, matched
	}
	return "", next
}

func (r *Resolver) rooted(raw string) bool {
	if r.base != "" && strings.HasPrefix(raw, r.base+"/") {
		return true
	}
	for _, root := range r.userRoots {
		if strings.HasPrefix(raw, root+"/") {
			return true
		}
	}
	return false
}

func (r *Resolver) exactLookup(q *query) (string, outcome) {
	cands := r.index.Get(q.leaf)
	if len(cands) == 0 {
		return "", next
	}
	if len(q.segs) > 1 {
		hint := "/" + strings.ToLower(strings.Join(q.segs[:len(q.segs)-1], "/")) + "/"
		var filtered []Entry
		for _, c := range cands {
			if strings.Contains("/"+strings.ToLower(c.Path), hint) {
				filtered = append(filtered, c)
			}
		}
		if len(filtered) > 0 {
			return bestCandidate(filtered, q.kind), matched
		}
	}
	return bestCandidate(cands, q.kind), matched
}

func (r *Resolver) retryExtension(q *query) (string, outcome) {
	if !q.hasExt {
		return "", next
	}
	stem := stripExt(q.leaf)
	if stem != "" {
		if cands := r.index.Get(stem); len(cands) > 0 {
			return bestCandidate(cands, q.kind), matched
		}
	}
	for _, ext := range mediaExtensions {
		if cands := r.index.Get(stem + "." + ext); len(cands) > 0 {
			return bestCandidate(cands, q.kind), matched
		}
	}
	if len(q.segs) > 1 {
		return joinPath(r.base, q.raw), matched
	}
	return "", next
}

func (r *Resolver) retryMissingExtension(q *query) (string, outcome) {
	if q.hasExt {
		return "", next
	}
	for _, ext := range mediaExtensions {
		if cands := r.index.Get(q.leaf + "." + ext); len(cands) > 0 {
			return bestCandidate(cands, q.kind), matched
		}
	}
	if !q.allowNoExt {
		return "", failed
	}
	return "", next
}

// guessFolder returns the first kind-specific location without checking the index.
func (r *Resolver) guessFolder(q *query) (string, outcome) {
	nested := len(q.segs) > 1
	var guesses []string
	switch q.kind.Family() {
	case FamilyMonster:
		guesses = []string{"monsters/" + q.leaf, "resources/monsters/" + q.leaf, q.leaf}
	case FamilyItem:
		guesses = []string{"items/" + q.leaf, "resources/items/" + q.leaf, q.leaf}
	case FamilyPage:
		if nested {
			guesses = append(guesses, q.raw)
		}
		guesses = append(guesses, "Images/"+q.raw, "Images/"+q.leaf, q.leaf)
	case FamilyMap:
		if nested {
			guesses = append(guesses, q.raw)
		}
		guesses = append(guesses, q.leaf, "maps/"+q.leaf, "Images/"+q.leaf)
	default:
		if nested {
			guesses = append(guesses, q.raw)
		}
		guesses = append(guesses, q.leaf, "Images/"+q.leaf, "maps/"+q.leaf, "monsters/"+q.leaf, "items/"+q.leaf)
	}
	return joinPath(r.base, guesses[0]), matched
}

// normalizeRelativePath resolves "." and ".." segments. References that climb out of
// their directory are re-anchored under base.
func normalizeRelativePath(raw, base string) string {
	s := strings.TrimSpace(strings.ReplaceAll(raw, "\\", "/"))
	if s == "" {
		return ""
	}
	var out []string
	for _, p := range strings.Split(s, "/") {
		switch p {
		case "", ".":
		case "..":
			if len(out) > 0 {
				out = out[:len(out)-1]
			}
		default:
			out = append(out, p)
		}
	}
	normalized := strings.Join(out, "/")
	if strings.HasPrefix(s, "../") && base != "" {
		return joinPath(trimSlashes(base), normalized)
	}
	return normalized
}

func joinPath(parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p = strings.Trim(p, "/"); p != "" {
			kept = append(kept, p)
		}
	}
	return collapseSlashes(strings.Join(kept, "/"))
}

var multiSlash = regexp.MustCompile(`/{2,}`)

func collapseSlashes(p string) string {
	return multiSlash.ReplaceAllString(p, "/")
}

func trimSlashes(p string) string {
	return strings.TrimRight(strings.TrimLeft(p, "/"), "/")
}
