package assets

import (
	"net/url"
	"regexp"
	"strings"

	"encounterport/internal/datafs"
)

var (
	mediaExtPattern = regexp.MustCompile(`(?i)\.(webp|png|jpe?g|gif|bmp|mp4|webm)$`)
	imageExtPattern = regexp.MustCompile(`(?i)\.(webp|png|jpe?g|gif|bmp|svg)$`)
)

// URLBuilder turns data paths into browser-loadable URLs under the host's /files route.
type URLBuilder struct {
	Origin      string
	RoutePrefix string
}

func (b URLBuilder) route(p string) string {
	p = strings.TrimLeft(p, "/")
	prefix := strings.Trim(b.RoutePrefix, "/")
	if prefix == "" {
		return "/" + p
	}
	return "/" + prefix + "/" + p
}

func (b URLBuilder) finalize(route string, absolute bool) string {
	if !absolute {
		return route
	}
	return strings.TrimRight(b.Origin, "/") + route
}

// FilesURL maps a data path to a route. Static package paths are served from the
// route root; everything else from /files/data with each segment escaped.
func (b URLBuilder) FilesURL(dataPath string, absolute bool) string {
	raw := strings.TrimSpace(strings.ReplaceAll(dataPath, "\\", "/"))
	if raw == "" {
		return ""
	}
	if passThroughScheme.MatchString(raw) {
		return raw
	}
	if strings.HasPrefix(raw, "/files/") {
		return b.finalize(b.route(raw), absolute)
	}
	if strings.HasPrefix(raw, "files/") {
		return b.finalize(b.route(raw), absolute)
	}

	p := strings.TrimLeft(raw, "/")
	p = strings.TrimPrefix(p, "data/")

	top, _, _ := strings.Cut(p, "/")
	if _, ok := staticRoots[strings.ToLower(top)]; ok {
		return b.finalize(b.route(p), absolute)
	}

	segs := strings.Split(p, "/")
	for i, s := range segs {
		segs[i] = url.PathEscape(s)
	}
	return b.finalize(b.route("files/data/"+strings.Join(segs, "/")), absolute)
}

// DataPath is the inverse of FilesURL for user data references.
func (b URLBuilder) DataPath(ref string) string {
	return datafs.NormalizeDataPath(ref)
}

func HasValidMediaExtension(p string) bool {
	return p != "" && mediaExtPattern.MatchString(stripQuery(p))
}

func HasValidImageExtension(p string) bool {
	return p != "" && imageExtPattern.MatchString(stripQuery(p))
}

// IsRemote reports whether ref is an inline or remote URL rather than a data path.
func IsRemote(ref string) bool {
	return passThroughScheme.MatchString(strings.TrimSpace(ref))
}

func stripQuery(p string) string {
	p, _, _ = strings.Cut(p, "?")
	p, _, _ = strings.Cut(p, "#")
	return p
}
