package datafs

import (
	"net/url"
	"path"
	"strings"
)

const filesDataMarker = "/files/data/"

// NormalizeDataPath converts a browser URL (/files/data/..., http://host/files/data/...)
// or a loose relative path into a slash-separated data path without a leading slash.
func NormalizeDataPath(ref string) string {
	s := strings.TrimSpace(ref)
	if s == "" {
		return ""
	}
	if strings.HasPrefix(s, "files/data/") {
		return unescape(strings.TrimPrefix(s, "files/data/"))
	}
	if !strings.HasPrefix(s, "http") && !strings.HasPrefix(s, "/files/") && !strings.Contains(s, filesDataMarker) {
		return strings.TrimPrefix(strings.ReplaceAll(s, "\\", "/"), "/")
	}

	p := s
	if u, err := url.Parse(s); err == nil && u.Path != "" {
		if idx := strings.Index(u.EscapedPath(), filesDataMarker); idx >= 0 {
			return unescape(u.EscapedPath()[idx+len(filesDataMarker):])
		}
		return unescape(strings.TrimPrefix(u.EscapedPath(), "/"))
	}
	if idx := strings.Index(p, filesDataMarker); idx >= 0 {
		return p[idx+len(filesDataMarker):]
	}
	return strings.TrimPrefix(p, "/")
}

// Clean rejects traversal outside the data root and returns a canonical relative path.
func Clean(p string) (string, error) {
	p = strings.ReplaceAll(strings.TrimSpace(p), "\\", "/")
	cleaned := path.Clean("/" + p)
	if strings.Contains(p, "..") {
		// path.Clean on a rooted path swallows leading "..", so compare segment by segment.
		depth := 0
		for _, seg := range strings.Split(p, "/") {
			switch seg {
			case "", ".":
			case "..":
				depth--
				if depth < 0 {
					return "", ErrOutsideRoot
				}
			default:
				depth++
			}
		}
	}
	return strings.TrimPrefix(cleaned, "/"), nil
}

func unescape(s string) string {
	decoded, err := url.PathUnescape(s)
	if err != nil {
		return s
	}
	return decoded
}
