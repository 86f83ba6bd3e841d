package assets

import (
	"bytes"
	"context"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"path"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"encounterport/internal/datafs"
)

type Media interface {
	datafs.Fetcher
	datafs.Uploader
}

// Materializer gives extensionless assets a named copy the host will serve, and
// probes image dimensions.
type Materializer struct {
	media  Media
	logger *slog.Logger
}

func NewMaterializer(media Media, logger *slog.Logger) *Materializer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Materializer{media: media, logger: logger}
}

// SniffExtension infers an image extension from leading bytes, defaulting to png.
func SniffExtension(data []byte) string {
	switch {
	case len(data) >= 4 && bytes.Equal(data[:4], []byte{0x89, 0x50, 0x4E, 0x47}):
		return "png"
	case len(data) >= 12 && string(data[:4]) == "RIFF" && string(data[8:12]) == "WEBP":
		return "webp"
	case len(data) >= 3 && bytes.Equal(data[:3], []byte{0xFF, 0xD8, 0xFF}):
		return "jpg"
	case len(data) >= 4 && bytes.Equal(data[:4], []byte{0x47, 0x49, 0x46, 0x38}):
		return "gif"
	default:
		return "png"
	}
}

// EnsureExtension returns p unchanged when its leaf already has an extension.
// Otherwise it sniffs the bytes, uploads a copy named <leaf>.<ext> next to the
// original without overwriting, and records the new path in idx. It never fails:
// a fetch error returns p, an upload error still returns the new path.
func (m *Materializer) EnsureExtension(ctx context.Context, p string, idx *Index) string {
	if p == "" {
		return ""
	}
	p = strings.TrimPrefix(strings.ReplaceAll(p, "\\", "/"), "/")
	leaf := path.Base(p)
	if hasExt(leaf) {
		return p
	}

	data, err := m.media.Fetch(ctx, p)
	if err != nil {
		m.logger.Debug("sniff fetch failed", "path", p, "error", err)
		return p
	}

	dir := path.Dir(p)
	if dir == "." {
		dir = ""
	}
	newName := leaf + "." + SniffExtension(data)
	newPath := joinPath(dir, newName)

	if err := m.media.Upload(ctx, dir, newName, data, false); err != nil {
		m.logger.Debug("materialize upload failed", "path", newPath, "error", err)
	}

	if idx != nil {
		idx.Add(newName, Entry{Path: newPath})
		idx.Add(leaf, Entry{Path: newPath})
	}
	return newPath
}

// Dimensions decodes the image header at p. ok is false when the bytes cannot be
// fetched or decoded.
func (m *Materializer) Dimensions(ctx context.Context, p string) (width, height int, ok bool) {
	data, err := m.media.Fetch(ctx, p)
	if err != nil {
		m.logger.Debug("dimension fetch failed", "path", p, "error", err)
		return 0, 0, false
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		m.logger.Debug("dimension decode failed", "path", p, "error", err)
		return 0, 0, false
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return 0, 0, false
	}
	return cfg.Width, cfg.Height, true
}
