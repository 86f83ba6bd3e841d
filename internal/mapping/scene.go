package mapping

import (
	"context"
	"path"
	"strings"

	"encounterport/internal/assets"
	"encounterport/internal/source"
	"encounterport/internal/target"
)

const (
	defaultSceneWidth  = 3000
	defaultSceneHeight = 2000
)

// Scene maps a map record. Media without a servable extension is dropped rather than
// emitted: the background is omitted and such tiles are skipped.
func (m *Mapper) Scene(ctx context.Context, mp source.Map) *target.Scene {
	name := mp.Name.OrString("Map")

	bg, ok := m.resolver.Resolve(mp.Image.String(), assets.KindMapImage, true)
	if !ok {
		bg, _ = m.resolver.Resolve(mp.Floor.String(), assets.KindMapFloor, true)
	}
	bg = m.ensureExtension(ctx, bg)
	if bg != "" && !hasExtension(bg) {
		if alt, ok := m.resolver.Resolve(path.Base(bg), assets.KindMapImage, false); ok {
			bg = alt
		}
	}
	if !assets.HasValidMediaExtension(bg) {
		bg = ""
	}

	units := mp.GridUnits.OrString("ft")
	defaultDistance := 5.0
	if strings.EqualFold(units, "m") {
		defaultDistance = 1.5
	}

	width := safeInt(mp.Width, 0)
	height := safeInt(mp.Height, 0)
	if (width <= 0 || height <= 0) && bg != "" {
		if w, h, ok := m.dimensions(ctx, bg); ok {
			width, height = w, h
		}
	}
	if width <= 0 {
		width = defaultSceneWidth
	}
	if height <= 0 {
		height = defaultSceneHeight
	}

	scene := &target.Scene{
		Name:   name,
		Width:  width,
		Height: height,
		Tiles:  m.tiles(ctx, mp),
		Walls:  walls(mp.WallList()),
		Grid: target.Grid{
			Size:     safeInt(mp.GridSize, 100),
			Distance: safeFloat(mp.GridScale, defaultDistance),
			Units:    units,
			Type:     gridType(mp.GridType.String()),
			Color:    mp.GridColor.OrString("#000000"),
			Alpha:    safeFloat(mp.GridOpacity, 0.2),
			OffsetX:  safeInt(mp.GridOffsetX, 0),
			OffsetY:  safeInt(mp.GridOffsetY, 0),
		},
		Flags: target.Flags{Importer: sourceRef(mp.Ref())},
	}
	if bg != "" {
		scene.Background = &target.Texture{Src: m.url(bg)}
	}
	return scene
}

func (m *Mapper) tiles(ctx context.Context, mp source.Map) []target.Tile {
	out := []target.Tile{}
	for _, t := range mp.Tiles {
		res := t.Asset.Resource.String()
		src, ok := m.resolver.Resolve(res, assets.KindMapTile, true)
		if !ok {
			continue
		}
		src = m.ensureExtension(ctx, src)
		if !hasExtension(src) || !assets.HasValidMediaExtension(src) {
			m.logger.Debug("skipping tile without media extension", "map", mp.DisplayName(), "resource", res)
			continue
		}
		w := safeInt(t.Width, 0)
		h := safeInt(t.Height, 0)
		if w <= 0 || h <= 0 {
			continue
		}
		scale := safeFloat(t.Scale, 1)
		out = append(out, target.Tile{
			X:        safeInt(t.X, 0),
			Y:        safeInt(t.Y, 0),
			Width:    max(1, round(float64(w)*scale)),
			Height:   max(1, round(float64(h)*scale)),
			Rotation: safeFloat(t.Rotation, 0),
			Alpha:    clamp(safeFloat(t.Opacity, 1), 0, 1),
			Hidden:   t.Hidden.Truthy(),
			Texture:  target.Texture{Src: m.url(src)},
		})
	}
	return out
}

func walls(in []source.Wall) []target.Wall {
	out := []target.Wall{}
	for _, w := range in {
		c := w.C
		if c == nil {
			c = []source.Scalar{
				pickFirst(w.X, w.X1),
				pickFirst(w.Y, w.Y1),
				pickFirst(w.X2, w.XEnd),
				pickFirst(w.Y2, w.YEnd),
			}
		}
		if len(c) != 4 {
			continue
		}
		var coords [4]int
		for i, v := range c {
			coords[i] = safeInt(v, 0)
		}
		if coords[0] == coords[2] && coords[1] == coords[3] {
			continue
		}
		out = append(out, target.Wall{
			C:     coords,
			Move:  safeInt(w.Move, safeInt(w.Movement, 20)),
			Sight: safeInt(w.Sight, safeInt(w.Vision, 20)),
			Sound: safeInt(w.Sound, 20),
			Door:  safeInt(w.Door, 0),
			DS:    safeInt(w.DS, 0),
			Dir:   safeInt(w.Dir, 0),
		})
	}
	return out
}

func gridType(raw string) int {
	if strings.Contains(strings.ToLower(raw), "hex") {
		return target.GridHex
	}
	return target.GridSquare
}

func hasExtension(p string) bool {
	return extPattern.MatchString(path.Base(p))
}

func (m *Mapper) ensureExtension(ctx context.Context, p string) string {
	if m.media == nil || p == "" || assets.IsRemote(p) {
		return p
	}
	return m.media.EnsureExtension(ctx, p, m.resolver.Index())
}

func (m *Mapper) dimensions(ctx context.Context, p string) (int, int, bool) {
	if m.media == nil || assets.IsRemote(p) {
		return 0, 0, false
	}
	return m.media.Dimensions(ctx, p)
}
