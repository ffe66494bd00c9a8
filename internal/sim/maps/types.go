package maps

import (
	"sort"
	"strings"

	"tilespawn.dev/internal/sim/tiles"
)

type Tile struct {
	Index      int
	Type       string
	Properties []string
}

// HasProperty reports whether the tile's type or one of its properties
// matches name, ignoring case.
func (t Tile) HasProperty(name string) bool {
	if strings.EqualFold(t.Type, name) {
		return true
	}
	for _, p := range t.Properties {
		if strings.EqualFold(p, name) {
			return true
		}
	}
	return false
}

// Object is a large object already placed on the map (stump, boulder, ...).
type Object struct {
	Type string
	X, Y int
}

type GameMap struct {
	Name   string
	Width  int
	Height int
	Tiles  []Tile // len = Width*Height, row-major

	Objects []Object
}

func NewGameMap(name string, width, height int) *GameMap {
	return &GameMap{
		Name:   name,
		Width:  width,
		Height: height,
		Tiles:  make([]Tile, width*height),
	}
}

func (m *GameMap) index(x, y int) int {
	return x + y*m.Width
}

func (m *GameMap) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < m.Width && y < m.Height
}

func (m *GameMap) At(x, y int) (Tile, bool) {
	if !m.InBounds(x, y) {
		return Tile{}, false
	}
	return m.Tiles[m.index(x, y)], true
}

func (m *GameMap) Set(x, y int, t Tile) {
	if !m.InBounds(x, y) {
		return
	}
	m.Tiles[m.index(x, y)] = t
}

// Match collects every in-bounds tile accepted by keep.
func (m *GameMap) Match(keep func(Tile) bool) tiles.Set {
	out := tiles.NewSet()
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			if keep(m.Tiles[m.index(x, y)]) {
				out.Add(tiles.Coord{X: x, Y: y})
			}
		}
	}
	return out
}

// Rect collects the in-bounds tiles of the inclusive rectangle min..max.
func (m *GameMap) Rect(min, max tiles.Coord) tiles.Set {
	out := tiles.NewSet()
	x0, y0 := clamp(min.X, 0, m.Width-1), clamp(min.Y, 0, m.Height-1)
	x1, y1 := clamp(max.X, 0, m.Width-1), clamp(max.Y, 0, m.Height-1)
	if max.X < 0 || max.Y < 0 || min.X >= m.Width || min.Y >= m.Height {
		return out
	}
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			out.Add(tiles.Coord{X: x, Y: y})
		}
	}
	return out
}

// Occupied returns the tiles covered by placed objects.
func (m *GameMap) Occupied() tiles.Set {
	out := tiles.NewSet()
	for _, o := range m.Objects {
		if m.InBounds(o.X, o.Y) {
			out.Add(tiles.Coord{X: o.X, Y: o.Y})
		}
	}
	return out
}

// ExistingObjects returns "x,y" range strings for placed objects whose type
// matches one of types (any case). Output is sorted and free of duplicates.
func (m *GameMap) ExistingObjects(types []string) []string {
	if len(types) == 0 {
		return nil
	}
	seen := map[string]bool{}
	var out []string
	for _, o := range m.Objects {
		match := false
		for _, t := range types {
			if strings.EqualFold(o.Type, t) {
				match = true
				break
			}
		}
		if !match || !m.InBounds(o.X, o.Y) {
			continue
		}
		s := FormatCoord(tiles.Coord{X: o.X, Y: o.Y})
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
