package maps

import (
	"fmt"
	"strconv"
	"strings"

	"tilespawn.dev/internal/sim/tiles"
)

// ParseRange parses a coordinate-range string: "x,y" for one tile or
// "x1,y1/x2,y2" for an inclusive rectangle with corners in any order.
func ParseRange(s string) (min, max tiles.Coord, err error) {
	parts := strings.Split(strings.TrimSpace(s), "/")
	if len(parts) > 2 {
		return min, max, fmt.Errorf("range %q: too many corners", s)
	}
	a, err := parseCoord(parts[0])
	if err != nil {
		return min, max, fmt.Errorf("range %q: %w", s, err)
	}
	b := a
	if len(parts) == 2 {
		b, err = parseCoord(parts[1])
		if err != nil {
			return min, max, fmt.Errorf("range %q: %w", s, err)
		}
	}
	min = tiles.Coord{X: minInt(a.X, b.X), Y: minInt(a.Y, b.Y)}
	max = tiles.Coord{X: maxInt(a.X, b.X), Y: maxInt(a.Y, b.Y)}
	return min, max, nil
}

func parseCoord(s string) (tiles.Coord, error) {
	xy := strings.Split(s, ",")
	if len(xy) != 2 {
		return tiles.Coord{}, fmt.Errorf("bad coordinate %q: want x,y", strings.TrimSpace(s))
	}
	x, err := strconv.Atoi(strings.TrimSpace(xy[0]))
	if err != nil {
		return tiles.Coord{}, fmt.Errorf("bad x in %q", strings.TrimSpace(s))
	}
	y, err := strconv.Atoi(strings.TrimSpace(xy[1]))
	if err != nil {
		return tiles.Coord{}, fmt.Errorf("bad y in %q", strings.TrimSpace(s))
	}
	return tiles.Coord{X: x, Y: y}, nil
}

func FormatCoord(c tiles.Coord) string {
	return strconv.Itoa(c.X) + "," + strconv.Itoa(c.Y)
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
