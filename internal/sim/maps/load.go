package maps

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"tilespawn.dev/schemas"
)

type mapFile struct {
	Name    string                `yaml:"name"`
	Width   int                   `yaml:"width"`
	Height  int                   `yaml:"height"`
	Legend  map[string]legendTile `yaml:"legend"`
	Rows    []string              `yaml:"rows"`
	Objects []objectDef           `yaml:"objects"`
}

type legendTile struct {
	Index      int      `yaml:"index"`
	Type       string   `yaml:"type"`
	Properties []string `yaml:"properties"`
}

type objectDef struct {
	Type string `yaml:"type"`
	X    int    `yaml:"x"`
	Y    int    `yaml:"y"`
}

// LoadFile reads one YAML map file. Each row is a string of legend
// characters, one per tile.
func LoadFile(path string) (*GameMap, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	base := filepath.Base(path)
	if err := schemas.ValidateYAML(schemas.Map, raw); err != nil {
		return nil, fmt.Errorf("%s: %w", base, err)
	}
	var f mapFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("%s: %w", base, err)
	}
	m, err := f.build()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", base, err)
	}
	return m, nil
}

func (f mapFile) build() (*GameMap, error) {
	if strings.TrimSpace(f.Name) == "" {
		return nil, fmt.Errorf("map name must not be empty")
	}
	if f.Width <= 0 || f.Height <= 0 {
		return nil, fmt.Errorf("map %s size must be > 0", f.Name)
	}
	if len(f.Rows) != f.Height {
		return nil, fmt.Errorf("map %s has %d rows, want %d", f.Name, len(f.Rows), f.Height)
	}
	legend := make(map[rune]Tile, len(f.Legend))
	for k, v := range f.Legend {
		if utf8.RuneCountInString(k) != 1 {
			return nil, fmt.Errorf("map %s legend key %q must be one character", f.Name, k)
		}
		r, _ := utf8.DecodeRuneInString(k)
		legend[r] = Tile{Index: v.Index, Type: v.Type, Properties: append([]string(nil), v.Properties...)}
	}

	m := NewGameMap(f.Name, f.Width, f.Height)
	for y, row := range f.Rows {
		if n := utf8.RuneCountInString(row); n != f.Width {
			return nil, fmt.Errorf("map %s row %d has %d tiles, want %d", f.Name, y, n, f.Width)
		}
		x := 0
		for _, r := range row {
			t, ok := legend[r]
			if !ok {
				return nil, fmt.Errorf("map %s row %d col %d: %q not in legend", f.Name, y, x, r)
			}
			m.Set(x, y, t)
			x++
		}
	}
	for i, o := range f.Objects {
		if !m.InBounds(o.X, o.Y) {
			return nil, fmt.Errorf("map %s objects[%d] at %d,%d out of bounds", f.Name, i, o.X, o.Y)
		}
		m.Objects = append(m.Objects, Object{Type: o.Type, X: o.X, Y: o.Y})
	}
	return m, nil
}

// LoadDir loads every *.yaml / *.yml map in dir, in file-name order.
func LoadDir(dir string) (*Registry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.HasSuffix(e.Name(), ".yaml") || strings.HasSuffix(e.Name(), ".yml") {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)

	reg := NewRegistry()
	for _, p := range files {
		m, err := LoadFile(p)
		if err != nil {
			return nil, err
		}
		if _, dup := reg.byFold[strings.ToLower(m.Name)]; dup {
			return nil, fmt.Errorf("%s: duplicate map name %s", filepath.Base(p), m.Name)
		}
		reg.Add(m)
	}
	return reg, nil
}
