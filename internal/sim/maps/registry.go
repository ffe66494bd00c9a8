package maps

import (
	"sort"
	"strings"

	"tilespawn.dev/internal/protocol"
	"tilespawn.dev/internal/sim/tiles"
)

// Registry holds the loaded maps by name and implements tiles.Lookup.
// It is read-only after loading and safe for concurrent lookups.
type Registry struct {
	byName map[string]*GameMap
	// lower-cased name -> first map added under it
	byFold map[string]*GameMap
}

func NewRegistry(ms ...*GameMap) *Registry {
	r := &Registry{byName: map[string]*GameMap{}, byFold: map[string]*GameMap{}}
	for _, m := range ms {
		r.Add(m)
	}
	return r
}

func (r *Registry) Add(m *GameMap) {
	if m == nil {
		return
	}
	r.byName[m.Name] = m
	key := strings.ToLower(m.Name)
	if _, ok := r.byFold[key]; !ok {
		r.byFold[key] = m
	}
}

// Map finds a map by exact name, falling back to a case-insensitive match.
func (r *Registry) Map(name string) (*GameMap, bool) {
	if m, ok := r.byName[name]; ok {
		return m, true
	}
	m, ok := r.byFold[strings.ToLower(name)]
	return m, ok
}

func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.byName))
	for n := range r.byName {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

func (r *Registry) mapFor(area tiles.SpawnArea) (*GameMap, error) {
	m, ok := r.Map(area.MapName)
	if !ok {
		return nil, &LookupError{Code: protocol.ErrUnknownMap, MapName: area.MapName, Detail: "not loaded"}
	}
	return m, nil
}

func (r *Registry) TilesByIndex(area tiles.SpawnArea, indices []int) (tiles.Set, error) {
	m, err := r.mapFor(area)
	if err != nil {
		return nil, err
	}
	want := make(map[int]bool, len(indices))
	for _, i := range indices {
		if i < 0 {
			return nil, &LookupError{Code: protocol.ErrBadIndex, MapName: m.Name, Detail: "negative tile index"}
		}
		want[i] = true
	}
	if len(want) == 0 {
		return tiles.NewSet(), nil
	}
	return m.Match(func(t Tile) bool { return want[t.Index] }), nil
}

func (r *Registry) TilesByProperty(area tiles.SpawnArea, property string) (tiles.Set, error) {
	m, err := r.mapFor(area)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(property)
	if name == "" {
		return nil, &LookupError{Code: protocol.ErrBadProperty, MapName: m.Name, Detail: "empty terrain type"}
	}
	if strings.EqualFold(name, tiles.PropertyAll) {
		return m.Match(func(Tile) bool { return true }), nil
	}
	return m.Match(func(t Tile) bool { return t.HasProperty(name) }), nil
}

func (r *Registry) TilesByRangeString(area tiles.SpawnArea, s string) (tiles.Set, error) {
	m, err := r.mapFor(area)
	if err != nil {
		return nil, err
	}
	min, max, err := ParseRange(s)
	if err != nil {
		return nil, &LookupError{Code: protocol.ErrBadRange, MapName: m.Name, Detail: "unparsable range", Err: err}
	}
	return m.Rect(min, max), nil
}
