package tiles

// AreaKind is the spawn-area variant. Only large-object areas can reuse
// previously recorded object locations.
type AreaKind string

const (
	KindForage      AreaKind = "forage"
	KindLargeObject AreaKind = "large_object"
	KindOre         AreaKind = "ore"
	KindMonster     AreaKind = "monster"
)

func (k AreaKind) Valid() bool {
	switch k {
	case KindForage, KindLargeObject, KindOre, KindMonster:
		return true
	}
	return false
}

type SpawnArea struct {
	MapName      string
	UniqueAreaID string
	Kind         AreaKind

	IncludeTerrain []Rule
	IncludeAreas   []Rule
	ExcludeTerrain []Rule
	ExcludeAreas   []Rule

	FindExistingObjectLocations bool
	ObjectTypes                 []string

	SpawnCount int
}

// UsesExistingObjectLocations reports whether the builder should merge the
// area's recorded object locations.
func (a SpawnArea) UsesExistingObjectLocations() bool {
	return a.Kind == KindLargeObject && a.FindExistingObjectLocations
}

// SaveData is state persisted by an earlier run, keyed by unique area id.
type SaveData struct {
	ExistingObjectLocations map[string][]string
}

func (s SaveData) Locations(areaID string) ([]string, bool) {
	if s.ExistingObjectLocations == nil {
		return nil, false
	}
	locs, ok := s.ExistingObjectLocations[areaID]
	return locs, ok
}

// Clone returns a deep copy.
func (s SaveData) Clone() SaveData {
	out := SaveData{ExistingObjectLocations: make(map[string][]string, len(s.ExistingObjectLocations))}
	for id, locs := range s.ExistingObjectLocations {
		out.ExistingObjectLocations[id] = append([]string(nil), locs...)
	}
	return out
}
