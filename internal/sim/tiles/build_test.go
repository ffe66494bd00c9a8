package tiles

import (
	"errors"
	"reflect"
	"testing"
)

type fakeLookup struct {
	byIndex    map[int][]Coord
	byProperty map[string][]Coord
	byRange    map[string][]Coord

	indexCalls [][]int
	failRange  error
}

func (f *fakeLookup) TilesByIndex(area SpawnArea, indices []int) (Set, error) {
	f.indexCalls = append(f.indexCalls, append([]int(nil), indices...))
	out := NewSet()
	for _, i := range indices {
		for _, c := range f.byIndex[i] {
			out.Add(c)
		}
	}
	return out, nil
}

func (f *fakeLookup) TilesByProperty(area SpawnArea, property string) (Set, error) {
	return NewSet(f.byProperty[property]...), nil
}

func (f *fakeLookup) TilesByRangeString(area SpawnArea, s string) (Set, error) {
	if f.failRange != nil {
		return nil, f.failRange
	}
	return NewSet(f.byRange[s]...), nil
}

type recordingMonitor struct {
	msgs   []string
	levels []LogLevel
}

func (m *recordingMonitor) Log(msg string, level LogLevel) {
	m.msgs = append(m.msgs, msg)
	m.levels = append(m.levels, level)
}

func TestBuild_EmptyAreaYieldsEmptySet(t *testing.T) {
	b := NewBuilder(&fakeLookup{}, nil)
	got, err := b.Build(SpawnArea{UniqueAreaID: "Farm 1", Kind: KindForage}, SaveData{}, nil, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("len=%d want 0", len(got))
	}
}

func TestBuild_ExcludeRangeRemovesIncludedProperty(t *testing.T) {
	lk := &fakeLookup{
		byProperty: map[string][]Coord{"Diggable": {{5, 5}, {6, 6}}},
		byRange:    map[string][]Coord{"5,5": {{5, 5}}},
	}
	area := SpawnArea{
		UniqueAreaID:   "Farm 1",
		IncludeTerrain: ParseTerrainRules([]string{"Diggable"}),
		ExcludeAreas:   RangeRules([]string{"5,5"}),
	}
	got, err := NewBuilder(lk, nil).Build(area, SaveData{}, nil, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if want := []Coord{{6, 6}}; !reflect.DeepEqual(got, want) {
		t.Fatalf("got=%v want=%v", got, want)
	}
}

func TestBuild_QuarryUsesQuarryIndices(t *testing.T) {
	lk := &fakeLookup{byIndex: map[int][]Coord{10: {{1, 1}}, 99: {{9, 9}}}}
	area := SpawnArea{UniqueAreaID: "Quarry", IncludeTerrain: ParseTerrainRules([]string{"QUARRY"})}
	got, err := NewBuilder(lk, nil).Build(area, SaveData{}, []int{10, 11}, []int{99})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if want := []Coord{{1, 1}}; !reflect.DeepEqual(got, want) {
		t.Fatalf("got=%v want=%v", got, want)
	}
	if len(lk.indexCalls) != 1 || !reflect.DeepEqual(lk.indexCalls[0], []int{10, 11}) {
		t.Fatalf("index calls=%v want [[10 11]]", lk.indexCalls)
	}
}

func TestBuild_CustomUsesCustomIndices(t *testing.T) {
	lk := &fakeLookup{byIndex: map[int][]Coord{10: {{1, 1}}, 99: {{9, 9}}}}
	area := SpawnArea{UniqueAreaID: "Custom", IncludeTerrain: ParseTerrainRules([]string{"Custom"})}
	got, err := NewBuilder(lk, nil).Build(area, SaveData{}, []int{10}, []int{99})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if want := []Coord{{9, 9}}; !reflect.DeepEqual(got, want) {
		t.Fatalf("got=%v want=%v", got, want)
	}
}

func TestBuild_IncludeTwiceIsIdempotent(t *testing.T) {
	lk := &fakeLookup{byProperty: map[string][]Coord{"Grass": {{0, 1}, {2, 3}}}}
	once := SpawnArea{UniqueAreaID: "A", IncludeTerrain: ParseTerrainRules([]string{"Grass"})}
	twice := SpawnArea{UniqueAreaID: "A", IncludeTerrain: ParseTerrainRules([]string{"Grass", "Grass"})}
	b := NewBuilder(lk, nil)
	a1, err := b.Build(once, SaveData{}, nil, nil)
	if err != nil {
		t.Fatalf("Build once: %v", err)
	}
	a2, err := b.Build(twice, SaveData{}, nil, nil)
	if err != nil {
		t.Fatalf("Build twice: %v", err)
	}
	if !reflect.DeepEqual(a1, a2) {
		t.Fatalf("once=%v twice=%v", a1, a2)
	}
}

func TestBuild_ExcludeDominatesInclude(t *testing.T) {
	lk := &fakeLookup{
		byProperty: map[string][]Coord{"Grass": {{1, 1}, {2, 2}}, "Stone": {{2, 2}}},
		byRange:    map[string][]Coord{"2,2": {{2, 2}}, "1,1": {{1, 1}}},
	}
	// A terrain exclude removes tiles added by both terrain and range includes.
	area := SpawnArea{
		UniqueAreaID:   "A",
		IncludeTerrain: ParseTerrainRules([]string{"Grass"}),
		IncludeAreas:   RangeRules([]string{"2,2"}),
		ExcludeTerrain: ParseTerrainRules([]string{"Stone"}),
	}
	got, err := NewBuilder(lk, nil).Build(area, SaveData{}, nil, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if want := []Coord{{1, 1}}; !reflect.DeepEqual(got, want) {
		t.Fatalf("got=%v want=%v", got, want)
	}
}

func TestBuild_ExcludeDominatesSavedLocations(t *testing.T) {
	lk := &fakeLookup{byRange: map[string][]Coord{"3,3": {{3, 3}}, "4,4": {{4, 4}}}}
	area := SpawnArea{
		UniqueAreaID:                "Stumps",
		Kind:                        KindLargeObject,
		FindExistingObjectLocations: true,
		ExcludeAreas:                RangeRules([]string{"3,3"}),
	}
	save := SaveData{ExistingObjectLocations: map[string][]string{"Stumps": {"3,3", "4,4"}}}
	got, err := NewBuilder(lk, nil).Build(area, save, nil, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if want := []Coord{{4, 4}}; !reflect.DeepEqual(got, want) {
		t.Fatalf("got=%v want=%v", got, want)
	}
}

func TestBuild_AllPropertyReturnsEveryTileOnce(t *testing.T) {
	all := []Coord{{0, 0}, {0, 1}, {1, 0}, {1, 1}}
	lk := &fakeLookup{byProperty: map[string][]Coord{PropertyAll: append(all, Coord{1, 1})}}
	area := SpawnArea{UniqueAreaID: "A", IncludeTerrain: ParseTerrainRules([]string{"All"})}
	got, err := NewBuilder(lk, nil).Build(area, SaveData{}, nil, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !reflect.DeepEqual(got, all) {
		t.Fatalf("got=%v want=%v", got, all)
	}
}

func TestBuild_MissingSaveDataLogsAndDegrades(t *testing.T) {
	lk := &fakeLookup{byProperty: map[string][]Coord{"Grass": {{1, 2}}}}
	base := SpawnArea{
		UniqueAreaID:   "Logs",
		Kind:           KindLargeObject,
		IncludeTerrain: ParseTerrainRules([]string{"Grass"}),
	}
	withFlag := base
	withFlag.FindExistingObjectLocations = true

	mon := &recordingMonitor{}
	b := NewBuilder(lk, mon)
	got, err := b.Build(withFlag, SaveData{}, nil, nil)
	if err != nil {
		t.Fatalf("Build with flag: %v", err)
	}
	want, err := b.Build(base, SaveData{}, nil, nil)
	if err != nil {
		t.Fatalf("Build without flag: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got=%v want=%v", got, want)
	}
	if len(mon.msgs) != 2 {
		t.Fatalf("diagnostics=%d want 2: %v", len(mon.msgs), mon.msgs)
	}
	for i, lv := range mon.levels {
		if lv != LevelInfo {
			t.Fatalf("diagnostic %d level=%s want INFO", i, lv)
		}
	}
}

func TestBuild_SavedLocationsIgnoredForOtherKinds(t *testing.T) {
	lk := &fakeLookup{byRange: map[string][]Coord{"3,3": {{3, 3}}}}
	area := SpawnArea{UniqueAreaID: "Forage", Kind: KindForage, FindExistingObjectLocations: true}
	save := SaveData{ExistingObjectLocations: map[string][]string{"Forage": {"3,3"}}}
	mon := &recordingMonitor{}
	got, err := NewBuilder(lk, mon).Build(area, save, nil, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(got) != 0 || len(mon.msgs) != 0 {
		t.Fatalf("got=%v diagnostics=%v, want none", got, mon.msgs)
	}
}

func TestBuild_LookupFailureAbortsArea(t *testing.T) {
	boom := errors.New("bad range")
	lk := &fakeLookup{
		byProperty: map[string][]Coord{"Grass": {{1, 1}}},
		failRange:  boom,
	}
	area := SpawnArea{
		UniqueAreaID:   "A",
		IncludeTerrain: ParseTerrainRules([]string{"Grass"}),
		ExcludeAreas:   RangeRules([]string{"nope"}),
	}
	got, err := NewBuilder(lk, nil).Build(area, SaveData{}, nil, nil)
	if !errors.Is(err, boom) {
		t.Fatalf("err=%v want %v", err, boom)
	}
	if got != nil {
		t.Fatalf("got=%v want nil on failure", got)
	}
}

func TestBuild_DoesNotMutateInputs(t *testing.T) {
	lk := &fakeLookup{
		byIndex: map[int][]Coord{1: {{1, 1}}},
		byRange: map[string][]Coord{"1,1": {{1, 1}}},
	}
	quarry := []int{1, 2}
	save := SaveData{ExistingObjectLocations: map[string][]string{"A": {"1,1"}}}
	snapshot := save.Clone()
	area := SpawnArea{
		UniqueAreaID:                "A",
		Kind:                        KindLargeObject,
		FindExistingObjectLocations: true,
		IncludeTerrain:              ParseTerrainRules([]string{"quarry"}),
		ExcludeAreas:                RangeRules([]string{"1,1"}),
	}
	if _, err := NewBuilder(lk, nil).Build(area, save, quarry, nil); err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !reflect.DeepEqual(quarry, []int{1, 2}) {
		t.Fatalf("quarry mutated: %v", quarry)
	}
	if !reflect.DeepEqual(save, snapshot) {
		t.Fatalf("save mutated: %v", save)
	}
}

func TestBuild_NilLookup(t *testing.T) {
	if _, err := (Builder{}).Build(SpawnArea{UniqueAreaID: "A"}, SaveData{}, nil, nil); err == nil {
		t.Fatalf("expected error for nil lookup")
	}
}
