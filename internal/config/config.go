package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"tilespawn.dev/internal/sim/tiles"
	"tilespawn.dev/schemas"
)

type Config struct {
	QuarryTileIndices []int      `yaml:"quarry_tile_indices"`
	CustomTileIndices []int      `yaml:"custom_tile_indices"`
	Areas             []AreaSpec `yaml:"areas"`
}

type AreaSpec struct {
	Kind         string `yaml:"kind"`
	MapName      string `yaml:"map_name"`
	UniqueAreaID string `yaml:"unique_area_id"`

	IncludeTerrainTypes []string `yaml:"include_terrain_types"`
	ExcludeTerrainTypes []string `yaml:"exclude_terrain_types"`
	IncludeAreas        []string `yaml:"include_areas"`
	ExcludeAreas        []string `yaml:"exclude_areas"`

	FindExistingObjectLocations bool     `yaml:"find_existing_object_locations"`
	ObjectTypes                 []string `yaml:"object_types"`

	SpawnCount int `yaml:"spawn_count"`
}

// DefaultQuarryTileIndices are the tile indices of the quarry terrain on the
// stock maps.
var DefaultQuarryTileIndices = []int{556, 558, 583, 606, 607, 608, 630, 635, 636, 680, 681, 685}

func Load(path string) (Config, error) {
	cfg := defaults()
	if strings.TrimSpace(path) == "" {
		cfg.Normalize()
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := schemas.ValidateYAML(schemas.SpawnAreas, b); err != nil {
		return cfg, fmt.Errorf("spawn_areas.yaml: %w", err)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("spawn_areas.yaml: %w", err)
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("spawn_areas.yaml: %w", err)
	}
	return cfg, nil
}

func defaults() Config {
	return Config{
		QuarryTileIndices: append([]int(nil), DefaultQuarryTileIndices...),
		CustomTileIndices: []int{},
	}
}

// Normalize trims names, fills the default kind, and assigns unique ids to
// areas that have none or repeat an earlier one ("<map> <n>").
func (c *Config) Normalize() {
	if c == nil {
		return
	}
	seen := map[string]bool{}
	for i := range c.Areas {
		a := &c.Areas[i]
		a.MapName = strings.TrimSpace(a.MapName)
		a.UniqueAreaID = strings.TrimSpace(a.UniqueAreaID)
		a.Kind = strings.ToLower(strings.TrimSpace(a.Kind))
		if a.Kind == "" {
			a.Kind = string(tiles.KindForage)
		}
		a.IncludeTerrainTypes = trimAll(a.IncludeTerrainTypes)
		a.ExcludeTerrainTypes = trimAll(a.ExcludeTerrainTypes)
		a.IncludeAreas = trimAll(a.IncludeAreas)
		a.ExcludeAreas = trimAll(a.ExcludeAreas)
		a.ObjectTypes = trimAll(a.ObjectTypes)

		if a.UniqueAreaID == "" || seen[a.UniqueAreaID] {
			for n := i + 1; ; n++ {
				id := fmt.Sprintf("%s %d", a.MapName, n)
				if !seen[id] && !c.idTakenAfter(i, id) {
					a.UniqueAreaID = id
					break
				}
			}
		}
		seen[a.UniqueAreaID] = true
	}
}

// idTakenAfter reports whether an area after index i explicitly uses id.
func (c *Config) idTakenAfter(i int, id string) bool {
	for j := i + 1; j < len(c.Areas); j++ {
		if strings.TrimSpace(c.Areas[j].UniqueAreaID) == id {
			return true
		}
	}
	return false
}

func (c Config) Validate() error {
	for i, idx := range c.QuarryTileIndices {
		if idx < 0 {
			return fmt.Errorf("quarry_tile_indices[%d] must be >= 0", i)
		}
	}
	for i, idx := range c.CustomTileIndices {
		if idx < 0 {
			return fmt.Errorf("custom_tile_indices[%d] must be >= 0", i)
		}
	}
	seen := map[string]bool{}
	for i, a := range c.Areas {
		if a.MapName == "" {
			return fmt.Errorf("areas[%d] map_name must not be empty", i)
		}
		if a.UniqueAreaID == "" {
			return fmt.Errorf("areas[%d] unique_area_id must not be empty", i)
		}
		if seen[a.UniqueAreaID] {
			return fmt.Errorf("duplicate unique_area_id: %s", a.UniqueAreaID)
		}
		seen[a.UniqueAreaID] = true
		if !tiles.AreaKind(a.Kind).Valid() {
			return fmt.Errorf("area %s kind %q unknown", a.UniqueAreaID, a.Kind)
		}
		if a.FindExistingObjectLocations && tiles.AreaKind(a.Kind) != tiles.KindLargeObject {
			return fmt.Errorf("area %s find_existing_object_locations requires kind large_object", a.UniqueAreaID)
		}
		if a.SpawnCount < 0 {
			return fmt.Errorf("area %s spawn_count must be >= 0", a.UniqueAreaID)
		}
		for _, t := range a.IncludeTerrainTypes {
			if t == "" {
				return fmt.Errorf("area %s has empty include_terrain_types entry", a.UniqueAreaID)
			}
		}
		for _, t := range a.ExcludeTerrainTypes {
			if t == "" {
				return fmt.Errorf("area %s has empty exclude_terrain_types entry", a.UniqueAreaID)
			}
		}
	}
	return nil
}

// SpawnAreas compiles the area specs into builder input. Terrain tokens are
// resolved into typed rules here, once.
func (c Config) SpawnAreas() []tiles.SpawnArea {
	out := make([]tiles.SpawnArea, 0, len(c.Areas))
	for _, a := range c.Areas {
		out = append(out, a.Compile())
	}
	return out
}

func (a AreaSpec) Compile() tiles.SpawnArea {
	return tiles.SpawnArea{
		MapName:                     a.MapName,
		UniqueAreaID:                a.UniqueAreaID,
		Kind:                        tiles.AreaKind(a.Kind),
		IncludeTerrain:              tiles.ParseTerrainRules(a.IncludeTerrainTypes),
		IncludeAreas:                tiles.RangeRules(a.IncludeAreas),
		ExcludeTerrain:              tiles.ParseTerrainRules(a.ExcludeTerrainTypes),
		ExcludeAreas:                tiles.RangeRules(a.ExcludeAreas),
		FindExistingObjectLocations: a.FindExistingObjectLocations,
		ObjectTypes:                 append([]string(nil), a.ObjectTypes...),
		SpawnCount:                  a.SpawnCount,
	}
}

// AreaByID returns the compiled area with the given unique id.
func (c Config) AreaByID(id string) (tiles.SpawnArea, bool) {
	for _, a := range c.Areas {
		if a.UniqueAreaID == id {
			return a.Compile(), true
		}
	}
	return tiles.SpawnArea{}, false
}

func trimAll(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, 0, len(in))
	for _, s := range in {
		out = append(out, strings.TrimSpace(s))
	}
	return out
}
