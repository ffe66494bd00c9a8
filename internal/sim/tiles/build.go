package tiles

import "fmt"

// Lookup resolves rules to coordinates within the area's map.
type Lookup interface {
	TilesByIndex(area SpawnArea, indices []int) (Set, error)
	TilesByProperty(area SpawnArea, property string) (Set, error)
	TilesByRangeString(area SpawnArea, rangeString string) (Set, error)
}

type LogLevel uint8

const (
	LevelTrace LogLevel = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
	LevelAlert
)

func (l LogLevel) String() string {
	switch l {
	case LevelTrace:
		return "TRACE"
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	case LevelAlert:
		return "ALERT"
	default:
		return fmt.Sprintf("LEVEL(%d)", uint8(l))
	}
}

// Monitor is a fire-and-forget diagnostic sink.
type Monitor interface {
	Log(message string, level LogLevel)
}

type nopMonitor struct{}

func (nopMonitor) Log(string, LogLevel) {}

// Builder computes the tiles eligible for spawning in a SpawnArea.
// It holds no mutable state; one Builder may serve concurrent calls as long
// as its Lookup is safe for concurrent use.
type Builder struct {
	Lookup  Lookup
	Monitor Monitor
}

func NewBuilder(lookup Lookup, mon Monitor) Builder {
	return Builder{Lookup: lookup, Monitor: mon}
}

// Build evaluates area's rules: terrain includes, range includes, recorded
// object locations, terrain excludes, range excludes. Excludes always win.
// The returned order is X-then-Y and carries no meaning.
//
// Lookup failures abort the whole area and are returned wrapped.
func (b Builder) Build(area SpawnArea, save SaveData, quarry, custom []int) ([]Coord, error) {
	if b.Lookup == nil {
		return nil, fmt.Errorf("area %s: nil lookup", area.UniqueAreaID)
	}
	mon := b.Monitor
	if mon == nil {
		mon = nopMonitor{}
	}

	valid := NewSet()

	for _, r := range area.IncludeTerrain {
		s, err := b.resolve(area, r, quarry, custom)
		if err != nil {
			return nil, err
		}
		valid.Union(s)
	}
	for _, r := range area.IncludeAreas {
		s, err := b.resolve(area, r, quarry, custom)
		if err != nil {
			return nil, err
		}
		valid.Union(s)
	}

	if area.UsesExistingObjectLocations() {
		if locs, ok := save.Locations(area.UniqueAreaID); ok {
			for _, loc := range locs {
				s, err := b.resolve(area, RangeRule(loc), quarry, custom)
				if err != nil {
					return nil, err
				}
				valid.Union(s)
			}
		} else {
			mon.Log(fmt.Sprintf("Issue: This area never saved its object location data: %s", area.UniqueAreaID), LevelInfo)
			mon.Log("FindExistingObjectLocations will not function for this area. Please report this to the mod's author.", LevelInfo)
		}
	}

	for _, r := range area.ExcludeTerrain {
		s, err := b.resolve(area, r, quarry, custom)
		if err != nil {
			return nil, err
		}
		valid.Except(s)
	}
	for _, r := range area.ExcludeAreas {
		s, err := b.resolve(area, r, quarry, custom)
		if err != nil {
			return nil, err
		}
		valid.Except(s)
	}

	return valid.Sorted(), nil
}

func (b Builder) resolve(area SpawnArea, r Rule, quarry, custom []int) (Set, error) {
	var (
		s   Set
		err error
	)
	switch r.Kind {
	case RuleIndex:
		indices := quarry
		if r.List == IndexCustom {
			indices = custom
		}
		s, err = b.Lookup.TilesByIndex(area, indices)
	case RuleProperty:
		s, err = b.Lookup.TilesByProperty(area, r.Property)
	case RuleRange:
		s, err = b.Lookup.TilesByRangeString(area, r.Range)
	default:
		return nil, fmt.Errorf("area %s: unknown rule kind %s", area.UniqueAreaID, r.Kind)
	}
	if err != nil {
		return nil, fmt.Errorf("area %s: %s rule %q: %w", area.UniqueAreaID, r.Kind, r.String(), err)
	}
	return s, nil
}
