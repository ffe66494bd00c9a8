package spawn

import (
	"context"
	"fmt"

	"tilespawn.dev/internal/monitor"
	persistlog "tilespawn.dev/internal/persistence/log"
	"tilespawn.dev/internal/protocol"
	"tilespawn.dev/internal/sim/maps"
	"tilespawn.dev/internal/sim/tiles"
)

// SaveStore persists existing object locations between runs.
type SaveStore interface {
	Load(ctx context.Context) (tiles.SaveData, error)
	PutLocations(ctx context.Context, areaID string, locs []string) error
}

type BuildWriter interface {
	WriteBuild(e persistlog.BuildEntry) error
}

type Process struct {
	Registry *maps.Registry
	Store    SaveStore
	Monitor  *monitor.Monitor
	Journals []BuildWriter

	QuarryTileIndices []int
	CustomTileIndices []int

	// Seed drives Pick for areas with a positive spawn count.
	Seed int64
}

func (p *Process) mon() *monitor.Monitor {
	if p.Monitor == nil {
		p.Monitor = monitor.New(nil)
	}
	return p.Monitor
}

// RecordExisting stores the current locations of area's object types when
// the area reuses recorded locations and has none yet. save is updated in
// place. It reports whether anything was recorded.
func (p *Process) RecordExisting(ctx context.Context, area tiles.SpawnArea, save *tiles.SaveData) (bool, error) {
	if !area.UsesExistingObjectLocations() {
		return false, nil
	}
	if _, ok := save.Locations(area.UniqueAreaID); ok {
		return false, nil
	}
	m, ok := p.Registry.Map(area.MapName)
	if !ok {
		return false, &maps.LookupError{Code: protocol.ErrUnknownMap, MapName: area.MapName, Detail: "no such map"}
	}
	locs := m.ExistingObjects(area.ObjectTypes)
	if locs == nil {
		locs = []string{}
	}
	if p.Store != nil {
		if err := p.Store.PutLocations(ctx, area.UniqueAreaID, locs); err != nil {
			return false, fmt.Errorf("record %s: %w", area.UniqueAreaID, err)
		}
	}
	if save.ExistingObjectLocations == nil {
		save.ExistingObjectLocations = map[string][]string{}
	}
	save.ExistingObjectLocations[area.UniqueAreaID] = locs
	p.mon().WithArea(area.UniqueAreaID).Log(fmt.Sprintf("Recorded %d existing object locations", len(locs)), tiles.LevelDebug)
	return true, nil
}

// Run builds every area's tile list in order. A failing area is logged,
// reported in its message, and skipped; the rest still run.
func (p *Process) Run(ctx context.Context, areas []tiles.SpawnArea, save tiles.SaveData) ([]protocol.TileListMsg, error) {
	out := make([]protocol.TileListMsg, 0, len(areas))
	for _, area := range areas {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		out = append(out, p.runArea(area, save))
	}
	return out, nil
}

func (p *Process) runArea(area tiles.SpawnArea, save tiles.SaveData) protocol.TileListMsg {
	mon := p.mon().WithArea(area.UniqueAreaID)
	msg := protocol.NewTileList(area.UniqueAreaID, area.MapName)
	entry := persistlog.BuildEntry{
		AreaID:  area.UniqueAreaID,
		MapName: area.MapName,
		Kind:    string(area.Kind),
	}

	b := tiles.NewBuilder(p.Registry, mon)
	coords, err := b.Build(area, save, p.QuarryTileIndices, p.CustomTileIndices)
	if err != nil {
		msg.ErrorCode = maps.ErrorCode(err)
		msg.Error = err.Error()
		entry.ErrorCode = msg.ErrorCode
		entry.Error = msg.Error
		mon.Log(fmt.Sprintf("Tile list failed, skipping area: %v", err), tiles.LevelError)
	} else {
		msg.Tiles = toPairs(coords)
		entry.Tiles = len(coords)
		if len(coords) == 0 {
			mon.Log("No valid tiles for this area", tiles.LevelWarn)
		}
		if area.SpawnCount > 0 {
			var occupied tiles.Set
			if m, ok := p.Registry.Map(area.MapName); ok {
				occupied = m.Occupied()
			}
			picked := Pick(coords, area.SpawnCount, AreaSeed(p.Seed, area.UniqueAreaID), occupied)
			msg.Picked = toPairs(picked)
			entry.Picked = msg.Picked
		}
	}

	for _, j := range p.Journals {
		if j == nil {
			continue
		}
		if err := j.WriteBuild(entry); err != nil {
			mon.Log(fmt.Sprintf("journal write failed: %v", err), tiles.LevelWarn)
		}
	}
	return msg
}

func toPairs(cs []tiles.Coord) [][2]int {
	out := make([][2]int, 0, len(cs))
	for _, c := range cs {
		out = append(out, [2]int{c.X, c.Y})
	}
	return out
}
