package protocol

import "sort"

// TILE_LIST (one line per area)
type TileListMsg struct {
	Type            string   `json:"type"`
	ProtocolVersion string   `json:"protocol_version"`
	AreaID          string   `json:"area_id"`
	MapName         string   `json:"map_name"`
	Tiles           [][2]int `json:"tiles"`
	Picked          [][2]int `json:"picked,omitempty"`
	ErrorCode       string   `json:"error_code,omitempty"`
	Error           string   `json:"error,omitempty"`
}

func NewTileList(areaID, mapName string) TileListMsg {
	return TileListMsg{
		Type:            TypeTileList,
		ProtocolVersion: Version,
		AreaID:          areaID,
		MapName:         mapName,
		Tiles:           [][2]int{},
	}
}

// SAVE_DUMP
type SaveDumpMsg struct {
	Type                    string              `json:"type"`
	ProtocolVersion         string              `json:"protocol_version"`
	ExistingObjectLocations map[string][]string `json:"existing_object_locations"`
}

func NewSaveDump(locs map[string][]string) SaveDumpMsg {
	out := make(map[string][]string, len(locs))
	for id, l := range locs {
		cp := append([]string(nil), l...)
		sort.Strings(cp)
		out[id] = cp
	}
	return SaveDumpMsg{
		Type:                    TypeSaveDump,
		ProtocolVersion:         Version,
		ExistingObjectLocations: out,
	}
}
