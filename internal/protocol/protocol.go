package protocol

import "encoding/json"

const Version = "1.0"

// Message types.
const (
	TypeTileList = "TILE_LIST"
	TypeSaveDump = "SAVE_DUMP"
)

// BaseMessage lets readers route JSONL output lines by type.
type BaseMessage struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version,omitempty"`
}

func DecodeBase(b []byte) (BaseMessage, error) {
	var m BaseMessage
	err := json.Unmarshal(b, &m)
	return m, err
}
