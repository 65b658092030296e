package hypixel

import (
	"bytes"
	"encoding/json"
)

// PlayerResponse is the body of GET /player.
type PlayerResponse struct {
	Success bool   `json:"success"`
	Cause   string `json:"cause,omitempty"`

	// Player is kept verbatim. It is absent or null for unknown players.
	Player json.RawMessage `json:"player"`
}

// HasPlayer reports whether the response carries a player object.
func (r *PlayerResponse) HasPlayer() bool {
	p := bytes.TrimSpace(r.Player)
	return len(p) > 0 && !bytes.Equal(p, []byte("null"))
}
