package cache

import (
	"bytes"
	"encoding/json"
	"time"
)

// Record lifetimes, enforced by the Store.
const (
	IdentityTTL = time.Hour
	SnapshotTTL = 5 * time.Minute
)

// IdentityRecord maps a player name to the UUID the identity service resolved.
type IdentityRecord struct {
	// Username is the canonical casing returned by the identity service.
	Username string `json:"username"`

	// ID is the UUID as returned by the identity service (usually undashed).
	ID string `json:"id"`
}

// SnapshotRecord is a verbatim copy of an upstream player payload.
type SnapshotRecord struct {
	// FetchedAt is the fetch instant in Unix milliseconds.
	FetchedAt int64 `json:"fetchedAt"`

	// Player is the player object exactly as upstream returned it.
	Player json.RawMessage `json:"player"`
}

// NewSnapshotRecord creates a snapshot fetched at t.
func NewSnapshotRecord(t time.Time, player json.RawMessage) *SnapshotRecord {
	return &SnapshotRecord{
		FetchedAt: t.UnixMilli(),
		Player:    player,
	}
}

// Time returns FetchedAt as a time.Time in UTC.
func (r *SnapshotRecord) Time() time.Time {
	return time.UnixMilli(r.FetchedAt).UTC()
}

// Age returns how long ago the snapshot was fetched.
func (r *SnapshotRecord) Age() time.Duration {
	return time.Since(r.Time())
}

// HasPlayer reports whether the record carries a player object. Records
// written by older deployments may hold null for unknown players.
func (r *SnapshotRecord) HasPlayer() bool {
	p := bytes.TrimSpace(r.Player)
	return len(p) > 0 && !bytes.Equal(p, []byte("null"))
}
