// Package ratelimit tracks the Hypixel API key quota and gates requests.
// It reads the RateLimit-Limit, RateLimit-Remaining and RateLimit-Reset
// response headers and records them in the shared cache store, so that every
// instance of the proxy sees the same quota window.
package ratelimit

import (
	"time"
)

// Store key for the shared quota state.
const StateKey = "hypixel:rate_limit"

// Response headers reported by the Hypixel API.
const (
	HeaderLimit     = "RateLimit-Limit"
	HeaderRemaining = "RateLimit-Remaining"
	HeaderReset     = "RateLimit-Reset"
)

// State is the last observed quota window of the upstream API key.
type State struct {
	// Limit is the number of requests allowed per window (0 if unknown).
	Limit int `json:"limit"`

	// Remaining is the number of requests left in the current window.
	Remaining int `json:"remaining"`

	// ResetAt is when the current window ends.
	ResetAt time.Time `json:"reset_at"`

	// UpdatedAt is when the headers were observed.
	UpdatedAt time.Time `json:"updated_at"`
}

// Exhausted reports whether the window has no requests left and has not yet
// reset.
func (s *State) Exhausted(now time.Time) bool {
	return s.Remaining <= 0 && now.Before(s.ResetAt)
}

// TimeUntilReset returns the duration until the window resets.
// Returns 0 if the reset time has already passed.
func (s *State) TimeUntilReset(now time.Time) time.Duration {
	d := s.ResetAt.Sub(now)
	if d < 0 {
		return 0
	}
	return d
}
