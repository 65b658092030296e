package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/Sternrassler/hypixel-cache/pkg/lookup"
	"github.com/rs/zerolog/log"
)

// TimestampFormat is ISO-8601 in UTC with millisecond precision.
const TimestampFormat = "2006-01-02T15:04:05.000Z"

// FormatTimestamp formats t for the fetchedAt field.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampFormat)
}

type lookupResponse struct {
	Success   bool            `json:"success"`
	Cached    bool            `json:"cached"`
	FetchedAt string          `json:"fetchedAt"`
	Username  string          `json:"username"`
	UUID      string          `json:"uuid"`
	Player    json.RawMessage `json:"player"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

type readyResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// statusFor maps a lookup failure to its HTTP status.
func statusFor(err error) int {
	switch lookup.KindOf(err) {
	case lookup.KindInvalidInput:
		return http.StatusBadRequest
	case lookup.KindUnauthorized:
		return http.StatusUnauthorized
	case lookup.KindNotFound:
		return http.StatusNotFound
	case lookup.KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("Failed to write response")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Success: false, Error: message})
}
