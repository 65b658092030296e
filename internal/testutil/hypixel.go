package testutil

import (
	"fmt"
	"net/http"
	"strings"
	"sync"
)

// PlayerPath is the Hypixel player endpoint path.
const PlayerPath = "/player"

// MockHypixel is a fake Hypixel player API keyed by the uuid query parameter.
// Unknown players answer {"success":true,"player":null}.
type MockHypixel struct {
	*MockServer

	mu      sync.RWMutex
	apiKey  string
	players map[string]MockResponse
}

// NewMockHypixel creates a fake Hypixel API that accepts apiKey.
func NewMockHypixel(apiKey string) *MockHypixel {
	m := &MockHypixel{
		apiKey:  apiKey,
		players: make(map[string]MockResponse),
	}
	m.MockServer = NewMockServer(nil)
	m.SetHandler(PlayerPath, m.handlePlayer)
	return m
}

func (m *MockHypixel) handlePlayer(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("key") != m.apiKey {
		NewHypixelErrorResponse(http.StatusForbidden, "Invalid API key").Handler()(w, r)
		return
	}

	id := strings.ToLower(r.URL.Query().Get("uuid"))

	m.mu.RLock()
	resp, ok := m.players[id]
	m.mu.RUnlock()

	if !ok {
		resp = NewPlayerResponse("null")
	}
	resp.Handler()(w, r)
}

// SetPlayer configures the response for a normalized uuid.
func (m *MockHypixel) SetPlayer(id string, resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.players[strings.ToLower(id)] = resp
}

// FetchCount returns how many player requests were received.
func (m *MockHypixel) FetchCount() int {
	return m.PathCount(PlayerPath)
}

// NewPlayerResponse creates a successful player response with quota headers.
// player is the raw JSON of the player object.
func NewPlayerResponse(player string) MockResponse {
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       fmt.Sprintf(`{"success":true,"player":%s}`, player),
		Headers: map[string]string{
			"RateLimit-Limit":     "300",
			"RateLimit-Remaining": "299",
			"RateLimit-Reset":     "60",
		},
	}
}

// NewHypixelRateLimitResponse creates a 429 Too Many Requests response.
func NewHypixelRateLimitResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusTooManyRequests,
		Body:       `{"success":false,"cause":"Key throttle","throttle":true}`,
		Headers: map[string]string{
			"RateLimit-Limit":     "300",
			"RateLimit-Remaining": "0",
			"RateLimit-Reset":     "30",
		},
	}
}

// NewHypixelErrorResponse creates an unsuccessful response with a cause.
func NewHypixelErrorResponse(status int, cause string) MockResponse {
	return MockResponse{
		StatusCode: status,
		Body:       fmt.Sprintf(`{"success":false,"cause":%q}`, cause),
	}
}
