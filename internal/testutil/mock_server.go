// Package testutil provides fake upstream servers for hypixel-cache tests.
package testutil

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"time"
)

// MockResponse defines the behavior for a mock endpoint response.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// MockServer is a configurable HTTP server that counts requests per path.
type MockServer struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]http.HandlerFunc
	fallback http.HandlerFunc
	counts   map[string]int
	total    int
	last     *http.Request
}

// NewMockServer creates a mock server. Requests to paths without a
// configured handler are answered by fallback, or 404 when fallback is nil.
func NewMockServer(fallback http.HandlerFunc) *MockServer {
	m := &MockServer{
		handlers: make(map[string]http.HandlerFunc),
		fallback: fallback,
		counts:   make(map[string]int),
	}

	m.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.mu.Lock()
		m.total++
		m.counts[r.URL.Path]++
		m.last = r.Clone(r.Context())
		handler, ok := m.handlers[r.URL.Path]
		fallback := m.fallback
		m.mu.Unlock()

		switch {
		case ok:
			handler(w, r)
		case fallback != nil:
			fallback(w, r)
		default:
			http.NotFound(w, r)
		}
	}))

	return m
}

// URL returns the mock server URL.
func (m *MockServer) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockServer) Close() {
	m.server.Close()
}

// Reset clears all request counters.
func (m *MockServer) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.total = 0
	m.counts = make(map[string]int)
	m.last = nil
}

// SetHandler sets a custom handler for a specific path.
func (m *MockServer) SetHandler(path string, handler http.HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetResponse configures a fixed response for a path.
func (m *MockServer) SetResponse(path string, resp MockResponse) {
	m.SetHandler(path, resp.Handler())
}

// RequestCount returns the number of requests received.
func (m *MockServer) RequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.total
}

// PathCount returns the number of requests received for path.
func (m *MockServer) PathCount(path string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.counts[path]
}

// LastRequest returns a copy of the most recent request, or nil.
func (m *MockServer) LastRequest() *http.Request {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.last
}

// Handler returns an http.HandlerFunc that writes resp.
func (resp MockResponse) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if resp.Delay > 0 {
			select {
			case <-time.After(resp.Delay):
			case <-r.Context().Done():
				return
			}
		}

		for key, value := range resp.Headers {
			w.Header().Set(key, value)
		}
		if resp.Body != "" && w.Header().Get("Content-Type") == "" {
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
		}

		w.WriteHeader(resp.StatusCode)
		if resp.Body != "" {
			_, _ = w.Write([]byte(resp.Body))
		}
	}
}
