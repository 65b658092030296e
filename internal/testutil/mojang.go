package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// ProfilePathPrefix is the Mojang profile lookup path.
const ProfilePathPrefix = "/users/profiles/minecraft/"

// MockMojang is a fake Mojang profile API. Unknown names answer 204.
type MockMojang struct {
	*MockServer
}

// NewMockMojang creates a fake Mojang API with no known profiles.
func NewMockMojang() *MockMojang {
	return &MockMojang{
		MockServer: NewMockServer(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}),
	}
}

// ProfilePath returns the request path for name.
func ProfilePath(name string) string {
	return ProfilePathPrefix + name
}

// AddProfile makes name resolve to id with the given canonical casing.
// Lookups with any casing of canonical are answered.
func (m *MockMojang) AddProfile(canonical, id string) {
	body, _ := json.Marshal(map[string]string{"id": id, "name": canonical})
	for _, name := range []string{canonical, strings.ToLower(canonical), strings.ToUpper(canonical)} {
		m.SetResponse(ProfilePath(name), MockResponse{
			StatusCode: http.StatusOK,
			Body:       string(body),
		})
	}
}

// SetDemo makes name resolve to a demo account.
func (m *MockMojang) SetDemo(name, id string) {
	m.SetResponse(ProfilePath(name), MockResponse{
		StatusCode: http.StatusOK,
		Body:       fmt.Sprintf(`{"id":%q,"name":%q,"demo":true}`, id, name),
	})
}

// SetError makes lookups of name fail with a structured Mojang error.
func (m *MockMojang) SetError(name string, status int, code, message string) {
	m.SetResponse(ProfilePath(name), MockResponse{
		StatusCode: status,
		Body:       fmt.Sprintf(`{"error":%q,"errorMessage":%q}`, code, message),
	})
}

// LookupCount returns how many times name was looked up with exactly that casing.
func (m *MockMojang) LookupCount(name string) int {
	return m.PathCount(ProfilePath(name))
}
