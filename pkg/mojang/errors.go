package mojang

import (
	"errors"
	"fmt"
)

// ErrProfileNotFound is returned when no profile exists for a name, or the
// profile is a demo account.
var ErrProfileNotFound = errors.New("profile not found")

// APIError is a structured error reported by the Mojang API.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("UUID resolution failed: %s: %s", e.Code, e.Message)
}
