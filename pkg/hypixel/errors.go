package hypixel

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrRateLimited is returned when the API key quota is exhausted, either
// reported by upstream with 429 or known locally from the last quota headers.
var ErrRateLimited = errors.New("hypixel rate limited")

// ErrorClass represents a classification of upstream failures.
type ErrorClass string

const (
	// ErrorClassClient represents 4xx client errors.
	ErrorClassClient ErrorClass = "client"

	// ErrorClassServer represents 5xx server errors.
	ErrorClassServer ErrorClass = "server"

	// ErrorClassRateLimit represents 429 rate limit errors.
	ErrorClassRateLimit ErrorClass = "rate_limit"

	// ErrorClassNetwork represents network/timeout errors.
	ErrorClassNetwork ErrorClass = "network"

	// ErrorClassUnsuccessful represents a 200 response with success=false.
	ErrorClassUnsuccessful ErrorClass = "unsuccessful"
)

// APIError is a non-success response from the Hypixel API.
type APIError struct {
	StatusCode int
	ErrorClass ErrorClass

	// Cause is the upstream "cause" field, if any.
	Cause string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("API request failed: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// classifyStatus categorizes a non-success status code.
func classifyStatus(statusCode int) ErrorClass {
	switch {
	case statusCode == http.StatusTooManyRequests:
		return ErrorClassRateLimit
	case statusCode >= 400 && statusCode < 500:
		return ErrorClassClient
	case statusCode >= 500:
		return ErrorClassServer
	default:
		return ErrorClassUnsuccessful
	}
}
