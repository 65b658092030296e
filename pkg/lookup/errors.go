package lookup

import (
	"errors"
	"fmt"
)

// Kind classifies a lookup failure.
type Kind string

const (
	KindInvalidInput          Kind = "invalid_input"
	KindNotFound              Kind = "not_found"
	KindUnauthorized          Kind = "unauthorized"
	KindRateLimited           Kind = "rate_limited"
	KindUpstreamError         Kind = "upstream_error"
	KindInternalInconsistency Kind = "internal_inconsistency"
	KindUnexpected            Kind = "unexpected"
)

// Error is a classified lookup failure. Message is safe to show to clients.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Message == "" && e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Err
}

// Failures with fixed client-facing messages.
var (
	ErrInvalidUUID     = &Error{Kind: KindInvalidInput, Message: "Invalid UUID"}
	ErrInvalidUsername = &Error{Kind: KindInvalidInput, Message: "Invalid username"}
	ErrNotFound        = &Error{Kind: KindNotFound, Message: "Not found"}
	ErrPlayerNotFound  = &Error{Kind: KindNotFound, Message: "Player not found"}
	ErrUnauthorized    = &Error{Kind: KindUnauthorized, Message: "Invalid API key"}
	ErrRateLimited     = &Error{Kind: KindRateLimited, Message: "Ratelimited, try again later"}
	ErrNameMismatch    = &Error{Kind: KindInternalInconsistency, Message: "Provided and resolved username mismatch"}
)

// KindOf returns the Kind of err. Errors that are not an *Error are
// KindUnexpected.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnexpected
}

func upstreamError(err error) *Error {
	return &Error{Kind: KindUpstreamError, Message: err.Error(), Err: err}
}

func unexpected(op string, err error) *Error {
	return &Error{Kind: KindUnexpected, Message: fmt.Sprintf("%s: %v", op, err), Err: err}
}
