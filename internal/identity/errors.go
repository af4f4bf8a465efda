package identity

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

var (
	// the endpoint answered that the session has no user (401/403)
	ErrUnauthenticated = errors.New("not authenticated")
	// the endpoint answered 429
	ErrRateLimited = errors.New("identity endpoint rate limited")
	// any other non-2xx answer
	ErrUnavailable = errors.New("identity endpoint unavailable")
	// the answer could not be turned into a user
	ErrDecode = errors.New("malformed identity response")
)

// StatusError carries a non-2xx answer. It unwraps to one of the sentinels
// above.
type StatusError struct {
	Code       int
	Message    string
	RetryAfter time.Duration
	kind       error
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("identity endpoint returned %d: %s", e.Code, e.Message)
	}

	return fmt.Sprintf("identity endpoint returned %d", e.Code)
}

func (e *StatusError) Unwrap() error {
	return e.kind
}

// TransportError means no HTTP answer was received.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// reports whether err is a network-level failure
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

func statusError(code int, message string, retryAfter time.Duration) *StatusError {
	kind := ErrUnavailable

	switch code {
	case http.StatusUnauthorized, http.StatusForbidden:
		kind = ErrUnauthenticated
	case http.StatusTooManyRequests:
		kind = ErrRateLimited
	}

	return &StatusError{
		Code:       code,
		Message:    message,
		RetryAfter: retryAfter,
		kind:       kind,
	}
}
