package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors used across layers.
var (
	ErrConfiguration = errors.New("missing configuration")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrNotFound      = errors.New("not found")
	ErrRateLimited   = errors.New("rate limit exceeded, please try again later")
	ErrInvalidInput  = errors.New("invalid input")
)

// TransportError is any other non-2xx response or network failure.
// StatusCode is zero when no response was received.
type TransportError struct {
	StatusCode int
	Status     string
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("transport error: %v", e.Err)
	}
	return fmt.Sprintf("API error: %d %s", e.StatusCode, e.Status)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Error kinds reported in command envelopes.
const (
	KindConfiguration = "configuration"
	KindUnauthorized  = "unauthorized"
	KindNotFound      = "not_found"
	KindRateLimited   = "rate_limited"
	KindInvalidInput  = "invalid_input"
	KindTransport     = "transport"
	KindInternal      = "internal"
)

// ErrorKind maps err onto a stable kind string. Nil maps to "".
func ErrorKind(err error) string {
	var te *TransportError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrConfiguration):
		return KindConfiguration
	case errors.Is(err, ErrUnauthorized):
		return KindUnauthorized
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrRateLimited):
		return KindRateLimited
	case errors.Is(err, ErrInvalidInput):
		return KindInvalidInput
	case errors.As(err, &te):
		return KindTransport
	default:
		return KindInternal
	}
}
