package providers

import (
	"errors"
	"fmt"
)

// ErrMissingAPIKey is returned when a provider that needs a key has none configured.
var ErrMissingAPIKey = errors.New("news api key is missing")

// APIError is a failure reported by the provider itself, as opposed to a transport error.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "Unknown error"
	}
	if e.Code != "" {
		return fmt.Sprintf("provider error %s (status %d): %s", e.Code, e.StatusCode, msg)
	}
	return fmt.Sprintf("provider error (status %d): %s", e.StatusCode, msg)
}
