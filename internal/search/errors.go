package search

import (
	"errors"
	"fmt"
)

// ErrMissingAPIKey is carried by responses when no SerpAPI key is configured.
var ErrMissingAPIKey = errors.New("search API key is not configured")

// Error represents a failed search call.
type Error struct {
	Query      string
	StatusCode int
	Message    string
	Cause      error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("search error for %q: %s", e.Query, e.Message)
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("search error for %q (status %d): %s", e.Query, e.StatusCode, e.Message)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Cause
}
