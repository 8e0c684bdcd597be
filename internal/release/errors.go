package release

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates the requested release or asset was not found.
var ErrNotFound = errors.New("release not found")

// NetworkError indicates a transport failure or a retriable server error.
type NetworkError struct {
	URL     string
	Wrapped error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error fetching %s: %v", e.URL, e.Wrapped)
}

func (e *NetworkError) Unwrap() error { return e.Wrapped }

// ParseError indicates a response that could not be decoded.
type ParseError struct {
	URL     string
	Wrapped error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse response from %s: %v", e.URL, e.Wrapped)
}

func (e *ParseError) Unwrap() error { return e.Wrapped }
