package catapi

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedBaseURL is returned by New for an unusable API base URL.
	ErrMalformedBaseURL = errors.New("malformed catalog base URL")

	// ErrEmptyResponse is wrapped in a FetchError when the catalog answered with no body.
	ErrEmptyResponse = errors.New("empty response")

	// ErrNotFound is returned by a Store for a missing entry.
	ErrNotFound = errors.New("cache entry not found")
)

// FetchError reports a transport failure or an empty catalog response.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// DecodeError reports a catalog response that does not have the expected shape.
type DecodeError struct {
	Action string
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s response: %v", e.Action, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
