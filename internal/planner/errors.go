package planner

import (
	"errors"
	"fmt"
)

var (
	// ErrTransport covers connection failures and timeouts.
	ErrTransport = errors.New("planner: transport failure")
	// ErrStatus covers any non-2xx reply.
	ErrStatus = errors.New("planner: unexpected status")
	// ErrMalformed covers bodies that cannot be decoded into a result.
	ErrMalformed = errors.New("planner: malformed response")

	errMissingHost = errors.New("planner: base url has no host")
)

func errInvalidScheme(scheme string) error {
	return fmt.Errorf("planner: base url scheme must be http or https, got %q", scheme)
}

// StatusError carries the HTTP status of a rejected request.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("planner: status %d", e.Code)
	}
	return fmt.Sprintf("planner: status %d: %s", e.Code, e.Body)
}

// Unwrap lets errors.Is(err, ErrStatus) match.
func (e *StatusError) Unwrap() error { return ErrStatus }

// IsFailure reports whether err is one of the client's failure kinds, as
// opposed to a local programming error.
func IsFailure(err error) bool {
	return errors.Is(err, ErrTransport) || errors.Is(err, ErrStatus) || errors.Is(err, ErrMalformed)
}
