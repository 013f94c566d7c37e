package errutil

import (
	"errors"
	"fmt"
)

// ErrNotFound marks a remote entity answered with 404. It is logged and
// treated as "no data", never retried.
var ErrNotFound = errors.New("not found")

// ValidationError rejects caller input before any network or disk I/O.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func Invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// AuthenticationError is returned when exchanging the refresh token for an
// access token fails. It indicates a configuration problem and is not retried.
type AuthenticationError struct {
	StatusCode int
	Body       string
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("refresh token could not be exchanged: token endpoint responded with status code %d", e.StatusCode)
}

// RemoteRequestError is a non-2xx response other than 401 and 404.
type RemoteRequestError struct {
	URL        string
	StatusCode int
}

func (e *RemoteRequestError) Error() string {
	return fmt.Sprintf("endpoint %s responded with status code %d", e.URL, e.StatusCode)
}

// DecodeError reports a payload that is not valid JSON.
type DecodeError struct {
	Source string
	Err    error
}

func (e *DecodeError) Error() string {
	if nil == e.Err {
		return fmt.Sprintf("malformed JSON in %s", e.Source)
	}
	return fmt.Sprintf("malformed JSON in %s: %v", e.Source, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
