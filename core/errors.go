package core

import "github.com/pkg/errors"

// FieldError ties a rejected input value to the request field it came in on,
// e.g. a malformed phone number on a checkout submission.
type FieldError struct {
	Field string
	Error string
}

// ValidationError reports a request that was understood but rejected.
// Fields carries the per-field breakdown when one exists; handlers render it
// as a 400 with the field map in the body.
type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{Err: err, Fields: flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

// Unwrap exposes the underlying cause so sentinel checks
// (errors.Is against checkout sentinels and friends) see through the wrapper.
func (err ValidationError) Unwrap() error { return err.Err }

// shutdown signals an unrecoverable condition; the API error handler
// uses it to trigger a graceful stop instead of serving on.
type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s *shutdown) Error() string {
	return s.message
}

// IsShutdown reports whether err (or its cause) demands a shutdown.
func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
