package core

import "github.com/pkg/errors"

// ErrNotConfigured is returned by any operation issued while no backend
// handle is available. It must surface as a user-visible message, never a
// silent no-op.
var ErrNotConfigured = errors.New("backend not configured")

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

// ConfigError indicates malformed backend credentials, caught while
// constructing a client handle.
type ConfigError struct {
	Err error
}

func NewConfigError(err error) error {
	return &ConfigError{Err: err}
}

func (err ConfigError) Error() string {
	if err.Err == nil {
		return "invalid backend configuration"
	}
	return "invalid backend configuration: " + err.Err.Error()
}

func (err ConfigError) Unwrap() error { return err.Err }

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
