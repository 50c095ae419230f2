package core

import (
	"fmt"

	"github.com/pkg/errors"
)

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

// NewFieldError returns a ValidationError for a single field.
func NewFieldError(field, msg string) error {
	return &ValidationError{Err: errors.New(msg), Fields: []FieldError{{Field: field, Error: msg}}}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

// NotFoundError reports a missing record of a given kind.
type NotFoundError struct {
	Kind string
	ID   string
}

func (err *NotFoundError) Error() string {
	if err.ID == "" {
		return err.Kind + " not found"
	}
	return fmt.Sprintf("%s %q not found", err.Kind, err.ID)
}

// Is matches any *NotFoundError of the same Kind, so sentinels like
// `&NotFoundError{Kind: "course"}` work with errors.Is.
func (err *NotFoundError) Is(target error) bool {
	t, ok := target.(*NotFoundError)
	return ok && t.Kind == err.Kind && (t.ID == "" || t.ID == err.ID)
}

// IsNotFound reports whether the root cause of err is a *NotFoundError.
func IsNotFound(err error) bool {
	_, ok := errors.Cause(err).(*NotFoundError)
	return ok
}

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
