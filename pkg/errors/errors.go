// Package errors provides structured error types for genposter.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI, the web panel and the library
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input validation failures, reported before any drawing starts
//   - NOT_FOUND: Missing presets or cache entries
//   - INTERNAL_*: Unexpected internal errors
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidParameter, "width must be positive, got %d", w)
//	if errors.Is(err, errors.ErrCodeInvalidParameter) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidColor, origErr, "background %q", raw)
//
//	// Name the parameter at fault; FieldOf finds it anywhere in the chain
//	err := errors.Invalid("wobble", "wobble must be within [0, %v]", max)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidParameter Code = "INVALID_PARAMETER"
	ErrCodeInvalidColor     Code = "INVALID_COLOR"
	ErrCodeInvalidFormat    Code = "INVALID_FORMAT"
	ErrCodeInvalidPreset    Code = "INVALID_PRESET"

	// Resource not found errors
	ErrCodeNotFound Code = "NOT_FOUND"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a coded error. Field names the poster parameter at fault when
// the error comes from validating one, so surfaces can point at the input.
type Error struct {
	Code    Code
	Field   string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	msg := string(e.Code) + ": " + e.Message
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Cause }

// New creates an Error with a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an Error around cause.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Invalid reports a bad value for the named parameter.
func Invalid(field, format string, args ...any) *Error {
	return &Error{Code: ErrCodeInvalidParameter, Field: field, Message: fmt.Sprintf(format, args...)}
}

// WithField sets the offending parameter and returns e.
func (e *Error) WithField(field string) *Error {
	e.Field = field
	return e
}

// Is reports whether the first *Error in err's chain has code.
func Is(err error, code Code) bool {
	return GetCode(err) == code && code != ""
}

// GetCode returns the code of the first *Error in err's chain, or "".
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// FieldOf returns the parameter name carried anywhere in err's chain, or "".
func FieldOf(err error) string {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return ""
		}
		if e.Field != "" {
			return e.Field
		}
		err = e.Cause
	}
	return ""
}

// UserMessage returns err without code prefixes. A cause that is itself a
// coded error is appended after a colon.
func UserMessage(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return err.Error()
	}
	var inner *Error
	if e.Cause != nil && errors.As(e.Cause, &inner) {
		return e.Message + ": " + UserMessage(e.Cause)
	}
	return e.Message
}
