// Package errors defines the failure taxonomy surfaced by the view-state
// engine: validation (local, pre-flight), not found (target vanished
// upstream) and transport (backing store unreachable or faulty).
//
// Usage:
//
//	if errors.Is(err, errors.ErrNotFound) {
//	    // the bookmark was deleted elsewhere; refresh and tell the user
//	}
//
//	var domainErr *errors.Error
//	if errors.As(err, &domainErr) && domainErr.Code == errors.CodeValidation {
//	    fields := domainErr.Details
//	}
package errors

import (
	"errors"
	"fmt"
)

// Re-export standard library functions for convenience.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	Join   = errors.Join
)

// Code represents a machine-readable error code.
type Code string

// Error codes used throughout the engine.
const (
	CodeValidation Code = "VALIDATION"
	CodeNotFound   Code = "NOT_FOUND"
	CodeTransport  Code = "TRANSPORT"
)

// Error is a domain error with a code, message, and optional details.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
	cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports whether target matches this error.
// Matches if target is an *Error with the same Code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// WithDetails returns a new error with additional details.
func (e *Error) WithDetails(details any) *Error {
	return &Error{Code: e.Code, Message: e.Message, Details: details, cause: e.cause}
}

// WithCause wraps an underlying error.
func (e *Error) WithCause(err error) *Error {
	return &Error{Code: e.Code, Message: e.Message, Details: e.Details, cause: err}
}

// Sentinel errors for use with errors.Is().
var (
	ErrValidation = &Error{Code: CodeValidation, Message: "validation error"}
	ErrNotFound   = &Error{Code: CodeNotFound, Message: "not found"}
	ErrTransport  = &Error{Code: CodeTransport, Message: "transport error"}
)

// Validation creates a validation error.
func Validation(msg string) *Error {
	return &Error{Code: CodeValidation, Message: msg}
}

// ValidationWithDetails creates a validation error carrying per-field messages.
func ValidationWithDetails(msg string, details any) *Error {
	return &Error{Code: CodeValidation, Message: msg, Details: details}
}

// NotFound creates a not found error.
func NotFound(msg string) *Error {
	return &Error{Code: CodeNotFound, Message: msg}
}

// NotFoundf creates a not found error with a formatted message.
func NotFoundf(format string, args ...any) *Error {
	return NotFound(fmt.Sprintf(format, args...))
}

// Transport wraps a backing store failure.
func Transport(msg string, cause error) *Error {
	return &Error{Code: CodeTransport, Message: msg, cause: cause}
}

// CodeOf returns the code of the first domain error in err's chain,
// or an empty Code.
func CodeOf(err error) Code {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return ""
}

// AsTransport leaves validation and not found errors untouched and maps
// everything else to a transport error with msg as context.
func AsTransport(msg string, err error) error {
	if err == nil {
		return nil
	}
	switch CodeOf(err) {
	case CodeValidation, CodeNotFound, CodeTransport:
		return fmt.Errorf("%s: %w", msg, err)
	}
	return Transport(msg, err)
}
