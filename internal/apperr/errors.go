// Package apperr defines the typed error taxonomy shared by every core
// operation. Errors carry a stable machine-readable code and a short
// message; internal store failures are wrapped and never expose driver
// details to callers.
package apperr

import (
	"errors"
	"fmt"
)

// Code is a stable machine-readable error category.
type Code string

const (
	CodeNotAuthenticated  Code = "NOT_AUTHENTICATED"
	CodeNotFound          Code = "NOT_FOUND"
	CodeForbidden         Code = "FORBIDDEN"
	CodeInvalidTransition Code = "INVALID_TRANSITION"
	CodeValidation        Code = "VALIDATION"
	CodeConflict          Code = "CONFLICT"
	CodeInternal          Code = "INTERNAL"
)

// Error is a tagged application error.
type Error struct {
	Code    Code
	Message string
	wrapped error
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Code)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.wrapped }

// Is lets errors.Is match two apperr values by code alone.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// NotAuthenticated is returned when no valid actor context is present.
// It always surfaces before any resource lookup.
func NotAuthenticated() *Error {
	return &Error{Code: CodeNotAuthenticated, Message: "authentication required"}
}

// NotFound reports a missing entity by name, e.g. "order".
func NotFound(entity string) *Error {
	return &Error{Code: CodeNotFound, Message: entity + " not found"}
}

// Forbidden reports an authorization denial with its reason.
func Forbidden(reason string) *Error {
	return &Error{Code: CodeForbidden, Message: reason}
}

// InvalidTransition reports a disallowed (from, to) status pair.
func InvalidTransition(from, to string) *Error {
	return &Error{
		Code:    CodeInvalidTransition,
		Message: fmt.Sprintf("cannot transition from %q to %q", from, to),
	}
}

// Validation reports malformed or unacceptable input.
func Validation(format string, args ...any) *Error {
	return &Error{Code: CodeValidation, Message: fmt.Sprintf(format, args...)}
}

// Conflict reports a lost conditional write: the row's state already
// moved on under a concurrent request.
func Conflict(msg string) *Error {
	return &Error{Code: CodeConflict, Message: msg}
}

// Internal wraps a store or infrastructure failure. The caller-visible
// message is generic; the cause stays available via errors.Unwrap for
// logging.
func Internal(err error) *Error {
	return &Error{Code: CodeInternal, Message: "internal error", wrapped: err}
}

// CodeOf extracts the code from err, or CodeInternal when err is not an
// application error.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code Code) bool {
	return CodeOf(err) == code
}
