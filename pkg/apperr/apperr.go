// Package apperr defines the typed application errors shared by the
// auth, visibility, storage and API layers.
//
// Every failure below the HTTP surface is one of a small set of kinds;
// a single boundary (httputil.WriteAppError) maps kinds to status codes
// so handlers never branch on responses beyond the success path.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an application error.
type Kind int

const (
	// KindUnauthorized maps to 401: missing/malformed/invalid credentials.
	KindUnauthorized Kind = iota + 1
	// KindForbidden maps to 403: authenticated but lacking role/permission/ownership.
	KindForbidden
	// KindNotFound maps to 404: missing record or record hidden by visibility.
	KindNotFound
	// KindValidation maps to 400: request shape violation, with field details.
	KindValidation
	// KindConflict maps to 400: store-layer constraint violation.
	KindConflict
	// KindInternal maps to 500: anything unclassified.
	KindInternal
)

// Error is a typed application error with an optional wrapped cause
// and optional field-level details for validation failures.
type Error struct {
	Kind    Kind
	Message string
	Fields  map[string]string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap exposes the wrapped cause for errors.Is/As chains.
func (e *Error) Unwrap() error {
	return e.Err
}

// Unauthorized creates a 401-kind error.
func Unauthorized(message string) *Error {
	return &Error{Kind: KindUnauthorized, Message: message}
}

// Forbidden creates a 403-kind error.
func Forbidden(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message}
}

// NotFound creates a 404-kind error.
func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// Validation creates a 400-kind error with optional field details.
func Validation(message string, fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Message: message, Fields: fields}
}

// Conflict creates a 400-kind error for store constraint violations.
func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

// Internal wraps an unclassified error.
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: "internal error", Err: err}
}

// Wrap attaches a cause to a typed error without changing its kind.
func Wrap(err *Error, cause error) *Error {
	err.Err = cause
	return err
}

// KindOf extracts the kind from an error chain; unclassified errors
// report KindInternal.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// IsKind reports whether the error chain carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
