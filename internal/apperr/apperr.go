// Package apperr defines the application error kinds surfaced by the service
// layer and their HTTP status mapping. Handlers never inspect storage errors
// directly; the service layer wraps them into one of these kinds.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an application error.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindValidation
	KindUnauthorized
	KindAccessDenied
	KindConflict
)

// Error carries a kind, a client-safe message and an optional cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s (caused by: %v)", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// NotFound reports that a referenced entity does not exist.
func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// Validation reports a business-rule violation (past booking, duplicate
// theme name, deleting an in-use entity, ...).
func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

// Unauthorized reports a missing or invalid token.
func Unauthorized(message string) *Error {
	return &Error{Kind: KindUnauthorized, Message: message}
}

// AccessDenied reports insufficient privileges for an operation.
func AccessDenied(message string) *Error {
	return &Error{Kind: KindAccessDenied, Message: message}
}

// Conflict reports a uniqueness clash on creation (e.g. duplicate email).
func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

// Wrap attaches a cause to a kinded error.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf extracts the Kind from err, or KindUnknown when err is not an
// application error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// HTTPStatus maps an error to the status code handlers should respond with.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindNotFound:
		return http.StatusNotFound
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindAccessDenied:
		return http.StatusForbidden
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the client-safe message for err, falling back to a generic
// one for unknown errors so internals never leak to clients.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal server error"
}
