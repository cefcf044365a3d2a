// Package apierror provides standardized error response structures for the API.
// All errors returned to clients go through this package to ensure consistency
// and to prevent leaking internal details (stack traces, DB errors, etc.).
package apierror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a domain error so the HTTP layer can pick a status code
// without string-matching messages.
type Kind int

const (
	KindNotFound   Kind = iota // missing id for any entity
	KindValidation             // schema/shape violations
	KindConflict               // duplicate code/slug/tuple, concurrent write lost
	KindInvariant              // a domain rule would be broken
	KindDependency             // delete blocked by descendants/references
)

// Error is the canonical domain error. Code is a stable machine-readable
// rule name (e.g. "DuplicateSkuCode"); Detail is the human message.
type Error struct {
	Kind   Kind   `json:"-"`
	Code   string `json:"code"`
	Detail string `json:"detail"`
}

func (e *Error) Error() string { return e.Detail }

// HTTPStatus maps the error kind to a response status.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindValidation:
		return http.StatusUnprocessableEntity
	case KindConflict, KindInvariant, KindDependency:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func newError(kind Kind, code, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Code: code, Detail: fmt.Sprintf(format, args...)}
}

func NotFound(code, format string, args ...interface{}) *Error {
	return newError(KindNotFound, code, format, args...)
}

func Validation(code, format string, args ...interface{}) *Error {
	return newError(KindValidation, code, format, args...)
}

func Conflict(code, format string, args ...interface{}) *Error {
	return newError(KindConflict, code, format, args...)
}

func Invariant(code, format string, args ...interface{}) *Error {
	return newError(KindInvariant, code, format, args...)
}

func Dependency(code, format string, args ...interface{}) *Error {
	return newError(KindDependency, code, format, args...)
}

// CodeOf returns the machine-readable code of err, or "" when err is not a
// domain error. Tests and collaborators match on codes, never on messages.
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// AsError extracts the domain error, if any.
func AsError(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}

// APIError is the generic error envelope for responses without a domain code.
type APIError struct {
	Detail string `json:"detail"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// ValidationError wraps multiple field errors from request binding.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "validation failed", Fields: fields}
}
