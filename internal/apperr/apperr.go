// Package apperr holds the flat error taxonomy shared by the services and the
// HTTP layer. Every failure is terminal for the request that produced it.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	KindUnauthorized         Kind = "unauthorized"
	KindForbidden            Kind = "forbidden"
	KindNotFound             Kind = "not_found"
	KindValidation           Kind = "validation"
	KindAttemptLimitExceeded Kind = "attempt_limit_exceeded"
	KindInvalidCoupon        Kind = "invalid_coupon"
)

// Sentinels for errors.Is checks.
var (
	ErrUnauthorized         = &Error{Kind: KindUnauthorized, Msg: "unauthorized"}
	ErrForbidden            = &Error{Kind: KindForbidden, Msg: "forbidden"}
	ErrNotFound             = &Error{Kind: KindNotFound, Msg: "not found"}
	ErrValidation           = &Error{Kind: KindValidation, Msg: "validation failed"}
	ErrAttemptLimitExceeded = &Error{Kind: KindAttemptLimitExceeded, Msg: "attempt limit exceeded"}
	ErrInvalidCoupon        = &Error{Kind: KindInvalidCoupon, Msg: "invalid coupon"}
)

// FieldError points at the input field a validation error is about.
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

type Error struct {
	Kind   Kind
	Msg    string
	Fields []FieldError
}

func (e *Error) Error() string { return e.Msg }

// Is matches any *Error of the same kind, so a message-specific error still
// satisfies errors.Is(err, ErrNotFound).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func newf(kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func Forbidden(format string, args ...any) error  { return newf(KindForbidden, format, args...) }
func NotFound(format string, args ...any) error   { return newf(KindNotFound, format, args...) }
func Validation(format string, args ...any) error { return newf(KindValidation, format, args...) }
func InvalidCoupon(format string, args ...any) error {
	return newf(KindInvalidCoupon, format, args...)
}
func AttemptLimitExceeded(format string, args ...any) error {
	return newf(KindAttemptLimitExceeded, format, args...)
}

// ValidationFields builds a validation error carrying per-field details.
func ValidationFields(msg string, fields ...FieldError) error {
	return &Error{Kind: KindValidation, Msg: msg, Fields: fields}
}

// KindOf reports the kind of err, or "" for errors outside the taxonomy.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Status maps an error to the HTTP status it is surfaced with.
func Status(err error) int {
	switch KindOf(err) {
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindValidation, KindInvalidCoupon:
		return http.StatusBadRequest
	case KindAttemptLimitExceeded:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
