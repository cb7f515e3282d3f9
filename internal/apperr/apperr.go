// Package apperr is the error taxonomy shared by services and transports.
// Services return *Error values; the HTTP and gRPC layers map Kind to a
// status code and surface Msg to the client.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthenticated
	KindInvalidCredentials
	KindForbidden
	KindNotFound
	KindConflict
	KindRateLimited
	KindUnavailable
	KindTimeout
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindInvalidCredentials:
		return "invalid_credentials"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindRateLimited:
		return "rate_limited"
	case KindUnavailable:
		return "unavailable"
	case KindTimeout:
		return "timeout"
	}
	return "internal"
}

// Error wraps a user-facing message with its Kind.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

func newf(k Kind, format string, args ...any) *Error {
	return &Error{Kind: k, Msg: fmt.Sprintf(format, args...)}
}

func Validation(format string, args ...any) *Error { return newf(KindValidation, format, args...) }
func Unauthenticated(format string, args ...any) *Error {
	return newf(KindUnauthenticated, format, args...)
}
func InvalidCredentials(format string, args ...any) *Error {
	return newf(KindInvalidCredentials, format, args...)
}
func Forbidden(format string, args ...any) *Error   { return newf(KindForbidden, format, args...) }
func NotFound(format string, args ...any) *Error    { return newf(KindNotFound, format, args...) }
func Conflict(format string, args ...any) *Error    { return newf(KindConflict, format, args...) }
func RateLimited(format string, args ...any) *Error { return newf(KindRateLimited, format, args...) }
func Unavailable(format string, args ...any) *Error { return newf(KindUnavailable, format, args...) }

// Timeout marks a deadline hit while waiting on a downstream service.
func Timeout(err error, format string, args ...any) *Error {
	e := newf(KindTimeout, format, args...)
	e.Err = err
	return e
}

// Internal wraps an unexpected failure. Msg stays generic; the cause is kept
// for logs.
func Internal(err error, op string) *Error {
	return &Error{Kind: KindInternal, Msg: op, Err: err}
}

// KindOf returns the Kind of err, or KindInternal for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Message returns the user-facing message of err when it is an *Error.
func Message(err error) (string, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Msg, true
	}
	return "", false
}
