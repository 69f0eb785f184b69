// Package apperrors provides chainable application errors that carry an HTTP status code.
// Sentinel kinds are matched with errors.Is through any number of Msg/Err wrappings.
package apperrors

import (
	"errors"
	"net/http"
	"strings"
)

// Error is an application error. All methods return a new value; receivers are never mutated.
type Error interface {
	error
	Unwrap() error

	// Msg returns a new error with msg that wraps the receiver.
	Msg(msg string) Error
	MsgErr(msg string, errs ...error) Error
	// Err keeps the message and attaches causes.
	Err(errs ...error) Error
	SetStatusCode(code int) Error
	StatusCode() int
	// ErrorAll renders the message followed by every attached cause.
	ErrorAll() string
}

type appError struct {
	msg        string
	base       error
	causes     []error
	statusCode int
}

func New(msg string) Error {
	return &appError{msg: msg, statusCode: http.StatusInternalServerError}
}

func (e *appError) Error() string { return e.msg }

func (e *appError) Unwrap() error { return e.base }

func (e *appError) ErrorAll() string {
	var b strings.Builder
	b.WriteString(e.msg)
	for _, c := range e.causes {
		b.WriteString("; ")
		b.WriteString(c.Error())
	}
	return b.String()
}

func (e *appError) Msg(msg string) Error {
	return &appError{msg: msg, base: e, statusCode: e.statusCode}
}

func (e *appError) MsgErr(msg string, errs ...error) Error {
	return &appError{msg: msg, base: e, causes: compact(errs), statusCode: e.statusCode}
}

func (e *appError) Err(errs ...error) Error {
	return &appError{msg: e.msg, base: e, causes: compact(errs), statusCode: e.statusCode}
}

func (e *appError) SetStatusCode(code int) Error {
	cp := *e
	cp.statusCode = code
	return &cp
}

func (e *appError) StatusCode() int { return e.statusCode }

// Is reports whether target is the base chain or any attached cause.
func (e *appError) Is(target error) bool {
	if target == nil {
		return false
	}
	if e == target {
		return true
	}
	if errors.Is(e.base, target) {
		return true
	}
	for _, c := range e.causes {
		if errors.Is(c, target) {
			return true
		}
	}
	return false
}

func compact(errs []error) []error {
	out := make([]error, 0, len(errs))
	for _, err := range errs {
		if err != nil {
			out = append(out, err)
		}
	}
	return out
}

// StatusCode returns the HTTP status attached to err, or 500 for foreign errors.
func StatusCode(err error) int {
	var ae Error
	if errors.As(err, &ae) {
		return ae.StatusCode()
	}
	return http.StatusInternalServerError
}
