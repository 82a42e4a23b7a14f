package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies an application error.
type Code string

const (
	Validation Code = "validation"
	NotFound   Code = "not_found"
	Constraint Code = "constraint"
	Internal   Code = "internal"
)

// Error is a coded application error.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Code)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// New creates a coded error with message.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Newf is New with a format string.
func Newf(code Code, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates a coded error with message and cause.
func Wrap(code Code, message string, cause error) error {
	return &Error{Code: code, Message: message, Err: cause}
}

// CodeOf returns the error code, defaulting to internal.
func CodeOf(err error) Code {
	var coded *Error
	if err != nil && errors.As(err, &coded) && coded.Code != "" {
		return coded.Code
	}
	return Internal
}

// Is reports whether err carries the given code anywhere in its chain.
func Is(err error, code Code) bool {
	return err != nil && CodeOf(err) == code
}

// MessageOf returns a user-facing message. Untyped errors collapse to
// "internal error" so driver text and file paths never reach a response.
func MessageOf(err error) string {
	var coded *Error
	if err != nil && errors.As(err, &coded) && coded.Message != "" && coded.Code != Internal {
		return coded.Message
	}
	return "internal error"
}

// HTTPStatus maps an error code to an HTTP status.
func HTTPStatus(code Code) int {
	switch code {
	case Validation, Constraint:
		return http.StatusBadRequest
	case NotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
