// Package errors provides coded errors for wordcanvas.
//
// Every failure a user or client can act on carries a [Code]. The CLI prints
// the code next to a short message; the render service answers with the
// matching HTTP status from [HTTPStatus] and the code in the JSON body.
//
// Codes are grouped by prefix:
//   - INVALID_*: the input was rejected (400)
//   - *NOT_FOUND: the canvas or file does not exist (404)
//   - NETWORK_ERROR, TIMEOUT, RATE_LIMITED: the canvas server misbehaved
//   - INTERNAL_ERROR, UNSUPPORTED: our side
//
// Usage:
//
//	err := errors.New(errors.ErrCodeInvalidColor, "invalid color %q", c)
//	if errors.Is(err, errors.ErrCodeInvalidColor) { ... }
//
//	err = errors.Wrap(errors.ErrCodeNetwork, cause, "fetch %s", url)
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is a machine-readable error code.
type Code string

const (
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeInvalidCanvasID Code = "INVALID_CANVAS_ID"
	ErrCodeInvalidFormat   Code = "INVALID_FORMAT"
	ErrCodeInvalidColor    Code = "INVALID_COLOR"
	ErrCodeInvalidHistory  Code = "INVALID_HISTORY"
	ErrCodeInvalidPath     Code = "INVALID_PATH"

	ErrCodeNotFound       Code = "NOT_FOUND"
	ErrCodeCanvasNotFound Code = "CANVAS_NOT_FOUND"
	ErrCodeFileNotFound   Code = "FILE_NOT_FOUND"

	ErrCodeNetwork     Code = "NETWORK_ERROR"
	ErrCodeTimeout     Code = "TIMEOUT"
	ErrCodeRateLimited Code = "RATE_LIMITED"

	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// HTTPStatus maps a code to the status the render service answers with.
// Unknown and empty codes are internal errors.
func HTTPStatus(code Code) int {
	switch code {
	case ErrCodeInvalidInput, ErrCodeInvalidCanvasID, ErrCodeInvalidFormat,
		ErrCodeInvalidColor, ErrCodeInvalidHistory, ErrCodeInvalidPath:
		return http.StatusBadRequest
	case ErrCodeNotFound, ErrCodeCanvasNotFound, ErrCodeFileNotFound:
		return http.StatusNotFound
	case ErrCodeRateLimited:
		return http.StatusTooManyRequests
	case ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case ErrCodeNetwork:
		return http.StatusBadGateway
	case ErrCodeUnsupported:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

// Error is a coded error with an optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// ErrorCode implements [Coder].
func (e *Error) ErrorCode() Code { return e.Code }

// New creates an error with a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an error with a formatted message around cause.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Coder is implemented by every error type that carries a [Code].
type Coder interface {
	error
	ErrorCode() Code
}

// GetCode returns the code of the first [Coder] in err's chain, or "".
func GetCode(err error) Code {
	var c Coder
	if errors.As(err, &c) {
		return c.ErrorCode()
	}
	return ""
}

// Is reports whether err's chain carries code.
func Is(err error, code Code) bool {
	return err != nil && GetCode(err) == code
}

// UserMessage returns the message of the first [*Error] in the chain
// without the code prefix, or err.Error() for anything else.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// RateLimitedError is returned when the canvas server answers 429.
type RateLimitedError struct {
	RetryAfter int // seconds, 0 if the server sent no hint
}

func (e *RateLimitedError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited: retry after %d seconds", e.RetryAfter)
	}
	return "rate limited"
}

// ErrorCode implements [Coder].
func (e *RateLimitedError) ErrorCode() Code { return ErrCodeRateLimited }
