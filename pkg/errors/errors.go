// Package errors carries coded errors through the editor, the template
// client and the CLI.
//
// A *Error pairs a Code with a message meant for the user. Layout refusals
// (LAST_COLUMN, COLUMN_OCCUPIED, INVALID_POSITION) use the same type but
// are not failures: the gesture was ignored and the document is unchanged.
//
//	if errors.Is(err, errors.ErrCodeColumnOccupied) {
//	    status = errors.UserMessage(err)
//	}
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is the stable identifier of an error kind.
type Code string

const (
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeInvalidFormat   Code = "INVALID_FORMAT"
	ErrCodeInvalidPosition Code = "INVALID_POSITION"
	ErrCodeInvalidName     Code = "INVALID_NAME"
	ErrCodeInvalidPath     Code = "INVALID_PATH"

	ErrCodeLastColumn     Code = "LAST_COLUMN"
	ErrCodeColumnOccupied Code = "COLUMN_OCCUPIED"

	ErrCodeNotFound         Code = "NOT_FOUND"
	ErrCodeTemplateNotFound Code = "TEMPLATE_NOT_FOUND"

	ErrCodeNetwork        Code = "NETWORK_ERROR"
	ErrCodeTimeout        Code = "TIMEOUT"
	ErrCodeRateLimited    Code = "RATE_LIMITED"
	ErrCodeCompileFailed  Code = "COMPILE_FAILED"
	ErrCodeServiceFailure Code = "SERVICE_FAILURE"

	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a coded error. Message is shown to the user as is.
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

// New returns a coded error with a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap is New with a cause kept for errors.Is and errors.As.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Is reports whether the outermost *Error in err's chain has code.
func Is(err error, code Code) bool {
	return GetCode(err) == code && code != ""
}

// GetCode returns the code of the outermost *Error in err's chain, or "".
func GetCode(err error) Code {
	if e := outermost(err); e != nil {
		return e.Code
	}
	return ""
}

// UserMessage returns the message of the outermost *Error without its code
// prefix, or err's text for any other error.
func UserMessage(err error) string {
	if e := outermost(err); e != nil {
		return e.Message
	}
	return err.Error()
}

func outermost(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return nil
}

// StatusError describes a non-success response from an external service.
// Message is derived from the response body when one could be read.
type StatusError struct {
	StatusCode int
	Message    string
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("request failed: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// Code maps the HTTP status to an error code.
func (e *StatusError) Code() Code {
	switch {
	case e.StatusCode == http.StatusNotFound:
		return ErrCodeNotFound
	case e.StatusCode == http.StatusTooManyRequests:
		return ErrCodeRateLimited
	case e.StatusCode == http.StatusRequestTimeout:
		return ErrCodeTimeout
	case e.StatusCode >= 400 && e.StatusCode < 500:
		return ErrCodeInvalidInput
	default:
		return ErrCodeServiceFailure
	}
}
