// Package errors provides structured error types for stakr.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI, the preview TUI and the HTTP API
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Codes follow the failure taxonomy of the bake pipeline:
//   - VALIDATION: bad configuration or a source that cannot be sliced
//   - PARSE: malformed user input such as a hex colour
//   - DECODE / ENCODE: raster codec failures, cause preserved
//   - IO: filesystem failures while persisting sheets
//   - NOT_FOUND, CANCELED, INTERNAL
//
// # Usage
//
//	err := errors.New(errors.ErrCodeValidation, "width %d not divisible by %d", w, n)
//	if errors.Is(err, errors.ErrCodeValidation) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeDecode, origErr, "decode %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input errors
	ErrCodeValidation    Code = "VALIDATION"
	ErrCodeParse         Code = "PARSE"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"

	// Codec errors
	ErrCodeDecode Code = "DECODE"
	ErrCodeEncode Code = "ENCODE"

	// Filesystem errors
	ErrCodeIO       Code = "IO"
	ErrCodeNotFound Code = "NOT_FOUND"

	// Runtime errors
	ErrCodeCanceled Code = "CANCELED"
	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It returns the code of the outermost *Error in the chain.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// FromContext converts a context error into a CANCELED error.
// Returns nil when err is nil.
func FromContext(err error) error {
	if err == nil {
		return nil
	}
	return Wrap(ErrCodeCanceled, err, "operation canceled")
}
