// Package errors provides structured error types for the tagrel engine.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the engine, CLI, and API
//   - Machine-readable error codes for programmatic handling
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Every failure raised by the graph engine carries one of a small set of
// mutually exclusive codes:
//   - MISSING: a referenced tag or alias does not exist
//   - WRONG_TYPE: an argument has an invalid shape, or a connection type is
//     incompatible with its endpoints
//   - COLLISION: creation of an already-existing tag name without get-if-exists
//   - FORMAT: malformed serialized input
//   - DELETE_DANGER: an alias removal would silently orphan a tag
//   - GENERIC: anything uncategorized
//
// # Usage
//
//	err := errors.New(errors.CodeMissing, "tag %s not found", name)
//	if errors.Is(err, errors.CodeMissing) {
//	    // Handle the missing tag
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.CodeFormat, parseErr, "failed to parse tags json")
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for the engine's failure taxonomy.
const (
	// CodeGeneric covers uncategorized failures.
	CodeGeneric Code = "GENERIC"

	// CodeMissing is raised when a referenced tag or alias does not exist.
	CodeMissing Code = "MISSING"

	// CodeWrongType is raised for invalid argument shapes and for connection
	// types incompatible with their endpoints.
	CodeWrongType Code = "WRONG_TYPE"

	// CodeCollision is raised when creating a tag whose name already exists
	// and get-if-exists is disabled.
	CodeCollision Code = "COLLISION"

	// CodeFormat is raised for malformed serialized input.
	CodeFormat Code = "FORMAT"

	// CodeDeleteDanger is raised when removing an alias would leave its tag
	// unreachable without an explicit rename.
	CodeDeleteDanger Code = "DELETE_DANGER"
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

// Is reports whether err carries the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
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
