package clamav

import (
	"errors"
	"fmt"
)

// Error codes for machine-readable classification of scan failures.
const (
	CodeConnection = "connection_error"
	CodeTimeout    = "timeout"
	CodeProtocol   = "protocol_error"
)

// Error is the error type for clamd daemon failures.
type Error struct {
	// Code is a machine-readable error code.
	Code string
	// Message is a human-readable error description.
	Message string
	// Cause is the underlying error, if any.
	Cause error
}

// Error returns the human-readable error message.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause for use with errors.Is and errors.As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewConnectionError creates an error indicating the daemon is unreachable.
func NewConnectionError(msg string, cause error) *Error {
	return &Error{Code: CodeConnection, Message: msg, Cause: cause}
}

// NewTimeoutError creates an error indicating a scan deadline expired.
func NewTimeoutError(msg string, cause error) *Error {
	return &Error{Code: CodeTimeout, Message: msg, Cause: cause}
}

// NewProtocolError creates an error indicating an unparsable daemon reply.
func NewProtocolError(msg string, cause error) *Error {
	return &Error{Code: CodeProtocol, Message: msg, Cause: cause}
}

// IsConnectionError reports whether err is or wraps a connection error.
func IsConnectionError(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == CodeConnection
	}
	return false
}

// IsTimeoutError reports whether err is or wraps a timeout error.
func IsTimeoutError(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == CodeTimeout
	}
	return false
}
