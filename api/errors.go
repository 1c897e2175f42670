// File: api/errors.go
// Package api
// Author: momentics <momentics@gmail.com>
//
// Common error types and error handling utilities for hioload-timer.

package api

import (
	"errors"
	"fmt"
)

// Common errors used across the library. Structured *Error values match
// these through errors.Is.
var (
	ErrInvalidArgument     = errors.New("invalid argument")
	ErrInvalidState        = errors.New("invalid state")
	ErrPlatformUnsupported = errors.New("platform not supported")
	ErrNativeRegistration  = errors.New("native timer registration failed")
	ErrNativeCancellation  = errors.New("native timer cancellation failed")
	ErrOperationTimeout    = errors.New("operation timeout")

	// ErrCancelPending is returned by a native service when a cancel request
	// was accepted but a callback is still executing. Backends retry with a
	// blocking cancel and never surface it.
	ErrCancelPending = errors.New("native timer cancellation pending")
)

// ErrorCode represents specific error conditions in the library.
type ErrorCode int

const (
	ErrCodeOK ErrorCode = iota
	ErrCodeInvalidArgument
	ErrCodeInvalidState
	ErrCodePlatformUnsupported
	ErrCodeNativeRegistration
	ErrCodeNativeCancellation
	ErrCodeTimeout
	ErrCodeInternal
)

var codeSentinels = map[ErrorCode]error{
	ErrCodeInvalidArgument:     ErrInvalidArgument,
	ErrCodeInvalidState:        ErrInvalidState,
	ErrCodePlatformUnsupported: ErrPlatformUnsupported,
	ErrCodeNativeRegistration:  ErrNativeRegistration,
	ErrCodeNativeCancellation:  ErrNativeCancellation,
	ErrCodeTimeout:             ErrOperationTimeout,
}

// Error represents a structured error with code and context.
// Err carries the propagated OS error for native failures.
type Error struct {
	Code    ErrorCode
	Message string
	Context map[string]any
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if len(e.Context) == 0 {
		return msg
	}
	return fmt.Sprintf("%s (context: %+v)", msg, e.Context)
}

// Is reports whether target is the sentinel for e.Code.
func (e *Error) Is(target error) bool {
	s, ok := codeSentinels[e.Code]
	return ok && s == target
}

// Unwrap returns the underlying OS error, if any.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a new structured error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Context: make(map[string]any),
	}
}

// WithContext adds context information to the error.
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// WithCause attaches the propagated OS error.
func (e *Error) WithCause(err error) *Error {
	e.Err = err
	return e
}

// CodeOf extracts the ErrorCode carried by err. Errors outside the
// taxonomy report ErrCodeInternal.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ErrCodeOK
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	for code, s := range codeSentinels {
		if errors.Is(err, s) {
			return code
		}
	}
	return ErrCodeInternal
}

// Disposed is returned by every operation attempted on a disposed timer.
func Disposed(name string) *Error {
	return NewError(ErrCodeInvalidState, "timer is disposed").WithContext("timer", name)
}

// InvalidInterval is returned when an interval below one microsecond is
// requested.
func InvalidInterval(name string, got any) *Error {
	return NewError(ErrCodeInvalidArgument, "interval must be at least 1us").
		WithContext("timer", name).
		WithContext("interval", got)
}
