// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package server

import "fmt"

// ReadRequestError wraps failures to read or parse a request.
type ReadRequestError struct {
	Cause error
}

// Error implements the [error] interface.
func (e ReadRequestError) Error() string {
	return fmt.Sprintf("failed to read request: %s", e.Cause)
}

// Unwrap implements the implicit interface used by errors.Is and errors.As.
func (e ReadRequestError) Unwrap() error {
	return e.Cause
}

// HandlerError wraps a handler failure.
type HandlerError struct {
	Method string
	Target string
	Cause  error
}

// Error implements the [error] interface.
func (e HandlerError) Error() string {
	return fmt.Sprintf("failed to handle %s %s: %s", e.Method, e.Target, e.Cause)
}

// Unwrap implements the implicit interface used by errors.Is and errors.As.
func (e HandlerError) Unwrap() error {
	return e.Cause
}

// WriteResponseError wraps failures to write a response.
type WriteResponseError struct {
	Cause error
}

// Error implements the [error] interface.
func (e WriteResponseError) Error() string {
	return fmt.Sprintf("failed to write response: %s", e.Cause)
}

// Unwrap implements the implicit interface used by errors.Is and errors.As.
func (e WriteResponseError) Unwrap() error {
	return e.Cause
}
