package domain

import (
	"fmt"
	"net/http"
)

// ValidationError is a local precondition failure. It never reaches the network.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// TransportError wraps a network-level failure: unreachable host, aborted
// connection, or a body that could not be read.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return e.Err.Error() }

func (e *TransportError) Unwrap() error { return e.Err }

// ServiceError is a non-2xx response from the remote service.
type ServiceError struct {
	StatusCode int
	// Reason is the reason phrase from the status line, if any.
	Reason string
	Detail string
}

// StatusText returns the reason phrase sent by the service, falling back to
// the standard phrase for the status code.
func (e *ServiceError) StatusText() string {
	if e.Reason != "" {
		return e.Reason
	}
	if text := http.StatusText(e.StatusCode); text != "" {
		return text
	}
	return fmt.Sprintf("status code %d", e.StatusCode)
}

// Message returns the detail sent by the service, or fallback when the
// service sent none.
func (e *ServiceError) Message(fallback string) string {
	if e.Detail != "" {
		return e.Detail
	}
	return fallback
}

func (e *ServiceError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("service responded %d %s", e.StatusCode, e.StatusText())
}

// MalformedResponseError is a 2xx response whose body could not be decoded
// or lacks a required field.
type MalformedResponseError struct {
	Err error
}

func (e *MalformedResponseError) Error() string {
	return "invalid response body: " + e.Err.Error()
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }
