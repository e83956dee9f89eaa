// Package api
// Author: momentics <momentics@gmail.com>
//
// Common error types shared by the hioload-wsclient endpoint.

package api

import (
	"errors"
	"fmt"
)

// Sentinel errors raised by the endpoint.
var (
	// ErrNotConnected is returned by the send family when the endpoint
	// is not in the Connected state.
	ErrNotConnected = errors.New("endpoint is not connected")

	// ErrInterrupted is returned by Connect and in-flight sends after a
	// local Interrupt has been honored.
	ErrInterrupted = errors.New("connection interrupted")

	// ErrConnectState is returned when Connect is called while a previous
	// connection is still alive.
	ErrConnectState = errors.New("connect may only be called when disconnected")

	// ErrUnknownScheme is returned for URI schemes other than ws and wss.
	ErrUnknownScheme = errors.New("unknown websocket scheme")

	// ErrNilArgument is returned for nil listeners, empty URIs and nil buffers.
	ErrNilArgument = errors.New("invalid argument")
)

// WrongResponseError reports a server-side RFC 6455 violation: a bad
// handshake response or a malformed/unsupported frame.
type WrongResponseError struct {
	Reason string
	Cause  error
}

// Error implements the error interface.
func (e *WrongResponseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("wrong websocket response: %s: %v", e.Reason, e.Cause)
	}
	return "wrong websocket response: " + e.Reason
}

// Unwrap exposes the underlying cause for errors.Is/As chains.
func (e *WrongResponseError) Unwrap() error { return e.Cause }

// NewWrongResponse builds a WrongResponseError without a cause.
func NewWrongResponse(reason string) *WrongResponseError {
	return &WrongResponseError{Reason: reason}
}
