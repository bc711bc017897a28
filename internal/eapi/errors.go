package eapi

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// ErrorKind classifies a failed poll cycle. The dashboard renders each kind
// differently and the poller's backoff treats them all the same.
type ErrorKind string

const (
	KindConnectionFailed ErrorKind = "connection_failed"
	KindAuthFailed       ErrorKind = "auth_failed"
	KindTimeout          ErrorKind = "timeout"
	KindProtocolError    ErrorKind = "protocol_error"
	KindUnknown          ErrorKind = "unknown"
)

// Label returns a short human-readable form for dashboard cells.
func (k ErrorKind) Label() string {
	switch k {
	case KindConnectionFailed:
		return "unreachable"
	case KindAuthFailed:
		return "auth failed"
	case KindTimeout:
		return "timeout"
	case KindProtocolError:
		return "bad response"
	default:
		return "error"
	}
}

// Error is a typed poll failure: a kind the renderer can key off plus the
// underlying detail.
type Error struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// AsError extracts a typed *Error from err, wrapping untyped errors as
// KindUnknown so callers always have a kind to display.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var typed *Error
	if errors.As(err, &typed) {
		return typed
	}
	return &Error{Kind: KindUnknown, Message: err.Error()}
}

// classifyTransport maps an http.Client error onto the failure taxonomy.
// Timeouts are checked before connection errors: a dial timeout satisfies
// both and should read as a timeout.
func classifyTransport(err error) *Error {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return &Error{Kind: KindTimeout, Message: "request deadline exceeded", Cause: err}
	case errors.As(err, &netErr) && netErr.Timeout():
		return &Error{Kind: KindTimeout, Message: "network timeout", Cause: err}
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return &Error{Kind: KindConnectionFailed, Message: "cannot connect to eAPI", Cause: err}
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return &Error{Kind: KindConnectionFailed, Message: "cannot resolve device address", Cause: err}
	}

	return &Error{Kind: KindUnknown, Message: "request failed", Cause: err}
}
