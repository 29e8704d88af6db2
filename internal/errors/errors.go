// Package errors provides the error kinds shared by the wire client, the
// polling worker and the terminal runtime.
//
// Every failure that crosses a component boundary is an *Error carrying a
// Kind. Callers branch on the kind rather than on message text:
//
//	res, err := wc.Request(ctx, http.MethodGet, "/api/messages", nil)
//	if errors.KindOf(err) == errors.KindNetwork { ... }
//
// Describe turns any error into a one-line message fit for a status bar.
package errors

import (
	"errors"
	"fmt"
)

// Re-export standard library functions for convenience.
// This allows callers to import only this package for all error handling.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	New    = errors.New
	Join   = errors.Join
)

// Kind classifies a failure.
type Kind int

const (
	// KindUnknown is reported for errors that did not originate in this module.
	KindUnknown Kind = iota
	// KindNetwork covers connect failures, DNS errors, timeouts and cancellation.
	KindNetwork
	// KindProtocol covers unexpected status codes and malformed response bodies.
	KindProtocol
	// KindNotFound is a 404 from the server.
	KindNotFound
	// KindValidation is an input rejected locally or by the server.
	KindValidation
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindProtocol:
		return "protocol"
	case KindNotFound:
		return "not found"
	case KindValidation:
		return "validation"
	default:
		return "unknown"
	}
}

// Sentinel errors, one per kind, so errors.Is works without a type assertion.
var (
	ErrNetwork    = New("network error")
	ErrProtocol   = New("protocol error")
	ErrNotFound   = New("not found")
	ErrValidation = New("validation error")
)

func (k Kind) sentinel() error {
	switch k {
	case KindNetwork:
		return ErrNetwork
	case KindProtocol:
		return ErrProtocol
	case KindNotFound:
		return ErrNotFound
	case KindValidation:
		return ErrValidation
	default:
		return nil
	}
}

// Error is the concrete error type returned across component boundaries.
type Error struct {
	Kind Kind
	// Op names the operation, e.g. "GET /api/messages" or "upload".
	Op string
	// Message is the server supplied or locally built explanation.
	Message string
	// Status is the HTTP status code when one was received.
	Status int
	Err    error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if msg == "" {
		msg = e.Kind.String()
	}
	if e.Op == "" {
		return msg
	}
	return fmt.Sprintf("%s: %s", e.Op, msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the sentinel for the error's kind.
func (e *Error) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && target == s
}

// Network wraps a transport failure.
func Network(op string, err error) *Error {
	return &Error{Kind: KindNetwork, Op: op, Err: err}
}

// Protocol reports an unexpected response.
func Protocol(op, format string, args ...any) *Error {
	return &Error{Kind: KindProtocol, Op: op, Message: fmt.Sprintf(format, args...)}
}

// NotFound reports a missing remote resource.
func NotFound(op, message string) *Error {
	return &Error{Kind: KindNotFound, Op: op, Message: message, Status: 404}
}

// Validation reports rejected input.
func Validation(op, format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Op: op, Message: fmt.Sprintf(format, args...)}
}

// FromStatus maps a non-2xx HTTP status to an error. message is the
// server's {"error": ...} text when present.
func FromStatus(op string, status int, message string) *Error {
	if message == "" {
		message = fmt.Sprintf("unexpected status %d", status)
	}
	e := &Error{Op: op, Status: status, Message: message}
	switch status {
	case 404:
		e.Kind = KindNotFound
	case 400, 413, 422:
		e.Kind = KindValidation
	default:
		e.Kind = KindProtocol
	}
	return e
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsRetryable reports whether repeating the same call might succeed.
// Network failures and 5xx responses are transient; everything else is not.
func IsRetryable(err error) bool {
	var e *Error
	if !As(err, &e) {
		return false
	}
	switch e.Kind {
	case KindNetwork:
		return true
	case KindProtocol:
		return e.Status >= 500
	default:
		return false
	}
}
