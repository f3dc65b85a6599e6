// Copyright (C) 2024 Kirk Diggler
// SPDX-License-Identifier: GPL-3.0-or-later

package eventbus

import (
	"errors"
	"fmt"
)

// Code categorizes why a bus operation failed, grounded on rpgerr.Code's
// error-kind idiom.
type Code string

const (
	// CodeNoHandlers means a subscriber's class (and its embedded-field
	// chain) yielded zero handler methods at registration time.
	CodeNoHandlers Code = "no_handlers"
	// CodeAlreadyRegistered means the same (subscriber, descriptor) pair
	// is already present in the registry.
	CodeAlreadyRegistered Code = "already_registered"
	// CodeIllegalHandler means a malformed annotated-looking method was
	// found while strict verification is enabled.
	CodeIllegalHandler Code = "illegal_handler"
	// CodeNotPosting means CancelEventDelivery was called off the posting
	// goroutine, or with no event currently dispatching.
	CodeNotPosting Code = "not_posting"
	// CodeWrongEvent means CancelEventDelivery was called with an event
	// other than the one currently dispatching on this goroutine.
	CodeWrongEvent Code = "wrong_event"
	// CodeWrongThreadMode means CancelEventDelivery was called from a
	// handler whose thread mode is not POSTING.
	CodeWrongThreadMode Code = "wrong_thread_mode"
	// CodeNullEvent means CancelEventDelivery was called with a nil event.
	CodeNullEvent Code = "null_event"
	// CodeHandlerInvocationFailed wraps a panic recovered from a handler;
	// the dispatcher then treats it like an error the handler returned.
	CodeHandlerInvocationFailed Code = "handler_invocation_failed"
	// CodeCapacityExceeded means the posting-cascade depth guard tripped.
	CodeCapacityExceeded Code = "capacity_exceeded"
	// CodeUnknownThreadMode means a HandlerDescriptor carries a ThreadMode
	// value outside the five defined constants — a broken invariant, since
	// every path that produces a descriptor is expected to only ever set
	// one of them.
	CodeUnknownThreadMode Code = "unknown_thread_mode"
)

// Error is the bus's structured error type. Code identifies the kind of
// failure for programmatic handling; Meta carries diagnostic fields
// (subscriber type, event type, method name) without forcing callers to
// parse the message string.
type Error struct {
	Code    Code
	Message string
	Cause   error
	Meta    map[string]any
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "eventbus: nil error"
	}
	if e.Cause != nil {
		return fmt.Sprintf("eventbus: %s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("eventbus: %s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped cause, if any.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// Is reports whether target is an *Error with the same Code, so callers
// can use errors.Is(err, eventbus.CodeError(eventbus.CodeNoHandlers)).
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return t.Code == e.Code
	}
	return false
}

// ErrOption configures an *Error.
type ErrOption func(*Error)

// WithMeta attaches a diagnostic field to the error.
func WithMeta(key string, value any) ErrOption {
	return func(e *Error) {
		if e.Meta == nil {
			e.Meta = make(map[string]any)
		}
		e.Meta[key] = value
	}
}

// WithCause wraps an underlying error.
func WithCause(cause error) ErrOption {
	return func(e *Error) { e.Cause = cause }
}

// newError builds a structured *Error for the given code and message.
func newError(code Code, message string, opts ...ErrOption) *Error {
	e := &Error{Code: code, Message: message}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// CodeError builds a zero-message *Error carrying only a Code, useful as
// an errors.Is target: errors.Is(err, eventbus.CodeError(eventbus.CodeNoHandlers)).
func CodeError(code Code) *Error {
	return &Error{Code: code}
}
