// Copyright (C) 2024 Kirk Diggler
// SPDX-License-Identifier: GPL-3.0-or-later

package eventbus

import (
	"fmt"
	"reflect"
	"sync/atomic"
)

// ThreadMode selects which goroutine executes a handler.
type ThreadMode int

const (
	// Posting runs the handler inline, on the goroutine that called Post.
	Posting ThreadMode = iota
	// Main runs the handler on the host's main goroutine, inline if the
	// poster is already there.
	Main
	// MainOrdered always enqueues on the main poster, even when already on
	// the main goroutine, to preserve cross-source ordering.
	MainOrdered
	// Background runs the handler on a single serial worker goroutine.
	Background
	// Async runs the handler on an unordered worker-pool goroutine.
	Async
)

// String implements fmt.Stringer for readable test failures and logs.
func (m ThreadMode) String() string {
	switch m {
	case Posting:
		return "POSTING"
	case Main:
		return "MAIN"
	case MainOrdered:
		return "MAIN_ORDERED"
	case Background:
		return "BACKGROUND"
	case Async:
		return "ASYNC"
	default:
		return fmt.Sprintf("ThreadMode(%d)", int(m))
	}
}

// HandlerDescriptor is an immutable value object: a handler method's
// identity plus its declared dispatch policy.
type HandlerDescriptor struct {
	// DeclaringType is the type that directly declares MethodName — the
	// subscriber's own type, or one of its embedded field types.
	DeclaringType reflect.Type
	// MethodName is the exported method's name.
	MethodName string
	// EventType is the handler's single declared parameter type.
	EventType reflect.Type
	// ThreadMode selects the delivery policy.
	ThreadMode ThreadMode
	// Priority orders delivery within one event type; higher runs first.
	Priority int
	// Sticky marks the handler for sticky replay at registration time.
	Sticky bool

	// method is the bound reflect.Value used to invoke the handler. It is
	// not part of the descriptor's identity.
	method reflect.Value
}

// Signature returns the canonical identity string
// "declaringType#methodName(eventType)" used for dedup and equality —
// never the raw reflect.Method, since two reflect.Method values for the
// same inherited/embedded method can differ.
func (d *HandlerDescriptor) Signature() string {
	return fmt.Sprintf("%s#%s(%s)", typeKey(d.DeclaringType), d.MethodName, typeKey(d.EventType))
}

// typeKey renders a stable, package-qualified name for a reflect.Type.
func typeKey(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	if pkg := t.PkgPath(); pkg != "" {
		return pkg + "." + t.Name()
	}
	return t.String()
}

// Invoke calls the handler with event as its sole argument and reports any
// error it returned (handlers may return zero values or a single error). A
// recovered panic is reported the same way, wrapped as
// CodeHandlerInvocationFailed, so a misbehaving handler can never take down
// the posting goroutine.
func (d *HandlerDescriptor) Invoke(subscriber any, event any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = newError(CodeHandlerInvocationFailed, fmt.Sprintf("handler panicked: %v", r),
				WithMeta("signature", d.Signature()))
		}
	}()
	args := []reflect.Value{reflect.ValueOf(event)}
	results := d.method.Call(args)
	if len(results) == 1 && !results[0].IsNil() {
		err, _ = results[0].Interface().(error)
	}
	return err
}

// Subscription is the live binding of one HandlerDescriptor to one
// subscriber inside the registry.
type Subscription struct {
	Subscriber any
	Descriptor *HandlerDescriptor

	active atomic.Bool
}

// NewSubscription creates a Subscription in the active state.
func NewSubscription(subscriber any, descriptor *HandlerDescriptor) *Subscription {
	s := &Subscription{Subscriber: subscriber, Descriptor: descriptor}
	s.active.Store(true)
	return s
}

// Active reports whether the subscription is still present in the
// registry. Checked immediately before every handler invocation to guard
// the unregister/in-flight-delivery race.
func (s *Subscription) Active() bool {
	return s.active.Load()
}

// deactivate marks the subscription removed. Never resurrected.
func (s *Subscription) deactivate() {
	s.active.Store(false)
}

// key returns the (subscriber, descriptor) identity used for dedup.
func (s *Subscription) key() subscriptionKey {
	return subscriptionKey{subscriber: s.Subscriber, signature: s.Descriptor.Signature()}
}

type subscriptionKey struct {
	subscriber any
	signature  string
}
