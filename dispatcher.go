// Copyright (C) 2024 Kirk Diggler
// SPDX-License-Identifier: GPL-3.0-or-later

package eventbus

import (
	"fmt"
	"reflect"
	"time"
)

// dispatcher expands a concrete event's type hierarchy, collects every
// live subscription across the expanded types in priority order, and
// hands each one to the poster matching its ThreadMode.
type dispatcher struct {
	bus *Bus
}

// dispatch delivers event to every currently-registered handler of event's
// type or any type in its expanded hierarchy. Returns true if at least one
// handler received it.
func (d *dispatcher) dispatch(event any) bool {
	b := d.bus
	eventType := reflect.TypeOf(event)

	var types []reflect.Type
	if b.cfg.eventInheritance {
		types = b.hierarchy.expand(eventType)
	} else {
		types = []reflect.Type{eventType}
	}

	delivered := false
	st := b.posting.current()

dispatchLoop:
	for _, t := range types {
		subs := b.registry.snapshot(t)
		for _, sub := range subs {
			st.mu.Lock()
			canceled := st.canceled
			st.mu.Unlock()
			if canceled {
				break dispatchLoop
			}
			if !sub.Active() {
				continue
			}

			st.mu.Lock()
			st.currentSub = sub
			st.currentEvt = event
			st.mu.Unlock()

			d.deliverOne(sub, event)
			delivered = true
		}
	}

	st.mu.Lock()
	st.canceled = false
	st.currentSub = nil
	st.currentEvt = nil
	st.mu.Unlock()

	if !delivered {
		if b.cfg.logNoSubscriberMessages {
			b.cfg.logger.Debugf("eventbus: no subscriber for event %s", eventType)
		}
		if b.cfg.metrics != nil {
			b.cfg.metrics.NoSubscribers(eventType.String())
		}
		if b.cfg.sendNoSubscriberEvent {
			_, isNoSub := event.(NoSubscriberEvent)
			_, isExc := event.(SubscriberExceptionEvent)
			if !isNoSub && !isExc {
				b.postInternal(NoSubscriberEvent{Bus: b, OriginalEvent: event})
			}
		}
	}

	return delivered
}

// deliverOne hands sub the event via the poster matching its ThreadMode. A
// POSTING-mode handler runs inline, synchronously, on the calling
// goroutine; the others enqueue onto the matching collaborator poster,
// which may run the handler later and/or elsewhere.
func (d *dispatcher) deliverOne(sub *Subscription, event any) {
	b := d.bus
	switch sub.Descriptor.ThreadMode {
	case Posting:
		d.invoke(sub, event)
	case Main, MainOrdered:
		b.mainPoster.Enqueue(sub, event)
	case Background:
		b.backgroundPoster.Enqueue(sub, event)
	case Async:
		b.asyncPoster.Enqueue(sub, event)
	default:
		panic(newError(CodeUnknownThreadMode,
			fmt.Sprintf("handler %s declares unrecognized ThreadMode %d", sub.Descriptor.Signature(), sub.Descriptor.ThreadMode)))
	}
}

// invoke runs sub's handler against event, recording metrics, logging and
// re-posting a SubscriberExceptionEvent on failure, and returning the error
// for POSTING-mode handlers when WithThrowSubscriberException is set
// (deliverOne does not use the return value). Active is
// re-checked here, immediately before the call, because BACKGROUND/ASYNC/
// MAIN delivery enqueues onto a poster that may run this well after
// dispatch() made its own Active check — a subscriber unregistered in the
// meantime must not be invoked.
func (d *dispatcher) invoke(sub *Subscription, event any) error {
	if !sub.Active() {
		return nil
	}

	b := d.bus
	start := timeNow()
	err := sub.Descriptor.Invoke(sub.Subscriber, event)
	elapsed := timeSince(start)

	eventTypeName := sub.Descriptor.EventType.String()
	if b.cfg.metrics != nil {
		if err != nil {
			b.cfg.metrics.HandlerFailed(eventTypeName, sub.Descriptor.ThreadMode)
		} else {
			b.cfg.metrics.HandlerInvoked(eventTypeName, sub.Descriptor.ThreadMode, elapsed)
		}
	}

	if err == nil {
		return nil
	}

	if b.cfg.logSubscriberExceptions {
		b.cfg.logger.Errorf("eventbus: handler %s failed for event %s: %v",
			sub.Descriptor.Signature(), eventTypeName, err)
	}

	if b.cfg.sendSubscriberException {
		if _, isExc := event.(SubscriberExceptionEvent); !isExc {
			b.postInternal(SubscriberExceptionEvent{
				Bus:               b,
				Cause:             err,
				CausingEvent:      event,
				CausingSubscriber: sub.Subscriber,
			})
		}
	}

	if b.cfg.throwSubscriberException && sub.Descriptor.ThreadMode == Posting {
		return err
	}
	return nil
}

// timeNow/timeSince are indirection points so the dispatcher's timing logic
// reads like ordinary library calls; kept as thin wrappers rather than
// importing "time" inline at each call site.
func timeNow() time.Time             { return time.Now() }
func timeSince(t time.Time) float64 { return time.Since(t).Seconds() }
