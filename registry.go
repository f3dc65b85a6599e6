// Copyright (C) 2024 Kirk Diggler
// SPDX-License-Identifier: GPL-3.0-or-later

package eventbus

import (
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"
)

// registry is a per-event-type, priority-ordered list of live
// subscriptions plus a reverse index from subscriber to event types.
// Mutation happens under mu; snapshot holds mu only for the map lookup and
// then takes a single atomic load, so dispatch iterates without holding any
// lock and is never disturbed by concurrent (un)registration — a
// copy-on-write contract.
type registry struct {
	mu sync.Mutex

	byEventType map[reflect.Type]*atomic.Pointer[[]*Subscription]
	bySubscriber map[any][]reflect.Type

	logger Logger
}

func newRegistry(logger Logger) *registry {
	return &registry{
		byEventType:  make(map[reflect.Type]*atomic.Pointer[[]*Subscription]),
		bySubscriber: make(map[any][]reflect.Type),
		logger:       logger,
	}
}

// add inserts sub into the priority-ordered list for its event type.
// Insertion is stable: a newcomer goes after existing entries of equal
// priority. Returns *Error{CodeAlreadyRegistered} if the (subscriber,
// descriptor) pair is already present.
func (r *registry) add(sub *Subscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	eventType := sub.Descriptor.EventType
	slot := r.slotFor(eventType)
	current := slot.Load()

	var list []*Subscription
	if current != nil {
		list = *current
	}

	wantKey := sub.key()
	for _, existing := range list {
		if existing.key() == wantKey {
			return newError(CodeAlreadyRegistered, "subscriber already registered for this handler",
				WithMeta("eventType", eventType.String()),
				WithMeta("signature", sub.Descriptor.Signature()))
		}
	}

	insertAt := len(list)
	for i, existing := range list {
		if existing.Descriptor.Priority < sub.Descriptor.Priority {
			insertAt = i
			break
		}
	}

	updated := make([]*Subscription, 0, len(list)+1)
	updated = append(updated, list[:insertAt]...)
	updated = append(updated, sub)
	updated = append(updated, list[insertAt:]...)
	slot.Store(&updated)

	r.bySubscriber[sub.Subscriber] = append(r.bySubscriber[sub.Subscriber], eventType)
	return nil
}

// removeAllFor removes every subscription belonging to subscriber, across
// all event types it was registered for, and erases the reverse-index
// entry. Removing an unknown subscriber logs a warning and is not an
// error.
func (r *registry) removeAllFor(subscriber any) {
	r.mu.Lock()
	defer r.mu.Unlock()

	eventTypes, ok := r.bySubscriber[subscriber]
	if !ok {
		if r.logger != nil {
			r.logger.Warnf("eventbus: unregister called for a subscriber that was never registered: %T", subscriber)
		}
		return
	}

	for _, eventType := range eventTypes {
		slot, ok := r.byEventType[eventType]
		if !ok {
			continue
		}
		current := slot.Load()
		if current == nil {
			continue
		}
		updated := make([]*Subscription, 0, len(*current))
		for _, existing := range *current {
			if existing.Subscriber == subscriber {
				existing.deactivate()
				continue
			}
			updated = append(updated, existing)
		}
		slot.Store(&updated)
	}

	delete(r.bySubscriber, subscriber)
}

// isRegistered reports whether subscriber currently has any live
// subscription.
func (r *registry) isRegistered(subscriber any) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.bySubscriber[subscriber]
	return ok
}

// snapshot returns the current priority-ordered subscription list for
// eventType, safe to range over without synchronization even as add/
// removeAllFor run concurrently: the underlying slice is never mutated in
// place, only replaced.
func (r *registry) snapshot(eventType reflect.Type) []*Subscription {
	r.mu.Lock()
	slot, ok := r.byEventType[eventType]
	r.mu.Unlock()
	if !ok {
		return nil
	}
	current := slot.Load()
	if current == nil {
		return nil
	}
	return *current
}

// hasAny reports whether eventType (exactly, not expanded) has any live
// subscriber. Callers expand via the hierarchy first when inheritance is
// enabled.
func (r *registry) hasAny(eventType reflect.Type) bool {
	return len(r.snapshot(eventType)) > 0
}

// slotFor returns (creating if absent) the atomic slot for eventType.
// Must be called with mu held.
func (r *registry) slotFor(eventType reflect.Type) *atomic.Pointer[[]*Subscription] {
	slot, ok := r.byEventType[eventType]
	if !ok {
		slot = &atomic.Pointer[[]*Subscription]{}
		empty := []*Subscription{}
		slot.Store(&empty)
		r.byEventType[eventType] = slot
	}
	return slot
}

// String renders a short diagnostic summary, handy in tests and logs.
func (r *registry) String() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return fmt.Sprintf("registry{types=%d, subscribers=%d}", len(r.byEventType), len(r.bySubscriber))
}
