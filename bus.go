// Copyright (C) 2024 Kirk Diggler
// SPDX-License-Identifier: GPL-3.0-or-later

package eventbus

import (
	"fmt"
	"reflect"
	"sync/atomic"

	"github.com/google/uuid"
)

// Bus is the single type embedders construct and interact with. It wires
// together the registry, sticky store,
// hierarchy expander, scanner and posters behind the public Register/
// Unregister/Post surface.
type Bus struct {
	id  string
	cfg *config

	registry  *registry
	sticky    *stickyStore
	hierarchy *hierarchyExpander
	scanner   *scanner
	posting   *postingRegistry

	mainPoster       Poster
	backgroundPoster Poster
	asyncPoster      Poster
}

// New constructs a Bus. Defaults: event inheritance on, subscriber
// exceptions logged and re-posted as SubscriberExceptionEvent, no-subscriber
// events neither logged nor re-posted, a Handle-prefix name predicate, and
// a posting-cascade depth guard of defaultMaxPostingDepth — all overridable
// via Option.
func New(opts ...Option) *Bus {
	cfg := newConfig(opts...)

	b := &Bus{
		id:        uuid.NewString(),
		cfg:       cfg,
		registry:  newRegistry(cfg.logger),
		sticky:    newStickyStore(),
		hierarchy: newHierarchyExpander(),
		scanner:   newScanner(cfg),
		posting:   newPostingRegistry(),
	}

	b.mainPoster = newMainPoster(cfg.mainThreadSupport, b)
	b.backgroundPoster = newBackgroundPoster(cfg.backgroundPool, b)
	b.asyncPoster = newAsyncPoster(cfg.asyncPool, b)

	if cfg.metrics == nil {
		cfg.metrics = noopRecorder{}
	}

	return b
}

// RegisterInterface adds a candidate interface type to this Bus's hierarchy
// expander: a posted concrete event assignable to iface will also dispatch
// to handlers subscribed to iface. Go cannot enumerate which interfaces a
// type implements on its own, so every interface a deployment
// wants dispatched polymorphically must be registered explicitly. Pass the
// interface's own reflect.Type, as in
// b.RegisterInterface(reflect.TypeOf((*Shape)(nil)).Elem()); a
// non-interface type is ignored. Each event type's expansion is cached on
// first use, so an interface registered after an event type has already
// been expanded (by a Post, a HasSubscriberForEvent call or a sticky
// replay) is not added to that event type's dispatch.
func (b *Bus) RegisterInterface(iface reflect.Type) {
	b.hierarchy.registerInterface(iface)
}

// Register scans subscriber for handler methods and adds each as a live
// subscription. Returns *Error{CodeNoHandlers} if none were found, or
// *Error{CodeIllegalHandler} under strict verification, or
// *Error{CodeAlreadyRegistered} if subscriber is already fully registered.
// Sticky events already held whose type is assignable to a newly
// registered handler's EventType are replayed to that handler before
// Register returns: inline for a POSTING handler, otherwise handed to the
// poster for its ThreadMode.
func (b *Bus) Register(subscriber any) error {
	descriptors, err := b.scanner.scan(subscriber)
	if err != nil {
		return err
	}

	registeredAny := false
	for _, d := range descriptors {
		sub := NewSubscription(subscriber, d)
		if err := b.registry.add(sub); err != nil {
			if registeredAny {
				b.registry.removeAllFor(subscriber)
			}
			return err
		}
		registeredAny = true

		if d.Sticky {
			b.replaySticky(sub)
		}
	}

	return nil
}

// replaySticky delivers every currently-held sticky event whose type is
// assignable to sub's EventType, in the expanded-hierarchy sense (a sticky
// event of a subtype still reaches a handler declared for a supertype).
// Delivery goes through deliverOne so a MAIN/BACKGROUND/ASYNC handler is
// replayed on its own poster exactly as a live Post would route it; only
// the posting queue and cancellation machinery are bypassed, since replay
// happens outside of any Post call.
func (b *Bus) replaySticky(sub *Subscription) {
	d := &dispatcher{bus: b}
	for eventType, event := range b.sticky.all() {
		if !typeDispatchesTo(b, eventType, sub.Descriptor.EventType) {
			continue
		}
		d.deliverOne(sub, event)
	}
}

// typeDispatchesTo reports whether an event of concrete type eventType
// would, under the bus's current inheritance setting, reach a handler
// declared for target.
func typeDispatchesTo(b *Bus, eventType, target reflect.Type) bool {
	if eventType == target {
		return true
	}
	if !b.cfg.eventInheritance {
		return false
	}
	for _, t := range b.hierarchy.expand(eventType) {
		if t == target {
			return true
		}
	}
	return false
}

// Unregister removes every subscription belonging to subscriber. Safe to
// call from within a handler invoked by subscriber itself; use Defer if
// the unregister must not race with the in-flight dispatch loop iterating
// this subscriber's own event type.
func (b *Bus) Unregister(subscriber any) {
	b.registry.removeAllFor(subscriber)
}

// IsRegistered reports whether subscriber currently has at least one live
// subscription.
func (b *Bus) IsRegistered(subscriber any) bool {
	return b.registry.isRegistered(subscriber)
}

// Post delivers event to every live subscriber of its type or (if
// inheritance is enabled) any supertype/interface in its expanded
// hierarchy. A nested Post call — one made from inside a handler currently
// running on this same goroutine — is queued and drained by the outermost
// call in FIFO order.
func (b *Bus) Post(event any) {
	if event == nil {
		if b.cfg.logSubscriberExceptions {
			b.cfg.logger.Warnf("eventbus: Post called with a nil event")
		}
		return
	}
	b.postInternal(event)
}

// postInternal is Post's implementation, also used to re-post built-in
// NoSubscriberEvent/SubscriberExceptionEvent values without re-running the
// nil check (they are never nil).
func (b *Bus) postInternal(event any) {
	st := b.posting.current()

	st.mu.Lock()
	if st.isPosting {
		childDepth := atomic.LoadInt32(&st.depth) + 1
		st.eventQueue = append(st.eventQueue, queuedEvent{event: event, depth: childDepth})
		st.mu.Unlock()
		return
	}
	st.isPosting = true
	st.eventQueue = append(st.eventQueue, queuedEvent{event: event, depth: 1})
	st.mu.Unlock()

	id, trackable := goroutineID()
	defer b.posting.release(id, trackable)

	d := &dispatcher{bus: b}
	for {
		st.mu.Lock()
		if len(st.eventQueue) == 0 {
			st.isPosting = false
			atomic.StoreInt32(&st.depth, 0)
			deferred := st.deferredActions
			st.deferredActions = nil
			st.mu.Unlock()
			if len(deferred) > 0 {
				b.runDeferred(deferred)
			}
			return
		}
		next := st.eventQueue[0]
		st.eventQueue = st.eventQueue[1:]
		st.mu.Unlock()

		atomic.StoreInt32(&st.depth, next.depth)

		if b.cfg.maxPostingDepth > 0 && next.depth > b.cfg.maxPostingDepth {
			if b.cfg.logSubscriberExceptions {
				depthErr := newError(CodeCapacityExceeded,
					fmt.Sprintf("posting cascade depth %d exceeded max %d, dropping event", next.depth, b.cfg.maxPostingDepth),
					WithMeta("eventType", typeKey(reflect.TypeOf(next.event))))
				b.cfg.logger.Errorf("eventbus: %s", depthErr.Error())
			}
			continue
		}

		d.dispatch(next.event)
	}
}

// PostSticky stores event as the latest sticky value for its concrete type,
// then posts it normally. A later Register call whose handler's EventType
// is assignable from a sticky event's type receives it immediately.
func (b *Bus) PostSticky(event any) {
	if event == nil {
		return
	}
	b.sticky.put(event)
	b.postInternal(event)
}

// GetSticky returns the currently held sticky event of exactly eventType,
// if any.
func (b *Bus) GetSticky(eventType reflect.Type) (any, bool) {
	return b.sticky.get(eventType)
}

// RemoveSticky deletes the sticky event stored for exactly eventType.
func (b *Bus) RemoveSticky(eventType reflect.Type) (any, bool) {
	return b.sticky.removeByType(eventType)
}

// RemoveAllSticky deletes every sticky event.
func (b *Bus) RemoveAllSticky() {
	b.sticky.clearAll()
}

// HasSubscriberForEvent reports whether eventType (expanded through the
// hierarchy when inheritance is enabled) currently has at least one live
// subscriber.
func (b *Bus) HasSubscriberForEvent(eventType reflect.Type) bool {
	if b.registry.hasAny(eventType) {
		return true
	}
	if !b.cfg.eventInheritance {
		return false
	}
	for _, t := range b.hierarchy.expand(eventType) {
		if b.registry.hasAny(t) {
			return true
		}
	}
	return false
}

// CancelEventDelivery stops event's remaining delivery to any subscriber
// not yet invoked in the current dispatch pass. Only valid from inside a
// POSTING-mode handler, on the goroutine currently dispatching event,
// stopping delivery to every handler of this event not yet invoked.
func (b *Bus) CancelEventDelivery(event any) error {
	if event == nil {
		return newError(CodeNullEvent, "cannot cancel delivery of a nil event")
	}
	st := b.posting.current()

	st.mu.Lock()
	defer st.mu.Unlock()

	if !st.isPosting || st.currentEvt == nil {
		return newError(CodeNotPosting, "CancelEventDelivery called with no event currently dispatching on this goroutine")
	}
	if st.currentEvt != event {
		return newError(CodeWrongEvent, "CancelEventDelivery called with an event other than the one currently dispatching")
	}
	if st.currentSub == nil || st.currentSub.Descriptor.ThreadMode != Posting {
		return newError(CodeWrongThreadMode, "CancelEventDelivery is only valid from a POSTING-mode handler")
	}

	st.canceled = true
	return nil
}

// Depth returns the current goroutine's posting-cascade depth: 0 outside of
// any Post call, 1 inside the outermost dispatch, 2 inside a handler that
// itself called Post, and so on.
func (b *Bus) Depth() int32 {
	return atomic.LoadInt32(&b.posting.current().depth)
}

// MaxDepth returns the configured posting-cascade depth guard.
func (b *Bus) MaxDepth() int32 {
	return b.cfg.maxPostingDepth
}

// ID returns this Bus instance's generated identifier, useful for
// disambiguating log lines and metrics when a process runs more than one
// Bus (for example, one per tenant or test case).
func (b *Bus) ID() string {
	return b.id
}
