// Copyright (C) 2024 Kirk Diggler
// SPDX-License-Identifier: GPL-3.0-or-later

package eventbus

// DeferredAction batches unregistrations and posts a handler wants applied
// only after the current Post's dispatch loop finishes, so a handler can
// ask to unregister itself (or another subscriber) and publish follow-up
// events without any of it taking effect while that dispatch is still in
// progress. Keyed by subscriber identity rather than by issued
// subscription ids, matching how this bus tracks subscriptions elsewhere.
type DeferredAction struct {
	unregisters []any
	posts       []any
	stickyPosts []any
}

// NewDeferredAction creates an empty DeferredAction.
func NewDeferredAction() *DeferredAction {
	return &DeferredAction{}
}

// Unregister queues subscriber for Unregister once dispatch completes.
func (d *DeferredAction) Unregister(subscribers ...any) *DeferredAction {
	d.unregisters = append(d.unregisters, subscribers...)
	return d
}

// Post queues events for Post once dispatch completes.
func (d *DeferredAction) Post(events ...any) *DeferredAction {
	d.posts = append(d.posts, events...)
	return d
}

// PostSticky queues events for PostSticky once dispatch completes.
func (d *DeferredAction) PostSticky(events ...any) *DeferredAction {
	d.stickyPosts = append(d.stickyPosts, events...)
	return d
}

// Defer registers action to run once the outermost Post call on the
// calling goroutine finishes draining its queue. Calling Defer from
// outside an active Post is a no-op: there is nothing to defer past.
func (b *Bus) Defer(action *DeferredAction) {
	if action == nil {
		return
	}
	st := b.posting.current()
	st.mu.Lock()
	if st.isPosting {
		st.deferredActions = append(st.deferredActions, action)
	}
	st.mu.Unlock()
}

// runDeferred applies every DeferredAction queued during the just-finished
// outermost Post, in the order they were queued: all unregisters first,
// then all non-sticky posts, then all sticky posts.
func (b *Bus) runDeferred(actions []*DeferredAction) {
	for _, action := range actions {
		for _, subscriber := range action.unregisters {
			b.Unregister(subscriber)
		}
	}
	for _, action := range actions {
		for _, event := range action.posts {
			b.Post(event)
		}
	}
	for _, action := range actions {
		for _, event := range action.stickyPosts {
			b.PostSticky(event)
		}
	}
}
