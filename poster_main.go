// Copyright (C) 2024 Kirk Diggler
// SPDX-License-Identifier: GPL-3.0-or-later

package eventbus

import "sync"

// mainPoster implements the MAIN and MAIN_ORDERED thread modes: it FIFO-
// queues deliveries and relies on the host collaborator's MainThreadSupport
// to drain the queue on its main goroutine. Without a configured
// MainThreadSupport, the bus falls back to inlinePoster so MAIN handlers
// still run (synchronously, on the posting goroutine) rather than silently
// never firing.
type mainPoster struct {
	mu      sync.Mutex
	pending []pendingPost
	active  bool

	support MainThreadSupport
	bus     *Bus
}

// newMainPoster prefers a poster the host builds itself via CreatePoster —
// only the host truly knows how to schedule work onto its own main loop
// (a UI framework's dispatcher, a game engine's frame callback, a channel
// pump). If CreatePoster returns nil, or no MainThreadSupport was
// configured at all, it falls back to the bundled FIFO mainPoster, driven
// by IsMainThread polling, or to fully inline delivery.
func newMainPoster(support MainThreadSupport, bus *Bus) Poster {
	if support == nil {
		return inlinePoster{bus: bus}
	}
	if p := support.CreatePoster(bus); p != nil {
		return p
	}
	return &mainPoster{support: support, bus: bus}
}

// Enqueue appends the delivery. MAIN_ORDERED always queues, preserving
// cross-source ordering relative to other queued deliveries. Plain MAIN
// drains immediately, inline, when called from the main goroutine with
// nothing else already draining — matching greenrobot's "post immediately
// if already on main thread" MAIN behavior, which MAIN_ORDERED explicitly
// forgoes.
func (p *mainPoster) Enqueue(sub *Subscription, event any) {
	p.mu.Lock()
	p.pending = append(p.pending, pendingPost{sub: sub, event: event})
	if p.active {
		p.mu.Unlock()
		return
	}
	if sub.Descriptor.ThreadMode != MainOrdered && !p.support.IsMainThread() {
		p.mu.Unlock()
		return
	}
	if sub.Descriptor.ThreadMode == MainOrdered {
		// Always queued; the fallback poster has no pump of its own, so a
		// MAIN_ORDERED delivery drains only once some later MAIN Enqueue
		// call happens to run on the main goroutine. Hosts that need
		// MAIN_ORDERED drained promptly should implement CreatePoster.
		p.mu.Unlock()
		return
	}
	p.active = true
	p.mu.Unlock()

	p.drain()
}

// drain runs every queued delivery in FIFO order. It is called only from
// Enqueue, for a MAIN delivery made on the main goroutine; nothing else
// drains this queue.
func (p *mainPoster) drain() {
	for {
		p.mu.Lock()
		if len(p.pending) == 0 {
			p.active = false
			p.mu.Unlock()
			return
		}
		next := p.pending[0]
		p.pending = p.pending[1:]
		p.mu.Unlock()

		(&dispatcher{bus: p.bus}).invoke(next.sub, next.event)
	}
}

// inlinePoster invokes synchronously, used for MAIN/MAIN_ORDERED when no
// MainThreadSupport is configured.
type inlinePoster struct {
	bus *Bus
}

func (p inlinePoster) Enqueue(sub *Subscription, event any) {
	(&dispatcher{bus: p.bus}).invoke(sub, event)
}
