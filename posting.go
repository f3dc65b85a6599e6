// Copyright (C) 2024 Kirk Diggler
// SPDX-License-Identifier: GPL-3.0-or-later

package eventbus

import (
	"bytes"
	"runtime"
	"strconv"
	"sync"
)

// queuedEvent pairs a pending event with the posting-cascade generation it
// belongs to: 1 for an event posted from outside any handler, N+1 for an
// event posted by a handler that is itself running at generation N. Since
// Post never recurses — a reentrant call just appends to the outermost
// call's FIFO queue — depth has to be carried explicitly alongside each
// queued event rather than read off the Go call stack.
type queuedEvent struct {
	event any
	depth int32
}

// postingState is the per-goroutine reentrancy context for Post. A
// goroutine's outermost Post call drains the FIFO queue;
// nested (reentrant) Post calls append and return immediately.
type postingState struct {
	mu sync.Mutex

	eventQueue []queuedEvent

	isPosting  bool
	depth      int32 // generation of the event currently dispatching
	canceled   bool
	currentSub *Subscription
	currentEvt any

	deferredActions []*DeferredAction
}

// postingRegistry hands out a *postingState per goroutine. Go exposes no
// public goroutine-local-storage API, so the goroutine id is parsed out of
// runtime.Stack — a documented, widely used technique (see DESIGN.md). If
// parsing ever fails, every caller degenerates to one shared postingState
// guarded by its own mutex.
type postingRegistry struct {
	mu     sync.Mutex
	states map[uint64]*postingState

	fallbackOnce sync.Once
	fallback     *postingState
}

func newPostingRegistry() *postingRegistry {
	return &postingRegistry{states: make(map[uint64]*postingState)}
}

// current returns this goroutine's posting state, creating it if absent.
func (p *postingRegistry) current() *postingState {
	id, ok := goroutineID()
	if !ok {
		p.fallbackOnce.Do(func() { p.fallback = &postingState{} })
		return p.fallback
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	st, ok := p.states[id]
	if !ok {
		st = &postingState{}
		p.states[id] = st
	}
	return st
}

// release drops a finished goroutine's state once its outermost Post call
// returns, so postingRegistry does not grow unbounded across a program's
// lifetime.
func (p *postingRegistry) release(id uint64, ok bool) {
	if !ok {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.states, id)
}

// goroutineID parses "goroutine NNN [running]:" out of a minimal stack
// trace for the calling goroutine. ok is false if the expected format
// ever changes underneath us, in which case callers fall back to a single
// shared posting state.
func goroutineID() (uint64, bool) {
	buf := make([]byte, 64)
	n := runtime.Stack(buf, false)
	buf = buf[:n]

	const prefix = "goroutine "
	if !bytes.HasPrefix(buf, []byte(prefix)) {
		return 0, false
	}
	rest := buf[len(prefix):]
	space := bytes.IndexByte(rest, ' ')
	if space < 0 {
		return 0, false
	}
	id, err := strconv.ParseUint(string(rest[:space]), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}
