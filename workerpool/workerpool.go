// Copyright (C) 2024 Kirk Diggler
// SPDX-License-Identifier: GPL-3.0-or-later

// Package workerpool provides the default eventbus.WorkerPool implementation,
// built on github.com/sourcegraph/conc's panic-safe goroutine pool rather
// than hand-rolled goroutine management.
package workerpool

import (
	"sync"

	"github.com/sourcegraph/conc/pool"
)

// Pool is the default eventbus.WorkerPool backing the ASYNC and BACKGROUND
// posters. Submit runs a task on the shared unordered pool; SubmitSerial
// routes tasks sharing the same key through a single lazily-created
// goroutine so they execute one at a time, in submission order — the
// BACKGROUND poster's ordering requirement.
type Pool struct {
	unordered *pool.Pool

	mu     sync.Mutex
	serial map[string]chan func()
}

// New returns a Pool. maxGoroutines bounds the unordered pool's concurrency;
// zero or negative means unbounded, matching conc/pool's own default.
func New(maxGoroutines int) *Pool {
	p := pool.New()
	if maxGoroutines > 0 {
		p = p.WithMaxGoroutines(maxGoroutines)
	}
	return &Pool{
		unordered: p,
		serial:    make(map[string]chan func()),
	}
}

// Submit runs task on the unordered pool, with no ordering guarantee
// relative to any other submitted task.
func (p *Pool) Submit(task func()) {
	p.unordered.Go(task)
}

// SubmitSerial runs task after every previously submitted task sharing key
// has finished, and before any later one starts.
func (p *Pool) SubmitSerial(key string, task func()) {
	p.mu.Lock()
	ch, ok := p.serial[key]
	if !ok {
		ch = make(chan func(), 256)
		p.serial[key] = ch
		go p.drain(key, ch)
	}
	p.mu.Unlock()
	ch <- task
}

// drain is the single goroutine owning key's queue. It never exits once
// started; an idle serial lane costs one blocked goroutine, which matches
// the BACKGROUND poster's per-"single background thread" model it is
// standing in for.
func (p *Pool) drain(_ string, ch chan func()) {
	defer func() {
		if r := recover(); r != nil {
			// A handler panic must not take the drain goroutine down with
			// it; resume draining the lane for subsequent tasks.
			go p.resume(ch)
		}
	}()
	for task := range ch {
		task()
	}
}

func (p *Pool) resume(ch chan func()) {
	p.drain("", ch)
}
