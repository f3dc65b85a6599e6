// Copyright (C) 2024 Kirk Diggler
// SPDX-License-Identifier: GPL-3.0-or-later

package eventbus

// asyncPoster implements the ASYNC thread mode: every delivery runs
// concurrently, with no ordering guarantee relative to any other ASYNC
// delivery, on WorkerPool's unordered pool.
type asyncPoster struct {
	pool WorkerPool
	bus  *Bus
}

func newAsyncPoster(pool WorkerPool, bus *Bus) Poster {
	if pool == nil {
		return inlinePoster{bus: bus}
	}
	return &asyncPoster{pool: pool, bus: bus}
}

func (p *asyncPoster) Enqueue(sub *Subscription, event any) {
	item := acquirePendingPost(sub, event)
	p.pool.Submit(func() {
		defer releasePendingPost(item)
		(&dispatcher{bus: p.bus}).invoke(item.sub, item.event)
	})
}
