// Copyright (C) 2024 Kirk Diggler
// SPDX-License-Identifier: GPL-3.0-or-later

package eventbus

// backgroundPoster implements the BACKGROUND thread mode: deliveries run
// off the posting goroutine, one at a time and in submission order,
// matching greenrobot's single dedicated background thread. It is backed
// by WorkerPool.SubmitSerial under one fixed key, so concurrent Post calls
// from many goroutines still serialize BACKGROUND handler execution.
type backgroundPoster struct {
	pool WorkerPool
	bus  *Bus
}

const backgroundSerialKey = "eventbus.background"

func newBackgroundPoster(pool WorkerPool, bus *Bus) Poster {
	if pool == nil {
		return inlinePoster{bus: bus}
	}
	return &backgroundPoster{pool: pool, bus: bus}
}

func (p *backgroundPoster) Enqueue(sub *Subscription, event any) {
	item := acquirePendingPost(sub, event)
	p.pool.SubmitSerial(backgroundSerialKey, func() {
		defer releasePendingPost(item)
		(&dispatcher{bus: p.bus}).invoke(item.sub, item.event)
	})
}
