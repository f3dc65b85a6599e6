// Copyright (C) 2024 Kirk Diggler
// SPDX-License-Identifier: GPL-3.0-or-later

package eventbus

// Poster is a collaborator that accepts (subscription, event) pairs and
// invokes the handler later, possibly on a different goroutine. The three
// concrete posters — main, background, async — all implement this.
type Poster interface {
	Enqueue(sub *Subscription, event any)
}

// MainThreadSupport is the host collaborator that tells the bus which
// goroutine is "main" and builds the poster that drains onto it. If
// absent, MAIN handlers run inline and IsMainThread is treated as true
// everywhere.
type MainThreadSupport interface {
	IsMainThread() bool
	CreatePoster(b *Bus) Poster
}

// WorkerPool is the host collaborator used by the background and async
// posters. SubmitSerial runs tasks sharing the same key one at a time, in
// submission order — the background poster's single-serial-worker
// requirement; Submit runs a task with no ordering guarantee — the async
// poster's requirement. eventbus/workerpool provides a default
// implementation over github.com/sourcegraph/conc/pool.
type WorkerPool interface {
	Submit(task func())
	SubmitSerial(key string, task func())
}

// pendingPost pairs a subscription with the event it will be delivered,
// pooled to avoid a per-delivery allocation.
type pendingPost struct {
	sub   *Subscription
	event any
}

var pendingPostPool = make(chan *pendingPost, 256)

func acquirePendingPost(sub *Subscription, event any) *pendingPost {
	select {
	case p := <-pendingPostPool:
		p.sub, p.event = sub, event
		return p
	default:
		return &pendingPost{sub: sub, event: event}
	}
}

func releasePendingPost(p *pendingPost) {
	p.sub, p.event = nil, nil
	select {
	case pendingPostPool <- p:
	default:
	}
}
