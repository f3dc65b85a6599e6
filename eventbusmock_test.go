// Copyright (C) 2024 Kirk Diggler
// SPDX-License-Identifier: GPL-3.0-or-later

package eventbus_test

import (
	"testing"

	"github.com/flowmesh-dev/eventbus"
	"github.com/flowmesh-dev/eventbus/eventbusmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestWithWorkerPool_AsyncThreadMode_RoutesThroughSubmit(t *testing.T) {
	ctrl := gomock.NewController(t)
	pool := eventbusmock.NewMockWorkerPool(ctrl)
	pool.EXPECT().Submit(gomock.Any()).Do(func(task func()) { task() })

	bus := eventbus.New(eventbus.WithWorkerPool(pool))
	done := make(chan struct{})
	require.NoError(t, bus.Register(&asyncSubscriber{done: done}))

	bus.Post(OrderPlaced{ID: "o1"})

	select {
	case <-done:
	default:
		t.Fatal("async handler did not run synchronously through the mocked Submit")
	}
}

type backgroundSubscriber struct {
	ran bool
}

func (b *backgroundSubscriber) EventBusHandlerOptions(methodName string) (eventbus.HandlerOptions, bool) {
	return eventbus.HandlerOptions{ThreadMode: eventbus.Background}, true
}

func (b *backgroundSubscriber) HandleOrderShipped(OrderShipped) {
	b.ran = true
}

func TestWithWorkerPool_BackgroundThreadMode_RoutesThroughSubmitSerial(t *testing.T) {
	ctrl := gomock.NewController(t)
	pool := eventbusmock.NewMockWorkerPool(ctrl)
	var capturedKey string
	pool.EXPECT().SubmitSerial(gomock.Any(), gomock.Any()).Do(func(key string, task func()) {
		capturedKey = key
		task()
	})

	bus := eventbus.New(eventbus.WithWorkerPool(pool))
	sub := &backgroundSubscriber{}
	require.NoError(t, bus.Register(sub))

	bus.Post(OrderShipped{ID: "o1"})

	assert.True(t, sub.ran)
	assert.NotEmpty(t, capturedKey)
}

func TestWithWorkerPool_UnregisterBeforeAsyncRuns_HandlerSkipped(t *testing.T) {
	ctrl := gomock.NewController(t)
	pool := eventbusmock.NewMockWorkerPool(ctrl)
	var captured func()
	pool.EXPECT().Submit(gomock.Any()).Do(func(task func()) { captured = task })

	bus := eventbus.New(eventbus.WithWorkerPool(pool))
	done := make(chan struct{})
	sub := &asyncSubscriber{done: done}
	require.NoError(t, bus.Register(sub))

	bus.Post(OrderPlaced{ID: "o1"})
	require.NotNil(t, captured)

	bus.Unregister(sub)
	captured()

	select {
	case <-done:
		t.Fatal("handler ran after its subscriber was unregistered before invocation")
	default:
	}
}

type hostPoster struct {
	enqueued int
}

func (h *hostPoster) Enqueue(*eventbus.Subscription, any) {
	h.enqueued++
}

func TestMainThreadSupport_CreatePoster_IsPreferredOverFallback(t *testing.T) {
	ctrl := gomock.NewController(t)
	host := &hostPoster{}
	support := eventbusmock.NewMockMainThreadSupport(ctrl)
	support.EXPECT().CreatePoster(gomock.Any()).Return(host)

	bus := eventbus.New(eventbus.WithMainThreadSupport(support))
	sub := &mainSubscriber{}
	require.NoError(t, bus.Register(sub))

	bus.Post(OrderPlaced{ID: "o1"})

	assert.Equal(t, 1, host.enqueued)
}

type mainSubscriber struct{}

func (m *mainSubscriber) EventBusHandlerOptions(methodName string) (eventbus.HandlerOptions, bool) {
	return eventbus.HandlerOptions{ThreadMode: eventbus.Main}, true
}

func (m *mainSubscriber) HandleOrderPlaced(OrderPlaced) {}
