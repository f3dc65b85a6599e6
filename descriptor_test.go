// Copyright (C) 2024 Kirk Diggler
// SPDX-License-Identifier: GPL-3.0-or-later

package eventbus_test

import (
	"errors"
	"testing"

	"github.com/flowmesh-dev/eventbus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type panickyHandler struct{}

func (p *panickyHandler) HandleOrderPlaced(OrderPlaced) {
	panic("handler exploded")
}

func TestInvoke_RecoversPanic_ReturnsHandlerInvocationFailed(t *testing.T) {
	bus := eventbus.New()
	require.NoError(t, bus.Register(&panickyHandler{}))

	var caught *eventbus.SubscriberExceptionEvent
	require.NoError(t, bus.Register(&exceptionCatcher{caught: &caught}))

	assert.NotPanics(t, func() {
		bus.Post(OrderPlaced{ID: "o1"})
	})

	require.NotNil(t, caught)
	assert.ErrorIs(t, caught.Cause, eventbus.CodeError(eventbus.CodeHandlerInvocationFailed))
}

type failingHandler struct{}

func (f *failingHandler) HandleOrderShipped(OrderShipped) error {
	return errors.New("shipment rejected")
}

func TestPost_HandlerError_RepostsSubscriberExceptionEvent(t *testing.T) {
	bus := eventbus.New()
	require.NoError(t, bus.Register(&failingHandler{}))

	var caught *eventbus.SubscriberExceptionEvent
	catcher := &exceptionCatcher{caught: &caught}
	require.NoError(t, bus.Register(catcher))

	bus.Post(OrderShipped{ID: "o1"})

	require.NotNil(t, caught)
	assert.EqualError(t, caught.Cause, "shipment rejected")
}

type exceptionCatcher struct {
	caught **eventbus.SubscriberExceptionEvent
}

func (e *exceptionCatcher) HandleSubscriberExceptionEvent(evt eventbus.SubscriberExceptionEvent) {
	*e.caught = &evt
}

func TestNewSubscription_StartsActive(t *testing.T) {
	sub := eventbus.NewSubscription(&basicSubscriber{}, &eventbus.HandlerDescriptor{})
	assert.True(t, sub.Active())
}

type bogusThreadModeSubscriber struct{}

func (b *bogusThreadModeSubscriber) EventBusHandlerOptions(methodName string) (eventbus.HandlerOptions, bool) {
	return eventbus.HandlerOptions{ThreadMode: eventbus.ThreadMode(99)}, true
}

func (b *bogusThreadModeSubscriber) HandleOrderPlaced(OrderPlaced) {}

func TestPost_UnknownThreadMode_Panics(t *testing.T) {
	bus := eventbus.New()
	require.NoError(t, bus.Register(&bogusThreadModeSubscriber{}))

	assert.Panics(t, func() {
		bus.Post(OrderPlaced{ID: "o1"})
	})
}
