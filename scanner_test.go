// Copyright (C) 2024 Kirk Diggler
// SPDX-License-Identifier: GPL-3.0-or-later

package eventbus_test

import (
	"context"
	"reflect"
	"testing"

	"github.com/flowmesh-dev/eventbus"
	"github.com/flowmesh-dev/eventbus/subscriberinfo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type baseHandler struct {
	calls []string
}

func (b *baseHandler) HandleOrderPlaced(OrderPlaced) {
	b.calls = append(b.calls, "base")
}

type derivedHandler struct {
	baseHandler
}

// HandleOrderPlaced overrides baseHandler's: only the derived (most-
// embedding-level-shallow) occurrence should be kept per the dedup rule.
func (d *derivedHandler) HandleOrderPlaced(OrderPlaced) {
	d.calls = append(d.calls, "derived")
}

func TestScanner_DedupKeepsMostDerivedOverride(t *testing.T) {
	bus := eventbus.New()
	d := &derivedHandler{}
	require.NoError(t, bus.Register(d))

	bus.Post(OrderPlaced{ID: "o1"})

	assert.Equal(t, []string{"derived"}, d.calls)
}

type malformedHandler struct{}

func (m *malformedHandler) HandleTooManyArgs(a, b OrderPlaced) {}

func TestScanner_StrictVerification_RejectsMalformedHandler(t *testing.T) {
	bus := eventbus.New(eventbus.WithStrictMethodVerification(true))
	err := bus.Register(&malformedHandler{})

	require.Error(t, err)
	var busErr *eventbus.Error
	require.ErrorAs(t, err, &busErr)
	assert.Equal(t, eventbus.CodeIllegalHandler, busErr.Code)
}

func TestScanner_WithoutStrictVerification_SkipsMalformedHandler(t *testing.T) {
	bus := eventbus.New()
	err := bus.Register(&malformedHandler{})
	require.Error(t, err)
	assert.Equal(t, eventbus.CodeNoHandlers, err.(*eventbus.Error).Code)
}

type contextOnlyHandler struct{}

func (c *contextOnlyHandler) HandleContext(ctx context.Context) {}

func TestScanner_StrictVerification_RejectsContextOnlyHandler(t *testing.T) {
	bus := eventbus.New(eventbus.WithStrictMethodVerification(true))
	err := bus.Register(&contextOnlyHandler{})

	require.Error(t, err)
	assert.Equal(t, eventbus.CodeIllegalHandler, err.(*eventbus.Error).Code)
}

type customNameHandler struct {
	called bool
}

func (c *customNameHandler) OnOrderPlaced(OrderPlaced) {
	c.called = true
}

func TestScanner_CustomHandlerNamePredicate(t *testing.T) {
	bus := eventbus.New(eventbus.WithHandlerNamePredicate(func(name string) bool {
		return name == "OnOrderPlaced"
	}))
	sub := &customNameHandler{}
	require.NoError(t, bus.Register(sub))

	bus.Post(OrderPlaced{ID: "o1"})
	assert.True(t, sub.called)
}

type indexedHandler struct {
	called bool
}

func (i *indexedHandler) HandleOrderPlaced(OrderPlaced) {
	i.called = true
}

func TestScanner_SubscriberInfoIndex_UsedInsteadOfReflection(t *testing.T) {
	handlerType := reflect.TypeOf(&indexedHandler{})
	index := subscriberinfo.StaticIndex{
		handlerType: {
			SubscriberType: handlerType,
			Methods: []subscriberinfo.MethodInfo{
				{Name: "HandleOrderPlaced", EventType: reflect.TypeOf(OrderPlaced{})},
			},
		},
	}

	bus := eventbus.New(eventbus.WithSubscriberInfoIndexes(index))
	sub := &indexedHandler{}
	require.NoError(t, bus.Register(sub))

	bus.Post(OrderPlaced{ID: "o1"})
	assert.True(t, sub.called)
}

func TestScanner_IgnoreGeneratedIndex_FallsBackToReflection(t *testing.T) {
	handlerType := reflect.TypeOf(&indexedHandler{})
	index := subscriberinfo.StaticIndex{
		handlerType: {
			SubscriberType: handlerType,
			Methods:        []subscriberinfo.MethodInfo{{Name: "DoesNotExist", EventType: reflect.TypeOf(OrderPlaced{})}},
		},
	}

	bus := eventbus.New(
		eventbus.WithSubscriberInfoIndexes(index),
		eventbus.WithIgnoreGeneratedIndex(true),
	)
	sub := &indexedHandler{}
	require.NoError(t, bus.Register(sub))

	bus.Post(OrderPlaced{ID: "o1"})
	assert.True(t, sub.called)
}
