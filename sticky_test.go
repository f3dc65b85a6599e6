// Copyright (C) 2024 Kirk Diggler
// SPDX-License-Identifier: GPL-3.0-or-later

package eventbus_test

import (
	"reflect"
	"testing"

	"github.com/flowmesh-dev/eventbus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostSticky_ReplacesPriorValueOfSameType(t *testing.T) {
	bus := eventbus.New()
	bus.PostSticky(OrderPlaced{ID: "first"})
	bus.PostSticky(OrderPlaced{ID: "second"})

	got, ok := bus.GetSticky(reflect.TypeOf(OrderPlaced{}))
	require.True(t, ok)
	assert.Equal(t, "second", got.(OrderPlaced).ID)
}

func TestRemoveAllSticky(t *testing.T) {
	bus := eventbus.New()
	bus.PostSticky(OrderPlaced{ID: "o1"})
	bus.PostSticky(OrderShipped{ID: "o1"})

	bus.RemoveAllSticky()

	_, ok := bus.GetSticky(reflect.TypeOf(OrderPlaced{}))
	assert.False(t, ok)
}

func TestRegister_StickyHandler_NoPriorEvent_ReceivesNothing(t *testing.T) {
	bus := eventbus.New()
	sub := &stickySubscriber{}
	require.NoError(t, bus.Register(sub))

	sub.mu.Lock()
	defer sub.mu.Unlock()
	assert.Empty(t, sub.received)
}
