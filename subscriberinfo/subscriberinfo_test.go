// Copyright (C) 2024 Kirk Diggler
// SPDX-License-Identifier: GPL-3.0-or-later

package subscriberinfo_test

import (
	"reflect"
	"testing"

	"github.com/flowmesh-dev/eventbus/subscriberinfo"
	"github.com/stretchr/testify/assert"
)

type widget struct{}

func TestStaticIndex_SubscriberInfo(t *testing.T) {
	widgetType := reflect.TypeOf(widget{})
	info := &subscriberinfo.Info{
		SubscriberType: widgetType,
		Methods: []subscriberinfo.MethodInfo{
			{Name: "HandleResize", EventType: widgetType},
		},
	}
	index := subscriberinfo.StaticIndex{widgetType: info}

	got := index.SubscriberInfo(widgetType)
	assert.Same(t, info, got)
}

func TestStaticIndex_MissingType_ReturnsNil(t *testing.T) {
	index := subscriberinfo.StaticIndex{}
	assert.Nil(t, index.SubscriberInfo(reflect.TypeOf(widget{})))
}
