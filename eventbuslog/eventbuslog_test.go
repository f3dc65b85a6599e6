// Copyright (C) 2024 Kirk Diggler
// SPDX-License-Identifier: GPL-3.0-or-later

package eventbuslog_test

import (
	"bytes"
	"testing"

	"github.com/flowmesh-dev/eventbus/eventbuslog"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestAdapter_ErrorfWritesThroughLogrus(t *testing.T) {
	var buf bytes.Buffer
	log := logrus.New()
	log.SetOutput(&buf)
	log.SetLevel(logrus.DebugLevel)
	log.SetFormatter(&logrus.TextFormatter{DisableColors: true})

	adapter := eventbuslog.New(log)
	adapter.Errorf("handler %s failed: %v", "OnOrderPlaced", "boom")

	out := buf.String()
	assert.Contains(t, out, "level=error")
	assert.Contains(t, out, "handler OnOrderPlaced failed: boom")
	assert.Contains(t, out, `component=eventbus`)
}

func TestAdapter_NilLogger_FallsBackToStandardLogger(t *testing.T) {
	assert.NotPanics(t, func() {
		adapter := eventbuslog.New(nil)
		adapter.Debugf("no subscribers for %s", "OrderPlaced")
	})
}

func TestAdapter_WarnfRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := logrus.New()
	log.SetOutput(&buf)
	log.SetLevel(logrus.WarnLevel)

	adapter := eventbuslog.New(log)
	adapter.Debugf("this should be suppressed")
	adapter.Warnf("this should appear")

	out := buf.String()
	assert.NotContains(t, out, "suppressed")
	assert.Contains(t, out, "this should appear")
}
