// Copyright (C) 2024 Kirk Diggler
// SPDX-License-Identifier: GPL-3.0-or-later

// Package busmetrics provides an OpenTelemetry-backed implementation of
// eventbus.Recorder using go.opentelemetry.io/otel/metric for service
// instrumentation.
package busmetrics

import (
	"context"

	"github.com/flowmesh-dev/eventbus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Recorder implements eventbus.Recorder on top of an OpenTelemetry Meter.
type Recorder struct {
	invoked       metric.Int64Counter
	failed        metric.Int64Counter
	noSubscribers metric.Int64Counter
	duration      metric.Float64Histogram
}

var _ eventbus.Recorder = (*Recorder)(nil)

// New builds a Recorder instrumenting meter under the "eventbus" name.
func New(meter metric.Meter) (*Recorder, error) {
	invoked, err := meter.Int64Counter("eventbus.handler.invoked",
		metric.WithDescription("Number of handler invocations that completed without error"))
	if err != nil {
		return nil, err
	}
	failed, err := meter.Int64Counter("eventbus.handler.failed",
		metric.WithDescription("Number of handler invocations that returned an error or panicked"))
	if err != nil {
		return nil, err
	}
	noSubscribers, err := meter.Int64Counter("eventbus.event.no_subscribers",
		metric.WithDescription("Number of Post calls that reached no handler"))
	if err != nil {
		return nil, err
	}
	duration, err := meter.Float64Histogram("eventbus.handler.duration",
		metric.WithDescription("Handler invocation duration in seconds"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}
	return &Recorder{
		invoked:       invoked,
		failed:        failed,
		noSubscribers: noSubscribers,
		duration:      duration,
	}, nil
}

// HandlerInvoked implements eventbus.Recorder.
func (r *Recorder) HandlerInvoked(eventType string, threadMode eventbus.ThreadMode, durationSeconds float64) {
	attrs := metric.WithAttributes(
		attribute.String("event_type", eventType),
		attribute.String("thread_mode", threadMode.String()),
	)
	r.invoked.Add(context.Background(), 1, attrs)
	r.duration.Record(context.Background(), durationSeconds, attrs)
}

// HandlerFailed implements eventbus.Recorder.
func (r *Recorder) HandlerFailed(eventType string, threadMode eventbus.ThreadMode) {
	r.failed.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("event_type", eventType),
		attribute.String("thread_mode", threadMode.String()),
	))
}

// NoSubscribers implements eventbus.Recorder.
func (r *Recorder) NoSubscribers(eventType string) {
	r.noSubscribers.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("event_type", eventType),
	))
}
