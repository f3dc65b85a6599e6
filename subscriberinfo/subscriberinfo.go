// Copyright (C) 2024 Kirk Diggler
// SPDX-License-Identifier: GPL-3.0-or-later

// Package subscriberinfo holds the precomputed-index alternative to
// reflective handler discovery. Runtimes where reflection is expensive or
// unavailable can supply an Index built at compile/build time instead of
// paying the scanning cost at registration time; behavior matches the
// reflective path exactly, including dedup.
package subscriberinfo

import "reflect"

// MethodInfo mirrors one handler method's metadata — the same fields a
// reflective scan would have derived from an annotated method.
type MethodInfo struct {
	// Name is the exported method name on SubscriberType (or one of its
	// embedded field types).
	Name string
	// EventType is the method's single declared parameter type.
	EventType reflect.Type
	// ThreadMode, Priority, and Sticky carry the would-be annotation's
	// configured values. ThreadMode is stored as an int to avoid an
	// import cycle with the eventbus package; eventbus.ThreadMode values
	// convert to/from int directly.
	ThreadMode int
	Priority   int
	Sticky     bool
}

// Info is the precomputed descriptor set for one subscriber type.
type Info struct {
	SubscriberType reflect.Type
	Methods        []MethodInfo
}

// Index resolves precomputed subscriber info for a type, or nil if the
// index has nothing for it — the scanner falls back to reflection for
// that embedding level in that case.
type Index interface {
	SubscriberInfo(t reflect.Type) *Info
}

// StaticIndex is a simple map-backed Index, suitable for both
// hand-written tables and generated code.
type StaticIndex map[reflect.Type]*Info

// SubscriberInfo implements Index.
func (s StaticIndex) SubscriberInfo(t reflect.Type) *Info {
	return s[t]
}
