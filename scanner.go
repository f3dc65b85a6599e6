// Copyright (C) 2024 Kirk Diggler
// SPDX-License-Identifier: GPL-3.0-or-later

package eventbus

import (
	"context"
	"reflect"
	"strings"
	"sync"

	"github.com/flowmesh-dev/eventbus/subscriberinfo"
)

// errorType/contextType are reflected sentinels used while validating
// handler method shapes.
var (
	errorType   = reflect.TypeOf((*error)(nil)).Elem()
	contextType = reflect.TypeOf((*context.Context)(nil)).Elem()
)

// HandlerOptions carries the per-method metadata (thread mode, priority,
// sticky) controlling how a discovered handler is dispatched. Go has no
// per-method annotations, so a subscriber opts into custom metadata by
// implementing HandlerOptionsProvider (see below). Without it, every
// discovered handler gets the zero-value defaults: Posting, priority 0,
// not sticky.
type HandlerOptions struct {
	ThreadMode ThreadMode
	Priority   int
	Sticky     bool
}

// HandlerOptionsProvider lets a subscriber customize HandlerOptions per
// method name. This is the seam a deployment plugs a codegen or
// configuration-driven handler-metadata source into, instead of relying
// purely on reflection defaults.
type HandlerOptionsProvider interface {
	EventBusHandlerOptions(methodName string) (HandlerOptions, bool)
}

// HandlerNamePredicate decides whether a method name is a handler
// candidate. The default requires the "Handle" prefix.
type HandlerNamePredicate func(methodName string) bool

// DefaultHandlerNamePredicate accepts exported methods named "Handle...".
func DefaultHandlerNamePredicate(methodName string) bool {
	return strings.HasPrefix(methodName, "Handle") && methodName != "Handle"
}

// scanner discovers a subscriber's handler methods by walking its own
// method set and its embedded fields, caches the result per reflect.Type,
// and optionally consults precomputed SubscriberInfoIndex providers
// before falling back to reflection.
type scanner struct {
	mu    sync.RWMutex
	cache map[reflect.Type][]*HandlerDescriptor

	namePredicate    HandlerNamePredicate
	strictVerify     bool
	systemPrefixes   []string // additive opaque-root package-path prefixes
	indexes          []subscriberinfo.Index
	ignoreIndexes    bool
	ownPkgPathPrefix string
}

func newScanner(cfg *config) *scanner {
	return &scanner{
		cache:            make(map[reflect.Type][]*HandlerDescriptor),
		namePredicate:    cfg.handlerNamePredicate,
		strictVerify:     cfg.strictMethodVerification,
		systemPrefixes:   cfg.systemPackagePrefixes,
		indexes:          cfg.subscriberInfoIndexes,
		ignoreIndexes:    cfg.ignoreGeneratedIndex,
		ownPkgPathPrefix: reflect.TypeOf(config{}).PkgPath(),
	}
}

// scan returns the cached or newly discovered handler descriptors for
// subscriber's type. Returns a *Error with CodeNoHandlers if nothing was
// found, or CodeIllegalHandler if strict verification rejected a
// plausible-but-malformed method.
func (s *scanner) scan(subscriber any) ([]*HandlerDescriptor, error) {
	t := reflect.TypeOf(subscriber)
	if t == nil {
		return nil, newError(CodeNoHandlers, "subscriber is nil")
	}

	s.mu.RLock()
	if cached, ok := s.cache[t]; ok {
		s.mu.RUnlock()
		return cached, nil
	}
	s.mu.RUnlock()

	descriptors, err := s.discover(subscriber, t)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if cached, ok := s.cache[t]; ok {
		s.mu.Unlock()
		return cached, nil
	}
	s.cache[t] = descriptors
	s.mu.Unlock()
	return descriptors, nil
}

// candidateSlot tracks the winning descriptor for one (methodName,
// eventType) pair plus the declaring type it came from, so a more-derived
// occurrence (found earlier in the walk) keeps precedence over a
// less-derived one found later.
type candidateSlot struct {
	descriptor *HandlerDescriptor
}

func (s *scanner) discover(subscriber any, top reflect.Type) ([]*HandlerDescriptor, error) {
	visited := make(map[reflect.Type]bool)
	byEventType := make(map[reflect.Type]*candidateSlot) // fast path keyed by event type alone
	bySignature := make(map[string]*candidateSlot)       // fallback keyed by (methodName, eventType)
	var order []*HandlerDescriptor
	var illegal []string

	provider, _ := subscriber.(HandlerOptionsProvider)

	accept := func(declaring reflect.Type, methodName string, eventType reflect.Type, threadMode ThreadMode, priority int, sticky bool, method reflect.Value) {
		desc := &HandlerDescriptor{
			DeclaringType: declaring,
			MethodName:    methodName,
			EventType:     eventType,
			ThreadMode:    threadMode,
			Priority:      priority,
			Sticky:        sticky,
			method:        method,
		}

		// Fast dedup path: has this event type already been claimed by a
		// more-derived occurrence? If the method names also match, skip;
		// if they differ, fall through to (methodName, eventType)
		// bookkeeping (two distinct handlers may legitimately target the
		// same type).
		if slot, ok := byEventType[eventType]; ok {
			if slot.descriptor.MethodName == methodName {
				return
			}
		} else {
			slot := &candidateSlot{descriptor: desc}
			byEventType[eventType] = slot
		}

		sig := methodName + ">" + typeKey(eventType)
		if _, exists := bySignature[sig]; exists {
			return
		}
		bySignature[sig] = &candidateSlot{descriptor: desc}
		order = append(order, desc)
	}

	var walk func(valueType reflect.Type)
	walk = func(valueType reflect.Type) {
		if valueType == nil || visited[valueType] {
			return
		}
		visited[valueType] = true
		if s.isOpaqueRoot(valueType) {
			return
		}

		consumedByIndex := false
		if !s.ignoreIndexes {
			for _, idx := range s.indexes {
				info := idx.SubscriberInfo(valueType)
				if info == nil {
					continue
				}
				consumedByIndex = true
				for _, mi := range info.Methods {
					method, ok := valueType.MethodByName(mi.Name)
					if !ok {
						continue
					}
					boundMethod, ok := bindMethod(subscriber, valueType, method)
					if !ok {
						continue
					}
					accept(valueType, mi.Name, mi.EventType, ThreadMode(mi.ThreadMode), mi.Priority, mi.Sticky, boundMethod)
				}
			}
		}

		if !consumedByIndex {
			for i := 0; i < valueType.NumMethod(); i++ {
				m := valueType.Method(i)
				if !s.namePredicate(m.Name) {
					continue
				}
				eventType, ok, malformedReason := handlerEventType(m.Type)
				if !ok {
					if malformedReason != "" {
						illegal = append(illegal, valueType.String()+"."+m.Name+": "+malformedReason)
					}
					continue
				}

				opts := HandlerOptions{}
				if provider != nil {
					if custom, ok := provider.EventBusHandlerOptions(m.Name); ok {
						opts = custom
					}
				}

				boundMethod, ok := bindMethod(subscriber, valueType, m)
				if !ok {
					continue
				}
				accept(valueType, m.Name, eventType, opts.ThreadMode, opts.Priority, opts.Sticky, boundMethod)
			}
		}

		structType := valueType
		if structType.Kind() == reflect.Ptr {
			structType = structType.Elem()
		}
		if structType.Kind() != reflect.Struct {
			return
		}
		for i := 0; i < structType.NumField(); i++ {
			field := structType.Field(i)
			if !field.Anonymous {
				continue
			}
			fieldType := field.Type
			if fieldType.Kind() != reflect.Ptr {
				fieldType = reflect.PointerTo(fieldType)
			}
			if s.isOpaqueRoot(fieldType.Elem()) {
				continue
			}
			walk(fieldType)
		}
	}

	walk(top)

	if s.strictVerify && len(illegal) > 0 {
		return nil, newError(CodeIllegalHandler, strings.Join(illegal, "; "),
			WithMeta("subscriberType", top.String()))
	}

	if len(order) == 0 {
		return nil, newError(CodeNoHandlers, "no handler methods found on "+top.String(),
			WithMeta("subscriberType", top.String()))
	}

	return order, nil
}

// isOpaqueRoot reports whether t's package should stop the embedded-field
// walk: the Go standard library (heuristically, an import path with no
// dot — third-party paths always carry a registrable domain) or this
// module's own package, plus any caller-configured prefix. This is
// explicitly a heuristic, not a contract.
func (s *scanner) isOpaqueRoot(t reflect.Type) bool {
	pkg := t.PkgPath()
	if pkg == "" {
		return false
	}
	if !strings.Contains(pkg, ".") {
		return true
	}
	if pkg == s.ownPkgPathPrefix {
		return true
	}
	for _, prefix := range s.systemPrefixes {
		if strings.HasPrefix(pkg, prefix) {
			return true
		}
	}
	return false
}

// handlerEventType validates a candidate method's signature: exactly one
// non-receiver parameter, and zero return values or a single error
// return. Returns the declared event type and ok=true on success; ok=false
// with a non-empty reason means the method looked like a handler but is
// malformed (checked under strictMethodVerification).
func handlerEventType(methodType reflect.Type) (eventType reflect.Type, ok bool, reason string) {
	// methodType.In(0) is the receiver for a method obtained via
	// reflect.Type.Method.
	numIn := methodType.NumIn() - 1
	if numIn != 1 {
		return nil, false, "must take exactly one parameter"
	}
	param := methodType.In(1)
	if param == contextType {
		return nil, false, "context-only handlers are not supported; declare func(EventType) [error]"
	}

	switch methodType.NumOut() {
	case 0:
		return param, true, ""
	case 1:
		if methodType.Out(0) != errorType {
			return nil, false, "single return value must be error"
		}
		return param, true, ""
	default:
		return nil, false, "must return zero values or a single error"
	}
}

// bindMethod returns a reflect.Value bound to subscriber, usable with
// HandlerDescriptor.Invoke's single-argument Call.
func bindMethod(subscriber any, valueType reflect.Type, m reflect.Method) (reflect.Value, bool) {
	subscriberValue := reflect.ValueOf(subscriber)
	if subscriberValue.Type() == valueType {
		return subscriberValue.Method(m.Index), true
	}
	// valueType is an embedded field type different from the top-level
	// subscriber type; find the field path and bind through it.
	fieldValue, ok := fieldValueOfType(subscriberValue, valueType)
	if !ok {
		return reflect.Value{}, false
	}
	method := fieldValue.MethodByName(m.Name)
	if !method.IsValid() {
		return reflect.Value{}, false
	}
	return method, true
}

// fieldValueOfType finds the (possibly nested) embedded field of v whose
// type equals target, addressing it as a pointer when target is a pointer
// type so pointer-receiver methods remain callable.
func fieldValueOfType(v reflect.Value, target reflect.Type) (reflect.Value, bool) {
	cur := v
	if cur.Kind() == reflect.Ptr {
		if cur.IsNil() {
			return reflect.Value{}, false
		}
		if cur.Type() == target {
			return cur, true
		}
		cur = cur.Elem()
	} else if cur.Type() == target {
		return cur, true
	}

	if cur.Kind() != reflect.Struct {
		return reflect.Value{}, false
	}
	for i := 0; i < cur.NumField(); i++ {
		field := cur.Type().Field(i)
		if !field.Anonymous {
			continue
		}
		fv := cur.Field(i)
		if field.Type == target {
			return fv, true
		}
		if field.Type.Kind() == reflect.Ptr && field.Type == target {
			return fv, true
		}
		if fv.Kind() == reflect.Ptr && !fv.IsNil() && reflect.PointerTo(fv.Elem().Type()) == target {
			return fv, true
		}
		if found, ok := fieldValueOfType(fv, target); ok {
			return found, true
		}
		if fv.CanAddr() {
			if found, ok := fieldValueOfType(fv.Addr(), target); ok {
				return found, true
			}
		}
	}
	return reflect.Value{}, false
}
