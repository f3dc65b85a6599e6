// Copyright (C) 2024 Kirk Diggler
// SPDX-License-Identifier: GPL-3.0-or-later

package eventbus

import "github.com/flowmesh-dev/eventbus/subscriberinfo"

// config holds every tunable the bus accepts, assembled by New from a set
// of functional Options.
type config struct {
	eventInheritance bool

	logSubscriberExceptions  bool
	logNoSubscriberMessages  bool
	sendSubscriberException  bool
	sendNoSubscriberEvent    bool
	throwSubscriberException bool

	strictMethodVerification bool
	ignoreGeneratedIndex     bool

	logger            Logger
	mainThreadSupport MainThreadSupport
	backgroundPool    WorkerPool
	asyncPool         WorkerPool
	metrics           Recorder

	handlerNamePredicate  HandlerNamePredicate
	maxPostingDepth       int32
	systemPackagePrefixes []string
	subscriberInfoIndexes []subscriberinfo.Index
}

// defaultMaxPostingDepth guards against runaway Post-from-handler
// cascades.
const defaultMaxPostingDepth = 64

func newConfig(opts ...Option) *config {
	cfg := &config{
		eventInheritance:         true,
		logSubscriberExceptions:  true,
		logNoSubscriberMessages:  false,
		sendSubscriberException:  true,
		sendNoSubscriberEvent:    false,
		throwSubscriberException: false,
		strictMethodVerification: false,
		ignoreGeneratedIndex:     false,
		logger:                   noopLogger{},
		handlerNamePredicate:     DefaultHandlerNamePredicate,
		maxPostingDepth:          defaultMaxPostingDepth,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Option configures a Bus at construction time, following the
// functional-options idiom.
type Option func(*config)

// WithEventInheritance toggles hierarchy expansion. Disabling it makes
// Post dispatch only to subscribers of the event's exact concrete type —
// an escape hatch for hot paths that never rely on polymorphic dispatch.
func WithEventInheritance(enabled bool) Option {
	return func(c *config) { c.eventInheritance = enabled }
}

// WithLogSubscriberExceptions toggles whether a recovered handler panic or
// returned error is logged via Logger.Errorf.
func WithLogSubscriberExceptions(enabled bool) Option {
	return func(c *config) { c.logSubscriberExceptions = enabled }
}

// WithLogNoSubscriberMessages toggles a Logger.Debugf line when an event is
// posted with no registered subscriber anywhere in its hierarchy.
func WithLogNoSubscriberMessages(enabled bool) Option {
	return func(c *config) { c.logNoSubscriberMessages = enabled }
}

// WithSendSubscriberExceptionEvent toggles re-posting a SubscriberExceptionEvent
// when a handler fails.
func WithSendSubscriberExceptionEvent(enabled bool) Option {
	return func(c *config) { c.sendSubscriberException = enabled }
}

// WithSendNoSubscriberEvent toggles re-posting a NoSubscriberEvent when an
// event reaches no handler.
func WithSendNoSubscriberEvent(enabled bool) Option {
	return func(c *config) { c.sendNoSubscriberEvent = enabled }
}

// WithThrowSubscriberException sets the throwSubscriberException flag. When
// set, the dispatcher's invoke returns a failing POSTING-mode handler's
// error after it has been logged and re-posted as SubscriberExceptionEvent.
// The inline delivery path discards that return value and Post returns no
// error, so the failure does not reach Post's caller; handlers running on
// another poster never return it at all.
func WithThrowSubscriberException(enabled bool) Option {
	return func(c *config) { c.throwSubscriberException = enabled }
}

// WithStrictMethodVerification makes scanning fail with CodeIllegalHandler
// when a method matches the handler name predicate but has a malformed
// signature, instead of silently skipping it.
func WithStrictMethodVerification(enabled bool) Option {
	return func(c *config) { c.strictMethodVerification = enabled }
}

// WithIgnoreGeneratedIndex disables consulting any configured
// subscriberinfo.Index and forces pure reflection-based discovery, even if
// indexes were supplied via WithSubscriberInfoIndexes.
func WithIgnoreGeneratedIndex(enabled bool) Option {
	return func(c *config) { c.ignoreGeneratedIndex = enabled }
}

// WithLogger sets the Logger collaborator. eventbus/eventbuslog provides a
// logrus-backed implementation.
func WithLogger(logger Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMainThreadSupport sets the MainThreadSupport collaborator used to
// build the MAIN and MAIN_ORDERED poster. Without it, MAIN-mode handlers run
// inline.
func WithMainThreadSupport(support MainThreadSupport) Option {
	return func(c *config) { c.mainThreadSupport = support }
}

// WithWorkerPool sets the WorkerPool collaborator backing both the
// BACKGROUND and ASYNC posters. eventbus/workerpool provides a default
// implementation over github.com/sourcegraph/conc/pool.
func WithWorkerPool(pool WorkerPool) Option {
	return func(c *config) {
		c.backgroundPool = pool
		c.asyncPool = pool
	}
}

// WithMetricsRecorder sets the optional dispatch metrics collaborator.
// eventbus/busmetrics provides an OpenTelemetry-backed implementation.
func WithMetricsRecorder(recorder Recorder) Option {
	return func(c *config) { c.metrics = recorder }
}

// WithHandlerNamePredicate overrides which method names are considered
// handler candidates. The default requires a "Handle" prefix.
func WithHandlerNamePredicate(predicate HandlerNamePredicate) Option {
	return func(c *config) {
		if predicate != nil {
			c.handlerNamePredicate = predicate
		}
	}
}

// WithMaxPostingDepth sets the guard against unbounded Post-from-handler
// recursion. A value <= 0 disables the guard.
func WithMaxPostingDepth(depth int32) Option {
	return func(c *config) { c.maxPostingDepth = depth }
}

// WithSystemPackagePrefixes adds import-path prefixes the scanner treats as
// opaque roots — it will not walk embedded fields declared in those
// packages looking for further handler methods. The "system namespace"
// boundary is not part of the bus's contract and is configurable per
// deployment.
func WithSystemPackagePrefixes(prefixes ...string) Option {
	return func(c *config) { c.systemPackagePrefixes = append(c.systemPackagePrefixes, prefixes...) }
}

// WithSubscriberInfoIndexes registers precomputed subscriberinfo.Index
// providers, consulted before reflection during scanning unless
// WithIgnoreGeneratedIndex is set.
func WithSubscriberInfoIndexes(indexes ...subscriberinfo.Index) Option {
	return func(c *config) { c.subscriberInfoIndexes = append(c.subscriberInfoIndexes, indexes...) }
}
