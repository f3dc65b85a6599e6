// Package eventbus provides an in-process publish/subscribe event bus.
//
// Purpose:
// Arbitrary objects register handler methods and receive any event whose
// runtime type — or any registered supertype/interface of it — matches a
// handler's declared parameter type. The bus owns handler discovery
// (reflecting over a subscriber to find its handler methods and caching
// the result), type-hierarchy expansion of a posted event into the set of
// types it may be dispatched to, and a dispatcher that invokes handlers
// under a chosen thread-delivery policy with priority ordering,
// cancellation, sticky replay, and safe concurrent (un)registration.
//
// Scope:
//   - Handler discovery by reflecting over a subscriber's methods and its
//     embedded fields, cached per type.
//   - Type hierarchy expansion with a cache per Bus (not shared between
//     Bus instances).
//   - Priority-ordered, cancellable dispatch across five thread modes.
//   - Sticky event replay at registration time.
//   - Safe concurrent registration, unregistration, and posting.
//
// Non-goals:
//   - Cross-process delivery.
//   - Persistence of events across the bus's lifetime.
//   - Total ordering of deliveries across goroutines.
//   - Exactly-once delivery semantics.
//   - A GUI sample application or host "main thread" implementation —
//     that is modeled only via the MainThreadSupport collaborator.
//
// Example:
//
//	bus := eventbus.New()
//
//	type PlayerSubscriber struct{}
//	func (PlayerSubscriber) HandleDamage(e DamageEvent) error {
//	    fmt.Println("took", e.Amount, "damage")
//	    return nil
//	}
//
//	sub := &PlayerSubscriber{}
//	if err := bus.Register(sub); err != nil {
//	    log.Fatal(err)
//	}
//	bus.Post(DamageEvent{Amount: 10})
package eventbus
