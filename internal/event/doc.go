// Package event provides the application's event bus.
//
// The bus is the communication backbone between otherwise decoupled
// parts of the application: documents, projects, views, services, and
// the component registry all talk through it without referencing each
// other directly.
//
// # Model
//
// Delivery is synchronous. Emit runs every matching handler on the
// caller's goroutine before returning; there are no worker pools and
// no queues. Handler errors and panics are recovered, counted, logged,
// and re-emitted as "error.occurred" events. They never propagate to
// the emitter and never stop delivery to later handlers.
//
// Events carry a dotted Kind ("document.saved"), an arbitrary payload,
// and Metadata with an ID, timestamp, source, category, and priority.
// When no source is given the bus infers one from the caller's stack
// frame.
//
// # Subscriptions
//
// Subscribe returns a Subscription handle. Handlers run in ascending
// handler-priority order, kind-specific subscriptions before
// catch-all ones. Cancelling the handle stops delivery immediately;
// cancelled registrations are swept lazily. Subscribing the same
// comparable handler value to the same kind with default options is
// idempotent.
//
//	bus := event.NewBus()
//	sub, _ := bus.Subscribe("document.saved", handler)
//	defer sub.Cancel()
//
//	_ = bus.EmitKind(ctx, "document.saved", payload)
//
// # Filters
//
// A Filter is a conjunction over category, priority, kind, and source
// sets; an empty dimension matches everything. Filters apply to
// subscriptions (WithFilter) and to history queries.
//
// # History
//
// The bus retains a bounded FIFO of emitted events (default 100).
// History returns matches oldest first; ClearHistory empties it.
//
// # Legacy channels
//
// LegacyAdapter forwards events to channel-based map callbacks for
// plugins written against the old API, after all normal handlers ran.
//
// # Subpackages
//
//   - events: the catalog of framework event kinds and payloads
package event
