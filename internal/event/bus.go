package event

import (
	"context"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/inkwright/inkwright/internal/logging"
)

// KindError is the kind of failure events the bus emits when a
// handler returns an error or panics.
const KindError Kind = "error.occurred"

// ErrorPayload is the payload of bus-emitted failure events.
type ErrorPayload struct {
	// Message describes the failure.
	Message string

	// Component identifies where the failure happened.
	Component string

	// Kind is the kind of the event whose handling failed, if any.
	Kind Kind

	// Recoverable indicates the failure was isolated and the
	// application can continue.
	Recoverable bool
}

// Bus is the central event bus interface.
type Bus interface {
	// Emitting
	Emit(ctx context.Context, e Event) error
	EmitKind(ctx context.Context, kind Kind, payload any, opts ...EventOption) error

	// Subscription
	Subscribe(kind Kind, handler Handler, opts ...SubscriptionOption) (Subscription, error)
	SubscribeFunc(kind Kind, fn HandlerFunc, opts ...SubscriptionOption) (Subscription, error)
	SubscribeAll(handler Handler, opts ...SubscriptionOption) (Subscription, error)
	Unsubscribe(sub Subscription) error
	UnsubscribeKind(kind Kind) int

	// History
	History(max int, f *Filter) []Event
	ClearHistory()

	// Status
	Stats() Stats
	Close() error
}

// bus is the default Bus implementation.
type bus struct {
	registry *registry
	history  *history
	exec     executor
	logger   *logging.Logger
	config   busConfig

	closed atomic.Bool

	// Stats
	eventsPublished atomic.Uint64
	eventsDelivered atomic.Uint64
	eventsFiltered  atomic.Uint64
	handlerErrors   atomic.Uint64
	handlerPanics   atomic.Uint64
}

// NewBus creates a new event bus with the given options. The bus is
// ready to use immediately.
func NewBus(opts ...BusOption) Bus {
	config := defaultBusConfig()
	for _, opt := range opts {
		opt(&config)
	}

	return &bus{
		registry: newRegistry(),
		history:  newHistory(config.historyLimit),
		exec:     executor{panicHandler: config.panicHandler},
		logger:   config.logger.WithComponent("events"),
		config:   config,
	}
}

// Emit delivers an event synchronously to all matching subscriptions.
// It returns an error only for an invalid event or a closed bus;
// handler failures are isolated and reported as error events.
func (b *bus) Emit(ctx context.Context, e Event) error {
	if b.closed.Load() {
		return ErrBusClosed
	}
	if !e.Kind.Valid() || e.Kind == KindAll {
		return ErrInvalidEvent
	}

	b.emit(ctx, b.normalize(e))
	return nil
}

// EmitKind constructs and emits an event in one call. When no
// WithSource option is given, the source is inferred from the caller.
func (b *bus) EmitKind(ctx context.Context, kind Kind, payload any, opts ...EventOption) error {
	return b.Emit(ctx, New(kind, payload, opts...))
}

// emit runs the fan-out for an already validated event, records it in
// history, and raises error events for handler failures.
func (b *bus) emit(ctx context.Context, e Event) {
	b.eventsPublished.Add(1)
	failures := b.deliver(ctx, e)
	b.history.Record(e)

	if len(failures) == 0 {
		return
	}
	if e.Kind == KindError {
		// Failures while handling an error event are logged only.
		// Emitting another error event here could recurse forever.
		for _, ferr := range failures {
			b.logger.Error("error-event handler failed: %v", ferr)
		}
		return
	}
	for _, ferr := range failures {
		b.emit(ctx, New(KindError, ErrorPayload{
			Message:     ferr.Error(),
			Component:   "events",
			Kind:        e.Kind,
			Recoverable: true,
		}, WithCategory(CategoryError), WithPriority(PriorityHigh), WithSource("events")))
	}
}

// deliver offers the event to every matching subscription in order and
// returns the failures it observed.
func (b *bus) deliver(ctx context.Context, e Event) []error {
	subs := b.registry.Match(e.Kind)
	if len(subs) == 0 {
		return nil
	}

	var failures []error
	sawCancelled := false

	for _, sub := range subs {
		deliver, filtered := sub.ShouldDeliver(e)
		if filtered {
			b.eventsFiltered.Add(1)
			continue
		}
		if !deliver {
			sawCancelled = true
			continue
		}

		result := b.exec.Execute(ctx, e, sub.Handler())

		switch {
		case result.Panicked:
			b.handlerPanics.Add(1)
			perr := &PanicError{
				SubscriptionID: sub.ID(),
				Kind:           e.Kind,
				Value:          result.PanicValue,
				Stack:          string(result.PanicStack),
			}
			b.logger.Error("handler panic on %s: %v", e.Kind, result.PanicValue)
			failures = append(failures, perr)
		case result.Error != nil:
			b.handlerErrors.Add(1)
			herr := &HandlerError{
				SubscriptionID: sub.ID(),
				Kind:           e.Kind,
				Err:            result.Error,
			}
			b.logger.Error("handler error on %s: %v", e.Kind, result.Error)
			failures = append(failures, herr)
		default:
			b.eventsDelivered.Add(1)
		}

		if sub.Config().Once {
			sub.Cancel()
			b.registry.Remove(sub.ID())
		}
	}

	if sawCancelled {
		b.registry.RemoveCancelled()
	}
	return failures
}

// normalize fills metadata a hand-built event may be missing.
func (b *bus) normalize(e Event) Event {
	if e.Metadata.ID == "" {
		e.Metadata.ID = uuid.NewString()
	}
	if e.Metadata.Timestamp.IsZero() {
		e.Metadata.Timestamp = timeNow()
	}
	if e.Metadata.Source == "" {
		e.Metadata.Source = callerSource()
	}
	return e
}

// Subscribe creates a subscription for the given kind. Subscribing the
// same comparable handler value to the same kind with default options
// is idempotent and returns the existing subscription.
func (b *bus) Subscribe(kind Kind, handler Handler, opts ...SubscriptionOption) (Subscription, error) {
	if b.closed.Load() {
		return nil, ErrBusClosed
	}
	if handler == nil {
		return nil, ErrNilHandler
	}
	if !kind.Valid() {
		return nil, ErrInvalidKind
	}

	sub := newSubscription(uuid.NewString(), kind, handler, opts...)

	if sub.config.isDefault() {
		if existing, ok := b.registry.FindDefault(kind, handler); ok {
			return existing, nil
		}
		if handlerComparable(handler) {
			sub.dedupe = &dedupeKey{kind: kind, handler: handler}
		}
	}

	b.registry.Add(sub)
	return sub, nil
}

// SubscribeFunc is a convenience method for subscribing with a function handler.
func (b *bus) SubscribeFunc(kind Kind, fn HandlerFunc, opts ...SubscriptionOption) (Subscription, error) {
	return b.Subscribe(kind, fn, opts...)
}

// SubscribeAll subscribes to every event regardless of kind.
// Catch-all handlers run after kind-specific handlers.
func (b *bus) SubscribeAll(handler Handler, opts ...SubscriptionOption) (Subscription, error) {
	return b.Subscribe(KindAll, handler, opts...)
}

// Unsubscribe cancels and removes a subscription.
func (b *bus) Unsubscribe(sub Subscription) error {
	if sub == nil {
		return ErrInvalidSubscription
	}

	sub.Cancel()
	if !b.registry.Remove(sub.ID()) {
		return ErrSubscriptionNotFound
	}
	return nil
}

// UnsubscribeKind cancels and removes every subscription for a kind.
// Returns the number removed.
func (b *bus) UnsubscribeKind(kind Kind) int {
	return b.registry.RemoveKind(kind)
}

// History returns retained events matching the filter, oldest first.
// When max is positive, only the most recent max matches are returned.
func (b *bus) History(max int, f *Filter) []Event {
	return b.history.List(max, f)
}

// ClearHistory discards all retained events.
func (b *bus) ClearHistory() {
	b.history.Clear()
}

// Stats returns current bus statistics.
func (b *bus) Stats() Stats {
	return Stats{
		EventsPublished:     b.eventsPublished.Load(),
		EventsDelivered:     b.eventsDelivered.Load(),
		EventsFiltered:      b.eventsFiltered.Load(),
		HandlerErrors:       b.handlerErrors.Load(),
		HandlerPanics:       b.handlerPanics.Load(),
		ActiveSubscriptions: b.registry.CountActive(),
		HistorySize:         b.history.Len(),
	}
}

// Close stops the bus. Emitting or subscribing afterwards fails with
// ErrBusClosed; history remains readable. Close is idempotent.
func (b *bus) Close() error {
	if b.closed.Swap(true) {
		return nil
	}
	b.registry.Clear()
	return nil
}
