package event

import "context"

// Handler is the interface for event handlers.
type Handler interface {
	// Handle processes a single event. A non-nil error is recorded and
	// surfaced as an error event; it never stops delivery to other handlers.
	Handle(ctx context.Context, e Event) error
}

// HandlerFunc is a function adapter for Handler.
type HandlerFunc func(ctx context.Context, e Event) error

// Handle implements the Handler interface.
func (f HandlerFunc) Handle(ctx context.Context, e Event) error {
	return f(ctx, e)
}

// PanicHandler is called when a handler panics.
type PanicHandler func(e Event, recovered any, stack []byte)

// Stats contains event bus counters.
type Stats struct {
	// EventsPublished is the total number of events emitted.
	EventsPublished uint64

	// EventsDelivered is the total number of successful handler invocations.
	EventsDelivered uint64

	// EventsFiltered is the number of deliveries skipped by filters.
	EventsFiltered uint64

	// HandlerErrors is the number of handlers that returned errors.
	HandlerErrors uint64

	// HandlerPanics is the number of handlers that panicked.
	HandlerPanics uint64

	// ActiveSubscriptions is the current number of live subscriptions.
	ActiveSubscriptions int

	// HistorySize is the current number of retained history entries.
	HistorySize int
}
