package event

import "errors"

// Sentinel errors for the event bus.
var (
	// ErrBusClosed is returned when operations are attempted on a closed bus.
	ErrBusClosed = errors.New("event bus is closed")

	// ErrInvalidEvent is returned when an event is missing its kind.
	ErrInvalidEvent = errors.New("invalid event")

	// ErrInvalidKind is returned when a kind is empty.
	ErrInvalidKind = errors.New("invalid event kind")

	// ErrNilHandler is returned when a nil handler is provided.
	ErrNilHandler = errors.New("handler cannot be nil")

	// ErrInvalidSubscription is returned when a subscription is nil or foreign.
	ErrInvalidSubscription = errors.New("invalid subscription")

	// ErrSubscriptionNotFound is returned when unsubscribing an unknown subscription.
	ErrSubscriptionNotFound = errors.New("subscription not found")

	// ErrHandlerPanic is returned when a handler panics.
	ErrHandlerPanic = errors.New("handler panicked")

	// ErrSubscriberClosed is returned when subscribing through a closed Subscriber.
	ErrSubscriberClosed = errors.New("subscriber is closed")
)

// HandlerError wraps an error from a handler with additional context.
type HandlerError struct {
	// SubscriptionID is the ID of the subscription whose handler failed.
	SubscriptionID string

	// Kind is the kind of the event being delivered.
	Kind Kind

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *HandlerError) Error() string {
	return "handler error for subscription " + e.SubscriptionID + " on " + string(e.Kind) + ": " + e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *HandlerError) Unwrap() error {
	return e.Err
}

// PanicError wraps a panic value as an error.
type PanicError struct {
	// SubscriptionID is the ID of the subscription whose handler panicked.
	SubscriptionID string

	// Kind is the kind of the event being delivered.
	Kind Kind

	// Value is the value passed to panic().
	Value any

	// Stack is the stack trace at the time of the panic.
	Stack string
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return "handler panic for subscription " + e.SubscriptionID + " on " + string(e.Kind)
}

// Is allows errors.Is to match PanicError with ErrHandlerPanic.
func (e *PanicError) Is(target error) bool {
	return target == ErrHandlerPanic
}
