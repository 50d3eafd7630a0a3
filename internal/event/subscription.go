package event

import "sync/atomic"

// SubscriptionState represents the state of a subscription.
type SubscriptionState int32

const (
	// SubscriptionStateActive means the subscription is receiving events.
	SubscriptionStateActive SubscriptionState = iota

	// SubscriptionStateCancelled means the subscription has been permanently cancelled.
	SubscriptionStateCancelled
)

// String returns a human-readable state name.
func (s SubscriptionState) String() string {
	switch s {
	case SubscriptionStateActive:
		return "active"
	case SubscriptionStateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Subscription is the handle returned by Subscribe. Holding the handle
// keeps nothing alive; cancelling it permanently stops delivery. A
// handler whose owner forgets to cancel keeps receiving events, so
// owners should cancel in their teardown path.
type Subscription interface {
	// ID returns the unique subscription identifier.
	ID() string

	// Kind returns the subscribed kind, or KindAll for catch-all subscriptions.
	Kind() Kind

	// State returns the current subscription state.
	State() SubscriptionState

	// Active returns true if the subscription can receive events.
	Active() bool

	// Cancel permanently cancels the subscription. Cancelling twice is a no-op.
	Cancel()
}

// SubscriptionConfig contains configuration for a subscription.
type SubscriptionConfig struct {
	// HandlerPriority determines execution order within a delivery
	// group. Lower values execute first.
	HandlerPriority int

	// Filter restricts which events are delivered. Nil delivers all.
	Filter *Filter

	// Once auto-cancels the subscription after its first delivery.
	Once bool
}

// DefaultHandlerPriority is the execution priority assigned when no
// WithHandlerPriority option is given.
const DefaultHandlerPriority = 100

// DefaultSubscriptionConfig returns a default subscription configuration.
func DefaultSubscriptionConfig() SubscriptionConfig {
	return SubscriptionConfig{
		HandlerPriority: DefaultHandlerPriority,
	}
}

// isDefault reports whether the configuration is eligible for
// idempotent re-registration.
func (c SubscriptionConfig) isDefault() bool {
	return c.HandlerPriority == DefaultHandlerPriority && c.Filter == nil && !c.Once
}

// SubscriptionOption is a function that configures a subscription.
type SubscriptionOption func(*SubscriptionConfig)

// WithHandlerPriority sets the execution priority. Lower values run first.
func WithHandlerPriority(p int) SubscriptionOption {
	return func(c *SubscriptionConfig) {
		c.HandlerPriority = p
	}
}

// WithFilter restricts delivery to events matching f.
func WithFilter(f Filter) SubscriptionOption {
	return func(c *SubscriptionConfig) {
		c.Filter = &f
	}
}

// WithOnce auto-cancels the subscription after the first delivery.
func WithOnce() SubscriptionOption {
	return func(c *SubscriptionConfig) {
		c.Once = true
	}
}

// subscription is the internal implementation of Subscription.
type subscription struct {
	id      string
	kind    Kind
	handler Handler
	config  SubscriptionConfig
	seq     uint64
	state   atomic.Int32

	// dedupe is non-nil when this subscription participates in
	// idempotent re-registration for its handler value.
	dedupe *dedupeKey
}

// newSubscription creates a new subscription.
func newSubscription(id string, kind Kind, h Handler, opts ...SubscriptionOption) *subscription {
	config := DefaultSubscriptionConfig()
	for _, opt := range opts {
		opt(&config)
	}

	s := &subscription{
		id:      id,
		kind:    kind,
		handler: h,
		config:  config,
	}
	s.state.Store(int32(SubscriptionStateActive))
	return s
}

// ID returns the subscription ID.
func (s *subscription) ID() string {
	return s.id
}

// Kind returns the subscribed kind.
func (s *subscription) Kind() Kind {
	return s.kind
}

// Handler returns the subscription's handler.
func (s *subscription) Handler() Handler {
	return s.handler
}

// Config returns the subscription configuration.
func (s *subscription) Config() SubscriptionConfig {
	return s.config
}

// State returns the current subscription state.
func (s *subscription) State() SubscriptionState {
	return SubscriptionState(s.state.Load())
}

// Active returns true if the subscription is active.
func (s *subscription) Active() bool {
	return s.State() == SubscriptionStateActive
}

// Cancel permanently cancels the subscription.
func (s *subscription) Cancel() {
	s.state.Store(int32(SubscriptionStateCancelled))
}

// ShouldDeliver returns true if the event should be delivered to this
// subscription. It reports the filter decision separately so the bus
// can count filtered deliveries.
func (s *subscription) ShouldDeliver(e Event) (deliver, filtered bool) {
	if !s.Active() {
		return false, false
	}
	if s.config.Filter != nil && !s.config.Filter.Matches(e) {
		return false, true
	}
	return true, false
}
