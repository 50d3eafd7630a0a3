package event

import "sync"

// Subscriber tracks the subscriptions a component creates so they can
// be torn down together. Components should Close their Subscriber when
// they are disposed; that is the idiom that replaces weak handler
// references.
type Subscriber struct {
	bus           Bus
	subscriptions []Subscription
	mu            sync.Mutex
	closed        bool
}

// NewSubscriber creates a new Subscriber wrapping the given bus.
func NewSubscriber(bus Bus) *Subscriber {
	return &Subscriber{
		bus: bus,
	}
}

// Subscribe creates a tracked subscription for the given kind.
func (s *Subscriber) Subscribe(kind Kind, handler Handler, opts ...SubscriptionOption) (Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrSubscriberClosed
	}

	sub, err := s.bus.Subscribe(kind, handler, opts...)
	if err != nil {
		return nil, err
	}

	s.subscriptions = append(s.subscriptions, sub)
	return sub, nil
}

// SubscribeFunc creates a tracked subscription with a function handler.
func (s *Subscriber) SubscribeFunc(kind Kind, fn HandlerFunc, opts ...SubscriptionOption) (Subscription, error) {
	return s.Subscribe(kind, fn, opts...)
}

// SubscribeAll creates a tracked catch-all subscription.
func (s *Subscriber) SubscribeAll(handler Handler, opts ...SubscriptionOption) (Subscription, error) {
	return s.Subscribe(KindAll, handler, opts...)
}

// SubscribeOnce creates a tracked subscription that auto-cancels after
// its first delivery.
func (s *Subscriber) SubscribeOnce(kind Kind, handler Handler, opts ...SubscriptionOption) (Subscription, error) {
	opts = append(opts, WithOnce())
	return s.Subscribe(kind, handler, opts...)
}

// Unsubscribe removes a specific subscription.
func (s *Subscriber) Unsubscribe(sub Subscription) error {
	s.mu.Lock()
	for i, tracked := range s.subscriptions {
		if tracked.ID() == sub.ID() {
			s.subscriptions = append(s.subscriptions[:i], s.subscriptions[i+1:]...)
			break
		}
	}
	s.mu.Unlock()

	return s.bus.Unsubscribe(sub)
}

// Close cancels all tracked subscriptions and prevents new ones.
// Close is idempotent.
func (s *Subscriber) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	for _, sub := range s.subscriptions {
		_ = s.bus.Unsubscribe(sub)
	}
	s.subscriptions = nil

	return nil
}

// Count returns the number of tracked subscriptions.
func (s *Subscriber) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subscriptions)
}

// IsClosed returns true if the subscriber has been closed.
func (s *Subscriber) IsClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Bus returns the underlying bus.
func (s *Subscriber) Bus() Bus {
	return s.bus
}
