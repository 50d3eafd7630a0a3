package event

import (
	"context"
	"errors"
	"testing"
)

// countingHandler is a comparable handler used to exercise idempotent
// re-subscription. Function values are not comparable, so closures
// never participate.
type countingHandler struct {
	calls *int
}

func (h countingHandler) Handle(ctx context.Context, e Event) error {
	*h.calls++
	return nil
}

func TestNewBus(t *testing.T) {
	bus := NewBus()
	if bus == nil {
		t.Fatal("NewBus() returned nil")
	}
}

func TestBus_Subscribe(t *testing.T) {
	bus := NewBus()

	handler := HandlerFunc(func(ctx context.Context, e Event) error {
		return nil
	})

	sub, err := bus.Subscribe(Kind("test.event"), handler)
	if err != nil {
		t.Fatalf("Subscribe() failed: %v", err)
	}
	if sub == nil {
		t.Fatal("Subscribe() returned nil subscription")
	}
	if sub.Kind() != Kind("test.event") {
		t.Errorf("expected kind 'test.event', got '%s'", sub.Kind())
	}
	if !sub.Active() {
		t.Error("expected subscription to be active")
	}
	if sub.ID() == "" {
		t.Error("expected subscription ID to be set")
	}
}

func TestBus_Subscribe_NilHandler(t *testing.T) {
	bus := NewBus()

	_, err := bus.Subscribe(Kind("test.event"), nil)
	if err != ErrNilHandler {
		t.Errorf("expected ErrNilHandler, got %v", err)
	}
}

func TestBus_Subscribe_EmptyKind(t *testing.T) {
	bus := NewBus()

	handler := HandlerFunc(func(ctx context.Context, e Event) error {
		return nil
	})

	_, err := bus.Subscribe(Kind(""), handler)
	if err != ErrInvalidKind {
		t.Errorf("expected ErrInvalidKind, got %v", err)
	}
}

func TestBus_Subscribe_Idempotent(t *testing.T) {
	bus := NewBus()

	calls := 0
	handler := countingHandler{calls: &calls}

	first, err := bus.Subscribe(Kind("test.event"), handler)
	if err != nil {
		t.Fatalf("Subscribe() failed: %v", err)
	}
	second, err := bus.Subscribe(Kind("test.event"), handler)
	if err != nil {
		t.Fatalf("second Subscribe() failed: %v", err)
	}

	if first.ID() != second.ID() {
		t.Error("expected repeated Subscribe with same handler to return the existing subscription")
	}

	bus.Emit(context.Background(), New(Kind("test.event"), nil))
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}

	// After cancelling, subscribing again creates a fresh subscription.
	if err := bus.Unsubscribe(first); err != nil {
		t.Fatalf("Unsubscribe() failed: %v", err)
	}
	third, err := bus.Subscribe(Kind("test.event"), handler)
	if err != nil {
		t.Fatalf("third Subscribe() failed: %v", err)
	}
	if third.ID() == first.ID() {
		t.Error("expected a fresh subscription after unsubscribe")
	}
}

func TestBus_Subscribe_ClosuresNotDeduped(t *testing.T) {
	bus := NewBus()

	calls := 0
	fn := func(ctx context.Context, e Event) error {
		calls++
		return nil
	}

	first, _ := bus.SubscribeFunc(Kind("test.event"), fn)
	second, _ := bus.SubscribeFunc(Kind("test.event"), fn)

	if first.ID() == second.ID() {
		t.Error("expected function handlers to create distinct subscriptions")
	}

	bus.Emit(context.Background(), New(Kind("test.event"), nil))
	if calls != 2 {
		t.Errorf("expected 2 calls, got %d", calls)
	}
}

func TestBus_Subscribe_NonDefaultNotDeduped(t *testing.T) {
	bus := NewBus()

	calls := 0
	handler := countingHandler{calls: &calls}

	first, _ := bus.Subscribe(Kind("test.event"), handler)
	second, _ := bus.Subscribe(Kind("test.event"), handler, WithHandlerPriority(5))

	if first.ID() == second.ID() {
		t.Error("expected non-default options to create a distinct subscription")
	}
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := NewBus()

	handler := HandlerFunc(func(ctx context.Context, e Event) error {
		return nil
	})

	sub, _ := bus.Subscribe(Kind("test.event"), handler)

	if err := bus.Unsubscribe(sub); err != nil {
		t.Fatalf("Unsubscribe() failed: %v", err)
	}
	if sub.Active() {
		t.Error("expected subscription to be cancelled after Unsubscribe()")
	}

	// Should fail to unsubscribe again
	if err := bus.Unsubscribe(sub); err != ErrSubscriptionNotFound {
		t.Errorf("expected ErrSubscriptionNotFound, got %v", err)
	}
}

func TestBus_Unsubscribe_Nil(t *testing.T) {
	bus := NewBus()

	if err := bus.Unsubscribe(nil); err != ErrInvalidSubscription {
		t.Errorf("expected ErrInvalidSubscription, got %v", err)
	}
}

func TestBus_UnsubscribeKind(t *testing.T) {
	bus := NewBus()

	kindCalls := 0
	allCalls := 0
	bus.SubscribeFunc(Kind("test.event"), func(ctx context.Context, e Event) error {
		kindCalls++
		return nil
	})
	bus.SubscribeFunc(Kind("test.event"), func(ctx context.Context, e Event) error {
		kindCalls++
		return nil
	})
	bus.SubscribeAll(HandlerFunc(func(ctx context.Context, e Event) error {
		allCalls++
		return nil
	}))

	if n := bus.UnsubscribeKind(Kind("test.event")); n != 2 {
		t.Errorf("expected 2 removed, got %d", n)
	}

	bus.Emit(context.Background(), New(Kind("test.event"), nil))
	if kindCalls != 0 {
		t.Errorf("expected 0 kind-specific calls, got %d", kindCalls)
	}
	if allCalls != 1 {
		t.Errorf("expected catch-all to survive, got %d calls", allCalls)
	}
}

func TestBus_Emit_Synchronous(t *testing.T) {
	bus := NewBus()

	called := false
	bus.SubscribeFunc(Kind("test.event"), func(ctx context.Context, e Event) error {
		called = true
		return nil
	})

	if err := bus.Emit(context.Background(), New(Kind("test.event"), "payload")); err != nil {
		t.Fatalf("Emit() failed: %v", err)
	}
	if !called {
		t.Fatal("handler was not called before Emit returned")
	}
}

func TestBus_Emit_InvalidEvent(t *testing.T) {
	bus := NewBus()

	if err := bus.Emit(context.Background(), Event{}); err != ErrInvalidEvent {
		t.Errorf("expected ErrInvalidEvent for empty kind, got %v", err)
	}
	if err := bus.Emit(context.Background(), Event{Kind: KindAll}); err != ErrInvalidEvent {
		t.Errorf("expected ErrInvalidEvent for reserved kind, got %v", err)
	}
}

func TestBus_Emit_FillsMetadata(t *testing.T) {
	bus := NewBus()

	var got Event
	bus.SubscribeFunc(Kind("test.event"), func(ctx context.Context, e Event) error {
		got = e
		return nil
	})

	// A bare literal has no metadata; Emit fills it in.
	if err := bus.Emit(context.Background(), Event{Kind: Kind("test.event")}); err != nil {
		t.Fatalf("Emit() failed: %v", err)
	}

	if got.Metadata.ID == "" {
		t.Error("expected event ID to be filled")
	}
	if got.Metadata.Timestamp.IsZero() {
		t.Error("expected event timestamp to be filled")
	}
	if got.Metadata.Source == "" {
		t.Error("expected event source to be filled")
	}
}

func TestBus_EmitKind(t *testing.T) {
	bus := NewBus()

	var got Event
	bus.SubscribeFunc(Kind("test.event"), func(ctx context.Context, e Event) error {
		got = e
		return nil
	})

	err := bus.EmitKind(context.Background(), Kind("test.event"), 42, WithSource("tester"))
	if err != nil {
		t.Fatalf("EmitKind() failed: %v", err)
	}

	if got.Payload != 42 {
		t.Errorf("expected payload 42, got %v", got.Payload)
	}
	if got.Metadata.Source != "tester" {
		t.Errorf("expected source 'tester', got '%s'", got.Metadata.Source)
	}
}

func TestBus_HandlerPriorityOrder(t *testing.T) {
	bus := NewBus()

	var order []string

	// Registered out of order; lower priority values run first.
	bus.SubscribeFunc(Kind("test.event"), func(ctx context.Context, e Event) error {
		order = append(order, "second")
		return nil
	}, WithHandlerPriority(50))

	bus.SubscribeFunc(Kind("test.event"), func(ctx context.Context, e Event) error {
		order = append(order, "first")
		return nil
	}, WithHandlerPriority(10))

	bus.SubscribeFunc(Kind("test.event"), func(ctx context.Context, e Event) error {
		order = append(order, "third")
		return nil
	}, WithHandlerPriority(50))

	bus.Emit(context.Background(), New(Kind("test.event"), nil))

	expected := []string{"first", "second", "third"}
	if len(order) != len(expected) {
		t.Fatalf("expected %d handlers, got %d", len(expected), len(order))
	}
	for i, e := range expected {
		if order[i] != e {
			t.Errorf("position %d: expected %s, got %s", i, e, order[i])
		}
	}
}

func TestBus_CatchAllRunsAfterKindSpecific(t *testing.T) {
	bus := NewBus()

	var order []string

	// The catch-all has the numerically lowest priority but still runs
	// after every kind-specific handler.
	bus.SubscribeAll(HandlerFunc(func(ctx context.Context, e Event) error {
		order = append(order, "all")
		return nil
	}), WithHandlerPriority(0))

	bus.SubscribeFunc(Kind("test.event"), func(ctx context.Context, e Event) error {
		order = append(order, "specific")
		return nil
	})

	bus.Emit(context.Background(), New(Kind("test.event"), nil))

	expected := []string{"specific", "all"}
	if len(order) != len(expected) {
		t.Fatalf("expected %d handlers, got %d", len(expected), len(order))
	}
	for i, e := range expected {
		if order[i] != e {
			t.Errorf("position %d: expected %s, got %s", i, e, order[i])
		}
	}
}

func TestBus_SubscriptionFilter(t *testing.T) {
	bus := NewBus()

	received := 0
	bus.SubscribeFunc(Kind("test.event"), func(ctx context.Context, e Event) error {
		received++
		return nil
	}, WithFilter(FilterMinPriority(PriorityHigh)))

	bus.Emit(context.Background(), New(Kind("test.event"), nil))
	bus.Emit(context.Background(), New(Kind("test.event"), nil, WithPriority(PriorityHigh)))
	bus.Emit(context.Background(), New(Kind("test.event"), nil, WithPriority(PriorityCritical)))

	if received != 2 {
		t.Errorf("expected 2 events received (filtered), got %d", received)
	}

	stats := bus.Stats()
	if stats.EventsFiltered != 1 {
		t.Errorf("expected 1 filtered delivery, got %d", stats.EventsFiltered)
	}
}

func TestBus_Once(t *testing.T) {
	bus := NewBus()

	received := 0
	sub, _ := bus.SubscribeFunc(Kind("test.event"), func(ctx context.Context, e Event) error {
		received++
		return nil
	}, WithOnce())

	bus.Emit(context.Background(), New(Kind("test.event"), nil))
	bus.Emit(context.Background(), New(Kind("test.event"), nil))
	bus.Emit(context.Background(), New(Kind("test.event"), nil))

	if received != 1 {
		t.Errorf("expected 1 event received (once), got %d", received)
	}
	if sub.Active() {
		t.Error("expected subscription to be cancelled after once")
	}
	if bus.Stats().ActiveSubscriptions != 0 {
		t.Errorf("expected 0 active subscriptions, got %d", bus.Stats().ActiveSubscriptions)
	}
}

func TestBus_HandlerError_Isolated(t *testing.T) {
	bus := NewBus()

	handlerErr := errors.New("handler error")
	executed := 0

	bus.SubscribeFunc(Kind("test.event"), func(ctx context.Context, e Event) error {
		executed++
		return handlerErr
	}, WithHandlerPriority(10))

	bus.SubscribeFunc(Kind("test.event"), func(ctx context.Context, e Event) error {
		executed++
		return nil
	}, WithHandlerPriority(20))

	if err := bus.Emit(context.Background(), New(Kind("test.event"), nil)); err != nil {
		t.Fatalf("Emit() should not surface handler errors, got: %v", err)
	}

	// Both handlers should have executed
	if executed != 2 {
		t.Errorf("expected 2 handlers executed, got %d", executed)
	}

	stats := bus.Stats()
	if stats.HandlerErrors != 1 {
		t.Errorf("expected 1 handler error, got %d", stats.HandlerErrors)
	}
}

func TestBus_HandlerError_EmitsErrorEvent(t *testing.T) {
	bus := NewBus()

	var errorEvents []Event
	bus.SubscribeFunc(KindError, func(ctx context.Context, e Event) error {
		errorEvents = append(errorEvents, e)
		return nil
	})

	bus.SubscribeFunc(Kind("test.event"), func(ctx context.Context, e Event) error {
		return errors.New("boom")
	})

	bus.Emit(context.Background(), New(Kind("test.event"), nil))

	if len(errorEvents) != 1 {
		t.Fatalf("expected 1 error event, got %d", len(errorEvents))
	}

	ev := errorEvents[0]
	if ev.Metadata.Category != CategoryError {
		t.Errorf("expected CategoryError, got %v", ev.Metadata.Category)
	}
	if ev.Metadata.Priority != PriorityHigh {
		t.Errorf("expected PriorityHigh, got %v", ev.Metadata.Priority)
	}

	payload, ok := ev.Payload.(ErrorPayload)
	if !ok {
		t.Fatalf("expected ErrorPayload, got %T", ev.Payload)
	}
	if payload.Kind != Kind("test.event") {
		t.Errorf("expected failing kind 'test.event', got '%s'", payload.Kind)
	}
	if !payload.Recoverable {
		t.Error("expected handler failures to be recoverable")
	}
}

func TestBus_ErrorEventHandlerFailure_NoRecursion(t *testing.T) {
	bus := NewBus()

	errorHandlerCalls := 0
	bus.SubscribeFunc(KindError, func(ctx context.Context, e Event) error {
		errorHandlerCalls++
		return errors.New("error handler itself fails")
	})

	bus.SubscribeFunc(Kind("test.event"), func(ctx context.Context, e Event) error {
		return errors.New("boom")
	})

	// Must terminate: the failing error-event handler is logged, not
	// reported through another error event.
	bus.Emit(context.Background(), New(Kind("test.event"), nil))

	if errorHandlerCalls != 1 {
		t.Errorf("expected error handler called once, got %d", errorHandlerCalls)
	}

	stats := bus.Stats()
	if stats.EventsPublished != 2 {
		t.Errorf("expected 2 events published (original + error), got %d", stats.EventsPublished)
	}
	if stats.HandlerErrors != 2 {
		t.Errorf("expected 2 handler errors, got %d", stats.HandlerErrors)
	}
}

func TestBus_HandlerPanic_Isolated(t *testing.T) {
	var panicEvent Event
	var panicValue any
	var panicStack []byte

	bus := NewBus(WithBusPanicHandler(func(e Event, recovered any, stack []byte) {
		panicEvent = e
		panicValue = recovered
		panicStack = stack
	}))

	executed := 0
	bus.SubscribeFunc(Kind("test.event"), func(ctx context.Context, e Event) error {
		executed++
		panic("test panic")
	}, WithHandlerPriority(10))

	bus.SubscribeFunc(Kind("test.event"), func(ctx context.Context, e Event) error {
		executed++
		return nil
	}, WithHandlerPriority(20))

	// Should not panic
	bus.Emit(context.Background(), New(Kind("test.event"), nil))

	if executed != 2 {
		t.Errorf("expected 2 handlers executed, got %d", executed)
	}

	stats := bus.Stats()
	if stats.HandlerPanics != 1 {
		t.Errorf("expected 1 handler panic, got %d", stats.HandlerPanics)
	}

	if panicEvent.Kind != Kind("test.event") {
		t.Errorf("expected panic handler to receive the event, got kind '%s'", panicEvent.Kind)
	}
	if panicValue != "test panic" {
		t.Errorf("expected panic value 'test panic', got %v", panicValue)
	}
	if len(panicStack) == 0 {
		t.Error("expected captured panic stack")
	}
}

func TestBus_HandlerPanic_EmitsErrorEvent(t *testing.T) {
	bus := NewBus()

	var errorEvents []Event
	bus.SubscribeFunc(KindError, func(ctx context.Context, e Event) error {
		errorEvents = append(errorEvents, e)
		return nil
	})

	bus.SubscribeFunc(Kind("test.event"), func(ctx context.Context, e Event) error {
		panic("boom")
	})

	bus.Emit(context.Background(), New(Kind("test.event"), nil))

	if len(errorEvents) != 1 {
		t.Fatalf("expected 1 error event, got %d", len(errorEvents))
	}
}

func TestBus_CancelDuringEmit(t *testing.T) {
	bus := NewBus()

	var later Subscription
	laterCalls := 0

	bus.SubscribeFunc(Kind("test.event"), func(ctx context.Context, e Event) error {
		later.Cancel()
		return nil
	}, WithHandlerPriority(10))

	later, _ = bus.SubscribeFunc(Kind("test.event"), func(ctx context.Context, e Event) error {
		laterCalls++
		return nil
	}, WithHandlerPriority(20))

	bus.Emit(context.Background(), New(Kind("test.event"), nil))

	if laterCalls != 0 {
		t.Errorf("expected cancelled subscription to be skipped, got %d calls", laterCalls)
	}

	// The cancelled subscription is swept out of the registry.
	if got := bus.Stats().ActiveSubscriptions; got != 1 {
		t.Errorf("expected 1 active subscription, got %d", got)
	}
}

func TestBus_History(t *testing.T) {
	bus := NewBus()

	bus.Emit(context.Background(), New(Kind("test.one"), nil))
	bus.Emit(context.Background(), New(Kind("test.two"), nil))

	// Events are recorded whether or not anyone subscribes.
	hist := bus.History(0, nil)
	if len(hist) != 2 {
		t.Fatalf("expected 2 history entries, got %d", len(hist))
	}
	if hist[0].Kind != Kind("test.one") || hist[1].Kind != Kind("test.two") {
		t.Error("expected history in emission order")
	}

	bus.ClearHistory()
	if len(bus.History(0, nil)) != 0 {
		t.Error("expected empty history after ClearHistory()")
	}
}

func TestBus_Stats(t *testing.T) {
	bus := NewBus()

	bus.SubscribeFunc(Kind("test.event"), func(ctx context.Context, e Event) error {
		return nil
	})

	for i := 0; i < 5; i++ {
		bus.Emit(context.Background(), New(Kind("test.event"), nil))
	}

	stats := bus.Stats()
	if stats.EventsPublished != 5 {
		t.Errorf("expected 5 events published, got %d", stats.EventsPublished)
	}
	if stats.EventsDelivered != 5 {
		t.Errorf("expected 5 events delivered, got %d", stats.EventsDelivered)
	}
	if stats.ActiveSubscriptions != 1 {
		t.Errorf("expected 1 active subscription, got %d", stats.ActiveSubscriptions)
	}
	if stats.HistorySize != 5 {
		t.Errorf("expected history size 5, got %d", stats.HistorySize)
	}
}

func TestBus_Close(t *testing.T) {
	bus := NewBus()

	bus.Emit(context.Background(), New(Kind("test.event"), nil))

	if err := bus.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}

	if err := bus.Emit(context.Background(), New(Kind("test.event"), nil)); err != ErrBusClosed {
		t.Errorf("expected ErrBusClosed on Emit, got %v", err)
	}
	handler := HandlerFunc(func(ctx context.Context, e Event) error { return nil })
	if _, err := bus.Subscribe(Kind("test.event"), handler); err != ErrBusClosed {
		t.Errorf("expected ErrBusClosed on Subscribe, got %v", err)
	}

	// History survives close for post-mortem inspection.
	if len(bus.History(0, nil)) != 1 {
		t.Error("expected history to remain readable after Close()")
	}

	// Close is idempotent
	if err := bus.Close(); err != nil {
		t.Errorf("second Close() failed: %v", err)
	}
}
