package event

import "testing"

func TestSubscription_Lifecycle(t *testing.T) {
	sub := newSubscription("sub-1", Kind("test.event"), nopHandler())

	if sub.State() != SubscriptionStateActive {
		t.Errorf("expected active state, got %v", sub.State())
	}
	if !sub.Active() {
		t.Error("expected new subscription to be active")
	}

	sub.Cancel()
	if sub.State() != SubscriptionStateCancelled {
		t.Errorf("expected cancelled state, got %v", sub.State())
	}
	if sub.Active() {
		t.Error("expected cancelled subscription to be inactive")
	}

	// Cancelling twice is a no-op.
	sub.Cancel()
	if sub.State() != SubscriptionStateCancelled {
		t.Errorf("expected cancelled state after double cancel, got %v", sub.State())
	}
}

func TestSubscriptionState_String(t *testing.T) {
	tests := []struct {
		state SubscriptionState
		want  string
	}{
		{SubscriptionStateActive, "active"},
		{SubscriptionStateCancelled, "cancelled"},
		{SubscriptionState(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}

func TestSubscriptionConfig_Options(t *testing.T) {
	f := FilterCategories(CategoryDocument)
	sub := newSubscription("sub-1", Kind("test.event"), nopHandler(),
		WithHandlerPriority(5),
		WithFilter(f),
		WithOnce(),
	)

	cfg := sub.Config()
	if cfg.HandlerPriority != 5 {
		t.Errorf("expected priority 5, got %d", cfg.HandlerPriority)
	}
	if cfg.Filter == nil {
		t.Fatal("expected filter to be set")
	}
	if !cfg.Once {
		t.Error("expected once to be set")
	}
	if cfg.isDefault() {
		t.Error("expected configured subscription to not be default")
	}

	plain := newSubscription("sub-2", Kind("test.event"), nopHandler())
	if !plain.Config().isDefault() {
		t.Error("expected plain subscription to be default")
	}
}

func TestSubscription_ShouldDeliver(t *testing.T) {
	sub := newSubscription("sub-1", Kind("test.event"), nopHandler(),
		WithFilter(FilterCategories(CategoryDocument)))

	match := New(Kind("test.event"), nil, WithCategory(CategoryDocument))
	miss := New(Kind("test.event"), nil, WithCategory(CategoryUI))

	if deliver, filtered := sub.ShouldDeliver(match); !deliver || filtered {
		t.Errorf("expected (true, false) for matching event, got (%v, %v)", deliver, filtered)
	}
	if deliver, filtered := sub.ShouldDeliver(miss); deliver || !filtered {
		t.Errorf("expected (false, true) for filtered event, got (%v, %v)", deliver, filtered)
	}

	sub.Cancel()
	if deliver, filtered := sub.ShouldDeliver(match); deliver || filtered {
		t.Errorf("expected (false, false) for cancelled subscription, got (%v, %v)", deliver, filtered)
	}
}
