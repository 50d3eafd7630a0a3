package event

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestExecutor_Success(t *testing.T) {
	x := executor{}

	result := x.Execute(context.Background(), New(Kind("test.kind"), nil), nopHandler())

	if !result.Success {
		t.Error("expected success")
	}
	if result.Error != nil {
		t.Errorf("expected no error, got %v", result.Error)
	}
	if result.Panicked {
		t.Error("expected no panic")
	}
}

func TestExecutor_HandlerError(t *testing.T) {
	x := executor{}

	handlerErr := errors.New("handler failed")
	handler := HandlerFunc(func(ctx context.Context, e Event) error {
		return handlerErr
	})

	result := x.Execute(context.Background(), New(Kind("test.kind"), nil), handler)

	if result.Success {
		t.Error("expected failure")
	}
	if result.Error != handlerErr {
		t.Errorf("expected handler error, got %v", result.Error)
	}
	if result.Panicked {
		t.Error("expected no panic")
	}
}

func TestExecutor_RecoverFromPanic(t *testing.T) {
	x := executor{}

	handler := HandlerFunc(func(ctx context.Context, e Event) error {
		panic("handler panic")
	})

	// Must not propagate the panic.
	result := x.Execute(context.Background(), New(Kind("test.kind"), nil), handler)

	if result.Success {
		t.Error("expected failure")
	}
	if !result.Panicked {
		t.Error("expected panic to be recorded")
	}
	if result.PanicValue != "handler panic" {
		t.Errorf("expected panic value 'handler panic', got %v", result.PanicValue)
	}
	if !strings.Contains(string(result.PanicStack), "goroutine") {
		t.Error("expected captured stack trace")
	}
}

func TestExecutor_PanicHandlerCalled(t *testing.T) {
	var gotEvent Event
	var gotValue any

	x := executor{panicHandler: func(e Event, recovered any, stack []byte) {
		gotEvent = e
		gotValue = recovered
	}}

	handler := HandlerFunc(func(ctx context.Context, e Event) error {
		panic("boom")
	})

	x.Execute(context.Background(), New(Kind("test.kind"), nil), handler)

	if gotEvent.Kind != Kind("test.kind") {
		t.Errorf("expected panic handler to receive event, got kind '%s'", gotEvent.Kind)
	}
	if gotValue != "boom" {
		t.Errorf("expected panic value 'boom', got %v", gotValue)
	}
}

func TestExecutor_PanickingPanicHandler(t *testing.T) {
	x := executor{panicHandler: func(e Event, recovered any, stack []byte) {
		panic("panic handler also panics")
	}}

	handler := HandlerFunc(func(ctx context.Context, e Event) error {
		panic("original panic")
	})

	// Neither panic may escape.
	result := x.Execute(context.Background(), New(Kind("test.kind"), nil), handler)

	if !result.Panicked {
		t.Error("expected original panic to be recorded")
	}
	if result.PanicValue != "original panic" {
		t.Errorf("expected original panic value, got %v", result.PanicValue)
	}
}

func TestExecutor_Duration(t *testing.T) {
	x := executor{}

	result := x.Execute(context.Background(), New(Kind("test.kind"), nil), nopHandler())

	if result.Duration < 0 {
		t.Error("expected non-negative duration")
	}
}
