package event

import (
	"context"
	"runtime/debug"
	"time"
)

// Result captures the outcome of a single handler invocation.
type Result struct {
	// Success is true when the handler completed without error or panic.
	Success bool

	// Error is the error returned by the handler, if any.
	Error error

	// Panicked is true when the handler panicked.
	Panicked bool

	// PanicValue is the value passed to panic().
	PanicValue any

	// PanicStack is the stack trace captured at the panic site.
	PanicStack []byte

	// Duration is how long the handler ran.
	Duration time.Duration
}

// executor runs handlers with panic recovery and timing.
type executor struct {
	panicHandler PanicHandler
}

// Execute runs a handler with the given event and returns the result.
// Panics are recovered and never escape to the caller.
func (x *executor) Execute(ctx context.Context, e Event, handler Handler) (result Result) {
	start := time.Now()

	defer func() {
		result.Duration = time.Since(start)

		if r := recover(); r != nil {
			stack := debug.Stack()

			result.Success = false
			result.Panicked = true
			result.PanicValue = r
			result.PanicStack = stack

			// Protect the panic handler call as well; a panicking
			// panic handler must not crash the process.
			if x.panicHandler != nil {
				func() {
					defer func() {
						_ = recover()
					}()
					x.panicHandler(e, r, stack)
				}()
			}
		}
	}()

	err := handler.Handle(ctx, e)

	if err != nil {
		result.Success = false
		result.Error = err
	} else {
		result.Success = true
	}

	return result
}
