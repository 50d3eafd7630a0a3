package app

import "errors"

// Application errors.
var (
	// ErrAlreadyRunning indicates Run was called while the application
	// is already running.
	ErrAlreadyRunning = errors.New("application already running")

	// ErrUnknownBackend indicates an unrecognized state backend name.
	ErrUnknownBackend = errors.New("unknown state backend")
)

// InitError represents a bootstrap failure in a specific subsystem.
type InitError struct {
	Component string
	Err       error
}

func (e *InitError) Error() string {
	return "init " + e.Component + ": " + e.Err.Error()
}

func (e *InitError) Unwrap() error {
	return e.Err
}
