package events

import "github.com/inkwright/inkwright/internal/event"

// KindErrorOccurred mirrors event.KindError so callers can stay within
// the catalog. The bus emits it itself when a handler fails.
const KindErrorOccurred = event.KindError

// ErrorOccurred is the payload of KindErrorOccurred.
type ErrorOccurred = event.ErrorPayload

// NewErrorOccurred builds a KindErrorOccurred event for application-level
// failures that components report themselves.
func NewErrorOccurred(component, message string, recoverable bool) event.Event {
	return event.New(KindErrorOccurred,
		ErrorOccurred{Message: message, Component: component, Recoverable: recoverable},
		event.WithCategory(event.CategoryError),
		event.WithPriority(event.PriorityHigh),
		event.WithSource(component),
	)
}
