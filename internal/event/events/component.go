package events

import "github.com/inkwright/inkwright/internal/event"

// Component lifecycle event kinds.
const (
	// KindComponentRegistered is emitted when a component descriptor is registered.
	KindComponentRegistered event.Kind = "component.registered"

	// KindComponentUnregistered is emitted when a component is removed from the registry.
	KindComponentUnregistered event.Kind = "component.unregistered"

	// KindComponentStateChanged is emitted on every component state transition.
	KindComponentStateChanged event.Kind = "component.state_changed"

	// KindComponentError is emitted when a component lands in the error state.
	KindComponentError event.Kind = "component.error"
)

// ComponentRegistered is the payload of KindComponentRegistered.
type ComponentRegistered struct {
	// ID is the component identifier.
	ID string `json:"id"`

	// Type is the component type name.
	Type string `json:"type"`

	// Scope is the component scope name.
	Scope string `json:"scope"`
}

// ComponentUnregistered is the payload of KindComponentUnregistered.
type ComponentUnregistered struct {
	// ID is the component identifier.
	ID string `json:"id"`
}

// ComponentStateChanged is the payload of KindComponentStateChanged.
type ComponentStateChanged struct {
	// ID is the component identifier.
	ID string `json:"id"`

	// OldState is the state name before the transition.
	OldState string `json:"old_state"`

	// NewState is the state name after the transition.
	NewState string `json:"new_state"`
}

// ComponentError is the payload of KindComponentError.
type ComponentError struct {
	// ID is the component identifier.
	ID string `json:"id"`

	// Operation is what the component was doing when it failed.
	Operation string `json:"operation"`

	// Message is the failure description.
	Message string `json:"message"`
}

// NewComponentRegistered builds a KindComponentRegistered event.
func NewComponentRegistered(id, componentType, scope string) event.Event {
	return event.New(KindComponentRegistered,
		ComponentRegistered{ID: id, Type: componentType, Scope: scope},
		event.WithCategory(event.CategorySystem),
		event.WithSource("registry"),
	)
}

// NewComponentUnregistered builds a KindComponentUnregistered event.
func NewComponentUnregistered(id string) event.Event {
	return event.New(KindComponentUnregistered,
		ComponentUnregistered{ID: id},
		event.WithCategory(event.CategorySystem),
		event.WithSource("registry"),
	)
}

// NewComponentStateChanged builds a KindComponentStateChanged event.
func NewComponentStateChanged(id, oldState, newState string) event.Event {
	return event.New(KindComponentStateChanged,
		ComponentStateChanged{ID: id, OldState: oldState, NewState: newState},
		event.WithCategory(event.CategorySystem),
		event.WithSource("registry"),
	)
}

// NewComponentError builds a KindComponentError event.
func NewComponentError(id, operation, message string) event.Event {
	return event.New(KindComponentError,
		ComponentError{ID: id, Operation: operation, Message: message},
		event.WithCategory(event.CategorySystem),
		event.WithPriority(event.PriorityHigh),
		event.WithSource("registry"),
	)
}
