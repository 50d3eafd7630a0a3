package registry

import "errors"

// Registry errors.
var (
	// ErrNotRegistered is returned when an id names no registered
	// component.
	ErrNotRegistered = errors.New("component not registered")

	// ErrAlreadyRegistered is returned when registering an id that is
	// already taken.
	ErrAlreadyRegistered = errors.New("component already registered")

	// ErrInvalidDescriptor is returned when a descriptor fails
	// validation.
	ErrInvalidDescriptor = errors.New("invalid component descriptor")

	// ErrNoFactory is returned when a descriptor has no factory and no
	// catalog kind to fall back to.
	ErrNoFactory = errors.New("component has no factory")

	// ErrInvalidTransition is returned for lifecycle transitions
	// outside the state machine graph.
	ErrInvalidTransition = errors.New("invalid lifecycle transition")

	// ErrDependencyCycle is returned when dependency resolution visits
	// a component already on the resolution path.
	ErrDependencyCycle = errors.New("component dependency cycle")

	// ErrHasChildren is returned when unregistering a component that
	// other components name as their parent.
	ErrHasChildren = errors.New("component has children")

	// ErrHasDependents is returned when unregistering a component that
	// other components require.
	ErrHasDependents = errors.New("component has dependents")

	// ErrUnknownKind is returned when a manifest names a kind the
	// catalog does not provide.
	ErrUnknownKind = errors.New("unknown component kind")
)
