package registry

// ComponentState is the lifecycle state of a component.
type ComponentState int

// Component lifecycle states.
const (
	// StateRegistered - descriptor stored, no instance yet.
	StateRegistered ComponentState = iota

	// StateInitializing - factory or Init capability running.
	StateInitializing

	// StateInitialized - instance built but not active.
	StateInitialized

	// StateActive - component is activated and running.
	StateActive

	// StateInactive - component was deactivated and can re-activate.
	StateInactive

	// StateDisposing - disposal in progress.
	StateDisposing

	// StateDisposed - terminal; the instance is gone.
	StateDisposed

	// StateError - a factory, capability, or hook failed.
	StateError
)

// String returns the state name.
func (s ComponentState) String() string {
	switch s {
	case StateRegistered:
		return "registered"
	case StateInitializing:
		return "initializing"
	case StateInitialized:
		return "initialized"
	case StateActive:
		return "active"
	case StateInactive:
		return "inactive"
	case StateDisposing:
		return "disposing"
	case StateDisposed:
		return "disposed"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// CanTransition reports whether the state machine permits moving from
// s to next.
func (s ComponentState) CanTransition(next ComponentState) bool {
	switch next {
	case StateInitializing:
		return s == StateRegistered
	case StateInitialized:
		return s == StateInitializing
	case StateActive:
		return s == StateInitialized || s == StateInactive
	case StateInactive:
		return s == StateActive
	case StateDisposing:
		return s == StateInitialized || s == StateActive || s == StateInactive || s == StateError
	case StateDisposed:
		return s == StateDisposing
	case StateError:
		return s == StateInitializing || s == StateInitialized || s == StateActive || s == StateInactive
	default:
		return false
	}
}

// Live reports whether the component has a usable instance.
func (s ComponentState) Live() bool {
	return s == StateInitialized || s == StateActive || s == StateInactive
}
