package registry

// Capability interfaces. The registry detects optional behavior by
// interface assertion only; components implement whichever steps they
// care about and ignore the rest.

// Initializable runs after the factory, while the component is in
// StateInitializing.
type Initializable interface {
	Init(ctx *BuildContext) error
}

// Activatable runs when the component transitions to StateActive.
type Activatable interface {
	Activate() error
}

// Deactivatable runs when the component transitions to StateInactive.
type Deactivatable interface {
	Deactivate() error
}

// Disposable runs during disposal, before the instance is dropped.
type Disposable interface {
	Dispose() error
}
