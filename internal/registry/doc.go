// Package registry implements the component registry: the container
// that owns every long-lived piece of the application, from services
// to views, and drives them through a common lifecycle.
//
// # Descriptors
//
// A component is declared by a Descriptor: an id, a Type, a Scope, an
// optional Parent, dependency ids in Requires, tags, configuration,
// and a Factory that builds the instance. Registration stores the
// descriptor only; nothing is instantiated until the first Resolve.
//
// # Scopes
//
// Singleton components are built once and cached. Transient components
// are built fresh on every resolve and handed to the caller, who owns
// them from then on. Scoped components get one instance per scope id
// (ResolveScoped), with "default" used by plain Resolve.
//
// # Lifecycle
//
// Each component walks a fixed state machine:
//
//	Registered -> Initializing -> Initialized -> Active <-> Inactive
//	                                          -> Disposing -> Disposed
//
// with Error reachable from any live state. Transitions outside the
// graph fail with ErrInvalidTransition. Optional behavior is detected
// by interface assertion only: a component that implements
// Initializable, Activatable, Deactivatable, or Disposable is called
// at the matching step. Factories receive a BuildContext carrying the
// component's id, its configuration, its resolved dependencies, and
// the shared services (bus, state manager, logger).
//
// Failures inside factories, capability methods, or hooks never
// propagate as panics: the component lands in StateError with the
// error recorded, a component.error event is emitted, and the
// triggering call returns the error.
//
// # Discovery
//
// Components can also arrive from disk: a Manifest (component.json or
// component.yaml) names a kind registered through RegisterKind, and
// Discover walks configured roots collecting manifests, first root
// winning on duplicate ids.
package registry
