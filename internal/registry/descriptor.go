package registry

import "fmt"

// Type classifies what role a component plays in the application.
type Type int

// Component types.
const (
	// TypeView is a user-facing surface.
	TypeView Type = iota

	// TypeViewModel mediates between a view and the services beneath it.
	TypeViewModel

	// TypeService is a long-running background component.
	TypeService

	// TypeUtility is a stateless helper component.
	TypeUtility

	// TypeDialog is a transient user-facing surface.
	TypeDialog

	// TypeCustom is for components outside the standard roles.
	TypeCustom
)

// String returns the type name.
func (t Type) String() string {
	switch t {
	case TypeView:
		return "view"
	case TypeViewModel:
		return "viewmodel"
	case TypeService:
		return "service"
	case TypeUtility:
		return "utility"
	case TypeDialog:
		return "dialog"
	case TypeCustom:
		return "custom"
	default:
		return "unknown"
	}
}

// ParseType parses a type name as it appears in manifests.
func ParseType(s string) (Type, error) {
	switch s {
	case "view":
		return TypeView, nil
	case "viewmodel":
		return TypeViewModel, nil
	case "service":
		return TypeService, nil
	case "utility":
		return TypeUtility, nil
	case "dialog":
		return TypeDialog, nil
	case "custom":
		return TypeCustom, nil
	default:
		return TypeCustom, fmt.Errorf("%w: unknown type %q", ErrInvalidDescriptor, s)
	}
}

func (t Type) valid() bool {
	return t >= TypeView && t <= TypeCustom
}

// Scope controls how instances are shared between resolves.
type Scope int

// Component scopes. The zero value is ScopeSingleton.
const (
	// ScopeSingleton builds one instance on first resolve and returns
	// it ever after.
	ScopeSingleton Scope = iota

	// ScopeTransient builds a fresh instance on every resolve; the
	// caller owns its lifecycle.
	ScopeTransient

	// ScopeScoped builds one instance per scope id.
	ScopeScoped
)

// String returns the scope name.
func (s Scope) String() string {
	switch s {
	case ScopeSingleton:
		return "singleton"
	case ScopeTransient:
		return "transient"
	case ScopeScoped:
		return "scoped"
	default:
		return "unknown"
	}
}

// ParseScope parses a scope name as it appears in manifests.
func ParseScope(s string) (Scope, error) {
	switch s {
	case "singleton", "":
		return ScopeSingleton, nil
	case "transient":
		return ScopeTransient, nil
	case "scoped":
		return ScopeScoped, nil
	default:
		return ScopeSingleton, fmt.Errorf("%w: unknown scope %q", ErrInvalidDescriptor, s)
	}
}

func (s Scope) valid() bool {
	return s >= ScopeSingleton && s <= ScopeScoped
}

// Factory builds a component instance. It receives the build context
// for the component being created and returns the instance.
type Factory func(ctx *BuildContext) (any, error)

// Descriptor declares a component to the registry.
type Descriptor struct {
	// ID uniquely identifies the component. When empty, an id of the
	// form "type-xxxxxxxx" is generated at registration.
	ID string

	// Type classifies the component.
	Type Type

	// Scope controls instance sharing. Defaults to ScopeSingleton.
	Scope Scope

	// Kind names a catalog entry to build from when Factory is nil.
	// Set by discovery; optional for direct registration.
	Kind string

	// Parent optionally names the component this one belongs under.
	// Forward references are allowed.
	Parent string

	// Requires lists component ids that must be resolvable before this
	// component's factory runs.
	Requires []string

	// Tags are free-form labels for ByTag queries.
	Tags []string

	// Config is arbitrary configuration handed to the factory through
	// the build context.
	Config map[string]any

	// Factory builds the instance. May be nil when Kind names a
	// catalog entry.
	Factory Factory
}

// clone deep-copies the descriptor so callers cannot mutate registry
// internals through shared slices or maps.
func (d Descriptor) clone() Descriptor {
	c := d
	if d.Requires != nil {
		c.Requires = append([]string(nil), d.Requires...)
	}
	if d.Tags != nil {
		c.Tags = append([]string(nil), d.Tags...)
	}
	if d.Config != nil {
		c.Config = make(map[string]any, len(d.Config))
		for k, v := range d.Config {
			c.Config[k] = v
		}
	}
	return c
}
