package registry

import (
	"github.com/inkwright/inkwright/internal/event"
	"github.com/inkwright/inkwright/internal/logging"
	"github.com/inkwright/inkwright/internal/state"
)

// BuildContext is handed to component factories and Init methods. It
// exposes the component's own descriptor data plus the shared
// services, and resolves declared dependencies.
type BuildContext struct {
	id       string
	config   map[string]any
	registry *Registry
	scope    string
	stack    map[string]bool
	path     []string
}

// ID returns the id of the component being built.
func (c *BuildContext) ID() string { return c.id }

// Scope returns the scope id the resolution is running under. Plain
// Resolve calls report DefaultScope.
func (c *BuildContext) Scope() string { return c.scope }

// Config returns a copy of the descriptor's config map. Mutating the
// copy does not affect the stored descriptor.
func (c *BuildContext) Config() map[string]any {
	if c.config == nil {
		return nil
	}
	out := make(map[string]any, len(c.config))
	for k, v := range c.config {
		out[k] = v
	}
	return out
}

// Dependency resolves another registered component. Resolution runs
// inside the current build, so cycles through Dependency calls are
// detected the same way declared Requires cycles are.
func (c *BuildContext) Dependency(id string) (any, error) {
	return c.registry.resolve(id, c.scope, c.stack, c.path)
}

// EventBus returns the shared event bus.
func (c *BuildContext) EventBus() event.Bus { return c.registry.services.Bus }

// States returns the shared state manager.
func (c *BuildContext) States() *state.Manager { return c.registry.services.States }

// Logger returns a logger scoped to the component's id.
func (c *BuildContext) Logger() *logging.Logger {
	return c.registry.logger.WithComponent(c.id)
}

// Registry returns the owning registry.
func (c *BuildContext) Registry() *Registry { return c.registry }
