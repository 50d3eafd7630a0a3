package registry

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/inkwright/inkwright/internal/event"
	"github.com/inkwright/inkwright/internal/event/events"
	"github.com/inkwright/inkwright/internal/logging"
	"github.com/inkwright/inkwright/internal/state"
)

// DefaultScope is the scope id used when a scoped component is
// resolved without an explicit scope.
const DefaultScope = "default"

// Services carries the shared subsystems the registry hands to
// components through the build context. Any field may be nil; nil
// services are simply unavailable to components.
type Services struct {
	Bus    event.Bus
	States *state.Manager
	Logger *logging.Logger
}

// Registry stores component descriptors, builds instances per scope,
// and drives them through the lifecycle state machine.
type Registry struct {
	mu       sync.RWMutex
	services Services
	logger   *logging.Logger
	catalog  map[string]Factory
	entries  map[string]*entry
	order    []string
	hooks    *hookSet
}

// entry is the registry's record for one registered component.
type entry struct {
	desc    Descriptor
	state   ComponentState
	lastErr error

	// instances maps scope id to the live instance. Singletons use
	// the empty key; transients are never cached.
	instances map[string]any
}

// New creates a registry around the shared services.
func New(deps Services) *Registry {
	if deps.Logger == nil {
		deps.Logger = logging.NullLogger
	}
	return &Registry{
		services: deps,
		logger:   deps.Logger.WithComponent("registry"),
		catalog:  make(map[string]Factory),
		entries:  make(map[string]*entry),
		hooks:    newHookSet(),
	}
}

// Register stores a descriptor and returns its id, generating one of
// the form "type-xxxxxxxx" when the descriptor has none. Components
// are never instantiated here; creation waits for the first Resolve.
// Parent and Requires may name components registered later.
func (r *Registry) Register(d Descriptor) (string, error) {
	if !d.Type.valid() {
		return "", fmt.Errorf("%w: unknown type %d", ErrInvalidDescriptor, int(d.Type))
	}
	if !d.Scope.valid() {
		return "", fmt.Errorf("%w: unknown scope %d", ErrInvalidDescriptor, int(d.Scope))
	}
	if d.ID == "" {
		d.ID = fmt.Sprintf("%s-%s", d.Type, uuid.NewString()[:8])
	}

	r.mu.Lock()
	if _, exists := r.entries[d.ID]; exists {
		r.mu.Unlock()
		return "", fmt.Errorf("component %q: %w", d.ID, ErrAlreadyRegistered)
	}
	if d.Factory == nil {
		if _, ok := r.catalog[d.Kind]; !ok {
			r.mu.Unlock()
			if d.Kind == "" {
				return "", fmt.Errorf("component %q: %w", d.ID, ErrNoFactory)
			}
			return "", fmt.Errorf("component %q: kind %q: %w", d.ID, d.Kind, ErrUnknownKind)
		}
	}
	r.entries[d.ID] = &entry{
		desc:      d.clone(),
		state:     StateRegistered,
		instances: make(map[string]any),
	}
	r.order = append(r.order, d.ID)
	r.mu.Unlock()

	r.logger.Debug("registered %s (type=%s scope=%s)", d.ID, d.Type, d.Scope)
	r.emit(events.NewComponentRegistered(d.ID, d.Type.String(), d.Scope.String()))
	return d.ID, nil
}

// Unregister disposes the component's instances and removes the
// descriptor. It refuses while other registered components name id as
// their parent or in their requires list.
func (r *Registry) Unregister(id string) error {
	r.mu.Lock()
	e, ok := r.entries[id]
	if !ok {
		r.mu.Unlock()
		return fmt.Errorf("component %q: %w", id, ErrNotRegistered)
	}
	for _, other := range r.entries {
		if other == e {
			continue
		}
		if other.desc.Parent == id {
			r.mu.Unlock()
			return fmt.Errorf("component %q: child %q: %w", id, other.desc.ID, ErrHasChildren)
		}
	}
	for _, other := range r.entries {
		if other == e {
			continue
		}
		for _, dep := range other.desc.Requires {
			if dep == id {
				r.mu.Unlock()
				return fmt.Errorf("component %q: dependent %q: %w", id, other.desc.ID, ErrHasDependents)
			}
		}
	}
	needDispose := e.state.CanTransition(StateDisposing)
	r.mu.Unlock()

	if needDispose {
		if err := r.Dispose(id); err != nil {
			r.logger.Warn("dispose during unregister of %s: %v", id, err)
		}
	}

	r.mu.Lock()
	delete(r.entries, id)
	r.removeFromOrder(id)
	r.mu.Unlock()

	r.logger.Debug("unregistered %s", id)
	r.emit(events.NewComponentUnregistered(id))
	return nil
}

// OnLifecycle registers a hook for a lifecycle phase. Hooks run in
// registration order, once per instance.
func (r *Registry) OnLifecycle(phase Phase, fn Hook) *HookHandle {
	return r.hooks.Add(phase, fn)
}

// removeFromOrder removes id from the registration order. The caller
// must hold the lock.
func (r *Registry) removeFromOrder(id string) {
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			return
		}
	}
}

// fail records err against the component, moves it to StateError when
// the transition is legal, and emits the error event. It returns err
// so callers can fail with a single expression.
func (r *Registry) fail(id, operation string, err error) error {
	r.mu.Lock()
	var old ComponentState
	moved := false
	if e, ok := r.entries[id]; ok {
		e.lastErr = err
		if e.state.CanTransition(StateError) {
			old = e.state
			e.state = StateError
			moved = true
		}
	}
	r.mu.Unlock()

	r.logger.Error("%s %s: %v", operation, id, err)
	r.emit(events.NewComponentError(id, operation, err.Error()))
	if moved {
		r.emit(events.NewComponentStateChanged(id, old.String(), StateError.String()))
	}
	return err
}

// transitionLocked moves the entry to next and returns the state
// change event for the caller to emit after unlocking. The caller
// holds the lock and has checked the transition.
func transitionLocked(e *entry, next ComponentState) event.Event {
	old := e.state
	e.state = next
	return events.NewComponentStateChanged(e.desc.ID, old.String(), next.String())
}

// snapshotInstancesLocked returns the entry's instances ordered by
// scope id. The caller holds the lock.
func (e *entry) snapshotInstancesLocked() []any {
	keys := make([]string, 0, len(e.instances))
	for k := range e.instances {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]any, 0, len(keys))
	for _, k := range keys {
		out = append(out, e.instances[k])
	}
	return out
}

// emit publishes ev on the shared bus, if one is attached.
func (r *Registry) emit(ev event.Event) {
	if r.services.Bus == nil {
		return
	}
	if err := r.services.Bus.Emit(context.Background(), ev); err != nil && !errors.Is(err, event.ErrBusClosed) {
		r.logger.Error("emit %s: %v", ev.Kind, err)
	}
}
