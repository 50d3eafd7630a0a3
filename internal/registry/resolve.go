package registry

import (
	"errors"
	"fmt"
	"runtime/debug"
	"strings"

	"github.com/inkwright/inkwright/internal/event"
)

// Resolve returns the component's instance, building it on first use.
// Scoped components resolve in DefaultScope.
func (r *Registry) Resolve(id string) (any, error) {
	return r.resolve(id, DefaultScope, make(map[string]bool), nil)
}

// ResolveScoped resolves a component for the given scope id. Only
// scoped components keep per-scope instances; singletons and
// transients behave as they do under Resolve.
func (r *Registry) ResolveScoped(id, scope string) (any, error) {
	if scope == "" {
		scope = DefaultScope
	}
	return r.resolve(id, scope, make(map[string]bool), nil)
}

// resolve builds or returns the instance for id under scope. stack
// and path track the in-progress resolution chain for cycle
// detection; both are shared down the recursion.
func (r *Registry) resolve(id, scope string, stack map[string]bool, path []string) (any, error) {
	if stack[id] {
		chain := append(append([]string(nil), path...), id)
		return nil, fmt.Errorf("%w: %s", ErrDependencyCycle, strings.Join(chain, " -> "))
	}

	r.mu.Lock()
	e, ok := r.entries[id]
	if !ok {
		r.mu.Unlock()
		return nil, fmt.Errorf("component %q: %w", id, ErrNotRegistered)
	}
	if e.state == StateError {
		err := e.lastErr
		r.mu.Unlock()
		return nil, err
	}

	key, cacheable := instanceKey(e.desc.Scope, scope)
	if cacheable {
		if inst, found := e.instances[key]; found {
			r.mu.Unlock()
			return inst, nil
		}
	}

	var pending []event.Event
	switch {
	case e.state == StateRegistered:
		pending = append(pending, transitionLocked(e, StateInitializing))
	case e.state.Live():
		// Additional instance for a component that is already built;
		// the component state stays where it is.
	default:
		st := e.state
		r.mu.Unlock()
		return nil, fmt.Errorf("component %q: cannot build in state %s: %w", id, st, ErrInvalidTransition)
	}
	desc := e.desc.clone()
	factory := desc.Factory
	if factory == nil {
		factory = r.catalog[desc.Kind]
	}
	r.mu.Unlock()
	for _, ev := range pending {
		r.emit(ev)
	}

	if factory == nil {
		return nil, r.fail(id, "resolve",
			fmt.Errorf("component %q: kind %q: %w", id, desc.Kind, ErrUnknownKind))
	}

	stack[id] = true
	path = append(path, id)
	defer delete(stack, id)

	for _, dep := range desc.Requires {
		if _, err := r.resolve(dep, scope, stack, path); err != nil {
			return nil, r.fail(id, "resolve",
				fmt.Errorf("component %q: requires %q: %w", id, dep, err))
		}
	}

	ctx := &BuildContext{
		id:       id,
		config:   desc.Config,
		registry: r,
		scope:    scope,
		stack:    stack,
		path:     path,
	}

	instance, err := r.build(id, factory, ctx)
	if err != nil {
		return nil, r.fail(id, "resolve", fmt.Errorf("component %q: %w", id, err))
	}

	if init, ok := instance.(Initializable); ok {
		if err := init.Init(ctx); err != nil {
			return nil, r.fail(id, "init", fmt.Errorf("component %q: init: %w", id, err))
		}
	}

	r.mu.Lock()
	e, ok = r.entries[id]
	if !ok {
		r.mu.Unlock()
		return nil, fmt.Errorf("component %q: %w", id, ErrNotRegistered)
	}
	if cacheable {
		if existing, found := e.instances[key]; found {
			// Another resolve won the race; keep its instance.
			r.mu.Unlock()
			return existing, nil
		}
		e.instances[key] = instance
	}
	pending = pending[:0]
	if e.state == StateInitializing {
		pending = append(pending, transitionLocked(e, StateInitialized))
	}
	r.mu.Unlock()
	for _, ev := range pending {
		r.emit(ev)
	}

	for _, h := range r.hooks.Collect(PhaseAfterInit) {
		if err := h(id, instance); err != nil {
			return nil, r.fail(id, "init",
				fmt.Errorf("component %q: after_init hook: %w", id, err))
		}
	}

	r.logger.Debug("created %s (scope=%s)", id, scope)
	return instance, nil
}

// build invokes the factory, converting panics into errors.
func (r *Registry) build(id string, factory Factory, ctx *BuildContext) (instance any, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("factory panic in %s: %v\n%s", id, rec, debug.Stack())
			err = fmt.Errorf("factory panic: %v", rec)
		}
	}()
	return factory(ctx)
}

// DisposeScope disposes and forgets every scoped instance created for
// the scope id. Component states are not affected; other scopes keep
// their instances.
func (r *Registry) DisposeScope(scope string) error {
	if scope == "" {
		scope = DefaultScope
	}

	r.mu.Lock()
	type scoped struct {
		id   string
		inst any
	}
	var found []scoped
	for _, id := range r.order {
		e := r.entries[id]
		if e.desc.Scope != ScopeScoped {
			continue
		}
		if inst, ok := e.instances[scope]; ok {
			found = append(found, scoped{id: id, inst: inst})
			delete(e.instances, scope)
		}
	}
	r.mu.Unlock()

	hooks := r.hooks.Collect(PhaseBeforeDispose)
	var errs []error
	for i := len(found) - 1; i >= 0; i-- {
		s := found[i]
		for _, h := range hooks {
			if err := h(s.id, s.inst); err != nil {
				r.logger.Error("before_dispose hook for %s: %v", s.id, err)
				errs = append(errs, fmt.Errorf("component %q: before_dispose hook: %w", s.id, err))
			}
		}
		d, ok := s.inst.(Disposable)
		if !ok {
			continue
		}
		if err := d.Dispose(); err != nil {
			r.logger.Error("dispose %s (scope=%s): %v", s.id, scope, err)
			errs = append(errs, fmt.Errorf("component %q: %w", s.id, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("failed to dispose scope %q: %w", scope, errors.Join(errs...))
	}
	return nil
}

// instanceKey maps a descriptor scope and a resolution scope to the
// instance cache key. Transients report not cacheable.
func instanceKey(descScope Scope, scope string) (string, bool) {
	switch descScope {
	case ScopeSingleton:
		return "", true
	case ScopeScoped:
		return scope, true
	default:
		return "", false
	}
}
