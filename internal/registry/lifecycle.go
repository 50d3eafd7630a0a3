package registry

import (
	"errors"
	"fmt"

	"github.com/inkwright/inkwright/internal/event"
	"github.com/inkwright/inkwright/internal/event/events"
)

// Activate moves the component to StateActive, calling the Activatable
// capability on every live instance first. Valid from StateInitialized
// and StateInactive.
func (r *Registry) Activate(id string) error {
	r.mu.Lock()
	e, ok := r.entries[id]
	if !ok {
		r.mu.Unlock()
		return fmt.Errorf("component %q: %w", id, ErrNotRegistered)
	}
	if !e.state.CanTransition(StateActive) {
		st := e.state
		r.mu.Unlock()
		return fmt.Errorf("component %q: cannot activate from %s: %w", id, st, ErrInvalidTransition)
	}
	instances := e.snapshotInstancesLocked()
	r.mu.Unlock()

	for _, inst := range instances {
		a, ok := inst.(Activatable)
		if !ok {
			continue
		}
		if err := a.Activate(); err != nil {
			return r.fail(id, "activate", fmt.Errorf("component %q: activate: %w", id, err))
		}
	}

	r.setState(id, StateActive)

	hooks := r.hooks.Collect(PhaseAfterActivate)
	for _, inst := range instances {
		for _, h := range hooks {
			if err := h(id, inst); err != nil {
				return r.fail(id, "activate",
					fmt.Errorf("component %q: after_activate hook: %w", id, err))
			}
		}
	}

	r.logger.Debug("activated %s", id)
	return nil
}

// Deactivate moves the component from StateActive to StateInactive.
// Before-deactivate hooks run first and can veto by returning an
// error, then the Deactivatable capability runs on every instance.
func (r *Registry) Deactivate(id string) error {
	r.mu.Lock()
	e, ok := r.entries[id]
	if !ok {
		r.mu.Unlock()
		return fmt.Errorf("component %q: %w", id, ErrNotRegistered)
	}
	if !e.state.CanTransition(StateInactive) {
		st := e.state
		r.mu.Unlock()
		return fmt.Errorf("component %q: cannot deactivate from %s: %w", id, st, ErrInvalidTransition)
	}
	instances := e.snapshotInstancesLocked()
	r.mu.Unlock()

	hooks := r.hooks.Collect(PhaseBeforeDeactivate)
	for _, inst := range instances {
		for _, h := range hooks {
			if err := h(id, inst); err != nil {
				return r.fail(id, "deactivate",
					fmt.Errorf("component %q: before_deactivate hook: %w", id, err))
			}
		}
	}

	for _, inst := range instances {
		d, ok := inst.(Deactivatable)
		if !ok {
			continue
		}
		if err := d.Deactivate(); err != nil {
			return r.fail(id, "deactivate", fmt.Errorf("component %q: deactivate: %w", id, err))
		}
	}

	r.setState(id, StateInactive)
	r.logger.Debug("deactivated %s", id)
	return nil
}

// Dispose tears the component down: before-dispose hooks, Disposable
// capability per instance, then StateDisposed with the instance cache
// cleared. Capability and hook errors are logged and recorded but
// never stop disposal; they are joined into the returned error. An
// active component is deactivated best-effort first.
func (r *Registry) Dispose(id string) error {
	r.mu.Lock()
	e, ok := r.entries[id]
	if !ok {
		r.mu.Unlock()
		return fmt.Errorf("component %q: %w", id, ErrNotRegistered)
	}
	if e.state == StateActive {
		r.mu.Unlock()
		if err := r.Deactivate(id); err != nil {
			r.logger.Warn("deactivate before dispose of %s: %v", id, err)
		}
		r.mu.Lock()
		e, ok = r.entries[id]
		if !ok {
			r.mu.Unlock()
			return fmt.Errorf("component %q: %w", id, ErrNotRegistered)
		}
	}
	if !e.state.CanTransition(StateDisposing) {
		st := e.state
		r.mu.Unlock()
		return fmt.Errorf("component %q: cannot dispose from %s: %w", id, st, ErrInvalidTransition)
	}
	ev := transitionLocked(e, StateDisposing)
	instances := e.snapshotInstancesLocked()
	e.instances = make(map[string]any)
	r.mu.Unlock()
	r.emit(ev)

	var errs []error
	hooks := r.hooks.Collect(PhaseBeforeDispose)
	for _, inst := range instances {
		for _, h := range hooks {
			if err := h(id, inst); err != nil {
				r.logger.Error("before_dispose hook for %s: %v", id, err)
				errs = append(errs, fmt.Errorf("before_dispose hook: %w", err))
			}
		}
	}

	for _, inst := range instances {
		d, ok := inst.(Disposable)
		if !ok {
			continue
		}
		if err := d.Dispose(); err != nil {
			r.logger.Error("dispose %s: %v", id, err)
			errs = append(errs, err)
		}
	}

	var failure error
	if len(errs) > 0 {
		failure = fmt.Errorf("component %q: dispose: %w", id, errors.Join(errs...))
	}

	r.mu.Lock()
	var pending []event.Event
	if e, ok := r.entries[id]; ok {
		if failure != nil {
			e.lastErr = failure
		}
		if e.state == StateDisposing {
			pending = append(pending, transitionLocked(e, StateDisposed))
		}
	}
	r.mu.Unlock()
	for _, ev := range pending {
		r.emit(ev)
	}

	if failure != nil {
		r.emit(events.NewComponentError(id, "dispose", failure.Error()))
		return failure
	}
	r.logger.Debug("disposed %s", id)
	return nil
}

// ActivateAll resolves and activates every singleton and scoped
// component in dependency order. Failures are collected; activation
// continues past them.
func (r *Registry) ActivateAll() error {
	var errs []error
	for _, id := range r.activationOrder() {
		r.mu.RLock()
		e, ok := r.entries[id]
		skip := !ok || e.desc.Scope == ScopeTransient ||
			e.state == StateActive || e.state == StateDisposing || e.state == StateDisposed
		r.mu.RUnlock()
		if skip {
			continue
		}
		if _, err := r.Resolve(id); err != nil {
			errs = append(errs, err)
			continue
		}
		if err := r.Activate(id); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("failed to activate %d components: %w", len(errs), errors.Join(errs...))
	}
	return nil
}

// DeactivateAll deactivates every active component in reverse
// dependency order, continuing past failures.
func (r *Registry) DeactivateAll() error {
	order := r.activationOrder()
	var errs []error
	for i := len(order) - 1; i >= 0; i-- {
		id := order[i]
		r.mu.RLock()
		e, ok := r.entries[id]
		skip := !ok || e.state != StateActive
		r.mu.RUnlock()
		if skip {
			continue
		}
		if err := r.Deactivate(id); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("failed to deactivate %d components: %w", len(errs), errors.Join(errs...))
	}
	return nil
}

// DisposeAll disposes every created component in reverse dependency
// order. Components that were never instantiated are skipped.
func (r *Registry) DisposeAll() error {
	order := r.activationOrder()
	var errs []error
	for i := len(order) - 1; i >= 0; i-- {
		id := order[i]
		r.mu.RLock()
		e, ok := r.entries[id]
		skip := !ok || !e.state.CanTransition(StateDisposing)
		r.mu.RUnlock()
		if skip {
			continue
		}
		if err := r.Dispose(id); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("failed to dispose %d components: %w", len(errs), errors.Join(errs...))
	}
	return nil
}

// setState applies a transition when it is still legal and emits the
// state change. Used on the success paths of Activate and Deactivate,
// where the precondition was checked before the capability calls ran
// outside the lock.
func (r *Registry) setState(id string, next ComponentState) {
	r.mu.Lock()
	var pending []event.Event
	if e, ok := r.entries[id]; ok && e.state.CanTransition(next) {
		pending = append(pending, transitionLocked(e, next))
	}
	r.mu.Unlock()
	for _, ev := range pending {
		r.emit(ev)
	}
}

// activationOrder returns registered ids sorted so every component
// follows its requires, ties broken by registration order. Ids that
// are required but not registered are left out; their dependents fail
// at resolve time instead.
func (r *Registry) activationOrder() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order := make([]string, 0, len(r.order))
	seen := make(map[string]bool, len(r.order))
	var visit func(id string)
	visit = func(id string) {
		if seen[id] {
			return
		}
		seen[id] = true
		e, ok := r.entries[id]
		if !ok {
			return
		}
		for _, dep := range e.desc.Requires {
			visit(dep)
		}
		order = append(order, id)
	}
	for _, id := range r.order {
		visit(id)
	}
	return order
}
