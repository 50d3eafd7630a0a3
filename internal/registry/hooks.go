package registry

import "sync"

// Phase identifies a lifecycle moment hooks can attach to.
type Phase int

// Lifecycle hook phases.
const (
	// PhaseAfterInit runs after a component instance is built and
	// initialized.
	PhaseAfterInit Phase = iota

	// PhaseAfterActivate runs after a component activates.
	PhaseAfterActivate

	// PhaseBeforeDeactivate runs before a component deactivates.
	PhaseBeforeDeactivate

	// PhaseBeforeDispose runs before a component's instances are
	// disposed.
	PhaseBeforeDispose
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseAfterInit:
		return "after_init"
	case PhaseAfterActivate:
		return "after_activate"
	case PhaseBeforeDeactivate:
		return "before_deactivate"
	case PhaseBeforeDispose:
		return "before_dispose"
	default:
		return "unknown"
	}
}

// Hook observes a component at a lifecycle phase. A non-nil error
// moves the component to StateError, except in the dispose phase,
// where errors are logged and disposal continues.
type Hook func(id string, instance any) error

// HookHandle identifies a registered hook. Cancel is idempotent.
type HookHandle struct {
	id    uint64
	phase Phase
	set   *hookSet
}

// Cancel removes the hook.
func (h *HookHandle) Cancel() {
	h.set.remove(h.phase, h.id)
}

// hookSet stores lifecycle hooks in registration order per phase.
type hookSet struct {
	mu     sync.RWMutex
	nextID uint64
	hooks  map[Phase][]hookEntry
}

type hookEntry struct {
	id uint64
	fn Hook
}

func newHookSet() *hookSet {
	return &hookSet{hooks: make(map[Phase][]hookEntry)}
}

// Add registers a hook at the end of the phase's order.
func (s *hookSet) Add(phase Phase, fn Hook) *HookHandle {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	s.hooks[phase] = append(s.hooks[phase], hookEntry{id: s.nextID, fn: fn})
	return &HookHandle{id: s.nextID, phase: phase, set: s}
}

func (s *hookSet) remove(phase Phase, id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.hooks[phase]
	for i, e := range entries {
		if e.id == id {
			s.hooks[phase] = append(entries[:i], entries[i+1:]...)
			return
		}
	}
}

// Collect returns the phase's hooks in registration order.
func (s *hookSet) Collect(phase Phase) []Hook {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := s.hooks[phase]
	out := make([]Hook, len(entries))
	for i, e := range entries {
		out[i] = e.fn
	}
	return out
}
