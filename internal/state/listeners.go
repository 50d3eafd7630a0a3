package state

import "sync"

// ListenerHandle identifies a registered change listener. Cancel is
// idempotent and safe to call from any goroutine.
type ListenerHandle struct {
	id     uint64
	prefix string
	keyed  bool
	set    *listenerSet
}

// Cancel removes the listener. No further changes are delivered to it
// once Cancel returns.
func (h *ListenerHandle) Cancel() {
	h.set.remove(h)
}

// listenerSet tracks change listeners: global ones that hear every
// change and keyed ones scoped to a key and its descendants.
type listenerSet struct {
	mu     sync.RWMutex
	nextID uint64
	global map[uint64]func(Change)
	keyed  map[string]map[uint64]func(Change)
}

func newListenerSet() *listenerSet {
	return &listenerSet{
		global: make(map[uint64]func(Change)),
		keyed:  make(map[string]map[uint64]func(Change)),
	}
}

// AddGlobal registers a listener for all changes.
func (s *listenerSet) AddGlobal(fn func(Change)) *ListenerHandle {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	h := &ListenerHandle{id: s.nextID, set: s}
	s.global[h.id] = fn
	return h
}

// AddKey registers a listener for changes at prefix and below.
func (s *listenerSet) AddKey(prefix string, fn func(Change)) *ListenerHandle {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	h := &ListenerHandle{id: s.nextID, prefix: prefix, keyed: true, set: s}
	m, ok := s.keyed[prefix]
	if !ok {
		m = make(map[uint64]func(Change))
		s.keyed[prefix] = m
	}
	m[h.id] = fn
	return h
}

func (s *listenerSet) remove(h *ListenerHandle) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !h.keyed {
		delete(s.global, h.id)
		return
	}
	if m, ok := s.keyed[h.prefix]; ok {
		delete(m, h.id)
		if len(m) == 0 {
			delete(s.keyed, h.prefix)
		}
	}
}

// Collect returns the listeners interested in a change at key: every
// global listener plus keyed listeners whose prefix covers the key.
// The snapshot is taken under the lock so callbacks run without it.
func (s *listenerSet) Collect(key string) []func(Change) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []func(Change)
	for _, fn := range s.global {
		out = append(out, fn)
	}
	for prefix, m := range s.keyed {
		if !isParentKey(prefix, key) {
			continue
		}
		for _, fn := range m {
			out = append(out, fn)
		}
	}
	return out
}

// Len reports the number of registered listeners.
func (s *listenerSet) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.global)
	for _, m := range s.keyed {
		n += len(m)
	}
	return n
}
