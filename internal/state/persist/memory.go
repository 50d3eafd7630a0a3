package persist

import "sync"

// MemoryStore keeps the snapshot in memory. It backs ephemeral
// sessions and tests that should not touch the filesystem.
type MemoryStore struct {
	mu     sync.Mutex
	data   []byte
	closed bool
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Save copies the snapshot into memory.
func (s *MemoryStore) Save(snapshot []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}
	s.data = append([]byte(nil), snapshot...)
	return nil
}

// Load returns a copy of the last saved snapshot.
func (s *MemoryStore) Load() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrStoreClosed
	}
	if s.data == nil {
		return nil, ErrNoSnapshot
	}
	return append([]byte(nil), s.data...), nil
}

// Close marks the store closed and drops the snapshot.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data = nil
	s.closed = true
	return nil
}
