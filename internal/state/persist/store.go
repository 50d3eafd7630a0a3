// Package persist provides snapshot storage backends for the state
// manager. A store holds exactly one snapshot, the JSON document of
// all persistent keys; every save replaces the previous snapshot
// wholesale.
package persist

import "errors"

var (
	// ErrNoSnapshot indicates the store has never saved a snapshot.
	ErrNoSnapshot = errors.New("no snapshot stored")

	// ErrStoreClosed indicates an operation on a closed store.
	ErrStoreClosed = errors.New("snapshot store is closed")
)

// Store persists the state manager's snapshot of persistent keys.
// Implementations must be safe for concurrent use.
type Store interface {
	// Save writes the snapshot, replacing any previous one.
	Save(snapshot []byte) error

	// Load returns the most recently saved snapshot. It returns
	// ErrNoSnapshot when nothing has been saved yet.
	Load() ([]byte, error)

	// Close releases resources held by the store. Further operations
	// return ErrStoreClosed.
	Close() error
}
