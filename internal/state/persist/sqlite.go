package persist

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite" // pure-Go sqlite driver
)

const snapshotSchema = `
CREATE TABLE IF NOT EXISTS state_snapshot (
	id       INTEGER PRIMARY KEY CHECK (id = 1),
	document BLOB NOT NULL,
	saved_at TIMESTAMP NOT NULL
);`

// SQLiteStore keeps the snapshot in a single-row SQLite table. The
// database absorbs partial writes on its own, and external tooling can
// inspect saved state with any sqlite client.
type SQLiteStore struct {
	mu sync.Mutex
	db *sql.DB
}

// NewSQLiteStore opens or creates the snapshot database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create snapshot dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot database: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if _, err := db.Exec(snapshotSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create snapshot table: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Save upserts the snapshot row.
func (s *SQLiteStore) Save(snapshot []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return ErrStoreClosed
	}

	_, err := s.db.Exec(`
		INSERT INTO state_snapshot (id, document, saved_at)
		VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			document = excluded.document,
			saved_at = excluded.saved_at`,
		snapshot, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// Load reads the snapshot row.
func (s *SQLiteStore) Load() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil, ErrStoreClosed
	}

	var doc []byte
	err := s.db.QueryRow(`SELECT document FROM state_snapshot WHERE id = 1`).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	return doc, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	if err != nil {
		return fmt.Errorf("close snapshot database: %w", err)
	}
	return nil
}
