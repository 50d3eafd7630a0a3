package state

import "time"

// ChangeType identifies what a change did to its key.
type ChangeType int

const (
	// ChangeSet records a value being created or replaced.
	ChangeSet ChangeType = iota
	// ChangeClear records a value being removed.
	ChangeClear
)

// String returns the change type name.
func (t ChangeType) String() string {
	switch t {
	case ChangeSet:
		return "set"
	case ChangeClear:
		return "clear"
	default:
		return "unknown"
	}
}

// Change describes one applied mutation of the state tree. Old and New
// are decoded copies, never aliases of internal storage; treat them as
// read-only.
type Change struct {
	// Key is the canonical dot-path that changed.
	Key string
	// Type is ChangeSet or ChangeClear.
	Type ChangeType
	// Old is the previous value, nil when OldExists is false.
	Old any
	// New is the resulting value, nil for ChangeClear.
	New any
	// OldExists reports whether the key held a value before the change.
	OldExists bool
	// Tracked is false for changes replayed by Undo, Redo, or
	// LoadPersistent. Untracked changes reach observers and the event
	// bus but produce no log or undo entries.
	Tracked bool
	// Timestamp is when the change was applied.
	Timestamp time.Time
}

// changeLog is a bounded FIFO of applied changes. The manager's mutex
// guards all access.
type changeLog struct {
	limit   int
	entries []Change
}

func newChangeLog(limit int) *changeLog {
	return &changeLog{limit: limit}
}

// Append records a change, evicting the oldest entry when full. A zero
// limit disables recording.
func (l *changeLog) Append(c Change) {
	if l.limit <= 0 {
		return
	}
	if len(l.entries) >= l.limit {
		l.entries = l.entries[1:]
	}
	l.entries = append(l.entries, c)
}

// List returns up to max recorded changes, oldest first. A max of zero
// or less returns everything.
func (l *changeLog) List(max int) []Change {
	entries := l.entries
	if max > 0 && len(entries) > max {
		entries = entries[len(entries)-max:]
	}
	out := make([]Change, len(entries))
	copy(out, entries)
	return out
}

func (l *changeLog) Clear() {
	l.entries = nil
}

func (l *changeLog) Len() int {
	return len(l.entries)
}
