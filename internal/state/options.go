package state

import (
	"github.com/inkwright/inkwright/internal/event"
	"github.com/inkwright/inkwright/internal/logging"
	"github.com/inkwright/inkwright/internal/state/persist"
)

const (
	// DefaultHistoryLimit is the change log bound used when no option
	// overrides it.
	DefaultHistoryLimit = 1000

	// DefaultUndoLimit is the undo stack bound used when no option
	// overrides it.
	DefaultUndoLimit = 100
)

// Option configures a Manager.
type Option func(*config)

type config struct {
	historyLimit int
	undoLimit    int
	bus          event.Bus
	logger       *logging.Logger
	store        persist.Store
	persistent   []string
}

func defaultConfig() config {
	return config{
		historyLimit: DefaultHistoryLimit,
		undoLimit:    DefaultUndoLimit,
		logger:       logging.NullLogger,
	}
}

// WithBus emits a state.changed event on bus for every applied change.
func WithBus(bus event.Bus) Option {
	return func(c *config) {
		c.bus = bus
	}
}

// WithLogger sets the logger used for listener panics and persistence
// failures.
func WithLogger(l *logging.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithHistoryLimit bounds the change log; the oldest entries are
// evicted beyond it. Zero disables the log. Negative values are
// ignored.
func WithHistoryLimit(n int) Option {
	return func(c *config) {
		if n >= 0 {
			c.historyLimit = n
		}
	}
}

// WithUndoLimit bounds the undo stack. Zero disables undo and redo.
// Negative values are ignored.
func WithUndoLimit(n int) Option {
	return func(c *config) {
		if n >= 0 {
			c.undoLimit = n
		}
	}
}

// WithStore attaches a snapshot store for persistent keys.
func WithStore(s persist.Store) Option {
	return func(c *config) {
		c.store = s
	}
}

// WithPersistentKeys marks keys persistent at construction. Invalid
// keys are skipped with a log entry.
func WithPersistentKeys(keys ...string) Option {
	return func(c *config) {
		c.persistent = append(c.persistent, keys...)
	}
}
