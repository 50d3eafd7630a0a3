package event

import "github.com/inkwright/inkwright/internal/logging"

// BusOption configures an event Bus.
type BusOption func(*busConfig)

// busConfig contains configuration for the event bus.
type busConfig struct {
	// historyLimit is the number of events the bus retains. Zero disables history.
	historyLimit int

	// logger receives handler failure reports.
	logger *logging.Logger

	// panicHandler is called when a handler panics.
	panicHandler PanicHandler
}

// defaultBusConfig returns sensible default configuration.
func defaultBusConfig() busConfig {
	return busConfig{
		historyLimit: DefaultHistoryLimit,
		logger:       logging.NullLogger,
	}
}

// WithHistoryLimit sets how many emitted events the bus retains.
// Zero disables history; negative values are ignored.
func WithHistoryLimit(limit int) BusOption {
	return func(c *busConfig) {
		if limit >= 0 {
			c.historyLimit = limit
		}
	}
}

// WithLogger sets the logger used for handler failure reports.
func WithLogger(l *logging.Logger) BusOption {
	return func(c *busConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithBusPanicHandler sets an additional callback invoked when a
// handler panics. Panics are always recovered regardless.
func WithBusPanicHandler(h PanicHandler) BusOption {
	return func(c *busConfig) {
		if h != nil {
			c.panicHandler = h
		}
	}
}
