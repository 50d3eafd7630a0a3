package event

import "sync"

// DefaultHistoryLimit is the number of events retained when no
// WithHistoryLimit option is given.
const DefaultHistoryLimit = 100

// history is a bounded FIFO of emitted events. The oldest entry is
// evicted when the limit is reached. A limit of zero disables
// retention entirely.
type history struct {
	mu      sync.Mutex
	limit   int
	entries []Event
}

func newHistory(limit int) *history {
	return &history{limit: limit}
}

// Record appends an event, evicting the oldest entry when full.
func (h *history) Record(e Event) {
	if h.limit <= 0 {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.entries = append(h.entries, e)
	if len(h.entries) > h.limit {
		n := copy(h.entries, h.entries[len(h.entries)-h.limit:])
		h.entries = h.entries[:n]
	}
}

// List returns retained events matching the filter, oldest first.
// When max is positive, only the most recent max matches are returned,
// still oldest first. A nil filter matches everything.
func (h *history) List(max int, f *Filter) []Event {
	h.mu.Lock()
	defer h.mu.Unlock()

	var matched []Event
	for _, e := range h.entries {
		if f == nil || f.Matches(e) {
			matched = append(matched, e)
		}
	}

	if max > 0 && len(matched) > max {
		matched = matched[len(matched)-max:]
	}
	return matched
}

// Clear discards all retained events.
func (h *history) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = nil
}

// Len returns the number of retained events.
func (h *history) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}
