package events

import "github.com/inkwright/inkwright/internal/event"

// State event kinds.
const (
	// KindStateChanged is emitted when a state key is set or cleared.
	KindStateChanged event.Kind = "state.changed"

	// KindStateLoaded is emitted after persistent state has been replayed.
	KindStateLoaded event.Kind = "state.loaded"
)

// StateChanged is the payload of KindStateChanged.
type StateChanged struct {
	// Key is the dot-path of the changed value.
	Key string `json:"key"`

	// Old is the prior value; nil when the key was created.
	Old any `json:"old"`

	// New is the value after the change; nil when the key was cleared.
	New any `json:"new"`

	// Cleared is true when the change removed the key.
	Cleared bool `json:"cleared"`

	// Tracked is false for replayed or undone changes.
	Tracked bool `json:"tracked"`
}

// StateLoaded is the payload of KindStateLoaded.
type StateLoaded struct {
	// Keys is the number of keys applied from the stored snapshot.
	Keys int `json:"keys"`
}

// NewStateChanged builds a KindStateChanged event.
func NewStateChanged(key string, old, newValue any, cleared, tracked bool) event.Event {
	return event.New(KindStateChanged,
		StateChanged{Key: key, Old: old, New: newValue, Cleared: cleared, Tracked: tracked},
		event.WithCategory(event.CategorySystem),
		event.WithSource("state"),
	)
}

// NewStateLoaded builds a KindStateLoaded event.
func NewStateLoaded(keys int) event.Event {
	return event.New(KindStateLoaded,
		StateLoaded{Keys: keys},
		event.WithCategory(event.CategorySystem),
		event.WithSource("state"),
	)
}
