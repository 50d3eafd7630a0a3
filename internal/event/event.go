package event

import (
	"time"

	"github.com/google/uuid"
)

// timeNow is a seam for tests.
var timeNow = time.Now

// Kind is the dotted event type name (e.g., "document.saved").
type Kind string

// Valid reports whether the kind is usable as an event type.
func (k Kind) Valid() bool {
	return k != ""
}

// Namespace returns the segment before the first dot, or the whole
// kind when there is no dot. Used for coarse routing.
func (k Kind) Namespace() string {
	s := string(k)
	for i := 0; i < len(s); i++ {
		if s[i] == '.' {
			return s[:i]
		}
	}
	return s
}

// String returns the kind as a string.
func (k Kind) String() string {
	return string(k)
}

// Category groups events by the area of the application they describe.
type Category int

const (
	// CategoryCustom is the default for events without an assigned category.
	CategoryCustom Category = iota

	// CategoryDocument is for manuscript and document events.
	CategoryDocument

	// CategoryProject is for project-level events.
	CategoryProject

	// CategoryUI is for view and interface events.
	CategoryUI

	// CategoryError is for failure events.
	CategoryError

	// CategorySystem is for framework-internal events.
	CategorySystem
)

// String returns a human-readable category name.
func (c Category) String() string {
	switch c {
	case CategoryCustom:
		return "custom"
	case CategoryDocument:
		return "document"
	case CategoryProject:
		return "project"
	case CategoryUI:
		return "ui"
	case CategoryError:
		return "error"
	case CategorySystem:
		return "system"
	default:
		return "unknown"
	}
}

// ParseCategory parses a category name. Unknown names map to CategoryCustom.
func ParseCategory(s string) Category {
	switch s {
	case "document":
		return CategoryDocument
	case "project":
		return CategoryProject
	case "ui":
		return CategoryUI
	case "error":
		return CategoryError
	case "system":
		return CategorySystem
	default:
		return CategoryCustom
	}
}

// Priority expresses how important an event is. Higher values are
// more important. Priority does not affect delivery order; it exists
// for filtering.
type Priority int

const (
	// PriorityLow is for noisy, ignorable events.
	PriorityLow Priority = iota

	// PriorityNormal is the default priority.
	PriorityNormal

	// PriorityHigh is for events most listeners should not drop.
	PriorityHigh

	// PriorityCritical is for events that demand attention.
	PriorityCritical
)

// String returns a human-readable priority name.
func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "low"
	case PriorityNormal:
		return "normal"
	case PriorityHigh:
		return "high"
	case PriorityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// Metadata contains standard information attached to every event.
type Metadata struct {
	// ID is a unique identifier for this event instance.
	ID string

	// Timestamp is when the event was created.
	Timestamp time.Time

	// Source identifies who published the event.
	Source string

	// Category groups the event by application area.
	Category Category

	// Priority expresses the event's importance.
	Priority Priority
}

// Event is a single occurrence delivered through the bus.
// Events are immutable once created; handlers must not mutate payloads.
type Event struct {
	// Kind is the event type (e.g., "document.saved").
	Kind Kind

	// Payload contains the event-specific data.
	Payload any

	// Metadata contains standard event information.
	Metadata Metadata
}

// EventOption configures an event at construction time.
type EventOption func(*Event)

// WithCategory sets the event category.
func WithCategory(c Category) EventOption {
	return func(e *Event) {
		e.Metadata.Category = c
	}
}

// WithPriority sets the event priority.
func WithPriority(p Priority) EventOption {
	return func(e *Event) {
		e.Metadata.Priority = p
	}
}

// WithSource sets the event source, overriding call-site inference.
func WithSource(source string) EventOption {
	return func(e *Event) {
		e.Metadata.Source = source
	}
}

// New creates an event with a fresh ID and timestamp. When no
// WithSource option is given, the source is inferred from the first
// caller outside this package.
func New(kind Kind, payload any, opts ...EventOption) Event {
	e := Event{
		Kind:    kind,
		Payload: payload,
		Metadata: Metadata{
			ID:        uuid.NewString(),
			Timestamp: timeNow(),
			Category:  CategoryCustom,
			Priority:  PriorityNormal,
		},
	}
	for _, opt := range opts {
		opt(&e)
	}
	if e.Metadata.Source == "" {
		e.Metadata.Source = callerSource()
	}
	return e
}

// WithMeta returns a copy of the event with replacement metadata.
// Zero fields in meta keep the event's existing values.
func (e Event) WithMeta(meta Metadata) Event {
	if meta.ID != "" {
		e.Metadata.ID = meta.ID
	}
	if !meta.Timestamp.IsZero() {
		e.Metadata.Timestamp = meta.Timestamp
	}
	if meta.Source != "" {
		e.Metadata.Source = meta.Source
	}
	if meta.Category != CategoryCustom {
		e.Metadata.Category = meta.Category
	}
	if meta.Priority != PriorityNormal {
		e.Metadata.Priority = meta.Priority
	}
	return e
}
