package events

import "github.com/inkwright/inkwright/internal/event"

// UI event kinds.
const (
	// KindViewActivated is emitted when a view gains focus.
	KindViewActivated event.Kind = "ui.view_activated"

	// KindViewDeactivated is emitted when a view loses focus.
	KindViewDeactivated event.Kind = "ui.view_deactivated"

	// KindThemeChanged is emitted when the active theme switches.
	KindThemeChanged event.Kind = "ui.theme_changed"
)

// ViewActivated is the payload of KindViewActivated.
type ViewActivated struct {
	// View is the component ID of the activated view.
	View string `json:"view"`
}

// ViewDeactivated is the payload of KindViewDeactivated.
type ViewDeactivated struct {
	View string `json:"view"`
}

// ThemeChanged is the payload of KindThemeChanged.
type ThemeChanged struct {
	// Old is the previous theme name.
	Old string `json:"old"`

	// New is the theme now in effect.
	New string `json:"new"`
}

// NewViewActivated builds a KindViewActivated event.
func NewViewActivated(view string) event.Event {
	return event.New(KindViewActivated,
		ViewActivated{View: view},
		event.WithCategory(event.CategoryUI),
	)
}

// NewViewDeactivated builds a KindViewDeactivated event.
func NewViewDeactivated(view string) event.Event {
	return event.New(KindViewDeactivated,
		ViewDeactivated{View: view},
		event.WithCategory(event.CategoryUI),
	)
}

// NewThemeChanged builds a KindThemeChanged event.
func NewThemeChanged(oldTheme, newTheme string) event.Event {
	return event.New(KindThemeChanged,
		ThemeChanged{Old: oldTheme, New: newTheme},
		event.WithCategory(event.CategoryUI),
	)
}
