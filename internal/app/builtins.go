package app

import (
	"context"
	"errors"
	"sync"

	"github.com/inkwright/inkwright/internal/event"
	"github.com/inkwright/inkwright/internal/event/events"
	"github.com/inkwright/inkwright/internal/logging"
	"github.com/inkwright/inkwright/internal/registry"
	"github.com/inkwright/inkwright/internal/state"
)

// Built-in component kinds. Manifests reference these by name.
const (
	KindSessionTracker = "session-tracker"
	KindWordCount      = "wordcount-service"
	KindThemeManager   = "theme-manager"
)

// State keys maintained by the built-in components.
const (
	keySessionEvents = "session.events"
	keyWordsToday    = "wordcount.today"
	keyTheme         = "ui.theme"
)

const defaultTheme = "dark"

var builtinKinds = map[string]registry.Factory{
	KindSessionTracker: newSessionTracker,
	KindWordCount:      newWordCounter,
	KindThemeManager:   newThemeManager,
}

// registerBuiltinKinds installs the component kinds that ship with the
// application so manifests can reference them by name.
func registerBuiltinKinds(r *registry.Registry) error {
	var errs []error
	for kind, factory := range builtinKinds {
		if err := r.RegisterKind(kind, factory); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

var (
	_ registry.Initializable = (*SessionTracker)(nil)
	_ registry.Activatable   = (*SessionTracker)(nil)
	_ registry.Deactivatable = (*SessionTracker)(nil)
	_ registry.Disposable    = (*SessionTracker)(nil)
	_ registry.Initializable = (*WordCounter)(nil)
	_ registry.Activatable   = (*WordCounter)(nil)
	_ registry.Deactivatable = (*WordCounter)(nil)
	_ registry.Disposable    = (*WordCounter)(nil)
	_ registry.Initializable = (*ThemeManager)(nil)
)

// SessionTracker counts bus activity for the current session and
// mirrors the count into the "session.events" state key.
type SessionTracker struct {
	mu     sync.Mutex
	states *state.Manager
	bus    event.Bus
	log    *logging.Logger
	subs   *event.Subscriber
	seen   int64
}

func newSessionTracker(_ *registry.BuildContext) (any, error) {
	return &SessionTracker{}, nil
}

// Init wires the tracker to the application services.
func (t *SessionTracker) Init(ctx *registry.BuildContext) error {
	t.states = ctx.States()
	t.bus = ctx.EventBus()
	t.log = ctx.Logger()
	if t.states == nil || t.bus == nil {
		return errors.New("session tracker requires an event bus and state manager")
	}
	return nil
}

// Activate subscribes to every event on the bus.
func (t *SessionTracker) Activate() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.subs = event.NewSubscriber(t.bus)
	_, err := t.subs.SubscribeAll(event.HandlerFunc(t.handle))
	return err
}

// Deactivate drops the subscription. The count survives until the
// tracker is disposed.
func (t *SessionTracker) Deactivate() error {
	return t.closeSubs()
}

// Dispose releases the subscription if one is still held.
func (t *SessionTracker) Dispose() error {
	return t.closeSubs()
}

// Count reports how many events have been seen this session.
func (t *SessionTracker) Count() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.seen
}

func (t *SessionTracker) handle(_ context.Context, e event.Event) error {
	// State writes emit system events, so counting them would feed
	// the handler its own output.
	if e.Metadata.Category == event.CategorySystem {
		return nil
	}

	t.mu.Lock()
	t.seen++
	n := t.seen
	t.mu.Unlock()

	if err := t.states.Set(keySessionEvents, n); err != nil {
		t.log.Warn("record session event: %v", err)
	}
	return nil
}

func (t *SessionTracker) closeSubs() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.subs == nil {
		return nil
	}
	err := t.subs.Close()
	t.subs = nil
	return err
}

// WordCounter accumulates document edit deltas into the persistent
// "wordcount.today" state key.
type WordCounter struct {
	mu     sync.Mutex
	states *state.Manager
	bus    event.Bus
	log    *logging.Logger
	subs   *event.Subscriber
	total  int64
}

func newWordCounter(_ *registry.BuildContext) (any, error) {
	return &WordCounter{}, nil
}

// Init wires the counter and restores any persisted total.
func (w *WordCounter) Init(ctx *registry.BuildContext) error {
	w.states = ctx.States()
	w.bus = ctx.EventBus()
	w.log = ctx.Logger()
	if w.states == nil || w.bus == nil {
		return errors.New("word counter requires an event bus and state manager")
	}
	if err := w.states.MarkPersistent(keyWordsToday); err != nil {
		return err
	}
	w.total = asInt(w.states.GetDefault(keyWordsToday, 0))
	return nil
}

// Activate subscribes to document edit events.
func (w *WordCounter) Activate() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.subs = event.NewSubscriber(w.bus)
	_, err := w.subs.SubscribeFunc(events.KindDocumentEdited, w.handle)
	return err
}

// Deactivate drops the subscription.
func (w *WordCounter) Deactivate() error {
	return w.closeSubs()
}

// Dispose releases the subscription if one is still held.
func (w *WordCounter) Dispose() error {
	return w.closeSubs()
}

// Today reports the accumulated word count.
func (w *WordCounter) Today() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.total
}

func (w *WordCounter) handle(_ context.Context, e event.Event) error {
	edit, ok := e.Payload.(events.DocumentEdited)
	if !ok {
		return nil
	}
	// Deletions don't take back progress.
	if edit.Delta <= 0 {
		return nil
	}

	w.mu.Lock()
	w.total += int64(edit.Delta)
	n := w.total
	w.mu.Unlock()

	if err := w.states.Set(keyWordsToday, n); err != nil {
		w.log.Warn("record word count: %v", err)
	}
	return nil
}

func (w *WordCounter) closeSubs() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.subs == nil {
		return nil
	}
	err := w.subs.Close()
	w.subs = nil
	return err
}

// ThemeManager owns the persistent "ui.theme" state key and announces
// theme switches on the bus.
type ThemeManager struct {
	states  *state.Manager
	emitter *event.Emitter
	log     *logging.Logger
	def     string
}

func newThemeManager(_ *registry.BuildContext) (any, error) {
	return &ThemeManager{}, nil
}

// Init restores or seeds the theme. The manifest config key "default"
// overrides the built-in default theme.
func (m *ThemeManager) Init(ctx *registry.BuildContext) error {
	m.states = ctx.States()
	m.log = ctx.Logger()
	if m.states == nil {
		return errors.New("theme manager requires a state manager")
	}
	if bus := ctx.EventBus(); bus != nil {
		m.emitter = event.NewEmitter(bus, ctx.ID())
	}

	m.def = defaultTheme
	if v, ok := ctx.Config()["default"].(string); ok && v != "" {
		m.def = v
	}

	if err := m.states.MarkPersistent(keyTheme); err != nil {
		return err
	}
	if !m.states.Has(keyTheme) {
		return m.states.Set(keyTheme, m.def)
	}
	return nil
}

// Theme returns the current theme name.
func (m *ThemeManager) Theme() string {
	return asString(m.states.GetDefault(keyTheme, m.def), m.def)
}

// SetTheme switches the theme and emits a theme.changed event.
// Setting the current theme again is a no-op.
func (m *ThemeManager) SetTheme(name string) error {
	if name == "" {
		return errors.New("theme name is empty")
	}
	old := m.Theme()
	if old == name {
		return nil
	}
	if err := m.states.Set(keyTheme, name); err != nil {
		return err
	}
	if m.emitter != nil {
		err := m.emitter.EmitEvent(context.Background(), events.NewThemeChanged(old, name))
		if err != nil && !errors.Is(err, event.ErrBusClosed) {
			m.log.Warn("emit %s: %v", events.KindThemeChanged, err)
		}
	}
	return nil
}

// asInt normalizes numeric state values, which decode as float64 after
// a persistence round trip.
func asInt(v any) int64 {
	switch n := v.(type) {
	case int:
		return int64(n)
	case int64:
		return n
	case float64:
		return int64(n)
	default:
		return 0
	}
}

func asString(v any, def string) string {
	if s, ok := v.(string); ok && s != "" {
		return s
	}
	return def
}
