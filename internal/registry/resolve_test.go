package registry

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/inkwright/inkwright/internal/event"
	"github.com/inkwright/inkwright/internal/event/events"
	"github.com/inkwright/inkwright/internal/state"
)

func TestResolveSingletonIdentity(t *testing.T) {
	r := newTestRegistry()
	built := 0
	if _, err := r.Register(Descriptor{
		ID:   "editor",
		Type: TypeService,
		Factory: func(ctx *BuildContext) (any, error) {
			built++
			return &testComponent{name: "editor"}, nil
		},
	}); err != nil {
		t.Fatalf("Register error: %v", err)
	}

	first, err := r.Resolve("editor")
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	second, err := r.Resolve("editor")
	if err != nil {
		t.Fatalf("second Resolve error: %v", err)
	}

	if first != second {
		t.Error("singleton resolves returned different instances")
	}
	if built != 1 {
		t.Errorf("factory ran %d times, want 1", built)
	}
	if st, _ := r.States("editor"); st != StateInitialized {
		t.Errorf("state = %v, want StateInitialized", st)
	}
}

func TestResolveTransientFreshness(t *testing.T) {
	r := newTestRegistry()
	built := 0
	if _, err := r.Register(Descriptor{
		ID:    "dialog",
		Type:  TypeDialog,
		Scope: ScopeTransient,
		Factory: func(ctx *BuildContext) (any, error) {
			built++
			return &testComponent{name: "dialog"}, nil
		},
	}); err != nil {
		t.Fatalf("Register error: %v", err)
	}

	first, err := r.Resolve("dialog")
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	second, err := r.Resolve("dialog")
	if err != nil {
		t.Fatalf("second Resolve error: %v", err)
	}

	if first == second {
		t.Error("transient resolves returned the same instance")
	}
	if built != 2 {
		t.Errorf("factory ran %d times, want 2", built)
	}
}

func TestResolveScopedIsolation(t *testing.T) {
	r := newTestRegistry()
	built := 0
	if _, err := r.Register(Descriptor{
		ID:    "session",
		Type:  TypeService,
		Scope: ScopeScoped,
		Factory: func(ctx *BuildContext) (any, error) {
			built++
			return &testComponent{name: ctx.Scope()}, nil
		},
	}); err != nil {
		t.Fatalf("Register error: %v", err)
	}

	a1, err := r.ResolveScoped("session", "tab-a")
	if err != nil {
		t.Fatalf("ResolveScoped(a) error: %v", err)
	}
	a2, err := r.ResolveScoped("session", "tab-a")
	if err != nil {
		t.Fatalf("ResolveScoped(a) again error: %v", err)
	}
	b, err := r.ResolveScoped("session", "tab-b")
	if err != nil {
		t.Fatalf("ResolveScoped(b) error: %v", err)
	}

	if a1 != a2 {
		t.Error("same scope returned different instances")
	}
	if a1 == b {
		t.Error("different scopes shared an instance")
	}
	if built != 2 {
		t.Errorf("factory ran %d times, want 2", built)
	}

	plain, err := r.Resolve("session")
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	dflt, err := r.ResolveScoped("session", DefaultScope)
	if err != nil {
		t.Fatalf("ResolveScoped(default) error: %v", err)
	}
	if plain != dflt {
		t.Error("plain Resolve did not use the default scope")
	}
}

func TestResolveNotRegistered(t *testing.T) {
	r := newTestRegistry()
	if _, err := r.Resolve("ghost"); !errors.Is(err, ErrNotRegistered) {
		t.Errorf("Resolve error = %v, want ErrNotRegistered", err)
	}
}

func TestDependencyInjectionOrder(t *testing.T) {
	r := newTestRegistry()
	var order []string
	factory := func(name string) Factory {
		return func(ctx *BuildContext) (any, error) {
			order = append(order, name)
			return &testComponent{name: name}, nil
		}
	}

	for _, d := range []Descriptor{
		{ID: "config", Type: TypeService, Factory: factory("config")},
		{ID: "store", Type: TypeService, Factory: factory("store")},
		{ID: "editor", Type: TypeService, Requires: []string{"config", "store"}, Factory: factory("editor")},
	} {
		if _, err := r.Register(d); err != nil {
			t.Fatalf("Register(%s) error: %v", d.ID, err)
		}
	}

	if _, err := r.Resolve("editor"); err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if want := []string{"config", "store", "editor"}; !equalStrings(order, want) {
		t.Errorf("build order = %v, want %v", order, want)
	}
}

func TestDependencyThroughBuildContext(t *testing.T) {
	r := newTestRegistry()
	register(t, r, "store")

	var injected any
	if _, err := r.Register(Descriptor{
		ID:       "editor",
		Type:     TypeService,
		Requires: []string{"store"},
		Factory: func(ctx *BuildContext) (any, error) {
			var err error
			injected, err = ctx.Dependency("store")
			return &testComponent{name: "editor"}, err
		},
	}); err != nil {
		t.Fatalf("Register error: %v", err)
	}

	if _, err := r.Resolve("editor"); err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	direct, err := r.Resolve("store")
	if err != nil {
		t.Fatalf("Resolve(store) error: %v", err)
	}
	if injected != direct {
		t.Error("Dependency returned a different instance than Resolve")
	}
}

func TestDependencyCycle(t *testing.T) {
	r := newTestRegistry()
	register(t, r, "a", "b")
	register(t, r, "b", "a")

	_, err := r.Resolve("a")
	if !errors.Is(err, ErrDependencyCycle) {
		t.Fatalf("Resolve error = %v, want ErrDependencyCycle", err)
	}
	if !strings.Contains(err.Error(), "a -> b -> a") {
		t.Errorf("cycle error %q does not name the path", err)
	}
	if st, _ := r.States("a"); st != StateError {
		t.Errorf("state(a) = %v, want StateError", st)
	}
	if r.LastError("a") == nil {
		t.Error("LastError(a) is nil after cycle failure")
	}
}

func TestResolveMissingDependency(t *testing.T) {
	r := newTestRegistry()
	register(t, r, "editor", "ghost")

	_, err := r.Resolve("editor")
	if !errors.Is(err, ErrNotRegistered) {
		t.Fatalf("Resolve error = %v, want ErrNotRegistered", err)
	}
	if st, _ := r.States("editor"); st != StateError {
		t.Errorf("state = %v, want StateError", st)
	}
}

func TestFactoryErrorCapture(t *testing.T) {
	bus := event.NewBus()
	defer bus.Close()
	r := New(Services{Bus: bus})

	var errEvents []events.ComponentError
	if _, err := bus.SubscribeFunc(events.KindComponentError, func(ctx context.Context, e event.Event) error {
		errEvents = append(errEvents, e.Payload.(events.ComponentError))
		return nil
	}); err != nil {
		t.Fatalf("SubscribeFunc error: %v", err)
	}

	built := 0
	boom := errors.New("boom")
	if _, err := r.Register(Descriptor{
		ID:   "broken",
		Type: TypeService,
		Factory: func(ctx *BuildContext) (any, error) {
			built++
			return nil, boom
		},
	}); err != nil {
		t.Fatalf("Register error: %v", err)
	}

	_, err := r.Resolve("broken")
	if !errors.Is(err, boom) {
		t.Fatalf("Resolve error = %v, want wrapped boom", err)
	}
	if st, _ := r.States("broken"); st != StateError {
		t.Errorf("state = %v, want StateError", st)
	}
	if !errors.Is(r.LastError("broken"), boom) {
		t.Errorf("LastError = %v, want wrapped boom", r.LastError("broken"))
	}
	if len(errEvents) != 1 || errEvents[0].ID != "broken" || errEvents[0].Operation != "resolve" {
		t.Errorf("error events = %+v", errEvents)
	}

	// A failed component stays failed; the factory does not rerun.
	if _, err := r.Resolve("broken"); !errors.Is(err, boom) {
		t.Errorf("second Resolve error = %v, want wrapped boom", err)
	}
	if built != 1 {
		t.Errorf("factory ran %d times, want 1", built)
	}
}

func TestFactoryPanicRecovered(t *testing.T) {
	r := newTestRegistry()
	if _, err := r.Register(Descriptor{
		ID:   "volatile",
		Type: TypeService,
		Factory: func(ctx *BuildContext) (any, error) {
			panic("kaboom")
		},
	}); err != nil {
		t.Fatalf("Register error: %v", err)
	}

	_, err := r.Resolve("volatile")
	if err == nil || !strings.Contains(err.Error(), "factory panic") {
		t.Fatalf("Resolve error = %v, want factory panic", err)
	}
	if st, _ := r.States("volatile"); st != StateError {
		t.Errorf("state = %v, want StateError", st)
	}
}

func TestInitErrorCapture(t *testing.T) {
	r := newTestRegistry()
	c := &testComponent{initErr: errors.New("bad init")}
	if _, err := r.Register(Descriptor{
		ID:      "editor",
		Type:    TypeService,
		Factory: func(ctx *BuildContext) (any, error) { return c, nil },
	}); err != nil {
		t.Fatalf("Register error: %v", err)
	}

	_, err := r.Resolve("editor")
	if !errors.Is(err, c.initErr) {
		t.Fatalf("Resolve error = %v, want wrapped init error", err)
	}
	if st, _ := r.States("editor"); st != StateError {
		t.Errorf("state = %v, want StateError", st)
	}
}

func TestBuildContext(t *testing.T) {
	bus := event.NewBus()
	defer bus.Close()
	states := state.New()
	r := New(Services{Bus: bus, States: states})

	var seen *BuildContext
	if _, err := r.Register(Descriptor{
		ID:     "editor",
		Type:   TypeService,
		Config: map[string]any{"width": 80},
		Factory: func(ctx *BuildContext) (any, error) {
			seen = ctx
			return &testComponent{name: "editor"}, nil
		},
	}); err != nil {
		t.Fatalf("Register error: %v", err)
	}
	if _, err := r.Resolve("editor"); err != nil {
		t.Fatalf("Resolve error: %v", err)
	}

	if seen.ID() != "editor" {
		t.Errorf("ID() = %q", seen.ID())
	}
	if seen.Scope() != DefaultScope {
		t.Errorf("Scope() = %q, want %q", seen.Scope(), DefaultScope)
	}
	if seen.EventBus() != bus {
		t.Error("EventBus() did not return the shared bus")
	}
	if seen.States() != states {
		t.Error("States() did not return the shared manager")
	}
	if seen.Registry() != r {
		t.Error("Registry() did not return the owner")
	}

	cfg := seen.Config()
	if cfg["width"] != 80 {
		t.Errorf("Config()[width] = %v", cfg["width"])
	}
	cfg["width"] = 999
	d, _ := r.Get("editor")
	if d.Config["width"] != 80 {
		t.Errorf("mutating Config() copy changed the descriptor: %v", d.Config)
	}
}

func TestCatalogFallback(t *testing.T) {
	r := newTestRegistry()
	if err := r.RegisterKind("widget", func(ctx *BuildContext) (any, error) {
		return &testComponent{name: ctx.ID()}, nil
	}); err != nil {
		t.Fatalf("RegisterKind error: %v", err)
	}

	if _, err := r.Register(Descriptor{ID: "toolbar", Type: TypeView, Kind: "widget"}); err != nil {
		t.Fatalf("Register error: %v", err)
	}

	inst, err := r.Resolve("toolbar")
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if c, ok := inst.(*testComponent); !ok || c.name != "toolbar" {
		t.Errorf("instance = %#v, want testComponent built by catalog", inst)
	}
}

func TestRegisterKindValidation(t *testing.T) {
	r := newTestRegistry()
	if err := r.RegisterKind("", func(ctx *BuildContext) (any, error) { return nil, nil }); !errors.Is(err, ErrInvalidDescriptor) {
		t.Errorf("empty kind error = %v, want ErrInvalidDescriptor", err)
	}
	if err := r.RegisterKind("widget", nil); !errors.Is(err, ErrInvalidDescriptor) {
		t.Errorf("nil factory error = %v, want ErrInvalidDescriptor", err)
	}
}

func TestKinds(t *testing.T) {
	r := newTestRegistry()
	factory := func(ctx *BuildContext) (any, error) { return struct{}{}, nil }
	for _, k := range []string{"widget", "panel", "service"} {
		if err := r.RegisterKind(k, factory); err != nil {
			t.Fatalf("RegisterKind(%s) error: %v", k, err)
		}
	}
	if got, want := r.Kinds(), []string{"panel", "service", "widget"}; !equalStrings(got, want) {
		t.Errorf("Kinds = %v, want %v", got, want)
	}
}

func TestDisposeScope(t *testing.T) {
	r := newTestRegistry()
	var made []*testComponent
	if _, err := r.Register(Descriptor{
		ID:    "session",
		Type:  TypeService,
		Scope: ScopeScoped,
		Factory: func(ctx *BuildContext) (any, error) {
			c := &testComponent{name: ctx.Scope()}
			made = append(made, c)
			return c, nil
		},
	}); err != nil {
		t.Fatalf("Register error: %v", err)
	}

	a, err := r.ResolveScoped("session", "tab-a")
	if err != nil {
		t.Fatalf("ResolveScoped(a) error: %v", err)
	}
	b, err := r.ResolveScoped("session", "tab-b")
	if err != nil {
		t.Fatalf("ResolveScoped(b) error: %v", err)
	}

	if err := r.DisposeScope("tab-a"); err != nil {
		t.Fatalf("DisposeScope error: %v", err)
	}

	if want := []string{"init", "dispose"}; !equalStrings(a.(*testComponent).calls, want) {
		t.Errorf("tab-a calls = %v, want %v", a.(*testComponent).calls, want)
	}
	if want := []string{"init"}; !equalStrings(b.(*testComponent).calls, want) {
		t.Errorf("tab-b calls = %v, want %v", b.(*testComponent).calls, want)
	}

	again, err := r.ResolveScoped("session", "tab-a")
	if err != nil {
		t.Fatalf("ResolveScoped(a) after dispose error: %v", err)
	}
	if again == a {
		t.Error("disposed scope returned the old instance")
	}
	if len(made) != 3 {
		t.Errorf("factory ran %d times, want 3", len(made))
	}
}

func TestResolveStateEvents(t *testing.T) {
	bus := event.NewBus()
	defer bus.Close()
	r := New(Services{Bus: bus})

	var transitions []string
	if _, err := bus.SubscribeFunc(events.KindComponentStateChanged, func(ctx context.Context, e event.Event) error {
		p := e.Payload.(events.ComponentStateChanged)
		transitions = append(transitions, fmt.Sprintf("%s:%s->%s", p.ID, p.OldState, p.NewState))
		return nil
	}); err != nil {
		t.Fatalf("SubscribeFunc error: %v", err)
	}

	register(t, r, "editor")
	if _, err := r.Resolve("editor"); err != nil {
		t.Fatalf("Resolve error: %v", err)
	}

	want := []string{
		"editor:registered->initializing",
		"editor:initializing->initialized",
	}
	if !equalStrings(transitions, want) {
		t.Errorf("transitions = %v, want %v", transitions, want)
	}
}
