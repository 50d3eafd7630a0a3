// Package app assembles the framework subsystems into a runnable
// application: logging, the event bus, persistent state and the
// component registry.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/inkwright/inkwright/internal/event"
	"github.com/inkwright/inkwright/internal/logging"
	"github.com/inkwright/inkwright/internal/registry"
	"github.com/inkwright/inkwright/internal/state"
	"github.com/inkwright/inkwright/internal/state/persist"
)

// Options configures a new App.
type Options struct {
	// ConfigDir is the directory for application files. Defaults to
	// "inkwright" under the user config dir.
	ConfigDir string

	// StatePath overrides the state snapshot location. When empty it
	// is derived from ConfigDir and the backend.
	StatePath string

	// StateBackend selects the snapshot store: "file", "sqlite" or
	// "memory". Defaults to "file".
	StateBackend string

	// ComponentPaths are directories scanned for component manifests.
	ComponentPaths []string

	// LogLevel sets logging verbosity: "debug", "info", "warn" or
	// "error".
	LogLevel string

	// LogWriter is where logs are written. Defaults to os.Stderr.
	LogWriter io.Writer
}

// App wires the event bus, state manager and component registry
// together and drives their lifecycles.
type App struct {
	opts Options

	logger   *logging.Logger
	bus      event.Bus
	store    persist.Store
	states   *state.Manager
	registry *registry.Registry

	running  atomic.Bool
	done     chan struct{}
	stopOnce sync.Once

	closeOnce sync.Once
	closeErr  error
}

// New builds an application from the given options and brings every
// registered component up.
func New(opts Options) (*App, error) {
	app := &App{
		opts: opts,
		done: make(chan struct{}),
	}

	if err := app.bootstrap(); err != nil {
		return nil, err
	}

	return app, nil
}

// bootstrap initializes all subsystems in dependency order.
func (a *App) bootstrap() error {
	// 1. Logger - everything below reports through it.
	out := a.opts.LogWriter
	if out == nil {
		out = os.Stderr
	}
	a.logger = logging.New(logging.Config{
		Level:  logging.ParseLevel(a.opts.LogLevel),
		Output: out,
		Prefix: "inkwright",
	})

	// 2. Event bus - messaging foundation.
	a.bus = event.NewBus(event.WithLogger(a.logger))

	// 3. Snapshot store for persistent state.
	store, err := a.openStore()
	if err != nil {
		return &InitError{Component: "state store", Err: err}
	}
	a.store = store

	// 4. State manager, restoring the previous session's snapshot.
	a.states = state.New(
		state.WithBus(a.bus),
		state.WithLogger(a.logger),
		state.WithStore(a.store),
	)
	if err := a.states.LoadPersistent(); err != nil {
		// A damaged snapshot shouldn't stop startup.
		a.logger.Warn("restore state: %v", err)
	}

	// 5. Component registry with the built-in kind catalog.
	a.registry = registry.New(registry.Services{
		Bus:    a.bus,
		States: a.states,
		Logger: a.logger,
	})
	if err := registerBuiltinKinds(a.registry); err != nil {
		return &InitError{Component: "component catalog", Err: err}
	}

	// 6. Discovered components register first so a manifest can claim
	// an id before the defaults are filled in.
	manifests, err := a.registry.Discover(a.opts.ComponentPaths...)
	if err != nil {
		a.logger.Warn("component discovery: %v", err)
	}
	if err := a.registry.RegisterDiscovered(manifests); err != nil {
		a.logger.Warn("register components: %v", err)
	}
	if err := a.registerDefaults(); err != nil {
		return &InitError{Component: "builtin components", Err: err}
	}

	// 7. Bring everything up in dependency order. Components that
	// fail stay visible in the registry with their error recorded.
	if err := a.registry.ActivateAll(); err != nil {
		a.logger.Warn("activate components: %v", err)
	}

	return nil
}

// openStore opens the snapshot store named by the options.
func (a *App) openStore() (persist.Store, error) {
	backend := a.opts.StateBackend
	if backend == "" {
		backend = "file"
	}
	if backend == "memory" {
		return persist.NewMemoryStore(), nil
	}

	path := a.opts.StatePath
	if path == "" {
		name := "state.json"
		if backend == "sqlite" {
			name = "state.db"
		}
		path = filepath.Join(a.configDir(), name)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	switch backend {
	case "file":
		return persist.NewFileStore(path), nil
	case "sqlite":
		return persist.NewSQLiteStore(path)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
}

func (a *App) configDir() string {
	if a.opts.ConfigDir != "" {
		return a.opts.ConfigDir
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return ".inkwright"
	}
	return filepath.Join(base, "inkwright")
}

// registerDefaults registers a component for each built-in kind that
// no manifest has claimed.
func (a *App) registerDefaults() error {
	defaults := []registry.Descriptor{
		{ID: KindSessionTracker, Kind: KindSessionTracker, Type: registry.TypeService},
		{ID: KindWordCount, Kind: KindWordCount, Type: registry.TypeService},
		{ID: KindThemeManager, Kind: KindThemeManager, Type: registry.TypeUtility},
	}

	var errs []error
	for _, d := range defaults {
		if _, ok := a.registry.Get(d.ID); ok {
			continue
		}
		if _, err := a.registry.Register(d); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Run blocks until the context is cancelled or Shutdown is called,
// then tears the application down.
func (a *App) Run(ctx context.Context) error {
	if !a.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer a.running.Store(false)

	a.logger.Info("ready (%d components)", len(a.registry.IDs()))

	select {
	case <-ctx.Done():
	case <-a.done:
	}

	return a.Close()
}

// Shutdown asks a running Run to return. Safe to call more than once.
func (a *App) Shutdown() {
	a.stopOnce.Do(func() { close(a.done) })
}

// Close tears down all subsystems in reverse bootstrap order. Repeat
// calls return the first result.
func (a *App) Close() error {
	a.closeOnce.Do(func() {
		a.Shutdown()

		var errs []error
		if err := a.registry.DeactivateAll(); err != nil {
			errs = append(errs, err)
		}
		if err := a.registry.DisposeAll(); err != nil {
			errs = append(errs, err)
		}
		if err := a.states.Flush(); err != nil {
			errs = append(errs, err)
		}
		if err := a.store.Close(); err != nil {
			errs = append(errs, err)
		}
		if err := a.bus.Close(); err != nil {
			errs = append(errs, err)
		}
		a.closeErr = errors.Join(errs...)

		if a.closeErr != nil {
			a.logger.Warn("shutdown finished with errors: %v", a.closeErr)
		} else {
			a.logger.Info("shutdown complete")
		}
	})
	return a.closeErr
}

// Bus returns the application event bus.
func (a *App) Bus() event.Bus {
	return a.bus
}

// States returns the application state manager.
func (a *App) States() *state.Manager {
	return a.states
}

// Registry returns the component registry.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Logger returns the application logger.
func (a *App) Logger() *logging.Logger {
	return a.logger
}
