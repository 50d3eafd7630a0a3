package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"sync"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/inkwright/inkwright/internal/event"
	"github.com/inkwright/inkwright/internal/event/events"
	"github.com/inkwright/inkwright/internal/logging"
	"github.com/inkwright/inkwright/internal/state/persist"
)

// Manager owns the state tree. All methods are safe for concurrent
// use; mutations serialize on an internal mutex, and listeners run on
// the mutating goroutine after the lock is released.
type Manager struct {
	mu         sync.RWMutex
	doc        []byte
	log        *changeLog
	undo       *undoRedo
	persistent []string

	listeners *listenerSet
	bus       event.Bus
	store     persist.Store
	logger    *logging.Logger
}

// New creates a state manager with an empty tree.
func New(opts ...Option) *Manager {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	m := &Manager{
		doc:       []byte("{}"),
		log:       newChangeLog(cfg.historyLimit),
		undo:      newUndoRedo(cfg.undoLimit),
		listeners: newListenerSet(),
		bus:       cfg.bus,
		store:     cfg.store,
		logger:    cfg.logger.WithComponent("state"),
	}
	for _, key := range cfg.persistent {
		canon, _, err := canonicalKey(key)
		if err != nil {
			m.logger.Warn("skipping persistent key %q: %v", key, err)
			continue
		}
		m.insertPersistent(canon)
	}
	return m
}

// Set stores value at key, creating intermediate objects as needed.
// Setting a key to the value it already holds is a no-op: nothing is
// recorded and nobody is notified. The value must survive a JSON
// round-trip; what observers and Get see is the decoded form.
func (m *Manager) Set(key string, value any) error {
	key, segs, err := canonicalKey(key)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrValueNotSerializable, err)
	}

	m.mu.Lock()
	change, err := m.applySetLocked(key, segs, raw, true)
	if err != nil {
		m.mu.Unlock()
		return err
	}
	if change == nil {
		m.mu.Unlock()
		return nil
	}
	m.log.Append(*change)
	m.undo.Push(*change)
	store, snapshot := m.persistencePayloadLocked(key)
	m.mu.Unlock()

	m.saveSnapshot(store, snapshot)
	m.notify(*change)
	return nil
}

// Clear removes the value at key and prunes any ancestors left empty.
// It returns ErrKeyNotFound when the key holds no value.
func (m *Manager) Clear(key string) error {
	key, segs, err := canonicalKey(key)
	if err != nil {
		return err
	}

	m.mu.Lock()
	change, err := m.applyClearLocked(key, segs, true)
	if err != nil {
		m.mu.Unlock()
		return err
	}
	m.log.Append(*change)
	m.undo.Push(*change)
	store, snapshot := m.persistencePayloadLocked(key)
	m.mu.Unlock()

	m.saveSnapshot(store, snapshot)
	m.notify(*change)
	return nil
}

// Get returns the decoded value at key. The second result reports
// whether the key holds a value.
func (m *Manager) Get(key string) (any, bool) {
	_, segs, err := canonicalKey(key)
	if err != nil {
		return nil, false
	}

	m.mu.RLock()
	r := gjson.GetBytes(m.doc, getPath(segs))
	exists := r.Exists()
	raw := r.Raw
	m.mu.RUnlock()

	if !exists {
		return nil, false
	}
	return decodeAny(raw), true
}

// GetDefault returns the value at key, or def when the key is absent.
func (m *Manager) GetDefault(key string, def any) any {
	if v, ok := m.Get(key); ok {
		return v
	}
	return def
}

// Has reports whether key holds a value.
func (m *Manager) Has(key string) bool {
	_, segs, err := canonicalKey(key)
	if err != nil {
		return false
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	return gjson.GetBytes(m.doc, getPath(segs)).Exists()
}

// Keys returns the sorted leaf keys under prefix, in canonical key
// syntax. An empty prefix lists the whole tree. When the prefix itself
// holds a leaf value the result is just the prefix.
func (m *Manager) Keys(prefix string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	root := gjson.ParseBytes(m.doc)
	var base []string
	if prefix != "" {
		_, segs, err := canonicalKey(prefix)
		if err != nil {
			return nil
		}
		base = segs
		root = gjson.GetBytes(m.doc, getPath(segs))
		if !root.Exists() {
			return nil
		}
	}

	var keys []string
	walkLeaves(root, base, func(segs []string, _ gjson.Result) {
		keys = append(keys, joinKey(segs))
	})
	sort.Strings(keys)
	return keys
}

// Snapshot returns a decoded copy of the entire tree.
func (m *Manager) Snapshot() map[string]any {
	m.mu.RLock()
	raw := append([]byte(nil), m.doc...)
	m.mu.RUnlock()

	var snap map[string]any
	if err := json.Unmarshal(raw, &snap); err != nil {
		return map[string]any{}
	}
	return snap
}

// Reset discards the tree, the change log, and both undo stacks.
// Persistent key markings survive, and the snapshot store is left
// untouched until the next tracked change or Flush.
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.doc = []byte("{}")
	m.log.Clear()
	m.undo.Clear()
}

// Changes returns up to max recorded changes, oldest first. A max of
// zero or less returns the full log.
func (m *Manager) Changes(max int) []Change {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.log.List(max)
}

// Undo reverts the most recent tracked change. The inverse application
// is untracked: listeners and the bus hear it, but no log or undo
// entries appear.
func (m *Manager) Undo() error {
	m.mu.Lock()
	entry, ok := m.undo.PopUndo()
	if !ok {
		m.mu.Unlock()
		return ErrNothingToUndo
	}
	change, err := m.applyInverseLocked(entry)
	if err != nil {
		m.undo.RestoreUndo(entry)
		m.mu.Unlock()
		return err
	}
	m.undo.PushRedo(entry)
	m.mu.Unlock()

	if change != nil {
		m.notify(*change)
	}
	return nil
}

// Redo reapplies the most recently undone change.
func (m *Manager) Redo() error {
	m.mu.Lock()
	entry, ok := m.undo.PopRedo()
	if !ok {
		m.mu.Unlock()
		return ErrNothingToRedo
	}
	change, err := m.applyForwardLocked(entry)
	if err != nil {
		m.undo.RestoreRedo(entry)
		m.mu.Unlock()
		return err
	}
	m.undo.RestoreUndo(entry)
	m.mu.Unlock()

	if change != nil {
		m.notify(*change)
	}
	return nil
}

// CanUndo reports whether an undoable change exists.
func (m *Manager) CanUndo() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.undo.CanUndo()
}

// CanRedo reports whether an undone change can be reapplied.
func (m *Manager) CanRedo() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.undo.CanRedo()
}

// UndoDepth returns the undo stack size.
func (m *Manager) UndoDepth() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.undo.UndoLen()
}

// RedoDepth returns the redo stack size.
func (m *Manager) RedoDepth() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.undo.RedoLen()
}

// OnChange registers a listener for every applied change.
func (m *Manager) OnChange(fn func(Change)) *ListenerHandle {
	return m.listeners.AddGlobal(fn)
}

// OnKey registers a listener for changes at key and below. A prefix
// that cannot be parsed never matches.
func (m *Manager) OnKey(prefix string, fn func(Change)) *ListenerHandle {
	if canon, _, err := canonicalKey(prefix); err == nil {
		prefix = canon
	}
	return m.listeners.AddKey(prefix, fn)
}

// MarkPersistent marks keys for write-through persistence. Marking is
// idempotent and takes effect from the next tracked change onward.
func (m *Manager) MarkPersistent(keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, key := range keys {
		canon, _, err := canonicalKey(key)
		if err != nil {
			return err
		}
		m.insertPersistent(canon)
	}
	return nil
}

// PersistentKeys returns the sorted persistent key set.
func (m *Manager) PersistentKeys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.persistent...)
}

// Flush saves the snapshot of persistent keys unconditionally. With no
// store attached it is a no-op.
func (m *Manager) Flush() error {
	m.mu.Lock()
	store := m.store
	var snapshot []byte
	if store != nil {
		snapshot = m.persistentSnapshotLocked()
	}
	m.mu.Unlock()

	if store == nil {
		return nil
	}
	return store.Save(snapshot)
}

// LoadPersistent replays the stored snapshot, applying every leaf as
// an untracked set. Keys whose paths conflict with existing values are
// skipped with a log entry. A store that has never saved is not an
// error.
func (m *Manager) LoadPersistent() error {
	m.mu.RLock()
	store := m.store
	m.mu.RUnlock()
	if store == nil {
		return nil
	}

	raw, err := store.Load()
	if errors.Is(err, persist.ErrNoSnapshot) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load state snapshot: %w", err)
	}
	root := gjson.ParseBytes(raw)
	if !root.IsObject() {
		return ErrInvalidSnapshot
	}

	var changes []Change
	m.mu.Lock()
	walkLeaves(root, nil, func(segs []string, value gjson.Result) {
		key := joinKey(segs)
		change, err := m.applySetLocked(key, segs, []byte(value.Raw), false)
		if err != nil {
			m.logger.Warn("skipping stored key %s: %v", key, err)
			return
		}
		if change != nil {
			changes = append(changes, *change)
		}
	})
	m.mu.Unlock()

	for _, c := range changes {
		m.notify(c)
	}
	if m.bus != nil {
		ev := events.NewStateLoaded(len(changes))
		if err := m.bus.Emit(context.Background(), ev); err != nil && !errors.Is(err, event.ErrBusClosed) {
			m.logger.Error("emit state loaded: %v", err)
		}
	}
	return nil
}

// applySetLocked writes raw at the key and returns the change record,
// or nil when the value is already there. The caller holds the write
// lock.
func (m *Manager) applySetLocked(key string, segs []string, raw []byte, tracked bool) (*Change, error) {
	for i := 1; i < len(segs); i++ {
		r := gjson.GetBytes(m.doc, getPath(segs[:i]))
		if r.Exists() && !r.IsObject() {
			return nil, fmt.Errorf("%w: %q blocked at %q", ErrNotAnObject, key, joinKey(segs[:i]))
		}
	}

	old := gjson.GetBytes(m.doc, getPath(segs))
	if old.Exists() && jsonEqual(old.Raw, string(raw)) {
		return nil, nil
	}

	doc, err := sjson.SetRawBytes(m.doc, setPath(segs), raw)
	if err != nil {
		return nil, fmt.Errorf("set %q: %w", key, err)
	}
	m.doc = doc

	c := &Change{
		Key:       key,
		Type:      ChangeSet,
		New:       decodeAny(string(raw)),
		OldExists: old.Exists(),
		Tracked:   tracked,
		Timestamp: time.Now(),
	}
	if old.Exists() {
		c.Old = decodeAny(old.Raw)
	}
	return c, nil
}

// applyClearLocked removes the value at the key, prunes emptied
// ancestors, and returns the change record. The caller holds the write
// lock.
func (m *Manager) applyClearLocked(key string, segs []string, tracked bool) (*Change, error) {
	for i := 1; i < len(segs); i++ {
		r := gjson.GetBytes(m.doc, getPath(segs[:i]))
		if !r.Exists() {
			return nil, fmt.Errorf("%w: %q", ErrKeyNotFound, key)
		}
		if !r.IsObject() {
			return nil, fmt.Errorf("%w: %q", ErrKeyNotFound, key)
		}
	}

	old := gjson.GetBytes(m.doc, getPath(segs))
	if !old.Exists() {
		return nil, fmt.Errorf("%w: %q", ErrKeyNotFound, key)
	}

	doc, err := sjson.DeleteBytes(m.doc, setPath(segs))
	if err != nil {
		return nil, fmt.Errorf("clear %q: %w", key, err)
	}
	for i := len(segs) - 1; i >= 1; i-- {
		r := gjson.GetBytes(doc, getPath(segs[:i]))
		if !r.Exists() || !r.IsObject() || !emptyObject(r) {
			break
		}
		doc, err = sjson.DeleteBytes(doc, setPath(segs[:i]))
		if err != nil {
			return nil, fmt.Errorf("prune %q: %w", joinKey(segs[:i]), err)
		}
	}
	m.doc = doc

	return &Change{
		Key:       key,
		Type:      ChangeClear,
		Old:       decodeAny(old.Raw),
		OldExists: true,
		Tracked:   tracked,
		Timestamp: time.Now(),
	}, nil
}

// applyInverseLocked applies the untracked inverse of a recorded
// change.
func (m *Manager) applyInverseLocked(entry Change) (*Change, error) {
	segs, err := splitKey(entry.Key)
	if err != nil {
		return nil, err
	}
	if entry.Type == ChangeSet && !entry.OldExists {
		return m.applyClearLocked(entry.Key, segs, false)
	}
	raw, err := json.Marshal(entry.Old)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValueNotSerializable, err)
	}
	return m.applySetLocked(entry.Key, segs, raw, false)
}

// applyForwardLocked reapplies a recorded change, untracked.
func (m *Manager) applyForwardLocked(entry Change) (*Change, error) {
	segs, err := splitKey(entry.Key)
	if err != nil {
		return nil, err
	}
	if entry.Type == ChangeClear {
		return m.applyClearLocked(entry.Key, segs, false)
	}
	raw, err := json.Marshal(entry.New)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValueNotSerializable, err)
	}
	return m.applySetLocked(entry.Key, segs, raw, false)
}

// persistencePayloadLocked returns the store and a fresh snapshot when
// the changed key touches a persistent subtree, nil otherwise.
func (m *Manager) persistencePayloadLocked(key string) (persist.Store, []byte) {
	if m.store == nil || !m.touchesPersistentLocked(key) {
		return nil, nil
	}
	return m.store, m.persistentSnapshotLocked()
}

// touchesPersistentLocked reports whether a change at key affects any
// persistent subtree, in either direction: the key may sit beneath a
// persistent root, or replace an ancestor of one.
func (m *Manager) touchesPersistentLocked(key string) bool {
	for _, p := range m.persistent {
		if isParentKey(p, key) || isParentKey(key, p) {
			return true
		}
	}
	return false
}

// persistentSnapshotLocked rebuilds the snapshot document from the
// current values of all persistent keys.
func (m *Manager) persistentSnapshotLocked() []byte {
	out := []byte("{}")
	for _, key := range m.persistent {
		segs, err := splitKey(key)
		if err != nil {
			continue
		}
		r := gjson.GetBytes(m.doc, getPath(segs))
		if !r.Exists() {
			continue
		}
		next, err := sjson.SetRawBytes(out, setPath(segs), []byte(r.Raw))
		if err != nil {
			m.logger.Error("snapshot key %s: %v", key, err)
			continue
		}
		out = next
	}
	return out
}

func (m *Manager) saveSnapshot(store persist.Store, snapshot []byte) {
	if store == nil {
		return
	}
	if err := store.Save(snapshot); err != nil {
		m.logger.Error("persist state snapshot: %v", err)
	}
}

// insertPersistent adds a canonical key to the persistent set. The
// caller holds the write lock or owns the manager exclusively.
func (m *Manager) insertPersistent(key string) {
	for _, p := range m.persistent {
		if p == key {
			return
		}
	}
	m.persistent = append(m.persistent, key)
	sort.Strings(m.persistent)
}

// notify delivers a change to listeners and the event bus.
func (m *Manager) notify(c Change) {
	for _, fn := range m.listeners.Collect(c.Key) {
		m.invokeListener(fn, c)
	}
	if m.bus == nil {
		return
	}
	ev := events.NewStateChanged(c.Key, c.Old, c.New, c.Type == ChangeClear, c.Tracked)
	if err := m.bus.Emit(context.Background(), ev); err != nil && !errors.Is(err, event.ErrBusClosed) {
		m.logger.Error("emit state change: %v", err)
	}
}

func (m *Manager) invokeListener(fn func(Change), c Change) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("state listener panic on %s: %v", c.Key, r)
		}
	}()
	fn(c)
}

// walkLeaves visits every leaf beneath node. A leaf is any non-object
// value, or an empty object.
func walkLeaves(node gjson.Result, segs []string, visit func(segs []string, value gjson.Result)) {
	if !node.IsObject() {
		if len(segs) > 0 {
			visit(segs, node)
		}
		return
	}
	empty := true
	node.ForEach(func(k, v gjson.Result) bool {
		empty = false
		child := make([]string, len(segs)+1)
		copy(child, segs)
		child[len(segs)] = k.String()
		walkLeaves(v, child, visit)
		return true
	})
	if empty && len(segs) > 0 {
		visit(segs, node)
	}
}

// emptyObject reports whether an object result has no members.
func emptyObject(r gjson.Result) bool {
	empty := true
	r.ForEach(func(_, _ gjson.Result) bool {
		empty = false
		return false
	})
	return empty
}

// decodeAny decodes raw JSON into a generic value.
func decodeAny(raw string) any {
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil
	}
	return v
}

// jsonEqual compares two raw JSON values structurally.
func jsonEqual(a, b string) bool {
	var av, bv any
	if err := json.Unmarshal([]byte(a), &av); err != nil {
		return false
	}
	if err := json.Unmarshal([]byte(b), &bv); err != nil {
		return false
	}
	return reflect.DeepEqual(av, bv)
}
