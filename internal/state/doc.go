// Package state implements the application state manager: a single JSON
// document addressed by dot-path keys, with change tracking, undo/redo,
// observers, and selective persistence.
//
// # Model
//
// The manager owns one JSON object, the state tree. Keys are dot-paths
// such as "wordcount.today"; a flat key is a one-segment path. Setting a
// nested key creates intermediate objects automatically; clearing a key
// prunes ancestors that became empty. A literal dot inside a segment is
// written "\.". All reads decode fresh values, so callers never alias
// internal storage.
//
// # Change tracking
//
// Every tracked mutation appends a Change to a bounded log and pushes an
// undo entry; new mutations clear the redo stack. Undo and Redo apply
// inverse operations untracked: observers and the event bus still hear
// about them (Tracked is false), but no new log or undo entries appear.
//
// # Observers
//
// OnChange registers a callback for every applied change; OnKey scopes
// it to one key and its descendants. Callbacks run synchronously on the
// mutating goroutine and are panic-isolated. When the manager is built
// WithBus, each applied change is also emitted as a state.changed event.
//
// # Persistence
//
// Keys marked persistent are written through a persist.Store. After any
// tracked change touching a persistent subtree the manager rebuilds the
// full snapshot of persistent keys and saves it; LoadPersistent replays
// a stored snapshot as untracked sets at startup.
package state
