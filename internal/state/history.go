package state

// undoRedo holds the undo and redo stacks of applied changes. Each
// entry carries enough to invert itself: the old value and whether the
// key existed. The manager's mutex guards all access.
type undoRedo struct {
	limit     int
	undoStack []Change
	redoStack []Change
}

func newUndoRedo(limit int) *undoRedo {
	return &undoRedo{limit: limit}
}

// Push records a new tracked change. Any redoable future is
// invalidated, and the oldest entry is evicted once the stack is full.
// A zero limit disables undo entirely.
func (u *undoRedo) Push(c Change) {
	if u.limit <= 0 {
		return
	}
	u.redoStack = u.redoStack[:0]
	if len(u.undoStack) >= u.limit {
		copy(u.undoStack, u.undoStack[1:])
		u.undoStack = u.undoStack[:len(u.undoStack)-1]
	}
	u.undoStack = append(u.undoStack, c)
}

// PopUndo removes and returns the most recent undoable change.
func (u *undoRedo) PopUndo() (Change, bool) {
	if len(u.undoStack) == 0 {
		return Change{}, false
	}
	c := u.undoStack[len(u.undoStack)-1]
	u.undoStack = u.undoStack[:len(u.undoStack)-1]
	return c, true
}

// PopRedo removes and returns the most recent redoable change.
func (u *undoRedo) PopRedo() (Change, bool) {
	if len(u.redoStack) == 0 {
		return Change{}, false
	}
	c := u.redoStack[len(u.redoStack)-1]
	u.redoStack = u.redoStack[:len(u.redoStack)-1]
	return c, true
}

// PushRedo parks an undone change so Redo can reapply it.
func (u *undoRedo) PushRedo(c Change) {
	u.redoStack = append(u.redoStack, c)
}

// RestoreUndo returns a change to the undo stack without touching the
// redo stack. Used when an inverse application fails and after a
// successful Redo.
func (u *undoRedo) RestoreUndo(c Change) {
	u.undoStack = append(u.undoStack, c)
}

// RestoreRedo returns a change to the redo stack after a failed reapply.
func (u *undoRedo) RestoreRedo(c Change) {
	u.redoStack = append(u.redoStack, c)
}

func (u *undoRedo) CanUndo() bool { return len(u.undoStack) > 0 }
func (u *undoRedo) CanRedo() bool { return len(u.redoStack) > 0 }
func (u *undoRedo) UndoLen() int  { return len(u.undoStack) }
func (u *undoRedo) RedoLen() int  { return len(u.redoStack) }

func (u *undoRedo) Clear() {
	u.undoStack = nil
	u.redoStack = nil
}
