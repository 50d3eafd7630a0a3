package state

import "errors"

var (
	// ErrInvalidKey indicates a key that cannot be parsed: empty, an
	// empty segment, or a trailing escape character.
	ErrInvalidKey = errors.New("invalid state key")

	// ErrKeyNotFound indicates a Clear on a key that holds no value.
	ErrKeyNotFound = errors.New("state key not found")

	// ErrNotAnObject indicates a Set whose path crosses an existing
	// non-object value. The conflicting value is never overwritten.
	ErrNotAnObject = errors.New("intermediate key is not an object")

	// ErrValueNotSerializable indicates a value that cannot be encoded
	// as JSON, such as a channel or a function.
	ErrValueNotSerializable = errors.New("value is not serializable")

	// ErrNothingToUndo indicates Undo was called with an empty undo
	// stack.
	ErrNothingToUndo = errors.New("nothing to undo")

	// ErrNothingToRedo indicates Redo was called with an empty redo
	// stack.
	ErrNothingToRedo = errors.New("nothing to redo")

	// ErrInvalidSnapshot indicates a persisted snapshot that is not a
	// JSON object.
	ErrInvalidSnapshot = errors.New("invalid state snapshot")
)
