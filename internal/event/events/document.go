package events

import "github.com/inkwright/inkwright/internal/event"

// Document event kinds.
const (
	// KindDocumentOpened is emitted when a document becomes available for editing.
	KindDocumentOpened event.Kind = "document.opened"

	// KindDocumentSaved is emitted after a document has been written out.
	KindDocumentSaved event.Kind = "document.saved"

	// KindDocumentClosed is emitted when a document is removed from the session.
	KindDocumentClosed event.Kind = "document.closed"

	// KindDocumentEdited is emitted after the content of a document changes.
	KindDocumentEdited event.Kind = "document.edited"
)

// DocumentOpened is the payload of KindDocumentOpened.
type DocumentOpened struct {
	// ID identifies the document within the session.
	ID string `json:"id"`

	// Path is the filesystem location, empty for unsaved documents.
	Path string `json:"path"`
}

// DocumentSaved is the payload of KindDocumentSaved.
type DocumentSaved struct {
	ID   string `json:"id"`
	Path string `json:"path"`

	// WordCount is the word total at save time.
	WordCount int `json:"word_count"`
}

// DocumentClosed is the payload of KindDocumentClosed.
type DocumentClosed struct {
	ID string `json:"id"`
}

// DocumentEdited is the payload of KindDocumentEdited.
type DocumentEdited struct {
	ID string `json:"id"`

	// WordCount is the word total after the edit.
	WordCount int `json:"word_count"`

	// Delta is the change in word count caused by the edit.
	Delta int `json:"delta"`
}

// NewDocumentOpened builds a KindDocumentOpened event.
func NewDocumentOpened(id, path string) event.Event {
	return event.New(KindDocumentOpened,
		DocumentOpened{ID: id, Path: path},
		event.WithCategory(event.CategoryDocument),
	)
}

// NewDocumentSaved builds a KindDocumentSaved event.
func NewDocumentSaved(id, path string, wordCount int) event.Event {
	return event.New(KindDocumentSaved,
		DocumentSaved{ID: id, Path: path, WordCount: wordCount},
		event.WithCategory(event.CategoryDocument),
	)
}

// NewDocumentClosed builds a KindDocumentClosed event.
func NewDocumentClosed(id string) event.Event {
	return event.New(KindDocumentClosed,
		DocumentClosed{ID: id},
		event.WithCategory(event.CategoryDocument),
	)
}

// NewDocumentEdited builds a KindDocumentEdited event.
func NewDocumentEdited(id string, wordCount, delta int) event.Event {
	return event.New(KindDocumentEdited,
		DocumentEdited{ID: id, WordCount: wordCount, Delta: delta},
		event.WithCategory(event.CategoryDocument),
	)
}
