package events

import "github.com/inkwright/inkwright/internal/event"

// Project event kinds.
const (
	// KindProjectOpened is emitted when a project is loaded.
	KindProjectOpened event.Kind = "project.opened"

	// KindProjectClosed is emitted when the current project is closed.
	KindProjectClosed event.Kind = "project.closed"

	// KindProjectCompiled is emitted after a manuscript compile finishes.
	KindProjectCompiled event.Kind = "project.compiled"
)

// ProjectOpened is the payload of KindProjectOpened.
type ProjectOpened struct {
	// Name is the project display name.
	Name string `json:"name"`

	// Root is the project directory.
	Root string `json:"root"`
}

// ProjectClosed is the payload of KindProjectClosed.
type ProjectClosed struct {
	Name string `json:"name"`
}

// ProjectCompiled is the payload of KindProjectCompiled.
type ProjectCompiled struct {
	Name string `json:"name"`

	// Output is the path of the compiled manuscript.
	Output string `json:"output"`

	// Documents is the number of documents included.
	Documents int `json:"documents"`

	// WordCount is the total word count of the compile.
	WordCount int `json:"word_count"`
}

// NewProjectOpened builds a KindProjectOpened event.
func NewProjectOpened(name, root string) event.Event {
	return event.New(KindProjectOpened,
		ProjectOpened{Name: name, Root: root},
		event.WithCategory(event.CategoryProject),
	)
}

// NewProjectClosed builds a KindProjectClosed event.
func NewProjectClosed(name string) event.Event {
	return event.New(KindProjectClosed,
		ProjectClosed{Name: name},
		event.WithCategory(event.CategoryProject),
	)
}

// NewProjectCompiled builds a KindProjectCompiled event.
func NewProjectCompiled(name, output string, documents, wordCount int) event.Event {
	return event.New(KindProjectCompiled,
		ProjectCompiled{Name: name, Output: output, Documents: documents, WordCount: wordCount},
		event.WithCategory(event.CategoryProject),
	)
}
