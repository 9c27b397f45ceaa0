// Package notes defines the boundary to the document store that owns note
// content. The search core never mutates notes; it reads them through the
// Source interface and reacts to lifecycle Events. A SQLite reference
// implementation is provided so the module is usable standalone and so tests
// can drive the full pipeline.
package notes

import (
	"context"
	"errors"
)

// ErrNotFound indicates the requested note does not exist.
var ErrNotFound = errors.New("note not found")

// Type tags the kind of content a note holds. Only some types carry text
// worth indexing; an image note, for example, never enters the index.
type Type string

const (
	TypeText    Type = "text"
	TypeCode    Type = "code"
	TypeMermaid Type = "mermaid"
	TypeCanvas  Type = "canvas"
	TypeMindMap Type = "mindMap"
	TypeImage   Type = "image"
	TypeFile    Type = "file"
)

// Indexable reports whether notes of this type belong in the search index.
func (t Type) Indexable() bool {
	switch t {
	case TypeText, TypeCode, TypeMermaid, TypeCanvas, TypeMindMap:
		return true
	}
	return false
}

// Note is one document as the owning store sees it.
type Note struct {
	ID         string // opaque identifier
	Title      string
	Type       Type
	MIME       string
	Content    string // raw content; may be empty
	Deleted    bool
	Protected  bool
	ModifiedAt int64 // unix timestamp of last change
}

// Indexable reports whether this note currently satisfies the indexability
// invariant: indexable type, not deleted, not protected.
func (n Note) Indexable() bool {
	return n.Type.Indexable() && !n.Deleted && !n.Protected
}

// Flags carries the per-note visibility state the query evaluator filters on.
type Flags struct {
	Deleted   bool
	Protected bool
}

// Source is the read interface the search core uses to reach note data.
type Source interface {
	// ForEach iterates all notes in batches of batchSize, calling fn for
	// each note. Iteration stops on the first fn error or when ctx is
	// cancelled between batches.
	ForEach(ctx context.Context, batchSize int, fn func(Note) error) error

	// Content returns the current raw content of a note. Used when a
	// lifecycle event does not carry the content inline.
	Content(ctx context.Context, id string) (string, error)

	// Flags returns the deleted/protected state for the given note IDs.
	// IDs that no longer exist are simply absent from the result.
	Flags(ctx context.Context, ids []string) (map[string]Flags, error)

	// CountIndexable returns how many notes currently satisfy the
	// indexability invariant. Used for index coverage reporting.
	CountIndexable(ctx context.Context) (int64, error)
}
