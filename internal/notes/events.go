// events.go defines the lifecycle notifications the document store emits.
//
// Events are fire-and-forget observations, not approval requests: a handler
// cannot veto a note mutation, it can only react after the fact. The search
// synchronizer subscribes to these to keep the index current.

package notes

import "context"

// EventKind identifies what happened to a note.
type EventKind string

const (
	EventCreated           EventKind = "note:created"
	EventContentChanged    EventKind = "note:content-changed"
	EventDeleted           EventKind = "note:deleted"
	EventUndeleted         EventKind = "note:undeleted"
	EventProtectionChanged EventKind = "note:protection-changed"
	EventTypeChanged       EventKind = "note:type-changed"
)

// Event describes a note lifecycle change. Title and Content carry the new
// values when the emitter has them at hand; Content may be absent for stores
// that only notify, in which case handlers pull it through Source.Content.
type Event struct {
	Kind       EventKind
	NoteID     string
	Title      string
	Type       Type
	MIME       string
	Content    string
	HasContent bool // distinguishes "empty content" from "not included"
	Deleted    bool
	Protected  bool
}

// Handler receives note lifecycle events.
type Handler interface {
	HandleEvent(ctx context.Context, ev Event) error
}
