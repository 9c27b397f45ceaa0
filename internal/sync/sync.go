// Package sync keeps the search index aligned with the document store.
//
// Each document is either indexed or not. Lifecycle events move it across
// that boundary: creation, undeletion, and unprotection of an indexable
// document upsert its entry; deletion, protection, and conversion to a
// non-indexable type remove it. Content and title changes fully recompute
// the entry rather than patching it.
package sync

import (
	"context"
	"fmt"

	"github.com/jpl-au/notesearch/internal/index"
	"github.com/jpl-au/notesearch/internal/log"
	"github.com/jpl-au/notesearch/internal/notes"
	"github.com/jpl-au/notesearch/internal/sanitize"
)

// DefaultBatchSize bounds memory during full population.
const DefaultBatchSize = 100

// Report summarises a population run.
type Report struct {
	Indexed int64 // documents upserted into the index
	Skipped int64 // non-indexable documents passed over
	Failed  int64 // documents whose indexing failed and was skipped
	Tokens  int64 // total token rows in the index after the run
}

// Syncer applies document lifecycle events to an index store.
type Syncer struct {
	src   notes.Source
	idx   *index.Store
	batch int

	// Progress, when set, is called after each population batch with the
	// number of documents processed so far and the total.
	Progress func(done, total int64)
}

// New constructs a syncer. A non-positive batch size falls back to
// DefaultBatchSize.
func New(src notes.Source, idx *index.Store, batch int) *Syncer {
	if batch <= 0 {
		batch = DefaultBatchSize
	}
	return &Syncer{src: src, idx: idx, batch: batch}
}

// Syncer satisfies notes.Handler so it can be subscribed directly to a
// notes.SQLiteSource.
var _ notes.Handler = (*Syncer)(nil)

// HandleEvent applies one lifecycle event. Events for documents that end up
// non-indexable (wrong type, deleted, protected) remove any existing entry;
// everything else upserts. Storage failures are returned to the caller so
// the document save path can retry; the index is stale until then.
func (s *Syncer) HandleEvent(ctx context.Context, ev notes.Event) error {
	indexable := ev.Type.Indexable() && !ev.Deleted && !ev.Protected

	if !indexable {
		err := s.idx.DeleteEntry(ctx, ev.NoteID)
		if err != nil {
			log.Event("sync:event", "delete").Doc(ev.NoteID).Write(err)
			return fmt.Errorf("remove index entry for %s: %w", ev.NoteID, err)
		}
		return nil
	}

	content := ev.Content
	if !ev.HasContent {
		var err error
		content, err = s.src.Content(ctx, ev.NoteID)
		if err != nil {
			log.Event("sync:event", "index").Doc(ev.NoteID).Write(err)
			return fmt.Errorf("fetch content for %s: %w", ev.NoteID, err)
		}
	}

	clean := sanitize.Clean(content, ev.Type, ev.MIME)
	if err := s.idx.UpsertEntry(ctx, ev.NoteID, ev.Title, clean); err != nil {
		log.Event("sync:event", "index").Doc(ev.NoteID).Write(err)
		return fmt.Errorf("index %s: %w", ev.NoteID, err)
	}
	return nil
}

// Populate walks every document in the source in fixed-size batches and
// upserts each indexable one. Safe to re-run at any time: upserting over an
// existing entry converges to the same state as a fresh build. A failure on
// one document is logged and counted, never fatal to the run. Cancellation
// is honoured between batches.
func (s *Syncer) Populate(ctx context.Context) (Report, error) {
	var rep Report

	total, err := s.src.CountIndexable(ctx)
	if err != nil {
		return rep, fmt.Errorf("count documents: %w", err)
	}

	err = s.src.ForEach(ctx, s.batch, func(n notes.Note) error {
		if !n.Indexable() {
			rep.Skipped++
			return nil
		}

		clean := sanitize.Clean(n.Content, n.Type, n.MIME)
		if err := s.idx.UpsertEntry(ctx, n.ID, n.Title, clean); err != nil {
			rep.Failed++
			log.Event("sync:populate", "index").Doc(n.ID).Write(err)
			return nil
		}
		rep.Indexed++

		if s.Progress != nil && rep.Indexed%int64(s.batch) == 0 {
			s.Progress(rep.Indexed, total)
		}
		return nil
	})
	if err != nil {
		return rep, err
	}

	if s.Progress != nil {
		s.Progress(rep.Indexed, total)
	}

	if _, tokens, err := s.idx.Counts(ctx); err == nil {
		rep.Tokens = tokens
	}
	return rep, nil
}
