// sqlite.go provides the reference SQLite-backed note store.
//
// This is the only file in the package that touches the database driver. The
// search core proper depends on the Source interface, not on this type; the
// CLI and the tests use SQLiteSource so the module works end to end without
// an external host application.
//
// Design: mutations notify the registered event handler synchronously after
// the row is committed. Handler errors are reported to the caller's audit
// trail but never fail the note write - index staleness is acceptable,
// losing a note write is not.

package notes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SQLiteSource stores notes in a SQLite database and implements Source.
type SQLiteSource struct {
	db      *sql.DB
	handler Handler
}

var _ Source = (*SQLiteSource)(nil)

// OpenSQLite opens (creating if needed) the notes database at path. The
// pragma configuration mirrors the index store: WAL for concurrent readers,
// NORMAL synchronous since WAL provides the durability guarantee.
func OpenSQLite(path string) (*SQLiteSource, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open notes database %s: %w", path, err)
	}

	for _, pragma := range []string{
		`PRAGMA journal_mode=WAL`,
		`PRAGMA busy_timeout=5000`,
		`PRAGMA synchronous=NORMAL`,
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("configure notes database: %w", err)
		}
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS notes (
			note_id     TEXT PRIMARY KEY,
			title       TEXT NOT NULL,
			type        TEXT NOT NULL,
			mime        TEXT NOT NULL DEFAULT '',
			content     TEXT,
			deleted     INTEGER NOT NULL DEFAULT 0,
			protected   INTEGER NOT NULL DEFAULT 0,
			modified_at INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_notes_type ON notes(type);
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("init notes schema: %w", err)
	}

	return &SQLiteSource{db: db}, nil
}

// Close releases the database connection.
func (s *SQLiteSource) Close() error {
	return s.db.Close()
}

// Subscribe registers the handler that receives lifecycle events. Only one
// handler is supported; the host's synchronizer is the intended subscriber.
func (s *SQLiteSource) Subscribe(h Handler) {
	s.handler = h
}

// notify delivers an event to the subscriber, best-effort.
func (s *SQLiteSource) notify(ctx context.Context, ev Event) {
	if s.handler == nil {
		return
	}
	if err := s.handler.HandleEvent(ctx, ev); err != nil {
		// The note write already succeeded; a failed index update only
		// means the index is stale until the next rebuild.
		fmt.Fprintf(os.Stderr, "notesearch: index update for note %s failed: %v\n", ev.NoteID, err)
	}
}

// Create inserts a new note and returns its generated ID.
func (s *SQLiteSource) Create(ctx context.Context, title string, typ Type, mime, content string) (string, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notes (note_id, title, type, mime, content, modified_at)
		VALUES (?, ?, ?, ?, ?, unixepoch())`,
		id, title, string(typ), mime, content)
	if err != nil {
		return "", fmt.Errorf("create note: %w", err)
	}

	s.notify(ctx, Event{
		Kind: EventCreated, NoteID: id, Title: title, Type: typ, MIME: mime,
		Content: content, HasContent: true,
	})
	return id, nil
}

// Update replaces a note's title and content.
func (s *SQLiteSource) Update(ctx context.Context, id, title, content string) error {
	n, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE notes SET title = ?, content = ?, modified_at = unixepoch()
		WHERE note_id = ?`, title, content, id)
	if err != nil {
		return fmt.Errorf("update note %s: %w", id, err)
	}

	s.notify(ctx, Event{
		Kind: EventContentChanged, NoteID: id, Title: title, Type: n.Type,
		MIME: n.MIME, Content: content, HasContent: true,
		Deleted: n.Deleted, Protected: n.Protected,
	})
	return nil
}

// SetDeleted soft-deletes or undeletes a note.
func (s *SQLiteSource) SetDeleted(ctx context.Context, id string, deleted bool) error {
	n, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE notes SET deleted = ?, modified_at = unixepoch()
		WHERE note_id = ?`, boolToInt(deleted), id)
	if err != nil {
		return fmt.Errorf("set deleted on note %s: %w", id, err)
	}

	kind := EventUndeleted
	if deleted {
		kind = EventDeleted
	}
	s.notify(ctx, Event{
		Kind: kind, NoteID: id, Title: n.Title, Type: n.Type, MIME: n.MIME,
		Deleted: deleted, Protected: n.Protected,
	})
	return nil
}

// SetProtected toggles the protection flag. Protected note content is owned
// by the encryption subsystem; this store only tracks the flag.
func (s *SQLiteSource) SetProtected(ctx context.Context, id string, protected bool) error {
	n, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE notes SET protected = ?, modified_at = unixepoch()
		WHERE note_id = ?`, boolToInt(protected), id)
	if err != nil {
		return fmt.Errorf("set protected on note %s: %w", id, err)
	}

	s.notify(ctx, Event{
		Kind: EventProtectionChanged, NoteID: id, Title: n.Title, Type: n.Type,
		MIME: n.MIME, Deleted: n.Deleted, Protected: protected,
	})
	return nil
}

// SetType changes a note's type tag. Crossing the indexable boundary is the
// synchronizer's concern; the store just reports the new state.
func (s *SQLiteSource) SetType(ctx context.Context, id string, typ Type, mime string) error {
	n, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE notes SET type = ?, mime = ?, modified_at = unixepoch()
		WHERE note_id = ?`, string(typ), mime, id)
	if err != nil {
		return fmt.Errorf("set type on note %s: %w", id, err)
	}

	s.notify(ctx, Event{
		Kind: EventTypeChanged, NoteID: id, Title: n.Title, Type: typ,
		MIME: mime, Deleted: n.Deleted, Protected: n.Protected,
	})
	return nil
}

// Get returns a note by ID, including deleted and protected notes.
func (s *SQLiteSource) Get(ctx context.Context, id string) (*Note, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT note_id, title, type, mime, COALESCE(content, ''), deleted, protected, modified_at
		FROM notes WHERE note_id = ?`, id)

	n, err := scanNote(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get note %s: %w", id, err)
	}
	return &n, nil
}

// ForEach implements Source. Notes are read in note_id order in fixed-size
// batches so a long population run holds no long-lived cursor and can be
// cancelled between batches.
func (s *SQLiteSource) ForEach(ctx context.Context, batchSize int, fn func(Note) error) error {
	if batchSize <= 0 {
		batchSize = 100
	}

	after := ""
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		batch, err := s.listAfter(ctx, after, batchSize)
		if err != nil {
			return err
		}
		if len(batch) == 0 {
			return nil
		}

		for _, n := range batch {
			if err := fn(n); err != nil {
				return err
			}
		}
		after = batch[len(batch)-1].ID
	}
}

func (s *SQLiteSource) listAfter(ctx context.Context, after string, limit int) ([]Note, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT note_id, title, type, mime, COALESCE(content, ''), deleted, protected, modified_at
		FROM notes WHERE note_id > ? ORDER BY note_id LIMIT ?`, after, limit)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	defer rows.Close()

	var out []Note
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// Content implements Source.
func (s *SQLiteSource) Content(ctx context.Context, id string) (string, error) {
	var content string
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(content, '') FROM notes WHERE note_id = ?`, id).Scan(&content)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("read content of note %s: %w", id, err)
	}
	return content, nil
}

// Flags implements Source. Missing IDs are absent from the result map.
func (s *SQLiteSource) Flags(ctx context.Context, ids []string) (map[string]Flags, error) {
	out := make(map[string]Flags, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	// Chunked IN queries keep us under SQLite's bound-parameter limit.
	const chunk = 500
	for start := 0; start < len(ids); start += chunk {
		end := min(start+chunk, len(ids))
		part := ids[start:end]

		query := `SELECT note_id, deleted, protected FROM notes WHERE note_id IN (?` +
			repeatPlaceholder(len(part)-1) + `)`
		args := make([]any, len(part))
		for i, id := range part {
			args[i] = id
		}

		rows, err := s.db.QueryContext(ctx, query, args...)
		if err != nil {
			return nil, fmt.Errorf("read note flags: %w", err)
		}
		for rows.Next() {
			var id string
			var deleted, protected int
			if err := rows.Scan(&id, &deleted, &protected); err != nil {
				rows.Close()
				return nil, fmt.Errorf("scan note flags: %w", err)
			}
			out[id] = Flags{Deleted: deleted != 0, Protected: protected != 0}
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, err
		}
		rows.Close()
	}
	return out, nil
}

// CountIndexable implements Source.
func (s *SQLiteSource) CountIndexable(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM notes
		WHERE deleted = 0 AND protected = 0
			AND type IN ('text', 'code', 'mermaid', 'canvas', 'mindMap')`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count indexable notes: %w", err)
	}
	return count, nil
}

// scanner abstracts sql.Row and sql.Rows so one scan function serves both.
type scanner interface {
	Scan(dest ...any) error
}

func scanNote(sc scanner) (Note, error) {
	var n Note
	var typ string
	var deleted, protected int
	err := sc.Scan(&n.ID, &n.Title, &typ, &n.MIME, &n.Content, &deleted, &protected, &n.ModifiedAt)
	if err != nil {
		return n, err
	}
	n.Type = Type(typ)
	n.Deleted = deleted != 0
	n.Protected = protected != 0
	return n, nil
}

func repeatPlaceholder(n int) string {
	if n <= 0 {
		return ""
	}
	b := make([]byte, 0, n*2)
	for range n {
		b = append(b, ',', '?')
	}
	return string(b)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
