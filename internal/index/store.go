// Package index implements the durable search index: a content table holding
// raw and normalized note text, and a token table holding the word-level
// occurrences the exact and fuzzy operators work from.
//
// The store holds derived data only. Every row can be regenerated from the
// owning note, so mutations favour the simple delete-and-reinsert path over
// incremental patching; per-note atomicity is what matters to readers.
package index

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"sort"

	_ "modernc.org/sqlite"
)

//go:embed sql/*.sql
var schemas embed.FS

// ErrNotFound indicates no index entry exists for the requested note.
var ErrNotFound = errors.New("index entry not found")

// Entry is the indexed representation of one note.
type Entry struct {
	DocID        string
	Title        string // raw title
	Content      string // raw content, post-sanitization
	TitleNorm    string
	ContentNorm  string
	FullTextNorm string // TitleNorm + " " + ContentNorm
}

// Store provides access to the search index tables.
type Store struct {
	db *sql.DB
}

// Open opens the index database at path with the WAL configuration used
// across the project: concurrent readers during writes, 5s busy timeout,
// NORMAL synchronous (WAL provides the durability guarantee).
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open index database %s: %w", path, err)
	}

	for _, pragma := range []string{
		`PRAGMA journal_mode=WAL`,
		`PRAGMA busy_timeout=5000`,
		`PRAGMA synchronous=NORMAL`,
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("configure index database: %w", err)
		}
	}

	return &Store{db: db}, nil
}

// Init creates the index tables and indexes if they don't exist. Safe to
// call multiple times.
func (s *Store) Init() error {
	entries, err := fs.ReadDir(schemas, "sql")
	if err != nil {
		return fmt.Errorf("read schema directory: %w", err)
	}

	// Numeric prefixes define execution order; sort to be explicit.
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		data, err := schemas.ReadFile("sql/" + entry.Name())
		if err != nil {
			return fmt.Errorf("read %s: %w", entry.Name(), err)
		}
		if _, err := s.db.Exec(string(data)); err != nil {
			return fmt.Errorf("exec %s: %w", entry.Name(), err)
		}
	}
	return nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB exposes the underlying connection for hosts that co-locate their own
// tables in the same database file.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Ready reports whether the index tables exist. A fresh database that has
// never run Init is not ready; the evaluator degrades to "no results, use
// fallback" rather than erroring.
func (s *Store) Ready(ctx context.Context) bool {
	var name string
	err := s.db.QueryRowContext(ctx, `
		SELECT name FROM sqlite_master
		WHERE type = 'table' AND name = 'search_content'`).Scan(&name)
	return err == nil
}

// Tx executes fn within a transaction, committing on nil and rolling back on
// error or panic. Per-note index mutations go through this so readers never
// observe an entry without its tokens.
func (s *Store) Tx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }() // no-op after commit

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
