// Package log provides centralised audit logging for notesearch operations.
// Logs are stored in ~/.notesearch/log/notesearch-log.db and track index
// mutations, rebuilds, and search requests across stores.
//
// # Fluent API
//
// Use the fluent builder API to construct and write log entries:
//
//	log.Event("sync:upsert", "index").
//		Doc(noteID).
//		Write(err)
//
//	log.Event("search:query", "search").
//		Operator("fuzzy").
//		Detail("tokens", tokens).
//		Detail("count", len(results)).
//		Write(err)
//
// The source parameter follows the format "{component}:{operation}" for
// internal components or "mcp:{tool}" for MCP tools. Examples:
// "sync:upsert", "search:query", "mcp:notesearch_search".
package log

import (
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

var (
	global *Logger
	mu     sync.Mutex
)

// Entry represents a single log entry.
type Entry struct {
	Source   string // e.g., "sync:upsert", "mcp:notesearch_search"
	Action   string // verb: index, delete, search, rebuild, status
	Doc      string // note id this operation affects, if any
	Operator string // search operator for query entries

	// Timing
	Start int64 // unix timestamp when Event() called
	End   int64 // unix timestamp when Write() called

	Success bool           // whether operation succeeded
	Error   string         // error message if failed
	Detail  map[string]any // additional operation-specific data
}

// Builder constructs a log entry using a fluent API.
// Create with [Event], chain methods to set fields, then call [Builder.Write]
// to write the entry.
type Builder struct {
	entry Entry
}

// Event creates a new log entry builder for an operation.
//
// The source identifies where the operation originated:
//   - internal components: "{component}:{operation}" (e.g., "sync:upsert", "search:query")
//   - CLI commands: "cli:{command}" (e.g., "cli:rebuild")
//   - MCP tools: "mcp:{tool}" (e.g., "mcp:notesearch_search")
//
// The action describes what operation was performed:
//   - "index", "delete", "search", "rebuild", "status", etc.
//
// Example:
//
//	log.Event("sync:upsert", "index").
//		Doc(noteID).
//		Write(err)
func Event(source, action string) *Builder {
	return &Builder{
		entry: Entry{
			Source: source,
			Action: action,
			Start:  time.Now().Unix(),
		},
	}
}

// Doc sets the note id this operation affects.
//
// Use for operations that target a specific note. Leave unset for
// operations that span the whole index (rebuild, status).
//
// Example:
//
//	log.Event("sync:delete", "delete").Doc(noteID)
func (b *Builder) Doc(id string) *Builder {
	b.entry.Doc = id
	return b
}

// Operator sets the search operator for query entries.
//
// Example:
//
//	log.Event("search:query", "search").Operator("fuzzy")
func (b *Builder) Operator(op string) *Builder {
	b.entry.Operator = op
	return b
}

// Detail adds a key-value pair to the log entry's detail map.
//
// Use for operation-specific data that doesn't fit standard fields:
// search tokens, result counts, batch sizes, etc.
// Can be called multiple times to add multiple details.
//
// Example:
//
//	log.Event("search:query", "search").
//		Detail("tokens", tokens).
//		Detail("count", len(results))
func (b *Builder) Detail(key string, value any) *Builder {
	if b.entry.Detail == nil {
		b.entry.Detail = make(map[string]any)
	}
	b.entry.Detail[key] = value
	return b
}

// Write writes the log entry to the database, deriving success/failure from err.
//
// If err is nil, the entry is logged as successful.
// If err is non-nil, the entry is logged as failed with the error message.
//
// This is the standard way to complete a log entry after an operation.
//
// Example:
//
//	results, err := svc.Search(ctx, op, query, opts)
//	log.Event("search:query", "search").Operator(string(op)).Write(err)
//	if err != nil {
//		return err
//	}
func (b *Builder) Write(err error) {
	b.entry.End = time.Now().Unix()
	b.entry.Success = err == nil
	if err != nil {
		b.entry.Error = err.Error()
	}
	Log(b.entry)
}

// Open initialises the global logger. Safe to call multiple times.
// Errors are returned but callers may choose to ignore them (best-effort logging).
func Open() error {
	mu.Lock()
	defer mu.Unlock()

	if global != nil {
		return nil
	}

	p := dbPath()
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		return err
	}

	db, err := sql.Open("sqlite", p)
	if err != nil {
		return err
	}

	if err := migrate(db); err != nil {
		db.Close()
		return err
	}

	global = &Logger{db: db}
	return nil
}

// SetStore sets the store identifier for subsequent log entries.
// The path should be the absolute path to the index database.
func SetStore(path string) {
	mu.Lock()
	defer mu.Unlock()
	if global != nil {
		global.store = hash(path)
	}
}

// Log writes an entry. Safe to call if logger not initialised (no-op).
func Log(e Entry) {
	mu.Lock()
	l := global
	mu.Unlock()

	if l == nil {
		return
	}
	l.log(e)
}

// Close closes the global logger.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	if global != nil {
		global.db.Close()
		global = nil
	}
}
