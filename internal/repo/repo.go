// Package repo provides repository initialisation and discovery for notesearch.
//
// A notesearch repository is a .notesearch directory containing one or more
// SQLite databases. Each database holds the notes table plus the derived
// search index tables, so a single file is a complete self-contained store.
// This package handles:
//   - Initialising new repositories (creating .notesearch/ and the database)
//   - Discovering existing repositories by walking up the directory tree
//   - Managing multiple named databases (notesearch.db, notesearch-work.db, etc.)
//
// The discovery algorithm mirrors git's approach: starting from the current
// directory, walk up until a .notesearch directory containing the target
// database is found, or the filesystem root is reached.
package repo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jpl-au/notesearch/internal/index"
	"github.com/jpl-au/notesearch/internal/notes"
)

const (
	// Dir is the directory name for the notesearch repository.
	Dir = ".notesearch"
	// DBFile is the default database filename.
	DBFile = "notesearch.db"
)

// DBFileName returns the database filename for a given name.
// Empty name returns the default "notesearch.db".
// A name like "work" returns "notesearch-work.db".
// A name already ending in ".db" is returned as-is.
func DBFileName(name string) string {
	if name == "" {
		return DBFile
	}
	if strings.HasSuffix(name, ".db") {
		return name
	}
	return "notesearch-" + name + ".db"
}

// ErrNotInitialised is returned when no notesearch repository is found.
var ErrNotInitialised = errors.New("notesearch not initialised (run 'notesearch init')")

// Init initialises a new notesearch repository.
//
// Creates the .notesearch directory, the notes schema and the search index
// schema in one database file. Config is a separate concern managed via
// "notesearch config", following the git model where init only creates the
// repository structure.
//
// Parameters:
//   - force: reinitialise an existing database
//   - db: database name (empty for default "notesearch.db")
//   - dir: target directory (empty for current directory)
func Init(force bool, db string, dir string) error {
	if dir == "" {
		dir = "."
	}
	repoDir := filepath.Join(dir, Dir)
	dbPath := filepath.Join(repoDir, DBFileName(db))

	if _, err := os.Stat(dbPath); err == nil {
		if !force {
			return fmt.Errorf("database %s already exists (use --force to reinitialise)", DBFileName(db))
		}
		if err := os.Remove(dbPath); err != nil {
			return fmt.Errorf("remove database: %w", err)
		}
	}

	if err := os.MkdirAll(repoDir, 0755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	// Notes schema first, index schema in the same file. OpenSQLite creates
	// the notes table as a side effect of opening.
	src, err := notes.OpenSQLite(dbPath)
	if err != nil {
		return fmt.Errorf("open notes store: %w", err)
	}
	defer src.Close()

	idx, err := index.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open index store: %w", err)
	}
	defer idx.Close()

	if err := idx.Init(); err != nil {
		return fmt.Errorf("init index schema: %w", err)
	}

	return nil
}

// Discover walks up the directory tree looking for a .notesearch database.
// The db parameter specifies which database to find (empty for default).
// Returns the full path to the database if found.
func Discover(db string) (string, error) {
	dbFile := DBFileName(db)
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}

	for {
		dbPath := filepath.Join(dir, Dir, dbFile)
		if _, err := os.Stat(dbPath); err == nil {
			return dbPath, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrNotInitialised
		}
		dir = parent
	}
}

// DiscoverDir finds the .notesearch directory, walking up the tree.
// Returns the full path to the .notesearch directory.
func DiscoverDir() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}

	for {
		repoDir := filepath.Join(dir, Dir)
		if info, err := os.Stat(repoDir); err == nil && info.IsDir() {
			return repoDir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrNotInitialised
		}
		dir = parent
	}
}

// DBInfo holds database metadata.
type DBInfo struct {
	Name string // Short name (empty for default, "work" for notesearch-work.db)
	File string // Filename (notesearch.db, notesearch-work.db)
	Path string // Full path
}

// ListDBs returns all databases in the .notesearch directory.
// If dir is empty, discovers the .notesearch directory from the current
// working directory.
func ListDBs(dir string) ([]DBInfo, error) {
	if dir == "" {
		var err error
		dir, err = DiscoverDir()
		if err != nil {
			return nil, fmt.Errorf("discover .notesearch directory: %w", err)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read .notesearch directory: %w", err)
	}

	var dbs []DBInfo
	for _, e := range entries {
		if !strings.HasSuffix(e.Name(), ".db") {
			continue
		}

		name := ""
		if e.Name() == DBFile {
			name = ""
		} else if strings.HasPrefix(e.Name(), "notesearch-") {
			name = strings.TrimSuffix(strings.TrimPrefix(e.Name(), "notesearch-"), ".db")
		} else {
			continue // Not a notesearch database
		}

		dbs = append(dbs, DBInfo{
			Name: name,
			File: e.Name(),
			Path: filepath.Join(dir, e.Name()),
		})
	}

	return dbs, nil
}
