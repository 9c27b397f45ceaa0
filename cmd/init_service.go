/*
Copyright © 2026 James Lawson (jpl-au) <hello@caelisco.net>
*/

// init_service.go handles lazy creation of the shared search service.
//
// Separated from root.go to isolate the initialisation logic that discovers
// the database, loads config, and wires the note store to the search index.
//
// Design: The service is created once per process and shared across all
// commands. sync.Once guarantees exactly one initialisation even if multiple
// commands somehow trigger it. The syncer is subscribed to the note store so
// note mutations made through the CLI update the index in the same process.

package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/jpl-au/notesearch/internal/config"
	"github.com/jpl-au/notesearch/internal/index"
	"github.com/jpl-au/notesearch/internal/log"
	"github.com/jpl-au/notesearch/internal/notes"
	"github.com/jpl-au/notesearch/internal/repo"
	"github.com/jpl-au/notesearch/internal/search"
	"github.com/jpl-au/notesearch/internal/service"
)

var (
	svc      service.Service
	src      *notes.SQLiteSource
	initOnce sync.Once
	initErr  error
)

// dbFilePath resolves the database file for this invocation.
// Name priority: --db flag > NOTESEARCH_DB env > db config key > default.
// --dir skips discovery and uses the explicit directory; otherwise the
// repository is discovered by walking up from the working directory.
func dbFilePath(cfg *config.Config) (string, error) {
	name := DB()
	if name == "" {
		name = cfg.DB
	}
	if d := Dir(); d != "" {
		return filepath.Join(d, repo.Dir, repo.DBFileName(name)), nil
	}
	return repo.Discover(name)
}

// initService opens the database and wires up the shared service.
//
// The notes store and the index store are two connections to the same file;
// WAL mode makes that safe. The syncer subscription means "note add" and
// "note rm" keep the index current without an explicit rebuild.
func initService() error {
	initOnce.Do(func() {
		cfg, err := config.Load()
		if err != nil {
			initErr = err
			return
		}

		path, err := dbFilePath(cfg)
		if err != nil {
			initErr = err
			return
		}

		src, err = notes.OpenSQLite(path)
		if err != nil {
			initErr = fmt.Errorf("opening notes store: %w", err)
			return
		}

		idx, err := index.Open(path)
		if err != nil {
			src.Close()
			src = nil
			initErr = fmt.Errorf("opening index store: %w", err)
			return
		}

		// Scope audit log entries to this database
		log.SetStore(path)

		svc = service.New(src, idx, service.Options{
			SearchConfig: search.Config{
				MaxDistance:    cfg.FuzzyMaxDistance(),
				MinTokenLength: cfg.FuzzyMinTokenLength(),
			},
			BatchSize:  cfg.BatchSize(),
			MaxResults: cfg.MaxResults(),
		})
		src.Subscribe(service.Syncer(svc))
	})
	return initErr
}

// closeService releases the service and the note store if they were created.
// Called once from Execute after the command finishes.
func closeService() {
	if svc != nil {
		if err := svc.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: closing service: %v\n", err)
		}
	}
	if src != nil {
		if err := src.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: closing notes store: %v\n", err)
		}
	}
}

// Service returns the shared service for testing.
func Service() service.Service { return svc }
