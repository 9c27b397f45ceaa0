/*
Copyright © 2026 James Lawson (jpl-au) <hello@caelisco.net>
*/

// init.go implements the "notesearch init" command for repository
// initialisation.
//
// Init is special because it runs before a database exists and creates
// the initial one (notes schema plus search index schema in one file).
//
// Design: Init does NOT create config - that's managed separately via
// "notesearch config". This follows git's model where init creates
// repository structure and config is separate.

package cmd

import (
	"fmt"

	"github.com/jpl-au/notesearch/internal/log"
	"github.com/jpl-au/notesearch/internal/repo"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialise a new notesearch store",
	Long: `Creates a .notesearch/notesearch.db database in the current directory.

Use --db to create additional databases:
  notesearch init --db work    # creates .notesearch/notesearch-work.db

Use --dir to create in a different directory:
  notesearch init --dir /path/to/project

Note: init does not create config. Use "notesearch config" to set up configuration.`,
	RunE: runInit,
}

func runInit(_ *cobra.Command, _ []string) error {
	db, dir := DB(), Dir()

	err := repo.Init(Force(), db, dir)

	log.Event("cli:init", "init").
		Detail("db", db).
		Detail("dir", dir).
		Write(err)

	if err != nil {
		return PrintJSONError(fmt.Errorf("init: %w", err))
	}

	loc := repo.Dir + "/" + repo.DBFileName(db)
	if dir != "" {
		loc = dir + "/" + loc
	}
	if JSON() {
		return PrintJSON(map[string]string{"created": loc})
	}
	fmt.Fprintf(Out(), "Initialised notesearch store in %s\n", loc)
	return nil
}

func init() {
	rootCmd.AddCommand(initCmd)
}
