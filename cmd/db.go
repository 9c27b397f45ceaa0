/*
Copyright © 2026 James Lawson (jpl-au) <hello@caelisco.net>
*/

// db.go implements the "notesearch db" command for listing databases.

package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/jpl-au/notesearch/internal/repo"
	"github.com/spf13/cobra"
)

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "List databases in the repository",
	Long: `List all databases in the discovered .notesearch directory.

The default database is notesearch.db; named databases created with
"notesearch init --db <name>" appear as notesearch-<name>.db.`,
	RunE: runDB,
}

func runDB(_ *cobra.Command, _ []string) error {
	repoDir := ""
	if d := Dir(); d != "" {
		repoDir = filepath.Join(d, repo.Dir)
	}
	dbs, err := repo.ListDBs(repoDir)
	if err != nil {
		return PrintJSONError(err)
	}

	if JSON() {
		return PrintJSON(dbs)
	}
	for _, d := range dbs {
		name := d.Name
		if name == "" {
			name = "(default)"
		}
		fmt.Fprintf(Out(), "%-12s %s\n", name, d.File)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(dbCmd)
}
