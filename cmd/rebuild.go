/*
Copyright © 2026 James Lawson (jpl-au) <hello@caelisco.net>
*/

// rebuild.go implements the "notesearch rebuild" command.
//
// Rebuild creates the index schema if missing and repopulates it from the
// note store. With --force the existing entries are cleared first, which
// recovers from corruption and picks up tokenizer changes.

package cmd

import (
	"fmt"

	"github.com/jpl-au/notesearch/internal/log"
	"github.com/jpl-au/notesearch/internal/progress"
	"github.com/jpl-au/notesearch/internal/service"
	"github.com/spf13/cobra"
)

var rebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Rebuild the search index from the note store",
	Long: `Rebuild the search index from the note store.

Creates the index schema if it doesn't exist and indexes every indexable
note. Use --force to clear existing index entries first:

  notesearch rebuild           # fill in missing entries
  notesearch rebuild --force   # full rebuild from scratch`,
	RunE: runRebuild,
}

func runRebuild(c *cobra.Command, _ []string) error {
	prog := progress.New("Indexing", 0)
	if syncer := service.Syncer(svc); syncer != nil && !JSON() {
		syncer.Progress = prog.Update
	}

	rep, err := svc.RebuildIndex(c.Context(), Force())
	prog.Done()

	log.Event("cli:rebuild", "rebuild").
		Detail("force", Force()).
		Detail("indexed", rep.Indexed).
		Detail("failed", rep.Failed).
		Write(err)

	if err != nil {
		return PrintJSONError(fmt.Errorf("rebuild: %w", err))
	}

	if JSON() {
		return PrintJSON(map[string]any{
			"indexed": rep.Indexed,
			"skipped": rep.Skipped,
			"failed":  rep.Failed,
			"tokens":  rep.Tokens,
		})
	}
	fmt.Fprintf(Out(), "Indexed %d notes (%d skipped, %d failed, %d tokens)\n",
		rep.Indexed, rep.Skipped, rep.Failed, rep.Tokens)
	return nil
}

func init() {
	rootCmd.AddCommand(rebuildCmd)
}
