/*
Copyright © 2026 James Lawson (jpl-au) <hello@caelisco.net>
*/

// status.go implements the "notesearch status" command reporting index
// coverage.

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show index coverage",
	Long:  `Shows whether the index is ready, how many notes are indexable, how many are indexed, and the token count.`,
	RunE:  runStatus,
}

func runStatus(c *cobra.Command, _ []string) error {
	st, err := svc.Status(c.Context())
	if err != nil {
		return PrintJSONError(fmt.Errorf("status: %w", err))
	}

	if JSON() {
		return PrintJSON(map[string]any{
			"ready":            st.Ready,
			"document_count":   st.DocumentCount,
			"indexed_count":    st.IndexedCount,
			"token_count":      st.TokenCount,
			"coverage_percent": st.CoveragePercent,
		})
	}

	if !st.Ready {
		fmt.Fprintln(Out(), "Index: not ready (run 'notesearch rebuild')")
		fmt.Fprintf(Out(), "Indexable notes: %d\n", st.DocumentCount)
		return nil
	}
	fmt.Fprintln(Out(), "Index: ready")
	fmt.Fprintf(Out(), "Indexable notes: %d\n", st.DocumentCount)
	fmt.Fprintf(Out(), "Indexed entries: %d (%.1f%%)\n", st.IndexedCount, st.CoveragePercent)
	fmt.Fprintf(Out(), "Tokens:          %d\n", st.TokenCount)
	return nil
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
