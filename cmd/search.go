/*
Copyright © 2026 James Lawson (jpl-au) <hello@caelisco.net>
*/

// search.go implements the "notesearch search" command.
//
// Separated per-command like the rest of cmd/. Search is read-only: it
// evaluates a query against the token index and prints matching note IDs
// (or titles with --titles).

package cmd

import (
	"errors"
	"fmt"

	"github.com/jpl-au/notesearch/internal/log"
	"github.com/jpl-au/notesearch/internal/search"
	"github.com/jpl-au/notesearch/internal/service"
	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search <token>...",
	Short: "Search the note index",
	Long: `Search the note index for documents matching every given token.

Operators (via --operator):
  substring   token appears anywhere in the normalized text (default)
  prefix      the normalized text starts with the token
  suffix      the normalized text ends with the token
  fuzzy       token appears in the text or is within edit distance of a word
  exact       token equals one of the note's words
  not-equals  no word in any note equals the token
  regex       token is a regular expression over the raw text

Examples:
  notesearch search weekly report
  notesearch search --operator prefix week
  notesearch search --operator regex '^status:'`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func runSearch(c *cobra.Command, args []string) error {
	opStr, _ := c.Flags().GetString("operator")
	op := search.Operator(opStr)
	deleted, _ := c.Flags().GetBool("deleted")
	protected, _ := c.Flags().GetBool("protected")
	limit, _ := c.Flags().GetInt("limit")
	titles, _ := c.Flags().GetBool("titles")

	ids, err := svc.Search(c.Context(), service.SearchRequest{
		Tokens:           args,
		Operator:         op,
		IncludeDeleted:   deleted,
		IncludeProtected: protected,
		Limit:            limit,
	})

	log.Event("cli:search", "search").
		Operator(string(op)).
		Detail("tokens", args).
		Detail("count", len(ids)).
		Write(err)

	if err != nil {
		if errors.Is(err, search.ErrNotReady) {
			return PrintJSONError(fmt.Errorf("search index not ready (run 'notesearch rebuild')"))
		}
		return PrintJSONError(fmt.Errorf("search: %w", err))
	}

	if JSON() {
		return PrintJSON(map[string]any{"count": len(ids), "note_ids": ids})
	}
	for _, id := range ids {
		if titles {
			if n, err := src.Get(c.Context(), id); err == nil {
				fmt.Fprintf(Out(), "%s  %s\n", id, n.Title)
				continue
			}
		}
		fmt.Fprintln(Out(), id)
	}
	return nil
}

func init() {
	searchCmd.Flags().String("operator", string(search.OpSubstring), "Matching strategy")
	searchCmd.Flags().BoolP("deleted", "D", false, "Include deleted notes")
	searchCmd.Flags().BoolP("protected", "P", false, "Include protected notes (requires an active session)")
	searchCmd.Flags().IntP("limit", "n", 0, "Maximum results (0 uses search.max_results)")
	searchCmd.Flags().BoolP("titles", "t", false, "Print titles alongside note IDs")
	rootCmd.AddCommand(searchCmd)
}
