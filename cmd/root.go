/*
Copyright © 2026 James Lawson (jpl-au) <hello@caelisco.net>
*/

// root.go defines the root command and CLI execution entry point.
//
// Separated from init_service.go to isolate cobra setup from service
// initialisation logic.
//
// Design: PersistentPreRunE handles store initialisation lazily - only
// commands that need the store trigger service creation. This enables
// bootstrap commands (init, config, version) to work without a database
// existing. The noStoreCommands map controls which commands skip
// initialisation.

package cmd

import (
	"fmt"
	"os"
	"slices"

	"github.com/jpl-au/notesearch/internal/log"
	"github.com/spf13/cobra"
)

// noStoreCommands lists commands that bypass automatic store initialisation.
// These either create the database (init), read only filesystem state
// (config, db, version) or print static text (help, completion).
var noStoreCommands = map[string]bool{
	"init":       true,
	"config":     true,
	"db":         true,
	"version":    true,
	"help":       true,
	"completion": true,
}

var rootCmd = &cobra.Command{
	Use:   "notesearch",
	Short: "Full-text note search with a tokenized SQLite index",
	Long:  `An embedded full-text search engine for notes: normalized token index over SQLite, seven match operators (substring, prefix, suffix, fuzzy, exact, not-equals, regex), event-driven index maintenance, and MCP integration.`,
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if output != "" && !slices.Contains(validOutputFormats, output) {
			return fmt.Errorf("invalid output format: %s (valid: %v)", output, validOutputFormats)
		}

		if !noStoreCommands[topLevelCmdName(cmd)] {
			if err := initService(); err != nil {
				if JSON() {
					_ = PrintJSON(map[string]string{"error": err.Error()})
					cmd.SilenceErrors = true
					cmd.SilenceUsage = true
				}
				return fmt.Errorf("initialise service: %w", err)
			}
		}

		return nil
	},
}

// topLevelCmdName returns the name of the top-level command (direct child of root).
// For "notesearch note add 'Title'", returns "note".
func topLevelCmdName(cmd *cobra.Command) string {
	// Walk up until we find a command whose parent has no parent (the root)
	for cmd.HasParent() && cmd.Parent().HasParent() {
		cmd = cmd.Parent()
	}
	return cmd.Name()
}

// Execute runs the root command and handles process lifecycle.
// Opens audit logging, executes the command, and ensures proper cleanup
// of the service before exit. Exit code 1 indicates error.
func Execute() {
	// Initialise audit logger (warn if it fails, but continue)
	if err := log.Open(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: audit log unavailable: %v\n", err)
	}
	defer log.Close()

	err := rootCmd.Execute()

	closeService()

	if err != nil {
		os.Exit(1)
	}
}

// RootCmd returns the root command for testing.
func RootCmd() *cobra.Command {
	return rootCmd
}
