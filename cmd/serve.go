/*
Copyright © 2026 James Lawson (jpl-au) <hello@caelisco.net>
*/

// serve.go implements the "notesearch serve" command for MCP server
// operation.
//
// Unlike other commands that run and exit, serve blocks indefinitely
// handling MCP requests over stdio. It uses the shared service created
// during initialisation; Execute closes it on shutdown.

package cmd

import (
	"github.com/jpl-au/notesearch/internal/mcp"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start MCP server",
	Long: `Start an MCP (Model Context Protocol) server over stdio for LLM integration.

Use --db to serve a specific database:
  notesearch serve --db work    # serve notesearch-work.db`,
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.Serve(svc)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
