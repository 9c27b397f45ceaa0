// Package mcp implements the Model Context Protocol server, exposing
// notesearch operations to LLMs. This enables AI assistants to query the
// search index through a standardised protocol.
package mcp

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/jpl-au/notesearch/internal/log"
	"github.com/jpl-au/notesearch/internal/search"
	"github.com/jpl-au/notesearch/internal/service"
)

// Version is advertised to clients for capability negotiation.
const Version = "1.0.0"

// ErrNotReady is returned by tools when the index has not been built.
// The LLM should call notesearch_rebuild to populate it.
const ErrNotReady = "search index not ready - call notesearch_rebuild first"

// Serve starts the MCP server over stdio, enabling LLM integration.
// Uses stdio transport for compatibility with Claude Desktop and other MCP
// clients.
//
// Design: The server starts successfully even when the index is empty or
// uninitialised. Tools that need the index return ErrNotReady with clear
// guidance so the LLM can rebuild rather than failing opaquely.
func Serve(svc service.Service) error {
	// Log to stderr; stdout is reserved for MCP JSON-RPC messages
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	h := &handlers{svc: svc}

	s := server.NewMCPServer(
		"notesearch",
		Version,
		server.WithToolCapabilities(true),
	)

	registerTools(s, h)

	slog.Info("notesearch MCP server ready", "version", Version, "transport", "stdio")

	err := server.ServeStdio(s)
	if errors.Is(err, context.Canceled) {
		slog.Info("server stopped")
		return nil
	}
	return err
}

// handlers provides MCP request handlers with access to the search service.
type handlers struct {
	svc service.Service
}

// registerTools exposes notesearch operations as MCP tools for LLM invocation.
func registerTools(s *server.MCPServer, h *handlers) {
	s.AddTool(
		mcp.NewTool("notesearch_search",
			mcp.WithDescription("Search indexed notes. Returns matching note IDs."),
			mcp.WithArray("tokens", mcp.Required(), mcp.Description("Search tokens; a note must match every token")),
			mcp.WithString("operator", mcp.Description("Matching strategy: substring (default), prefix, suffix, fuzzy, exact, not-equals, regex")),
			mcp.WithBoolean("include_deleted", mcp.Description("Include soft-deleted notes")),
			mcp.WithBoolean("include_protected", mcp.Description("Include protected notes (requires an active protected session)")),
			mcp.WithNumber("limit", mcp.Description("Maximum results to return")),
		),
		h.searchNotes,
	)

	s.AddTool(
		mcp.NewTool("notesearch_status",
			mcp.WithDescription("Report index coverage: note count, indexed count, token count, readiness."),
		),
		h.indexStatus,
	)

	s.AddTool(
		mcp.NewTool("notesearch_rebuild",
			mcp.WithDescription("Rebuild the search index from the note store. Call when search reports the index is not ready."),
			mcp.WithBoolean("force", mcp.Description("Clear existing entries before repopulating")),
		),
		h.rebuildIndex,
	)
}

// searchNotes handles notesearch_search tool calls.
func (h *handlers) searchNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tokens := getStrings(req, "tokens")
	if len(tokens) == 0 {
		return mcp.NewToolResultError("tokens is required"), nil
	}

	op := search.Operator(getString(req, "operator", string(search.OpSubstring)))

	ids, err := h.svc.Search(ctx, service.SearchRequest{
		Tokens:           tokens,
		Operator:         op,
		IncludeDeleted:   getBool(req, "include_deleted", false),
		IncludeProtected: getBool(req, "include_protected", false),
		Limit:            getInt(req, "limit", 0),
	})

	log.Event("mcp:notesearch_search", "search").Operator(string(op)).Detail("tokens", tokens).Detail("count", len(ids)).Write(err)

	if errors.Is(err, search.ErrNotReady) {
		return mcp.NewToolResultError(ErrNotReady), nil
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return jsonResult(map[string]any{
		"count":    len(ids),
		"note_ids": ids,
	})
}

// indexStatus handles notesearch_status tool calls.
func (h *handlers) indexStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	st, err := h.svc.Status(ctx)

	log.Event("mcp:notesearch_status", "status").Write(err)

	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return jsonResult(map[string]any{
		"ready":            st.Ready,
		"document_count":   st.DocumentCount,
		"indexed_count":    st.IndexedCount,
		"token_count":      st.TokenCount,
		"coverage_percent": st.CoveragePercent,
	})
}

// rebuildIndex handles notesearch_rebuild tool calls.
func (h *handlers) rebuildIndex(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	force := getBool(req, "force", false)

	rep, err := h.svc.RebuildIndex(ctx, force)

	log.Event("mcp:notesearch_rebuild", "rebuild").Detail("force", force).Detail("indexed", rep.Indexed).Write(err)

	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return jsonResult(map[string]any{
		"indexed": rep.Indexed,
		"skipped": rep.Skipped,
		"failed":  rep.Failed,
		"tokens":  rep.Tokens,
	})
}
