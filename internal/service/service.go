// Package service defines the shared interface for search operations.
// Commands and the MCP server depend on this interface rather than concrete
// implementations, enabling testing with mocks and future backend changes.
package service

import (
	"context"
	"fmt"

	"github.com/jpl-au/notesearch/internal/index"
	"github.com/jpl-au/notesearch/internal/log"
	"github.com/jpl-au/notesearch/internal/notes"
	"github.com/jpl-au/notesearch/internal/search"
	"github.com/jpl-au/notesearch/internal/sync"
)

// SearchRequest is one query against the index.
type SearchRequest struct {
	Tokens   []string
	Operator search.Operator

	IncludeDeleted   bool
	IncludeProtected bool
	DocIDFilter      map[string]bool

	// Limit caps the result count. Zero falls back to the configured
	// maximum, which may itself be unlimited.
	Limit int
}

// Status reports index coverage for observability.
type Status struct {
	DocumentCount   int64   // indexable documents in the source
	IndexedCount    int64   // entries currently in the index
	TokenCount      int64   // token rows currently in the index
	CoveragePercent float64 // indexed / documents * 100
	Ready           bool    // schema present, queries will run
}

// Service exposes search, rebuild and status to hosts.
//
// Construct with New and always call Close() when done (use defer).
// A Service holds no hidden global state; tests construct isolated
// instances per case.
type Service interface {
	// Close releases the index store. The notes source stays open; its
	// lifetime belongs to the caller.
	Close() error

	// Search evaluates one query. Returns search.ErrNotReady when the
	// index schema is absent; callers fall back to a linear scan or
	// prompt for a rebuild.
	Search(ctx context.Context, req SearchRequest) ([]string, error)

	// SearchMultiple combines several sub-queries by AND or OR.
	SearchMultiple(ctx context.Context, queries []search.Query, mode search.Combine, req SearchRequest) ([]string, error)

	// RebuildIndex ensures the schema exists and repopulates the index
	// from the source. force clears existing entries first.
	RebuildIndex(ctx context.Context, force bool) (sync.Report, error)

	// Status reports document, entry and token counts.
	Status(ctx context.Context) (Status, error)
}

// Options configure a Service.
type Options struct {
	// SessionActive reports whether a protected session is available.
	// nil means never; queried per request, not cached.
	SessionActive func() bool

	// SearchConfig tunes the fuzzy operator. Zero values use defaults.
	SearchConfig search.Config

	// BatchSize bounds population batches. Zero uses the default.
	BatchSize int

	// MaxResults caps result sets when a request carries no explicit
	// limit. Zero means unlimited.
	MaxResults int

	// Progress, when set, receives population progress callbacks.
	Progress func(done, total int64)
}

type searchService struct {
	src    notes.Source
	idx    *index.Store
	eval   *search.Evaluator
	syncer *sync.Syncer
	max    int
}

// New wires a source and an index store into a Service.
func New(src notes.Source, idx *index.Store, opts Options) Service {
	eval := search.New(idx, src, opts.SessionActive, opts.SearchConfig)
	syncer := sync.New(src, idx, opts.BatchSize)
	syncer.Progress = opts.Progress
	return &searchService{
		src:    src,
		idx:    idx,
		eval:   eval,
		syncer: syncer,
		max:    opts.MaxResults,
	}
}

// Syncer returns the event handler hosts subscribe to their note store.
// Exposed as a helper rather than on the Service interface so mocks don't
// have to fake it.
func Syncer(s Service) *sync.Syncer {
	if ss, ok := s.(*searchService); ok {
		return ss.syncer
	}
	return nil
}

func (s *searchService) Close() error {
	return s.idx.Close()
}

func (s *searchService) Search(ctx context.Context, req SearchRequest) ([]string, error) {
	opts := s.options(req)
	ids, err := s.eval.Search(ctx, req.Tokens, req.Operator, opts)
	log.Event("service:search", "search").
		Operator(string(req.Operator)).
		Detail("tokens", req.Tokens).
		Detail("count", len(ids)).
		Write(err)
	return ids, err
}

func (s *searchService) SearchMultiple(ctx context.Context, queries []search.Query, mode search.Combine, req SearchRequest) ([]string, error) {
	opts := s.options(req)
	ids, err := s.eval.SearchMultiple(ctx, queries, mode, opts)
	log.Event("service:search", "search").
		Detail("queries", len(queries)).
		Detail("count", len(ids)).
		Write(err)
	return ids, err
}

func (s *searchService) RebuildIndex(ctx context.Context, force bool) (sync.Report, error) {
	if err := s.idx.Init(); err != nil {
		return sync.Report{}, fmt.Errorf("initialise index schema: %w", err)
	}
	if force {
		if err := s.idx.Clear(ctx); err != nil {
			return sync.Report{}, fmt.Errorf("clear index: %w", err)
		}
	}
	rep, err := s.syncer.Populate(ctx)
	log.Event("service:rebuild", "rebuild").
		Detail("force", force).
		Detail("indexed", rep.Indexed).
		Detail("failed", rep.Failed).
		Write(err)
	return rep, err
}

func (s *searchService) Status(ctx context.Context) (Status, error) {
	st := Status{Ready: s.idx.Ready(ctx)}

	docs, err := s.src.CountIndexable(ctx)
	if err != nil {
		return st, fmt.Errorf("count documents: %w", err)
	}
	st.DocumentCount = docs

	if !st.Ready {
		return st, nil
	}

	entries, tokens, err := s.idx.Counts(ctx)
	if err != nil {
		return st, fmt.Errorf("count index rows: %w", err)
	}
	st.IndexedCount = entries
	st.TokenCount = tokens
	if docs > 0 {
		st.CoveragePercent = float64(entries) / float64(docs) * 100
	}
	return st, nil
}

func (s *searchService) options(req SearchRequest) search.Options {
	limit := req.Limit
	if limit == 0 {
		limit = s.max
	}
	return search.Options{
		IncludeDeleted:   req.IncludeDeleted,
		IncludeProtected: req.IncludeProtected,
		DocIDFilter:      req.DocIDFilter,
		Limit:            limit,
	}
}
