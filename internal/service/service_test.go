package service_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jpl-au/notesearch/internal/index"
	"github.com/jpl-au/notesearch/internal/notes"
	"github.com/jpl-au/notesearch/internal/search"
	"github.com/jpl-au/notesearch/internal/service"
)

func setup(t *testing.T, opts service.Options) (*notes.SQLiteSource, service.Service) {
	t.Helper()
	dir := t.TempDir()

	src, err := notes.OpenSQLite(filepath.Join(dir, "notes.db"))
	require.NoError(t, err)
	t.Cleanup(func() { src.Close() })

	idx, err := index.Open(filepath.Join(dir, "index.db"))
	require.NoError(t, err)
	require.NoError(t, idx.Init())

	svc := service.New(src, idx, opts)
	t.Cleanup(func() { svc.Close() })
	src.Subscribe(service.Syncer(svc))
	return src, svc
}

func TestSearch(t *testing.T) {
	ctx := context.Background()
	src, svc := setup(t, service.Options{})

	id, err := src.Create(ctx, "Weekly Report", notes.TypeText, "text/plain",
		"Status: getUserName returned none")
	require.NoError(t, err)

	got, err := svc.Search(ctx, service.SearchRequest{
		Tokens:   []string{"getusername"},
		Operator: search.OpExact,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{id}, got)
}

func TestSearch_ConfiguredLimit(t *testing.T) {
	ctx := context.Background()
	src, svc := setup(t, service.Options{MaxResults: 2})

	for i := 0; i < 4; i++ {
		_, err := src.Create(ctx, "Weekly Report", notes.TypeText, "text/plain", "body")
		require.NoError(t, err)
	}

	got, err := svc.Search(ctx, service.SearchRequest{
		Tokens:   []string{"weekly"},
		Operator: search.OpSubstring,
	})
	require.NoError(t, err)
	assert.Len(t, got, 2, "default limit comes from options")

	got, err = svc.Search(ctx, service.SearchRequest{
		Tokens:   []string{"weekly"},
		Operator: search.OpSubstring,
		Limit:    3,
	})
	require.NoError(t, err)
	assert.Len(t, got, 3, "explicit request limit wins")
}

func TestSearch_NotReady(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	src, err := notes.OpenSQLite(filepath.Join(dir, "notes.db"))
	require.NoError(t, err)
	t.Cleanup(func() { src.Close() })

	idx, err := index.Open(filepath.Join(dir, "index.db"))
	require.NoError(t, err)
	// no Init
	svc := service.New(src, idx, service.Options{})
	t.Cleanup(func() { svc.Close() })

	_, err = svc.Search(ctx, service.SearchRequest{
		Tokens:   []string{"anything"},
		Operator: search.OpSubstring,
	})
	assert.ErrorIs(t, err, search.ErrNotReady)

	st, err := svc.Status(ctx)
	require.NoError(t, err)
	assert.False(t, st.Ready)
}

func TestSearchMultiple(t *testing.T) {
	ctx := context.Background()
	src, svc := setup(t, service.Options{})

	id1, err := src.Create(ctx, "Weekly Report", notes.TypeText, "text/plain", "alpha beta")
	require.NoError(t, err)
	_, err = src.Create(ctx, "Daily Report", notes.TypeText, "text/plain", "beta gamma")
	require.NoError(t, err)

	got, err := svc.SearchMultiple(ctx, []search.Query{
		{Tokens: []string{"beta"}, Operator: search.OpExact},
		{Tokens: []string{"weekly"}, Operator: search.OpSubstring},
	}, search.CombineAND, service.SearchRequest{})
	require.NoError(t, err)
	assert.Equal(t, []string{id1}, got)
}

func TestRebuildIndex(t *testing.T) {
	ctx := context.Background()
	src, svc := setup(t, service.Options{})

	id, err := src.Create(ctx, "Note", notes.TypeText, "text/plain", "original words")
	require.NoError(t, err)

	rep, err := svc.RebuildIndex(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rep.Indexed)

	// force rebuild converges to the same state
	rep, err = svc.RebuildIndex(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rep.Indexed)

	got, err := svc.Search(ctx, service.SearchRequest{
		Tokens:   []string{"original"},
		Operator: search.OpExact,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{id}, got)
}

func TestStatus(t *testing.T) {
	ctx := context.Background()
	src, svc := setup(t, service.Options{})

	_, err := src.Create(ctx, "A", notes.TypeText, "text/plain", "one two")
	require.NoError(t, err)
	_, err = src.Create(ctx, "B", notes.TypeImage, "image/png", "")
	require.NoError(t, err)

	st, err := svc.Status(ctx)
	require.NoError(t, err)
	assert.True(t, st.Ready)
	assert.Equal(t, int64(1), st.DocumentCount)
	assert.Equal(t, int64(1), st.IndexedCount)
	assert.Greater(t, st.TokenCount, int64(0))
	assert.InDelta(t, 100.0, st.CoveragePercent, 0.01)
}

func TestProtectedExcluded(t *testing.T) {
	ctx := context.Background()
	src, svc := setup(t, service.Options{
		SessionActive: func() bool { return true },
	})

	id, err := src.Create(ctx, "Secret", notes.TypeText, "text/plain", "hidden words")
	require.NoError(t, err)
	require.NoError(t, src.SetProtected(ctx, id, true))

	// Protecting a note removes its entry, so no option combination can
	// surface its content through the index.
	got, err := svc.Search(ctx, service.SearchRequest{
		Tokens:           []string{"hidden"},
		Operator:         search.OpExact,
		IncludeProtected: true,
	})
	require.NoError(t, err)
	assert.Empty(t, got)

	// Unprotecting re-indexes it.
	require.NoError(t, src.SetProtected(ctx, id, false))
	got, err = svc.Search(ctx, service.SearchRequest{
		Tokens:   []string{"hidden"},
		Operator: search.OpExact,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{id}, got)
}
