package sync_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jpl-au/notesearch/internal/index"
	"github.com/jpl-au/notesearch/internal/notes"
	"github.com/jpl-au/notesearch/internal/sync"
)

// setup wires a real notes store to a real index store through the event
// subscription, the same shape a host application uses.
func setup(t *testing.T) (*notes.SQLiteSource, *index.Store, *sync.Syncer) {
	t.Helper()
	dir := t.TempDir()

	src, err := notes.OpenSQLite(filepath.Join(dir, "notes.db"))
	require.NoError(t, err)
	t.Cleanup(func() { src.Close() })

	idx, err := index.Open(filepath.Join(dir, "index.db"))
	require.NoError(t, err)
	require.NoError(t, idx.Init())
	t.Cleanup(func() { idx.Close() })

	syncer := sync.New(src, idx, 10)
	src.Subscribe(syncer)
	return src, idx, syncer
}

func TestHandleEvent_CreateIndexes(t *testing.T) {
	ctx := context.Background()
	src, idx, _ := setup(t)

	id, err := src.Create(ctx, "Weekly Report", notes.TypeText, "text/plain", "all good")
	require.NoError(t, err)

	entry, err := idx.Entry(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "weekly report", entry.TitleNorm)
	assert.Equal(t, "all good", entry.ContentNorm)
}

func TestHandleEvent_NonIndexableTypeIgnored(t *testing.T) {
	ctx := context.Background()
	src, idx, _ := setup(t)

	id, err := src.Create(ctx, "Holiday photo", notes.TypeImage, "image/png", "")
	require.NoError(t, err)

	_, err = idx.Entry(ctx, id)
	assert.ErrorIs(t, err, index.ErrNotFound)
}

func TestHandleEvent_UpdateRecomputes(t *testing.T) {
	ctx := context.Background()
	src, idx, _ := setup(t)

	id, err := src.Create(ctx, "Notes", notes.TypeText, "text/plain", "first draft")
	require.NoError(t, err)
	require.NoError(t, src.Update(ctx, id, "Notes", "final version"))

	entry, err := idx.Entry(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "final version", entry.ContentNorm)

	tokens, err := idx.TokensOf(ctx, id)
	require.NoError(t, err)
	assert.True(t, tokens["final"])
	assert.False(t, tokens["draft"], "stale tokens must not survive an update")
}

func TestHandleEvent_DeleteAndUndelete(t *testing.T) {
	ctx := context.Background()
	src, idx, _ := setup(t)

	id, err := src.Create(ctx, "Secret plan", notes.TypeText, "text/plain", "world domination")
	require.NoError(t, err)

	require.NoError(t, src.SetDeleted(ctx, id, true))
	_, err = idx.Entry(ctx, id)
	assert.ErrorIs(t, err, index.ErrNotFound)

	require.NoError(t, src.SetDeleted(ctx, id, false))
	_, err = idx.Entry(ctx, id)
	assert.NoError(t, err)
}

func TestHandleEvent_ProtectionRemoves(t *testing.T) {
	ctx := context.Background()
	src, idx, _ := setup(t)

	id, err := src.Create(ctx, "Diary", notes.TypeText, "text/plain", "dear diary")
	require.NoError(t, err)

	require.NoError(t, src.SetProtected(ctx, id, true))
	_, err = idx.Entry(ctx, id)
	assert.ErrorIs(t, err, index.ErrNotFound)

	require.NoError(t, src.SetProtected(ctx, id, false))
	_, err = idx.Entry(ctx, id)
	assert.NoError(t, err)
}

func TestHandleEvent_TypeChangeCrossesBoundary(t *testing.T) {
	ctx := context.Background()
	src, idx, _ := setup(t)

	id, err := src.Create(ctx, "Diagram", notes.TypeCode, "text/x-go", "package main")
	require.NoError(t, err)
	_, err = idx.Entry(ctx, id)
	require.NoError(t, err)

	// code -> image leaves the indexable set
	require.NoError(t, src.SetType(ctx, id, notes.TypeImage, "image/png"))
	_, err = idx.Entry(ctx, id)
	assert.ErrorIs(t, err, index.ErrNotFound)

	// image -> text re-enters it
	require.NoError(t, src.SetType(ctx, id, notes.TypeText, "text/plain"))
	_, err = idx.Entry(ctx, id)
	assert.NoError(t, err)
}

func TestHandleEvent_HTMLSanitized(t *testing.T) {
	ctx := context.Background()
	src, idx, _ := setup(t)

	id, err := src.Create(ctx, "Rich note", notes.TypeText, "text/html",
		"<p>Hello <b>World</b></p><script>alert(1)</script>")
	require.NoError(t, err)

	entry, err := idx.Entry(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "hello world", entry.ContentNorm)
	assert.NotContains(t, entry.ContentNorm, "alert")
}

func TestHandleEvent_PullsContentWhenAbsent(t *testing.T) {
	ctx := context.Background()
	src, idx, syncer := setup(t)

	id, err := src.Create(ctx, "Plain", notes.TypeText, "text/plain", "stored body")
	require.NoError(t, err)

	// Event without inlined content forces a pull through the source.
	err = syncer.HandleEvent(ctx, notes.Event{
		Kind:   notes.EventContentChanged,
		NoteID: id,
		Title:  "Plain",
		Type:   notes.TypeText,
		MIME:   "text/plain",
	})
	require.NoError(t, err)

	entry, err := idx.Entry(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "stored body", entry.ContentNorm)
}

func TestHandleEvent_ContentPullFailure(t *testing.T) {
	ctx := context.Background()
	_, _, syncer := setup(t)

	err := syncer.HandleEvent(ctx, notes.Event{
		Kind:   notes.EventContentChanged,
		NoteID: "no-such-note",
		Title:  "Ghost",
		Type:   notes.TypeText,
		MIME:   "text/plain",
	})
	assert.True(t, errors.Is(err, notes.ErrNotFound))
}

func TestPopulate(t *testing.T) {
	ctx := context.Background()
	src, idx, syncer := setup(t)

	_, err := src.Create(ctx, "One", notes.TypeText, "text/plain", "first note")
	require.NoError(t, err)
	_, err = src.Create(ctx, "Two", notes.TypeCode, "text/x-go", "package main")
	require.NoError(t, err)
	imgID, err := src.Create(ctx, "Pic", notes.TypeImage, "image/png", "")
	require.NoError(t, err)
	delID, err := src.Create(ctx, "Gone", notes.TypeText, "text/plain", "bye")
	require.NoError(t, err)
	require.NoError(t, src.SetDeleted(ctx, delID, true))

	// Wipe the incrementally built index and rebuild from scratch.
	require.NoError(t, idx.Clear(ctx))

	rep, err := syncer.Populate(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), rep.Indexed)
	assert.Equal(t, int64(2), rep.Skipped)
	assert.Equal(t, int64(0), rep.Failed)
	assert.Greater(t, rep.Tokens, int64(0))

	_, err = idx.Entry(ctx, imgID)
	assert.ErrorIs(t, err, index.ErrNotFound)
	_, err = idx.Entry(ctx, delID)
	assert.ErrorIs(t, err, index.ErrNotFound)
}

func TestPopulate_Idempotent(t *testing.T) {
	ctx := context.Background()
	src, idx, syncer := setup(t)

	id, err := src.Create(ctx, "Stable", notes.TypeText, "text/plain", "same every time")
	require.NoError(t, err)

	rep1, err := syncer.Populate(ctx)
	require.NoError(t, err)
	rep2, err := syncer.Populate(ctx)
	require.NoError(t, err)
	assert.Equal(t, rep1.Indexed, rep2.Indexed)

	entries, tokens, err := idx.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), entries)

	want, err := idx.TokensOf(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(len(want)), tokens, "double population must not duplicate tokens")
}

func TestPopulate_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	src, _, syncer := setup(t)

	for i := 0; i < 5; i++ {
		_, err := src.Create(ctx, "Note", notes.TypeText, "text/plain", "body")
		require.NoError(t, err)
	}
	cancel()

	_, err := syncer.Populate(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPopulate_Progress(t *testing.T) {
	ctx := context.Background()
	src, _, syncer := setup(t)

	for i := 0; i < 3; i++ {
		_, err := src.Create(ctx, "Note", notes.TypeText, "text/plain", "body")
		require.NoError(t, err)
	}

	var lastDone, lastTotal int64
	syncer.Progress = func(done, total int64) {
		lastDone, lastTotal = done, total
	}

	_, err := syncer.Populate(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), lastDone)
	assert.Equal(t, int64(3), lastTotal)
}
