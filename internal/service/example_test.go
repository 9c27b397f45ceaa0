package service_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jpl-au/notesearch/internal/index"
	"github.com/jpl-au/notesearch/internal/notes"
	"github.com/jpl-au/notesearch/internal/search"
	"github.com/jpl-au/notesearch/internal/service"
)

// tempService wires a temporary notes store and index for examples.
func tempService() (*notes.SQLiteSource, service.Service, func()) {
	dir, err := os.MkdirTemp("", "notesearch-example-*")
	if err != nil {
		panic(err)
	}
	src, err := notes.OpenSQLite(filepath.Join(dir, "notes.db"))
	if err != nil {
		panic(err)
	}
	idx, err := index.Open(filepath.Join(dir, "index.db"))
	if err != nil {
		panic(err)
	}
	if err := idx.Init(); err != nil {
		panic(err)
	}
	svc := service.New(src, idx, service.Options{})
	src.Subscribe(service.Syncer(svc))
	cleanup := func() {
		svc.Close()
		src.Close()
		os.RemoveAll(dir)
	}
	return src, svc, cleanup
}

func Example_basicUsage() {
	src, svc, cleanup := tempService()
	defer cleanup()
	ctx := context.Background()

	// Creating a note indexes it through the event subscription.
	_, err := src.Create(ctx, "Weekly Report", notes.TypeText, "text/plain",
		"Status: all systems nominal")
	if err != nil {
		panic(err)
	}

	results, err := svc.Search(ctx, service.SearchRequest{
		Tokens:   []string{"weekly"},
		Operator: search.OpSubstring,
	})
	if err != nil {
		panic(err)
	}
	fmt.Println(len(results))
	// Output:
	// 1
}

func Example_status() {
	src, svc, cleanup := tempService()
	defer cleanup()
	ctx := context.Background()

	_, _ = src.Create(ctx, "One", notes.TypeText, "text/plain", "first")
	_, _ = src.Create(ctx, "Two", notes.TypeCode, "text/x-go", "package main")

	st, err := svc.Status(ctx)
	if err != nil {
		panic(err)
	}
	fmt.Println("Ready:", st.Ready)
	fmt.Println("Documents:", st.DocumentCount)
	fmt.Println("Indexed:", st.IndexedCount)
	fmt.Printf("Coverage: %.0f%%\n", st.CoveragePercent)
	// Output:
	// Ready: true
	// Documents: 2
	// Indexed: 2
	// Coverage: 100%
}

func Example_rebuild() {
	src, svc, cleanup := tempService()
	defer cleanup()
	ctx := context.Background()

	_, _ = src.Create(ctx, "Keep", notes.TypeText, "text/plain", "kept")
	_, _ = src.Create(ctx, "Skip", notes.TypeImage, "image/png", "")

	rep, err := svc.RebuildIndex(ctx, true)
	if err != nil {
		panic(err)
	}
	fmt.Println("Indexed:", rep.Indexed)
	fmt.Println("Skipped:", rep.Skipped)
	// Output:
	// Indexed: 1
	// Skipped: 1
}
