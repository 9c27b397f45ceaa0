package cmd

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit(t *testing.T) {
	dir := t.TempDir()

	out := run(t, dir, "init")
	assert.Contains(t, out, "Initialised")

	assert.DirExists(t, filepath.Join(dir, ".notesearch"))
	assert.FileExists(t, filepath.Join(dir, ".notesearch", "notesearch.db"))
	// init does NOT create config.yaml - config is managed separately
	// via "notesearch config"
	assert.NoFileExists(t, filepath.Join(dir, ".notesearch", "config.yaml"))
}

func TestInit_AlreadyInitialised(t *testing.T) {
	dir := t.TempDir()
	run(t, dir, "init")

	out, err := runErr(t, dir, "init")
	assert.Error(t, err)
	assert.Contains(t, out, "already exists")
}

func TestInit_Force(t *testing.T) {
	dir := t.TempDir()
	run(t, dir, "init")
	run(t, dir, "init", "--force")
	assert.FileExists(t, filepath.Join(dir, ".notesearch", "notesearch.db"))
}

func TestInit_NamedDB(t *testing.T) {
	dir := t.TempDir()
	run(t, dir, "init", "--db", "work")
	assert.FileExists(t, filepath.Join(dir, ".notesearch", "notesearch-work.db"))
}

func TestInit_Dir(t *testing.T) {
	dir := t.TempDir()
	target := t.TempDir()
	run(t, dir, "init", "--dir", target)
	assert.FileExists(t, filepath.Join(target, ".notesearch", "notesearch.db"))
}

func TestDB_List(t *testing.T) {
	dir := t.TempDir()
	run(t, dir, "init")
	run(t, dir, "init", "--db", "work")

	out := run(t, dir, "db")
	assert.Contains(t, out, "notesearch.db")
	assert.Contains(t, out, "notesearch-work.db")
}

func TestCommandWithoutInit(t *testing.T) {
	dir := t.TempDir()

	out, err := runErr(t, dir, "status")
	require.Error(t, err)
	assert.Contains(t, out, "not initialised")
}
