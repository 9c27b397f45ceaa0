// Testing Strategy Design Decision:
//
// The cmd/ package contains CLI integration tests that exercise the full
// stack: command parsing -> service layer -> index store -> SQLite.
//
// The binary is compiled once per test run and executed against temp
// directories. HOME is pointed at a temp directory so global config and the
// audit log never touch the developer's real ~/.notesearch.

package cmd

import (
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"testing"
)

var (
	binaryPath string
	buildOnce  sync.Once
	buildErr   error
)

// buildBinary compiles the notesearch binary once for all tests.
func buildBinary(t *testing.T) string {
	t.Helper()

	buildOnce.Do(func() {
		tmpDir, err := os.MkdirTemp("", "notesearch-test-bin-*")
		if err != nil {
			buildErr = err
			return
		}

		binaryName := "notesearch"
		if os.PathSeparator == '\\' {
			binaryName = "notesearch.exe"
		}
		binaryPath = filepath.Join(tmpDir, binaryName)

		// Find project root (parent of cmd/)
		wd, err := os.Getwd()
		if err != nil {
			buildErr = err
			return
		}
		projectRoot := filepath.Dir(wd)

		cmd := exec.Command("go", "build", "-o", binaryPath, ".")
		cmd.Dir = projectRoot
		if out, err := cmd.CombinedOutput(); err != nil {
			buildErr = &buildError{err: err, output: string(out)}
			return
		}
	})

	if buildErr != nil {
		t.Fatalf("failed to build binary: %v", buildErr)
	}
	return binaryPath
}

type buildError struct {
	err    error
	output string
}

func (e *buildError) Error() string {
	return e.err.Error() + "\n" + e.output
}

// run executes the binary in dir with an isolated HOME and returns combined
// output. Fails the test on a non-zero exit.
func run(t *testing.T, dir string, args ...string) string {
	t.Helper()
	out, err := runErr(t, dir, args...)
	if err != nil {
		t.Fatalf("notesearch %v failed: %v\n%s", args, err, out)
	}
	return out
}

// runErr is run without the exit-code assertion, for error-path tests.
func runErr(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	cmd := exec.Command(buildBinary(t), args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), "HOME="+testHome(t))
	out, err := cmd.CombinedOutput()
	return string(out), err
}

var (
	homeOnce sync.Once
	homeDir  string
)

// testHome returns a shared temp HOME for the whole test run so the audit
// log database is created once, not per test.
func testHome(t *testing.T) string {
	t.Helper()
	homeOnce.Do(func() {
		var err error
		homeDir, err = os.MkdirTemp("", "notesearch-test-home-*")
		if err != nil {
			t.Fatalf("create test home: %v", err)
		}
	})
	return homeDir
}
