package cmd

import (
	"os/exec"
	"path/filepath"
	"testing"
)

// TestRunForExitCode tests that exit codes are propagated.
func TestRunForExitCode(t *testing.T) {
	shell, err := exec.LookPath("sh")
	if err != nil {
		t.Skip("no POSIX shell available")
	}
	if code, err := runForExitCode(exec.Command(shell, "-c", "exit 3")); err != nil {
		t.Fatal("unable to run command:", err)
	} else if code != 3 {
		t.Error("unexpected exit code:", code)
	}
}

// TestRunForExitCodeStartFailure tests that start failures are reported as
// errors rather than exit codes.
func TestRunForExitCodeStartFailure(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing")
	if _, err := runForExitCode(exec.Command(missing)); err == nil {
		t.Error("missing executable started without error")
	}
}
