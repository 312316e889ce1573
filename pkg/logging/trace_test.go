package logging

import (
	"strings"
	"testing"
)

// TestTraceLine tests trace line formatting, which is independent of whether
// or not tracing is compiled in.
func TestTraceLine(t *testing.T) {
	line := traceLine("sent %d entities to %s", 3, "localhost")
	if !strings.HasPrefix(line, TracePrefix) {
		t.Fatal("trace line missing prefix:", line)
	}
	if line != "MeshSync trace: sent 3 entities to localhost\n" {
		t.Errorf("unexpected trace line: %q", line)
	}
}
