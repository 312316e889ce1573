//go:build mscdebug
// +build mscdebug

package logging

import (
	"bytes"
	"strings"
	"testing"
)

// TestTraceEnabled tests that trace calls emit prefixed output with the
// mscdebug build tag.
func TestTraceEnabled(t *testing.T) {
	buffer := &bytes.Buffer{}
	previous := SetTraceOutput(buffer)
	defer SetTraceOutput(previous)

	Trace("value: %d", 42)
	if output := buffer.String(); output != "MeshSync trace: value: 42\n" {
		t.Errorf("unexpected trace output: %q", output)
	}

	logger, logBuffer := newTestLogger(LevelTrace)
	logger.Sublogger("client").Tracef("sent")
	if !strings.HasPrefix(logBuffer.String(), "[client] "+TracePrefix) {
		t.Errorf("unexpected logger trace output: %q", logBuffer.String())
	}

	quiet, quietBuffer := newTestLogger(LevelDebug)
	quiet.Tracef("hidden")
	if quietBuffer.Len() != 0 {
		t.Error("logger below trace level produced trace output")
	}
}
