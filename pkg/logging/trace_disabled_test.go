//go:build !mscdebug
// +build !mscdebug

package logging

import (
	"bytes"
	"testing"
)

// TestTraceDisabled tests that trace calls produce no output without the
// mscdebug build tag.
func TestTraceDisabled(t *testing.T) {
	buffer := &bytes.Buffer{}
	previous := SetTraceOutput(buffer)
	defer SetTraceOutput(previous)

	Trace("value: %d", 42)

	logger, logBuffer := newTestLogger(LevelTrace)
	logger.Tracef("value: %d", 42)

	if buffer.Len() != 0 || logBuffer.Len() != 0 {
		t.Error("trace output produced in non-debug build")
	}
}
