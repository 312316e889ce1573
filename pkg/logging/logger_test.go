package logging

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"strings"
	"testing"

	"github.com/fatih/color"
)

// newTestLogger creates a logger writing to a buffer without timestamps.
func newTestLogger(level Level) (*Logger, *bytes.Buffer) {
	buffer := &bytes.Buffer{}
	logger := NewLogger(level, buffer)
	logger.output.SetFlags(0)
	return logger, buffer
}

func init() {
	color.NoColor = true
}

// TestNilLogger tests that a nil logger can be used without effect.
func TestNilLogger(t *testing.T) {
	var logger *Logger
	logger.Info("info")
	logger.Infof("info %d", 1)
	logger.Debug("debug")
	logger.Error(errors.New("error"))
	logger.Warn(errors.New("warning"))
	logger.Tracef("trace")
	if logger.Sublogger("child") != nil {
		t.Error("sublogger of nil logger is non-nil")
	}
	if logger.Level() != LevelDisabled {
		t.Error("nil logger reports enabled level")
	}
	fmt.Fprintln(logger.Writer(LevelInfo), "discarded")
}

// TestSubloggerPrefix tests that subloggers compose dotted prefixes.
func TestSubloggerPrefix(t *testing.T) {
	logger, buffer := newTestLogger(LevelInfo)
	logger.Sublogger("server").Sublogger("replica").Info("applied batch")
	if output := buffer.String(); output != "[server.replica] applied batch\n" {
		t.Errorf("unexpected output: %q", output)
	}
}

// TestLevelFiltering tests that messages above the logger level are dropped.
func TestLevelFiltering(t *testing.T) {
	logger, buffer := newTestLogger(LevelWarn)
	logger.Debugf("debug %d", 1)
	logger.Info("info")
	logger.Warn(errors.New("careful"))
	logger.Error(errors.New("broken"))
	expected := "Warning: careful\nError: broken\n"
	if output := buffer.String(); output != expected {
		t.Errorf("unexpected output: %q != %q", output, expected)
	}
}

// TestWriter tests that Writer splits input into lines.
func TestWriter(t *testing.T) {
	logger, buffer := newTestLogger(LevelDebug)
	writer := logger.Writer(LevelDebug)
	fmt.Fprint(writer, "first\r\nsec")
	fmt.Fprint(writer, "ond\nthird")
	lines := strings.Split(strings.TrimSpace(buffer.String()), "\n")
	if len(lines) != 2 || lines[0] != "first" || lines[1] != "second" {
		t.Errorf("unexpected lines: %q", lines)
	}
}

// TestWriterDisabled tests that Writer discards output above the logger level.
func TestWriterDisabled(t *testing.T) {
	logger, buffer := newTestLogger(LevelInfo)
	fmt.Fprintln(logger.Writer(LevelDebug), "hidden")
	if buffer.Len() != 0 {
		t.Error("writer above logger level produced output")
	}
}

// TestNewLoggerUsesFlags ensures that loggers are created with standard flags.
func TestNewLoggerUsesFlags(t *testing.T) {
	logger := NewLogger(LevelInfo, &bytes.Buffer{})
	if logger.output.Flags() != log.LstdFlags {
		t.Error("logger created with unexpected flags")
	}
}
