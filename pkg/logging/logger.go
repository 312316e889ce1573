package logging

import (
	"fmt"
	"io"
	"io/ioutil"
	"log"
	"os"

	"github.com/fatih/color"
)

// Logger is the main logger type. It has the novel property that it still
// functions if nil, but it doesn't log anything. It is safe for concurrent
// usage.
type Logger struct {
	// prefix is any prefix specified for the logger.
	prefix string
	// level is the maximum level that the logger will emit.
	level Level
	// output is the underlying line logger.
	output *log.Logger
}

// NewLogger creates a new logger that emits messages at or below the specified
// level to the specified writer.
func NewLogger(level Level, destination io.Writer) *Logger {
	return &Logger{
		level:  level,
		output: log.New(destination, "", log.LstdFlags),
	}
}

// RootLogger is the root logger from which all other loggers derive. Entry
// points replace it once the desired level is known.
var RootLogger = NewLogger(LevelInfo, os.Stderr)

// Sublogger creates a new sublogger with the specified name.
func (l *Logger) Sublogger(name string) *Logger {
	// If the logger is nil, then the sublogger will be as well.
	if l == nil {
		return nil
	}

	// Compute the new prefix.
	prefix := name
	if l.prefix != "" {
		prefix = l.prefix + "." + name
	}

	// Create the new logger.
	return &Logger{
		prefix: prefix,
		level:  l.level,
		output: l.output,
	}
}

// Level returns the logger's level. A nil logger reports LevelDisabled.
func (l *Logger) Level() Level {
	if l == nil {
		return LevelDisabled
	}
	return l.level
}

// enabled returns whether or not the logger emits messages at the specified
// level.
func (l *Logger) enabled(level Level) bool {
	return l != nil && l.level >= level
}

// write is the internal logging method.
func (l *Logger) write(line string) {
	if l.prefix != "" {
		line = fmt.Sprintf("[%s] %s", l.prefix, line)
	}
	l.output.Output(3, line)
}

// Error logs error information with an error prefix and red color.
func (l *Logger) Error(err error) {
	if l.enabled(LevelError) {
		l.write(color.RedString("Error: %v", err))
	}
}

// Warn logs error information with a warning prefix and yellow color.
func (l *Logger) Warn(err error) {
	if l.enabled(LevelWarn) {
		l.write(color.YellowString("Warning: %v", err))
	}
}

// Info logs basic execution information with semantics equivalent to
// fmt.Sprint.
func (l *Logger) Info(v ...interface{}) {
	if l.enabled(LevelInfo) {
		l.write(fmt.Sprint(v...))
	}
}

// Infof logs basic execution information with semantics equivalent to
// fmt.Sprintf.
func (l *Logger) Infof(format string, v ...interface{}) {
	if l.enabled(LevelInfo) {
		l.write(fmt.Sprintf(format, v...))
	}
}

// Debug logs advanced execution information with semantics equivalent to
// fmt.Sprint.
func (l *Logger) Debug(v ...interface{}) {
	if l.enabled(LevelDebug) {
		l.write(fmt.Sprint(v...))
	}
}

// Debugf logs advanced execution information with semantics equivalent to
// fmt.Sprintf.
func (l *Logger) Debugf(format string, v ...interface{}) {
	if l.enabled(LevelDebug) {
		l.write(fmt.Sprintf(format, v...))
	}
}

// Writer returns an io.Writer that writes lines at the specified level.
func (l *Logger) Writer(level Level) io.Writer {
	// If the logger won't emit at this level, then we can just discard input.
	// This saves us the overhead of scanning lines.
	if !l.enabled(level) {
		return ioutil.Discard
	}

	// Create the writer.
	return &writer{
		callback: func(s string) {
			l.write(s)
		},
	}
}
