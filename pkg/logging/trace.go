package logging

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/mutagen-io/meshsync/pkg/meshsync"
)

// TracePrefix is the literal prefix for all trace output.
const TracePrefix = "MeshSync trace: "

var (
	// traceLock serializes trace output.
	traceLock sync.Mutex
	// traceOutput is the destination for trace output.
	traceOutput io.Writer = os.Stderr
)

// SetTraceOutput sets the destination for trace output and returns the
// previous destination.
func SetTraceOutput(destination io.Writer) io.Writer {
	traceLock.Lock()
	defer traceLock.Unlock()
	previous := traceOutput
	traceOutput = destination
	return previous
}

// traceLine formats a trace line, including the trailing newline.
func traceLine(format string, v ...interface{}) string {
	return TracePrefix + fmt.Sprintf(format, v...) + "\n"
}

// Trace prints a formatted trace message prefixed with TracePrefix. Outside of
// builds using the mscdebug tag this function body reduces to nothing.
func Trace(format string, v ...interface{}) {
	if !meshsync.DebugEnabled {
		return
	}
	traceLock.Lock()
	io.WriteString(traceOutput, traceLine(format, v...))
	traceLock.Unlock()
}

// Tracef logs low-level execution information. It requires both a build with
// the mscdebug tag and a logger level of LevelTrace.
func (l *Logger) Tracef(format string, v ...interface{}) {
	if meshsync.DebugEnabled && l.enabled(LevelTrace) {
		l.write(TracePrefix + fmt.Sprintf(format, v...))
	}
}
