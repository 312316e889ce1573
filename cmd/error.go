package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
)

// exit terminates the process.
var exit = os.Exit

// Warning prints a warning message to standard error.
func Warning(message string) {
	color.New(color.FgYellow).Fprintln(color.Error, "Warning:", message)
}

// Error prints an error message to standard error.
func Error(err error) {
	color.New(color.FgRed).Fprintln(color.Error, "Error:", err)
}

// Fatal prints an error message to standard error and then terminates the
// process with an error exit code.
func Fatal(err error) {
	Error(err)
	exit(1)
}

// Fatalf is a formatting variant of Fatal.
func Fatalf(format string, v ...interface{}) {
	Fatal(fmt.Errorf(format, v...))
}
