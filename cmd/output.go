package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	isatty "github.com/mattn/go-isatty"
)

// IsTerminal returns whether or not the specified file is attached to a
// terminal (including Cygwin-style terminals on Windows).
func IsTerminal(file *os.File) bool {
	return isatty.IsTerminal(file.Fd()) || isatty.IsCygwinTerminal(file.Fd())
}

// StatusLinePrinter provides printing facilities for dynamically updating
// status lines in the console. It supports colorized printing. If the output
// isn't a terminal, each status is printed on its own line instead.
type StatusLinePrinter struct {
	// UseStandardError causes the printer to use standard error for its output
	// instead of standard output (the default).
	UseStandardError bool
	// nonEmpty indicates whether or not the printer has printed any non-empty
	// content to the status line.
	nonEmpty bool
}

// file returns the underlying output file.
func (p *StatusLinePrinter) file() *os.File {
	if p.UseStandardError {
		return os.Stderr
	}
	return os.Stdout
}

// output returns the color-aware output stream.
func (p *StatusLinePrinter) output() io.Writer {
	if p.UseStandardError {
		return color.Error
	}
	return color.Output
}

// Print prints a message to the status line, overwriting any existing content.
// Messages are truncated to a platform-dependent maximum length and padded
// with spaces so that the previous content is entirely overwritten.
func (p *StatusLinePrinter) Print(message string) {
	if !IsTerminal(p.file()) {
		if message != "" {
			fmt.Fprintln(p.output(), message)
		}
		return
	}
	fmt.Fprintf(p.output(), statusLineFormat, message)
	p.nonEmpty = true
}

// Clear clears any content on the status line and moves the cursor back to the
// beginning of the line.
func (p *StatusLinePrinter) Clear() {
	if !IsTerminal(p.file()) {
		return
	}
	fmt.Fprintf(p.output(), statusLineClearFormat, "")
	p.nonEmpty = false
}

// BreakIfNonEmpty prints a newline character if the current line is non-empty.
func (p *StatusLinePrinter) BreakIfNonEmpty() {
	if p.nonEmpty {
		fmt.Fprintln(p.file())
		p.nonEmpty = false
	}
}
