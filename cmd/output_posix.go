//go:build !windows
// +build !windows

package cmd

const (
	// statusLineFormat is the format string used for status line printing.
	// Content is truncated and padded to exactly 80 characters.
	statusLineFormat = "\r%-80.80s"
	// statusLineClearFormat is the format string used to clear the status
	// line. It returns the cursor to the beginning of the line.
	statusLineClearFormat = statusLineFormat + "\r"
)
