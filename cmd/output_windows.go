package cmd

const (
	// statusLineFormat is the format string used for status line printing.
	// Content is truncated and padded to exactly 79 characters. Carriage return
	// wipes fail on Windows consoles once the last column has been written.
	statusLineFormat = "\r%-79.79s"
	// statusLineClearFormat is the format string used to clear the status
	// line. It returns the cursor to the beginning of the line.
	statusLineClearFormat = statusLineFormat + "\r"
)
