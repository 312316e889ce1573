//go:build mscdebug
// +build mscdebug

package meshsync

// DebugEnabled indicates whether or not debug tracing was compiled in.
const DebugEnabled = true
