//go:build !mscdebug
// +build !mscdebug

package meshsync

// DebugEnabled indicates whether or not debug tracing was compiled in. Since it
// is a constant, guarded trace call sites are removed entirely by the compiler
// in non-debug builds.
const DebugEnabled = false
