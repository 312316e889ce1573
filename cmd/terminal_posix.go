//go:build !windows
// +build !windows

package cmd

// HandleTerminalCompatibility relaunches the current process inside a terminal
// compatibility emulator if necessary. POSIX terminals need no emulation.
func HandleTerminalCompatibility() {}
