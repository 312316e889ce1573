package cmd

import (
	"os"
	"os/exec"

	isatty "github.com/mattn/go-isatty"
)

// HandleTerminalCompatibility automatically restarts the current process inside
// winpty if it's running inside a mintty-based console (such as Git Bash),
// which doesn't support the console APIs used for status line printing.
func HandleTerminalCompatibility() {
	// If we're not running inside a mintty-based terminal, then there's nothing
	// that we need to do.
	if !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return
	}

	// Locate winpty and the current executable.
	winpty, err := exec.LookPath("winpty")
	if err != nil {
		Fatalf("running inside mintty terminal and unable to locate winpty")
	}
	executable, err := os.Executable()
	if err != nil {
		Fatalf("running inside mintty terminal and unable to locate current executable: %v", err)
	}

	// Relaunch the current command inside winpty with our standard streams.
	command := exec.Command(winpty, append([]string{executable}, os.Args[1:]...)...)
	command.Stdin = os.Stdin
	command.Stdout = os.Stdout
	command.Stderr = os.Stderr

	// Run the command and terminate with its exit code.
	code, err := runForExitCode(command)
	if err != nil {
		Fatalf("running inside mintty terminal and unable to run winpty: %v", err)
		return
	}
	exit(code)
}
