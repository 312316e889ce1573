package cmd

import (
	"os/exec"

	"github.com/pkg/errors"
)

// runForExitCode runs a command to completion and returns its exit code. An
// error is returned only if the command couldn't be started, in which case
// there's no exit code to report.
func runForExitCode(command *exec.Cmd) (int, error) {
	err := command.Run()
	if command.ProcessState == nil {
		if err == nil {
			err = errors.New("process state unavailable")
		}
		return 0, errors.Wrap(err, "unable to start command")
	}
	return command.ProcessState.ExitCode(), nil
}
