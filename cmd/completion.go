package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// PerformingShellCompletion indicates whether or not one of Cobra's shell
// completion commands (either the hidden completion request commands or the
// completion script generator) is being used. Commands skip configuration
// loading in that case, since completion must work regardless of
// configuration validity.
var PerformingShellCompletion bool

func init() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case cobra.ShellCompRequestCmd, cobra.ShellCompNoDescRequestCmd, "completion":
			PerformingShellCompletion = true
		}
	}
}
