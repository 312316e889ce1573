package cmd

import (
	"github.com/spf13/cobra"
)

// Mainify wraps an entry point that returns an error and generates a standard
// Cobra entry point that terminates the process on failure. It's used for
// hooks (such as the root command's persistent setup) whose failures must
// prevent the command from running, while still allowing the entry point to
// rely on defer-based cleanup.
func Mainify(entry func(*cobra.Command, []string) error) func(*cobra.Command, []string) {
	return func(command *cobra.Command, arguments []string) {
		if err := entry(command, arguments); err != nil {
			Fatal(err)
		}
	}
}
