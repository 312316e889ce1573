package main

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/mutagen-io/meshsync/cmd"
	"github.com/mutagen-io/meshsync/pkg/scene"
)

// deleteMain is the entry point for the delete command.
func deleteMain(_ *cobra.Command, arguments []string) error {
	// Normalize paths.
	paths := make([]string, len(arguments))
	for i, argument := range arguments {
		path, err := scene.NormalizePath(argument)
		if err != nil {
			return errors.Wrapf(err, "invalid path (%s)", argument)
		}
		paths[i] = path
	}

	// Connect and delete.
	ctx, cancel := signalContext()
	defer cancel()
	c, err := dial(ctx)
	if err != nil {
		return err
	}
	defer c.Close()
	if deleteConfiguration.constraints {
		return c.Delete(ctx, nil, nil, paths)
	}
	return c.Delete(ctx, paths, nil, nil)
}

// deleteCommand is the delete command.
var deleteCommand = &cobra.Command{
	Use:          "delete <path>...",
	Short:        "Delete entities (and their descendants) on the server's host",
	Args:         cmd.MinimumArguments("path"),
	RunE:         deleteMain,
	SilenceUsage: true,
}

// deleteConfiguration stores configuration for the delete command.
var deleteConfiguration struct {
	// help indicates whether or not to show help information and exit.
	help bool
	// constraints indicates that only the constraints on the specified
	// entities should be removed.
	constraints bool
}

func init() {
	// Grab a handle for the command line flags.
	flags := deleteCommand.Flags()

	// Disable alphabetical sorting of flags in help output.
	flags.SortFlags = false

	// Manually add a help flag to override the default message. Cobra will
	// still implement its logic automatically.
	flags.BoolVarP(&deleteConfiguration.help, "help", "h", false, "Show help information")

	// Wire up delete flags.
	flags.BoolVar(&deleteConfiguration.constraints, "constraints", false, "Remove the constraints on the specified entities rather than the entities themselves")
}
