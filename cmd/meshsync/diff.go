package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/mutagen-io/meshsync/cmd"
	"github.com/mutagen-io/meshsync/pkg/scene"
)

// diffMain is the entry point for the diff command.
func diffMain(_ *cobra.Command, arguments []string) error {
	// Load both scenes. The target is converted to the base's conventions so
	// that differing conventions alone don't register as changes.
	base, err := scene.Load(arguments[0])
	if err != nil {
		return errors.Wrap(err, "unable to load base scene")
	}
	target, err := scene.Load(arguments[1])
	if err != nil {
		return errors.Wrap(err, "unable to load target scene")
	}
	target = target.Convert(base.Settings)

	// Compute and print changes.
	changes := scene.Diff(base, target)
	for _, change := range changes {
		switch {
		case change.IsRemoval():
			color.Red("- %s", change.Path)
		case change.Old == nil:
			color.Green("+ %s (%s)", change.Path, change.New.Type)
		default:
			color.Yellow("~ %s", change.Path)
		}
	}
	if len(changes) == 0 && !diffConfiguration.quiet {
		fmt.Println("No differences")
	}

	// Success.
	return nil
}

// diffCommand is the diff command.
var diffCommand = &cobra.Command{
	Use:          "diff <a> <b>",
	Short:        "Show entity differences between two saved scenes",
	Args:         cmd.ExactArguments("a", "b"),
	RunE:         diffMain,
	SilenceUsage: true,
}

// diffConfiguration stores configuration for the diff command.
var diffConfiguration struct {
	// help indicates whether or not to show help information and exit.
	help bool
	// quiet suppresses output when there are no differences.
	quiet bool
}

func init() {
	// Grab a handle for the command line flags.
	flags := diffCommand.Flags()

	// Disable alphabetical sorting of flags in help output.
	flags.SortFlags = false

	// Manually add a help flag to override the default message. Cobra will
	// still implement its logic automatically.
	flags.BoolVarP(&diffConfiguration.help, "help", "h", false, "Show help information")

	// Wire up diff flags.
	flags.BoolVarP(&diffConfiguration.quiet, "quiet", "q", false, "Print nothing if the scenes are identical")
}
