package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/mutagen-io/meshsync/cmd"
	"github.com/mutagen-io/meshsync/pkg/client"
	"github.com/mutagen-io/meshsync/pkg/logging"
	"github.com/mutagen-io/meshsync/pkg/scene"
)

// sendMain is the entry point for the send command.
func sendMain(_ *cobra.Command, arguments []string) error {
	// Load the scene.
	data, err := scene.Load(arguments[0])
	if err != nil {
		return errors.Wrap(err, "unable to load scene")
	}

	// Connect to the server.
	ctx, cancel := signalContext()
	defer cancel()
	c, err := dial(ctx)
	if err != nil {
		return err
	}
	defer c.Close()

	// Create a synchronizer and perform a full synchronization.
	settings := client.NewSyncSettings(&loadedConfiguration.Client)
	settings.Ignore = append(settings.Ignore, sendConfiguration.ignore...)
	synchronizer, err := client.NewSynchronizer(c, settings, logging.RootLogger.Sublogger("sync"))
	if err != nil {
		return err
	}
	result, err := synchronizer.Sync(ctx, data)
	if err != nil {
		return err
	}

	// Print a summary.
	fmt.Printf("Sent %d entities, %d materials, and %d constraints in %d batches\n",
		result.Entities, result.Materials, result.Constraints, result.Batches)

	// Success.
	return nil
}

// sendCommand is the send command.
var sendCommand = &cobra.Command{
	Use:          "send <scene-file>",
	Short:        "Send a saved scene to the server",
	Args:         cmd.ExactArguments("scene-file"),
	RunE:         sendMain,
	SilenceUsage: true,
}

// sendConfiguration stores configuration for the send command.
var sendConfiguration struct {
	// help indicates whether or not to show help information and exit.
	help bool
	// ignore are additional ignore patterns.
	ignore []string
}

func init() {
	// Grab a handle for the command line flags.
	flags := sendCommand.Flags()

	// Disable alphabetical sorting of flags in help output.
	flags.SortFlags = false

	// Manually add a help flag to override the default message. Cobra will
	// still implement its logic automatically.
	flags.BoolVarP(&sendConfiguration.help, "help", "h", false, "Show help information")

	// Wire up send flags.
	flags.StringSliceVarP(&sendConfiguration.ignore, "ignore", "i", nil, "Specify additional ignore patterns")
}
