package main

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/mutagen-io/meshsync/cmd"
	"github.com/mutagen-io/meshsync/pkg/message"
)

// textMain is the entry point for the text command.
func textMain(_ *cobra.Command, arguments []string) error {
	// Determine the message severity.
	typ := message.TextNormal
	if textConfiguration.warning && textConfiguration.error {
		return errors.New("--warning and --error are mutually exclusive")
	} else if textConfiguration.warning {
		typ = message.TextWarning
	} else if textConfiguration.error {
		typ = message.TextError
	}

	// Connect and send.
	ctx, cancel := signalContext()
	defer cancel()
	c, err := dial(ctx)
	if err != nil {
		return err
	}
	defer c.Close()
	return c.Text(ctx, strings.Join(arguments, " "), typ)
}

// textCommand is the text command.
var textCommand = &cobra.Command{
	Use:          "text <message>",
	Short:        "Send a log message to the server's host",
	Args:         cmd.MinimumArguments("message"),
	RunE:         textMain,
	SilenceUsage: true,
}

// textConfiguration stores configuration for the text command.
var textConfiguration struct {
	// help indicates whether or not to show help information and exit.
	help bool
	// warning marks the message as a warning.
	warning bool
	// error marks the message as an error.
	error bool
}

func init() {
	// Grab a handle for the command line flags.
	flags := textCommand.Flags()

	// Disable alphabetical sorting of flags in help output.
	flags.SortFlags = false

	// Manually add a help flag to override the default message. Cobra will
	// still implement its logic automatically.
	flags.BoolVarP(&textConfiguration.help, "help", "h", false, "Show help information")

	// Wire up severity flags.
	flags.BoolVarP(&textConfiguration.warning, "warning", "w", false, "Send the message as a warning")
	flags.BoolVarP(&textConfiguration.error, "error", "e", false, "Send the message as an error")
}
