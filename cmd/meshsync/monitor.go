package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mutagen-io/meshsync/cmd"
	"github.com/mutagen-io/meshsync/pkg/message"
)

// formatStatus formats a server status for display on a status line.
func formatStatus(status *message.Status) string {
	line := fmt.Sprintf("Index %d: %s messages in %s batches",
		status.Index,
		humanize.Comma(int64(status.Messages)),
		humanize.Comma(int64(status.Batches)),
	)
	if status.Queued > 0 || status.Pending > 0 {
		line += fmt.Sprintf(", %d queued, %d pending", status.Queued, status.Pending)
	}
	if status.Sessions > 0 {
		line += color.YellowString(", %d open fences", status.Sessions)
	}
	return line
}

// monitorMain is the entry point for the monitor command.
func monitorMain(_ *cobra.Command, _ []string) error {
	// Connect to the server.
	ctx, cancel := signalContext()
	defer cancel()
	c, err := dial(ctx)
	if err != nil {
		return err
	}
	defer c.Close()

	// Long-poll the server status until interrupted.
	printer := &cmd.StatusLinePrinter{}
	defer printer.BreakIfNonEmpty()
	var index uint64
	var serverID string
	for {
		status, err := c.Poll(ctx, index)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		if serverID != "" && status.ServerID != serverID {
			printer.BreakIfNonEmpty()
			cmd.Warning("server restarted")
		}
		serverID = status.ServerID
		index = status.Index
		printer.Print(formatStatus(status))
	}
}

// monitorCommand is the monitor command.
var monitorCommand = &cobra.Command{
	Use:          "monitor",
	Short:        "Show live server status",
	Args:         cmd.DisallowArguments,
	RunE:         monitorMain,
	SilenceUsage: true,
}

// monitorConfiguration stores configuration for the monitor command.
var monitorConfiguration struct {
	// help indicates whether or not to show help information and exit.
	help bool
}

func init() {
	// Grab a handle for the command line flags.
	flags := monitorCommand.Flags()

	// Disable alphabetical sorting of flags in help output.
	flags.SortFlags = false

	// Manually add a help flag to override the default message. Cobra will
	// still implement its logic automatically.
	flags.BoolVarP(&monitorConfiguration.help, "help", "h", false, "Show help information")
}
