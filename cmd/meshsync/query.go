package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mutagen-io/meshsync/cmd"
	"github.com/mutagen-io/meshsync/pkg/message"
)

// queryMain is the entry point for the query command.
func queryMain(_ *cobra.Command, arguments []string) error {
	// Parse the query type.
	typ, err := message.ParseQueryType(arguments[0])
	if err != nil {
		return err
	}

	// Connect and query.
	ctx, cancel := signalContext()
	defer cancel()
	c, err := dial(ctx)
	if err != nil {
		return err
	}
	defer c.Close()
	answers, err := c.Query(ctx, typ)
	if err != nil {
		return err
	}

	// Print the answers.
	for _, answer := range answers {
		fmt.Println(answer)
	}

	// Success.
	return nil
}

// queryCommand is the query command.
var queryCommand = &cobra.Command{
	Use:          "query <client-name|root-nodes|all-nodes|pid|version>",
	Short:        "Query information from the server's host",
	Args:         cmd.ExactArguments("type"),
	RunE:         queryMain,
	SilenceUsage: true,
	ValidArgs:    []string{"client-name", "root-nodes", "all-nodes", "pid", "version"},
}

// queryConfiguration stores configuration for the query command.
var queryConfiguration struct {
	// help indicates whether or not to show help information and exit.
	help bool
}

func init() {
	// Grab a handle for the command line flags.
	flags := queryCommand.Flags()

	// Disable alphabetical sorting of flags in help output.
	flags.SortFlags = false

	// Manually add a help flag to override the default message. Cobra will
	// still implement its logic automatically.
	flags.BoolVarP(&queryConfiguration.help, "help", "h", false, "Show help information")
}
