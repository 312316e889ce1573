package main

import (
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/mutagen-io/meshsync/cmd"
	"github.com/mutagen-io/meshsync/pkg/configuration"
	"github.com/mutagen-io/meshsync/pkg/logging"
	"github.com/mutagen-io/meshsync/pkg/meshsync"
)

// environmentFile is the .env-style file consulted in the working directory.
const environmentFile = ".env"

// loadedConfiguration is the configuration loaded by the root command before
// any subcommand runs.
var loadedConfiguration *configuration.Configuration

// rootSetup loads environment files, configures logging, and loads the
// configuration.
func rootSetup(_ *cobra.Command, _ []string) error {
	// Shell completion doesn't require any setup and shouldn't fail because of
	// an invalid configuration.
	if cmd.PerformingShellCompletion {
		loadedConfiguration = configuration.Default()
		return nil
	}

	// Load environment files first so that they can affect the log level.
	if err := configuration.LoadEnvironmentFiles(environmentFile); err != nil {
		return err
	}

	// Configure logging.
	if err := cmd.ConfigureLogging(rootConfiguration.logLevel); err != nil {
		return err
	}

	// Load the configuration and apply overrides.
	c, err := configuration.LoadConfiguration(rootConfiguration.configuration)
	if err != nil {
		return err
	} else if err = c.ApplyEnvironment(); err != nil {
		return err
	}
	if rootConfiguration.server != "" {
		c.Client.ServerAddress = rootConfiguration.server
	}
	if err = c.Validate(); err != nil {
		return errors.Wrap(err, "invalid configuration")
	}
	loadedConfiguration = c

	// Success.
	return nil
}

// rootMain is the entry point for the root command.
func rootMain(command *cobra.Command, _ []string) error {
	// If no commands were given, then print help information and bail. We don't
	// have to worry about warning about arguments being present here (which
	// would be incorrect usage) because arguments can't even reach this point
	// (they will be mistaken for subcommands and a error will be displayed).
	command.Help()

	// Success.
	return nil
}

// rootCommand is the root command.
var rootCommand = &cobra.Command{
	Use:              "meshsync",
	Version:          meshsync.Version,
	Short:            "MeshSync replicates scene graphs between host applications",
	PersistentPreRun: cmd.Mainify(rootSetup),
	RunE:             rootMain,
	SilenceUsage:     true,
}

// rootConfiguration stores configuration for the root command.
var rootConfiguration struct {
	// help indicates whether or not to show help information and exit.
	help bool
	// configuration is the path to the configuration file.
	configuration string
	// logLevel is the name of the log level.
	logLevel string
	// server overrides the server address used by client commands.
	server string
}

func init() {
	// Disable Cobra's command sorting behavior. By default, it sorts commands
	// alphabetically in the help output.
	cobra.EnableCommandSorting = false

	// Set the template used by the version flag.
	rootCommand.SetVersionTemplate("MeshSync version {{ .Version }}\n")

	// Grab a handle for the command line flags.
	flags := rootCommand.Flags()

	// Disable alphabetical sorting of flags in help output.
	flags.SortFlags = false

	// Manually add a help flag to override the default message. Cobra will
	// still implement its logic automatically.
	flags.BoolVarP(&rootConfiguration.help, "help", "h", false, "Show help information")

	// Wire up global flags.
	persistentFlags := rootCommand.PersistentFlags()
	persistentFlags.SortFlags = false
	persistentFlags.StringVarP(&rootConfiguration.configuration, "config", "c", "", "Specify the configuration file path")
	persistentFlags.StringVar(&rootConfiguration.logLevel, "log-level", "", "Set the log level ("+strings.Join(logging.LevelNames(), "|")+")")
	persistentFlags.StringVar(&rootConfiguration.server, "server", "", "Override the server address used by client commands")

	// Register commands. We do this here (rather than in individual init
	// functions) so that we can control the order.
	rootCommand.AddCommand(
		serverCommand,
		sendCommand,
		deleteCommand,
		textCommand,
		queryCommand,
		getCommand,
		monitorCommand,
		diffCommand,
		exportOBJCommand,
		normalsCommand,
		versionCommand,
	)
}

func main() {
	// Handle terminal compatibility issues. If this call returns, then we
	// should proceed normally.
	cmd.HandleTerminalCompatibility()

	// Execute the root command.
	if err := rootCommand.Execute(); err != nil {
		os.Exit(1)
	}
}
