package cmd

import (
	"io/ioutil"
	"log"
	"os"

	"github.com/fatih/color"
	"github.com/pkg/errors"

	"github.com/mutagen-io/meshsync/pkg/configuration"
	"github.com/mutagen-io/meshsync/pkg/logging"
)

// LogLevelEnvironmentVariable is the environment variable consulted for the
// log level when none is specified on the command line.
const LogLevelEnvironmentVariable = configuration.EnvironmentPrefix + "LOG_LEVEL"

func init() {
	// Silence the default logger.
	log.SetOutput(ioutil.Discard)
}

// ConfigureLogging sets the root logger's level. If name is empty, the level
// is taken from the environment, falling back to the current level. Output is
// directed to standard error (via a color-aware writer so that escape
// sequences work on Windows consoles).
func ConfigureLogging(name string) error {
	// Determine the level name.
	if name == "" {
		name = os.Getenv(LogLevelEnvironmentVariable)
	}
	if name == "" {
		return nil
	}

	// Parse the level and replace the root logger.
	level, ok := logging.NameToLevel(name)
	if !ok {
		return errors.Errorf("invalid log level: %s", name)
	}
	logging.RootLogger = logging.NewLogger(level, color.Error)
	return nil
}
