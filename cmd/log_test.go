package cmd

import (
	"testing"

	"github.com/mutagen-io/meshsync/pkg/logging"
)

// TestConfigureLogging tests ConfigureLogging.
func TestConfigureLogging(t *testing.T) {
	original := logging.RootLogger
	defer func() {
		logging.RootLogger = original
	}()

	// An empty name with no environment override leaves the logger in place.
	t.Setenv(LogLevelEnvironmentVariable, "")
	if err := ConfigureLogging(""); err != nil {
		t.Fatal("unable to configure default logging:", err)
	} else if logging.RootLogger != original {
		t.Error("root logger replaced without a level")
	}

	// An explicit level takes effect.
	if err := ConfigureLogging("debug"); err != nil {
		t.Fatal("unable to configure debug logging:", err)
	} else if logging.RootLogger.Level() != logging.LevelDebug {
		t.Error("unexpected level:", logging.RootLogger.Level())
	}

	// The environment is consulted when no name is given.
	t.Setenv(LogLevelEnvironmentVariable, "error")
	if err := ConfigureLogging(""); err != nil {
		t.Fatal("unable to configure logging from environment:", err)
	} else if logging.RootLogger.Level() != logging.LevelError {
		t.Error("unexpected level:", logging.RootLogger.Level())
	}

	// Invalid names are rejected.
	if err := ConfigureLogging("verbose"); err == nil {
		t.Error("invalid level accepted")
	}
}
