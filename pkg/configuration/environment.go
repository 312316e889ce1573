package configuration

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

// EnvironmentPrefix is the prefix shared by all MeshSync environment
// variables.
const EnvironmentPrefix = "MESHSYNC_"

// LoadEnvironmentFiles loads variables from .env-style files into the process
// environment. Variables that are already set are not overridden and missing
// files are skipped.
func LoadEnvironmentFiles(paths ...string) error {
	for _, path := range paths {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return errors.Wrapf(err, "unable to load environment file (%s)", path)
		}
	}
	return nil
}

// environmentOverride describes a single environment variable override.
type environmentOverride struct {
	// name is the variable name without the common prefix.
	name string
	// apply parses the variable value and stores it in the configuration.
	apply func(*Configuration, string) error
}

// parseInt stores an integer value.
func parseInt(target *int) func(string) error {
	return func(value string) error {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return err
		}
		*target = parsed
		return nil
	}
}

// parseBool stores a boolean value.
func parseBool(target *bool) func(string) error {
	return func(value string) error {
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		*target = parsed
		return nil
	}
}

// environmentOverrides are the supported environment variable overrides.
var environmentOverrides = []environmentOverride{
	{"SERVER_LISTEN", func(c *Configuration, v string) error {
		c.Server.ListenAddress = v
		return nil
	}},
	{"SERVER_MONITOR", func(c *Configuration, v string) error {
		c.Server.MonitorAddress = v
		return nil
	}},
	{"SERVER_MAX_CONNECTIONS", func(c *Configuration, v string) error {
		return parseInt(&c.Server.MaximumConnections)(v)
	}},
	{"SERVER_QUEUE_CAPACITY", func(c *Configuration, v string) error {
		return parseInt(&c.Server.QueueCapacity)(v)
	}},
	{"SERVER_REQUEST_TIMEOUT", func(c *Configuration, v string) error {
		return c.Server.RequestTimeout.UnmarshalText([]byte(v))
	}},
	{"SERVER_FENCE_TIMEOUT", func(c *Configuration, v string) error {
		return c.Server.FenceTimeout.UnmarshalText([]byte(v))
	}},
	{"SERVER_MAX_MESSAGE_SIZE", func(c *Configuration, v string) error {
		return c.Server.MaximumMessageSize.UnmarshalText([]byte(v))
	}},
	{"SERVER_SAVE", func(c *Configuration, v string) error {
		c.Server.SavePath = v
		return nil
	}},
	{"CLIENT_SERVER", func(c *Configuration, v string) error {
		c.Client.ServerAddress = v
		return nil
	}},
	{"CLIENT_TIMEOUT", func(c *Configuration, v string) error {
		return c.Client.Timeout.UnmarshalText([]byte(v))
	}},
	{"CLIENT_SCALE_FACTOR", func(c *Configuration, v string) error {
		parsed, err := strconv.ParseFloat(v, 32)
		if err != nil {
			return err
		}
		c.Client.ScaleFactor = float32(parsed)
		return nil
	}},
	{"CLIENT_FLIP_HANDEDNESS", func(c *Configuration, v string) error {
		return parseBool(&c.Client.FlipHandedness)(v)
	}},
	{"CLIENT_SYNC_MESHES", func(c *Configuration, v string) error {
		return parseBool(&c.Client.Sync.Meshes)(v)
	}},
	{"CLIENT_SYNC_CAMERAS", func(c *Configuration, v string) error {
		return parseBool(&c.Client.Sync.Cameras)(v)
	}},
	{"CLIENT_SYNC_LIGHTS", func(c *Configuration, v string) error {
		return parseBool(&c.Client.Sync.Lights)(v)
	}},
	{"CLIENT_SYNC_CONSTRAINTS", func(c *Configuration, v string) error {
		return parseBool(&c.Client.Sync.Constraints)(v)
	}},
	{"CLIENT_BATCH_SIZE", func(c *Configuration, v string) error {
		return parseInt(&c.Client.BatchSize)(v)
	}},
	{"CLIENT_BATCH_BYTES", func(c *Configuration, v string) error {
		return c.Client.BatchBytes.UnmarshalText([]byte(v))
	}},
	{"CLIENT_CACHE_SIZE", func(c *Configuration, v string) error {
		return parseInt(&c.Client.CacheSize)(v)
	}},
	{"CLIENT_IGNORE", func(c *Configuration, v string) error {
		c.Client.Ignore = nil
		for _, pattern := range strings.Split(v, ",") {
			if pattern = strings.TrimSpace(pattern); pattern != "" {
				c.Client.Ignore = append(c.Client.Ignore, pattern)
			}
		}
		return nil
	}},
}

// ApplyEnvironment overrides configuration values with any MESHSYNC_*
// variables set in the process environment. Empty variables are ignored.
func (c *Configuration) ApplyEnvironment() error {
	for _, override := range environmentOverrides {
		name := EnvironmentPrefix + override.name
		value, ok := os.LookupEnv(name)
		if !ok || value == "" {
			continue
		}
		if err := override.apply(c, value); err != nil {
			return errors.Wrapf(err, "invalid value for %s", name)
		}
	}
	return nil
}
