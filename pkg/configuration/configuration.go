package configuration

import (
	"fmt"
	"os"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pkg/errors"

	"github.com/mutagen-io/meshsync/pkg/encoding"
	"github.com/mutagen-io/meshsync/pkg/filesystem"
	"github.com/mutagen-io/meshsync/pkg/meshsync"
)

const (
	// DefaultQueueCapacity is the default number of messages that a server
	// will hold before rejecting new messages.
	DefaultQueueCapacity = 1024
	// DefaultRequestTimeout is the default time that a server will wait for
	// its host to answer a request.
	DefaultRequestTimeout = 30 * time.Second
	// DefaultFenceTimeout is the default time that a server will hold an
	// idle fence open before discarding it and its held messages.
	DefaultFenceTimeout = 2 * time.Minute
	// DefaultMaximumConnections is the default limit on simultaneous server
	// connections.
	DefaultMaximumConnections = 64
	// DefaultClientTimeout is the default per-call client timeout.
	DefaultClientTimeout = 30 * time.Second
	// DefaultBatchSize is the default maximum number of entities sent in a
	// single set message.
	DefaultBatchSize = 64
	// DefaultBatchBytes is the default approximate byte budget for a single
	// set message.
	DefaultBatchBytes = 16 * 1024 * 1024
	// DefaultCacheSize is the default number of entity hashes remembered by
	// a synchronizer.
	DefaultCacheSize = 65536
)

// ServerConfiguration is the server section of the configuration.
type ServerConfiguration struct {
	// ListenAddress is the TCP address on which the server listens.
	ListenAddress string `yaml:"listen"`
	// MonitorAddress is the optional TCP address on which the WebSocket
	// monitor is served. If empty, the monitor is disabled.
	MonitorAddress string `yaml:"monitor,omitempty"`
	// MaximumConnections is the maximum number of simultaneous connections.
	MaximumConnections int `yaml:"maxConnections"`
	// QueueCapacity is the maximum number of queued messages.
	QueueCapacity int `yaml:"queueCapacity"`
	// RequestTimeout is the time to wait for the host to answer a request.
	RequestTimeout Duration `yaml:"requestTimeout"`
	// FenceTimeout is the time that a fence may go without activity before
	// it's discarded along with its held messages.
	FenceTimeout Duration `yaml:"fenceTimeout"`
	// MaximumMessageSize is the largest message that will be accepted.
	MaximumMessageSize ByteSize `yaml:"maxMessageSize"`
	// SavePath is the optional path to which the replica scene is saved after
	// each update.
	SavePath string `yaml:"save,omitempty"`
}

// ClientConfiguration is the client section of the configuration.
type ClientConfiguration struct {
	// ServerAddress is the address of the server to which the client
	// connects.
	ServerAddress string `yaml:"server"`
	// Timeout is the per-call timeout.
	Timeout Duration `yaml:"timeout"`
	// ScaleFactor is applied to positions before sending.
	ScaleFactor float32 `yaml:"scaleFactor"`
	// FlipHandedness indicates that data should be converted between left-
	// and right-handed coordinate systems before sending.
	FlipHandedness bool `yaml:"flipHandedness"`
	// Sync controls which entity types are synchronized.
	Sync struct {
		// Meshes enables mesh synchronization.
		Meshes bool `yaml:"meshes"`
		// Cameras enables camera synchronization.
		Cameras bool `yaml:"cameras"`
		// Lights enables light synchronization.
		Lights bool `yaml:"lights"`
		// Constraints enables constraint synchronization.
		Constraints bool `yaml:"constraints"`
	} `yaml:"sync"`
	// BatchSize is the maximum number of entities per set message.
	BatchSize int `yaml:"batchSize"`
	// BatchBytes is the approximate byte budget per set message.
	BatchBytes ByteSize `yaml:"batchBytes"`
	// CacheSize is the number of entity hashes remembered between syncs.
	CacheSize int `yaml:"cacheSize"`
	// Ignore is a list of entity path patterns to exclude from
	// synchronization. Patterns prefixed with "!" re-include paths.
	Ignore []string `yaml:"ignore,omitempty"`
}

// Configuration is the MeshSync YAML configuration object type.
type Configuration struct {
	// Server is the server configuration.
	Server ServerConfiguration `yaml:"server"`
	// Client is the client configuration.
	Client ClientConfiguration `yaml:"client"`
}

// Default returns the default configuration.
func Default() *Configuration {
	address := fmt.Sprintf("127.0.0.1:%d", meshsync.DefaultPort)
	result := &Configuration{
		Server: ServerConfiguration{
			ListenAddress:      address,
			MaximumConnections: DefaultMaximumConnections,
			QueueCapacity:      DefaultQueueCapacity,
			RequestTimeout:     Duration(DefaultRequestTimeout),
			FenceTimeout:       Duration(DefaultFenceTimeout),
			MaximumMessageSize: ByteSize(meshsync.DefaultMaximumMessageSize),
		},
		Client: ClientConfiguration{
			ServerAddress: address,
			Timeout:       Duration(DefaultClientTimeout),
			ScaleFactor:   1,
			BatchSize:     DefaultBatchSize,
			BatchBytes:    DefaultBatchBytes,
			CacheSize:     DefaultCacheSize,
		},
	}
	result.Client.Sync.Meshes = true
	result.Client.Sync.Cameras = true
	result.Client.Sync.Lights = true
	result.Client.Sync.Constraints = true
	return result
}

// Path returns the path of the default configuration file. It does not verify
// that the file exists.
func Path() (string, error) {
	path, err := filesystem.MeshSync(false, filesystem.MeshSyncConfigurationName)
	if err != nil {
		return "", errors.Wrap(err, "unable to compute configuration path")
	}
	return path, nil
}

// LoadConfiguration loads a configuration file on top of the default
// configuration. If path is empty, the default configuration path is used. A
// non-existent file yields the default configuration unless the path was
// specified explicitly.
func LoadConfiguration(path string) (*Configuration, error) {
	// Compute the path if necessary.
	explicit := path != ""
	if !explicit {
		var err error
		if path, err = Path(); err != nil {
			return nil, err
		}
	}

	// Start with defaults so that any fields absent from the file retain
	// their default values.
	result := Default()

	// Attempt to load.
	if err := encoding.LoadAndUnmarshalYAML(path, result); err != nil {
		if !os.IsNotExist(err) || explicit {
			return nil, errors.Wrap(err, "unable to load configuration")
		}
	}

	// Success.
	return result, nil
}

// Save saves the configuration to the specified path.
func (c *Configuration) Save(path string) error {
	return encoding.MarshalAndSaveYAML(path, c)
}

// Validate ensures that the configuration is usable.
func (c *Configuration) Validate() error {
	// Validate the server section.
	if c.Server.ListenAddress == "" {
		return errors.New("empty server listen address")
	} else if c.Server.MaximumConnections < 0 {
		return errors.New("negative maximum connection count")
	} else if c.Server.QueueCapacity <= 0 {
		return errors.New("non-positive queue capacity")
	} else if c.Server.RequestTimeout <= 0 {
		return errors.New("non-positive request timeout")
	} else if c.Server.FenceTimeout <= 0 {
		return errors.New("non-positive fence timeout")
	} else if c.Server.MaximumMessageSize == 0 {
		return errors.New("zero maximum message size")
	}

	// Validate the client section.
	if c.Client.ServerAddress == "" {
		return errors.New("empty client server address")
	} else if c.Client.Timeout <= 0 {
		return errors.New("non-positive client timeout")
	} else if c.Client.ScaleFactor <= 0 {
		return errors.New("non-positive scale factor")
	} else if c.Client.BatchSize <= 0 {
		return errors.New("non-positive batch size")
	} else if c.Client.BatchBytes == 0 {
		return errors.New("zero batch byte budget")
	} else if c.Client.CacheSize <= 0 {
		return errors.New("non-positive cache size")
	}
	for _, pattern := range c.Client.Ignore {
		if err := ValidateIgnorePattern(pattern); err != nil {
			return errors.Wrapf(err, "invalid ignore pattern (%s)", pattern)
		}
	}

	// Success.
	return nil
}

// ValidateIgnorePattern ensures that an ignore pattern is well-formed.
func ValidateIgnorePattern(pattern string) error {
	if len(pattern) > 0 && pattern[0] == '!' {
		pattern = pattern[1:]
	}
	if pattern == "" || pattern == "/" {
		return errors.New("empty pattern")
	} else if !doublestar.ValidatePattern(pattern) {
		return errors.New("malformed pattern")
	}
	return nil
}
