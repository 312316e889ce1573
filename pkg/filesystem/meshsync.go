package filesystem

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

const (
	// MeshSyncDataDirectoryName is the name of the global MeshSync data
	// directory inside the user's home directory.
	MeshSyncDataDirectoryName = ".meshsync"

	// MeshSyncConfigurationName is the name of the global MeshSync
	// configuration file inside the MeshSync data directory.
	MeshSyncConfigurationName = "meshsync.yml"

	// MeshSyncServerDirectoryName is the name of the server storage directory
	// within the MeshSync data directory.
	MeshSyncServerDirectoryName = "server"

	// MeshSyncScenesDirectoryName is the name of the scene storage directory
	// within the MeshSync data directory.
	MeshSyncScenesDirectoryName = "scenes"
)

// DataDirectoryEnvironmentVariable is the environment variable that, if set,
// overrides the location of the MeshSync data directory.
const DataDirectoryEnvironmentVariable = "MESHSYNC_DATA_DIRECTORY"

// MeshSync computes (and optionally creates) subdirectories inside the
// MeshSync data directory.
func MeshSync(create bool, pathComponents ...string) (string, error) {
	// Compute the path to the MeshSync data directory.
	root := os.Getenv(DataDirectoryEnvironmentVariable)
	if root == "" {
		homeDirectory, err := os.UserHomeDir()
		if err != nil {
			return "", errors.Wrap(err, "unable to compute path to home directory")
		}
		root = filepath.Join(homeDirectory, MeshSyncDataDirectoryName)
	}

	// Compute the target path.
	result := filepath.Join(root, filepath.Join(pathComponents...))

	// If requested, attempt to create the target path.
	if create {
		if err := os.MkdirAll(result, 0700); err != nil {
			return "", errors.Wrap(err, "unable to create subpath")
		}
	}

	// Success.
	return result, nil
}
