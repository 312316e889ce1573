package server

import (
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/mutagen-io/meshsync/pkg/filesystem"
	"github.com/mutagen-io/meshsync/pkg/filesystem/locking"
)

const (
	// lockName is the name of the server lock file within the server
	// subdirectory of the MeshSync data directory.
	lockName = "server.lock"
)

// Lock represents the server lock. It is held by a single server instance at
// a time so that replicas don't race to persist into the data directory.
type Lock struct {
	// locker is the underlying file locker.
	locker *locking.Locker
}

// LockPath computes the path to the server lock, creating the server
// subdirectory of the MeshSync data directory if necessary.
func LockPath() (string, error) {
	root, err := filesystem.MeshSync(true, filesystem.MeshSyncServerDirectoryName)
	if err != nil {
		return "", errors.Wrap(err, "unable to compute server directory")
	}
	return filepath.Join(root, lockName), nil
}

// AcquireLock attempts to acquire the server lock.
func AcquireLock() (*Lock, error) {
	// Compute the lock path.
	lockPath, err := LockPath()
	if err != nil {
		return nil, errors.Wrap(err, "unable to compute server lock path")
	}

	// Create the locker and attempt to acquire the lock.
	locker, err := locking.NewLocker(lockPath, 0600)
	if err != nil {
		return nil, errors.Wrap(err, "unable to create server file locker")
	} else if err = locker.Lock(false); err != nil {
		locker.Close()
		return nil, err
	}

	// Create the lock.
	return &Lock{
		locker: locker,
	}, nil
}

// Release releases the server lock.
func (l *Lock) Release() error {
	// Release the lock.
	if err := l.locker.Unlock(); err != nil {
		l.locker.Close()
		return err
	}

	// Close the locker.
	return errors.Wrap(l.locker.Close(), "unable to close locker")
}
