// Package locking provides cross-process advisory file locks. The server uses
// them to ensure that only one instance persists into a given data directory.
package locking

import (
	"os"

	"github.com/pkg/errors"
)

// Locker provides file locking facilities.
type Locker struct {
	// file is the underlying file object that's locked.
	file *os.File
	// held indicates whether or not the lock is currently held.
	held bool
}

// NewLocker attempts to create a lock with the file at the specified path,
// creating the file if necessary. The lock is returned in an unlocked state.
func NewLocker(path string, permissions os.FileMode) (*Locker, error) {
	mode := os.O_RDWR | os.O_CREATE | os.O_APPEND
	file, err := os.OpenFile(path, mode, permissions)
	if err != nil {
		return nil, errors.Wrap(err, "unable to open lock file")
	}
	return &Locker{file: file}, nil
}

// Held returns whether or not the lock is currently held.
func (l *Locker) Held() bool {
	return l.held
}

// Lock attempts to acquire the file lock. If block is false and the lock is
// held elsewhere, an error is returned immediately.
func (l *Locker) Lock(block bool) error {
	if l.held {
		return errors.New("lock already held")
	}
	if err := l.lock(block); err != nil {
		return err
	}
	l.held = true
	return nil
}

// Unlock releases the file lock.
func (l *Locker) Unlock() error {
	if !l.held {
		return errors.New("lock not held")
	}
	if err := l.unlock(); err != nil {
		return err
	}
	l.held = false
	return nil
}

// Close closes the file underlying the locker. This will release any lock held
// on the file and disable future locking. On POSIX platforms, this also
// releases other locks held on the same file.
func (l *Locker) Close() error {
	l.held = false
	return l.file.Close()
}
