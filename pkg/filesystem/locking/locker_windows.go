package locking

import (
	"golang.org/x/sys/windows"
)

// lock performs platform-specific lock acquisition.
func (l *Locker) lock(block bool) error {
	var overlapped windows.Overlapped
	flags := uint32(windows.LOCKFILE_EXCLUSIVE_LOCK)
	if !block {
		flags |= windows.LOCKFILE_FAIL_IMMEDIATELY
	}
	return windows.LockFileEx(windows.Handle(l.file.Fd()), flags, 0, 1, 0, &overlapped)
}

// unlock performs platform-specific lock release.
func (l *Locker) unlock() error {
	var overlapped windows.Overlapped
	return windows.UnlockFileEx(windows.Handle(l.file.Fd()), 0, 1, 0, &overlapped)
}
