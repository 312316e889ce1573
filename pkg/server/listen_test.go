package server

import (
	"net"
	"testing"

	"github.com/mutagen-io/meshsync/pkg/filesystem"
)

// TestListen tests listener creation and connection limiting.
func TestListen(t *testing.T) {
	listener, err := Listen("127.0.0.1:0", 1)
	if err != nil {
		t.Fatal("unable to create listener:", err)
	}
	defer listener.Close()

	connection, err := net.Dial("tcp", listener.Addr().String())
	if err != nil {
		t.Fatal("unable to dial listener:", err)
	}
	defer connection.Close()
	accepted, err := listener.Accept()
	if err != nil {
		t.Fatal("unable to accept connection:", err)
	}
	accepted.Close()
}

// TestListenInvalidAddress tests that invalid addresses are rejected.
func TestListenInvalidAddress(t *testing.T) {
	if _, err := Listen("invalid:address:here", 0); err == nil {
		t.Error("listener created on invalid address")
	}
}

// TestLockCycle tests an acquisition/release cycle of the server lock.
func TestLockCycle(t *testing.T) {
	t.Setenv(filesystem.DataDirectoryEnvironmentVariable, t.TempDir())
	lock, err := AcquireLock()
	if err != nil {
		t.Fatal("unable to acquire lock:", err)
	}
	if err := lock.Release(); err != nil {
		t.Fatal("unable to release lock:", err)
	}
}
