package filesystem

import (
	"os"
	"path/filepath"
	"testing"
)

// TestMeshSyncOverride tests that the data directory honors its environment
// override and creates subpaths on request.
func TestMeshSyncOverride(t *testing.T) {
	root := t.TempDir()
	t.Setenv(DataDirectoryEnvironmentVariable, root)

	path, err := MeshSync(true, MeshSyncServerDirectoryName)
	if err != nil {
		t.Fatal("unable to compute data subdirectory:", err)
	}
	if expected := filepath.Join(root, MeshSyncServerDirectoryName); path != expected {
		t.Error("subdirectory path mismatch:", path, "!=", expected)
	}
	if info, err := os.Stat(path); err != nil || !info.IsDir() {
		t.Error("subdirectory was not created")
	}
}

// TestMeshSyncNoCreate tests that subpaths aren't created unless requested.
func TestMeshSyncNoCreate(t *testing.T) {
	root := t.TempDir()
	t.Setenv(DataDirectoryEnvironmentVariable, root)

	path, err := MeshSync(false, MeshSyncScenesDirectoryName)
	if err != nil {
		t.Fatal("unable to compute data subdirectory:", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("subdirectory unexpectedly exists")
	}
}
