package encoding

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
)

// testMagic is the magic header used for tagged file tests.
var testMagic = []byte("TEST1")

// TestTaggedCycle tests a save/load cycle of a tagged file.
func TestTaggedCycle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data")
	payload := []byte("payload")
	if err := MarshalAndSaveTagged(path, testMagic, func() ([]byte, error) {
		return payload, nil
	}); err != nil {
		t.Fatal("unable to save tagged file:", err)
	}

	// Verify the raw file contents.
	if raw, err := os.ReadFile(path); err != nil {
		t.Fatal("unable to read tagged file:", err)
	} else if !bytes.Equal(raw, append(append([]byte(nil), testMagic...), payload...)) {
		t.Error("raw file contents mismatch:", string(raw))
	}

	// Load the file back.
	var loaded []byte
	if err := LoadAndUnmarshalTagged(path, testMagic, func(data []byte) error {
		loaded = append(loaded, data...)
		return nil
	}); err != nil {
		t.Fatal("unable to load tagged file:", err)
	} else if !bytes.Equal(loaded, payload) {
		t.Error("loaded payload mismatch:", string(loaded))
	}
}

// TestTaggedMismatch tests that files lacking the magic header are rejected.
func TestTaggedMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data")
	if err := os.WriteFile(path, []byte("OTHER"), 0600); err != nil {
		t.Fatal("unable to write file:", err)
	}
	err := LoadAndUnmarshalTagged(path, testMagic, func([]byte) error {
		t.Error("callback invoked for mismatched file")
		return nil
	})
	if errors.Cause(err) != ErrMagicMismatch {
		t.Error("unexpected error:", err)
	}
}

// TestTaggedNotExist tests that non-existence errors pass through unwrapped.
func TestTaggedNotExist(t *testing.T) {
	err := LoadAndUnmarshalTagged(filepath.Join(t.TempDir(), "missing"), testMagic, func([]byte) error {
		return nil
	})
	if !os.IsNotExist(err) {
		t.Error("unexpected error for missing file:", err)
	}
}

// TestMarshalFailure tests that marshaling failures prevent writing.
func TestMarshalFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data")
	if err := MarshalAndSaveTagged(path, testMagic, func() ([]byte, error) {
		return nil, errors.New("marshal failure")
	}); err == nil {
		t.Error("marshaling failure not reported")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("file written despite marshaling failure")
	}
}
