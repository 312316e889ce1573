package encoding

import (
	"os"
	"path/filepath"
	"testing"
)

// testMessageYAML is a test structure to use for encoding tests using YAML.
type testMessageYAML struct {
	Section struct {
		Name string `yaml:"name"`
		Port uint   `yaml:"port"`
	} `yaml:"section"`
}

const (
	// testMessageYAMLString is the YAML-encoded form of the YAML test data.
	testMessageYAMLString = `
section:
  name: "viewer"
  port: 8080
`
	// testMessageYAMLName is the YAML test name.
	testMessageYAMLName = "viewer"
	// testMessageYAMLPort is the YAML test port.
	testMessageYAMLPort = 8080
)

// writeTestFile writes the specified contents to a file in a temporary
// directory and returns its path.
func writeTestFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.yaml")
	if err := os.WriteFile(path, []byte(contents), 0600); err != nil {
		t.Fatal("unable to write test file:", err)
	}
	return path
}

// TestLoadAndUnmarshalYAML tests that loading and unmarshaling YAML data
// succeeds.
func TestLoadAndUnmarshalYAML(t *testing.T) {
	// Attempt to load and unmarshal.
	value := &testMessageYAML{}
	if err := LoadAndUnmarshalYAML(writeTestFile(t, testMessageYAMLString), value); err != nil {
		t.Fatal("LoadAndUnmarshalYAML failed:", err)
	}

	// Verify test values.
	if value.Section.Name != testMessageYAMLName {
		t.Error("test message name mismatch:", value.Section.Name, "!=", testMessageYAMLName)
	}
	if value.Section.Port != testMessageYAMLPort {
		t.Error("test message port mismatch:", value.Section.Port, "!=", testMessageYAMLPort)
	}
}

// TestLoadAndUnmarshalYAMLUnknownField tests that unknown fields are rejected.
func TestLoadAndUnmarshalYAMLUnknownField(t *testing.T) {
	path := writeTestFile(t, "section:\n  name: viewer\n  colour: red\n")
	if LoadAndUnmarshalYAML(path, &testMessageYAML{}) == nil {
		t.Error("unknown field accepted")
	}
}

// TestLoadAndUnmarshalYAMLEmpty tests that an empty document is accepted.
func TestLoadAndUnmarshalYAMLEmpty(t *testing.T) {
	value := &testMessageYAML{}
	if err := LoadAndUnmarshalYAML(writeTestFile(t, "\n"), value); err != nil {
		t.Fatal("empty document rejected:", err)
	}
	if value.Section.Name != "" {
		t.Error("empty document populated value")
	}
}

// TestLoadAndUnmarshalNonExistentPath tests that non-existence errors pass
// through unwrapped.
func TestLoadAndUnmarshalNonExistentPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.yaml")
	if !os.IsNotExist(LoadAndUnmarshalYAML(path, &testMessageYAML{})) {
		t.Error("expected non-existence error to pass through")
	}
}

// TestMarshalAndSaveYAMLCycle tests that saved YAML can be loaded again.
func TestMarshalAndSaveYAMLCycle(t *testing.T) {
	original := &testMessageYAML{}
	original.Section.Name = testMessageYAMLName
	original.Section.Port = testMessageYAMLPort

	path := filepath.Join(t.TempDir(), "saved.yaml")
	if err := MarshalAndSaveYAML(path, original); err != nil {
		t.Fatal("unable to save YAML:", err)
	}

	loaded := &testMessageYAML{}
	if err := LoadAndUnmarshalYAML(path, loaded); err != nil {
		t.Fatal("unable to load YAML:", err)
	}
	if *loaded != *original {
		t.Error("loaded value does not match saved value")
	}
}
