package encoding

import (
	"bytes"

	"gopkg.in/yaml.v3"
)

// UnmarshalYAMLStrict decodes YAML data into the specified value, rejecting
// unknown fields.
func UnmarshalYAMLStrict(data []byte, value interface{}) error {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	return decoder.Decode(value)
}

// LoadAndUnmarshalYAML loads data from the specified path and decodes it into
// the specified structure. Unknown fields are rejected.
func LoadAndUnmarshalYAML(path string, value interface{}) error {
	return LoadAndUnmarshal(path, func(data []byte) error {
		// An empty document decodes to io.EOF, which we treat as an empty
		// value.
		if len(bytes.TrimSpace(data)) == 0 {
			return nil
		}
		return UnmarshalYAMLStrict(data, value)
	})
}

// MarshalAndSaveYAML marshals the specified value as YAML and saves it to the
// specified path.
func MarshalAndSaveYAML(path string, value interface{}) error {
	return MarshalAndSave(path, func() ([]byte, error) {
		return yaml.Marshal(value)
	})
}
