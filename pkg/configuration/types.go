package configuration

import (
	"time"

	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"
)

// ByteSize is a uint64 value that supports unmarshalling from both
// human-friendly string representations and numeric representations. It can be
// cast to a uint64 value, where it represents a byte count.
type ByteSize uint64

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *ByteSize) UnmarshalText(textBytes []byte) error {
	// Parse the value.
	value, err := humanize.ParseBytes(string(textBytes))
	if err != nil {
		return err
	}

	// Store the value.
	*s = ByteSize(value)

	// Success.
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *ByteSize) UnmarshalYAML(value *yaml.Node) error {
	return s.UnmarshalText([]byte(value.Value))
}

// String returns a human-friendly representation of the size.
func (s ByteSize) String() string {
	return humanize.IBytes(uint64(s))
}

// Duration is a time.Duration that unmarshals from Go duration strings, such as
// "1.5s" or "250ms".
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(textBytes []byte) error {
	value, err := time.ParseDuration(string(textBytes))
	if err != nil {
		return err
	}
	*d = Duration(value)
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	return d.UnmarshalText([]byte(value.Value))
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// String returns the duration in Go duration notation.
func (d Duration) String() string {
	return time.Duration(d).String()
}
