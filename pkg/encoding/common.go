package encoding

import (
	"bytes"
	"os"

	"github.com/pkg/errors"

	"github.com/mutagen-io/meshsync/pkg/filesystem"
)

// ErrMagicMismatch indicates that a file lacks its expected identifying
// header.
var ErrMagicMismatch = errors.New("file header mismatch")

// LoadAndUnmarshal reads the file at path and passes its contents to the
// unmarshaling callback (usually a closure). Non-existence errors are passed
// through unwrapped so that callers can detect them with os.IsNotExist.
func LoadAndUnmarshal(path string, unmarshal func([]byte) error) error {
	// Grab the file contents.
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return err
		}
		return errors.Wrap(err, "unable to load file")
	}

	// Perform the unmarshaling.
	if err := unmarshal(data); err != nil {
		return errors.Wrap(err, "unable to unmarshal data")
	}

	// Success.
	return nil
}

// LoadAndUnmarshalTagged is a variant of LoadAndUnmarshal for files that begin
// with an identifying magic header. The header is verified and stripped before
// the remaining data is passed to the callback.
func LoadAndUnmarshalTagged(path string, magic []byte, unmarshal func([]byte) error) error {
	return LoadAndUnmarshal(path, func(data []byte) error {
		if !bytes.HasPrefix(data, magic) {
			return ErrMagicMismatch
		}
		return unmarshal(data[len(magic):])
	})
}

// MarshalAndSave invokes the marshaling callback (usually a closure) and writes
// the result atomically to path, readable and writable by the user only.
func MarshalAndSave(path string, marshal func() ([]byte, error)) error {
	// Marshal the data.
	data, err := marshal()
	if err != nil {
		return errors.Wrap(err, "unable to marshal data")
	}

	// Write the file atomically with secure file permissions.
	if err := filesystem.WriteFileAtomic(path, data, 0600); err != nil {
		return errors.Wrap(err, "unable to write data")
	}

	// Success.
	return nil
}

// MarshalAndSaveTagged is a variant of MarshalAndSave that prefixes the
// marshaled data with an identifying magic header.
func MarshalAndSaveTagged(path string, magic []byte, marshal func() ([]byte, error)) error {
	return MarshalAndSave(path, func() ([]byte, error) {
		data, err := marshal()
		if err != nil {
			return nil, err
		}
		result := make([]byte, 0, len(magic)+len(data))
		return append(append(result, magic...), data...), nil
	})
}
