package scene

import (
	"github.com/mutagen-io/meshsync/pkg/compression"
	"github.com/mutagen-io/meshsync/pkg/encoding"
)

// fileMagic is the header that identifies MeshSync scene files.
var fileMagic = []byte("MSSCENE1")

// maximumDecompressedSize is the largest decompressed scene that Load will
// accept.
const maximumDecompressedSize = 1 << 30

// Load reads a scene file. Non-existence errors are passed through unwrapped.
func Load(path string) (*Scene, error) {
	var result *Scene
	err := encoding.LoadAndUnmarshalTagged(path, fileMagic, func(data []byte) error {
		decompressed, err := compression.Decompress(data, maximumDecompressedSize)
		if err != nil {
			return err
		}
		result, err = Unmarshal(decompressed)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Save atomically writes the scene to a file.
func Save(path string, s *Scene) error {
	return encoding.MarshalAndSaveTagged(path, fileMagic, func() ([]byte, error) {
		return compression.Compress(s.Marshal())
	})
}
