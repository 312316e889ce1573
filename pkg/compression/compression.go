package compression

import (
	"bytes"
	"compress/flate"
	"io"

	"github.com/pkg/errors"
)

const (
	// defaultCompressionLevel is the default compression level to use for
	// writers.
	defaultCompressionLevel = flate.DefaultCompression
)

// Compress compresses a complete buffer.
func Compress(data []byte) ([]byte, error) {
	result := &bytes.Buffer{}
	compressor, _ := flate.NewWriter(result, defaultCompressionLevel)
	if _, err := compressor.Write(data); err != nil {
		return nil, errors.Wrap(err, "unable to compress data")
	} else if err = compressor.Close(); err != nil {
		return nil, errors.Wrap(err, "unable to finalize compressed data")
	}
	return result.Bytes(), nil
}

// Decompress decompresses a complete buffer, refusing to produce more than
// limit bytes of output.
func Decompress(data []byte, limit int64) ([]byte, error) {
	decompressor := flate.NewReader(bytes.NewReader(data))
	defer decompressor.Close()
	result, err := io.ReadAll(io.LimitReader(decompressor, limit+1))
	if err != nil {
		return nil, errors.Wrap(err, "unable to decompress data")
	} else if int64(len(result)) > limit {
		return nil, errors.New("decompressed data exceeds size limit")
	}
	return result, nil
}
