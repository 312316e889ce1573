// Package wire provides helpers for hand-written Protocol Buffers wire format
// encodings built on protowire. Zero-valued scalar fields are omitted when
// encoding and unknown fields are skipped when decoding, so message layouts
// may be extended without breaking older readers.
package wire
