package wire

import (
	"math"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/mutagen-io/meshsync/pkg/meshutils"
)

// Encoder appends fields to a buffer. The zero value is ready for use.
type Encoder struct {
	buffer []byte
}

// Bytes returns the encoded data.
func (e *Encoder) Bytes() []byte {
	return e.buffer
}

// Len returns the number of bytes encoded so far.
func (e *Encoder) Len() int {
	return len(e.buffer)
}

// Uint encodes a non-zero unsigned varint field.
func (e *Encoder) Uint(number protowire.Number, value uint64) {
	if value == 0 {
		return
	}
	e.buffer = protowire.AppendTag(e.buffer, number, protowire.VarintType)
	e.buffer = protowire.AppendVarint(e.buffer, value)
}

// Int encodes a non-zero signed (zigzag) varint field.
func (e *Encoder) Int(number protowire.Number, value int64) {
	if value == 0 {
		return
	}
	e.buffer = protowire.AppendTag(e.buffer, number, protowire.VarintType)
	e.buffer = protowire.AppendVarint(e.buffer, protowire.EncodeZigZag(value))
}

// Bool encodes a true boolean field.
func (e *Encoder) Bool(number protowire.Number, value bool) {
	if value {
		e.Uint(number, 1)
	}
}

// Float encodes a non-zero float field.
func (e *Encoder) Float(number protowire.Number, value float32) {
	if value == 0 {
		return
	}
	e.buffer = protowire.AppendTag(e.buffer, number, protowire.Fixed32Type)
	e.buffer = protowire.AppendFixed32(e.buffer, math.Float32bits(value))
}

// Text encodes a non-empty string field.
func (e *Encoder) Text(number protowire.Number, value string) {
	if value == "" {
		return
	}
	e.buffer = protowire.AppendTag(e.buffer, number, protowire.BytesType)
	e.buffer = protowire.AppendString(e.buffer, value)
}

// Texts encodes a repeated string field. Empty elements are preserved.
func (e *Encoder) Texts(number protowire.Number, values []string) {
	for _, value := range values {
		e.buffer = protowire.AppendTag(e.buffer, number, protowire.BytesType)
		e.buffer = protowire.AppendString(e.buffer, value)
	}
}

// Raw encodes a non-empty bytes field.
func (e *Encoder) Raw(number protowire.Number, value []byte) {
	if len(value) == 0 {
		return
	}
	e.Embed(number, value)
}

// Embed encodes a bytes field unconditionally, typically an encoded message
// whose presence matters even when it is empty.
func (e *Encoder) Embed(number protowire.Number, value []byte) {
	e.buffer = protowire.AppendTag(e.buffer, number, protowire.BytesType)
	e.buffer = protowire.AppendBytes(e.buffer, value)
}

// Message encodes an embedded message produced by encode.
func (e *Encoder) Message(number protowire.Number, encode func(*Encoder)) {
	nested := &Encoder{}
	encode(nested)
	e.Embed(number, nested.buffer)
}

// floats encodes a packed fixed32 field holding the specified values, omitting
// it if every value is zero.
func (e *Encoder) floats(number protowire.Number, values ...float32) {
	zero := true
	for _, value := range values {
		if value != 0 {
			zero = false
			break
		}
	}
	if zero {
		return
	}
	e.packedFloats(number, values)
}

// packedFloats encodes a packed fixed32 field unconditionally.
func (e *Encoder) packedFloats(number protowire.Number, values []float32) {
	e.buffer = protowire.AppendTag(e.buffer, number, protowire.BytesType)
	e.buffer = protowire.AppendVarint(e.buffer, uint64(len(values)*4))
	for _, value := range values {
		e.buffer = protowire.AppendFixed32(e.buffer, math.Float32bits(value))
	}
}

// Float2 encodes a non-zero two-component vector.
func (e *Encoder) Float2(number protowire.Number, v meshutils.Float2) {
	e.floats(number, v.X, v.Y)
}

// Float3 encodes a non-zero three-component vector.
func (e *Encoder) Float3(number protowire.Number, v meshutils.Float3) {
	e.floats(number, v.X, v.Y, v.Z)
}

// Float4 encodes a non-zero four-component vector.
func (e *Encoder) Float4(number protowire.Number, v meshutils.Float4) {
	e.floats(number, v.X, v.Y, v.Z, v.W)
}

// Quaternion encodes a non-zero quaternion.
func (e *Encoder) Quaternion(number protowire.Number, q meshutils.Quaternion) {
	e.floats(number, q.X, q.Y, q.Z, q.W)
}

// Floats encodes a non-empty packed float array.
func (e *Encoder) Floats(number protowire.Number, values []float32) {
	if len(values) > 0 {
		e.packedFloats(number, values)
	}
}

// Float2s encodes a non-empty packed array of two-component vectors.
func (e *Encoder) Float2s(number protowire.Number, values []meshutils.Float2) {
	if len(values) == 0 {
		return
	}
	flat := make([]float32, 0, len(values)*2)
	for _, v := range values {
		flat = append(flat, v.X, v.Y)
	}
	e.packedFloats(number, flat)
}

// Float3s encodes a non-empty packed array of three-component vectors.
func (e *Encoder) Float3s(number protowire.Number, values []meshutils.Float3) {
	if len(values) == 0 {
		return
	}
	flat := make([]float32, 0, len(values)*3)
	for _, v := range values {
		flat = append(flat, v.X, v.Y, v.Z)
	}
	e.packedFloats(number, flat)
}

// Float4s encodes a non-empty packed array of four-component vectors.
func (e *Encoder) Float4s(number protowire.Number, values []meshutils.Float4) {
	if len(values) == 0 {
		return
	}
	flat := make([]float32, 0, len(values)*4)
	for _, v := range values {
		flat = append(flat, v.X, v.Y, v.Z, v.W)
	}
	e.packedFloats(number, flat)
}

// Int32s encodes a non-empty packed array of signed (zigzag) integers.
func (e *Encoder) Int32s(number protowire.Number, values []int32) {
	if len(values) == 0 {
		return
	}
	var packed []byte
	for _, value := range values {
		packed = protowire.AppendVarint(packed, protowire.EncodeZigZag(int64(value)))
	}
	e.Embed(number, packed)
}
