package wire

import (
	"math"

	"github.com/pkg/errors"
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/mutagen-io/meshsync/pkg/meshutils"
)

// Field is a single decoded field. Its accessors record an error (reported by
// Decode once the handler returns) if the field's wire type doesn't match the
// requested representation.
type Field struct {
	// Number is the field number.
	Number protowire.Number
	// Type is the wire type.
	Type protowire.Type
	// value holds the value of varint and fixed-width fields.
	value uint64
	// data holds the value of bytes fields.
	data []byte
	// err is the first accessor error.
	err error
}

// fail records an accessor error.
func (f *Field) fail(format string, arguments ...interface{}) {
	if f.err == nil {
		f.err = errors.Wrapf(errors.Errorf(format, arguments...), "field %d", f.Number)
	}
}

// expect verifies the field's wire type.
func (f *Field) expect(expected protowire.Type) bool {
	if f.Type != expected {
		f.fail("unexpected wire type (%d)", f.Type)
		return false
	}
	return true
}

// Uint returns the field as an unsigned varint.
func (f *Field) Uint() uint64 {
	if !f.expect(protowire.VarintType) {
		return 0
	}
	return f.value
}

// Int returns the field as a signed (zigzag) varint.
func (f *Field) Int() int64 {
	if !f.expect(protowire.VarintType) {
		return 0
	}
	return protowire.DecodeZigZag(f.value)
}

// Bool returns the field as a boolean.
func (f *Field) Bool() bool {
	return f.Uint() != 0
}

// Float returns the field as a float.
func (f *Field) Float() float32 {
	if !f.expect(protowire.Fixed32Type) {
		return 0
	}
	return math.Float32frombits(uint32(f.value))
}

// Data returns the field as raw bytes. The result aliases the decoded buffer.
func (f *Field) Data() []byte {
	if !f.expect(protowire.BytesType) {
		return nil
	}
	return f.data
}

// Text returns the field as a string.
func (f *Field) Text() string {
	return string(f.Data())
}

// Floats returns the field as a packed float array.
func (f *Field) Floats() []float32 {
	data := f.Data()
	if len(data)%4 != 0 {
		f.fail("packed float length (%d) not a multiple of four", len(data))
		return nil
	}
	result := make([]float32, len(data)/4)
	for i := range result {
		value, _ := protowire.ConsumeFixed32(data[i*4:])
		result[i] = math.Float32frombits(value)
	}
	return result
}

// vector decodes a fixed-size packed float vector.
func (f *Field) vector(size int) []float32 {
	values := f.Floats()
	if len(values) != size {
		f.fail("vector has %d components, expected %d", len(values), size)
		return make([]float32, size)
	}
	return values
}

// Float2 returns the field as a two-component vector.
func (f *Field) Float2() meshutils.Float2 {
	v := f.vector(2)
	return meshutils.Float2{X: v[0], Y: v[1]}
}

// Float3 returns the field as a three-component vector.
func (f *Field) Float3() meshutils.Float3 {
	v := f.vector(3)
	return meshutils.Float3{X: v[0], Y: v[1], Z: v[2]}
}

// Float4 returns the field as a four-component vector.
func (f *Field) Float4() meshutils.Float4 {
	v := f.vector(4)
	return meshutils.Float4{X: v[0], Y: v[1], Z: v[2], W: v[3]}
}

// Quaternion returns the field as a quaternion.
func (f *Field) Quaternion() meshutils.Quaternion {
	v := f.vector(4)
	return meshutils.Quaternion{X: v[0], Y: v[1], Z: v[2], W: v[3]}
}

// packed returns the field as a packed float array whose length is a multiple
// of stride.
func (f *Field) packed(stride int) []float32 {
	values := f.Floats()
	if len(values)%stride != 0 {
		f.fail("packed vector length (%d) not a multiple of %d", len(values), stride)
		return nil
	}
	return values
}

// Float2s returns the field as a packed array of two-component vectors.
func (f *Field) Float2s() []meshutils.Float2 {
	values := f.packed(2)
	result := make([]meshutils.Float2, len(values)/2)
	for i := range result {
		result[i] = meshutils.Float2{X: values[i*2], Y: values[i*2+1]}
	}
	return result
}

// Float3s returns the field as a packed array of three-component vectors.
func (f *Field) Float3s() []meshutils.Float3 {
	values := f.packed(3)
	result := make([]meshutils.Float3, len(values)/3)
	for i := range result {
		result[i] = meshutils.Float3{X: values[i*3], Y: values[i*3+1], Z: values[i*3+2]}
	}
	return result
}

// Float4s returns the field as a packed array of four-component vectors.
func (f *Field) Float4s() []meshutils.Float4 {
	values := f.packed(4)
	result := make([]meshutils.Float4, len(values)/4)
	for i := range result {
		result[i] = meshutils.Float4{X: values[i*4], Y: values[i*4+1], Z: values[i*4+2], W: values[i*4+3]}
	}
	return result
}

// Int32s returns the field as a packed array of signed (zigzag) integers.
func (f *Field) Int32s() []int32 {
	data := f.Data()
	var result []int32
	for len(data) > 0 {
		value, n := protowire.ConsumeVarint(data)
		if n < 0 {
			f.fail("invalid packed integer: %v", protowire.ParseError(n))
			return nil
		}
		result = append(result, int32(protowire.DecodeZigZag(value)))
		data = data[n:]
	}
	return result
}

// Decode iterates over the fields in data, invoking handler for each. Group
// fields are skipped. Decoding stops at the first handler or accessor error.
func Decode(data []byte, handler func(*Field) error) error {
	for len(data) > 0 {
		// Parse the tag.
		number, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return errors.Wrap(protowire.ParseError(n), "invalid field tag")
		}
		data = data[n:]

		// Parse the value.
		field := &Field{Number: number, Type: typ}
		switch typ {
		case protowire.VarintType:
			field.value, n = protowire.ConsumeVarint(data)
		case protowire.Fixed32Type:
			var value uint32
			value, n = protowire.ConsumeFixed32(data)
			field.value = uint64(value)
		case protowire.Fixed64Type:
			field.value, n = protowire.ConsumeFixed64(data)
		case protowire.BytesType:
			field.data, n = protowire.ConsumeBytes(data)
		default:
			n = protowire.ConsumeFieldValue(number, typ, data)
			if n < 0 {
				return errors.Wrapf(protowire.ParseError(n), "invalid value for field %d", number)
			}
			data = data[n:]
			continue
		}
		if n < 0 {
			return errors.Wrapf(protowire.ParseError(n), "invalid value for field %d", number)
		}
		data = data[n:]

		// Dispatch the field.
		if err := handler(field); err != nil {
			return err
		} else if field.err != nil {
			return field.err
		}
	}
	return nil
}
