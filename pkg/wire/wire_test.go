package wire

import (
	"testing"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/mutagen-io/meshsync/pkg/meshutils"
)

// TestScalarFields tests encoding and decoding of scalar fields.
func TestScalarFields(t *testing.T) {
	encoder := &Encoder{}
	encoder.Uint(1, 300)
	encoder.Int(2, -7)
	encoder.Bool(3, true)
	encoder.Float(4, 1.5)
	encoder.Text(5, "Root/Child")
	encoder.Texts(6, []string{"a", ""})

	var uintValue uint64
	var intValue int64
	var boolValue bool
	var floatValue float32
	var textValue string
	var texts []string
	err := Decode(encoder.Bytes(), func(f *Field) error {
		switch f.Number {
		case 1:
			uintValue = f.Uint()
		case 2:
			intValue = f.Int()
		case 3:
			boolValue = f.Bool()
		case 4:
			floatValue = f.Float()
		case 5:
			textValue = f.Text()
		case 6:
			texts = append(texts, f.Text())
		}
		return nil
	})
	if err != nil {
		t.Fatal("unable to decode:", err)
	}
	if uintValue != 300 || intValue != -7 || !boolValue || floatValue != 1.5 || textValue != "Root/Child" {
		t.Error("scalar mismatch:", uintValue, intValue, boolValue, floatValue, textValue)
	}
	if len(texts) != 2 || texts[0] != "a" || texts[1] != "" {
		t.Error("repeated text mismatch:", texts)
	}
}

// TestZeroValuesOmitted tests that zero values produce no output.
func TestZeroValuesOmitted(t *testing.T) {
	encoder := &Encoder{}
	encoder.Uint(1, 0)
	encoder.Int(2, 0)
	encoder.Bool(3, false)
	encoder.Float(4, 0)
	encoder.Text(5, "")
	encoder.Raw(6, nil)
	encoder.Float3(7, meshutils.Float3{})
	encoder.Float3s(8, nil)
	encoder.Int32s(9, nil)
	if encoder.Len() != 0 {
		t.Error("zero values produced output:", encoder.Bytes())
	}
}

// TestVectorFields tests encoding and decoding of vector fields.
func TestVectorFields(t *testing.T) {
	encoder := &Encoder{}
	encoder.Float2(1, meshutils.Float2{X: 1, Y: 2})
	encoder.Float3(2, meshutils.Float3{X: 1, Y: 2, Z: 3})
	encoder.Quaternion(3, meshutils.IdentityQuaternion)
	encoder.Float3s(4, []meshutils.Float3{{X: 1}, {Y: 2}})
	encoder.Int32s(5, []int32{0, -1, 1 << 20})
	encoder.Float4s(6, []meshutils.Float4{{X: 1, W: -1}})
	encoder.Float2s(7, []meshutils.Float2{{X: 0.5, Y: 0.25}})
	encoder.Message(8, func(nested *Encoder) {
		nested.Text(1, "nested")
	})

	var (
		f2      meshutils.Float2
		f3      meshutils.Float3
		q       meshutils.Quaternion
		f3s     []meshutils.Float3
		ints    []int32
		f4s     []meshutils.Float4
		f2s     []meshutils.Float2
		message string
	)
	err := Decode(encoder.Bytes(), func(f *Field) error {
		switch f.Number {
		case 1:
			f2 = f.Float2()
		case 2:
			f3 = f.Float3()
		case 3:
			q = f.Quaternion()
		case 4:
			f3s = f.Float3s()
		case 5:
			ints = f.Int32s()
		case 6:
			f4s = f.Float4s()
		case 7:
			f2s = f.Float2s()
		case 8:
			return Decode(f.Data(), func(n *Field) error {
				message = n.Text()
				return nil
			})
		}
		return nil
	})
	if err != nil {
		t.Fatal("unable to decode:", err)
	}
	if f2 != (meshutils.Float2{X: 1, Y: 2}) || f3 != (meshutils.Float3{X: 1, Y: 2, Z: 3}) || q != meshutils.IdentityQuaternion {
		t.Error("vector mismatch:", f2, f3, q)
	}
	if len(f3s) != 2 || f3s[1] != (meshutils.Float3{Y: 2}) {
		t.Error("vector array mismatch:", f3s)
	}
	if len(ints) != 3 || ints[1] != -1 || ints[2] != 1<<20 {
		t.Error("integer array mismatch:", ints)
	}
	if len(f4s) != 1 || f4s[0].W != -1 || len(f2s) != 1 || f2s[0].Y != 0.25 {
		t.Error("packed vector mismatch:", f4s, f2s)
	}
	if message != "nested" {
		t.Error("nested message mismatch:", message)
	}
}

// TestTypeMismatch tests that reading a field with the wrong representation
// fails decoding.
func TestTypeMismatch(t *testing.T) {
	encoder := &Encoder{}
	encoder.Text(1, "text")
	err := Decode(encoder.Bytes(), func(f *Field) error {
		f.Uint()
		return nil
	})
	if err == nil {
		t.Error("type mismatch not reported")
	}

	encoder = &Encoder{}
	encoder.Floats(1, []float32{1, 2})
	err = Decode(encoder.Bytes(), func(f *Field) error {
		f.Float3()
		return nil
	})
	if err == nil {
		t.Error("vector size mismatch not reported")
	}
}

// TestUnknownFieldsSkipped tests that unknown fields are ignored.
func TestUnknownFieldsSkipped(t *testing.T) {
	var data []byte
	data = protowire.AppendTag(data, 99, protowire.Fixed64Type)
	data = protowire.AppendFixed64(data, 12345)
	data = protowire.AppendTag(data, 1, protowire.VarintType)
	data = protowire.AppendVarint(data, 5)
	var value uint64
	err := Decode(data, func(f *Field) error {
		if f.Number == 1 {
			value = f.Uint()
		}
		return nil
	})
	if err != nil {
		t.Fatal("unable to decode:", err)
	} else if value != 5 {
		t.Error("known field mismatch:", value)
	}
}

// TestTruncated tests that truncated input is rejected.
func TestTruncated(t *testing.T) {
	encoder := &Encoder{}
	encoder.Text(1, "truncated")
	data := encoder.Bytes()
	if err := Decode(data[:len(data)-2], func(*Field) error { return nil }); err == nil {
		t.Error("truncated input decoded successfully")
	}
}
