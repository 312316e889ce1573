package constraints

import (
	"github.com/mutagen-io/meshsync/pkg/wire"
)

// Field numbers for encoded constraints.
const (
	fieldPath           = 1
	fieldKind           = 2
	fieldSource         = 3
	fieldPositionOffset = 4
	fieldRotationOffset = 5
	fieldScaleOffset    = 6
	fieldAimVector      = 7
	fieldUpVector       = 8
)

// Field numbers for encoded sources.
const (
	fieldSourcePath   = 1
	fieldSourceWeight = 2
)

// Encode appends the constraint's fields to an encoder.
func (c *Constraint) Encode(encoder *wire.Encoder) {
	encoder.Text(fieldPath, c.Path)
	encoder.Uint(fieldKind, uint64(c.Kind))
	for _, source := range c.Sources {
		source := source
		encoder.Message(fieldSource, func(nested *wire.Encoder) {
			nested.Text(fieldSourcePath, source.Path)
			nested.Float(fieldSourceWeight, source.Weight)
		})
	}
	encoder.Float3(fieldPositionOffset, c.PositionOffset)
	encoder.Quaternion(fieldRotationOffset, c.RotationOffset)
	encoder.Float3(fieldScaleOffset, c.ScaleOffset)
	encoder.Float3(fieldAimVector, c.AimVector)
	encoder.Float3(fieldUpVector, c.UpVector)
}

// Marshal encodes the constraint.
func (c *Constraint) Marshal() []byte {
	encoder := &wire.Encoder{}
	c.Encode(encoder)
	return encoder.Bytes()
}

// Unmarshal decodes a constraint. The result is not validated.
func Unmarshal(data []byte) (*Constraint, error) {
	result := &Constraint{}
	err := wire.Decode(data, func(f *wire.Field) error {
		switch f.Number {
		case fieldPath:
			result.Path = f.Text()
		case fieldKind:
			result.Kind = Kind(f.Uint())
		case fieldSource:
			var source Source
			if err := wire.Decode(f.Data(), func(s *wire.Field) error {
				switch s.Number {
				case fieldSourcePath:
					source.Path = s.Text()
				case fieldSourceWeight:
					source.Weight = s.Float()
				}
				return nil
			}); err != nil {
				return err
			}
			result.Sources = append(result.Sources, source)
		case fieldPositionOffset:
			result.PositionOffset = f.Float3()
		case fieldRotationOffset:
			result.RotationOffset = f.Quaternion()
		case fieldScaleOffset:
			result.ScaleOffset = f.Float3()
		case fieldAimVector:
			result.AimVector = f.Float3()
		case fieldUpVector:
			result.UpVector = f.Float3()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
