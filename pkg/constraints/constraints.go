// Package constraints implements MeshSync transform constraints, which derive
// an entity's position, rotation, or scale from the transforms of one or more
// source entities.
package constraints

import (
	"github.com/pkg/errors"

	"github.com/mutagen-io/meshsync/pkg/meshutils"
)

// Kind identifies the type of a constraint.
type Kind uint8

const (
	// KindAim orients the constrained entity toward its sources.
	KindAim Kind = iota + 1
	// KindParent makes the constrained entity follow its sources as though
	// it were their child.
	KindParent
	// KindPosition drives the constrained entity's position.
	KindPosition
	// KindRotation drives the constrained entity's rotation.
	KindRotation
	// KindScale drives the constrained entity's scale.
	KindScale
)

// String returns a human-readable representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindAim:
		return "aim"
	case KindParent:
		return "parent"
	case KindPosition:
		return "position"
	case KindRotation:
		return "rotation"
	case KindScale:
		return "scale"
	default:
		return "unknown"
	}
}

// Supported returns whether or not the kind is a known value.
func (k Kind) Supported() bool {
	return k >= KindAim && k <= KindScale
}

// Source is a weighted constraint source.
type Source struct {
	// Path is the path of the source entity.
	Path string
	// Weight is the source's relative influence.
	Weight float32
}

// Constraint describes a single constraint on an entity.
type Constraint struct {
	// Path is the path of the constrained entity.
	Path string
	// Kind is the constraint type.
	Kind Kind
	// Sources are the weighted constraint sources.
	Sources []Source
	// PositionOffset is added to the constrained position. For parent
	// constraints it is expressed in each source's local space.
	PositionOffset meshutils.Float3
	// RotationOffset is applied after the constrained rotation. The zero value
	// is treated as the identity rotation.
	RotationOffset meshutils.Quaternion
	// ScaleOffset multiplies the constrained scale. The zero value is treated
	// as a unit scale.
	ScaleOffset meshutils.Float3
	// AimVector is the local axis that aim constraints point at their target.
	// The zero value is treated as +Z.
	AimVector meshutils.Float3
	// UpVector is the local axis that aim constraints keep upward. The zero
	// value is treated as +Y.
	UpVector meshutils.Float3
}

// EnsureValid ensures that the constraint's invariants are respected.
func (c *Constraint) EnsureValid() error {
	// A nil constraint is not valid.
	if c == nil {
		return errors.New("nil constraint")
	}

	// Validate the target and kind.
	if c.Path == "" {
		return errors.New("empty constraint path")
	} else if !c.Kind.Supported() {
		return errors.Errorf("unknown constraint kind (%d)", c.Kind)
	}

	// Validate sources.
	if len(c.Sources) == 0 {
		return errors.New("constraint has no sources")
	}
	var total float32
	for _, source := range c.Sources {
		if source.Path == "" {
			return errors.New("empty source path")
		} else if source.Path == c.Path {
			return errors.New("constraint references itself")
		} else if source.Weight < 0 {
			return errors.Errorf("negative weight for source %s", source.Path)
		}
		total += source.Weight
	}
	if total == 0 {
		return errors.New("constraint sources have zero total weight")
	}

	// Success.
	return nil
}

// Copy creates a deep copy of the constraint.
func (c *Constraint) Copy() *Constraint {
	if c == nil {
		return nil
	}
	result := *c
	result.Sources = append([]Source(nil), c.Sources...)
	return &result
}
