package constraints

import (
	"github.com/pkg/errors"

	"github.com/mutagen-io/meshsync/pkg/meshutils"
)

// Transform is a world-space transform.
type Transform struct {
	// Position is the world-space position.
	Position meshutils.Float3
	// Rotation is the world-space rotation.
	Rotation meshutils.Quaternion
	// Scale is the world-space scale.
	Scale meshutils.Float3
}

// IdentityTransform is the transform with no translation, rotation, or scale.
var IdentityTransform = Transform{
	Rotation: meshutils.IdentityQuaternion,
	Scale:    meshutils.Float3{X: 1, Y: 1, Z: 1},
}

// Resolver provides the world-space transforms of constraint sources.
type Resolver interface {
	// Resolve returns the transform of the entity at path and whether or not
	// that entity exists.
	Resolve(path string) (Transform, bool)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(path string) (Transform, bool)

// Resolve implements Resolver.Resolve.
func (f ResolverFunc) Resolve(path string) (Transform, bool) {
	return f(path)
}

// weighted is a resolved source.
type weighted struct {
	transform Transform
	weight    float32
}

// orDefault substitutes a default for a zero vector.
func orDefault(v, fallback meshutils.Float3) meshutils.Float3 {
	if v == (meshutils.Float3{}) {
		return fallback
	}
	return v
}

// blendRotations computes a normalized weighted sum of rotations, aligning
// each to the first to stay within one hemisphere.
func blendRotations(rotations []meshutils.Quaternion, weights []float32) meshutils.Quaternion {
	var result meshutils.Quaternion
	for i, q := range rotations {
		w := weights[i]
		if i > 0 && q.Dot(rotations[0]) < 0 {
			w = -w
		}
		result.X += q.X * w
		result.Y += q.Y * w
		result.Z += q.Z * w
		result.W += q.W * w
	}
	return result.Normalize()
}

// Evaluate computes the transform of the constrained entity, given its current
// world-space transform. Components that the constraint does not drive are
// returned unchanged. Sources that can't be resolved are ignored, but at least
// one source must resolve.
func Evaluate(c *Constraint, current Transform, resolver Resolver) (Transform, error) {
	// Validate the constraint.
	if err := c.EnsureValid(); err != nil {
		return current, errors.Wrap(err, "invalid constraint")
	}

	// Resolve sources.
	var sources []weighted
	var total float32
	for _, source := range c.Sources {
		if source.Weight == 0 {
			continue
		}
		if transform, ok := resolver.Resolve(source.Path); ok {
			sources = append(sources, weighted{transform, source.Weight})
			total += source.Weight
		}
	}
	if len(sources) == 0 {
		return current, errors.New("no constraint sources could be resolved")
	}

	// Compute normalized weights and the blended source position.
	weights := make([]float32, len(sources))
	var position meshutils.Float3
	for i, source := range sources {
		weights[i] = source.weight / total
		position = position.Add(source.transform.Position.Scale(weights[i]))
	}

	// Compute the offset rotation.
	offset := c.RotationOffset.Normalize()

	// Apply the constraint.
	result := current
	switch c.Kind {
	case KindPosition:
		result.Position = position.Add(c.PositionOffset)
	case KindRotation:
		rotations := make([]meshutils.Quaternion, len(sources))
		for i, source := range sources {
			rotations[i] = source.transform.Rotation
		}
		result.Rotation = blendRotations(rotations, weights).Mul(offset)
	case KindScale:
		var scale meshutils.Float3
		for i, source := range sources {
			scale = scale.Add(source.transform.Scale.Scale(weights[i]))
		}
		result.Scale = scale.Mul(orDefault(c.ScaleOffset, meshutils.Float3{X: 1, Y: 1, Z: 1}))
	case KindAim:
		aim := orDefault(c.AimVector, meshutils.Float3{Z: 1})
		up := orDefault(c.UpVector, meshutils.Float3{Y: 1})
		forward := position.Sub(current.Position)
		if forward.Length() == 0 {
			break
		}
		look := meshutils.LookRotation(forward, up)
		local := meshutils.LookRotation(aim, up)
		result.Rotation = look.Mul(local.Conjugate()).Mul(offset)
	case KindParent:
		var parentPosition meshutils.Float3
		rotations := make([]meshutils.Quaternion, len(sources))
		for i, source := range sources {
			t := source.transform
			local := t.Rotation.Rotate(t.Scale.Mul(c.PositionOffset))
			parentPosition = parentPosition.Add(t.Position.Add(local).Scale(weights[i]))
			rotations[i] = t.Rotation.Mul(offset)
		}
		result.Position = parentPosition
		result.Rotation = blendRotations(rotations, weights)
	}

	// Success.
	return result, nil
}
