package scene

import (
	"github.com/mutagen-io/meshsync/pkg/meshutils"
)

// perIndex returns whether or not an attribute array holds one element per
// index. Arrays whose length matches both the point and index counts are
// treated as per-point.
func perIndex(count int, m *Mesh) bool {
	return count == len(m.Indices) && count != len(m.Points)
}

// permute3 reorders a per-index attribute according to a corner permutation.
func permute3(values []meshutils.Float3, permutation []int32) {
	original := append([]meshutils.Float3(nil), values...)
	for i, corner := range permutation {
		values[i] = original[corner]
	}
}

func permute2(values []meshutils.Float2, permutation []int32) {
	original := append([]meshutils.Float2(nil), values...)
	for i, corner := range permutation {
		values[i] = original[corner]
	}
}

func permute4(values []meshutils.Float4, permutation []int32) {
	original := append([]meshutils.Float4(nil), values...)
	for i, corner := range permutation {
		values[i] = original[corner]
	}
}

// flipHandedness mirrors the mesh across the YZ plane and reverses face
// winding so that faces keep their orientation.
func (m *Mesh) flipHandedness() {
	// Mirror vector data.
	meshutils.FlipX(m.Points)
	meshutils.FlipX(m.Normals)
	meshutils.FlipTangentsX(m.Tangents)

	// Reverse winding, carrying per-index attributes along.
	permutation := meshutils.ReverseWindingPermutation(m.Counts)
	meshutils.SwapFaces(m.Counts, m.Indices)
	if perIndex(len(m.Normals), m) {
		permute3(m.Normals, permutation)
	}
	if perIndex(len(m.Tangents), m) {
		permute4(m.Tangents, permutation)
	}
	if perIndex(len(m.UV0), m) {
		permute2(m.UV0, permutation)
	}
	if perIndex(len(m.UV1), m) {
		permute2(m.UV1, permutation)
	}
	if perIndex(len(m.Colors), m) {
		permute4(m.Colors, permutation)
	}
}

// flipX negates the X component of a vector.
func flipX(v meshutils.Float3) meshutils.Float3 {
	return meshutils.Float3{X: -v.X, Y: v.Y, Z: v.Z}
}

// Convert returns a deep copy of the scene converted to the target
// coordinate conventions. Positions and distances are rescaled by the ratio
// of scale factors, and a handedness change mirrors the X axis. The target
// name is ignored.
func (s *Scene) Convert(target Settings) *Scene {
	result := s.Copy()
	flip := s.Settings.Handedness != target.Handedness
	factor := target.scale() / s.Settings.scale()
	result.Settings.Handedness = target.Handedness
	result.Settings.ScaleFactor = target.ScaleFactor
	if !flip && factor == 1 {
		return result
	}

	// Convert entities.
	for _, entity := range result.Entities {
		entity.Position = entity.Position.Scale(factor)
		if flip {
			entity.Position = flipX(entity.Position)
			entity.Rotation = meshutils.FlipRotationX(entity.Rotation)
		}
		switch entity.Type {
		case EntityTypeCamera:
			entity.Camera.NearPlane *= factor
			entity.Camera.FarPlane *= factor
		case EntityTypeLight:
			entity.Light.Range *= factor
		case EntityTypeMesh:
			for i := range entity.Mesh.Points {
				entity.Mesh.Points[i] = entity.Mesh.Points[i].Scale(factor)
			}
			if flip {
				entity.Mesh.flipHandedness()
			}
		}
	}

	// Convert constraints.
	for _, constraint := range result.Constraints {
		constraint.PositionOffset = constraint.PositionOffset.Scale(factor)
		if flip {
			constraint.PositionOffset = flipX(constraint.PositionOffset)
			if constraint.RotationOffset != (meshutils.Quaternion{}) {
				constraint.RotationOffset = meshutils.FlipRotationX(constraint.RotationOffset)
			}
			constraint.AimVector = flipX(constraint.AimVector)
			constraint.UpVector = flipX(constraint.UpVector)
		}
	}

	// Done.
	return result
}
