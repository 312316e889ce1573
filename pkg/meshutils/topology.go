package meshutils

import (
	"github.com/pkg/errors"
)

// ValidateTopology ensures that a polygon description is consistent with a
// points array: counts must be at least three, must sum to the number of
// indices, and every index must reference an existing point.
func ValidateTopology(pointCount int, counts, indices []int32) error {
	var total int
	for f, count := range counts {
		if count < 3 {
			return errors.Errorf("face %d has fewer than three vertices", f)
		}
		total += int(count)
	}
	if total != len(indices) {
		return errors.Errorf("face counts sum to %d but there are %d indices", total, len(indices))
	}
	for i, index := range indices {
		if index < 0 || int(index) >= pointCount {
			return errors.Errorf("index %d references non-existent point %d", i, index)
		}
	}
	return nil
}

// TriangleCount returns the number of triangles produced by fan triangulation
// of the specified polygons.
func TriangleCount(counts []int32) int {
	var result int
	for _, count := range counts {
		result += int(count) - 2
	}
	return result
}

// TriangulateCorners computes a fan triangulation of the specified polygons,
// returning for each triangle vertex the position of its face corner in the
// original index array. This allows per-index attributes to be triangulated
// along with the indices.
func TriangulateCorners(counts []int32) []int32 {
	result := make([]int32, 0, TriangleCount(counts)*3)
	var offset int32
	for _, count := range counts {
		for i := int32(1); i < count-1; i++ {
			result = append(result, offset, offset+i, offset+i+1)
		}
		offset += count
	}
	return result
}

// Triangulate computes a fan triangulation of the specified polygons and
// returns triangle point indices.
func Triangulate(counts, indices []int32) []int32 {
	corners := TriangulateCorners(counts)
	result := make([]int32, len(corners))
	for i, corner := range corners {
		result[i] = indices[corner]
	}
	return result
}

// ReverseWindingPermutation computes the corner permutation that reverses the
// winding of every polygon while keeping its first corner in place. Element i
// of the result is the original corner that moves to position i.
func ReverseWindingPermutation(counts []int32) []int32 {
	var total int32
	for _, count := range counts {
		total += count
	}
	result := make([]int32, 0, total)
	var offset int32
	for _, count := range counts {
		result = append(result, offset)
		for i := count - 1; i > 0; i-- {
			result = append(result, offset+i)
		}
		offset += count
	}
	return result
}

// SwapFaces reverses the winding of every polygon in place.
func SwapFaces(counts, indices []int32) {
	permutation := ReverseWindingPermutation(counts)
	original := append([]int32(nil), indices...)
	for i, corner := range permutation {
		indices[i] = original[corner]
	}
}

// FlipX negates the X component of every vector in place, converting between
// left- and right-handed coordinate systems.
func FlipX(values []Float3) {
	for i := range values {
		values[i].X = -values[i].X
	}
}

// FlipTangentsX negates the X component and the bitangent sign of every
// tangent in place.
func FlipTangentsX(values []Float4) {
	for i := range values {
		values[i].X = -values[i].X
		values[i].W = -values[i].W
	}
}

// FlipRotationX converts a rotation between left- and right-handed coordinate
// systems that differ in the sign of the X axis.
func FlipRotationX(q Quaternion) Quaternion {
	return Quaternion{q.X, -q.Y, -q.Z, q.W}
}
