package meshutils

import (
	"testing"
)

// quad is a unit square in the XY plane wound counterclockwise when viewed
// from +Z.
var quad = struct {
	points  []Float3
	counts  []int32
	indices []int32
}{
	points:  []Float3{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}},
	counts:  []int32{4},
	indices: []int32{0, 1, 2, 3},
}

// TestValidateTopology tests topology validation.
func TestValidateTopology(t *testing.T) {
	testCases := []struct {
		points      int
		counts      []int32
		indices     []int32
		expectValid bool
	}{
		{4, []int32{4}, []int32{0, 1, 2, 3}, true},
		{4, []int32{3, 3}, []int32{0, 1, 2, 0, 2, 3}, true},
		{4, nil, nil, true},
		{4, []int32{2}, []int32{0, 1}, false},
		{4, []int32{3}, []int32{0, 1, 2, 3}, false},
		{3, []int32{3}, []int32{0, 1, 3}, false},
		{3, []int32{3}, []int32{0, -1, 2}, false},
	}
	for i, testCase := range testCases {
		err := ValidateTopology(testCase.points, testCase.counts, testCase.indices)
		if valid := err == nil; valid != testCase.expectValid {
			t.Errorf("test index %d: validity mismatch: %t != %t (%v)", i, valid, testCase.expectValid, err)
		}
	}
}

// TestTriangulate tests fan triangulation.
func TestTriangulate(t *testing.T) {
	counts := []int32{4, 3}
	indices := []int32{0, 1, 2, 3, 4, 5, 6}
	expected := []int32{0, 1, 2, 0, 2, 3, 4, 5, 6}
	if count := TriangleCount(counts); count != 3 {
		t.Fatal("unexpected triangle count:", count)
	}
	result := Triangulate(counts, indices)
	if len(result) != len(expected) {
		t.Fatal("triangle index count mismatch:", len(result), len(expected))
	}
	for i := range expected {
		if result[i] != expected[i] {
			t.Errorf("triangle index %d mismatch: %d != %d", i, result[i], expected[i])
		}
	}
}

// TestSwapFaces tests winding reversal.
func TestSwapFaces(t *testing.T) {
	counts := []int32{4, 3}
	indices := []int32{0, 1, 2, 3, 4, 5, 6}
	expected := []int32{0, 3, 2, 1, 4, 6, 5}
	SwapFaces(counts, indices)
	for i := range expected {
		if indices[i] != expected[i] {
			t.Errorf("index %d mismatch: %d != %d", i, indices[i], expected[i])
		}
	}
}

// TestFlipHandedness tests that flipping X and swapping faces keeps generated
// normals consistent with the flipped geometry.
func TestFlipHandedness(t *testing.T) {
	points := append([]Float3(nil), quad.points...)
	indices := append([]int32(nil), quad.indices...)
	FlipX(points)
	SwapFaces(quad.counts, indices)
	normals := GenerateNormals(points, quad.counts, indices, true)
	for i, n := range normals {
		if !n.NearEqual(Float3{0, 0, 1}, testEpsilon) {
			t.Errorf("normal %d mismatch after flip: %v", i, n)
		}
	}
	q := QuaternionFromEuler(Float3{0, 30, 0})
	v := Float3{0, 0, 1}
	rotated := q.Rotate(v)
	rotated.X = -rotated.X
	flipped := FlipRotationX(q).Rotate(Float3{-v.X, v.Y, v.Z})
	if !flipped.NearEqual(rotated, testEpsilon) {
		t.Error("flipped rotation does not mirror original:", flipped, rotated)
	}
}
