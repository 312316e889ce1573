package meshutils

import (
	"math"
	"testing"
)

const testEpsilon = 1e-4

// TestFloat3Cross tests Float3.Cross.
func TestFloat3Cross(t *testing.T) {
	testCases := []struct {
		a, b, expected Float3
	}{
		{Float3{1, 0, 0}, Float3{0, 1, 0}, Float3{0, 0, 1}},
		{Float3{0, 1, 0}, Float3{0, 0, 1}, Float3{1, 0, 0}},
		{Float3{0, 0, 1}, Float3{1, 0, 0}, Float3{0, 1, 0}},
		{Float3{2, 0, 0}, Float3{4, 0, 0}, Float3{}},
	}
	for i, testCase := range testCases {
		if result := testCase.a.Cross(testCase.b); !result.NearEqual(testCase.expected, testEpsilon) {
			t.Errorf("test index %d: cross product mismatch: %v != %v", i, result, testCase.expected)
		}
	}
}

// TestFloat3NormalizeZero tests that normalizing the zero vector is safe.
func TestFloat3NormalizeZero(t *testing.T) {
	if result := (Float3{}).Normalize(); result != (Float3{}) {
		t.Error("zero vector normalization produced non-zero result:", result)
	}
	if length := (Float3{3, 4, 0}).Normalize().Length(); !near(length, 1, testEpsilon) {
		t.Error("normalized vector does not have unit length:", length)
	}
}

// TestQuaternionAxisAngle tests quaternion construction and rotation.
func TestQuaternionAxisAngle(t *testing.T) {
	testCases := []struct {
		axis     Float3
		angle    float32
		input    Float3
		expected Float3
	}{
		{Float3{0, 0, 1}, math.Pi / 2, Float3{1, 0, 0}, Float3{0, 1, 0}},
		{Float3{0, 1, 0}, math.Pi / 2, Float3{0, 0, 1}, Float3{1, 0, 0}},
		{Float3{1, 0, 0}, math.Pi, Float3{0, 1, 0}, Float3{0, -1, 0}},
		{Float3{0, 0, 5}, 0, Float3{1, 2, 3}, Float3{1, 2, 3}},
	}
	for i, testCase := range testCases {
		q := QuaternionFromAxisAngle(testCase.axis, testCase.angle)
		if result := q.Rotate(testCase.input); !result.NearEqual(testCase.expected, testEpsilon) {
			t.Errorf("test index %d: rotation mismatch: %v != %v", i, result, testCase.expected)
		}
	}
}

// TestQuaternionEulerOrder tests that Euler rotations apply Z, then X, then Y.
func TestQuaternionEulerOrder(t *testing.T) {
	q := QuaternionFromEuler(Float3{90, 90, 0})
	// X by 90 takes +Y to +Z, then Y by 90 takes +Z to +X.
	if result := q.Rotate(Float3{0, 1, 0}); !result.NearEqual(Float3{1, 0, 0}, testEpsilon) {
		t.Error("unexpected Euler rotation result:", result)
	}
}

// TestQuaternionSlerp tests quaternion interpolation endpoints and midpoint.
func TestQuaternionSlerp(t *testing.T) {
	target := QuaternionFromAxisAngle(Float3{0, 0, 1}, math.Pi/2)
	if result := IdentityQuaternion.Slerp(target, 0); !result.NearEqual(IdentityQuaternion, testEpsilon) {
		t.Error("slerp at zero is not the start rotation:", result)
	}
	if result := IdentityQuaternion.Slerp(target, 1); !result.NearEqual(target, testEpsilon) {
		t.Error("slerp at one is not the end rotation:", result)
	}
	expected := QuaternionFromAxisAngle(Float3{0, 0, 1}, math.Pi/4)
	if result := IdentityQuaternion.Slerp(target, 0.5); !result.NearEqual(expected, testEpsilon) {
		t.Error("slerp midpoint mismatch:", result, expected)
	}
}

// TestLookRotation tests that a look rotation points +Z along the forward
// vector.
func TestLookRotation(t *testing.T) {
	forwards := []Float3{{1, 0, 0}, {0, 0, -1}, {1, 1, 1}, {0, 1, 0}}
	for i, forward := range forwards {
		q := LookRotation(forward, Float3{0, 1, 0})
		if result := q.Rotate(Float3{0, 0, 1}); !result.NearEqual(forward.Normalize(), testEpsilon) {
			t.Errorf("test index %d: look rotation mismatch: %v != %v", i, result, forward.Normalize())
		}
	}
}

// TestMatrixTRSDecompose tests that TRS composition and decomposition are
// inverses.
func TestMatrixTRSDecompose(t *testing.T) {
	translation := Float3{1, 2, 3}
	rotation := QuaternionFromEuler(Float3{10, 20, 30})
	scale := Float3{2, 3, 4}
	m := TRS(translation, rotation, scale)
	tr, r, s := m.Decompose()
	if !tr.NearEqual(translation, testEpsilon) {
		t.Error("translation mismatch:", tr, translation)
	}
	if !r.NearEqual(rotation, testEpsilon) {
		t.Error("rotation mismatch:", r, rotation)
	}
	if !s.NearEqual(scale, testEpsilon) {
		t.Error("scale mismatch:", s, scale)
	}
}

// TestMatrixInverseAffine tests affine matrix inversion.
func TestMatrixInverseAffine(t *testing.T) {
	m := TRS(Float3{5, -1, 2}, QuaternionFromEuler(Float3{45, 0, 90}), Float3{1, 2, 0.5})
	inverse, ok := m.InverseAffine()
	if !ok {
		t.Fatal("unable to invert invertible matrix")
	}
	point := Float3{0.25, 7, -3}
	if result := inverse.TransformPoint(m.TransformPoint(point)); !result.NearEqual(point, testEpsilon) {
		t.Error("round trip through inverse mismatch:", result, point)
	}
	if _, ok := TRS(Float3{}, IdentityQuaternion, Float3{1, 0, 1}).InverseAffine(); ok {
		t.Error("singular matrix inverted successfully")
	}
}

// TestBounds tests bounds accumulation.
func TestBounds(t *testing.T) {
	var empty Bounds
	if !empty.Empty() {
		t.Error("zero value bounds not empty")
	}
	bounds := BoundsOf([]Float3{{1, 2, 3}, {-1, 0, 5}, {0, 4, 4}})
	if bounds.Empty() {
		t.Fatal("bounds of points are empty")
	}
	if bounds.Min != (Float3{-1, 0, 3}) || bounds.Max != (Float3{1, 4, 5}) {
		t.Error("unexpected bounds:", bounds.Min, bounds.Max)
	}
	if bounds.Center() != (Float3{0, 2, 4}) {
		t.Error("unexpected center:", bounds.Center())
	}
	if bounds.Extents() != (Float3{1, 2, 1}) {
		t.Error("unexpected extents:", bounds.Extents())
	}
}
