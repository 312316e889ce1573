package meshutils

// Float4x4 is a 4x4 matrix stored in row-major order and applied to column
// vectors, so that M[r][3] holds the translation of an affine transform.
type Float4x4 [4][4]float32

// IdentityMatrix is the 4x4 identity matrix.
var IdentityMatrix = Float4x4{
	{1, 0, 0, 0},
	{0, 1, 0, 0},
	{0, 0, 1, 0},
	{0, 0, 0, 1},
}

// rotationColumns returns the columns of the rotation matrix for q.
func rotationColumns(q Quaternion) (Float3, Float3, Float3) {
	xx, yy, zz := q.X*q.X, q.Y*q.Y, q.Z*q.Z
	xy, xz, yz := q.X*q.Y, q.X*q.Z, q.Y*q.Z
	wx, wy, wz := q.W*q.X, q.W*q.Y, q.W*q.Z
	return Float3{1 - 2*(yy+zz), 2 * (xy + wz), 2 * (xz - wy)},
		Float3{2 * (xy - wz), 1 - 2*(xx+zz), 2 * (yz + wx)},
		Float3{2 * (xz + wy), 2 * (yz - wx), 1 - 2*(xx+yy)}
}

// TRS composes a translation, rotation and scale into a matrix that scales
// first, then rotates, then translates.
func TRS(translation Float3, rotation Quaternion, scale Float3) Float4x4 {
	x, y, z := rotationColumns(rotation.Normalize())
	x, y, z = x.Scale(scale.X), y.Scale(scale.Y), z.Scale(scale.Z)
	return Float4x4{
		{x.X, y.X, z.X, translation.X},
		{x.Y, y.Y, z.Y, translation.Y},
		{x.Z, y.Z, z.Z, translation.Z},
		{0, 0, 0, 1},
	}
}

// Mul returns the matrix product m*o.
func (m Float4x4) Mul(o Float4x4) Float4x4 {
	var result Float4x4
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			var sum float32
			for k := 0; k < 4; k++ {
				sum += m[r][k] * o[k][c]
			}
			result[r][c] = sum
		}
	}
	return result
}

// TransformPoint applies the full affine transform to a point.
func (m Float4x4) TransformPoint(p Float3) Float3 {
	return Float3{
		m[0][0]*p.X + m[0][1]*p.Y + m[0][2]*p.Z + m[0][3],
		m[1][0]*p.X + m[1][1]*p.Y + m[1][2]*p.Z + m[1][3],
		m[2][0]*p.X + m[2][1]*p.Y + m[2][2]*p.Z + m[2][3],
	}
}

// TransformDirection applies the linear part of the transform to a direction,
// ignoring translation.
func (m Float4x4) TransformDirection(d Float3) Float3 {
	return Float3{
		m[0][0]*d.X + m[0][1]*d.Y + m[0][2]*d.Z,
		m[1][0]*d.X + m[1][1]*d.Y + m[1][2]*d.Z,
		m[2][0]*d.X + m[2][1]*d.Y + m[2][2]*d.Z,
	}
}

// column returns the first three components of column c.
func (m Float4x4) column(c int) Float3 {
	return Float3{m[0][c], m[1][c], m[2][c]}
}

// Decompose splits an affine matrix into translation, rotation and scale. A
// negative determinant is attributed to the X scale.
func (m Float4x4) Decompose() (Float3, Quaternion, Float3) {
	translation := m.column(3)
	x, y, z := m.column(0), m.column(1), m.column(2)
	scale := Float3{x.Length(), y.Length(), z.Length()}
	if x.Cross(y).Dot(z) < 0 {
		scale.X = -scale.X
	}
	if scale.X == 0 || scale.Y == 0 || scale.Z == 0 {
		return translation, IdentityQuaternion, scale
	}
	rotation := quaternionFromBasis(x.Scale(1/scale.X), y.Scale(1/scale.Y), z.Scale(1/scale.Z))
	return translation, rotation, scale
}

// Determinant returns the determinant of the linear part of the matrix. It's
// negative for transforms that mirror geometry.
func (m Float4x4) Determinant() float32 {
	return m.column(0).Cross(m.column(1)).Dot(m.column(2))
}

// InverseAffine inverts an affine matrix. It returns false if the linear part
// is singular.
func (m Float4x4) InverseAffine() (Float4x4, bool) {
	a, b, c := m[0][0], m[0][1], m[0][2]
	d, e, f := m[1][0], m[1][1], m[1][2]
	g, h, i := m[2][0], m[2][1], m[2][2]

	// Compute the cofactors and determinant of the linear part.
	c00, c01, c02 := e*i-f*h, -(d*i - f*g), d*h-e*g
	determinant := a*c00 + b*c01 + c*c02
	if determinant == 0 {
		return Float4x4{}, false
	}
	inverse := 1 / determinant

	// The inverse of the linear part is the transposed cofactor matrix scaled
	// by the inverse determinant.
	var result Float4x4
	result[0][0] = c00 * inverse
	result[1][0] = c01 * inverse
	result[2][0] = c02 * inverse
	result[0][1] = -(b*i - c*h) * inverse
	result[1][1] = (a*i - c*g) * inverse
	result[2][1] = -(a*h - b*g) * inverse
	result[0][2] = (b*f - c*e) * inverse
	result[1][2] = -(a*f - c*d) * inverse
	result[2][2] = (a*e - b*d) * inverse

	// The translation is the negated original translation transformed by the
	// inverted linear part.
	t := result.TransformDirection(m.column(3))
	result[0][3], result[1][3], result[2][3] = -t.X, -t.Y, -t.Z
	result[3] = [4]float32{0, 0, 0, 1}
	return result, true
}
