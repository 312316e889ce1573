package meshutils

import (
	"math"
)

// Quaternion is a rotation quaternion with the scalar part in W.
type Quaternion struct {
	X, Y, Z, W float32
}

// IdentityQuaternion is the rotation that leaves vectors unchanged.
var IdentityQuaternion = Quaternion{0, 0, 0, 1}

// degreesToRadians converts an angle from degrees to radians.
const degreesToRadians = math.Pi / 180

// QuaternionFromAxisAngle creates a rotation of angle radians around axis.
func QuaternionFromAxisAngle(axis Float3, angle float32) Quaternion {
	axis = axis.Normalize()
	half := float64(angle) / 2
	s := float32(math.Sin(half))
	return Quaternion{axis.X * s, axis.Y * s, axis.Z * s, float32(math.Cos(half))}
}

// QuaternionFromEuler creates a rotation from Euler angles in degrees. The
// rotations are applied around Z, then X, then Y.
func QuaternionFromEuler(degrees Float3) Quaternion {
	x := QuaternionFromAxisAngle(Float3{1, 0, 0}, degrees.X*degreesToRadians)
	y := QuaternionFromAxisAngle(Float3{0, 1, 0}, degrees.Y*degreesToRadians)
	z := QuaternionFromAxisAngle(Float3{0, 0, 1}, degrees.Z*degreesToRadians)
	return y.Mul(x).Mul(z)
}

// Mul returns the Hamilton product q*o, which applies o first and then q.
func (q Quaternion) Mul(o Quaternion) Quaternion {
	return Quaternion{
		q.W*o.X + q.X*o.W + q.Y*o.Z - q.Z*o.Y,
		q.W*o.Y - q.X*o.Z + q.Y*o.W + q.Z*o.X,
		q.W*o.Z + q.X*o.Y - q.Y*o.X + q.Z*o.W,
		q.W*o.W - q.X*o.X - q.Y*o.Y - q.Z*o.Z,
	}
}

// Dot returns the four-dimensional dot product of two quaternions.
func (q Quaternion) Dot(o Quaternion) float32 {
	return q.X*o.X + q.Y*o.Y + q.Z*o.Z + q.W*o.W
}

// Conjugate returns the conjugate of q, which is its inverse if q is a unit
// quaternion.
func (q Quaternion) Conjugate() Quaternion {
	return Quaternion{-q.X, -q.Y, -q.Z, q.W}
}

// Normalize returns q scaled to unit length. The zero quaternion normalizes to
// the identity.
func (q Quaternion) Normalize() Quaternion {
	length := float32(math.Sqrt(float64(q.Dot(q))))
	if length == 0 {
		return IdentityQuaternion
	}
	inverse := 1 / length
	return Quaternion{q.X * inverse, q.Y * inverse, q.Z * inverse, q.W * inverse}
}

// Rotate applies the rotation to a vector.
func (q Quaternion) Rotate(v Float3) Float3 {
	axis := Float3{q.X, q.Y, q.Z}
	t := axis.Cross(v).Scale(2)
	return v.Add(t.Scale(q.W)).Add(axis.Cross(t))
}

// NearEqual returns whether or not two quaternions represent the same rotation
// within epsilon, treating q and -q as equal.
func (q Quaternion) NearEqual(o Quaternion, epsilon float32) bool {
	d := q.Dot(o)
	if d < 0 {
		d = -d
	}
	return d >= 1-epsilon
}

// Slerp performs spherical linear interpolation between q and o along the
// shortest arc.
func (q Quaternion) Slerp(o Quaternion, t float32) Quaternion {
	cosine := q.Dot(o)
	if cosine < 0 {
		o = Quaternion{-o.X, -o.Y, -o.Z, -o.W}
		cosine = -cosine
	}

	// Fall back to normalized linear interpolation for nearly parallel inputs.
	if cosine > 0.9995 {
		return Quaternion{
			q.X + (o.X-q.X)*t,
			q.Y + (o.Y-q.Y)*t,
			q.Z + (o.Z-q.Z)*t,
			q.W + (o.W-q.W)*t,
		}.Normalize()
	}

	theta := math.Acos(float64(cosine))
	sine := math.Sin(theta)
	a := float32(math.Sin((1-float64(t))*theta) / sine)
	b := float32(math.Sin(float64(t)*theta) / sine)
	return Quaternion{
		q.X*a + o.X*b,
		q.Y*a + o.Y*b,
		q.Z*a + o.Z*b,
		q.W*a + o.W*b,
	}
}

// LookRotation creates a rotation whose local +Z axis points along forward and
// whose local +Y axis is as close to up as possible. If forward is parallel to
// up, an alternative up vector is chosen.
func LookRotation(forward, up Float3) Quaternion {
	z := forward.Normalize()
	if z.Length() == 0 {
		return IdentityQuaternion
	}
	x := up.Cross(z).Normalize()
	if x.Length() == 0 {
		alternative := Float3{1, 0, 0}
		if z.X > 0.9 || z.X < -0.9 {
			alternative = Float3{0, 0, 1}
		}
		x = alternative.Cross(z).Normalize()
	}
	y := z.Cross(x)
	return quaternionFromBasis(x, y, z)
}

// quaternionFromBasis converts an orthonormal basis (the columns of a rotation
// matrix) into a quaternion.
func quaternionFromBasis(x, y, z Float3) Quaternion {
	m00, m01, m02 := x.X, y.X, z.X
	m10, m11, m12 := x.Y, y.Y, z.Y
	m20, m21, m22 := x.Z, y.Z, z.Z

	trace := m00 + m11 + m22
	var q Quaternion
	switch {
	case trace > 0:
		s := float32(math.Sqrt(float64(trace)+1)) * 2
		q = Quaternion{(m21 - m12) / s, (m02 - m20) / s, (m10 - m01) / s, 0.25 * s}
	case m00 > m11 && m00 > m22:
		s := float32(math.Sqrt(float64(1+m00-m11-m22))) * 2
		q = Quaternion{0.25 * s, (m01 + m10) / s, (m02 + m20) / s, (m21 - m12) / s}
	case m11 > m22:
		s := float32(math.Sqrt(float64(1+m11-m00-m22))) * 2
		q = Quaternion{(m01 + m10) / s, 0.25 * s, (m12 + m21) / s, (m02 - m20) / s}
	default:
		s := float32(math.Sqrt(float64(1+m22-m00-m11))) * 2
		q = Quaternion{(m02 + m20) / s, (m12 + m21) / s, 0.25 * s, (m10 - m01) / s}
	}
	return q.Normalize()
}
