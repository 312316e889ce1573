package meshutils

import (
	"math"
)

// Float2 is a two-component vector.
type Float2 struct {
	X, Y float32
}

// Float3 is a three-component vector.
type Float3 struct {
	X, Y, Z float32
}

// Float4 is a four-component vector. It is also used for RGBA colors and for
// tangents, where W carries the bitangent sign.
type Float4 struct {
	X, Y, Z, W float32
}

// Add returns the component-wise sum of two vectors.
func (v Float2) Add(o Float2) Float2 { return Float2{v.X + o.X, v.Y + o.Y} }

// Sub returns the component-wise difference of two vectors.
func (v Float2) Sub(o Float2) Float2 { return Float2{v.X - o.X, v.Y - o.Y} }

// Scale returns the vector multiplied by a scalar.
func (v Float2) Scale(s float32) Float2 { return Float2{v.X * s, v.Y * s} }

// Add returns the component-wise sum of two vectors.
func (v Float3) Add(o Float3) Float3 { return Float3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }

// Sub returns the component-wise difference of two vectors.
func (v Float3) Sub(o Float3) Float3 { return Float3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }

// Mul returns the component-wise product of two vectors.
func (v Float3) Mul(o Float3) Float3 { return Float3{v.X * o.X, v.Y * o.Y, v.Z * o.Z} }

// Scale returns the vector multiplied by a scalar.
func (v Float3) Scale(s float32) Float3 { return Float3{v.X * s, v.Y * s, v.Z * s} }

// Neg returns the negated vector.
func (v Float3) Neg() Float3 { return Float3{-v.X, -v.Y, -v.Z} }

// Dot returns the dot product of two vectors.
func (v Float3) Dot(o Float3) float32 { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }

// Cross returns the cross product of two vectors.
func (v Float3) Cross(o Float3) Float3 {
	return Float3{
		v.Y*o.Z - v.Z*o.Y,
		v.Z*o.X - v.X*o.Z,
		v.X*o.Y - v.Y*o.X,
	}
}

// Length returns the Euclidean length of the vector.
func (v Float3) Length() float32 {
	return float32(math.Sqrt(float64(v.Dot(v))))
}

// Normalize returns the unit vector in the direction of v. The zero vector is
// returned unchanged.
func (v Float3) Normalize() Float3 {
	length := v.Length()
	if length == 0 {
		return v
	}
	return v.Scale(1 / length)
}

// Lerp linearly interpolates between v and o.
func (v Float3) Lerp(o Float3, t float32) Float3 {
	return v.Add(o.Sub(v).Scale(t))
}

// Min returns the component-wise minimum of two vectors.
func (v Float3) Min(o Float3) Float3 {
	return Float3{min32(v.X, o.X), min32(v.Y, o.Y), min32(v.Z, o.Z)}
}

// Max returns the component-wise maximum of two vectors.
func (v Float3) Max(o Float3) Float3 {
	return Float3{max32(v.X, o.X), max32(v.Y, o.Y), max32(v.Z, o.Z)}
}

// NearEqual returns whether or not two vectors are equal within epsilon in
// every component.
func (v Float3) NearEqual(o Float3, epsilon float32) bool {
	return near(v.X, o.X, epsilon) && near(v.Y, o.Y, epsilon) && near(v.Z, o.Z, epsilon)
}

// XYZ returns the first three components of the vector.
func (v Float4) XYZ() Float3 { return Float3{v.X, v.Y, v.Z} }

// NearEqual returns whether or not two vectors are equal within epsilon in
// every component.
func (v Float4) NearEqual(o Float4, epsilon float32) bool {
	return near(v.X, o.X, epsilon) && near(v.Y, o.Y, epsilon) &&
		near(v.Z, o.Z, epsilon) && near(v.W, o.W, epsilon)
}

func min32(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func max32(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	} else if v > 1 {
		return 1
	}
	return v
}

func near(a, b, epsilon float32) bool {
	d := a - b
	return d <= epsilon && d >= -epsilon
}
