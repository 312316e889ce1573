package meshutils

// Bounds is an axis-aligned bounding box. The zero value is an empty box that
// contains nothing.
type Bounds struct {
	// Min is the minimum corner.
	Min Float3
	// Max is the maximum corner.
	Max Float3
	// valid indicates whether or not the box contains at least one point.
	valid bool
}

// BoundsOf computes the bounds of a set of points.
func BoundsOf(points []Float3) Bounds {
	var bounds Bounds
	for _, p := range points {
		bounds.Expand(p)
	}
	return bounds
}

// NewBounds creates bounds from explicit corners.
func NewBounds(min, max Float3) Bounds {
	return Bounds{Min: min, Max: max, valid: true}
}

// Empty returns whether or not the bounds contain no points.
func (b Bounds) Empty() bool {
	return !b.valid
}

// Expand grows the bounds to include p.
func (b *Bounds) Expand(p Float3) {
	if !b.valid {
		b.Min, b.Max, b.valid = p, p, true
		return
	}
	b.Min = b.Min.Min(p)
	b.Max = b.Max.Max(p)
}

// Center returns the center of the bounds.
func (b Bounds) Center() Float3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Extents returns the half-size of the bounds along each axis.
func (b Bounds) Extents() Float3 {
	return b.Max.Sub(b.Min).Scale(0.5)
}
