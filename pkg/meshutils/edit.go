package meshutils

import (
	"github.com/pkg/errors"
)

// The normal editing operations below modify a normals array in place. Each
// takes a selection array holding one weight in [0, 1] per normal; a weight of
// zero leaves the normal untouched and a weight of one applies the operation
// fully. Operations that need positions take a points array parallel to the
// normals array.

// checkSelection validates the lengths of parallel editing arrays.
func checkSelection(normals []Float3, selection []float32, points []Float3, needPoints bool) error {
	if len(selection) != len(normals) {
		return errors.Errorf("selection length (%d) does not match normal count (%d)", len(selection), len(normals))
	} else if needPoints && len(points) != len(normals) {
		return errors.Errorf("point count (%d) does not match normal count (%d)", len(points), len(normals))
	}
	return nil
}

// ApplySet blends selected normals toward a fixed value.
func ApplySet(normals []Float3, selection []float32, value Float3) error {
	if err := checkSelection(normals, selection, nil, false); err != nil {
		return err
	}
	value = value.Normalize()
	for i, weight := range selection {
		if weight > 0 {
			normals[i] = normals[i].Lerp(value, clamp01(weight)).Normalize()
		}
	}
	return nil
}

// ApplyMove offsets selected normals by amount and renormalizes them.
func ApplyMove(normals []Float3, selection []float32, amount Float3) error {
	if err := checkSelection(normals, selection, nil, false); err != nil {
		return err
	}
	for i, weight := range selection {
		if weight > 0 {
			normals[i] = normals[i].Add(amount.Scale(clamp01(weight))).Normalize()
		}
	}
	return nil
}

// ApplyRotate rotates selected normals, with partial weights interpolating
// between no rotation and the full rotation.
func ApplyRotate(normals []Float3, selection []float32, rotation Quaternion) error {
	if err := checkSelection(normals, selection, nil, false); err != nil {
		return err
	}
	rotation = rotation.Normalize()
	for i, weight := range selection {
		if weight > 0 {
			partial := IdentityQuaternion.Slerp(rotation, clamp01(weight))
			normals[i] = partial.Rotate(normals[i]).Normalize()
		}
	}
	return nil
}

// ApplyRotatePivot rotates selected normals with a falloff based on distance
// from a pivot: the selected point farthest from the pivot receives the full
// rotation and the pivot itself receives none.
func ApplyRotatePivot(normals, points []Float3, selection []float32, rotation Quaternion, pivot Float3) error {
	if err := checkSelection(normals, selection, points, true); err != nil {
		return err
	}

	// Find the farthest selected point.
	var maximum float32
	for i, weight := range selection {
		if weight > 0 {
			maximum = max32(maximum, points[i].Sub(pivot).Length())
		}
	}
	if maximum == 0 {
		return nil
	}

	// Apply the rotation with falloff.
	rotation = rotation.Normalize()
	for i, weight := range selection {
		if weight > 0 {
			falloff := points[i].Sub(pivot).Length() / maximum
			partial := IdentityQuaternion.Slerp(rotation, clamp01(weight)*falloff)
			normals[i] = partial.Rotate(normals[i]).Normalize()
		}
	}
	return nil
}

// ApplyScale bends selected normals away from (or toward) a pivot. Each normal
// is offset by its point's displacement from the pivot multiplied by scale-1,
// so a scale of one on every axis leaves normals unchanged.
func ApplyScale(normals, points []Float3, selection []float32, scale, pivot Float3) error {
	if err := checkSelection(normals, selection, points, true); err != nil {
		return err
	}
	factor := scale.Sub(Float3{1, 1, 1})
	for i, weight := range selection {
		if weight > 0 {
			offset := points[i].Sub(pivot).Mul(factor).Scale(clamp01(weight))
			normals[i] = normals[i].Add(offset).Normalize()
		}
	}
	return nil
}

// ApplyEqualize smooths selected normals toward the average of the selected
// normals whose points lie within radius, by amount.
func ApplyEqualize(normals, points []Float3, selection []float32, radius, amount float32) error {
	if err := checkSelection(normals, selection, points, true); err != nil {
		return err
	} else if radius < 0 {
		return errors.New("negative equalize radius")
	}

	// Compute averages against the unmodified normals.
	original := append([]Float3(nil), normals...)
	radiusSquared := radius * radius
	for i, weight := range selection {
		if weight <= 0 {
			continue
		}
		var average Float3
		for j, other := range selection {
			if other <= 0 {
				continue
			}
			d := points[j].Sub(points[i])
			if d.Dot(d) <= radiusSquared {
				average = average.Add(original[j])
			}
		}
		average = average.Normalize()
		normals[i] = original[i].Lerp(average, clamp01(weight*amount)).Normalize()
	}
	return nil
}

// ResetNormals blends selected normals back toward reference normals, usually
// ones produced by GenerateNormals.
func ResetNormals(normals, reference []Float3, selection []float32) error {
	if err := checkSelection(normals, selection, nil, false); err != nil {
		return err
	} else if len(reference) != len(normals) {
		return errors.Errorf("reference normal count (%d) does not match normal count (%d)", len(reference), len(normals))
	}
	for i, weight := range selection {
		if weight > 0 {
			normals[i] = normals[i].Lerp(reference[i], clamp01(weight)).Normalize()
		}
	}
	return nil
}

// SelectAll returns a selection that fully selects count normals.
func SelectAll(count int) []float32 {
	result := make([]float32, count)
	for i := range result {
		result[i] = 1
	}
	return result
}
