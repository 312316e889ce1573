package meshutils

// NormalsToColors encodes normals as RGBA vertex colors, mapping each
// component from [-1, 1] to [0, 1] with an alpha of one.
func NormalsToColors(normals []Float3) []Float4 {
	result := make([]Float4, len(normals))
	for i, n := range normals {
		result[i] = Float4{n.X*0.5 + 0.5, n.Y*0.5 + 0.5, n.Z*0.5 + 0.5, 1}
	}
	return result
}

// ColorsToNormals decodes normals previously encoded by NormalsToColors.
func ColorsToNormals(colors []Float4) []Float3 {
	result := make([]Float3, len(colors))
	for i, c := range colors {
		result[i] = Float3{c.X*2 - 1, c.Y*2 - 1, c.Z*2 - 1}.Normalize()
	}
	return result
}
