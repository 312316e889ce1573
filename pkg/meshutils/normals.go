package meshutils

// faceNormal computes the unnormalized normal of a polygon using Newell's
// method. Its length is twice the polygon's area, which makes it suitable for
// area weighting.
func faceNormal(points []Float3, corners []int32) Float3 {
	var normal Float3
	for i := range corners {
		current := points[corners[i]]
		next := points[corners[(i+1)%len(corners)]]
		normal.X += (current.Y - next.Y) * (current.Z + next.Z)
		normal.Y += (current.Z - next.Z) * (current.X + next.X)
		normal.Z += (current.X - next.X) * (current.Y + next.Y)
	}
	return normal
}

// GenerateNormals computes vertex normals for a polygon mesh. If smooth is
// true, the result has one area-weighted normal per point. Otherwise, the
// result has one normal per index, with every corner of a face sharing that
// face's normal. The topology must be valid.
func GenerateNormals(points []Float3, counts, indices []int32, smooth bool) []Float3 {
	var result []Float3
	if smooth {
		result = make([]Float3, len(points))
	} else {
		result = make([]Float3, len(indices))
	}

	var offset int32
	for _, count := range counts {
		corners := indices[offset : offset+count]
		normal := faceNormal(points, corners)
		if smooth {
			for _, index := range corners {
				result[index] = result[index].Add(normal)
			}
		} else {
			normal = normal.Normalize()
			for i := offset; i < offset+count; i++ {
				result[i] = normal
			}
		}
		offset += count
	}

	if smooth {
		for i := range result {
			result[i] = result[i].Normalize()
		}
	}
	return result
}

// GenerateTangents computes per-point tangents for a triangle mesh with
// per-point normals and texture coordinates. The W component of each tangent
// holds the bitangent sign.
func GenerateTangents(points, normals []Float3, uv []Float2, triangles []int32) []Float4 {
	tangents := make([]Float3, len(points))
	bitangents := make([]Float3, len(points))

	// Accumulate per-triangle tangent frames.
	for t := 0; t+2 < len(triangles); t += 3 {
		i0, i1, i2 := triangles[t], triangles[t+1], triangles[t+2]
		e1 := points[i1].Sub(points[i0])
		e2 := points[i2].Sub(points[i0])
		d1 := uv[i1].Sub(uv[i0])
		d2 := uv[i2].Sub(uv[i0])
		denominator := d1.X*d2.Y - d2.X*d1.Y
		if denominator == 0 {
			continue
		}
		r := 1 / denominator
		tangent := e1.Scale(d2.Y).Sub(e2.Scale(d1.Y)).Scale(r)
		bitangent := e2.Scale(d1.X).Sub(e1.Scale(d2.X)).Scale(r)
		for _, index := range [3]int32{i0, i1, i2} {
			tangents[index] = tangents[index].Add(tangent)
			bitangents[index] = bitangents[index].Add(bitangent)
		}
	}

	// Orthogonalize against the normals and compute handedness.
	result := make([]Float4, len(points))
	for i := range points {
		n := normals[i]
		tangent := tangents[i].Sub(n.Scale(n.Dot(tangents[i]))).Normalize()
		if tangent.Length() == 0 {
			result[i] = Float4{1, 0, 0, 1}
			continue
		}
		sign := float32(1)
		if n.Cross(tangent).Dot(bitangents[i]) < 0 {
			sign = -1
		}
		result[i] = Float4{tangent.X, tangent.Y, tangent.Z, sign}
	}
	return result
}
