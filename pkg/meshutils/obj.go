package meshutils

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
)

// OBJMesh is a polygon mesh to be written in Wavefront OBJ format. Normals and
// UV may be empty, or may hold one element per point or one element per index.
type OBJMesh struct {
	// Name is the object name.
	Name string
	// Points are the vertex positions.
	Points []Float3
	// Normals are the optional vertex normals.
	Normals []Float3
	// UV are the optional texture coordinates.
	UV []Float2
	// Counts holds the number of vertices in each face.
	Counts []int32
	// Indices holds the point index of each face corner.
	Indices []int32
	// MaterialIDs optionally holds the material of each face. It's only used
	// if OBJOptions.MakeSubmeshes is set.
	MaterialIDs []int32
	// MaterialNames maps material identifiers to the names used in usemtl
	// statements. Unnamed materials are written as "material<ID>".
	MaterialNames map[int32]string
	// Transform is the object's local-to-world transform. It is only used if
	// OBJOptions.ApplyTransform is set.
	Transform Float4x4
}

// materialName returns the usemtl name for a material.
func (m *OBJMesh) materialName(id int32) string {
	if name := m.MaterialNames[id]; name != "" {
		return strings.ReplaceAll(name, " ", "_")
	}
	return fmt.Sprintf("material%d", id)
}

// OBJOptions control OBJ output.
type OBJOptions struct {
	// ApplyTransform indicates that vertex data should be transformed into
	// world space using the mesh transform.
	ApplyTransform bool
	// FlipHandedness indicates that X coordinates should be negated and face
	// winding reversed, converting left-handed data into OBJ's right-handed
	// convention.
	FlipHandedness bool
	// FlipFaces indicates that face winding should be reversed.
	FlipFaces bool
	// MakeSubmeshes indicates that faces should be grouped by material, with
	// each group written under its own g and usemtl statements.
	MakeSubmeshes bool
}

// OBJWriter writes meshes to a single OBJ stream, tracking the index offsets
// required when multiple objects share the stream.
type OBJWriter struct {
	// writer is the buffered output.
	writer *bufio.Writer
	// options are the output options.
	options OBJOptions
	// pointOffset is the number of positions written so far.
	pointOffset int
	// uvOffset is the number of texture coordinates written so far.
	uvOffset int
	// normalOffset is the number of normals written so far.
	normalOffset int
}

// NewOBJWriter creates a new OBJ writer.
func NewOBJWriter(writer io.Writer, options OBJOptions) *OBJWriter {
	return &OBJWriter{
		writer:  bufio.NewWriter(writer),
		options: options,
	}
}

// negate negates a value without producing negative zero, which would
// otherwise be printed as "-0".
func negate(v float32) float32 {
	return 0 - v
}

// attributeIndex computes the index of the attribute used at a corner, given
// the attribute count. Attributes whose count matches both the point and index
// counts are treated as per-point. It returns -1 if the attribute is absent.
func attributeIndex(count, pointCount, indexCount int, corner int32, point int32) int {
	switch count {
	case 0:
		return -1
	case pointCount:
		return int(point)
	case indexCount:
		return int(corner)
	}
	return -1
}

// Write writes a mesh to the stream. The caller must invoke Flush after the
// final mesh.
func (w *OBJWriter) Write(mesh *OBJMesh) error {
	// Validate the mesh.
	if err := ValidateTopology(len(mesh.Points), mesh.Counts, mesh.Indices); err != nil {
		return errors.Wrap(err, "invalid topology")
	}
	pointCount, indexCount := len(mesh.Points), len(mesh.Indices)
	for _, attribute := range []struct {
		name  string
		count int
	}{{"normal", len(mesh.Normals)}, {"uv", len(mesh.UV)}} {
		if attribute.count != 0 && attribute.count != pointCount && attribute.count != indexCount {
			return errors.Errorf("%s count (%d) matches neither point nor index count", attribute.name, attribute.count)
		}
	}
	if len(mesh.MaterialIDs) != 0 && len(mesh.MaterialIDs) != len(mesh.Counts) {
		return errors.Errorf("material ID count (%d) does not match face count (%d)", len(mesh.MaterialIDs), len(mesh.Counts))
	}

	// Write the object header.
	if mesh.Name != "" {
		fmt.Fprintf(w.writer, "o %s\n", mesh.Name)
	}

	// Write positions.
	for _, p := range mesh.Points {
		if w.options.ApplyTransform {
			p = mesh.Transform.TransformPoint(p)
		}
		if w.options.FlipHandedness {
			p.X = negate(p.X)
		}
		fmt.Fprintf(w.writer, "v %g %g %g\n", p.X, p.Y, p.Z)
	}

	// Write texture coordinates.
	for _, t := range mesh.UV {
		fmt.Fprintf(w.writer, "vt %g %g\n", t.X, t.Y)
	}

	// Write normals. These are transformed by the inverse transpose, which we
	// apply as the inverse's rows.
	var normalTransform Float4x4
	if w.options.ApplyTransform {
		if inverse, ok := mesh.Transform.InverseAffine(); ok {
			for r := 0; r < 3; r++ {
				for c := 0; c < 3; c++ {
					normalTransform[r][c] = inverse[c][r]
				}
			}
		} else {
			normalTransform = IdentityMatrix
		}
	}
	for _, n := range mesh.Normals {
		if w.options.ApplyTransform {
			n = normalTransform.TransformDirection(n).Normalize()
		}
		if w.options.FlipHandedness {
			n.X = negate(n.X)
		}
		fmt.Fprintf(w.writer, "vn %g %g %g\n", n.X, n.Y, n.Z)
	}

	// Compute the corner ordering. Each of a face flip, a handedness flip, and
	// a mirroring transform reverses the winding.
	reverse := w.options.FlipFaces != w.options.FlipHandedness
	if w.options.ApplyTransform && mesh.Transform.Determinant() < 0 {
		reverse = !reverse
	}
	var order []int32
	if reverse {
		order = ReverseWindingPermutation(mesh.Counts)
	} else {
		order = make([]int32, indexCount)
		for i := range order {
			order[i] = int32(i)
		}
	}

	// Compute face offsets.
	offsets := make([]int32, len(mesh.Counts))
	var offset int32
	for f, count := range mesh.Counts {
		offsets[f] = offset
		offset += count
	}

	// Group faces by material, ordered by first appearance, if requested.
	var groups [][]int
	var groupMaterials []int32
	if w.options.MakeSubmeshes && len(mesh.MaterialIDs) > 0 {
		indices := make(map[int32]int)
		for f, id := range mesh.MaterialIDs {
			g, ok := indices[id]
			if !ok {
				g = len(groups)
				indices[id] = g
				groups = append(groups, nil)
				groupMaterials = append(groupMaterials, id)
			}
			groups[g] = append(groups[g], f)
		}
	} else {
		all := make([]int, len(mesh.Counts))
		for f := range all {
			all[f] = f
		}
		groups = [][]int{all}
	}

	// Write faces.
	for g, faces := range groups {
		if groupMaterials != nil {
			name := mesh.Name
			if name == "" {
				name = "submesh"
			}
			fmt.Fprintf(w.writer, "g %s_%d\nusemtl %s\n", name, g, mesh.materialName(groupMaterials[g]))
		}
		for _, f := range faces {
			w.writeFace(mesh, order[offsets[f]:offsets[f]+mesh.Counts[f]])
		}
	}

	// Update offsets.
	w.pointOffset += pointCount
	w.uvOffset += len(mesh.UV)
	w.normalOffset += len(mesh.Normals)

	// Done.
	return nil
}

// writeFace writes a single face given its corners in output order.
func (w *OBJWriter) writeFace(mesh *OBJMesh, corners []int32) {
	pointCount, indexCount := len(mesh.Points), len(mesh.Indices)
	w.writer.WriteString("f")
	for _, corner := range corners {
		point := mesh.Indices[corner]
		uv := attributeIndex(len(mesh.UV), pointCount, indexCount, corner, point)
		normal := attributeIndex(len(mesh.Normals), pointCount, indexCount, corner, point)
		p := int(point) + w.pointOffset + 1
		switch {
		case uv >= 0 && normal >= 0:
			fmt.Fprintf(w.writer, " %d/%d/%d", p, uv+w.uvOffset+1, normal+w.normalOffset+1)
		case uv >= 0:
			fmt.Fprintf(w.writer, " %d/%d", p, uv+w.uvOffset+1)
		case normal >= 0:
			fmt.Fprintf(w.writer, " %d//%d", p, normal+w.normalOffset+1)
		default:
			fmt.Fprintf(w.writer, " %d", p)
		}
	}
	w.writer.WriteString("\n")
}

// Flush flushes buffered output to the underlying writer.
func (w *OBJWriter) Flush() error {
	return w.writer.Flush()
}

// WriteOBJ writes a single mesh as a complete OBJ stream.
func WriteOBJ(writer io.Writer, mesh *OBJMesh, options OBJOptions) error {
	w := NewOBJWriter(writer, options)
	if err := w.Write(mesh); err != nil {
		return err
	}
	return errors.Wrap(w.Flush(), "unable to flush output")
}
