package scene

import (
	"github.com/pkg/errors"

	"github.com/mutagen-io/meshsync/pkg/meshutils"
)

// EntityType identifies the kind of an entity.
type EntityType uint8

const (
	// EntityTypeTransform is a plain transform node.
	EntityTypeTransform EntityType = iota + 1
	// EntityTypeCamera is a camera.
	EntityTypeCamera
	// EntityTypeLight is a light.
	EntityTypeLight
	// EntityTypeMesh is a polygon mesh.
	EntityTypeMesh
)

// String returns a human-readable representation of the entity type.
func (t EntityType) String() string {
	switch t {
	case EntityTypeTransform:
		return "transform"
	case EntityTypeCamera:
		return "camera"
	case EntityTypeLight:
		return "light"
	case EntityTypeMesh:
		return "mesh"
	default:
		return "unknown"
	}
}

// Transform is the data shared by all entities.
type Transform struct {
	// Path is the normalized entity path.
	Path string
	// ID is a host-assigned identifier, or zero if unassigned.
	ID int32
	// Index is the entity's sibling order.
	Index int32
	// Position is the local position.
	Position meshutils.Float3
	// Rotation is the local rotation.
	Rotation meshutils.Quaternion
	// Scale is the local scale.
	Scale meshutils.Float3
	// Visible indicates whether or not the entity is visible.
	Visible bool
	// Reference is the path of an entity whose content this entity
	// instantiates, if any.
	Reference string
}

// Matrix returns the local transform matrix.
func (t *Transform) Matrix() meshutils.Float4x4 {
	return meshutils.TRS(t.Position, t.Rotation, t.Scale)
}

// Camera is the camera-specific entity data.
type Camera struct {
	// Orthographic indicates an orthographic projection.
	Orthographic bool
	// FieldOfView is the vertical field of view in degrees.
	FieldOfView float32
	// NearPlane is the near clipping distance.
	NearPlane float32
	// FarPlane is the far clipping distance.
	FarPlane float32
	// Aspect is the width-to-height aspect ratio, or zero to use the
	// viewer's.
	Aspect float32
}

// LightType identifies the kind of a light.
type LightType uint8

const (
	// LightTypeDirectional is a directional light.
	LightTypeDirectional LightType = iota + 1
	// LightTypeSpot is a spot light.
	LightTypeSpot
	// LightTypePoint is a point light.
	LightTypePoint
	// LightTypeArea is an area light.
	LightTypeArea
)

// String returns a human-readable representation of the light type.
func (t LightType) String() string {
	switch t {
	case LightTypeDirectional:
		return "directional"
	case LightTypeSpot:
		return "spot"
	case LightTypePoint:
		return "point"
	case LightTypeArea:
		return "area"
	default:
		return "unknown"
	}
}

// Light is the light-specific entity data.
type Light struct {
	// Type is the light type.
	Type LightType
	// Color is the light's RGBA color.
	Color meshutils.Float4
	// Intensity is the light's intensity.
	Intensity float32
	// Range is the light's range for point and spot lights.
	Range float32
	// SpotAngle is the cone angle in degrees for spot lights.
	SpotAngle float32
	// Shadows indicates whether or not the light casts shadows.
	Shadows bool
}

// MeshFlags control how a receiver refines mesh data.
type MeshFlags uint32

const (
	// MeshFlagGenerateNormals requests smooth normal generation if the mesh
	// has no normals.
	MeshFlagGenerateNormals MeshFlags = 1 << iota
	// MeshFlagFlatNormals requests flat rather than smooth generated normals.
	MeshFlagFlatNormals
	// MeshFlagGenerateTangents requests tangent generation if the mesh has
	// per-point normals and texture coordinates but no tangents.
	MeshFlagGenerateTangents
	// MeshFlagDoubleSided marks the mesh as double-sided.
	MeshFlagDoubleSided
)

// Mesh is the mesh-specific entity data. Per-vertex attributes may hold one
// element per point or one element per index.
type Mesh struct {
	// Points are the vertex positions.
	Points []meshutils.Float3
	// Normals are the vertex normals.
	Normals []meshutils.Float3
	// Tangents are the vertex tangents, with the bitangent sign in W.
	Tangents []meshutils.Float4
	// UV0 is the primary texture coordinate set.
	UV0 []meshutils.Float2
	// UV1 is the secondary texture coordinate set.
	UV1 []meshutils.Float2
	// Colors are the vertex colors.
	Colors []meshutils.Float4
	// Counts holds the number of vertices in each face.
	Counts []int32
	// Indices holds the point index of each face corner.
	Indices []int32
	// MaterialIDs holds the material of each face. It may be empty, in which
	// case every face uses material zero.
	MaterialIDs []int32
	// Flags are the refinement flags.
	Flags MeshFlags
}

// Entity is a scene graph node.
type Entity struct {
	// Type is the entity type.
	Type EntityType
	// Transform holds the data common to all entity types.
	Transform
	// Camera is the camera data, set only for cameras.
	Camera *Camera
	// Light is the light data, set only for lights.
	Light *Light
	// Mesh is the mesh data, set only for meshes.
	Mesh *Mesh
}

// NewEntity creates a visible entity of the specified type with an identity
// transform. Type-specific data is allocated with zero values.
func NewEntity(typ EntityType, path string) *Entity {
	result := &Entity{
		Type: typ,
		Transform: Transform{
			Path:     path,
			Rotation: meshutils.IdentityQuaternion,
			Scale:    meshutils.Float3{X: 1, Y: 1, Z: 1},
			Visible:  true,
		},
	}
	switch typ {
	case EntityTypeCamera:
		result.Camera = &Camera{FieldOfView: 60, NearPlane: 0.3, FarPlane: 1000}
	case EntityTypeLight:
		result.Light = &Light{Type: LightTypeDirectional, Color: meshutils.Float4{X: 1, Y: 1, Z: 1, W: 1}, Intensity: 1}
	case EntityTypeMesh:
		result.Mesh = &Mesh{}
	}
	return result
}

// attributeCountValid returns whether or not an attribute array length is
// acceptable for a mesh.
func attributeCountValid(count, points, indices int) bool {
	return count == 0 || count == points || count == indices
}

// EnsureValid ensures that the mesh's invariants are respected.
func (m *Mesh) EnsureValid() error {
	points, indices := len(m.Points), len(m.Indices)
	if err := meshutils.ValidateTopology(points, m.Counts, m.Indices); err != nil {
		return errors.Wrap(err, "invalid topology")
	}
	for _, attribute := range []struct {
		name  string
		count int
	}{
		{"normal", len(m.Normals)},
		{"tangent", len(m.Tangents)},
		{"uv0", len(m.UV0)},
		{"uv1", len(m.UV1)},
		{"color", len(m.Colors)},
	} {
		if !attributeCountValid(attribute.count, points, indices) {
			return errors.Errorf("%s count (%d) matches neither point count (%d) nor index count (%d)",
				attribute.name, attribute.count, points, indices)
		}
	}
	if len(m.MaterialIDs) != 0 && len(m.MaterialIDs) != len(m.Counts) {
		return errors.Errorf("material ID count (%d) does not match face count (%d)", len(m.MaterialIDs), len(m.Counts))
	}
	return nil
}

// Bounds computes the mesh's bounding box.
func (m *Mesh) Bounds() meshutils.Bounds {
	return meshutils.BoundsOf(m.Points)
}

// Submesh is a set of triangles sharing a material.
type Submesh struct {
	// MaterialID is the material identifier.
	MaterialID int32
	// Triangles holds point indices, three per triangle.
	Triangles []int32
}

// Submeshes triangulates the mesh and splits it by material, ordered by first
// appearance of each material.
func (m *Mesh) Submeshes() []Submesh {
	var result []Submesh
	lookup := make(map[int32]int)
	var offset int32
	for f, count := range m.Counts {
		var material int32
		if len(m.MaterialIDs) > 0 {
			material = m.MaterialIDs[f]
		}
		index, ok := lookup[material]
		if !ok {
			index = len(result)
			lookup[material] = index
			result = append(result, Submesh{MaterialID: material})
		}
		corners := m.Indices[offset : offset+count]
		for i := int32(1); i < count-1; i++ {
			result[index].Triangles = append(result[index].Triangles, corners[0], corners[i], corners[i+1])
		}
		offset += count
	}
	return result
}

// Refine applies the mesh's refinement flags, generating missing normals and
// tangents. The mesh must be valid.
func (m *Mesh) Refine() {
	if len(m.Normals) == 0 && m.Flags&(MeshFlagGenerateNormals|MeshFlagFlatNormals) != 0 {
		smooth := m.Flags&MeshFlagFlatNormals == 0
		m.Normals = meshutils.GenerateNormals(m.Points, m.Counts, m.Indices, smooth)
	}
	if len(m.Tangents) == 0 && m.Flags&MeshFlagGenerateTangents != 0 &&
		len(m.Normals) == len(m.Points) && len(m.UV0) == len(m.Points) && len(m.Points) > 0 {
		triangles := meshutils.Triangulate(m.Counts, m.Indices)
		m.Tangents = meshutils.GenerateTangents(m.Points, m.Normals, m.UV0, triangles)
	}
}

// EnsureValid ensures that the entity's invariants are respected.
func (e *Entity) EnsureValid() error {
	// A nil entity is not valid.
	if e == nil {
		return errors.New("nil entity")
	}

	// Validate the path.
	if !IsNormalized(e.Path) {
		return errors.Errorf("invalid entity path (%s)", e.Path)
	} else if e.Reference != "" && !IsNormalized(e.Reference) {
		return errors.Errorf("invalid reference path (%s)", e.Reference)
	}

	// Validate type-specific data.
	if (e.Camera != nil) != (e.Type == EntityTypeCamera) {
		return errors.New("camera data presence does not match entity type")
	} else if (e.Light != nil) != (e.Type == EntityTypeLight) {
		return errors.New("light data presence does not match entity type")
	} else if (e.Mesh != nil) != (e.Type == EntityTypeMesh) {
		return errors.New("mesh data presence does not match entity type")
	}
	switch e.Type {
	case EntityTypeTransform:
	case EntityTypeCamera:
		if e.Camera.NearPlane < 0 || e.Camera.FarPlane < e.Camera.NearPlane {
			return errors.New("invalid camera clipping planes")
		}
	case EntityTypeLight:
		if e.Light.Type < LightTypeDirectional || e.Light.Type > LightTypeArea {
			return errors.Errorf("unknown light type (%d)", e.Light.Type)
		}
	case EntityTypeMesh:
		if err := e.Mesh.EnsureValid(); err != nil {
			return errors.Wrap(err, "invalid mesh")
		}
	default:
		return errors.Errorf("unknown entity type (%d)", e.Type)
	}

	// Success.
	return nil
}

// Copy creates a deep copy of the entity.
func (e *Entity) Copy() *Entity {
	if e == nil {
		return nil
	}
	result := *e
	if e.Camera != nil {
		camera := *e.Camera
		result.Camera = &camera
	}
	if e.Light != nil {
		light := *e.Light
		result.Light = &light
	}
	if e.Mesh != nil {
		result.Mesh = &Mesh{
			Points:      append([]meshutils.Float3(nil), e.Mesh.Points...),
			Normals:     append([]meshutils.Float3(nil), e.Mesh.Normals...),
			Tangents:    append([]meshutils.Float4(nil), e.Mesh.Tangents...),
			UV0:         append([]meshutils.Float2(nil), e.Mesh.UV0...),
			UV1:         append([]meshutils.Float2(nil), e.Mesh.UV1...),
			Colors:      append([]meshutils.Float4(nil), e.Mesh.Colors...),
			Counts:      append([]int32(nil), e.Mesh.Counts...),
			Indices:     append([]int32(nil), e.Mesh.Indices...),
			MaterialIDs: append([]int32(nil), e.Mesh.MaterialIDs...),
			Flags:       e.Mesh.Flags,
		}
	}
	return &result
}

// Material is a surface material referenced by mesh faces.
type Material struct {
	// ID is the material identifier.
	ID int32
	// Name is the material name.
	Name string
	// Color is the base RGBA color.
	Color meshutils.Float4
	// Emission is the emissive RGBA color.
	Emission meshutils.Float4
	// Metallic is the metalness in [0, 1].
	Metallic float32
	// Smoothness is the smoothness in [0, 1].
	Smoothness float32
}

// Copy creates a copy of the material.
func (m *Material) Copy() *Material {
	if m == nil {
		return nil
	}
	result := *m
	return &result
}

// Handedness identifies a coordinate system convention.
type Handedness uint8

const (
	// HandednessLeft is a left-handed coordinate system.
	HandednessLeft Handedness = iota
	// HandednessRight is a right-handed coordinate system.
	HandednessRight
)

// String returns a human-readable representation of the handedness.
func (h Handedness) String() string {
	if h == HandednessRight {
		return "right"
	}
	return "left"
}

// Settings describe a scene's coordinate conventions.
type Settings struct {
	// Name is the scene name.
	Name string
	// Handedness is the coordinate system handedness.
	Handedness Handedness
	// ScaleFactor is the number of scene units per meter. Zero is treated as
	// one.
	ScaleFactor float32
}

// scale returns the effective scale factor.
func (s Settings) scale() float32 {
	if s.ScaleFactor == 0 {
		return 1
	}
	return s.ScaleFactor
}
