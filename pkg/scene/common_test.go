package scene

import (
	"github.com/mutagen-io/meshsync/pkg/constraints"
	"github.com/mutagen-io/meshsync/pkg/meshutils"
)

// newTestMesh creates a mesh entity holding a unit quad.
func newTestMesh(path string) *Entity {
	entity := NewEntity(EntityTypeMesh, path)
	entity.Mesh.Points = []meshutils.Float3{{X: 0}, {X: 1}, {X: 1, Y: 1}, {Y: 1}}
	entity.Mesh.UV0 = []meshutils.Float2{{X: 0}, {X: 1}, {X: 1, Y: 1}, {Y: 1}}
	entity.Mesh.Counts = []int32{4}
	entity.Mesh.Indices = []int32{0, 1, 2, 3}
	return entity
}

// newTestScene creates a small scene exercising every entity type.
func newTestScene() *Scene {
	s := New(Settings{Name: "test", Handedness: HandednessLeft, ScaleFactor: 1})
	root := NewEntity(EntityTypeTransform, "/Root")
	root.Position = meshutils.Float3{X: 10}
	camera := NewEntity(EntityTypeCamera, "/Root/Camera")
	camera.Index = 2
	light := NewEntity(EntityTypeLight, "/Root/Light")
	light.Light.Range = 5
	light.Index = 1
	mesh := newTestMesh("/Root/Mesh")
	mesh.Position = meshutils.Float3{X: 1, Y: 2, Z: 3}
	mesh.Index = 0
	other := NewEntity(EntityTypeTransform, "/Other")
	other.Index = 1
	for _, entity := range []*Entity{root, camera, light, mesh, other} {
		if err := s.Upsert(entity); err != nil {
			panic(err)
		}
	}
	s.UpsertMaterial(&Material{ID: 1, Name: "red", Color: meshutils.Float4{X: 1, W: 1}})
	if err := s.SetConstraint(&constraints.Constraint{
		Path:    "/Root/Camera",
		Kind:    constraints.KindAim,
		Sources: []constraints.Source{{Path: "/Root/Mesh", Weight: 1}},
	}); err != nil {
		panic(err)
	}
	return s
}
