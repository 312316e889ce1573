package scene

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mutagen-io/meshsync/pkg/meshutils"
)

// TestEntityMarshalUnmarshal tests entity encoding for every entity type.
func TestEntityMarshalUnmarshal(t *testing.T) {
	s := newTestScene()
	hidden := NewEntity(EntityTypeTransform, "/Hidden")
	hidden.Visible = false
	hidden.Reference = "/Root/Mesh"
	hidden.ID = -3
	entities := []*Entity{hidden}
	for _, path := range s.Paths() {
		entities = append(entities, s.Entities[path])
	}
	entities[len(entities)-1].Mesh.MaterialIDs = []int32{-1}
	entities[len(entities)-1].Mesh.Flags = MeshFlagDoubleSided
	for _, entity := range entities {
		decoded, err := UnmarshalEntity(entity.Marshal())
		if err != nil {
			t.Errorf("%s: unable to unmarshal: %v", entity.Path, err)
			continue
		}
		if err := decoded.EnsureValid(); err != nil {
			t.Errorf("%s: decoded entity invalid: %v", entity.Path, err)
		}
		if Hash(decoded) != Hash(entity) {
			t.Errorf("%s: decoded entity hash mismatch", entity.Path)
		}
		if decoded.Visible != entity.Visible || decoded.Reference != entity.Reference || decoded.ID != entity.ID {
			t.Errorf("%s: transform data mismatch", entity.Path)
		}
	}
}

// TestSceneMarshalUnmarshal tests scene encoding.
func TestSceneMarshalUnmarshal(t *testing.T) {
	original := newTestScene()
	data := original.Marshal()
	decoded, err := Unmarshal(data)
	if err != nil {
		t.Fatal("unable to unmarshal scene:", err)
	}
	if decoded.Settings != original.Settings {
		t.Error("settings mismatch:", decoded.Settings)
	}
	if changes := Diff(original, decoded); len(changes) != 0 {
		t.Error("entity mismatch after round trip:", len(changes))
	}
	if len(decoded.Materials) != 1 || *decoded.Materials[1] != *original.Materials[1] {
		t.Error("material mismatch after round trip")
	}
	if len(decoded.Constraints) != 1 || HashConstraint(decoded.Constraints["/Root/Camera"]) != HashConstraint(original.Constraints["/Root/Camera"]) {
		t.Error("constraint mismatch after round trip")
	}
	if string(decoded.Marshal()) != string(data) {
		t.Error("encoding not deterministic")
	}
}

// TestUnmarshalInvalidEntity tests that invalid entities are rejected when
// decoding scenes.
func TestUnmarshalInvalidEntity(t *testing.T) {
	s := New(Settings{})
	bad := newTestMesh("/Bad")
	bad.Mesh.Indices = []int32{0, 1, 2, 9}
	s.Entities[bad.Path] = bad
	if _, err := Unmarshal(s.Marshal()); err == nil {
		t.Error("scene with invalid entity decoded successfully")
	}
}

// TestLoadSave tests scene persistence.
func TestLoadSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.mss")
	original := newTestScene()
	original.Entities["/Root/Mesh"].Mesh.Normals = make([]meshutils.Float3, 4)
	if err := Save(path, original); err != nil {
		t.Fatal("unable to save scene:", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatal("unable to load scene:", err)
	}
	if changes := Diff(original, loaded); len(changes) != 0 {
		t.Error("scene mismatch after load:", len(changes))
	}

	// Non-existence errors pass through.
	if _, err := Load(filepath.Join(t.TempDir(), "missing")); !os.IsNotExist(err) {
		t.Error("unexpected error for missing file:", err)
	}

	// Files without the scene header are rejected.
	other := filepath.Join(t.TempDir(), "other")
	if err := os.WriteFile(other, []byte("not a scene"), 0600); err != nil {
		t.Fatal("unable to write file:", err)
	}
	if _, err := Load(other); err == nil {
		t.Error("non-scene file loaded successfully")
	}
}
