package scene

import (
	"testing"

	"github.com/mutagen-io/meshsync/pkg/meshutils"
)

// TestDiffIdentical tests that identical scenes produce no changes.
func TestDiffIdentical(t *testing.T) {
	if changes := Diff(newTestScene(), newTestScene()); len(changes) != 0 {
		t.Error("identical scenes produced changes:", len(changes))
	}
}

// TestDiffApply tests that applying a diff reproduces the target.
func TestDiffApply(t *testing.T) {
	base := newTestScene()
	target := newTestScene()
	target.Entities["/Root/Light"].Light.Intensity = 3
	if _, err := target.Remove("/Other"); err != nil {
		t.Fatal("unable to remove entity:", err)
	}
	if err := target.Upsert(NewEntity(EntityTypeTransform, "/New")); err != nil {
		t.Fatal("unable to add entity:", err)
	}

	changes := Diff(base, target)
	if len(changes) != 3 {
		t.Fatal("unexpected change count:", len(changes))
	}
	if !changes[0].IsRemoval() || changes[0].Path != "/Other" {
		t.Error("removal not listed first:", changes[0].Path)
	}
	if changes[1].Path != "/New" || changes[1].Old != nil {
		t.Error("unexpected creation change:", changes[1].Path)
	}
	if changes[2].Path != "/Root/Light" || changes[2].Old == nil {
		t.Error("unexpected modification change:", changes[2].Path)
	}
	for i, change := range changes {
		if err := change.EnsureValid(); err != nil {
			t.Errorf("change %d invalid: %v", i, err)
		}
	}

	result, err := Apply(base, changes)
	if err != nil {
		t.Fatal("unable to apply changes:", err)
	}
	if residual := Diff(result, target); len(residual) != 0 {
		t.Error("applied scene differs from target:", len(residual))
	}
	if base.Entities["/Other"] == nil {
		t.Error("apply modified base scene")
	}
}

// TestDiffCollapsesRemovals tests that removals beneath removed ancestors are
// collapsed.
func TestDiffCollapsesRemovals(t *testing.T) {
	base := newTestScene()
	target := newTestScene()
	if _, err := target.Remove("/Root"); err != nil {
		t.Fatal("unable to remove entity:", err)
	}
	changes := Diff(base, target)
	if len(changes) != 1 || changes[0].Path != "/Root" || !changes[0].IsRemoval() {
		t.Error("removals not collapsed:", len(changes))
	}
}

// TestDiffRecreatesSurvivingDescendants tests that unchanged descendants of a
// removed entity are re-created.
func TestDiffRecreatesSurvivingDescendants(t *testing.T) {
	base := newTestScene()
	target := newTestScene()
	delete(target.Entities, "/Root")
	target.Entities["/Root/Mesh"].Mesh.Points[0] = meshutils.Float3{Z: 1}

	changes := Diff(base, target)
	if len(changes) != 4 {
		t.Fatal("unexpected change count:", len(changes))
	}
	if changes[0].Path != "/Root" || !changes[0].IsRemoval() {
		t.Error("ancestor removal not listed first")
	}
	result, err := Apply(base, changes)
	if err != nil {
		t.Fatal("unable to apply changes:", err)
	}
	if result.Len() != target.Len() {
		t.Error("entity count mismatch after apply:", result.Len(), target.Len())
	}
	if residual := Diff(result, target); len(residual) != 0 {
		t.Error("applied scene differs from target:", len(residual))
	}
}

// TestHashSensitivity tests that hashes change with content.
func TestHashSensitivity(t *testing.T) {
	a := newTestMesh("/Mesh")
	b := newTestMesh("/Mesh")
	if Hash(a) != Hash(b) {
		t.Error("identical entities hash differently")
	}
	b.Visible = false
	if Hash(a) == Hash(b) {
		t.Error("visibility change not reflected in hash")
	}
}
