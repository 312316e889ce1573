package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/mutagen-io/meshsync/pkg/message"
	"github.com/mutagen-io/meshsync/pkg/meshutils"
	"github.com/mutagen-io/meshsync/pkg/scene"
)

// newTestScene creates a scene with a visible triangle, a hidden quad, and a
// camera.
func newTestScene(t *testing.T) *scene.Scene {
	t.Helper()
	data := scene.New(scene.Settings{Handedness: scene.HandednessRight, ScaleFactor: 1})
	triangle := scene.NewEntity(scene.EntityTypeMesh, "/Triangle")
	triangle.Mesh.Points = []meshutils.Float3{{X: 0}, {X: 1}, {Y: 1}}
	triangle.Mesh.Counts = []int32{3}
	triangle.Mesh.Indices = []int32{0, 1, 2}
	quad := scene.NewEntity(scene.EntityTypeMesh, "/Quad")
	quad.Visible = false
	quad.Mesh.Points = []meshutils.Float3{{X: 0}, {X: 1}, {X: 1, Y: 1}, {Y: 1}}
	quad.Mesh.Counts = []int32{4}
	quad.Mesh.Indices = []int32{0, 1, 2, 3}
	for _, entity := range []*scene.Entity{triangle, quad, scene.NewEntity(scene.EntityTypeCamera, "/Camera")} {
		if err := data.Upsert(entity); err != nil {
			t.Fatal("unable to add entity:", err)
		}
	}
	return data
}

// TestExportOBJ tests exportOBJ.
func TestExportOBJ(t *testing.T) {
	testCases := []struct {
		includeHidden bool
		expected      int
	}{
		{false, 1},
		{true, 2},
	}
	for i, testCase := range testCases {
		buffer := &bytes.Buffer{}
		writer := meshutils.NewOBJWriter(buffer, meshutils.OBJOptions{ApplyTransform: true})
		count, err := exportOBJ(newTestScene(t), writer, exportSelection{includeHidden: testCase.includeHidden})
		if err != nil {
			t.Fatalf("test index %d: unable to export: %v", i, err)
		} else if count != testCase.expected {
			t.Errorf("test index %d: exported count mismatch: %d != %d", i, count, testCase.expected)
		}
		output := buffer.String()
		if !strings.Contains(output, "o /Triangle") {
			t.Errorf("test index %d: triangle missing from output", i)
		}
		if strings.Contains(output, "o /Quad") != testCase.includeHidden {
			t.Errorf("test index %d: unexpected hidden mesh handling", i)
		}
		if strings.Contains(output, "/Camera") {
			t.Errorf("test index %d: camera exported", i)
		}
	}
}

// TestExportOBJSelection tests subtree selection and submesh grouping in
// exportOBJ.
func TestExportOBJSelection(t *testing.T) {
	// Create a hierarchy with a multi-material child.
	data := newTestScene(t)
	child := scene.NewEntity(scene.EntityTypeMesh, "/Triangle/Child")
	child.Mesh.Points = []meshutils.Float3{{X: 0}, {X: 1}, {Y: 1}, {X: 1, Y: 1}}
	child.Mesh.Counts = []int32{3, 3}
	child.Mesh.Indices = []int32{0, 1, 2, 1, 3, 2}
	child.Mesh.MaterialIDs = []int32{1, 2}
	if err := data.Upsert(child); err != nil {
		t.Fatal("unable to add entity:", err)
	}
	data.UpsertMaterial(&scene.Material{ID: 1, Name: "red"})

	testCases := []struct {
		selection exportSelection
		expected  []string
		absent    []string
	}{
		{exportSelection{root: "/Triangle", children: true}, []string{"o /Triangle\n", "o /Triangle/Child\n"}, []string{"/Quad"}},
		{exportSelection{root: "/Triangle"}, []string{"o /Triangle\n"}, []string{"/Triangle/Child"}},
		{exportSelection{root: "/Triangle/Child"}, []string{"usemtl red\n", "usemtl material2\n"}, []string{"o /Triangle\n"}},
	}
	for i, testCase := range testCases {
		buffer := &bytes.Buffer{}
		writer := meshutils.NewOBJWriter(buffer, meshutils.OBJOptions{ApplyTransform: true, MakeSubmeshes: true})
		if _, err := exportOBJ(data, writer, testCase.selection); err != nil {
			t.Fatalf("test index %d: unable to export: %v", i, err)
		}
		output := buffer.String()
		for _, expected := range testCase.expected {
			if !strings.Contains(output, expected) {
				t.Errorf("test index %d: output missing %q", i, expected)
			}
		}
		for _, absent := range testCase.absent {
			if strings.Contains(output, absent) {
				t.Errorf("test index %d: output unexpectedly contains %q", i, absent)
			}
		}
	}
}

// TestEditNormalsRegenerate tests that an empty edit regenerates normals.
func TestEditNormalsRegenerate(t *testing.T) {
	for _, smooth := range []bool{true, false} {
		data := newTestScene(t)
		if count, err := editNormals(data, nil, &normalEdit{}, smooth); err != nil {
			t.Fatalf("unable to regenerate normals (smooth = %t): %v", smooth, err)
		} else if count != 2 {
			t.Errorf("unexpected mesh count (smooth = %t): %d", smooth, count)
		}
		for _, path := range []string{"/Triangle", "/Quad"} {
			if len(data.Entities[path].Mesh.Normals) == 0 {
				t.Errorf("normals not generated for %s (smooth = %t)", path, smooth)
			}
		}
	}
}

// TestEditNormals tests normal editing operations and mesh filtering.
func TestEditNormals(t *testing.T) {
	down := meshutils.Float3{Z: -1}
	rotation := meshutils.QuaternionFromEuler(meshutils.Float3{X: 180})
	testCases := []struct {
		description string
		edit        *normalEdit
		expected    meshutils.Float3
	}{
		{"set", &normalEdit{set: &down}, down},
		{"rotate", &normalEdit{rotate: &rotation}, down},
		{"set then reset", &normalEdit{set: &down, reset: true}, meshutils.Float3{Z: 1}},
		{"equalize", &normalEdit{equalize: &[2]float32{10, 1}}, meshutils.Float3{Z: 1}},
	}
	for _, testCase := range testCases {
		data := newTestScene(t)
		matcher, err := scene.NewMatcher([]string{"/Triangle"})
		if err != nil {
			t.Fatal("unable to create matcher:", err)
		}
		if count, err := editNormals(data, matcher, testCase.edit, true); err != nil {
			t.Fatalf("%s: unable to edit normals: %v", testCase.description, err)
		} else if count != 1 {
			t.Errorf("%s: unexpected mesh count: %d", testCase.description, count)
		}
		for i, normal := range data.Entities["/Triangle"].Mesh.Normals {
			if !normal.NearEqual(testCase.expected, 1e-4) {
				t.Errorf("%s: normal %d mismatch: %v", testCase.description, i, normal)
			}
		}
		if len(data.Entities["/Quad"].Mesh.Normals) != 0 {
			t.Errorf("%s: unselected mesh edited", testCase.description)
		}
	}
}

// TestEditNormalsColors tests encoding normals as colors and back.
func TestEditNormalsColors(t *testing.T) {
	data := newTestScene(t)
	left := meshutils.Float3{X: -1}
	if _, err := editNormals(data, nil, &normalEdit{set: &left, toColors: true}, true); err != nil {
		t.Fatal("unable to encode normals:", err)
	}
	mesh := data.Entities["/Triangle"].Mesh
	if len(mesh.Colors) != len(mesh.Normals) || !mesh.Colors[0].NearEqual(meshutils.Float4{X: 0, Y: 0.5, Z: 0.5, W: 1}, 1e-4) {
		t.Fatal("unexpected encoded colors:", mesh.Colors)
	}
	mesh.Normals = nil
	if _, err := editNormals(data, nil, &normalEdit{fromColors: true}, true); err != nil {
		t.Fatal("unable to decode normals:", err)
	}
	for i, normal := range mesh.Normals {
		if !normal.NearEqual(left, 1e-4) {
			t.Errorf("decoded normal %d mismatch: %v", i, normal)
		}
	}

	// Meshes without colors can't be decoded.
	data.Entities["/Quad"].Mesh.Colors = nil
	if _, err := editNormals(data, nil, &normalEdit{fromColors: true}, true); err == nil {
		t.Error("decoding without colors succeeded")
	}
}

// TestFormatStatus tests formatStatus.
func TestFormatStatus(t *testing.T) {
	noColor := color.NoColor
	color.NoColor = true
	defer func() {
		color.NoColor = noColor
	}()

	testCases := []struct {
		status   *message.Status
		expected string
	}{
		{
			&message.Status{Index: 1},
			"Index 1: 0 messages in 0 batches",
		},
		{
			&message.Status{Index: 7, Messages: 12345, Batches: 3, Queued: 2, Pending: 1},
			"Index 7: 12,345 messages in 3 batches, 2 queued, 1 pending",
		},
		{
			&message.Status{Index: 9, Messages: 4, Batches: 1, Sessions: 2},
			"Index 9: 4 messages in 1 batches, 2 open fences",
		},
	}
	for i, testCase := range testCases {
		if result := formatStatus(testCase.status); result != testCase.expected {
			t.Errorf("test index %d: status mismatch: %q != %q", i, result, testCase.expected)
		}
	}
}
