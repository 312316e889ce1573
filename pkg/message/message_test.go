package message

import (
	"bytes"
	"testing"

	"github.com/mutagen-io/meshsync/pkg/meshsync"
	"github.com/mutagen-io/meshsync/pkg/meshutils"
	"github.com/mutagen-io/meshsync/pkg/scene"
)

// testSessionID is the session identifier used in tests.
const testSessionID = "sess_test"

// newTestScene creates a scene with a single mesh.
func newTestScene(points int) *scene.Scene {
	s := scene.New(scene.Settings{Name: "test", ScaleFactor: 1})
	mesh := scene.NewEntity(scene.EntityTypeMesh, "/Mesh")
	mesh.Mesh.Points = make([]meshutils.Float3, points)
	for i := range mesh.Mesh.Points {
		mesh.Mesh.Points[i] = meshutils.Float3{X: float32(i % 7), Y: float32(i % 3)}
	}
	mesh.Mesh.Counts = []int32{3}
	mesh.Mesh.Indices = []int32{0, 1, 2}
	if err := s.Upsert(mesh); err != nil {
		panic(err)
	}
	s.UpsertMaterial(&scene.Material{ID: 2, Name: "material"})
	return s
}

// TestKindString tests Kind.String.
func TestKindString(t *testing.T) {
	for kind := KindGet; kind <= KindStatus; kind++ {
		if kind.String() == "unknown" {
			t.Errorf("kind %d has no name", kind)
		}
	}
	if Kind(0).String() != "unknown" {
		t.Error("zero kind has a name")
	}
}

// TestParseQueryType tests query type parsing.
func TestParseQueryType(t *testing.T) {
	for typ := QueryClientName; typ <= QueryVersion; typ++ {
		if parsed, err := ParseQueryType(typ.String()); err != nil {
			t.Errorf("unable to parse %s: %v", typ, err)
		} else if parsed != typ {
			t.Errorf("parsed query type mismatch: %d != %d", parsed, typ)
		}
	}
	if _, err := ParseQueryType("bogus"); err == nil {
		t.Error("bogus query type parsed successfully")
	}
}

// TestEnsureValid tests message validation.
func TestEnsureValid(t *testing.T) {
	header := NewHeader(testSessionID)
	testCases := []struct {
		description string
		message     Message
		expectValid bool
	}{
		{"get", &Get{Header: header, Filter: []string{"Root"}}, true},
		{"get bad filter", &Get{Header: header, Filter: []string{"[a-"}}, false},
		{"get bad flags", &Get{Header: header, Flags: 1 << 20}, false},
		{"set", &Set{Header: header, Scene: scene.New(scene.Settings{})}, true},
		{"set without scene", &Set{Header: header}, false},
		{"delete", &Delete{Header: header, Paths: []string{"/A"}}, true},
		{"delete bad path", &Delete{Header: header, Paths: []string{"A"}}, false},
		{"delete constraints", &Delete{Header: header, ConstraintPaths: []string{"/A/B"}}, true},
		{"delete bad constraint path", &Delete{Header: header, ConstraintPaths: []string{"/A/"}}, false},
		{"fence", &Fence{Header: header, Type: FenceEnd}, true},
		{"fence bad type", &Fence{Header: header}, false},
		{"text", &Text{Header: header, Text: "hi", Type: TextWarning}, true},
		{"text bad type", &Text{Header: header, Type: 9}, false},
		{"screenshot", &Screenshot{Header: header}, true},
		{"screenshot no session", &Screenshot{Header: Header{ProtocolVersion: 1, MessageID: "x"}}, false},
		{"query", &Query{Header: header, Type: QueryAllNodes}, true},
		{"query bad type", &Query{Header: header}, false},
		{"poll", &Poll{Header: header}, true},
		{"poll no version", &Poll{Header: Header{SessionID: "s", MessageID: "m"}}, false},
		{"response", &Response{Header: Header{MessageID: "m"}}, true},
		{"response no id", &Response{}, false},
		{"status", &Status{Index: 1}, true},
		{"status zero index", &Status{}, false},
	}
	for _, testCase := range testCases {
		err := testCase.message.EnsureValid()
		if valid := err == nil; valid != testCase.expectValid {
			t.Errorf("%s: validity mismatch: %t != %t (%v)", testCase.description, valid, testCase.expectValid, err)
		}
	}
}

// TestEncodeDecode tests message encoding for every message type.
func TestEncodeDecode(t *testing.T) {
	header := NewHeader(testSessionID)
	if header.ProtocolVersion != meshsync.ProtocolVersion || header.MessageID == "" {
		t.Fatal("unexpected header:", header)
	}
	messages := []Message{
		&Get{Header: header, Flags: GetFlagMeshes, Settings: scene.Settings{Handedness: scene.HandednessRight, ScaleFactor: 2}, Filter: []string{"Root", "!Hidden"}},
		&Set{Header: header, Scene: newTestScene(3)},
		&Delete{Header: header, Paths: []string{"/A", "/B/C"}, MaterialIDs: []int32{0, -1, 5}, ConstraintPaths: []string{"/D"}},
		&Fence{Header: header, Type: FenceBegin},
		&Text{Header: header, Text: "warning text", Type: TextWarning},
		&Screenshot{Header: header},
		&Query{Header: header, Type: QueryRootNodes},
		&Poll{Header: header, Index: 12},
		&Response{Header: header, Text: []string{"a", "b"}, Scene: newTestScene(3), Image: []byte{1, 2, 3}},
		&Status{Header: header, Index: 4, ServerID: "srvr_x", Messages: 10, Batches: 2, Queued: 1, Pending: 3, Sessions: 1},
	}
	for _, original := range messages {
		data, err := Encode(original)
		if err != nil {
			t.Errorf("%s: unable to encode: %v", original.Kind(), err)
			continue
		}
		decoded, err := Decode(data, 1<<20)
		if err != nil {
			t.Errorf("%s: unable to decode: %v", original.Kind(), err)
			continue
		}
		if decoded.Kind() != original.Kind() {
			t.Errorf("%s: kind mismatch: %s", original.Kind(), decoded.Kind())
		}
		if *decoded.MessageHeader() != *original.MessageHeader() {
			t.Errorf("%s: header mismatch", original.Kind())
		}
		reencoded, err := Encode(decoded)
		if err != nil {
			t.Errorf("%s: unable to re-encode: %v", original.Kind(), err)
		} else if !bytes.Equal(reencoded, data) {
			t.Errorf("%s: re-encoded message differs", original.Kind())
		}
	}
}

// TestEncodeDecodeFields spot checks decoded message contents.
func TestEncodeDecodeFields(t *testing.T) {
	original := &Delete{
		Header:          NewHeader(testSessionID),
		Paths:           []string{"/A"},
		MaterialIDs:     []int32{-1},
		ConstraintPaths: []string{"/B", "/B/C"},
	}
	data, err := Encode(original)
	if err != nil {
		t.Fatal("unable to encode:", err)
	}
	decoded, err := Decode(data, 1<<20)
	if err != nil {
		t.Fatal("unable to decode:", err)
	}
	d, ok := decoded.(*Delete)
	if !ok {
		t.Fatalf("unexpected decoded type: %T", decoded)
	}
	if len(d.Paths) != 1 || d.Paths[0] != "/A" || len(d.MaterialIDs) != 1 || d.MaterialIDs[0] != -1 {
		t.Error("delete contents mismatch:", d.Paths, d.MaterialIDs)
	}
	if len(d.ConstraintPaths) != 2 || d.ConstraintPaths[0] != "/B" || d.ConstraintPaths[1] != "/B/C" {
		t.Error("delete constraint paths mismatch:", d.ConstraintPaths)
	}
}

// TestCompression tests that large messages are compressed and that the
// decompression limit is enforced.
func TestCompression(t *testing.T) {
	original := &Set{Header: NewHeader(testSessionID), Scene: newTestScene(100000)}
	data, err := Encode(original)
	if err != nil {
		t.Fatal("unable to encode:", err)
	}
	if data[0]&flagCompressed == 0 {
		t.Fatal("large message not compressed")
	}
	decoded, err := Decode(data, 16<<20)
	if err != nil {
		t.Fatal("unable to decode:", err)
	}
	s := decoded.(*Set).Scene
	if len(s.Entities["/Mesh"].Mesh.Points) != 100000 {
		t.Error("point count mismatch after decompression")
	}
	if _, err := Decode(data, 1024); err == nil {
		t.Error("decompression limit not enforced")
	}

	small, err := Encode(&Fence{Header: NewHeader(testSessionID), Type: FenceEnd})
	if err != nil {
		t.Fatal("unable to encode:", err)
	}
	if small[0] != 0 {
		t.Error("small message compressed")
	}
}

// TestDecodeInvalid tests that malformed messages are rejected.
func TestDecodeInvalid(t *testing.T) {
	testCases := [][]byte{
		nil,
		{0x80},
		{0, 0xff},
		{0, 0x08, 0x63, 0x1a, 0x00},
		{0, 0x08, 0x04},
	}
	for i, data := range testCases {
		if _, err := Decode(data, 1<<20); err == nil {
			t.Errorf("test index %d: malformed message decoded successfully", i)
		}
	}
}
