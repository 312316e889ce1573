package scene

import (
	"testing"
)

// TestMatcher tests pattern matching semantics.
func TestMatcher(t *testing.T) {
	testCases := []struct {
		patterns []string
		path     string
		expected bool
	}{
		{[]string{"Camera"}, "/Root/Camera", true},
		{[]string{"Cam*"}, "/Root/Camera", true},
		{[]string{"Camera"}, "/Root/Camera2", false},
		{[]string{"/Root"}, "/Root", true},
		{[]string{"/Root"}, "/Root/Camera", false},
		{[]string{"/Root/*"}, "/Root/Camera", true},
		{[]string{"**/Mesh"}, "/Root/Mesh", true},
		{[]string{"/**/Mesh"}, "/Mesh", true},
		{[]string{"*", "!Light"}, "/Root/Light", false},
		{[]string{"*", "!Light"}, "/Root/Mesh", true},
		{[]string{"!Light", "*"}, "/Root/Light", true},
		{nil, "/Root", false},
	}
	for i, testCase := range testCases {
		matcher, err := NewMatcher(testCase.patterns)
		if err != nil {
			t.Fatalf("test index %d: unable to create matcher: %v", i, err)
		}
		if result := matcher.Match(testCase.path); result != testCase.expected {
			t.Errorf("test index %d: match mismatch: %t != %t", i, result, testCase.expected)
		}
	}
}

// TestMatcherInvalid tests that invalid patterns are rejected.
func TestMatcherInvalid(t *testing.T) {
	for _, pattern := range []string{"", "!", "/", "[a-"} {
		if _, err := NewMatcher([]string{pattern}); err == nil {
			t.Errorf("invalid pattern %q accepted", pattern)
		}
	}
}

// TestIgnore tests that ignoring an entity ignores its subtree.
func TestIgnore(t *testing.T) {
	matcher, err := NewMatcher([]string{"/Root"})
	if err != nil {
		t.Fatal("unable to create matcher:", err)
	}
	s := newTestScene()
	result := Ignore(s, matcher)
	if result.Len() != 1 {
		t.Error("unexpected entity count:", result.Len())
	}
	if _, ok := result.Lookup("/Other"); !ok {
		t.Error("unmatched entity removed")
	}
	if len(result.Constraints) != 0 {
		t.Error("constraint on ignored entity retained")
	}
	if len(result.Materials) != 1 {
		t.Error("materials not retained")
	}
	if s.Len() != 5 {
		t.Error("original scene modified")
	}
}

// TestSelect tests subtree selection.
func TestSelect(t *testing.T) {
	matcher, err := NewMatcher([]string{"Root"})
	if err != nil {
		t.Fatal("unable to create matcher:", err)
	}
	if result := Select(newTestScene(), matcher); result.Len() != 4 {
		t.Error("unexpected selected entity count:", result.Len())
	}
	if result := Select(newTestScene(), nil); result.Len() != 5 {
		t.Error("empty matcher did not select everything:", result.Len())
	}
}

// TestFilterTypes tests that disabled entity types degrade to transforms.
func TestFilterTypes(t *testing.T) {
	s := newTestScene()
	result := FilterTypes(s, map[EntityType]bool{EntityTypeMesh: true})
	if result.Entities["/Root/Camera"].Type != EntityTypeTransform || result.Entities["/Root/Camera"].Camera != nil {
		t.Error("disabled camera not converted to transform")
	}
	if result.Entities["/Root/Mesh"].Type != EntityTypeMesh {
		t.Error("enabled mesh converted")
	}
	if s.Entities["/Root/Camera"].Type != EntityTypeCamera {
		t.Error("original scene modified")
	}
	for _, path := range result.Paths() {
		if err := result.Entities[path].EnsureValid(); err != nil {
			t.Errorf("filtered entity %s invalid: %v", path, err)
		}
	}
}
