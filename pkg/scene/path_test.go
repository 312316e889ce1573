package scene

import (
	"testing"
)

// TestNormalizePath tests NormalizePath.
func TestNormalizePath(t *testing.T) {
	testCases := []struct {
		path        string
		expected    string
		expectError bool
	}{
		{"/Root/Child", "/Root/Child", false},
		{"Root/Child", "/Root/Child", false},
		{"//Root///Child/", "/Root/Child", false},
		{"/Caf\u00e9", "/Caf\u00e9", false},
		{"/Cafe\u0301", "/Caf\u00e9", false},
		{"", "", true},
		{"///", "", true},
		{"/Root/../Other", "", true},
		{"/Root/./Child", "", true},
	}
	for _, testCase := range testCases {
		result, err := NormalizePath(testCase.path)
		if testCase.expectError {
			if err == nil {
				t.Errorf("normalization of %q succeeded unexpectedly", testCase.path)
			}
		} else if err != nil {
			t.Errorf("normalization of %q failed: %v", testCase.path, err)
		} else if result != testCase.expected {
			t.Errorf("normalization of %q mismatch: %q != %q", testCase.path, result, testCase.expected)
		}
	}
}

// TestParentBase tests Parent and Base.
func TestParentBase(t *testing.T) {
	testCases := []struct {
		path   string
		parent string
		base   string
	}{
		{"/Root", "", "Root"},
		{"/Root/Child", "/Root", "Child"},
		{"/A/B/C", "/A/B", "C"},
	}
	for _, testCase := range testCases {
		if parent := Parent(testCase.path); parent != testCase.parent {
			t.Errorf("parent of %s mismatch: %q != %q", testCase.path, parent, testCase.parent)
		}
		if base := Base(testCase.path); base != testCase.base {
			t.Errorf("base of %s mismatch: %q != %q", testCase.path, base, testCase.base)
		}
		if joined := Join(Parent(testCase.path), Base(testCase.path)); joined != testCase.path {
			t.Errorf("join of %s mismatch: %q", testCase.path, joined)
		}
	}
}

// TestIsDescendant tests IsDescendant.
func TestIsDescendant(t *testing.T) {
	testCases := []struct {
		path, ancestor string
		expected       bool
	}{
		{"/Root/Child", "/Root", true},
		{"/Root/Child/Leaf", "/Root", true},
		{"/Root", "/Root", false},
		{"/RootX/Child", "/Root", false},
		{"/Root", "/Root/Child", false},
		{"/Root", "", true},
	}
	for _, testCase := range testCases {
		if result := IsDescendant(testCase.path, testCase.ancestor); result != testCase.expected {
			t.Errorf("IsDescendant(%s, %s) mismatch: %t != %t", testCase.path, testCase.ancestor, result, testCase.expected)
		}
	}
}
