package scene

import (
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/text/unicode/norm"
)

// PathSeparator is the entity path component separator.
const PathSeparator = "/"

// NormalizePath converts an entity path into its canonical form: Unicode NFC
// normalized, rooted at "/", with repeated and trailing separators removed. It
// rejects empty paths and paths containing "." or ".." components.
func NormalizePath(path string) (string, error) {
	// Normalize the Unicode representation so that paths from hosts using
	// decomposed forms compare equal to composed ones.
	path = norm.NFC.String(path)

	// Split and filter components.
	var components []string
	for _, component := range strings.Split(path, PathSeparator) {
		switch component {
		case "":
			continue
		case ".", "..":
			return "", errors.Errorf("relative path component (%s) not allowed", component)
		}
		components = append(components, component)
	}
	if len(components) == 0 {
		return "", errors.New("empty path")
	}

	// Reassemble the path.
	return PathSeparator + strings.Join(components, PathSeparator), nil
}

// IsNormalized returns whether or not path is already in canonical form.
func IsNormalized(path string) bool {
	normalized, err := NormalizePath(path)
	return err == nil && normalized == path
}

// Parent returns the parent of a normalized path. Root-level paths have the
// empty string as their parent.
func Parent(path string) string {
	index := strings.LastIndex(path, PathSeparator)
	if index <= 0 {
		return ""
	}
	return path[:index]
}

// Base returns the final component of a normalized path.
func Base(path string) string {
	return path[strings.LastIndex(path, PathSeparator)+1:]
}

// Join appends a child name to a normalized path. An empty parent produces a
// root-level path.
func Join(parent, name string) string {
	return parent + PathSeparator + name
}

// IsDescendant returns whether or not path is a strict descendant of ancestor.
func IsDescendant(path, ancestor string) bool {
	return len(path) > len(ancestor)+1 &&
		strings.HasPrefix(path, ancestor) &&
		path[len(ancestor)] == '/'
}

// relative returns a normalized path without its leading separator.
func relative(path string) string {
	return strings.TrimPrefix(path, PathSeparator)
}
