package scene

import (
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pkg/errors"
)

// pattern is a single parsed path pattern.
type pattern struct {
	// negated indicates that the pattern was prefixed with "!".
	negated bool
	// anchored indicates that the pattern contains a separator and must match
	// the full path rather than the leaf name.
	anchored bool
	// glob is the doublestar pattern, relative to the scene root.
	glob string
}

// matches returns whether or not the pattern matches a normalized path.
func (p *pattern) matches(path string) bool {
	if p.anchored {
		match, _ := doublestar.Match(p.glob, relative(path))
		return match
	}
	match, _ := doublestar.Match(p.glob, Base(path))
	return match
}

// Matcher matches entity paths against an ordered list of glob patterns. The
// last pattern matching a path determines the result, and patterns prefixed
// with "!" negate. Patterns without a separator match leaf names at any depth,
// while patterns with a separator match full paths from the scene root.
type Matcher struct {
	// patterns are the parsed patterns.
	patterns []*pattern
}

// NewMatcher parses a list of patterns.
func NewMatcher(patterns []string) (*Matcher, error) {
	result := &Matcher{}
	for _, p := range patterns {
		parsed := &pattern{glob: p}
		if strings.HasPrefix(parsed.glob, "!") {
			parsed.negated = true
			parsed.glob = parsed.glob[1:]
		}
		if strings.Contains(parsed.glob, PathSeparator) {
			parsed.anchored = true
			parsed.glob = strings.TrimPrefix(parsed.glob, PathSeparator)
		}
		if parsed.glob == "" {
			return nil, errors.Errorf("empty pattern (%s)", p)
		} else if !doublestar.ValidatePattern(parsed.glob) {
			return nil, errors.Errorf("invalid pattern (%s)", p)
		}
		result.patterns = append(result.patterns, parsed)
	}
	return result, nil
}

// Empty returns whether or not the matcher has no patterns.
func (m *Matcher) Empty() bool {
	return m == nil || len(m.patterns) == 0
}

// Match returns whether or not a path is matched, without considering its
// ancestors.
func (m *Matcher) Match(path string) bool {
	if m == nil {
		return false
	}
	var matched bool
	for _, p := range m.patterns {
		if p.matches(path) {
			matched = !p.negated
		}
	}
	return matched
}

// MatchTree returns whether or not a path or any of its ancestors is matched.
func (m *Matcher) MatchTree(path string) bool {
	for p := path; p != ""; p = Parent(p) {
		if m.Match(p) {
			return true
		}
	}
	return false
}

// filter copies the scene, retaining the entities (and their constraints) for
// which keep returns true. Materials are retained unconditionally.
func filter(s *Scene, keep func(string) bool) *Scene {
	result := New(s.Settings)
	for path, entity := range s.Entities {
		if keep(path) {
			result.Entities[path] = entity
		}
	}
	for path, constraint := range s.Constraints {
		if keep(path) {
			result.Constraints[path] = constraint
		}
	}
	for id, material := range s.Materials {
		result.Materials[id] = material
	}
	return result
}

// Ignore returns a shallow copy of the scene without the entities matched by
// m, or whose ancestors are matched by m. Entities are shared with the
// original scene.
func Ignore(s *Scene, m *Matcher) *Scene {
	if m.Empty() {
		return filter(s, func(string) bool { return true })
	}
	return filter(s, func(path string) bool { return !m.MatchTree(path) })
}

// Select returns a shallow copy of the scene containing only the entities
// matched by m, or whose ancestors are matched by m. An empty matcher selects
// everything. Entities are shared with the original scene.
func Select(s *Scene, m *Matcher) *Scene {
	if m.Empty() {
		return filter(s, func(string) bool { return true })
	}
	return filter(s, m.MatchTree)
}

// FilterTypes returns a shallow copy of the scene without entities whose types
// are not enabled. Disabled types are replaced by plain transforms so that
// their children remain correctly positioned.
func FilterTypes(s *Scene, enabled map[EntityType]bool) *Scene {
	result := filter(s, func(string) bool { return true })
	for path, entity := range result.Entities {
		if entity.Type != EntityTypeTransform && !enabled[entity.Type] {
			result.Entities[path] = &Entity{Type: EntityTypeTransform, Transform: entity.Transform}
		}
	}
	return result
}
