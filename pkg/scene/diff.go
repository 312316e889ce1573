package scene

import (
	"github.com/pkg/errors"
)

// Change describes a change to a single entity path. A nil Old indicates
// creation and a nil New indicates removal of the entity and its descendants.
type Change struct {
	// Path is the entity path.
	Path string
	// Old is the entity before the change.
	Old *Entity
	// New is the entity after the change.
	New *Entity
}

// EnsureValid ensures that Change's invariants are respected.
func (c *Change) EnsureValid() error {
	// A nil change is not valid.
	if c == nil {
		return errors.New("nil change")
	}

	// Validate the path and entities.
	if !IsNormalized(c.Path) {
		return errors.Errorf("invalid change path (%s)", c.Path)
	} else if c.Old == nil && c.New == nil {
		return errors.New("change has neither old nor new entity")
	} else if c.New != nil {
		if err := c.New.EnsureValid(); err != nil {
			return errors.Wrap(err, "invalid new entity")
		} else if c.New.Path != c.Path {
			return errors.New("new entity path does not match change path")
		}
	}

	// Success.
	return nil
}

// IsRemoval returns whether or not the change removes an entity.
func (c *Change) IsRemoval() bool {
	return c.New == nil
}

// hasAncestorIn returns whether or not any ancestor of path is in set.
func hasAncestorIn(path string, set map[string]bool) bool {
	for parent := Parent(path); parent != ""; parent = Parent(parent) {
		if set[parent] {
			return true
		}
	}
	return false
}

// Diff generates a list of changes that, if applied to base, would transform
// its entities into those of target. Removals come first, in path order, and
// are collapsed so that no removal is listed beneath a removed ancestor.
// Because removals are recursive, any entity in target that lies beneath a
// removed ancestor is listed for re-creation even if it is unchanged.
// Modifications and creations follow in path order.
func Diff(base, target *Scene) []*Change {
	var changes []*Change

	// Compute removals, collapsing those beneath removed ancestors. Sorted
	// order guarantees that ancestors are visited before descendants.
	removed := make(map[string]bool)
	for _, path := range base.Paths() {
		if _, ok := target.Entities[path]; ok {
			continue
		}
		if hasAncestorIn(path, removed) {
			continue
		}
		removed[path] = true
		changes = append(changes, &Change{Path: path, Old: base.Entities[path]})
	}

	// Compute creations and modifications.
	for _, path := range target.Paths() {
		entity := target.Entities[path]
		old, ok := base.Entities[path]
		if !ok || Hash(old) != Hash(entity) || hasAncestorIn(path, removed) {
			changes = append(changes, &Change{Path: path, Old: old, New: entity})
		}
	}

	// Done.
	return changes
}

// Apply applies changes to a copy of base and returns the result. Removal of
// an entity that doesn't exist is not an error.
func Apply(base *Scene, changes []*Change) (*Scene, error) {
	result := base.Copy()
	for _, change := range changes {
		if change.New == nil {
			if _, err := result.Remove(change.Path); err != nil && err != ErrEntityNotFound {
				return nil, err
			}
			continue
		}
		if err := result.Upsert(change.New.Copy()); err != nil {
			return nil, errors.Wrapf(err, "unable to apply change at %s", change.Path)
		}
	}
	return result, nil
}
