package scene

import (
	"sort"

	"github.com/cespare/xxhash/v2"
	"github.com/pkg/errors"

	"github.com/mutagen-io/meshsync/pkg/constraints"
	"github.com/mutagen-io/meshsync/pkg/meshutils"
)

// ErrEntityNotFound indicates that an entity path didn't resolve.
var ErrEntityNotFound = errors.New("entity not found")

// Scene is a scene graph. Parent/child relationships are implied by entity
// paths, and intermediate ancestors need not exist as entities.
type Scene struct {
	// Settings are the scene's coordinate conventions.
	Settings Settings
	// Entities maps normalized paths to entities.
	Entities map[string]*Entity
	// Materials maps material identifiers to materials.
	Materials map[int32]*Material
	// Constraints maps constrained entity paths to constraints.
	Constraints map[string]*constraints.Constraint
}

// New creates an empty scene.
func New(settings Settings) *Scene {
	return &Scene{
		Settings:    settings,
		Entities:    make(map[string]*Entity),
		Materials:   make(map[int32]*Material),
		Constraints: make(map[string]*constraints.Constraint),
	}
}

// ensureMaps allocates any nil maps, allowing zero-value scenes to be used.
func (s *Scene) ensureMaps() {
	if s.Entities == nil {
		s.Entities = make(map[string]*Entity)
	}
	if s.Materials == nil {
		s.Materials = make(map[int32]*Material)
	}
	if s.Constraints == nil {
		s.Constraints = make(map[string]*constraints.Constraint)
	}
}

// Len returns the number of entities in the scene.
func (s *Scene) Len() int {
	return len(s.Entities)
}

// Upsert validates an entity and inserts it, replacing any existing entity at
// the same path.
func (s *Scene) Upsert(entity *Entity) error {
	if err := entity.EnsureValid(); err != nil {
		return err
	}
	s.ensureMaps()
	s.Entities[entity.Path] = entity
	return nil
}

// Lookup returns the entity at a path.
func (s *Scene) Lookup(path string) (*Entity, bool) {
	entity, ok := s.Entities[path]
	return entity, ok
}

// Remove removes the entity at path along with all of its descendants and any
// constraints on them. It returns the number of entities removed, or
// ErrEntityNotFound if there were none.
func (s *Scene) Remove(path string) (int, error) {
	var removed int
	for p := range s.Entities {
		if p == path || IsDescendant(p, path) {
			delete(s.Entities, p)
			delete(s.Constraints, p)
			removed++
		}
	}
	if removed == 0 {
		return 0, ErrEntityNotFound
	}
	return removed, nil
}

// UpsertMaterial inserts or replaces a material.
func (s *Scene) UpsertMaterial(material *Material) {
	s.ensureMaps()
	s.Materials[material.ID] = material
}

// RemoveMaterial removes a material, returning whether or not it existed.
func (s *Scene) RemoveMaterial(id int32) bool {
	_, ok := s.Materials[id]
	delete(s.Materials, id)
	return ok
}

// RemoveConstraint removes the constraint on the entity at path, returning
// whether or not it existed.
func (s *Scene) RemoveConstraint(path string) bool {
	_, ok := s.Constraints[path]
	delete(s.Constraints, path)
	return ok
}

// SetConstraint validates and stores a constraint, replacing any existing
// constraint on the same entity.
func (s *Scene) SetConstraint(constraint *constraints.Constraint) error {
	if err := constraint.EnsureValid(); err != nil {
		return errors.Wrap(err, "invalid constraint")
	} else if !IsNormalized(constraint.Path) {
		return errors.Errorf("invalid constraint path (%s)", constraint.Path)
	}
	s.ensureMaps()
	s.Constraints[constraint.Path] = constraint
	return nil
}

// Paths returns the sorted paths of all entities.
func (s *Scene) Paths() []string {
	result := make([]string, 0, len(s.Entities))
	for path := range s.Entities {
		result = append(result, path)
	}
	sort.Strings(result)
	return result
}

// MaterialIDs returns the sorted identifiers of all materials.
func (s *Scene) MaterialIDs() []int32 {
	result := make([]int32, 0, len(s.Materials))
	for id := range s.Materials {
		result = append(result, id)
	}
	sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })
	return result
}

// ConstraintPaths returns the sorted paths of all constrained entities.
func (s *Scene) ConstraintPaths() []string {
	result := make([]string, 0, len(s.Constraints))
	for path := range s.Constraints {
		result = append(result, path)
	}
	sort.Strings(result)
	return result
}

// sortChildren orders sibling paths by entity index, then by path.
func (s *Scene) sortChildren(paths []string) {
	sort.Slice(paths, func(i, j int) bool {
		a, b := s.Entities[paths[i]], s.Entities[paths[j]]
		if a.Index != b.Index {
			return a.Index < b.Index
		}
		return paths[i] < paths[j]
	})
}

// Children returns the paths of the entities whose nearest existing ancestor
// is the entity at path, ordered by index. An empty path yields Roots.
func (s *Scene) Children(path string) []string {
	var result []string
	for p := range s.Entities {
		if s.nearestAncestor(p) == path {
			result = append(result, p)
		}
	}
	s.sortChildren(result)
	return result
}

// Roots returns the paths of entities without existing ancestors, ordered by
// index.
func (s *Scene) Roots() []string {
	return s.Children("")
}

// nearestAncestor returns the path of the closest ancestor of path that exists
// in the scene, or the empty string if there is none.
func (s *Scene) nearestAncestor(path string) string {
	for parent := Parent(path); parent != ""; parent = Parent(parent) {
		if _, ok := s.Entities[parent]; ok {
			return parent
		}
	}
	return ""
}

// WorldMatrix computes the local-to-world matrix of the entity at path by
// composing the transforms of the entity and its existing ancestors.
func (s *Scene) WorldMatrix(path string) (meshutils.Float4x4, error) {
	entity, ok := s.Entities[path]
	if !ok {
		return meshutils.IdentityMatrix, ErrEntityNotFound
	}
	result := entity.Matrix()
	for parent := s.nearestAncestor(path); parent != ""; parent = s.nearestAncestor(parent) {
		result = s.Entities[parent].Matrix().Mul(result)
	}
	return result, nil
}

// Resolve implements constraints.Resolver using world-space transforms.
func (s *Scene) Resolve(path string) (constraints.Transform, bool) {
	matrix, err := s.WorldMatrix(path)
	if err != nil {
		return constraints.Transform{}, false
	}
	position, rotation, scale := matrix.Decompose()
	return constraints.Transform{Position: position, Rotation: rotation, Scale: scale}, true
}

// ApplyConstraints evaluates every constraint whose entity exists and writes
// the result back into the entity's local transform. Constraints are applied
// in path order, so constrained ancestors are resolved before descendants.
// Evaluation continues past failures; the number of constraints applied is
// returned along with the first failure.
func (s *Scene) ApplyConstraints() (int, error) {
	var applied int
	var first error
	for _, path := range s.ConstraintPaths() {
		entity, ok := s.Entities[path]
		if !ok {
			continue
		}
		if err := s.applyConstraint(entity, s.Constraints[path]); err != nil {
			if first == nil {
				first = errors.Wrapf(err, "unable to apply constraint on %s", path)
			}
			continue
		}
		applied++
	}
	return applied, first
}

// applyConstraint evaluates a single constraint and updates the entity's local
// transform.
func (s *Scene) applyConstraint(entity *Entity, constraint *constraints.Constraint) error {
	// Evaluate the constraint in world space.
	current, _ := s.Resolve(entity.Path)
	result, err := constraints.Evaluate(constraint, current, s)
	if err != nil {
		return err
	}

	// Convert the result into the parent's space.
	local := meshutils.TRS(result.Position, result.Rotation, result.Scale)
	if parent := s.nearestAncestor(entity.Path); parent != "" {
		parentMatrix, _ := s.WorldMatrix(parent)
		inverse, ok := parentMatrix.InverseAffine()
		if !ok {
			return errors.New("parent transform is singular")
		}
		local = inverse.Mul(local)
	}
	entity.Position, entity.Rotation, entity.Scale = local.Decompose()
	return nil
}

// Copy creates a deep copy of the scene.
func (s *Scene) Copy() *Scene {
	result := New(s.Settings)
	for path, entity := range s.Entities {
		result.Entities[path] = entity.Copy()
	}
	for id, material := range s.Materials {
		result.Materials[id] = material.Copy()
	}
	for path, constraint := range s.Constraints {
		result.Constraints[path] = constraint.Copy()
	}
	return result
}

// Hash computes a content hash of an entity based on its wire encoding.
func Hash(entity *Entity) uint64 {
	return xxhash.Sum64(entity.Marshal())
}

// HashMaterial computes a content hash of a material based on its wire
// encoding.
func HashMaterial(material *Material) uint64 {
	return xxhash.Sum64(material.Marshal())
}

// HashConstraint computes a content hash of a constraint based on its wire
// encoding.
func HashConstraint(constraint *constraints.Constraint) uint64 {
	return xxhash.Sum64(constraint.Marshal())
}
