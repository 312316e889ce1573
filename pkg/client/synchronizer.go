package client

import (
	"context"
	"sort"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/golang/groupcache/lru"
	"github.com/pkg/errors"

	"github.com/mutagen-io/meshsync/pkg/configuration"
	"github.com/mutagen-io/meshsync/pkg/logging"
	"github.com/mutagen-io/meshsync/pkg/message"
	"github.com/mutagen-io/meshsync/pkg/scene"
)

const (
	// abortFenceTimeout is the timeout used when closing a fence after a
	// failed synchronization.
	abortFenceTimeout = 5 * time.Second
)

// SyncSettings control how a Synchronizer converts and filters scenes.
type SyncSettings struct {
	// ScaleFactor multiplies positions and distances before sending. Zero is
	// treated as one.
	ScaleFactor float32
	// FlipHandedness converts between left- and right-handed coordinate
	// systems before sending.
	FlipHandedness bool
	// Meshes enables mesh synchronization.
	Meshes bool
	// Cameras enables camera synchronization.
	Cameras bool
	// Lights enables light synchronization.
	Lights bool
	// Constraints enables constraint synchronization.
	Constraints bool
	// BatchSize is the maximum number of entities per set message. Zero
	// selects the default.
	BatchSize int
	// BatchBytes is the approximate encoded size budget per set message. Zero
	// selects the default.
	BatchBytes int
	// CacheSize is the number of entity hashes remembered between syncs. Zero
	// selects the default.
	CacheSize int
	// Ignore is a list of path patterns to exclude.
	Ignore []string
}

// NewSyncSettings extracts synchronization settings from a configuration.
func NewSyncSettings(c *configuration.ClientConfiguration) SyncSettings {
	return SyncSettings{
		ScaleFactor:    c.ScaleFactor,
		FlipHandedness: c.FlipHandedness,
		Meshes:         c.Sync.Meshes,
		Cameras:        c.Sync.Cameras,
		Lights:         c.Sync.Lights,
		Constraints:    c.Sync.Constraints,
		BatchSize:      c.BatchSize,
		BatchBytes:     int(c.BatchBytes),
		CacheSize:      c.CacheSize,
		Ignore:         c.Ignore,
	}
}

// SyncResult summarizes a synchronization.
type SyncResult struct {
	// Entities is the number of entities sent.
	Entities int
	// Materials is the number of materials sent.
	Materials int
	// Constraints is the number of constraints sent.
	Constraints int
	// Deleted is the number of entity paths deleted.
	Deleted int
	// ConstraintsDeleted is the number of constraints deleted.
	ConstraintsDeleted int
	// Batches is the number of set messages sent.
	Batches int
}

// Synchronizer incrementally synchronizes a host scene to a server. It
// remembers what it last sent, so each Sync only transmits changes. It is not
// safe for concurrent usage.
type Synchronizer struct {
	// client is the underlying client.
	client *Client
	// settings are the synchronization settings with defaults applied.
	settings SyncSettings
	// matcher matches ignored paths.
	matcher *scene.Matcher
	// logger is the synchronizer logger.
	logger *logging.Logger
	// hashes caches the hashes of sent entities, keyed by path.
	hashes *lru.Cache
	// materials are the hashes of sent materials.
	materials map[int32]uint64
	// constraints are the hashes of sent constraints.
	constraints map[string]uint64
	// paths are the entity paths that may exist on the server.
	paths map[string]bool
	// constrained are the paths of constraints that may exist on the server.
	constrained map[string]bool
}

// NewSynchronizer creates a new synchronizer.
func NewSynchronizer(client *Client, settings SyncSettings, logger *logging.Logger) (*Synchronizer, error) {
	// Apply defaults.
	if settings.ScaleFactor == 0 {
		settings.ScaleFactor = 1
	}
	if settings.BatchSize <= 0 {
		settings.BatchSize = configuration.DefaultBatchSize
	}
	if settings.BatchBytes <= 0 {
		settings.BatchBytes = configuration.DefaultBatchBytes
	}
	if settings.CacheSize <= 0 {
		settings.CacheSize = configuration.DefaultCacheSize
	}

	// Compile ignore patterns.
	matcher, err := scene.NewMatcher(settings.Ignore)
	if err != nil {
		return nil, errors.Wrap(err, "invalid ignore patterns")
	}

	// Create the synchronizer.
	return &Synchronizer{
		client:      client,
		settings:    settings,
		matcher:     matcher,
		logger:      logger,
		hashes:      lru.New(settings.CacheSize),
		materials:   make(map[int32]uint64),
		constraints: make(map[string]uint64),
		paths:       make(map[string]bool),
		constrained: make(map[string]bool),
	}, nil
}

// Invalidate forgets everything previously sent, so the next Sync transmits
// the complete scene.
func (s *Synchronizer) Invalidate() {
	s.hashes.Clear()
	s.materials = make(map[int32]uint64)
	s.constraints = make(map[string]uint64)
}

// prepare converts and filters a host scene for transmission.
func (s *Synchronizer) prepare(host *scene.Scene) *scene.Scene {
	// Filter ignored paths and disabled types. Both are shallow operations, so
	// they're performed before the deep copy performed by conversion.
	filtered := scene.Ignore(host, s.matcher)
	filtered = scene.FilterTypes(filtered, map[scene.EntityType]bool{
		scene.EntityTypeMesh:   s.settings.Meshes,
		scene.EntityTypeCamera: s.settings.Cameras,
		scene.EntityTypeLight:  s.settings.Lights,
	})
	if !s.settings.Constraints {
		filtered.Constraints = nil
	}

	// Compute the target conventions and convert.
	target := host.Settings
	if target.ScaleFactor == 0 {
		target.ScaleFactor = 1
	}
	target.ScaleFactor *= s.settings.ScaleFactor
	if s.settings.FlipHandedness {
		if target.Handedness == scene.HandednessLeft {
			target.Handedness = scene.HandednessRight
		} else {
			target.Handedness = scene.HandednessLeft
		}
	}
	return filtered.Convert(target)
}

// pendingEntity is an entity awaiting transmission.
type pendingEntity struct {
	// entity is the entity.
	entity *scene.Entity
	// size is the encoded size of the entity.
	size int
	// hash is the content hash of the entity.
	hash uint64
}

// hasAncestorIn returns whether or not any ancestor of path is in set.
func hasAncestorIn(path string, set map[string]bool) bool {
	for parent := scene.Parent(path); parent != ""; parent = scene.Parent(parent) {
		if set[parent] {
			return true
		}
	}
	return false
}

// Sync transmits the changes between host and the previously synchronized
// state as a single fenced batch. If the sync fails, the synchronizer is
// invalidated so that the next sync retransmits everything.
func (s *Synchronizer) Sync(ctx context.Context, host *scene.Scene) (SyncResult, error) {
	var result SyncResult
	prepared := s.prepare(host)

	// Compute vanished entities. Descendants of vanished entities are removed
	// along with them, so only the topmost vanished paths are deleted.
	vanished := make(map[string]bool)
	for path := range s.paths {
		if _, ok := prepared.Entities[path]; !ok {
			vanished[path] = true
		}
	}
	deleted := make(map[string]bool)
	var deletions []string
	for path := range vanished {
		if !hasAncestorIn(path, vanished) {
			deleted[path] = true
			deletions = append(deletions, path)
		}
	}
	sort.Strings(deletions)

	// Compute changed entities. Deletion is recursive on the server's host, so
	// surviving descendants of deleted entities (and their constraints) are
	// resent after the deletion regardless of their cached state.
	var entities []pendingEntity
	for _, path := range prepared.Paths() {
		entity := prepared.Entities[path]
		encoded := entity.Marshal()
		hash := xxhash.Sum64(encoded)
		if cached, ok := s.hashes.Get(path); ok && cached.(uint64) == hash && !hasAncestorIn(path, deleted) {
			continue
		}
		entities = append(entities, pendingEntity{entity, len(encoded), hash})
	}

	// Compute changed materials and constraints.
	materials := make(map[int32]uint64)
	var changedMaterials []*scene.Material
	for _, id := range prepared.MaterialIDs() {
		material := prepared.Materials[id]
		materials[id] = scene.HashMaterial(material)
		if previous, ok := s.materials[id]; !ok || previous != materials[id] {
			changedMaterials = append(changedMaterials, material)
		}
	}
	constraints := make(map[string]uint64)
	var changedConstraints []string
	for _, path := range prepared.ConstraintPaths() {
		constraints[path] = scene.HashConstraint(prepared.Constraints[path])
		if deleted[path] || hasAncestorIn(path, deleted) {
			changedConstraints = append(changedConstraints, path)
		} else if previous, ok := s.constraints[path]; !ok || previous != constraints[path] {
			changedConstraints = append(changedConstraints, path)
		}
	}

	// Compute vanished materials and constraints. Constraints on deleted
	// entities are removed along with them.
	var materialDeletions []int32
	for id := range s.materials {
		if _, ok := materials[id]; !ok {
			materialDeletions = append(materialDeletions, id)
		}
	}
	sort.Slice(materialDeletions, func(i, j int) bool { return materialDeletions[i] < materialDeletions[j] })
	var constraintDeletions []string
	for path := range s.constrained {
		if _, ok := constraints[path]; ok || deleted[path] || hasAncestorIn(path, deleted) {
			continue
		}
		constraintDeletions = append(constraintDeletions, path)
	}
	sort.Strings(constraintDeletions)

	// If nothing changed, then we're done.
	if len(entities) == 0 && len(changedMaterials) == 0 && len(changedConstraints) == 0 &&
		len(deletions) == 0 && len(materialDeletions) == 0 && len(constraintDeletions) == 0 {
		return result, nil
	}

	// Build batches. Materials lead the first batch and constraints trail the
	// last so that they're applied alongside the entities they reference.
	var batches []*scene.Scene
	batch, batchBytes := scene.New(prepared.Settings), 0
	for _, material := range changedMaterials {
		batch.UpsertMaterial(material)
	}
	for _, pending := range entities {
		if batch.Len() > 0 && (batch.Len() >= s.settings.BatchSize || batchBytes+pending.size > s.settings.BatchBytes) {
			batches = append(batches, batch)
			batch, batchBytes = scene.New(prepared.Settings), 0
		}
		batch.Entities[pending.entity.Path] = pending.entity
		batchBytes += pending.size
	}
	for _, path := range changedConstraints {
		batch.Constraints[path] = prepared.Constraints[path]
	}
	if batch.Len() > 0 || len(batch.Materials) > 0 || len(batch.Constraints) > 0 {
		batches = append(batches, batch)
	}

	// Transmit the changes.
	removal := &message.Delete{Paths: deletions, MaterialIDs: materialDeletions, ConstraintPaths: constraintDeletions}
	if err := s.transmit(ctx, removal, batches); err != nil {
		for path := range prepared.Entities {
			s.paths[path] = true
		}
		for path := range prepared.Constraints {
			s.constrained[path] = true
		}
		s.Invalidate()
		return result, err
	}

	// Record the transmitted state.
	for _, pending := range entities {
		s.hashes.Add(pending.entity.Path, pending.hash)
	}
	for path := range vanished {
		s.hashes.Remove(path)
	}
	s.paths = make(map[string]bool, len(prepared.Entities))
	for path := range prepared.Entities {
		s.paths[path] = true
	}
	s.materials = materials
	s.constraints = constraints
	s.constrained = make(map[string]bool, len(constraints))
	for path := range constraints {
		s.constrained[path] = true
	}

	// Done.
	result.Entities = len(entities)
	result.Materials = len(changedMaterials)
	result.Constraints = len(changedConstraints)
	result.Deleted = len(deletions)
	result.ConstraintsDeleted = len(constraintDeletions)
	result.Batches = len(batches)
	s.logger.Debugf("Synchronized %d entities in %d batches, deleted %d", result.Entities, result.Batches, result.Deleted)
	return result, nil
}

// transmit sends removals followed by batches inside a fence. Removals lead
// because entity deletion is recursive and batches may recreate descendants
// of deleted entities. If the fence was opened, it's closed even on failure so
// that the server doesn't hold the session's messages indefinitely.
func (s *Synchronizer) transmit(ctx context.Context, removal *message.Delete, batches []*scene.Scene) error {
	// Open the fence.
	if err := s.client.Fence(ctx, message.FenceBegin); err != nil {
		return err
	}

	// Send data.
	err := func() error {
		if len(removal.Paths) > 0 || len(removal.MaterialIDs) > 0 || len(removal.ConstraintPaths) > 0 {
			if err := s.client.Delete(ctx, removal.Paths, removal.MaterialIDs, removal.ConstraintPaths); err != nil {
				return err
			}
		}
		for _, batch := range batches {
			if err := s.client.Send(ctx, batch); err != nil {
				return err
			}
		}
		return nil
	}()

	// Close the fence. On failure, we use a separate context since ctx may be
	// the cause.
	if err != nil {
		closeCtx, cancel := context.WithTimeout(context.Background(), abortFenceTimeout)
		defer cancel()
		if closeErr := s.client.Fence(closeCtx, message.FenceEnd); closeErr != nil {
			s.logger.Warn(errors.Wrap(closeErr, "unable to close fence after failure"))
		}
		return err
	}
	return s.client.Fence(ctx, message.FenceEnd)
}
