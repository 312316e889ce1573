package server

import (
	"context"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/mutagen-io/meshsync/pkg/logging"
	"github.com/mutagen-io/meshsync/pkg/meshsync"
	"github.com/mutagen-io/meshsync/pkg/message"
	"github.com/mutagen-io/meshsync/pkg/scene"
	"github.com/mutagen-io/meshsync/pkg/state"
)

const (
	// DefaultReplicaName is the client name reported by replicas.
	DefaultReplicaName = "meshsync"
	// DefaultSaveDelay is the default coalescing window for replica saves.
	DefaultSaveDelay = time.Second
	// maximumSaveDelayFactor bounds the time between a change and its save
	// relative to the save delay when updates arrive continuously.
	maximumSaveDelayFactor = 10
)

// ErrScreenshotUnsupported indicates that a host can't produce screenshots.
var ErrScreenshotUnsupported = errors.New("screenshots not supported by headless replica")

// ReplicaSettings are the tunable parameters of a replica.
type ReplicaSettings struct {
	// Name is the name reported in response to client name queries.
	Name string
	// Scene are the coordinate conventions in which the replica stores
	// incoming scene data.
	Scene scene.Settings
	// SavePath is the path to which the replica is persisted. If empty, the
	// replica isn't persisted.
	SavePath string
	// SaveDelay is the window within which consecutive batches are coalesced
	// into a single save.
	SaveDelay time.Duration
	// MaximumSaveDelay is the longest that a change may go unsaved while
	// batches keep arriving. Zero selects a multiple of SaveDelay.
	MaximumSaveDelay time.Duration
	// EvaluateConstraints indicates that constraints should be evaluated and
	// applied to entity transforms in scenes served to get requests. The
	// replica's own scene keeps the transforms as sent.
	EvaluateConstraints bool
}

// Replica is a headless host that applies released messages to an in-memory
// scene.
type Replica struct {
	// server is the server from which messages are drained.
	server *Server
	// settings are the replica settings.
	settings ReplicaSettings
	// monitor is the monitor to which events are broadcast. It may be nil.
	monitor *Monitor
	// logger is the replica logger.
	logger *logging.Logger
	// saves coalesces save requests.
	saves *state.Coalescer
	// lock guards scene and dirty.
	lock sync.Mutex
	// scene is the replicated scene.
	scene *scene.Scene
	// dirty indicates that the scene has changed since the last save.
	dirty bool
}

// NewReplica creates a new replica host for a server. If a save path is
// configured and a saved scene exists there, it's loaded. The monitor may be
// nil.
func NewReplica(server *Server, settings ReplicaSettings, monitor *Monitor, logger *logging.Logger) (*Replica, error) {
	// Apply defaults.
	if settings.Name == "" {
		settings.Name = DefaultReplicaName
	}
	if settings.Scene.ScaleFactor == 0 {
		settings.Scene.ScaleFactor = 1
	}
	if settings.SaveDelay <= 0 {
		settings.SaveDelay = DefaultSaveDelay
	}
	if settings.MaximumSaveDelay <= 0 {
		settings.MaximumSaveDelay = maximumSaveDelayFactor * settings.SaveDelay
	}

	// Load any saved scene.
	replicated := scene.New(settings.Scene)
	if settings.SavePath != "" {
		if saved, err := scene.Load(settings.SavePath); err == nil {
			replicated = saved.Convert(settings.Scene)
			logger.Infof("Loaded %d entities from %s", replicated.Len(), settings.SavePath)
		} else if !os.IsNotExist(err) {
			return nil, errors.Wrap(err, "unable to load saved scene")
		}
	}

	// Create the replica.
	return &Replica{
		server:   server,
		settings: settings,
		monitor:  monitor,
		logger:   logger,
		saves:    state.NewCoalescer(settings.SaveDelay, settings.MaximumSaveDelay),
		scene:    replicated,
	}, nil
}

// Scene returns a copy of the replicated scene.
func (r *Replica) Scene() *scene.Scene {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.scene.Copy()
}

// Process drains and applies all released messages, returning the number of
// messages processed.
func (r *Replica) Process() int {
	r.lock.Lock()
	count := r.server.ProcessMessages(r.handle)
	entities := r.scene.Len()
	r.lock.Unlock()
	if count == 0 {
		return 0
	}
	if r.settings.SavePath != "" {
		r.saves.Strobe()
	}
	r.monitor.Broadcast(Event{
		Type:     EventTypeBatch,
		Index:    r.server.Status().Index,
		Messages: count,
		Entities: entities,
	})
	return count
}

// handle applies a single message. The lock must be held.
func (r *Replica) handle(m message.Message) {
	switch m := m.(type) {
	case *message.Set:
		r.apply(m.Scene)
	case *message.Delete:
		for _, path := range m.Paths {
			if removed, err := r.scene.Remove(path); err != nil {
				r.logger.Debugf("Unable to delete %s: %v", path, err)
			} else {
				r.logger.Tracef("Deleted %s (%d entities)", path, removed)
				r.dirty = true
			}
		}
		for _, id := range m.MaterialIDs {
			if r.scene.RemoveMaterial(id) {
				r.dirty = true
			}
		}
		for _, path := range m.ConstraintPaths {
			if r.scene.RemoveConstraint(path) {
				r.dirty = true
			}
		}
	case *message.Text:
		r.logText(m)
	case *message.Get:
		served := r.scene
		if r.settings.EvaluateConstraints && len(served.Constraints) > 0 {
			served = served.Copy()
			if _, err := served.ApplyConstraints(); err != nil {
				r.logger.Debugf("Constraint evaluation incomplete: %v", err)
			}
		}
		if err := r.server.ServeScene(m, served); err != nil {
			r.logger.Warn(errors.Wrap(err, "unable to serve scene"))
		}
	case *message.Query:
		if err := r.server.ServeQuery(m, r.query(m.Type)); err != nil {
			r.logger.Warn(errors.Wrap(err, "unable to serve query"))
		}
	case *message.Screenshot:
		if err := r.server.Reject(m, ErrScreenshotUnsupported); err != nil {
			r.logger.Warn(errors.Wrap(err, "unable to reject screenshot"))
		}
	default:
		r.logger.Debugf("Ignoring %s message", m.Kind())
	}
}

// apply merges incoming scene data into the replica. The lock must be held.
func (r *Replica) apply(incoming *scene.Scene) {
	// Convert the incoming data to the replica's conventions.
	incoming = incoming.Convert(r.scene.Settings)

	// Merge entities, refining meshes as requested by their flags.
	for _, entity := range incoming.Entities {
		if entity.Mesh != nil {
			entity.Mesh.Refine()
		}
		if err := r.scene.Upsert(entity); err != nil {
			r.logger.Warn(errors.Wrapf(err, "unable to apply %s", entity.Path))
		}
	}

	// Merge materials and constraints.
	for _, material := range incoming.Materials {
		r.scene.UpsertMaterial(material)
	}
	for _, constraint := range incoming.Constraints {
		if err := r.scene.SetConstraint(constraint); err != nil {
			r.logger.Warn(errors.Wrapf(err, "unable to apply constraint on %s", constraint.Path))
		}
	}
	r.dirty = true
	r.logger.Tracef("Applied %d entities and %d materials", len(incoming.Entities), len(incoming.Materials))
}

// logText logs a text message and forwards it to the monitor.
func (r *Replica) logText(m *message.Text) {
	logger := r.logger.Sublogger(m.SessionID)
	switch m.Type {
	case message.TextWarning:
		logger.Warn(errors.New(m.Text))
	case message.TextError:
		logger.Error(errors.New(m.Text))
	default:
		logger.Info(m.Text)
	}
	r.monitor.Broadcast(Event{
		Type:     EventTypeText,
		Session:  m.SessionID,
		Severity: m.Type.String(),
		Text:     m.Text,
	})
}

// query computes the answer to a query. The lock must be held.
func (r *Replica) query(typ message.QueryType) []string {
	switch typ {
	case message.QueryClientName:
		return []string{r.settings.Name}
	case message.QueryRootNodes:
		return r.scene.Roots()
	case message.QueryAllNodes:
		return r.scene.Paths()
	case message.QueryPID:
		return []string{strconv.Itoa(os.Getpid())}
	case message.QueryVersion:
		return []string{meshsync.Version}
	default:
		return nil
	}
}

// Save persists the replica if it has changed since the last save. It is a
// no-op if no save path is configured.
func (r *Replica) Save() error {
	if r.settings.SavePath == "" {
		return nil
	}
	r.lock.Lock()
	if !r.dirty {
		r.lock.Unlock()
		return nil
	}
	snapshot := r.scene.Copy()
	r.dirty = false
	r.lock.Unlock()
	if err := scene.Save(r.settings.SavePath, snapshot); err != nil {
		r.lock.Lock()
		r.dirty = true
		r.lock.Unlock()
		return errors.Wrap(err, "unable to save replica")
	}
	r.logger.Debugf("Saved %d entities to %s", snapshot.Len(), r.settings.SavePath)
	return nil
}

// Run processes messages as they're released and performs coalesced saves
// until ctx is cancelled or the server is shut down. It performs a final save
// before returning.
func (r *Replica) Run(ctx context.Context) error {
	defer r.saves.Terminate()
	for {
		select {
		case <-ctx.Done():
			return r.Save()
		case <-r.server.Done():
			return r.Save()
		case <-r.server.Ready():
			r.Process()
		case <-r.saves.Signals():
			if err := r.Save(); err != nil {
				r.logger.Warn(err)
			}
		}
	}
}
