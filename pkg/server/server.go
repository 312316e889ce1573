package server

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/mutagen-io/meshsync/pkg/configuration"
	"github.com/mutagen-io/meshsync/pkg/constraints"
	"github.com/mutagen-io/meshsync/pkg/identifier"
	"github.com/mutagen-io/meshsync/pkg/logging"
	"github.com/mutagen-io/meshsync/pkg/meshsync"
	"github.com/mutagen-io/meshsync/pkg/message"
	"github.com/mutagen-io/meshsync/pkg/scene"
	"github.com/mutagen-io/meshsync/pkg/state"
)

var (
	// ErrVersionMismatch indicates that a message was sent using a different
	// protocol version.
	ErrVersionMismatch = errors.New("protocol version mismatch")
	// ErrRequestTimeout indicates that the host did not answer a request
	// within the configured timeout.
	ErrRequestTimeout = errors.New("request timed out")
	// ErrQueueFull indicates that the message queue is at capacity.
	ErrQueueFull = errors.New("message queue full")
	// ErrShutdown indicates that the server has been shut down.
	ErrShutdown = errors.New("server shut down")
	// ErrNoPendingRequest indicates that an answer was provided for a request
	// that is no longer waiting, usually because it timed out.
	ErrNoPendingRequest = errors.New("no pending request")
)

// Settings are the server's tunable parameters.
type Settings struct {
	// QueueCapacity is the maximum number of messages (released or held in
	// fences) awaiting processing. Zero selects the default.
	QueueCapacity int
	// RequestTimeout is the time that requests requiring a host answer wait
	// before failing with ErrRequestTimeout. Zero selects the default.
	RequestTimeout time.Duration
	// FenceTimeout is the time that a fence may go without receiving a
	// message before it's discarded along with its held messages. Zero
	// selects the default.
	FenceTimeout time.Duration
}

// NewSettings extracts server settings from a configuration.
func NewSettings(c *configuration.ServerConfiguration) Settings {
	return Settings{
		QueueCapacity:  c.QueueCapacity,
		RequestTimeout: time.Duration(c.RequestTimeout),
		FenceTimeout:   time.Duration(c.FenceTimeout),
	}
}

// Handler processes a single message on the host's goroutine.
type Handler func(message.Message)

// answer is the result delivered to a pending request.
type answer struct {
	// response is the response to return.
	response *message.Response
	// err is the error to return.
	err error
}

// fence tracks the messages held for a session inside a fence.
type fence struct {
	// depth is the nesting depth.
	depth int
	// messages are the held messages.
	messages []message.Message
	// activity is the time at which the fence last received a message.
	activity time.Time
}

// Server accepts messages from clients, batches them by fence, and releases
// them to a host that drains them with ProcessMessages. It is safe for
// concurrent usage.
type Server struct {
	// settings are the server settings with defaults applied.
	settings Settings
	// logger is the server logger.
	logger *logging.Logger
	// identifier is the server instance identifier.
	identifier string
	// tracker tracks changes to server state.
	tracker *state.Tracker
	// ready is signaled whenever messages are released.
	ready chan struct{}
	// done is closed when the server is shut down.
	done chan struct{}
	// lock guards the fields below.
	lock sync.Mutex
	// shutdown indicates whether or not the server has been shut down.
	shutdown bool
	// released are the messages available to the host.
	released []message.Message
	// fences are the open fences, keyed by session.
	fences map[string]*fence
	// held is the number of messages held in fences.
	held int
	// pending are the requests awaiting a host answer, keyed by message ID.
	pending map[string]chan answer
	// messages is the number of messages processed by the host.
	messages uint64
	// batches is the number of batches released.
	batches uint64
}

// New creates a new server.
func New(settings Settings, logger *logging.Logger) (*Server, error) {
	// Apply defaults.
	if settings.QueueCapacity <= 0 {
		settings.QueueCapacity = configuration.DefaultQueueCapacity
	}
	if settings.RequestTimeout <= 0 {
		settings.RequestTimeout = configuration.DefaultRequestTimeout
	}
	if settings.FenceTimeout <= 0 {
		settings.FenceTimeout = configuration.DefaultFenceTimeout
	}

	// Generate the server identifier.
	id, err := identifier.New(identifier.PrefixServer)
	if err != nil {
		return nil, errors.Wrap(err, "unable to generate server identifier")
	}

	// Create the server.
	return &Server{
		settings:   settings,
		logger:     logger,
		identifier: id,
		tracker:    state.NewTracker(),
		ready:      make(chan struct{}, 1),
		done:       make(chan struct{}),
		fences:     make(map[string]*fence),
		pending:    make(map[string]chan answer),
	}, nil
}

// Identifier returns the server instance identifier.
func (s *Server) Identifier() string {
	return s.identifier
}

// Ready returns a channel that is signaled when messages are released. The
// channel is buffered with a capacity of 1 and never closed.
func (s *Server) Ready() <-chan struct{} {
	return s.ready
}

// Done returns a channel that is closed when the server is shut down.
func (s *Server) Done() <-chan struct{} {
	return s.done
}

// queued returns the number of messages awaiting processing. The lock must be
// held.
func (s *Server) queued() int {
	return len(s.released) + s.held
}

// expireFences discards fences that have gone without activity for longer
// than the fence timeout, along with their held messages. Held messages are
// never released from an expired fence because its batch is incomplete. The
// lock must be held.
func (s *Server) expireFences(now time.Time) {
	for session, f := range s.fences {
		if now.Sub(f.activity) < s.settings.FenceTimeout {
			continue
		}
		delete(s.fences, session)
		s.held -= len(f.messages)
		s.tracker.NotifyOfChange()
		s.logger.Warn(errors.Errorf("discarded idle fence from %s with %d held messages",
			session, len(f.messages),
		))
	}
}

// release makes messages available to the host. The lock must be held.
func (s *Server) release(messages ...message.Message) {
	s.released = append(s.released, messages...)
	s.batches++
	s.tracker.NotifyOfChange()
	select {
	case s.ready <- struct{}{}:
	default:
	}
}

// isRequest returns whether or not a message requires a host answer.
func isRequest(m message.Message) bool {
	switch m.Kind() {
	case message.KindGet, message.KindQuery, message.KindScreenshot:
		return true
	default:
		return false
	}
}

// Receive validates and queues a message. Data messages are acknowledged as
// soon as they're queued. Fences that have been idle for longer than the fence
// timeout are discarded first so that an abandoned session can't exhaust the
// queue capacity shared by all sessions. Requests requiring a host answer block until the
// host answers, the request times out, ctx is cancelled, or the server is
// shut down. Requests bypass open fences so that a client blocked on an answer
// can't stall its own batch.
func (s *Server) Receive(ctx context.Context, m message.Message) (*message.Response, error) {
	// Validate the message.
	header := m.MessageHeader()
	if header.ProtocolVersion != meshsync.ProtocolVersion {
		return nil, errors.Wrapf(ErrVersionMismatch, "client version %d, server version %d",
			header.ProtocolVersion, meshsync.ProtocolVersion,
		)
	} else if err := m.EnsureValid(); err != nil {
		return nil, errors.Wrapf(err, "invalid %s message", m.Kind())
	}
	s.logger.Debugf("Received %s message %s from %s", m.Kind(), header.MessageID, header.SessionID)

	// Queue the message.
	var answers chan answer
	s.lock.Lock()
	if s.shutdown {
		s.lock.Unlock()
		return nil, ErrShutdown
	}
	s.expireFences(time.Now())
	if m.Kind() != message.KindFence && s.queued() >= s.settings.QueueCapacity {
		s.lock.Unlock()
		return nil, ErrQueueFull
	}
	if isRequest(m) {
		if _, ok := s.pending[header.MessageID]; ok {
			s.lock.Unlock()
			return nil, errors.Errorf("duplicate request identifier (%s)", header.MessageID)
		}
		answers = make(chan answer, 1)
		s.pending[header.MessageID] = answers
		s.release(m)
	} else if err := s.enqueue(m); err != nil {
		s.lock.Unlock()
		return nil, err
	}
	s.lock.Unlock()

	// Data messages are acknowledged immediately.
	if answers == nil {
		return &message.Response{Header: message.Header{
			ProtocolVersion: meshsync.ProtocolVersion,
			MessageID:       header.MessageID,
		}}, nil
	}

	// Wait for an answer.
	timer := time.NewTimer(s.settings.RequestTimeout)
	defer timer.Stop()
	var err error
	select {
	case a := <-answers:
		return a.response, a.err
	case <-timer.C:
		err = ErrRequestTimeout
	case <-ctx.Done():
		err = ctx.Err()
	case <-s.done:
		err = ErrShutdown
	}

	// Abandon the request.
	s.lock.Lock()
	delete(s.pending, header.MessageID)
	s.lock.Unlock()
	return nil, err
}

// enqueue queues a data message, applying fence semantics. The lock must be
// held.
func (s *Server) enqueue(m message.Message) error {
	session := m.MessageHeader().SessionID
	f := s.fences[session]
	if f != nil {
		f.activity = time.Now()
	}

	// Handle fences.
	if fm, ok := m.(*message.Fence); ok {
		switch fm.Type {
		case message.FenceBegin:
			if f == nil {
				f = &fence{activity: time.Now()}
				s.fences[session] = f
			}
			f.depth++
		case message.FenceEnd:
			if f == nil {
				return errors.New("fence end without matching begin")
			}
			f.depth--
			if f.depth == 0 {
				delete(s.fences, session)
				s.held -= len(f.messages)
				if len(f.messages) > 0 {
					s.release(f.messages...)
				}
				s.logger.Debugf("Released batch of %d messages from %s", len(f.messages), session)
			}
		}
		return nil
	}

	// Hold or release the message.
	if f != nil {
		f.messages = append(f.messages, m)
		s.held++
	} else {
		s.release(m)
	}
	return nil
}

// ProcessMessages invokes handler for each released message, in arrival
// order, on the calling goroutine. It returns the number of messages
// processed. Messages released while processing are left for the next call.
func (s *Server) ProcessMessages(handler Handler) int {
	// Grab the released messages.
	s.lock.Lock()
	messages := s.released
	s.released = nil
	s.lock.Unlock()
	if len(messages) == 0 {
		return 0
	}

	// Process messages.
	for _, m := range messages {
		handler(m)
	}

	// Update statistics.
	s.lock.Lock()
	s.messages += uint64(len(messages))
	s.tracker.NotifyOfChange()
	s.lock.Unlock()

	// Done.
	return len(messages)
}

// serve delivers an answer to a pending request.
func (s *Server) serve(request message.Message, response *message.Response, err error) error {
	// Extract and remove the pending request.
	id := request.MessageHeader().MessageID
	s.lock.Lock()
	answers, ok := s.pending[id]
	delete(s.pending, id)
	s.lock.Unlock()
	if !ok {
		return errors.Wrapf(ErrNoPendingRequest, "%s request %s", request.Kind(), id)
	}

	// Deliver the answer. The channel is buffered and written exactly once.
	if response != nil {
		response.ProtocolVersion = meshsync.ProtocolVersion
		response.MessageID = id
	}
	answers <- answer{response, err}
	return nil
}

// ServeScene answers a get request with the host's scene. The scene is
// filtered and converted to the conventions requested, so hosts can pass
// their complete scene. The scene is copied and may be modified afterward.
func (s *Server) ServeScene(request *message.Get, result *scene.Scene) error {
	// Apply the requested filter.
	matcher, err := scene.NewMatcher(request.Filter)
	if err != nil {
		return s.serve(request, nil, errors.Wrap(err, "invalid filter"))
	}
	result = scene.Select(result, matcher)

	// Apply the requested content flags.
	flags := request.Flags
	if flags == 0 {
		flags = message.GetFlagsAll
	}
	result = scene.FilterTypes(result, map[scene.EntityType]bool{
		scene.EntityTypeCamera: flags&message.GetFlagCameras != 0,
		scene.EntityTypeLight:  flags&message.GetFlagLights != 0,
		scene.EntityTypeMesh:   flags&message.GetFlagMeshes != 0,
	})
	if flags&message.GetFlagMaterials == 0 {
		result.Materials = make(map[int32]*scene.Material)
	}
	if flags&message.GetFlagConstraints == 0 {
		result.Constraints = make(map[string]*constraints.Constraint)
	}

	// Convert and deliver the scene. Conversion performs a deep copy.
	return s.serve(request, &message.Response{Scene: result.Convert(request.Settings)}, nil)
}

// ServeQuery answers a query request.
func (s *Server) ServeQuery(request *message.Query, answers []string) error {
	return s.serve(request, &message.Response{Text: answers}, nil)
}

// ServeScreenshot answers a screenshot request with encoded image data.
func (s *Server) ServeScreenshot(request *message.Screenshot, image []byte) error {
	return s.serve(request, &message.Response{Image: image}, nil)
}

// Reject fails a pending request with the specified error.
func (s *Server) Reject(request message.Message, err error) error {
	if err == nil {
		err = errors.New("request rejected")
	}
	return s.serve(request, nil, err)
}

// status computes the current server status.
func (s *Server) status(index uint64) *message.Status {
	s.lock.Lock()
	defer s.lock.Unlock()
	if !s.shutdown {
		s.expireFences(time.Now())
	}
	return &message.Status{
		Header:   message.Header{ProtocolVersion: meshsync.ProtocolVersion},
		Index:    index,
		ServerID: s.identifier,
		Messages: s.messages,
		Batches:  s.batches,
		Queued:   uint64(s.queued()),
		Pending:  uint64(len(s.pending)),
		Sessions: uint64(len(s.fences)),
	}
}

// Poll returns the server's status once its state index differs from index.
// An index of 0 returns immediately.
func (s *Server) Poll(ctx context.Context, request *message.Poll) (*message.Status, error) {
	// Validate the request.
	if request.ProtocolVersion != meshsync.ProtocolVersion {
		return nil, ErrVersionMismatch
	} else if err := request.EnsureValid(); err != nil {
		return nil, errors.Wrap(err, "invalid poll message")
	}

	// Wait for a change.
	index, err := s.tracker.WaitForChange(ctx, request.Index)
	if errors.Is(err, state.ErrTrackingTerminated) {
		return nil, ErrShutdown
	} else if err != nil {
		return nil, err
	}

	// Compute the status.
	result := s.status(index)
	result.MessageID = request.MessageID
	return result, nil
}

// Status returns the current server status.
func (s *Server) Status() *message.Status {
	return s.status(s.tracker.Index())
}

// Shutdown shuts down the server. Waiting requests and pollers are released
// with ErrShutdown and held fences are discarded. It is idempotent.
func (s *Server) Shutdown() {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.shutdown {
		return
	}
	s.shutdown = true
	close(s.done)
	s.tracker.Terminate()
	s.fences = make(map[string]*fence)
	s.held = 0
}
