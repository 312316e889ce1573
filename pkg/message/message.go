package message

import (
	"github.com/pkg/errors"

	"github.com/mutagen-io/meshsync/pkg/identifier"
	"github.com/mutagen-io/meshsync/pkg/meshsync"
	"github.com/mutagen-io/meshsync/pkg/scene"
)

// Kind identifies a message type.
type Kind uint8

const (
	// KindGet requests scene data from the server's host.
	KindGet Kind = iota + 1
	// KindSet transmits scene data.
	KindSet
	// KindDelete removes entities and materials.
	KindDelete
	// KindFence delimits an atomic batch of messages.
	KindFence
	// KindText transmits a log message.
	KindText
	// KindScreenshot requests a screenshot from the server's host.
	KindScreenshot
	// KindQuery requests information from the server's host.
	KindQuery
	// KindPoll requests server status, waiting for changes.
	KindPoll
	// KindResponse answers a request.
	KindResponse
	// KindStatus reports server status.
	KindStatus
)

// String returns a human-readable representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindGet:
		return "get"
	case KindSet:
		return "set"
	case KindDelete:
		return "delete"
	case KindFence:
		return "fence"
	case KindText:
		return "text"
	case KindScreenshot:
		return "screenshot"
	case KindQuery:
		return "query"
	case KindPoll:
		return "poll"
	case KindResponse:
		return "response"
	case KindStatus:
		return "status"
	default:
		return "unknown"
	}
}

// Header is the header common to all messages.
type Header struct {
	// ProtocolVersion is the sender's protocol version.
	ProtocolVersion uint32
	// SessionID identifies the sending client session.
	SessionID string
	// MessageID uniquely identifies the message.
	MessageID string
}

// MessageHeader returns the header. It allows types that embed Header to
// satisfy Message.
func (h *Header) MessageHeader() *Header {
	return h
}

// NewHeader creates a header for the current protocol version with a fresh
// message identifier.
func NewHeader(sessionID string) Header {
	return Header{
		ProtocolVersion: meshsync.ProtocolVersion,
		SessionID:       sessionID,
		MessageID:       identifier.NewMessageID(),
	}
}

// EnsureValid ensures that the header's invariants are respected.
func (h *Header) EnsureValid() error {
	if h.ProtocolVersion == 0 {
		return errors.New("missing protocol version")
	} else if h.SessionID == "" {
		return errors.New("empty session identifier")
	} else if h.MessageID == "" {
		return errors.New("empty message identifier")
	}
	return nil
}

// Message is the interface implemented by all message types.
type Message interface {
	// Kind returns the message type.
	Kind() Kind
	// MessageHeader returns the message header.
	MessageHeader() *Header
	// EnsureValid ensures that the message's invariants are respected.
	EnsureValid() error
}

// GetFlags select the content returned for a get request.
type GetFlags uint32

const (
	// GetFlagCameras requests cameras.
	GetFlagCameras GetFlags = 1 << iota
	// GetFlagLights requests lights.
	GetFlagLights
	// GetFlagMeshes requests meshes.
	GetFlagMeshes
	// GetFlagMaterials requests materials.
	GetFlagMaterials
	// GetFlagConstraints requests constraints.
	GetFlagConstraints

	// GetFlagsAll requests all content.
	GetFlagsAll = GetFlagCameras | GetFlagLights | GetFlagMeshes | GetFlagMaterials | GetFlagConstraints
)

// Get requests scene data from the server's host.
type Get struct {
	Header
	// Flags select the returned content. Zero selects everything.
	Flags GetFlags
	// Settings are the coordinate conventions in which the scene should be
	// returned.
	Settings scene.Settings
	// Filter is a list of path patterns selecting subtrees to return. An
	// empty filter selects everything.
	Filter []string
}

// Kind implements Message.Kind.
func (*Get) Kind() Kind { return KindGet }

// EnsureValid implements Message.EnsureValid.
func (m *Get) EnsureValid() error {
	if err := m.Header.EnsureValid(); err != nil {
		return errors.Wrap(err, "invalid header")
	} else if m.Flags&^GetFlagsAll != 0 {
		return errors.New("unknown get flags")
	}
	if _, err := scene.NewMatcher(m.Filter); err != nil {
		return errors.Wrap(err, "invalid filter")
	}
	return nil
}

// Set transmits scene data. The scene may be partial, in which case it is
// merged into the receiver's scene.
type Set struct {
	Header
	// Scene is the transmitted scene data.
	Scene *scene.Scene
}

// Kind implements Message.Kind.
func (*Set) Kind() Kind { return KindSet }

// EnsureValid implements Message.EnsureValid.
func (m *Set) EnsureValid() error {
	if err := m.Header.EnsureValid(); err != nil {
		return errors.Wrap(err, "invalid header")
	} else if m.Scene == nil {
		return errors.New("missing scene")
	}
	return nil
}

// Delete removes entities (along with their descendants), materials, and
// constraints.
type Delete struct {
	Header
	// Paths are the entity paths to remove.
	Paths []string
	// MaterialIDs are the material identifiers to remove.
	MaterialIDs []int32
	// ConstraintPaths are the paths of entities whose constraints should be
	// removed. The entities themselves are left in place.
	ConstraintPaths []string
}

// Kind implements Message.Kind.
func (*Delete) Kind() Kind { return KindDelete }

// EnsureValid implements Message.EnsureValid.
func (m *Delete) EnsureValid() error {
	if err := m.Header.EnsureValid(); err != nil {
		return errors.Wrap(err, "invalid header")
	}
	for _, path := range m.Paths {
		if !scene.IsNormalized(path) {
			return errors.Errorf("invalid path (%s)", path)
		}
	}
	for _, path := range m.ConstraintPaths {
		if !scene.IsNormalized(path) {
			return errors.Errorf("invalid constraint path (%s)", path)
		}
	}
	return nil
}

// FenceType identifies a fence boundary.
type FenceType uint8

const (
	// FenceBegin opens a batch.
	FenceBegin FenceType = iota + 1
	// FenceEnd closes a batch.
	FenceEnd
)

// String returns a human-readable representation of the fence type.
func (t FenceType) String() string {
	switch t {
	case FenceBegin:
		return "begin"
	case FenceEnd:
		return "end"
	default:
		return "unknown"
	}
}

// Fence delimits an atomic batch of messages from a single session.
type Fence struct {
	Header
	// Type is the boundary type.
	Type FenceType
}

// Kind implements Message.Kind.
func (*Fence) Kind() Kind { return KindFence }

// EnsureValid implements Message.EnsureValid.
func (m *Fence) EnsureValid() error {
	if err := m.Header.EnsureValid(); err != nil {
		return errors.Wrap(err, "invalid header")
	} else if m.Type != FenceBegin && m.Type != FenceEnd {
		return errors.Errorf("unknown fence type (%d)", m.Type)
	}
	return nil
}

// TextType identifies the severity of a text message.
type TextType uint8

const (
	// TextNormal is an informational message.
	TextNormal TextType = iota
	// TextWarning is a warning.
	TextWarning
	// TextError is an error.
	TextError
)

// String returns a human-readable representation of the text type.
func (t TextType) String() string {
	switch t {
	case TextNormal:
		return "normal"
	case TextWarning:
		return "warning"
	case TextError:
		return "error"
	default:
		return "unknown"
	}
}

// Text transmits a log message for display by the receiver.
type Text struct {
	Header
	// Text is the message content.
	Text string
	// Type is the message severity.
	Type TextType
}

// Kind implements Message.Kind.
func (*Text) Kind() Kind { return KindText }

// EnsureValid implements Message.EnsureValid.
func (m *Text) EnsureValid() error {
	if err := m.Header.EnsureValid(); err != nil {
		return errors.Wrap(err, "invalid header")
	} else if m.Type > TextError {
		return errors.Errorf("unknown text type (%d)", m.Type)
	}
	return nil
}

// Screenshot requests an image of the receiver's current view.
type Screenshot struct {
	Header
}

// Kind implements Message.Kind.
func (*Screenshot) Kind() Kind { return KindScreenshot }

// EnsureValid implements Message.EnsureValid.
func (m *Screenshot) EnsureValid() error {
	return errors.Wrap(m.Header.EnsureValid(), "invalid header")
}

// QueryType identifies the information requested by a query.
type QueryType uint8

const (
	// QueryClientName requests the name of the host application.
	QueryClientName QueryType = iota + 1
	// QueryRootNodes requests the paths of root entities.
	QueryRootNodes
	// QueryAllNodes requests the paths of all entities.
	QueryAllNodes
	// QueryPID requests the host's process identifier.
	QueryPID
	// QueryVersion requests the host's version.
	QueryVersion
)

// String returns a human-readable representation of the query type.
func (t QueryType) String() string {
	switch t {
	case QueryClientName:
		return "client-name"
	case QueryRootNodes:
		return "root-nodes"
	case QueryAllNodes:
		return "all-nodes"
	case QueryPID:
		return "pid"
	case QueryVersion:
		return "version"
	default:
		return "unknown"
	}
}

// ParseQueryType parses a query type from its string representation.
func ParseQueryType(value string) (QueryType, error) {
	for t := QueryClientName; t <= QueryVersion; t++ {
		if t.String() == value {
			return t, nil
		}
	}
	return 0, errors.Errorf("unknown query type (%s)", value)
}

// Query requests information from the receiver's host.
type Query struct {
	Header
	// Type is the requested information.
	Type QueryType
}

// Kind implements Message.Kind.
func (*Query) Kind() Kind { return KindQuery }

// EnsureValid implements Message.EnsureValid.
func (m *Query) EnsureValid() error {
	if err := m.Header.EnsureValid(); err != nil {
		return errors.Wrap(err, "invalid header")
	} else if m.Type < QueryClientName || m.Type > QueryVersion {
		return errors.Errorf("unknown query type (%d)", m.Type)
	}
	return nil
}

// Poll requests the server's status once its state index differs from Index.
type Poll struct {
	Header
	// Index is the last state index observed by the client. Zero returns
	// immediately.
	Index uint64
}

// Kind implements Message.Kind.
func (*Poll) Kind() Kind { return KindPoll }

// EnsureValid implements Message.EnsureValid.
func (m *Poll) EnsureValid() error {
	return errors.Wrap(m.Header.EnsureValid(), "invalid header")
}

// Response answers a request. Which fields are populated depends on the
// request.
type Response struct {
	Header
	// Text holds textual results, such as query answers.
	Text []string
	// Scene holds scene data for get requests.
	Scene *scene.Scene
	// Image holds encoded image data for screenshot requests.
	Image []byte
}

// Kind implements Message.Kind.
func (*Response) Kind() Kind { return KindResponse }

// EnsureValid implements Message.EnsureValid. Responses carry no session, so
// only the message identifier is required.
func (m *Response) EnsureValid() error {
	if m.MessageID == "" {
		return errors.New("empty message identifier")
	}
	return nil
}

// Status summarizes server state.
type Status struct {
	Header
	// Index is the server's state index.
	Index uint64
	// ServerID identifies the server instance.
	ServerID string
	// Messages is the number of messages released to the host.
	Messages uint64
	// Batches is the number of batches released to the host.
	Batches uint64
	// Queued is the number of messages awaiting processing.
	Queued uint64
	// Pending is the number of requests awaiting host answers.
	Pending uint64
	// Sessions is the number of sessions with open fences.
	Sessions uint64
}

// Kind implements Message.Kind.
func (*Status) Kind() Kind { return KindStatus }

// EnsureValid implements Message.EnsureValid.
func (m *Status) EnsureValid() error {
	if m.Index == 0 {
		return errors.New("zero state index")
	}
	return nil
}
