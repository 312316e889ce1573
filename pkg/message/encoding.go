package message

import (
	"github.com/pkg/errors"

	"github.com/mutagen-io/meshsync/pkg/compression"
	"github.com/mutagen-io/meshsync/pkg/scene"
	"github.com/mutagen-io/meshsync/pkg/wire"
)

const (
	// CompressionThreshold is the encoded payload size above which messages
	// are compressed.
	CompressionThreshold = 64 * 1024

	// flagCompressed indicates a compressed payload.
	flagCompressed byte = 1 << 0
)

// Envelope field numbers.
const (
	fieldKind   = 1
	fieldHeader = 2
	fieldBody   = 3
)

// Header field numbers.
const (
	fieldProtocolVersion = 1
	fieldSessionID       = 2
	fieldMessageID       = 3
)

// encodeHeader encodes a header.
func encodeHeader(h *Header) func(*wire.Encoder) {
	return func(e *wire.Encoder) {
		e.Uint(fieldProtocolVersion, uint64(h.ProtocolVersion))
		e.Text(fieldSessionID, h.SessionID)
		e.Text(fieldMessageID, h.MessageID)
	}
}

// decodeHeader decodes a header.
func decodeHeader(data []byte, h *Header) error {
	return wire.Decode(data, func(f *wire.Field) error {
		switch f.Number {
		case fieldProtocolVersion:
			h.ProtocolVersion = uint32(f.Uint())
		case fieldSessionID:
			h.SessionID = f.Text()
		case fieldMessageID:
			h.MessageID = f.Text()
		}
		return nil
	})
}

// encodeBody encodes the type-specific portion of a message.
func encodeBody(m Message, e *wire.Encoder) error {
	switch m := m.(type) {
	case *Get:
		e.Uint(1, uint64(m.Flags))
		e.Message(2, m.Settings.Encode)
		e.Texts(3, m.Filter)
	case *Set:
		if m.Scene == nil {
			return errors.New("set message has no scene")
		}
		e.Message(1, m.Scene.Encode)
	case *Delete:
		e.Texts(1, m.Paths)
		e.Int32s(2, m.MaterialIDs)
		e.Texts(3, m.ConstraintPaths)
	case *Fence:
		e.Uint(1, uint64(m.Type))
	case *Text:
		e.Text(1, m.Text)
		e.Uint(2, uint64(m.Type))
	case *Screenshot:
	case *Query:
		e.Uint(1, uint64(m.Type))
	case *Poll:
		e.Uint(1, m.Index)
	case *Response:
		e.Texts(1, m.Text)
		if m.Scene != nil {
			e.Message(2, m.Scene.Encode)
		}
		e.Raw(3, m.Image)
	case *Status:
		e.Uint(1, m.Index)
		e.Text(2, m.ServerID)
		e.Uint(3, m.Messages)
		e.Uint(4, m.Batches)
		e.Uint(5, m.Queued)
		e.Uint(6, m.Pending)
		e.Uint(7, m.Sessions)
	default:
		return errors.Errorf("unsupported message type (%T)", m)
	}
	return nil
}

// newMessage allocates an empty message of the specified kind.
func newMessage(kind Kind) (Message, error) {
	switch kind {
	case KindGet:
		return &Get{}, nil
	case KindSet:
		return &Set{}, nil
	case KindDelete:
		return &Delete{}, nil
	case KindFence:
		return &Fence{}, nil
	case KindText:
		return &Text{}, nil
	case KindScreenshot:
		return &Screenshot{}, nil
	case KindQuery:
		return &Query{}, nil
	case KindPoll:
		return &Poll{}, nil
	case KindResponse:
		return &Response{}, nil
	case KindStatus:
		return &Status{}, nil
	default:
		return nil, errors.Errorf("unknown message kind (%d)", kind)
	}
}

// decodeBody decodes the type-specific portion of a message.
func decodeBody(data []byte, m Message) error {
	return wire.Decode(data, func(f *wire.Field) error {
		switch m := m.(type) {
		case *Get:
			switch f.Number {
			case 1:
				m.Flags = GetFlags(f.Uint())
			case 2:
				settings, err := scene.UnmarshalSettings(f.Data())
				if err != nil {
					return errors.Wrap(err, "unable to decode settings")
				}
				m.Settings = settings
			case 3:
				m.Filter = append(m.Filter, f.Text())
			}
		case *Set:
			if f.Number == 1 {
				s, err := scene.Unmarshal(f.Data())
				if err != nil {
					return errors.Wrap(err, "unable to decode scene")
				}
				m.Scene = s
			}
		case *Delete:
			switch f.Number {
			case 1:
				m.Paths = append(m.Paths, f.Text())
			case 2:
				m.MaterialIDs = append(m.MaterialIDs, f.Int32s()...)
			case 3:
				m.ConstraintPaths = append(m.ConstraintPaths, f.Text())
			}
		case *Fence:
			if f.Number == 1 {
				m.Type = FenceType(f.Uint())
			}
		case *Text:
			switch f.Number {
			case 1:
				m.Text = f.Text()
			case 2:
				m.Type = TextType(f.Uint())
			}
		case *Query:
			if f.Number == 1 {
				m.Type = QueryType(f.Uint())
			}
		case *Poll:
			if f.Number == 1 {
				m.Index = f.Uint()
			}
		case *Response:
			switch f.Number {
			case 1:
				m.Text = append(m.Text, f.Text())
			case 2:
				s, err := scene.Unmarshal(f.Data())
				if err != nil {
					return errors.Wrap(err, "unable to decode scene")
				}
				m.Scene = s
			case 3:
				m.Image = append([]byte(nil), f.Data()...)
			}
		case *Status:
			switch f.Number {
			case 1:
				m.Index = f.Uint()
			case 2:
				m.ServerID = f.Text()
			case 3:
				m.Messages = f.Uint()
			case 4:
				m.Batches = f.Uint()
			case 5:
				m.Queued = f.Uint()
			case 6:
				m.Pending = f.Uint()
			case 7:
				m.Sessions = f.Uint()
			}
		}
		return nil
	})
}

// Encode encodes a message. Payloads larger than CompressionThreshold are
// compressed.
func Encode(m Message) ([]byte, error) {
	// Encode the body.
	body := &wire.Encoder{}
	if err := encodeBody(m, body); err != nil {
		return nil, err
	}

	// Encode the envelope.
	envelope := &wire.Encoder{}
	envelope.Uint(fieldKind, uint64(m.Kind()))
	envelope.Message(fieldHeader, encodeHeader(m.MessageHeader()))
	envelope.Embed(fieldBody, body.Bytes())
	payload := envelope.Bytes()

	// Compress if worthwhile.
	if len(payload) > CompressionThreshold {
		compressed, err := compression.Compress(payload)
		if err != nil {
			return nil, err
		}
		if len(compressed) < len(payload) {
			return append([]byte{flagCompressed}, compressed...), nil
		}
	}
	return append([]byte{0}, payload...), nil
}

// Decode decodes a message, refusing to decompress more than limit bytes.
// The result is not validated.
func Decode(data []byte, limit int64) (Message, error) {
	// Extract and apply flags.
	if len(data) == 0 {
		return nil, errors.New("empty message")
	}
	flags, payload := data[0], data[1:]
	if flags&^flagCompressed != 0 {
		return nil, errors.Errorf("unknown message flags (%#x)", flags)
	}
	if flags&flagCompressed != 0 {
		decompressed, err := compression.Decompress(payload, limit)
		if err != nil {
			return nil, err
		}
		payload = decompressed
	}

	// Decode the envelope.
	var kind Kind
	var header, body []byte
	var haveBody bool
	err := wire.Decode(payload, func(f *wire.Field) error {
		switch f.Number {
		case fieldKind:
			kind = Kind(f.Uint())
		case fieldHeader:
			header = f.Data()
		case fieldBody:
			body = f.Data()
			haveBody = true
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "unable to decode envelope")
	} else if !haveBody {
		return nil, errors.New("message has no body")
	}

	// Decode the message.
	result, err := newMessage(kind)
	if err != nil {
		return nil, err
	}
	if err := decodeHeader(header, result.MessageHeader()); err != nil {
		return nil, errors.Wrap(err, "unable to decode header")
	}
	if err := decodeBody(body, result); err != nil {
		return nil, errors.Wrapf(err, "unable to decode %s message", kind)
	}

	// Success.
	return result, nil
}
