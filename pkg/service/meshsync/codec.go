package meshsync

import (
	"github.com/pkg/errors"

	"google.golang.org/grpc/encoding"

	"github.com/mutagen-io/meshsync/pkg/grpcutil"
	"github.com/mutagen-io/meshsync/pkg/message"
)

// CodecName is the name of the MeshSync codec. It's used as the gRPC content
// subtype for MeshSync calls.
const CodecName = "meshsync"

// codec implements encoding.Codec for MeshSync messages.
type codec struct{}

func init() {
	encoding.RegisterCodec(codec{})
}

// Name implements encoding.Codec.Name.
func (codec) Name() string {
	return CodecName
}

// Marshal implements encoding.Codec.Marshal.
func (codec) Marshal(value interface{}) ([]byte, error) {
	m, ok := value.(message.Message)
	if !ok {
		return nil, errors.Errorf("unsupported value type (%T)", value)
	}
	return message.Encode(m)
}

// Unmarshal implements encoding.Codec.Unmarshal. The value must be a pointer
// to a message of the encoded kind.
func (codec) Unmarshal(data []byte, value interface{}) error {
	// Decode the message.
	decoded, err := message.Decode(data, grpcutil.MaximumMessageSize)
	if err != nil {
		return err
	}

	// Store the result.
	switch target := value.(type) {
	case *message.Set:
		if source, ok := decoded.(*message.Set); ok {
			*target = *source
			return nil
		}
	case *message.Delete:
		if source, ok := decoded.(*message.Delete); ok {
			*target = *source
			return nil
		}
	case *message.Fence:
		if source, ok := decoded.(*message.Fence); ok {
			*target = *source
			return nil
		}
	case *message.Text:
		if source, ok := decoded.(*message.Text); ok {
			*target = *source
			return nil
		}
	case *message.Get:
		if source, ok := decoded.(*message.Get); ok {
			*target = *source
			return nil
		}
	case *message.Query:
		if source, ok := decoded.(*message.Query); ok {
			*target = *source
			return nil
		}
	case *message.Screenshot:
		if source, ok := decoded.(*message.Screenshot); ok {
			*target = *source
			return nil
		}
	case *message.Poll:
		if source, ok := decoded.(*message.Poll); ok {
			*target = *source
			return nil
		}
	case *message.Response:
		if source, ok := decoded.(*message.Response); ok {
			*target = *source
			return nil
		}
	case *message.Status:
		if source, ok := decoded.(*message.Status); ok {
			*target = *source
			return nil
		}
	default:
		return errors.Errorf("unsupported value type (%T)", value)
	}
	return errors.Errorf("unexpected %s message for %T", decoded.Kind(), value)
}
