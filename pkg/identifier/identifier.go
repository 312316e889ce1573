package identifier

import (
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/mutagen-io/meshsync/pkg/encoding"
	"github.com/mutagen-io/meshsync/pkg/random"
)

const (
	// PrefixSession is the prefix used for client session identifiers.
	PrefixSession = "sess"
	// PrefixServer is the prefix used for server instance identifiers.
	PrefixServer = "srvr"

	// requiredPrefixLength is the required length for identifier prefixes.
	requiredPrefixLength = 4
	// collisionResistantLength is the number of random bytes used to build an
	// identifier.
	collisionResistantLength = random.CollisionResistantLength
	// targetBase62Length is the length of a Base62-encoded value of
	// collisionResistantLength bytes. Shorter encodings are left-padded with
	// the zero digit so that identifiers have a fixed length.
	targetBase62Length = 43
)

// New generates a new collision-resistant identifier with the specified prefix.
// The prefix must consist of exactly four lowercase ASCII letters.
func New(prefix string) (string, error) {
	// Validate the prefix.
	if len(prefix) != requiredPrefixLength {
		return "", errors.New("incorrect prefix length")
	}
	for _, r := range prefix {
		if r < 'a' || r > 'z' {
			return "", errors.New("invalid prefix character")
		}
	}

	// Create the random value.
	value, err := random.New(collisionResistantLength)
	if err != nil {
		return "", errors.Wrap(err, "unable to generate random data")
	}

	// Encode the random value and left-pad it.
	encoded := encoding.EncodeBase62(value)
	builder := &strings.Builder{}
	builder.Grow(requiredPrefixLength + 1 + targetBase62Length)
	builder.WriteString(prefix)
	builder.WriteByte('_')
	for i := targetBase62Length - len(encoded); i > 0; i-- {
		builder.WriteByte(encoding.Base62Alphabet[0])
	}
	builder.WriteString(encoded)

	// Done.
	return builder.String(), nil
}

// NewMessageID generates a new message identifier. Message identifiers are
// UUIDs since they're generated at high frequency and only need to be unique
// within the lifetime of a request.
func NewMessageID() string {
	return uuid.NewString()
}

// IsValid determines whether or not a string is a valid identifier. Both
// prefixed identifiers and UUIDs (in lowercase canonical form) are accepted.
func IsValid(value string) bool {
	// Check for UUIDs.
	if len(value) == 36 {
		parsed, err := uuid.Parse(value)
		return err == nil && parsed.String() == value
	}

	// Check the length.
	if len(value) != requiredPrefixLength+1+targetBase62Length {
		return false
	}

	// Check the prefix and separator.
	for i := 0; i < requiredPrefixLength; i++ {
		if value[i] < 'a' || value[i] > 'z' {
			return false
		}
	}
	if value[requiredPrefixLength] != '_' {
		return false
	}

	// Check that the encoded portion decodes to a value that fits within the
	// random value length. Padding is trimmed first since the decoder treats
	// each leading zero digit as a zero byte.
	encoded := strings.TrimLeft(value[requiredPrefixLength+1:], encoding.Base62Alphabet[:1])
	if encoded == "" {
		return true
	}
	decoded, err := encoding.DecodeBase62(encoded)
	return err == nil && len(decoded) <= collisionResistantLength
}
