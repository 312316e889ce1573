package meshsync

import (
	"fmt"
	"testing"
)

// TestVersion tests that the version string is consistent with its components.
func TestVersion(t *testing.T) {
	expected := fmt.Sprintf("%d.%d.%d", VersionMajor, VersionMinor, VersionPatch)
	if VersionTag != "" {
		expected += "-" + VersionTag
	}
	if Version != expected {
		t.Error("version string does not match components:", Version, "!=", expected)
	}
}

// TestProtocolVersionNonZero ensures that the protocol version is set, since
// a zero value is what an unpopulated message header decodes to.
func TestProtocolVersionNonZero(t *testing.T) {
	if ProtocolVersion == 0 {
		t.Error("protocol version is zero")
	}
}
