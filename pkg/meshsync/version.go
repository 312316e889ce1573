package meshsync

import (
	"fmt"
)

const (
	// VersionMajor represents the current major version of MeshSync.
	VersionMajor = 0
	// VersionMinor represents the current minor version of MeshSync.
	VersionMinor = 9
	// VersionPatch represents the current patch version of MeshSync.
	VersionPatch = 0
	// VersionTag represents a tag to be appended to the MeshSync version
	// string. It must not contain spaces. If empty, no tag is appended to the
	// version string.
	VersionTag = ""

	// ProtocolVersion is the version of the wire protocol spoken between
	// clients and servers. It must be bumped whenever message encodings change
	// incompatibly. Servers reject messages carrying a different value.
	ProtocolVersion uint32 = 103

	// DefaultPort is the default TCP port on which servers listen.
	DefaultPort = 8080

	// DefaultMaximumMessageSize is the default maximum size of a single
	// encoded message.
	DefaultMaximumMessageSize = 256 * 1024 * 1024
)

// Version provides a stringified version of the current MeshSync version.
var Version string

func init() {
	// Compute the stringified version.
	if VersionTag != "" {
		Version = fmt.Sprintf("%d.%d.%d-%s", VersionMajor, VersionMinor, VersionPatch, VersionTag)
	} else {
		Version = fmt.Sprintf("%d.%d.%d", VersionMajor, VersionMinor, VersionPatch)
	}
}
