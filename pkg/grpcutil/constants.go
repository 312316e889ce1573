package grpcutil

const (
	// MaximumMessageSize specifies the maximum message size that we'll allow
	// over gRPC channels. Scene payloads carry full mesh buffers, so this is
	// considerably larger than gRPC's default.
	MaximumMessageSize = 256 * 1024 * 1024
)
