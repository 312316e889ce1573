// Package client implements the MeshSync client (msClient). A Client sends
// individual messages to a server over gRPC, while a Synchronizer builds on a
// Client to transmit only what changed in a host scene since the last
// synchronization, as a single fenced batch.
package client
