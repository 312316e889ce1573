// Package meshsync is the root of the MeshSync packages and holds the version
// and build-configuration values that the rest of the tree shares.
//
// MeshSync synchronizes scene data from a content-creation host to an external
// viewer. Its components build on one another in the following order:
//
//	meshutils      vector math and mesh processing
//	configuration  client and server settings
//	constraints    transform constraints between entities
//	scene          the scene graph model, diffing and wire encoding
//	client         the sending side, including incremental synchronization
//	server         the receiving side, including fenced batching
//
// Debug tracing is enabled by building with the mscdebug build tag.
package meshsync
