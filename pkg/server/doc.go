// Package server implements the MeshSync server (msServer). A Server receives
// messages from clients, groups them into atomic batches delimited by fences,
// and hands them to a host application that drains them on its own goroutine
// with ProcessMessages. Requests that need a host answer (get, query and
// screenshot) block until the host serves them or they time out.
//
// Replica is a headless host that maintains an in-memory copy of the
// synchronized scene, and Monitor broadcasts host activity to websocket
// viewers.
package server
