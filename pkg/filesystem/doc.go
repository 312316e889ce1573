// Package filesystem provides the small set of filesystem operations MeshSync
// needs for persisting scenes and configuration: atomic writes, the MeshSync
// data directory, and (in the locking subpackage) cross-process file locks.
package filesystem
