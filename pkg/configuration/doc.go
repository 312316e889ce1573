// Package configuration provides MeshSync's YAML configuration format, its
// defaults, and environment-based overrides.
package configuration
