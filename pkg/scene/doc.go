// Package scene implements the MeshSync scene graph: a set of entities
// (transforms, cameras, lights, and meshes) addressed by slash-separated
// paths, along with the materials and constraints that they reference. It
// provides diffing, filtering, coordinate-system conversion, and the wire
// encoding used to transmit scenes between clients and servers.
package scene
