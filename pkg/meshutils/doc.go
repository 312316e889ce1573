// Package meshutils provides the vector math and mesh processing routines used
// throughout MeshSync: small fixed-size vector, quaternion and matrix types,
// polygon topology helpers, normal and tangent generation, the normal editing
// operations, and Wavefront OBJ export.
//
// Meshes are represented the way content-creation tools hand them over: a
// points array plus a polygon description made of per-face vertex counts and a
// flat index array. Vertex attributes are stored either per point or per index
// (face corner).
package meshutils
