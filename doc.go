// Package polyhedra analyzes and manipulates closed triangulated polyhedra.
//
// The library represents meshes as indexed vertex buffers (VertexList) that
// de-duplicate bit-identical vertices on insertion, and as shared
// vertex/edge/face topologies (Vef) for the algorithms that need adjacency.
// On top of those it offers five geometric operations plus the usual
// supporting machinery:
//
//   - ConvexHull: an incremental Quickhull that merges coplanar faces
//   - PlaneCut: splits a mesh by a plane and re-closes both caps
//   - Triangulate2D: a monotone sweep over planar polygons with holes
//   - Simplify: quadric-error edge contraction with optional long-range
//     pair aggregation through a bounding-volume hierarchy
//   - ConvexDecomp: approximate convex decomposition driven by concave-edge
//     probes against a convex-hull oracle
//
// # Basic Usage
//
// Generate a primitive, cut it, and inspect the pieces:
//
//	cube, err := polyhedra.Cube(1, 1, 1)
//	if err != nil {
//		log.Fatal(err)
//	}
//	pieces, err := polyhedra.PlaneCut(cube, mgl32.Vec3{0, 0, 1}, 0)
//	for _, p := range pieces {
//		mp, _ := polyhedra.CalculateMassProperties(p)
//		fmt.Printf("piece: %s volume=%g\n", p.Stats(), mp.Volume)
//	}
//
// # Primitives
//
// Cube, Cylinder, UVSphere, and IcoSphere all generate a point cloud and
// return its convex hull, so every primitive is closed, consistently wound,
// and de-duplicated by construction.
//
// # Validation
//
// Generated and transformed meshes can be checked:
//
//	if err := polyhedra.ValidateComplete(mesh); err != nil {
//		log.Printf("invalid mesh: %v", err)
//	}
//
// # File I/O
//
// The meshio package reads and writes Wavefront OBJ and binary STL, and
// writes SVG projections; see the cmd directory for the command-line
// front-ends built on it.
//
// # Concurrency
//
// Every operation is synchronous and owns its intermediate state; distinct
// operations may run on distinct goroutines. The only process-wide state is
// the lazily seeded key behind vertex hashing, which is initialized once.
package polyhedra
