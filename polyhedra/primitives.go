package polyhedra

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// The primitive generators all build a point cloud and take its convex
// hull, so their output shares the hull's guarantees: closed, CCW, and
// de-duplicated. Coplanar point sets (cylinder caps, cube faces) exercise
// the hull's face-extension path and come back as cleanly fanned polygons.

func cloudHull(points []mgl32.Vec3) (*VertexList, error) {
	cloud, err := NewVertexList(3, PrimitivePoint)
	if err != nil {
		return nil, err
	}
	for _, p := range points {
		if _, err := cloud.AddVec3(p); err != nil {
			return nil, err
		}
	}
	return ConvexHull(cloud)
}

// Cube returns a box with half-extents (hx, hy, hz) centered at the origin.
func Cube(hx, hy, hz float32) (*VertexList, error) {
	var points []mgl32.Vec3
	for _, sx := range []float32{-1, 1} {
		for _, sy := range []float32{-1, 1} {
			for _, sz := range []float32{-1, 1} {
				points = append(points, mgl32.Vec3{sx * hx, sy * hy, sz * hz})
			}
		}
	}
	return cloudHull(points)
}

// Cylinder returns a faceted cylinder of radius r and height h along the z
// axis, centered at the origin, with pointsPerRev vertices per cap ring.
func Cylinder(r, h float32, pointsPerRev int) (*VertexList, error) {
	if pointsPerRev < 3 {
		return nil, fmt.Errorf("%w: %d points per revolution", ErrTooFewPoints, pointsPerRev)
	}
	var points []mgl32.Vec3
	for i := 0; i < pointsPerRev; i++ {
		a := 2 * math32.Pi * float32(i) / float32(pointsPerRev)
		x, y := r*math32.Cos(a), r*math32.Sin(a)
		points = append(points,
			mgl32.Vec3{x, y, -h / 2},
			mgl32.Vec3{x, y, h / 2})
	}
	return cloudHull(points)
}

// UVSphere returns a faceted sphere of radius r from a latitude/longitude
// lattice: segs meridians (at least 3) and rings latitude bands (at least
// 2).
func UVSphere(r float32, segs, rings int) (*VertexList, error) {
	if segs < 3 || rings < 2 {
		return nil, fmt.Errorf("%w: %d segs, %d rings", ErrTooFewPoints, segs, rings)
	}
	points := []mgl32.Vec3{{0, 0, r}, {0, 0, -r}}
	for i := 1; i < rings; i++ {
		theta := math32.Pi * float32(i) / float32(rings)
		z := r * math32.Cos(theta)
		rr := r * math32.Sin(theta)
		for j := 0; j < segs; j++ {
			phi := 2 * math32.Pi * float32(j) / float32(segs)
			points = append(points, mgl32.Vec3{rr * math32.Cos(phi), rr * math32.Sin(phi), z})
		}
	}
	return cloudHull(points)
}

// IcoSphere returns a geodesic sphere of radius r: an icosahedron whose
// faces are subdivided subdiv times, every vertex pushed onto the sphere.
// The triangle count is 20·4^subdiv.
func IcoSphere(r float32, subdiv int) (*VertexList, error) {
	if subdiv < 0 {
		return nil, fmt.Errorf("%w: negative subdivision", ErrTooFewPoints)
	}
	phi := (1 + math32.Sqrt(5)) / 2
	raw := []mgl32.Vec3{
		{-1, phi, 0}, {1, phi, 0}, {-1, -phi, 0}, {1, -phi, 0},
		{0, -1, phi}, {0, 1, phi}, {0, -1, -phi}, {0, 1, -phi},
		{phi, 0, -1}, {phi, 0, 1}, {-phi, 0, -1}, {-phi, 0, 1},
	}
	verts := make([]mgl32.Vec3, len(raw))
	for i, v := range raw {
		verts[i] = v.Normalize().Mul(r)
	}
	faces := [][3]int{
		{0, 11, 5}, {0, 5, 1}, {0, 1, 7}, {0, 7, 10}, {0, 10, 11},
		{1, 5, 9}, {5, 11, 4}, {11, 10, 2}, {10, 7, 6}, {7, 1, 8},
		{3, 9, 4}, {3, 4, 2}, {3, 2, 6}, {3, 6, 8}, {3, 8, 9},
		{4, 9, 5}, {2, 4, 11}, {6, 2, 10}, {8, 6, 7}, {9, 8, 1},
	}

	var points []mgl32.Vec3
	var subdivide func(a, b, c mgl32.Vec3, depth int)
	subdivide = func(a, b, c mgl32.Vec3, depth int) {
		if depth == 0 {
			points = append(points, a, b, c)
			return
		}
		// Midpoints are computed from the same operand values on both
		// sides of a shared edge, so they de-duplicate bit-exactly.
		ab := a.Add(b).Normalize().Mul(r)
		bc := b.Add(c).Normalize().Mul(r)
		ca := c.Add(a).Normalize().Mul(r)
		subdivide(a, ab, ca, depth-1)
		subdivide(ab, b, bc, depth-1)
		subdivide(ca, bc, c, depth-1)
		subdivide(ab, bc, ca, depth-1)
	}
	for _, f := range faces {
		subdivide(verts[f[0]], verts[f[1]], verts[f[2]], subdiv)
	}
	return cloudHull(points)
}
