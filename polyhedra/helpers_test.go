package polyhedra

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/require"
)

func mustCloud(t *testing.T, points []mgl32.Vec3) *VertexList {
	t.Helper()
	vl, err := NewVertexList(3, PrimitivePoint)
	require.NoError(t, err)
	for _, p := range points {
		_, err := vl.AddVec3(p)
		require.NoError(t, err)
	}
	return vl
}

func mustCube(t *testing.T, hx, hy, hz float32) *VertexList {
	t.Helper()
	vl, err := Cube(hx, hy, hz)
	require.NoError(t, err)
	return vl
}

func volumeOf(t *testing.T, vl *VertexList) float64 {
	t.Helper()
	mp, err := CalculateMassProperties(vl)
	require.NoError(t, err)
	return float64(mp.Volume)
}

// totalArea2D sums the oriented areas of a 2-float triangle list.
func totalArea2D(vl *VertexList) float64 {
	total := 0.0
	for t := 0; t < vl.TriangleCount(); t++ {
		a, b, c := vl.Triangle(t)
		pa, pb, pc := vl.Vec2(int(a)), vl.Vec2(int(b)), vl.Vec2(int(c))
		e1 := pb.Sub(pa)
		e2 := pc.Sub(pa)
		total += float64(e1[0]*e2[1]-e1[1]*e2[0]) / 2
	}
	return total
}

// segmentLoop adds the closed loop through the given points to a line list.
func segmentLoop(t *testing.T, vl *VertexList, pts []mgl32.Vec2) {
	t.Helper()
	for i := range pts {
		_, err := vl.AddVec2(pts[i])
		require.NoError(t, err)
		_, err = vl.AddVec2(pts[(i+1)%len(pts)])
		require.NoError(t, err)
	}
}

func newLineList(t *testing.T) *VertexList {
	t.Helper()
	vl, err := NewVertexList(2, PrimitiveLine)
	require.NoError(t, err)
	return vl
}

// lShape returns a closed L-shaped prism: the 2D L-polygon
// (0,0)-(2,0)-(2,2)-(1,2)-(1,1)-(0,1) extruded from z=0 to z=height.
func lShape(t *testing.T, height float32) *VertexList {
	t.Helper()
	outline := []mgl32.Vec2{{0, 0}, {2, 0}, {2, 2}, {1, 2}, {1, 1}, {0, 1}}

	lines := newLineList(t)
	segmentLoop(t, lines, outline)
	cap2d, err := Triangulate2D(lines)
	require.NoError(t, err)

	vl, err := NewVertexList(3, PrimitiveTriangle)
	require.NoError(t, err)
	add := func(a, b, c mgl32.Vec3) {
		for _, p := range []mgl32.Vec3{a, b, c} {
			_, err := vl.AddVec3(p)
			require.NoError(t, err)
		}
	}
	at := func(p mgl32.Vec2, z float32) mgl32.Vec3 {
		return mgl32.Vec3{p[0], p[1], z}
	}

	for i := 0; i < cap2d.TriangleCount(); i++ {
		a, b, c := cap2d.Triangle(i)
		pa, pb, pc := cap2d.Vec2(int(a)), cap2d.Vec2(int(b)), cap2d.Vec2(int(c))
		add(at(pa, height), at(pb, height), at(pc, height)) // top faces +z
		add(at(pa, 0), at(pc, 0), at(pb, 0))                // bottom faces -z
	}
	for i := range outline {
		a, b := outline[i], outline[(i+1)%len(outline)]
		add(at(a, 0), at(b, 0), at(b, height))
		add(at(a, 0), at(b, height), at(a, height))
	}
	require.NoError(t, ValidateManifold(vl))
	return vl
}
