package polyhedra

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cubeVef(t *testing.T) *Vef {
	t.Helper()
	vef, err := NewVef(mustCube(t, 1, 1, 1))
	require.NoError(t, err)
	return vef
}

func TestVefConstruct(t *testing.T) {
	vef := cubeVef(t)

	assert.Equal(t, 8, len(vef.Verts))
	assert.Equal(t, 18, len(vef.Edges), "12 quad edges plus 6 face diagonals")
	assert.Equal(t, 12, len(vef.Faces))
	assert.True(t, vef.Closed())
	assert.Equal(t, 8-18+12, 2)

	min, max := vef.Bounds()
	assert.Equal(t, mgl32.Vec3{-1, -1, -1}, min)
	assert.Equal(t, mgl32.Vec3{1, 1, 1}, max)
}

func TestVefSharesVerticesByCoordinate(t *testing.T) {
	vl, err := NewVertexList(3, PrimitiveTriangle)
	require.NoError(t, err)
	tris := [][3]mgl32.Vec3{
		{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
		{{1, 0, 0}, {1, 1, 0}, {0, 1, 0}},
	}
	for _, tri := range tris {
		for _, p := range tri {
			_, err := vl.AddVec3(p)
			require.NoError(t, err)
		}
	}
	vef, err := NewVef(vl)
	require.NoError(t, err)

	assert.Equal(t, 4, len(vef.Verts))
	assert.Equal(t, 5, len(vef.Edges))
	// The shared edge carries both faces.
	shared := 0
	for _, e := range vef.Edges {
		if e.F[1] >= 0 {
			shared++
		}
	}
	assert.Equal(t, 1, shared)
	assert.False(t, vef.Closed())
}

func TestVefEdgeInfo(t *testing.T) {
	vef := cubeVef(t)

	for e := range vef.Edges {
		_, x, ang, err := vef.EdgeInfo(e)
		require.NoError(t, err)
		assert.InDelta(t, 1, x.Len(), 1e-5)
		// Measured right-handed about z from F[0] to F[1], a convex solid
		// has every dihedral at or above the flat angle: 3pi/2 across the
		// cube's real edges, pi across face diagonals.
		if ang < math32.Pi-1e-4 {
			t.Fatalf("edge %d: reflex dihedral %g on a convex solid", e, ang)
		}
		assert.True(t, ang < 3*math32.Pi/2+1e-4, "dihedral %g above 3pi/2", ang)
	}
}

func TestVefFaceBasis(t *testing.T) {
	vef := cubeVef(t)
	for f := range vef.Faces {
		x, y := vef.FaceBasis(f)
		n := vef.Faces[f].N
		assert.InDelta(t, 0, x.Dot(y), 1e-6)
		assert.InDelta(t, 0, x.Dot(n), 1e-6)
		assert.InDelta(t, 1, x.Len(), 1e-5)

		v1x, v2 := vef.FaceCoord2D(f)
		assert.True(t, v1x > 0)
		assert.True(t, v2[1] > 0)
	}
}

func TestConvexInteriorDist(t *testing.T) {
	vef := cubeVef(t)
	start := 0

	tests := []struct {
		name string
		pt   mgl32.Vec3
		want float32
	}{
		{"Center", mgl32.Vec3{0, 0, 0}, 1},
		{"NearFace", mgl32.Vec3{0.9, 0, 0}, 0.1},
		{"Outside", mgl32.Vec3{2, 0, 0}, -1},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			d := vef.ConvexInteriorDist(test.pt, &start)
			assert.InDelta(t, test.want, d, 1e-4)
		})
	}
}

func TestConvexRayDist(t *testing.T) {
	vef := cubeVef(t)
	start := 0

	tests := []struct {
		name string
		pt   mgl32.Vec3
		dir  mgl32.Vec3
		want float32
	}{
		{"AxisX", mgl32.Vec3{0, 0, 0}, mgl32.Vec3{1, 0, 0}, 1},
		{"AxisZ", mgl32.Vec3{0, 0, 0.5}, mgl32.Vec3{0, 0, 1}, 0.5},
		{"Diagonal", mgl32.Vec3{0, 0, 0}, mgl32.Vec3{1, 1, 1}.Normalize(), math32.Sqrt(3)},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			d, ok := vef.ConvexRayDist(test.pt, test.dir, &start)
			require.True(t, ok)
			assert.InDelta(t, test.want, d, 1e-3)
		})
	}
}

func TestEdge2D(t *testing.T) {
	// Triangle (0,0), (2,0), (1,1).
	v1x := float32(2)
	v2 := mgl32.Vec2{1, 1}

	tests := []struct {
		name string
		p    mgl32.Vec2
		want int
	}{
		{"Inside", mgl32.Vec2{1, 0.3}, 3},
		{"BelowBase", mgl32.Vec2{1, -1}, 0},
		{"RightOfSlope", mgl32.Vec2{2.5, 1}, 1},
		{"LeftOfSlope", mgl32.Vec2{-0.5, 1}, 2},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.want, edge2D(test.p, v1x, v2, 1e-5))
		})
	}
}
