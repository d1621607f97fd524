package polyhedra

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// capArea sums the area of triangles lying in the plane n·x = d.
func capArea(vl *VertexList, n mgl32.Vec3, d float32) float64 {
	total := 0.0
	for t := 0; t < vl.TriangleCount(); t++ {
		i0, i1, i2 := vl.Triangle(t)
		a, b, c := vl.Vec3(int(i0)), vl.Vec3(int(i1)), vl.Vec3(int(i2))
		onPlane := true
		for _, p := range []mgl32.Vec3{a, b, c} {
			if math32.Abs(p.Dot(n)-d) > 1e-4 {
				onPlane = false
				break
			}
		}
		if onPlane {
			total += float64(b.Sub(a).Cross(c.Sub(a)).Len()) / 2
		}
	}
	return total
}

func TestPlaneCutCube(t *testing.T) {
	cube := mustCube(t, 1, 1, 1)
	n := mgl32.Vec3{0, 0, 1}

	pieces, err := PlaneCut(cube, n, 0)
	require.NoError(t, err)
	require.Len(t, pieces, 2)

	for i, p := range pieces {
		require.NoError(t, ValidateManifold(p), "piece %d", i)
		assert.InDelta(t, 4, volumeOf(t, p), 1e-4, "piece %d volume", i)
		assert.InDelta(t, 4, capArea(p, n, 0), 1e-3, "piece %d cap", i)
	}

	// Pieces are separated by the plane.
	for i, p := range pieces {
		for v := 0; v < p.VertCount(); v++ {
			z := p.Vec3(v)[2]
			if i == 0 {
				assert.LessOrEqual(t, float64(z), 1e-5)
			} else {
				assert.GreaterOrEqual(t, float64(z), -1e-5)
			}
		}
	}
}

func TestPlaneCutVolumeConservation(t *testing.T) {
	tests := []struct {
		name string
		n    mgl32.Vec3
		d    float32
	}{
		{"AxisZ", mgl32.Vec3{0, 0, 1}, 0.25},
		{"AxisX", mgl32.Vec3{1, 0, 0}, -0.5},
		{"Oblique", mgl32.Vec3{1, 1, 1}.Normalize(), 0.1},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cube := mustCube(t, 1, 1, 1)
			pieces, err := PlaneCut(cube, test.n, test.d)
			require.NoError(t, err)
			require.Len(t, pieces, 2)
			total := 0.0
			for _, p := range pieces {
				require.NoError(t, ValidateManifold(p))
				total += volumeOf(t, p)
			}
			assert.InDelta(t, 8, total, 1e-3)
		})
	}
}

func TestPlaneCutMiss(t *testing.T) {
	cube := mustCube(t, 1, 1, 1)
	pieces, err := PlaneCut(cube, mgl32.Vec3{0, 0, 1}, 5)
	require.NoError(t, err)
	require.Len(t, pieces, 1)
	assert.InDelta(t, 8, volumeOf(t, pieces[0]), 1e-4)
}

func TestPlaneCutThroughVertices(t *testing.T) {
	// An octahedron cut through its equator: every equatorial vertex lies
	// exactly on the plane.
	points := []mgl32.Vec3{
		{1, 0, 0}, {-1, 0, 0}, {0, 1, 0}, {0, -1, 0}, {0, 0, 1}, {0, 0, -1},
	}
	octa, err := ConvexHull(mustCloud(t, points))
	require.NoError(t, err)

	pieces, err := PlaneCut(octa, mgl32.Vec3{0, 0, 1}, 0)
	require.NoError(t, err)
	require.Len(t, pieces, 2)

	octaVol := volumeOf(t, octa)
	total := 0.0
	for _, p := range pieces {
		require.NoError(t, ValidateManifold(p))
		total += volumeOf(t, p)
	}
	assert.InDelta(t, octaVol, total, 1e-4)
}

func TestPlaneCutSphereComponents(t *testing.T) {
	sphere, err := IcoSphere(1, 2)
	require.NoError(t, err)

	pieces, err := PlaneCut(sphere, mgl32.Vec3{0, 0, 1}, 0)
	require.NoError(t, err)
	require.Len(t, pieces, 2)

	half := 2.0 / 3 * 3.14159265
	for _, p := range pieces {
		require.NoError(t, ValidateManifold(p))
		v := volumeOf(t, p)
		assert.Greater(t, v, half*0.85)
		assert.Less(t, v, half*1.01)
	}
}

func TestPlaneCutInputValidation(t *testing.T) {
	vl, err := NewVertexList(2, PrimitiveTriangle)
	require.NoError(t, err)
	_, err = PlaneCut(vl, mgl32.Vec3{0, 0, 1}, 0)
	assert.ErrorIs(t, err, ErrFloatsPerVert)

	cube := mustCube(t, 1, 1, 1)
	_, err = PlaneCut(cube, mgl32.Vec3{}, 0)
	assert.Error(t, err)
}
