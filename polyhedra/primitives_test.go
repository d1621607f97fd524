package polyhedra

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCube(t *testing.T) {
	cube := mustCube(t, 1, 1, 1)
	assert.Equal(t, 8, cube.VertCount())
	assert.Equal(t, 12, cube.TriangleCount())
	require.NoError(t, ValidateComplete(cube))
}

func TestCylinder(t *testing.T) {
	cyl, err := Cylinder(1, 2, 16)
	require.NoError(t, err)
	require.NoError(t, ValidateManifold(cyl))

	assert.Equal(t, 32, cyl.VertCount())
	assert.Equal(t, 60, cyl.TriangleCount())

	// Faceted volume is below the true cylinder volume.
	vol := volumeOf(t, cyl)
	truth := float64(math32.Pi) * 2
	assert.Less(t, vol, truth)
	assert.Greater(t, vol, truth*0.95)

	_, err = Cylinder(1, 2, 2)
	assert.ErrorIs(t, err, ErrTooFewPoints)
}

func TestUVSphere(t *testing.T) {
	sphere, err := UVSphere(2, 16, 16)
	require.NoError(t, err)
	require.NoError(t, ValidateManifold(sphere))

	assert.Equal(t, 2+15*16, sphere.VertCount())
	assert.Equal(t, 480, sphere.TriangleCount())
	for i := 0; i < sphere.VertCount(); i++ {
		assert.InDelta(t, 2, sphere.Vec3(i).Len(), 1e-4)
	}

	_, err = UVSphere(1, 2, 2)
	assert.ErrorIs(t, err, ErrTooFewPoints)
	_, err = UVSphere(1, 3, 1)
	assert.ErrorIs(t, err, ErrTooFewPoints)
}

func TestIcoSphere(t *testing.T) {
	tests := []struct {
		name      string
		subdiv    int
		wantVerts int
		wantTris  int
	}{
		{"Base", 0, 12, 20},
		{"One", 1, 42, 80},
		{"Two", 2, 162, 320},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			sphere, err := IcoSphere(1, test.subdiv)
			require.NoError(t, err)
			require.NoError(t, ValidateComplete(sphere))
			assert.Equal(t, test.wantVerts, sphere.VertCount())
			assert.Equal(t, test.wantTris, sphere.TriangleCount())

			for i := 0; i < sphere.VertCount(); i++ {
				assert.InDelta(t, 1, sphere.Vec3(i).Len(), 1e-5)
			}
			// Outward normals: each triangle's normal leaves the
			// origin.
			for i := 0; i < sphere.TriangleCount(); i++ {
				a, b, c := sphere.Triangle(i)
				pa, pb, pc := sphere.Vec3(int(a)), sphere.Vec3(int(b)), sphere.Vec3(int(c))
				n := pb.Sub(pa).Cross(pc.Sub(pa))
				centroid := pa.Add(pb).Add(pc).Mul(1.0 / 3)
				assert.Positive(t, n.Dot(centroid))
			}
		})
	}
}
