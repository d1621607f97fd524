package polyhedra

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertVec3Near(t *testing.T, want, got mgl32.Vec3, tol float64) {
	t.Helper()
	assert.InDelta(t, float64(want[0]), float64(got[0]), tol)
	assert.InDelta(t, float64(want[1]), float64(got[1]), tol)
	assert.InDelta(t, float64(want[2]), float64(got[2]), tol)
}

func TestTransformIdentity(t *testing.T) {
	id := NewTransform()
	p := mgl32.Vec3{1, 2, 3}
	assertVec3Near(t, p, id.Apply(p, 0), 1e-6)
}

func TestTransformTranslate(t *testing.T) {
	tr := TranslateTransform(mgl32.Vec3{1, -2, 3})
	p := mgl32.Vec3{1, 1, 1}
	assertVec3Near(t, mgl32.Vec3{2, -1, 4}, tr.Apply(p, 0), 1e-6)
	assertVec3Near(t, p, tr.Apply(p, TransformNoOffset), 1e-6)
	assertVec3Near(t, mgl32.Vec3{0, 3, -2}, tr.Apply(p, TransformInvert), 1e-6)
}

func TestTransformRotate(t *testing.T) {
	rot := RotateTransform(math32.Pi/2, mgl32.Vec3{0, 0, 1})
	assertVec3Near(t, mgl32.Vec3{0, 1, 0}, rot.Apply(mgl32.Vec3{1, 0, 0}, 0), 1e-5)
}

func TestTransformRotateInvertRecovers(t *testing.T) {
	tests := []struct {
		name  string
		angle float32
		axis  mgl32.Vec3
	}{
		{"Z90", math32.Pi / 2, mgl32.Vec3{0, 0, 1}},
		{"Oblique", 1.1, mgl32.Vec3{1, 2, 3}},
		{"NearFull", 2 * math32.Pi * 0.99, mgl32.Vec3{0, 1, 0}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			rot := RotateTransform(test.angle, test.axis)
			p := mgl32.Vec3{0.3, -1.7, 2.2}
			back := rot.Apply(rot.Apply(p, 0), TransformInvert)
			assertVec3Near(t, p, back, 1e-4)
		})
	}
}

func TestTransformCombine(t *testing.T) {
	rot := RotateTransform(math32.Pi/2, mgl32.Vec3{0, 0, 1})
	tr := TranslateTransform(mgl32.Vec3{1, 0, 0})

	// Combine applies the second argument first.
	both := tr.Combine(rot)
	got := both.Apply(mgl32.Vec3{1, 0, 0}, 0)
	assertVec3Near(t, mgl32.Vec3{1, 1, 0}, got, 1e-5)

	// Composition against its inverse is the identity.
	inv := both.Invert()
	p := mgl32.Vec3{4, 5, 6}
	assertVec3Near(t, p, inv.Apply(both.Apply(p, 0), 0), 1e-4)
}

func TestTransformQuat(t *testing.T) {
	q := mgl32.QuatRotate(math32.Pi, mgl32.Vec3{0, 1, 0})
	tr := QuatTransform(q)
	assertVec3Near(t, mgl32.Vec3{-1, 0, 0}, tr.Apply(mgl32.Vec3{1, 0, 0}, 0), 1e-5)
}

func TestTransformApplyToList(t *testing.T) {
	cube := mustCube(t, 1, 1, 1)
	moved, err := TranslateTransform(mgl32.Vec3{10, 0, 0}).ApplyToList(cube, 0)
	require.NoError(t, err)

	assert.Equal(t, cube.TriangleCount(), moved.TriangleCount())
	assert.Equal(t, cube.VertCount(), moved.VertCount())
	mp, err := CalculateMassProperties(moved)
	require.NoError(t, err)
	assert.InDelta(t, 10, float64(mp.COM[0]), 1e-4)
}

func TestScaleList(t *testing.T) {
	cube := mustCube(t, 1, 1, 1)
	scaled, err := ScaleList(cube, 2)
	require.NoError(t, err)
	assert.InDelta(t, 64, volumeOf(t, scaled), 1e-3)
}
