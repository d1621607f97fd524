package polyhedra

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requirePositiveTriangles(t *testing.T, tris *VertexList) {
	t.Helper()
	for i := 0; i < tris.TriangleCount(); i++ {
		a, b, c := tris.Triangle(i)
		pa, pb, pc := tris.Vec2(int(a)), tris.Vec2(int(b)), tris.Vec2(int(c))
		e1 := pb.Sub(pa)
		e2 := pc.Sub(pa)
		cr := e1[0]*e2[1] - e1[1]*e2[0]
		require.Positive(t, cr, "triangle %d has non-positive orientation", i)
	}
}

func TestTriangulate2DSquare(t *testing.T) {
	lines := newLineList(t)
	segmentLoop(t, lines, []mgl32.Vec2{{0, 0}, {1, 0}, {1, 1}, {0, 1}})

	tris, err := Triangulate2D(lines)
	require.NoError(t, err)

	assert.Equal(t, 2, tris.TriangleCount())
	assert.InDelta(t, 1, totalArea2D(tris), 1e-6)
	requirePositiveTriangles(t, tris)
}

func TestTriangulate2DSquareWithHole(t *testing.T) {
	lines := newLineList(t)
	segmentLoop(t, lines, []mgl32.Vec2{{0, 0}, {1, 0}, {1, 1}, {0, 1}})
	segmentLoop(t, lines, []mgl32.Vec2{{0.25, 0.25}, {0.75, 0.25}, {0.75, 0.75}, {0.25, 0.75}})

	tris, err := Triangulate2D(lines)
	require.NoError(t, err)

	assert.InDelta(t, 0.75, totalArea2D(tris), 1e-6)
	requirePositiveTriangles(t, tris)
}

func TestTriangulate2DShapes(t *testing.T) {
	tests := []struct {
		name string
		pts  []mgl32.Vec2
		area float64
	}{
		{"Diamond", []mgl32.Vec2{{1, 0}, {2, 1}, {1, 2}, {0, 1}}, 2},
		{"Triangle", []mgl32.Vec2{{0, 0}, {3, 0}, {0, 3}}, 4.5},
		{"Pentagon", []mgl32.Vec2{{0, 0}, {2, 0}, {3, 1.5}, {1, 3}, {-1, 1.5}}, 7.5},
		{"LPolygon", []mgl32.Vec2{{0, 0}, {2, 0}, {2, 2}, {1, 2}, {1, 1}, {0, 1}}, 3},
		{"Concave", []mgl32.Vec2{{0, 0}, {4, 0}, {4, 3}, {2, 1}, {0, 3}}, 8},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			lines := newLineList(t)
			segmentLoop(t, lines, test.pts)
			tris, err := Triangulate2D(lines)
			require.NoError(t, err)
			assert.InDelta(t, test.area, totalArea2D(tris), 1e-5)
			requirePositiveTriangles(t, tris)
		})
	}
}

func TestTriangulate2DTwoSeparateSquares(t *testing.T) {
	lines := newLineList(t)
	segmentLoop(t, lines, []mgl32.Vec2{{0, 0}, {1, 0}, {1, 1}, {0, 1}})
	segmentLoop(t, lines, []mgl32.Vec2{{3, 0}, {4, 0}, {4, 1}, {3, 1}})

	tris, err := Triangulate2D(lines)
	require.NoError(t, err)
	assert.InDelta(t, 2, totalArea2D(tris), 1e-6)
}

func TestTriangulate2DNestedIsland(t *testing.T) {
	// Outer square, hole, island inside the hole.
	lines := newLineList(t)
	segmentLoop(t, lines, []mgl32.Vec2{{0, 0}, {8, 0}, {8, 8}, {0, 8}})
	segmentLoop(t, lines, []mgl32.Vec2{{2, 2}, {6, 2}, {6, 6}, {2, 6}})
	segmentLoop(t, lines, []mgl32.Vec2{{3, 3}, {5, 3}, {5, 5}, {3, 5}})

	tris, err := Triangulate2D(lines)
	require.NoError(t, err)
	assert.InDelta(t, 64-16+4, totalArea2D(tris), 1e-5)
	requirePositiveTriangles(t, tris)
}

func TestTriangulate2DDuplicateSegmentsCancel(t *testing.T) {
	lines := newLineList(t)
	segmentLoop(t, lines, []mgl32.Vec2{{0, 0}, {1, 0}, {1, 1}, {0, 1}})
	// A doubled segment must XOR away; adding it twice leaves the square.
	for i := 0; i < 2; i++ {
		_, err := lines.AddVec2(mgl32.Vec2{0, 0})
		require.NoError(t, err)
		_, err = lines.AddVec2(mgl32.Vec2{1, 1})
		require.NoError(t, err)
	}

	tris, err := Triangulate2D(lines)
	require.NoError(t, err)
	assert.InDelta(t, 1, totalArea2D(tris), 1e-6)
}

func TestTriangulate2DInputValidation(t *testing.T) {
	t.Run("WrongPrimitive", func(t *testing.T) {
		vl, err := NewVertexList(2, PrimitiveTriangle)
		require.NoError(t, err)
		_, err = Triangulate2D(vl)
		assert.ErrorIs(t, err, ErrBadPrimitive)
	})
	t.Run("WrongArity", func(t *testing.T) {
		vl, err := NewVertexList(3, PrimitiveLine)
		require.NoError(t, err)
		_, err = Triangulate2D(vl)
		assert.ErrorIs(t, err, ErrFloatsPerVert)
	})
	t.Run("OpenCurve", func(t *testing.T) {
		lines := newLineList(t)
		_, err := lines.AddVec2(mgl32.Vec2{0, 0})
		require.NoError(t, err)
		_, err = lines.AddVec2(mgl32.Vec2{1, 1})
		require.NoError(t, err)
		_, err = Triangulate2D(lines)
		assert.ErrorIs(t, err, ErrTriangulation)
	})
}
