package meshio

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sksmith/polyhedra/polyhedra"
)

func TestSTLRoundTripCube(t *testing.T) {
	cube, err := polyhedra.Cube(1, 1, 1)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteSTL(&buf, cube, 1))
	assert.Equal(t, 80+4+50*12, buf.Len())

	got, err := ReadSTL(&buf, 1)
	require.NoError(t, err)
	assert.Equal(t, 12, got.TriangleCount())
	assert.Equal(t, 8, got.VertCount())

	mp, err := polyhedra.CalculateMassProperties(got)
	require.NoError(t, err)
	assert.InDelta(t, 8, float64(mp.Volume), 1e-4)
}

func TestSTLReadCorrectsWinding(t *testing.T) {
	cube, err := polyhedra.Cube(1, 1, 1)
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, WriteSTL(&buf, cube, 1))

	// Swap two vertices of the first face record but keep its normal:
	// the reader must restore the winding from the normal.
	data := buf.Bytes()
	faceStart := 84 + 12 // skip header, count, first normal
	for i := 0; i < 12; i++ {
		data[faceStart+i], data[faceStart+12+i] = data[faceStart+12+i], data[faceStart+i]
	}

	got, err := ReadSTL(bytes.NewReader(data), 1)
	require.NoError(t, err)
	mp, err := polyhedra.CalculateMassProperties(got)
	require.NoError(t, err)
	assert.InDelta(t, 8, float64(mp.Volume), 1e-4)
}

func TestSTLReadScale(t *testing.T) {
	cube, err := polyhedra.Cube(1, 1, 1)
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, WriteSTL(&buf, cube, 1))

	got, err := ReadSTL(&buf, 3)
	require.NoError(t, err)
	mp, err := polyhedra.CalculateMassProperties(got)
	require.NoError(t, err)
	assert.InDelta(t, 8*27, float64(mp.Volume), 1e-2)
}

func TestSTLRejectsASCII(t *testing.T) {
	ascii := `solid cube
facet normal 0 0 1
  outer loop
    vertex 0 0 0
    vertex 1 0 0
    vertex 0 1 0
  endloop
endfacet
endsolid cube
`
	_, err := ReadSTL(strings.NewReader(ascii), 1)
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestSTLTruncated(t *testing.T) {
	_, err := ReadSTL(strings.NewReader("too short"), 1)
	assert.Error(t, err)
}
