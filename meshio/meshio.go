// Package meshio reads and writes mesh files for the polyhedra library.
// Formats are selected by file extension: Wavefront OBJ (read/write),
// binary STL (read/write), and SVG (write only).
package meshio

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sksmith/polyhedra/polyhedra"
)

// Static errors for err113 compliance
var (
	ErrUnsupported  = errors.New("unsupported format")
	ErrUnknownExt   = errors.New("unknown file extension")
	ErrSingleMesh   = errors.New("format requires exactly one mesh")
	ErrMalformed    = errors.New("malformed input")
	ErrNotTriangles = errors.New("only triangular faces are supported")
)

// Read loads the meshes in the named file, multiplying every position by
// scale. SVG input is not supported.
func Read(path string, scale float32) ([]*polyhedra.VertexList, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".obj":
		return ReadOBJ(f, scale)
	case ".stl":
		vl, err := ReadSTL(f, scale)
		if err != nil {
			return nil, err
		}
		return []*polyhedra.VertexList{vl}, nil
	case ".svg":
		return nil, fmt.Errorf("%w: SVG read", ErrUnsupported)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownExt, filepath.Ext(path))
	}
}

// Write stores the meshes in the named file, multiplying every position by
// scale. STL output requires exactly one mesh.
func Write(path string, list []*polyhedra.VertexList, scale float32) error {
	var write func(f *os.File) error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".obj":
		write = func(f *os.File) error { return WriteOBJ(f, list, scale) }
	case ".stl":
		if len(list) != 1 {
			return fmt.Errorf("%w: got %d", ErrSingleMesh, len(list))
		}
		write = func(f *os.File) error { return WriteSTL(f, list[0], scale) }
	case ".svg":
		write = func(f *os.File) error { return WriteSVG(f, list, scale) }
	default:
		return fmt.Errorf("%w: %s", ErrUnknownExt, filepath.Ext(path))
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}
