package meshio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/sksmith/polyhedra/polyhedra"
)

const stlHeaderSize = 80

// stlFace is the 50-byte on-disk face record.
type stlFace struct {
	Normal [3]float32
	Verts  [9]float32
	Attr   uint16
}

// ReadSTL parses a binary STL stream. ASCII STL is rejected. Triangle
// winding is corrected to match each stored normal, and positions are
// multiplied by scale.
func ReadSTL(r io.Reader, scale float32) (*polyhedra.VertexList, error) {
	var header [stlHeaderSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, fmt.Errorf("stl header: %w", err)
	}

	var count uint32
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		if bytes.HasPrefix(header[:], []byte("solid")) {
			return nil, fmt.Errorf("%w: ASCII STL", ErrUnsupported)
		}
		return nil, fmt.Errorf("stl face count: %w", err)
	}

	vl, err := polyhedra.NewVertexList(3, polyhedra.PrimitiveTriangle)
	if err != nil {
		return nil, err
	}
	for i := uint32(0); i < count; i++ {
		var face stlFace
		if err := binary.Read(r, binary.LittleEndian, &face); err != nil {
			if bytes.HasPrefix(header[:], []byte("solid")) {
				return nil, fmt.Errorf("%w: ASCII STL", ErrUnsupported)
			}
			return nil, fmt.Errorf("stl face %d: %w", i, err)
		}
		var v [3]mgl32.Vec3
		for j := 0; j < 3; j++ {
			v[j] = mgl32.Vec3{
				face.Verts[3*j] * scale,
				face.Verts[3*j+1] * scale,
				face.Verts[3*j+2] * scale,
			}
		}
		// Stored winding is unreliable; trust the stored normal.
		n := mgl32.Vec3{face.Normal[0], face.Normal[1], face.Normal[2]}
		if v[1].Sub(v[0]).Cross(v[2].Sub(v[0])).Dot(n) < 0 {
			v[1], v[2] = v[2], v[1]
		}
		for j := 0; j < 3; j++ {
			if _, err := vl.AddVec3(v[j]); err != nil {
				return nil, err
			}
		}
	}
	return vl, nil
}

// WriteSTL emits a binary STL file with computed face normals. Positions
// are multiplied by scale.
func WriteSTL(w io.Writer, vl *polyhedra.VertexList, scale float32) error {
	if vl.Primitive() != polyhedra.PrimitiveTriangle || vl.FloatsPerVert() < 3 {
		return fmt.Errorf("%w: STL needs a 3D triangle mesh", ErrMalformed)
	}
	var header [stlHeaderSize]byte
	copy(header[:], "polyhedra binary STL")
	if _, err := w.Write(header[:]); err != nil {
		return err
	}
	count := uint32(vl.TriangleCount())
	if err := binary.Write(w, binary.LittleEndian, count); err != nil {
		return err
	}
	for t := 0; t < vl.TriangleCount(); t++ {
		i0, i1, i2 := vl.Triangle(t)
		a := vl.Vec3(int(i0)).Mul(scale)
		b := vl.Vec3(int(i1)).Mul(scale)
		c := vl.Vec3(int(i2)).Mul(scale)
		n := b.Sub(a).Cross(c.Sub(a))
		if l := n.Len(); l > 0 {
			n = n.Mul(1 / l)
		}
		face := stlFace{
			Normal: [3]float32{n[0], n[1], n[2]},
			Verts: [9]float32{
				a[0], a[1], a[2],
				b[0], b[1], b[2],
				c[0], c[1], c[2],
			},
		}
		if err := binary.Write(w, binary.LittleEndian, &face); err != nil {
			return err
		}
	}
	return nil
}
