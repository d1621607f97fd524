package meshio

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sksmith/polyhedra/polyhedra"
)

// objFloats is the vertex layout used for OBJ data: position, texture
// coordinate, normal.
const objFloats = 8

// ReadOBJ parses a Wavefront OBJ stream into one mesh per object. Vertex
// positions are multiplied by scale; texture v coordinates are flipped to
// 1-v. Only triangular faces are accepted. Position, texture, and normal
// indices are 1-based and global across objects.
func ReadOBJ(r io.Reader, scale float32) ([]*polyhedra.VertexList, error) {
	var positions, normals [][3]float32
	var uvs [][2]float32
	var meshes []*polyhedra.VertexList
	var cur *polyhedra.VertexList

	parseFloats := func(parts []string, n int, lineNum int) ([]float32, error) {
		if len(parts) < n+1 {
			return nil, fmt.Errorf("line %d: %w: %s needs %d values", lineNum, ErrMalformed, parts[0], n)
		}
		out := make([]float32, n)
		for i := 0; i < n; i++ {
			f, err := strconv.ParseFloat(parts[i+1], 32)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w: %q", lineNum, ErrMalformed, parts[i+1])
			}
			out[i] = float32(f)
		}
		return out, nil
	}

	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.Fields(line)

		switch parts[0] {
		case "v":
			f, err := parseFloats(parts, 3, lineNum)
			if err != nil {
				return nil, err
			}
			positions = append(positions, [3]float32{f[0] * scale, f[1] * scale, f[2] * scale})
		case "vt":
			f, err := parseFloats(parts, 2, lineNum)
			if err != nil {
				return nil, err
			}
			uvs = append(uvs, [2]float32{f[0], 1 - f[1]})
		case "vn":
			f, err := parseFloats(parts, 3, lineNum)
			if err != nil {
				return nil, err
			}
			normals = append(normals, [3]float32{f[0], f[1], f[2]})
		case "o":
			cur = nil
		case "f":
			if len(parts) != 4 {
				return nil, fmt.Errorf("line %d: %w: face with %d vertices", lineNum, ErrNotTriangles, len(parts)-1)
			}
			if cur == nil {
				var err error
				if cur, err = polyhedra.NewVertexList(objFloats, polyhedra.PrimitiveTriangle); err != nil {
					return nil, err
				}
				meshes = append(meshes, cur)
			}
			for _, spec := range parts[1:] {
				rec, err := objVertex(spec, positions, uvs, normals, lineNum)
				if err != nil {
					return nil, err
				}
				if _, err := cur.Add(rec); err != nil {
					return nil, err
				}
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	return meshes, nil
}

// objVertex resolves one i/j/k face corner into a flat vertex record.
func objVertex(spec string, positions [][3]float32, uvs [][2]float32, normals [][3]float32, lineNum int) ([]float32, error) {
	fields := strings.Split(spec, "/")
	if len(fields) > 3 {
		return nil, fmt.Errorf("line %d: %w: %q", lineNum, ErrMalformed, spec)
	}
	rec := make([]float32, objFloats)

	idx := func(s string, n int) (int, error) {
		i, err := strconv.Atoi(s)
		if err != nil || i < 1 || i > n {
			return 0, fmt.Errorf("line %d: %w: index %q", lineNum, ErrMalformed, s)
		}
		return i - 1, nil
	}

	i, err := idx(fields[0], len(positions))
	if err != nil {
		return nil, err
	}
	copy(rec[0:3], positions[i][:])

	if len(fields) > 1 && fields[1] != "" {
		j, err := idx(fields[1], len(uvs))
		if err != nil {
			return nil, err
		}
		copy(rec[3:5], uvs[j][:])
	}
	if len(fields) > 2 && fields[2] != "" {
		k, err := idx(fields[2], len(normals))
		if err != nil {
			return nil, err
		}
		copy(rec[5:8], normals[k][:])
	}
	return rec, nil
}

// WriteOBJ emits every mesh as its own object, with 1-based indices running
// globally across the file. Positions are multiplied by scale; texture and
// normal data are written when the vertex layout carries them.
func WriteOBJ(w io.Writer, list []*polyhedra.VertexList, scale float32) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "# polyhedra")

	offset := 1
	for mi, vl := range list {
		fmt.Fprintf(bw, "o polyhedra.%03d\n", mi)
		fpv := vl.FloatsPerVert()
		hasUV := fpv >= 5
		hasN := fpv >= 8

		for i := 0; i < vl.VertCount(); i++ {
			v := vl.Vertex(i)
			fmt.Fprintf(bw, "v %g %g %g\n", v[0]*scale, v[1]*scale, v[2]*scale)
		}
		if hasUV {
			for i := 0; i < vl.VertCount(); i++ {
				v := vl.Vertex(i)
				fmt.Fprintf(bw, "vt %g %g\n", v[3], 1-v[4])
			}
		}
		if hasN {
			for i := 0; i < vl.VertCount(); i++ {
				v := vl.Vertex(i)
				fmt.Fprintf(bw, "vn %g %g %g\n", v[5], v[6], v[7])
			}
		}
		for t := 0; t < vl.TriangleCount(); t++ {
			a, b, c := vl.Triangle(t)
			fmt.Fprint(bw, "f")
			for _, ix := range []uint32{a, b, c} {
				gi := int(ix) + offset
				switch {
				case hasN:
					fmt.Fprintf(bw, " %d/%d/%d", gi, gi, gi)
				case hasUV:
					fmt.Fprintf(bw, " %d/%d", gi, gi)
				default:
					fmt.Fprintf(bw, " %d", gi)
				}
			}
			fmt.Fprintln(bw)
		}
		offset += vl.VertCount()
	}
	return bw.Flush()
}
