package meshio

import (
	"io"

	svg "github.com/ajstarks/svgo"
	"github.com/chewxy/math32"

	"github.com/sksmith/polyhedra/polyhedra"
)

// svgResolution maps mesh units to SVG user units so float coordinates
// survive svgo's integer interface.
const svgResolution = 1000

// WriteSVG projects line and triangle lists onto the XY plane: segments
// become <line> elements, triangles filled <polygon> elements. The viewBox
// encloses every point. Positions are multiplied by scale.
func WriteSVG(w io.Writer, list []*polyhedra.VertexList, scale float32) error {
	minX, minY := math32.Inf(1), math32.Inf(1)
	maxX, maxY := math32.Inf(-1), math32.Inf(-1)
	for _, vl := range list {
		for i := 0; i < vl.VertCount(); i++ {
			v := vl.Vertex(i)
			minX = math32.Min(minX, v[0]*scale)
			maxX = math32.Max(maxX, v[0]*scale)
			minY = math32.Min(minY, v[1]*scale)
			maxY = math32.Max(maxY, v[1]*scale)
		}
	}
	if minX > maxX {
		minX, minY, maxX, maxY = 0, 0, 1, 1
	}

	px := func(x float32) int { return int(x * scale * svgResolution) }
	py := func(y float32) int { return int(-y * scale * svgResolution) }

	canvas := svg.New(w)
	margin := int(math32.Max(maxX-minX, maxY-minY) * svgResolution / 50)
	canvas.Startview(
		int((maxX-minX)*svgResolution)+2*margin,
		int((maxY-minY)*svgResolution)+2*margin,
		int(minX*svgResolution)-margin,
		int(-maxY*svgResolution)-margin,
		int((maxX-minX)*svgResolution)+2*margin,
		int((maxY-minY)*svgResolution)+2*margin,
	)

	for _, vl := range list {
		switch vl.Primitive() {
		case polyhedra.PrimitiveLine:
			for i := 0; i+1 < vl.IndexCount(); i += 2 {
				a := vl.Vertex(int(vl.Index(i)))
				b := vl.Vertex(int(vl.Index(i + 1)))
				canvas.Line(px(a[0]), py(a[1]), px(b[0]), py(b[1]),
					"stroke:black;stroke-width:2;fill:none")
			}
		case polyhedra.PrimitiveTriangle:
			for t := 0; t < vl.TriangleCount(); t++ {
				i0, i1, i2 := vl.Triangle(t)
				xs := make([]int, 3)
				ys := make([]int, 3)
				for j, ix := range []uint32{i0, i1, i2} {
					v := vl.Vertex(int(ix))
					xs[j], ys[j] = px(v[0]), py(v[1])
				}
				canvas.Polygon(xs, ys, "fill:#b0c4de;stroke:black;stroke-width:1")
			}
		}
	}
	canvas.End()
	return nil
}
