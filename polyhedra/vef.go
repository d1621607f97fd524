package polyhedra

import (
	"fmt"
	"math"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/sksmith/polyhedra/container"
)

// VefVert is a vertex of a Vef with its incident edges.
type VefVert struct {
	Pos   mgl32.Vec3
	Edges []int
}

// VefEdge connects two vertices and carries up to two adjacent faces.
// F[1] is -1 while the edge has a single face.
type VefEdge struct {
	V [2]int
	F [2]int

	info *edgeInfo
}

type edgeInfo struct {
	z, x mgl32.Vec3
	ang  float32
}

// VefFace is an oriented triangle with its plane.
type VefFace struct {
	V [3]int
	E [3]int
	N mgl32.Vec3
	D float32

	basis *faceBasis
}

type faceBasis struct {
	x, y mgl32.Vec3
	v1x  float32
	v2   mgl32.Vec2
}

// Vef is a vertex/edge/face mesh topology. Vertices are shared by exact
// coordinate identity, edges by their vertex pair.
type Vef struct {
	Verts []VefVert
	Edges []VefEdge
	Faces []VefFace

	vertByKey map[[12]byte]int
	edgeByV   map[[2]int]int
	min, max  mgl32.Vec3
}

func coordKey(p mgl32.Vec3) [12]byte {
	var k [12]byte
	for i := 0; i < 3; i++ {
		bits := math.Float32bits(p[i])
		k[4*i] = byte(bits)
		k[4*i+1] = byte(bits >> 8)
		k[4*i+2] = byte(bits >> 16)
		k[4*i+3] = byte(bits >> 24)
	}
	return k
}

func edgeKey(a, b int) [2]int {
	if a > b {
		a, b = b, a
	}
	return [2]int{a, b}
}

// NewVef builds a topology from a triangle list, sharing vertices and edges
// between faces.
func NewVef(vl *VertexList) (*Vef, error) {
	if err := requireTriangles(vl); err != nil {
		return nil, err
	}
	vef := &Vef{
		vertByKey: make(map[[12]byte]int),
		edgeByV:   make(map[[2]int]int),
	}
	for i := 0; i < vl.TriangleCount(); i++ {
		i0, i1, i2 := vl.Triangle(i)
		if err := vef.AddFace(vl.Vec3(int(i0)), vl.Vec3(int(i1)), vl.Vec3(int(i2))); err != nil {
			return nil, err
		}
	}
	return vef, nil
}

func (vef *Vef) addVert(p mgl32.Vec3) int {
	key := coordKey(p)
	if i, ok := vef.vertByKey[key]; ok {
		return i
	}
	if len(vef.Verts) == 0 {
		vef.min, vef.max = p, p
	} else {
		for a := 0; a < 3; a++ {
			if p[a] < vef.min[a] {
				vef.min[a] = p[a]
			}
			if p[a] > vef.max[a] {
				vef.max[a] = p[a]
			}
		}
	}
	vef.Verts = append(vef.Verts, VefVert{Pos: p})
	i := len(vef.Verts) - 1
	vef.vertByKey[key] = i
	return i
}

func (vef *Vef) addEdge(a, b, face int) (int, error) {
	key := edgeKey(a, b)
	if i, ok := vef.edgeByV[key]; ok {
		e := &vef.Edges[i]
		if e.F[1] >= 0 {
			return 0, fmt.Errorf("%w: edge %d-%d has more than two faces", ErrInternal, a, b)
		}
		e.F[1] = face
		e.info = nil
		return i, nil
	}
	vef.Edges = append(vef.Edges, VefEdge{V: [2]int{a, b}, F: [2]int{face, -1}})
	i := len(vef.Edges) - 1
	vef.edgeByV[key] = i
	vef.Verts[a].Edges = append(vef.Verts[a].Edges, i)
	vef.Verts[b].Edges = append(vef.Verts[b].Edges, i)
	return i, nil
}

// AddFace inserts one CCW triangle, sharing vertices and edges with the
// faces already present.
func (vef *Vef) AddFace(p0, p1, p2 mgl32.Vec3) error {
	v0 := vef.addVert(p0)
	v1 := vef.addVert(p1)
	v2 := vef.addVert(p2)
	fi := len(vef.Faces)
	n := p1.Sub(p0).Cross(p2.Sub(p0))
	if l := n.Len(); l > 0 {
		n = n.Mul(1 / l)
	}
	f := VefFace{V: [3]int{v0, v1, v2}, N: n, D: n.Dot(p0)}
	var err error
	if f.E[0], err = vef.addEdge(v0, v1, fi); err != nil {
		return err
	}
	if f.E[1], err = vef.addEdge(v1, v2, fi); err != nil {
		return err
	}
	if f.E[2], err = vef.addEdge(v2, v0, fi); err != nil {
		return err
	}
	vef.Faces = append(vef.Faces, f)
	return nil
}

// Bounds returns the AABB of the inserted vertices.
func (vef *Vef) Bounds() (min, max mgl32.Vec3) {
	return vef.min, vef.max
}

func (vef *Vef) diag() float32 {
	return vef.max.Sub(vef.min).Len()
}

// Closed reports whether every edge has two faces.
func (vef *Vef) Closed() bool {
	for i := range vef.Edges {
		if vef.Edges[i].F[1] < 0 {
			return false
		}
	}
	return true
}

// Stats returns V/E/F counts with the Euler characteristic.
func (vef *Vef) Stats() string {
	return fmt.Sprintf("V=%d, E=%d, F=%d, χ=%d",
		len(vef.Verts), len(vef.Edges), len(vef.Faces),
		len(vef.Verts)-len(vef.Edges)+len(vef.Faces))
}

// EdgeInfo returns the cached dihedral frame of an edge: unit direction z
// from V[0] to V[1], unit x perpendicular to z in the plane of F[0], and the
// dihedral angle in [0, 2π) from F[0] to F[1] about z. The edge must have
// two faces.
func (vef *Vef) EdgeInfo(e int) (z, x mgl32.Vec3, ang float32, err error) {
	ed := &vef.Edges[e]
	if ed.F[1] < 0 {
		return z, x, 0, fmt.Errorf("%w: edge %d", ErrOpenMesh, e)
	}
	if ed.info == nil {
		z := vef.Verts[ed.V[1]].Pos.Sub(vef.Verts[ed.V[0]].Pos)
		if l := z.Len(); l > 0 {
			z = z.Mul(1 / l)
		}
		n0 := vef.Faces[ed.F[0]].N
		n1 := vef.Faces[ed.F[1]].N
		x := n0.Cross(z)
		if l := x.Len(); l > 0 {
			x = x.Mul(1 / l)
		}
		ang := math32.Atan2(n1.Dot(x), -n1.Dot(n0))
		if ang < 0 {
			ang += 2 * math32.Pi
		}
		if ang >= 2*math32.Pi {
			ang -= 2 * math32.Pi
		}
		ed.info = &edgeInfo{z: z, x: x, ang: ang}
	}
	return ed.info.z, ed.info.x, ed.info.ang, nil
}

// FaceBasis returns the cached orthonormal 2D basis of a face's plane:
// x along v1-v0, y = n × x.
func (vef *Vef) FaceBasis(f int) (x, y mgl32.Vec3) {
	fa := &vef.Faces[f]
	vef.fillBasis(fa)
	return fa.basis.x, fa.basis.y
}

// FaceCoord2D returns the cached planar coordinates of a face's second and
// third vertices in the face basis: v1 at (v1x, 0) with v1x > 0, and v2.
func (vef *Vef) FaceCoord2D(f int) (v1x float32, v2 mgl32.Vec2) {
	fa := &vef.Faces[f]
	vef.fillBasis(fa)
	return fa.basis.v1x, fa.basis.v2
}

func (vef *Vef) fillBasis(fa *VefFace) {
	if fa.basis != nil {
		return
	}
	p0 := vef.Verts[fa.V[0]].Pos
	p1 := vef.Verts[fa.V[1]].Pos
	p2 := vef.Verts[fa.V[2]].Pos
	x := p1.Sub(p0)
	if l := x.Len(); l > 0 {
		x = x.Mul(1 / l)
	}
	y := fa.N.Cross(x)
	if l := y.Len(); l > 0 {
		y = y.Mul(1 / l)
	}
	fa.basis = &faceBasis{
		x:   x,
		y:   y,
		v1x: p1.Sub(p0).Dot(x),
		v2:  mgl32.Vec2{p2.Sub(p0).Dot(x), p2.Sub(p0).Dot(y)},
	}
}

// project2D maps a point into a face's planar basis.
func (vef *Vef) project2D(f int, pt mgl32.Vec3) mgl32.Vec2 {
	fa := &vef.Faces[f]
	vef.fillBasis(fa)
	rel := pt.Sub(vef.Verts[fa.V[0]].Pos)
	return mgl32.Vec2{rel.Dot(fa.basis.x), rel.Dot(fa.basis.y)}
}

// edge2D classifies a planar point against the triangle (0,0), (v1x,0), v2.
// It returns the index of the edge the point is furthest outside of
// (0: base, 1: v1-v2, 2: v2-v0), or 3 if the point is inside within tol.
func edge2D(p mgl32.Vec2, v1x float32, v2 mgl32.Vec2, tol float32) int {
	// Outward distance to each edge, scaled by edge length.
	best, bestDist := 3, tol
	// Edge 0: from (0,0) to (v1x,0); outside is y < 0.
	if d := -p[1]; d > bestDist {
		best, bestDist = 0, d
	}
	// Edge 1: from (v1x,0) to v2.
	e1 := mgl32.Vec2{v2[0] - v1x, v2[1]}
	if l := e1.Len(); l > 0 {
		d := (e1[1]*(p[0]-v1x) - e1[0]*p[1]) / l
		if d > bestDist {
			best, bestDist = 1, d
		}
	}
	// Edge 2: from v2 to (0,0).
	e2 := mgl32.Vec2{-v2[0], -v2[1]}
	if l := e2.Len(); l > 0 {
		d := (e2[1]*(p[0]-v2[0]) - e2[0]*(p[1]-v2[1])) / l
		if d > bestDist {
			best, bestDist = 2, d
		}
	}
	return best
}

// otherFace returns the face across edge e from face f.
func (vef *Vef) otherFace(e, f int) int {
	ed := &vef.Edges[e]
	if ed.F[0] == f {
		return ed.F[1]
	}
	return ed.F[0]
}

// ConvexInteriorDist returns the signed distance from pt to the closest
// boundary face of a convex closed vef, positive inside. The search starts
// at *start (any face if out of range) and *start is updated to the closest
// face found, which speeds up batches of nearby queries.
func (vef *Vef) ConvexInteriorDist(pt mgl32.Vec3, start *int) float32 {
	tol := 1e-6 * vef.diag()
	s := 0
	if start != nil && *start >= 0 && *start < len(vef.Faces) {
		s = *start
	}
	var queue container.UniqueFIFO[int]
	queue.PushBack(s)
	min := math32.Inf(1)
	minFace := s
	for queue.Len() > 0 {
		fi, _ := queue.Pop()
		f := &vef.Faces[fi]
		d := f.D - f.N.Dot(pt)
		if d < -tol {
			if start != nil {
				*start = fi
			}
			return d
		}
		if d < min {
			min, minFace = d, fi
		}
		if d <= min+tol {
			for _, e := range f.E {
				if nb := vef.otherFace(e, fi); nb >= 0 {
					queue.PushBack(nb)
				}
			}
		}
	}
	if start != nil {
		*start = minFace
	}
	return min
}

// ConvexRayDist returns the distance t at which the ray pt + t*dir exits a
// convex closed vef. ok is false when the walk cannot find an exit (the ray
// points inward from an exterior point, or the mesh is degenerate).
func (vef *Vef) ConvexRayDist(pt, dir mgl32.Vec3, start *int) (float32, bool) {
	fi := 0
	if start != nil && *start >= 0 && *start < len(vef.Faces) {
		fi = *start
	}
	var visited container.UniqueFIFO[int]
	for visited.Push(fi) {
		f := &vef.Faces[fi]
		div := dir.Dot(f.N)
		if div < -0.5 || div >= 1e-6 {
			t := (f.D - pt.Dot(f.N)) / div
			hit := vef.project2D(fi, pt.Add(dir.Mul(t)))
			v1x, v2 := vef.FaceCoord2D(fi)
			tol := 1e-5 * math32.Sqrt(math32.Abs(v1x*v2[1]))
			edge := edge2D(hit, v1x, v2, tol)
			if edge == 3 {
				if div > 0 {
					if start != nil {
						*start = fi
					}
					return t, true
				}
				// Entered through the back face: cross to the
				// far side via any edge.
				edge = 0
			}
			fi = vef.otherFace(f.E[edge], fi)
		} else {
			// Ray nearly parallel to this face: slide across the
			// edge most aligned with the ray.
			best, bestDot := 0, math32.Inf(-1)
			for i, e := range f.E {
				ed := &vef.Edges[e]
				mid := vef.Verts[ed.V[0]].Pos.Add(vef.Verts[ed.V[1]].Pos).Mul(0.5)
				if d := dir.Dot(mid.Sub(pt)); d > bestDot {
					best, bestDot = i, d
				}
			}
			fi = vef.otherFace(f.E[best], fi)
		}
		if fi < 0 {
			return 0, false
		}
	}
	return 0, false
}
