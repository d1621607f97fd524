package polyhedra

import (
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl32"
	"gonum.org/v1/gonum/mat"

	"github.com/sksmith/polyhedra/container"
)

// quadric is a symmetric 4x4 error matrix stored as its 10 upper-triangle
// coefficients (a², ab, ac, ad, b², bc, bd, c², cd, d²).
type quadric [10]float64

func planeQuadric(a, b, c, d float64) quadric {
	return quadric{a * a, a * b, a * c, a * d, b * b, b * c, b * d, c * c, c * d, d * d}
}

func (q *quadric) add(o *quadric) {
	for i := range q {
		q[i] += o[i]
	}
}

// eval returns the quadratic form at the homogeneous point (x, y, z, 1).
func (q *quadric) eval(p mgl32.Vec3) float64 {
	x, y, z := float64(p[0]), float64(p[1]), float64(p[2])
	return q[0]*x*x + 2*q[1]*x*y + 2*q[2]*x*z + 2*q[3]*x +
		q[4]*y*y + 2*q[5]*y*z + 2*q[6]*y +
		q[7]*z*z + 2*q[8]*z + q[9]
}

type simpVert struct {
	id    int
	pos   mgl32.Vec3
	q     quadric
	faces map[*simpFace]struct{}
	pairs map[*simpVert]*simpPair
}

type simpFace struct {
	v [3]*simpVert
}

func (f *simpFace) normal() mgl32.Vec3 {
	e1 := f.v[1].pos.Sub(f.v[0].pos)
	e2 := f.v[2].pos.Sub(f.v[0].pos)
	n := e1.Cross(e2)
	if l := n.Len(); l > 0 {
		n = n.Mul(1 / l)
	}
	return n
}

func (f *simpFace) has(v *simpVert) bool {
	return f.v[0] == v || f.v[1] == v || f.v[2] == v
}

// canonicalize rotates the triple so the lowest-id vertex leads, keeping
// orientation.
func (f *simpFace) canonicalize() {
	low := 0
	for i := 1; i < 3; i++ {
		if f.v[i].id < f.v[low].id {
			low = i
		}
	}
	f.v[0], f.v[1], f.v[2] = f.v[low], f.v[(low+1)%3], f.v[(low+2)%3]
}

type simpPair struct {
	a, b *simpVert
	vbar mgl32.Vec3
	cost float64
	node *container.FNode[*simpPair]
}

// update solves for the contraction target minimizing the summed quadric;
// if the system is singular the best of the endpoints and their midpoint is
// used instead.
func (p *simpPair) update() {
	var q quadric = p.a.q
	q.add(&p.b.q)

	A := mat.NewDense(3, 3, []float64{
		q[0], q[1], q[2],
		q[1], q[4], q[5],
		q[2], q[5], q[7],
	})
	rhs := mat.NewVecDense(3, []float64{-q[3], -q[6], -q[8]})
	var x mat.VecDense
	if err := x.SolveVec(A, rhs); err == nil {
		p.vbar = mgl32.Vec3{float32(x.AtVec(0)), float32(x.AtVec(1)), float32(x.AtVec(2))}
	} else {
		mid := p.a.pos.Add(p.b.pos).Mul(0.5)
		p.vbar = p.a.pos
		best := q.eval(p.a.pos)
		if c := q.eval(p.b.pos); c < best {
			best, p.vbar = c, p.b.pos
		}
		if c := q.eval(mid); c < best {
			p.vbar = mid
		}
	}
	p.cost = q.eval(p.vbar)
	if p.cost < 0 {
		p.cost = 0 // rounding below the paraboloid floor
	}
}

type simplifier struct {
	verts []*simpVert
	faces map[*simpFace]struct{}
	tree  *container.FTree[*simpPair]
}

func pairKeyOf(a, b *simpVert) (*simpVert, *simpVert) {
	if a.id > b.id {
		a, b = b, a
	}
	return a, b
}

func (s *simplifier) addPair(a, b *simpVert) *simpPair {
	a, b = pairKeyOf(a, b)
	if p, ok := a.pairs[b]; ok {
		return p
	}
	p := &simpPair{a: a, b: b}
	p.update()
	a.pairs[b] = p
	b.pairs[a] = p
	p.node = s.tree.Insert(p)
	return p
}

func (s *simplifier) removePair(p *simpPair) {
	delete(p.a.pairs, p.b)
	delete(p.b.pairs, p.a)
	if p.node != nil {
		s.tree.Delete(p.node)
		p.node = nil
	}
}

// Simplify contracts minimum-cost vertex pairs until at most targetFaces
// triangles remain. With a positive aggregationThresh, vertex pairs within
// that distance are eligible even without a shared edge, which lets
// disconnected pieces fuse. The input is not modified.
func Simplify(vl *VertexList, targetFaces int, aggregationThresh float32) (*VertexList, error) {
	if err := requireTriangles(vl); err != nil {
		return nil, err
	}
	s := &simplifier{faces: make(map[*simpFace]struct{})}
	s.tree = container.NewFTree(func(p *simpPair) float32 { return float32(p.cost) })

	s.verts = make([]*simpVert, vl.VertCount())
	for i := range s.verts {
		s.verts[i] = &simpVert{
			id:    i,
			pos:   vl.Vec3(i),
			faces: make(map[*simpFace]struct{}),
			pairs: make(map[*simpVert]*simpPair),
		}
	}

	for t := 0; t < vl.TriangleCount(); t++ {
		i0, i1, i2 := vl.Triangle(t)
		f := &simpFace{v: [3]*simpVert{s.verts[i0], s.verts[i1], s.verts[i2]}}
		f.canonicalize()
		s.faces[f] = struct{}{}
		for _, v := range f.v {
			v.faces[f] = struct{}{}
		}
		// Plane quadric: n·x + d = 0 with d = -n·v0.
		n := f.normal()
		d := -float64(n.Dot(f.v[0].pos))
		k := planeQuadric(float64(n[0]), float64(n[1]), float64(n[2]), d)
		for _, v := range f.v {
			v.q.add(&k)
		}
	}

	for f := range s.faces {
		for i := 0; i < 3; i++ {
			s.addPair(f.v[i], f.v[(i+1)%3])
		}
	}
	if aggregationThresh > 0 {
		for _, pr := range aggregationPairs(s.verts, aggregationThresh) {
			s.addPair(pr[0], pr[1])
		}
	}

	for len(s.faces) > targetFaces && s.tree.Len() > 0 {
		node := s.tree.Min()
		p := node.Item
		if math.IsInf(p.cost, 1) {
			return nil, ErrNoContraction
		}
		if s.wouldInvert(p) {
			p.cost = math.Inf(1)
			s.tree.Rekey(p.node)
			continue
		}
		s.contract(p)
	}

	out, err := NewVertexList(3, PrimitiveTriangle)
	if err != nil {
		return nil, err
	}
	for f := range s.faces {
		for _, v := range f.v {
			if _, err := out.AddVec3(v.pos); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

// wouldInvert reports whether moving either endpoint to the pair's target
// flips any surviving face's normal.
func (s *simplifier) wouldInvert(p *simpPair) bool {
	check := func(v, other *simpVert) bool {
		for f := range v.faces {
			if f.has(other) {
				continue
			}
			var tmp [3]mgl32.Vec3
			for i, fv := range f.v {
				if fv == v {
					tmp[i] = p.vbar
				} else {
					tmp[i] = fv.pos
				}
			}
			moved := tmp[1].Sub(tmp[0]).Cross(tmp[2].Sub(tmp[0]))
			if moved.Dot(f.normal()) < 0 {
				return true
			}
		}
		return false
	}
	return check(p.a, p.b) || check(p.b, p.a)
}

// contract merges pair.b into pair.a at the target position.
func (s *simplifier) contract(p *simpPair) {
	a, b := p.a, p.b
	s.removePair(p)

	a.q.add(&b.q)
	a.pos = p.vbar

	for f := range b.faces {
		if f.has(a) {
			// The triangle spanned the contracted pair; it vanishes.
			for _, v := range f.v {
				delete(v.faces, f)
			}
			delete(s.faces, f)
			continue
		}
		for i, fv := range f.v {
			if fv == b {
				f.v[i] = a
			}
		}
		f.canonicalize()
		delete(b.faces, f)
		a.faces[f] = struct{}{}
	}

	// Rewrite b's pairs onto a, dropping duplicates.
	for x, bp := range b.pairs {
		s.removePair(bp)
		if x != a {
			s.addPair(a, x)
		}
	}
	// Recost everything incident to a.
	for _, ap := range a.pairs {
		ap.update()
		s.tree.Rekey(ap.node)
	}
}

// aggregationPairs returns all unordered vertex pairs within thresh of each
// other, found through a median-split bounding-volume hierarchy.
func aggregationPairs(verts []*simpVert, thresh float32) [][2]*simpVert {
	idxs := make([]int, len(verts))
	for i := range idxs {
		idxs[i] = i
	}
	root := buildBvh(verts, idxs, thresh)

	var out [][2]*simpVert
	var walk func(n *bvhNode, vi int)
	for i, v := range verts {
		walk = func(n *bvhNode, vi int) {
			if n == nil {
				return
			}
			for a := 0; a < 3; a++ {
				if v.pos[a] < n.min[a]-thresh || v.pos[a] > n.max[a]+thresh {
					return
				}
			}
			if n.pts != nil {
				for _, j := range n.pts {
					if j > vi && verts[j].pos.Sub(v.pos).Len() <= thresh {
						out = append(out, [2]*simpVert{verts[vi], verts[j]})
					}
				}
				return
			}
			walk(n.left, vi)
			walk(n.right, vi)
		}
		walk(root, i)
	}
	return out
}

type bvhNode struct {
	min, max    mgl32.Vec3
	pts         []int
	left, right *bvhNode
}

func buildBvh(verts []*simpVert, idxs []int, thresh float32) *bvhNode {
	if len(idxs) == 0 {
		return nil
	}
	n := &bvhNode{min: verts[idxs[0]].pos, max: verts[idxs[0]].pos}
	for _, i := range idxs {
		p := verts[i].pos
		for a := 0; a < 3; a++ {
			if p[a] < n.min[a] {
				n.min[a] = p[a]
			}
			if p[a] > n.max[a] {
				n.max[a] = p[a]
			}
		}
	}
	ext := n.max.Sub(n.min)
	axis, widest := 0, ext[0]
	for a := 1; a < 3; a++ {
		if ext[a] > widest {
			axis, widest = a, ext[a]
		}
	}
	if len(idxs) < 4 || widest <= thresh {
		n.pts = idxs
		return n
	}
	sort.Slice(idxs, func(i, j int) bool {
		return verts[idxs[i]].pos[axis] < verts[idxs[j]].pos[axis]
	})
	mid := len(idxs) / 2
	n.left = buildBvh(verts, idxs[:mid], thresh)
	n.right = buildBvh(verts, idxs[mid:], thresh)
	return n
}
