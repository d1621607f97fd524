package polyhedra

import (
	"fmt"
	"math"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// cutShape accumulates one side of a plane cut: the surviving triangles, the
// outline of the cut in the plane's 2D basis, and the edges known to lie
// exactly on the plane.
type cutShape struct {
	out     *VertexList
	outline *VertexList
	lift    map[[8]byte]mgl32.Vec3
	onPlane map[[2]uint32]bool
}

func newCutShape() (*cutShape, error) {
	out, err := NewVertexList(3, PrimitiveTriangle)
	if err != nil {
		return nil, err
	}
	outline, err := NewVertexList(2, PrimitiveLine)
	if err != nil {
		return nil, err
	}
	return &cutShape{
		out:     out,
		outline: outline,
		lift:    make(map[[8]byte]mgl32.Vec3),
		onPlane: make(map[[2]uint32]bool),
	}, nil
}

func (s *cutShape) addTri(a, b, c mgl32.Vec3) error {
	for _, p := range []mgl32.Vec3{a, b, c} {
		if _, err := s.out.AddVec3(p); err != nil {
			return err
		}
	}
	return nil
}

func point2DKey(p mgl32.Vec2) [8]byte {
	var k [8]byte
	for i := 0; i < 2; i++ {
		bits := math.Float32bits(p[i])
		k[4*i] = byte(bits)
		k[4*i+1] = byte(bits >> 8)
		k[4*i+2] = byte(bits >> 16)
		k[4*i+3] = byte(bits >> 24)
	}
	return k
}

func (s *cutShape) addOutline(a2 mgl32.Vec2, a3 mgl32.Vec3, b2 mgl32.Vec2, b3 mgl32.Vec3) error {
	if _, err := s.outline.AddVec2(a2); err != nil {
		return err
	}
	if _, err := s.outline.AddVec2(b2); err != nil {
		return err
	}
	s.lift[point2DKey(a2)] = a3
	s.lift[point2DKey(b2)] = b3
	return nil
}

func (s *cutShape) toggleOnPlane(a, b uint32) {
	k := [2]uint32{a, b}
	if a > b {
		k = [2]uint32{b, a}
	}
	if s.onPlane[k] {
		delete(s.onPlane, k)
	} else {
		s.onPlane[k] = true
	}
}

// planeCutter carries the classification of the input against one plane.
type planeCutter struct {
	vl     *VertexList
	n      mgl32.Vec3
	d      float32
	bx, by mgl32.Vec3
	orig   mgl32.Vec3
	dist   []float32
	ips    map[[2]uint32]mgl32.Vec3
	shapes [2]*cutShape
}

// PlaneCut splits a closed triangle mesh by the plane n·x = d and returns
// the connected components of both sides, negative side first. Caps are
// re-closed by triangulating the cut outline. The input list is not
// modified.
func PlaneCut(vl *VertexList, n mgl32.Vec3, d float32) ([]*VertexList, error) {
	if err := requireTriangles(vl); err != nil {
		return nil, err
	}
	if l := n.Len(); l == 0 {
		return nil, fmt.Errorf("%w: zero cut normal", ErrBadPrimitive)
	} else if l != 1 {
		n = n.Mul(1 / l)
	}

	pc := &planeCutter{vl: vl, n: n, d: d, ips: make(map[[2]uint32]mgl32.Vec3)}
	pc.orig = n.Mul(d)

	// Plane basis chosen so that CCW cap triangles lift to a normal of -n:
	// the positive side keeps them as-is and the negative side flips.
	u := mgl32.Vec3{1, 0, 0}
	if math32.Abs(n[0]) > 0.9 {
		u = mgl32.Vec3{0, 1, 0}
	}
	pc.bx = u.Cross(n).Normalize()
	pc.by = pc.bx.Cross(n)

	for i := range pc.shapes {
		s, err := newCutShape()
		if err != nil {
			return nil, err
		}
		pc.shapes[i] = s
	}

	pc.dist = make([]float32, vl.VertCount())
	for i := range pc.dist {
		v := vl.Vec3(i)
		dd := v.Dot(n) - d
		if math32.Abs(dd) < 1e-5*math32.Max(v.Len(), math32.Abs(d)) {
			dd = 0
		}
		pc.dist[i] = dd
	}

	for i := 0; i < vl.TriangleCount(); i++ {
		if err := pc.cutTriangle(vl.Triangle(i)); err != nil {
			return nil, err
		}
	}

	// Leftover on-plane edges bound the cap where whole triangles touched
	// the plane.
	for _, s := range pc.shapes {
		for k := range s.onPlane {
			a3 := vl.Vec3(int(k[0]))
			b3 := vl.Vec3(int(k[1]))
			if err := s.addOutline(pc.to2D(a3), a3, pc.to2D(b3), b3); err != nil {
				return nil, err
			}
		}
	}

	var pieces []*VertexList
	for side, s := range pc.shapes {
		if err := pc.closeCap(side, s); err != nil {
			return nil, err
		}
		if s.out.TriangleCount() == 0 {
			continue
		}
		comps, err := SplitComponents(s.out)
		if err != nil {
			return nil, err
		}
		pieces = append(pieces, comps...)
	}
	return pieces, nil
}

func (pc *planeCutter) to2D(p mgl32.Vec3) mgl32.Vec2 {
	rel := p.Sub(pc.orig)
	return mgl32.Vec2{rel.Dot(pc.bx), rel.Dot(pc.by)}
}

// intersection returns the point where edge (a, b) crosses the plane,
// computed once per edge so both sides share bit-identical vertices.
func (pc *planeCutter) intersection(a, b uint32) mgl32.Vec3 {
	k := [2]uint32{a, b}
	if a > b {
		k = [2]uint32{b, a}
	}
	if p, ok := pc.ips[k]; ok {
		return p
	}
	v0 := pc.vl.Vec3(int(k[0]))
	v1 := pc.vl.Vec3(int(k[1]))
	d0, d1 := pc.dist[k[0]], pc.dist[k[1]]
	x := -d0 / (d1 - d0)
	p := v0.Add(v1.Sub(v0).Mul(x))
	pc.ips[k] = p
	return p
}

func sideOf(d float32) int {
	if d > 0 {
		return 1
	}
	return 0
}

func (pc *planeCutter) cutTriangle(i0, i1, i2 uint32) error {
	idx := [3]uint32{i0, i1, i2}
	var dd [3]float32
	crossings, onPlane := 0, 0
	for i, ix := range idx {
		dd[i] = pc.dist[ix]
		if dd[i] == 0 {
			onPlane++
		}
	}
	for i := 0; i < 3; i++ {
		if dd[i]*dd[(i+1)%3] < 0 {
			crossings++
		}
	}
	p := func(i int) mgl32.Vec3 { return pc.vl.Vec3(int(idx[i])) }

	switch crossings {
	case 0:
		switch onPlane {
		case 3:
			return nil // degenerate planar triangle
		case 2:
			// One edge lies on the plane; the triangle itself goes
			// to the side of its lone off-plane vertex, and the
			// edge toggles in that side's cap set.
			lone := 0
			for dd[lone] == 0 {
				lone++
			}
			s := pc.shapes[sideOf(dd[lone])]
			if err := s.addTri(p(0), p(1), p(2)); err != nil {
				return err
			}
			s.toggleOnPlane(idx[(lone+1)%3], idx[(lone+2)%3])
			return nil
		default:
			side := 0
			for i := 0; i < 3; i++ {
				if dd[i] != 0 {
					side = sideOf(dd[i])
					break
				}
			}
			return pc.shapes[side].addTri(p(0), p(1), p(2))
		}
	case 1:
		// One vertex on the plane, the other two on opposite sides.
		on := -1
		for i := 0; i < 3; i++ {
			if dd[i] == 0 {
				on = i
				break
			}
		}
		if on < 0 {
			return fmt.Errorf("%w: crossing without on-plane vertex", ErrInternal)
		}
		b, c := (on+1)%3, (on+2)%3
		ip := pc.intersection(idx[b], idx[c])
		sb := pc.shapes[sideOf(dd[b])]
		sc := pc.shapes[sideOf(dd[c])]
		if err := sb.addTri(p(on), p(b), ip); err != nil {
			return err
		}
		if err := sc.addTri(p(on), ip, p(c)); err != nil {
			return err
		}
		ip2, on2 := pc.to2D(ip), pc.to2D(p(on))
		if err := sb.addOutline(ip2, ip, on2, p(on)); err != nil {
			return err
		}
		return sc.addOutline(ip2, ip, on2, p(on))
	case 2:
		// One lone vertex against an opposite pair: a triangle on the
		// lone side and a quad, split along its shorter diagonal, on
		// the other.
		lone := -1
		for i := 0; i < 3; i++ {
			if dd[i]*dd[(i+1)%3] >= 0 {
				lone = (i + 2) % 3
				break
			}
		}
		if lone < 0 {
			return fmt.Errorf("%w: no lone vertex on double crossing", ErrInternal)
		}
		b, c := (lone+1)%3, (lone+2)%3
		ipAB := pc.intersection(idx[lone], idx[b])
		ipCA := pc.intersection(idx[c], idx[lone])
		sl := pc.shapes[sideOf(dd[lone])]
		so := pc.shapes[1-sideOf(dd[lone])]
		if err := sl.addTri(p(lone), ipAB, ipCA); err != nil {
			return err
		}
		if ipAB.Sub(p(c)).Len() <= p(b).Sub(ipCA).Len() {
			if err := so.addTri(ipAB, p(b), p(c)); err != nil {
				return err
			}
			if err := so.addTri(ipAB, p(c), ipCA); err != nil {
				return err
			}
		} else {
			if err := so.addTri(ipAB, p(b), ipCA); err != nil {
				return err
			}
			if err := so.addTri(p(b), p(c), ipCA); err != nil {
				return err
			}
		}
		a2, b2 := pc.to2D(ipAB), pc.to2D(ipCA)
		if err := sl.addOutline(a2, ipAB, b2, ipCA); err != nil {
			return err
		}
		return so.addOutline(a2, ipAB, b2, ipCA)
	default:
		return fmt.Errorf("%w: triangle crosses the plane %d times", ErrInternal, crossings)
	}
}

// closeCap triangulates a side's cut outline and appends the cap triangles
// with outward winding.
func (pc *planeCutter) closeCap(side int, s *cutShape) error {
	if s.outline.IndexCount() == 0 {
		return nil
	}
	tris, err := Triangulate2D(s.outline)
	if err != nil {
		return fmt.Errorf("cap triangulation: %w", err)
	}
	for i := 0; i < tris.TriangleCount(); i++ {
		a, b, c := tris.Triangle(i)
		pa, ok1 := s.lift[point2DKey(tris.Vec2(int(a)))]
		pb, ok2 := s.lift[point2DKey(tris.Vec2(int(b)))]
		pcv, ok3 := s.lift[point2DKey(tris.Vec2(int(c)))]
		if !ok1 || !ok2 || !ok3 {
			return fmt.Errorf("%w: cap vertex has no 3D source", ErrInternal)
		}
		if side == 1 {
			err = s.addTri(pa, pb, pcv)
		} else {
			err = s.addTri(pa, pcv, pb)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
