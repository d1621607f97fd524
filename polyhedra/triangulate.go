package polyhedra

import (
	"fmt"
	"sort"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/sksmith/polyhedra/container"
)

// Chain sides for monotone-polygon stack entries.
const (
	sideLeft int8 = iota
	sideRight
	sideTop
)

type stackElem struct {
	pos  mgl32.Vec2
	side int8
}

// sweepEdge is an active edge of the sweep: a segment from its upper to its
// lower endpoint, currently bounding one active monotone polygon.
type sweepEdge struct {
	top, bot mgl32.Vec2
	mp       *monoPoly
	left     bool // bounds its polygon on the left
}

// xAt returns the edge's x coordinate at sweep height y.
func (e *sweepEdge) xAt(y float32) float32 {
	dy := e.top[1] - e.bot[1]
	if dy == 0 {
		if e.top[0] < e.bot[0] {
			return e.top[0]
		}
		return e.bot[0]
	}
	t := (e.top[1] - y) / dy
	return e.top[0] + (e.bot[0]-e.top[0])*t
}

// monoPoly is an active y-monotone region being triangulated. The stack
// holds the pending reflex chain; after two regions merge, cusp holds the
// right-hand chain until the next vertex fuses the two.
type monoPoly struct {
	left, right *sweepEdge
	stack       []stackElem
	cusp        []stackElem
	node        *container.FNode[*monoPoly]
}

type triangulator struct {
	verts  []mgl32.Vec2
	adj    []map[int]bool
	active map[[2]int]*sweepEdge
	tree   *container.FTree[*monoPoly]
	sweepY float32
	out    *VertexList
}

// Triangulate2D triangulates the planar region enclosed by an unordered set
// of line segments. The segments must form closed, possibly nested, curves;
// nesting alternates interior and exterior (holes). The input needs exactly
// two floats per vertex and line primitive; the result is a 2-float triangle
// list whose triangles all have positive orientation.
func Triangulate2D(vl *VertexList) (*VertexList, error) {
	if vl.Primitive() != PrimitiveLine {
		return nil, fmt.Errorf("%w: %s", ErrBadPrimitive, vl.Primitive())
	}
	if vl.FloatsPerVert() != 2 {
		return nil, fmt.Errorf("%w: %d", ErrFloatsPerVert, vl.FloatsPerVert())
	}
	if vl.IndexCount()%2 != 0 {
		return nil, fmt.Errorf("%w: odd segment index count", ErrBadPrimitive)
	}

	t := &triangulator{
		verts:  make([]mgl32.Vec2, vl.VertCount()),
		adj:    make([]map[int]bool, vl.VertCount()),
		active: make(map[[2]int]*sweepEdge),
	}
	for i := range t.verts {
		t.verts[i] = vl.Vec2(i)
		t.adj[i] = make(map[int]bool)
	}
	for i := 0; i+1 < vl.IndexCount(); i += 2 {
		a, b := int(vl.Index(i)), int(vl.Index(i+1))
		if a == b {
			continue
		}
		// Duplicate segments cancel.
		t.toggle(a, b)
	}
	t.tree = container.NewFTree(func(mp *monoPoly) float32 {
		return mp.left.xAt(t.sweepY)
	})
	var err error
	if t.out, err = NewVertexList(2, PrimitiveTriangle); err != nil {
		return nil, err
	}

	order := make([]int, 0, len(t.verts))
	for i := range t.verts {
		if len(t.adj[i]) > 0 {
			order = append(order, i)
		}
	}
	sort.Slice(order, func(i, j int) bool {
		a, b := t.verts[order[i]], t.verts[order[j]]
		if a[1] != b[1] {
			return a[1] > b[1]
		}
		return a[0] < b[0]
	})

	for _, vi := range order {
		if err := t.event(vi); err != nil {
			return nil, err
		}
	}
	if t.tree.Len() != 0 {
		return nil, fmt.Errorf("%w: %d unclosed regions", ErrTriangulation, t.tree.Len())
	}
	return t.out, nil
}

func (t *triangulator) toggle(a, b int) {
	if t.adj[a][b] {
		delete(t.adj[a], b)
		delete(t.adj[b], a)
	} else {
		t.adj[a][b] = true
		t.adj[b][a] = true
	}
}

// triTol is the degeneracy tolerance for a triangle: 1e-6 scaled by the two
// longer edge lengths.
func triTol(a, b, c mgl32.Vec2) float32 {
	d1 := b.Sub(a).Dot(b.Sub(a))
	d2 := c.Sub(b).Dot(c.Sub(b))
	d3 := a.Sub(c).Dot(a.Sub(c))
	if d3 > d1 {
		d1, d3 = d3, d1
	}
	if d3 > d2 {
		d2 = d3
	}
	return 1e-6 * math32.Sqrt(d1) * math32.Sqrt(d2)
}

func cross2(a, b mgl32.Vec2) float32 {
	return a[0]*b[1] - a[1]*b[0]
}

// emit outputs one triangle, oriented positively; degenerate slivers are
// discarded.
func (t *triangulator) emit(a, b, c mgl32.Vec2) error {
	cr := cross2(b.Sub(a), c.Sub(a))
	if math32.Abs(cr) <= triTol(a, b, c) {
		return nil
	}
	if cr < 0 {
		b, c = c, b
	}
	for _, p := range []mgl32.Vec2{a, b, c} {
		if _, err := t.out.AddVec2(p); err != nil {
			return err
		}
	}
	return nil
}

// fan emits triangles from apex w across every consecutive pair of the
// chain.
func (t *triangulator) fan(w mgl32.Vec2, chain []stackElem) error {
	for i := 0; i+1 < len(chain); i++ {
		if err := t.emit(w, chain[i].pos, chain[i+1].pos); err != nil {
			return err
		}
	}
	return nil
}

// arrive processes vertex w reaching mp on the given chain side: it fuses a
// pending cusp, then runs the reflex-chain stack discipline.
func (t *triangulator) arrive(mp *monoPoly, w mgl32.Vec2, side int8) error {
	if mp.cusp != nil {
		if side == sideRight {
			if err := t.fan(w, mp.cusp); err != nil {
				return err
			}
		} else {
			if err := t.fan(w, mp.stack); err != nil {
				return err
			}
			mp.stack = mp.cusp
		}
		mp.cusp = nil
	}

	if len(mp.stack) == 0 {
		mp.stack = append(mp.stack, stackElem{pos: w, side: side})
		return nil
	}
	top := mp.stack[len(mp.stack)-1]
	if len(mp.stack) == 1 || top.side == side {
		// Same chain: clip convex ears off the stack end.
		for len(mp.stack) >= 2 {
			top := mp.stack[len(mp.stack)-1]
			next := mp.stack[len(mp.stack)-2]
			cr := cross2(top.pos.Sub(next.pos), w.Sub(top.pos))
			tol := triTol(next.pos, top.pos, w)
			convex := cr > tol
			if side == sideRight {
				convex = cr < -tol
			}
			if !convex {
				break
			}
			if err := t.emit(next.pos, top.pos, w); err != nil {
				return err
			}
			mp.stack = mp.stack[:len(mp.stack)-1]
		}
	} else {
		// Opposite chain: the whole stack is visible from w.
		if err := t.fan(w, mp.stack); err != nil {
			return err
		}
		mp.stack = []stackElem{top}
	}
	mp.stack = append(mp.stack, stackElem{pos: w, side: side})
	return nil
}

// close finishes mp at vertex w and removes it from the sweep.
func (t *triangulator) close(mp *monoPoly, w mgl32.Vec2) error {
	if err := t.fan(w, mp.stack); err != nil {
		return err
	}
	if mp.cusp != nil {
		if err := t.fan(w, mp.cusp); err != nil {
			return err
		}
	}
	t.tree.Delete(mp.node)
	return nil
}

func pairKey(a, b int) [2]int {
	if a > b {
		a, b = b, a
	}
	return [2]int{a, b}
}

// eventEdge is one edge incident to the sweep vertex, in the clockwise
// circular order used to assign interior sectors.
type eventEdge struct {
	other int
	edge  *sweepEdge // non-nil for active (top) edges
	ang   float32
}

// event processes all edges incident to vertex vi.
func (t *triangulator) event(vi int) error {
	pv := t.verts[vi]
	t.sweepY = pv[1]

	var tops, bots []eventEdge
	for u := range t.adj[vi] {
		d := t.verts[u].Sub(pv)
		// Angle counterclockwise from straight down.
		ang := math32.Atan2(d[0], -d[1])
		if ang < 0 {
			ang += 2 * math32.Pi
		}
		if e, ok := t.active[pairKey(vi, u)]; ok {
			delete(t.active, pairKey(vi, u))
			tops = append(tops, eventEdge{other: u, edge: e, ang: ang})
		} else {
			bots = append(bots, eventEdge{other: u, ang: ang})
		}
	}
	// Tops left to right across the upper half plane.
	sort.Slice(tops, func(i, j int) bool { return tops[i].ang > tops[j].ang })
	// Bottoms left to right across the lower half plane.
	botKey := func(e eventEdge) float32 {
		a := e.ang + math32.Pi/2
		if a >= 2*math32.Pi {
			a -= 2 * math32.Pi
		}
		return a
	}
	sort.Slice(bots, func(i, j int) bool { return botKey(bots[i]) < botKey(bots[j]) })

	// Clockwise circular order: tops left to right, then bottoms right to
	// left. Sector i lies between ring[i] and ring[i+1]; sectors alternate
	// interior and exterior around the vertex.
	ring := append([]eventEdge(nil), tops...)
	for i := len(bots) - 1; i >= 0; i-- {
		ring = append(ring, bots[i])
	}
	m := len(ring)
	if m == 0 {
		return nil
	}
	if m%2 != 0 {
		return fmt.Errorf("%w: odd edge count at (%g, %g)", ErrTriangulation, pv[0], pv[1])
	}

	// Anchor the interior/exterior alternation: a left active edge has its
	// polygon in the sector clockwise-after it, a right edge in the sector
	// clockwise-before. With no active edges the wrap sector above v is
	// interior exactly when v lies inside an active polygon (hole start or
	// split vertex).
	anchor, anchorIn := m-1, false
	var enc *monoPoly
	switch {
	case len(tops) > 0 && tops[0].edge.left:
		anchor, anchorIn = 0, true
	case len(tops) > 0:
		anchor, anchorIn = m-1, true
	default:
		if enc = t.enclosing(pv); enc != nil {
			anchor, anchorIn = m-1, true
		}
	}
	interior := make([]bool, m)
	for i := 0; i < m; i++ {
		interior[i] = anchorIn == ((i-anchor)%2 == 0)
	}
	return t.sectors(vi, ring, interior, enc)
}

// sectors applies the interior sectors at vertex vi: closes, merges,
// continuations, splits, and new polygons.
func (t *triangulator) sectors(vi int, ring []eventEdge, interior []bool, enc *monoPoly) error {
	pv := t.verts[vi]
	m := len(ring)
	for i := 0; i < m; i++ {
		if !interior[i] {
			continue
		}
		a, b := ring[i], ring[(i+1)%m]
		switch {
		case a.edge != nil && b.edge != nil:
			// Interior between two ending edges: a bounds it on the
			// left, b on the right.
			if !a.edge.left || b.edge.left {
				return fmt.Errorf("%w: inconsistent edges at (%g, %g)", ErrTriangulation, pv[0], pv[1])
			}
			if a.edge.mp == b.edge.mp {
				if err := t.close(a.edge.mp, pv); err != nil {
					return err
				}
			} else if err := t.merge(b.edge.mp, a.edge.mp, pv); err != nil {
				return err
			}
		case a.edge != nil:
			// Left boundary continues downward through b.
			if !a.edge.left {
				return fmt.Errorf("%w: inconsistent left edge at (%g, %g)", ErrTriangulation, pv[0], pv[1])
			}
			mp := a.edge.mp
			if err := t.arrive(mp, pv, sideLeft); err != nil {
				return err
			}
			mp.left = t.activate(vi, b.other, mp, true)
		case b.edge != nil:
			// Right boundary continues downward through a.
			if b.edge.left {
				return fmt.Errorf("%w: inconsistent right edge at (%g, %g)", ErrTriangulation, pv[0], pv[1])
			}
			mp := b.edge.mp
			if err := t.arrive(mp, pv, sideRight); err != nil {
				return err
			}
			mp.right = t.activate(vi, a.other, mp, false)
		default:
			// Two new downward edges. The wrap sector splits the
			// enclosing polygon; any other pair starts a fresh one.
			if i == m-1 {
				if err := t.split(vi, a.other, b.other, enc); err != nil {
					return err
				}
			} else {
				t.start(vi, b.other, a.other)
			}
		}
	}
	return nil
}

func (t *triangulator) activate(topIdx, botIdx int, mp *monoPoly, left bool) *sweepEdge {
	e := &sweepEdge{top: t.verts[topIdx], bot: t.verts[botIdx], mp: mp, left: left}
	t.active[pairKey(topIdx, botIdx)] = e
	return e
}

// enclosing returns the active polygon strictly containing the point, if
// any.
func (t *triangulator) enclosing(p mgl32.Vec2) *monoPoly {
	node := t.tree.Floor(p[0])
	if node == nil {
		return nil
	}
	mp := node.Item
	if mp.right.xAt(p[1]) > p[0] {
		return mp
	}
	return nil
}

// start opens a new monotone polygon at vertex vi with the given left and
// right downward edges.
func (t *triangulator) start(vi, leftIdx, rightIdx int) {
	mp := &monoPoly{}
	mp.left = t.activate(vi, leftIdx, mp, true)
	mp.right = t.activate(vi, rightIdx, mp, false)
	mp.stack = []stackElem{{pos: t.verts[vi], side: sideTop}}
	mp.node = t.tree.Insert(mp)
}

// merge joins the polygon left of v with the polygon right of v. The two
// pending chains are kept as a cusp until a later vertex fuses them.
func (t *triangulator) merge(mpL, mpR *monoPoly, pv mgl32.Vec2) error {
	if err := t.arrive(mpL, pv, sideRight); err != nil {
		return err
	}
	if err := t.arrive(mpR, pv, sideLeft); err != nil {
		return err
	}
	mpL.cusp = mpR.stack
	mpL.right = mpR.right
	mpR.right.mp = mpL
	t.tree.Delete(mpR.node)
	return nil
}

// split divides the polygon enclosing vertex vi in two; the pending chain
// stays with the piece on its own side and the other piece fans it from v.
func (t *triangulator) split(vi, leftBot, rightBot int, m *monoPoly) error {
	pv := t.verts[vi]
	if m == nil {
		return fmt.Errorf("%w: split outside any region at (%g, %g)", ErrTriangulation, pv[0], pv[1])
	}

	m1 := &monoPoly{}
	m2 := &monoPoly{}
	u := m.stack[len(m.stack)-1]
	switch {
	case m.cusp != nil:
		m1.stack = m.stack
		m2.stack = m.cusp
	case u.side == sideRight:
		// The pending chain anchors the right active edge; the right
		// piece needs only the diagonal endpoint, the left piece keeps
		// the chain and clips it as v arrives.
		m1.stack = m.stack
		m2.stack = []stackElem{{pos: u.pos, side: sideTop}}
	default:
		m2.stack = m.stack
		m1.stack = []stackElem{{pos: u.pos, side: sideTop}}
	}

	m1.left = m.left
	m.left.mp = m1
	m1.right = t.activate(vi, leftBot, m1, false)
	m2.left = t.activate(vi, rightBot, m2, true)
	m2.right = m.right
	m.right.mp = m2

	t.tree.Delete(m.node)
	m1.node = t.tree.Insert(m1)
	m2.node = t.tree.Insert(m2)

	if err := t.arrive(m1, pv, sideRight); err != nil {
		return err
	}
	return t.arrive(m2, pv, sideLeft)
}
