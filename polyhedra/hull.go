package polyhedra

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/sksmith/polyhedra/container"
)

// Point categorization against a hull face.
const (
	catPresent = iota // below the face plane
	catExtend         // coplanar within tolerance, outside the face polygon or near its boundary
	catDelete         // above the face plane
)

// Flood states during visible-region search.
const (
	floodNone int8 = iota
	floodPresent
	floodExtend
	floodDelete
)

// hullFV is one slot of a face's vertex ring: the vertex index and the
// neighboring face across the outgoing edge (to the next ring slot).
type hullFV struct {
	idx int
	nb  *hullFace
}

type hullPointRef struct {
	idx  int
	dist float32
}

// hullFace is a live face of the hull under construction. The ring is CCW
// seen from outside; rings grow past three vertices when coplanar points are
// merged in. pts holds the points outside this face's plane, the furthest
// one first.
type hullFace struct {
	ring   []hullFV
	n      mgl32.Vec3
	d      float32
	bx, by mgl32.Vec3
	ring2D []mgl32.Vec2
	area   float32

	pts     []hullPointRef
	maxDist float32
	node    *container.FNode[*hullFace]

	state int8
	dead  bool
}

type hullState struct {
	points []mgl32.Vec3
	faces  []*hullFace
	tree   *container.FTree[*hullFace]
	scale  float32
}

func newHullState(points []mgl32.Vec3) *hullState {
	h := &hullState{points: points}
	h.tree = container.NewFTree(func(f *hullFace) float32 { return f.maxDist })
	var min, max mgl32.Vec3 = points[0], points[0]
	for _, p := range points {
		for a := 0; a < 3; a++ {
			if p[a] < min[a] {
				min[a] = p[a]
			}
			if p[a] > max[a] {
				max[a] = p[a]
			}
		}
	}
	h.scale = max.Sub(min).Len()
	return h
}

// refresh recomputes the planar caches of a face from its ring and plane
// normal. The normal itself is preserved: extended faces keep the plane they
// were created with.
func (h *hullState) refresh(f *hullFace) {
	p0 := h.points[f.ring[0].idx]
	f.d = f.n.Dot(p0)
	bx := h.points[f.ring[1].idx].Sub(p0)
	bx = bx.Sub(f.n.Mul(f.n.Dot(bx)))
	if l := bx.Len(); l > 0 {
		bx = bx.Mul(1 / l)
	}
	f.bx = bx
	f.by = f.n.Cross(bx)
	f.ring2D = f.ring2D[:0]
	for _, fv := range f.ring {
		rel := h.points[fv.idx].Sub(p0)
		f.ring2D = append(f.ring2D, mgl32.Vec2{rel.Dot(f.bx), rel.Dot(f.by)})
	}
	area := float32(0)
	for i := 1; i+1 < len(f.ring2D); i++ {
		a, b := f.ring2D[i], f.ring2D[i+1]
		area += a[0]*b[1] - a[1]*b[0]
	}
	f.area = math32.Abs(area) / 2
}

func (h *hullState) newFace(verts ...int) *hullFace {
	f := &hullFace{}
	for _, v := range verts {
		f.ring = append(f.ring, hullFV{idx: v})
	}
	p0 := h.points[verts[0]]
	n := h.points[verts[1]].Sub(p0).Cross(h.points[verts[2]].Sub(p0))
	if l := n.Len(); l > 0 {
		n = n.Mul(1 / l)
	}
	f.n = n
	h.refresh(f)
	h.faces = append(h.faces, f)
	return f
}

// categorize classifies point q against face f per the tolerance ladder:
// points coplanar within tolerance and outside the polygon extent, or inside
// it but within a tolerance band of its boundary, are EXTEND; other points
// clearly above are DELETE; everything else is PRESENT.
func (h *hullState) categorize(f *hullFace, q mgl32.Vec3) int {
	dist := f.n.Dot(q) - f.d
	rel := q.Sub(h.points[f.ring[0].idx])
	p := mgl32.Vec2{rel.Dot(f.bx), rel.Dot(f.by)}

	max := math32.Inf(-1)
	for i := range f.ring2D {
		a := f.ring2D[i]
		b := f.ring2D[(i+1)%len(f.ring2D)]
		e := b.Sub(a)
		l := e.Len()
		if l == 0 {
			continue
		}
		// Outward (right-hand) distance from the CCW edge.
		d := (e[1]*(p[0]-a[0]) - e[0]*(p[1]-a[1])) / l
		if d > max {
			max = d
		}
	}
	tol := 1e-5 * math32.Sqrt(f.area)

	if max > 0 {
		if math32.Abs(dist) < tol || math32.Abs(dist) < 1e-5*max {
			return catExtend
		}
		if dist > 0 {
			return catDelete
		}
		return catPresent
	}
	if dist > tol {
		return catDelete
	}
	if (dist+tol)*(dist+tol)+max*max < 4*tol*tol {
		return catExtend
	}
	return catPresent
}

// claim adds a point to a face's outside list, keeping the furthest point at
// the head.
func (f *hullFace) claim(idx int, dist float32) {
	f.pts = append(f.pts, hullPointRef{idx: idx, dist: dist})
	if dist > f.maxDist || len(f.pts) == 1 {
		f.maxDist = dist
		last := len(f.pts) - 1
		f.pts[0], f.pts[last] = f.pts[last], f.pts[0]
	}
}

func (h *hullState) updateTree(f *hullFace) {
	switch {
	case len(f.pts) == 0 && f.node != nil:
		h.tree.Delete(f.node)
		f.node = nil
	case len(f.pts) > 0 && f.node == nil:
		f.node = h.tree.Insert(f)
	case len(f.pts) > 0:
		h.tree.Rekey(f.node)
	}
}

// dropHead removes the head (furthest) point from a face's outside list.
func (h *hullState) dropHead(f *hullFace) {
	f.pts = f.pts[1:]
	f.maxDist = math32.Inf(-1)
	head := 0
	for i, pr := range f.pts {
		if pr.dist > f.maxDist {
			f.maxDist = pr.dist
			head = i
		}
	}
	if len(f.pts) > 0 {
		f.pts[0], f.pts[head] = f.pts[head], f.pts[0]
	}
	h.updateTree(f)
}

// ConvexHull computes the convex hull of the list's unique vertices and
// returns it as a closed CCW triangle list. The input must have at least
// three floats per vertex; coordinates beyond the first three are ignored.
func ConvexHull(vl *VertexList) (*VertexList, error) {
	if vl.FloatsPerVert() < 3 {
		return nil, fmt.Errorf("%w: %d", ErrFloatsPerVert, vl.FloatsPerVert())
	}
	n := vl.VertCount()
	if n < 4 {
		return nil, fmt.Errorf("%w: %d", ErrTooFewPoints, n)
	}
	points := make([]mgl32.Vec3, n)
	for i := range points {
		points[i] = vl.Vec3(i)
	}
	h := newHullState(points)
	if err := h.initSimplex(); err != nil {
		return nil, err
	}
	if err := h.run(); err != nil {
		return nil, err
	}
	return h.emit()
}

// initSimplex builds the starting tetrahedron: the x-extreme pair, the point
// furthest from both, and the point furthest from their plane.
func (h *hullState) initSimplex() error {
	pts := h.points
	imin, imax := 0, 0
	for i, p := range pts {
		if p[0] < pts[imin][0] {
			imin = i
		}
		if p[0] > pts[imax][0] {
			imax = i
		}
	}
	if imin == imax {
		imax = (imin + 1) % len(pts)
	}

	i3, best := -1, float32(-1)
	for i, p := range pts {
		if i == imin || i == imax {
			continue
		}
		if d := p.Sub(pts[imin]).Len() + p.Sub(pts[imax]).Len(); d > best {
			i3, best = i, d
		}
	}

	n := pts[imax].Sub(pts[imin]).Cross(pts[i3].Sub(pts[imin]))
	if n.Len() <= 1e-12*h.scale*h.scale {
		return ErrColinearInput
	}
	n = n.Normalize()
	d := n.Dot(pts[imin])

	i4, bestAbs := -1, float32(0)
	for i, p := range pts {
		if i == imin || i == imax || i == i3 {
			continue
		}
		if a := math32.Abs(n.Dot(p) - d); a > bestAbs {
			i4, bestAbs = i, a
		}
	}
	if i4 < 0 || bestAbs <= 1e-6*h.scale {
		return ErrCoplanarInput
	}

	v0, v1, v2 := imin, imax, i3
	if n.Dot(pts[i4])-d > 0 {
		// Flip the base so the apex ends up below it.
		v1, v2 = v2, v1
	}
	a := i4

	base := h.newFace(v0, v1, v2)
	f1 := h.newFace(a, v1, v0)
	f2 := h.newFace(a, v2, v1)
	f3 := h.newFace(a, v0, v2)

	wire := func(f *hullFace, n0, n1, n2 *hullFace) {
		f.ring[0].nb = n0
		f.ring[1].nb = n1
		f.ring[2].nb = n2
	}
	wire(base, f1, f2, f3)
	wire(f1, f2, base, f3)
	wire(f2, f3, base, f1)
	wire(f3, f1, base, f2)

	for i := range pts {
		if i == v0 || i == v1 || i == v2 || i == a {
			continue
		}
		bestFace, bestDist := (*hullFace)(nil), float32(0)
		for _, f := range h.faces {
			if h.categorize(f, pts[i]) == catDelete {
				if dist := f.n.Dot(pts[i]) - f.d; bestFace == nil || dist > bestDist {
					bestFace, bestDist = f, dist
				}
			}
		}
		if bestFace != nil {
			bestFace.claim(i, bestDist)
		}
	}
	for _, f := range h.faces {
		h.updateTree(f)
	}
	return nil
}

func (h *hullState) run() error {
	for h.tree.Len() > 0 {
		node := h.tree.Max()
		f := node.Item
		if len(f.pts) == 0 {
			h.updateTree(f)
			continue
		}
		p := f.pts[0].idx
		h.addPoint(f, p)
	}
	return nil
}

// addPoint grows the hull to include point p, currently the furthest point
// outside face f.
func (h *hullState) addPoint(f *hullFace, p int) {
	q := h.points[p]

	// p leaves its outside list up front: it either becomes a hull vertex
	// now or is demoted, and must not be nominated again either way.
	h.dropHead(f)

	// A numerical tie can leave the nominated face not strictly below p;
	// look for a DELETE face among its neighbors before giving up on p.
	start := f
	if h.categorize(start, q) != catDelete {
		start = nil
		for _, fv := range f.ring {
			if fv.nb != nil && h.categorize(fv.nb, q) == catDelete {
				start = fv.nb
				break
			}
		}
		if start == nil {
			return
		}
	}

	// Flood the visible region.
	touched := []*hullFace{start}
	start.state = floodDelete
	var queue container.FIFO[*hullFace]
	queue.PushBack(start)
	for queue.Len() > 0 {
		cur, _ := queue.Pop()
		if cur.state == floodPresent {
			continue
		}
		for _, fv := range cur.ring {
			nb := fv.nb
			if nb.state != floodNone {
				continue
			}
			switch h.categorize(nb, q) {
			case catDelete:
				nb.state = floodDelete
				queue.PushBack(nb)
			case catExtend:
				nb.state = floodExtend
				queue.PushBack(nb)
			default:
				nb.state = floodPresent
			}
			touched = append(touched, nb)
		}
	}

	reset := func() {
		for _, t := range touched {
			t.state = floodNone
		}
	}

	ridge, ok := h.traceHorizon(touched)
	if !ok {
		logger.Warn().Int("point", p).Msg("hull: non-simple horizon, demoting point")
		reset()
		return
	}

	h.rebuild(ridge, touched, p)
	reset()
}

type ridgeEntry struct {
	from, to int
	inside   *hullFace
	outside  *hullFace
}

// traceHorizon collects the boundary of the visible region as an ordered
// closed cycle of directed edges. It fails on a pinched (non-simple)
// horizon.
func (h *hullState) traceHorizon(touched []*hullFace) ([]ridgeEntry, bool) {
	// An extend face whose horizon edges are not one contiguous run, or
	// that has none at all, is demoted to delete: it cannot be grown into
	// a single larger polygon.
	for _, vf := range touched {
		if vf.state != floodExtend {
			continue
		}
		runs, inRun := 0, false
		hasHorizon := false
		k := len(vf.ring)
		for i := 0; i < k; i++ {
			onHorizon := vf.ring[i].nb.state == floodPresent
			if onHorizon {
				hasHorizon = true
				if !inRun {
					runs++
				}
			}
			inRun = onHorizon
		}
		if inRun && vf.ring[0].nb.state == floodPresent && runs > 1 {
			runs-- // the run wraps around the ring end
		}
		if !hasHorizon || runs > 1 {
			vf.state = floodDelete
		}
	}

	byFrom := make(map[int]ridgeEntry)
	count := 0
	for _, vf := range touched {
		if vf.state != floodDelete && vf.state != floodExtend {
			continue
		}
		k := len(vf.ring)
		for i := 0; i < k; i++ {
			nb := vf.ring[i].nb
			if nb.state != floodPresent {
				continue
			}
			e := ridgeEntry{
				from:    vf.ring[i].idx,
				to:      vf.ring[(i+1)%k].idx,
				inside:  vf,
				outside: nb,
			}
			if _, dup := byFrom[e.from]; dup {
				return nil, false
			}
			byFrom[e.from] = e
			count++
		}
	}
	if count < 3 {
		return nil, false
	}

	var ridge []ridgeEntry
	var first int
	for from := range byFrom {
		first = from
		break
	}
	for at := first; ; {
		e, ok := byFrom[at]
		if !ok {
			return nil, false
		}
		ridge = append(ridge, e)
		at = e.to
		if at == first {
			break
		}
		if len(ridge) > count {
			return nil, false
		}
	}
	if len(ridge) != count {
		return nil, false
	}
	// A ridge owned entirely by one extend face would regrow that face
	// onto itself; it cannot happen while points are only pooled on faces
	// strictly below them, so treat it as an inconsistency.
	sole := ridge[0].inside
	for _, e := range ridge {
		if e.inside != sole || e.inside.state != floodExtend {
			sole = nil
			break
		}
	}
	if sole != nil {
		return nil, false
	}
	return ridge, true
}

// rebuild replaces the visible region with a strip of faces around the
// ridge: a fresh triangle per delete-side ridge edge, and grown rings for
// coplanar extend faces. Outside points of the removed region are
// redistributed afterwards.
func (h *hullState) rebuild(ridge []ridgeEntry, touched []*hullFace, p int) {
	// Pool the points to redistribute and detach the visible faces. Extend
	// faces with a horizon run survive (they are regrown below); all other
	// visible faces, including interior ones with no horizon edge, die.
	var pool []int
	for _, vf := range touched {
		if vf.state != floodDelete && vf.state != floodExtend {
			continue
		}
		for _, pr := range vf.pts {
			if pr.idx != p {
				pool = append(pool, pr.idx)
			}
		}
		vf.pts = nil
		h.updateTree(vf)
		if vf.state == floodDelete {
			vf.dead = true
		}
	}

	// Group consecutive ridge edges into strip elements.
	type element struct {
		face  *hullFace
		verts []int
		fresh bool
	}
	var elems []element
	k := len(ridge)
	// Rotate so a group does not straddle the cycle start.
	startAt := 0
	for i := 0; i < k; i++ {
		prev := ridge[(i+k-1)%k]
		cur := ridge[i]
		if cur.inside.state != floodExtend || prev.inside != cur.inside {
			startAt = i
			break
		}
	}
	for i := 0; i < k; {
		e := ridge[(startAt+i)%k]
		if e.inside.state == floodExtend {
			verts := []int{e.from, e.to}
			j := i + 1
			for j < k {
				nxt := ridge[(startAt+j)%k]
				if nxt.inside != e.inside {
					break
				}
				verts = append(verts, nxt.to)
				j++
			}
			elems = append(elems, element{face: e.inside, verts: verts})
			i = j
		} else {
			elems = append(elems, element{verts: []int{e.from, e.to}, fresh: true})
			i++
		}
	}

	// Build or regrow each element's ring.
	outsideOf := make(map[[2]int]*hullFace, k)
	for _, e := range ridge {
		outsideOf[[2]int{e.from, e.to}] = e.outside
	}
	for i := range elems {
		el := &elems[i]
		if el.fresh {
			el.face = h.newFace(el.verts[0], el.verts[1], p)
		} else {
			ring := make([]hullFV, 0, len(el.verts)+1)
			for _, v := range el.verts {
				ring = append(ring, hullFV{idx: v})
			}
			ring = append(ring, hullFV{idx: p})
			el.face.ring = ring
			h.refresh(el.face)
		}
		// Horizon-edge neighbors.
		for j := 0; j+1 < len(el.verts); j++ {
			g := outsideOf[[2]int{el.verts[j], el.verts[j+1]}]
			el.face.ring[j].nb = g
			h.pointBack(g, el.verts[j+1], el.verts[j], el.face)
		}
	}
	// Stitch the strip: wm->p borders the next element, p->w0 the previous.
	for i := range elems {
		next := &elems[(i+1)%len(elems)]
		cur := &elems[i]
		m := len(cur.face.ring)
		cur.face.ring[m-2].nb = next.face // wm -> p
		next.face.ring[len(next.face.ring)-1].nb = cur.face
	}

	// Redistribute the pooled points to the element faces.
	claimed := make(map[int]bool, len(pool))
	for _, idx := range pool {
		if claimed[idx] {
			continue
		}
		claimed[idx] = true
		q := h.points[idx]
		var best *hullFace
		var bestDist float32
		for i := range elems {
			ef := elems[i].face
			if h.categorize(ef, q) != catDelete {
				continue
			}
			if dist := ef.n.Dot(q) - ef.d; best == nil || dist > bestDist {
				best, bestDist = ef, dist
			}
		}
		if best != nil {
			best.claim(idx, bestDist)
		}
	}
	for i := range elems {
		h.updateTree(elems[i].face)
	}
}

// pointBack updates face g's neighbor pointer across the directed edge
// from->to to point at nf.
func (h *hullState) pointBack(g *hullFace, from, to int, nf *hullFace) {
	k := len(g.ring)
	for i := 0; i < k; i++ {
		if g.ring[i].idx == from && g.ring[(i+1)%k].idx == to {
			g.ring[i].nb = nf
			return
		}
	}
	logger.Warn().Msg("hull: neighbor backlink not found")
}

// emit fan-triangulates the live faces into a fresh triangle list.
func (h *hullState) emit() (*VertexList, error) {
	out, err := NewVertexList(3, PrimitiveTriangle)
	if err != nil {
		return nil, err
	}
	for _, f := range h.faces {
		if f.dead {
			continue
		}
		for i := 1; i+1 < len(f.ring); i++ {
			for _, v := range []int{f.ring[0].idx, f.ring[i].idx, f.ring[i+1].idx} {
				if _, err := out.AddVec3(h.points[v]); err != nil {
					return nil, err
				}
			}
		}
	}
	if out.TriangleCount() < 4 {
		return nil, fmt.Errorf("%w: hull collapsed", ErrInternal)
	}
	return out, nil
}
