package polyhedra

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/sksmith/polyhedra/container"
)

const (
	// acdNumEdges bounds how many concave edges are probed per cut.
	acdNumEdges = 16
	// acdNumAngles divides the dihedral sweep; index 0 (the first face's
	// own plane) is deliberately excluded from the sweep.
	acdNumAngles = 9
	// acdMaxIters is a safety bound on the outer refinement loop.
	acdMaxIters = 1000
)

// acdPart is one piece of the decomposition with its convex hull and
// concavity error (hull volume minus piece volume).
type acdPart struct {
	vl        *VertexList
	hull      *VertexList
	err       float64
	abandoned bool
}

func newACDPart(vl *VertexList) *acdPart {
	p := &acdPart{vl: vl, hull: vl}
	if vl.VertCount() <= 4 {
		p.abandoned = true
		return p
	}
	hull, err := ConvexHull(vl)
	if err != nil {
		p.abandoned = true
		return p
	}
	p.hull = hull
	p.err = concavity(vl, hull)
	return p
}

func concavity(piece, hull *VertexList) float64 {
	mpP, err1 := CalculateMassProperties(piece)
	mpH, err2 := CalculateMassProperties(hull)
	if err1 != nil || err2 != nil {
		return 0
	}
	e := abs64(float64(mpH.Volume)) - abs64(float64(mpP.Volume))
	if e < 0 {
		e = 0
	}
	return e
}

func abs64(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// ConvexDecomp splits a mesh into approximately convex pieces until the
// total concavity error drops below threshold times the mesh volume, and
// returns the convex hulls of the pieces. Pieces that cannot be cut further
// are kept as they are.
func ConvexDecomp(vl *VertexList, threshold float32) ([]*VertexList, error) {
	if err := requireTriangles(vl); err != nil {
		return nil, err
	}
	mp, err := CalculateMassProperties(vl)
	if err != nil {
		return nil, err
	}
	target := abs64(float64(mp.Volume)) * float64(threshold)

	comps, err := SplitComponents(vl)
	if err != nil {
		return nil, err
	}
	var parts []*acdPart
	for _, c := range comps {
		parts = append(parts, newACDPart(c))
	}

	for iter := 0; iter < acdMaxIters; iter++ {
		total := 0.0
		worst := -1
		for i, p := range parts {
			total += p.err
			if !p.abandoned && (worst < 0 || p.err > parts[worst].err) {
				worst = i
			}
		}
		logger.Debug().
			Int("parts", len(parts)).
			Float64("error", total).
			Float64("target", target).
			Msg("convex decomposition pass")
		if total <= target || worst < 0 || parts[worst].err == 0 {
			break
		}

		pieces, ok := cutPart(parts[worst])
		if !ok {
			parts[worst].abandoned = true
			continue
		}
		parts = append(parts[:worst], parts[worst+1:]...)
		parts = append(parts, pieces...)
	}

	hulls := make([]*VertexList, len(parts))
	for i, p := range parts {
		hulls[i] = p.hull
	}
	return hulls, nil
}

// cutPart picks a cutting plane for the part by probing its most concave
// edges: for each edge, a ray from the edge midpoint along the dihedral
// bisector is cast against the part's hull; the edges escaping furthest are
// swept with candidate planes between their two face planes, and the plane
// minimizing the summed squared concavity of the resulting pieces wins.
func cutPart(p *acdPart) ([]*acdPart, bool) {
	vef, err := NewVef(p.vl)
	if err != nil || !vef.Closed() {
		return nil, false
	}
	hullVef, err := NewVef(p.hull)
	if err != nil {
		return nil, false
	}

	type probe struct {
		edge int
		dist float32
	}
	tree := container.NewFTree(func(pr probe) float32 { return pr.dist })
	start := 0
	for e := range vef.Edges {
		z, _, ang, err := vef.EdgeInfo(e)
		if err != nil {
			continue
		}
		ed := &vef.Edges[e]
		mid := vef.Verts[ed.V[0]].Pos.Add(vef.Verts[ed.V[1]].Pos).Mul(0.5)
		n0 := vef.Faces[ed.F[0]].N
		// Rotating n0 by ang-π reaches the other face's plane, so half
		// of that follows the normal bisector: outward at ridges, out
		// through the mouth of a concavity at valleys.
		dir := mgl32.QuatRotate((ang-math32.Pi)/2, z).Rotate(n0)
		if t, ok := hullVef.ConvexRayDist(mid, dir, &start); ok {
			tree.Insert(probe{edge: e, dist: t})
		}
	}

	type candidate struct {
		score  float64
		pieces []*acdPart
	}
	best := candidate{score: math32.MaxFloat32 * 1e10}
	rank := 0
	for node := tree.Max(); node != nil && rank < acdNumEdges; node = tree.Prev(node) {
		e := node.Item.edge
		ed := &vef.Edges[e]
		z, _, ang, err := vef.EdgeInfo(e)
		if err != nil {
			continue
		}
		mid := vef.Verts[ed.V[0]].Pos.Add(vef.Verts[ed.V[1]].Pos).Mul(0.5)
		n0 := vef.Faces[ed.F[0]].N
		bias := 1 + 1e-3*abs64(float64(rank)-float64(acdNumEdges-1)/2)

		for a := acdNumAngles - 1; a >= 1; a-- {
			rot := ang * float32(a) / acdNumAngles
			n := mgl32.QuatRotate(rot, z).Rotate(n0)
			pieces, err := PlaneCut(p.vl, n, n.Dot(mid))
			if err != nil || len(pieces) < 2 {
				continue
			}
			var parts []*acdPart
			score := 0.0
			for _, piece := range pieces {
				np := newACDPart(piece)
				parts = append(parts, np)
				score += np.err * np.err
			}
			score *= bias
			if score < best.score {
				best = candidate{score: score, pieces: parts}
			}
		}
		rank++
	}
	if best.pieces == nil {
		return nil, false
	}
	return best.pieces, true
}
