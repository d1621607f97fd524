package polyhedra

import (
	"github.com/sksmith/polyhedra/container"
)

// SplitComponents partitions a triangle list into edge-connected components,
// each returned as its own list. A mesh that is already connected comes back
// as a single piece.
func SplitComponents(vl *VertexList) ([]*VertexList, error) {
	if err := requireTriangles(vl); err != nil {
		return nil, err
	}
	nTris := vl.TriangleCount()
	if nTris == 0 {
		return nil, nil
	}

	// Adjacency through shared unique-vertex edges.
	edgeTris := make(map[[2]uint32][]int)
	for t := 0; t < nTris; t++ {
		a, b, c := vl.Triangle(t)
		for _, e := range [3][2]uint32{{a, b}, {b, c}, {c, a}} {
			if e[0] > e[1] {
				e[0], e[1] = e[1], e[0]
			}
			edgeTris[e] = append(edgeTris[e], t)
		}
	}

	comp := make([]int, nTris)
	for i := range comp {
		comp[i] = -1
	}
	nComps := 0
	for seed := 0; seed < nTris; seed++ {
		if comp[seed] >= 0 {
			continue
		}
		var queue container.UniqueFIFO[int]
		queue.Push(seed)
		for queue.Len() > 0 {
			t, _ := queue.Pop()
			comp[t] = nComps
			a, b, c := vl.Triangle(t)
			for _, e := range [3][2]uint32{{a, b}, {b, c}, {c, a}} {
				if e[0] > e[1] {
					e[0], e[1] = e[1], e[0]
				}
				for _, nb := range edgeTris[e] {
					if comp[nb] < 0 {
						queue.Push(nb)
					}
				}
			}
		}
		nComps++
	}

	pieces := make([]*VertexList, nComps)
	for i := range pieces {
		p, err := NewVertexList(vl.FloatsPerVert(), PrimitiveTriangle)
		if err != nil {
			return nil, err
		}
		pieces[i] = p
	}
	for t := 0; t < nTris; t++ {
		p := pieces[comp[t]]
		a, b, c := vl.Triangle(t)
		for _, ix := range []uint32{a, b, c} {
			if _, err := p.Add(vl.Vertex(int(ix))); err != nil {
				return nil, err
			}
		}
	}
	return pieces, nil
}
