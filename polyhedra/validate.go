package polyhedra

import (
	"fmt"
)

// ValidateManifold checks that every edge of the triangle list is shared by
// exactly two triangles, traversed once in each direction (consistent
// winding).
func ValidateManifold(vl *VertexList) error {
	if err := requireTriangles(vl); err != nil {
		return err
	}

	type edgeUse struct{ fwd, rev int }
	edges := make(map[[2]uint32]*edgeUse)
	for t := 0; t < vl.TriangleCount(); t++ {
		a, b, c := vl.Triangle(t)
		for _, e := range [3][2]uint32{{a, b}, {b, c}, {c, a}} {
			k, fwd := e, true
			if k[0] > k[1] {
				k[0], k[1] = k[1], k[0]
				fwd = false
			}
			u := edges[k]
			if u == nil {
				u = &edgeUse{}
				edges[k] = u
			}
			if fwd {
				u.fwd++
			} else {
				u.rev++
			}
		}
	}

	for k, u := range edges {
		if u.fwd+u.rev != 2 {
			return ValidationError{
				Type:    "Manifold",
				Message: fmt.Sprintf("edge %d-%d has %d faces (expected 2)", k[0], k[1], u.fwd+u.rev),
			}
		}
		if u.fwd != 1 || u.rev != 1 {
			return ValidationError{
				Type:    "Winding",
				Message: fmt.Sprintf("edge %d-%d traversed %d forward, %d reverse", k[0], k[1], u.fwd, u.rev),
			}
		}
	}
	return nil
}

// ValidateGeometry checks for degenerate (near-zero-area) triangles.
func ValidateGeometry(vl *VertexList) error {
	if err := requireTriangles(vl); err != nil {
		return err
	}
	for t := 0; t < vl.TriangleCount(); t++ {
		a, b, c := vl.Triangle(t)
		pa, pb, pc := vl.Vec3(int(a)), vl.Vec3(int(b)), vl.Vec3(int(c))
		area := pb.Sub(pa).Cross(pc.Sub(pa)).Len() / 2
		if area < 1e-12 {
			return ValidationError{
				Type:    "Geometry",
				Message: fmt.Sprintf("triangle %d has degenerate area %e", t, area),
			}
		}
	}
	return nil
}

// ValidateTopology checks each connected component for the Euler
// characteristic of a sphere.
func ValidateTopology(vl *VertexList) error {
	comps, err := SplitComponents(vl)
	if err != nil {
		return err
	}
	for i, comp := range comps {
		vef, err := NewVef(comp)
		if err != nil {
			return err
		}
		chi := len(vef.Verts) - len(vef.Edges) + len(vef.Faces)
		if chi != 2 {
			return ValidationError{
				Type:    "Topology",
				Message: fmt.Sprintf("component %d has Euler characteristic %d (expected 2)", i, chi),
			}
		}
	}
	return nil
}

// ValidateComplete runs every validation check.
func ValidateComplete(vl *VertexList) error {
	if err := ValidateManifold(vl); err != nil {
		return err
	}
	if err := ValidateTopology(vl); err != nil {
		return err
	}
	return ValidateGeometry(vl)
}
