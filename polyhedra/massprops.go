package polyhedra

import (
	"github.com/go-gl/mathgl/mgl32"
)

// MassProperties holds the exact volume integrals of a closed triangle mesh
// with unit density: signed volume, center of mass, and the inertia tensor
// about the center of mass in row-major order.
type MassProperties struct {
	Volume  float32
	COM     mgl32.Vec3
	Inertia [9]float32
}

// CalculateMassProperties integrates over the surface of a closed CCW
// triangle mesh. Each triangle contributes the closed-form integrals of the
// signed tetrahedron it spans with the origin, so the result is exact for
// the polyhedron up to rounding. Inverted meshes yield negative volume.
func CalculateMassProperties(vl *VertexList) (*MassProperties, error) {
	if err := requireTriangles(vl); err != nil {
		return nil, err
	}

	var vol, cx, cy, cz float64
	var xx, yy, zz, xy, yz, zx float64

	sq := func(a, b, c float64) float64 {
		return a*a + b*b + c*c + a*b + a*c + b*c
	}
	mix := func(a1, a2, b1, b2, c1, c2 float64) float64 {
		return 2*(a1*a2+b1*b2+c1*c2) +
			a1*b2 + a2*b1 + a1*c2 + a2*c1 + b1*c2 + b2*c1
	}

	for t := 0; t < vl.TriangleCount(); t++ {
		i0, i1, i2 := vl.Triangle(t)
		a := vl.Vec3(int(i0))
		b := vl.Vec3(int(i1))
		c := vl.Vec3(int(i2))
		ax, ay, az := float64(a[0]), float64(a[1]), float64(a[2])
		bx, by, bz := float64(b[0]), float64(b[1]), float64(b[2])
		cx3, cy3, cz3 := float64(c[0]), float64(c[1]), float64(c[2])

		det := ax*(by*cz3-bz*cy3) - ay*(bx*cz3-bz*cx3) + az*(bx*cy3-by*cx3)

		vol += det / 6
		cx += det / 24 * (ax + bx + cx3)
		cy += det / 24 * (ay + by + cy3)
		cz += det / 24 * (az + bz + cz3)

		xx += det / 60 * sq(ax, bx, cx3)
		yy += det / 60 * sq(ay, by, cy3)
		zz += det / 60 * sq(az, bz, cz3)
		xy += det / 120 * mix(ax, ay, bx, by, cx3, cy3)
		yz += det / 120 * mix(ay, az, by, bz, cy3, cz3)
		zx += det / 120 * mix(az, ax, bz, bx, cz3, cx3)
	}

	mp := &MassProperties{Volume: float32(vol)}
	if vol != 0 {
		cx /= vol
		cy /= vol
		cz /= vol
	}
	mp.COM = mgl32.Vec3{float32(cx), float32(cy), float32(cz)}

	// Inertia about the origin, then shifted to the center of mass.
	ixx := yy + zz - vol*(cy*cy+cz*cz)
	iyy := xx + zz - vol*(cx*cx+cz*cz)
	izz := xx + yy - vol*(cx*cx+cy*cy)
	ixy := -(xy - vol*cx*cy)
	iyz := -(yz - vol*cy*cz)
	izx := -(zx - vol*cz*cx)

	mp.Inertia = [9]float32{
		float32(ixx), float32(ixy), float32(izx),
		float32(ixy), float32(iyy), float32(iyz),
		float32(izx), float32(iyz), float32(izz),
	}
	return mp, nil
}
