package polyhedra

import (
	"github.com/go-gl/mathgl/mgl32"
)

// TransformFlags adjust how a transform is applied to a point.
type TransformFlags uint32

const (
	// TransformNoOffset applies only the rotational part.
	TransformNoOffset TransformFlags = 1 << iota
	// TransformInvert applies the inverse transform.
	TransformInvert
)

// Transform is a rigid-body transform: a rotation followed by a
// translation.
type Transform struct {
	Rot mgl32.Quat
	Off mgl32.Vec3
}

// NewTransform returns the identity transform.
func NewTransform() Transform {
	return Transform{Rot: mgl32.QuatIdent()}
}

// TranslateTransform returns a pure translation.
func TranslateTransform(off mgl32.Vec3) Transform {
	return Transform{Rot: mgl32.QuatIdent(), Off: off}
}

// RotateTransform returns a rotation by angle (radians) about axis.
func RotateTransform(angle float32, axis mgl32.Vec3) Transform {
	return Transform{Rot: mgl32.QuatRotate(angle, axis.Normalize())}
}

// QuatTransform returns a pure rotation from a quaternion.
func QuatTransform(q mgl32.Quat) Transform {
	return Transform{Rot: q.Normalize()}
}

// Combine returns the transform equivalent to applying other first and t
// second.
func (t Transform) Combine(other Transform) Transform {
	return Transform{
		Rot: t.Rot.Mul(other.Rot),
		Off: t.Rot.Rotate(other.Off).Add(t.Off),
	}
}

// Invert returns the inverse transform.
func (t Transform) Invert() Transform {
	ri := t.Rot.Inverse()
	return Transform{Rot: ri, Off: ri.Rotate(t.Off.Mul(-1))}
}

// Apply transforms a point. TransformInvert applies the inverse;
// TransformNoOffset drops the translation (of whichever transform is
// applied).
func (t Transform) Apply(p mgl32.Vec3, flags TransformFlags) mgl32.Vec3 {
	tt := t
	if flags&TransformInvert != 0 {
		tt = t.Invert()
	}
	out := tt.Rot.Rotate(p)
	if flags&TransformNoOffset == 0 {
		out = out.Add(tt.Off)
	}
	return out
}

// ApplyToList returns a copy of the list with the first three floats of
// every vertex transformed; any extra per-vertex floats are carried over
// unchanged.
func (t Transform) ApplyToList(vl *VertexList, flags TransformFlags) (*VertexList, error) {
	return mapList(vl, func(v []float32) {
		p := t.Apply(mgl32.Vec3{v[0], v[1], v[2]}, flags)
		v[0], v[1], v[2] = p[0], p[1], p[2]
	})
}

// ScaleList returns a copy of the list with positions scaled uniformly.
func ScaleList(vl *VertexList, s float32) (*VertexList, error) {
	return mapList(vl, func(v []float32) {
		v[0] *= s
		v[1] *= s
		v[2] *= s
	})
}

func mapList(vl *VertexList, fn func([]float32)) (*VertexList, error) {
	if vl.FloatsPerVert() < 3 {
		return nil, ErrFloatsPerVert
	}
	out, err := NewVertexList(vl.FloatsPerVert(), vl.Primitive())
	if err != nil {
		return nil, err
	}
	for i := 0; i < vl.IndexCount(); i++ {
		v := append([]float32(nil), vl.Vertex(int(vl.Index(i)))...)
		fn(v)
		if _, err := out.Add(v); err != nil {
			return nil, err
		}
	}
	return out, nil
}
