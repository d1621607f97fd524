package polyhedra

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"math"
	"sync"

	"github.com/dchest/siphash"
	"github.com/go-gl/mathgl/mgl32"
)

// Primitive identifies how a VertexList's index array is interpreted.
type Primitive int

const (
	PrimitiveUnspecified Primitive = iota
	PrimitivePoint
	PrimitiveLine
	PrimitiveTriangle
)

func (p Primitive) String() string {
	switch p {
	case PrimitivePoint:
		return "point"
	case PrimitiveLine:
		return "line"
	case PrimitiveTriangle:
		return "triangle"
	default:
		return "unspecified"
	}
}

// hashKey is the process-wide 128-bit key for the byte-wise vertex hash,
// seeded once from OS entropy.
var (
	hashKeyOnce sync.Once
	hashKey0    uint64
	hashKey1    uint64
)

func hashBytes(b []byte) uint64 {
	hashKeyOnce.Do(func() {
		var seed [16]byte
		if _, err := rand.Read(seed[:]); err != nil {
			// Entropy exhaustion leaves a fixed key; dedup stays
			// correct, only adversarial bucket spread is lost.
			seed = [16]byte{0x70, 0x6f, 0x6c, 0x79}
		}
		hashKey0 = binary.LittleEndian.Uint64(seed[0:8])
		hashKey1 = binary.LittleEndian.Uint64(seed[8:16])
	})
	return siphash.Hash(hashKey0, hashKey1, b)
}

// VertexList is an indexed vertex buffer. Adding a vertex whose byte
// representation matches an existing one returns the existing index, so
// geometry built through a VertexList is de-duplicated exactly.
type VertexList struct {
	floatsPerVert int
	primitive     Primitive
	verts         []float32
	indices       []uint32
	dedup         map[uint64][]uint32
}

// NewVertexList creates an empty list. floatsPerVert must be at least 1.
func NewVertexList(floatsPerVert int, primitive Primitive) (*VertexList, error) {
	if floatsPerVert < 1 {
		return nil, fmt.Errorf("%w: %d", ErrFloatsPerVert, floatsPerVert)
	}
	return &VertexList{
		floatsPerVert: floatsPerVert,
		primitive:     primitive,
		dedup:         make(map[uint64][]uint32),
	}, nil
}

// FloatsPerVert returns the number of floats in each vertex record.
func (vl *VertexList) FloatsPerVert() int { return vl.floatsPerVert }

// Primitive returns the list's primitive type.
func (vl *VertexList) Primitive() Primitive { return vl.primitive }

// VertCount returns the number of unique vertex records.
func (vl *VertexList) VertCount() int { return len(vl.verts) / vl.floatsPerVert }

// IndexCount returns the length of the index array.
func (vl *VertexList) IndexCount() int { return len(vl.indices) }

// Index returns the i'th entry of the index array.
func (vl *VertexList) Index(i int) uint32 { return vl.indices[i] }

// Vertex returns the i'th unique vertex record. The returned slice aliases
// the list's storage and must not be modified.
func (vl *VertexList) Vertex(i int) []float32 {
	return vl.verts[i*vl.floatsPerVert : (i+1)*vl.floatsPerVert]
}

// Vec3 returns the position of the i'th unique vertex. The list must have at
// least 3 floats per vertex.
func (vl *VertexList) Vec3(i int) mgl32.Vec3 {
	v := vl.Vertex(i)
	return mgl32.Vec3{v[0], v[1], v[2]}
}

// Vec2 returns the first two floats of the i'th unique vertex.
func (vl *VertexList) Vec2(i int) mgl32.Vec2 {
	v := vl.Vertex(i)
	return mgl32.Vec2{v[0], v[1]}
}

func vertBytes(vert []float32) []byte {
	b := make([]byte, 4*len(vert))
	for i, f := range vert {
		binary.LittleEndian.PutUint32(b[4*i:], math.Float32bits(f))
	}
	return b
}

func vertEqual(a, b []float32) bool {
	for i := range a {
		if math.Float32bits(a[i]) != math.Float32bits(b[i]) {
			return false
		}
	}
	return true
}

// Add appends a vertex record, de-duplicating against existing records by
// byte identity, and appends the resulting index to the index array. It
// returns the index of the record.
func (vl *VertexList) Add(vert []float32) (uint32, error) {
	if len(vert) != vl.floatsPerVert {
		return 0, fmt.Errorf("%w: got %d, want %d", ErrVertexArity, len(vert), vl.floatsPerVert)
	}
	if vl.dedup == nil {
		return 0, ErrFinalized
	}
	h := hashBytes(vertBytes(vert))
	for _, idx := range vl.dedup[h] {
		if vertEqual(vl.Vertex(int(idx)), vert) {
			vl.indices = append(vl.indices, idx)
			return idx, nil
		}
	}
	n := vl.VertCount()
	if n >= math.MaxUint32 {
		return 0, ErrCapacity
	}
	idx := uint32(n)
	vl.verts = append(vl.verts, vert...)
	vl.dedup[h] = append(vl.dedup[h], idx)
	vl.indices = append(vl.indices, idx)
	return idx, nil
}

// AddVec3 adds a 3-float position vertex.
func (vl *VertexList) AddVec3(v mgl32.Vec3) (uint32, error) {
	return vl.Add([]float32{v[0], v[1], v[2]})
}

// AddVec2 adds a 2-float vertex.
func (vl *VertexList) AddVec2(v mgl32.Vec2) (uint32, error) {
	return vl.Add([]float32{v[0], v[1]})
}

// AddIndex appends an existing index to the index array. Valid indices are
// [0, VertCount); VertCount itself is additionally accepted as a sentinel.
func (vl *VertexList) AddIndex(index uint32) (uint32, error) {
	if int(index) > vl.VertCount() {
		return 0, fmt.Errorf("%w: %d of %d", ErrIndexRange, index, vl.VertCount())
	}
	vl.indices = append(vl.indices, index)
	return index, nil
}

// Finalize drops the de-duplication map. Add is invalid afterwards.
func (vl *VertexList) Finalize() {
	vl.dedup = nil
}

// TriangleCount returns the number of complete triangles in the index array.
func (vl *VertexList) TriangleCount() int { return len(vl.indices) / 3 }

// Triangle returns the three unique-vertex indices of triangle i.
func (vl *VertexList) Triangle(i int) (uint32, uint32, uint32) {
	return vl.indices[3*i], vl.indices[3*i+1], vl.indices[3*i+2]
}

// Stats returns a short description of the list.
func (vl *VertexList) Stats() string {
	return fmt.Sprintf("%s: verts=%d, indices=%d, floats/vert=%d",
		vl.primitive, vl.VertCount(), vl.IndexCount(), vl.floatsPerVert)
}

// requireTriangles validates that vl is a triangle list with positions.
func requireTriangles(vl *VertexList) error {
	if vl.primitive != PrimitiveTriangle {
		return fmt.Errorf("%w: %s", ErrBadPrimitive, vl.primitive)
	}
	if vl.floatsPerVert < 3 {
		return fmt.Errorf("%w: %d", ErrFloatsPerVert, vl.floatsPerVert)
	}
	if len(vl.indices)%3 != 0 {
		return fmt.Errorf("%w: index count %d not divisible by 3", ErrBadPrimitive, len(vl.indices))
	}
	return nil
}
