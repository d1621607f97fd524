package container

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type keyed struct {
	k   float32
	tag int
}

func newKeyedTree() *FTree[*keyed] {
	return NewFTree(func(it *keyed) float32 { return it.k })
}

func TestFTreeOrdering(t *testing.T) {
	tree := newKeyedTree()
	keys := []float32{5, 1, 4, 2, 3, 0, 6}
	for i, k := range keys {
		tree.Insert(&keyed{k: k, tag: i})
	}

	require.Equal(t, len(keys), tree.Len())

	var got []float32
	for n := tree.Min(); n != nil; n = tree.Next(n) {
		got = append(got, n.Item.k)
	}
	assert.Equal(t, []float32{0, 1, 2, 3, 4, 5, 6}, got)

	var rev []float32
	for n := tree.Max(); n != nil; n = tree.Prev(n) {
		rev = append(rev, n.Item.k)
	}
	assert.Equal(t, []float32{6, 5, 4, 3, 2, 1, 0}, rev)
}

func TestFTreeStableTies(t *testing.T) {
	tree := newKeyedTree()
	for i := 0; i < 10; i++ {
		tree.Insert(&keyed{k: 1, tag: i})
	}
	i := 0
	for n := tree.Min(); n != nil; n = tree.Next(n) {
		assert.Equal(t, i, n.Item.tag, "equal keys must keep insertion order")
		i++
	}
}

func TestFTreeDelete(t *testing.T) {
	tree := newKeyedTree()
	nodes := make([]*FNode[*keyed], 0, 100)
	for i := 0; i < 100; i++ {
		nodes = append(nodes, tree.Insert(&keyed{k: float32(i % 17), tag: i}))
	}

	r := rand.New(rand.NewSource(1))
	for _, i := range r.Perm(100) {
		tree.Delete(nodes[i])
	}
	assert.Equal(t, 0, tree.Len())
	assert.Nil(t, tree.Min())
}

func TestFTreeRekey(t *testing.T) {
	tree := newKeyedTree()
	a := tree.Insert(&keyed{k: 1})
	b := tree.Insert(&keyed{k: 2})
	c := tree.Insert(&keyed{k: 3})

	a.Item.k = 10
	tree.Rekey(a)

	assert.Same(t, b, tree.Min())
	assert.Same(t, a, tree.Max())
	assert.Same(t, c, tree.Prev(tree.Max()))
}

func TestFTreeMedianAndSelect(t *testing.T) {
	tests := []struct {
		name   string
		keys   []float32
		median float32
	}{
		{"Odd", []float32{9, 1, 5, 3, 7}, 5},
		{"Even", []float32{4, 1, 3, 2}, 2},
		{"Single", []float32{42}, 42},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			tree := newKeyedTree()
			for _, k := range test.keys {
				tree.Insert(&keyed{k: k})
			}
			require.NotNil(t, tree.Median())
			assert.Equal(t, test.median, tree.Median().Item.k)

			sorted := append([]float32(nil), test.keys...)
			sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
			for i, want := range sorted {
				assert.Equal(t, want, tree.Select(i).Item.k)
			}
			assert.Nil(t, tree.Select(len(test.keys)))
			assert.Nil(t, tree.Select(-1))
		})
	}
}

func TestFTreeFloor(t *testing.T) {
	tree := newKeyedTree()
	for _, k := range []float32{10, 20, 30} {
		tree.Insert(&keyed{k: k})
	}

	assert.Nil(t, tree.Floor(5))
	assert.Equal(t, float32(10), tree.Floor(10).Item.k)
	assert.Equal(t, float32(20), tree.Floor(25).Item.k)
	assert.Equal(t, float32(30), tree.Floor(99).Item.k)
}

func TestFTreeDynamicKey(t *testing.T) {
	// The key function may consult external state, as long as relative
	// order of the stored items is preserved between structural updates.
	offset := float32(0)
	tree := NewFTree(func(it *keyed) float32 { return it.k + offset })

	tree.Insert(&keyed{k: 1})
	tree.Insert(&keyed{k: 2})

	offset = 100
	assert.Equal(t, float32(101), tree.key(tree.Min().Item))
	assert.Nil(t, tree.Floor(100))
	assert.NotNil(t, tree.Floor(101))
}

func TestFTreeRandomized(t *testing.T) {
	tree := newKeyedTree()
	r := rand.New(rand.NewSource(7))
	live := make(map[*FNode[*keyed]]struct{})
	var model []float32

	for i := 0; i < 2000; i++ {
		if r.Float32() < 0.6 || len(model) == 0 {
			k := float32(r.Intn(50))
			live[tree.Insert(&keyed{k: k})] = struct{}{}
			model = append(model, k)
		} else {
			for n := range live {
				tree.Delete(n)
				delete(live, n)
				for j, k := range model {
					if k == n.Item.k {
						model = append(model[:j], model[j+1:]...)
						break
					}
				}
				break
			}
		}
	}

	require.Equal(t, len(model), tree.Len())
	sort.Slice(model, func(i, j int) bool { return model[i] < model[j] })
	i := 0
	for n := tree.Min(); n != nil; n = tree.Next(n) {
		assert.Equal(t, model[i], n.Item.k)
		i++
	}
}
