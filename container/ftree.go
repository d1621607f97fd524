// Package container provides the support structures shared by the geometric
// algorithms: an order-statistic balanced tree keyed by float32 and a pair of
// FIFO queues.
//
// The tree is a treap with subtree counts, so rank queries (including the
// median) run in O(log n). Keys are produced by a key function supplied at
// construction and are re-evaluated on every comparison, which allows the key
// to depend on external state (a "dynamic key"). Callers that mutate such
// state must only do so in ways that preserve the relative order of the items
// currently in the tree, or must Rekey the affected nodes.
package container

// FNode is a handle to an item stored in an FTree. Callers keep the handle to
// delete or rekey the item later.
type FNode[T any] struct {
	Item T

	left, right, parent *FNode[T]
	size                uint32
	prio                uint64
	seq                 uint64
}

// FTree is an order-statistic balanced binary search tree over float32 keys.
// Items with equal keys are ordered by insertion; Rekey preserves that order.
// The zero value is not usable; construct with NewFTree.
type FTree[T any] struct {
	key  func(T) float32
	root *FNode[T]
	rng  uint64
	seq  uint64
}

// NewFTree creates an empty tree ordered by the given key function. The
// function is invoked on every comparison, so it may consult external state.
func NewFTree[T any](key func(T) float32) *FTree[T] {
	return &FTree[T]{key: key, rng: 0x9e3779b97f4a7c15}
}

func (t *FTree[T]) rand() uint64 {
	// xorshift64; balancing only needs weak pseudo-randomness and a
	// deterministic sequence keeps runs reproducible.
	x := t.rng
	x ^= x << 13
	x ^= x >> 7
	x ^= x << 17
	t.rng = x
	return x
}

func (t *FTree[T]) less(a, b *FNode[T]) bool {
	ka, kb := t.key(a.Item), t.key(b.Item)
	if ka != kb {
		return ka < kb
	}
	return a.seq < b.seq
}

func size[T any](n *FNode[T]) uint32 {
	if n == nil {
		return 0
	}
	return n.size
}

// Len returns the number of items in the tree.
func (t *FTree[T]) Len() int {
	return int(size(t.root))
}

func (t *FTree[T]) replaceChild(parent, old, repl *FNode[T]) {
	if parent == nil {
		t.root = repl
	} else if parent.left == old {
		parent.left = repl
	} else {
		parent.right = repl
	}
	if repl != nil {
		repl.parent = parent
	}
}

func (t *FTree[T]) rotateRight(y *FNode[T]) {
	x := y.left
	y.left = x.right
	if x.right != nil {
		x.right.parent = y
	}
	t.replaceChild(y.parent, y, x)
	x.right = y
	y.parent = x
	x.size = y.size
	y.size = 1 + size(y.left) + size(y.right)
}

func (t *FTree[T]) rotateLeft(x *FNode[T]) {
	y := x.right
	x.right = y.left
	if y.left != nil {
		y.left.parent = x
	}
	t.replaceChild(x.parent, x, y)
	y.left = x
	x.parent = y
	y.size = x.size
	x.size = 1 + size(x.left) + size(x.right)
}

// Insert adds an item and returns its node handle.
func (t *FTree[T]) Insert(item T) *FNode[T] {
	n := &FNode[T]{Item: item, size: 1, prio: t.rand(), seq: t.seq}
	t.seq++
	t.insertNode(n)
	return n
}

func (t *FTree[T]) insertNode(n *FNode[T]) {
	if t.root == nil {
		t.root = n
		return
	}
	cur := t.root
	for {
		cur.size++
		if t.less(n, cur) {
			if cur.left == nil {
				cur.left = n
				n.parent = cur
				break
			}
			cur = cur.left
		} else {
			if cur.right == nil {
				cur.right = n
				n.parent = cur
				break
			}
			cur = cur.right
		}
	}
	for n.parent != nil && n.prio < n.parent.prio {
		if n.parent.left == n {
			t.rotateRight(n.parent)
		} else {
			t.rotateLeft(n.parent)
		}
	}
}

// Delete removes the node from the tree. The handle must have been returned
// by Insert on this tree and not deleted already.
func (t *FTree[T]) Delete(n *FNode[T]) {
	for n.left != nil || n.right != nil {
		if n.left != nil && (n.right == nil || n.left.prio < n.right.prio) {
			t.rotateRight(n)
		} else {
			t.rotateLeft(n)
		}
	}
	p := n.parent
	t.replaceChild(p, n, nil)
	for ; p != nil; p = p.parent {
		p.size--
	}
	n.parent, n.left, n.right = nil, nil, nil
	n.size = 1
}

// Rekey repositions a node after its key changed. The node keeps its
// insertion sequence, so items that become equal-keyed stay ordered by their
// original insertion.
func (t *FTree[T]) Rekey(n *FNode[T]) {
	t.Delete(n)
	t.insertNode(n)
}

// Min returns the node with the lowest key, or nil if the tree is empty.
func (t *FTree[T]) Min() *FNode[T] {
	if t.root == nil {
		return nil
	}
	n := t.root
	for n.left != nil {
		n = n.left
	}
	return n
}

// Max returns the node with the highest key, or nil if the tree is empty.
func (t *FTree[T]) Max() *FNode[T] {
	if t.root == nil {
		return nil
	}
	n := t.root
	for n.right != nil {
		n = n.right
	}
	return n
}

// Next returns the in-order successor of n, or nil.
func (t *FTree[T]) Next(n *FNode[T]) *FNode[T] {
	if n.right != nil {
		n = n.right
		for n.left != nil {
			n = n.left
		}
		return n
	}
	for n.parent != nil && n.parent.right == n {
		n = n.parent
	}
	return n.parent
}

// Prev returns the in-order predecessor of n, or nil.
func (t *FTree[T]) Prev(n *FNode[T]) *FNode[T] {
	if n.left != nil {
		n = n.left
		for n.right != nil {
			n = n.right
		}
		return n
	}
	for n.parent != nil && n.parent.left == n {
		n = n.parent
	}
	return n.parent
}

// Select returns the node with zero-based rank i in key order, or nil if i is
// out of range.
func (t *FTree[T]) Select(i int) *FNode[T] {
	if i < 0 || i >= t.Len() {
		return nil
	}
	n := t.root
	for {
		ls := int(size(n.left))
		switch {
		case i < ls:
			n = n.left
		case i == ls:
			return n
		default:
			i -= ls + 1
			n = n.right
		}
	}
}

// Median returns the lower-median node, or nil if the tree is empty.
func (t *FTree[T]) Median() *FNode[T] {
	if t.Len() == 0 {
		return nil
	}
	return t.Select((t.Len() - 1) / 2)
}

// Floor returns the rightmost node whose key is <= k, or nil.
func (t *FTree[T]) Floor(k float32) *FNode[T] {
	var best *FNode[T]
	for cur := t.root; cur != nil; {
		if t.key(cur.Item) <= k {
			best = cur
			cur = cur.right
		} else {
			cur = cur.left
		}
	}
	return best
}
