package bptree

import (
	"cmp"

	"github.com/cockroachdb/errors"

	"github.com/alexhholmes/bptdb/internal/base"
)

// NodeID addresses a node within one tree.
type NodeID = base.NodeID

// Kind tags a node as a leaf or a branch.
type Kind = base.Kind

const (
	InvalidNodeID = base.InvalidNodeID
	KindLeaf      = base.KindLeaf
	KindBranch    = base.KindBranch
)

// Entry is a key/value pair returned by range scans.
type Entry[K, V any] struct {
	Key   K
	Value V
}

// Tree is a B+ tree of fixed order. The zero value is not usable; create
// trees with New or NewOrdered.
type Tree[K, V any] struct {
	order   int
	minKeys int
	cmp     func(a, b K) int
	opts    options

	nodes *base.Arena[K, V]
	root  NodeID
	size  int

	// Bumped by every successful mutation so cursors can detect that the
	// nodes they point at may have moved or been freed.
	version uint64
}

// New creates an empty tree of the given order ordered by cmp, which must
// return a negative number when a < b, zero when a == b and a positive
// number when a > b.
func New[K, V any](order int, cmp func(a, b K) int, opts ...Option) (*Tree[K, V], error) {
	if order < MinOrder {
		return nil, errors.Wrapf(ErrInvalidOrder, "order %d", order)
	}
	if cmp == nil {
		return nil, errors.New("b+ tree requires a comparison function")
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	t := &Tree[K, V]{
		order:   order,
		minKeys: base.MinKeys(order),
		cmp:     cmp,
		opts:    o,
		nodes:   base.NewArena[K, V](),
	}
	t.root = t.nodes.Alloc(base.KindLeaf).ID
	return t, nil
}

// NewOrdered creates an empty tree over a naturally ordered key type.
func NewOrdered[K cmp.Ordered, V any](order int, opts ...Option) (*Tree[K, V], error) {
	return New[K, V](order, cmp.Compare[K], opts...)
}

// Order returns the maximum number of children of a branch.
func (t *Tree[K, V]) Order() int {
	return t.order
}

// MinKeys returns the fewest keys a non-root node may hold.
func (t *Tree[K, V]) MinKeys() int {
	return t.minKeys
}

// Len returns the number of key/value pairs stored.
func (t *Tree[K, V]) Len() int {
	return t.size
}

// IsEmpty returns true if the tree has no keys.
func (t *Tree[K, V]) IsEmpty() bool {
	return t.size == 0
}

// Root returns the id of the root node.
func (t *Tree[K, V]) Root() NodeID {
	return t.root
}

// NodeCount returns the number of live nodes.
func (t *Tree[K, V]) NodeCount() int {
	return t.nodes.Len()
}

// Height returns the number of levels, 1 for a tree whose root is a leaf.
func (t *Tree[K, V]) Height() int {
	h := 1
	for n := t.node(t.root); !n.IsLeaf(); n = t.node(n.Children[0]) {
		h++
	}
	return h
}

// node resolves id, treating a dangling link as an engine bug.
func (t *Tree[K, V]) node(id NodeID) *base.Node[K, V] {
	n := t.nodes.Get(id)
	if n == nil {
		panic(errors.AssertionFailedf("dangling node reference %d", id))
	}
	return n
}

// mutated records a completed mutation and, when enabled, checks every
// structural invariant.
func (t *Tree[K, V]) mutated() {
	t.version++
	if t.opts.checkInvariants {
		if err := t.Verify(); err != nil {
			panic(err)
		}
	}
}
