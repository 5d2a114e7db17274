package bptree

import (
	"github.com/alexhholmes/bptdb/internal/algo"
	"github.com/alexhholmes/bptdb/internal/base"
)

// pathElem represents one level in the descent from root to leaf: the
// branch visited and which child was followed.
type pathElem struct {
	id         NodeID
	childIndex int
}

// findLeaf descends from the root to the leaf whose range contains key.
// When path is non-nil, each branch visited is appended to it so that split
// and merge propagation can walk back up without parent pointers.
func (t *Tree[K, V]) findLeaf(key K, path []pathElem) (*base.Node[K, V], []pathElem) {
	n := t.node(t.root)
	for {
		switch n.Kind {
		case base.KindLeaf:
			return n, path
		case base.KindBranch:
			i := algo.FindChildIndex(n.Keys, key, t.cmp)
			if path != nil {
				path = append(path, pathElem{id: n.ID, childIndex: i})
			}
			n = t.node(n.Children[i])
		default:
			panic(n.Check())
		}
	}
}

// newPath returns an empty path sized for the current height.
func (t *Tree[K, V]) newPath() []pathElem {
	return make([]pathElem, 0, 8)
}

// Search returns the value stored under key.
func (t *Tree[K, V]) Search(key K) (V, bool) {
	leaf, _ := t.findLeaf(key, nil)
	if i, found := algo.FindKey(leaf.Keys, key, t.cmp); found {
		return leaf.Values[i], true
	}
	var zero V
	return zero, false
}

// Contains reports whether key is present.
func (t *Tree[K, V]) Contains(key K) bool {
	_, found := t.Search(key)
	return found
}

// Update replaces the value stored under key in place. The tree shape does
// not change. Returns ErrNotFound if key is absent.
func (t *Tree[K, V]) Update(key K, value V) error {
	leaf, _ := t.findLeaf(key, nil)
	i, found := algo.FindKey(leaf.Keys, key, t.cmp)
	if !found {
		return ErrNotFound
	}
	leaf.Values[i] = value
	t.mutated()
	return nil
}

// Min returns the smallest key and its value.
func (t *Tree[K, V]) Min() (K, V, bool) {
	n := t.node(t.root)
	for !n.IsLeaf() {
		n = t.node(n.Children[0])
	}
	// Only the root leaf can be empty, and then the whole tree is.
	if len(n.Keys) == 0 {
		var zk K
		var zv V
		return zk, zv, false
	}
	return n.Keys[0], n.Values[0], true
}

// Max returns the largest key and its value.
func (t *Tree[K, V]) Max() (K, V, bool) {
	n := t.node(t.root)
	for !n.IsLeaf() {
		n = t.node(n.Children[len(n.Children)-1])
	}
	if len(n.Keys) == 0 {
		var zk K
		var zv V
		return zk, zv, false
	}
	last := len(n.Keys) - 1
	return n.Keys[last], n.Values[last], true
}
