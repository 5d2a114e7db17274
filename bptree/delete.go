package bptree

import (
	"github.com/cockroachdb/errors"

	"github.com/alexhholmes/bptdb/internal/algo"
	"github.com/alexhholmes/bptdb/internal/base"
)

// Delete removes key and its value. Returns ErrNotFound if key is absent.
//
// Algorithm:
//  1. Find the leaf containing the key, remembering the path
//  2. Remove the key-value pair
//  3. While the current node underflows and is not the root:
//     a. Borrow from the left sibling if it has a key to spare
//     b. Otherwise borrow from the right sibling
//     c. Otherwise merge with a sibling and continue with the parent,
//     which has lost a separator
//  4. A branch root left with no keys is replaced by its only child
func (t *Tree[K, V]) Delete(key K) error {
	leaf, path := t.findLeaf(key, t.newPath())

	pos, found := algo.FindKey(leaf.Keys, key, t.cmp)
	if !found {
		return ErrNotFound
	}

	leaf.Keys = algo.RemoveAt(leaf.Keys, pos)
	leaf.Values = algo.RemoveAt(leaf.Values, pos)
	t.size--

	t.rebalance(leaf, path)
	t.mutated()
	return nil
}

// rebalance restores the minimum fill from n upwards. A borrow settles the
// underflow for good; a merge removes one key from the parent, which is
// then checked in turn, so the loop runs at most height times.
func (t *Tree[K, V]) rebalance(n *base.Node[K, V], path []pathElem) {
	for len(path) > 0 && n.IsUnderflow(t.minKeys) {
		elem := path[len(path)-1]
		path = path[:len(path)-1]

		parent := t.node(elem.id)
		if !t.handleUnderflow(n, parent, elem.childIndex) {
			break
		}
		n = parent
	}

	t.shrinkRoot()
}

// handleUnderflow fixes an underflowing n, the idx-th child of parent. It
// returns true if it merged, meaning parent lost a key.
func (t *Tree[K, V]) handleUnderflow(n, parent *base.Node[K, V], idx int) bool {
	var left, right *base.Node[K, V]
	if idx > 0 {
		left = t.node(parent.Children[idx-1])
		if left.HasExcessKeys(t.minKeys) {
			t.borrowFromLeft(n, left, parent, idx)
			return false
		}
	}
	if idx < len(parent.Children)-1 {
		right = t.node(parent.Children[idx+1])
		if right.HasExcessKeys(t.minKeys) {
			t.borrowFromRight(n, right, parent, idx)
			return false
		}
	}

	switch {
	case left != nil:
		t.mergeNodes(left, n, parent, idx-1)
	case right != nil:
		t.mergeNodes(n, right, parent, idx)
	default:
		panic(errors.AssertionFailedf("node %d has no siblings under parent %d", n.ID, parent.ID))
	}
	return true
}

// borrowFromLeft moves the last entry of left to the front of n, the
// idx-th child of parent.
func (t *Tree[K, V]) borrowFromLeft(n, left, parent *base.Node[K, V], idx int) {
	sepIdx := idx - 1

	switch n.Kind {
	case base.KindLeaf:
		var k K
		var v V
		k, left.Keys = algo.TakeBack(left.Keys)
		v, left.Values = algo.TakeBack(left.Values)
		n.Keys = algo.InsertAt(n.Keys, 0, k)
		n.Values = algo.InsertAt(n.Values, 0, v)
		parent.Keys[sepIdx] = n.Keys[0]

	case base.KindBranch:
		// Rotate right through the parent: the separator comes down in
		// front of n and left's last key replaces it.
		var k K
		var child NodeID
		n.Keys = algo.InsertAt(n.Keys, 0, parent.Keys[sepIdx])
		k, left.Keys = algo.TakeBack(left.Keys)
		parent.Keys[sepIdx] = k
		child, left.Children = algo.TakeBack(left.Children)
		n.Children = algo.InsertAt(n.Children, 0, child)

	default:
		panic(n.Check())
	}
}

// borrowFromRight moves the first entry of right to the back of n, the
// idx-th child of parent.
func (t *Tree[K, V]) borrowFromRight(n, right, parent *base.Node[K, V], idx int) {
	sepIdx := idx

	switch n.Kind {
	case base.KindLeaf:
		var k K
		var v V
		k, right.Keys = algo.TakeFront(right.Keys)
		v, right.Values = algo.TakeFront(right.Values)
		n.Keys = append(n.Keys, k)
		n.Values = append(n.Values, v)
		parent.Keys[sepIdx] = right.Keys[0]

	case base.KindBranch:
		var k K
		var child NodeID
		n.Keys = append(n.Keys, parent.Keys[sepIdx])
		k, right.Keys = algo.TakeFront(right.Keys)
		parent.Keys[sepIdx] = k
		child, right.Children = algo.TakeFront(right.Children)
		n.Children = append(n.Children, child)

	default:
		panic(n.Check())
	}
}

// mergeNodes folds right into left, removes their separator (at sepIdx)
// and the link to right from parent, and frees right.
func (t *Tree[K, V]) mergeNodes(left, right, parent *base.Node[K, V], sepIdx int) {
	sep := parent.Keys[sepIdx]
	parent.Keys = algo.RemoveAt(parent.Keys, sepIdx)
	parent.Children = algo.RemoveAt(parent.Children, sepIdx+1)

	switch left.Kind {
	case base.KindLeaf:
		left.Keys = append(left.Keys, right.Keys...)
		left.Values = append(left.Values, right.Values...)
		left.Next = right.Next

	case base.KindBranch:
		// The separator comes down between the two halves.
		left.Keys = append(left.Keys, sep)
		left.Keys = append(left.Keys, right.Keys...)
		left.Children = append(left.Children, right.Children...)

	default:
		panic(left.Check())
	}

	t.nodes.Free(right.ID)
}

// shrinkRoot replaces a branch root with no keys by its only child.
func (t *Tree[K, V]) shrinkRoot() {
	root := t.node(t.root)
	if root.IsLeaf() || len(root.Keys) > 0 {
		return
	}
	t.root = root.Children[0]
	t.nodes.Free(root.ID)
}
