package bptree

import (
	"github.com/alexhholmes/bptdb/internal/algo"
	"github.com/alexhholmes/bptdb/internal/base"
)

// Insert adds key with value. Returns ErrDuplicateKey if key is already
// present; use Update to change an existing value.
//
// Algorithm:
//  1. Find the leaf for key, remembering the path
//  2. Insert the pair at its sorted position
//  3. While the current node overflows, split it and insert the separator
//     into the parent taken from the path
//  4. If the root splits, a new root is created and the tree grows a level
func (t *Tree[K, V]) Insert(key K, value V) error {
	leaf, path := t.findLeaf(key, t.newPath())

	pos, found := algo.FindKey(leaf.Keys, key, t.cmp)
	if found {
		return ErrDuplicateKey
	}

	leaf.Keys = algo.InsertAt(leaf.Keys, pos, key)
	leaf.Values = algo.InsertAt(leaf.Values, pos, value)
	t.size++

	t.splitUp(leaf, path)
	t.mutated()
	return nil
}

// splitUp resolves an overflow at n by splitting it and pushing the
// separator into the parent, repeating while the parent overflows. Each
// step removes the overflow at one level and moves up one level, so the
// loop runs at most height times.
func (t *Tree[K, V]) splitUp(n *base.Node[K, V], path []pathElem) {
	for n.IsOverflow(t.order) {
		sep, right := t.splitNode(n)

		if len(path) == 0 {
			t.growRoot(n, sep, right)
			return
		}

		elem := path[len(path)-1]
		path = path[:len(path)-1]

		parent := t.node(elem.id)
		parent.Keys = algo.InsertAt(parent.Keys, elem.childIndex, sep)
		parent.Children = algo.InsertAt(parent.Children, elem.childIndex+1, right.ID)
		n = parent
	}
}

// splitNode moves the upper part of an overflowing node into a new right
// sibling and returns the separator for the parent.
//
// Leaf: the left keeps ceil(n/2) entries, the right is linked after it in
// the leaf chain and its first key is copied up.
// Branch: the middle key moves up and appears in neither half.
func (t *Tree[K, V]) splitNode(n *base.Node[K, V]) (K, *base.Node[K, V]) {
	right := t.nodes.Alloc(n.Kind)

	switch n.Kind {
	case base.KindLeaf:
		mid := algo.LeafSplitPoint(len(n.Keys))
		right.Keys = append(right.Keys, n.Keys[mid:]...)
		right.Values = append(right.Values, n.Values[mid:]...)
		n.Keys = truncate(n.Keys, mid)
		n.Values = truncate(n.Values, mid)

		right.Next = n.Next
		n.Next = right.ID
		return right.Keys[0], right

	case base.KindBranch:
		mid := algo.BranchSplitPoint(len(n.Keys))
		sep := n.Keys[mid]
		right.Keys = append(right.Keys, n.Keys[mid+1:]...)
		right.Children = append(right.Children, n.Children[mid+1:]...)
		n.Keys = truncate(n.Keys, mid)
		n.Children = truncate(n.Children, mid+1)
		return sep, right

	default:
		panic(n.Check())
	}
}

// growRoot installs a new branch root over left and right.
func (t *Tree[K, V]) growRoot(left *base.Node[K, V], sep K, right *base.Node[K, V]) {
	root := t.nodes.Alloc(base.KindBranch)
	root.Keys = append(root.Keys, sep)
	root.Children = append(root.Children, left.ID, right.ID)
	t.root = root.ID
}

// truncate shortens s to n elements, zeroing the dropped tail so the
// backing array does not keep moved keys and values alive.
func truncate[T any](s []T, n int) []T {
	var zero T
	for i := n; i < len(s); i++ {
		s[i] = zero
	}
	return s[:n]
}
