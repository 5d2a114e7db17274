package bptree

import (
	"github.com/alexhholmes/bptdb/internal/algo"
	"github.com/alexhholmes/bptdb/internal/base"
)

// Cursor provides ordered iteration over the leaf chain.
//
// A cursor is bound to the tree state it was positioned in: any mutation of
// the tree invalidates it, after which Next reports false. Reposition with
// First or Seek to continue.
type Cursor[K, V any] struct {
	tree    *Tree[K, V]
	leaf    *base.Node[K, V]
	index   int
	version uint64
	valid   bool
}

// Cursor creates an unpositioned cursor. Call First or Seek to position it.
func (t *Tree[K, V]) Cursor() *Cursor[K, V] {
	return &Cursor[K, V]{tree: t}
}

// First positions the cursor at the smallest key.
func (c *Cursor[K, V]) First() (K, V, bool) {
	t := c.tree
	n := t.node(t.root)
	for !n.IsLeaf() {
		n = t.node(n.Children[0])
	}
	return c.settle(n, 0)
}

// Seek positions the cursor at the first key >= key.
func (c *Cursor[K, V]) Seek(key K) (K, V, bool) {
	t := c.tree
	leaf, _ := t.findLeaf(key, nil)
	return c.settle(leaf, algo.FindInsertPosition(leaf.Keys, key, t.cmp))
}

// Next advances to the following key.
func (c *Cursor[K, V]) Next() (K, V, bool) {
	if !c.Valid() {
		return c.invalidate()
	}
	return c.settle(c.leaf, c.index+1)
}

// Valid reports whether the cursor is positioned on a key and the tree has
// not changed since.
func (c *Cursor[K, V]) Valid() bool {
	return c.valid && c.version == c.tree.version
}

// Key returns the current key. Only meaningful while Valid.
func (c *Cursor[K, V]) Key() K {
	if !c.Valid() {
		var zero K
		return zero
	}
	return c.leaf.Keys[c.index]
}

// Value returns the current value. Only meaningful while Valid.
func (c *Cursor[K, V]) Value() V {
	if !c.Valid() {
		var zero V
		return zero
	}
	return c.leaf.Values[c.index]
}

// settle positions the cursor at index i of leaf, following the leaf chain
// past exhausted leaves.
func (c *Cursor[K, V]) settle(leaf *base.Node[K, V], i int) (K, V, bool) {
	for i >= len(leaf.Keys) {
		if leaf.Next == InvalidNodeID {
			return c.invalidate()
		}
		leaf = c.tree.node(leaf.Next)
		i = 0
	}

	c.leaf = leaf
	c.index = i
	c.version = c.tree.version
	c.valid = true
	return leaf.Keys[i], leaf.Values[i], true
}

func (c *Cursor[K, V]) invalidate() (K, V, bool) {
	c.leaf = nil
	c.valid = false
	var zk K
	var zv V
	return zk, zv, false
}
