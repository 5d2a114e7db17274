package bptree

import (
	"slices"
)

// NodeView is a read-only copy of one node handed out by Walk. Changing a
// view has no effect on the tree.
type NodeView[K any] struct {
	ID       NodeID
	Kind     Kind
	Depth    int // 0 for the root
	Keys     []K
	Children []NodeID // Branch only, left to right
	Next     NodeID   // Leaf only, InvalidNodeID on the last leaf
}

// IsLeaf reports whether the view describes a leaf.
func (v NodeView[K]) IsLeaf() bool {
	return v.Kind == KindLeaf
}

// Walker is the read-only traversal contract consumed by renderers.
type Walker[K any] interface {
	Walk(fn func(NodeView[K]) error) error
}

// Walk visits every node breadth first, level by level and left to right
// within a level. A non-nil error from fn stops the walk and is returned.
func (t *Tree[K, V]) Walk(fn func(NodeView[K]) error) error {
	type item struct {
		id    NodeID
		depth int
	}

	queue := []item{{id: t.root}}
	for len(queue) > 0 {
		it := queue[0]
		queue = queue[1:]

		n := t.node(it.id)
		view := NodeView[K]{
			ID:    n.ID,
			Kind:  n.Kind,
			Depth: it.depth,
			Keys:  slices.Clone(n.Keys),
			Next:  n.Next,
		}
		if !n.IsLeaf() {
			view.Children = slices.Clone(n.Children)
			for _, child := range n.Children {
				queue = append(queue, item{id: child, depth: it.depth + 1})
			}
		}

		if err := fn(view); err != nil {
			return err
		}
	}
	return nil
}
