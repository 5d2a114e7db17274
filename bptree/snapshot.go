package bptree

import (
	"slices"

	"github.com/cockroachdb/errors"

	"github.com/alexhholmes/bptdb/internal/base"
)

// NodeSnapshot is a detached copy of one node and its links.
type NodeSnapshot[K, V any] struct {
	ID       NodeID
	Kind     Kind
	Keys     []K
	Values   []V
	Children []NodeID
	Next     NodeID
}

// Snapshot is a detached copy of a whole tree: its order, root and every
// node. It shares no memory with the tree it was taken from.
type Snapshot[K, V any] struct {
	Order int
	Root  NodeID
	Nodes []NodeSnapshot[K, V]
}

// Snapshot copies the tree's full structure, nodes in breadth-first order.
func (t *Tree[K, V]) Snapshot() Snapshot[K, V] {
	s := Snapshot[K, V]{
		Order: t.order,
		Root:  t.root,
		Nodes: make([]NodeSnapshot[K, V], 0, t.nodes.Len()),
	}

	queue := []NodeID{t.root}
	for len(queue) > 0 {
		n := t.node(queue[0])
		queue = queue[1:]

		ns := NodeSnapshot[K, V]{
			ID:   n.ID,
			Kind: n.Kind,
			Keys: slices.Clone(n.Keys),
			Next: n.Next,
		}
		if n.IsLeaf() {
			ns.Values = slices.Clone(n.Values)
		} else {
			ns.Children = slices.Clone(n.Children)
			queue = append(queue, n.Children...)
		}
		s.Nodes = append(s.Nodes, ns)
	}
	return s
}

// Restore rebuilds a tree from a snapshot. Node ids are reassigned; links
// are translated accordingly. The result is verified against every tree
// invariant, and any defect is reported as ErrCorruptSnapshot.
func Restore[K, V any](s Snapshot[K, V], cmp func(a, b K) int, opts ...Option) (*Tree[K, V], error) {
	if s.Order < MinOrder {
		return nil, errors.Wrapf(ErrInvalidOrder, "order %d", s.Order)
	}

	t, err := New[K, V](s.Order, cmp, opts...)
	if err != nil {
		return nil, err
	}
	if len(s.Nodes) == 0 {
		return nil, errors.Wrap(ErrCorruptSnapshot, "no nodes")
	}

	// The empty root allocated by New is replaced by the snapshot's nodes.
	t.nodes.Free(t.root)
	t.root = InvalidNodeID

	ids := make(map[NodeID]NodeID, len(s.Nodes))
	restored := make([]*base.Node[K, V], 0, len(s.Nodes))
	for _, ns := range s.Nodes {
		if ns.ID == InvalidNodeID {
			return nil, errors.Wrap(ErrCorruptSnapshot, "node with invalid id")
		}
		if _, dup := ids[ns.ID]; dup {
			return nil, errors.Wrapf(ErrCorruptSnapshot, "duplicate node id %d", ns.ID)
		}
		if ns.Kind != base.KindLeaf && ns.Kind != base.KindBranch {
			return nil, errors.Wrapf(ErrCorruptSnapshot, "node %d has unknown kind %d", ns.ID, ns.Kind)
		}

		n := t.nodes.Alloc(ns.Kind)
		n.Keys = append(n.Keys, ns.Keys...)
		if ns.Kind == base.KindLeaf {
			n.Values = append(n.Values, ns.Values...)
			t.size += len(ns.Keys)
		}
		ids[ns.ID] = n.ID
		restored = append(restored, n)
	}

	translate := func(id NodeID) (NodeID, error) {
		nid, ok := ids[id]
		if !ok {
			return InvalidNodeID, errors.Wrapf(ErrCorruptSnapshot, "link to unknown node %d", id)
		}
		return nid, nil
	}

	for i, ns := range s.Nodes {
		n := restored[i]
		for _, child := range ns.Children {
			nid, err := translate(child)
			if err != nil {
				return nil, err
			}
			n.Children = append(n.Children, nid)
		}
		if ns.Next != InvalidNodeID {
			if n.Next, err = translate(ns.Next); err != nil {
				return nil, err
			}
		}
	}

	if t.root, err = translate(s.Root); err != nil {
		return nil, err
	}

	if err := t.Verify(); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "restored tree failed verification"), ErrCorruptSnapshot)
	}
	return t, nil
}
