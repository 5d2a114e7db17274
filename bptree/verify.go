package bptree

import (
	"github.com/cockroachdb/errors"

	"github.com/alexhholmes/bptdb/internal/base"
)

// bound is an optional key bound used while checking separator ranges.
type bound[K any] struct {
	key K
	set bool
}

// Verify checks every structural invariant of the tree and returns an
// assertion failure describing the first violation found:
//
//   - every node is well formed and reachable exactly once from the root
//   - every leaf is at the same depth
//   - non-root nodes hold between MinKeys and Order-1 keys; a branch root
//     holds at least one key
//   - keys are strictly increasing within a node and lie inside the range
//     their ancestors' separators allow
//   - the leaf chain visits every leaf once, left to right
//   - the stored size matches the number of leaf entries
//
// A failure always indicates an engine bug, never caller misuse.
func (t *Tree[K, V]) Verify() error {
	v := verifier[K, V]{
		tree:      t,
		seen:      make(map[NodeID]struct{}, t.nodes.Len()),
		leafDepth: -1,
	}
	if err := v.visit(t.root, 0, bound[K]{}, bound[K]{}); err != nil {
		return err
	}

	if len(v.seen) != t.nodes.Len() {
		return errors.AssertionFailedf("%d nodes reachable but %d allocated", len(v.seen), t.nodes.Len())
	}
	if v.entries != t.size {
		return errors.AssertionFailedf("size is %d but leaves hold %d entries", t.size, v.entries)
	}

	// The leaf chain must follow the same left-to-right order as the
	// depth-first visit.
	for i, leaf := range v.leaves {
		want := InvalidNodeID
		if i+1 < len(v.leaves) {
			want = v.leaves[i+1].ID
		}
		if leaf.Next != want {
			return errors.AssertionFailedf("leaf %d links to %d, expected %d", leaf.ID, leaf.Next, want)
		}
	}
	return nil
}

type verifier[K, V any] struct {
	tree      *Tree[K, V]
	seen      map[NodeID]struct{}
	leaves    []*base.Node[K, V]
	leafDepth int
	entries   int
}

func (v *verifier[K, V]) visit(id NodeID, depth int, lo, hi bound[K]) error {
	t := v.tree
	n := t.nodes.Get(id)
	if n == nil {
		return errors.AssertionFailedf("dangling node reference %d", id)
	}
	if _, dup := v.seen[id]; dup {
		return errors.AssertionFailedf("node %d reachable more than once", id)
	}
	v.seen[id] = struct{}{}

	if err := n.Check(); err != nil {
		return err
	}

	isRoot := id == t.root
	maxKeys := base.MaxKeys(t.order)
	switch {
	case len(n.Keys) > maxKeys:
		return errors.AssertionFailedf("node %d holds %d keys, max %d", id, len(n.Keys), maxKeys)
	case !isRoot && len(n.Keys) < t.minKeys:
		return errors.AssertionFailedf("node %d holds %d keys, min %d", id, len(n.Keys), t.minKeys)
	case isRoot && !n.IsLeaf() && len(n.Keys) == 0:
		return errors.AssertionFailedf("branch root %d holds no keys", id)
	}

	for i, k := range n.Keys {
		if i > 0 && t.cmp(n.Keys[i-1], k) >= 0 {
			return errors.AssertionFailedf("node %d keys out of order at index %d", id, i)
		}
		if lo.set && t.cmp(k, lo.key) < 0 {
			return errors.AssertionFailedf("node %d key at index %d below separator bound", id, i)
		}
		if hi.set && t.cmp(k, hi.key) >= 0 {
			return errors.AssertionFailedf("node %d key at index %d not below separator bound", id, i)
		}
	}

	switch n.Kind {
	case base.KindLeaf:
		if v.leafDepth == -1 {
			v.leafDepth = depth
		} else if v.leafDepth != depth {
			return errors.AssertionFailedf("leaf %d at depth %d, other leaves at depth %d", id, depth, v.leafDepth)
		}
		v.leaves = append(v.leaves, n)
		v.entries += len(n.Keys)

	case base.KindBranch:
		for i, child := range n.Children {
			clo, chi := lo, hi
			if i > 0 {
				clo = bound[K]{key: n.Keys[i-1], set: true}
			}
			if i < len(n.Keys) {
				chi = bound[K]{key: n.Keys[i], set: true}
			}
			if err := v.visit(child, depth+1, clo, chi); err != nil {
				return err
			}
		}
	}
	return nil
}
