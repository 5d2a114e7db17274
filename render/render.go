// Package render draws B+ trees from their read-only traversal.
//
// Renderers only see what bptree.Walker exposes, so they work the same for
// a bare bptree.Tree and for a bptdb.Table.
package render

import (
	"github.com/cockroachdb/errors"

	"github.com/alexhholmes/bptdb/bptree"
)

// ErrNoRoot is returned when a walk yields no nodes.
var ErrNoRoot = errors.New("walk produced no nodes")

// layout is a tree rebuilt from a breadth-first walk.
type layout[K any] struct {
	root   bptree.NodeID
	nodes  map[bptree.NodeID]bptree.NodeView[K]
	levels [][]bptree.NodeID
	leaves []bptree.NodeID // leaf chain order, starting at the leftmost leaf
}

func collect[K any](w bptree.Walker[K]) (*layout[K], error) {
	l := &layout[K]{nodes: make(map[bptree.NodeID]bptree.NodeView[K])}
	err := w.Walk(func(v bptree.NodeView[K]) error {
		if len(l.nodes) == 0 {
			l.root = v.ID
		}
		l.nodes[v.ID] = v
		for len(l.levels) <= v.Depth {
			l.levels = append(l.levels, nil)
		}
		l.levels[v.Depth] = append(l.levels[v.Depth], v.ID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(l.nodes) == 0 {
		return nil, ErrNoRoot
	}

	// The leftmost leaf is first on the deepest level; follow Next from
	// there so a broken chain shows up as a short chain.
	deepest := l.levels[len(l.levels)-1]
	seen := make(map[bptree.NodeID]bool)
	for id := deepest[0]; id != bptree.InvalidNodeID && !seen[id]; {
		v, ok := l.nodes[id]
		if !ok || !v.IsLeaf() {
			break
		}
		seen[id] = true
		l.leaves = append(l.leaves, id)
		id = v.Next
	}
	return l, nil
}
