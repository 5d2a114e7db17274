// Package bptree implements an in-memory B+ tree keyed by any totally
// ordered type.
//
// # Overview
//
//   - O(log n) lookup, insertion, update and deletion
//   - Range scans over the linked leaf chain
//   - Nodes live in an arena and refer to each other by NodeID
//
// # Node Structure
//
// A tree of order m holds at most m-1 keys per node and, except for the
// root, at least ceil(m/2)-1. Leaves hold key/value pairs and a link to the
// next leaf. Branches hold separator keys and child links; child i holds
// keys >= Keys[i-1] and < Keys[i]. Leaf splits copy the right half's first
// key up as the separator, so a search for a key equal to a separator
// descends to the right.
//
// # Usage
//
//	tree, err := bptree.NewOrdered[int, string](4)
//
//	err = tree.Insert(10, "ten")
//	value, found := tree.Search(10)
//
//	for _, e := range tree.RangeQuery(5, 30) {
//	    fmt.Println(e.Key, e.Value)
//	}
//
// # Concurrency
//
// A Tree is not safe for concurrent use. Mutations must be serialized by the
// caller, and readers must not run alongside a writer: a split or merge
// touches several nodes with no intermediate consistent state.
//
// # Snapshots
//
// Snapshot exposes every node and link so the whole tree can be persisted
// by an outer layer; Restore rebuilds a tree from one and verifies it.
package bptree
