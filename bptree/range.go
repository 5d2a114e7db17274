package bptree

import (
	"github.com/alexhholmes/bptdb/internal/algo"
)

// Scan calls fn for every pair with start <= key <= end in ascending key
// order, stopping early if fn returns false. Nothing is visited when
// start > end.
func (t *Tree[K, V]) Scan(start, end K, fn func(key K, value V) bool) {
	if t.cmp(start, end) > 0 {
		return
	}

	leaf, _ := t.findLeaf(start, nil)
	i := algo.FindInsertPosition(leaf.Keys, start, t.cmp)
	for {
		for ; i < len(leaf.Keys); i++ {
			if t.cmp(leaf.Keys[i], end) > 0 {
				return
			}
			if !fn(leaf.Keys[i], leaf.Values[i]) {
				return
			}
		}
		if leaf.Next == InvalidNodeID {
			return
		}
		leaf = t.node(leaf.Next)
		i = 0
	}
}

// RangeQuery returns every pair with start <= key <= end in ascending key
// order. The result is a fresh slice; an inverted range yields an empty
// result rather than an error.
func (t *Tree[K, V]) RangeQuery(start, end K) []Entry[K, V] {
	var out []Entry[K, V]
	t.Scan(start, end, func(key K, value V) bool {
		out = append(out, Entry[K, V]{Key: key, Value: value})
		return true
	})
	return out
}

// ForEach calls fn for every pair in ascending key order, stopping early if
// fn returns false.
func (t *Tree[K, V]) ForEach(fn func(key K, value V) bool) {
	c := t.Cursor()
	for k, v, ok := c.First(); ok; k, v, ok = c.Next() {
		if !fn(k, v) {
			return
		}
	}
}

// All returns every pair in ascending key order.
func (t *Tree[K, V]) All() []Entry[K, V] {
	out := make([]Entry[K, V], 0, t.size)
	t.ForEach(func(key K, value V) bool {
		out = append(out, Entry[K, V]{Key: key, Value: value})
		return true
	})
	return out
}
