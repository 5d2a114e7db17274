package base

// Arena owns every node of one tree. Nodes are addressed by NodeID so that
// parent, child and sibling relationships are plain index lookups.
//
// Freed slots go on a free list and are handed out again by Alloc before
// the arena grows.
type Arena[K, V any] struct {
	slots []*Node[K, V] // slots[0] is never used, it backs InvalidNodeID
	free  []NodeID      // Slots available for reuse, popped LIFO
	live  int
}

// NewArena creates an empty arena.
func NewArena[K, V any]() *Arena[K, V] {
	return &Arena[K, V]{
		slots: make([]*Node[K, V], 1, 64),
	}
}

// Alloc returns a fresh node of the given kind, reusing a freed slot if one
// is available.
func (a *Arena[K, V]) Alloc(kind Kind) *Node[K, V] {
	var n *Node[K, V]
	if len(a.free) > 0 {
		id := a.free[len(a.free)-1]
		a.free = a.free[:len(a.free)-1]
		n = a.slots[id]
	} else {
		n = &Node[K, V]{ID: NodeID(len(a.slots))}
		a.slots = append(a.slots, n)
	}
	n.Kind = kind
	a.live++
	return n
}

// Get returns the live node for id, or nil if id is unknown or freed.
func (a *Arena[K, V]) Get(id NodeID) *Node[K, V] {
	if id == InvalidNodeID || int(id) >= len(a.slots) {
		return nil
	}
	n := a.slots[id]
	if n.Kind == 0 {
		return nil
	}
	return n
}

// Free releases the node's slot. Freeing an unknown or already freed id is
// a no-op.
func (a *Arena[K, V]) Free(id NodeID) {
	n := a.Get(id)
	if n == nil {
		return
	}
	n.Reset()
	a.free = append(a.free, id)
	a.live--
}

// Len returns the number of live nodes.
func (a *Arena[K, V]) Len() int {
	return a.live
}

// Slots returns the number of allocated slots, live or free.
func (a *Arena[K, V]) Slots() int {
	return len(a.slots) - 1
}
