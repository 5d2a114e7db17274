package base

import (
	"github.com/cockroachdb/errors"
)

// NodeID addresses a node inside an Arena. IDs are stable for the lifetime
// of the node and may be reused after the node is freed.
type NodeID uint32

// InvalidNodeID marks an absent link (no next leaf, no child).
const InvalidNodeID NodeID = 0

// Kind tags a Node as a leaf or a branch.
type Kind uint8

const (
	KindLeaf Kind = iota + 1
	KindBranch
)

func (k Kind) String() string {
	switch k {
	case KindLeaf:
		return "leaf"
	case KindBranch:
		return "branch"
	default:
		return "invalid"
	}
}

// Node represents a B+ tree node.
//
// A leaf uses Keys, Values and Next. A branch uses Keys and Children, where
// Children[i] holds keys >= Keys[i-1] and < Keys[i].
type Node[K, V any] struct {
	ID   NodeID
	Kind Kind

	Keys     []K
	Values   []V      // Empty and unused in branch nodes
	Children []NodeID // Empty and unused in leaf nodes
	Next     NodeID   // Next leaf in key order, InvalidNodeID on the last leaf
}

// MinKeys returns ceil(order/2)-1, the fewest keys a non-root node may hold.
func MinKeys(order int) int {
	return (order+1)/2 - 1
}

// MaxKeys returns order-1, the most keys any node may hold once an
// operation completes.
func MaxKeys(order int) int {
	return order - 1
}

// IsLeaf returns true if this is a leaf Node
func (n *Node[K, V]) IsLeaf() bool {
	return n.Kind == KindLeaf
}

// NumKeys returns the number of keys held by the node.
func (n *Node[K, V]) NumKeys() int {
	return len(n.Keys)
}

// IsFull reports whether the node holds the maximum order-1 keys.
func (n *Node[K, V]) IsFull(order int) bool {
	return len(n.Keys) >= MaxKeys(order)
}

// IsOverflow reports the transient state between an insert and the split
// that resolves it.
func (n *Node[K, V]) IsOverflow(order int) bool {
	return len(n.Keys) > MaxKeys(order)
}

// IsUnderflow checks if Node has too few Keys (doesn't apply to root)
func (n *Node[K, V]) IsUnderflow(minKeys int) bool {
	return len(n.Keys) < minKeys
}

// HasExcessKeys reports whether the node can lend a key to a sibling.
func (n *Node[K, V]) HasExcessKeys(minKeys int) bool {
	return len(n.Keys) > minKeys
}

// Check validates the shape of the node on its own: slice lengths agree
// with the kind and no leaf-only field is set on a branch.
func (n *Node[K, V]) Check() error {
	switch n.Kind {
	case KindLeaf:
		if len(n.Values) != len(n.Keys) {
			return errors.AssertionFailedf("leaf %d: %d keys but %d values", n.ID, len(n.Keys), len(n.Values))
		}
		if len(n.Children) != 0 {
			return errors.AssertionFailedf("leaf %d: has %d children", n.ID, len(n.Children))
		}
	case KindBranch:
		if len(n.Children) != len(n.Keys)+1 {
			return errors.AssertionFailedf("branch %d: %d keys but %d children", n.ID, len(n.Keys), len(n.Children))
		}
		if len(n.Values) != 0 {
			return errors.AssertionFailedf("branch %d: has %d values", n.ID, len(n.Values))
		}
		if n.Next != InvalidNodeID {
			return errors.AssertionFailedf("branch %d: has next link %d", n.ID, n.Next)
		}
		for _, child := range n.Children {
			if child == n.ID || child == InvalidNodeID {
				return errors.AssertionFailedf("branch %d: invalid child %d", n.ID, child)
			}
		}
	default:
		return errors.AssertionFailedf("node %d: unknown kind %d", n.ID, n.Kind)
	}
	return nil
}

// Reset clears the node for reuse, keeping slice capacity.
func (n *Node[K, V]) Reset() {
	var zk K
	var zv V
	for i := range n.Keys {
		n.Keys[i] = zk
	}
	for i := range n.Values {
		n.Values[i] = zv
	}
	n.Kind = 0
	n.Keys = n.Keys[:0]
	n.Values = n.Values[:0]
	n.Children = n.Children[:0]
	n.Next = InvalidNodeID
}
