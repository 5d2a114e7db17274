package bptree

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// corruptible builds an order 3 tree over 1..7 without self checks so tests
// can damage it by hand:
//
//	        [5]
//	   [3]       [7]
//	[1 2] [3 4] [5 6] [7]
func corruptible(t *testing.T) *Tree[int, string] {
	t.Helper()
	tree, err := NewOrdered[int, string](3, WithInvariantChecks(false))
	require.NoError(t, err)
	for k := 1; k <= 7; k++ {
		require.NoError(t, tree.Insert(k, ""))
	}
	require.NoError(t, tree.Verify())
	return tree
}

func TestVerifyDetectsCorruption(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		corrupt func(tree *Tree[int, string])
	}{
		{
			name: "swapped_leaf_keys",
			corrupt: func(tree *Tree[int, string]) {
				leaf, _ := tree.findLeaf(1, nil)
				leaf.Keys[0], leaf.Keys[1] = leaf.Keys[1], leaf.Keys[0]
			},
		},
		{
			name: "key_outside_separator_range",
			corrupt: func(tree *Tree[int, string]) {
				leaf, _ := tree.findLeaf(6, nil)
				leaf.Keys[1] = 9
			},
		},
		{
			name: "broken_leaf_chain",
			corrupt: func(tree *Tree[int, string]) {
				leaf, _ := tree.findLeaf(3, nil)
				leaf.Next = InvalidNodeID
			},
		},
		{
			name: "size_mismatch",
			corrupt: func(tree *Tree[int, string]) {
				tree.size--
			},
		},
		{
			name: "leaked_node",
			corrupt: func(tree *Tree[int, string]) {
				tree.nodes.Alloc(KindLeaf)
			},
		},
		{
			name: "underfull_leaf",
			corrupt: func(tree *Tree[int, string]) {
				leaf, _ := tree.findLeaf(7, nil)
				leaf.Keys = leaf.Keys[:0]
				leaf.Values = leaf.Values[:0]
				tree.size--
			},
		},
		{
			name: "shared_child",
			corrupt: func(tree *Tree[int, string]) {
				root := tree.node(tree.root)
				root.Children[1] = root.Children[0]
			},
		},
		{
			name: "dangling_child",
			corrupt: func(tree *Tree[int, string]) {
				root := tree.node(tree.root)
				tree.nodes.Free(root.Children[1])
			},
		},
		{
			name: "values_out_of_step",
			corrupt: func(tree *Tree[int, string]) {
				leaf, _ := tree.findLeaf(1, nil)
				leaf.Values = leaf.Values[:1]
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := corruptible(t)
			tt.corrupt(tree)
			err := tree.Verify()
			require.Error(t, err)
			assert.True(t, errors.HasAssertionFailure(err), "%v", err)
		})
	}
}

func TestVerifyUnevenLeafDepth(t *testing.T) {
	t.Parallel()

	tree := corruptible(t)
	root := tree.node(tree.root)
	right := tree.node(root.Children[1])

	// Replace the right subtree by one of its leaves.
	leaf := right.Children[1]
	root.Children[1] = leaf
	tree.nodes.Free(right.Children[0])
	tree.nodes.Free(right.ID)
	tree.size -= 2

	err := tree.Verify()
	require.Error(t, err)
	assert.True(t, errors.HasAssertionFailure(err))
}
