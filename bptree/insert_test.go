package bptree

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// leafKeys returns each leaf's keys in leaf-chain order.
func leafKeys[K, V any](tree *Tree[K, V]) [][]K {
	n := tree.node(tree.root)
	for !n.IsLeaf() {
		n = tree.node(n.Children[0])
	}

	var out [][]K
	for {
		out = append(out, append([]K(nil), n.Keys...))
		if n.Next == InvalidNodeID {
			return out
		}
		n = tree.node(n.Next)
	}
}

func TestInsertOrderFourScenario(t *testing.T) {
	t.Parallel()

	tree := setup(t, 4)
	keys := []int{10, 20, 5, 6, 12, 30, 7, 17}

	for i, k := range keys {
		require.NoError(t, tree.Insert(k, fmt.Sprintf("v%d", k)))
		if i == 4 {
			// After the fifth insert (12) the root has split
			assert.Equal(t, 2, tree.Height())
			assert.False(t, tree.node(tree.root).IsLeaf())
		}
	}

	root := tree.node(tree.root)
	assert.Equal(t, []int{10, 20}, root.Keys)
	assert.Equal(t, [][]int{{5, 6, 7}, {10, 12, 17}, {20, 30}}, leafKeys(tree))

	require.NoError(t, tree.Delete(6))
	require.NoError(t, tree.Delete(7))
	assert.Equal(t, [][]int{{5}, {10, 12, 17}, {20, 30}}, leafKeys(tree))

	got := tree.RangeQuery(5, 30)
	assert.Equal(t, []int{5, 10, 12, 17, 20, 30}, keysOf(got))
	for _, e := range got {
		assert.Equal(t, fmt.Sprintf("v%d", e.Key), e.Value)
	}
}

func TestLeafSplitCopiesSeparator(t *testing.T) {
	t.Parallel()

	tree := setup(t, 4)
	for _, k := range []int{1, 2, 3, 4} {
		require.NoError(t, tree.Insert(k, ""))
	}

	// Left keeps ceil(4/2) entries, the right's first key is copied up
	root := tree.node(tree.root)
	require.False(t, root.IsLeaf())
	assert.Equal(t, []int{3}, root.Keys)
	assert.Equal(t, [][]int{{1, 2}, {3, 4}}, leafKeys(tree))

	// A search for the separator itself descends right and still finds it
	_, found := tree.Search(3)
	assert.True(t, found)
}

func TestBranchSplitMovesSeparator(t *testing.T) {
	t.Parallel()

	tree := setup(t, 3)
	for k := 1; k <= 7; k++ {
		require.NoError(t, tree.Insert(k, ""))
	}

	// Leaves [1 2] [3 4] [5 6] [7]; the branch [3 5 7] overflowed and
	// promoted 5, which lives only in the root.
	root := tree.node(tree.root)
	assert.Equal(t, []int{5}, root.Keys)
	assert.Equal(t, 3, tree.Height())

	left := tree.node(root.Children[0])
	right := tree.node(root.Children[1])
	assert.Equal(t, []int{3}, left.Keys)
	assert.Equal(t, []int{7}, right.Keys)
	assert.Equal(t, [][]int{{1, 2}, {3, 4}, {5, 6}, {7}}, leafKeys(tree))
}

func TestInsertHeightGrowth(t *testing.T) {
	t.Parallel()

	tests := []struct {
		order     int
		count     int
		maxHeight int
	}{
		{order: 3, count: 1000, maxHeight: 11},
		{order: 4, count: 1000, maxHeight: 11},
		{order: 8, count: 5000, maxHeight: 6},
		{order: 32, count: 10000, maxHeight: 4},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("order_%d", tt.order), func(t *testing.T) {
			tree, err := NewOrdered[int, int](tt.order)
			require.NoError(t, err)

			for i := 0; i < tt.count; i++ {
				require.NoError(t, tree.Insert(i, i))
			}
			require.NoError(t, tree.Verify())
			assert.Equal(t, tt.count, tree.Len())
			assert.LessOrEqual(t, tree.Height(), tt.maxHeight)
		})
	}
}

func TestInsertDescendingAndInterleaved(t *testing.T) {
	t.Parallel()

	tree := setup(t, 5)
	for i := 500; i > 0; i-- {
		require.NoError(t, tree.Insert(i*2, ""))
	}
	for i := 1; i <= 500; i++ {
		require.NoError(t, tree.Insert(i*2-1, ""))
	}

	all := keysOf(tree.All())
	require.Len(t, all, 1000)
	for i, k := range all {
		assert.Equal(t, i+1, k)
	}
}

func TestDuplicateInsertLeavesTreeUnchanged(t *testing.T) {
	t.Parallel()

	tree := setup(t, 3)
	for i := 0; i < 20; i++ {
		require.NoError(t, tree.Insert(i, "a"))
	}
	before := tree.Snapshot()

	for i := 0; i < 20; i++ {
		assert.ErrorIs(t, tree.Insert(i, "b"), ErrDuplicateKey)
	}
	assert.Equal(t, before, tree.Snapshot())
}
