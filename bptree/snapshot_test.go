package bptree

import (
	"cmp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotRestore(t *testing.T) {
	t.Parallel()

	for order := MinOrder; order <= 9; order++ {
		tree := setup(t, order)
		for k := 0; k < 200; k += 2 {
			require.NoError(t, tree.Insert(k, "v"))
		}
		for k := 0; k < 200; k += 6 {
			require.NoError(t, tree.Delete(k))
		}

		snap := tree.Snapshot()
		assert.Equal(t, order, snap.Order)
		assert.Len(t, snap.Nodes, tree.NodeCount())

		restored, err := Restore(snap, cmp.Compare[int], WithInvariantChecks(true))
		require.NoError(t, err, "order %d", order)
		assert.Equal(t, tree.All(), restored.All())
		assert.Equal(t, tree.Len(), restored.Len())
		assert.Equal(t, tree.Height(), restored.Height())

		// The restored tree is independent and fully usable.
		require.NoError(t, restored.Insert(1, "new"))
		assert.False(t, tree.Contains(1))
		require.NoError(t, restored.Delete(2))
		assert.True(t, tree.Contains(2))
	}
}

func TestSnapshotIsDetached(t *testing.T) {
	t.Parallel()

	tree := setup(t, 4)
	for k := 0; k < 10; k++ {
		require.NoError(t, tree.Insert(k, "v"))
	}
	snap := tree.Snapshot()
	snap.Nodes[0].Keys[0] = 1000

	require.NoError(t, tree.Verify())
	assert.NotEqual(t, 1000, tree.node(tree.Root()).Keys[0])
}

func TestRestoreEmptyTree(t *testing.T) {
	t.Parallel()

	tree := setup(t, 5)
	restored, err := Restore(tree.Snapshot(), cmp.Compare[int])
	require.NoError(t, err)
	assert.True(t, restored.IsEmpty())
	assert.Equal(t, 1, restored.Height())
}

func TestRestoreCorrupt(t *testing.T) {
	t.Parallel()

	build := func(t *testing.T) Snapshot[int, string] {
		tree := setup(t, 3)
		for k := 1; k <= 7; k++ {
			require.NoError(t, tree.Insert(k, ""))
		}
		return tree.Snapshot()
	}

	tests := []struct {
		name    string
		corrupt func(s *Snapshot[int, string])
	}{
		{
			name:    "no_nodes",
			corrupt: func(s *Snapshot[int, string]) { s.Nodes = nil },
		},
		{
			name:    "duplicate_id",
			corrupt: func(s *Snapshot[int, string]) { s.Nodes[2].ID = s.Nodes[1].ID },
		},
		{
			name:    "invalid_id",
			corrupt: func(s *Snapshot[int, string]) { s.Nodes[1].ID = InvalidNodeID },
		},
		{
			name:    "unknown_kind",
			corrupt: func(s *Snapshot[int, string]) { s.Nodes[3].Kind = 9 },
		},
		{
			name:    "unknown_child",
			corrupt: func(s *Snapshot[int, string]) { s.Nodes[0].Children[0] = 999 },
		},
		{
			name:    "unknown_root",
			corrupt: func(s *Snapshot[int, string]) { s.Root = 999 },
		},
		{
			name: "unsorted_leaf",
			corrupt: func(s *Snapshot[int, string]) {
				leaf := &s.Nodes[len(s.Nodes)-2]
				leaf.Keys[0], leaf.Keys[1] = leaf.Keys[1], leaf.Keys[0]
			},
		},
		{
			name:    "orphan_node",
			corrupt: func(s *Snapshot[int, string]) { s.Nodes = append(s.Nodes, NodeSnapshot[int, string]{ID: 500, Kind: KindLeaf}) },
		},
		{
			name: "broken_leaf_chain",
			corrupt: func(s *Snapshot[int, string]) {
				s.Nodes[3].Next = InvalidNodeID
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := build(t)
			tt.corrupt(&snap)
			_, err := Restore(snap, cmp.Compare[int])
			assert.ErrorIs(t, err, ErrCorruptSnapshot)
		})
	}

	snap := build(t)
	snap.Order = 2
	_, err := Restore(snap, cmp.Compare[int])
	assert.ErrorIs(t, err, ErrInvalidOrder)
}
