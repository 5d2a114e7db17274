package bptree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursorIteration(t *testing.T) {
	t.Parallel()

	tree := setup(t, 3)
	for k := 2; k <= 40; k += 2 {
		require.NoError(t, tree.Insert(k, ""))
	}

	c := tree.Cursor()
	assert.False(t, c.Valid(), "new cursor is unpositioned")

	var got []int
	for k, _, ok := c.First(); ok; k, _, ok = c.Next() {
		got = append(got, k)
	}
	require.Len(t, got, 20)
	assert.Equal(t, 2, got[0])
	assert.Equal(t, 40, got[19])
	assert.False(t, c.Valid(), "cursor is invalid after running off the end")

	k, _, ok := c.Seek(7)
	require.True(t, ok)
	assert.Equal(t, 8, k)
	assert.Equal(t, 8, c.Key())

	k, _, ok = c.Seek(40)
	require.True(t, ok)
	assert.Equal(t, 40, k)

	_, _, ok = c.Seek(41)
	assert.False(t, ok)
}

func TestCursorEmptyTree(t *testing.T) {
	t.Parallel()

	tree := setup(t, 4)
	c := tree.Cursor()
	_, _, ok := c.First()
	assert.False(t, ok)
	_, _, ok = c.Next()
	assert.False(t, ok)
	assert.Zero(t, c.Key())
	assert.Zero(t, c.Value())
}

func TestCursorInvalidatedByMutation(t *testing.T) {
	t.Parallel()

	tree := setup(t, 4)
	for k := 0; k < 10; k++ {
		require.NoError(t, tree.Insert(k, "v"))
	}

	c := tree.Cursor()
	_, _, ok := c.First()
	require.True(t, ok)
	assert.Equal(t, "v", c.Value())

	require.NoError(t, tree.Delete(5))
	assert.False(t, c.Valid())
	_, _, ok = c.Next()
	assert.False(t, ok)

	// Repositioning works again
	k, _, ok := c.Seek(5)
	require.True(t, ok)
	assert.Equal(t, 6, k)
}
