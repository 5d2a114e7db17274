// Package algo contains algorithms used for traversing and editing a b+ tree.
package algo

import (
	"sort"
)

// Below this many keys a linear scan beats sort.Search.
const searchThreshold = 32

// FindChildIndex returns the index of the child pointer to follow for key:
// the first separator strictly greater than key. A key equal to a separator
// goes to the right child.
func FindChildIndex[K any](keys []K, key K, cmp func(a, b K) int) int {
	if len(keys) < searchThreshold {
		i := 0
		for i < len(keys) && cmp(key, keys[i]) >= 0 {
			i++
		}
		return i
	}

	return sort.Search(len(keys), func(i int) bool {
		return cmp(key, keys[i]) < 0
	})
}

// FindInsertPosition returns the position of the first key >= key.
func FindInsertPosition[K any](keys []K, key K, cmp func(a, b K) int) int {
	if len(keys) < searchThreshold {
		pos := 0
		for pos < len(keys) && cmp(key, keys[pos]) > 0 {
			pos++
		}
		return pos
	}

	return sort.Search(len(keys), func(i int) bool {
		return cmp(key, keys[i]) <= 0
	})
}

// FindKey returns the index of key and true if present, otherwise the
// position it would be inserted at and false.
func FindKey[K any](keys []K, key K, cmp func(a, b K) int) (int, bool) {
	pos := FindInsertPosition(keys, key, cmp)
	return pos, pos < len(keys) && cmp(keys[pos], key) == 0
}

// LeafSplitPoint returns how many of n entries the left leaf keeps after a
// split: ceil(n/2). The right leaf takes the rest and its first key becomes
// the separator.
func LeafSplitPoint(n int) int {
	return (n + 1) / 2
}

// BranchSplitPoint returns the index of the key promoted out of a branch
// holding n keys. Keys before it stay left, keys after it move right.
func BranchSplitPoint(n int) int {
	return n / 2
}

// InsertAt inserts value at index in slice
func InsertAt[T any](slice []T, index int, value T) []T {
	var zero T
	slice = append(slice, zero)
	copy(slice[index+1:], slice[index:])
	slice[index] = value
	return slice
}

// RemoveAt removes element at index from slice, clearing the vacated tail
// slot so the backing array does not pin the removed value.
func RemoveAt[T any](slice []T, index int) []T {
	var zero T
	copy(slice[index:], slice[index+1:])
	slice[len(slice)-1] = zero
	return slice[:len(slice)-1]
}

// TakeFront removes and returns the first element of slice.
func TakeFront[T any](slice []T) (T, []T) {
	v := slice[0]
	return v, RemoveAt(slice, 0)
}

// TakeBack removes and returns the last element of slice.
func TakeBack[T any](slice []T) (T, []T) {
	var zero T
	v := slice[len(slice)-1]
	slice[len(slice)-1] = zero
	return v, slice[:len(slice)-1]
}
