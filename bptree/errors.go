package bptree

import (
	"github.com/cockroachdb/errors"
)

// Tree errors.
var (
	ErrInvalidOrder    = errors.New("b+ tree order must be at least 3")
	ErrDuplicateKey    = errors.New("key already exists")
	ErrNotFound        = errors.New("key not found")
	ErrCorruptSnapshot = errors.New("corrupt tree snapshot")
)
