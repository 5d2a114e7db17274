package bptdb

import (
	"github.com/cockroachdb/errors"

	"github.com/alexhholmes/bptdb/bptree"
	"github.com/alexhholmes/bptdb/internal/snapshot"
)

//goland:noinspection GoUnusedGlobalVariable
var (
	ErrDatabaseExists   = errors.New("database already exists")
	ErrDatabaseNotFound = errors.New("database not found")
	ErrTableExists      = errors.New("table already exists")
	ErrTableNotFound    = errors.New("table not found")
	ErrInvalidName      = errors.New("invalid name")

	ErrInvalidSchema = errors.New("invalid schema")
	ErrInvalidRecord = errors.New("record does not match schema")
	ErrInvalidKey    = errors.New("invalid key for key column")
	ErrKeyChange     = errors.New("update cannot change the key column")

	ErrInvalidCacheSize = errors.New("record cache size out of range")

	ErrInvalidOrder    = bptree.ErrInvalidOrder
	ErrDuplicateKey    = bptree.ErrDuplicateKey
	ErrNotFound        = bptree.ErrNotFound
	ErrCorruptSnapshot = bptree.ErrCorruptSnapshot

	ErrInvalidMagicNumber = snapshot.ErrInvalidMagicNumber
	ErrInvalidVersion     = snapshot.ErrInvalidVersion
	ErrInvalidChecksum    = snapshot.ErrInvalidChecksum
	ErrTruncated          = snapshot.ErrTruncated
)
