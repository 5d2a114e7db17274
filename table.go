package bptdb

import (
	"math"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/elastic/go-freelru"
	"github.com/google/uuid"

	"github.com/alexhholmes/bptdb/bptree"
)

// Table stores records of one schema indexed by a B+ tree on the key
// column. A Table is safe for concurrent use: reads share a lock, writes
// hold it exclusively.
type Table struct {
	id     uuid.UUID
	name   string
	schema Schema

	mu    sync.RWMutex
	tree  *bptree.Tree[Value, Record]
	cache *freelru.SyncedLRU[Value, Record] // nil when disabled
}

// TableInfo summarizes a table.
type TableInfo struct {
	ID     uuid.UUID
	Name   string
	Schema Schema
	Order  int
	Height int
	Nodes  int
	Rows   int
}

// NewTable creates a standalone table outside any catalog.
func NewTable(name string, schema Schema, opts ...TableOption) (*Table, error) {
	o := tableOptions{order: DefaultOrder, cacheSize: DefaultCacheSize}
	for _, opt := range opts {
		opt(&o)
	}
	return newTable(name, schema, o, nil)
}

func newTable(name string, schema Schema, opts tableOptions, treeOpts []bptree.Option) (*Table, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	if err := schema.Validate(); err != nil {
		return nil, err
	}

	tree, err := bptree.New[Value, Record](opts.order, CompareValues, treeOpts...)
	if err != nil {
		return nil, err
	}

	t := &Table{
		id:     uuid.New(),
		name:   name,
		schema: schema.clone(),
		tree:   tree,
	}
	if err := t.initCache(opts.cacheSize); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Table) initCache(size int) error {
	if size <= 0 {
		return nil
	}
	if uint64(size) > math.MaxUint32 {
		return errors.Wrapf(ErrInvalidCacheSize, "%d entries, max %d", size, uint32(math.MaxUint32))
	}
	cache, err := freelru.NewSynced[Value, Record](uint32(size), hashValue)
	if err != nil {
		return errors.Wrapf(err, "create record cache of %d entries", size)
	}
	t.cache = cache
	return nil
}

// ID returns the table's unique id. It survives Save and Load.
func (t *Table) ID() uuid.UUID { return t.id }

// Name returns the table's name.
func (t *Table) Name() string { return t.name }

// Schema returns a copy of the table's schema.
func (t *Table) Schema() Schema { return t.schema.clone() }

// Insert adds a record. The record must carry every schema column with a
// matching type. Returns ErrDuplicateKey if the key is already present.
func (t *Table) Insert(r Record) error {
	rec, err := t.schema.record(r)
	if err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	key := rec[t.schema.Key]
	if err := t.tree.Insert(key, rec); err != nil {
		return errors.Wrapf(err, "insert %s", key)
	}
	return nil
}

// Get returns the record stored under key.
func (t *Table) Get(key Value) (Record, error) {
	k, err := t.schema.key(key)
	if err != nil {
		return nil, err
	}
	if t.cache != nil {
		if rec, ok := t.cache.Get(k); ok {
			return rec.Clone(), nil
		}
	}

	t.mu.RLock()
	defer t.mu.RUnlock()
	rec, ok := t.tree.Search(k)
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "get %s", k)
	}
	if t.cache != nil {
		// Filled under the read lock so a writer cannot invalidate the
		// entry before it is added.
		t.cache.Add(k, rec)
	}
	return rec.Clone(), nil
}

// All returns every record in key order.
func (t *Table) All() []Record {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]Record, 0, t.tree.Len())
	t.tree.ForEach(func(_ Value, rec Record) bool {
		out = append(out, rec.Clone())
		return true
	})
	return out
}

// Update replaces the record stored under key. The new record must keep
// the same key; changing it returns ErrKeyChange.
func (t *Table) Update(key Value, r Record) error {
	k, err := t.schema.key(key)
	if err != nil {
		return err
	}
	rec, err := t.schema.record(r)
	if err != nil {
		return err
	}
	if rec[t.schema.Key].Compare(k) != 0 {
		return errors.Wrapf(ErrKeyChange, "%s to %s", k, rec[t.schema.Key])
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.tree.Update(k, rec); err != nil {
		return errors.Wrapf(err, "update %s", k)
	}
	t.evict(k)
	return nil
}

// Delete removes the record stored under key.
func (t *Table) Delete(key Value) error {
	k, err := t.schema.key(key)
	if err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.tree.Delete(k); err != nil {
		return errors.Wrapf(err, "delete %s", k)
	}
	t.evict(k)
	return nil
}

// RangeQuery returns the records with start <= key <= end in key order.
// An inverted range returns no records.
func (t *Table) RangeQuery(start, end Value) ([]Record, error) {
	lo, err := t.schema.key(start)
	if err != nil {
		return nil, err
	}
	hi, err := t.schema.key(end)
	if err != nil {
		return nil, err
	}

	t.mu.RLock()
	defer t.mu.RUnlock()
	var out []Record
	t.tree.Scan(lo, hi, func(_ Value, rec Record) bool {
		out = append(out, rec.Clone())
		return true
	})
	return out, nil
}

// Len returns the number of records.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.tree.Len()
}

// Info summarizes the table and its index.
func (t *Table) Info() TableInfo {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return TableInfo{
		ID:     t.id,
		Name:   t.name,
		Schema: t.schema.clone(),
		Order:  t.tree.Order(),
		Height: t.tree.Height(),
		Nodes:  t.tree.NodeCount(),
		Rows:   t.tree.Len(),
	}
}

// Walk visits the table's index nodes breadth first. It implements
// bptree.Walker so tables can be rendered.
func (t *Table) Walk(fn func(bptree.NodeView[Value]) error) error {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.tree.Walk(fn)
}

// Verify checks the structural invariants of the table's index.
func (t *Table) Verify() error {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.tree.Verify()
}

func (t *Table) evict(k Value) {
	if t.cache != nil {
		t.cache.Remove(k)
	}
}

// snapshot copies the table's index under the read lock.
func (t *Table) snapshot() bptree.Snapshot[Value, Record] {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.tree.Snapshot()
}

var _ bptree.Walker[Value] = (*Table)(nil)
