// Package bench compares the B+ tree against other ordered indexes on
// the same workloads, in the spirit of the brute force versus tree
// comparison the engine was designed around.
package bench

import (
	"encoding/binary"
	"math"
	"slices"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"
	"github.com/google/btree"

	"github.com/alexhholmes/bptdb/bptree"
)

// ErrNotFound is returned by Update and Delete for absent keys.
var ErrNotFound = errors.New("key not found")

// Index is the workload surface every benchmarked structure implements.
type Index interface {
	Name() string
	Insert(key int64, value []byte) error
	Search(key int64) ([]byte, bool, error)
	Update(key int64, value []byte) error
	Delete(key int64) error
	// Range returns the number of keys in [start, end].
	Range(start, end int64) (int, error)
	Len() int
	Close() error
}

// BPTree indexes with a bptree.Tree of the given order.
type BPTree struct {
	name string
	tree *bptree.Tree[int64, []byte]
}

func NewBPTree(order int) (*BPTree, error) {
	tree, err := bptree.NewOrdered[int64, []byte](order, bptree.WithInvariantChecks(false))
	if err != nil {
		return nil, err
	}
	return &BPTree{name: bptreeName(order), tree: tree}, nil
}

func bptreeName(order int) string {
	return "bptree/" + strconv.Itoa(order)
}

func (b *BPTree) Name() string { return b.name }

func (b *BPTree) Insert(key int64, value []byte) error {
	return b.tree.Insert(key, value)
}

func (b *BPTree) Search(key int64) ([]byte, bool, error) {
	v, ok := b.tree.Search(key)
	return v, ok, nil
}

func (b *BPTree) Update(key int64, value []byte) error {
	if err := b.tree.Update(key, value); err != nil {
		return errors.Mark(err, ErrNotFound)
	}
	return nil
}

func (b *BPTree) Delete(key int64) error {
	if err := b.tree.Delete(key); err != nil {
		return errors.Mark(err, ErrNotFound)
	}
	return nil
}

func (b *BPTree) Range(start, end int64) (int, error) {
	n := 0
	b.tree.Scan(start, end, func(int64, []byte) bool {
		n++
		return true
	})
	return n, nil
}

func (b *BPTree) Len() int     { return b.tree.Len() }
func (b *BPTree) Close() error { return nil }

type pair struct {
	key   int64
	value []byte
}

// Linear keeps unordered pairs and scans them for every operation. It is
// the baseline the tree is meant to beat.
type Linear struct {
	data []pair
}

func NewLinear() *Linear { return &Linear{} }

func (l *Linear) Name() string { return "linear" }

// Insert appends without checking for duplicates.
func (l *Linear) Insert(key int64, value []byte) error {
	l.data = append(l.data, pair{key: key, value: value})
	return nil
}

func (l *Linear) find(key int64) int {
	return slices.IndexFunc(l.data, func(p pair) bool { return p.key == key })
}

func (l *Linear) Search(key int64) ([]byte, bool, error) {
	if i := l.find(key); i >= 0 {
		return l.data[i].value, true, nil
	}
	return nil, false, nil
}

func (l *Linear) Update(key int64, value []byte) error {
	i := l.find(key)
	if i < 0 {
		return ErrNotFound
	}
	l.data[i].value = value
	return nil
}

func (l *Linear) Delete(key int64) error {
	i := l.find(key)
	if i < 0 {
		return ErrNotFound
	}
	l.data = slices.Delete(l.data, i, i+1)
	return nil
}

func (l *Linear) Range(start, end int64) (int, error) {
	n := 0
	for _, p := range l.data {
		if p.key >= start && p.key <= end {
			n++
		}
	}
	return n, nil
}

func (l *Linear) Len() int     { return len(l.data) }
func (l *Linear) Close() error { return nil }

// BTree indexes with google/btree, an in-memory B-tree storing items in
// every node.
type BTree struct {
	tree *btree.BTreeG[pair]
}

func NewBTree(degree int) *BTree {
	return &BTree{tree: btree.NewG(degree, func(a, b pair) bool { return a.key < b.key })}
}

func (b *BTree) Name() string { return "google-btree" }

func (b *BTree) Insert(key int64, value []byte) error {
	b.tree.ReplaceOrInsert(pair{key: key, value: value})
	return nil
}

func (b *BTree) Search(key int64) ([]byte, bool, error) {
	p, ok := b.tree.Get(pair{key: key})
	return p.value, ok, nil
}

func (b *BTree) Update(key int64, value []byte) error {
	if !b.tree.Has(pair{key: key}) {
		return ErrNotFound
	}
	b.tree.ReplaceOrInsert(pair{key: key, value: value})
	return nil
}

func (b *BTree) Delete(key int64) error {
	if _, ok := b.tree.Delete(pair{key: key}); !ok {
		return ErrNotFound
	}
	return nil
}

func (b *BTree) Range(start, end int64) (int, error) {
	n := 0
	b.tree.AscendGreaterOrEqual(pair{key: start}, func(p pair) bool {
		if p.key > end {
			return false
		}
		n++
		return true
	})
	return n, nil
}

func (b *BTree) Len() int     { return b.tree.Len() }
func (b *BTree) Close() error { return nil }

// Pebble indexes with an in-memory pebble LSM.
type Pebble struct {
	db *pebble.DB
	n  int
}

func NewPebble() (*Pebble, error) {
	db, err := pebble.Open("", &pebble.Options{FS: vfs.NewMem()})
	if err != nil {
		return nil, errors.Wrap(err, "pebble: open")
	}
	return &Pebble{db: db}, nil
}

func (p *Pebble) Name() string { return "pebble" }

func (p *Pebble) Insert(key int64, value []byte) error {
	if err := p.db.Set(encodeKey(key), value, pebble.NoSync); err != nil {
		return errors.Wrap(err, "pebble: set")
	}
	p.n++
	return nil
}

func (p *Pebble) Search(key int64) ([]byte, bool, error) {
	val, closer, err := p.db.Get(encodeKey(key))
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(err, "pebble: get")
	}
	// val is only valid until closer.Close()
	out := slices.Clone(val)
	return out, true, closer.Close()
}

func (p *Pebble) exists(key int64) error {
	_, ok, err := p.Search(key)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

func (p *Pebble) Update(key int64, value []byte) error {
	if err := p.exists(key); err != nil {
		return err
	}
	return errors.Wrap(p.db.Set(encodeKey(key), value, pebble.NoSync), "pebble: set")
}

func (p *Pebble) Delete(key int64) error {
	if err := p.exists(key); err != nil {
		return err
	}
	if err := p.db.Delete(encodeKey(key), pebble.NoSync); err != nil {
		return errors.Wrap(err, "pebble: delete")
	}
	p.n--
	return nil
}

func (p *Pebble) Range(start, end int64) (int, error) {
	if start > end {
		return 0, nil
	}
	opts := &pebble.IterOptions{LowerBound: encodeKey(start)}
	if end < math.MaxInt64 {
		opts.UpperBound = encodeKey(end + 1)
	}
	iter, err := p.db.NewIter(opts)
	if err != nil {
		return 0, errors.Wrap(err, "pebble: range")
	}
	n := 0
	for valid := iter.First(); valid; valid = iter.Next() {
		n++
	}
	return n, errors.CombineErrors(iter.Error(), iter.Close())
}

func (p *Pebble) Len() int     { return p.n }
func (p *Pebble) Close() error { return p.db.Close() }

// encodeKey maps int64 order onto byte order: big endian with the sign
// bit flipped so negative keys sort first.
func encodeKey(k int64) []byte {
	return binary.BigEndian.AppendUint64(nil, uint64(k)^(1<<63))
}

var (
	_ Index = (*BPTree)(nil)
	_ Index = (*Linear)(nil)
	_ Index = (*BTree)(nil)
	_ Index = (*Pebble)(nil)
)
