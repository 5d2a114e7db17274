package bench

import (
	"context"
	"math/rand/v2"
	"runtime"
	"slices"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-faker/faker/v4"
)

// Operation names one timed phase of a run.
type Operation string

const (
	OpInsertRandom Operation = "insert_random"
	OpInsertSorted Operation = "insert_sorted"
	OpSearch       Operation = "search"
	OpRange        Operation = "range"
	OpUpdate       Operation = "update"
	OpDelete       Operation = "delete"
	OpMixed        Operation = "mixed"
)

// Operations lists every phase Run measures.
var Operations = []Operation{OpInsertRandom, OpInsertSorted, OpSearch, OpRange, OpUpdate, OpDelete, OpMixed}

// Baseline index names accepted by Config.Baselines.
const (
	BaselineLinear = "linear"
	BaselineBTree  = "google-btree"
	BaselinePebble = "pebble"
)

// Config selects what Run measures.
type Config struct {
	Sizes     []int    // number of keys loaded per run
	Orders    []int    // B+ tree orders; one index per order
	Baselines []string // any of the Baseline* names

	Seed           uint64
	Searches       int     // point lookups and updates per run; 0 means min(size, 1000)
	Ranges         int     // range queries per run; 0 means 50
	DeleteFraction float64 // share of keys deleted; 0 means 0.2
	MixFactor      float64 // mixed operations as a share of size; 0 means 0.3
}

// DefaultConfig is a small comparison of a few orders against every
// baseline.
func DefaultConfig() Config {
	return Config{
		Sizes:     []int{1_000, 10_000},
		Orders:    []int{4, 8, 16, 32},
		Baselines: []string{BaselineLinear, BaselineBTree, BaselinePebble},
		Seed:      1,
	}
}

// Result is the timing of one operation on one index.
type Result struct {
	Index      string
	Size       int
	Operation  Operation
	Ops        int
	Total      time.Duration
	AllocBytes uint64 // bytes allocated during the phase
}

// NsPerOp returns the mean latency of the phase.
func (r Result) NsPerOp() float64 {
	if r.Ops == 0 {
		return 0
	}
	return float64(r.Total.Nanoseconds()) / float64(r.Ops)
}

type factory struct {
	name string
	new  func() (Index, error)
}

func (c Config) factories() ([]factory, error) {
	var out []factory
	for _, order := range c.Orders {
		out = append(out, factory{name: bptreeName(order), new: func() (Index, error) {
			return NewBPTree(order)
		}})
	}
	for _, b := range c.Baselines {
		switch b {
		case BaselineLinear:
			out = append(out, factory{name: b, new: func() (Index, error) { return NewLinear(), nil }})
		case BaselineBTree:
			out = append(out, factory{name: b, new: func() (Index, error) { return NewBTree(32), nil }})
		case BaselinePebble:
			out = append(out, factory{name: b, new: func() (Index, error) { return NewPebble() }})
		default:
			return nil, errors.Newf("unknown baseline %q", b)
		}
	}
	if len(out) == 0 {
		return nil, errors.New("no indexes selected")
	}
	return out, nil
}

// workload is the data shared by every index at one size.
type workload struct {
	keys    []int64 // random order, distinct
	sorted  []int64
	values  [][]byte
	lookups []int64
	ranges  [][2]int64
	deletes []int64
	mix     []mixOp
	mixLen  int // keys left after the mixed phase
}

// mixOp is one step of the mixed phase. Update and delete always target a
// live key and insert always a fresh one, so no step fails.
type mixOp struct {
	op  Operation
	key int64
}

func newWorkload(rng *rand.Rand, size int, c Config) workload {
	w := workload{keys: make([]int64, 0, size)}

	// Distinct keys drawn from ten times the key count.
	seen := make(map[int64]struct{}, size)
	for len(w.keys) < size {
		k := rng.Int64N(int64(size)*10) + 1
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		w.keys = append(w.keys, k)
	}
	w.sorted = slices.Sorted(slices.Values(w.keys))

	w.values = make([][]byte, 256)
	for i := range w.values {
		w.values[i] = []byte(faker.Sentence())
	}

	searches := c.Searches
	if searches == 0 {
		searches = min(size, 1000)
	}
	for i := 0; i < searches; i++ {
		w.lookups = append(w.lookups, w.keys[rng.IntN(size)])
	}

	ranges := c.Ranges
	if ranges == 0 {
		ranges = 50
	}
	lo, hi := w.sorted[0], w.sorted[size-1]
	span := max((hi-lo)/20, 2)
	for i := 0; i < ranges; i++ {
		width := rng.Int64N(span) + 1
		start := lo + rng.Int64N(max(hi-lo-width, 1))
		w.ranges = append(w.ranges, [2]int64{start, start + width})
	}

	fraction := c.DeleteFraction
	if fraction == 0 {
		fraction = 0.2
	}
	perm := rng.Perm(size)
	for _, i := range perm[:int(float64(size)*fraction)] {
		w.deletes = append(w.deletes, w.keys[i])
	}
	w.mix, w.mixLen = newMix(rng, w.keys, c.MixFactor)
	return w
}

var mixKinds = []Operation{OpInsertRandom, OpSearch, OpUpdate, OpDelete}

// newMix draws a random sequence of inserts, searches, updates and deletes
// over a tree already holding keys.
func newMix(rng *rand.Rand, keys []int64, factor float64) ([]mixOp, int) {
	if factor == 0 {
		factor = 0.3
	}
	n := int(float64(len(keys)) * factor)
	maxKey := int64(len(keys)) * 30

	live := slices.Clone(keys)
	pos := make(map[int64]int, len(live))
	for i, k := range live {
		pos[k] = i
	}
	remove := func(i int) int64 {
		k := live[i]
		last := live[len(live)-1]
		live[i] = last
		pos[last] = i
		live = live[:len(live)-1]
		delete(pos, k)
		return k
	}

	ops := make([]mixOp, 0, n)
	for range n {
		kind := mixKinds[rng.IntN(len(mixKinds))]
		if len(live) == 0 && kind != OpSearch {
			kind = OpInsertRandom
		}
		switch kind {
		case OpInsertRandom:
			k := rng.Int64N(maxKey) + 1
			for {
				if _, ok := pos[k]; !ok {
					break
				}
				k = rng.Int64N(maxKey) + 1
			}
			pos[k] = len(live)
			live = append(live, k)
			ops = append(ops, mixOp{OpInsertRandom, k})
		case OpSearch:
			// Some lookups miss on purpose.
			k := rng.Int64N(maxKey) + 1
			if len(live) > 0 && rng.Float64() >= 0.3 {
				k = live[rng.IntN(len(live))]
			}
			ops = append(ops, mixOp{OpSearch, k})
		case OpUpdate:
			ops = append(ops, mixOp{OpUpdate, live[rng.IntN(len(live))]})
		case OpDelete:
			ops = append(ops, mixOp{OpDelete, remove(rng.IntN(len(live)))})
		}
	}
	return ops, len(live)
}

func (w workload) value(i int) []byte {
	return w.values[i%len(w.values)]
}

// Run measures every selected index at every size and returns one result
// per index, size and operation.
func Run(ctx context.Context, c Config) ([]Result, error) {
	factories, err := c.factories()
	if err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewPCG(c.Seed, c.Seed^0x9e3779b97f4a7c15))
	var results []Result
	for _, size := range c.Sizes {
		if size <= 0 {
			return nil, errors.Newf("invalid size %d", size)
		}
		w := newWorkload(rng, size, c)
		for _, f := range factories {
			if err := ctx.Err(); err != nil {
				return results, err
			}
			rs, err := runOne(f, size, w)
			if err != nil {
				return results, errors.Wrapf(err, "%s at %d keys", f.name, size)
			}
			results = append(results, rs...)
		}
	}
	return results, nil
}

func runOne(f factory, size int, w workload) ([]Result, error) {
	var results []Result
	record := func(op Operation, ops int, fn func() error) error {
		var before, after runtime.MemStats
		runtime.ReadMemStats(&before)
		start := time.Now()
		err := fn()
		elapsed := time.Since(start)
		runtime.ReadMemStats(&after)
		results = append(results, Result{
			Index:      f.name,
			Size:       size,
			Operation:  op,
			Ops:        ops,
			Total:      elapsed,
			AllocBytes: after.TotalAlloc - before.TotalAlloc,
		})
		return err
	}

	sorted, err := f.new()
	if err != nil {
		return nil, err
	}
	err = record(OpInsertSorted, size, func() error {
		for i, k := range w.sorted {
			if err := sorted.Insert(k, w.value(i)); err != nil {
				return err
			}
		}
		return nil
	})
	if err == nil {
		err = record(OpMixed, len(w.mix), func() error { return runMix(sorted, w) })
	}
	if err := errors.CombineErrors(err, sorted.Close()); err != nil {
		return nil, err
	}

	idx, err := f.new()
	if err != nil {
		return nil, err
	}
	defer idx.Close()

	steps := []struct {
		op  Operation
		ops int
		fn  func() error
	}{
		{OpInsertRandom, size, func() error {
			for i, k := range w.keys {
				if err := idx.Insert(k, w.value(i)); err != nil {
					return err
				}
			}
			return nil
		}},
		{OpSearch, len(w.lookups), func() error {
			for _, k := range w.lookups {
				if _, ok, err := idx.Search(k); err != nil || !ok {
					return errors.CombineErrors(err, errors.Newf("key %d missing", k))
				}
			}
			return nil
		}},
		{OpRange, len(w.ranges), func() error {
			for _, r := range w.ranges {
				if _, err := idx.Range(r[0], r[1]); err != nil {
					return err
				}
			}
			return nil
		}},
		{OpUpdate, len(w.lookups), func() error {
			for i, k := range w.lookups {
				if err := idx.Update(k, w.value(i+1)); err != nil {
					return err
				}
			}
			return nil
		}},
		{OpDelete, len(w.deletes), func() error {
			for _, k := range w.deletes {
				if err := idx.Delete(k); err != nil {
					return err
				}
			}
			return nil
		}},
	}
	for _, s := range steps {
		if err := record(s.op, s.ops, s.fn); err != nil {
			return nil, errors.Wrapf(err, "%s", s.op)
		}
	}

	if got, want := idx.Len(), size-len(w.deletes); got != want {
		return nil, errors.Newf("%d keys left after deletes, want %d", got, want)
	}
	return results, nil
}

// runMix replays the mixed phase against idx, which must hold exactly the
// workload's keys.
func runMix(idx Index, w workload) error {
	for i, m := range w.mix {
		var err error
		switch m.op {
		case OpInsertRandom:
			err = idx.Insert(m.key, w.value(i))
		case OpSearch:
			_, _, err = idx.Search(m.key)
		case OpUpdate:
			err = idx.Update(m.key, w.value(i+1))
		case OpDelete:
			err = idx.Delete(m.key)
		}
		if err != nil {
			return errors.Wrapf(err, "%s %s %d", OpMixed, m.op, m.key)
		}
	}
	if got := idx.Len(); got != w.mixLen {
		return errors.Newf("%d keys left after mixed phase, want %d", got, w.mixLen)
	}
	return nil
}
