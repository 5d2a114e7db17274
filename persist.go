package bptdb

import (
	"slices"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"github.com/alexhholmes/bptdb/bptree"
)

// On-disk form of the catalog. Records are stored as value lists in schema
// column order.
type (
	catalogFile struct {
		Databases []databaseFile `cbor:"1,keyasint"`
	}

	databaseFile struct {
		Name   string      `cbor:"1,keyasint"`
		Tables []tableFile `cbor:"2,keyasint,omitempty"`
	}

	tableFile struct {
		ID      []byte       `cbor:"1,keyasint"`
		Name    string       `cbor:"2,keyasint"`
		Key     string       `cbor:"3,keyasint"`
		Columns []columnFile `cbor:"4,keyasint"`
		Order   int          `cbor:"5,keyasint"`
		Root    uint32       `cbor:"6,keyasint"`
		Nodes   []nodeFile   `cbor:"7,keyasint"`
	}

	columnFile struct {
		Name string `cbor:"1,keyasint"`
		Type uint8  `cbor:"2,keyasint"`
	}

	nodeFile struct {
		ID       uint32        `cbor:"1,keyasint"`
		Kind     uint8         `cbor:"2,keyasint"`
		Keys     []valueFile   `cbor:"3,keyasint,omitempty"`
		Rows     [][]valueFile `cbor:"4,keyasint,omitempty"`
		Children []uint32      `cbor:"5,keyasint,omitempty"`
		Next     uint32        `cbor:"6,keyasint,omitempty"`
	}

	valueFile struct {
		Type  uint8   `cbor:"1,keyasint"`
		Int   int64   `cbor:"2,keyasint,omitempty"`
		Float float64 `cbor:"3,keyasint,omitempty"`
		Str   string  `cbor:"4,keyasint,omitempty"`
		Bool  bool    `cbor:"5,keyasint,omitempty"`
	}
)

func encodeValue(v Value) valueFile {
	return valueFile{Type: uint8(v.typ), Int: v.i, Float: v.f, Str: v.s, Bool: v.b}
}

func decodeValue(vf valueFile) (Value, error) {
	t := Type(vf.Type)
	if t < TypeInt || t > TypeBool {
		return Value{}, errors.Wrapf(ErrCorruptSnapshot, "value with invalid type %d", vf.Type)
	}
	return Value{typ: t, i: vf.Int, f: vf.Float, s: vf.Str, b: vf.Bool}, nil
}

func encodeTable(t *Table) tableFile {
	snap := t.snapshot()

	tf := tableFile{
		ID:    slices.Clone(t.id[:]),
		Name:  t.name,
		Key:   t.schema.Key,
		Order: snap.Order,
		Root:  uint32(snap.Root),
		Nodes: make([]nodeFile, 0, len(snap.Nodes)),
	}
	for _, c := range t.schema.Columns {
		tf.Columns = append(tf.Columns, columnFile{Name: c.Name, Type: uint8(c.Type)})
	}

	for _, ns := range snap.Nodes {
		nf := nodeFile{
			ID:   uint32(ns.ID),
			Kind: uint8(ns.Kind),
			Next: uint32(ns.Next),
		}
		for _, k := range ns.Keys {
			nf.Keys = append(nf.Keys, encodeValue(k))
		}
		for _, rec := range ns.Values {
			row := make([]valueFile, len(t.schema.Columns))
			for i, c := range t.schema.Columns {
				row[i] = encodeValue(rec[c.Name])
			}
			nf.Rows = append(nf.Rows, row)
		}
		for _, child := range ns.Children {
			nf.Children = append(nf.Children, uint32(child))
		}
		tf.Nodes = append(tf.Nodes, nf)
	}
	return tf
}

// decodeTable rebuilds a table, checking every record against the schema
// and the key it is stored under before the tree itself is verified.
func decodeTable(tf tableFile, opts tableOptions, treeOpts []bptree.Option) (*Table, error) {
	id, err := uuid.FromBytes(tf.ID)
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "table %q id", tf.Name), ErrCorruptSnapshot)
	}
	if err := validateName(tf.Name); err != nil {
		return nil, errors.Mark(err, ErrCorruptSnapshot)
	}

	schema := Schema{Key: tf.Key}
	for _, cf := range tf.Columns {
		schema.Columns = append(schema.Columns, Column{Name: cf.Name, Type: Type(cf.Type)})
	}
	if err := schema.Validate(); err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "table %q", tf.Name), ErrCorruptSnapshot)
	}

	snap := bptree.Snapshot[Value, Record]{
		Order: tf.Order,
		Root:  bptree.NodeID(tf.Root),
		Nodes: make([]bptree.NodeSnapshot[Value, Record], 0, len(tf.Nodes)),
	}
	for _, nf := range tf.Nodes {
		ns := bptree.NodeSnapshot[Value, Record]{
			ID:   bptree.NodeID(nf.ID),
			Kind: bptree.Kind(nf.Kind),
			Next: bptree.NodeID(nf.Next),
		}
		for _, kf := range nf.Keys {
			k, err := decodeValue(kf)
			if err != nil {
				return nil, err
			}
			ns.Keys = append(ns.Keys, k)
		}
		for i, row := range nf.Rows {
			rec, err := decodeRow(schema, row)
			if err != nil {
				return nil, errors.Wrapf(err, "table %q node %d", tf.Name, nf.ID)
			}
			if i >= len(ns.Keys) || rec[schema.Key].Compare(ns.Keys[i]) != 0 {
				return nil, errors.Wrapf(ErrCorruptSnapshot, "table %q node %d: record %d stored under the wrong key", tf.Name, nf.ID, i)
			}
			ns.Values = append(ns.Values, rec)
		}
		for _, child := range nf.Children {
			ns.Children = append(ns.Children, bptree.NodeID(child))
		}
		snap.Nodes = append(snap.Nodes, ns)
	}

	tree, err := bptree.Restore(snap, CompareValues, treeOpts...)
	if err != nil {
		return nil, errors.Wrapf(err, "table %q", tf.Name)
	}

	t := &Table{id: id, name: tf.Name, schema: schema, tree: tree}
	if err := t.initCache(opts.cacheSize); err != nil {
		return nil, err
	}
	return t, nil
}

func decodeRow(schema Schema, row []valueFile) (Record, error) {
	if len(row) != len(schema.Columns) {
		return nil, errors.Wrapf(ErrCorruptSnapshot, "row has %d values for %d columns", len(row), len(schema.Columns))
	}
	r := make(Record, len(row))
	for i, vf := range row {
		v, err := decodeValue(vf)
		if err != nil {
			return nil, err
		}
		r[schema.Columns[i].Name] = v
	}
	rec, err := schema.record(r)
	if err != nil {
		return nil, errors.Mark(err, ErrCorruptSnapshot)
	}
	return rec, nil
}
