package bptdb

import (
	"maps"
	"math"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"
)

// Column is a named, typed field of a table.
type Column struct {
	Name string
	Type Type
}

// Schema describes the columns of a table and which one is the key.
type Schema struct {
	Columns []Column
	Key     string
}

// Validate checks that the schema is usable: at least one column, unique
// valid names and types, and a key column that exists and is not bool.
func (s Schema) Validate() error {
	if len(s.Columns) == 0 {
		return errors.Wrap(ErrInvalidSchema, "no columns")
	}

	seen := make(map[string]struct{}, len(s.Columns))
	for _, c := range s.Columns {
		if err := validateName(c.Name); err != nil {
			return errors.Mark(errors.Wrapf(err, "column %q", c.Name), ErrInvalidSchema)
		}
		if _, dup := seen[c.Name]; dup {
			return errors.Wrapf(ErrInvalidSchema, "duplicate column %q", c.Name)
		}
		if c.Type < TypeInt || c.Type > TypeBool {
			return errors.Wrapf(ErrInvalidSchema, "column %q has invalid type %d", c.Name, c.Type)
		}
		seen[c.Name] = struct{}{}
	}

	key, ok := s.Column(s.Key)
	if !ok {
		return errors.Wrapf(ErrInvalidSchema, "key column %q not in schema", s.Key)
	}
	if key.Type == TypeBool {
		return errors.Wrapf(ErrInvalidSchema, "key column %q cannot be bool", s.Key)
	}
	return nil
}

// Column returns the column called name.
func (s Schema) Column(name string) (Column, bool) {
	for _, c := range s.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// KeyType returns the type of the key column.
func (s Schema) KeyType() Type {
	c, _ := s.Column(s.Key)
	return c.Type
}

func (s Schema) clone() Schema {
	return Schema{Columns: slices.Clone(s.Columns), Key: s.Key}
}

func (s Schema) String() string {
	var b strings.Builder
	for i, c := range s.Columns {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(c.Name)
		b.WriteByte(':')
		b.WriteString(c.Type.String())
		if c.Name == s.Key {
			b.WriteString(" (key)")
		}
	}
	return b.String()
}

// ParseSchema parses a "name:type,name:type" column list. key names the
// key column.
func ParseSchema(columns, key string) (Schema, error) {
	s := Schema{Key: key}
	for _, field := range strings.Split(columns, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		name, typ, ok := strings.Cut(field, ":")
		if !ok {
			return Schema{}, errors.Wrapf(ErrInvalidSchema, "column %q has no type", field)
		}
		t, err := ParseType(strings.TrimSpace(typ))
		if err != nil {
			return Schema{}, errors.Mark(err, ErrInvalidSchema)
		}
		s.Columns = append(s.Columns, Column{Name: strings.TrimSpace(name), Type: t})
	}
	if err := s.Validate(); err != nil {
		return Schema{}, err
	}
	return s, nil
}

// key converts v to the key column's type.
func (s Schema) key(v Value) (Value, error) {
	kt := s.KeyType()
	k, ok := v.convert(kt)
	if !ok {
		return Value{}, errors.Wrapf(ErrInvalidKey, "got %s, want %s", v.Type(), kt)
	}
	if k.typ == TypeFloat && math.IsNaN(k.f) {
		return Value{}, errors.Wrap(ErrInvalidKey, "NaN is not an ordered key")
	}
	if k.typ == TypeFloat && k.f == 0 {
		// -0 and 0 compare equal; keep one representation for the cache.
		k.f = 0
	}
	return k, nil
}

// record validates r and returns a normalized copy holding exactly the
// schema's columns with ints widened for float columns.
func (s Schema) record(r Record) (Record, error) {
	out := make(Record, len(s.Columns))
	for _, c := range s.Columns {
		v, ok := r[c.Name]
		if !ok {
			return nil, errors.Wrapf(ErrInvalidRecord, "missing column %q", c.Name)
		}
		cv, ok := v.convert(c.Type)
		if !ok {
			return nil, errors.Wrapf(ErrInvalidRecord, "column %q is %s, want %s", c.Name, v.Type(), c.Type)
		}
		out[c.Name] = cv
	}
	if len(r) != len(s.Columns) {
		for name := range r {
			if _, ok := s.Column(name); !ok {
				return nil, errors.Wrapf(ErrInvalidRecord, "unknown column %q", name)
			}
		}
	}

	k, err := s.key(out[s.Key])
	if err != nil {
		return nil, err
	}
	out[s.Key] = k
	return out, nil
}

// Record is one row, keyed by column name.
type Record map[string]Value

// Clone returns a copy of r.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	return maps.Clone(r)
}

func validateName(name string) error {
	if name == "" {
		return errors.Wrap(ErrInvalidName, "name is empty")
	}
	if strings.ContainsFunc(name, func(r rune) bool { return r <= ' ' }) {
		return errors.Wrapf(ErrInvalidName, "%q contains whitespace or control characters", name)
	}
	return nil
}
