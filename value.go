package bptdb

import (
	"cmp"
	"encoding/binary"
	"math"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/cockroachdb/errors"
)

// Type is the type of a column.
type Type uint8

const (
	TypeInvalid Type = iota
	TypeInt
	TypeFloat
	TypeString
	TypeBool
)

func (t Type) String() string {
	switch t {
	case TypeInt:
		return "int"
	case TypeFloat:
		return "float"
	case TypeString:
		return "string"
	case TypeBool:
		return "bool"
	default:
		return "invalid"
	}
}

// ParseType parses a column type name as printed by Type.String.
func ParseType(s string) (Type, error) {
	switch strings.ToLower(s) {
	case "int":
		return TypeInt, nil
	case "float":
		return TypeFloat, nil
	case "string", "str":
		return TypeString, nil
	case "bool":
		return TypeBool, nil
	default:
		return TypeInvalid, errors.Newf("unknown column type %q", s)
	}
}

// Value is a single typed scalar. Values are comparable and can be used as
// map keys; the zero Value has TypeInvalid.
type Value struct {
	typ Type
	i   int64
	f   float64
	s   string
	b   bool
}

func Int(v int64) Value     { return Value{typ: TypeInt, i: v} }
func Float(v float64) Value { return Value{typ: TypeFloat, f: v} }
func String(v string) Value { return Value{typ: TypeString, s: v} }
func Bool(v bool) Value     { return Value{typ: TypeBool, b: v} }

// Type returns the value's type.
func (v Value) Type() Type { return v.typ }

// IsValid reports whether v holds a value.
func (v Value) IsValid() bool { return v.typ != TypeInvalid }

func (v Value) AsInt() int64     { return v.i }
func (v Value) AsFloat() float64 { return v.f }
func (v Value) AsString() string { return v.s }
func (v Value) AsBool() bool     { return v.b }

// number returns v as a float64 for mixed int and float comparison.
func (v Value) number() float64 {
	if v.typ == TypeInt {
		return float64(v.i)
	}
	return v.f
}

func (v Value) numeric() bool {
	return v.typ == TypeInt || v.typ == TypeFloat
}

// Compare orders values of the same type naturally. Ints and floats compare
// numerically with each other; otherwise values of different types are
// ordered by type. False sorts before true.
func (v Value) Compare(o Value) int {
	switch {
	case v.typ == o.typ:
		switch v.typ {
		case TypeInt:
			return cmp.Compare(v.i, o.i)
		case TypeFloat:
			return cmp.Compare(v.f, o.f)
		case TypeString:
			return strings.Compare(v.s, o.s)
		case TypeBool:
			switch {
			case v.b == o.b:
				return 0
			case !v.b:
				return -1
			default:
				return 1
			}
		}
		return 0
	case v.numeric() && o.numeric():
		if c := cmp.Compare(v.number(), o.number()); c != 0 {
			return c
		}
		return cmp.Compare(v.typ, o.typ)
	default:
		return cmp.Compare(v.typ, o.typ)
	}
}

// CompareValues is Value.Compare as a function, for use as a tree
// comparator.
func CompareValues(a, b Value) int {
	return a.Compare(b)
}

func (v Value) String() string {
	switch v.typ {
	case TypeInt:
		return strconv.FormatInt(v.i, 10)
	case TypeFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case TypeString:
		return v.s
	case TypeBool:
		return strconv.FormatBool(v.b)
	default:
		return "<invalid>"
	}
}

// ParseValue parses s as a value of type t.
func ParseValue(t Type, s string) (Value, error) {
	switch t {
	case TypeInt:
		i, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return Value{}, errors.Wrapf(err, "parse %q as int", s)
		}
		return Int(i), nil
	case TypeFloat:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return Value{}, errors.Wrapf(err, "parse %q as float", s)
		}
		return Float(f), nil
	case TypeString:
		return String(s), nil
	case TypeBool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return Value{}, errors.Wrapf(err, "parse %q as bool", s)
		}
		return Bool(b), nil
	default:
		return Value{}, errors.Newf("cannot parse into %s", t)
	}
}

// convert returns v as type t, widening ints to floats. The second result
// is false when v cannot be represented as t.
func (v Value) convert(t Type) (Value, bool) {
	switch {
	case v.typ == t:
		return v, true
	case v.typ == TypeInt && t == TypeFloat:
		return Float(float64(v.i)), true
	default:
		return Value{}, false
	}
}

// hashValue hashes a value for the record cache.
func hashValue(v Value) uint32 {
	var h uint64
	switch v.typ {
	case TypeInt:
		h = xxhash.Sum64(binary.LittleEndian.AppendUint64(nil, uint64(v.i)))
	case TypeFloat:
		h = xxhash.Sum64(binary.LittleEndian.AppendUint64(nil, math.Float64bits(v.f)))
	case TypeString:
		h = xxhash.Sum64String(v.s)
	case TypeBool:
		if v.b {
			h = 1
		}
	}
	h ^= uint64(v.typ) << 56
	return uint32(h ^ h>>32)
}

