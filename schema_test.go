package bptdb

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func usersSchema() Schema {
	return Schema{
		Columns: []Column{
			{Name: "id", Type: TypeInt},
			{Name: "name", Type: TypeString},
			{Name: "score", Type: TypeFloat},
			{Name: "active", Type: TypeBool},
		},
		Key: "id",
	}
}

func user(id int64, name string, score float64) Record {
	return Record{
		"id":     Int(id),
		"name":   String(name),
		"score":  Float(score),
		"active": Bool(true),
	}
}

func TestSchemaValidate(t *testing.T) {
	t.Parallel()

	require.NoError(t, usersSchema().Validate())

	tests := []struct {
		name    string
		schema  Schema
		wantErr error
	}{
		{name: "no_columns", schema: Schema{Key: "id"}, wantErr: ErrInvalidSchema},
		{
			name:    "missing_key",
			schema:  Schema{Columns: []Column{{Name: "id", Type: TypeInt}}, Key: "uid"},
			wantErr: ErrInvalidSchema,
		},
		{
			name:    "duplicate_column",
			schema:  Schema{Columns: []Column{{Name: "id", Type: TypeInt}, {Name: "id", Type: TypeString}}, Key: "id"},
			wantErr: ErrInvalidSchema,
		},
		{
			name:    "bool_key",
			schema:  Schema{Columns: []Column{{Name: "flag", Type: TypeBool}}, Key: "flag"},
			wantErr: ErrInvalidSchema,
		},
		{
			name:    "invalid_type",
			schema:  Schema{Columns: []Column{{Name: "id", Type: TypeInvalid}}, Key: "id"},
			wantErr: ErrInvalidSchema,
		},
		{
			name:    "blank_column_name",
			schema:  Schema{Columns: []Column{{Name: "", Type: TypeInt}}, Key: ""},
			wantErr: ErrInvalidName,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.schema.Validate(), tt.wantErr)
		})
	}
}

func TestParseSchema(t *testing.T) {
	t.Parallel()

	s, err := ParseSchema("id:int, name:string,score:float,active:bool", "id")
	require.NoError(t, err)
	assert.Equal(t, usersSchema(), s)
	assert.Equal(t, TypeInt, s.KeyType())
	assert.Equal(t, "id:int (key), name:string, score:float, active:bool", s.String())

	_, err = ParseSchema("id", "id")
	assert.ErrorIs(t, err, ErrInvalidSchema)
	_, err = ParseSchema("id:uuid", "id")
	assert.ErrorIs(t, err, ErrInvalidSchema)
	_, err = ParseSchema("id:int", "name")
	assert.ErrorIs(t, err, ErrInvalidSchema)
}

func TestSchemaRecord(t *testing.T) {
	t.Parallel()

	s := usersSchema()

	t.Run("valid", func(t *testing.T) {
		in := user(1, "ada", 9.5)
		out, err := s.record(in)
		require.NoError(t, err)
		assert.Equal(t, in, out)

		// The result is a copy.
		out["name"] = String("changed")
		assert.Equal(t, String("ada"), in["name"])
	})

	t.Run("int_widened_for_float", func(t *testing.T) {
		in := user(2, "bob", 0)
		in["score"] = Int(7)
		out, err := s.record(in)
		require.NoError(t, err)
		assert.Equal(t, Float(7), out["score"])
	})

	t.Run("missing_column", func(t *testing.T) {
		in := user(3, "cy", 1)
		delete(in, "active")
		_, err := s.record(in)
		assert.ErrorIs(t, err, ErrInvalidRecord)
	})

	t.Run("unknown_column", func(t *testing.T) {
		in := user(4, "di", 1)
		in["email"] = String("di@example.com")
		_, err := s.record(in)
		assert.ErrorIs(t, err, ErrInvalidRecord)
	})

	t.Run("wrong_type", func(t *testing.T) {
		in := user(5, "ed", 1)
		in["id"] = String("5")
		_, err := s.record(in)
		assert.ErrorIs(t, err, ErrInvalidRecord)
	})

	t.Run("float_not_narrowed_to_int", func(t *testing.T) {
		in := user(6, "fa", 1)
		in["id"] = Float(6)
		_, err := s.record(in)
		assert.ErrorIs(t, err, ErrInvalidRecord)
	})
}

func TestSchemaKey(t *testing.T) {
	t.Parallel()

	floatKeyed := Schema{Columns: []Column{{Name: "k", Type: TypeFloat}}, Key: "k"}
	k, err := floatKeyed.key(Int(3))
	require.NoError(t, err)
	assert.Equal(t, Float(3), k)

	k, err = floatKeyed.key(Float(math.Copysign(0, -1)))
	require.NoError(t, err)
	assert.False(t, math.Signbit(k.AsFloat()), "negative zero key should be normalized")

	_, err = floatKeyed.key(Float(math.NaN()))
	assert.ErrorIs(t, err, ErrInvalidKey)

	_, err = usersSchema().key(String("1"))
	assert.ErrorIs(t, err, ErrInvalidKey)
}
