package bptdb

import (
	"bytes"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setup creates a catalog with invariant checks on and a "shop" database.
func setup(t *testing.T, opts ...DBOption) *DB {
	t.Helper()
	db := New(append([]DBOption{WithInvariantChecks(true)}, opts...)...)
	require.NoError(t, db.CreateDatabase("shop"))
	return db
}

func fill(t *testing.T, tbl *Table, n int64) {
	t.Helper()
	for i := int64(1); i <= n; i++ {
		require.NoError(t, tbl.Insert(user(i, "user", float64(i))))
	}
}

func TestCatalogDatabases(t *testing.T) {
	t.Parallel()

	db := setup(t)
	require.NoError(t, db.CreateDatabase("analytics"))
	assert.ErrorIs(t, db.CreateDatabase("shop"), ErrDatabaseExists)
	assert.ErrorIs(t, db.CreateDatabase(""), ErrInvalidName)
	assert.ErrorIs(t, db.CreateDatabase("two words"), ErrInvalidName)

	assert.Equal(t, []string{"analytics", "shop"}, db.ListDatabases())

	require.NoError(t, db.DropDatabase("analytics"))
	assert.ErrorIs(t, db.DropDatabase("analytics"), ErrDatabaseNotFound)
	assert.Equal(t, []string{"shop"}, db.ListDatabases())
}

func TestCatalogTables(t *testing.T) {
	t.Parallel()

	db := setup(t, WithDefaultOrder(5))
	users, err := db.CreateTable("shop", "users", usersSchema())
	require.NoError(t, err)
	assert.Equal(t, 5, users.Info().Order)

	orders, err := db.CreateTable("shop", "orders", usersSchema(), WithTableOrder(3))
	require.NoError(t, err)
	assert.Equal(t, 3, orders.Info().Order)

	_, err = db.CreateTable("shop", "users", usersSchema())
	assert.ErrorIs(t, err, ErrTableExists)
	_, err = db.CreateTable("nope", "users", usersSchema())
	assert.ErrorIs(t, err, ErrDatabaseNotFound)
	_, err = db.CreateTable("shop", "broken", Schema{Key: "id"})
	assert.ErrorIs(t, err, ErrInvalidSchema)
	_, err = db.CreateTable("shop", "", usersSchema())
	assert.ErrorIs(t, err, ErrInvalidName)

	names, err := db.ListTables("shop")
	require.NoError(t, err)
	assert.Equal(t, []string{"orders", "users"}, names)
	_, err = db.ListTables("nope")
	assert.ErrorIs(t, err, ErrDatabaseNotFound)

	got, err := db.Table("shop", "users")
	require.NoError(t, err)
	assert.Same(t, users, got)
	_, err = db.Table("shop", "missing")
	assert.ErrorIs(t, err, ErrTableNotFound)
	_, err = db.Table("nope", "users")
	assert.ErrorIs(t, err, ErrDatabaseNotFound)

	require.NoError(t, db.DropTable("shop", "orders"))
	assert.ErrorIs(t, db.DropTable("shop", "orders"), ErrTableNotFound)
	assert.ErrorIs(t, db.DropTable("nope", "orders"), ErrDatabaseNotFound)

	// Dropping a database drops its tables.
	require.NoError(t, db.DropDatabase("shop"))
	require.NoError(t, db.CreateDatabase("shop"))
	names, err = db.ListTables("shop")
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestSaveLoad(t *testing.T) {
	t.Parallel()

	for _, compress := range []bool{true, false} {
		path := filepath.Join(t.TempDir(), "catalog.bptd")

		db := setup(t, WithCompression(compress), WithSyncOnSave(false))
		require.NoError(t, db.CreateDatabase("empty"))
		users, err := db.CreateTable("shop", "users", usersSchema(), WithTableOrder(3))
		require.NoError(t, err)
		fill(t, users, 100)
		require.NoError(t, users.Delete(Int(50)))
		require.NoError(t, db.Save(path))

		loaded := New(WithInvariantChecks(true))
		require.NoError(t, loaded.Load(path))
		assert.Equal(t, []string{"empty", "shop"}, loaded.ListDatabases())

		got, err := loaded.Table("shop", "users")
		require.NoError(t, err)
		assert.Equal(t, users.ID(), got.ID())
		assert.Equal(t, users.Info(), got.Info())
		assert.Equal(t, users.All(), got.All())
		require.NoError(t, got.Verify())

		// The loaded table is fully writable.
		require.NoError(t, got.Insert(user(50, "back", 0)))
		assert.Equal(t, 100, got.Len())
	}
}

func TestSaveLoadFloatKeys(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "catalog.bptd")
	db := setup(t, WithSyncOnSave(false))
	schema := Schema{
		Columns: []Column{{Name: "k", Type: TypeFloat}, {Name: "v", Type: TypeFloat}},
		Key:     "k",
	}
	tbl, err := db.CreateTable("shop", "t", schema, WithTableOrder(3))
	require.NoError(t, err)

	assert.ErrorIs(t, tbl.Insert(Record{"k": Float(math.NaN()), "v": Float(0)}), ErrInvalidKey)
	keys := []float64{math.Inf(-1), -2.5, math.Copysign(0, -1), 1, 1e300, math.Inf(1)}
	for _, k := range keys {
		require.NoError(t, tbl.Insert(Record{"k": Float(k), "v": Float(math.NaN())}))
	}
	require.NoError(t, db.Save(path))

	loaded := New(WithInvariantChecks(true))
	require.NoError(t, loaded.Load(path))
	got := mustTable(t, loaded, "shop", "t").All()
	require.Len(t, got, len(keys))
	for i, rec := range got {
		assert.Equal(t, 0, rec["k"].Compare(Float(keys[i])), "key %d", i)
		assert.True(t, math.IsNaN(rec["v"].AsFloat()), "non-key NaN survives")
	}
}

func mustTable(t *testing.T, db *DB, database, name string) *Table {
	t.Helper()
	tbl, err := db.Table(database, name)
	require.NoError(t, err)
	return tbl
}

func TestOpenCreatesAndReloads(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "catalog.bptd")

	db, err := Open(path)
	require.NoError(t, err)
	assert.Empty(t, db.ListDatabases())
	assert.Equal(t, path, db.Path())

	require.NoError(t, db.CreateDatabase("shop"))
	users, err := db.CreateTable("shop", "users", usersSchema())
	require.NoError(t, err)
	fill(t, users, 10)
	require.NoError(t, db.Save(""))

	reopened, err := Open(path)
	require.NoError(t, err)
	got := mustTable(t, reopened, "shop", "users")
	rec, err := got.Get(Int(4))
	require.NoError(t, err)
	assert.Equal(t, Float(4), rec["score"])

	assert.Error(t, New().Save(""), "save without a path should fail")
}

func TestLoadFailureKeepsState(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	good := filepath.Join(dir, "good.bptd")

	src := setup(t)
	users, err := src.CreateTable("shop", "users", usersSchema())
	require.NoError(t, err)
	fill(t, users, 30)
	require.NoError(t, src.Save(good))

	data, err := os.ReadFile(good)
	require.NoError(t, err)

	corrupt := func(name string, mutate func([]byte) []byte) string {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, mutate(bytes.Clone(data)), 0600))
		return p
	}

	tests := []struct {
		name    string
		path    string
		wantErr error
	}{
		{
			name:    "missing_file",
			path:    filepath.Join(dir, "missing.bptd"),
			wantErr: os.ErrNotExist,
		},
		{
			name:    "bad_magic",
			path:    corrupt("magic.bptd", func(b []byte) []byte { b[0] = 'x'; return b }),
			wantErr: ErrInvalidMagicNumber,
		},
		{
			name:    "bad_version",
			path:    corrupt("version.bptd", func(b []byte) []byte { b[4] = 9; return b }),
			wantErr: ErrInvalidVersion,
		},
		{
			name:    "flipped_payload",
			path:    corrupt("checksum.bptd", func(b []byte) []byte { b[len(b)-1] ^= 0xff; return b }),
			wantErr: ErrInvalidChecksum,
		},
		{
			name:    "truncated",
			path:    corrupt("short.bptd", func(b []byte) []byte { return b[:len(b)/2] }),
			wantErr: ErrTruncated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := setup(t)
			_, err := db.CreateTable("shop", "keep", usersSchema())
			require.NoError(t, err)

			err = db.Load(tt.path)
			assert.ErrorIs(t, err, tt.wantErr)

			names, err := db.ListTables("shop")
			require.NoError(t, err)
			assert.Equal(t, []string{"keep"}, names, "failed load must not change the catalog")
		})
	}
}

func TestLoadRejectsInconsistentCatalog(t *testing.T) {
	t.Parallel()

	src := setup(t)
	users, err := src.CreateTable("shop", "users", usersSchema(), WithTableOrder(3))
	require.NoError(t, err)
	fill(t, users, 7)

	tests := []struct {
		name   string
		mutate func(cf *catalogFile)
	}{
		{
			name: "duplicate_database",
			mutate: func(cf *catalogFile) {
				cf.Databases = append(cf.Databases, cf.Databases[0])
			},
		},
		{
			name: "record_under_wrong_key",
			mutate: func(cf *catalogFile) {
				nodes := cf.Databases[0].Tables[0].Nodes
				leaf := &nodes[len(nodes)-1]
				leaf.Rows[0][0] = encodeValue(Int(1000))
			},
		},
		{
			name: "unsorted_leaf",
			mutate: func(cf *catalogFile) {
				nodes := cf.Databases[0].Tables[0].Nodes
				leaf := &nodes[3]
				leaf.Keys[0], leaf.Keys[1] = leaf.Keys[1], leaf.Keys[0]
				leaf.Rows[0], leaf.Rows[1] = leaf.Rows[1], leaf.Rows[0]
			},
		},
		{
			name: "bad_table_id",
			mutate: func(cf *catalogFile) {
				cf.Databases[0].Tables[0].ID = []byte{1, 2, 3}
			},
		},
		{
			name: "bad_value_type",
			mutate: func(cf *catalogFile) {
				cf.Databases[0].Tables[0].Nodes[0].Keys[0].Type = 42
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src.mu.RLock()
			cf := src.encode()
			src.mu.RUnlock()
			tt.mutate(&cf)

			_, err := src.decode(cf)
			assert.ErrorIs(t, err, ErrCorruptSnapshot)
		})
	}
}

func TestCatalogLogging(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	db := New(WithLogger(logger))
	require.NoError(t, db.CreateDatabase("shop"))
	_, err := db.CreateTable("shop", "users", usersSchema())
	require.NoError(t, err)
	require.NoError(t, db.Save(filepath.Join(t.TempDir(), "c.bptd")))

	out := buf.String()
	assert.Contains(t, out, "database created")
	assert.Contains(t, out, "table created")
	assert.Contains(t, out, "catalog saved")
}
