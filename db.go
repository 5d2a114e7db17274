package bptdb

import (
	"os"
	"slices"
	"sync"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/alexhholmes/bptdb/internal/snapshot"
)

// DB is a catalog of named databases, each holding named tables. All
// catalog operations are safe for concurrent use. Tables returned by the
// catalog synchronize their own reads and writes.
type DB struct {
	mu        sync.RWMutex
	opts      DBOptions
	databases map[string]map[string]*Table
	path      string // Set by Open; target of Save("")
}

// New creates an empty in-memory catalog.
func New(options ...DBOption) *DB {
	opts := defaultDBOptions()
	for _, opt := range options {
		opt(&opts)
	}
	return &DB{
		opts:      opts,
		databases: make(map[string]map[string]*Table),
	}
}

// Open creates a catalog backed by the snapshot file at path, loading it
// when the file exists.
func Open(path string, options ...DBOption) (*DB, error) {
	d := New(options...)
	d.path = path

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			d.opts.logger.Info("snapshot not found, starting empty", "path", path)
			return d, nil
		}
		return nil, err
	}
	if err := d.Load(path); err != nil {
		return nil, err
	}
	return d, nil
}

// Path returns the snapshot path given to Open, if any.
func (d *DB) Path() string {
	return d.path
}

// CreateDatabase adds an empty database.
func (d *DB) CreateDatabase(name string) error {
	if err := validateName(name); err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.databases[name]; ok {
		return errors.Wrapf(ErrDatabaseExists, "%q", name)
	}
	d.databases[name] = make(map[string]*Table)
	d.opts.logger.Info("database created", "database", name)
	return nil
}

// DropDatabase removes a database and all of its tables.
func (d *DB) DropDatabase(name string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	tables, ok := d.databases[name]
	if !ok {
		return errors.Wrapf(ErrDatabaseNotFound, "%q", name)
	}
	delete(d.databases, name)
	d.opts.logger.Info("database dropped", "database", name, "tables", len(tables))
	return nil
}

// ListDatabases returns the database names in sorted order.
func (d *DB) ListDatabases() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return sortedKeys(d.databases)
}

// CreateTable adds a table to database db. The table uses the catalog's
// default order and cache size unless overridden by options.
func (d *DB) CreateTable(db, name string, schema Schema, options ...TableOption) (*Table, error) {
	opts := tableOptions{order: d.opts.defaultOrder, cacheSize: d.opts.cacheSize}
	for _, opt := range options {
		opt(&opts)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	tables, ok := d.databases[db]
	if !ok {
		return nil, errors.Wrapf(ErrDatabaseNotFound, "%q", db)
	}
	if _, ok := tables[name]; ok {
		return nil, errors.Wrapf(ErrTableExists, "%q in database %q", name, db)
	}

	t, err := newTable(name, schema, opts, d.opts.treeOptions())
	if err != nil {
		return nil, err
	}
	tables[name] = t
	d.opts.logger.Info("table created",
		"database", db, "table", name, "id", t.id,
		"order", opts.order, "cache", opts.cacheSize, "schema", schema.String())
	return t, nil
}

// DropTable removes a table from database db.
func (d *DB) DropTable(db, name string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	tables, ok := d.databases[db]
	if !ok {
		return errors.Wrapf(ErrDatabaseNotFound, "%q", db)
	}
	if _, ok := tables[name]; !ok {
		return errors.Wrapf(ErrTableNotFound, "%q in database %q", name, db)
	}
	delete(tables, name)
	d.opts.logger.Info("table dropped", "database", db, "table", name)
	return nil
}

// ListTables returns the table names of database db in sorted order.
func (d *DB) ListTables(db string) ([]string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	tables, ok := d.databases[db]
	if !ok {
		return nil, errors.Wrapf(ErrDatabaseNotFound, "%q", db)
	}
	return sortedKeys(tables), nil
}

// Table returns table name of database db.
func (d *DB) Table(db, name string) (*Table, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	tables, ok := d.databases[db]
	if !ok {
		return nil, errors.Wrapf(ErrDatabaseNotFound, "%q", db)
	}
	t, ok := tables[name]
	if !ok {
		return nil, errors.Wrapf(ErrTableNotFound, "%q in database %q", name, db)
	}
	return t, nil
}

// Save writes the whole catalog to path, or to the path given to Open when
// path is empty. The file is replaced atomically.
func (d *DB) Save(path string) error {
	if path == "" {
		path = d.path
	}
	if path == "" {
		return errors.New("save: no path given and catalog was not opened from a file")
	}

	start := time.Now()
	d.mu.RLock()
	cf := d.encode()
	d.mu.RUnlock()

	n, err := snapshot.WriteFile(path, cf, snapshot.WriteOptions{
		Compress: d.opts.compression,
		Sync:     d.opts.syncOnSave,
	})
	if err != nil {
		d.opts.logger.Error("save failed", "path", path, "error", err)
		return errors.Wrapf(err, "save %s", path)
	}
	d.opts.logger.Info("catalog saved",
		"path", path, "bytes", n, "databases", len(cf.Databases), "duration", time.Since(start))
	return nil
}

// Load replaces the whole catalog with the snapshot at path. The current
// state is kept unless the file decodes and every table verifies.
func (d *DB) Load(path string) error {
	start := time.Now()

	var cf catalogFile
	n, err := snapshot.ReadFile(path, &cf)
	if err != nil {
		d.opts.logger.Error("load failed", "path", path, "error", err)
		return errors.Wrapf(err, "load %s", path)
	}

	databases, err := d.decode(cf)
	if err != nil {
		d.opts.logger.Error("load failed", "path", path, "error", err)
		return errors.Wrapf(err, "load %s", path)
	}

	d.mu.Lock()
	d.databases = databases
	d.mu.Unlock()

	d.opts.logger.Info("catalog loaded",
		"path", path, "bytes", n, "databases", len(databases), "duration", time.Since(start))
	return nil
}

// encode converts the catalog to its file form. Caller holds d.mu.
func (d *DB) encode() catalogFile {
	var cf catalogFile
	for _, db := range sortedKeys(d.databases) {
		df := databaseFile{Name: db}
		tables := d.databases[db]
		for _, name := range sortedKeys(tables) {
			df.Tables = append(df.Tables, encodeTable(tables[name]))
		}
		cf.Databases = append(cf.Databases, df)
	}
	return cf
}

func (d *DB) decode(cf catalogFile) (map[string]map[string]*Table, error) {
	opts := tableOptions{cacheSize: d.opts.cacheSize}
	treeOpts := d.opts.treeOptions()

	databases := make(map[string]map[string]*Table, len(cf.Databases))
	for _, df := range cf.Databases {
		if err := validateName(df.Name); err != nil {
			return nil, errors.Mark(err, ErrCorruptSnapshot)
		}
		if _, dup := databases[df.Name]; dup {
			return nil, errors.Wrapf(ErrCorruptSnapshot, "duplicate database %q", df.Name)
		}

		tables := make(map[string]*Table, len(df.Tables))
		for _, tf := range df.Tables {
			if _, dup := tables[tf.Name]; dup {
				return nil, errors.Wrapf(ErrCorruptSnapshot, "duplicate table %q in database %q", tf.Name, df.Name)
			}
			t, err := decodeTable(tf, opts, treeOpts)
			if err != nil {
				return nil, errors.Wrapf(err, "database %q", df.Name)
			}
			tables[tf.Name] = t
		}
		databases[df.Name] = tables
	}
	return databases, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
