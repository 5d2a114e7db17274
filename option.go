package bptdb

import (
	"github.com/alexhholmes/bptdb/bptree"
)

const (
	// DefaultOrder is the B+ tree order used for tables created without
	// WithTableOrder.
	DefaultOrder = 8

	// DefaultCacheSize is the per-table point lookup cache capacity in
	// records.
	DefaultCacheSize = 1024
)

// DBOptions configures database behavior.
type DBOptions struct {
	logger          Logger
	defaultOrder    int
	cacheSize       int  // Per-table record cache entries. 0 disables caching.
	compression     bool // Snappy-compress snapshot payloads.
	syncOnSave      bool // fsync snapshot files before Save returns.
	invariantChecks *bool
}

func defaultDBOptions() DBOptions {
	return DBOptions{
		logger:       DiscardLogger{},
		defaultOrder: DefaultOrder,
		cacheSize:    DefaultCacheSize,
		compression:  true,
		syncOnSave:   true,
	}
}

// treeOptions returns the engine options every table of the database uses.
func (o DBOptions) treeOptions() []bptree.Option {
	if o.invariantChecks == nil {
		return nil
	}
	return []bptree.Option{bptree.WithInvariantChecks(*o.invariantChecks)}
}

// DBOption configures database options using the functional options pattern.
type DBOption func(*DBOptions)

// WithLogger sets the logger for catalog events. Anything with the slog
// method set works, including *slog.Logger and the adapters in pkg logger.
//
//goland:noinspection GoUnusedExportedFunction
func WithLogger(logger Logger) DBOption {
	return func(opts *DBOptions) {
		if logger == nil {
			logger = DiscardLogger{}
		}
		opts.logger = logger
	}
}

// WithDefaultOrder sets the B+ tree order for new tables that do not pick
// their own.
//
//goland:noinspection GoUnusedExportedFunction
func WithDefaultOrder(order int) DBOption {
	return func(opts *DBOptions) {
		opts.defaultOrder = order
	}
}

// WithCacheSize sets the default number of records each table keeps in its
// point lookup cache. Zero disables the cache.
//
//goland:noinspection GoUnusedExportedFunction
func WithCacheSize(records int) DBOption {
	return func(opts *DBOptions) {
		opts.cacheSize = records
	}
}

// WithCompression toggles snappy compression of snapshot files.
//
//goland:noinspection GoUnusedExportedFunction
func WithCompression(enabled bool) DBOption {
	return func(opts *DBOptions) {
		opts.compression = enabled
	}
}

// WithSyncOnSave toggles fsync of snapshot files. Disabling it trades
// durability of the latest Save for speed.
//
//goland:noinspection GoUnusedExportedFunction
func WithSyncOnSave(enabled bool) DBOption {
	return func(opts *DBOptions) {
		opts.syncOnSave = enabled
	}
}

// WithInvariantChecks makes every table verify its tree after each
// mutation, overriding the build default.
//
//goland:noinspection GoUnusedExportedFunction
func WithInvariantChecks(enabled bool) DBOption {
	return func(opts *DBOptions) {
		opts.invariantChecks = &enabled
	}
}

// tableOptions configures a single table.
type tableOptions struct {
	order     int
	cacheSize int
}

// TableOption configures a table at creation.
type TableOption func(*tableOptions)

// WithTableOrder sets the B+ tree order of the table.
//
//goland:noinspection GoUnusedExportedFunction
func WithTableOrder(order int) TableOption {
	return func(opts *tableOptions) {
		opts.order = order
	}
}

// WithTableCacheSize sets the table's point lookup cache capacity in
// records. Zero disables the cache.
//
//goland:noinspection GoUnusedExportedFunction
func WithTableCacheSize(records int) TableOption {
	return func(opts *tableOptions) {
		opts.cacheSize = records
	}
}
