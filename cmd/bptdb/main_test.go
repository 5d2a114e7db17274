package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexhholmes/bptdb"
)

func TestSeedDatabase(t *testing.T) {
	t.Parallel()

	db := bptdb.New(bptdb.WithInvariantChecks(true))
	require.NoError(t, seedDatabase(db, 250))

	people, err := db.Table("demo", "people")
	require.NoError(t, err)
	assert.Equal(t, 250, people.Len())
	require.NoError(t, people.Verify())

	rec, err := people.Get(bptdb.Int(100))
	require.NoError(t, err)
	assert.NotEmpty(t, rec["email"].AsString())

	assert.ErrorIs(t, seedDatabase(db, 1), bptdb.ErrDatabaseExists)
}

func TestNewLogger(t *testing.T) {
	t.Parallel()

	for _, format := range []string{"none", "slog", "zap", "logrus"} {
		l, err := newLogger(format)
		require.NoError(t, err, format)
		assert.NotNil(t, l)
	}
	_, err := newLogger("syslog")
	assert.Error(t, err)
}
