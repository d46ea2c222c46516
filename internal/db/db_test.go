package db

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T, driver string) *DB {
	t.Helper()
	opts := DefaultOptions()
	opts.Driver = driver
	database, err := Open(MemoryPath, opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	return database
}

func TestOpen_Drivers(t *testing.T) {
	for _, driver := range []string{DriverMattn, DriverModernc} {
		t.Run(driver, func(t *testing.T) {
			ctx := context.Background()
			database := newTestDB(t, driver)
			assert.Equal(t, driver, database.Driver())

			n, err := database.Execute(ctx,
				`INSERT INTO kv (key, value, ttl, timestamp) VALUES (?, ?, ?, ?)`,
				"k", `"v"`, -1, 1000)
			require.NoError(t, err)
			assert.Equal(t, int64(1), n)

			rows, err := database.QueryAll(ctx, `SELECT key, value, ttl, timestamp FROM kv`)
			require.NoError(t, err)
			require.Len(t, rows, 1)
			assert.Equal(t, Row{Key: "k", Value: `"v"`, TTL: -1, Timestamp: 1000}, rows[0])
		})
	}
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(MemoryPath, Options{Driver: "postgres"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database driver")
}

func TestOpen_EmptyPath(t *testing.T) {
	_, err := Open("", DefaultOptions())
	require.Error(t, err)
}

func TestOpen_FilePersists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "store.db")

	first, err := Open(path, DefaultOptions())
	require.NoError(t, err)
	_, err = first.Execute(ctx,
		`INSERT INTO kv (key, value, ttl, timestamp) VALUES (?, ?, ?, ?)`,
		"persisted", `1`, -1, 1)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	// Reopening runs the schema again; it must be idempotent.
	second, err := Open(path, DefaultOptions())
	require.NoError(t, err)
	t.Cleanup(func() { _ = second.Close() })

	rows, err := second.QueryAll(ctx, `SELECT key, value, ttl, timestamp FROM kv`)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "persisted", rows[0].Key)
}

func TestCaseSensitiveLike(t *testing.T) {
	ctx := context.Background()
	database := newTestDB(t, DriverMattn)

	for _, key := range []string{"Apple", "apple"} {
		_, err := database.Execute(ctx,
			`INSERT INTO kv (key, value, ttl, timestamp) VALUES (?, '1', -1, 0)`, key)
		require.NoError(t, err)
	}

	rows, err := database.QueryAll(ctx,
		`SELECT key, value, ttl, timestamp FROM kv WHERE key LIKE ?`, "a%")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "apple", rows[0].Key)
}

func TestExecute_MalformedStatement(t *testing.T) {
	database := newTestDB(t, DriverMattn)
	_, err := database.Execute(context.Background(), `DELETE FROM nowhere`)
	require.Error(t, err)
	assert.False(t, IsBusy(err))
}

func TestIsBusy(t *testing.T) {
	assert.False(t, IsBusy(nil))
	assert.False(t, IsBusy(errors.New("database is locked")))
}
