package sqlkv_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dokzlo13/sqlkv"
)

func TestOpen_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := sqlkv.Open(sqlkv.Memory, sqlkv.WithLogger(zerolog.Nop()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, store.Set(ctx, "greeting", "hello", sqlkv.WithTTL(60)))

	res, err := store.Get(ctx, "greeting", sqlkv.WithMetadata())
	require.NoError(t, err)

	entry, ok := res.Any().(sqlkv.Entry)
	require.True(t, ok)
	assert.Equal(t, "hello", entry.Value)
	assert.Equal(t, int64(60), entry.TTL)

	err = store.Set(ctx, "bad*key", 1)
	assert.ErrorIs(t, err, sqlkv.ErrInvalidKey)

	var kvErr *sqlkv.Error
	require.ErrorAs(t, err, &kvErr)
	assert.Equal(t, "bad*key", kvErr.Key)
}

func TestOpen_PureGoDriver(t *testing.T) {
	ctx := context.Background()
	store, err := sqlkv.Open(sqlkv.Memory,
		sqlkv.WithDriver(sqlkv.DriverPureGo),
		sqlkv.WithLogger(zerolog.Nop()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	_, err = store.SetAsync(ctx, "k", []int{1, 2, 3}).Wait()
	require.NoError(t, err)

	res, err := store.Get(ctx, "*")
	require.NoError(t, err)
	assert.Equal(t, []any{[]any{float64(1), float64(2), float64(3)}}, res.Values())
}
