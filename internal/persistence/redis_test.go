package persistence

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/project-dashboard/internal/config"
	"github.com/spec-kit/project-dashboard/internal/observability"
)

func setupTestRedis(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	r := NewRedis(config.RedisConfig{Addr: mr.Addr()}, zap.NewNop())
	store := NewRedisStore(r, "test:")
	t.Cleanup(func() { _ = store.Close() })
	return store, mr
}

func TestRedisStoreReadWrite(t *testing.T) {
	ctx := context.Background()
	store, mr := setupTestRedis(t)

	_, found, err := store.Read(ctx, "projects")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, store.Write(ctx, "projects", `[{"id":"1"}]`))
	value, found, err := store.Read(ctx, "projects")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `[{"id":"1"}]`, value)

	raw, err := mr.Get("test:projects")
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"1"}]`, raw)
	assert.NoError(t, store.Ping(ctx))
}

func TestRedisStoreUnavailable(t *testing.T) {
	ctx := context.Background()
	store, mr := setupTestRedis(t)
	mr.Close()

	_, _, err := store.Read(ctx, "projects")
	assert.Error(t, err)
	assert.Error(t, store.Write(ctx, "projects", "[]"))
}

func TestInstrumentRecordsOutcomes(t *testing.T) {
	ctx := context.Background()
	redisStore, _ := setupTestRedis(t)
	metrics := observability.NewMetrics()
	store := Instrument(redisStore, config.StorageDriverRedis, zap.NewNop(), metrics)

	_, _, err := store.Read(ctx, "missing")
	require.NoError(t, err)
	require.NoError(t, store.Write(ctx, "k", "v"))
	_, _, err = store.Read(ctx, "k")
	require.NoError(t, err)

	ops := metrics.Snapshot().StoreOps
	assert.Equal(t, int64(1), ops["redis|read|miss"])
	assert.Equal(t, int64(1), ops["redis|read|ok"])
	assert.Equal(t, int64(1), ops["redis|write|ok"])
}
