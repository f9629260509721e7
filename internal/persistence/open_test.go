package persistence

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/project-dashboard/internal/config"
	"github.com/spec-kit/project-dashboard/internal/observability"
)

func TestOpenSelectsDriver(t *testing.T) {
	ctx := context.Background()
	metrics := observability.NewMetrics()

	cfg := &config.Config{Storage: config.StorageConfig{
		Driver:   config.StorageDriverFile,
		FilePath: filepath.Join(t.TempDir(), "store.json"),
	}}
	store, err := Open(ctx, cfg, zap.NewNop(), metrics)
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Write(ctx, "k", "v"))
	assert.Equal(t, int64(1), metrics.Snapshot().StoreOps["file|write|ok"])

	cfg.Storage.Driver = "etcd"
	_, err = Open(ctx, cfg, zap.NewNop(), metrics)
	assert.Error(t, err)
}

func TestOpenPostgresRequiresDSN(t *testing.T) {
	cfg := &config.Config{Storage: config.StorageConfig{Driver: config.StorageDriverPostgres}}
	_, err := Open(context.Background(), cfg, zap.NewNop(), nil)
	assert.Error(t, err)
}
