package persistence

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/project-dashboard/internal/config"
	"github.com/spec-kit/project-dashboard/internal/observability"
)

// Open builds the store selected by cfg.Storage.Driver, instrumented with
// logging and metrics.
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger, metrics *observability.Metrics) (Store, error) {
	var (
		store Store
		err   error
	)
	driver := cfg.Storage.Driver

	switch driver {
	case config.StorageDriverMemory:
		store = NewMemoryStore(cfg.Storage.QuotaBytes)
	case config.StorageDriverFile:
		store, err = OpenFileStore(cfg.Storage.FilePath, cfg.Storage.QuotaBytes)
		if err != nil {
			return nil, fmt.Errorf("open file store: %w", err)
		}
		logger.Info("using file store", zap.String("path", cfg.Storage.FilePath))
	case config.StorageDriverRedis:
		store = NewRedisStore(NewRedis(cfg.Redis, logger), cfg.Storage.KeyPrefix)
	case config.StorageDriverPostgres:
		pg, err := NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		if cfg.Postgres.RunMigrations {
			if err := RunMigrations(ctx, pg.Pool, cfg.Postgres.MigrationsDir, logger); err != nil {
				pg.Close()
				return nil, err
			}
		}
		store = NewPostgresStore(pg)
	case config.StorageDriverMongo:
		store, err = NewMongoStore(ctx, cfg.Mongo, logger)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown storage driver %q", driver)
	}

	return Instrument(store, driver, logger, metrics), nil
}
