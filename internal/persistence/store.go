package persistence

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/project-dashboard/internal/observability"
)

// ErrQuotaExceeded is returned by drivers when a write would exceed the
// store's size ceiling. The previous value under the key is kept.
var ErrQuotaExceeded = errors.New("storage quota exceeded")

// Store is a durable string-keyed key-value store. The unit of storage is
// a whole serialized record; there are no partial updates and no locking
// across a Read/Write pair.
type Store interface {
	Read(ctx context.Context, key string) (string, bool, error)
	Write(ctx context.Context, key, value string) error
	Ping(ctx context.Context) error
	Close() error
}

type instrumentedStore struct {
	next    Store
	driver  string
	logger  *zap.Logger
	metrics *observability.Metrics
}

// Instrument decorates a store with debug logging and operation counters.
func Instrument(next Store, driver string, logger *zap.Logger, metrics *observability.Metrics) Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &instrumentedStore{next: next, driver: driver, logger: logger, metrics: metrics}
}

func (s *instrumentedStore) Read(ctx context.Context, key string) (string, bool, error) {
	start := time.Now()
	value, found, err := s.next.Read(ctx, key)
	outcome := observability.OutcomeOK
	switch {
	case err != nil:
		outcome = observability.OutcomeError
		s.logger.Warn("store read failed", zap.String("driver", s.driver), zap.String("key", key), zap.Error(err))
	case !found:
		outcome = observability.OutcomeMiss
	}
	s.metrics.RecordStoreOp(s.driver, "read", outcome, time.Since(start))
	s.logger.Debug("store read", zap.String("key", key), zap.Bool("found", found), zap.Int("bytes", len(value)))
	return value, found, err
}

func (s *instrumentedStore) Write(ctx context.Context, key, value string) error {
	start := time.Now()
	err := s.next.Write(ctx, key, value)
	outcome := observability.OutcomeOK
	switch {
	case errors.Is(err, ErrQuotaExceeded):
		outcome = observability.OutcomeQuotaHit
		s.logger.Warn("store quota exceeded", zap.String("driver", s.driver), zap.String("key", key), zap.Int("bytes", len(value)))
	case err != nil:
		outcome = observability.OutcomeError
		s.logger.Warn("store write failed", zap.String("driver", s.driver), zap.String("key", key), zap.Error(err))
	}
	s.metrics.RecordStoreOp(s.driver, "write", outcome, time.Since(start))
	s.logger.Debug("store write", zap.String("key", key), zap.Int("bytes", len(value)))
	return err
}

func (s *instrumentedStore) Ping(ctx context.Context) error {
	return s.next.Ping(ctx)
}

func (s *instrumentedStore) Close() error {
	return s.next.Close()
}
