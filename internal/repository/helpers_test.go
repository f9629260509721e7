package repository

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/spec-kit/project-dashboard/internal/persistence"
)

// fakeClock advances by step on every call.
type fakeClock struct {
	mu   sync.Mutex
	now  time.Time
	step time.Duration
}

func newFakeClock(step time.Duration) *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC), step: step}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.now
	c.now = c.now.Add(c.step)
	return t
}

// flakyStore fails reads or writes on demand.
type flakyStore struct {
	persistence.Store
	failReads  bool
	failWrites bool
	writes     int
}

func (s *flakyStore) Read(ctx context.Context, key string) (string, bool, error) {
	if s.failReads {
		return "", false, errors.New("store offline")
	}
	return s.Store.Read(ctx, key)
}

func (s *flakyStore) Write(ctx context.Context, key, value string) error {
	if s.failWrites {
		return errors.New("store offline")
	}
	s.writes++
	return s.Store.Write(ctx, key, value)
}

func strPtr(s string) *string { return &s }
