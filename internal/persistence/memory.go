package persistence

import (
	"context"
	"fmt"
	"sync"
)

// MemoryStore keeps entries in process memory. Usage is the sum of key and
// value byte lengths and is capped by quota when quota > 0.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]string
	quota   int64
	used    int64
	// flush runs under the write lock after an entry changed; a failure
	// rolls the entry back.
	flush func(entries map[string]string) error
}

// NewMemoryStore returns an empty store limited to quota bytes.
func NewMemoryStore(quota int64) *MemoryStore {
	return &MemoryStore{entries: map[string]string{}, quota: quota}
}

func newMemoryStoreWith(entries map[string]string, quota int64, flush func(map[string]string) error) *MemoryStore {
	s := &MemoryStore{entries: entries, quota: quota, flush: flush}
	if s.entries == nil {
		s.entries = map[string]string{}
	}
	for k, v := range s.entries {
		s.used += entrySize(k, v)
	}
	return s
}

func (s *MemoryStore) Read(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.entries[key]
	return value, ok, nil
}

func (s *MemoryStore) Write(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	previous, existed := s.entries[key]
	used := s.used + entrySize(key, value)
	if existed {
		used -= entrySize(key, previous)
	}
	if s.quota > 0 && used > s.quota {
		return fmt.Errorf("write %q (%d of %d bytes): %w", key, used, s.quota, ErrQuotaExceeded)
	}

	s.entries[key] = value
	if s.flush != nil {
		if err := s.flush(s.entries); err != nil {
			if existed {
				s.entries[key] = previous
			} else {
				delete(s.entries, key)
			}
			return err
		}
	}
	s.used = used
	return nil
}

// Usage reports the bytes currently accounted against the quota.
func (s *MemoryStore) Usage() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.used
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

func (s *MemoryStore) Close() error { return nil }

func entrySize(key, value string) int64 {
	return int64(len(key) + len(value))
}
