package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/spec-kit/project-dashboard/pkg/util/errorutil"
)

type sampleRecord struct {
	Name      string     `json:"name"`
	CreatedAt time.Time  `json:"createdAt"`
	ExpiresAt *time.Time `json:"expiresAt"`
}

func TestRecordRoundTripRehydratesTimestamps(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(0)
	created := time.Date(2026, 3, 1, 12, 30, 15, 123456789, time.UTC)

	require.NoError(t, WriteRecord(ctx, store, "sample", sampleRecord{Name: "A", CreatedAt: created}))

	raw, _, _ := store.Read(ctx, "sample")
	assert.Contains(t, raw, "2026-03-01T12:30:15.123456789Z")

	var got sampleRecord
	found, err := ReadRecord(ctx, store, "sample", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.True(t, created.Equal(got.CreatedAt))
	assert.Nil(t, got.ExpiresAt)
}

func TestReadRecordMissingAndCorrupt(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(0)

	var got sampleRecord
	found, err := ReadRecord(ctx, store, "absent", &got)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, store.Write(ctx, "broken", "{"))
	_, err = ReadRecord(ctx, store, "broken", &got)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeStorageRead))
}

func TestWriteRecordQuota(t *testing.T) {
	store := NewMemoryStore(8)
	err := WriteRecord(context.Background(), store, "sample", sampleRecord{Name: "too big"})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeStorageQuotaExceeded))
}
