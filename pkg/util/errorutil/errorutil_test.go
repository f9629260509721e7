package errorutil

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrap(t *testing.T) {
	t.Run("keeps typed errors", func(t *testing.T) {
		original := NewNotFound("project", map[string]any{"id": "p1"})
		wrapped := Wrap(fmt.Errorf("update: %w", original), "ignored")
		require.NotNil(t, wrapped)
		assert.Equal(t, CodeNotFound, wrapped.Code)
		assert.Equal(t, "project not found", wrapped.Message)
	})

	t.Run("wraps unknown errors with a message", func(t *testing.T) {
		cause := errors.New("boom")
		wrapped := Wrap(cause, "Failed to fetch projects")
		require.NotNil(t, wrapped)
		assert.Equal(t, CodeUnknown, wrapped.Code)
		assert.Equal(t, "Failed to fetch projects", wrapped.Message)
		assert.ErrorIs(t, wrapped, cause)
	})

	t.Run("falls back to the cause text", func(t *testing.T) {
		wrapped := Wrap(errors.New("disk on fire"), "")
		assert.Equal(t, "disk on fire", wrapped.Message)
	})

	t.Run("nil stays nil", func(t *testing.T) {
		assert.Nil(t, Wrap(nil, "x"))
	})
}

func TestToDomainError(t *testing.T) {
	de := ToDomainError(errors.New("raw"))
	assert.Equal(t, CodeInternal, de.Code)
	assert.Equal(t, http.StatusInternalServerError, de.HTTPStatus)

	quota := ToDomainError(NewQuotaExceeded("projects", nil))
	assert.Equal(t, http.StatusInsufficientStorage, quota.HTTPStatus)
	assert.True(t, HasCode(quota, CodeStorageQuotaExceeded))
	assert.False(t, HasCode(errors.New("raw"), CodeStorageQuotaExceeded))
}
