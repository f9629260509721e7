package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	apperrors "github.com/spec-kit/project-dashboard/pkg/util/errorutil"
)

// ReadRecord decodes the JSON record stored under key into dest.
// It reports false when the key is absent.
func ReadRecord(ctx context.Context, store Store, key string, dest any) (bool, error) {
	raw, found, err := store.Read(ctx, key)
	if err != nil {
		return false, apperrors.NewStorageReadError(key, err)
	}
	if !found {
		return false, nil
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		return false, apperrors.NewStorageReadError(key, fmt.Errorf("decode record: %w", err))
	}
	return true, nil
}

// WriteRecord replaces the record under key with the JSON encoding of value.
func WriteRecord(ctx context.Context, store Store, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return apperrors.NewStorageWriteError(key, fmt.Errorf("encode record: %w", err))
	}
	if err := store.Write(ctx, key, string(raw)); err != nil {
		if errors.Is(err, ErrQuotaExceeded) {
			return apperrors.NewQuotaExceeded(key, err)
		}
		return apperrors.NewStorageWriteError(key, err)
	}
	return nil
}
