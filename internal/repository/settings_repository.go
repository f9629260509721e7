package repository

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/project-dashboard/internal/auth"
	"github.com/spec-kit/project-dashboard/internal/domain"
	"github.com/spec-kit/project-dashboard/internal/persistence"
	apperrors "github.com/spec-kit/project-dashboard/pkg/util/errorutil"
)

// Store keys, one per settings record.
const (
	PreferencesKey  = "settings:preferences"
	SecurityKey     = "settings:security"
	SubscriptionKey = "settings:subscription"
	UserKey         = "settings:user"
)

// PasswordHasher hashes a new password for the security record and
// verifies the current one.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hashed, plain string) error
}

// SettingsRepository encapsulates settings persistence.
type SettingsRepository interface {
	InitializeDefaults(ctx context.Context) error
	GetSettingsData(ctx context.Context) (*domain.SettingsData, error)
	UpdateSettings(ctx context.Context, input domain.UpdateSettingsInput) (*domain.SettingsData, error)
}

type settingsRepository struct {
	mu     sync.Mutex
	store  persistence.Store
	hasher PasswordHasher
	opts   options
}

// NewSettingsRepository instantiates repository.
func NewSettingsRepository(store persistence.Store, hasher PasswordHasher, opts ...Option) SettingsRepository {
	return &settingsRepository{store: store, hasher: hasher, opts: applyOptions(opts)}
}

// InitializeDefaults writes the default record for every settings key that
// is absent. Present records are never touched.
func (r *settingsRepository) InitializeDefaults(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	defaults := domain.DefaultSettings()
	records := []struct {
		key   string
		value any
	}{
		{PreferencesKey, defaults.Preferences},
		{SecurityKey, defaults.Security},
		{SubscriptionKey, defaults.Subscription},
		{UserKey, defaults.User},
	}

	for _, rec := range records {
		_, found, err := r.store.Read(ctx, rec.key)
		if err != nil {
			return apperrors.NewStorageReadError(rec.key, err)
		}
		if found {
			continue
		}
		if err := persistence.WriteRecord(ctx, r.store, rec.key, rec.value); err != nil {
			return err
		}
		r.opts.logger.Info("initialized default settings", zap.String("key", rec.key))
	}
	return nil
}

// GetSettingsData falls back to defaults for any absent record.
func (r *settingsRepository) GetSettingsData(ctx context.Context) (*domain.SettingsData, error) {
	data := domain.DefaultSettings()
	if err := readInto(ctx, r.store, PreferencesKey, &data.Preferences); err != nil {
		return nil, err
	}
	if err := readInto(ctx, r.store, SecurityKey, &data.Security); err != nil {
		return nil, err
	}
	if err := readInto(ctx, r.store, SubscriptionKey, &data.Subscription); err != nil {
		return nil, err
	}
	if err := readInto(ctx, r.store, UserKey, &data.User); err != nil {
		return nil, err
	}
	return &data, nil
}

// UpdateSettings merges each present patch onto its record one level deep.
// All patches are validated before the first write; the writes themselves
// are independent, so a storage failure midway leaves earlier records
// updated.
func (r *settingsRepository) UpdateSettings(ctx context.Context, input domain.UpdateSettingsInput) (*domain.SettingsData, error) {
	if input.Empty() {
		return r.GetSettingsData(ctx)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	current, err := r.GetSettingsData(ctx)
	if err != nil {
		return nil, err
	}

	type pendingWrite struct {
		key   string
		value any
	}
	var writes []pendingWrite

	if input.Preferences != nil {
		merged := input.Preferences.Apply(current.Preferences)
		if err := merged.Validate(); err != nil {
			return nil, err
		}
		writes = append(writes, pendingWrite{PreferencesKey, merged})
	}

	if input.Security != nil {
		if err := input.Security.Validate(); err != nil {
			return nil, err
		}
		merged := input.Security.Apply(current.Security)
		if input.Security.NewPassword != nil {
			if err := r.verifyCurrentPassword(current.Security.PasswordHash, input.Security.CurrentPassword); err != nil {
				return nil, err
			}
			hashed, err := r.hasher.Hash(*input.Security.NewPassword)
			if err != nil {
				return nil, apperrors.NewInternalError(err)
			}
			changedAt := r.opts.now().UTC()
			merged.PasswordHash = hashed
			merged.LastPasswordChange = &changedAt
		}
		writes = append(writes, pendingWrite{SecurityKey, merged})
	}

	if input.Subscription != nil {
		merged := input.Subscription.Apply(current.Subscription)
		if err := merged.Validate(); err != nil {
			return nil, err
		}
		writes = append(writes, pendingWrite{SubscriptionKey, merged})
	}

	if input.User != nil {
		merged := input.User.Apply(current.User)
		if err := merged.Validate(); err != nil {
			return nil, err
		}
		writes = append(writes, pendingWrite{UserKey, merged})
	}

	for _, w := range writes {
		if err := persistence.WriteRecord(ctx, r.store, w.key, w.value); err != nil {
			return nil, err
		}
		r.opts.logger.Debug("settings record updated", zap.String("key", w.key))
	}

	return r.GetSettingsData(ctx)
}

// verifyCurrentPassword passes when no password was ever set.
func (r *settingsRepository) verifyCurrentPassword(storedHash string, current *string) error {
	if storedHash == "" {
		return nil
	}
	if current == nil || *current == "" {
		return apperrors.NewValidationError("current password is required", map[string]any{"field": "currentPassword"})
	}
	err := r.hasher.Compare(storedHash, *current)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, auth.ErrPasswordMismatch):
		return apperrors.NewValidationError("current password is incorrect", map[string]any{"field": "currentPassword"})
	default:
		return apperrors.NewInternalError(err)
	}
}

func readInto(ctx context.Context, store persistence.Store, key string, dest any) error {
	_, err := persistence.ReadRecord(ctx, store, key, dest)
	return err
}
