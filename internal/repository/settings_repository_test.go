package repository

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/project-dashboard/internal/auth"
	"github.com/spec-kit/project-dashboard/internal/domain"
	"github.com/spec-kit/project-dashboard/internal/persistence"
	apperrors "github.com/spec-kit/project-dashboard/pkg/util/errorutil"
)

func setupSettingsRepo(t *testing.T, opts ...Option) (SettingsRepository, *persistence.MemoryStore) {
	t.Helper()
	store := persistence.NewMemoryStore(0)
	return NewSettingsRepository(store, auth.NewPasswordHasher(bcrypt.MinCost), opts...), store
}

func TestSettingsRepository_DefaultsWithoutStoredRecords(t *testing.T) {
	repo, _ := setupSettingsRepo(t)

	data, err := repo.GetSettingsData(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultSettings(), *data)
	assert.Equal(t, domain.ThemeSystem, data.Preferences.Theme)
	assert.Equal(t, "en", data.Preferences.Language)
	assert.Equal(t, "UTC", data.Preferences.Timezone)
	assert.True(t, data.Preferences.Notifications.Email)
	assert.True(t, data.Preferences.Notifications.Push)
	assert.False(t, data.Preferences.Notifications.SMS)
	assert.Equal(t, 1, data.Security.ActiveSessions)
	assert.Nil(t, data.Security.LastPasswordChange)
	assert.Equal(t, domain.PlanFree, data.Subscription.Plan)
	assert.Equal(t, domain.SubscriptionActive, data.Subscription.Status)
	assert.False(t, data.Subscription.AutoRenew)
}

func TestSettingsRepository_InitializeDefaultsIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo, store := setupSettingsRepo(t)

	require.NoError(t, repo.InitializeDefaults(ctx))
	for _, key := range []string{PreferencesKey, SecurityKey, SubscriptionKey, UserKey} {
		_, found, err := store.Read(ctx, key)
		require.NoError(t, err)
		assert.True(t, found, key)
	}

	lang := "fr"
	_, err := repo.UpdateSettings(ctx, domain.UpdateSettingsInput{
		Preferences: &domain.PreferencesPatch{Language: &lang},
	})
	require.NoError(t, err)

	before, _, err := store.Read(ctx, PreferencesKey)
	require.NoError(t, err)
	require.NoError(t, repo.InitializeDefaults(ctx))
	after, _, err := store.Read(ctx, PreferencesKey)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	data, err := repo.GetSettingsData(ctx)
	require.NoError(t, err)
	assert.Equal(t, "fr", data.Preferences.Language)
}

func TestSettingsRepository_InitializeDefaultsFillsOnlyMissing(t *testing.T) {
	ctx := context.Background()
	repo, store := setupSettingsRepo(t)

	require.NoError(t, store.Write(ctx, SubscriptionKey, `{"plan":"premium","status":"active","expiresAt":null,"autoRenew":true}`))
	require.NoError(t, repo.InitializeDefaults(ctx))

	data, err := repo.GetSettingsData(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.PlanPremium, data.Subscription.Plan)
	assert.True(t, data.Subscription.AutoRenew)
	assert.Equal(t, domain.DefaultPreferences(), data.Preferences)
}

func TestSettingsRepository_ShallowMergeKeepsSiblings(t *testing.T) {
	ctx := context.Background()
	repo, _ := setupSettingsRepo(t)
	require.NoError(t, repo.InitializeDefaults(ctx))

	dark := domain.ThemeDark
	_, err := repo.UpdateSettings(ctx, domain.UpdateSettingsInput{
		Preferences: &domain.PreferencesPatch{Theme: &dark},
	})
	require.NoError(t, err)

	lang := "fr"
	data, err := repo.UpdateSettings(ctx, domain.UpdateSettingsInput{
		Preferences: &domain.PreferencesPatch{Language: &lang},
	})
	require.NoError(t, err)

	assert.Equal(t, "fr", data.Preferences.Language)
	assert.Equal(t, domain.ThemeDark, data.Preferences.Theme)
	assert.Equal(t, "UTC", data.Preferences.Timezone)
	assert.Equal(t, domain.DefaultPreferences().Notifications, data.Preferences.Notifications)
	assert.Equal(t, domain.DefaultSecurity(), data.Security)
}

func TestSettingsRepository_NotificationsReplacedWholesale(t *testing.T) {
	ctx := context.Background()
	repo, _ := setupSettingsRepo(t)

	data, err := repo.UpdateSettings(ctx, domain.UpdateSettingsInput{
		Preferences: &domain.PreferencesPatch{
			Notifications: &domain.NotificationChannels{SMS: true},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.NotificationChannels{Email: false, Push: false, SMS: true}, data.Preferences.Notifications)
}

func TestSettingsRepository_PasswordChange(t *testing.T) {
	ctx := context.Background()
	changedAt := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	repo, store := setupSettingsRepo(t, WithClock(func() time.Time { return changedAt }))

	password := "correct horse battery"
	data, err := repo.UpdateSettings(ctx, domain.UpdateSettingsInput{
		Security: &domain.SecurityPatch{NewPassword: &password},
	})
	require.NoError(t, err)

	require.NotNil(t, data.Security.LastPasswordChange)
	assert.True(t, data.Security.LastPasswordChange.Equal(changedAt))
	assert.NotEqual(t, password, data.Security.PasswordHash)

	hasher := auth.NewPasswordHasher(bcrypt.MinCost)
	assert.NoError(t, hasher.Compare(data.Security.PasswordHash, password))
	assert.ErrorIs(t, hasher.Compare(data.Security.PasswordHash, "wrong password"), auth.ErrPasswordMismatch)

	raw, _, err := store.Read(ctx, SecurityKey)
	require.NoError(t, err)
	assert.NotContains(t, raw, password)
}

func TestSettingsRepository_ValidationRejectsWholeUpdate(t *testing.T) {
	ctx := context.Background()
	repo, _ := setupSettingsRepo(t)
	require.NoError(t, repo.InitializeDefaults(ctx))

	dark := domain.ThemeDark
	badPlan := domain.SubscriptionPlan("platinum")
	_, err := repo.UpdateSettings(ctx, domain.UpdateSettingsInput{
		Preferences:  &domain.PreferencesPatch{Theme: &dark},
		Subscription: &domain.SubscriptionPatch{Plan: &badPlan},
	})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))

	data, err := repo.GetSettingsData(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.ThemeSystem, data.Preferences.Theme, "valid patch must not land when a sibling is rejected")
}

func TestSettingsRepository_RejectsInvalidValues(t *testing.T) {
	ctx := context.Background()
	repo, _ := setupSettingsRepo(t)

	short := "short"
	negative := -1
	badTheme := domain.Theme("neon")
	badZone := "Mars/Olympus"
	badEmail := "not-an-email"

	cases := map[string]domain.UpdateSettingsInput{
		"short password":    {Security: &domain.SecurityPatch{NewPassword: &short}},
		"negative sessions": {Security: &domain.SecurityPatch{ActiveSessions: &negative}},
		"theme":             {Preferences: &domain.PreferencesPatch{Theme: &badTheme}},
		"timezone":          {Preferences: &domain.PreferencesPatch{Timezone: &badZone}},
		"email":             {User: &domain.ProfilePatch{Email: &badEmail}},
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := repo.UpdateSettings(ctx, input)
			assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation), "got %v", err)
		})
	}
}

func TestSettingsRepository_EmptyUpdateWritesNothing(t *testing.T) {
	ctx := context.Background()
	store := &flakyStore{Store: persistence.NewMemoryStore(0)}
	repo := NewSettingsRepository(store, auth.NewPasswordHasher(bcrypt.MinCost))

	data, err := repo.UpdateSettings(ctx, domain.UpdateSettingsInput{})
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultSettings(), *data)
	assert.Zero(t, store.writes)
}

func TestSettingsRepository_StorageErrors(t *testing.T) {
	ctx := context.Background()
	store := &flakyStore{Store: persistence.NewMemoryStore(0), failReads: true}
	repo := NewSettingsRepository(store, auth.NewPasswordHasher(bcrypt.MinCost))

	_, err := repo.GetSettingsData(ctx)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeStorageRead))
	assert.True(t, apperrors.HasCode(repo.InitializeDefaults(ctx), apperrors.CodeStorageRead))

	store.failReads = false
	store.failWrites = true
	assert.True(t, apperrors.HasCode(repo.InitializeDefaults(ctx), apperrors.CodeStorageWrite))
}

func TestSettingsRepository_CorruptRecordIsReadError(t *testing.T) {
	ctx := context.Background()
	repo, store := setupSettingsRepo(t)
	require.NoError(t, store.Write(ctx, PreferencesKey, "{not json"))

	_, err := repo.GetSettingsData(ctx)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeStorageRead))
}

func TestSettingsRepository_PasswordOverByteLimitIsValidationError(t *testing.T) {
	repo, store := setupSettingsRepo(t)

	accented := strings.Repeat("é", 40)
	_, err := repo.UpdateSettings(context.Background(), domain.UpdateSettingsInput{
		Security: &domain.SecurityPatch{NewPassword: &accented},
	})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation), "got %v", err)
	assert.False(t, apperrors.HasCode(err, apperrors.CodeInternal))

	_, found, readErr := store.Read(context.Background(), SecurityKey)
	require.NoError(t, readErr)
	assert.False(t, found)
}

func TestSettingsRepository_PasswordChangeRequiresCurrentPassword(t *testing.T) {
	ctx := context.Background()
	repo, _ := setupSettingsRepo(t)
	hasher := auth.NewPasswordHasher(bcrypt.MinCost)

	first := "first password"
	_, err := repo.UpdateSettings(ctx, domain.UpdateSettingsInput{
		Security: &domain.SecurityPatch{NewPassword: &first},
	})
	require.NoError(t, err)

	second := "second password"
	_, err = repo.UpdateSettings(ctx, domain.UpdateSettingsInput{
		Security: &domain.SecurityPatch{NewPassword: &second},
	})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation), "missing current password")

	wrong := "not the password"
	_, err = repo.UpdateSettings(ctx, domain.UpdateSettingsInput{
		Security: &domain.SecurityPatch{CurrentPassword: &wrong, NewPassword: &second},
	})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation), "wrong current password")

	data, err := repo.GetSettingsData(ctx)
	require.NoError(t, err)
	assert.NoError(t, hasher.Compare(data.Security.PasswordHash, first), "rejected changes keep the old hash")

	data, err = repo.UpdateSettings(ctx, domain.UpdateSettingsInput{
		Security: &domain.SecurityPatch{CurrentPassword: &first, NewPassword: &second},
	})
	require.NoError(t, err)
	assert.NoError(t, hasher.Compare(data.Security.PasswordHash, second))
}

func TestSettingsRepository_ClearSubscriptionExpiry(t *testing.T) {
	ctx := context.Background()
	repo, _ := setupSettingsRepo(t)

	expires := time.Date(2027, 2, 1, 0, 0, 0, 0, time.UTC)
	data, err := repo.UpdateSettings(ctx, domain.UpdateSettingsInput{
		Subscription: &domain.SubscriptionPatch{ExpiresAt: &expires},
	})
	require.NoError(t, err)
	require.NotNil(t, data.Subscription.ExpiresAt)

	data, err = repo.UpdateSettings(ctx, domain.UpdateSettingsInput{
		Subscription: &domain.SubscriptionPatch{ClearExpiresAt: true},
	})
	require.NoError(t, err)
	assert.Nil(t, data.Subscription.ExpiresAt)
}
