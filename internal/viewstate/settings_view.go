package viewstate

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/project-dashboard/internal/domain"
	apperrors "github.com/spec-kit/project-dashboard/pkg/util/errorutil"
)

// SettingsSource is the settings data the view mirrors.
type SettingsSource interface {
	GetSettingsData(ctx context.Context) (*domain.SettingsData, error)
	UpdateSettings(ctx context.Context, input domain.UpdateSettingsInput) (*domain.SettingsData, error)
}

// SettingsView caches the settings records.
type SettingsView struct {
	source SettingsSource
	logger *zap.Logger

	mu       sync.RWMutex
	settings *domain.SettingsData
	loading  bool
	err      *apperrors.DomainError
	gen      uint64
	ready    chan struct{}
}

// NewSettingsView starts the initial fetch in the background.
func NewSettingsView(ctx context.Context, source SettingsSource, logger *zap.Logger) *SettingsView {
	if logger == nil {
		logger = zap.NewNop()
	}
	v := &SettingsView{
		source:  source,
		logger:  logger.Named("settings_view"),
		loading: true,
		ready:   make(chan struct{}),
	}
	go func() {
		defer close(v.ready)
		_ = v.fetch(ctx)
	}()
	return v
}

func (v *SettingsView) Wait(ctx context.Context) error {
	select {
	case <-v.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (v *SettingsView) Loading() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.loading
}

func (v *SettingsView) Err() *apperrors.DomainError {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.err
}

// Settings returns a copy of the cached settings, or nil before the first
// successful fetch.
func (v *SettingsView) Settings() *domain.SettingsData {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if v.settings == nil {
		return nil
	}
	out := v.settings.Clone()
	return &out
}

func (v *SettingsView) Refetch(ctx context.Context) error {
	return v.fetch(ctx)
}

// UpdateSettings writes through the source and caches the merged result.
func (v *SettingsView) UpdateSettings(ctx context.Context, input domain.UpdateSettingsInput) (*domain.SettingsData, error) {
	data, err := v.source.UpdateSettings(ctx, input)
	if err != nil {
		wrapped := apperrors.Wrap(err, "Failed to update settings")
		v.mu.Lock()
		v.err = wrapped
		v.mu.Unlock()
		v.logger.Warn("update failed", zap.Error(err))
		return nil, wrapped
	}
	cached := data.Clone()
	v.mu.Lock()
	v.settings = &cached
	v.gen++
	v.mu.Unlock()
	return data, nil
}

// ChangeLanguage persists the interface language.
func (v *SettingsView) ChangeLanguage(ctx context.Context, language string) (*domain.SettingsData, error) {
	return v.UpdateSettings(ctx, domain.UpdateSettingsInput{
		Preferences: &domain.PreferencesPatch{Language: &language},
	})
}

// ChangeTheme persists the color scheme.
func (v *SettingsView) ChangeTheme(ctx context.Context, theme domain.Theme) (*domain.SettingsData, error) {
	return v.UpdateSettings(ctx, domain.UpdateSettingsInput{
		Preferences: &domain.PreferencesPatch{Theme: &theme},
	})
}

func (v *SettingsView) fetch(ctx context.Context) error {
	v.mu.Lock()
	v.loading = true
	v.err = nil
	gen := v.gen
	v.mu.Unlock()

	data, err := v.source.GetSettingsData(ctx)

	v.mu.Lock()
	defer v.mu.Unlock()
	v.loading = false
	if err != nil {
		v.err = apperrors.Wrap(err, "Failed to fetch settings")
		v.logger.Warn("fetch failed", zap.Error(err))
		return v.err
	}
	if v.gen != gen {
		// An update confirmed after this read already holds newer data.
		return nil
	}
	cached := data.Clone()
	v.settings = &cached
	return nil
}
