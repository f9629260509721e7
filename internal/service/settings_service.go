package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/project-dashboard/internal/domain"
	"github.com/spec-kit/project-dashboard/internal/events"
	"github.com/spec-kit/project-dashboard/internal/repository"
)

// SettingsService coordinates settings workflows.
type SettingsService struct {
	settings   repository.SettingsRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
	ownerID    string
}

// NewSettingsService constructs the service.
func NewSettingsService(settings repository.SettingsRepository, dispatcher events.Dispatcher, logger *zap.Logger, ownerID string) *SettingsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SettingsService{settings: settings, dispatcher: dispatcher, logger: logger, ownerID: ownerID}
}

func (s *SettingsService) InitializeDefaults(ctx context.Context) error {
	return s.settings.InitializeDefaults(ctx)
}

func (s *SettingsService) GetSettingsData(ctx context.Context) (*domain.SettingsData, error) {
	return s.settings.GetSettingsData(ctx)
}

func (s *SettingsService) UpdateSettings(ctx context.Context, input domain.UpdateSettingsInput) (*domain.SettingsData, error) {
	data, err := s.settings.UpdateSettings(ctx, input)
	if err != nil {
		return nil, err
	}
	if records := touchedRecords(input); len(records) > 0 {
		s.publishEvent(ctx, events.Event{
			Type:    events.EventSettingsUpdated,
			Payload: events.SettingsUpdatedPayload{Records: records},
		})
	}
	if input.Security != nil && input.Security.NewPassword != nil && data.Security.LastPasswordChange != nil {
		s.publishEvent(ctx, events.Event{
			Type:      events.EventPasswordChanged,
			Timestamp: *data.Security.LastPasswordChange,
			Payload:   events.PasswordChangedPayload{ChangedAt: *data.Security.LastPasswordChange},
		})
	}
	return data, nil
}

func (s *SettingsService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	event.OwnerID = s.ownerID
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}

func touchedRecords(input domain.UpdateSettingsInput) []string {
	var records []string
	if input.Preferences != nil {
		records = append(records, "preferences")
	}
	if input.Security != nil {
		records = append(records, "security")
	}
	if input.Subscription != nil {
		records = append(records, "subscription")
	}
	if input.User != nil {
		records = append(records, "user")
	}
	return records
}
