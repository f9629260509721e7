package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/project-dashboard/internal/config"
	"github.com/spec-kit/project-dashboard/internal/domain"
	"github.com/spec-kit/project-dashboard/internal/events"
)

// Delivery channels named in the notification preferences.
const (
	ChannelEmail = "email"
	ChannelPush  = "push"
	ChannelSMS   = "sms"
)

// SettingsReader exposes the stored settings to the activity feed.
type SettingsReader interface {
	GetSettingsData(ctx context.Context) (*domain.SettingsData, error)
}

// ActivityService logs project and settings activity and fans it out to
// the notification channels the user has enabled.
type ActivityService struct {
	dispatcher events.Dispatcher
	settings   SettingsReader
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewActivityService creates the service.
func NewActivityService(dispatcher events.Dispatcher, settings SettingsReader, logger *zap.Logger, cfg config.NotificationConfig) *ActivityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ActivityService{
		dispatcher: dispatcher,
		settings:   settings,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (a *ActivityService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	for _, eventType := range events.ProjectEventTypes {
		a.dispatcher.Subscribe(eventType, a.handleProjectEvent)
	}
	a.dispatcher.Subscribe(events.EventSettingsUpdated, a.handleSettingsUpdated)
	a.dispatcher.Subscribe(events.EventPasswordChanged, a.handlePasswordChanged)
}

func (a *ActivityService) handleProjectEvent(ctx context.Context, event events.Event) error {
	a.logger.Info("ProjectActivity",
		zap.String("event_type", string(event.Type)),
		zap.String("project_id", event.ProjectID),
		zap.Any("payload", event.Payload))
	return a.fanOut(ctx, event)
}

func (a *ActivityService) handleSettingsUpdated(ctx context.Context, event events.Event) error {
	a.logger.Info("SettingsUpdated", zap.String("owner_id", event.OwnerID), zap.Any("payload", event.Payload))
	return nil
}

// Password changes always go out by email when email is configured,
// regardless of the notification switches.
func (a *ActivityService) handlePasswordChanged(ctx context.Context, event events.Event) error {
	a.logger.Info("PasswordChanged", zap.String("owner_id", event.OwnerID), zap.Time("timestamp", event.Timestamp))
	a.sendEmailNotificationStub(ctx, event)
	return nil
}

func (a *ActivityService) fanOut(ctx context.Context, event events.Event) error {
	if a.settings == nil {
		return nil
	}
	data, err := a.settings.GetSettingsData(ctx)
	if err != nil {
		return err
	}
	channels := data.Preferences.Notifications
	if channels.Email {
		a.sendEmailNotificationStub(ctx, event)
	}
	if channels.Push {
		a.sendWebhookNotificationStub(ctx, ChannelPush, event)
	}
	if channels.SMS {
		a.sendWebhookNotificationStub(ctx, ChannelSMS, event)
	}
	return nil
}

func (a *ActivityService) sendEmailNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(a.cfg.EmailFrom) == "" {
		return
	}
	a.logger.Debug("sendEmailNotificationStub",
		zap.String("channel", ChannelEmail),
		zap.String("from", a.cfg.EmailFrom),
		zap.String("project_id", event.ProjectID),
		zap.String("event_type", string(event.Type)))
}

func (a *ActivityService) sendWebhookNotificationStub(_ context.Context, channel string, event events.Event) {
	if strings.TrimSpace(a.cfg.WebhookURL) == "" {
		return
	}
	a.logger.Debug("sendWebhookNotificationStub",
		zap.String("channel", channel),
		zap.String("url", a.cfg.WebhookURL),
		zap.String("project_id", event.ProjectID),
		zap.String("event_type", string(event.Type)))
}
