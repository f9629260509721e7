package dto

import (
	"time"

	"github.com/spec-kit/project-dashboard/internal/domain"
)

// NotificationChannelsRequest replaces every channel switch at once.
type NotificationChannelsRequest struct {
	Email bool `json:"email"`
	Push  bool `json:"push"`
	SMS   bool `json:"sms"`
}

type PreferencesRequest struct {
	Theme         *string                      `json:"theme" validate:"omitempty,oneof=light dark system"`
	Language      *string                      `json:"language" validate:"omitempty,min=2,max=35"`
	Timezone      *string                      `json:"timezone" validate:"omitempty,timezone"`
	Notifications *NotificationChannelsRequest `json:"notifications"`
}

type SecurityRequest struct {
	TwoFactorEnabled *bool   `json:"twoFactorEnabled"`
	ActiveSessions   *int    `json:"activeSessions" validate:"omitempty,min=0"`
	CurrentPassword  *string `json:"currentPassword"`
	NewPassword      *string `json:"newPassword" validate:"omitempty,min=8,max=72"`
}

type SubscriptionRequest struct {
	Plan           *string    `json:"plan" validate:"omitempty,oneof=free basic premium enterprise"`
	Status         *string    `json:"status" validate:"omitempty,oneof=active expired cancelled"`
	ExpiresAt      *time.Time `json:"expiresAt"`
	ClearExpiresAt bool       `json:"clearExpiresAt"`
	AutoRenew      *bool      `json:"autoRenew"`
}

type ProfileRequest struct {
	DisplayName *string `json:"displayName" validate:"omitempty,max=100"`
	Email       *string `json:"email" validate:"omitempty,email"`
}

// UpdateSettingsRequest carries an optional patch per settings record.
type UpdateSettingsRequest struct {
	Preferences  *PreferencesRequest  `json:"preferences"`
	Security     *SecurityRequest     `json:"security"`
	Subscription *SubscriptionRequest `json:"subscription"`
	User         *ProfileRequest      `json:"user"`
}

type ChangeLanguageRequest struct {
	Language string `json:"language" validate:"required,min=2,max=35"`
}

type ChangeThemeRequest struct {
	Theme string `json:"theme" validate:"required,oneof=light dark system"`
}

// SecurityResponse omits the password hash.
type SecurityResponse struct {
	TwoFactorEnabled   bool       `json:"twoFactorEnabled"`
	LastPasswordChange *time.Time `json:"lastPasswordChange"`
	ActiveSessions     int        `json:"activeSessions"`
	HasPassword        bool       `json:"hasPassword"`
}

type SettingsResponse struct {
	Preferences  domain.UserPreferences  `json:"preferences"`
	Security     SecurityResponse        `json:"security"`
	Subscription domain.UserSubscription `json:"subscription"`
	User         domain.UserProfile      `json:"user"`
}

func (r UpdateSettingsRequest) ToInput() domain.UpdateSettingsInput {
	var input domain.UpdateSettingsInput
	if p := r.Preferences; p != nil {
		patch := &domain.PreferencesPatch{Language: p.Language, Timezone: p.Timezone}
		if p.Theme != nil {
			theme := domain.Theme(*p.Theme)
			patch.Theme = &theme
		}
		if p.Notifications != nil {
			patch.Notifications = &domain.NotificationChannels{
				Email: p.Notifications.Email,
				Push:  p.Notifications.Push,
				SMS:   p.Notifications.SMS,
			}
		}
		input.Preferences = patch
	}
	if s := r.Security; s != nil {
		input.Security = &domain.SecurityPatch{
			TwoFactorEnabled: s.TwoFactorEnabled,
			ActiveSessions:   s.ActiveSessions,
			CurrentPassword:  s.CurrentPassword,
			NewPassword:      s.NewPassword,
		}
	}
	if s := r.Subscription; s != nil {
		patch := &domain.SubscriptionPatch{
			ExpiresAt:      s.ExpiresAt,
			ClearExpiresAt: s.ClearExpiresAt,
			AutoRenew:      s.AutoRenew,
		}
		if s.Plan != nil {
			plan := domain.SubscriptionPlan(*s.Plan)
			patch.Plan = &plan
		}
		if s.Status != nil {
			status := domain.SubscriptionStatus(*s.Status)
			patch.Status = &status
		}
		input.Subscription = patch
	}
	if u := r.User; u != nil {
		input.User = &domain.ProfilePatch{DisplayName: u.DisplayName, Email: u.Email}
	}
	return input
}

// NewSettingsResponse maps settings for output.
func NewSettingsResponse(data domain.SettingsData) SettingsResponse {
	return SettingsResponse{
		Preferences: data.Preferences,
		Security: SecurityResponse{
			TwoFactorEnabled:   data.Security.TwoFactorEnabled,
			LastPasswordChange: data.Security.LastPasswordChange,
			ActiveSessions:     data.Security.ActiveSessions,
			HasPassword:        data.Security.PasswordHash != "",
		},
		Subscription: data.Subscription,
		User:         data.User,
	}
}
