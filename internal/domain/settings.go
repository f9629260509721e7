package domain

import (
	"net/mail"
	"time"
	_ "time/tzdata"

	"github.com/creasty/defaults"
	"golang.org/x/text/language"

	apperrors "github.com/spec-kit/project-dashboard/pkg/util/errorutil"
)

// Password length bounds in bytes. bcrypt ignores input past MaxPasswordBytes.
const (
	MinPasswordLength = 8
	MaxPasswordBytes  = 72
)

// Theme is the UI color scheme preference.
type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

func (t Theme) Valid() bool {
	return t == ThemeLight || t == ThemeDark || t == ThemeSystem
}

// SubscriptionPlan enumerates billing plans.
type SubscriptionPlan string

const (
	PlanFree       SubscriptionPlan = "free"
	PlanBasic      SubscriptionPlan = "basic"
	PlanPremium    SubscriptionPlan = "premium"
	PlanEnterprise SubscriptionPlan = "enterprise"
)

func (p SubscriptionPlan) Valid() bool {
	switch p {
	case PlanFree, PlanBasic, PlanPremium, PlanEnterprise:
		return true
	}
	return false
}

// SubscriptionStatus enumerates billing states.
type SubscriptionStatus string

const (
	SubscriptionActive    SubscriptionStatus = "active"
	SubscriptionExpired   SubscriptionStatus = "expired"
	SubscriptionCancelled SubscriptionStatus = "cancelled"
)

func (s SubscriptionStatus) Valid() bool {
	return s == SubscriptionActive || s == SubscriptionExpired || s == SubscriptionCancelled
}

// NotificationChannels holds independent delivery switches.
type NotificationChannels struct {
	Email bool `json:"email" default:"true"`
	Push  bool `json:"push" default:"true"`
	SMS   bool `json:"sms" default:"false"`
}

// UserPreferences is the preferences settings record.
type UserPreferences struct {
	Theme         Theme                `json:"theme" default:"system"`
	Language      string               `json:"language" default:"en"`
	Timezone      string               `json:"timezone" default:"UTC"`
	Notifications NotificationChannels `json:"notifications"`
}

// UserSecurity is the security settings record.
type UserSecurity struct {
	TwoFactorEnabled   bool       `json:"twoFactorEnabled"`
	LastPasswordChange *time.Time `json:"lastPasswordChange"`
	ActiveSessions     int        `json:"activeSessions" default:"1"`
	PasswordHash       string     `json:"passwordHash,omitempty"`
}

// UserSubscription is the subscription settings record.
type UserSubscription struct {
	Plan      SubscriptionPlan   `json:"plan" default:"free"`
	Status    SubscriptionStatus `json:"status" default:"active"`
	ExpiresAt *time.Time         `json:"expiresAt"`
	AutoRenew bool               `json:"autoRenew"`
}

// UserProfile is the user settings record.
type UserProfile struct {
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
}

// SettingsData is the union of every settings record.
type SettingsData struct {
	Preferences  UserPreferences  `json:"preferences"`
	Security     UserSecurity     `json:"security"`
	Subscription UserSubscription `json:"subscription"`
	User         UserProfile      `json:"user"`
}

// Clone returns a deep copy.
func (s SettingsData) Clone() SettingsData {
	out := s
	out.Security.LastPasswordChange = cloneTime(s.Security.LastPasswordChange)
	out.Subscription.ExpiresAt = cloneTime(s.Subscription.ExpiresAt)
	return out
}

// DefaultPreferences returns preferences with every default applied.
func DefaultPreferences() UserPreferences {
	var p UserPreferences
	mustSetDefaults(&p)
	return p
}

// DefaultSecurity returns the initial security record.
func DefaultSecurity() UserSecurity {
	var s UserSecurity
	mustSetDefaults(&s)
	return s
}

// DefaultSubscription returns the initial subscription record.
func DefaultSubscription() UserSubscription {
	var s UserSubscription
	mustSetDefaults(&s)
	return s
}

// DefaultProfile returns the initial user record.
func DefaultProfile() UserProfile {
	return UserProfile{}
}

// DefaultSettings returns every record at its default value.
func DefaultSettings() SettingsData {
	return SettingsData{
		Preferences:  DefaultPreferences(),
		Security:     DefaultSecurity(),
		Subscription: DefaultSubscription(),
		User:         DefaultProfile(),
	}
}

func mustSetDefaults(ptr any) {
	if err := defaults.Set(ptr); err != nil {
		panic(err)
	}
}

// PreferencesPatch is a shallow patch: a present Notifications value
// replaces the stored channels wholesale.
type PreferencesPatch struct {
	Theme         *Theme
	Language      *string
	Timezone      *string
	Notifications *NotificationChannels
}

// SecurityPatch updates security flags. NewPassword triggers a password
// change; once a password is set, CurrentPassword must match it.
type SecurityPatch struct {
	TwoFactorEnabled *bool
	ActiveSessions   *int
	CurrentPassword  *string
	NewPassword      *string
}

// SubscriptionPatch updates subscription fields. A nil ExpiresAt keeps the
// stored expiry; ClearExpiresAt resets it to null and wins over ExpiresAt.
type SubscriptionPatch struct {
	Plan           *SubscriptionPlan
	Status         *SubscriptionStatus
	ExpiresAt      *time.Time
	ClearExpiresAt bool
	AutoRenew      *bool
}

// ProfilePatch updates user fields.
type ProfilePatch struct {
	DisplayName *string
	Email       *string
}

// UpdateSettingsInput carries optional patches per settings record.
type UpdateSettingsInput struct {
	Preferences  *PreferencesPatch
	Security     *SecurityPatch
	Subscription *SubscriptionPatch
	User         *ProfilePatch
}

// Empty reports whether no record is touched.
func (in UpdateSettingsInput) Empty() bool {
	return in.Preferences == nil && in.Security == nil && in.Subscription == nil && in.User == nil
}

// Apply merges the patch onto p one level deep.
func (patch PreferencesPatch) Apply(p UserPreferences) UserPreferences {
	if patch.Theme != nil {
		p.Theme = *patch.Theme
	}
	if patch.Language != nil {
		p.Language = *patch.Language
	}
	if patch.Timezone != nil {
		p.Timezone = *patch.Timezone
	}
	if patch.Notifications != nil {
		p.Notifications = *patch.Notifications
	}
	return p
}

// Validate checks the merged preferences.
func (p UserPreferences) Validate() error {
	if !p.Theme.Valid() {
		return apperrors.NewValidationError("invalid theme", map[string]any{"theme": p.Theme})
	}
	if _, err := language.Parse(p.Language); err != nil {
		return apperrors.NewValidationError("invalid language", map[string]any{"language": p.Language})
	}
	if _, err := time.LoadLocation(p.Timezone); err != nil || p.Timezone == "" {
		return apperrors.NewValidationError("invalid timezone", map[string]any{"timezone": p.Timezone})
	}
	return nil
}

// Apply merges flag changes; password handling is left to the caller.
func (patch SecurityPatch) Apply(s UserSecurity) UserSecurity {
	if patch.TwoFactorEnabled != nil {
		s.TwoFactorEnabled = *patch.TwoFactorEnabled
	}
	if patch.ActiveSessions != nil {
		s.ActiveSessions = *patch.ActiveSessions
	}
	return s
}

// Validate checks the patch itself since the password never lands in the record.
func (patch SecurityPatch) Validate() error {
	if patch.ActiveSessions != nil && *patch.ActiveSessions < 0 {
		return apperrors.NewValidationError("active sessions cannot be negative", nil)
	}
	if patch.NewPassword != nil && len(*patch.NewPassword) < MinPasswordLength {
		return apperrors.NewValidationError("password is too short", map[string]any{"min": MinPasswordLength})
	}
	if patch.NewPassword != nil && len(*patch.NewPassword) > MaxPasswordBytes {
		return apperrors.NewValidationError("password is too long", map[string]any{"max_bytes": MaxPasswordBytes})
	}
	return nil
}

func (patch SubscriptionPatch) Apply(s UserSubscription) UserSubscription {
	if patch.Plan != nil {
		s.Plan = *patch.Plan
	}
	if patch.Status != nil {
		s.Status = *patch.Status
	}
	switch {
	case patch.ClearExpiresAt:
		s.ExpiresAt = nil
	case patch.ExpiresAt != nil:
		s.ExpiresAt = cloneTime(patch.ExpiresAt)
	}
	if patch.AutoRenew != nil {
		s.AutoRenew = *patch.AutoRenew
	}
	return s
}

func (s UserSubscription) Validate() error {
	if !s.Plan.Valid() {
		return apperrors.NewValidationError("invalid subscription plan", map[string]any{"plan": s.Plan})
	}
	if !s.Status.Valid() {
		return apperrors.NewValidationError("invalid subscription status", map[string]any{"status": s.Status})
	}
	return nil
}

func (patch ProfilePatch) Apply(u UserProfile) UserProfile {
	if patch.DisplayName != nil {
		u.DisplayName = *patch.DisplayName
	}
	if patch.Email != nil {
		u.Email = *patch.Email
	}
	return u
}

func (u UserProfile) Validate() error {
	if u.Email == "" {
		return nil
	}
	if _, err := mail.ParseAddress(u.Email); err != nil {
		return apperrors.NewValidationError("invalid email", map[string]any{"email": u.Email})
	}
	return nil
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
