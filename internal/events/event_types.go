package events

import (
	"time"

	"github.com/spec-kit/project-dashboard/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventProjectCreated       EventType = "project_created"
	EventProjectUpdated       EventType = "project_updated"
	EventProjectStatusChanged EventType = "project_status_changed"
	EventProjectArchived      EventType = "project_archived"
	EventProjectDeleted       EventType = "project_deleted"
	EventSettingsUpdated      EventType = "settings_updated"
	EventPasswordChanged      EventType = "password_changed"
)

// ProjectEventTypes lists every project event in publication order.
var ProjectEventTypes = []EventType{
	EventProjectCreated,
	EventProjectUpdated,
	EventProjectStatusChanged,
	EventProjectArchived,
	EventProjectDeleted,
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	OwnerID   string    `json:"owner_id"`
	ProjectID string    `json:"project_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// ProjectCreatedPayload payload.
type ProjectCreatedPayload struct {
	Name string `json:"name"`
}

// ProjectUpdatedPayload lists the fields the update touched.
type ProjectUpdatedPayload struct {
	Fields []string `json:"fields"`
}

// ProjectStatusChangedPayload payload.
type ProjectStatusChangedPayload struct {
	OldStatus domain.ProjectStatus `json:"old_status"`
	NewStatus domain.ProjectStatus `json:"new_status"`
}

// SettingsUpdatedPayload names the settings records that were written.
type SettingsUpdatedPayload struct {
	Records []string `json:"records"`
}

// PasswordChangedPayload payload.
type PasswordChangedPayload struct {
	ChangedAt time.Time `json:"changed_at"`
}
