package domain

import (
	"strings"
	"time"
	"unicode/utf8"

	apperrors "github.com/spec-kit/project-dashboard/pkg/util/errorutil"
)

// Field limits shared with the project form.
const (
	MaxProjectNameLength        = 100
	MaxProjectDescriptionLength = 500
)

// ProjectStatus enumerates lifecycle states for projects. Any status may move
// to any other; creation always starts at ProjectStatusActive.
type ProjectStatus string

const (
	ProjectStatusActive    ProjectStatus = "active"
	ProjectStatusCompleted ProjectStatus = "completed"
	ProjectStatusArchived  ProjectStatus = "archived"
	// ProjectStatusDeleted is a soft-delete marker reachable only through an
	// explicit status update; DeleteProject removes the record instead.
	ProjectStatusDeleted ProjectStatus = "deleted"
)

// ProjectStatuses lists every valid status in display order.
var ProjectStatuses = []ProjectStatus{
	ProjectStatusActive,
	ProjectStatusCompleted,
	ProjectStatusArchived,
	ProjectStatusDeleted,
}

// Valid reports whether s is a known status.
func (s ProjectStatus) Valid() bool {
	for _, candidate := range ProjectStatuses {
		if s == candidate {
			return true
		}
	}
	return false
}

// Project is the stored project record.
type Project struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description *string       `json:"description"`
	StartDate   *time.Time    `json:"startDate"`
	OwnerID     string        `json:"ownerId"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
	Status      ProjectStatus `json:"status"`
}

// Clone returns a deep copy so callers never share the optional pointers.
func (p Project) Clone() Project {
	out := p
	if p.Description != nil {
		desc := *p.Description
		out.Description = &desc
	}
	if p.StartDate != nil {
		start := *p.StartDate
		out.StartDate = &start
	}
	return out
}

// CreateProjectInput describes project creation payload.
type CreateProjectInput struct {
	Name        string
	Description *string
	StartDate   *time.Time
}

// UpdateProjectInput lists the fields to overwrite; nil fields are kept.
type UpdateProjectInput struct {
	Name        *string
	Description *string
	StartDate   *time.Time
	Status      *ProjectStatus
}

// Normalize trims the name and description.
func (in CreateProjectInput) Normalize() CreateProjectInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = trimOptional(in.Description)
	in.StartDate = utcOptional(in.StartDate)
	return in
}

// Validate checks a normalized creation payload.
func (in CreateProjectInput) Validate() error {
	if err := validateName(in.Name); err != nil {
		return err
	}
	return validateDescription(in.Description)
}

// Normalize trims any present name and description.
func (in UpdateProjectInput) Normalize() UpdateProjectInput {
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		in.Name = &name
	}
	in.Description = trimOptional(in.Description)
	in.StartDate = utcOptional(in.StartDate)
	return in
}

// Validate checks a normalized update payload.
func (in UpdateProjectInput) Validate() error {
	if in.Name != nil {
		if err := validateName(*in.Name); err != nil {
			return err
		}
	}
	if err := validateDescription(in.Description); err != nil {
		return err
	}
	if in.Status != nil && !in.Status.Valid() {
		return apperrors.NewValidationError("invalid project status", map[string]any{"status": *in.Status})
	}
	return nil
}

// Apply overwrites the named fields of p.
func (in UpdateProjectInput) Apply(p *Project) {
	if in.Name != nil {
		p.Name = *in.Name
	}
	if in.Description != nil {
		desc := *in.Description
		p.Description = &desc
	}
	if in.StartDate != nil {
		start := in.StartDate.UTC()
		p.StartDate = &start
	}
	if in.Status != nil {
		p.Status = *in.Status
	}
}

func validateName(name string) error {
	if name == "" {
		return apperrors.NewValidationError("project name is required", map[string]any{"field": "name"})
	}
	if utf8.RuneCountInString(name) > MaxProjectNameLength {
		return apperrors.NewValidationError("project name is too long", map[string]any{
			"field": "name",
			"max":   MaxProjectNameLength,
		})
	}
	return nil
}

func validateDescription(desc *string) error {
	if desc != nil && utf8.RuneCountInString(*desc) > MaxProjectDescriptionLength {
		return apperrors.NewValidationError("project description is too long", map[string]any{
			"field": "description",
			"max":   MaxProjectDescriptionLength,
		})
	}
	return nil
}

func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	return &trimmed
}

func utcOptional(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	utc := t.UTC()
	return &utc
}
