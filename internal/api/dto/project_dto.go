package dto

import (
	"time"

	"github.com/spec-kit/project-dashboard/internal/domain"
	"github.com/spec-kit/project-dashboard/internal/service"
)

// CreateProjectRequest payload.
type CreateProjectRequest struct {
	Name        string     `json:"name" validate:"required,max=100"`
	Description *string    `json:"description" validate:"omitempty,max=500"`
	StartDate   *time.Time `json:"startDate"`
}

// UpdateProjectRequest payload. Absent fields are left unchanged.
type UpdateProjectRequest struct {
	Name        *string    `json:"name" validate:"omitempty,min=1,max=100"`
	Description *string    `json:"description" validate:"omitempty,max=500"`
	StartDate   *time.Time `json:"startDate"`
	Status      *string    `json:"status" validate:"omitempty,oneof=active completed archived deleted"`
}

// ProjectResponse representation.
type ProjectResponse struct {
	ID          string               `json:"id"`
	Name        string               `json:"name"`
	Description *string              `json:"description"`
	StartDate   *time.Time           `json:"startDate"`
	OwnerID     string               `json:"ownerId"`
	Status      domain.ProjectStatus `json:"status"`
	CreatedAt   time.Time            `json:"createdAt"`
	UpdatedAt   time.Time            `json:"updatedAt"`
}

// ProjectPageResponse wraps a query result.
type ProjectPageResponse struct {
	Items   []ProjectResponse `json:"items"`
	Total   int               `json:"total"`
	Limit   int               `json:"limit"`
	Offset  int               `json:"offset"`
	HasMore bool              `json:"hasMore"`
}

func (r CreateProjectRequest) ToInput() domain.CreateProjectInput {
	return domain.CreateProjectInput{Name: r.Name, Description: r.Description, StartDate: r.StartDate}
}

func (r UpdateProjectRequest) ToInput() domain.UpdateProjectInput {
	input := domain.UpdateProjectInput{Name: r.Name, Description: r.Description, StartDate: r.StartDate}
	if r.Status != nil {
		status := domain.ProjectStatus(*r.Status)
		input.Status = &status
	}
	return input
}

// NewProjectResponse maps a project.
func NewProjectResponse(p domain.Project) ProjectResponse {
	return ProjectResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		StartDate:   p.StartDate,
		OwnerID:     p.OwnerID,
		Status:      p.Status,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func NewProjectResponses(projects []domain.Project) []ProjectResponse {
	out := make([]ProjectResponse, 0, len(projects))
	for _, p := range projects {
		out = append(out, NewProjectResponse(p))
	}
	return out
}

func NewProjectPageResponse(page service.ProjectPage) ProjectPageResponse {
	return ProjectPageResponse{
		Items:   NewProjectResponses(page.Items),
		Total:   page.Total,
		Limit:   page.Limit,
		Offset:  page.Offset,
		HasMore: page.HasMore,
	}
}
