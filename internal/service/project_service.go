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

// ProjectService coordinates project workflows and publishes their events.
type ProjectService struct {
	projects   repository.ProjectRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
	ownerID    string
	now        func() time.Time
}

// ProjectDependencies bundles collaborators for the project service.
type ProjectDependencies struct {
	ProjectRepo repository.ProjectRepository
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
	OwnerID     string
	Clock       func() time.Time
}

// NewProjectService constructs the service.
func NewProjectService(deps ProjectDependencies) *ProjectService {
	s := &ProjectService{
		projects:   deps.ProjectRepo,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
		ownerID:    deps.OwnerID,
		now:        deps.Clock,
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

func (s *ProjectService) GetProjects(ctx context.Context) ([]domain.Project, error) {
	return s.projects.List(ctx)
}

func (s *ProjectService) GetProject(ctx context.Context, id string) (*domain.Project, error) {
	return s.projects.GetByID(ctx, id)
}

func (s *ProjectService) CreateProject(ctx context.Context, input domain.CreateProjectInput) (*domain.Project, error) {
	project, err := s.projects.Create(ctx, input)
	if err != nil {
		return nil, err
	}
	s.publishEvent(ctx, events.Event{
		Type:      events.EventProjectCreated,
		ProjectID: project.ID,
		Timestamp: project.CreatedAt,
		Payload:   events.ProjectCreatedPayload{Name: project.Name},
	})
	return project, nil
}

// UpdateProject publishes project_updated for name or description changes
// and project_status_changed when the status actually moved.
func (s *ProjectService) UpdateProject(ctx context.Context, id string, input domain.UpdateProjectInput) (*domain.Project, error) {
	before, err := s.projects.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	project, err := s.projects.Update(ctx, id, input)
	if err != nil {
		return nil, err
	}

	if fields := changedFields(input); len(fields) > 0 {
		s.publishEvent(ctx, events.Event{
			Type:      events.EventProjectUpdated,
			ProjectID: project.ID,
			Timestamp: project.UpdatedAt,
			Payload:   events.ProjectUpdatedPayload{Fields: fields},
		})
	}
	if before != nil && before.Status != project.Status {
		s.publishEvent(ctx, events.Event{
			Type:      events.EventProjectStatusChanged,
			ProjectID: project.ID,
			Timestamp: project.UpdatedAt,
			Payload:   events.ProjectStatusChangedPayload{OldStatus: before.Status, NewStatus: project.Status},
		})
	}
	return project, nil
}

func (s *ProjectService) ArchiveProject(ctx context.Context, id string) (*domain.Project, error) {
	before, err := s.projects.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	project, err := s.projects.Archive(ctx, id)
	if err != nil {
		return nil, err
	}
	oldStatus := domain.ProjectStatusArchived
	if before != nil {
		oldStatus = before.Status
	}
	s.publishEvent(ctx, events.Event{
		Type:      events.EventProjectArchived,
		ProjectID: project.ID,
		Timestamp: project.UpdatedAt,
		Payload:   events.ProjectStatusChangedPayload{OldStatus: oldStatus, NewStatus: project.Status},
	})
	return project, nil
}

// DeleteProject publishes project_deleted only when a project was removed.
func (s *ProjectService) DeleteProject(ctx context.Context, id string) error {
	existing, err := s.projects.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.projects.Delete(ctx, id); err != nil {
		return err
	}
	if existing != nil {
		s.publishEvent(ctx, events.Event{Type: events.EventProjectDeleted, ProjectID: id})
	}
	return nil
}

// Query loads the collection and applies filter.
func (s *ProjectService) Query(ctx context.Context, filter ProjectFilter) (ProjectPage, error) {
	projects, err := s.projects.List(ctx)
	if err != nil {
		return ProjectPage{}, err
	}
	return ApplyProjectFilter(projects, filter, s.now())
}

func (s *ProjectService) Stats(ctx context.Context) (ProjectStats, error) {
	projects, err := s.projects.List(ctx)
	if err != nil {
		return ProjectStats{}, err
	}
	return ComputeStats(projects), nil
}

// Recent returns the most recently updated projects.
func (s *ProjectService) Recent(ctx context.Context, limit int) ([]domain.Project, error) {
	page, err := s.Query(ctx, ProjectFilter{Sort: SortUpdatedDesc, Limit: limit})
	if err != nil {
		return nil, err
	}
	return page.Items, nil
}

func (s *ProjectService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now().UTC()
	}
	event.OwnerID = s.ownerID
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}

func changedFields(input domain.UpdateProjectInput) []string {
	var fields []string
	if input.Name != nil {
		fields = append(fields, "name")
	}
	if input.Description != nil {
		fields = append(fields, "description")
	}
	if input.StartDate != nil {
		fields = append(fields, "startDate")
	}
	return fields
}
