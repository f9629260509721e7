package repository

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/project-dashboard/internal/domain"
	"github.com/spec-kit/project-dashboard/internal/persistence"
	apperrors "github.com/spec-kit/project-dashboard/pkg/util/errorutil"
)

// ProjectsKey is the store key holding the whole project collection.
const ProjectsKey = "projects"

const maxIDAttempts = 5

// ProjectRepository encapsulates project persistence.
type ProjectRepository interface {
	List(ctx context.Context) ([]domain.Project, error)
	GetByID(ctx context.Context, id string) (*domain.Project, error)
	Create(ctx context.Context, input domain.CreateProjectInput) (*domain.Project, error)
	Update(ctx context.Context, id string, input domain.UpdateProjectInput) (*domain.Project, error)
	Delete(ctx context.Context, id string) error
	Archive(ctx context.Context, id string) (*domain.Project, error)
}

// projectRepository stores every project under one key. Each mutation reads
// the collection, changes it in memory and writes it back whole; mu
// serializes those cycles within this process only.
type projectRepository struct {
	mu      sync.Mutex
	store   persistence.Store
	ownerID string
	opts    options
}

// NewProjectRepository instantiates repository.
func NewProjectRepository(store persistence.Store, ownerID string, opts ...Option) ProjectRepository {
	return &projectRepository{store: store, ownerID: ownerID, opts: applyOptions(opts)}
}

func (r *projectRepository) List(ctx context.Context) ([]domain.Project, error) {
	return r.load(ctx)
}

// GetByID returns nil without error when no project has id.
func (r *projectRepository) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	projects, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	if idx := indexOf(projects, id); idx >= 0 {
		p := projects[idx].Clone()
		return &p, nil
	}
	return nil, nil
}

func (r *projectRepository) Create(ctx context.Context, input domain.CreateProjectInput) (*domain.Project, error) {
	input = input.Normalize()
	if err := input.Validate(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	projects, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	id, err := r.uniqueID(projects)
	if err != nil {
		return nil, err
	}

	now := r.opts.now().UTC()
	project := domain.Project{
		ID:          id,
		Name:        input.Name,
		Description: input.Description,
		StartDate:   input.StartDate,
		OwnerID:     r.ownerID,
		CreatedAt:   now,
		UpdatedAt:   now,
		Status:      domain.ProjectStatusActive,
	}
	projects = append(projects, project)
	if err := r.save(ctx, projects); err != nil {
		return nil, err
	}

	r.opts.logger.Debug("project created", zap.String("project_id", id), zap.Int("collection_size", len(projects)))
	created := project.Clone()
	return &created, nil
}

func (r *projectRepository) Update(ctx context.Context, id string, input domain.UpdateProjectInput) (*domain.Project, error) {
	input = input.Normalize()
	if err := input.Validate(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	projects, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	idx := indexOf(projects, id)
	if idx < 0 {
		return nil, apperrors.NewNotFound("project", map[string]any{"id": id})
	}

	project := &projects[idx]
	input.Apply(project)
	project.UpdatedAt = r.touch(project.UpdatedAt)
	if err := r.save(ctx, projects); err != nil {
		return nil, err
	}

	r.opts.logger.Debug("project updated", zap.String("project_id", id), zap.String("status", string(project.Status)))
	updated := project.Clone()
	return &updated, nil
}

// Delete removes the project. Unknown ids are a no-op.
func (r *projectRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	projects, err := r.load(ctx)
	if err != nil {
		return err
	}
	kept := make([]domain.Project, 0, len(projects))
	for _, p := range projects {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	if len(kept) == len(projects) {
		return nil
	}
	if err := r.save(ctx, kept); err != nil {
		return err
	}
	r.opts.logger.Debug("project deleted", zap.String("project_id", id))
	return nil
}

func (r *projectRepository) Archive(ctx context.Context, id string) (*domain.Project, error) {
	status := domain.ProjectStatusArchived
	return r.Update(ctx, id, domain.UpdateProjectInput{Status: &status})
}

func (r *projectRepository) load(ctx context.Context) ([]domain.Project, error) {
	var projects []domain.Project
	if _, err := persistence.ReadRecord(ctx, r.store, ProjectsKey, &projects); err != nil {
		return nil, err
	}
	if projects == nil {
		projects = []domain.Project{}
	}
	return projects, nil
}

func (r *projectRepository) save(ctx context.Context, projects []domain.Project) error {
	return persistence.WriteRecord(ctx, r.store, ProjectsKey, projects)
}

func (r *projectRepository) uniqueID(projects []domain.Project) (string, error) {
	for i := 0; i < maxIDAttempts; i++ {
		id := r.opts.newID()
		if id != "" && indexOf(projects, id) < 0 {
			return id, nil
		}
	}
	return "", apperrors.NewInternalError(errors.New("failed to generate unique project id"))
}

// touch returns a fresh timestamp strictly after prev.
func (r *projectRepository) touch(prev time.Time) time.Time {
	now := r.opts.now().UTC()
	if !now.After(prev) {
		now = prev.Add(time.Nanosecond)
	}
	return now
}

func indexOf(projects []domain.Project, id string) int {
	for i := range projects {
		if projects[i].ID == id {
			return i
		}
	}
	return -1
}
