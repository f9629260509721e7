package viewstate

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/project-dashboard/internal/domain"
	"github.com/spec-kit/project-dashboard/internal/service"
	apperrors "github.com/spec-kit/project-dashboard/pkg/util/errorutil"
)

// ProjectSource is the project data the view mirrors.
type ProjectSource interface {
	GetProjects(ctx context.Context) ([]domain.Project, error)
	GetProject(ctx context.Context, id string) (*domain.Project, error)
	CreateProject(ctx context.Context, input domain.CreateProjectInput) (*domain.Project, error)
	UpdateProject(ctx context.Context, id string, input domain.UpdateProjectInput) (*domain.Project, error)
	ArchiveProject(ctx context.Context, id string) (*domain.Project, error)
	DeleteProject(ctx context.Context, id string) error
}

// maxFetchAttempts bounds how often a fetch restarts when mutations keep
// landing while it runs.
const maxFetchAttempts = 3

// ProjectsView caches the project collection for readers. Mutations go to
// the source first and are mirrored into the cache once they succeed.
// gen counts cache patches; a fetch whose snapshot predates a patch is
// discarded.
type ProjectsView struct {
	source ProjectSource
	logger *zap.Logger
	now    func() time.Time

	mu       sync.RWMutex
	projects []domain.Project
	loading  bool
	err      *apperrors.DomainError
	gen      uint64
	ready    chan struct{}
}

// NewProjectsView starts the initial fetch in the background.
func NewProjectsView(ctx context.Context, source ProjectSource, logger *zap.Logger) *ProjectsView {
	if logger == nil {
		logger = zap.NewNop()
	}
	v := &ProjectsView{
		source:   source,
		logger:   logger.Named("projects_view"),
		now:      time.Now,
		projects: []domain.Project{},
		loading:  true,
		ready:    make(chan struct{}),
	}
	go func() {
		defer close(v.ready)
		_ = v.fetch(ctx)
	}()
	return v
}

// Wait blocks until the initial fetch finished or ctx is done.
func (v *ProjectsView) Wait(ctx context.Context) error {
	select {
	case <-v.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (v *ProjectsView) Loading() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.loading
}

// Err returns the last failure, or nil.
func (v *ProjectsView) Err() *apperrors.DomainError {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.err
}

// Projects returns a copy of the cached collection.
func (v *ProjectsView) Projects() []domain.Project {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return cloneProjects(v.projects)
}

// Project returns the cached project with id, or nil.
func (v *ProjectsView) Project(id string) *domain.Project {
	v.mu.RLock()
	defer v.mu.RUnlock()
	for _, p := range v.projects {
		if p.ID == id {
			out := p.Clone()
			return &out
		}
	}
	return nil
}

// Lookup returns the project with id, reading through to the source when the
// cache has not seen it yet. A missing project yields nil without error.
func (v *ProjectsView) Lookup(ctx context.Context, id string) (*domain.Project, error) {
	if project := v.Project(id); project != nil {
		return project, nil
	}

	v.mu.RLock()
	gen := v.gen
	v.mu.RUnlock()

	project, err := v.source.GetProject(ctx, id)
	if err != nil {
		v.logger.Warn("lookup failed", zap.String("project_id", id), zap.Error(err))
		return nil, apperrors.Wrap(err, "Failed to fetch project")
	}
	if project == nil {
		return nil, nil
	}

	v.mu.Lock()
	if v.gen == gen {
		v.upsertLocked(*project)
	}
	v.mu.Unlock()
	return project, nil
}

// Query filters the cached collection without touching storage.
func (v *ProjectsView) Query(filter service.ProjectFilter) (service.ProjectPage, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return service.ApplyProjectFilter(v.projects, filter, v.now())
}

func (v *ProjectsView) Stats() service.ProjectStats {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return service.ComputeStats(v.projects)
}

// Refetch replaces the cache with the source's current collection.
func (v *ProjectsView) Refetch(ctx context.Context) error {
	return v.fetch(ctx)
}

func (v *ProjectsView) Create(ctx context.Context, input domain.CreateProjectInput) (*domain.Project, error) {
	project, err := v.source.CreateProject(ctx, input)
	if err != nil {
		return nil, v.fail(err, "Failed to create project")
	}
	v.mu.Lock()
	v.upsertLocked(*project)
	v.mu.Unlock()
	return project, nil
}

func (v *ProjectsView) Update(ctx context.Context, id string, input domain.UpdateProjectInput) (*domain.Project, error) {
	project, err := v.source.UpdateProject(ctx, id, input)
	if err != nil {
		return nil, v.fail(err, "Failed to update project")
	}
	v.replace(*project)
	return project, nil
}

func (v *ProjectsView) Archive(ctx context.Context, id string) (*domain.Project, error) {
	project, err := v.source.ArchiveProject(ctx, id)
	if err != nil {
		return nil, v.fail(err, "Failed to archive project")
	}
	v.replace(*project)
	return project, nil
}

func (v *ProjectsView) Delete(ctx context.Context, id string) error {
	if err := v.source.DeleteProject(ctx, id); err != nil {
		return v.fail(err, "Failed to delete project")
	}
	v.mu.Lock()
	kept := v.projects[:0:0]
	for _, p := range v.projects {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	v.projects = kept
	v.gen++
	v.mu.Unlock()
	return nil
}

func (v *ProjectsView) fetch(ctx context.Context) error {
	v.mu.Lock()
	v.loading = true
	v.err = nil
	v.mu.Unlock()

	for attempt := 1; ; attempt++ {
		v.mu.RLock()
		gen := v.gen
		v.mu.RUnlock()

		projects, err := v.source.GetProjects(ctx)

		v.mu.Lock()
		if err != nil {
			wrapped := apperrors.Wrap(err, "Failed to fetch projects")
			v.loading = false
			v.err = wrapped
			v.mu.Unlock()
			v.logger.Warn("fetch failed", zap.Error(err))
			return wrapped
		}
		if v.gen == gen {
			v.projects = cloneProjects(projects)
			v.loading = false
			v.mu.Unlock()
			v.logger.Debug("fetched projects", zap.Int("count", len(projects)))
			return nil
		}
		if attempt == maxFetchAttempts {
			// The cache already holds every confirmed mutation; keep it.
			v.loading = false
			v.mu.Unlock()
			v.logger.Debug("fetch kept patched cache", zap.Int("attempts", attempt))
			return nil
		}
		v.mu.Unlock()
		v.logger.Debug("fetch raced a mutation, retrying", zap.Int("attempt", attempt))
	}
}

func (v *ProjectsView) replace(project domain.Project) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.upsertLocked(project)
}

// upsertLocked swaps in the stored record; a project the cache has not seen
// yet is appended. Callers hold mu.
func (v *ProjectsView) upsertLocked(project domain.Project) {
	v.gen++
	for i := range v.projects {
		if v.projects[i].ID == project.ID {
			v.projects[i] = project.Clone()
			return
		}
	}
	v.projects = append(v.projects, project.Clone())
}

func (v *ProjectsView) fail(err error, message string) *apperrors.DomainError {
	wrapped := apperrors.Wrap(err, message)
	v.mu.Lock()
	v.err = wrapped
	v.mu.Unlock()
	v.logger.Warn(message, zap.Error(err))
	return wrapped
}

func cloneProjects(projects []domain.Project) []domain.Project {
	out := make([]domain.Project, len(projects))
	for i, p := range projects {
		out[i] = p.Clone()
	}
	return out
}
