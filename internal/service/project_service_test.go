package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/project-dashboard/internal/domain"
	"github.com/spec-kit/project-dashboard/internal/events"
	apperrors "github.com/spec-kit/project-dashboard/pkg/util/errorutil"
)

func TestProjectService_CreatePublishesEvent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	project, err := f.projects.CreateProject(ctx, domain.CreateProjectInput{Name: "Alpha"})
	require.NoError(t, err)

	require.Len(t, f.recorder.events, 1)
	event := f.recorder.events[0]
	assert.Equal(t, events.EventProjectCreated, event.Type)
	assert.Equal(t, project.ID, event.ProjectID)
	assert.Equal(t, "owner-1", event.OwnerID)
	assert.NotEmpty(t, event.ID)
	assert.Equal(t, events.ProjectCreatedPayload{Name: "Alpha"}, event.Payload)
}

func TestProjectService_UpdateEvents(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	project, err := f.projects.CreateProject(ctx, domain.CreateProjectInput{Name: "Alpha"})
	require.NoError(t, err)

	completed := domain.ProjectStatusCompleted
	_, err = f.projects.UpdateProject(ctx, project.ID, domain.UpdateProjectInput{Name: strPtr("Beta"), Status: &completed})
	require.NoError(t, err)
	assert.Equal(t, []events.EventType{
		events.EventProjectCreated,
		events.EventProjectUpdated,
		events.EventProjectStatusChanged,
	}, f.recorder.types())
	assert.Equal(t, events.ProjectStatusChangedPayload{
		OldStatus: domain.ProjectStatusActive,
		NewStatus: domain.ProjectStatusCompleted,
	}, f.recorder.events[2].Payload)

	// same status again: nothing moved
	_, err = f.projects.UpdateProject(ctx, project.ID, domain.UpdateProjectInput{Status: &completed})
	require.NoError(t, err)
	assert.Len(t, f.recorder.events, 3)
}

func TestProjectService_UpdateMissingPublishesNothing(t *testing.T) {
	f := newFixture(t)
	_, err := f.projects.UpdateProject(context.Background(), "ghost", domain.UpdateProjectInput{Name: strPtr("x")})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
	assert.Empty(t, f.recorder.events)
}

func TestProjectService_ArchiveAndDelete(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	project, err := f.projects.CreateProject(ctx, domain.CreateProjectInput{Name: "Alpha"})
	require.NoError(t, err)

	archived, err := f.projects.ArchiveProject(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ProjectStatusArchived, archived.Status)

	require.NoError(t, f.projects.DeleteProject(ctx, project.ID))
	require.NoError(t, f.projects.DeleteProject(ctx, project.ID))

	assert.Equal(t, []events.EventType{
		events.EventProjectCreated,
		events.EventProjectArchived,
		events.EventProjectDeleted,
	}, f.recorder.types(), "second delete is a silent no-op")

	got, err := f.projects.GetProject(ctx, project.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestProjectService_QueryStatsRecent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	names := []string{"Alpha", "Beta", "Gamma"}
	created := make([]*domain.Project, 0, len(names))
	for _, name := range names {
		p, err := f.projects.CreateProject(ctx, domain.CreateProjectInput{Name: name})
		require.NoError(t, err)
		created = append(created, p)
		time.Sleep(time.Millisecond)
	}
	_, err := f.projects.ArchiveProject(ctx, created[0].ID)
	require.NoError(t, err)

	page, err := f.projects.Query(ctx, ProjectFilter{Statuses: []domain.ProjectStatus{domain.ProjectStatusActive}})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)

	stats, err := f.projects.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 1, stats.ByStatus[domain.ProjectStatusArchived])

	recent, err := f.projects.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, created[0].ID, recent[0].ID, "archiving bumped updatedAt")
	assert.Equal(t, created[2].ID, recent[1].ID)
}

func TestProjectService_HandlerFailureDoesNotFailMutation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.dispatcher.Subscribe(events.EventProjectCreated, func(context.Context, events.Event) error {
		return assert.AnError
	})

	project, err := f.projects.CreateProject(ctx, domain.CreateProjectInput{Name: "Alpha"})
	require.NoError(t, err)
	assert.NotNil(t, project)
}
