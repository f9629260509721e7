package service

import (
	"context"
	"sync"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/project-dashboard/internal/auth"
	"github.com/spec-kit/project-dashboard/internal/events"
	"github.com/spec-kit/project-dashboard/internal/persistence"
	"github.com/spec-kit/project-dashboard/internal/repository"
)

// eventRecorder captures every published event in order.
type eventRecorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *eventRecorder) handle(_ context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *eventRecorder) types() []events.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.EventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

func (r *eventRecorder) subscribeAll(d events.Dispatcher) {
	all := append([]events.EventType{}, events.ProjectEventTypes...)
	all = append(all, events.EventSettingsUpdated, events.EventPasswordChanged)
	for _, t := range all {
		d.Subscribe(t, r.handle)
	}
}

type fixture struct {
	store      *persistence.MemoryStore
	dispatcher events.Dispatcher
	recorder   *eventRecorder
	projects   *ProjectService
	settings   *SettingsService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := persistence.NewMemoryStore(0)
	dispatcher := events.NewInMemoryDispatcher()
	recorder := &eventRecorder{}
	recorder.subscribeAll(dispatcher)

	projectRepo := repository.NewProjectRepository(store, "owner-1")
	settingsRepo := repository.NewSettingsRepository(store, auth.NewPasswordHasher(bcrypt.MinCost))
	return &fixture{
		store:      store,
		dispatcher: dispatcher,
		recorder:   recorder,
		projects: NewProjectService(ProjectDependencies{
			ProjectRepo: projectRepo,
			Dispatcher:  dispatcher,
			OwnerID:     "owner-1",
		}),
		settings: NewSettingsService(settingsRepo, dispatcher, nil, "owner-1"),
	}
}

func strPtr(s string) *string { return &s }
