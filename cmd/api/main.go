package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/project-dashboard/internal/api/http"
	"github.com/spec-kit/project-dashboard/internal/api/http/handlers"
	"github.com/spec-kit/project-dashboard/internal/auth"
	"github.com/spec-kit/project-dashboard/internal/config"
	"github.com/spec-kit/project-dashboard/internal/events"
	"github.com/spec-kit/project-dashboard/internal/observability"
	"github.com/spec-kit/project-dashboard/internal/persistence"
	"github.com/spec-kit/project-dashboard/internal/repository"
	"github.com/spec-kit/project-dashboard/internal/service"
	"github.com/spec-kit/project-dashboard/internal/viewstate"
	"github.com/spec-kit/project-dashboard/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metrics := observability.NewMetrics()

	store, err := persistence.Open(ctx, cfg, logger, metrics)
	if err != nil {
		logger.Fatal("failed to open store", zap.String("driver", cfg.Storage.Driver), zap.Error(err))
	}
	defer store.Close()

	repoOpts := []repository.Option{repository.WithLogger(logger)}
	projectRepo := repository.NewProjectRepository(store, cfg.App.OwnerID, repoOpts...)
	settingsRepo := repository.NewSettingsRepository(store, auth.NewPasswordHasher(cfg.Auth.BcryptCost), repoOpts...)

	dispatcher := events.NewInMemoryDispatcher()
	projectService := service.NewProjectService(service.ProjectDependencies{
		ProjectRepo: projectRepo,
		Dispatcher:  dispatcher,
		Logger:      logger,
		OwnerID:     cfg.App.OwnerID,
	})
	settingsService := service.NewSettingsService(settingsRepo, dispatcher, logger, cfg.App.OwnerID)

	if err := settingsService.InitializeDefaults(ctx); err != nil {
		logger.Fatal("failed to initialize settings", zap.Error(err))
	}

	activityService := service.NewActivityService(dispatcher, settingsService, logger, cfg.Notification)
	worker.StartActivityWorker(activityService)

	projectsView := viewstate.NewProjectsView(ctx, projectService, logger)
	settingsView := viewstate.NewSettingsView(ctx, settingsService, logger)

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: true,
	})
	httptransport.RegisterMiddlewares(app, cfg.HTTP, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:    handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, cfg.Storage.Driver, store),
		Projects:  handlers.NewProjectsHandler(projectsView),
		Settings:  handlers.NewSettingsHandler(settingsView),
		Mutations: httptransport.MutationRateLimiter(cfg.HTTP.RateLimitRPS, cfg.HTTP.RateLimitBurst),
	})

	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()), zap.String("storage", cfg.Storage.Driver))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
