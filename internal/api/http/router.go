package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/project-dashboard/internal/api/http/handlers"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health   *handlers.HealthHandler
	Projects *handlers.ProjectsHandler
	Settings *handlers.SettingsHandler
	// Mutations guards every write route; nil leaves them unguarded.
	Mutations fiber.Handler
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	mutate := cfg.Mutations
	if mutate == nil {
		mutate = func(c *fiber.Ctx) error { return c.Next() }
	}

	api := app.Group("/api")

	projects := api.Group("/projects")
	projects.Get("/", cfg.Projects.ListProjects)
	projects.Get("/stats", cfg.Projects.Stats)
	projects.Get("/recent", cfg.Projects.Recent)
	projects.Get("/:id", cfg.Projects.GetProject)
	projects.Post("/", mutate, cfg.Projects.CreateProject)
	projects.Patch("/:id", mutate, cfg.Projects.UpdateProject)
	projects.Post("/:id/archive", mutate, cfg.Projects.ArchiveProject)
	projects.Delete("/:id", mutate, cfg.Projects.DeleteProject)

	settings := api.Group("/settings")
	settings.Get("/", cfg.Settings.GetSettings)
	settings.Patch("/", mutate, cfg.Settings.UpdateSettings)
	settings.Put("/language", mutate, cfg.Settings.ChangeLanguage)
	settings.Put("/theme", mutate, cfg.Settings.ChangeTheme)
}
