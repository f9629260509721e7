package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/project-dashboard/internal/api/dto"
	"github.com/spec-kit/project-dashboard/internal/domain"
	"github.com/spec-kit/project-dashboard/internal/service"
	"github.com/spec-kit/project-dashboard/internal/viewstate"
	apperrors "github.com/spec-kit/project-dashboard/pkg/util/errorutil"
)

const defaultRecentLimit = 5

// ProjectsHandler serves the project endpoints from the projects view.
type ProjectsHandler struct {
	view *viewstate.ProjectsView
}

// NewProjectsHandler constructs handler.
func NewProjectsHandler(view *viewstate.ProjectsView) *ProjectsHandler {
	return &ProjectsHandler{view: view}
}

// ListProjects GET /api/projects.
func (h *ProjectsHandler) ListProjects(c *fiber.Ctx) error {
	if err := h.ensureLoaded(c, c.QueryBool("refresh", false)); err != nil {
		return err
	}
	page, err := h.view.Query(parseProjectFilter(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewProjectPageResponse(page)})
}

// Stats GET /api/projects/stats.
func (h *ProjectsHandler) Stats(c *fiber.Ctx) error {
	if err := h.ensureLoaded(c, false); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": h.view.Stats()})
}

// Recent GET /api/projects/recent.
func (h *ProjectsHandler) Recent(c *fiber.Ctx) error {
	if err := h.ensureLoaded(c, false); err != nil {
		return err
	}
	page, err := h.view.Query(service.ProjectFilter{
		Sort:  service.SortUpdatedDesc,
		Limit: c.QueryInt("limit", defaultRecentLimit),
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewProjectResponses(page.Items)})
}

// GetProject GET /api/projects/:id.
func (h *ProjectsHandler) GetProject(c *fiber.Ctx) error {
	if err := h.ensureLoaded(c, false); err != nil {
		return err
	}
	id := c.Params("id")
	project, err := h.view.Lookup(c.UserContext(), id)
	if err != nil {
		return err
	}
	if project == nil {
		return apperrors.NewNotFound("project", map[string]any{"id": id})
	}
	return c.JSON(fiber.Map{"data": dto.NewProjectResponse(*project)})
}

// CreateProject POST /api/projects.
func (h *ProjectsHandler) CreateProject(c *fiber.Ctx) error {
	var req dto.CreateProjectRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}
	project, err := h.view.Create(c.UserContext(), req.ToInput())
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.NewProjectResponse(*project)})
}

// UpdateProject PATCH /api/projects/:id.
func (h *ProjectsHandler) UpdateProject(c *fiber.Ctx) error {
	var req dto.UpdateProjectRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}
	project, err := h.view.Update(c.UserContext(), c.Params("id"), req.ToInput())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewProjectResponse(*project)})
}

// ArchiveProject POST /api/projects/:id/archive.
func (h *ProjectsHandler) ArchiveProject(c *fiber.Ctx) error {
	project, err := h.view.Archive(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewProjectResponse(*project)})
}

// DeleteProject DELETE /api/projects/:id. Unknown ids still answer 204.
func (h *ProjectsHandler) DeleteProject(c *fiber.Ctx) error {
	if err := h.view.Delete(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ensureLoaded waits for the initial fetch and resyncs when asked to or
// when the last fetch failed.
func (h *ProjectsHandler) ensureLoaded(c *fiber.Ctx, refresh bool) error {
	if err := h.view.Wait(c.UserContext()); err != nil {
		return err
	}
	if refresh || h.view.Err() != nil {
		if err := h.view.Refetch(c.UserContext()); err != nil {
			return err
		}
	}
	return nil
}

func parseProjectFilter(c *fiber.Ctx) service.ProjectFilter {
	filter := service.ProjectFilter{
		Search: c.Query("search"),
		Where:  c.Query("where"),
		Sort:   service.ProjectSort(c.Query("sort")),
		Limit:  c.QueryInt("limit", 0),
		Offset: c.QueryInt("offset", 0),
	}
	if raw := c.Query("status"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				filter.Statuses = append(filter.Statuses, domain.ProjectStatus(part))
			}
		}
	}
	return filter
}
