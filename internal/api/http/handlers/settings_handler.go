package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/project-dashboard/internal/api/dto"
	"github.com/spec-kit/project-dashboard/internal/domain"
	"github.com/spec-kit/project-dashboard/internal/viewstate"
	apperrors "github.com/spec-kit/project-dashboard/pkg/util/errorutil"
)

// SettingsHandler serves the settings endpoints from the settings view.
type SettingsHandler struct {
	view *viewstate.SettingsView
}

// NewSettingsHandler constructs handler.
func NewSettingsHandler(view *viewstate.SettingsView) *SettingsHandler {
	return &SettingsHandler{view: view}
}

// GetSettings GET /api/settings.
func (h *SettingsHandler) GetSettings(c *fiber.Ctx) error {
	if err := h.view.Wait(c.UserContext()); err != nil {
		return err
	}
	if c.QueryBool("refresh", false) || h.view.Settings() == nil {
		if err := h.view.Refetch(c.UserContext()); err != nil {
			return err
		}
	}
	return c.JSON(fiber.Map{"data": dto.NewSettingsResponse(*h.view.Settings())})
}

// UpdateSettings PATCH /api/settings.
func (h *SettingsHandler) UpdateSettings(c *fiber.Ctx) error {
	var req dto.UpdateSettingsRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}
	data, err := h.view.UpdateSettings(c.UserContext(), req.ToInput())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewSettingsResponse(*data)})
}

// ChangeLanguage PUT /api/settings/language.
func (h *SettingsHandler) ChangeLanguage(c *fiber.Ctx) error {
	var req dto.ChangeLanguageRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}
	data, err := h.view.ChangeLanguage(c.UserContext(), req.Language)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewSettingsResponse(*data)})
}

// ChangeTheme PUT /api/settings/theme.
func (h *SettingsHandler) ChangeTheme(c *fiber.Ctx) error {
	var req dto.ChangeThemeRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}
	data, err := h.view.ChangeTheme(c.UserContext(), domain.Theme(req.Theme))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewSettingsResponse(*data)})
}
