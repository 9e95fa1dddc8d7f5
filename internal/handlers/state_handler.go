package handlers

import (
	"storefront/internal/models"
	"storefront/internal/services"

	"github.com/gofiber/fiber/v2"
)

// StateHandler serves device settings and navigation badge counts.
type StateHandler struct {
	service *services.StateService
}

// NewStateHandler creates a new StateHandler.
func NewStateHandler(service *services.StateService) *StateHandler {
	return &StateHandler{service: service}
}

// RegisterRoutes registers the settings routes. Counts sit behind
// requireSession.
func (h *StateHandler) RegisterRoutes(router fiber.Router, requireSession fiber.Handler) {
	router.Get("/settings", h.HandleGetSettings)
	router.Put("/settings/theme", h.HandleSetTheme)
	router.Get("/counts", requireSession, h.HandleCounts)
}

func (h *StateHandler) HandleGetSettings(c *fiber.Ctx) error {
	settings, err := h.service.Settings()
	if err != nil {
		return respondError(c, "Could not retrieve settings", err)
	}
	return c.JSON(settings)
}

func (h *StateHandler) HandleSetTheme(c *fiber.Ctx) error {
	var upd models.ThemeUpdate
	if err := c.BodyParser(&upd); err != nil {
		return badBody(c, err)
	}
	settings, err := h.service.SetTheme(upd)
	if err != nil {
		return respondError(c, "Could not change theme", err)
	}
	return c.JSON(settings)
}

func (h *StateHandler) HandleCounts(c *fiber.Ctx) error {
	counts, err := h.service.Counts()
	if err != nil {
		return respondError(c, "Could not retrieve counts", err)
	}
	return c.JSON(counts)
}
