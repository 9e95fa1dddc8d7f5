package handlers

import (
	"storefront/internal/models"
	"storefront/internal/services"

	"github.com/gofiber/fiber/v2"
)

// ProfileHandler serves the profile screen.
type ProfileHandler struct {
	service *services.ProfileService
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(service *services.ProfileService) *ProfileHandler {
	return &ProfileHandler{service: service}
}

// RegisterRoutes registers the profile routes.
func (h *ProfileHandler) RegisterRoutes(router fiber.Router) {
	profileRoutes := router.Group("/profile")
	profileRoutes.Get("/", h.HandleGetProfile)
	profileRoutes.Patch("/", h.HandleUpdateProfile)
}

// HandleGetProfile returns the signed-in user's profile.
func (h *ProfileHandler) HandleGetProfile(c *fiber.Ctx) error {
	user, err := h.service.Get(c.UserContext())
	if err != nil {
		return respondError(c, "Could not retrieve profile", err)
	}
	return c.JSON(user)
}

// HandleUpdateProfile saves profile edits.
func (h *ProfileHandler) HandleUpdateProfile(c *fiber.Ctx) error {
	var upd models.ProfileUpdate
	if err := c.BodyParser(&upd); err != nil {
		return badBody(c, err)
	}
	user, err := h.service.Update(c.UserContext(), upd)
	if err != nil {
		return respondError(c, "Could not update profile", err)
	}
	return c.JSON(user)
}
