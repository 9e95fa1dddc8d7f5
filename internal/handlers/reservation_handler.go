package handlers

import (
	"storefront/internal/models"
	"storefront/internal/services"

	"github.com/gofiber/fiber/v2"
)

// ReservationHandler serves the reservation screens: release picker,
// product selection, confirmation dialog and reservation list.
type ReservationHandler struct {
	service  *services.ReservationService
	deviceID string
}

// NewReservationHandler creates a new ReservationHandler. deviceID keys the
// search debouncer.
func NewReservationHandler(service *services.ReservationService, deviceID string) *ReservationHandler {
	return &ReservationHandler{service: service, deviceID: deviceID}
}

// RegisterRoutes registers the reservation routes.
func (h *ReservationHandler) RegisterRoutes(router fiber.Router) {
	reservationRoutes := router.Group("/reservations")
	reservationRoutes.Get("/", h.HandleList)
	reservationRoutes.Get("/releases", h.HandleReleases)
	reservationRoutes.Get("/releases/:id/products", h.HandleCandidates)
	reservationRoutes.Post("/preview", h.HandlePreview)
	reservationRoutes.Post("/confirm", h.HandleConfirm)
	reservationRoutes.Delete("/:id", h.HandleCancel)
}

// HandleList refreshes and returns the reservation list.
func (h *ReservationHandler) HandleList(c *fiber.Ctx) error {
	list, err := h.service.Refresh(c.UserContext())
	if err != nil {
		return respondError(c, "Could not retrieve reservations", err)
	}
	return c.JSON(list)
}

// HandleReleases returns the releases with the latest flagged.
func (h *ReservationHandler) HandleReleases(c *fiber.Ctx) error {
	releases, err := h.service.Releases(c.UserContext())
	if err != nil {
		return respondError(c, "Could not retrieve releases", err)
	}
	return c.JSON(releases)
}

// HandleCandidates lists a release's products for selection. A search term
// goes through the debouncer keyed by device, so only the last of a burst
// of keystrokes reaches the API.
func (h *ReservationHandler) HandleCandidates(c *fiber.Ctx) error {
	releaseID := c.Params("id")
	term := c.Query("search")

	var (
		candidates []models.ReservationCandidate
		err        error
	)
	if term == "" {
		candidates, err = h.service.Candidates(c.UserContext(), releaseID, "")
	} else {
		key := h.deviceID + ":" + releaseID
		candidates, err = h.service.Search(c.UserContext(), key, releaseID, term)
	}
	if err != nil {
		return respondError(c, "Could not retrieve release products", err)
	}
	return c.JSON(candidates)
}

// HandlePreview validates a selection and returns the confirmation dialog.
func (h *ReservationHandler) HandlePreview(c *fiber.Ctx) error {
	var sel models.ReservationSelection
	if err := c.BodyParser(&sel); err != nil {
		return badBody(c, err)
	}
	preview, err := h.service.Preview(c.UserContext(), sel)
	if err != nil {
		return respondError(c, "Selection cannot be reserved", err)
	}
	return c.JSON(preview)
}

// HandleConfirm commits a selection.
func (h *ReservationHandler) HandleConfirm(c *fiber.Ctx) error {
	var sel models.ReservationSelection
	if err := c.BodyParser(&sel); err != nil {
		return badBody(c, err)
	}
	result, err := h.service.Confirm(c.UserContext(), sel)
	if err != nil {
		return respondError(c, "Could not confirm reservations", err)
	}
	return c.Status(fiber.StatusCreated).JSON(result)
}

// HandleCancel removes a pending reservation.
func (h *ReservationHandler) HandleCancel(c *fiber.Ctx) error {
	list, err := h.service.Cancel(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, "Could not cancel reservation", err)
	}
	return c.JSON(list)
}
