package handlers

import (
	"storefront/internal/models"
	"storefront/internal/services"
	"storefront/internal/validation"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// PaymentHandler serves the online payment redirect flow.
type PaymentHandler struct {
	service  *services.PaymentService
	validate *validator.Validate
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(service *services.PaymentService, validate *validator.Validate) *PaymentHandler {
	return &PaymentHandler{service: service, validate: validate}
}

// RegisterRoutes registers the payment routes.
func (h *PaymentHandler) RegisterRoutes(router fiber.Router) {
	paymentRoutes := router.Group("/payments")
	paymentRoutes.Post("/orders/:id", h.HandleBegin)
	paymentRoutes.Post("/complete", h.HandleComplete)
}

// HandleBegin returns the gateway URL the UI should open for an order.
func (h *PaymentHandler) HandleBegin(c *fiber.Ctx) error {
	redirect, err := h.service.Begin(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, "Could not start payment", err)
	}
	return c.JSON(redirect)
}

// HandleComplete reads the finish URL the gateway sent the user back to.
func (h *PaymentHandler) HandleComplete(c *fiber.Ctx) error {
	var req models.PaymentCompletion
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	if err := validation.Check(h.validate, req); err != nil {
		return respondError(c, "Could not complete payment", err)
	}
	result, err := h.service.Complete(c.UserContext(), req.FinishURL)
	if err != nil {
		return respondError(c, "Could not complete payment", err)
	}
	return c.JSON(result)
}
