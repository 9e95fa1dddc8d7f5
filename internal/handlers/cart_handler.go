package handlers

import (
	"storefront/internal/models"
	"storefront/internal/services"
	"storefront/internal/validation"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// CartHandler serves the cart screen. The cart works before login.
type CartHandler struct {
	service  *services.CartService
	validate *validator.Validate
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(service *services.CartService, validate *validator.Validate) *CartHandler {
	return &CartHandler{service: service, validate: validate}
}

// RegisterRoutes registers the cart routes.
func (h *CartHandler) RegisterRoutes(router fiber.Router) {
	cartRoutes := router.Group("/cart")
	cartRoutes.Get("/", h.HandleGetCart)
	cartRoutes.Delete("/", h.HandleClearCart)
	cartRoutes.Post("/items", h.HandleAddItem)
	cartRoutes.Put("/items/:product_id", h.HandleSetQuantity)
	cartRoutes.Post("/items/:product_id/increment", h.HandleIncrement)
	cartRoutes.Post("/items/:product_id/decrement", h.HandleDecrement)
	cartRoutes.Delete("/items/:product_id", h.HandleRemoveItem)
}

// HandleGetCart returns the cart lines with count and subtotal.
func (h *CartHandler) HandleGetCart(c *fiber.Ctx) error {
	return h.summary(c, fiber.StatusOK)
}

func (h *CartHandler) summary(c *fiber.Ctx, status int) error {
	summary, err := h.service.Summary()
	if err != nil {
		return respondError(c, "Could not retrieve cart", err)
	}
	return c.Status(status).JSON(summary)
}

// HandleAddItem puts a product in the cart.
func (h *CartHandler) HandleAddItem(c *fiber.Ctx) error {
	var req models.AddToCartRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	if err := validation.Check(h.validate, req); err != nil {
		return respondError(c, "Could not add to cart", err)
	}
	if _, err := h.service.Add(c.UserContext(), req.ProductID, req.Quantity); err != nil {
		return respondError(c, "Could not add to cart", err)
	}
	return h.summary(c, fiber.StatusCreated)
}

// HandleSetQuantity sets a line to an exact quantity.
func (h *CartHandler) HandleSetQuantity(c *fiber.Ctx) error {
	var req models.QuantityUpdate
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	if err := validation.Check(h.validate, req); err != nil {
		return respondError(c, "Could not update quantity", err)
	}
	if _, err := h.service.SetQuantity(c.Params("product_id"), req.Quantity); err != nil {
		return respondError(c, "Could not update quantity", err)
	}
	return h.summary(c, fiber.StatusOK)
}

// HandleIncrement adds one unit to a line.
func (h *CartHandler) HandleIncrement(c *fiber.Ctx) error {
	if _, err := h.service.Increment(c.Params("product_id")); err != nil {
		return respondError(c, "Could not update quantity", err)
	}
	return h.summary(c, fiber.StatusOK)
}

// HandleDecrement removes one unit from a line.
func (h *CartHandler) HandleDecrement(c *fiber.Ctx) error {
	if _, err := h.service.Decrement(c.Params("product_id")); err != nil {
		return respondError(c, "Could not update quantity", err)
	}
	return h.summary(c, fiber.StatusOK)
}

// HandleRemoveItem drops a line.
func (h *CartHandler) HandleRemoveItem(c *fiber.Ctx) error {
	if err := h.service.Remove(c.Params("product_id")); err != nil {
		return respondError(c, "Could not remove item", err)
	}
	return h.summary(c, fiber.StatusOK)
}

// HandleClearCart empties the cart.
func (h *CartHandler) HandleClearCart(c *fiber.Ctx) error {
	if err := h.service.Clear(); err != nil {
		return respondError(c, "Could not clear cart", err)
	}
	return h.summary(c, fiber.StatusOK)
}
