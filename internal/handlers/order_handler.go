package handlers

import (
	"storefront/internal/models"
	"storefront/internal/services"

	"github.com/gofiber/fiber/v2"
)

// OrderHandler serves checkout and the order history.
type OrderHandler struct {
	service *services.CheckoutService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.CheckoutService) *OrderHandler {
	return &OrderHandler{
		service: service,
	}
}

// RegisterRoutes registers the checkout and order routes.
func (h *OrderHandler) RegisterRoutes(router fiber.Router) {
	checkoutRoutes := router.Group("/checkout")
	checkoutRoutes.Post("/quote", h.HandleQuote)
	checkoutRoutes.Post("/", h.HandlePlaceOrder)

	orderRoutes := router.Group("/orders")
	orderRoutes.Get("/", h.HandleGetOrders)
	orderRoutes.Get("/:id", h.HandleGetOrderByID)
}

// HandleQuote prices the cart for the chosen delivery method and promo code.
func (h *OrderHandler) HandleQuote(c *fiber.Ctx) error {
	var req models.CheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	quote, err := h.service.Quote(c.UserContext(), req)
	if err != nil {
		return respondError(c, "Could not price the cart", err)
	}
	return c.JSON(quote)
}

// HandlePlaceOrder submits the cart as an order.
func (h *OrderHandler) HandlePlaceOrder(c *fiber.Ctx) error {
	var req models.CheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	if key := c.Get("Idempotency-Key"); key != "" && req.IdempotencyKey == "" {
		req.IdempotencyKey = key
	}

	order, err := h.service.PlaceOrder(c.UserContext(), req)
	if err != nil {
		return respondError(c, "Could not place order", err)
	}
	return c.Status(fiber.StatusCreated).JSON(order)
}

// HandleGetOrders returns the order history.
func (h *OrderHandler) HandleGetOrders(c *fiber.Ctx) error {
	orders, err := h.service.Orders(c.UserContext())
	if err != nil {
		return respondError(c, "Could not retrieve orders", err)
	}
	if orders == nil {
		orders = []models.Order{}
	}
	return c.JSON(orders)
}

// HandleGetOrderByID retrieves a single order by its ID.
func (h *OrderHandler) HandleGetOrderByID(c *fiber.Ctx) error {
	order, err := h.service.Order(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, "Could not retrieve order", err)
	}
	return c.JSON(order)
}
