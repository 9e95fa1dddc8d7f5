package handlers

import (
	"storefront/internal/models"
	"storefront/internal/services"

	"github.com/gofiber/fiber/v2"
)

// CatalogHandler serves the browsing screens.
type CatalogHandler struct {
	catalog      *services.CatalogService
	reservations *services.ReservationService
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(catalog *services.CatalogService, reservations *services.ReservationService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, reservations: reservations}
}

// RegisterRoutes registers the product and release routes.
func (h *CatalogHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/products", h.HandleListProducts)
	router.Get("/products/:id", h.HandleGetProduct)
	router.Get("/releases", h.HandleListReleases)
}

// HandleListProducts returns one page of products. Supports search, page
// and per_page query parameters.
func (h *CatalogHandler) HandleListProducts(c *fiber.Ctx) error {
	var q models.ProductQuery
	if err := c.QueryParser(&q); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid query parameters",
			"error":   err.Error(),
		})
	}
	page, err := h.catalog.ListProducts(c.UserContext(), q)
	if err != nil {
		return respondError(c, "Could not retrieve products", err)
	}
	return c.JSON(page)
}

// HandleGetProduct retrieves a single product by its ID.
func (h *CatalogHandler) HandleGetProduct(c *fiber.Ctx) error {
	product, err := h.catalog.GetProduct(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, "Could not retrieve product", err)
	}
	return c.JSON(product)
}

// HandleListReleases returns the releases newest first.
func (h *CatalogHandler) HandleListReleases(c *fiber.Ctx) error {
	releases, err := h.reservations.Releases(c.UserContext())
	if err != nil {
		return respondError(c, "Could not retrieve releases", err)
	}
	return c.JSON(releases)
}
