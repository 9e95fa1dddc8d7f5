package handlers

import (
	"storefront/internal/models"
	"storefront/internal/services"

	"github.com/gofiber/fiber/v2"
)

// WantListHandler serves the want list and collection screens.
type WantListHandler struct {
	wantList   *services.WantListService
	collection *services.CollectionService
}

// NewWantListHandler creates a new WantListHandler.
func NewWantListHandler(wantList *services.WantListService, collection *services.CollectionService) *WantListHandler {
	return &WantListHandler{wantList: wantList, collection: collection}
}

// RegisterRoutes registers the want list and collection routes.
func (h *WantListHandler) RegisterRoutes(router fiber.Router) {
	wantRoutes := router.Group("/wantlist")
	wantRoutes.Get("/", h.HandleListWantList)
	wantRoutes.Post("/", h.HandleAddWantList)
	wantRoutes.Get("/:product_id", h.HandleContains)
	wantRoutes.Delete("/:product_id", h.HandleRemoveWantList)

	collectionRoutes := router.Group("/collection")
	collectionRoutes.Get("/", h.HandleListCollection)
	collectionRoutes.Post("/", h.HandleAddCollection)
	collectionRoutes.Delete("/:id", h.HandleRemoveCollection)
}

func (h *WantListHandler) HandleListWantList(c *fiber.Ctx) error {
	items, err := h.wantList.List(c.UserContext())
	if err != nil {
		return respondError(c, "Could not retrieve want list", err)
	}
	return c.JSON(items)
}

func (h *WantListHandler) HandleAddWantList(c *fiber.Ctx) error {
	var req models.WantListRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	items, err := h.wantList.Add(c.UserContext(), req)
	if err != nil {
		return respondError(c, "Could not add to want list", err)
	}
	return c.Status(fiber.StatusCreated).JSON(items)
}

// HandleContains reports whether a product is on the want list.
func (h *WantListHandler) HandleContains(c *fiber.Ctx) error {
	productID := c.Params("product_id")
	ok, err := h.wantList.Contains(c.UserContext(), productID)
	if err != nil {
		return respondError(c, "Could not retrieve want list", err)
	}
	return c.JSON(fiber.Map{
		"product_id": productID,
		"wanted":     ok,
	})
}

func (h *WantListHandler) HandleRemoveWantList(c *fiber.Ctx) error {
	items, err := h.wantList.Remove(c.UserContext(), c.Params("product_id"))
	if err != nil {
		return respondError(c, "Could not remove from want list", err)
	}
	return c.JSON(items)
}

// HandleListCollection returns the collection with its totals.
func (h *WantListHandler) HandleListCollection(c *fiber.Ctx) error {
	summary, err := h.collection.Summary(c.UserContext())
	if err != nil {
		return respondError(c, "Could not retrieve collection", err)
	}
	return c.JSON(summary)
}

func (h *WantListHandler) HandleAddCollection(c *fiber.Ctx) error {
	var req models.CollectionItemRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	item, err := h.collection.Add(c.UserContext(), req)
	if err != nil {
		return respondError(c, "Could not add to collection", err)
	}
	return c.Status(fiber.StatusCreated).JSON(item)
}

func (h *WantListHandler) HandleRemoveCollection(c *fiber.Ctx) error {
	if err := h.collection.Remove(c.UserContext(), c.Params("id")); err != nil {
		return respondError(c, "Could not remove from collection", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
