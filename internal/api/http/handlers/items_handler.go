package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/rewear-service/internal/api/dto"
	"github.com/spec-kit/rewear-service/internal/service"
)

// ItemsHandler serves the public catalog.
type ItemsHandler struct {
	catalog *service.CatalogService
}

// NewItemsHandler constructs handler.
func NewItemsHandler(catalog *service.CatalogService) *ItemsHandler {
	return &ItemsHandler{catalog: catalog}
}

// List GET /items.
func (h *ItemsHandler) List(c *fiber.Ctx) error {
	query, err := parseItemQuery(c)
	if err != nil {
		return err
	}
	items, err := h.catalog.ListItems(c.UserContext(), query)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "items": itemList(items), "count": len(items)})
}

// Get GET /items/:id.
func (h *ItemsHandler) Get(c *fiber.Ctx) error {
	item, err := h.catalog.GetItem(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "item": itemResponse(item)})
}

// Create POST /items. The owner is the caller.
func (h *ItemsHandler) Create(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req dto.CreateItemRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := sameCaller(p, "ownerId", req.OwnerID); err != nil {
		return err
	}

	item, err := h.catalog.CreateItem(c.UserContext(), p.UserID(), service.CreateItemInput{
		Name:        req.Name,
		Description: req.Description,
		Cost:        req.Cost,
		Images:      req.Images,
		Condition:   req.Condition,
		Tags:        req.Tags,
		Size:        req.Size,
		Category:    req.Category,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"success": true, "item": itemResponse(item)})
}

func parseItemQuery(c *fiber.Ctx) (service.ItemQuery, error) {
	query := service.ItemQuery{
		Category:  c.Query("category"),
		Condition: c.Query("condition"),
		Tags:      splitList(c.Query("tags")),
		Search:    c.Query("search"),
	}
	var err error
	if query.MinCost, err = queryInt(c, "minCost"); err != nil {
		return query, err
	}
	if query.MaxCost, err = queryInt(c, "maxCost"); err != nil {
		return query, err
	}
	if query.Limit, err = queryLimit(c); err != nil {
		return query, err
	}
	return query, nil
}
