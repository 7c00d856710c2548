package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/rewear-service/internal/api/dto"
	"github.com/spec-kit/rewear-service/internal/service"
	apperrors "github.com/spec-kit/rewear-service/pkg/util"
)

// AdminHandler exposes the moderation queue.
type AdminHandler struct {
	moderation *service.ModerationService
}

// NewAdminHandler constructs handler.
func NewAdminHandler(moderation *service.ModerationService) *AdminHandler {
	return &AdminHandler{moderation: moderation}
}

// ListItems GET /admin/items?status=.
func (h *AdminHandler) ListItems(c *fiber.Ctx) error {
	limit, err := queryLimit(c)
	if err != nil {
		return err
	}
	items, err := h.moderation.ListByStatus(c.UserContext(), c.Query("status"), limit)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "items": itemList(items), "count": len(items)})
}

// ModerateItem PUT /admin/items.
func (h *AdminHandler) ModerateItem(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req dto.ModerateItemRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	action := service.ModerationAction(strings.ToLower(strings.TrimSpace(req.Action)))
	item, err := h.moderation.Decide(c.UserContext(), p.UserID(), req.ItemID, action)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "item": itemResponse(item)})
}

// DeleteItem DELETE /admin/items?itemId=.
func (h *AdminHandler) DeleteItem(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	itemID := strings.TrimSpace(c.Query("itemId"))
	if itemID == "" {
		return apperrors.NewValidationError("itemId is required", map[string]any{"itemId": "required"})
	}
	if _, err := h.moderation.DeleteItem(c.UserContext(), p.UserID(), itemID); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true})
}

// History GET /admin/items/:id/history.
func (h *AdminHandler) History(c *fiber.Ctx) error {
	entries, err := h.moderation.History(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	out := make([]dto.ItemStatusChangeResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, dto.ItemStatusChangeResponse{
			ID:        e.ID,
			ItemID:    e.ItemID,
			OldStatus: string(e.OldStatus),
			NewStatus: string(e.NewStatus),
			ActorID:   e.ActorID,
			Reason:    e.Reason,
			CreatedAt: e.CreatedAt,
		})
	}
	return c.JSON(fiber.Map{"success": true, "history": out})
}
