package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/rewear-service/internal/api/dto"
	"github.com/spec-kit/rewear-service/internal/service"
)

// RedemptionsHandler lets users buy items with points.
type RedemptionsHandler struct {
	redemptions *service.RedemptionService
}

// NewRedemptionsHandler constructs handler.
func NewRedemptionsHandler(redemptions *service.RedemptionService) *RedemptionsHandler {
	return &RedemptionsHandler{redemptions: redemptions}
}

// Redeem POST /redemptions.
func (h *RedemptionsHandler) Redeem(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req dto.RedeemRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	redemption, buyer, err := h.redemptions.Redeem(c.UserContext(), p.UserID(), req.ItemID)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"success":    true,
		"redemption": redemptionResponse(redemption),
		"points":     buyer.Points,
	})
}

// List GET /redemptions.
func (h *RedemptionsHandler) List(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	list, err := h.redemptions.ListForUser(c.UserContext(), p.UserID())
	if err != nil {
		return err
	}
	out := make([]dto.RedemptionResponse, 0, len(list))
	for i := range list {
		out = append(out, redemptionResponse(&list[i]))
	}
	return c.JSON(fiber.Map{"success": true, "redemptions": out})
}
