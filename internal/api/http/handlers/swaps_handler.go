package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/rewear-service/internal/api/dto"
	"github.com/spec-kit/rewear-service/internal/service"
	apperrors "github.com/spec-kit/rewear-service/pkg/util"
)

// SwapsHandler serves the swap ledger.
type SwapsHandler struct {
	swaps *service.SwapService
}

// NewSwapsHandler constructs handler.
func NewSwapsHandler(swaps *service.SwapService) *SwapsHandler {
	return &SwapsHandler{swaps: swaps}
}

// Propose POST /swaps.
func (h *SwapsHandler) Propose(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req dto.ProposeSwapRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := sameCaller(p, "initiatorId", req.InitiatorID); err != nil {
		return err
	}
	detail, err := h.swaps.ProposeSwap(c.UserContext(), p.UserID(), req.ItemOfferedID, req.ItemRequestedID)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"success": true, "swap": swapResponse(detail)})
}

// Decide PUT /swaps.
func (h *SwapsHandler) Decide(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req dto.DecideSwapRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := sameCaller(p, "userId", req.UserID); err != nil {
		return err
	}
	detail, err := h.swaps.DecideSwap(c.UserContext(), req.SwapID, p.UserID(), req.Status)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "swap": swapResponse(detail)})
}

// List GET /swaps?type=initiated|received|both.
func (h *SwapsHandler) List(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	if err := sameCaller(p, "userId", c.Query("userId")); err != nil {
		return err
	}
	swaps, err := h.swaps.ListSwapsForUser(c.UserContext(), p.UserID(), strings.TrimSpace(c.Query("type")))
	if err != nil {
		return err
	}
	out := make([]dto.SwapResponse, 0, len(swaps))
	for i := range swaps {
		out = append(out, swapResponse(&swaps[i]))
	}
	return c.JSON(fiber.Map{"success": true, "swaps": out, "count": len(out)})
}

// Get GET /swaps/:id.
func (h *SwapsHandler) Get(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id := strings.TrimSpace(c.Params("id"))
	if id == "" {
		return apperrors.NewValidationError("swap id required", nil)
	}
	detail, err := h.swaps.GetSwap(c.UserContext(), id, p.User)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "swap": swapResponse(detail)})
}
