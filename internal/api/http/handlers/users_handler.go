package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/rewear-service/internal/domain"
	"github.com/spec-kit/rewear-service/internal/service"
	apperrors "github.com/spec-kit/rewear-service/pkg/util"
)

// UsersHandler serves profile and per-user listing endpoints.
type UsersHandler struct {
	members *service.MembershipService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(members *service.MembershipService) *UsersHandler {
	return &UsersHandler{members: members}
}

// Me handles GET /users/me.
func (h *UsersHandler) Me(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	user, err := h.members.GetProfile(c.UserContext(), p.UserID())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "user": userResponse(user)})
}

// Items handles GET /users/items?userId=&status=. Status defaults to
// available; "all" lists every status.
func (h *UsersHandler) Items(c *fiber.Ctx) error {
	userID := strings.TrimSpace(c.Query("userId"))
	if userID == "" {
		return apperrors.NewValidationError("userId is required", map[string]any{"userId": "required"})
	}

	var status *domain.ItemStatus
	switch raw := strings.TrimSpace(c.Query("status")); raw {
	case service.StatusAll:
	case "":
		available := domain.ItemStatusAvailable
		status = &available
	default:
		st := domain.ItemStatus(raw)
		status = &st
	}

	items, err := h.members.GetOwnedItems(c.UserContext(), userID, status)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "items": itemList(items), "count": len(items)})
}
