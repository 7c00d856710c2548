package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/rewear-service/internal/api/dto"
	"github.com/spec-kit/rewear-service/internal/auth"
	"github.com/spec-kit/rewear-service/internal/domain"
	apperrors "github.com/spec-kit/rewear-service/pkg/util"
)

// principal returns the authenticated caller or Unauthorized.
func principal(c *fiber.Ctx) (*auth.Principal, error) {
	p, ok := auth.PrincipalFromContext(c)
	if !ok || p.User == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	return p, nil
}

// sameCaller rejects a client-supplied user id that names someone else.
// An empty claimed id means the caller.
func sameCaller(p *auth.Principal, field, claimed string) error {
	claimed = strings.TrimSpace(claimed)
	if claimed == "" || strings.EqualFold(claimed, p.UserID()) {
		return nil
	}
	return apperrors.NewDomainError(apperrors.CodeForbidden, field+" must match the authenticated user", fiber.StatusForbidden,
		map[string]any{field: claimed})
}

func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return apperrors.NewValidationError("invalid payload", map[string]any{"body": err.Error()})
	}
	return nil
}

// queryInt parses an optional integer query parameter.
func queryInt(c *fiber.Ctx, key string) (*int, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid "+key, map[string]any{key: "must be an integer"})
	}
	return &v, nil
}

func queryLimit(c *fiber.Ctx) (int, error) {
	limit, err := queryInt(c, "limit")
	if err != nil || limit == nil {
		return 0, err
	}
	return *limit, nil
}

func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func itemResponse(item *domain.Item) dto.ItemResponse {
	resp := dto.ItemResponse{
		ID:          item.ID,
		OwnerID:     item.OwnerID,
		Name:        item.Name,
		Description: item.Description,
		Cost:        item.Cost,
		Images:      item.Images,
		Condition:   string(item.Condition),
		Tags:        item.Tags,
		Category:    string(item.Category),
		Status:      string(item.Status),
		CreatedAt:   item.CreatedAt,
		UpdatedAt:   item.UpdatedAt,
	}
	if resp.Images == nil {
		resp.Images = []string{}
	}
	if resp.Tags == nil {
		resp.Tags = []string{}
	}
	if item.Size != nil {
		size := string(*item.Size)
		resp.Size = &size
	}
	return resp
}

func itemList(items []domain.Item) []dto.ItemResponse {
	out := make([]dto.ItemResponse, 0, len(items))
	for i := range items {
		out = append(out, itemResponse(&items[i]))
	}
	return out
}

func userResponse(user *domain.User) dto.UserResponse {
	items := user.Items
	if items == nil {
		items = []string{}
	}
	return dto.UserResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		AvatarURL: user.AvatarURL,
		UserType:  string(user.UserType),
		Points:    user.Points,
		Items:     items,
		Rating:    user.Rating,
		CreatedAt: user.CreatedAt,
	}
}

func userSummary(user *domain.User) dto.UserSummary {
	if user == nil {
		return dto.UserSummary{}
	}
	return dto.UserSummary{ID: user.ID, Name: user.Name, AvatarURL: user.AvatarURL}
}

func swapResponse(detail *domain.SwapDetail) dto.SwapResponse {
	resp := dto.SwapResponse{
		ID:              detail.Swap.ID,
		Status:          string(detail.Swap.Status),
		Initiator:       userSummary(detail.Initiator),
		Counterparty:    userSummary(detail.Counterparty),
		ItemOfferedID:   detail.Swap.ItemOfferedID,
		ItemRequestedID: detail.Swap.ItemRequestedID,
		CreatedAt:       detail.Swap.CreatedAt,
		UpdatedAt:       detail.Swap.UpdatedAt,
		DecidedAt:       detail.Swap.DecidedAt,
	}
	if detail.ItemOffered != nil {
		item := itemResponse(detail.ItemOffered)
		resp.ItemOffered = &item
	}
	if detail.ItemRequested != nil {
		item := itemResponse(detail.ItemRequested)
		resp.ItemRequested = &item
	}
	return resp
}

func redemptionResponse(r *domain.Redemption) dto.RedemptionResponse {
	return dto.RedemptionResponse{
		ID:        r.ID,
		ItemID:    r.ItemID,
		BuyerID:   r.BuyerID,
		SellerID:  r.SellerID,
		Cost:      r.Cost,
		CreatedAt: r.CreatedAt,
	}
}
