package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/spec-kit/rewear-service/internal/domain"
	"github.com/spec-kit/rewear-service/internal/events"
	"github.com/spec-kit/rewear-service/internal/repository"
	apperrors "github.com/spec-kit/rewear-service/pkg/util"
)

// RedemptionService lets members buy available items with points.
type RedemptionService struct {
	redemptions repository.RedemptionRepository
	items       repository.ItemRepository
	users       repository.UserRepository
	history     repository.ItemHistoryRepository
	dispatcher  events.Dispatcher
	logger      *zap.Logger
}

// RedemptionDependencies bundles collaborators for redemptions.
type RedemptionDependencies struct {
	RedemptionRepo repository.RedemptionRepository
	ItemRepo       repository.ItemRepository
	UserRepo       repository.UserRepository
	HistoryRepo    repository.ItemHistoryRepository
	Dispatcher     events.Dispatcher
	Logger         *zap.Logger
}

// NewRedemptionService constructs the service.
func NewRedemptionService(deps RedemptionDependencies) *RedemptionService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedemptionService{
		redemptions: deps.RedemptionRepo,
		items:       deps.ItemRepo,
		users:       deps.UserRepo,
		history:     deps.HistoryRepo,
		dispatcher:  deps.Dispatcher,
		logger:      logger,
	}
}

// Redeem buys itemID for buyerID at the item's cost.
func (s *RedemptionService) Redeem(ctx context.Context, buyerID, itemID string) (*domain.Redemption, *domain.User, error) {
	itemID, err := parseID("itemId", itemID)
	if err != nil {
		return nil, nil, err
	}
	item, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		return nil, nil, notFoundOr(err, "item", itemID)
	}
	if item.OwnerID == buyerID {
		return nil, nil, apperrors.NewForbidden("cannot redeem your own item")
	}
	if item.Status != domain.ItemStatusAvailable {
		return nil, nil, apperrors.NewConflict("item is not available", map[string]any{"status": item.Status})
	}

	redemption := &domain.Redemption{
		ItemID:   item.ID,
		BuyerID:  buyerID,
		SellerID: item.OwnerID,
		Cost:     item.Cost,
	}
	buyer, err := s.redemptions.Redeem(ctx, redemption)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrInsufficientBalance):
			balance := 0
			if current, getErr := s.users.GetByID(ctx, buyerID); getErr == nil {
				balance = current.Points
			}
			return nil, nil, apperrors.NewInsufficientBalance(balance, item.Cost)
		case errors.Is(err, repository.ErrStatusConflict):
			return nil, nil, apperrors.NewConflict("item is no longer available", nil)
		default:
			return nil, nil, notFoundOr(err, "user", buyerID)
		}
	}

	recordStatusChange(ctx, s.history, s.logger, item.ID, domain.ItemStatusAvailable, domain.ItemStatusRedeemed, &buyerID, "redeemed:"+redemption.ID)
	publish(ctx, s.dispatcher, s.logger, events.Event{
		Type:    events.EventItemRedeemed,
		ActorID: &buyerID,
		Payload: events.ItemRedeemedPayload{
			RedemptionID: redemption.ID,
			ItemID:       item.ID,
			BuyerID:      buyerID,
			SellerID:     item.OwnerID,
			Cost:         item.Cost,
		},
	})
	return redemption, buyer, nil
}

// ListForUser returns redemptions where the user bought or sold.
func (s *RedemptionService) ListForUser(ctx context.Context, userID string) ([]domain.Redemption, error) {
	userID, err := parseID("userId", userID)
	if err != nil {
		return nil, err
	}
	list, err := s.redemptions.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return nonNil(list), nil
}
