package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/rewear-service/internal/domain"
	"github.com/spec-kit/rewear-service/internal/events"
	"github.com/spec-kit/rewear-service/internal/repository"
	apperrors "github.com/spec-kit/rewear-service/pkg/util"
)

// StatusAll selects every item status in ListByStatus.
const StatusAll = "all"

// ModerationAction is an admin verdict on a pending listing.
type ModerationAction string

const (
	ActionApprove ModerationAction = "approve"
	ActionReject  ModerationAction = "reject"
)

// MediaCleaner removes uploaded images that belong to a deleted item.
type MediaCleaner interface {
	PublicID(imageURL string) (string, bool)
	Delete(ctx context.Context, publicID string) error
}

// ModerationService gates which listings become public.
type ModerationService struct {
	items      repository.ItemRepository
	history    repository.ItemHistoryRepository
	media      MediaCleaner
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewModerationService constructs the service. media may be nil, in which
// case stored images are left in place when an item is deleted.
func NewModerationService(items repository.ItemRepository, history repository.ItemHistoryRepository, media MediaCleaner, dispatcher events.Dispatcher, logger *zap.Logger) *ModerationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ModerationService{items: items, history: history, media: media, dispatcher: dispatcher, logger: logger}
}

// ListByStatus lists items in status ("all" for every status), newest first.
func (s *ModerationService) ListByStatus(ctx context.Context, status string, limit int) ([]domain.Item, error) {
	filter := repository.ItemFilter{Limit: limit}
	switch status = strings.TrimSpace(status); status {
	case StatusAll:
	case "":
		filter.Statuses = []domain.ItemStatus{domain.ItemStatusPending}
	default:
		st := domain.ItemStatus(status)
		if !st.Valid() {
			return nil, apperrors.NewValidationError("invalid status", map[string]any{"status": "unknown item status"})
		}
		filter.Statuses = []domain.ItemStatus{st}
	}
	items, err := s.items.List(ctx, filter)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return nonNil(items), nil
}

// Decide approves or rejects a pending item.
func (s *ModerationService) Decide(ctx context.Context, moderatorID, itemID string, action ModerationAction) (*domain.Item, error) {
	itemID, err := parseID("itemId", itemID)
	if err != nil {
		return nil, err
	}
	var target domain.ItemStatus
	switch action {
	case ActionApprove:
		target = domain.ItemStatusAvailable
	case ActionReject:
		target = domain.ItemStatusRejected
	default:
		return nil, apperrors.NewValidationError("invalid action", map[string]any{"action": "must be approve or reject"})
	}

	item, err := s.items.TransitionStatus(ctx, itemID, []domain.ItemStatus{domain.ItemStatusPending}, target)
	if err != nil {
		if errors.Is(err, repository.ErrStatusConflict) {
			return nil, apperrors.NewConflict("only pending items can be moderated", map[string]any{"id": itemID})
		}
		return nil, notFoundOr(err, "item", itemID)
	}

	recordStatusChange(ctx, s.history, s.logger, item.ID, domain.ItemStatusPending, target, &moderatorID, "moderation_"+string(action))
	publish(ctx, s.dispatcher, s.logger, events.Event{
		Type:    events.EventItemModerated,
		ActorID: &moderatorID,
		Payload: events.ItemModeratedPayload{
			ItemID:    item.ID,
			OwnerID:   item.OwnerID,
			OldStatus: domain.ItemStatusPending,
			NewStatus: target,
		},
	})
	return item, nil
}

// DeleteItem hard-deletes an item that is not locked by a pending swap.
func (s *ModerationService) DeleteItem(ctx context.Context, moderatorID, itemID string) (*domain.Item, error) {
	itemID, err := parseID("itemId", itemID)
	if err != nil {
		return nil, err
	}
	item, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		return nil, notFoundOr(err, "item", itemID)
	}
	if err := s.items.Delete(ctx, itemID); err != nil {
		if errors.Is(err, repository.ErrStatusConflict) {
			return nil, apperrors.NewConflict("item is part of a pending swap", map[string]any{"id": itemID})
		}
		return nil, notFoundOr(err, "item", itemID)
	}

	s.logger.Info("item deleted", zap.String("item_id", itemID), zap.String("moderator_id", moderatorID))
	s.removeImages(ctx, item)
	publish(ctx, s.dispatcher, s.logger, events.Event{
		Type:    events.EventItemDeleted,
		ActorID: &moderatorID,
		Payload: events.ItemDeletedPayload{ItemID: itemID, OwnerID: item.OwnerID},
	})
	return item, nil
}

// removeImages deletes the uploaded files of a deleted item. Failures are
// logged; the item is already gone.
func (s *ModerationService) removeImages(ctx context.Context, item *domain.Item) {
	if s.media == nil {
		return
	}
	for _, imageURL := range item.Images {
		publicID, ok := s.media.PublicID(imageURL)
		if !ok {
			continue
		}
		if err := s.media.Delete(ctx, publicID); err != nil {
			s.logger.Warn("failed to remove item image",
				zap.String("item_id", item.ID),
				zap.String("public_id", publicID),
				zap.Error(err),
			)
		}
	}
}

// History returns the status audit trail of an item. Entries outlive deletion.
func (s *ModerationService) History(ctx context.Context, itemID string) ([]domain.ItemStatusChange, error) {
	itemID, err := parseID("itemId", itemID)
	if err != nil {
		return nil, err
	}
	entries, err := s.history.ListByItem(ctx, itemID)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return nonNil(entries), nil
}
