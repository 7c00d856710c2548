package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/rewear-service/internal/domain"
	"github.com/spec-kit/rewear-service/internal/events"
	"github.com/spec-kit/rewear-service/internal/repository"
	apperrors "github.com/spec-kit/rewear-service/pkg/util"
)

// expiryBatchSize bounds one ListPendingBefore page during a sweep.
const expiryBatchSize = 100

// TransitionRecorder receives swap status transitions for metrics.
type TransitionRecorder interface {
	RecordSwapTransition(status string)
}

// SwapService runs the proposal, decision and expiry state machine.
type SwapService struct {
	swaps      repository.SwapRepository
	items      repository.ItemRepository
	users      repository.UserRepository
	history    repository.ItemHistoryRepository
	dispatcher events.Dispatcher
	recorder   TransitionRecorder
	logger     *zap.Logger
	now        func() time.Time
}

// SwapDependencies bundles collaborators for the swap ledger.
type SwapDependencies struct {
	SwapRepo    repository.SwapRepository
	ItemRepo    repository.ItemRepository
	UserRepo    repository.UserRepository
	HistoryRepo repository.ItemHistoryRepository
	Dispatcher  events.Dispatcher
	Recorder    TransitionRecorder
	Logger      *zap.Logger
}

// NewSwapService constructs the service.
func NewSwapService(deps SwapDependencies) *SwapService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SwapService{
		swaps:      deps.SwapRepo,
		items:      deps.ItemRepo,
		users:      deps.UserRepo,
		history:    deps.HistoryRepo,
		dispatcher: deps.Dispatcher,
		recorder:   deps.Recorder,
		logger:     logger,
		now:        time.Now,
	}
}

// ProposeSwap offers itemOfferedID (owned by initiatorID) for itemRequestedID.
// Both items are locked in-swap-process until the counterparty decides.
func (s *SwapService) ProposeSwap(ctx context.Context, initiatorID, itemOfferedID, itemRequestedID string) (*domain.SwapDetail, error) {
	problems := fieldErrors{}
	initiatorID, err := parseID("initiatorId", initiatorID)
	if err != nil {
		problems.add("initiatorId", "must be a UUID")
	}
	itemOfferedID, err = parseID("itemOfferedId", itemOfferedID)
	if err != nil {
		problems.add("itemOfferedId", "must be a UUID")
	}
	itemRequestedID, err = parseID("itemRequestedId", itemRequestedID)
	if err != nil {
		problems.add("itemRequestedId", "must be a UUID")
	}
	if err := problems.err(); err != nil {
		return nil, err
	}
	if itemOfferedID == itemRequestedID {
		return nil, apperrors.NewValidationError("an item cannot be swapped for itself",
			map[string]any{"itemRequestedId": "must differ from itemOfferedId"})
	}

	offered, err := s.items.GetByID(ctx, itemOfferedID)
	if err != nil {
		return nil, notFoundOr(err, "offered item", itemOfferedID)
	}
	requested, err := s.items.GetByID(ctx, itemRequestedID)
	if err != nil {
		return nil, notFoundOr(err, "requested item", itemRequestedID)
	}

	if offered.Status != domain.ItemStatusAvailable || requested.Status != domain.ItemStatusAvailable {
		return nil, apperrors.NewConflict("both items must be available", map[string]any{
			"itemOfferedStatus":   offered.Status,
			"itemRequestedStatus": requested.Status,
		})
	}

	counterparty, err := s.users.GetByID(ctx, requested.OwnerID)
	if err != nil {
		return nil, notFoundOr(err, "owner of requested item", requested.OwnerID)
	}
	initiator, err := s.users.GetByID(ctx, initiatorID)
	if err != nil {
		return nil, notFoundOr(err, "initiator", initiatorID)
	}
	if !initiator.Owns(offered.ID) {
		return nil, apperrors.NewForbidden("offered item is not owned by the initiator")
	}
	if counterparty.ID == initiator.ID {
		return nil, apperrors.NewForbidden("cannot propose a swap for your own item")
	}

	pending, err := s.swaps.FindPendingByItems(ctx, offered.ID, requested.ID)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	for _, existing := range pending {
		if existing.InitiatorID == initiator.ID && existing.CounterpartyID == counterparty.ID &&
			existing.ItemOfferedID == offered.ID && existing.ItemRequestedID == requested.ID {
			return nil, apperrors.NewConflict("identical swap already pending", map[string]any{"swapId": existing.ID})
		}
	}
	if len(pending) > 0 {
		return nil, apperrors.NewConflict("item already in a pending swap", map[string]any{"swapId": pending[0].ID})
	}

	swap := &domain.Swap{
		InitiatorID:     initiator.ID,
		CounterpartyID:  counterparty.ID,
		ItemOfferedID:   offered.ID,
		ItemRequestedID: requested.ID,
	}
	if err := s.swaps.CreatePending(ctx, swap); err != nil {
		if errors.Is(err, repository.ErrStatusConflict) || errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewConflict("item was locked by another swap", nil)
		}
		return nil, apperrors.NewInternalError(err)
	}

	for _, id := range []string{offered.ID, requested.ID} {
		recordStatusChange(ctx, s.history, s.logger, id, domain.ItemStatusAvailable, domain.ItemStatusInSwapProcess, &initiator.ID, "swap_proposed:"+swap.ID)
	}
	s.transitioned(ctx, events.EventSwapProposed, swap, &initiator.ID)

	offered.Status = domain.ItemStatusInSwapProcess
	requested.Status = domain.ItemStatusInSwapProcess
	return &domain.SwapDetail{
		Swap:          *swap,
		ItemOffered:   offered,
		ItemRequested: requested,
		Initiator:     initiator,
		Counterparty:  counterparty,
	}, nil
}

// DecideSwap lets the counterparty accept or reject a pending swap.
func (s *SwapService) DecideSwap(ctx context.Context, swapID, deciderID, decision string) (*domain.SwapDetail, error) {
	swapID, err := parseID("swapId", swapID)
	if err != nil {
		return nil, err
	}
	status := domain.SwapStatus(strings.TrimSpace(decision))
	if status != domain.SwapStatusAccepted && status != domain.SwapStatusRejected {
		return nil, apperrors.NewValidationError("invalid decision", map[string]any{"status": "must be accepted or rejected"})
	}

	swap, err := s.swaps.GetByID(ctx, swapID)
	if err != nil {
		return nil, notFoundOr(err, "swap", swapID)
	}
	if deciderID != swap.CounterpartyID {
		return nil, apperrors.NewForbidden("only the counterparty may decide this swap")
	}
	if swap.Status != domain.SwapStatusPending {
		return nil, apperrors.NewConflict("swap already decided", map[string]any{"status": swap.Status})
	}

	settled, err := s.swaps.Settle(ctx, swapID, status)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrStatusConflict):
			return nil, apperrors.NewConflict("swap already decided", nil)
		default:
			return nil, notFoundOr(err, "swap", swapID)
		}
	}

	s.afterSettle(ctx, settled, &deciderID, events.EventSwapDecided)
	return s.populate(ctx, *settled, map[string]*domain.Item{}, map[string]*domain.User{})
}

// GetSwap returns one swap; only its parties and admins may read it.
func (s *SwapService) GetSwap(ctx context.Context, swapID string, viewer *domain.User) (*domain.SwapDetail, error) {
	swapID, err := parseID("swapId", swapID)
	if err != nil {
		return nil, err
	}
	swap, err := s.swaps.GetByID(ctx, swapID)
	if err != nil {
		return nil, notFoundOr(err, "swap", swapID)
	}
	if viewer == nil || (!viewer.IsAdmin() && viewer.ID != swap.InitiatorID && viewer.ID != swap.CounterpartyID) {
		return nil, apperrors.NewForbidden("not a party to this swap")
	}
	return s.populate(ctx, *swap, map[string]*domain.Item{}, map[string]*domain.User{})
}

// ListSwapsForUser returns the user's swaps newest first, populated for display.
func (s *SwapService) ListSwapsForUser(ctx context.Context, userID, direction string) ([]domain.SwapDetail, error) {
	userID, err := parseID("userId", userID)
	if err != nil {
		return nil, err
	}
	dir := domain.SwapDirection(strings.TrimSpace(direction))
	switch dir {
	case "":
		dir = domain.SwapDirectionBoth
	case domain.SwapDirectionInitiated, domain.SwapDirectionReceived, domain.SwapDirectionBoth:
	default:
		return nil, apperrors.NewValidationError("invalid type", map[string]any{"type": "must be initiated, received or both"})
	}

	swaps, err := s.swaps.ListForUser(ctx, userID, dir)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	itemCache := map[string]*domain.Item{}
	userCache := map[string]*domain.User{}
	result := make([]domain.SwapDetail, 0, len(swaps))
	for _, swap := range swaps {
		detail, err := s.populate(ctx, swap, itemCache, userCache)
		if err != nil {
			return nil, err
		}
		result = append(result, *detail)
	}
	return result, nil
}

// ExpireStale moves swaps pending longer than olderThan to expired and
// releases their items. It returns how many swaps were expired.
func (s *SwapService) ExpireStale(ctx context.Context, olderThan time.Duration) (int, error) {
	if olderThan <= 0 {
		return 0, nil
	}
	cutoff := s.now().Add(-olderThan)
	expired := 0
	for {
		batch, err := s.swaps.ListPendingBefore(ctx, cutoff, expiryBatchSize)
		if err != nil {
			return expired, fmt.Errorf("list stale swaps: %w", err)
		}
		progressed := 0
		for _, swap := range batch {
			settled, err := s.swaps.Settle(ctx, swap.ID, domain.SwapStatusExpired)
			if errors.Is(err, repository.ErrStatusConflict) || errors.Is(err, repository.ErrNotFound) {
				continue
			}
			if err != nil {
				return expired, fmt.Errorf("expire swap %s: %w", swap.ID, err)
			}
			s.afterSettle(ctx, settled, nil, events.EventSwapExpired)
			progressed++
		}
		expired += progressed
		if len(batch) < expiryBatchSize || progressed == 0 {
			return expired, nil
		}
	}
}

func (s *SwapService) afterSettle(ctx context.Context, swap *domain.Swap, actorID *string, eventType events.EventType) {
	to := swap.Status.SettledItemStatus()
	for _, id := range []string{swap.ItemOfferedID, swap.ItemRequestedID} {
		recordStatusChange(ctx, s.history, s.logger, id, domain.ItemStatusInSwapProcess, to, actorID, "swap_"+string(swap.Status)+":"+swap.ID)
	}
	s.transitioned(ctx, eventType, swap, actorID)
}

func (s *SwapService) transitioned(ctx context.Context, eventType events.EventType, swap *domain.Swap, actorID *string) {
	if s.recorder != nil {
		s.recorder.RecordSwapTransition(string(swap.Status))
	}
	s.logger.Info("swap transition",
		zap.String("swap_id", swap.ID),
		zap.String("status", string(swap.Status)),
		zap.String("item_offered_id", swap.ItemOfferedID),
		zap.String("item_requested_id", swap.ItemRequestedID))
	publish(ctx, s.dispatcher, s.logger, events.Event{
		Type:    eventType,
		ActorID: actorID,
		Payload: events.NewSwapPayload(swap),
	})
}

// populate loads the items and users a swap references. Missing items are
// left nil; missing users are an internal error since users are never deleted.
func (s *SwapService) populate(ctx context.Context, swap domain.Swap, items map[string]*domain.Item, users map[string]*domain.User) (*domain.SwapDetail, error) {
	detail := &domain.SwapDetail{Swap: swap}
	var err error
	if detail.ItemOffered, err = s.cachedItem(ctx, swap.ItemOfferedID, items); err != nil {
		return nil, err
	}
	if detail.ItemRequested, err = s.cachedItem(ctx, swap.ItemRequestedID, items); err != nil {
		return nil, err
	}
	if detail.Initiator, err = s.cachedUser(ctx, swap.InitiatorID, users); err != nil {
		return nil, err
	}
	if detail.Counterparty, err = s.cachedUser(ctx, swap.CounterpartyID, users); err != nil {
		return nil, err
	}
	return detail, nil
}

func (s *SwapService) cachedItem(ctx context.Context, id string, cache map[string]*domain.Item) (*domain.Item, error) {
	if item, ok := cache[id]; ok {
		return item, nil
	}
	item, err := s.items.GetByID(ctx, id)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NewInternalError(err)
	}
	cache[id] = item
	return item, nil
}

func (s *SwapService) cachedUser(ctx context.Context, id string, cache map[string]*domain.User) (*domain.User, error) {
	if user, ok := cache[id]; ok {
		return user, nil
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.NewInternalError(fmt.Errorf("load swap party %s: %w", id, err))
	}
	cache[id] = user
	return user, nil
}
