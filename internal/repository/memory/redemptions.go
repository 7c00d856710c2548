package memory

import (
	"context"
	"sort"

	"github.com/spec-kit/rewear-service/internal/domain"
	"github.com/spec-kit/rewear-service/internal/repository"
)

type redemptionRepository struct {
	store *Store
}

func (r *redemptionRepository) Redeem(_ context.Context, redemption *domain.Redemption) (*domain.User, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[redemption.ItemID]
	if !ok || item.Status != domain.ItemStatusAvailable {
		return nil, repository.ErrStatusConflict
	}
	seller, ok := s.users[redemption.SellerID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	buyer, ok := s.users[redemption.BuyerID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if buyer.Points < redemption.Cost {
		return nil, repository.ErrInsufficientBalance
	}

	now := s.now()
	item.Status = domain.ItemStatusRedeemed
	item.UpdatedAt = now
	buyer.Points -= redemption.Cost
	buyer.UpdatedAt = now
	seller.Points += redemption.Cost
	seller.UpdatedAt = now

	redemption.ID = newID()
	redemption.CreatedAt = now
	s.redemptions = append(s.redemptions, *redemption)
	return s.userCopy(buyer), nil
}

func (r *redemptionRepository) ListByUser(_ context.Context, userID string) ([]domain.Redemption, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []domain.Redemption
	for _, redemption := range s.redemptions {
		if redemption.BuyerID == userID || redemption.SellerID == userID {
			result = append(result, redemption)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return newestFirst(result[i].CreatedAt, result[j].CreatedAt, result[i].ID, result[j].ID)
	})
	return result, nil
}

type historyRepository struct {
	store *Store
}

func (r *historyRepository) Create(_ context.Context, change *domain.ItemStatusChange) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	change.ID = newID()
	change.CreatedAt = s.now()
	s.history = append(s.history, *change)
	return nil
}

func (r *historyRepository) ListByItem(_ context.Context, itemID string) ([]domain.ItemStatusChange, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []domain.ItemStatusChange
	for _, change := range s.history {
		if change.ItemID == itemID {
			result = append(result, change)
		}
	}
	return result, nil
}
