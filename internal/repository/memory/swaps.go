package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/spec-kit/rewear-service/internal/domain"
	"github.com/spec-kit/rewear-service/internal/repository"
)

type swapRepository struct {
	store *Store
}

func (r *swapRepository) CreatePending(_ context.Context, swap *domain.Swap) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.pendingFor(swap.ItemOfferedID, swap.ItemRequestedID)) > 0 {
		return repository.ErrStatusConflict
	}
	ids := []string{swap.ItemOfferedID, swap.ItemRequestedID}
	if err := s.setItemStatuses(ids, domain.ItemStatusAvailable, domain.ItemStatusInSwapProcess); err != nil {
		return err
	}
	swap.ID = newID()
	swap.Status = domain.SwapStatusPending
	swap.CreatedAt = s.now()
	swap.UpdatedAt = swap.CreatedAt
	swap.DecidedAt = nil
	s.swaps[swap.ID] = cloneSwap(swap)
	return nil
}

func (r *swapRepository) GetByID(_ context.Context, id string) (*domain.Swap, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	swap, ok := s.swaps[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneSwap(swap), nil
}

func (r *swapRepository) FindPendingByItems(_ context.Context, itemIDs ...string) ([]domain.Swap, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	return sortedSwaps(s.pendingFor(itemIDs...)), nil
}

func (r *swapRepository) Settle(_ context.Context, id string, status domain.SwapStatus) (*domain.Swap, error) {
	if !status.IsTerminal() {
		return nil, fmt.Errorf("settle swap %s: %q is not terminal", id, status)
	}
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	swap, ok := s.swaps[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if swap.Status != domain.SwapStatusPending {
		return nil, repository.ErrStatusConflict
	}
	ids := []string{swap.ItemOfferedID, swap.ItemRequestedID}
	if err := s.setItemStatuses(ids, domain.ItemStatusInSwapProcess, status.SettledItemStatus()); err != nil {
		return nil, err
	}
	now := s.now()
	swap.Status = status
	swap.UpdatedAt = now
	swap.DecidedAt = &now
	return cloneSwap(swap), nil
}

func (r *swapRepository) ListForUser(_ context.Context, userID string, direction domain.SwapDirection) ([]domain.Swap, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	var found []*domain.Swap
	for _, swap := range s.swaps {
		initiated := swap.InitiatorID == userID
		received := swap.CounterpartyID == userID
		switch direction {
		case domain.SwapDirectionInitiated:
			if initiated {
				found = append(found, swap)
			}
		case domain.SwapDirectionReceived:
			if received {
				found = append(found, swap)
			}
		default:
			if initiated || received {
				found = append(found, swap)
			}
		}
	}
	return sortedSwaps(found), nil
}

func (r *swapRepository) ListPendingBefore(_ context.Context, cutoff time.Time, limit int) ([]domain.Swap, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 {
		limit = repository.DefaultListLimit
	}
	var found []*domain.Swap
	for _, swap := range s.swaps {
		if swap.Status == domain.SwapStatusPending && swap.CreatedAt.Before(cutoff) {
			found = append(found, swap)
		}
	}
	sort.Slice(found, func(i, j int) bool {
		if found[i].CreatedAt.Equal(found[j].CreatedAt) {
			return found[i].ID < found[j].ID
		}
		return found[i].CreatedAt.Before(found[j].CreatedAt)
	})
	if len(found) > limit {
		found = found[:limit]
	}
	result := make([]domain.Swap, len(found))
	for i, swap := range found {
		result[i] = *cloneSwap(swap)
	}
	return result, nil
}

// pendingFor returns pending swaps naming any of itemIDs. Caller holds s.mu.
func (s *Store) pendingFor(itemIDs ...string) []*domain.Swap {
	var found []*domain.Swap
	for _, swap := range s.swaps {
		if swap.Status != domain.SwapStatusPending {
			continue
		}
		for _, id := range itemIDs {
			if swap.References(id) {
				found = append(found, swap)
				break
			}
		}
	}
	return found
}

func sortedSwaps(found []*domain.Swap) []domain.Swap {
	sort.Slice(found, func(i, j int) bool {
		return newestFirst(found[i].CreatedAt, found[j].CreatedAt, found[i].ID, found[j].ID)
	})
	result := make([]domain.Swap, len(found))
	for i, swap := range found {
		result[i] = *cloneSwap(swap)
	}
	return result
}
