// Package memory provides mutex-guarded repository implementations used by
// tests and by the server when no Postgres DSN is configured.
package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/rewear-service/internal/domain"
	"github.com/spec-kit/rewear-service/internal/repository"
)

// Store holds every table behind one mutex, so multi-record writes are atomic
// the same way a single Postgres transaction is.
type Store struct {
	mu          sync.Mutex
	now         func() time.Time
	users       map[string]*domain.User
	emails      map[string]string
	items       map[string]*domain.Item
	swaps       map[string]*domain.Swap
	redemptions []domain.Redemption
	history     []domain.ItemStatusChange
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		now:    time.Now,
		users:  map[string]*domain.User{},
		emails: map[string]string{},
		items:  map[string]*domain.Item{},
		swaps:  map[string]*domain.Swap{},
	}
}

// SetClock overrides the timestamp source.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *Store) Items() repository.ItemRepository {
	return &itemRepository{store: s}
}

func (s *Store) Users() repository.UserRepository {
	return &userRepository{store: s}
}

func (s *Store) Swaps() repository.SwapRepository {
	return &swapRepository{store: s}
}

func (s *Store) Redemptions() repository.RedemptionRepository {
	return &redemptionRepository{store: s}
}

func (s *Store) History() repository.ItemHistoryRepository {
	return &historyRepository{store: s}
}

func newID() string {
	return uuid.NewString()
}

// setItemStatuses mirrors the Postgres helper: all ids must currently be in
// `from` or nothing changes. Caller holds s.mu.
func (s *Store) setItemStatuses(ids []string, from, to domain.ItemStatus) error {
	for _, id := range ids {
		item, ok := s.items[id]
		if !ok || item.Status != from {
			return repository.ErrStatusConflict
		}
	}
	now := s.now()
	for _, id := range ids {
		s.items[id].Status = to
		s.items[id].UpdatedAt = now
	}
	return nil
}

// ownedItemIDs returns the derived items set of a user. Caller holds s.mu.
func (s *Store) ownedItemIDs(userID string) []string {
	owned := make([]*domain.Item, 0)
	for _, item := range s.items {
		if item.OwnerID == userID {
			owned = append(owned, item)
		}
	}
	sort.Slice(owned, func(i, j int) bool {
		if owned[i].CreatedAt.Equal(owned[j].CreatedAt) {
			return owned[i].ID < owned[j].ID
		}
		return owned[i].CreatedAt.Before(owned[j].CreatedAt)
	})
	ids := make([]string, len(owned))
	for i, item := range owned {
		ids[i] = item.ID
	}
	return ids
}

// userCopy returns a detached user with its items set filled in. Caller holds s.mu.
func (s *Store) userCopy(user *domain.User) *domain.User {
	out := *user
	out.Items = s.ownedItemIDs(user.ID)
	return &out
}

func cloneItem(item *domain.Item) *domain.Item {
	out := *item
	out.Images = append([]string(nil), item.Images...)
	out.Tags = append([]string(nil), item.Tags...)
	if item.Size != nil {
		size := *item.Size
		out.Size = &size
	}
	return &out
}

func cloneSwap(swap *domain.Swap) *domain.Swap {
	out := *swap
	if swap.DecidedAt != nil {
		decided := *swap.DecidedAt
		out.DecidedAt = &decided
	}
	return &out
}

// newestFirst orders by creation time descending with id ascending as tie-break.
func newestFirst(a, b time.Time, aID, bID string) bool {
	if a.Equal(b) {
		return aID < bID
	}
	return a.After(b)
}
