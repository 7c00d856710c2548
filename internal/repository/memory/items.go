package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/spec-kit/rewear-service/internal/domain"
	"github.com/spec-kit/rewear-service/internal/repository"
)

type itemRepository struct {
	store *Store
}

func (r *itemRepository) Create(_ context.Context, item *domain.Item) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[item.OwnerID]; !ok {
		return repository.ErrNotFound
	}
	item.ID = newID()
	item.CreatedAt = s.now()
	item.UpdatedAt = item.CreatedAt
	s.items[item.ID] = cloneItem(item)
	return nil
}

func (r *itemRepository) GetByID(_ context.Context, id string) (*domain.Item, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneItem(item), nil
}

func (r *itemRepository) List(_ context.Context, filter repository.ItemFilter) ([]domain.Item, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	matched := make([]*domain.Item, 0)
	for _, item := range s.items {
		if matches(item, filter) {
			matched = append(matched, item)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return newestFirst(matched[i].CreatedAt, matched[j].CreatedAt, matched[i].ID, matched[j].ID)
	})
	if limit := filter.EffectiveLimit(); len(matched) > limit {
		matched = matched[:limit]
	}
	result := make([]domain.Item, len(matched))
	for i, item := range matched {
		result[i] = *cloneItem(item)
	}
	return result, nil
}

func (r *itemRepository) TransitionStatus(_ context.Context, id string, from []domain.ItemStatus, to domain.ItemStatus) (*domain.Item, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	allowed := false
	for _, status := range from {
		if item.Status == status {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, repository.ErrStatusConflict
	}
	item.Status = to
	item.UpdatedAt = s.now()
	return cloneItem(item), nil
}

func (r *itemRepository) Delete(_ context.Context, id string) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[id]
	if !ok {
		return repository.ErrNotFound
	}
	if item.Status == domain.ItemStatusInSwapProcess {
		return repository.ErrStatusConflict
	}
	delete(s.items, id)
	return nil
}

func matches(item *domain.Item, filter repository.ItemFilter) bool {
	if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, item.Status) {
		return false
	}
	if filter.OwnerID != nil && item.OwnerID != *filter.OwnerID {
		return false
	}
	if filter.Category != nil && item.Category != *filter.Category {
		return false
	}
	if filter.Condition != nil && item.Condition != *filter.Condition {
		return false
	}
	if len(filter.Tags) > 0 && !sharesTag(item.Tags, filter.Tags) {
		return false
	}
	if filter.MinCost != nil && item.Cost < *filter.MinCost {
		return false
	}
	if filter.MaxCost != nil && item.Cost > *filter.MaxCost {
		return false
	}
	if filter.SearchTerm != nil {
		if term := strings.ToLower(strings.TrimSpace(*filter.SearchTerm)); term != "" && !mentions(item, term) {
			return false
		}
	}
	return true
}

func containsStatus(statuses []domain.ItemStatus, status domain.ItemStatus) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}

func sharesTag(itemTags, wanted []string) bool {
	for _, want := range wanted {
		for _, tag := range itemTags {
			if tag == want {
				return true
			}
		}
	}
	return false
}

func mentions(item *domain.Item, term string) bool {
	if strings.Contains(strings.ToLower(item.Name), term) || strings.Contains(strings.ToLower(item.Description), term) {
		return true
	}
	for _, tag := range item.Tags {
		if strings.Contains(strings.ToLower(tag), term) {
			return true
		}
	}
	return false
}
