package memory

import (
	"context"
	"strings"

	"github.com/spec-kit/rewear-service/internal/domain"
	"github.com/spec-kit/rewear-service/internal/repository"
)

type userRepository struct {
	store *Store
}

func (r *userRepository) Create(_ context.Context, user *domain.User) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	email := strings.ToLower(strings.TrimSpace(user.Email))
	if _, taken := s.emails[email]; taken {
		return repository.ErrDuplicate
	}
	user.ID = newID()
	user.Email = email
	user.CreatedAt = s.now()
	user.UpdatedAt = user.CreatedAt
	user.Items = []string{}

	stored := *user
	s.users[user.ID] = &stored
	s.emails[email] = user.ID
	return nil
}

func (r *userRepository) GetByID(_ context.Context, id string) (*domain.User, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return s.userCopy(user), nil
}

func (r *userRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.emails[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return s.userCopy(s.users[id]), nil
}

func (r *userRepository) AdjustPoints(_ context.Context, id string, delta int) (*domain.User, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.adjustPoints(id, delta); err != nil {
		return nil, err
	}
	return s.userCopy(s.users[id]), nil
}

// adjustPoints applies delta. Caller holds s.mu.
func (s *Store) adjustPoints(id string, delta int) error {
	user, ok := s.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	if user.Points+delta < 0 {
		return repository.ErrInsufficientBalance
	}
	user.Points += delta
	user.UpdatedAt = s.now()
	return nil
}
