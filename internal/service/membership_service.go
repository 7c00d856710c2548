package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/spec-kit/rewear-service/internal/domain"
	"github.com/spec-kit/rewear-service/internal/repository"
	apperrors "github.com/spec-kit/rewear-service/pkg/util"
)

// MembershipService manages user records and point balances.
type MembershipService struct {
	users  repository.UserRepository
	items  repository.ItemRepository
	logger *zap.Logger
}

// NewMembershipService constructs the service.
func NewMembershipService(users repository.UserRepository, items repository.ItemRepository, logger *zap.Logger) *MembershipService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MembershipService{users: users, items: items, logger: logger}
}

// ExternalIdentity is what an identity provider tells us about a user.
type ExternalIdentity struct {
	Email         string
	DisplayName   string
	AvatarURL     *string
	RequestedRole string
}

// FindOrCreateFromExternalIdentity returns the user for identity.Email,
// creating it with the requested role when absent. An existing user's role
// never changes here.
func (s *MembershipService) FindOrCreateFromExternalIdentity(ctx context.Context, identity ExternalIdentity) (*domain.User, bool, error) {
	email, err := normalizeEmail(identity.Email)
	if err != nil {
		return nil, false, err
	}
	role := domain.UserType(strings.TrimSpace(identity.RequestedRole))
	if role == "" {
		role = domain.UserTypeCustomer
	}
	if !role.Valid() {
		return nil, false, apperrors.NewValidationError("invalid role", map[string]any{"role": "must be customer or admin"})
	}

	existing, err := s.users.GetByEmail(ctx, email)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, false, apperrors.NewInternalError(err)
	}

	name := strings.TrimSpace(identity.DisplayName)
	if name == "" {
		name = strings.SplitN(email, "@", 2)[0]
	}
	user := &domain.User{
		Name:      truncateRunes(name, 100),
		Email:     email,
		AvatarURL: identity.AvatarURL,
		UserType:  role,
		Points:    domain.DefaultPoints,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			// Lost a race with a concurrent first login for the same email.
			existing, getErr := s.users.GetByEmail(ctx, email)
			if getErr != nil {
				return nil, false, apperrors.NewInternalError(getErr)
			}
			return existing, false, nil
		}
		return nil, false, apperrors.NewInternalError(err)
	}
	s.logger.Info("user created from external identity", zap.String("user_id", user.ID), zap.String("role", string(role)))
	return user, true, nil
}

// GetProfile loads a user.
func (s *MembershipService) GetProfile(ctx context.Context, userID string) (*domain.User, error) {
	userID, err := parseID("userId", userID)
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, notFoundOr(err, "user", userID)
	}
	return user, nil
}

// GetOwnedItems lists a user's items, optionally restricted to one status.
func (s *MembershipService) GetOwnedItems(ctx context.Context, userID string, status *domain.ItemStatus) ([]domain.Item, error) {
	userID, err := parseID("userId", userID)
	if err != nil {
		return nil, err
	}
	if status != nil && !status.Valid() {
		return nil, apperrors.NewValidationError("invalid status", map[string]any{"status": "unknown item status"})
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, notFoundOr(err, "user", userID)
	}

	filter := repository.ItemFilter{OwnerID: &userID, Limit: repository.MaxListLimit}
	if status != nil {
		filter.Statuses = []domain.ItemStatus{*status}
	}
	items, err := s.items.List(ctx, filter)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return nonNil(items), nil
}

// AdjustPoints adds delta to the user's balance; the balance never goes negative.
func (s *MembershipService) AdjustPoints(ctx context.Context, userID string, delta int) (*domain.User, error) {
	userID, err := parseID("userId", userID)
	if err != nil {
		return nil, err
	}
	user, err := s.users.AdjustPoints(ctx, userID, delta)
	if err == nil {
		return user, nil
	}
	switch {
	case errors.Is(err, repository.ErrInsufficientBalance):
		balance := 0
		if current, getErr := s.users.GetByID(ctx, userID); getErr == nil {
			balance = current.Points
		}
		return nil, apperrors.NewInsufficientBalance(balance, -delta)
	default:
		return nil, notFoundOr(err, "user", userID)
	}
}

func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", apperrors.NewValidationError("email is required", map[string]any{"email": "required"})
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", apperrors.NewValidationError("invalid email", map[string]any{"email": "must be a valid address"})
	}
	return email, nil
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
