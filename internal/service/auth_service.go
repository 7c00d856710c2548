package service

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/spec-kit/rewear-service/internal/auth"
	"github.com/spec-kit/rewear-service/internal/config"
	"github.com/spec-kit/rewear-service/internal/domain"
	"github.com/spec-kit/rewear-service/internal/repository"
	apperrors "github.com/spec-kit/rewear-service/pkg/util"
)

// Session is a signed bearer token plus its metadata.
type Session struct {
	User        *domain.User
	AccessToken string
	Token       domain.Token
}

// AuthService coordinates registration and login flows.
type AuthService struct {
	users      repository.UserRepository
	members    *MembershipService
	tokenMgr   *auth.TokenManager
	bcryptCost int
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, users repository.UserRepository, members *MembershipService) *AuthService {
	return &AuthService{
		users:      users,
		members:    members,
		tokenMgr:   auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTLMinutes),
		bcryptCost: cfg.BcryptCost,
	}
}

// Register creates a customer account with a password.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*Session, error) {
	problems := fieldErrors{}
	name = strings.TrimSpace(name)
	if name == "" {
		problems.add("name", "required")
	} else if utf8.RuneCountInString(name) > 100 {
		problems.add("name", "must be at most 100 characters")
	}
	normalized, err := normalizeEmail(email)
	if err != nil {
		problems.add("email", "must be a valid address")
	}
	if utf8.RuneCountInString(password) < auth.MinPasswordLength {
		problems.add("password", "must be at least 8 characters")
	}
	if err := problems.err(); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	user := &domain.User{
		Name:         name,
		Email:        normalized,
		PasswordHash: hash,
		UserType:     domain.UserTypeCustomer,
		Points:       domain.DefaultPoints,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewConflict("email already registered", map[string]any{"email": normalized})
		}
		return nil, apperrors.NewInternalError(err)
	}
	return s.issue(user)
}

// Login authenticates by email and password.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, apperrors.NewInternalError(err)
	}
	if user.PasswordHash == "" || auth.ComparePassword(user.PasswordHash, password) != nil {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}
	return s.issue(user)
}

// LoginExternal signs in a user vouched for by the identity provider.
func (s *AuthService) LoginExternal(ctx context.Context, identity ExternalIdentity) (*Session, bool, error) {
	user, created, err := s.members.FindOrCreateFromExternalIdentity(ctx, identity)
	if err != nil {
		return nil, false, err
	}
	session, err := s.issue(user)
	return session, created, err
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func (s *AuthService) issue(user *domain.User) (*Session, error) {
	signed, meta, err := s.tokenMgr.GenerateToken(user)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &Session{User: user, AccessToken: signed, Token: meta}, nil
}
