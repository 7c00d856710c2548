package handlers

import (
	"crypto/subtle"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/rewear-service/internal/api/dto"
	"github.com/spec-kit/rewear-service/internal/service"
	apperrors "github.com/spec-kit/rewear-service/pkg/util"
)

// IdentitySecretHeader carries the shared secret of the identity provider.
const IdentitySecretHeader = "X-Identity-Secret"

// AuthHandler exposes registration and login endpoints.
type AuthHandler struct {
	auth           *service.AuthService
	externalSecret string
}

// NewAuthHandler constructs handler. An empty externalSecret disables
// POST /auth/external.
func NewAuthHandler(authService *service.AuthService, externalSecret string) *AuthHandler {
	return &AuthHandler{auth: authService, externalSecret: externalSecret}
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.UserRegisterRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	session, err := h.auth.Register(c.UserContext(), req.Name, req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(sessionBody(session))
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.UserLoginRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("email and password required", nil)
	}
	session, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(sessionBody(session))
}

// External handles POST /auth/external, called by the identity provider
// after it has verified the user.
func (h *AuthHandler) External(c *fiber.Ctx) error {
	if h.externalSecret == "" {
		return apperrors.NewForbidden("external sign-in is disabled")
	}
	given := c.Get(IdentitySecretHeader)
	if subtle.ConstantTimeCompare([]byte(given), []byte(h.externalSecret)) != 1 {
		return apperrors.NewUnauthorized("invalid identity secret")
	}

	var req dto.ExternalLoginRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	session, created, err := h.auth.LoginExternal(c.UserContext(), service.ExternalIdentity{
		Email:         req.Email,
		DisplayName:   req.DisplayName,
		AvatarURL:     req.AvatarURL,
		RequestedRole: req.Role,
	})
	if err != nil {
		return err
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	body := sessionBody(session)
	body["created"] = created
	return c.Status(status).JSON(body)
}

func sessionBody(session *service.Session) fiber.Map {
	return fiber.Map{
		"success": true,
		"user":    userResponse(session.User),
		"auth":    dto.AuthResponse{Token: session.AccessToken, ExpiresAt: session.Token.ExpiresAt},
	}
}
