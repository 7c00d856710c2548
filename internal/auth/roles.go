package auth

import (
	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/rewear-service/pkg/util"
)

// RequireAdmin ensures the caller is a moderator.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if !principal.User.IsAdmin() {
			return apperrors.NewForbidden("admin role required")
		}
		return c.Next()
	}
}
