package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/civic-track/internal/domain"
	apperrors "github.com/spec-kit/civic-track/pkg/util"
)

// Predicate decides whether a resolved principal may proceed. It is evaluated
// against the loaded user before any core operation executes, independent of
// transport framing.
type Predicate func(user *domain.User) error

// HasRole passes only callers holding the given role.
func HasRole(role domain.Role) Predicate {
	return func(user *domain.User) error {
		if user == nil {
			return apperrors.NewUnauthenticated("authentication required")
		}
		if user.Role != role {
			return apperrors.NewForbidden("insufficient role")
		}
		return nil
	}
}

// Require adapts a predicate into route middleware. It assumes
// AuthMiddleware.Handle already ran on the chain.
func Require(predicate Predicate) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthenticated("authentication required")
		}
		if err := predicate(user); err != nil {
			return err
		}
		return c.Next()
	}
}

// RequireAdmin gates administrator-only routes.
func RequireAdmin() fiber.Handler {
	return Require(HasRole(domain.RoleAdmin))
}
