package middleware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"stockhive/internal/apperrors"
	"stockhive/internal/models"
)

const principalKey = "principal"

// Authenticator resolves a bearer token to the account it was issued for.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (models.Principal, error)
}

// AuthRequired is a Fiber middleware that requires a valid "Authorization: Bearer <token>" header.
// Failures are returned as apperrors.ErrUnauthenticated and rendered by the app's error handler.
func AuthRequired(auth Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := bearerToken(c.Get(fiber.HeaderAuthorization))
		if !ok {
			return apperrors.ErrUnauthenticated
		}

		principal, err := auth.Authenticate(c.UserContext(), token)
		if err != nil {
			return err
		}

		// Store the principal in Fiber context for subsequent handlers
		c.Locals(principalKey, principal)
		return c.Next()
	}
}

// PrincipalFrom returns the principal stored by AuthRequired.
func PrincipalFrom(c *fiber.Ctx) (models.Principal, bool) {
	principal, ok := c.Locals(principalKey).(models.Principal)
	return principal, ok
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}
