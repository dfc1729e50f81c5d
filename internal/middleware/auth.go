package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/example/tastetab/internal/models"
	"github.com/example/tastetab/internal/utils"
)

const claimsContextKey = "sessionClaims"

// RequireRole validates the bearer token and admits the request only when the
// token's role is one of roles. A missing token is 401, a token that fails
// verification is 400 and a token with the wrong role is 403.
func RequireRole(secret string, roles ...models.Role) fiber.Handler {
	allowed := make(map[models.Role]bool, len(roles))
	names := make([]string, 0, len(roles))
	for _, role := range roles {
		allowed[role] = true
		names = append(names, string(role))
	}
	forbidden := "Access denied: " + strings.Join(names, " or ") + " only"

	return func(c *fiber.Ctx) error {
		token := bearerToken(c.Get(fiber.HeaderAuthorization))
		if token == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "Access denied: no token provided")
		}

		claims, err := utils.ParseToken(secret, token)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error":   "Invalid token",
				"details": err.Error(),
			})
		}

		if !allowed[claims.Role] {
			return fiber.NewError(fiber.StatusForbidden, forbidden)
		}

		c.Locals(claimsContextKey, claims)
		return c.Next()
	}
}

// GetClaims returns the session claims stored by RequireRole.
func GetClaims(c *fiber.Ctx) (*utils.Claims, bool) {
	claims, ok := c.Locals(claimsContextKey).(*utils.Claims)
	return claims, ok && claims != nil
}

func bearerToken(header string) string {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
