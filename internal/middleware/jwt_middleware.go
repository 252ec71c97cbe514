package middleware

import (
	"fmt"
	"strings"

	"sprift/internal/services"

	"github.com/gofiber/fiber/v2"
)

// ClerkIDKey is the c.Locals key holding the authenticated Clerk id.
const ClerkIDKey = "clerk_id"

// AuthRequired is a Fiber middleware to check for a valid session token.
func AuthRequired(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return fmt.Errorf("%w: Authorization header is required", services.ErrUnauthenticated)
		}

		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && strings.EqualFold(parts[0], "Bearer")) {
			return fmt.Errorf("%w: Authorization header format must be 'Bearer <token>'", services.ErrUnauthenticated)
		}

		clerkID, err := authService.ValidateToken(strings.TrimSpace(parts[1]))
		if err != nil {
			return err
		}

		c.Locals(ClerkIDKey, clerkID)
		return c.Next()
	}
}

// ClerkID returns the authenticated caller, or "" outside AuthRequired.
func ClerkID(c *fiber.Ctx) string {
	id, _ := c.Locals(ClerkIDKey).(string)
	return id
}
