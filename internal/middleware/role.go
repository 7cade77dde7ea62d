package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// RequireRoles fails closed: no identity means 401, an identity outside the
// allowed set means 403.
func RequireRoles(allowed ...string) fiber.Handler {
	allowedSet := map[string]bool{}
	for _, r := range allowed {
		allowedSet[strings.ToLower(r)] = true
	}

	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		if user == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"message": "authentication required",
			})
		}

		if !allowedSet[strings.ToLower(string(user.Role))] {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"success": false,
				"message": "forbidden: insufficient role",
			})
		}

		return c.Next()
	}
}
