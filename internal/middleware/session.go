package middleware

import (
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/aryaseptiaw/giglink_be/internal/auth"
	"github.com/aryaseptiaw/giglink_be/internal/models"
)

// SessionCookie is the name of the browser session cookie.
const SessionCookie = "gl_session"

const localsUserKey = "authUser"

// TokenFromRequest extracts the session token: cookie first (browser flows),
// then Authorization: Bearer.
func TokenFromRequest(c *fiber.Ctx) string {
	if token := c.Cookies(SessionCookie); token != "" {
		return token
	}
	header := c.Get("Authorization")
	if header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	return ""
}

// Session resolves the request's token through the session store and places
// the canonical identity in Locals. Missing, expired and revoked tokens all
// fail with 401; only store failures become 500.
func Session(store *auth.SessionStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := TokenFromRequest(c)
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"message": "authentication required",
			})
		}

		user, _, err := store.Validate(c.Context(), token)
		if err != nil {
			log.Println("session validation failed:", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"message": "internal server error",
			})
		}
		if user == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"message": "invalid or expired session",
			})
		}

		c.Locals(localsUserKey, user)
		c.Locals("userId", user.ID.String())
		c.Locals("role", string(user.Role))
		return c.Next()
	}
}

// CurrentUser returns the identity placed by Session, or nil on routes that
// never passed through it.
func CurrentUser(c *fiber.Ctx) *models.AuthenticatedUser {
	user, _ := c.Locals(localsUserKey).(*models.AuthenticatedUser)
	return user
}
