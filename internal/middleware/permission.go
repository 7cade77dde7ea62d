package middleware

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/aryaseptiaw/giglink_be/internal/models"
)

// RequirePermission allows admins through unconditionally; anyone else needs
// a granted permission row. When the route carries a :id param and a
// resourceType is given, the row must either be unscoped or match that exact
// resource.
func RequirePermission(db *gorm.DB, permission, resourceType string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		if user == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"message": "authentication required",
			})
		}

		if user.Role == models.RoleAdmin {
			return c.Next()
		}

		q := db.WithContext(c.Context()).
			Model(&models.Permission{}).
			Where("user_id = ? AND permission = ? AND granted = true", user.ID, permission)

		if resourceType != "" {
			if resourceID, err := uuid.Parse(c.Params("id")); err == nil {
				q = q.Where("resource_type IS NULL OR (resource_type = ? AND resource_id = ?)", resourceType, resourceID)
			} else {
				q = q.Where("resource_type IS NULL")
			}
		}

		var count int64
		if err := q.Count(&count).Error; err != nil {
			log.Println("permission lookup failed:", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"message": "internal server error",
			})
		}

		if count == 0 {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"success": false,
				"message": "forbidden: missing permission " + permission,
			})
		}

		return c.Next()
	}
}
