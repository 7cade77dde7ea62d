package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/aryaseptiaw/giglink_be/internal/apperr"
	"github.com/aryaseptiaw/giglink_be/internal/middleware"
	"github.com/aryaseptiaw/giglink_be/internal/models"
)

type AdminHandler struct {
	DB *gorm.DB
}

func NewAdminHandler(db *gorm.DB) *AdminHandler {
	return &AdminHandler{DB: db}
}

// ListUsers backs the admin user directory. It sits behind the users.read
// permission check, so support staff can be granted access without the
// admin role.
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	var users []models.User
	err := h.DB.WithContext(c.Context()).
		Order("created_at DESC").
		Limit(200).
		Find(&users).Error
	if err != nil {
		return fail(c, apperr.Wrap(apperr.Infrastructure, "failed to list users", err))
	}

	out := make([]*models.AuthenticatedUser, 0, len(users))
	for i := range users {
		out = append(out, users[i].Authenticated())
	}
	return ok(c, out)
}

type GrantPermissionReq struct {
	UserID       string  `json:"user_id"`
	Permission   string  `json:"permission"`
	ResourceType *string `json:"resource_type,omitempty"`
	ResourceID   *string `json:"resource_id,omitempty"`
	Granted      *bool   `json:"granted,omitempty"`
}

func (h *AdminHandler) GrantPermission(c *fiber.Ctx) error {
	admin := middleware.CurrentUser(c)

	var req GrantPermissionReq
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return badRequest(c, "invalid user_id")
	}
	permission := strings.TrimSpace(req.Permission)
	if permission == "" {
		return badRequest(c, "permission is required")
	}

	var resourceID *uuid.UUID
	if req.ResourceID != nil {
		rid, err := uuid.Parse(*req.ResourceID)
		if err != nil {
			return badRequest(c, "invalid resource_id")
		}
		resourceID = &rid
	}
	if (req.ResourceType == nil) != (resourceID == nil) {
		return badRequest(c, "resource_type and resource_id go together")
	}

	var target models.User
	if err := h.DB.WithContext(c.Context()).First(&target, "id = ?", userID).Error; err != nil {
		return fail(c, apperr.FromDB(err, "user not found"))
	}

	granted := true
	if req.Granted != nil {
		granted = *req.Granted
	}

	perm := models.Permission{
		UserID:       userID,
		Permission:   permission,
		ResourceType: req.ResourceType,
		ResourceID:   resourceID,
		Granted:      granted,
		GrantedBy:    admin.ID,
	}
	if err := h.DB.WithContext(c.Context()).Create(&perm).Error; err != nil {
		return fail(c, apperr.Wrap(apperr.Infrastructure, "failed to grant permission", err))
	}

	return created(c, perm)
}
