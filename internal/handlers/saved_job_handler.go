package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/aryaseptiaw/giglink_be/internal/apperr"
	"github.com/aryaseptiaw/giglink_be/internal/middleware"
	"github.com/aryaseptiaw/giglink_be/internal/models"
)

type SavedJobHandler struct {
	DB *gorm.DB
}

func NewSavedJobHandler(db *gorm.DB) *SavedJobHandler {
	return &SavedJobHandler{DB: db}
}

type SaveJobReq struct {
	JobID string `json:"job_id"`
}

func (h *SavedJobHandler) Save(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	var req SaveJobReq
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	jobID, err := uuid.Parse(req.JobID)
	if err != nil {
		return badRequest(c, "invalid job_id")
	}

	var job models.Job
	if err := h.DB.WithContext(c.Context()).First(&job, "id = ?", jobID).Error; err != nil {
		return fail(c, apperr.FromDB(err, "job not found"))
	}

	saved := models.SavedJob{UserID: user.ID, JobID: jobID}
	if err := h.DB.WithContext(c.Context()).Create(&saved).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fail(c, apperr.New(apperr.Conflict, "job is already saved"))
		}
		return fail(c, apperr.Wrap(apperr.Infrastructure, "failed to save job", err))
	}
	return created(c, saved)
}

func (h *SavedJobHandler) List(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	var out []models.SavedJob
	err := h.DB.WithContext(c.Context()).
		Preload("Job").
		Where("user_id = ?", user.ID).
		Order("created_at DESC").
		Find(&out).Error
	if err != nil {
		return fail(c, apperr.Wrap(apperr.Infrastructure, "failed to list saved jobs", err))
	}
	return ok(c, out)
}

// Delete is idempotent: removing a job that was never saved still succeeds.
func (h *SavedJobHandler) Delete(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	jobID, err := uuid.Parse(c.Params("jobId"))
	if err != nil {
		return badRequest(c, "invalid job ID")
	}

	err = h.DB.WithContext(c.Context()).
		Where("user_id = ? AND job_id = ?", user.ID, jobID).
		Delete(&models.SavedJob{}).Error
	if err != nil {
		return fail(c, apperr.Wrap(apperr.Infrastructure, "failed to remove saved job", err))
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "saved job removed",
	})
}
