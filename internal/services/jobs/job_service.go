// Package jobs owns job records and their active/closed status.
package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/aryaseptiaw/giglink_be/internal/apperr"
	"github.com/aryaseptiaw/giglink_be/internal/authz"
	"github.com/aryaseptiaw/giglink_be/internal/db"
	"github.com/aryaseptiaw/giglink_be/internal/models"
)

type Service struct {
	DB *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{DB: db}
}

type CreateInput struct {
	Title       string
	Description string
	Category    string
	BudgetType  string
	BudgetMin   int64
	BudgetMax   int64
	Duration    string
	Skills      []string
}

func (s *Service) Create(ctx context.Context, clientID uuid.UUID, in CreateInput) (*models.Job, error) {
	title := strings.TrimSpace(in.Title)
	description := strings.TrimSpace(in.Description)
	category := strings.TrimSpace(in.Category)

	if title == "" {
		return nil, apperr.New(apperr.Validation, "title is required")
	}
	if description == "" {
		return nil, apperr.New(apperr.Validation, "description is required")
	}
	if category == "" {
		return nil, apperr.New(apperr.Validation, "category is required")
	}

	budgetType := models.BudgetType(in.BudgetType)
	switch budgetType {
	case models.BudgetTypeFixed, models.BudgetTypeHourly:
	case "":
		budgetType = models.BudgetTypeFixed
	default:
		return nil, apperr.New(apperr.Validation, "budget_type must be fixed or hourly")
	}

	var skills datatypes.JSON
	if len(in.Skills) > 0 {
		raw, err := json.Marshal(in.Skills)
		if err != nil {
			return nil, apperr.Wrap(apperr.Validation, "invalid skills", err)
		}
		skills = raw
	}

	job := models.Job{
		ClientID:      clientID,
		Title:         title,
		Description:   description,
		Category:      category,
		BudgetType:    budgetType,
		BudgetMin:     in.BudgetMin,
		BudgetMax:     in.BudgetMax,
		Duration:      strings.TrimSpace(in.Duration),
		Skills:        skills,
		Status:        models.JobStatusActive,
		ProposalCount: 0,
	}

	if err := s.DB.WithContext(ctx).Create(&job).Error; err != nil {
		return nil, apperr.Wrap(apperr.Infrastructure, "failed to create job", err)
	}
	return &job, nil
}

// ListActive is the public browse surface: active jobs only, newest first.
func (s *Service) ListActive(ctx context.Context) ([]models.Job, error) {
	var out []models.Job
	err := s.DB.WithContext(ctx).
		Where("status = ?", models.JobStatusActive).
		Order("created_at DESC").
		Find(&out).Error
	if err != nil {
		return nil, apperr.Wrap(apperr.Infrastructure, "failed to list jobs", err)
	}
	return out, nil
}

func (s *Service) ListByClient(ctx context.Context, clientID uuid.UUID) ([]models.Job, error) {
	var out []models.Job
	err := s.DB.WithContext(ctx).
		Where("client_id = ?", clientID).
		Order("created_at DESC").
		Find(&out).Error
	if err != nil {
		return nil, apperr.Wrap(apperr.Infrastructure, "failed to list jobs", err)
	}
	return out, nil
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	var job models.Job
	err := s.DB.WithContext(ctx).First(&job, "id = ?", id).Error
	if err != nil {
		return nil, apperr.FromDB(err, "job not found")
	}
	return &job, nil
}

// Close flips a job to closed. It is ownership-gated and does not touch the
// job's existing proposals or contracts.
func (s *Service) Close(ctx context.Context, id uuid.UUID, requester *models.AuthenticatedUser) (*models.Job, error) {
	var job models.Job

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := db.LockForUpdate(tx).First(&job, "id = ?", id).Error; err != nil {
			return apperr.FromDB(err, "job not found")
		}

		if !authz.CanManageJob(requester, &job) {
			return apperr.New(apperr.Authorization, "only the job owner can close it")
		}
		if job.Status == models.JobStatusClosed {
			return apperr.New(apperr.Conflict, "job is already closed")
		}

		job.Status = models.JobStatusClosed
		if err := tx.Save(&job).Error; err != nil {
			return apperr.Wrap(apperr.Infrastructure, "failed to close job", err)
		}
		return nil
	})
	if err != nil {
		var ae *apperr.Error
		if errors.As(err, &ae) {
			return nil, err
		}
		return nil, apperr.Wrap(apperr.Infrastructure, "failed to close job", err)
	}
	return &job, nil
}
