// Package engagement owns the proposal lifecycle and the contracts it
// produces. Every transition runs inside one database transaction with the
// proposal row locked, so retries and concurrent submissions resolve at the
// store rather than in application memory.
package engagement

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

// infra wraps non-taxonomy errors leaking out of a transaction.
func infra(err error, msg string) error {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return err
	}
	return apperr.Wrap(apperr.Infrastructure, msg, err)
}

type CreateProposalInput struct {
	JobID             uuid.UUID
	CoverLetter       string
	ProposedRate      *int64
	EstimatedDuration string
	Attachments       []string
}

// CreateProposal submits a freelancer's bid on an active job. The insert and
// the job's proposal_count recount happen in one transaction; the count is a
// COUNT(*) over the proposals table, never an in-memory increment, so two
// concurrent submissions both land once both commit.
func (s *Service) CreateProposal(ctx context.Context, requester *models.AuthenticatedUser, in CreateProposalInput) (*models.Proposal, error) {
	if requester == nil || requester.Role != models.RoleFreelancer {
		return nil, apperr.New(apperr.Authorization, "only freelancers can submit proposals")
	}
	if strings.TrimSpace(in.CoverLetter) == "" {
		return nil, apperr.New(apperr.Validation, "cover letter is required")
	}

	var attachments datatypes.JSON
	if len(in.Attachments) > 0 {
		raw, err := json.Marshal(in.Attachments)
		if err != nil {
			return nil, apperr.Wrap(apperr.Validation, "invalid attachments", err)
		}
		attachments = raw
	}

	var proposal models.Proposal

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var job models.Job
		if err := db.LockForUpdate(tx).First(&job, "id = ?", in.JobID).Error; err != nil {
			return apperr.FromDB(err, "job not found")
		}
		if job.Status != models.JobStatusActive {
			return apperr.New(apperr.Validation, "job is not accepting proposals")
		}

		// One live bid per freelancer per job. Rejected history does not
		// block a re-bid.
		var pending int64
		if err := tx.Model(&models.Proposal{}).
			Where("job_id = ? AND freelancer_id = ? AND status = ?",
				job.ID, requester.ID, models.ProposalStatusPending).
			Count(&pending).Error; err != nil {
			return err
		}
		if pending > 0 {
			return apperr.New(apperr.Conflict, "you already have a pending proposal on this job")
		}

		proposal = models.Proposal{
			JobID:             job.ID,
			FreelancerID:      requester.ID,
			CoverLetter:       strings.TrimSpace(in.CoverLetter),
			ProposedRate:      in.ProposedRate,
			EstimatedDuration: strings.TrimSpace(in.EstimatedDuration),
			Attachments:       attachments,
			Status:            models.ProposalStatusPending,
		}
		if err := tx.Create(&proposal).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.Job{}).
			Where("id = ?", job.ID).
			Update("proposal_count", gorm.Expr("(SELECT COUNT(*) FROM proposals WHERE job_id = ?)", job.ID)).Error; err != nil {
			return err
		}

		// Echo the job with its post-insert count.
		if err := tx.First(&job, "id = ?", job.ID).Error; err != nil {
			return err
		}
		proposal.Job = &job
		return nil
	})
	if err != nil {
		return nil, infra(err, "failed to create proposal")
	}
	return &proposal, nil
}

// UpdateStatus performs the single pending -> accepted/rejected transition.
// Only the owning job's client may call it, regardless of role. Acceptance
// creates the contract inside the same transaction, so an accepted proposal
// without a contract cannot be observed.
func (s *Service) UpdateStatus(ctx context.Context, proposalID uuid.UUID, newStatus models.ProposalStatus, requesterID uuid.UUID) (*models.Proposal, error) {
	if newStatus != models.ProposalStatusAccepted && newStatus != models.ProposalStatusRejected {
		return nil, apperr.New(apperr.Validation, "status must be accepted or rejected")
	}

	var proposal models.Proposal

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := db.LockForUpdate(tx).First(&proposal, "id = ?", proposalID).Error; err != nil {
			return apperr.FromDB(err, "proposal not found")
		}

		var job models.Job
		if err := tx.First(&job, "id = ?", proposal.JobID).Error; err != nil {
			return apperr.FromDB(err, "job not found")
		}

		if job.ClientID != requesterID {
			return apperr.New(apperr.Authorization, "only the job owner can decide this proposal")
		}

		if !models.CanTransitionProposal(proposal.Status, newStatus) {
			return apperr.Newf(apperr.Conflict, "proposal is already %s", proposal.Status)
		}

		proposal.Status = newStatus
		if err := tx.Save(&proposal).Error; err != nil {
			return err
		}

		if newStatus == models.ProposalStatusAccepted {
			// Accepting one proposal deliberately leaves sibling
			// proposals pending; the client decides each one.
			if _, err := createFromAcceptedProposal(tx, &proposal, &job); err != nil {
				return err
			}
		}

		proposal.Job = &job
		return nil
	})
	if err != nil {
		return nil, infra(err, "failed to update proposal")
	}
	return &proposal, nil
}

// ListForJob returns a job's proposals to its owner (or an admin).
func (s *Service) ListForJob(ctx context.Context, requester *models.AuthenticatedUser, jobID uuid.UUID) ([]models.Proposal, error) {
	var job models.Job
	if err := s.DB.WithContext(ctx).First(&job, "id = ?", jobID).Error; err != nil {
		return nil, apperr.FromDB(err, "job not found")
	}

	if !authz.CanViewProposals(requester, job.ClientID) {
		return nil, apperr.New(apperr.Authorization, "only the job owner can view its proposals")
	}

	var out []models.Proposal
	err := s.DB.WithContext(ctx).
		Preload("Freelancer").
		Where("job_id = ?", jobID).
		Order("created_at DESC").
		Find(&out).Error
	if err != nil {
		return nil, apperr.Wrap(apperr.Infrastructure, "failed to list proposals", err)
	}
	return out, nil
}

func (s *Service) ListByFreelancer(ctx context.Context, freelancerID uuid.UUID) ([]models.Proposal, error) {
	var out []models.Proposal
	err := s.DB.WithContext(ctx).
		Preload("Job").
		Where("freelancer_id = ?", freelancerID).
		Order("created_at DESC").
		Find(&out).Error
	if err != nil {
		return nil, apperr.Wrap(apperr.Infrastructure, "failed to list proposals", err)
	}
	return out, nil
}
