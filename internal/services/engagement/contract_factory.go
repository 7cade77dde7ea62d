package engagement

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/aryaseptiaw/giglink_be/internal/apperr"
	"github.com/aryaseptiaw/giglink_be/internal/authz"
	"github.com/aryaseptiaw/giglink_be/internal/db"
	"github.com/aryaseptiaw/giglink_be/internal/models"
)

// createFromAcceptedProposal inserts the contract for a freshly accepted
// proposal. It runs on the caller's transaction. The unique index on
// proposal_id is the real idempotence guard: a second insert for the same
// proposal comes back as a conflict, never a second row.
func createFromAcceptedProposal(tx *gorm.DB, proposal *models.Proposal, job *models.Job) (*models.Contract, error) {
	contract := models.Contract{
		ProposalID:   proposal.ID,
		JobID:        job.ID,
		ClientID:     job.ClientID,
		FreelancerID: proposal.FreelancerID,
		Status:       models.ContractStatusActive,
		StartDate:    time.Now(),
	}

	if err := tx.Create(&contract).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Wrap(apperr.Conflict, "contract already exists for this proposal", err)
		}
		return nil, apperr.Wrap(apperr.Infrastructure, "failed to create contract", err)
	}
	return &contract, nil
}

// ListContractsForUser filters by the caller's role: clients see contracts
// where they are the client, freelancers theirs, admins everything.
func (s *Service) ListContractsForUser(ctx context.Context, requester *models.AuthenticatedUser) ([]models.Contract, error) {
	q := s.DB.WithContext(ctx).
		Preload("Job").
		Preload("Proposal").
		Order("created_at DESC")

	switch requester.Role {
	case models.RoleClient:
		q = q.Where("client_id = ?", requester.ID)
	case models.RoleFreelancer:
		q = q.Where("freelancer_id = ?", requester.ID)
	case models.RoleAdmin:
		// no filter
	default:
		return nil, apperr.New(apperr.Authorization, "unknown role")
	}

	var out []models.Contract
	if err := q.Find(&out).Error; err != nil {
		return nil, apperr.Wrap(apperr.Infrastructure, "failed to list contracts", err)
	}
	return out, nil
}

func (s *Service) GetContract(ctx context.Context, requester *models.AuthenticatedUser, id uuid.UUID) (*models.Contract, error) {
	var contract models.Contract
	err := s.DB.WithContext(ctx).
		Preload("Job").
		Preload("Proposal").
		First(&contract, "id = ?", id).Error
	if err != nil {
		return nil, apperr.FromDB(err, "contract not found")
	}

	if !authz.CanManageContract(requester, &contract) {
		return nil, apperr.New(apperr.Authorization, "not a party to this contract")
	}
	return &contract, nil
}

// UpdateContractStatus advances a contract out of active. Completed,
// cancelled and disputed are terminal.
func (s *Service) UpdateContractStatus(ctx context.Context, requester *models.AuthenticatedUser, id uuid.UUID, newStatus models.ContractStatus) (*models.Contract, error) {
	var contract models.Contract

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := db.LockForUpdate(tx).First(&contract, "id = ?", id).Error; err != nil {
			return apperr.FromDB(err, "contract not found")
		}

		if !authz.CanManageContract(requester, &contract) {
			return apperr.New(apperr.Authorization, "not a party to this contract")
		}

		if !models.CanTransitionContract(contract.Status, newStatus) {
			if contract.Status != models.ContractStatusActive {
				return apperr.Newf(apperr.Conflict, "contract is already %s", contract.Status)
			}
			return apperr.New(apperr.Validation, "status must be completed, cancelled or disputed")
		}

		contract.Status = newStatus
		if newStatus == models.ContractStatusCompleted || newStatus == models.ContractStatusCancelled {
			now := time.Now()
			contract.EndDate = &now
		}
		if err := tx.Save(&contract).Error; err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, infra(err, "failed to update contract")
	}
	return &contract, nil
}
