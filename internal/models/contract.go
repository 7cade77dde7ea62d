package models

import (
	"time"

	"github.com/google/uuid"
)

type ContractStatus string

const (
	ContractStatusActive    ContractStatus = "active"
	ContractStatusCompleted ContractStatus = "completed"
	ContractStatusCancelled ContractStatus = "cancelled"
	ContractStatusDisputed  ContractStatus = "disputed"
)

// CanTransitionContract reports whether a contract may move between two
// statuses. Contracts only ever advance out of active; completed, cancelled
// and disputed are terminal here.
func CanTransitionContract(from, to ContractStatus) bool {
	if from != ContractStatusActive {
		return false
	}
	switch to {
	case ContractStatusCompleted, ContractStatusCancelled, ContractStatusDisputed:
		return true
	default:
		return false
	}
}

// Contract is the binding engagement produced when a proposal is accepted.
// ProposalID carries a unique index: the database, not the application, is
// what guarantees at most one contract per proposal.
type Contract struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ProposalID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"proposal_id"`
	JobID      uuid.UUID `gorm:"type:uuid;not null;index" json:"job_id"`

	// ClientID and FreelancerID are copied verbatim from the job and the
	// proposal at creation time and never re-derived afterwards.
	ClientID     uuid.UUID `gorm:"type:uuid;not null;index" json:"client_id"`
	FreelancerID uuid.UUID `gorm:"type:uuid;not null;index" json:"freelancer_id"`

	Status    ContractStatus `gorm:"type:varchar(20);default:'active';index" json:"status"`
	StartDate time.Time      `gorm:"not null" json:"start_date"`
	EndDate   *time.Time     `json:"end_date,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Proposal   *Proposal `gorm:"foreignKey:ProposalID" json:"proposal,omitempty"`
	Job        *Job      `gorm:"foreignKey:JobID" json:"job,omitempty"`
	Client     *User     `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	Freelancer *User     `gorm:"foreignKey:FreelancerID" json:"freelancer,omitempty"`
}
