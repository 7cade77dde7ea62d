package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type ProposalStatus string

const (
	ProposalStatusPending  ProposalStatus = "pending"
	ProposalStatusAccepted ProposalStatus = "accepted"
	ProposalStatusRejected ProposalStatus = "rejected"
)

// ValidProposalStatus reports whether s is a known proposal status.
func ValidProposalStatus(s ProposalStatus) bool {
	switch s {
	case ProposalStatusPending, ProposalStatusAccepted, ProposalStatusRejected:
		return true
	default:
		return false
	}
}

// ProposalTerminal reports whether s is terminal. Accepted and rejected
// proposals never transition again.
func ProposalTerminal(s ProposalStatus) bool {
	return s == ProposalStatusAccepted || s == ProposalStatusRejected
}

// CanTransitionProposal reports whether a proposal may move from one status
// to another. The only legal moves are pending -> accepted and
// pending -> rejected.
func CanTransitionProposal(from, to ProposalStatus) bool {
	if from != ProposalStatusPending {
		return false
	}
	return to == ProposalStatusAccepted || to == ProposalStatusRejected
}

type Proposal struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	JobID        uuid.UUID `gorm:"type:uuid;not null;index" json:"job_id"`
	FreelancerID uuid.UUID `gorm:"type:uuid;not null;index" json:"freelancer_id"`

	CoverLetter       string `gorm:"type:text;not null" json:"cover_letter"`
	ProposedRate      *int64 `json:"proposed_rate,omitempty"`
	EstimatedDuration string `gorm:"size:100" json:"estimated_duration"`

	// Attachments is a JSON array of file URLs.
	Attachments datatypes.JSON `json:"attachments"`

	Status ProposalStatus `gorm:"type:varchar(20);default:'pending';index" json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Job        *Job  `gorm:"foreignKey:JobID" json:"job,omitempty"`
	Freelancer *User `gorm:"foreignKey:FreelancerID" json:"freelancer,omitempty"`
}
