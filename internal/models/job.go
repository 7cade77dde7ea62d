package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type JobStatus string

const (
	JobStatusActive JobStatus = "active"
	JobStatusClosed JobStatus = "closed"
)

type BudgetType string

const (
	BudgetTypeFixed  BudgetType = "fixed"
	BudgetTypeHourly BudgetType = "hourly"
)

type Job struct {
	ID       uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ClientID uuid.UUID `gorm:"type:uuid;not null;index" json:"client_id"`

	Title       string `gorm:"size:255;not null" json:"title"`
	Description string `gorm:"type:text;not null" json:"description"`
	Category    string `gorm:"size:100;not null;index" json:"category"`

	BudgetType BudgetType `gorm:"type:varchar(20);default:'fixed'" json:"budget_type"`
	BudgetMin  int64      `json:"budget_min"`
	BudgetMax  int64      `json:"budget_max"`
	Duration   string     `gorm:"size:100" json:"duration"`

	// Skills is a JSON array of skill names, e.g. ["golang", "postgres"].
	Skills datatypes.JSON `json:"skills"`

	Status JobStatus `gorm:"type:varchar(20);default:'active';index" json:"status"`

	// ProposalCount is denormalized; it is recomputed from the proposals
	// table inside the same transaction as every proposal insert.
	ProposalCount int `gorm:"default:0" json:"proposal_count"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Client *User `gorm:"foreignKey:ClientID" json:"client,omitempty"`
}
