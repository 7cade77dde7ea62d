package models

import (
	"time"

	"github.com/google/uuid"
)

// SavedJob is a freelancer's bookmark on a job. The composite unique index
// makes a repeat save a database conflict rather than a silent duplicate.
type SavedJob struct {
	ID     uint      `gorm:"primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_saved_user_job" json:"user_id"`
	JobID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_saved_user_job" json:"job_id"`

	CreatedAt time.Time `json:"created_at"`

	Job *Job `gorm:"foreignKey:JobID" json:"job,omitempty"`
}
