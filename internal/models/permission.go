package models

import (
	"time"

	"github.com/google/uuid"
)

// Permission grants a named capability to a user, optionally scoped to a
// single resource. Admins satisfy every permission check without a row.
type Permission struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	UserID     uuid.UUID  `gorm:"type:uuid;not null;index:idx_perm_user_name" json:"user_id"`
	Permission string     `gorm:"size:100;not null;index:idx_perm_user_name" json:"permission"`

	ResourceType *string    `gorm:"size:50" json:"resource_type,omitempty"`
	ResourceID   *uuid.UUID `gorm:"type:uuid" json:"resource_id,omitempty"`

	Granted   bool      `gorm:"not null;default:true" json:"granted"`
	GrantedBy uuid.UUID `gorm:"type:uuid;not null" json:"granted_by"`

	CreatedAt time.Time `json:"created_at"`
}
