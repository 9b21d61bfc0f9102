package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	ActionCreateDocument       = "CREATE_DOCUMENT"
	ActionApproveStep          = "APPROVE_STEP"
	ActionReturnDocument       = "RETURN_DOCUMENT"
	ActionResolveReturn        = "RESOLVE_RETURN"
	ActionFinishDocument       = "FINISH_DOCUMENT"
	ActionCreateUser           = "CREATE_USER"
	ActionUpdateUser           = "UPDATE_USER"
	ActionDeleteUser           = "DELETE_USER"
	ActionRequestPasswordReset = "REQUEST_PASSWORD_RESET"
	ActionCompletePasswordReset = "COMPLETE_PASSWORD_RESET"
)

// AuditLog tracks Who, What, and When for critical system changes
type AuditLog struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID     *uuid.UUID `gorm:"type:uuid;index" json:"user_id"` // Nullable gracefully if automated bot
	User       *User      `gorm:"foreignKey:UserID" json:"user"`
	Action     string     `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID   string     `gorm:"type:varchar(50);index" json:"entity_id"`        // Reference string (uuid/number)
	EntityName string     `gorm:"type:varchar(255)" json:"entity_name,omitempty"` // Human readable name
	Details    string     `gorm:"type:jsonb" json:"details"`                      // Serialized JSON payload of the action
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`
}
