package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role constants. Role drives both authorization (role-gated routes)
// and workflow routing (which role receives a given priority step).
const (
	RoleAdmin          = "admin"
	RoleDirector       = "director"
	RoleDeputyDirector = "deputy_director"
	RoleBuxgalter      = "buxgalter"
	RoleHeaderFRP      = "header_frp"
	RoleFRP            = "frp"
	RoleUser           = "user"
	RoleIntern         = "intern"
)

// User represents the central user entity for logic and database structure
type User struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name      string         `gorm:"type:varchar(255);not null" json:"name"`
	Username  string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"username"`
	Phone     string         `gorm:"type:varchar(20);uniqueIndex;not null" json:"phone"`
	Password  string         `gorm:"type:varchar(255);not null" json:"-"` // Omit password from JSON requests/responses
	Role      string         `gorm:"type:varchar(50);not null;index" json:"role"`
	ChatID    *int64         `gorm:"index" json:"chat_id"` // Telegram chat handle, nil until the user links the bot
	SeniorID  *uuid.UUID     `gorm:"type:uuid;index" json:"senior_id"`
	Senior    *User          `gorm:"foreignKey:SeniorID" json:"senior,omitempty"`
	DepCode   string         `gorm:"type:varchar(50);index" json:"dep_code"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"` // GORM soft delete
}

// RefreshToken stores long-lived tokens allowing users to request new access tokens
type RefreshToken struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	User      User      `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Token     string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"token"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// ValidRole reports whether role belongs to the closed role set
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleDirector, RoleDeputyDirector, RoleBuxgalter,
		RoleHeaderFRP, RoleFRP, RoleUser, RoleIntern:
		return true
	}
	return false
}
