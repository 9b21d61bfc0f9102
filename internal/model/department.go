package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Department groups users by dep_code
type Department struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Code      string         `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"`
	Title     string         `gorm:"type:varchar(255);not null" json:"title"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// WarehouseType classifies warehouses (central, regional, sub-station...)
type WarehouseType struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Code      string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"`
	Title     string    `gorm:"type:varchar(255);not null" json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Warehouse is a physical store assigned to a responsible frp user.
// ErpCode ties the record to the external warehouse/ERP system.
type Warehouse struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Title     string         `gorm:"type:varchar(255);not null" json:"title"`
	TypeID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"type_id"`
	Type      *WarehouseType `gorm:"foreignKey:TypeID" json:"type,omitempty"`
	UserID    *uuid.UUID     `gorm:"type:uuid;index" json:"user_id"` // responsible frp user
	User      *User          `gorm:"foreignKey:UserID" json:"user,omitempty"`
	ErpCode   string         `gorm:"type:varchar(50);index" json:"erp_code"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
