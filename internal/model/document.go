package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// WorkflowType enum constants
const (
	WorkflowSequential = 1 // chain: frp -> senior -> [deputy director] -> director -> buxgalter
	WorkflowDirect     = 2 // creator names one approver, buxgalter closes
)

// DocumentStatus labels written into the status log
const (
	StatusCreated  = "CREATED"
	StatusApproved = "APPROVED"
	StatusReturned = "RETURNED"
	StatusResolved = "RESOLVED"
	StatusFinished = "FINISHED"
)

// DocumentType is the read-only workflow configuration for a class of documents
type DocumentType struct {
	ID                      uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Code                    string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"`
	Title                   string    `gorm:"type:varchar(255);not null" json:"title"`
	WorkflowType            int       `gorm:"type:int;not null;default:1" json:"workflow_type"` // 1 sequential, 2 direct-assignment
	RequiresDeputyApproval  bool      `gorm:"default:false" json:"requires_deputy_approval"`    // only meaningful for sequential
	CreatedAt               time.Time `json:"created_at"`
	UpdatedAt               time.Time `json:"updated_at"`
}

// Document is the approval subject moving through the priority chain.
// is_finished=true implies no active pending priority rows remain.
type Document struct {
	ID              uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID          uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"` // creator
	Creator         *User           `gorm:"foreignKey:UserID" json:"creator,omitempty"`
	Number          string          `gorm:"type:varchar(50);uniqueIndex;not null" json:"number"`
	TypeID          uuid.UUID       `gorm:"type:uuid;not null;index" json:"type_id"`
	Type            *DocumentType   `gorm:"foreignKey:TypeID" json:"type,omitempty"`
	SubscriberTitle string          `gorm:"type:varchar(255)" json:"subscriber_title"`
	Address         string          `gorm:"type:text" json:"address"`
	DateOrder       time.Time       `json:"date_order"`
	InCharge        uuid.UUID       `gorm:"type:uuid;not null;index" json:"in_charge"` // responsible frp user
	Status          int             `gorm:"type:int;default:0" json:"status"`
	Level           int             `gorm:"type:int;default:0" json:"level"`
	TotalAmount     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"total_amount"`
	IsFinished      bool            `gorm:"default:false;index" json:"is_finished"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	DeletedAt       gorm.DeletedAt  `gorm:"index" json:"-"`
}

// DocumentPriority is one step of the ordered approval ledger.
// The current pending step is derived, never stored: the min-ordering row
// with is_active AND NOT is_success. At most one such row exists per document.
type DocumentPriority struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	DocumentID uuid.UUID `gorm:"type:uuid;not null;index" json:"document_id"`
	Ordering   int       `gorm:"type:int;not null" json:"ordering"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"` // assigned approver
	User       *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	UserRole   string    `gorm:"type:varchar(50);not null" json:"user_role"`
	IsSuccess  bool      `gorm:"default:false" json:"is_success"`
	IsActive   bool      `gorm:"default:true;index" json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// DocumentStatusLog is the append-only audit trail shown as the stamp/history.
// Rows are never deleted; is_active=false only hides superseded rows.
type DocumentStatusLog struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	DocumentID uuid.UUID `gorm:"type:uuid;not null;index" json:"document_id"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"` // actor
	User       *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Status     string    `gorm:"type:varchar(50);not null" json:"status"`
	Level      int       `gorm:"type:int;default:0" json:"level"`
	IsConfirm  bool      `gorm:"default:true" json:"is_confirm"`
	IsFRP      bool      `gorm:"column:is_frp;default:false" json:"is_frp"`
	Note       string    `gorm:"type:text" json:"note"`
	IsActive   bool      `gorm:"default:true;index" json:"is_active"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
}

// DocumentReturned is a rework request sent backward in the chain.
// is_solved flips true when the recipient fixes and moves forward again.
type DocumentReturned struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	DocumentID uuid.UUID `gorm:"type:uuid;not null;index" json:"document_id"`
	FromID     uuid.UUID `gorm:"type:uuid;not null" json:"from_id"`
	From       *User     `gorm:"foreignKey:FromID" json:"from,omitempty"`
	ToID       uuid.UUID `gorm:"type:uuid;not null;index" json:"to_id"`
	To         *User     `gorm:"foreignKey:ToID" json:"to,omitempty"`
	Note       string    `gorm:"type:text" json:"note"`
	IsSolved   bool      `gorm:"default:false;index" json:"is_solved"`
	IsDeleted  bool      `gorm:"default:false" json:"is_deleted"`
	PriorityID uuid.UUID `gorm:"type:uuid;not null" json:"priority_id"` // ledger row reopened by this return
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
