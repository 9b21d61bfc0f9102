package repository

import (
	"context"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PriorityRepository manages the ordered approval ledger of a document
type PriorityRepository interface {
	CreateBatch(ctx context.Context, rows []model.DocumentPriority) error
	// CurrentStepForUpdate locks the pending step: the min-ordering row with
	// is_active AND NOT is_success. gorm.ErrRecordNotFound when none is left.
	CurrentStepForUpdate(ctx context.Context, documentID uuid.UUID) (*model.DocumentPriority, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.DocumentPriority, error)
	ListByDocument(ctx context.Context, documentID uuid.UUID) ([]model.DocumentPriority, error)
	Update(ctx context.Context, row *model.DocumentPriority) error
}

type priorityRepository struct {
	db *gorm.DB
}

func NewPriorityRepository(db *gorm.DB) PriorityRepository {
	return &priorityRepository{db: db}
}

func (r *priorityRepository) CreateBatch(ctx context.Context, rows []model.DocumentPriority) error {
	return GetDB(ctx, r.db).Create(&rows).Error
}

func (r *priorityRepository) CurrentStepForUpdate(ctx context.Context, documentID uuid.UUID) (*model.DocumentPriority, error) {
	var row model.DocumentPriority
	if err := lockForUpdate(GetDB(ctx, r.db)).
		Where("document_id = ? AND is_active = ? AND is_success = ?", documentID, true, false).
		Order("ordering asc").
		First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *priorityRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.DocumentPriority, error) {
	var row model.DocumentPriority
	if err := GetDB(ctx, r.db).First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *priorityRepository) ListByDocument(ctx context.Context, documentID uuid.UUID) ([]model.DocumentPriority, error) {
	var rows []model.DocumentPriority
	if err := GetDB(ctx, r.db).Preload("User").
		Where("document_id = ?", documentID).
		Order("ordering asc").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *priorityRepository) Update(ctx context.Context, row *model.DocumentPriority) error {
	return GetDB(ctx, r.db).Save(row).Error
}
