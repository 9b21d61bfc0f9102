package repository

import (
	"context"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReturnedRepository manages rework requests sent backward in the chain
type ReturnedRepository interface {
	Create(ctx context.Context, ret *model.DocumentReturned) error
	FindUnsolvedByDocument(ctx context.Context, documentID uuid.UUID) (*model.DocumentReturned, error)
	ListByDocument(ctx context.Context, documentID uuid.UUID) ([]model.DocumentReturned, error)
	Update(ctx context.Context, ret *model.DocumentReturned) error
}

type returnedRepository struct {
	db *gorm.DB
}

func NewReturnedRepository(db *gorm.DB) ReturnedRepository {
	return &returnedRepository{db: db}
}

func (r *returnedRepository) Create(ctx context.Context, ret *model.DocumentReturned) error {
	return GetDB(ctx, r.db).Create(ret).Error
}

func (r *returnedRepository) FindUnsolvedByDocument(ctx context.Context, documentID uuid.UUID) (*model.DocumentReturned, error) {
	var ret model.DocumentReturned
	if err := GetDB(ctx, r.db).
		Where("document_id = ? AND is_solved = ? AND is_deleted = ?", documentID, false, false).
		Order("created_at desc").
		First(&ret).Error; err != nil {
		return nil, err
	}
	return &ret, nil
}

func (r *returnedRepository) ListByDocument(ctx context.Context, documentID uuid.UUID) ([]model.DocumentReturned, error) {
	var rets []model.DocumentReturned
	if err := GetDB(ctx, r.db).Preload("From").Preload("To").
		Where("document_id = ? AND is_deleted = ?", documentID, false).
		Order("created_at desc").
		Find(&rets).Error; err != nil {
		return nil, err
	}
	return rets, nil
}

func (r *returnedRepository) Update(ctx context.Context, ret *model.DocumentReturned) error {
	return GetDB(ctx, r.db).Save(ret).Error
}
