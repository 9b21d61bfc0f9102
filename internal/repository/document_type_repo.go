package repository

import (
	"context"

	"backend/internal/model"

	"gorm.io/gorm"
)

type DocumentTypeRepository interface {
	Create(ctx context.Context, dt *model.DocumentType) error
	GetByID(ctx context.Context, id string) (*model.DocumentType, error)
	GetByCode(ctx context.Context, code string) (*model.DocumentType, error)
	List(ctx context.Context) ([]model.DocumentType, error)
	Update(ctx context.Context, dt *model.DocumentType) error
	Delete(ctx context.Context, id string) error
}

type documentTypeRepository struct {
	db *gorm.DB
}

func NewDocumentTypeRepository(db *gorm.DB) DocumentTypeRepository {
	return &documentTypeRepository{db: db}
}

func (r *documentTypeRepository) Create(ctx context.Context, dt *model.DocumentType) error {
	return GetDB(ctx, r.db).Create(dt).Error
}

func (r *documentTypeRepository) GetByID(ctx context.Context, id string) (*model.DocumentType, error) {
	var dt model.DocumentType
	if err := GetDB(ctx, r.db).First(&dt, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &dt, nil
}

func (r *documentTypeRepository) GetByCode(ctx context.Context, code string) (*model.DocumentType, error) {
	var dt model.DocumentType
	if err := GetDB(ctx, r.db).First(&dt, "code = ?", code).Error; err != nil {
		return nil, err
	}
	return &dt, nil
}

func (r *documentTypeRepository) List(ctx context.Context) ([]model.DocumentType, error) {
	var types []model.DocumentType
	if err := GetDB(ctx, r.db).Order("code asc").Find(&types).Error; err != nil {
		return nil, err
	}
	return types, nil
}

func (r *documentTypeRepository) Update(ctx context.Context, dt *model.DocumentType) error {
	return GetDB(ctx, r.db).Save(dt).Error
}

func (r *documentTypeRepository) Delete(ctx context.Context, id string) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.DocumentType{}).Error
}
