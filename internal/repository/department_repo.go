package repository

import (
	"context"

	"backend/internal/model"

	"gorm.io/gorm"
)

type DepartmentRepository interface {
	Create(ctx context.Context, dep *model.Department) error
	GetByID(ctx context.Context, id string) (*model.Department, error)
	GetByCode(ctx context.Context, code string) (*model.Department, error)
	List(ctx context.Context, page, limit int) ([]model.Department, int64, error)
	Update(ctx context.Context, dep *model.Department) error
	Delete(ctx context.Context, id string) error
}

type departmentRepository struct {
	db *gorm.DB
}

func NewDepartmentRepository(db *gorm.DB) DepartmentRepository {
	return &departmentRepository{db: db}
}

func (r *departmentRepository) Create(ctx context.Context, dep *model.Department) error {
	return GetDB(ctx, r.db).Create(dep).Error
}

func (r *departmentRepository) GetByID(ctx context.Context, id string) (*model.Department, error) {
	var dep model.Department
	if err := GetDB(ctx, r.db).First(&dep, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &dep, nil
}

func (r *departmentRepository) GetByCode(ctx context.Context, code string) (*model.Department, error) {
	var dep model.Department
	if err := GetDB(ctx, r.db).First(&dep, "code = ?", code).Error; err != nil {
		return nil, err
	}
	return &dep, nil
}

func (r *departmentRepository) List(ctx context.Context, page, limit int) ([]model.Department, int64, error) {
	var deps []model.Department
	var total int64

	db := GetDB(ctx, r.db)
	if err := db.Model(&model.Department{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Order("code asc").Offset(offset).Limit(limit).Find(&deps).Error; err != nil {
		return nil, 0, err
	}

	return deps, total, nil
}

func (r *departmentRepository) Update(ctx context.Context, dep *model.Department) error {
	return GetDB(ctx, r.db).Save(dep).Error
}

func (r *departmentRepository) Delete(ctx context.Context, id string) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Department{}).Error
}
