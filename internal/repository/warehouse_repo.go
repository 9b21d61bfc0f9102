package repository

import (
	"context"

	"backend/internal/model"

	"gorm.io/gorm"
)

type WarehouseRepository interface {
	Create(ctx context.Context, wh *model.Warehouse) error
	GetByID(ctx context.Context, id string) (*model.Warehouse, error)
	List(ctx context.Context, page, limit int) ([]model.Warehouse, int64, error)
	Update(ctx context.Context, wh *model.Warehouse) error
	Delete(ctx context.Context, id string) error

	CreateType(ctx context.Context, wt *model.WarehouseType) error
	ListTypes(ctx context.Context) ([]model.WarehouseType, error)
	DeleteType(ctx context.Context, id string) error
}

type warehouseRepository struct {
	db *gorm.DB
}

func NewWarehouseRepository(db *gorm.DB) WarehouseRepository {
	return &warehouseRepository{db: db}
}

func (r *warehouseRepository) Create(ctx context.Context, wh *model.Warehouse) error {
	return GetDB(ctx, r.db).Create(wh).Error
}

func (r *warehouseRepository) GetByID(ctx context.Context, id string) (*model.Warehouse, error) {
	var wh model.Warehouse
	if err := GetDB(ctx, r.db).Preload("Type").Preload("User").First(&wh, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &wh, nil
}

func (r *warehouseRepository) List(ctx context.Context, page, limit int) ([]model.Warehouse, int64, error) {
	var whs []model.Warehouse
	var total int64

	db := GetDB(ctx, r.db)
	if err := db.Model(&model.Warehouse{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Preload("Type").Preload("User").Order("title asc").
		Offset(offset).Limit(limit).Find(&whs).Error; err != nil {
		return nil, 0, err
	}

	return whs, total, nil
}

func (r *warehouseRepository) Update(ctx context.Context, wh *model.Warehouse) error {
	return GetDB(ctx, r.db).Save(wh).Error
}

func (r *warehouseRepository) Delete(ctx context.Context, id string) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Warehouse{}).Error
}

func (r *warehouseRepository) CreateType(ctx context.Context, wt *model.WarehouseType) error {
	return GetDB(ctx, r.db).Create(wt).Error
}

func (r *warehouseRepository) ListTypes(ctx context.Context) ([]model.WarehouseType, error) {
	var types []model.WarehouseType
	if err := GetDB(ctx, r.db).Order("code asc").Find(&types).Error; err != nil {
		return nil, err
	}
	return types, nil
}

func (r *warehouseRepository) DeleteType(ctx context.Context, id string) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.WarehouseType{}).Error
}
