package service

import (
	"context"
	"errors"
	"fmt"

	"backend/internal/erp"
	"backend/internal/model"
	"backend/internal/repository"

	"github.com/google/uuid"
)

type WarehouseRequest struct {
	Title   string `json:"title" binding:"required"`
	TypeID  string `json:"type_id" binding:"required"`
	UserID  string `json:"user_id"`
	ErpCode string `json:"erp_code"`
}

type WarehouseResponse struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	TypeCode string `json:"type_code,omitempty"`
	UserID   string `json:"user_id,omitempty"`
	UserName string `json:"user_name,omitempty"`
	ErpCode  string `json:"erp_code,omitempty"`
}

type WarehouseTypeRequest struct {
	Code  string `json:"code" binding:"required"`
	Title string `json:"title" binding:"required"`
}

type WarehouseService interface {
	Create(ctx context.Context, req WarehouseRequest) (*WarehouseResponse, error)
	GetByID(ctx context.Context, id string) (*WarehouseResponse, error)
	List(ctx context.Context, page, limit int) ([]WarehouseResponse, int64, error)
	Update(ctx context.Context, id string, req WarehouseRequest) (*WarehouseResponse, error)
	Delete(ctx context.Context, id string) error

	CreateType(ctx context.Context, req WarehouseTypeRequest) (*model.WarehouseType, error)
	ListTypes(ctx context.Context) ([]model.WarehouseType, error)
	DeleteType(ctx context.Context, id string) error

	// Stock proxies the inventory lookup to the external ERP system
	Stock(ctx context.Context, warehouseID string) ([]erp.StockItem, error)
}

type warehouseService struct {
	repo     repository.WarehouseRepository
	userRepo repository.UserRepository
	erp      *erp.Client
}

func NewWarehouseService(repo repository.WarehouseRepository, userRepo repository.UserRepository, erpClient *erp.Client) WarehouseService {
	return &warehouseService{repo: repo, userRepo: userRepo, erp: erpClient}
}

func (s *warehouseService) Create(ctx context.Context, req WarehouseRequest) (*WarehouseResponse, error) {
	typeID, err := uuid.Parse(req.TypeID)
	if err != nil {
		return nil, errors.New("invalid type_id")
	}

	wh := &model.Warehouse{
		ID:      uuid.New(),
		Title:   req.Title,
		TypeID:  typeID,
		ErpCode: req.ErpCode,
	}

	if req.UserID != "" {
		user, err := s.userRepo.GetByID(ctx, req.UserID)
		if err != nil {
			return nil, errors.New("responsible user not found")
		}
		if user.Role != model.RoleFRP && user.Role != model.RoleHeaderFRP {
			return nil, errors.New("responsible user must have a warehouse role")
		}
		wh.UserID = &user.ID
	}

	if err := s.repo.Create(ctx, wh); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, wh.ID.String())
}

func (s *warehouseService) GetByID(ctx context.Context, id string) (*WarehouseResponse, error) {
	wh, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}
	return toWarehouseResponse(wh), nil
}

func (s *warehouseService) List(ctx context.Context, page, limit int) ([]WarehouseResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	whs, total, err := s.repo.List(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}

	res := make([]WarehouseResponse, 0, len(whs))
	for i := range whs {
		res = append(res, *toWarehouseResponse(&whs[i]))
	}
	return res, total, nil
}

func (s *warehouseService) Update(ctx context.Context, id string, req WarehouseRequest) (*WarehouseResponse, error) {
	wh, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}

	if req.Title != "" {
		wh.Title = req.Title
	}
	if req.TypeID != "" {
		typeID, err := uuid.Parse(req.TypeID)
		if err != nil {
			return nil, errors.New("invalid type_id")
		}
		wh.TypeID = typeID
	}
	if req.ErpCode != "" {
		wh.ErpCode = req.ErpCode
	}
	if req.UserID != "" {
		user, err := s.userRepo.GetByID(ctx, req.UserID)
		if err != nil {
			return nil, errors.New("responsible user not found")
		}
		wh.UserID = &user.ID
	}

	// Preloaded associations must not be re-saved wholesale
	wh.Type = nil
	wh.User = nil
	if err := s.repo.Update(ctx, wh); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}

func (s *warehouseService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return ErrNotFound
	}
	return s.repo.Delete(ctx, id)
}

func (s *warehouseService) CreateType(ctx context.Context, req WarehouseTypeRequest) (*model.WarehouseType, error) {
	wt := &model.WarehouseType{ID: uuid.New(), Code: req.Code, Title: req.Title}
	if err := s.repo.CreateType(ctx, wt); err != nil {
		return nil, err
	}
	return wt, nil
}

func (s *warehouseService) ListTypes(ctx context.Context) ([]model.WarehouseType, error) {
	return s.repo.ListTypes(ctx)
}

func (s *warehouseService) DeleteType(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return errors.New("invalid warehouse type id")
	}
	return s.repo.DeleteType(ctx, id)
}

func (s *warehouseService) Stock(ctx context.Context, warehouseID string) ([]erp.StockItem, error) {
	wh, err := s.repo.GetByID(ctx, warehouseID)
	if err != nil {
		return nil, ErrNotFound
	}
	if wh.ErpCode == "" {
		return nil, errors.New("warehouse is not linked to the ERP system")
	}

	items, err := s.erp.Stock(ctx, wh.ErpCode)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return items, nil
}

func toWarehouseResponse(wh *model.Warehouse) *WarehouseResponse {
	res := &WarehouseResponse{
		ID:      wh.ID.String(),
		Title:   wh.Title,
		ErpCode: wh.ErpCode,
	}
	if wh.Type != nil {
		res.TypeCode = wh.Type.Code
	}
	if wh.User != nil {
		res.UserID = wh.User.ID.String()
		res.UserName = wh.User.Name
	}
	return res
}
