package service

import (
	"context"
	"errors"

	"backend/internal/model"
	"backend/internal/repository"

	"github.com/google/uuid"
)

type DepartmentRequest struct {
	Code  string `json:"code" binding:"required"`
	Title string `json:"title" binding:"required"`
}

type DepartmentResponse struct {
	ID    string `json:"id"`
	Code  string `json:"code"`
	Title string `json:"title"`
}

type DepartmentService interface {
	Create(ctx context.Context, req DepartmentRequest) (*DepartmentResponse, error)
	GetByID(ctx context.Context, id string) (*DepartmentResponse, error)
	List(ctx context.Context, page, limit int) ([]DepartmentResponse, int64, error)
	Update(ctx context.Context, id string, req DepartmentRequest) (*DepartmentResponse, error)
	Delete(ctx context.Context, id string) error
}

type departmentService struct {
	repo repository.DepartmentRepository
}

func NewDepartmentService(repo repository.DepartmentRepository) DepartmentService {
	return &departmentService{repo: repo}
}

func (s *departmentService) Create(ctx context.Context, req DepartmentRequest) (*DepartmentResponse, error) {
	if _, err := s.repo.GetByCode(ctx, req.Code); err == nil {
		return nil, errors.New("department code already exists")
	}

	dep := &model.Department{ID: uuid.New(), Code: req.Code, Title: req.Title}
	if err := s.repo.Create(ctx, dep); err != nil {
		return nil, err
	}
	return toDepartmentResponse(dep), nil
}

func (s *departmentService) GetByID(ctx context.Context, id string) (*DepartmentResponse, error) {
	dep, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}
	return toDepartmentResponse(dep), nil
}

func (s *departmentService) List(ctx context.Context, page, limit int) ([]DepartmentResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	deps, total, err := s.repo.List(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}

	res := make([]DepartmentResponse, 0, len(deps))
	for i := range deps {
		res = append(res, *toDepartmentResponse(&deps[i]))
	}
	return res, total, nil
}

func (s *departmentService) Update(ctx context.Context, id string, req DepartmentRequest) (*DepartmentResponse, error) {
	dep, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}

	if req.Code != "" && req.Code != dep.Code {
		if _, err := s.repo.GetByCode(ctx, req.Code); err == nil {
			return nil, errors.New("department code already exists")
		}
		dep.Code = req.Code
	}
	if req.Title != "" {
		dep.Title = req.Title
	}

	if err := s.repo.Update(ctx, dep); err != nil {
		return nil, err
	}
	return toDepartmentResponse(dep), nil
}

func (s *departmentService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return ErrNotFound
	}
	return s.repo.Delete(ctx, id)
}

func toDepartmentResponse(dep *model.Department) *DepartmentResponse {
	return &DepartmentResponse{
		ID:    dep.ID.String(),
		Code:  dep.Code,
		Title: dep.Title,
	}
}
