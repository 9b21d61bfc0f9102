package service

import (
	"context"
	"errors"

	"backend/internal/model"
	"backend/internal/repository"

	"github.com/google/uuid"
)

type DocumentTypeRequest struct {
	Code                   string `json:"code" binding:"required"`
	Title                  string `json:"title" binding:"required"`
	WorkflowType           int    `json:"workflow_type" binding:"required,oneof=1 2"`
	RequiresDeputyApproval bool   `json:"requires_deputy_approval"`
}

type DocumentTypeService interface {
	Create(ctx context.Context, req DocumentTypeRequest) (*model.DocumentType, error)
	List(ctx context.Context) ([]model.DocumentType, error)
	Update(ctx context.Context, id string, req DocumentTypeRequest) (*model.DocumentType, error)
	Delete(ctx context.Context, id string) error
}

type documentTypeService struct {
	repo repository.DocumentTypeRepository
}

func NewDocumentTypeService(repo repository.DocumentTypeRepository) DocumentTypeService {
	return &documentTypeService{repo: repo}
}

func (s *documentTypeService) Create(ctx context.Context, req DocumentTypeRequest) (*model.DocumentType, error) {
	if _, err := s.repo.GetByCode(ctx, req.Code); err == nil {
		return nil, errors.New("document type code already exists")
	}

	// Deputy approval only applies to the sequential chain
	if req.WorkflowType == model.WorkflowDirect && req.RequiresDeputyApproval {
		return nil, errors.New("deputy approval is not applicable to direct-assignment types")
	}

	dt := &model.DocumentType{
		ID:                     uuid.New(),
		Code:                   req.Code,
		Title:                  req.Title,
		WorkflowType:           req.WorkflowType,
		RequiresDeputyApproval: req.RequiresDeputyApproval,
	}
	if err := s.repo.Create(ctx, dt); err != nil {
		return nil, err
	}
	return dt, nil
}

func (s *documentTypeService) List(ctx context.Context) ([]model.DocumentType, error) {
	return s.repo.List(ctx)
}

func (s *documentTypeService) Update(ctx context.Context, id string, req DocumentTypeRequest) (*model.DocumentType, error) {
	dt, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}

	if req.Title != "" {
		dt.Title = req.Title
	}
	if req.WorkflowType != 0 {
		dt.WorkflowType = req.WorkflowType
	}
	dt.RequiresDeputyApproval = req.RequiresDeputyApproval

	if err := s.repo.Update(ctx, dt); err != nil {
		return nil, err
	}
	return dt, nil
}

func (s *documentTypeService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return ErrNotFound
	}
	return s.repo.Delete(ctx, id)
}
