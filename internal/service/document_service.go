package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"backend/internal/model"
	"backend/internal/repository"
	ws "backend/internal/websocket"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// --- DTOs ---

type CreateDocumentRequest struct {
	TypeCode        string `json:"type_code" binding:"required"`
	SubscriberTitle string `json:"subscriber_title" binding:"required"`
	Address         string `json:"address"`
	DateOrder       string `json:"date_order"` // 2006-01-02, defaults to today
	InCharge        string `json:"in_charge" binding:"required"`
	TotalAmount     string `json:"total_amount"`
	ApproverID      string `json:"approver_id"` // required for direct-assignment types
}

type DocumentResponse struct {
	ID              string         `json:"id"`
	Number          string         `json:"number"`
	TypeCode        string         `json:"type_code"`
	TypeTitle       string         `json:"type_title"`
	SubscriberTitle string         `json:"subscriber_title"`
	Address         string         `json:"address"`
	DateOrder       string         `json:"date_order"`
	CreatorID       string         `json:"creator_id"`
	CreatorName     string         `json:"creator_name,omitempty"`
	InCharge        string         `json:"in_charge"`
	Status          int            `json:"status"`
	Level           int            `json:"level"`
	TotalAmount     string         `json:"total_amount"`
	IsFinished      bool           `json:"is_finished"`
	CreatedAt       string         `json:"created_at"`
	Steps           []StepResponse `json:"steps,omitempty"`
}

type DocumentListFilter struct {
	Scope    string // "mine", "pending", or empty for all (role-gated)
	Finished *bool
	Page     int
	Limit    int
}

type DocumentService interface {
	CreateDocument(ctx context.Context, creatorID string, req CreateDocumentRequest) (*DocumentResponse, error)
	GetDocument(ctx context.Context, id string) (*DocumentResponse, error)
	ListDocuments(ctx context.Context, callerID string, filter DocumentListFilter) ([]DocumentResponse, int64, error)
}

type documentService struct {
	docRepo   repository.DocumentRepository
	typeRepo  repository.DocumentTypeRepository
	userRepo  repository.UserRepository
	workflow  WorkflowService
	auditRepo repository.AuditRepository
	txManager repository.TransactionManager
	hub       *ws.Hub
}

func NewDocumentService(
	docRepo repository.DocumentRepository,
	typeRepo repository.DocumentTypeRepository,
	userRepo repository.UserRepository,
	workflow WorkflowService,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	hub *ws.Hub,
) DocumentService {
	return &documentService{
		docRepo:   docRepo,
		typeRepo:  typeRepo,
		userRepo:  userRepo,
		workflow:  workflow,
		auditRepo: auditRepo,
		txManager: txManager,
		hub:       hub,
	}
}

func (s *documentService) CreateDocument(ctx context.Context, creatorID string, req CreateDocumentRequest) (*DocumentResponse, error) {
	creator, err := s.userRepo.GetByID(ctx, creatorID)
	if err != nil {
		return nil, ErrNotFound
	}

	docType, err := s.typeRepo.GetByCode(ctx, req.TypeCode)
	if err != nil {
		return nil, errors.New("unknown document type: " + req.TypeCode)
	}

	inCharge, err := uuid.Parse(req.InCharge)
	if err != nil {
		return nil, fmt.Errorf("invalid in-charge id: %w", err)
	}

	var directApprover *uuid.UUID
	if docType.WorkflowType == model.WorkflowDirect {
		if req.ApproverID == "" {
			return nil, errors.New("approver_id is required for this document type")
		}
		parsed, err := uuid.Parse(req.ApproverID)
		if err != nil {
			return nil, fmt.Errorf("invalid approver id: %w", err)
		}
		directApprover = &parsed
	}

	total := decimal.Zero
	if req.TotalAmount != "" {
		parsed, err := decimal.NewFromString(req.TotalAmount)
		if err != nil {
			return nil, fmt.Errorf("invalid total amount: %w", err)
		}
		total = parsed
	}

	dateOrder := time.Now()
	if req.DateOrder != "" {
		parsed, err := time.Parse("2006-01-02", req.DateOrder)
		if err != nil {
			return nil, fmt.Errorf("invalid date_order: %w", err)
		}
		dateOrder = parsed
	}

	doc := &model.Document{
		ID:              uuid.New(),
		UserID:          creator.ID,
		TypeID:          docType.ID,
		SubscriberTitle: req.SubscriberTitle,
		Address:         req.Address,
		DateOrder:       dateOrder,
		InCharge:        inCharge,
		TotalAmount:     total,
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		number, err := s.docRepo.NextNumber(txCtx)
		if err != nil {
			return fmt.Errorf("failed to generate document number: %w", err)
		}
		doc.Number = number

		if err := s.docRepo.Create(txCtx, doc); err != nil {
			return fmt.Errorf("failed to create document: %w", err)
		}

		if err := s.workflow.Instantiate(txCtx, doc, docType, directApprover); err != nil {
			return err
		}

		details, _ := json.Marshal(map[string]interface{}{
			"number": doc.Number,
			"type":   docType.Code,
		})
		audit := &model.AuditLog{
			UserID:     &creator.ID,
			Action:     model.ActionCreateDocument,
			EntityID:   doc.ID.String(),
			EntityName: doc.Number,
			Details:    string(details),
		}
		if err := s.auditRepo.Log(txCtx, audit); err != nil {
			return fmt.Errorf("failed to write audit log: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.hub != nil {
		s.hub.Publish(WorkflowEvent{Event: "document.created", DocumentID: doc.ID.String(), ActorID: creatorID})
	}

	return s.GetDocument(ctx, doc.ID.String())
}

func (s *documentService) GetDocument(ctx context.Context, id string) (*DocumentResponse, error) {
	docID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid document id: %w", err)
	}

	doc, err := s.docRepo.FindByIDWithRelations(ctx, docID)
	if err != nil {
		return nil, ErrNotFound
	}

	res := toDocumentResponse(*doc)
	steps, err := s.workflow.Steps(ctx, id)
	if err != nil {
		return nil, err
	}
	res.Steps = steps

	return &res, nil
}

func (s *documentService) ListDocuments(ctx context.Context, callerID string, filter DocumentListFilter) ([]DocumentResponse, int64, error) {
	caller, err := s.userRepo.GetByID(ctx, callerID)
	if err != nil {
		return nil, 0, ErrNotFound
	}

	repoFilter := repository.DocumentFilter{
		Finished: filter.Finished,
		Page:     filter.Page,
		Limit:    filter.Limit,
	}

	switch filter.Scope {
	case "mine":
		repoFilter.CreatorID = &caller.ID
	case "pending":
		repoFilter.PendingFor = &caller.ID
	default:
		// Full listing is reserved for oversight roles; everyone else
		// falls back to their own documents.
		switch caller.Role {
		case model.RoleAdmin, model.RoleDirector, model.RoleDeputyDirector, model.RoleBuxgalter:
		default:
			repoFilter.CreatorID = &caller.ID
		}
	}

	docs, total, err := s.docRepo.List(ctx, repoFilter)
	if err != nil {
		return nil, 0, err
	}

	res := make([]DocumentResponse, 0, len(docs))
	for _, d := range docs {
		res = append(res, toDocumentResponse(d))
	}

	return res, total, nil
}

func toDocumentResponse(d model.Document) DocumentResponse {
	res := DocumentResponse{
		ID:              d.ID.String(),
		Number:          d.Number,
		SubscriberTitle: d.SubscriberTitle,
		Address:         d.Address,
		DateOrder:       d.DateOrder.Format("2006-01-02"),
		CreatorID:       d.UserID.String(),
		InCharge:        d.InCharge.String(),
		Status:          d.Status,
		Level:           d.Level,
		TotalAmount:     d.TotalAmount.StringFixed(2),
		IsFinished:      d.IsFinished,
		CreatedAt:       d.CreatedAt.Format(time.RFC3339),
	}
	if d.Type != nil {
		res.TypeCode = d.Type.Code
		res.TypeTitle = d.Type.Title
	}
	if d.Creator != nil {
		res.CreatorName = d.Creator.Name
	}
	return res
}
