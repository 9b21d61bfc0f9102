package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"backend/internal/model"
	"backend/internal/repository"
	ws "backend/internal/websocket"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// --- DTOs ---

type StepResponse struct {
	ID        string `json:"id"`
	Ordering  int    `json:"ordering"`
	UserID    string `json:"user_id"`
	UserName  string `json:"user_name,omitempty"`
	UserRole  string `json:"user_role"`
	IsSuccess bool   `json:"is_success"`
	IsActive  bool   `json:"is_active"`
}

type HistoryEntry struct {
	ID        string `json:"id"`
	Status    string `json:"status"`
	Level     int    `json:"level"`
	UserID    string `json:"user_id"`
	UserName  string `json:"user_name"`
	IsConfirm bool   `json:"is_confirm"`
	IsFRP     bool   `json:"is_frp"`
	Note      string `json:"note"`
	CreatedAt string `json:"created_at"`
}

// WorkflowEvent is the websocket payload broadcast on document transitions
type WorkflowEvent struct {
	Event      string `json:"event"`
	DocumentID string `json:"document_id"`
	ActorID    string `json:"actor_id,omitempty"`
	Ordering   int    `json:"ordering,omitempty"`
}

// WorkflowService advances documents through their approval ledger.
//
// The ledger keeps exactly one row with is_active AND NOT is_success per
// unfinished document: queued rows sit inactive until the step before them
// succeeds, and a return deactivates the pending row until it is resolved.
type WorkflowService interface {
	// Instantiate materializes the priority ledger for a freshly created
	// document. Must run inside the same transaction as the document insert.
	Instantiate(ctx context.Context, doc *model.Document, docType *model.DocumentType, directApprover *uuid.UUID) error
	Approve(ctx context.Context, documentID, actorID string, note string) (*StepResponse, error)
	Return(ctx context.Context, documentID, actorID string, note string) (*StepResponse, error)
	Resolve(ctx context.Context, documentID, actorID string, note string) (*StepResponse, error)
	Steps(ctx context.Context, documentID string) ([]StepResponse, error)
	History(ctx context.Context, documentID string) ([]HistoryEntry, error)
}

type workflowService struct {
	docRepo      repository.DocumentRepository
	priorityRepo repository.PriorityRepository
	statusRepo   repository.StatusLogRepository
	returnedRepo repository.ReturnedRepository
	userRepo     repository.UserRepository
	auditRepo    repository.AuditRepository
	txManager    repository.TransactionManager
	hub          *ws.Hub
}

func NewWorkflowService(
	docRepo repository.DocumentRepository,
	priorityRepo repository.PriorityRepository,
	statusRepo repository.StatusLogRepository,
	returnedRepo repository.ReturnedRepository,
	userRepo repository.UserRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	hub *ws.Hub,
) WorkflowService {
	return &workflowService{
		docRepo:      docRepo,
		priorityRepo: priorityRepo,
		statusRepo:   statusRepo,
		returnedRepo: returnedRepo,
		userRepo:     userRepo,
		auditRepo:    auditRepo,
		txManager:    txManager,
		hub:          hub,
	}
}

// --- Instantiation ---

func (s *workflowService) Instantiate(ctx context.Context, doc *model.Document, docType *model.DocumentType, directApprover *uuid.UUID) error {
	var chain []model.User

	switch docType.WorkflowType {
	case model.WorkflowSequential:
		frp, err := s.userRepo.GetByID(ctx, doc.InCharge.String())
		if err != nil {
			return fmt.Errorf("in-charge user not found: %w", err)
		}
		if frp.SeniorID == nil {
			return errors.New("in-charge user has no senior assigned")
		}
		senior, err := s.userRepo.GetByID(ctx, frp.SeniorID.String())
		if err != nil {
			return fmt.Errorf("senior not found: %w", err)
		}
		chain = append(chain, *frp, *senior)

		if docType.RequiresDeputyApproval {
			deputy, err := s.userRepo.FirstByRole(ctx, model.RoleDeputyDirector)
			if err != nil {
				return fmt.Errorf("no deputy director registered: %w", err)
			}
			chain = append(chain, *deputy)
		}

		director, err := s.userRepo.FirstByRole(ctx, model.RoleDirector)
		if err != nil {
			return fmt.Errorf("no director registered: %w", err)
		}
		buxgalter, err := s.userRepo.FirstByRole(ctx, model.RoleBuxgalter)
		if err != nil {
			return fmt.Errorf("no buxgalter registered: %w", err)
		}
		chain = append(chain, *director, *buxgalter)

	case model.WorkflowDirect:
		if directApprover == nil {
			return errors.New("direct-assignment workflow requires an approver")
		}
		approver, err := s.userRepo.GetByID(ctx, directApprover.String())
		if err != nil {
			return fmt.Errorf("approver not found: %w", err)
		}
		buxgalter, err := s.userRepo.FirstByRole(ctx, model.RoleBuxgalter)
		if err != nil {
			return fmt.Errorf("no buxgalter registered: %w", err)
		}
		chain = append(chain, *approver, *buxgalter)

	default:
		return fmt.Errorf("unknown workflow type: %d", docType.WorkflowType)
	}

	rows := make([]model.DocumentPriority, 0, len(chain))
	for i, u := range chain {
		rows = append(rows, model.DocumentPriority{
			ID:         uuid.New(),
			DocumentID: doc.ID,
			Ordering:   i + 1,
			UserID:     u.ID,
			UserRole:   u.Role,
			IsSuccess:  false,
			IsActive:   i == 0, // only the first step starts live
		})
	}
	if err := s.priorityRepo.CreateBatch(ctx, rows); err != nil {
		return fmt.Errorf("failed to create priority ledger: %w", err)
	}

	entry := &model.DocumentStatusLog{
		ID:         uuid.New(),
		DocumentID: doc.ID,
		UserID:     doc.UserID,
		Status:     model.StatusCreated,
		Level:      0,
		IsConfirm:  true,
		IsFRP:      true,
		IsActive:   true,
	}
	if err := s.statusRepo.Append(ctx, entry); err != nil {
		return fmt.Errorf("failed to write status log: %w", err)
	}

	return nil
}

// --- Approve ---

func (s *workflowService) Approve(ctx context.Context, documentID, actorID string, note string) (*StepResponse, error) {
	docID, err := uuid.Parse(documentID)
	if err != nil {
		return nil, fmt.Errorf("invalid document id: %w", err)
	}
	actor, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		return nil, ErrNotFound
	}

	var approved model.DocumentPriority
	var finished bool
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		doc, err := s.docRepo.FindByIDForUpdate(txCtx, docID)
		if err != nil {
			return ErrNotFound
		}
		if doc.IsFinished {
			return ErrNoActiveStep
		}

		current, err := s.priorityRepo.CurrentStepForUpdate(txCtx, docID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNoActiveStep
			}
			return err
		}
		if !s.mayAct(actor, current) {
			return ErrForbidden
		}

		current.IsSuccess = true
		current.IsActive = false
		if err := s.priorityRepo.Update(txCtx, current); err != nil {
			return fmt.Errorf("failed to consume priority row: %w", err)
		}
		approved = *current

		doc.Status = current.Ordering
		doc.Level = current.Ordering

		// Wake the next queued row, or finish the document.
		next, err := s.nextQueued(txCtx, docID, current.Ordering)
		if err != nil {
			return err
		}
		status := model.StatusApproved
		if next != nil {
			next.IsActive = true
			if err := s.priorityRepo.Update(txCtx, next); err != nil {
				return fmt.Errorf("failed to activate next step: %w", err)
			}
		} else {
			doc.IsFinished = true
			finished = true
			status = model.StatusFinished
		}
		if err := s.docRepo.Update(txCtx, doc); err != nil {
			return fmt.Errorf("failed to update document: %w", err)
		}

		entry := &model.DocumentStatusLog{
			ID:         uuid.New(),
			DocumentID: docID,
			UserID:     actor.ID,
			Status:     status,
			Level:      current.Ordering,
			IsConfirm:  true,
			IsFRP:      actor.Role == model.RoleFRP,
			Note:       note,
			IsActive:   true,
		}
		if err := s.statusRepo.Append(txCtx, entry); err != nil {
			return fmt.Errorf("failed to write status log: %w", err)
		}

		action := model.ActionApproveStep
		if doc.IsFinished {
			action = model.ActionFinishDocument
		}
		return s.audit(txCtx, actor.ID, action, doc, map[string]interface{}{
			"ordering": current.Ordering,
			"role":     current.UserRole,
		})
	})
	if err != nil {
		return nil, err
	}

	event := "document.approved"
	if finished {
		event = "document.finished"
	}
	s.broadcast(WorkflowEvent{Event: event, DocumentID: documentID, ActorID: actorID, Ordering: approved.Ordering})

	return toStepResponse(approved, actor.Name), nil
}

// --- Return ---

func (s *workflowService) Return(ctx context.Context, documentID, actorID string, note string) (*StepResponse, error) {
	docID, err := uuid.Parse(documentID)
	if err != nil {
		return nil, fmt.Errorf("invalid document id: %w", err)
	}
	actor, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		return nil, ErrNotFound
	}

	var returned model.DocumentPriority
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		doc, err := s.docRepo.FindByIDForUpdate(txCtx, docID)
		if err != nil {
			return ErrNotFound
		}
		if doc.IsFinished {
			return ErrNoActiveStep
		}

		current, err := s.priorityRepo.CurrentStepForUpdate(txCtx, docID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNoActiveStep
			}
			return err
		}
		if !s.mayAct(actor, current) {
			return ErrForbidden
		}

		current.IsActive = false
		if err := s.priorityRepo.Update(txCtx, current); err != nil {
			return fmt.Errorf("failed to deactivate priority row: %w", err)
		}
		returned = *current

		// Rework goes back to the chain start: the in-charge frp step.
		rows, err := s.priorityRepo.ListByDocument(txCtx, docID)
		if err != nil {
			return fmt.Errorf("failed to load priority ledger: %w", err)
		}
		if len(rows) == 0 {
			return ErrConflict
		}
		target := rows[0]

		ret := &model.DocumentReturned{
			ID:         uuid.New(),
			DocumentID: docID,
			FromID:     actor.ID,
			ToID:       target.UserID,
			Note:       note,
			PriorityID: current.ID,
		}
		if err := s.returnedRepo.Create(txCtx, ret); err != nil {
			return fmt.Errorf("failed to create return record: %w", err)
		}

		entry := &model.DocumentStatusLog{
			ID:         uuid.New(),
			DocumentID: docID,
			UserID:     actor.ID,
			Status:     model.StatusReturned,
			Level:      current.Ordering,
			IsConfirm:  false,
			IsFRP:      actor.Role == model.RoleFRP,
			Note:       note,
			IsActive:   true,
		}
		if err := s.statusRepo.Append(txCtx, entry); err != nil {
			return fmt.Errorf("failed to write status log: %w", err)
		}

		return s.audit(txCtx, actor.ID, model.ActionReturnDocument, doc, map[string]interface{}{
			"ordering": current.Ordering,
			"to":       target.UserID.String(),
			"note":     note,
		})
	})
	if err != nil {
		return nil, err
	}

	s.broadcast(WorkflowEvent{Event: "document.returned", DocumentID: documentID, ActorID: actorID, Ordering: returned.Ordering})

	return toStepResponse(returned, actor.Name), nil
}

// --- Resolve ---

// Resolve closes an open return after the recipient fixed the document.
// The step that raised the return is reactivated and the chain
// continues from there rather than restarting.
func (s *workflowService) Resolve(ctx context.Context, documentID, actorID string, note string) (*StepResponse, error) {
	docID, err := uuid.Parse(documentID)
	if err != nil {
		return nil, fmt.Errorf("invalid document id: %w", err)
	}
	actor, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		return nil, ErrNotFound
	}

	var reopened model.DocumentPriority
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		doc, err := s.docRepo.FindByIDForUpdate(txCtx, docID)
		if err != nil {
			return ErrNotFound
		}

		ret, err := s.returnedRepo.FindUnsolvedByDocument(txCtx, docID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrConflict
			}
			return err
		}
		if ret.ToID != actor.ID {
			return ErrForbidden
		}

		row, err := s.priorityRepo.FindByID(txCtx, ret.PriorityID)
		if err != nil {
			return fmt.Errorf("returned priority row not found: %w", err)
		}
		row.IsActive = true
		row.IsSuccess = false
		if err := s.priorityRepo.Update(txCtx, row); err != nil {
			return fmt.Errorf("failed to reactivate priority row: %w", err)
		}
		reopened = *row

		ret.IsSolved = true
		if err := s.returnedRepo.Update(txCtx, ret); err != nil {
			return fmt.Errorf("failed to mark return solved: %w", err)
		}

		// The open RETURNED stamp is superseded by the resolution.
		if err := s.statusRepo.Deactivate(txCtx, docID, model.StatusReturned); err != nil {
			return fmt.Errorf("failed to retire returned stamp: %w", err)
		}

		entry := &model.DocumentStatusLog{
			ID:         uuid.New(),
			DocumentID: docID,
			UserID:     actor.ID,
			Status:     model.StatusResolved,
			Level:      row.Ordering,
			IsConfirm:  true,
			IsFRP:      actor.Role == model.RoleFRP,
			Note:       note,
			IsActive:   true,
		}
		if err := s.statusRepo.Append(txCtx, entry); err != nil {
			return fmt.Errorf("failed to write status log: %w", err)
		}

		return s.audit(txCtx, actor.ID, model.ActionResolveReturn, doc, map[string]interface{}{
			"ordering": row.Ordering,
			"note":     note,
		})
	})
	if err != nil {
		return nil, err
	}

	s.broadcast(WorkflowEvent{Event: "document.resolved", DocumentID: documentID, ActorID: actorID, Ordering: reopened.Ordering})

	return toStepResponse(reopened, ""), nil
}

// --- Queries ---

func (s *workflowService) Steps(ctx context.Context, documentID string) ([]StepResponse, error) {
	docID, err := uuid.Parse(documentID)
	if err != nil {
		return nil, fmt.Errorf("invalid document id: %w", err)
	}

	rows, err := s.priorityRepo.ListByDocument(ctx, docID)
	if err != nil {
		return nil, err
	}

	res := make([]StepResponse, 0, len(rows))
	for _, row := range rows {
		name := ""
		if row.User != nil {
			name = row.User.Name
		}
		res = append(res, *toStepResponse(row, name))
	}
	return res, nil
}

func (s *workflowService) History(ctx context.Context, documentID string) ([]HistoryEntry, error) {
	docID, err := uuid.Parse(documentID)
	if err != nil {
		return nil, fmt.Errorf("invalid document id: %w", err)
	}

	entries, err := s.statusRepo.ActiveHistory(ctx, docID)
	if err != nil {
		return nil, err
	}

	res := make([]HistoryEntry, 0, len(entries))
	for _, e := range entries {
		name := ""
		if e.User != nil {
			name = e.User.Name
		}
		res = append(res, HistoryEntry{
			ID:        e.ID.String(),
			Status:    e.Status,
			Level:     e.Level,
			UserID:    e.UserID.String(),
			UserName:  name,
			IsConfirm: e.IsConfirm,
			IsFRP:     e.IsFRP,
			Note:      e.Note,
			CreatedAt: e.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}
	return res, nil
}

// --- Helpers ---

// mayAct authorizes the actor for a ledger row: the assigned user always may;
// holders of the same role may for role-routed steps (deputy, director, buxgalter).
func (s *workflowService) mayAct(actor *model.User, row *model.DocumentPriority) bool {
	if actor.ID == row.UserID {
		return true
	}
	switch row.UserRole {
	case model.RoleDeputyDirector, model.RoleDirector, model.RoleBuxgalter:
		return actor.Role == row.UserRole
	}
	return false
}

func (s *workflowService) nextQueued(ctx context.Context, docID uuid.UUID, after int) (*model.DocumentPriority, error) {
	rows, err := s.priorityRepo.ListByDocument(ctx, docID)
	if err != nil {
		return nil, fmt.Errorf("failed to load priority ledger: %w", err)
	}
	for i := range rows {
		if rows[i].Ordering > after && !rows[i].IsSuccess {
			return &rows[i], nil
		}
	}
	return nil, nil
}

func (s *workflowService) audit(ctx context.Context, actorID uuid.UUID, action string, doc *model.Document, details map[string]interface{}) error {
	payload, _ := json.Marshal(details)
	entry := &model.AuditLog{
		UserID:     &actorID,
		Action:     action,
		EntityID:   doc.ID.String(),
		EntityName: doc.Number,
		Details:    string(payload),
	}
	if err := s.auditRepo.Log(ctx, entry); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}

func (s *workflowService) broadcast(event WorkflowEvent) {
	if s.hub == nil {
		return
	}
	s.hub.Publish(event)
}

func toStepResponse(row model.DocumentPriority, userName string) *StepResponse {
	return &StepResponse{
		ID:        row.ID.String(),
		Ordering:  row.Ordering,
		UserID:    row.UserID.String(),
		UserName:  userName,
		UserRole:  row.UserRole,
		IsSuccess: row.IsSuccess,
		IsActive:  row.IsActive,
	}
}
