package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"backend/internal/model"
	"backend/internal/repository"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	// Minimal schema for the workflow logic (sqlite-friendly).
	schema := []string{
		`CREATE TABLE users (
			id TEXT PRIMARY KEY,
			name TEXT,
			username TEXT UNIQUE,
			phone TEXT UNIQUE,
			password TEXT,
			role TEXT,
			chat_id INTEGER,
			senior_id TEXT,
			dep_code TEXT,
			created_at DATETIME,
			updated_at DATETIME,
			deleted_at DATETIME
		);`,
		`CREATE TABLE refresh_tokens (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			token TEXT NOT NULL UNIQUE,
			expires_at DATETIME NOT NULL,
			created_at DATETIME
		);`,
		`CREATE TABLE document_types (
			id TEXT PRIMARY KEY,
			code TEXT NOT NULL UNIQUE,
			title TEXT NOT NULL,
			workflow_type INTEGER NOT NULL DEFAULT 1,
			requires_deputy_approval BOOLEAN NOT NULL DEFAULT 0,
			created_at DATETIME,
			updated_at DATETIME
		);`,
		`CREATE TABLE documents (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			number TEXT NOT NULL UNIQUE,
			type_id TEXT NOT NULL,
			subscriber_title TEXT,
			address TEXT,
			date_order DATETIME,
			in_charge TEXT NOT NULL,
			status INTEGER NOT NULL DEFAULT 0,
			level INTEGER NOT NULL DEFAULT 0,
			total_amount NUMERIC NOT NULL DEFAULT 0,
			is_finished BOOLEAN NOT NULL DEFAULT 0,
			created_at DATETIME,
			updated_at DATETIME,
			deleted_at DATETIME
		);`,
		`CREATE TABLE document_priorities (
			id TEXT PRIMARY KEY,
			document_id TEXT NOT NULL,
			ordering INTEGER NOT NULL,
			user_id TEXT NOT NULL,
			user_role TEXT NOT NULL,
			is_success BOOLEAN NOT NULL DEFAULT 0,
			is_active BOOLEAN NOT NULL DEFAULT 0,
			created_at DATETIME,
			updated_at DATETIME
		);`,
		`CREATE TABLE document_status_logs (
			id TEXT PRIMARY KEY,
			document_id TEXT NOT NULL,
			user_id TEXT NOT NULL,
			status TEXT NOT NULL,
			level INTEGER NOT NULL DEFAULT 0,
			is_confirm BOOLEAN NOT NULL DEFAULT 1,
			is_frp BOOLEAN NOT NULL DEFAULT 0,
			note TEXT,
			is_active BOOLEAN NOT NULL DEFAULT 1,
			created_at DATETIME
		);`,
		`CREATE TABLE document_returneds (
			id TEXT PRIMARY KEY,
			document_id TEXT NOT NULL,
			from_id TEXT NOT NULL,
			to_id TEXT NOT NULL,
			note TEXT,
			is_solved BOOLEAN NOT NULL DEFAULT 0,
			is_deleted BOOLEAN NOT NULL DEFAULT 0,
			priority_id TEXT NOT NULL,
			created_at DATETIME,
			updated_at DATETIME
		);`,
		`CREATE TABLE audit_logs (
			id TEXT PRIMARY KEY,
			user_id TEXT,
			action TEXT NOT NULL,
			entity_id TEXT,
			entity_name TEXT,
			details TEXT,
			created_at DATETIME
		);`,
		`CREATE TABLE password_reset_tokens (
			phone TEXT PRIMARY KEY,
			token TEXT NOT NULL UNIQUE,
			otp_code TEXT NOT NULL,
			created_at DATETIME
		);`,
	}
	for _, stmt := range schema {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("create schema: %v", err)
		}
	}

	return db
}

// workflowFixture wires the service stack against an in-memory DB with one
// user per role in the sequential chain.
type workflowFixture struct {
	db        *gorm.DB
	docSvc    DocumentService
	wfSvc     WorkflowService
	frp       model.User
	senior    model.User
	deputy    model.User
	director  model.User
	buxgalter model.User
	creator   model.User
}

func newWorkflowFixture(t *testing.T) *workflowFixture {
	t.Helper()
	db := newTestDB(t)

	f := &workflowFixture{db: db}
	f.senior = mustCreateUser(t, db, "Senior FRP", model.RoleHeaderFRP, nil)
	f.frp = mustCreateUser(t, db, "Warehouse FRP", model.RoleFRP, &f.senior.ID)
	f.deputy = mustCreateUser(t, db, "Deputy", model.RoleDeputyDirector, nil)
	f.director = mustCreateUser(t, db, "Director", model.RoleDirector, nil)
	f.buxgalter = mustCreateUser(t, db, "Accountant", model.RoleBuxgalter, nil)
	f.creator = mustCreateUser(t, db, "Operator", model.RoleUser, nil)

	docRepo := repository.NewDocumentRepository(db)
	typeRepo := repository.NewDocumentTypeRepository(db)
	userRepo := repository.NewUserRepository(db)
	priorityRepo := repository.NewPriorityRepository(db)
	statusRepo := repository.NewStatusLogRepository(db)
	returnedRepo := repository.NewReturnedRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	txManager := repository.NewTransactionManager(db)

	f.wfSvc = NewWorkflowService(docRepo, priorityRepo, statusRepo, returnedRepo, userRepo, auditRepo, txManager, nil)
	f.docSvc = NewDocumentService(docRepo, typeRepo, userRepo, f.wfSvc, auditRepo, txManager, nil)

	return f
}

func mustCreateUser(t *testing.T, db *gorm.DB, name, role string, seniorID *uuid.UUID) model.User {
	t.Helper()
	u := model.User{
		ID:       uuid.New(),
		Name:     name,
		Username: uuid.NewString()[:8],
		Phone:    "99890" + uuid.NewString()[:7],
		Password: "x",
		Role:     role,
		SeniorID: seniorID,
	}
	if err := db.Create(&u).Error; err != nil {
		t.Fatalf("create user %s: %v", name, err)
	}
	return u
}

func mustCreateType(t *testing.T, db *gorm.DB, code string, workflowType int, deputy bool) model.DocumentType {
	t.Helper()
	dt := model.DocumentType{
		ID:                     uuid.New(),
		Code:                   code,
		Title:                  "Type " + code,
		WorkflowType:           workflowType,
		RequiresDeputyApproval: deputy,
	}
	if err := db.Create(&dt).Error; err != nil {
		t.Fatalf("create document type: %v", err)
	}
	return dt
}

func (f *workflowFixture) mustCreateDocument(t *testing.T, typeCode string, approverID string) *DocumentResponse {
	t.Helper()
	doc, err := f.docSvc.CreateDocument(context.Background(), f.creator.ID.String(), CreateDocumentRequest{
		TypeCode:        typeCode,
		SubscriberTitle: "Subscriber LLC",
		Address:         "Tashkent, Chilonzor 9",
		InCharge:        f.frp.ID.String(),
		TotalAmount:     "1250000.50",
		ApproverID:      approverID,
	})
	if err != nil {
		t.Fatalf("create document: %v", err)
	}
	return doc
}

// pendingSteps returns the ledger rows with is_active AND NOT is_success.
func pendingSteps(t *testing.T, db *gorm.DB, docID string) []model.DocumentPriority {
	t.Helper()
	var rows []model.DocumentPriority
	if err := db.Where("document_id = ? AND is_active = ? AND is_success = ?", docID, true, false).
		Order("ordering asc").Find(&rows).Error; err != nil {
		t.Fatalf("load pending steps: %v", err)
	}
	return rows
}

func TestWorkflow_SequentialChainWithDeputy(t *testing.T) {
	f := newWorkflowFixture(t)
	mustCreateType(t, f.db, "CONTRACT", model.WorkflowSequential, true)

	doc := f.mustCreateDocument(t, "CONTRACT", "")

	if len(doc.Steps) != 5 {
		t.Fatalf("expected 5 chain steps, got %d", len(doc.Steps))
	}
	wantRoles := []string{model.RoleFRP, model.RoleHeaderFRP, model.RoleDeputyDirector, model.RoleDirector, model.RoleBuxgalter}
	for i, step := range doc.Steps {
		if step.Ordering != i+1 {
			t.Errorf("step %d: ordering = %d, want %d", i, step.Ordering, i+1)
		}
		if step.UserRole != wantRoles[i] {
			t.Errorf("step %d: role = %s, want %s", i, step.UserRole, wantRoles[i])
		}
		if step.IsActive != (i == 0) {
			t.Errorf("step %d: is_active = %v, only the first step should start active", i, step.IsActive)
		}
	}

	approvers := []model.User{f.frp, f.senior, f.deputy, f.director, f.buxgalter}
	for i, approver := range approvers {
		if got := pendingSteps(t, f.db, doc.ID); len(got) != 1 || got[0].Ordering != i+1 {
			t.Fatalf("before approval %d: pending = %+v, want exactly one row at ordering %d", i+1, got, i+1)
		}

		step, err := f.wfSvc.Approve(context.Background(), doc.ID, approver.ID.String(), "ok")
		if err != nil {
			t.Fatalf("approve step %d by %s: %v", i+1, approver.Name, err)
		}
		if !step.IsSuccess || step.IsActive {
			t.Errorf("approved step %d: success=%v active=%v, want success and inactive", i+1, step.IsSuccess, step.IsActive)
		}
	}

	var final model.Document
	if err := f.db.First(&final, "id = ?", doc.ID).Error; err != nil {
		t.Fatalf("reload document: %v", err)
	}
	if !final.IsFinished {
		t.Error("document should be finished after the last approval")
	}
	if final.Level != 5 {
		t.Errorf("final level = %d, want 5", final.Level)
	}
	if got := pendingSteps(t, f.db, doc.ID); len(got) != 0 {
		t.Errorf("finished document still has %d pending steps", len(got))
	}

	history, err := f.wfSvc.History(context.Background(), doc.ID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	// CREATED + 4x APPROVED + FINISHED
	if len(history) != 6 {
		t.Fatalf("history length = %d, want 6", len(history))
	}
	if history[0].Status != model.StatusCreated {
		t.Errorf("first history entry = %s, want %s", history[0].Status, model.StatusCreated)
	}
	if history[5].Status != model.StatusFinished {
		t.Errorf("last history entry = %s, want %s", history[5].Status, model.StatusFinished)
	}
}

func TestWorkflow_SequentialChainWithoutDeputy(t *testing.T) {
	f := newWorkflowFixture(t)
	mustCreateType(t, f.db, "INVOICE", model.WorkflowSequential, false)

	doc := f.mustCreateDocument(t, "INVOICE", "")

	if len(doc.Steps) != 4 {
		t.Fatalf("expected 4 chain steps without deputy, got %d", len(doc.Steps))
	}
	for _, step := range doc.Steps {
		if step.UserRole == model.RoleDeputyDirector {
			t.Error("deputy director must not appear in a chain that does not require deputy approval")
		}
	}
}

func TestWorkflow_DirectAssignmentChain(t *testing.T) {
	f := newWorkflowFixture(t)
	mustCreateType(t, f.db, "MEMO", model.WorkflowDirect, false)

	doc := f.mustCreateDocument(t, "MEMO", f.director.ID.String())

	if len(doc.Steps) != 2 {
		t.Fatalf("expected 2 steps (approver + buxgalter), got %d", len(doc.Steps))
	}
	if doc.Steps[0].UserID != f.director.ID.String() {
		t.Errorf("first step assigned to %s, want the named approver", doc.Steps[0].UserID)
	}
	if doc.Steps[1].UserRole != model.RoleBuxgalter {
		t.Errorf("closing step role = %s, want %s", doc.Steps[1].UserRole, model.RoleBuxgalter)
	}

	if _, err := f.wfSvc.Approve(context.Background(), doc.ID, f.director.ID.String(), ""); err != nil {
		t.Fatalf("approver step: %v", err)
	}
	if _, err := f.wfSvc.Approve(context.Background(), doc.ID, f.buxgalter.ID.String(), ""); err != nil {
		t.Fatalf("buxgalter step: %v", err)
	}

	var final model.Document
	if err := f.db.First(&final, "id = ?", doc.ID).Error; err != nil {
		t.Fatalf("reload document: %v", err)
	}
	if !final.IsFinished {
		t.Error("direct document should finish after both steps")
	}
}

func TestWorkflow_DirectTypeRequiresApprover(t *testing.T) {
	f := newWorkflowFixture(t)
	mustCreateType(t, f.db, "MEMO", model.WorkflowDirect, false)

	_, err := f.docSvc.CreateDocument(context.Background(), f.creator.ID.String(), CreateDocumentRequest{
		TypeCode:        "MEMO",
		SubscriberTitle: "Subscriber LLC",
		InCharge:        f.frp.ID.String(),
	})
	if err == nil {
		t.Fatal("creating a direct-assignment document without an approver should fail")
	}
}

func TestWorkflow_ApproveOutOfTurnForbidden(t *testing.T) {
	f := newWorkflowFixture(t)
	mustCreateType(t, f.db, "CONTRACT", model.WorkflowSequential, false)

	doc := f.mustCreateDocument(t, "CONTRACT", "")

	// The director's step is queued, not pending: acting now is out of turn.
	_, err := f.wfSvc.Approve(context.Background(), doc.ID, f.director.ID.String(), "")
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("approve out of turn: err = %v, want ErrForbidden", err)
	}

	// The creator never holds a step at all.
	_, err = f.wfSvc.Approve(context.Background(), doc.ID, f.creator.ID.String(), "")
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("approve by outsider: err = %v, want ErrForbidden", err)
	}
}

func TestWorkflow_RoleRoutedStepsAcceptPeers(t *testing.T) {
	f := newWorkflowFixture(t)
	mustCreateType(t, f.db, "CONTRACT", model.WorkflowSequential, false)

	// A second director hired after chain creation may still act on the
	// director step: those steps route by role, not by person.
	otherDirector := mustCreateUser(t, f.db, "Second Director", model.RoleDirector, nil)

	doc := f.mustCreateDocument(t, "CONTRACT", "")
	for _, u := range []model.User{f.frp, f.senior} {
		if _, err := f.wfSvc.Approve(context.Background(), doc.ID, u.ID.String(), ""); err != nil {
			t.Fatalf("approve by %s: %v", u.Name, err)
		}
	}

	if _, err := f.wfSvc.Approve(context.Background(), doc.ID, otherDirector.ID.String(), ""); err != nil {
		t.Fatalf("peer director approval: %v", err)
	}
}

func TestWorkflow_ApproveFinishedDocument(t *testing.T) {
	f := newWorkflowFixture(t)
	mustCreateType(t, f.db, "MEMO", model.WorkflowDirect, false)

	doc := f.mustCreateDocument(t, "MEMO", f.director.ID.String())
	for _, u := range []model.User{f.director, f.buxgalter} {
		if _, err := f.wfSvc.Approve(context.Background(), doc.ID, u.ID.String(), ""); err != nil {
			t.Fatalf("approve by %s: %v", u.Name, err)
		}
	}

	_, err := f.wfSvc.Approve(context.Background(), doc.ID, f.buxgalter.ID.String(), "")
	if !errors.Is(err, ErrNoActiveStep) {
		t.Fatalf("approve on finished document: err = %v, want ErrNoActiveStep", err)
	}
}

func TestWorkflow_ReturnAndResolve(t *testing.T) {
	f := newWorkflowFixture(t)
	mustCreateType(t, f.db, "CONTRACT", model.WorkflowSequential, false)

	doc := f.mustCreateDocument(t, "CONTRACT", "")
	if _, err := f.wfSvc.Approve(context.Background(), doc.ID, f.frp.ID.String(), ""); err != nil {
		t.Fatalf("frp approve: %v", err)
	}

	// The senior sends it back for rework.
	step, err := f.wfSvc.Return(context.Background(), doc.ID, f.senior.ID.String(), "wrong amount")
	if err != nil {
		t.Fatalf("return: %v", err)
	}
	if step.Ordering != 2 {
		t.Errorf("returned step ordering = %d, want 2", step.Ordering)
	}

	// No pending step while the return is open.
	if got := pendingSteps(t, f.db, doc.ID); len(got) != 0 {
		t.Fatalf("open return left %d pending steps", len(got))
	}

	var ret model.DocumentReturned
	if err := f.db.First(&ret, "document_id = ?", doc.ID).Error; err != nil {
		t.Fatalf("load return record: %v", err)
	}
	if ret.ToID != f.frp.ID {
		t.Errorf("return recipient = %s, want the chain-start frp %s", ret.ToID, f.frp.ID)
	}
	if ret.IsSolved {
		t.Error("freshly created return must not be solved")
	}

	// Approving while the return is open hits the no-active-step guard.
	if _, err := f.wfSvc.Approve(context.Background(), doc.ID, f.senior.ID.String(), ""); !errors.Is(err, ErrNoActiveStep) {
		t.Fatalf("approve with open return: err = %v, want ErrNoActiveStep", err)
	}

	// Only the recipient may resolve.
	if _, err := f.wfSvc.Resolve(context.Background(), doc.ID, f.director.ID.String(), "fixed"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("resolve by non-recipient: err = %v, want ErrForbidden", err)
	}

	reopened, err := f.wfSvc.Resolve(context.Background(), doc.ID, f.frp.ID.String(), "fixed")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	// Resume policy: the step that raised the return comes back pending.
	if reopened.Ordering != 2 || !reopened.IsActive || reopened.IsSuccess {
		t.Errorf("reopened step = %+v, want ordering 2 pending", reopened)
	}

	if err := f.db.First(&ret, "id = ?", ret.ID).Error; err != nil {
		t.Fatalf("reload return record: %v", err)
	}
	if !ret.IsSolved {
		t.Error("resolved return should be marked solved")
	}

	// The RETURNED stamp drops out of the visible trail once resolved.
	var activeReturned int64
	if err := f.db.Model(&model.DocumentStatusLog{}).
		Where("document_id = ? AND status = ? AND is_active = ?", doc.ID, model.StatusReturned, true).
		Count(&activeReturned).Error; err != nil {
		t.Fatalf("count returned stamps: %v", err)
	}
	if activeReturned != 0 {
		t.Errorf("found %d active RETURNED stamps after resolve, want 0", activeReturned)
	}

	// Resolving again finds no open return.
	if _, err := f.wfSvc.Resolve(context.Background(), doc.ID, f.frp.ID.String(), ""); !errors.Is(err, ErrConflict) {
		t.Fatalf("second resolve: err = %v, want ErrConflict", err)
	}

	// The chain continues from the reopened step to the end.
	for _, u := range []model.User{f.senior, f.director, f.buxgalter} {
		if _, err := f.wfSvc.Approve(context.Background(), doc.ID, u.ID.String(), ""); err != nil {
			t.Fatalf("approve by %s after resolve: %v", u.Name, err)
		}
	}
	var final model.Document
	if err := f.db.First(&final, "id = ?", doc.ID).Error; err != nil {
		t.Fatalf("reload document: %v", err)
	}
	if !final.IsFinished {
		t.Error("document should finish after the resumed chain completes")
	}
}

func TestWorkflow_InstantiateRequiresSenior(t *testing.T) {
	f := newWorkflowFixture(t)
	mustCreateType(t, f.db, "CONTRACT", model.WorkflowSequential, false)

	orphan := mustCreateUser(t, f.db, "Orphan FRP", model.RoleFRP, nil)

	_, err := f.docSvc.CreateDocument(context.Background(), f.creator.ID.String(), CreateDocumentRequest{
		TypeCode:        "CONTRACT",
		SubscriberTitle: "Subscriber LLC",
		InCharge:        orphan.ID.String(),
	})
	if err == nil {
		t.Fatal("sequential chain for an in-charge user without a senior should fail")
	}

	// The failed transaction must not leave a document behind.
	var count int64
	if err := f.db.Model(&model.Document{}).Count(&count).Error; err != nil {
		t.Fatalf("count documents: %v", err)
	}
	if count != 0 {
		t.Errorf("found %d documents after rolled-back creation, want 0", count)
	}
}

func TestWorkflow_DocumentNumbersAreSequential(t *testing.T) {
	f := newWorkflowFixture(t)
	mustCreateType(t, f.db, "CONTRACT", model.WorkflowSequential, false)

	first := f.mustCreateDocument(t, "CONTRACT", "")
	second := f.mustCreateDocument(t, "CONTRACT", "")

	if first.Number == second.Number {
		t.Fatalf("duplicate document number %s", first.Number)
	}
	if len(first.Number) != len("DOC-20060102-00001") {
		t.Errorf("unexpected number format: %s", first.Number)
	}
}
