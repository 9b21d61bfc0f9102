package service

import (
	"context"
	"testing"

	"backend/internal/model"
)

func TestDocumentService_ListScoping(t *testing.T) {
	f := newWorkflowFixture(t)
	mustCreateType(t, f.db, "CONTRACT", model.WorkflowSequential, false)

	mine := f.mustCreateDocument(t, "CONTRACT", "")

	// A document created by someone else, pending on the same frp.
	otherCreator := mustCreateUser(t, f.db, "Other Operator", model.RoleUser, nil)
	other, err := f.docSvc.CreateDocument(context.Background(), otherCreator.ID.String(), CreateDocumentRequest{
		TypeCode:        "CONTRACT",
		SubscriberTitle: "Other LLC",
		InCharge:        f.frp.ID.String(),
	})
	if err != nil {
		t.Fatalf("create other document: %v", err)
	}

	// scope=mine sees only the caller's documents.
	docs, total, err := f.docSvc.ListDocuments(context.Background(), f.creator.ID.String(), DocumentListFilter{Scope: "mine"})
	if err != nil {
		t.Fatalf("list mine: %v", err)
	}
	if total != 1 || len(docs) != 1 || docs[0].ID != mine.ID {
		t.Fatalf("scope=mine returned %d docs (total %d), want just %s", len(docs), total, mine.Number)
	}

	// scope=pending for the frp sees both: each chain starts at the frp step.
	_, total, err = f.docSvc.ListDocuments(context.Background(), f.frp.ID.String(), DocumentListFilter{Scope: "pending"})
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if total != 2 {
		t.Fatalf("scope=pending for frp: total = %d, want 2", total)
	}

	// After the frp approves one, it stops being pending for them.
	if _, err := f.wfSvc.Approve(context.Background(), other.ID, f.frp.ID.String(), ""); err != nil {
		t.Fatalf("approve: %v", err)
	}
	docs, total, err = f.docSvc.ListDocuments(context.Background(), f.frp.ID.String(), DocumentListFilter{Scope: "pending"})
	if err != nil {
		t.Fatalf("list pending after approve: %v", err)
	}
	if total != 1 || docs[0].ID != mine.ID {
		t.Fatalf("pending after approve: total = %d, want only %s", total, mine.Number)
	}

	// That same document is now pending for the senior.
	_, total, err = f.docSvc.ListDocuments(context.Background(), f.senior.ID.String(), DocumentListFilter{Scope: "pending"})
	if err != nil {
		t.Fatalf("list pending for senior: %v", err)
	}
	if total != 1 {
		t.Fatalf("pending for senior: total = %d, want 1", total)
	}

	// Default scope: plain users see their own, oversight roles see everything.
	_, total, err = f.docSvc.ListDocuments(context.Background(), f.creator.ID.String(), DocumentListFilter{})
	if err != nil {
		t.Fatalf("default list for creator: %v", err)
	}
	if total != 1 {
		t.Fatalf("plain user default scope: total = %d, want own document only", total)
	}

	_, total, err = f.docSvc.ListDocuments(context.Background(), f.director.ID.String(), DocumentListFilter{})
	if err != nil {
		t.Fatalf("default list for director: %v", err)
	}
	if total != 2 {
		t.Fatalf("director default scope: total = %d, want all documents", total)
	}
}

func TestDocumentService_GetDocumentAttachesChain(t *testing.T) {
	f := newWorkflowFixture(t)
	mustCreateType(t, f.db, "CONTRACT", model.WorkflowSequential, true)

	created := f.mustCreateDocument(t, "CONTRACT", "")

	doc, err := f.docSvc.GetDocument(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("get document: %v", err)
	}
	if doc.TypeCode != "CONTRACT" {
		t.Errorf("type code = %s", doc.TypeCode)
	}
	if doc.TotalAmount != "1250000.50" {
		t.Errorf("total amount = %s, want 1250000.50", doc.TotalAmount)
	}
	if len(doc.Steps) != 5 {
		t.Errorf("steps = %d, want the full deputy chain", len(doc.Steps))
	}

	if _, err := f.docSvc.GetDocument(context.Background(), "not-a-uuid"); err == nil {
		t.Error("malformed id must fail")
	}
}
