package service

import (
	"context"
	"testing"

	"backend/internal/model"
	"backend/internal/repository"
)

func TestStatistics_Dashboards(t *testing.T) {
	f := newWorkflowFixture(t)
	mustCreateType(t, f.db, "CONTRACT", model.WorkflowSequential, false)

	first := f.mustCreateDocument(t, "CONTRACT", "")
	f.mustCreateDocument(t, "CONTRACT", "")

	// Walk one document to the end so finished/unfinished split.
	for _, u := range []model.User{f.frp, f.senior, f.director, f.buxgalter} {
		if _, err := f.wfSvc.Approve(context.Background(), first.ID, u.ID.String(), ""); err != nil {
			t.Fatalf("approve by %s: %v", u.Name, err)
		}
	}

	svc := NewStatisticsService(f.db, repository.NewUserRepository(f.db))

	t.Run("oversight", func(t *testing.T) {
		res, err := svc.Dashboard(context.Background(), f.director.ID.String())
		if err != nil {
			t.Fatalf("dashboard: %v", err)
		}
		if res.Role != model.RoleDirector {
			t.Errorf("role = %s", res.Role)
		}
		if res.TotalDocuments != 2 || res.FinishedTotal != 1 || res.UnfinishedTotal != 1 {
			t.Errorf("counts = total %d finished %d unfinished %d, want 2/1/1",
				res.TotalDocuments, res.FinishedTotal, res.UnfinishedTotal)
		}
		// The director's turn has not come on the unfinished document.
		if res.PendingForMe != 0 {
			t.Errorf("pending = %d, want 0", res.PendingForMe)
		}
	})

	t.Run("accounting", func(t *testing.T) {
		res, err := svc.Dashboard(context.Background(), f.buxgalter.ID.String())
		if err != nil {
			t.Fatalf("dashboard: %v", err)
		}
		if res.FinishedTotal != 1 {
			t.Errorf("finished = %d, want 1", res.FinishedTotal)
		}
		if res.TotalAmountFixed == "" || res.TotalAmountFixed == "0" {
			t.Errorf("finished amount sum = %q, want the finished document total", res.TotalAmountFixed)
		}
	})

	t.Run("warehouse", func(t *testing.T) {
		res, err := svc.Dashboard(context.Background(), f.frp.ID.String())
		if err != nil {
			t.Fatalf("dashboard: %v", err)
		}
		// Both documents name the frp as in-charge.
		if res.MyDocuments != 2 {
			t.Errorf("my documents = %d, want 2", res.MyDocuments)
		}
		// The unfinished document still waits on the frp's first step.
		if res.PendingForMe != 1 {
			t.Errorf("pending = %d, want 1", res.PendingForMe)
		}
		if res.ReturnedToMe != 0 {
			t.Errorf("returned = %d, want 0", res.ReturnedToMe)
		}
	})

	t.Run("plain", func(t *testing.T) {
		res, err := svc.Dashboard(context.Background(), f.creator.ID.String())
		if err != nil {
			t.Fatalf("dashboard: %v", err)
		}
		if res.MyDocuments != 2 || res.TotalDocuments != 2 {
			t.Errorf("my documents = %d, want 2", res.MyDocuments)
		}
	})

	t.Run("returned count", func(t *testing.T) {
		second := f.mustCreateDocument(t, "CONTRACT", "")
		if _, err := f.wfSvc.Approve(context.Background(), second.ID, f.frp.ID.String(), ""); err != nil {
			t.Fatalf("approve: %v", err)
		}
		if _, err := f.wfSvc.Return(context.Background(), second.ID, f.senior.ID.String(), "redo"); err != nil {
			t.Fatalf("return: %v", err)
		}

		res, err := svc.Dashboard(context.Background(), f.frp.ID.String())
		if err != nil {
			t.Fatalf("dashboard: %v", err)
		}
		if res.ReturnedToMe != 1 {
			t.Errorf("returned = %d, want 1", res.ReturnedToMe)
		}
	})
}
