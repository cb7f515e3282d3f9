package saved_test

import (
	"context"
	"testing"
	"time"

	"jobportal/board-service/internal/apperr"
	"jobportal/board-service/internal/domain"
	"jobportal/board-service/internal/saved"
	"jobportal/board-service/internal/store/memory"
)

func setup(t *testing.T, jobIDs ...string) (*saved.Service, *memory.Store) {
	t.Helper()
	ctx := context.Background()
	st := memory.New()
	if err := st.CreateUser(ctx, &domain.User{ID: "u1", Email: "u1@example.com", Role: domain.RoleStudent}); err != nil {
		t.Fatal(err)
	}
	if err := st.CreateCompany(ctx, &domain.Company{ID: "co", Name: "Acme", UserID: "u1"}); err != nil {
		t.Fatal(err)
	}
	for _, id := range jobIDs {
		if err := st.CreateJob(ctx, &domain.Job{ID: id, Title: id, CompanyID: "co", CreatedBy: "u1", CreatedAt: time.Now()}); err != nil {
			t.Fatal(err)
		}
	}
	return saved.NewService(st), st
}

func TestSave_TwiceConflicts(t *testing.T) {
	svc, _ := setup(t, "j1")
	ctx := context.Background()
	if err := svc.Save(ctx, "u1", "j1"); err != nil {
		t.Fatalf("Save() unexpected error: %v", err)
	}
	err := svc.Save(ctx, "u1", "j1")
	if msg, _ := apperr.Message(err); apperr.KindOf(err) != apperr.KindConflict || msg != "Job already saved" {
		t.Errorf("second Save() = %v, want Conflict %q", err, "Job already saved")
	}
	if !saved.IsAlreadySaved(err) {
		t.Errorf("IsAlreadySaved(%v) = false, want true", err)
	}
	jobs, _ := svc.List(ctx, "u1")
	if len(jobs) != 1 {
		t.Errorf("saved jobs = %d, want 1", len(jobs))
	}
}

func TestSave_UnknownJob(t *testing.T) {
	svc, _ := setup(t)
	if err := svc.Save(context.Background(), "u1", "ghost"); apperr.KindOf(err) != apperr.KindNotFound {
		t.Errorf("Save(ghost) kind = %s, want not_found", apperr.KindOf(err))
	}
	if err := svc.Save(context.Background(), "u1", ""); apperr.KindOf(err) != apperr.KindValidation {
		t.Errorf("Save(\"\") kind = %s, want validation", apperr.KindOf(err))
	}
}

func TestUnsave_Idempotent(t *testing.T) {
	svc, _ := setup(t, "j1")
	ctx := context.Background()
	_ = svc.Save(ctx, "u1", "j1")
	for i := 0; i < 2; i++ {
		if err := svc.Unsave(ctx, "u1", "j1"); err != nil {
			t.Errorf("Unsave #%d: %v", i+1, err)
		}
	}
	if jobs, _ := svc.List(ctx, "u1"); len(jobs) != 0 {
		t.Errorf("saved jobs after unsave = %d, want 0", len(jobs))
	}
}

func TestList_NewestSaveFirstWithCompany(t *testing.T) {
	svc, _ := setup(t, "j1", "j2", "j3")
	ctx := context.Background()
	for _, id := range []string{"j2", "j1", "j3"} {
		if err := svc.Save(ctx, "u1", id); err != nil {
			t.Fatal(err)
		}
	}
	jobs, err := svc.List(ctx, "u1")
	if err != nil {
		t.Fatalf("List() unexpected error: %v", err)
	}
	want := []string{"j3", "j1", "j2"}
	if len(jobs) != len(want) {
		t.Fatalf("List() = %d jobs, want %d", len(jobs), len(want))
	}
	for i, j := range jobs {
		if j.ID != want[i] {
			t.Errorf("List()[%d] = %s, want %s", i, j.ID, want[i])
		}
		if j.Company == nil {
			t.Errorf("job %s has no company", j.ID)
		}
	}
}
