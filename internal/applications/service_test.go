package applications_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"jobportal/board-service/internal/applications"
	"jobportal/board-service/internal/apperr"
	"jobportal/board-service/internal/auth"
	"jobportal/board-service/internal/domain"
	"jobportal/board-service/internal/events"
	"jobportal/board-service/internal/store/memory"
)

const (
	recruiter = "rec-1"
	other     = "rec-2"
	student   = "stu-1"
	jobID     = "job-1"
)

func setup(t *testing.T, enforce bool) (*applications.Service, *memory.Store, *events.Recorder) {
	t.Helper()
	ctx := context.Background()
	st := memory.New()
	for _, u := range []domain.User{
		{ID: recruiter, Email: "r1@example.com", Fullname: "Rita", Role: domain.RoleRecruiter},
		{ID: other, Email: "r2@example.com", Role: domain.RoleRecruiter},
		{ID: student, Email: "s@example.com", Fullname: "Sam", PasswordHash: "secret-hash", Role: domain.RoleStudent},
	} {
		if err := st.CreateUser(ctx, &u); err != nil {
			t.Fatal(err)
		}
	}
	if err := st.CreateCompany(ctx, &domain.Company{ID: "co-1", Name: "Acme", UserID: recruiter}); err != nil {
		t.Fatal(err)
	}
	if err := st.CreateJob(ctx, &domain.Job{
		ID: jobID, Title: "Go Developer", CompanyID: "co-1", CreatedBy: recruiter, CreatedAt: time.Now(),
	}); err != nil {
		t.Fatal(err)
	}
	rec := &events.Recorder{}
	return applications.NewService(st, auth.NewRoleGuard(st, enforce), rec), st, rec
}

// ── Apply ──────────────────────────────────────────────────────────────────

func TestApply_CreatesPending(t *testing.T) {
	svc, _, rec := setup(t, true)
	app, err := svc.Apply(context.Background(), student, jobID)
	if err != nil {
		t.Fatalf("Apply() unexpected error: %v", err)
	}
	if app.Status != domain.StatusPending {
		t.Errorf("Status = %s, want pending", app.Status)
	}
	evs := rec.Events()
	if len(evs) != 1 || evs[0].Type != events.ApplicationCreated || evs[0].Fields["recruiterId"] != recruiter {
		t.Errorf("events = %+v, want one ApplicationCreated for %s", evs, recruiter)
	}
}

func TestApply_TwiceConflicts(t *testing.T) {
	svc, st, _ := setup(t, true)
	ctx := context.Background()
	if _, err := svc.Apply(ctx, student, jobID); err != nil {
		t.Fatal(err)
	}
	_, err := svc.Apply(ctx, student, jobID)
	if apperr.KindOf(err) != apperr.KindConflict {
		t.Fatalf("second Apply kind = %s, want conflict", apperr.KindOf(err))
	}
	if msg, _ := apperr.Message(err); msg != "You have already applied for this job" {
		t.Errorf("message = %q", msg)
	}
	apps, _ := st.ApplicationsByJob(ctx, jobID)
	if len(apps) != 1 {
		t.Errorf("applications for job = %d, want 1", len(apps))
	}
}

func TestApply_ConcurrentDuplicatesOneWins(t *testing.T) {
	svc, st, _ := setup(t, true)
	ctx := context.Background()

	const n = 16
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		ok, confl int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Apply(ctx, student, jobID)
			mu.Lock()
			defer mu.Unlock()
			switch apperr.KindOf(err) {
			case apperr.KindConflict:
				confl++
			default:
				if err == nil {
					ok++
				}
			}
		}()
	}
	wg.Wait()

	if ok != 1 || confl != n-1 {
		t.Errorf("successes/conflicts = %d/%d, want 1/%d", ok, confl, n-1)
	}
	apps, _ := st.ApplicationsByJob(ctx, jobID)
	if len(apps) != 1 {
		t.Errorf("stored applications = %d, want 1", len(apps))
	}
}

func TestApply_UnknownJob(t *testing.T) {
	svc, _, _ := setup(t, true)
	if _, err := svc.Apply(context.Background(), student, "missing"); apperr.KindOf(err) != apperr.KindNotFound {
		t.Errorf("Apply(missing job) kind = %s, want not_found", apperr.KindOf(err))
	}
}

func TestAppliedJobs_ExpandsJobAndCompany(t *testing.T) {
	svc, _, _ := setup(t, true)
	ctx := context.Background()
	if _, err := svc.Apply(ctx, student, jobID); err != nil {
		t.Fatal(err)
	}
	apps, err := svc.AppliedJobs(ctx, student)
	if err != nil {
		t.Fatalf("AppliedJobs() unexpected error: %v", err)
	}
	if len(apps) != 1 || apps[0].Job == nil || apps[0].Job.Company == nil || apps[0].Job.Company.Name != "Acme" {
		t.Errorf("AppliedJobs = %+v, want one with job and company", apps)
	}
}

// ── Applicants ─────────────────────────────────────────────────────────────

func TestApplicants(t *testing.T) {
	svc, _, _ := setup(t, true)
	ctx := context.Background()
	if _, err := svc.Apply(ctx, student, jobID); err != nil {
		t.Fatal(err)
	}

	job, err := svc.Applicants(ctx, recruiter, jobID)
	if err != nil {
		t.Fatalf("Applicants() unexpected error: %v", err)
	}
	if len(job.Applications) != 1 {
		t.Fatalf("applications = %d, want 1", len(job.Applications))
	}
	a := job.Applications[0].Applicant
	if a == nil || a.Fullname != "Sam" || a.PasswordHash != "" {
		t.Errorf("applicant = %+v, want Sam without password hash", a)
	}

	cases := []struct {
		caller string
		want   apperr.Kind
	}{
		{student, apperr.KindForbidden},
		{other, apperr.KindForbidden},
		{"ghost", apperr.KindUnauthenticated},
	}
	for _, c := range cases {
		if _, err := svc.Applicants(ctx, c.caller, jobID); apperr.KindOf(err) != c.want {
			t.Errorf("Applicants(caller=%s) kind = %s, want %s", c.caller, apperr.KindOf(err), c.want)
		}
	}
}

func TestApplicants_GuardOff(t *testing.T) {
	svc, _, _ := setup(t, false)
	if _, err := svc.Applicants(context.Background(), student, jobID); err != nil {
		t.Errorf("Applicants with guard off: unexpected error %v", err)
	}
}

// ── UpdateStatus ───────────────────────────────────────────────────────────

func TestUpdateStatus_Transitions(t *testing.T) {
	svc, _, rec := setup(t, true)
	ctx := context.Background()
	app, _ := svc.Apply(ctx, student, jobID)

	if _, err := svc.UpdateStatus(ctx, recruiter, app.ID, "hired"); apperr.KindOf(err) != apperr.KindValidation {
		t.Errorf("UpdateStatus(hired) kind = %s, want validation", apperr.KindOf(err))
	}
	if _, err := svc.UpdateStatus(ctx, recruiter, app.ID, "pending"); apperr.KindOf(err) != apperr.KindValidation {
		t.Errorf("UpdateStatus(pending → pending) kind = %s, want validation", apperr.KindOf(err))
	}

	got, err := svc.UpdateStatus(ctx, recruiter, app.ID, " Accepted ")
	if err != nil {
		t.Fatalf("UpdateStatus(Accepted) unexpected error: %v", err)
	}
	if got.Status != domain.StatusAccepted {
		t.Errorf("Status = %s, want accepted", got.Status)
	}
	if n := rec.Count(events.ApplicationStatusChanged); n != 1 {
		t.Errorf("status events = %d, want 1", n)
	}

	_, err = svc.UpdateStatus(ctx, recruiter, app.ID, "rejected")
	if apperr.KindOf(err) != apperr.KindValidation {
		t.Errorf("UpdateStatus(accepted → rejected) kind = %s, want validation", apperr.KindOf(err))
	}
	if msg, _ := apperr.Message(err); msg != "Application was already accepted" {
		t.Errorf("UpdateStatus(accepted → rejected) message = %q", msg)
	}
}

func TestUpdateStatus_OwnershipAndMissing(t *testing.T) {
	svc, _, _ := setup(t, true)
	ctx := context.Background()
	app, _ := svc.Apply(ctx, student, jobID)

	if _, err := svc.UpdateStatus(ctx, other, app.ID, "accepted"); apperr.KindOf(err) != apperr.KindForbidden {
		t.Errorf("UpdateStatus by other recruiter kind = %s, want forbidden", apperr.KindOf(err))
	}
	if _, err := svc.UpdateStatus(ctx, recruiter, "missing", "accepted"); apperr.KindOf(err) != apperr.KindNotFound {
		t.Errorf("UpdateStatus(missing) kind = %s, want not_found", apperr.KindOf(err))
	}
	if _, err := svc.UpdateStatus(ctx, recruiter, app.ID, ""); apperr.KindOf(err) != apperr.KindValidation {
		t.Errorf("UpdateStatus(empty) kind = %s, want validation", apperr.KindOf(err))
	}
}

func TestUpdateStatus_ConcurrentReviewersOneWins(t *testing.T) {
	svc, _, _ := setup(t, false)
	ctx := context.Background()
	app, _ := svc.Apply(ctx, student, jobID)

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for _, s := range []string{"accepted", "rejected", "accepted", "rejected"} {
		wg.Add(1)
		go func(s string) {
			defer wg.Done()
			if _, err := svc.UpdateStatus(ctx, recruiter, app.ID, s); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}(s)
	}
	wg.Wait()
	if wins != 1 {
		t.Errorf("successful reviews = %d, want 1", wins)
	}
}
