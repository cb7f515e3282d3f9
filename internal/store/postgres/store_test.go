package postgres_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"jobportal/board-service/internal/applications"
	"jobportal/board-service/internal/auth"
	"jobportal/board-service/internal/company"
	"jobportal/board-service/internal/domain"
	"jobportal/board-service/internal/jobs"
	"jobportal/board-service/internal/media"
	"jobportal/board-service/internal/profile"
	"jobportal/board-service/internal/saved"
	"jobportal/board-service/internal/store/postgres"
)

var (
	_ auth.Store         = (*postgres.Store)(nil)
	_ jobs.Store         = (*postgres.Store)(nil)
	_ applications.Store = (*postgres.Store)(nil)
	_ saved.Store        = (*postgres.Store)(nil)
	_ company.Store      = (*postgres.Store)(nil)
	_ profile.Store      = (*postgres.Store)(nil)
	_ media.BlobStore    = (*postgres.Store)(nil)
)

// openStore connects to TEST_DATABASE_URL or skips the test.
func openStore(t *testing.T) *postgres.Store {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		t.Fatalf("pgxpool.New: %v", err)
	}
	t.Cleanup(pool.Close)
	st := postgres.New(pool)
	if err := st.Migrate(ctx); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return st
}

func TestStore_Lifecycle(t *testing.T) {
	st := openStore(t)
	ctx := context.Background()
	suffix := uuid.NewString()
	now := time.Now().UTC().Truncate(time.Microsecond)

	rec := &domain.User{ID: uuid.NewString(), Fullname: "Rex", Email: "rex-" + suffix + "@x", PasswordHash: "h", Role: domain.RoleRecruiter, CreatedAt: now, UpdatedAt: now}
	stu := &domain.User{ID: uuid.NewString(), Fullname: "Sam", Email: "sam-" + suffix + "@x", PasswordHash: "h", Role: domain.RoleStudent, CreatedAt: now, UpdatedAt: now}
	for _, u := range []*domain.User{rec, stu} {
		if err := st.CreateUser(ctx, u); err != nil {
			t.Fatalf("CreateUser: %v", err)
		}
	}
	dup := *stu
	dup.ID = uuid.NewString()
	if err := st.CreateUser(ctx, &dup); !errors.Is(err, domain.ErrDuplicate) {
		t.Errorf("CreateUser(dup email) = %v, want ErrDuplicate", err)
	}

	co := &domain.Company{ID: uuid.NewString(), Name: "Acme " + suffix, UserID: rec.ID, CreatedAt: now, UpdatedAt: now}
	if err := st.CreateCompany(ctx, co); err != nil {
		t.Fatalf("CreateCompany: %v", err)
	}

	job := &domain.Job{
		ID: uuid.NewString(), Title: "100% remote " + suffix, Description: "d",
		Requirements: []string{"Go", "SQL"}, Salary: 50000, Location: "x", JobType: "y",
		ExperienceLevel: 2, Position: 3, CompanyID: co.ID, CreatedBy: rec.ID, CreatedAt: now,
	}
	if err := st.CreateJob(ctx, job); err != nil {
		t.Fatalf("CreateJob: %v", err)
	}

	found, err := st.SearchJobs(ctx, "100% remote "+suffix)
	if err != nil || len(found) != 1 || found[0].Company == nil || found[0].Position != 3 {
		t.Errorf("SearchJobs(literal %%) = %+v, %v", found, err)
	}
	if _, err := st.JobByID(ctx, "not-a-uuid"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("JobByID(malformed) = %v, want ErrNotFound", err)
	}

	app := &domain.Application{ID: uuid.NewString(), JobID: job.ID, ApplicantID: stu.ID, Status: domain.StatusPending, CreatedAt: now, UpdatedAt: now}
	if err := st.CreateApplication(ctx, app); err != nil {
		t.Fatalf("CreateApplication: %v", err)
	}
	again := *app
	again.ID = uuid.NewString()
	if err := st.CreateApplication(ctx, &again); !errors.Is(err, domain.ErrDuplicate) {
		t.Errorf("CreateApplication(same pair) = %v, want ErrDuplicate", err)
	}

	if _, err := st.UpdateApplicationStatus(ctx, app.ID, domain.StatusPending, domain.StatusAccepted, now); err != nil {
		t.Fatalf("UpdateApplicationStatus: %v", err)
	}
	if _, err := st.UpdateApplicationStatus(ctx, app.ID, domain.StatusPending, domain.StatusRejected, now); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("stale UpdateApplicationStatus = %v, want ErrNotFound", err)
	}

	if err := st.AddSavedJob(ctx, stu.ID, job.ID, now); err != nil {
		t.Fatalf("AddSavedJob: %v", err)
	}
	if err := st.AddSavedJob(ctx, stu.ID, job.ID, now); !errors.Is(err, domain.ErrDuplicate) {
		t.Errorf("AddSavedJob(again) = %v, want ErrDuplicate", err)
	}
	if err := st.AddSavedJob(ctx, stu.ID, uuid.NewString(), now); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("AddSavedJob(unknown job) = %v, want ErrNotFound", err)
	}
	if list, err := st.SavedJobs(ctx, stu.ID); err != nil || len(list) != 1 {
		t.Errorf("SavedJobs = %d, %v", len(list), err)
	}
}

func TestStore_ReuploadRefreshesBlobAge(t *testing.T) {
	st := openStore(t)
	ctx := context.Background()
	id := "blob-" + uuid.NewString()
	_ = st.PutBlob(ctx, &domain.Blob{ID: id, ContentType: "image/png", Size: 1, Data: []byte{1}, CreatedAt: time.Now().Add(-48 * time.Hour)})
	if err := st.PutBlob(ctx, &domain.Blob{ID: id, ContentType: "image/png", Size: 1, Data: []byte{1}, CreatedAt: time.Now()}); err != nil {
		t.Fatalf("PutBlob(again): %v", err)
	}
	if _, err := st.DeleteUnreferencedBlobs(ctx, time.Now().Add(-24*time.Hour)); err != nil {
		t.Fatalf("DeleteUnreferencedBlobs: %v", err)
	}
	if _, err := st.Blob(ctx, id); err != nil {
		t.Errorf("re-uploaded blob removed: %v", err)
	}
}
