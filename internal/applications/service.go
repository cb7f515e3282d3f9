// Package applications is the application ledger: students apply to jobs,
// recruiters review the applicants of their own jobs.
//
// It is transport-agnostic: used by the HTTP api package and by the gRPC
// review server.
package applications

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"jobportal/board-service/internal/apperr"
	"jobportal/board-service/internal/auth"
	"jobportal/board-service/internal/domain"
	"jobportal/board-service/internal/events"
)

// Store is the persistence port used by the ledger.
type Store interface {
	JobByID(ctx context.Context, id string) (*domain.Job, error)
	FindApplication(ctx context.Context, jobID, applicantID string) (*domain.Application, error)
	// CreateApplication returns domain.ErrDuplicate when the
	// (job, applicant) pair already exists.
	CreateApplication(ctx context.Context, app *domain.Application) error
	ApplicationByID(ctx context.Context, id string) (*domain.Application, error)
	ApplicationsByJob(ctx context.Context, jobID string) ([]domain.Application, error)
	ApplicationsByApplicant(ctx context.Context, applicantID string) ([]domain.Application, error)
	// UpdateApplicationStatus moves id from → to only while the stored status
	// still equals from; otherwise it returns domain.ErrNotFound.
	UpdateApplicationStatus(ctx context.Context, id string, from, to domain.Status, at time.Time) (*domain.Application, error)
}

// ─── Service ─────────────────────────────────────────────────────────────────

// Service encapsulates all ledger business logic.
type Service struct {
	store  Store
	guard  *auth.RoleGuard
	events events.Emitter
	now    func() time.Time
}

// NewService returns a configured Service.
func NewService(store Store, guard *auth.RoleGuard, emitter events.Emitter) *Service {
	if emitter == nil {
		emitter = events.Nop{}
	}
	return &Service{store: store, guard: guard, events: emitter, now: time.Now}
}

// Apply records applicantID's application to jobID at pending status.
// Returns a NotFound error when the job is missing and a Conflict error when
// the pair already exists.
func (s *Service) Apply(ctx context.Context, applicantID, jobID string) (*domain.Application, error) {
	if strings.TrimSpace(jobID) == "" {
		return nil, apperr.Validation("Job id is required.")
	}

	job, err := s.store.JobByID(ctx, jobID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, apperr.NotFound("Job not found")
	}
	if err != nil {
		return nil, apperr.Internal(err, "load job")
	}

	// Friendly fast path; the unique constraint below is what actually
	// guarantees at most one application per pair.
	if _, err := s.store.FindApplication(ctx, job.ID, applicantID); err == nil {
		return nil, errAlreadyApplied
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, apperr.Internal(err, "check existing application")
	}

	now := s.now().UTC()
	app := &domain.Application{
		ID:          uuid.NewString(),
		JobID:       job.ID,
		ApplicantID: applicantID,
		Status:      domain.StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.CreateApplication(ctx, app); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, errAlreadyApplied
		}
		return nil, apperr.Internal(err, "create application")
	}

	s.events.Emit(ctx, events.ApplicationCreated, map[string]string{
		"applicationId": app.ID,
		"jobId":         job.ID,
		"applicantId":   applicantID,
		"recruiterId":   job.CreatedBy,
	})
	return app, nil
}

// AppliedJobs returns the caller's applications, newest first, with each job
// and its company expanded. Applications whose job no longer resolves are
// skipped.
func (s *Service) AppliedJobs(ctx context.Context, applicantID string) ([]domain.Application, error) {
	apps, err := s.store.ApplicationsByApplicant(ctx, applicantID)
	if err != nil {
		return nil, apperr.Internal(err, "list applications")
	}
	out := apps[:0]
	for _, a := range apps {
		if a.Job != nil {
			out = append(out, a)
		}
	}
	return out, nil
}

// Applicants returns jobID with every application and applicant profile.
// When role enforcement is on, only the job's creator may call it.
func (s *Service) Applicants(ctx context.Context, callerID, jobID string) (*domain.Job, error) {
	job, err := s.ownedJob(ctx, callerID, jobID, "view applicants")
	if err != nil {
		return nil, err
	}

	apps, err := s.store.ApplicationsByJob(ctx, job.ID)
	if err != nil {
		return nil, apperr.Internal(err, "list applicants")
	}
	job.Applications = apps
	return job, nil
}

// UpdateStatus is the reviewer action moving an application out of pending.
// rawStatus is matched case-insensitively.
func (s *Service) UpdateStatus(ctx context.Context, callerID, appID, rawStatus string) (*domain.Application, error) {
	if strings.TrimSpace(rawStatus) == "" {
		return nil, apperr.Validation("status is required")
	}
	newStatus, err := domain.ParseStatus(strings.ToLower(strings.TrimSpace(rawStatus)))
	if err != nil {
		return nil, apperr.Validation("%s", err.Error())
	}

	app, err := s.store.ApplicationByID(ctx, appID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, apperr.NotFound("Application not found.")
	}
	if err != nil {
		return nil, apperr.Internal(err, "load application")
	}

	if _, err := s.ownedJob(ctx, callerID, app.JobID, "review applications"); err != nil {
		return nil, err
	}

	if domain.IsTerminal(app.Status) {
		return nil, apperr.Validation("Application was already %s", app.Status)
	}
	if !domain.IsTransitionAllowed(app.Status, newStatus) {
		return nil, apperr.Validation("transition %s → %s is not allowed", app.Status, newStatus)
	}

	updated, err := s.store.UpdateApplicationStatus(ctx, app.ID, app.Status, newStatus, s.now().UTC())
	if errors.Is(err, domain.ErrNotFound) {
		// Someone else reviewed it between the read and the write.
		return nil, apperr.Conflict("Application was already reviewed")
	}
	if err != nil {
		return nil, apperr.Internal(err, "update application status")
	}

	s.events.Emit(ctx, events.ApplicationStatusChanged, map[string]string{
		"applicationId": app.ID,
		"jobId":         app.JobID,
		"applicantId":   app.ApplicantID,
		"from":          string(app.Status),
		"to":            string(newStatus),
	})
	return updated, nil
}

// ownedJob loads jobID and, under role enforcement, checks that callerID is a
// recruiter who created it.
func (s *Service) ownedJob(ctx context.Context, callerID, jobID, action string) (*domain.Job, error) {
	if err := s.guard.RequireRecruiter(ctx, callerID, action); err != nil {
		return nil, err
	}

	job, err := s.store.JobByID(ctx, jobID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, apperr.NotFound("Job not found.")
	}
	if err != nil {
		return nil, apperr.Internal(err, "load job")
	}

	if s.guard.Enforced() && job.CreatedBy != callerID {
		return nil, apperr.Forbidden("You can only %s of your own jobs", action)
	}
	return job, nil
}

// ─── Errors ──────────────────────────────────────────────────────────────────

var errAlreadyApplied = apperr.Conflict("You have already applied for this job")
