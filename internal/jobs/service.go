// Package jobs is the job directory: posting, searching and reading jobs.
// Jobs are immutable once posted.
package jobs

import (
	"context"
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"jobportal/board-service/internal/apperr"
	"jobportal/board-service/internal/auth"
	"jobportal/board-service/internal/domain"
	"jobportal/board-service/internal/events"
)

// Store is the persistence port used by the directory.
type Store interface {
	CreateJob(ctx context.Context, job *domain.Job) error
	SearchJobs(ctx context.Context, keyword string) ([]domain.Job, error)
	JobByID(ctx context.Context, id string) (*domain.Job, error)
	JobsByCreator(ctx context.Context, userID string) ([]domain.Job, error)
	CompanyByID(ctx context.Context, id string) (*domain.Company, error)
	ApplicationsByJob(ctx context.Context, jobID string) ([]domain.Application, error)
}

// PostJobInput carries the raw form values of a new posting.
type PostJobInput struct {
	Title           string
	Description     string
	Requirements    string // comma separated
	Salary          string
	Location        string
	JobType         string
	ExperienceLevel string
	Position        string
	CompanyID       string
}

// Service encapsulates the job directory logic.
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

// PostJob validates in and creates a job owned by in.CompanyID and creatorID.
func (s *Service) PostJob(ctx context.Context, creatorID string, in PostJobInput) (*domain.Job, error) {
	if err := s.guard.RequireRecruiter(ctx, creatorID, "post jobs"); err != nil {
		return nil, err
	}

	if missing := in.missingFields(); len(missing) > 0 {
		return nil, apperr.Validation("Missing required fields: %s", strings.Join(missing, ", "))
	}

	salary, err := parseNumber("Salary", in.Salary)
	if err != nil {
		return nil, err
	}
	experience, err := parseWhole("Experience level", in.ExperienceLevel)
	if err != nil {
		return nil, err
	}
	position, err := parseWhole("Number of positions", in.Position)
	if err != nil {
		return nil, err
	}

	companyID := strings.TrimSpace(in.CompanyID)
	company, err := s.store.CompanyByID(ctx, companyID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, apperr.NotFound("Company not found.")
	}
	if err != nil {
		return nil, apperr.Internal(err, "load company")
	}

	job := &domain.Job{
		ID:              uuid.NewString(),
		Title:           strings.TrimSpace(in.Title),
		Description:     strings.TrimSpace(in.Description),
		Requirements:    SplitRequirements(in.Requirements),
		Salary:          salary,
		Location:        strings.TrimSpace(in.Location),
		JobType:         strings.TrimSpace(in.JobType),
		ExperienceLevel: experience,
		Position:        position,
		CompanyID:       company.ID,
		CreatedBy:       creatorID,
		CreatedAt:       s.now().UTC(),
	}
	if err := s.store.CreateJob(ctx, job); err != nil {
		return nil, apperr.Internal(err, "create job")
	}
	job.Company = company

	s.events.Emit(ctx, events.JobPosted, map[string]string{
		"jobId":     job.ID,
		"companyId": job.CompanyID,
		"createdBy": creatorID,
	})
	return job, nil
}

// ListJobs returns jobs whose title or description contains keyword
// (case-insensitive), newest first. An empty keyword matches everything.
func (s *Service) ListJobs(ctx context.Context, keyword string) ([]domain.Job, error) {
	jobs, err := s.store.SearchJobs(ctx, strings.TrimSpace(keyword))
	if err != nil {
		return nil, apperr.Internal(err, "search jobs")
	}
	return jobs, nil
}

// GetJob returns a job with its applications. Applicant profiles are not
// included: this route is public.
func (s *Service) GetJob(ctx context.Context, id string) (*domain.Job, error) {
	job, err := s.store.JobByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, apperr.NotFound("Job not found.")
	}
	if err != nil {
		return nil, apperr.Internal(err, "load job")
	}

	apps, err := s.store.ApplicationsByJob(ctx, job.ID)
	if err != nil {
		return nil, apperr.Internal(err, "load applications")
	}
	for i := range apps {
		apps[i].Applicant = nil
	}
	job.Applications = apps
	return job, nil
}

// ListJobsByCreator returns the jobs posted by userID, newest first.
func (s *Service) ListJobsByCreator(ctx context.Context, userID string) ([]domain.Job, error) {
	jobs, err := s.store.JobsByCreator(ctx, userID)
	if err != nil {
		return nil, apperr.Internal(err, "list jobs by creator")
	}
	return jobs, nil
}

// ─── Validation helpers ──────────────────────────────────────────────────────

// missingFields lists the human-readable labels of every empty field, in form
// order.
func (in PostJobInput) missingFields() []string {
	fields := []struct {
		value string
		label string
	}{
		{in.Title, "Job title"},
		{in.Description, "Job description"},
		{in.Requirements, "Job requirements"},
		{in.Salary, "Salary"},
		{in.Location, "Location"},
		{in.JobType, "Job type"},
		{in.ExperienceLevel, "Experience level"},
		{in.Position, "Number of positions"},
		{in.CompanyID, "Company"},
	}
	var missing []string
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.label)
		}
	}
	return missing
}

// SplitRequirements turns "React, Node,SQL" into ["React" "Node" "SQL"].
func SplitRequirements(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseNumber(label, raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, apperr.Validation("%s must be a number", label)
	}
	if v < 0 {
		return 0, apperr.Validation("%s must not be negative", label)
	}
	return v, nil
}

func parseWhole(label, raw string) (int, error) {
	v, err := parseNumber(label, raw)
	if err != nil {
		return 0, err
	}
	if v != math.Trunc(v) || v > math.MaxInt32 {
		return 0, apperr.Validation("%s must be a whole number", label)
	}
	return int(v), nil
}

