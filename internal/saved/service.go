// Package saved is the per-user bookmark list of jobs.
package saved

import (
	"context"
	"errors"
	"strings"
	"time"

	"jobportal/board-service/internal/apperr"
	"jobportal/board-service/internal/domain"
)

// Store is the persistence port for saved jobs.
type Store interface {
	JobByID(ctx context.Context, id string) (*domain.Job, error)
	// AddSavedJob returns domain.ErrDuplicate when the pair already exists.
	AddSavedJob(ctx context.Context, userID, jobID string, at time.Time) error
	RemoveSavedJob(ctx context.Context, userID, jobID string) error
	SavedJobs(ctx context.Context, userID string) ([]domain.Job, error)
}

// Service encapsulates the saved-jobs registry.
type Service struct {
	store Store
	now   func() time.Time
}

// NewService returns a configured Service.
func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

var errAlreadySaved = apperr.Conflict("Job already saved")

// IsAlreadySaved reports whether err is the duplicate-bookmark conflict.
func IsAlreadySaved(err error) bool { return errors.Is(err, errAlreadySaved) }

// Save bookmarks jobID for userID.
func (s *Service) Save(ctx context.Context, userID, jobID string) error {
	if strings.TrimSpace(jobID) == "" {
		return apperr.Validation("Job id is required.")
	}
	if _, err := s.store.JobByID(ctx, jobID); errors.Is(err, domain.ErrNotFound) {
		return apperr.NotFound("Job not found")
	} else if err != nil {
		return apperr.Internal(err, "load job")
	}

	err := s.store.AddSavedJob(ctx, userID, jobID, s.now().UTC())
	switch {
	case errors.Is(err, domain.ErrDuplicate):
		return errAlreadySaved
	case errors.Is(err, domain.ErrNotFound):
		return apperr.NotFound("Job not found")
	case err != nil:
		return apperr.Internal(err, "save job")
	}
	return nil
}

// Unsave removes the bookmark. Removing an absent bookmark succeeds.
func (s *Service) Unsave(ctx context.Context, userID, jobID string) error {
	if strings.TrimSpace(jobID) == "" {
		return apperr.Validation("Job id is required.")
	}
	if err := s.store.RemoveSavedJob(ctx, userID, jobID); err != nil {
		return apperr.Internal(err, "unsave job")
	}
	return nil
}

// List returns the user's saved jobs, most recently saved first.
func (s *Service) List(ctx context.Context, userID string) ([]domain.Job, error) {
	jobs, err := s.store.SavedJobs(ctx, userID)
	if err != nil {
		return nil, apperr.Internal(err, "list saved jobs")
	}
	return jobs, nil
}
