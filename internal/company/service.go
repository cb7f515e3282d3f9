// Package company is the registry of recruiter-owned companies that jobs
// are posted under.
package company

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"jobportal/board-service/internal/apperr"
	"jobportal/board-service/internal/auth"
	"jobportal/board-service/internal/domain"
	"jobportal/board-service/internal/media"
)

// Store is the persistence port for companies.
type Store interface {
	// CreateCompany and UpdateCompany return domain.ErrDuplicate when the
	// name is taken.
	CreateCompany(ctx context.Context, c *domain.Company) error
	UpdateCompany(ctx context.Context, c *domain.Company) error
	CompanyByID(ctx context.Context, id string) (*domain.Company, error)
	CompaniesByOwner(ctx context.Context, userID string) ([]domain.Company, error)
}

// UpdateInput holds the editable fields. Empty strings leave a field as is.
type UpdateInput struct {
	Name        string
	Description string
	Website     string
	Location    string
	Logo        *domain.Upload
}

// Service encapsulates the company registry.
type Service struct {
	store Store
	guard *auth.RoleGuard
	media *media.Library
	now   func() time.Time
}

// NewService returns a configured Service.
func NewService(store Store, guard *auth.RoleGuard, lib *media.Library) *Service {
	return &Service{store: store, guard: guard, media: lib, now: time.Now}
}

// Register creates a company named name owned by userID.
func (s *Service) Register(ctx context.Context, userID, name string) (*domain.Company, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Validation("Company name is required.")
	}
	if err := s.guard.RequireRecruiter(ctx, userID, "register companies"); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	c := &domain.Company{
		ID:        uuid.NewString(),
		Name:      name,
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreateCompany(ctx, c); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, apperr.Conflict("You can't register same company.")
		}
		return nil, apperr.Internal(err, "create company")
	}
	return c, nil
}

// Mine lists the companies owned by userID.
func (s *Service) Mine(ctx context.Context, userID string) ([]domain.Company, error) {
	cs, err := s.store.CompaniesByOwner(ctx, userID)
	if err != nil {
		return nil, apperr.Internal(err, "list companies")
	}
	return cs, nil
}

// Get returns one company.
func (s *Service) Get(ctx context.Context, id string) (*domain.Company, error) {
	c, err := s.store.CompanyByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, apperr.NotFound("Company not found.")
	}
	if err != nil {
		return nil, apperr.Internal(err, "load company")
	}
	return c, nil
}

// Update edits a company. Only its owner may do so.
func (s *Service) Update(ctx context.Context, userID, id string, in UpdateInput) (*domain.Company, error) {
	if err := s.guard.RequireRecruiter(ctx, userID, "update companies"); err != nil {
		return nil, err
	}
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.UserID != userID {
		return nil, apperr.Forbidden("You can only update your own companies")
	}

	if v := strings.TrimSpace(in.Name); v != "" {
		c.Name = v
	}
	if v := strings.TrimSpace(in.Description); v != "" {
		c.Description = v
	}
	if v := strings.TrimSpace(in.Website); v != "" {
		c.Website = v
	}
	if v := strings.TrimSpace(in.Location); v != "" {
		c.Location = v
	}
	if in.Logo != nil {
		b, err := s.media.SaveImage(ctx, *in.Logo)
		if err != nil {
			return nil, err
		}
		c.Logo = domain.MediaURL(b.ID)
	}
	c.UpdatedAt = s.now().UTC()

	if err := s.store.UpdateCompany(ctx, c); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, apperr.Conflict("You can't register same company.")
		}
		return nil, apperr.Internal(err, "update company")
	}
	return c, nil
}
