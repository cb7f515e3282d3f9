// Package profile handles self-service account edits: contact details, bio,
// skills, resume and profile photo.
package profile

import (
	"context"
	"errors"
	"strings"
	"time"

	"jobportal/board-service/internal/apperr"
	"jobportal/board-service/internal/domain"
	"jobportal/board-service/internal/media"
)

// Store is the persistence port for profiles.
type Store interface {
	UserByID(ctx context.Context, id string) (*domain.User, error)
	// UpdateUser returns domain.ErrDuplicate when the new email is taken.
	UpdateUser(ctx context.Context, u *domain.User) error
}

// UpdateInput is a partial update: empty fields are left untouched.
type UpdateInput struct {
	Fullname    string
	Email       string
	PhoneNumber string
	Bio         string
	Skills      string // comma separated
	Resume      *domain.Upload
}

// Resume is a stored resume ready to be streamed.
type Resume struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Service encapsulates profile logic.
type Service struct {
	store Store
	media *media.Library
	now   func() time.Time
}

// NewService returns a configured Service.
func NewService(store Store, lib *media.Library) *Service {
	return &Service{store: store, media: lib, now: time.Now}
}

// Update applies in to userID's account and returns the sanitized user.
func (s *Service) Update(ctx context.Context, userID string, in UpdateInput) (*domain.User, error) {
	u, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	if v := strings.TrimSpace(in.Fullname); v != "" {
		u.Fullname = v
	}
	if v := strings.TrimSpace(in.Email); v != "" {
		u.Email = v
	}
	if v := strings.TrimSpace(in.PhoneNumber); v != "" {
		u.PhoneNumber = v
	}
	if v := strings.TrimSpace(in.Bio); v != "" {
		u.Profile.Bio = v
	}
	if strings.TrimSpace(in.Skills) != "" {
		u.Profile.Skills = splitSkills(in.Skills)
	}
	if in.Resume != nil {
		b, err := s.media.SaveResume(ctx, *in.Resume)
		if err != nil {
			return nil, err
		}
		u.Profile.ResumeBlobID = b.ID
		u.Profile.ResumeOriginalName = in.Resume.Filename
		u.Profile.ResumeMimeType = b.ContentType
	}

	return s.save(ctx, u)
}

// UpdatePhoto replaces the profile photo with an uploaded image.
func (s *Service) UpdatePhoto(ctx context.Context, userID string, photo *domain.Upload) (*domain.User, error) {
	if photo == nil {
		return nil, apperr.Validation("Please provide a profile photo")
	}
	u, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	b, err := s.media.SaveImage(ctx, *photo)
	if err != nil {
		return nil, err
	}
	u.Profile.ProfilePhoto = domain.MediaURL(b.ID)
	return s.save(ctx, u)
}

// Resume returns the resume uploaded by userID.
func (s *Service) Resume(ctx context.Context, userID string) (*Resume, error) {
	u, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !u.Profile.HasResume() {
		return nil, apperr.NotFound("Resume not found")
	}
	b, err := s.media.Get(ctx, u.Profile.ResumeBlobID)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			return nil, apperr.NotFound("Resume not found")
		}
		return nil, err
	}

	ct := u.Profile.ResumeMimeType
	if ct == "" {
		ct = "application/pdf"
	}
	name := u.Profile.ResumeOriginalName
	if name == "" {
		name = "resume"
	}
	return &Resume{Filename: name, ContentType: ct, Data: b.Data}, nil
}

func (s *Service) load(ctx context.Context, userID string) (*domain.User, error) {
	u, err := s.store.UserByID(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, apperr.NotFound("User not found")
	}
	if err != nil {
		return nil, apperr.Internal(err, "load user")
	}
	return u, nil
}

func (s *Service) save(ctx context.Context, u *domain.User) (*domain.User, error) {
	u.UpdatedAt = s.now().UTC()
	if err := s.store.UpdateUser(ctx, u); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, apperr.Conflict("Email is already in use.")
		}
		return nil, apperr.Internal(err, "update user")
	}
	u.PasswordHash = ""
	return u, nil
}

func splitSkills(raw string) []string {
	out := []string{}
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
