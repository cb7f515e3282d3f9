package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"jobportal/board-service/internal/apperr"
	"jobportal/board-service/internal/domain"
	"jobportal/board-service/internal/media"
)

// Store is the credential store port.
type Store interface {
	UserFinder
	// CreateUser returns domain.ErrDuplicate when the email is taken.
	CreateUser(ctx context.Context, u *domain.User) error
	UserByEmail(ctx context.Context, email string) (*domain.User, error)
}

// RegisterInput carries the signup form. Photo is optional.
type RegisterInput struct {
	Fullname    string
	Email       string
	PhoneNumber string
	Password    string
	Role        string
	Photo       *domain.Upload
}

// Session is the result of a successful login.
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      *domain.User
}

// Service registers accounts and opens sessions.
type Service struct {
	store        Store
	issuer       *Issuer
	media        *media.Library
	defaultPhoto string
	now          func() time.Time
}

// NewService returns a configured Service.
func NewService(store Store, issuer *Issuer, lib *media.Library, defaultPhoto string) *Service {
	return &Service{store: store, issuer: issuer, media: lib, defaultPhoto: defaultPhoto, now: time.Now}
}

var errDuplicateEmail = apperr.Conflict("User already exist with this email.")

// IsDuplicateEmail reports whether err is the registration conflict.
func IsDuplicateEmail(err error) bool { return errors.Is(err, errDuplicateEmail) }

// Register creates a new account. No session is opened.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	in.Fullname = strings.TrimSpace(in.Fullname)
	in.Email = strings.TrimSpace(in.Email)
	in.PhoneNumber = strings.TrimSpace(in.PhoneNumber)
	if in.Fullname == "" || in.Email == "" || in.PhoneNumber == "" || in.Password == "" || in.Role == "" {
		return nil, apperr.Validation("Something is missing")
	}
	role, err := domain.ParseRole(in.Role)
	if err != nil {
		return nil, apperr.Validation("Role must be student or recruiter")
	}

	if _, err := s.store.UserByEmail(ctx, in.Email); err == nil {
		return nil, errDuplicateEmail
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, apperr.Internal(err, "look up email")
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, apperr.Internal(err, "hash password")
	}

	photo := s.defaultPhoto
	if in.Photo != nil {
		b, err := s.media.SaveImage(ctx, *in.Photo)
		if err != nil {
			return nil, err
		}
		photo = domain.MediaURL(b.ID)
	}

	now := s.now().UTC()
	u := &domain.User{
		ID:           uuid.NewString(),
		Fullname:     in.Fullname,
		Email:        in.Email,
		PhoneNumber:  in.PhoneNumber,
		PasswordHash: hash,
		Role:         role,
		Profile:      domain.Profile{Skills: []string{}, ProfilePhoto: photo},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.CreateUser(ctx, u); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, errDuplicateEmail
		}
		return nil, apperr.Internal(err, "create user")
	}
	u.PasswordHash = ""
	return u, nil
}

// Login checks credentials and the requested role, then issues a token.
func (s *Service) Login(ctx context.Context, email, password, role string) (*Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" || role == "" {
		return nil, apperr.Validation("Something is missing")
	}

	u, err := s.store.UserByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, apperr.InvalidCredentials("Incorrect email or password.")
	}
	if err != nil {
		return nil, apperr.Internal(err, "look up email")
	}
	if !CheckPassword(u.PasswordHash, password) {
		return nil, apperr.InvalidCredentials("Incorrect email or password.")
	}
	if string(u.Role) != role {
		return nil, apperr.InvalidCredentials("Account doesn't exist with current role.")
	}

	token, exp, err := s.issuer.Issue(u.ID)
	if err != nil {
		return nil, apperr.Internal(err, "issue token")
	}
	u.PasswordHash = ""
	return &Session{Token: token, ExpiresAt: exp, User: u}, nil
}
