package auth

import (
	"context"
	"errors"

	"jobportal/board-service/internal/apperr"
	"jobportal/board-service/internal/domain"
)

// UserFinder resolves an identity to its stored account.
type UserFinder interface {
	UserByID(ctx context.Context, id string) (*domain.User, error)
}

// RoleGuard is the authorization checkpoint for recruiter-only actions.
// A disabled guard (or a nil *RoleGuard) lets every authenticated caller
// through, which reproduces the historical open behaviour.
type RoleGuard struct {
	users   UserFinder
	enforce bool
}

// NewRoleGuard returns a guard backed by users.
func NewRoleGuard(users UserFinder, enforce bool) *RoleGuard {
	return &RoleGuard{users: users, enforce: enforce}
}

// Enforced reports whether role checks are active.
func (g *RoleGuard) Enforced() bool { return g != nil && g.enforce }

// RequireRecruiter fails with Forbidden unless userID belongs to a role that
// may manage jobs. action completes the message "Only recruiters can …".
func (g *RoleGuard) RequireRecruiter(ctx context.Context, userID, action string) error {
	if !g.Enforced() {
		return nil
	}
	u, err := g.users.UserByID(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return apperr.Unauthenticated("User not found")
	}
	if err != nil {
		return apperr.Internal(err, "load user")
	}
	if !u.Role.CanManageJobs() {
		return apperr.Forbidden("Only recruiters can %s", action)
	}
	return nil
}
