package auth

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strings"

	"jobportal/board-service/internal/apperr"
)

// CookieName is the session cookie set at login.
const CookieName = "token"

type ctxKey struct{}

// WithUserID attaches the authenticated user id to ctx.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, userID)
}

// UserIDFromContext returns the id attached by WithUserID.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ctxKey{}).(string)
	return id, ok && id != ""
}

// Gate resolves request identity and applies the rate limit.
type Gate struct {
	issuer  *Issuer
	limiter Limiter
}

// NewGate returns a Gate. A nil limiter disables rate limiting.
func NewGate(issuer *Issuer, limiter Limiter) *Gate {
	return &Gate{issuer: issuer, limiter: limiter}
}

// Authenticate returns the user id carried by the request's token: the
// "token" cookie first, then an "Authorization: Bearer" header.
func (g *Gate) Authenticate(r *http.Request) (string, error) {
	token := TokenFromRequest(r)
	if token == "" {
		return "", apperr.Unauthenticated("User not authenticated")
	}
	return g.issuer.Verify(token)
}

// Admit counts the request against its client address. Limiter failures let
// the request through.
func (g *Gate) Admit(r *http.Request) error {
	if g.limiter == nil {
		return nil
	}
	ip := ClientIP(r)
	ok, err := g.limiter.Allow(r.Context(), ip)
	if err != nil {
		slog.Warn("rate limiter unavailable, admitting request", "ip", ip, "err", err)
		return nil
	}
	if !ok {
		return apperr.RateLimited("Too many requests from this IP, please try again later.")
	}
	return nil
}

// TokenFromRequest extracts the raw session token, or "".
func TokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie(CookieName); err == nil && c.Value != "" {
		return c.Value
	}
	return BearerToken(r.Header.Get("Authorization"))
}

// BearerToken returns the token of an "Bearer <t>" header value, or "".
func BearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}

// ClientIP is the host part of the peer address.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
