package middleware

import (
	"context"

	"github.com/google/uuid"

	"github.com/gosuda/folio/internal/siteadmin"
)

type contextKey string

const (
	ContextKeyUserID      contextKey = "user_id"
	ContextKeyUserRole    contextKey = "role"
	ContextKeySiteSession contextKey = "site_session"
)

func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	v, ok := ctx.Value(ContextKeyUserID).(uuid.UUID)
	return v, ok
}

func RoleFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(ContextKeyUserRole).(string)
	return v, ok
}

// SiteSessionFromContext returns the site-admin session stored by Auth.
func SiteSessionFromContext(ctx context.Context) (*siteadmin.Session, bool) {
	v, ok := ctx.Value(ContextKeySiteSession).(*siteadmin.Session)
	return v, ok && v != nil
}

// WithPlatformUser returns ctx carrying a platform user. Intended for
// handlers invoked outside the HTTP middleware chain and for tests.
func WithPlatformUser(ctx context.Context, userID uuid.UUID, role string) context.Context {
	ctx = context.WithValue(ctx, ContextKeyUserID, userID)
	return context.WithValue(ctx, ContextKeyUserRole, role)
}

// WithSiteSession returns ctx carrying a site-admin session.
func WithSiteSession(ctx context.Context, s *siteadmin.Session) context.Context {
	return context.WithValue(ctx, ContextKeySiteSession, s)
}
