package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/gosuda/folio/internal/auth"
)

// RequireRole returns middleware that checks if the authenticated platform
// user has one of the allowed roles. It must be chained after Auth.
//
// Returns 401 when nobody is authenticated and 403 when the caller is a site
// admin or holds a role outside the allowed set.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := RoleFromContext(r.Context())
			if !ok || role == "" {
				if _, site := SiteSessionFromContext(r.Context()); site {
					http.Error(w, `{"title":"Forbidden","status":403,"detail":"platform administrator required"}`, http.StatusForbidden)
					return
				}
				http.Error(w, `{"title":"Unauthorized","status":401,"detail":"authentication required"}`, http.StatusUnauthorized)
				return
			}

			if _, match := allowed[role]; !match {
				http.Error(w, `{"title":"Forbidden","status":403,"detail":"insufficient permissions"}`, http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequirePlatformAdmin is a convenience wrapper for RequireRole(auth.RoleAdmin).
func RequirePlatformAdmin() func(http.Handler) http.Handler {
	return RequireRole(auth.RoleAdmin)
}

// IsPlatformAdmin reports whether ctx carries a platform administrator.
func IsPlatformAdmin(ctx context.Context) bool {
	role, _ := RoleFromContext(ctx)
	return role == auth.RoleAdmin
}

// CanManageWebsite reports whether the caller may edit content of the given
// website: platform admins may edit any, site admins only their own.
func CanManageWebsite(ctx context.Context, websiteID uuid.UUID) bool {
	if IsPlatformAdmin(ctx) {
		return true
	}
	sess, ok := SiteSessionFromContext(ctx)
	return ok && sess.WebsiteID == websiteID
}
