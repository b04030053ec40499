package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/folio/internal/auth"
	"github.com/gosuda/folio/internal/siteadmin"
)

// SessionVerifier validates site-admin access tokens.
type SessionVerifier interface {
	Verify(ctx context.Context, token string) (*siteadmin.Session, error)
}

// Auth accepts a platform access token or, when sites is non-nil, a
// site-admin access token. Site tokens are checked against current website
// state on every request.
func Auth(jwtSecret string, sites SessionVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tok := extractBearer(r)
			if tok == "" {
				http.Error(w, `{"title":"Unauthorized","status":401,"detail":"missing or invalid credentials"}`, http.StatusUnauthorized)
				return
			}

			if ctx, ok := authenticateJWT(r.Context(), tok, jwtSecret); ok {
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			if sites != nil {
				sess, err := sites.Verify(r.Context(), tok)
				if err == nil {
					next.ServeHTTP(w, r.WithContext(WithSiteSession(r.Context(), sess)))
					return
				}
				log.Debug().Err(err).Str("path", r.URL.Path).Msg("auth: site token rejected")
			}

			http.Error(w, `{"title":"Unauthorized","status":401,"detail":"missing or invalid credentials"}`, http.StatusUnauthorized)
		})
	}
}

func extractBearer(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return h[7:]
	}
	return ""
}

func authenticateJWT(ctx context.Context, tokenStr, secret string) (context.Context, bool) {
	claims, err := auth.ValidateTyped(secret, tokenStr, auth.IssuerPlatform, auth.TokenTypeAccess)
	if err != nil {
		return ctx, false
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return ctx, false
	}

	return WithPlatformUser(ctx, userID, claims.Role), true
}
