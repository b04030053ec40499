package public

import (
	"context"

	"github.com/gosuda/folio/internal/auth"
	"github.com/gosuda/folio/internal/siteadmin"
)

// SiteAdminService abstracts the site-admin session operations.
// *siteadmin.Service satisfies this interface.
type SiteAdminService interface {
	Login(ctx context.Context, websiteSlug, email, password string) (*auth.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*auth.TokenPair, error)
	Verify(ctx context.Context, token string) (*siteadmin.Session, error)
}
