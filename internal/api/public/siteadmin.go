package public

import (
	"context"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/gosuda/folio/internal/api/apierr"
	"github.com/gosuda/folio/internal/auth"
	"github.com/gosuda/folio/internal/siteadmin"
)

type SiteLoginInput struct {
	Body struct {
		Email       string `json:"email" minLength:"3" maxLength:"255" doc:"Site admin email"`
		Password    string `json:"password" minLength:"1" maxLength:"128" doc:"Password"` //nolint:gosec // G117: login credential DTO
		WebsiteSlug string `json:"websiteSlug" minLength:"1" maxLength:"63" doc:"Website slug"`
	}
}

type SiteRefreshInput struct {
	Body struct {
		RefreshToken string `json:"refreshToken" minLength:"1" doc:"Refresh token"` //nolint:gosec // G117: token refresh DTO
	}
}

type TokenOutput struct {
	Body *auth.TokenPair
}

type SessionInput struct {
	Authorization string `header:"Authorization" required:"true" doc:"Bearer site-admin access token"`
}

type SessionOutput struct {
	Body struct {
		Data *siteadmin.Session `json:"data"`
	}
}

func bearerToken(h string) string {
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return h[7:]
	}
	return ""
}

func RegisterSiteAdminRoutes(api huma.API, svc SiteAdminService) {
	huma.Register(api, huma.Operation{
		OperationID: "site-admin-login",
		Method:      http.MethodPost,
		Path:        "/site-admin/login",
		Summary:     "Log in to a website's embedded admin",
		Tags:        []string{"Site admin"},
	}, func(ctx context.Context, input *SiteLoginInput) (*TokenOutput, error) {
		pair, err := svc.Login(ctx, input.Body.WebsiteSlug, input.Body.Email, input.Body.Password)
		if err != nil {
			return nil, apierr.From("siteadmin.login", err)
		}
		return &TokenOutput{Body: pair}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "site-admin-refresh",
		Method:      http.MethodPost,
		Path:        "/site-admin/refresh",
		Summary:     "Exchange a site-admin refresh token for a new access token",
		Tags:        []string{"Site admin"},
	}, func(ctx context.Context, input *SiteRefreshInput) (*TokenOutput, error) {
		pair, err := svc.Refresh(ctx, input.Body.RefreshToken)
		if err != nil {
			return nil, apierr.From("siteadmin.refresh", err)
		}
		return &TokenOutput{Body: pair}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "site-admin-session",
		Method:      http.MethodGet,
		Path:        "/site-admin/session",
		Summary:     "Verify a site-admin access token",
		Tags:        []string{"Site admin"},
	}, func(ctx context.Context, input *SessionInput) (*SessionOutput, error) {
		tok := bearerToken(input.Authorization)
		if tok == "" {
			return nil, huma.Error401Unauthorized("missing bearer token")
		}

		sess, err := svc.Verify(ctx, tok)
		if err != nil {
			return nil, apierr.From("siteadmin.session", err)
		}

		out := &SessionOutput{}
		out.Body.Data = sess
		return out, nil
	})
}
