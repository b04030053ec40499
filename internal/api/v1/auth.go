package v1

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/gosuda/folio/internal/api/apierr"
	"github.com/gosuda/folio/internal/auth"
	"github.com/gosuda/folio/internal/domain"
	"github.com/gosuda/folio/internal/server/middleware"
	"github.com/gosuda/folio/internal/siteadmin"
)

type LoginInput struct {
	Body struct {
		Email    string `json:"email" minLength:"3" maxLength:"255" doc:"Administrator email"`
		Password string `json:"password" minLength:"1" maxLength:"128" doc:"Password"` //nolint:gosec // G117: login credential DTO
	}
}

type LoginOutput struct {
	Body *auth.TokenPair
}

type RefreshInput struct {
	Body struct {
		RefreshToken string `json:"refreshToken" minLength:"1" doc:"Refresh token"` //nolint:gosec // G117: token refresh DTO
	}
}

type RefreshOutput struct {
	Body struct {
		AccessToken string `json:"token"` //nolint:gosec // G117: auth response DTO
	}
}

type MeOutput struct {
	Body struct {
		User      *domain.User       `json:"user,omitempty"`
		SiteAdmin *siteadmin.Session `json:"siteAdmin,omitempty"`
	}
}

func RegisterAuthRoutes(api huma.API, authSvc AuthService) {
	huma.Register(api, huma.Operation{
		OperationID: "login",
		Method:      http.MethodPost,
		Path:        "/auth/login",
		Summary:     "Login with email and password",
		Tags:        []string{"Auth"},
	}, func(ctx context.Context, input *LoginInput) (*LoginOutput, error) {
		pair, err := authSvc.Login(ctx, input.Body.Email, input.Body.Password)
		if err != nil {
			return nil, apierr.From("v1.login", err)
		}
		return &LoginOutput{Body: pair}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "refresh-token",
		Method:      http.MethodPost,
		Path:        "/auth/refresh",
		Summary:     "Refresh access token",
		Tags:        []string{"Auth"},
	}, func(ctx context.Context, input *RefreshInput) (*RefreshOutput, error) {
		accessToken, err := authSvc.RefreshToken(ctx, input.Body.RefreshToken)
		if err != nil {
			return nil, huma.Error401Unauthorized("invalid or expired refresh token")
		}

		out := &RefreshOutput{}
		out.Body.AccessToken = accessToken
		return out, nil
	})
}

// RegisterAccountRoutes serves the caller's own identity. It must sit behind
// the Auth middleware.
func RegisterAccountRoutes(api huma.API, authSvc AuthService) {
	huma.Register(api, huma.Operation{
		OperationID: "get-me",
		Method:      http.MethodGet,
		Path:        "/me",
		Summary:     "Describe the authenticated caller",
		Tags:        []string{"Auth"},
	}, func(ctx context.Context, _ *struct{}) (*MeOutput, error) {
		out := &MeOutput{}

		if sess, ok := middleware.SiteSessionFromContext(ctx); ok {
			out.Body.SiteAdmin = sess
			return out, nil
		}

		userID, ok := middleware.UserIDFromContext(ctx)
		if !ok {
			return nil, huma.Error401Unauthorized("authentication required")
		}
		user, err := authSvc.GetUser(ctx, userID)
		if err != nil {
			return nil, apierr.From("v1.me", err)
		}
		out.Body.User = user
		return out, nil
	})
}
