package v1

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/gosuda/folio/internal/api/apierr"
	"github.com/gosuda/folio/internal/siteadmin"
)

type PutSiteAdminInput struct {
	WebsiteID uuid.UUID `path:"id" doc:"Website ID"`
	Body      struct {
		Email           string `json:"email" maxLength:"255" doc:"Login email"`
		Password        string `json:"password" maxLength:"128" doc:"New password"`               //nolint:gosec // G117: credential DTO
		ConfirmPassword string `json:"confirmPassword" maxLength:"128" doc:"Repeat of password"` //nolint:gosec // G117: credential DTO
	}
}

type SiteAdminOutput struct {
	Body *siteadmin.Info
}

// RegisterSiteAdminRoutes manages each website's site-admin credential.
// Every route is restricted to platform administrators.
func RegisterSiteAdminRoutes(api huma.API, svc SiteAdminService) {
	huma.Register(api, huma.Operation{
		OperationID: "put-site-admin",
		Method:      http.MethodPut,
		Path:        "/websites/{id}/site-admin",
		Summary:     "Create or replace the site-admin credential",
		Description: "Replacing the credential signs out every existing site-admin session.",
		Tags:        []string{"Site admin"},
	}, func(ctx context.Context, input *PutSiteAdminInput) (*SiteAdminOutput, error) {
		if err := requirePlatformAdmin(ctx); err != nil {
			return nil, err
		}

		info, err := svc.Upsert(ctx, input.WebsiteID, input.Body.Email, input.Body.Password, input.Body.ConfirmPassword)
		if err != nil {
			return nil, apierr.From("v1.putSiteAdmin", err)
		}
		return &SiteAdminOutput{Body: info}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-site-admin",
		Method:      http.MethodGet,
		Path:        "/websites/{id}/site-admin",
		Summary:     "Get the site-admin credential without its secret",
		Tags:        []string{"Site admin"},
	}, func(ctx context.Context, input *WebsiteIDInput) (*SiteAdminOutput, error) {
		if err := requirePlatformAdmin(ctx); err != nil {
			return nil, err
		}

		info, err := svc.Info(ctx, input.ID)
		if err != nil {
			return nil, apierr.From("v1.getSiteAdmin", err)
		}
		return &SiteAdminOutput{Body: info}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "delete-site-admin",
		Method:        http.MethodDelete,
		Path:          "/websites/{id}/site-admin",
		Summary:       "Remove the site-admin credential",
		Tags:          []string{"Site admin"},
		DefaultStatus: http.StatusNoContent,
	}, func(ctx context.Context, input *WebsiteIDInput) (*struct{}, error) {
		if err := requirePlatformAdmin(ctx); err != nil {
			return nil, err
		}

		if err := svc.Delete(ctx, input.ID); err != nil {
			return nil, apierr.From("v1.deleteSiteAdmin", err)
		}
		return nil, nil
	})
}
