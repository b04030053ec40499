package v1

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/gosuda/folio/internal/api/apierr"
	"github.com/gosuda/folio/internal/content"
	"github.com/gosuda/folio/internal/domain"
)

// WebsiteBody is shared by create and update. On update, omitted fields are
// left unchanged.
type WebsiteBody struct {
	Slug             *string             `json:"slug,omitempty" maxLength:"63" doc:"URL slug"`
	Name             *string             `json:"name,omitempty" maxLength:"255" doc:"Firm name"`
	Domain           *string             `json:"domain,omitempty" maxLength:"255" doc:"Public hostname"`
	ThemeConfig      *domain.ThemeConfig `json:"themeConfig,omitempty" doc:"Colors, font, logo and contact overrides"`
	IsActive         *bool               `json:"isActive,omitempty" doc:"Whether the site is online"`
	IsAdminEnabled   *bool               `json:"isAdminEnabled,omitempty" doc:"Whether the embedded admin is reachable"`
	Phone            *string             `json:"phone,omitempty" maxLength:"64"`
	Email            *string             `json:"email,omitempty" maxLength:"255"`
	Address          *string             `json:"address,omitempty" maxLength:"1024"`
	WorkingHours     *string             `json:"workingHours,omitempty" maxLength:"255"`
	RevalidateURL    *string             `json:"revalidateUrl,omitempty" doc:"Front-end revalidation webhook"`
	RevalidateSecret *string             `json:"revalidateSecret,omitempty" doc:"Shared secret sent with webhook calls"` //nolint:gosec // G117: write-only secret
}

func (b WebsiteBody) input() content.WebsiteInput {
	return content.WebsiteInput{
		Slug:             b.Slug,
		Name:             b.Name,
		Domain:           b.Domain,
		ThemeConfig:      b.ThemeConfig,
		IsActive:         b.IsActive,
		IsAdminEnabled:   b.IsAdminEnabled,
		Phone:            b.Phone,
		Email:            b.Email,
		Address:          b.Address,
		WorkingHours:     b.WorkingHours,
		RevalidateURL:    b.RevalidateURL,
		RevalidateSecret: b.RevalidateSecret,
	}
}

type CreateWebsiteInput struct {
	Body WebsiteBody
}

type WebsiteOutput struct {
	Body *domain.Website
}

type ListWebsitesInput struct {
	Limit  int `query:"limit" minimum:"1" maximum:"200" default:"50" doc:"Page size"`
	Offset int `query:"offset" minimum:"0" default:"0" doc:"Items to skip"`
}

type ListWebsitesOutput struct {
	Body []*domain.Website
}

type WebsiteIDInput struct {
	ID uuid.UUID `path:"id" doc:"Website ID"`
}

type UpdateWebsiteInput struct {
	ID   uuid.UUID `path:"id" doc:"Website ID"`
	Body WebsiteBody
}

func RegisterWebsiteRoutes(api huma.API, svc ContentService) {
	huma.Register(api, huma.Operation{
		OperationID: "create-website",
		Method:      http.MethodPost,
		Path:        "/websites",
		Summary:     "Create a website",
		Tags:        []string{"Websites"},
	}, func(ctx context.Context, input *CreateWebsiteInput) (*WebsiteOutput, error) {
		if err := requirePlatformAdmin(ctx); err != nil {
			return nil, err
		}

		w, err := svc.CreateWebsite(ctx, input.Body.input())
		if err != nil {
			return nil, apierr.From("v1.createWebsite", err)
		}
		return &WebsiteOutput{Body: w}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-websites",
		Method:      http.MethodGet,
		Path:        "/websites",
		Summary:     "List websites",
		Tags:        []string{"Websites"},
	}, func(ctx context.Context, input *ListWebsitesInput) (*ListWebsitesOutput, error) {
		if err := requirePlatformAdmin(ctx); err != nil {
			return nil, err
		}

		websites, err := svc.ListWebsites(ctx, input.Limit, input.Offset)
		if err != nil {
			return nil, apierr.From("v1.listWebsites", err)
		}
		if websites == nil {
			websites = []*domain.Website{}
		}
		return &ListWebsitesOutput{Body: websites}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-website",
		Method:      http.MethodGet,
		Path:        "/websites/{id}",
		Summary:     "Get a website by ID",
		Tags:        []string{"Websites"},
	}, func(ctx context.Context, input *WebsiteIDInput) (*WebsiteOutput, error) {
		if err := authorizeWebsite(ctx, input.ID); err != nil {
			return nil, err
		}

		w, err := svc.GetWebsite(ctx, input.ID)
		if err != nil {
			return nil, apierr.From("v1.getWebsite", err)
		}
		return &WebsiteOutput{Body: w}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-website",
		Method:      http.MethodPatch,
		Path:        "/websites/{id}",
		Summary:     "Update a website",
		Description: "The slug can only change while the website has no pages.",
		Tags:        []string{"Websites"},
	}, func(ctx context.Context, input *UpdateWebsiteInput) (*WebsiteOutput, error) {
		if err := requirePlatformAdmin(ctx); err != nil {
			return nil, err
		}

		w, err := svc.UpdateWebsite(ctx, input.ID, input.Body.input())
		if err != nil {
			return nil, apierr.From("v1.updateWebsite", err)
		}
		return &WebsiteOutput{Body: w}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "delete-website",
		Method:        http.MethodDelete,
		Path:          "/websites/{id}",
		Summary:       "Delete a website with its pages and sections",
		Tags:          []string{"Websites"},
		DefaultStatus: http.StatusNoContent,
	}, func(ctx context.Context, input *WebsiteIDInput) (*struct{}, error) {
		if err := requirePlatformAdmin(ctx); err != nil {
			return nil, err
		}

		if err := svc.DeleteWebsite(ctx, input.ID); err != nil {
			return nil, apierr.From("v1.deleteWebsite", err)
		}
		return nil, nil
	})
}
