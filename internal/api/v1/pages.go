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

type CreatePageInput struct {
	WebsiteID uuid.UUID `path:"id" doc:"Website ID"`
	Body      struct {
		Slug  string `json:"slug" minLength:"1" maxLength:"63" doc:"URL slug, unique within the website"`
		Title string `json:"title" minLength:"1" maxLength:"255" doc:"Page title"`
	}
}

type PageOutput struct {
	Body *domain.Page
}

type ListPagesInput struct {
	WebsiteID uuid.UUID `path:"id" doc:"Website ID"`
	Status    string    `query:"status" doc:"Filter by DRAFT or PUBLISHED"`
}

type ListPagesOutput struct {
	Body []*domain.Page
}

type PageIDInput struct {
	ID uuid.UUID `path:"id" doc:"Page ID"`
}

type PageWithSectionsOutput struct {
	Body *domain.PageWithSections
}

type UpdatePageInput struct {
	ID   uuid.UUID `path:"id" doc:"Page ID"`
	Body struct {
		Slug   *string `json:"slug,omitempty" maxLength:"63" doc:"URL slug"`
		Title  *string `json:"title,omitempty" maxLength:"255" doc:"Page title"`
		Status *string `json:"status,omitempty" enum:"DRAFT,PUBLISHED" doc:"Publication status"`
	}
}

func RegisterPageRoutes(api huma.API, svc ContentService) {
	huma.Register(api, huma.Operation{
		OperationID: "create-page",
		Method:      http.MethodPost,
		Path:        "/websites/{id}/pages",
		Summary:     "Create a draft page",
		Tags:        []string{"Pages"},
	}, func(ctx context.Context, input *CreatePageInput) (*PageOutput, error) {
		if err := authorizeWebsite(ctx, input.WebsiteID); err != nil {
			return nil, err
		}

		p, err := svc.CreatePage(ctx, input.WebsiteID, input.Body.Slug, input.Body.Title)
		if err != nil {
			return nil, apierr.From("v1.createPage", err)
		}
		return &PageOutput{Body: p}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-pages",
		Method:      http.MethodGet,
		Path:        "/websites/{id}/pages",
		Summary:     "List the pages of a website",
		Tags:        []string{"Pages"},
	}, func(ctx context.Context, input *ListPagesInput) (*ListPagesOutput, error) {
		if err := authorizeWebsite(ctx, input.WebsiteID); err != nil {
			return nil, err
		}

		pages, err := svc.ListPages(ctx, input.WebsiteID, domain.PageStatus(input.Status))
		if err != nil {
			return nil, apierr.From("v1.listPages", err)
		}
		if pages == nil {
			pages = []*domain.Page{}
		}
		return &ListPagesOutput{Body: pages}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-page",
		Method:      http.MethodGet,
		Path:        "/pages/{id}",
		Summary:     "Get a page with its sections",
		Tags:        []string{"Pages"},
	}, func(ctx context.Context, input *PageIDInput) (*PageWithSectionsOutput, error) {
		if err := authorizePage(ctx, svc, input.ID); err != nil {
			return nil, err
		}

		p, err := svc.GetPage(ctx, input.ID)
		if err != nil {
			return nil, apierr.From("v1.getPage", err)
		}
		return &PageWithSectionsOutput{Body: p}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-page",
		Method:      http.MethodPatch,
		Path:        "/pages/{id}",
		Summary:     "Update a page",
		Tags:        []string{"Pages"},
	}, func(ctx context.Context, input *UpdatePageInput) (*PageOutput, error) {
		if err := authorizePage(ctx, svc, input.ID); err != nil {
			return nil, err
		}

		in := content.PageInput{Slug: input.Body.Slug, Title: input.Body.Title}
		if input.Body.Status != nil {
			status := domain.PageStatus(*input.Body.Status)
			in.Status = &status
		}

		p, err := svc.UpdatePage(ctx, input.ID, in)
		if err != nil {
			return nil, apierr.From("v1.updatePage", err)
		}
		return &PageOutput{Body: p}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "publish-page",
		Method:      http.MethodPost,
		Path:        "/pages/{id}/publish",
		Summary:     "Publish a page",
		Description: "Idempotent. publishedAt is set by the first publish and kept afterwards.",
		Tags:        []string{"Pages"},
	}, func(ctx context.Context, input *PageIDInput) (*PageOutput, error) {
		if err := authorizePage(ctx, svc, input.ID); err != nil {
			return nil, err
		}

		p, err := svc.PublishPage(ctx, input.ID)
		if err != nil {
			return nil, apierr.From("v1.publishPage", err)
		}
		return &PageOutput{Body: p}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "delete-page",
		Method:        http.MethodDelete,
		Path:          "/pages/{id}",
		Summary:       "Delete a page and its sections",
		Tags:          []string{"Pages"},
		DefaultStatus: http.StatusNoContent,
	}, func(ctx context.Context, input *PageIDInput) (*struct{}, error) {
		if err := authorizePage(ctx, svc, input.ID); err != nil {
			return nil, err
		}

		if err := svc.DeletePage(ctx, input.ID); err != nil {
			return nil, apierr.From("v1.deletePage", err)
		}
		return nil, nil
	})
}
