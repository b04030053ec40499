// Package public serves the read surface consumed by the tenant front-ends
// and the site-admin session endpoints. Every body is wrapped in {"data": …}.
package public

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/gosuda/folio/internal/api/apierr"
	"github.com/gosuda/folio/internal/content"
	"github.com/gosuda/folio/internal/domain"
	"github.com/gosuda/folio/internal/render"
)

type WebsiteInput struct {
	Slug string `path:"slug" doc:"Website slug"`
}

type WebsiteOutput struct {
	Body struct {
		Data struct {
			Website *domain.Website `json:"website"`
		} `json:"data"`
	}
}

type StatusOutput struct {
	Body struct {
		Data domain.WebsiteStatus `json:"data"`
	}
}

type PageInput struct {
	WebsiteSlug string `path:"websiteSlug" doc:"Website slug"`
	PageSlug    string `path:"pageSlug" doc:"Page slug"`
}

type PageOutput struct {
	Body struct {
		Data struct {
			Page    *domain.PageWithSections `json:"page"`
			Aliased bool                     `json:"aliased"`
		} `json:"data"`
	}
}

type ListPagesInput struct {
	WebsiteSlug string `path:"websiteSlug" doc:"Website slug"`
}

type ListPagesOutput struct {
	Body struct {
		Data struct {
			Pages []*domain.Page `json:"pages"`
		} `json:"data"`
	}
}

type RenderedPage struct {
	ID     string         `json:"id"`
	Slug   string         `json:"slug"`
	Title  string         `json:"title"`
	Status string         `json:"status"`
	Theme  render.Theme   `json:"theme"`
	Blocks []render.Block `json:"blocks"`
}

type RenderedOutput struct {
	Body struct {
		Data RenderedPage `json:"data"`
	}
}

// publicView hides delivery settings from anonymous callers.
func publicView(w *domain.Website) *domain.Website {
	cp := *w
	cp.RevalidateURL = ""
	return &cp
}

func RegisterContentRoutes(api huma.API, reader content.Reader, renderer *render.Renderer) {
	huma.Register(api, huma.Operation{
		OperationID: "get-public-website",
		Method:      http.MethodGet,
		Path:        "/public/website/{slug}",
		Summary:     "Get an active website by slug",
		Tags:        []string{"Public"},
	}, func(ctx context.Context, input *WebsiteInput) (*WebsiteOutput, error) {
		w, err := reader.ResolveWebsite(ctx, input.Slug)
		if err != nil {
			return nil, apierr.From("public.website", err)
		}

		out := &WebsiteOutput{}
		out.Body.Data.Website = publicView(w)
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-website-status",
		Method:      http.MethodGet,
		Path:        "/public/website-status/{slug}",
		Summary:     "Get the access flags of a website",
		Description: "Polled by edge middleware. Answers for inactive websites too.",
		Tags:        []string{"Public"},
	}, func(ctx context.Context, input *WebsiteInput) (*StatusOutput, error) {
		st, err := reader.WebsiteStatus(ctx, input.Slug)
		if err != nil {
			return nil, apierr.From("public.status", err)
		}

		out := &StatusOutput{}
		out.Body.Data = st
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-public-pages",
		Method:      http.MethodGet,
		Path:        "/public/pages/{websiteSlug}",
		Summary:     "List the published pages of a website",
		Tags:        []string{"Public"},
	}, func(ctx context.Context, input *ListPagesInput) (*ListPagesOutput, error) {
		pages, err := reader.ListPublishedPages(ctx, input.WebsiteSlug)
		if err != nil {
			return nil, apierr.From("public.pages", err)
		}
		if pages == nil {
			pages = []*domain.Page{}
		}

		out := &ListPagesOutput{}
		out.Body.Data.Pages = pages
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-public-page",
		Method:      http.MethodGet,
		Path:        "/public/pages/{websiteSlug}/{pageSlug}",
		Summary:     "Get a page with its sections",
		Description: "Falls back to the slug alias (services/service) when the exact slug is missing.",
		Tags:        []string{"Public"},
	}, func(ctx context.Context, input *PageInput) (*PageOutput, error) {
		rp, err := reader.ResolvePage(ctx, input.WebsiteSlug, input.PageSlug)
		if err != nil {
			return nil, apierr.From("public.page", err)
		}

		out := &PageOutput{}
		out.Body.Data.Page = rp.Page
		out.Body.Data.Aliased = rp.Aliased
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-rendered-page",
		Method:      http.MethodGet,
		Path:        "/public/rendered/{websiteSlug}/{pageSlug}",
		Summary:     "Get a page as theme-aware render blocks",
		Tags:        []string{"Public"},
	}, func(ctx context.Context, input *PageInput) (*RenderedOutput, error) {
		rp, err := reader.ResolvePage(ctx, input.WebsiteSlug, input.PageSlug)
		if err != nil {
			return nil, apierr.From("public.rendered", err)
		}

		theme := render.ThemeFor(rp.Website)
		out := &RenderedOutput{}
		out.Body.Data = RenderedPage{
			ID:     rp.Page.ID.String(),
			Slug:   rp.Page.Slug,
			Title:  rp.Page.Title,
			Status: string(rp.Page.Status),
			Theme:  theme,
			Blocks: renderer.RenderPage(rp.Page, theme),
		}
		return out, nil
	})
}
