package v1

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/gosuda/folio/internal/api/apierr"
	"github.com/gosuda/folio/internal/revalidate"
)

type RevalidateInput struct {
	ID   uuid.UUID `path:"id"`
	Wait bool      `query:"wait" doc:"Run the sinks now and report their results instead of queueing"`
}

type RevalidateOutput struct {
	Status int
	Body   revalidate.Ack
}

func RegisterRevalidationRoutes(api huma.API, svc ContentService, reval Revalidator) {
	run := func(ctx context.Context, scope revalidate.Scope, wait bool) (*RevalidateOutput, error) {
		if !wait {
			reval.Trigger(scope)
			return &RevalidateOutput{
				Status: http.StatusAccepted,
				Body:   revalidate.Ack{Accepted: true, Scope: scope},
			}, nil
		}

		ack, err := reval.Revalidate(ctx, scope)
		if err != nil {
			return nil, apierr.From("v1.revalidate", err)
		}
		return &RevalidateOutput{Status: http.StatusOK, Body: ack}, nil
	}

	huma.Register(api, huma.Operation{
		OperationID: "revalidate-website",
		Method:      http.MethodPost,
		Path:        "/websites/{id}/revalidate",
		Summary:     "Revalidate every cached page of a website",
		Tags:        []string{"Revalidation"},
	}, func(ctx context.Context, input *RevalidateInput) (*RevalidateOutput, error) {
		if err := authorizeWebsite(ctx, input.ID); err != nil {
			return nil, err
		}
		if _, err := svc.GetWebsite(ctx, input.ID); err != nil {
			return nil, apierr.From("v1.revalidateWebsite", err)
		}
		return run(ctx, revalidate.WebsiteScope(input.ID), input.Wait)
	})

	huma.Register(api, huma.Operation{
		OperationID: "revalidate-page",
		Method:      http.MethodPost,
		Path:        "/pages/{id}/revalidate",
		Summary:     "Revalidate one page",
		Tags:        []string{"Revalidation"},
	}, func(ctx context.Context, input *RevalidateInput) (*RevalidateOutput, error) {
		if err := authorizePage(ctx, svc, input.ID); err != nil {
			return nil, err
		}
		return run(ctx, revalidate.PageScope(input.ID), input.Wait)
	})
}
