package v1

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/gosuda/folio/internal/api/apierr"
	"github.com/gosuda/folio/internal/content"
	"github.com/gosuda/folio/internal/domain"
)

type SectionBody struct {
	Type        *string         `json:"type,omitempty" maxLength:"64" doc:"Section type, e.g. hero, text-image, cta"`
	TextContent json.RawMessage `json:"textContent,omitempty" doc:"Structured content document (JSON object)"`
	ImageURL    *string         `json:"imageUrl,omitempty" maxLength:"2048" doc:"Media URL"`
	Order       *int            `json:"order,omitempty" minimum:"0" doc:"Position; appended when omitted on create"`
}

func (b SectionBody) input() content.SectionInput {
	return content.SectionInput{
		Type:        b.Type,
		TextContent: b.TextContent,
		ImageURL:    b.ImageURL,
		Order:       b.Order,
	}
}

type CreateSectionInput struct {
	PageID uuid.UUID `path:"id" doc:"Page ID"`
	Body   SectionBody
}

type SectionOutput struct {
	Body *domain.Section
}

type ListSectionsOutput struct {
	Body []*domain.Section
}

type SectionIDInput struct {
	ID uuid.UUID `path:"id" doc:"Section ID"`
}

type UpdateSectionInput struct {
	ID   uuid.UUID `path:"id" doc:"Section ID"`
	Body SectionBody
}

type ReorderSectionsInput struct {
	PageID uuid.UUID `path:"id" doc:"Page ID"`
	Body   struct {
		SectionIDs []uuid.UUID `json:"sectionIds" doc:"Section IDs in their new order; unlisted sections follow in their previous order"`
	}
}

func RegisterSectionRoutes(api huma.API, svc ContentService) {
	huma.Register(api, huma.Operation{
		OperationID: "create-section",
		Method:      http.MethodPost,
		Path:        "/pages/{id}/sections",
		Summary:     "Add a section to a page",
		Tags:        []string{"Sections"},
	}, func(ctx context.Context, input *CreateSectionInput) (*SectionOutput, error) {
		if err := authorizePage(ctx, svc, input.PageID); err != nil {
			return nil, err
		}

		s, err := svc.CreateSection(ctx, input.PageID, input.Body.input())
		if err != nil {
			return nil, apierr.From("v1.createSection", err)
		}
		return &SectionOutput{Body: s}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-sections",
		Method:      http.MethodGet,
		Path:        "/pages/{id}/sections",
		Summary:     "List the sections of a page in order",
		Tags:        []string{"Sections"},
	}, func(ctx context.Context, input *PageIDInput) (*ListSectionsOutput, error) {
		if err := authorizePage(ctx, svc, input.ID); err != nil {
			return nil, err
		}

		sections, err := svc.ListSections(ctx, input.ID)
		if err != nil {
			return nil, apierr.From("v1.listSections", err)
		}
		if sections == nil {
			sections = []*domain.Section{}
		}
		return &ListSectionsOutput{Body: sections}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "reorder-sections",
		Method:      http.MethodPut,
		Path:        "/pages/{id}/sections/order",
		Summary:     "Reorder the sections of a page",
		Description: "Applied atomically: either every section moves or none does.",
		Tags:        []string{"Sections"},
	}, func(ctx context.Context, input *ReorderSectionsInput) (*ListSectionsOutput, error) {
		if err := authorizePage(ctx, svc, input.PageID); err != nil {
			return nil, err
		}

		sections, err := svc.ReorderSections(ctx, input.PageID, input.Body.SectionIDs)
		if err != nil {
			return nil, apierr.From("v1.reorderSections", err)
		}
		return &ListSectionsOutput{Body: sections}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-section",
		Method:      http.MethodGet,
		Path:        "/sections/{id}",
		Summary:     "Get a section",
		Tags:        []string{"Sections"},
	}, func(ctx context.Context, input *SectionIDInput) (*SectionOutput, error) {
		if err := authorizeSection(ctx, svc, input.ID); err != nil {
			return nil, err
		}

		s, err := svc.GetSection(ctx, input.ID)
		if err != nil {
			return nil, apierr.From("v1.getSection", err)
		}
		return &SectionOutput{Body: s}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-section",
		Method:      http.MethodPatch,
		Path:        "/sections/{id}",
		Summary:     "Update a section",
		Tags:        []string{"Sections"},
	}, func(ctx context.Context, input *UpdateSectionInput) (*SectionOutput, error) {
		if err := authorizeSection(ctx, svc, input.ID); err != nil {
			return nil, err
		}

		s, err := svc.UpdateSection(ctx, input.ID, input.Body.input())
		if err != nil {
			return nil, apierr.From("v1.updateSection", err)
		}
		return &SectionOutput{Body: s}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "delete-section",
		Method:        http.MethodDelete,
		Path:          "/sections/{id}",
		Summary:       "Delete a section",
		Tags:          []string{"Sections"},
		DefaultStatus: http.StatusNoContent,
	}, func(ctx context.Context, input *SectionIDInput) (*struct{}, error) {
		if err := authorizeSection(ctx, svc, input.ID); err != nil {
			return nil, err
		}

		if err := svc.DeleteSection(ctx, input.ID); err != nil {
			return nil, apierr.From("v1.deleteSection", err)
		}
		return nil, nil
	})
}
