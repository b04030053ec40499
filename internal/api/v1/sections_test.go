package v1_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	v1 "github.com/gosuda/folio/internal/api/v1"
	"github.com/gosuda/folio/internal/content"
	"github.com/gosuda/folio/internal/domain"
)

// ---------------------------------------------------------------------------
// POST /pages/{id}/sections
// ---------------------------------------------------------------------------

func TestCreateSection(t *testing.T) {
	t.Parallel()

	websiteID := uuid.New()
	pageID := uuid.New()

	t.Run("appends_without_order", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		svc := &mockContentService{
			pageOwnerFunc: ownedBy(websiteID),
			createSectionFunc: func(_ context.Context, pid uuid.UUID, in content.SectionInput) (*domain.Section, error) {
				assert.Equal(t, pageID, pid)
				require.NotNil(t, in.Type)
				assert.Equal(t, "hero", *in.Type)
				assert.JSONEq(t, `{"title":"Trusted advisors"}`, string(in.TextContent))
				assert.Nil(t, in.Order)
				return &domain.Section{ID: uuid.New(), PageID: pid, Type: "hero", TextContent: in.TextContent, Order: 3}, nil
			},
		}
		v1.RegisterSectionRoutes(api, svc)

		resp := api.PostCtx(siteCtx(websiteID), "/pages/"+pageID.String()+"/sections", map[string]any{
			"type":        "hero",
			"textContent": map[string]any{"title": "Trusted advisors"},
		})

		require.Equal(t, http.StatusOK, resp.Code)

		var body domain.Section
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, 3, body.Order)
		assert.Equal(t, "hero", body.Type)
	})

	t.Run("negative_order", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		svc := &mockContentService{pageOwnerFunc: ownedBy(websiteID)}
		v1.RegisterSectionRoutes(api, svc)

		resp := api.PostCtx(adminCtx(), "/pages/"+pageID.String()+"/sections", map[string]any{
			"type":  "text",
			"order": -1,
		})

		assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
	})

	t.Run("content_not_object", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		svc := &mockContentService{
			pageOwnerFunc: ownedBy(websiteID),
			createSectionFunc: func(context.Context, uuid.UUID, content.SectionInput) (*domain.Section, error) {
				return nil, domain.Invalid("textContent", "must be a JSON object")
			},
		}
		v1.RegisterSectionRoutes(api, svc)

		resp := api.PostCtx(adminCtx(), "/pages/"+pageID.String()+"/sections", map[string]any{
			"type":        "text",
			"textContent": []string{"not", "an", "object"},
		})

		require.Equal(t, http.StatusBadRequest, resp.Code)
		assert.Contains(t, resp.Body.String(), "body.textContent")
	})
}

// ---------------------------------------------------------------------------
// GET /pages/{id}/sections
// ---------------------------------------------------------------------------

func TestListSections(t *testing.T) {
	t.Parallel()

	_, api := humatest.New(t)
	websiteID := uuid.New()
	pageID := uuid.New()
	svc := &mockContentService{
		pageOwnerFunc: ownedBy(websiteID),
		listSectionsFunc: func(_ context.Context, pid uuid.UUID) ([]*domain.Section, error) {
			assert.Equal(t, pageID, pid)
			return []*domain.Section{
				{ID: uuid.New(), PageID: pid, Type: "hero", Order: 0},
				{ID: uuid.New(), PageID: pid, Type: "services", Order: 1},
			}, nil
		},
	}
	v1.RegisterSectionRoutes(api, svc)

	resp := api.GetCtx(adminCtx(), "/pages/"+pageID.String()+"/sections")

	require.Equal(t, http.StatusOK, resp.Code)

	var body []domain.Section
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body, 2)
	assert.Equal(t, "hero", body[0].Type)
	assert.Equal(t, "services", body[1].Type)
}

// ---------------------------------------------------------------------------
// PUT /pages/{id}/sections/order
// ---------------------------------------------------------------------------

func TestReorderSections(t *testing.T) {
	t.Parallel()

	websiteID := uuid.New()
	pageID := uuid.New()
	a, b := uuid.New(), uuid.New()

	t.Run("happy_path", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		svc := &mockContentService{
			pageOwnerFunc: ownedBy(websiteID),
			reorderSectionsFunc: func(_ context.Context, pid uuid.UUID, ids []uuid.UUID) ([]*domain.Section, error) {
				assert.Equal(t, pageID, pid)
				assert.Equal(t, []uuid.UUID{b, a}, ids)
				return []*domain.Section{
					{ID: b, PageID: pid, Type: "cta", Order: 0},
					{ID: a, PageID: pid, Type: "hero", Order: 1},
				}, nil
			},
		}
		v1.RegisterSectionRoutes(api, svc)

		resp := api.PutCtx(siteCtx(websiteID), "/pages/"+pageID.String()+"/sections/order", map[string]any{
			"sectionIds": []string{b.String(), a.String()},
		})

		require.Equal(t, http.StatusOK, resp.Code)

		var body []domain.Section
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		require.Len(t, body, 2)
		assert.Equal(t, b, body[0].ID)
		assert.Equal(t, 1, body[1].Order)
	})

	t.Run("foreign_section", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		svc := &mockContentService{
			pageOwnerFunc: ownedBy(websiteID),
			reorderSectionsFunc: func(context.Context, uuid.UUID, []uuid.UUID) ([]*domain.Section, error) {
				return nil, domain.Invalid("sectionIds", "contains a section of another page")
			},
		}
		v1.RegisterSectionRoutes(api, svc)

		resp := api.PutCtx(adminCtx(), "/pages/"+pageID.String()+"/sections/order", map[string]any{
			"sectionIds": []string{uuid.NewString()},
		})

		assert.Equal(t, http.StatusBadRequest, resp.Code)
	})

	t.Run("lost_race", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		svc := &mockContentService{
			pageOwnerFunc: ownedBy(websiteID),
			reorderSectionsFunc: func(context.Context, uuid.UUID, []uuid.UUID) ([]*domain.Section, error) {
				return nil, fmt.Errorf("content.ReorderSections: %w", domain.ErrConcurrencyConflict)
			},
		}
		v1.RegisterSectionRoutes(api, svc)

		resp := api.PutCtx(adminCtx(), "/pages/"+pageID.String()+"/sections/order", map[string]any{
			"sectionIds": []string{a.String(), b.String()},
		})

		assert.Equal(t, http.StatusConflict, resp.Code)
		assert.Equal(t, "1", resp.Header().Get("Retry-After"))
	})
}

// ---------------------------------------------------------------------------
// /sections/{id}
// ---------------------------------------------------------------------------

func TestSectionByID(t *testing.T) {
	t.Parallel()

	websiteID := uuid.New()
	sectionID := uuid.New()

	t.Run("get", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		svc := &mockContentService{
			sectionOwnerFunc: ownedBy(websiteID),
			getSectionFunc: func(_ context.Context, id uuid.UUID) (*domain.Section, error) {
				assert.Equal(t, sectionID, id)
				return &domain.Section{ID: id, Type: "contact", TextContent: json.RawMessage(`{}`)}, nil
			},
		}
		v1.RegisterSectionRoutes(api, svc)

		resp := api.GetCtx(siteCtx(websiteID), "/sections/"+sectionID.String())

		require.Equal(t, http.StatusOK, resp.Code)
		assert.Contains(t, resp.Body.String(), `"contact"`)
	})

	t.Run("update_image_only", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		svc := &mockContentService{
			sectionOwnerFunc: ownedBy(websiteID),
			updateSectionFunc: func(_ context.Context, id uuid.UUID, in content.SectionInput) (*domain.Section, error) {
				assert.Equal(t, sectionID, id)
				assert.Nil(t, in.Type)
				assert.Nil(t, in.TextContent)
				require.NotNil(t, in.ImageURL)
				return &domain.Section{ID: id, Type: "text-image", ImageURL: *in.ImageURL}, nil
			},
		}
		v1.RegisterSectionRoutes(api, svc)

		resp := api.PatchCtx(adminCtx(), "/sections/"+sectionID.String(), map[string]any{
			"imageUrl": "https://cdn.example/office.jpg",
		})

		require.Equal(t, http.StatusOK, resp.Code)

		var body domain.Section
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "https://cdn.example/office.jpg", body.ImageURL)
	})

	t.Run("delete", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		called := false
		svc := &mockContentService{
			sectionOwnerFunc: ownedBy(websiteID),
			deleteSectionFunc: func(context.Context, uuid.UUID) error {
				called = true
				return nil
			},
		}
		v1.RegisterSectionRoutes(api, svc)

		resp := api.DeleteCtx(siteCtx(websiteID), "/sections/"+sectionID.String())

		assert.Equal(t, http.StatusNoContent, resp.Code)
		assert.True(t, called)
	})

	t.Run("not_found", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		svc := &mockContentService{
			sectionOwnerFunc: func(context.Context, uuid.UUID) (uuid.UUID, error) {
				return uuid.Nil, domain.ErrSectionNotFound
			},
		}
		v1.RegisterSectionRoutes(api, svc)

		resp := api.DeleteCtx(adminCtx(), "/sections/"+sectionID.String())

		require.Equal(t, http.StatusNotFound, resp.Code)
		assert.Contains(t, resp.Body.String(), "section not found")
	})

	t.Run("foreign_site_admin", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		svc := &mockContentService{sectionOwnerFunc: ownedBy(websiteID)}
		v1.RegisterSectionRoutes(api, svc)

		resp := api.GetCtx(siteCtx(uuid.New()), "/sections/"+sectionID.String())

		assert.Equal(t, http.StatusForbidden, resp.Code)
	})
	t.Run("site_admin_unknown_section", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		svc := &mockContentService{
			sectionOwnerFunc: func(context.Context, uuid.UUID) (uuid.UUID, error) {
				return uuid.Nil, domain.ErrSectionNotFound
			},
		}
		v1.RegisterSectionRoutes(api, svc)

		resp := api.DeleteCtx(siteCtx(websiteID), "/sections/"+sectionID.String())

		assert.Equal(t, http.StatusForbidden, resp.Code)
		assert.NotContains(t, resp.Body.String(), "section not found")
	})
}
