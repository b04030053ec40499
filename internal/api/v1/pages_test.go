package v1_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	v1 "github.com/gosuda/folio/internal/api/v1"
	"github.com/gosuda/folio/internal/content"
	"github.com/gosuda/folio/internal/domain"
)

func fixturePage(id, websiteID uuid.UUID, status domain.PageStatus) *domain.Page {
	now := time.Now().UTC()
	p := &domain.Page{
		ID:        id,
		WebsiteID: websiteID,
		Slug:      "home",
		Title:     "Home",
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if status == domain.PageStatusPublished {
		p.PublishedAt = &now
	}
	return p
}

// ---------------------------------------------------------------------------
// POST /websites/{id}/pages
// ---------------------------------------------------------------------------

func TestCreatePage(t *testing.T) {
	t.Parallel()

	websiteID := uuid.New()

	t.Run("site_admin_creates_draft", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		pageID := uuid.New()
		svc := &mockContentService{
			createPageFunc: func(_ context.Context, wid uuid.UUID, slug, title string) (*domain.Page, error) {
				assert.Equal(t, websiteID, wid)
				assert.Equal(t, "home", slug)
				assert.Equal(t, "Home", title)
				return fixturePage(pageID, wid, domain.PageStatusDraft), nil
			},
		}
		v1.RegisterPageRoutes(api, svc)

		resp := api.PostCtx(siteCtx(websiteID), "/websites/"+websiteID.String()+"/pages", map[string]any{
			"slug":  "home",
			"title": "Home",
		})

		require.Equal(t, http.StatusOK, resp.Code)

		var body domain.Page
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, pageID, body.ID)
		assert.Equal(t, domain.PageStatusDraft, body.Status)
		assert.Nil(t, body.PublishedAt)
	})

	t.Run("other_website", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		v1.RegisterPageRoutes(api, &mockContentService{})

		resp := api.PostCtx(siteCtx(uuid.New()), "/websites/"+websiteID.String()+"/pages", map[string]any{
			"slug":  "home",
			"title": "Home",
		})

		require.Equal(t, http.StatusForbidden, resp.Code)
		assert.Contains(t, resp.Body.String(), "website not accessible")
	})

	t.Run("duplicate_slug", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		svc := &mockContentService{
			createPageFunc: func(context.Context, uuid.UUID, string, string) (*domain.Page, error) {
				return nil, fmt.Errorf("content.CreatePage: %w", domain.ErrConflict)
			},
		}
		v1.RegisterPageRoutes(api, svc)

		resp := api.PostCtx(adminCtx(), "/websites/"+websiteID.String()+"/pages", map[string]any{
			"slug":  "home",
			"title": "Home",
		})

		assert.Equal(t, http.StatusConflict, resp.Code)
	})

	t.Run("missing_title", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		v1.RegisterPageRoutes(api, &mockContentService{})

		resp := api.PostCtx(adminCtx(), "/websites/"+websiteID.String()+"/pages", map[string]any{
			"slug": "home",
		})

		assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
	})
}

// ---------------------------------------------------------------------------
// GET /websites/{id}/pages
// ---------------------------------------------------------------------------

func TestListPages(t *testing.T) {
	t.Parallel()

	websiteID := uuid.New()

	tests := []struct {
		name       string
		query      string
		wantStatus domain.PageStatus
	}{
		{name: "all", query: "", wantStatus: ""},
		{name: "drafts", query: "?status=DRAFT", wantStatus: domain.PageStatusDraft},
		{name: "published", query: "?status=PUBLISHED", wantStatus: domain.PageStatusPublished},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, api := humatest.New(t)
			svc := &mockContentService{
				listPagesFunc: func(_ context.Context, wid uuid.UUID, status domain.PageStatus) ([]*domain.Page, error) {
					assert.Equal(t, websiteID, wid)
					assert.Equal(t, tt.wantStatus, status)
					return nil, nil
				},
			}
			v1.RegisterPageRoutes(api, svc)

			resp := api.GetCtx(adminCtx(), "/websites/"+websiteID.String()+"/pages"+tt.query)

			require.Equal(t, http.StatusOK, resp.Code)
			assert.JSONEq(t, "[]", resp.Body.String())
		})
	}

	t.Run("bad_status", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		svc := &mockContentService{
			listPagesFunc: func(context.Context, uuid.UUID, domain.PageStatus) ([]*domain.Page, error) {
				return nil, domain.Invalid("status", "must be DRAFT or PUBLISHED")
			},
		}
		v1.RegisterPageRoutes(api, svc)

		resp := api.GetCtx(adminCtx(), "/websites/"+websiteID.String()+"/pages?status=ARCHIVED")

		assert.Equal(t, http.StatusBadRequest, resp.Code)
	})
}

// ---------------------------------------------------------------------------
// GET /pages/{id}
// ---------------------------------------------------------------------------

func TestGetPage(t *testing.T) {
	t.Parallel()

	websiteID := uuid.New()
	pageID := uuid.New()

	t.Run("with_sections", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		svc := &mockContentService{
			pageOwnerFunc: ownedBy(websiteID),
			getPageFunc: func(_ context.Context, id uuid.UUID) (*domain.PageWithSections, error) {
				assert.Equal(t, pageID, id)
				return &domain.PageWithSections{
					Page: *fixturePage(pageID, websiteID, domain.PageStatusPublished),
					Sections: []*domain.Section{
						{ID: uuid.New(), PageID: pageID, Type: "hero", TextContent: json.RawMessage(`{"title":"Welcome"}`), Order: 0},
						{ID: uuid.New(), PageID: pageID, Type: "cta", TextContent: json.RawMessage(`{}`), Order: 1},
					},
				}, nil
			},
		}
		v1.RegisterPageRoutes(api, svc)

		resp := api.GetCtx(siteCtx(websiteID), "/pages/"+pageID.String())

		require.Equal(t, http.StatusOK, resp.Code)

		var body domain.PageWithSections
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "home", body.Slug)
		require.Len(t, body.Sections, 2)
		assert.Equal(t, "hero", body.Sections[0].Type)
		assert.JSONEq(t, `{"title":"Welcome"}`, string(body.Sections[0].TextContent))
	})

	t.Run("unknown_page", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		svc := &mockContentService{
			pageOwnerFunc: func(context.Context, uuid.UUID) (uuid.UUID, error) {
				return uuid.Nil, domain.ErrPageNotFound
			},
		}
		v1.RegisterPageRoutes(api, svc)

		resp := api.GetCtx(adminCtx(), "/pages/"+pageID.String())

		require.Equal(t, http.StatusNotFound, resp.Code)
		assert.Contains(t, resp.Body.String(), "page not found")
	})

	t.Run("foreign_page", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		svc := &mockContentService{pageOwnerFunc: ownedBy(uuid.New())}
		v1.RegisterPageRoutes(api, svc)

		resp := api.GetCtx(siteCtx(websiteID), "/pages/"+pageID.String())

		assert.Equal(t, http.StatusForbidden, resp.Code)
	})

	t.Run("site_admin_unknown_page", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		svc := &mockContentService{
			pageOwnerFunc: func(context.Context, uuid.UUID) (uuid.UUID, error) {
				return uuid.Nil, fmt.Errorf("content.PageOwner: %w", domain.ErrPageNotFound)
			},
		}
		v1.RegisterPageRoutes(api, svc)

		missing := api.GetCtx(siteCtx(websiteID), "/pages/"+pageID.String())
		assert.Equal(t, http.StatusForbidden, missing.Code)
		assert.NotContains(t, missing.Body.String(), "page not found")

		svc.pageOwnerFunc = ownedBy(uuid.New())
		foreign := api.GetCtx(siteCtx(websiteID), "/pages/"+pageID.String())
		assert.Equal(t, missing.Code, foreign.Code)
		assert.JSONEq(t, missing.Body.String(), foreign.Body.String())
	})

	t.Run("anonymous_unknown_page", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		svc := &mockContentService{
			pageOwnerFunc: func(context.Context, uuid.UUID) (uuid.UUID, error) {
				t.Error("owner lookup must not run without an identity")
				return uuid.Nil, domain.ErrPageNotFound
			},
		}
		v1.RegisterPageRoutes(api, svc)

		resp := api.Get("/pages/" + pageID.String())

		assert.Equal(t, http.StatusUnauthorized, resp.Code)
	})
}

// ---------------------------------------------------------------------------
// PATCH /pages/{id}
// ---------------------------------------------------------------------------

func TestUpdatePage(t *testing.T) {
	t.Parallel()

	websiteID := uuid.New()
	pageID := uuid.New()

	t.Run("publish_via_status", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		svc := &mockContentService{
			pageOwnerFunc: ownedBy(websiteID),
			updatePageFunc: func(_ context.Context, id uuid.UUID, in content.PageInput) (*domain.Page, error) {
				assert.Equal(t, pageID, id)
				assert.Nil(t, in.Slug)
				require.NotNil(t, in.Title)
				assert.Equal(t, "Welcome", *in.Title)
				require.NotNil(t, in.Status)
				assert.Equal(t, domain.PageStatusPublished, *in.Status)
				p := fixturePage(pageID, websiteID, domain.PageStatusPublished)
				p.Title = "Welcome"
				return p, nil
			},
		}
		v1.RegisterPageRoutes(api, svc)

		resp := api.PatchCtx(adminCtx(), "/pages/"+pageID.String(), map[string]any{
			"title":  "Welcome",
			"status": "PUBLISHED",
		})

		require.Equal(t, http.StatusOK, resp.Code)

		var body domain.Page
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "Welcome", body.Title)
		assert.NotNil(t, body.PublishedAt)
	})

	t.Run("unknown_status", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		svc := &mockContentService{pageOwnerFunc: ownedBy(websiteID)}
		v1.RegisterPageRoutes(api, svc)

		resp := api.PatchCtx(adminCtx(), "/pages/"+pageID.String(), map[string]any{"status": "ARCHIVED"})

		assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
	})
}

// ---------------------------------------------------------------------------
// POST /pages/{id}/publish
// ---------------------------------------------------------------------------

func TestPublishPage(t *testing.T) {
	t.Parallel()

	websiteID := uuid.New()
	pageID := uuid.New()

	t.Run("keeps_first_published_at", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		first := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
		calls := 0
		svc := &mockContentService{
			pageOwnerFunc: ownedBy(websiteID),
			publishPageFunc: func(_ context.Context, id uuid.UUID) (*domain.Page, error) {
				assert.Equal(t, pageID, id)
				calls++
				p := fixturePage(pageID, websiteID, domain.PageStatusPublished)
				p.PublishedAt = &first
				return p, nil
			},
		}
		v1.RegisterPageRoutes(api, svc)

		for range 2 {
			resp := api.PostCtx(siteCtx(websiteID), "/pages/"+pageID.String()+"/publish")
			require.Equal(t, http.StatusOK, resp.Code)

			var body domain.Page
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, domain.PageStatusPublished, body.Status)
			require.NotNil(t, body.PublishedAt)
			assert.True(t, first.Equal(*body.PublishedAt))
		}
		assert.Equal(t, 2, calls)
	})

	t.Run("unknown_page", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		svc := &mockContentService{
			pageOwnerFunc: func(context.Context, uuid.UUID) (uuid.UUID, error) {
				return uuid.Nil, domain.ErrPageNotFound
			},
		}
		v1.RegisterPageRoutes(api, svc)

		resp := api.PostCtx(adminCtx(), "/pages/"+pageID.String()+"/publish")

		assert.Equal(t, http.StatusNotFound, resp.Code)
	})
}

// ---------------------------------------------------------------------------
// DELETE /pages/{id}
// ---------------------------------------------------------------------------

func TestDeletePage(t *testing.T) {
	t.Parallel()

	_, api := humatest.New(t)
	websiteID := uuid.New()
	pageID := uuid.New()
	var deleted uuid.UUID
	svc := &mockContentService{
		pageOwnerFunc: ownedBy(websiteID),
		deletePageFunc: func(_ context.Context, id uuid.UUID) error {
			deleted = id
			return nil
		},
	}
	v1.RegisterPageRoutes(api, svc)

	resp := api.DeleteCtx(siteCtx(websiteID), "/pages/"+pageID.String())

	assert.Equal(t, http.StatusNoContent, resp.Code)
	assert.Equal(t, pageID, deleted)
}
