package v1_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	v1 "github.com/gosuda/folio/internal/api/v1"
	"github.com/gosuda/folio/internal/domain"
	"github.com/gosuda/folio/internal/revalidate"
)

func TestRevalidateWebsite(t *testing.T) {
	t.Parallel()

	websiteID := uuid.New()

	t.Run("queued", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		svc := &mockContentService{
			getWebsiteFunc: func(_ context.Context, id uuid.UUID) (*domain.Website, error) {
				return fixtureWebsite(id), nil
			},
		}
		reval := &mockRevalidator{}
		v1.RegisterRevalidationRoutes(api, svc, reval)

		resp := api.PostCtx(siteCtx(websiteID), "/websites/"+websiteID.String()+"/revalidate")

		require.Equal(t, http.StatusAccepted, resp.Code)
		require.Len(t, reval.triggered, 1)
		assert.Equal(t, revalidate.WebsiteScope(websiteID), reval.triggered[0])

		var body revalidate.Ack
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.True(t, body.Accepted)
		assert.Equal(t, revalidate.KindWebsite, body.Scope.Kind)
		assert.Empty(t, body.Results)
	})

	t.Run("wait_reports_results", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		svc := &mockContentService{
			getWebsiteFunc: func(_ context.Context, id uuid.UUID) (*domain.Website, error) {
				return fixtureWebsite(id), nil
			},
		}
		reval := &mockRevalidator{
			revalidateFunc: func(_ context.Context, scope revalidate.Scope) (revalidate.Ack, error) {
				assert.Equal(t, revalidate.WebsiteScope(websiteID), scope)
				return revalidate.Ack{
					Accepted: true,
					Scope:    scope,
					Results: []revalidate.SinkResult{
						{Sink: "cache", OK: true},
						{Sink: "webhook", OK: false, Error: "503 Service Unavailable"},
					},
				}, nil
			},
		}
		v1.RegisterRevalidationRoutes(api, svc, reval)

		resp := api.PostCtx(adminCtx(), "/websites/"+websiteID.String()+"/revalidate?wait=true")

		require.Equal(t, http.StatusOK, resp.Code)
		assert.Empty(t, reval.triggered)

		var body revalidate.Ack
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		require.Len(t, body.Results, 2)
		assert.False(t, body.Results[1].OK)
	})

	t.Run("unknown_website", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		svc := &mockContentService{
			getWebsiteFunc: func(context.Context, uuid.UUID) (*domain.Website, error) {
				return nil, domain.ErrWebsiteNotFound
			},
		}
		reval := &mockRevalidator{}
		v1.RegisterRevalidationRoutes(api, svc, reval)

		resp := api.PostCtx(adminCtx(), "/websites/"+websiteID.String()+"/revalidate")

		assert.Equal(t, http.StatusNotFound, resp.Code)
		assert.Empty(t, reval.triggered)
	})

	t.Run("foreign_site_admin", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		reval := &mockRevalidator{}
		v1.RegisterRevalidationRoutes(api, &mockContentService{}, reval)

		resp := api.PostCtx(siteCtx(uuid.New()), "/websites/"+websiteID.String()+"/revalidate")

		assert.Equal(t, http.StatusForbidden, resp.Code)
		assert.Empty(t, reval.triggered)
	})
}

func TestRevalidatePage(t *testing.T) {
	t.Parallel()

	websiteID := uuid.New()
	pageID := uuid.New()

	t.Run("queued", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		svc := &mockContentService{pageOwnerFunc: ownedBy(websiteID)}
		reval := &mockRevalidator{}
		v1.RegisterRevalidationRoutes(api, svc, reval)

		resp := api.PostCtx(siteCtx(websiteID), "/pages/"+pageID.String()+"/revalidate")

		require.Equal(t, http.StatusAccepted, resp.Code)
		require.Len(t, reval.triggered, 1)
		assert.Equal(t, revalidate.PageScope(pageID), reval.triggered[0])
	})

	t.Run("wait_failure", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		svc := &mockContentService{pageOwnerFunc: ownedBy(websiteID)}
		reval := &mockRevalidator{
			revalidateFunc: func(_ context.Context, scope revalidate.Scope) (revalidate.Ack, error) {
				return revalidate.Ack{Scope: scope}, errors.New("page vanished mid-flight")
			},
		}
		v1.RegisterRevalidationRoutes(api, svc, reval)

		resp := api.PostCtx(adminCtx(), "/pages/"+pageID.String()+"/revalidate?wait=true")

		assert.Equal(t, http.StatusInternalServerError, resp.Code)
	})
}
