package v1

import (
	"context"
	"errors"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/gosuda/folio/internal/api/apierr"
	"github.com/gosuda/folio/internal/domain"
	"github.com/gosuda/folio/internal/server/middleware"
)

func requirePlatformAdmin(ctx context.Context) error {
	if middleware.IsPlatformAdmin(ctx) {
		return nil
	}
	if _, ok := middleware.SiteSessionFromContext(ctx); ok {
		return huma.Error403Forbidden("platform administrator required")
	}
	if _, ok := middleware.RoleFromContext(ctx); ok {
		return huma.Error403Forbidden("insufficient permissions")
	}
	return huma.Error401Unauthorized("authentication required")
}

func authorizeWebsite(ctx context.Context, websiteID uuid.UUID) error {
	if middleware.CanManageWebsite(ctx, websiteID) {
		return nil
	}
	_, site := middleware.SiteSessionFromContext(ctx)
	_, platform := middleware.RoleFromContext(ctx)
	if site || platform {
		return huma.Error403Forbidden("website not accessible")
	}
	return huma.Error401Unauthorized("authentication required")
}

// authorizePage resolves the page's website and checks access to it. Only
// platform administrators learn that an id does not exist; everyone else is
// refused the same way for missing and foreign pages.
func authorizePage(ctx context.Context, svc ContentService, pageID uuid.UUID) error {
	if err := requireIdentity(ctx); err != nil {
		return err
	}
	websiteID, err := svc.PageOwner(ctx, pageID)
	if err != nil {
		return ownerLookupError(ctx, "v1.authorizePage", err)
	}
	return authorizeWebsite(ctx, websiteID)
}

func authorizeSection(ctx context.Context, svc ContentService, sectionID uuid.UUID) error {
	if err := requireIdentity(ctx); err != nil {
		return err
	}
	websiteID, err := svc.SectionOwner(ctx, sectionID)
	if err != nil {
		return ownerLookupError(ctx, "v1.authorizeSection", err)
	}
	return authorizeWebsite(ctx, websiteID)
}

func requireIdentity(ctx context.Context) error {
	_, site := middleware.SiteSessionFromContext(ctx)
	_, platform := middleware.RoleFromContext(ctx)
	if site || platform {
		return nil
	}
	return huma.Error401Unauthorized("authentication required")
}

func ownerLookupError(ctx context.Context, op string, err error) error {
	if errors.Is(err, domain.ErrNotFound) && !middleware.IsPlatformAdmin(ctx) {
		return huma.Error403Forbidden("website not accessible")
	}
	return apierr.From(op, err)
}
