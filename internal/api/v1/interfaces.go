package v1

import (
	"context"

	"github.com/google/uuid"

	"github.com/gosuda/folio/internal/auth"
	"github.com/gosuda/folio/internal/content"
	"github.com/gosuda/folio/internal/domain"
	"github.com/gosuda/folio/internal/revalidate"
	"github.com/gosuda/folio/internal/siteadmin"
)

// AuthService abstracts platform authentication for handler testing.
// *auth.Service satisfies this interface.
type AuthService interface {
	Login(ctx context.Context, email, password string) (*auth.TokenPair, error)
	RefreshToken(ctx context.Context, refreshToken string) (string, error)
	GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

// ContentService abstracts website, page and section mutations.
// *content.Service satisfies this interface.
type ContentService interface {
	CreateWebsite(ctx context.Context, in content.WebsiteInput) (*domain.Website, error)
	GetWebsite(ctx context.Context, id uuid.UUID) (*domain.Website, error)
	ListWebsites(ctx context.Context, limit, offset int) ([]*domain.Website, error)
	UpdateWebsite(ctx context.Context, id uuid.UUID, in content.WebsiteInput) (*domain.Website, error)
	DeleteWebsite(ctx context.Context, id uuid.UUID) error

	CreatePage(ctx context.Context, websiteID uuid.UUID, slug, title string) (*domain.Page, error)
	GetPage(ctx context.Context, id uuid.UUID) (*domain.PageWithSections, error)
	ListPages(ctx context.Context, websiteID uuid.UUID, status domain.PageStatus) ([]*domain.Page, error)
	UpdatePage(ctx context.Context, id uuid.UUID, in content.PageInput) (*domain.Page, error)
	PublishPage(ctx context.Context, id uuid.UUID) (*domain.Page, error)
	DeletePage(ctx context.Context, id uuid.UUID) error
	PageOwner(ctx context.Context, pageID uuid.UUID) (uuid.UUID, error)

	CreateSection(ctx context.Context, pageID uuid.UUID, in content.SectionInput) (*domain.Section, error)
	GetSection(ctx context.Context, id uuid.UUID) (*domain.Section, error)
	ListSections(ctx context.Context, pageID uuid.UUID) ([]*domain.Section, error)
	UpdateSection(ctx context.Context, id uuid.UUID, in content.SectionInput) (*domain.Section, error)
	DeleteSection(ctx context.Context, id uuid.UUID) error
	ReorderSections(ctx context.Context, pageID uuid.UUID, ids []uuid.UUID) ([]*domain.Section, error)
	SectionOwner(ctx context.Context, sectionID uuid.UUID) (uuid.UUID, error)
}

// Revalidator abstracts cache revalidation.
// *revalidate.Revalidator satisfies this interface.
type Revalidator interface {
	Trigger(scope revalidate.Scope)
	Revalidate(ctx context.Context, scope revalidate.Scope) (revalidate.Ack, error)
}

// SiteAdminService abstracts site-admin credential management.
// *siteadmin.Service satisfies this interface.
type SiteAdminService interface {
	Upsert(ctx context.Context, websiteID uuid.UUID, email, password, confirm string) (*siteadmin.Info, error)
	Info(ctx context.Context, websiteID uuid.UUID) (*siteadmin.Info, error)
	Delete(ctx context.Context, websiteID uuid.UUID) error
}
