package v1_test

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/gosuda/folio/internal/auth"
	"github.com/gosuda/folio/internal/content"
	"github.com/gosuda/folio/internal/domain"
	"github.com/gosuda/folio/internal/revalidate"
	"github.com/gosuda/folio/internal/server/middleware"
	"github.com/gosuda/folio/internal/siteadmin"
)

// ---------------------------------------------------------------------------
// Context helpers: inject the caller's identity for DoCtx
// ---------------------------------------------------------------------------

func adminCtx() context.Context {
	return middleware.WithPlatformUser(context.Background(), uuid.New(), auth.RoleAdmin)
}

func siteCtx(websiteID uuid.UUID) context.Context {
	return middleware.WithSiteSession(context.Background(), &siteadmin.Session{
		WebsiteID:   websiteID,
		WebsiteSlug: "acme",
		Email:       "owner@acme.test",
		ExpiresAt:   time.Now().Add(time.Hour),
	})
}

// ---------------------------------------------------------------------------
// Mock ContentService
// ---------------------------------------------------------------------------

type mockContentService struct {
	createWebsiteFunc func(ctx context.Context, in content.WebsiteInput) (*domain.Website, error)
	getWebsiteFunc    func(ctx context.Context, id uuid.UUID) (*domain.Website, error)
	listWebsitesFunc  func(ctx context.Context, limit, offset int) ([]*domain.Website, error)
	updateWebsiteFunc func(ctx context.Context, id uuid.UUID, in content.WebsiteInput) (*domain.Website, error)
	deleteWebsiteFunc func(ctx context.Context, id uuid.UUID) error

	createPageFunc  func(ctx context.Context, websiteID uuid.UUID, slug, title string) (*domain.Page, error)
	getPageFunc     func(ctx context.Context, id uuid.UUID) (*domain.PageWithSections, error)
	listPagesFunc   func(ctx context.Context, websiteID uuid.UUID, status domain.PageStatus) ([]*domain.Page, error)
	updatePageFunc  func(ctx context.Context, id uuid.UUID, in content.PageInput) (*domain.Page, error)
	publishPageFunc func(ctx context.Context, id uuid.UUID) (*domain.Page, error)
	deletePageFunc  func(ctx context.Context, id uuid.UUID) error
	pageOwnerFunc   func(ctx context.Context, pageID uuid.UUID) (uuid.UUID, error)

	createSectionFunc   func(ctx context.Context, pageID uuid.UUID, in content.SectionInput) (*domain.Section, error)
	getSectionFunc      func(ctx context.Context, id uuid.UUID) (*domain.Section, error)
	listSectionsFunc    func(ctx context.Context, pageID uuid.UUID) ([]*domain.Section, error)
	updateSectionFunc   func(ctx context.Context, id uuid.UUID, in content.SectionInput) (*domain.Section, error)
	deleteSectionFunc   func(ctx context.Context, id uuid.UUID) error
	reorderSectionsFunc func(ctx context.Context, pageID uuid.UUID, ids []uuid.UUID) ([]*domain.Section, error)
	sectionOwnerFunc    func(ctx context.Context, sectionID uuid.UUID) (uuid.UUID, error)
}

func (m *mockContentService) CreateWebsite(ctx context.Context, in content.WebsiteInput) (*domain.Website, error) {
	return m.createWebsiteFunc(ctx, in)
}

func (m *mockContentService) GetWebsite(ctx context.Context, id uuid.UUID) (*domain.Website, error) {
	return m.getWebsiteFunc(ctx, id)
}

func (m *mockContentService) ListWebsites(ctx context.Context, limit, offset int) ([]*domain.Website, error) {
	return m.listWebsitesFunc(ctx, limit, offset)
}

func (m *mockContentService) UpdateWebsite(ctx context.Context, id uuid.UUID, in content.WebsiteInput) (*domain.Website, error) {
	return m.updateWebsiteFunc(ctx, id, in)
}

func (m *mockContentService) DeleteWebsite(ctx context.Context, id uuid.UUID) error {
	return m.deleteWebsiteFunc(ctx, id)
}

func (m *mockContentService) CreatePage(ctx context.Context, websiteID uuid.UUID, slug, title string) (*domain.Page, error) {
	return m.createPageFunc(ctx, websiteID, slug, title)
}

func (m *mockContentService) GetPage(ctx context.Context, id uuid.UUID) (*domain.PageWithSections, error) {
	return m.getPageFunc(ctx, id)
}

func (m *mockContentService) ListPages(ctx context.Context, websiteID uuid.UUID, status domain.PageStatus) ([]*domain.Page, error) {
	return m.listPagesFunc(ctx, websiteID, status)
}

func (m *mockContentService) UpdatePage(ctx context.Context, id uuid.UUID, in content.PageInput) (*domain.Page, error) {
	return m.updatePageFunc(ctx, id, in)
}

func (m *mockContentService) PublishPage(ctx context.Context, id uuid.UUID) (*domain.Page, error) {
	return m.publishPageFunc(ctx, id)
}

func (m *mockContentService) DeletePage(ctx context.Context, id uuid.UUID) error {
	return m.deletePageFunc(ctx, id)
}

func (m *mockContentService) PageOwner(ctx context.Context, pageID uuid.UUID) (uuid.UUID, error) {
	return m.pageOwnerFunc(ctx, pageID)
}

func (m *mockContentService) CreateSection(ctx context.Context, pageID uuid.UUID, in content.SectionInput) (*domain.Section, error) {
	return m.createSectionFunc(ctx, pageID, in)
}

func (m *mockContentService) GetSection(ctx context.Context, id uuid.UUID) (*domain.Section, error) {
	return m.getSectionFunc(ctx, id)
}

func (m *mockContentService) ListSections(ctx context.Context, pageID uuid.UUID) ([]*domain.Section, error) {
	return m.listSectionsFunc(ctx, pageID)
}

func (m *mockContentService) UpdateSection(ctx context.Context, id uuid.UUID, in content.SectionInput) (*domain.Section, error) {
	return m.updateSectionFunc(ctx, id, in)
}

func (m *mockContentService) DeleteSection(ctx context.Context, id uuid.UUID) error {
	return m.deleteSectionFunc(ctx, id)
}

func (m *mockContentService) ReorderSections(ctx context.Context, pageID uuid.UUID, ids []uuid.UUID) ([]*domain.Section, error) {
	return m.reorderSectionsFunc(ctx, pageID, ids)
}

func (m *mockContentService) SectionOwner(ctx context.Context, sectionID uuid.UUID) (uuid.UUID, error) {
	return m.sectionOwnerFunc(ctx, sectionID)
}

// ownedBy returns an owner lookup that maps every ID to websiteID.
func ownedBy(websiteID uuid.UUID) func(context.Context, uuid.UUID) (uuid.UUID, error) {
	return func(context.Context, uuid.UUID) (uuid.UUID, error) { return websiteID, nil }
}

// ---------------------------------------------------------------------------
// Mock AuthService
// ---------------------------------------------------------------------------

type mockAuthService struct {
	loginFunc   func(ctx context.Context, email, password string) (*auth.TokenPair, error)
	refreshFunc func(ctx context.Context, refreshToken string) (string, error)
	getUserFunc func(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

func (m *mockAuthService) Login(ctx context.Context, email, password string) (*auth.TokenPair, error) {
	return m.loginFunc(ctx, email, password)
}

func (m *mockAuthService) RefreshToken(ctx context.Context, refreshToken string) (string, error) {
	return m.refreshFunc(ctx, refreshToken)
}

func (m *mockAuthService) GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return m.getUserFunc(ctx, id)
}

// ---------------------------------------------------------------------------
// Mock Revalidator
// ---------------------------------------------------------------------------

type mockRevalidator struct {
	triggered      []revalidate.Scope
	revalidateFunc func(ctx context.Context, scope revalidate.Scope) (revalidate.Ack, error)
}

func (m *mockRevalidator) Trigger(scope revalidate.Scope) {
	m.triggered = append(m.triggered, scope)
}

func (m *mockRevalidator) Revalidate(ctx context.Context, scope revalidate.Scope) (revalidate.Ack, error) {
	return m.revalidateFunc(ctx, scope)
}

// ---------------------------------------------------------------------------
// Mock SiteAdminService
// ---------------------------------------------------------------------------

type mockSiteAdminService struct {
	upsertFunc func(ctx context.Context, websiteID uuid.UUID, email, password, confirm string) (*siteadmin.Info, error)
	infoFunc   func(ctx context.Context, websiteID uuid.UUID) (*siteadmin.Info, error)
	deleteFunc func(ctx context.Context, websiteID uuid.UUID) error
}

func (m *mockSiteAdminService) Upsert(ctx context.Context, websiteID uuid.UUID, email, password, confirm string) (*siteadmin.Info, error) {
	return m.upsertFunc(ctx, websiteID, email, password, confirm)
}

func (m *mockSiteAdminService) Info(ctx context.Context, websiteID uuid.UUID) (*siteadmin.Info, error) {
	return m.infoFunc(ctx, websiteID)
}

func (m *mockSiteAdminService) Delete(ctx context.Context, websiteID uuid.UUID) error {
	return m.deleteFunc(ctx, websiteID)
}
