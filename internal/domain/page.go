package domain

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

type PageStatus string

const (
	PageStatusDraft     PageStatus = "DRAFT"
	PageStatusPublished PageStatus = "PUBLISHED"
)

// Valid reports whether s is a known page status.
func (s PageStatus) Valid() bool {
	return s == PageStatusDraft || s == PageStatusPublished
}

// Page is one page of one website. Edits to a published page are live
// immediately; there is no staged copy.
type Page struct {
	ID          uuid.UUID  `json:"id"`
	WebsiteID   uuid.UUID  `json:"websiteId"`
	Slug        string     `json:"slug"`
	Title       string     `json:"title"`
	Status      PageStatus `json:"status"`
	PublishedAt *time.Time `json:"publishedAt"` // nil until first publish
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// NewPage creates a DRAFT page with validated required fields.
func NewPage(websiteID uuid.UUID, slug, title string) (*Page, error) {
	if websiteID == uuid.Nil {
		return nil, Invalid("websiteId", "is required")
	}
	slug = strings.TrimSpace(slug)
	if !ValidSlug(slug) {
		return nil, Invalid("slug", "must be lowercase alphanumeric with hyphens")
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, Invalid("title", "is required")
	}
	now := time.Now().UTC()
	return &Page{
		ID:        uuid.New(),
		WebsiteID: websiteID,
		Slug:      slug,
		Title:     title,
		Status:    PageStatusDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Publish moves the page to PUBLISHED. The first publish date is kept on
// re-publish.
func (p *Page) Publish(now time.Time) {
	p.Status = PageStatusPublished
	if p.PublishedAt == nil {
		t := now
		p.PublishedAt = &t
	}
	p.UpdatedAt = now
}

// IsPublished reports whether the page carries the PUBLISHED status.
func (p *Page) IsPublished() bool {
	return p.Status == PageStatusPublished
}

// PageWithSections is a page plus its sections in rendering order.
type PageWithSections struct {
	Page
	Sections []*Section `json:"sections"`
}

type PageRepository interface {
	Create(ctx context.Context, p *Page) error
	GetByID(ctx context.Context, id uuid.UUID) (*Page, error)
	GetBySlug(ctx context.Context, websiteID uuid.UUID, slug string) (*Page, error)
	Update(ctx context.Context, p *Page) error
	// Publish atomically sets PUBLISHED and stamps published_at only when it
	// is still null. It returns the stored page.
	Publish(ctx context.Context, id uuid.UUID, now time.Time) (*Page, error)
	// Delete cascades to the page's sections.
	Delete(ctx context.Context, id uuid.UUID) error
	// List returns the website's pages; a non-empty status filters them.
	List(ctx context.Context, websiteID uuid.UUID, status PageStatus) ([]*Page, error)
}
