// Package content resolves public reads and applies admin mutations to
// websites, pages and sections.
package content

import (
	"context"
	"errors"
	"fmt"

	"github.com/gosuda/folio/internal/domain"
)

// ResolvedPage is a page with its sections in rendering order, plus the
// website it belongs to. Aliased is set when the page was found through the
// slug alias table rather than by exact match.
type ResolvedPage struct {
	Website *domain.Website          `json:"website"`
	Page    *domain.PageWithSections `json:"page"`
	Aliased bool                     `json:"aliased"`
}

// Resolver answers the public read surface. It never writes.
type Resolver struct {
	websites domain.WebsiteRepository
	pages    domain.PageRepository
	sections domain.SectionRepository
}

func NewResolver(websites domain.WebsiteRepository, pages domain.PageRepository, sections domain.SectionRepository) *Resolver {
	return &Resolver{websites: websites, pages: pages, sections: sections}
}

// ResolveWebsite returns an active website by slug. Missing websites yield
// ErrWebsiteNotFound and inactive ones ErrInactiveWebsite.
func (r *Resolver) ResolveWebsite(ctx context.Context, slug string) (*domain.Website, error) {
	w, err := r.websites.GetBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("content.ResolveWebsite: %w", err)
	}
	if !w.IsActive {
		return nil, fmt.Errorf("content.ResolveWebsite: %s: %w", slug, domain.ErrInactiveWebsite)
	}
	return w, nil
}

// WebsiteStatus reports the gate flags whether or not the website is active.
func (r *Resolver) WebsiteStatus(ctx context.Context, slug string) (domain.WebsiteStatus, error) {
	w, err := r.websites.GetBySlug(ctx, slug)
	if err != nil {
		return domain.WebsiteStatus{}, fmt.Errorf("content.WebsiteStatus: %w", err)
	}
	return w.Status(), nil
}

// ResolvePage looks the page up by exact slug first and falls back to the
// slug's alias once. The inactive check runs before any page lookup, so an
// offline website never leaks content.
//
// Pages are returned regardless of status; Page.Status tells callers whether
// to badge the page as a draft.
func (r *Resolver) ResolvePage(ctx context.Context, websiteSlug, pageSlug string) (*ResolvedPage, error) {
	w, err := r.ResolveWebsite(ctx, websiteSlug)
	if err != nil {
		return nil, fmt.Errorf("content.ResolvePage: %w", err)
	}

	aliased := false
	p, err := r.pages.GetBySlug(ctx, w.ID, pageSlug)
	if errors.Is(err, domain.ErrNotFound) {
		if alias, ok := domain.PageSlugAlias(pageSlug); ok {
			p, err = r.pages.GetBySlug(ctx, w.ID, alias)
			aliased = err == nil
		}
	}
	if err != nil {
		return nil, fmt.Errorf("content.ResolvePage: %s/%s: %w", websiteSlug, pageSlug, err)
	}

	sections, err := r.sections.ListByPage(ctx, p.ID)
	if err != nil {
		return nil, fmt.Errorf("content.ResolvePage: sections: %w", err)
	}
	domain.SortSections(sections)

	return &ResolvedPage{
		Website: w,
		Page:    &domain.PageWithSections{Page: *p, Sections: sections},
		Aliased: aliased,
	}, nil
}

// ListPublishedPages returns the PUBLISHED pages of an active website.
func (r *Resolver) ListPublishedPages(ctx context.Context, websiteSlug string) ([]*domain.Page, error) {
	w, err := r.ResolveWebsite(ctx, websiteSlug)
	if err != nil {
		return nil, fmt.Errorf("content.ListPublishedPages: %w", err)
	}
	pages, err := r.pages.List(ctx, w.ID, domain.PageStatusPublished)
	if err != nil {
		return nil, fmt.Errorf("content.ListPublishedPages: %w", err)
	}
	return pages, nil
}
