package content

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gosuda/folio/internal/domain"
	"github.com/gosuda/folio/internal/revalidate"
)

// Trigger receives revalidation scopes after a successful mutation. It must
// not block.
type Trigger interface {
	Trigger(scope revalidate.Scope)
}

// SecretSealer encrypts a website's webhook secret before it is stored.
type SecretSealer interface {
	Encrypt(owner uuid.UUID, plaintext string) (string, error)
}

// Service applies admin mutations. Every successful write fires a
// revalidation; the write never depends on its outcome.
type Service struct {
	websites domain.WebsiteRepository
	pages    domain.PageRepository
	sections domain.SectionRepository
	sealer   SecretSealer
	trigger  Trigger
	now      func() time.Time
}

func NewService(
	websites domain.WebsiteRepository,
	pages domain.PageRepository,
	sections domain.SectionRepository,
	sealer SecretSealer,
	trigger Trigger,
) *Service {
	return &Service{
		websites: websites,
		pages:    pages,
		sections: sections,
		sealer:   sealer,
		trigger:  trigger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// --- websites ---

// WebsiteInput carries website fields. Nil pointers leave a field unchanged
// on update; on create they take the defaults of domain.NewWebsite.
type WebsiteInput struct {
	Slug             *string
	Name             *string
	Domain           *string
	ThemeConfig      *domain.ThemeConfig
	IsActive         *bool
	IsAdminEnabled   *bool
	Phone            *string
	Email            *string
	Address          *string
	WorkingHours     *string
	RevalidateURL    *string
	RevalidateSecret *string
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (s *Service) CreateWebsite(ctx context.Context, in WebsiteInput) (*domain.Website, error) {
	w, err := domain.NewWebsite(deref(in.Slug), deref(in.Name), deref(in.Domain))
	if err != nil {
		return nil, fmt.Errorf("content.CreateWebsite: %w", err)
	}
	in.Slug, in.Name, in.Domain = nil, nil, nil
	if err := s.applyWebsite(w, in); err != nil {
		return nil, fmt.Errorf("content.CreateWebsite: %w", err)
	}
	if err := s.websites.Create(ctx, w); err != nil {
		return nil, fmt.Errorf("content.CreateWebsite: %w", err)
	}
	s.trigger.Trigger(revalidate.WebsiteScope(w.ID))
	return w, nil
}

func (s *Service) GetWebsite(ctx context.Context, id uuid.UUID) (*domain.Website, error) {
	w, err := s.websites.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("content.GetWebsite: %w", err)
	}
	return w, nil
}

func (s *Service) ListWebsites(ctx context.Context, limit, offset int) ([]*domain.Website, error) {
	ws, err := s.websites.List(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("content.ListWebsites: %w", err)
	}
	return ws, nil
}

// UpdateWebsite patches the website. Changing the slug of a website that
// already has pages fails with ErrConflict.
func (s *Service) UpdateWebsite(ctx context.Context, id uuid.UUID, in WebsiteInput) (*domain.Website, error) {
	w, err := s.websites.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("content.UpdateWebsite: %w", err)
	}
	if err := s.applyWebsite(w, in); err != nil {
		return nil, fmt.Errorf("content.UpdateWebsite: %w", err)
	}
	if err := s.websites.Update(ctx, w); err != nil {
		return nil, fmt.Errorf("content.UpdateWebsite: %w", err)
	}
	s.trigger.Trigger(revalidate.WebsiteScope(w.ID))
	return w, nil
}

func (s *Service) applyWebsite(w *domain.Website, in WebsiteInput) error {
	if in.Slug != nil {
		slug := strings.TrimSpace(*in.Slug)
		if !domain.ValidSlug(slug) {
			return domain.Invalid("slug", "must be lowercase alphanumeric with hyphens")
		}
		w.Slug = slug
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return domain.Invalid("name", "is required")
		}
		w.Name = name
	}
	if in.Domain != nil {
		w.Domain = strings.TrimSpace(*in.Domain)
	}
	if in.ThemeConfig != nil {
		w.ThemeConfig = *in.ThemeConfig
	}
	if in.IsActive != nil {
		w.IsActive = *in.IsActive
	}
	if in.IsAdminEnabled != nil {
		w.IsAdminEnabled = *in.IsAdminEnabled
	}
	if in.Phone != nil {
		w.Phone = strings.TrimSpace(*in.Phone)
	}
	if in.Email != nil {
		w.Email = strings.TrimSpace(*in.Email)
	}
	if in.Address != nil {
		w.Address = strings.TrimSpace(*in.Address)
	}
	if in.WorkingHours != nil {
		w.WorkingHours = strings.TrimSpace(*in.WorkingHours)
	}
	if in.RevalidateURL != nil {
		raw := strings.TrimSpace(*in.RevalidateURL)
		if raw != "" {
			u, err := url.Parse(raw)
			if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
				return domain.Invalid("revalidateUrl", "must be an absolute http(s) URL")
			}
		}
		w.RevalidateURL = raw
	}
	if in.RevalidateSecret != nil {
		sealed, err := s.sealer.Encrypt(w.ID, *in.RevalidateSecret)
		if err != nil {
			return fmt.Errorf("seal revalidate secret: %w", err)
		}
		w.RevalidateSecret = sealed
	}
	return nil
}

func (s *Service) DeleteWebsite(ctx context.Context, id uuid.UUID) error {
	if err := s.websites.Delete(ctx, id); err != nil {
		return fmt.Errorf("content.DeleteWebsite: %w", err)
	}
	s.trigger.Trigger(revalidate.WebsiteScope(id))
	return nil
}

// --- pages ---

func (s *Service) CreatePage(ctx context.Context, websiteID uuid.UUID, slug, title string) (*domain.Page, error) {
	if _, err := s.websites.GetByID(ctx, websiteID); err != nil {
		return nil, fmt.Errorf("content.CreatePage: %w", err)
	}
	p, err := domain.NewPage(websiteID, slug, title)
	if err != nil {
		return nil, fmt.Errorf("content.CreatePage: %w", err)
	}
	if err := s.pages.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("content.CreatePage: %w", err)
	}
	s.trigger.Trigger(revalidate.PageScope(p.ID))
	return p, nil
}

// GetPage returns the page with its sections in rendering order.
func (s *Service) GetPage(ctx context.Context, id uuid.UUID) (*domain.PageWithSections, error) {
	p, err := s.pages.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("content.GetPage: %w", err)
	}
	sections, err := s.sections.ListByPage(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("content.GetPage: %w", err)
	}
	return &domain.PageWithSections{Page: *p, Sections: sections}, nil
}

// ListPages returns every page of the website; a non-empty status filters.
func (s *Service) ListPages(ctx context.Context, websiteID uuid.UUID, status domain.PageStatus) ([]*domain.Page, error) {
	if status != "" && !status.Valid() {
		return nil, fmt.Errorf("content.ListPages: %w", domain.Invalid("status", "must be DRAFT or PUBLISHED"))
	}
	if _, err := s.websites.GetByID(ctx, websiteID); err != nil {
		return nil, fmt.Errorf("content.ListPages: %w", err)
	}
	pages, err := s.pages.List(ctx, websiteID, status)
	if err != nil {
		return nil, fmt.Errorf("content.ListPages: %w", err)
	}
	return pages, nil
}

type PageInput struct {
	Slug   *string
	Title  *string
	Status *domain.PageStatus
}

// UpdatePage edits a page in place. Setting status to PUBLISHED stamps
// publishedAt only when it is still unset; setting DRAFT keeps it.
func (s *Service) UpdatePage(ctx context.Context, id uuid.UUID, in PageInput) (*domain.Page, error) {
	p, err := s.pages.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("content.UpdatePage: %w", err)
	}
	oldSlug := p.Slug
	if in.Slug != nil {
		slug := strings.TrimSpace(*in.Slug)
		if !domain.ValidSlug(slug) {
			return nil, fmt.Errorf("content.UpdatePage: %w", domain.Invalid("slug", "must be lowercase alphanumeric with hyphens"))
		}
		p.Slug = slug
	}
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, fmt.Errorf("content.UpdatePage: %w", domain.Invalid("title", "is required"))
		}
		p.Title = title
	}
	if in.Status != nil {
		if !in.Status.Valid() {
			return nil, fmt.Errorf("content.UpdatePage: %w", domain.Invalid("status", "must be DRAFT or PUBLISHED"))
		}
		p.Status = *in.Status
	}
	if err := s.pages.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("content.UpdatePage: %w", err)
	}
	if p.Slug != oldSlug {
		// The old path must drop out of every cache too.
		s.trigger.Trigger(revalidate.WebsiteScope(p.WebsiteID))
	} else {
		s.trigger.Trigger(revalidate.PageScope(p.ID))
	}
	return p, nil
}

// PublishPage sets PUBLISHED. Repeated and concurrent calls succeed and keep
// the first publishedAt.
func (s *Service) PublishPage(ctx context.Context, id uuid.UUID) (*domain.Page, error) {
	p, err := s.pages.Publish(ctx, id, s.now())
	if err != nil {
		return nil, fmt.Errorf("content.PublishPage: %w", err)
	}
	s.trigger.Trigger(revalidate.PageScope(p.ID))
	return p, nil
}

func (s *Service) DeletePage(ctx context.Context, id uuid.UUID) error {
	p, err := s.pages.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("content.DeletePage: %w", err)
	}
	if err := s.pages.Delete(ctx, id); err != nil {
		return fmt.Errorf("content.DeletePage: %w", err)
	}
	s.trigger.Trigger(revalidate.WebsiteScope(p.WebsiteID))
	return nil
}

// PageOwner returns the website a page belongs to.
func (s *Service) PageOwner(ctx context.Context, pageID uuid.UUID) (uuid.UUID, error) {
	p, err := s.pages.GetByID(ctx, pageID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("content.PageOwner: %w", err)
	}
	return p.WebsiteID, nil
}

// --- sections ---

type SectionInput struct {
	Type        *string
	TextContent json.RawMessage
	ImageURL    *string
	Order       *int
}

// CreateSection appends a section. Without an explicit order it goes after
// the page's last section.
func (s *Service) CreateSection(ctx context.Context, pageID uuid.UUID, in SectionInput) (*domain.Section, error) {
	if _, err := s.pages.GetByID(ctx, pageID); err != nil {
		return nil, fmt.Errorf("content.CreateSection: %w", err)
	}
	order := 0
	if in.Order != nil {
		order = *in.Order
	} else {
		next, err := s.sections.NextOrder(ctx, pageID)
		if err != nil {
			return nil, fmt.Errorf("content.CreateSection: %w", err)
		}
		order = next
	}
	sec, err := domain.NewSection(pageID, deref(in.Type), in.TextContent, deref(in.ImageURL), order)
	if err != nil {
		return nil, fmt.Errorf("content.CreateSection: %w", err)
	}
	if err := s.sections.Create(ctx, sec); err != nil {
		return nil, fmt.Errorf("content.CreateSection: %w", err)
	}
	s.trigger.Trigger(revalidate.PageScope(pageID))
	return sec, nil
}

func (s *Service) GetSection(ctx context.Context, id uuid.UUID) (*domain.Section, error) {
	sec, err := s.sections.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("content.GetSection: %w", err)
	}
	return sec, nil
}

func (s *Service) ListSections(ctx context.Context, pageID uuid.UUID) ([]*domain.Section, error) {
	if _, err := s.pages.GetByID(ctx, pageID); err != nil {
		return nil, fmt.Errorf("content.ListSections: %w", err)
	}
	sections, err := s.sections.ListByPage(ctx, pageID)
	if err != nil {
		return nil, fmt.Errorf("content.ListSections: %w", err)
	}
	return sections, nil
}

func (s *Service) UpdateSection(ctx context.Context, id uuid.UUID, in SectionInput) (*domain.Section, error) {
	sec, err := s.sections.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("content.UpdateSection: %w", err)
	}
	if in.Type != nil {
		t := strings.TrimSpace(*in.Type)
		if t == "" {
			return nil, fmt.Errorf("content.UpdateSection: %w", domain.Invalid("type", "is required"))
		}
		sec.Type = t
	}
	if in.TextContent != nil {
		if err := sec.SetContent(in.TextContent); err != nil {
			return nil, fmt.Errorf("content.UpdateSection: %w", err)
		}
	}
	if in.ImageURL != nil {
		sec.ImageURL = strings.TrimSpace(*in.ImageURL)
	}
	if in.Order != nil {
		if *in.Order < 0 {
			return nil, fmt.Errorf("content.UpdateSection: %w", domain.Invalid("order", "must not be negative"))
		}
		sec.Order = *in.Order
	}
	if err := s.sections.Update(ctx, sec); err != nil {
		return nil, fmt.Errorf("content.UpdateSection: %w", err)
	}
	s.trigger.Trigger(revalidate.PageScope(sec.PageID))
	return sec, nil
}

func (s *Service) DeleteSection(ctx context.Context, id uuid.UUID) error {
	sec, err := s.sections.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("content.DeleteSection: %w", err)
	}
	if err := s.sections.Delete(ctx, id); err != nil {
		return fmt.Errorf("content.DeleteSection: %w", err)
	}
	s.trigger.Trigger(revalidate.PageScope(sec.PageID))
	return nil
}

// ReorderSections moves the listed sections to the front in the given
// sequence; the rest keep their relative order after them.
func (s *Service) ReorderSections(ctx context.Context, pageID uuid.UUID, ids []uuid.UUID) ([]*domain.Section, error) {
	sections, err := s.sections.Reorder(ctx, pageID, ids)
	if err != nil {
		return nil, fmt.Errorf("content.ReorderSections: %w", err)
	}
	s.trigger.Trigger(revalidate.PageScope(pageID))
	return sections, nil
}

// SectionOwner returns the website a section belongs to.
func (s *Service) SectionOwner(ctx context.Context, sectionID uuid.UUID) (uuid.UUID, error) {
	sec, err := s.sections.GetByID(ctx, sectionID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("content.SectionOwner: %w", err)
	}
	return s.PageOwner(ctx, sec.PageID)
}
