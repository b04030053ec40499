package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/gosuda/folio/internal/domain"
)

func sortByCreated[T any](items []T, key func(T) (time.Time, uuid.UUID)) {
	sort.SliceStable(items, func(i, j int) bool {
		ti, idi := key(items[i])
		tj, idj := key(items[j])
		if !ti.Equal(tj) {
			return ti.Before(tj)
		}
		return idi.String() < idj.String()
	})
}

// --- websites ---

type websiteRepo Store

func (r *websiteRepo) Create(_ context.Context, w *domain.Website) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.websites {
		if existing.Slug == w.Slug {
			return fmt.Errorf("memory.websiteRepo.Create: %w: websites_slug_key", domain.ErrConflict)
		}
	}
	r.websites[w.ID] = *w
	return nil
}

func (r *websiteRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Website, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	w, ok := r.websites[id]
	if !ok {
		return nil, fmt.Errorf("memory.websiteRepo.GetByID: %w", domain.ErrWebsiteNotFound)
	}
	return &w, nil
}

func (r *websiteRepo) GetBySlug(_ context.Context, slug string) (*domain.Website, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, w := range r.websites {
		if w.Slug == slug {
			return &w, nil
		}
	}
	return nil, fmt.Errorf("memory.websiteRepo.GetBySlug: %w", domain.ErrWebsiteNotFound)
}

func (r *websiteRepo) Update(_ context.Context, w *domain.Website) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.websites[w.ID]
	if !ok {
		return fmt.Errorf("memory.websiteRepo.Update: %w", domain.ErrWebsiteNotFound)
	}
	if existing.Slug != w.Slug {
		for _, p := range r.pages {
			if p.WebsiteID == w.ID {
				return fmt.Errorf("memory.websiteRepo.Update: slug is locked by existing pages: %w", domain.ErrConflict)
			}
		}
		for _, other := range r.websites {
			if other.ID != w.ID && other.Slug == w.Slug {
				return fmt.Errorf("memory.websiteRepo.Update: %w: websites_slug_key", domain.ErrConflict)
			}
		}
	}
	w.CreatedAt = existing.CreatedAt
	w.UpdatedAt = time.Now().UTC()
	r.websites[w.ID] = *w
	return nil
}

func (r *websiteRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.websites[id]; !ok {
		return fmt.Errorf("memory.websiteRepo.Delete: %w", domain.ErrWebsiteNotFound)
	}
	delete(r.websites, id)
	delete(r.siteAdmins, id)
	for pid, p := range r.pages {
		if p.WebsiteID == id {
			(*Store)(r).deletePageLocked(pid)
		}
	}
	return nil
}

func (r *websiteRepo) List(_ context.Context, limit, offset int) ([]*domain.Website, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]*domain.Website, 0, len(r.websites))
	for _, w := range r.websites {
		all = append(all, &w)
	}
	sortByCreated(all, func(w *domain.Website) (time.Time, uuid.UUID) { return w.CreatedAt, w.ID })
	return paginate(all, limit, offset), nil
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

// --- pages ---

type pageRepo Store

func (r *pageRepo) Create(_ context.Context, p *domain.Page) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.websites[p.WebsiteID]; !ok {
		return fmt.Errorf("memory.pageRepo.Create: %w", domain.ErrWebsiteNotFound)
	}
	for _, existing := range r.pages {
		if existing.WebsiteID == p.WebsiteID && existing.Slug == p.Slug {
			return fmt.Errorf("memory.pageRepo.Create: %w: pages_website_id_slug_key", domain.ErrConflict)
		}
	}
	stored := *p
	stored.PublishedAt = cloneTime(p.PublishedAt)
	r.pages[p.ID] = stored
	return nil
}

func (r *pageRepo) get(id uuid.UUID) (*domain.Page, bool) {
	p, ok := r.pages[id]
	if !ok {
		return nil, false
	}
	p.PublishedAt = cloneTime(p.PublishedAt)
	return &p, true
}

func (r *pageRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Page, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.get(id)
	if !ok {
		return nil, fmt.Errorf("memory.pageRepo.GetByID: %w", domain.ErrPageNotFound)
	}
	return p, nil
}

func (r *pageRepo) GetBySlug(_ context.Context, websiteID uuid.UUID, slug string) (*domain.Page, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for id, p := range r.pages {
		if p.WebsiteID == websiteID && p.Slug == slug {
			out, _ := r.get(id)
			return out, nil
		}
	}
	return nil, fmt.Errorf("memory.pageRepo.GetBySlug: %w", domain.ErrPageNotFound)
}

func (r *pageRepo) Update(_ context.Context, p *domain.Page) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.pages[p.ID]
	if !ok {
		return fmt.Errorf("memory.pageRepo.Update: %w", domain.ErrPageNotFound)
	}
	for _, other := range r.pages {
		if other.ID != p.ID && other.WebsiteID == existing.WebsiteID && other.Slug == p.Slug {
			return fmt.Errorf("memory.pageRepo.Update: %w: pages_website_id_slug_key", domain.ErrConflict)
		}
	}

	now := time.Now().UTC()
	existing.Slug = p.Slug
	existing.Title = p.Title
	existing.Status = p.Status
	if p.Status == domain.PageStatusPublished && existing.PublishedAt == nil {
		existing.PublishedAt = &now
	}
	existing.UpdatedAt = now
	r.pages[p.ID] = existing

	p.PublishedAt = cloneTime(existing.PublishedAt)
	p.UpdatedAt = now
	return nil
}

func (r *pageRepo) Publish(_ context.Context, id uuid.UUID, now time.Time) (*domain.Page, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.pages[id]
	if !ok {
		return nil, fmt.Errorf("memory.pageRepo.Publish: %w", domain.ErrPageNotFound)
	}
	p.Publish(now)
	r.pages[id] = p

	out, _ := r.get(id)
	return out, nil
}

func (r *pageRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.pages[id]; !ok {
		return fmt.Errorf("memory.pageRepo.Delete: %w", domain.ErrPageNotFound)
	}
	(*Store)(r).deletePageLocked(id)
	return nil
}

func (s *Store) deletePageLocked(id uuid.UUID) {
	delete(s.pages, id)
	for sid, sec := range s.sections {
		if sec.PageID == id {
			delete(s.sections, sid)
		}
	}
}

func (r *pageRepo) List(_ context.Context, websiteID uuid.UUID, status domain.PageStatus) ([]*domain.Page, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*domain.Page
	for id, p := range r.pages {
		if p.WebsiteID != websiteID || (status != "" && p.Status != status) {
			continue
		}
		cp, _ := r.get(id)
		out = append(out, cp)
	}
	sortByCreated(out, func(p *domain.Page) (time.Time, uuid.UUID) { return p.CreatedAt, p.ID })
	return out, nil
}

// --- sections ---

type sectionRepo Store

func (r *sectionRepo) copyOf(s domain.Section) *domain.Section {
	s.TextContent = cloneRaw(s.TextContent)
	return &s
}

func (r *sectionRepo) Create(_ context.Context, s *domain.Section) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.pages[s.PageID]; !ok {
		return fmt.Errorf("memory.sectionRepo.Create: %w", domain.ErrPageNotFound)
	}
	stored := *s
	stored.TextContent = cloneRaw(s.TextContent)
	r.sections[s.ID] = stored
	return nil
}

func (r *sectionRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Section, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sections[id]
	if !ok {
		return nil, fmt.Errorf("memory.sectionRepo.GetByID: %w", domain.ErrSectionNotFound)
	}
	return r.copyOf(s), nil
}

func (r *sectionRepo) Update(_ context.Context, s *domain.Section) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.sections[s.ID]
	if !ok {
		return fmt.Errorf("memory.sectionRepo.Update: %w", domain.ErrSectionNotFound)
	}
	existing.Type = s.Type
	existing.TextContent = cloneRaw(s.TextContent)
	existing.ImageURL = s.ImageURL
	existing.Order = s.Order
	existing.UpdatedAt = time.Now().UTC()
	r.sections[s.ID] = existing
	s.UpdatedAt = existing.UpdatedAt
	return nil
}

func (r *sectionRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sections[id]; !ok {
		return fmt.Errorf("memory.sectionRepo.Delete: %w", domain.ErrSectionNotFound)
	}
	delete(r.sections, id)
	return nil
}

func (r *sectionRepo) listLocked(pageID uuid.UUID) []*domain.Section {
	var out []*domain.Section
	for _, s := range r.sections {
		if s.PageID == pageID {
			out = append(out, r.copyOf(s))
		}
	}
	domain.SortSections(out)
	return out
}

func (r *sectionRepo) ListByPage(_ context.Context, pageID uuid.UUID) ([]*domain.Section, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.listLocked(pageID), nil
}

func (r *sectionRepo) NextOrder(_ context.Context, pageID uuid.UUID) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	highest := 0
	for _, s := range r.sections {
		if s.PageID == pageID && s.Order > highest {
			highest = s.Order
		}
	}
	return highest + 1, nil
}

// Reorder stages every new order value first and only then writes them, so a
// failure leaves the stored ordering untouched.
func (r *sectionRepo) Reorder(_ context.Context, pageID uuid.UUID, ids []uuid.UUID) ([]*domain.Section, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.pages[pageID]; !ok {
		return nil, fmt.Errorf("memory.sectionRepo.Reorder: %w", domain.ErrPageNotFound)
	}

	current := r.listLocked(pageID)
	plan, err := domain.PlanReorder(current, ids)
	if err != nil {
		return nil, fmt.Errorf("memory.sectionRepo.Reorder: %w", err)
	}

	staged := make(map[uuid.UUID]domain.Section, len(current))
	now := time.Now().UTC()
	for step, s := range current {
		s.Order = plan[s.ID]
		s.UpdatedAt = now
		staged[s.ID] = *s
		if r.failReorderAt != nil {
			if err := r.failReorderAt(step); err != nil {
				return nil, fmt.Errorf("memory.sectionRepo.Reorder: %w", err)
			}
		}
	}

	for id, s := range staged {
		r.sections[id] = s
	}

	domain.SortSections(current)
	return current, nil
}
