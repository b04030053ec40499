// Package memory is an in-process Store with the same consistency contract
// as the Postgres store. It backs FOLIO_STORE=memory and handler tests.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gosuda/folio/internal/domain"
)

// Store keeps all rows behind one RWMutex, which makes each repository call
// atomic in the same way a single statement or transaction is in Postgres.
type Store struct {
	mu         sync.RWMutex
	users      map[uuid.UUID]domain.User
	websites   map[uuid.UUID]domain.Website
	pages      map[uuid.UUID]domain.Page
	sections   map[uuid.UUID]domain.Section
	siteAdmins map[uuid.UUID]domain.SiteAdmin

	// failReorderAt, when set, aborts a reorder after that many rows were
	// staged. Tests use it to check that nothing is applied.
	failReorderAt func(step int) error
}

func New() *Store {
	return &Store{
		users:      make(map[uuid.UUID]domain.User),
		websites:   make(map[uuid.UUID]domain.Website),
		pages:      make(map[uuid.UUID]domain.Page),
		sections:   make(map[uuid.UUID]domain.Section),
		siteAdmins: make(map[uuid.UUID]domain.SiteAdmin),
	}
}

// Migrate is a no-op; it lets Store stand in wherever a migrating store is
// expected.
func (s *Store) Migrate(context.Context) error { return nil }

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Close() {}

func (s *Store) Users() domain.UserRepository           { return (*userRepo)(s) }
func (s *Store) Websites() domain.WebsiteRepository     { return (*websiteRepo)(s) }
func (s *Store) Pages() domain.PageRepository           { return (*pageRepo)(s) }
func (s *Store) Sections() domain.SectionRepository     { return (*sectionRepo)(s) }
func (s *Store) SiteAdmins() domain.SiteAdminRepository { return (*siteAdminRepo)(s) }

// SetReorderFailure installs a hook called after each staged row of a
// reorder; a non-nil error aborts the whole reorder.
func (s *Store) SetReorderFailure(fn func(step int) error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failReorderAt = fn
}

func cloneRaw(raw json.RawMessage) json.RawMessage {
	if raw == nil {
		return nil
	}
	out := make(json.RawMessage, len(raw))
	copy(out, raw)
	return out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

// --- users ---

type userRepo Store

func (r *userRepo) Create(_ context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return fmt.Errorf("memory.userRepo.Create: %w: email", domain.ErrConflict)
		}
	}
	r.users[u.ID] = *u
	return nil
}

func (r *userRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("memory.userRepo.GetByID: %w", domain.ErrNotFound)
	}
	return &u, nil
}

func (r *userRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, fmt.Errorf("memory.userRepo.GetByEmail: %w", domain.ErrNotFound)
}

func (r *userRepo) Update(_ context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[u.ID]; !ok {
		return fmt.Errorf("memory.userRepo.Update: %w", domain.ErrNotFound)
	}
	u.UpdatedAt = time.Now().UTC()
	r.users[u.ID] = *u
	return nil
}

func (r *userRepo) List(_ context.Context) ([]*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, &u)
	}
	sortByCreated(out, func(u *domain.User) (time.Time, uuid.UUID) { return u.CreatedAt, u.ID })
	return out, nil
}

// --- site admins ---

type siteAdminRepo Store

func (r *siteAdminRepo) Upsert(_ context.Context, a *domain.SiteAdmin) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.websites[a.WebsiteID]; !ok {
		return fmt.Errorf("memory.siteAdminRepo.Upsert: %w", domain.ErrWebsiteNotFound)
	}
	if existing, ok := r.siteAdmins[a.WebsiteID]; ok {
		a.CreatedAt = existing.CreatedAt
	} else {
		a.CreatedAt = a.UpdatedAt
	}
	r.siteAdmins[a.WebsiteID] = *a
	return nil
}

func (r *siteAdminRepo) GetByWebsite(_ context.Context, websiteID uuid.UUID) (*domain.SiteAdmin, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.siteAdmins[websiteID]
	if !ok {
		return nil, fmt.Errorf("memory.siteAdminRepo.GetByWebsite: %w", domain.ErrNotFound)
	}
	return &a, nil
}

func (r *siteAdminRepo) Delete(_ context.Context, websiteID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.siteAdmins[websiteID]; !ok {
		return fmt.Errorf("memory.siteAdminRepo.Delete: %w", domain.ErrNotFound)
	}
	delete(r.siteAdmins, websiteID)
	return nil
}
