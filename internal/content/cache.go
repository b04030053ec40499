package content

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/folio/internal/domain"
	redisstore "github.com/gosuda/folio/internal/store/redis"
)

// Cache stores serialized read payloads grouped by website.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, websiteID uuid.UUID, key string, value []byte, ttl time.Duration) error
}

// Reader is the public read surface shared by Resolver and CachedResolver.
type Reader interface {
	ResolveWebsite(ctx context.Context, slug string) (*domain.Website, error)
	WebsiteStatus(ctx context.Context, slug string) (domain.WebsiteStatus, error)
	ResolvePage(ctx context.Context, websiteSlug, pageSlug string) (*ResolvedPage, error)
	ListPublishedPages(ctx context.Context, websiteSlug string) ([]*domain.Page, error)
}

// CachedResolver serves page and listing payloads from Cache. The website
// row itself is always read from the store, and a cached payload is used
// only while it was filed under the same revision (id and updatedAt) of that
// row. A website change therefore takes effect on the next read even when
// invalidation has not run yet or failed. Errors are never cached, and a
// failing cache degrades to reading through.
type CachedResolver struct {
	next  *Resolver
	cache Cache
	ttl   time.Duration
}

func NewCachedResolver(next *Resolver, cache Cache, ttl time.Duration) *CachedResolver {
	return &CachedResolver{next: next, cache: cache, ttl: ttl}
}

func (c *CachedResolver) ResolveWebsite(ctx context.Context, slug string) (*domain.Website, error) {
	return c.next.ResolveWebsite(ctx, slug)
}

func (c *CachedResolver) WebsiteStatus(ctx context.Context, slug string) (domain.WebsiteStatus, error) {
	return c.next.WebsiteStatus(ctx, slug)
}

func (c *CachedResolver) ResolvePage(ctx context.Context, websiteSlug, pageSlug string) (*ResolvedPage, error) {
	w, err := c.next.ResolveWebsite(ctx, websiteSlug)
	if err != nil {
		return nil, fmt.Errorf("content.ResolvePage: %w", err)
	}
	key := redisstore.CacheKey("page", websiteSlug, pageSlug)
	var rp ResolvedPage
	if c.load(ctx, key, &rp) && rp.Website != nil && sameRevision(rp.Website.ID, rp.Website.UpdatedAt, w) {
		rp.Website = w
		return &rp, nil
	}
	got, err := c.next.ResolvePage(ctx, websiteSlug, pageSlug)
	if err != nil {
		return nil, err
	}
	// The resolver read the row again; only file the payload under the
	// revision checked above.
	if sameRevision(got.Website.ID, got.Website.UpdatedAt, w) {
		c.store(ctx, w.ID, key, got)
	}
	return got, nil
}

type cachedListing struct {
	WebsiteID uuid.UUID      `json:"websiteId"`
	Revision  time.Time      `json:"revision"`
	Pages     []*domain.Page `json:"pages"`
}

func (c *CachedResolver) ListPublishedPages(ctx context.Context, websiteSlug string) ([]*domain.Page, error) {
	w, err := c.next.ResolveWebsite(ctx, websiteSlug)
	if err != nil {
		return nil, fmt.Errorf("content.ListPublishedPages: %w", err)
	}
	key := redisstore.CacheKey("pages", websiteSlug)
	var cl cachedListing
	if c.load(ctx, key, &cl) && sameRevision(cl.WebsiteID, cl.Revision, w) {
		return cl.Pages, nil
	}
	pages, err := c.next.ListPublishedPages(ctx, websiteSlug)
	if err != nil {
		return nil, err
	}
	c.store(ctx, w.ID, key, cachedListing{WebsiteID: w.ID, Revision: w.UpdatedAt, Pages: pages})
	return pages, nil
}

func sameRevision(id uuid.UUID, updatedAt time.Time, w *domain.Website) bool {
	return id == w.ID && updatedAt.Equal(w.UpdatedAt)
}

func (c *CachedResolver) load(ctx context.Context, key string, into any) bool {
	raw, ok, err := c.cache.Get(ctx, key)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("content cache read failed")
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal(raw, into); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("content cache entry unreadable")
		return false
	}
	return true
}

func (c *CachedResolver) store(ctx context.Context, websiteID uuid.UUID, key string, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("content cache encode failed")
		return
	}
	if err := c.cache.Set(ctx, websiteID, key, raw, c.ttl); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("content cache write failed")
	}
}
