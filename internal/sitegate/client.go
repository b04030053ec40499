// Package sitegate gates a tenant front-end on its website's status flags.
// It sits at the edge, polls the backend's status endpoint and fails open
// whenever the backend cannot answer.
package sitegate

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
)

// Status mirrors the data of GET /public/website-status/{slug}.
type Status struct {
	IsActive       bool `json:"isActive"`
	IsAdminEnabled bool `json:"isAdminEnabled"`
}

// Open is assumed when nothing is known about a website.
var Open = Status{IsActive: true, IsAdminEnabled: true} //nolint:gochecknoglobals // fail-open default

type entry struct {
	status  Status
	expires time.Time
}

// Client fetches website status through a small TTL cache.
type Client struct {
	http *resty.Client
	ttl  time.Duration
	now  func() time.Time

	mu      sync.Mutex
	entries map[string]entry
}

func NewClient(backendURL string, timeout, ttl time.Duration) *Client {
	client := resty.New().
		SetBaseURL(backendURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "folio-sitegate/1")

	return &Client{
		http:    client,
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]entry),
	}
}

// Status returns the flags of the website with the given slug. On a backend
// failure it returns the last known flags, or Open, together with the error.
func (c *Client) Status(ctx context.Context, slug string) (Status, error) {
	c.mu.Lock()
	cached, ok := c.entries[slug]
	c.mu.Unlock()
	if ok && c.now().Before(cached.expires) {
		return cached.status, nil
	}

	fallback := Open
	if ok {
		fallback = cached.status
	}

	var out struct {
		Data Status `json:"data"`
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("slug", slug).
		SetResult(&out).
		Get("/public/website-status/{slug}")
	if err != nil {
		return fallback, fmt.Errorf("sitegate.Status: %w", err)
	}
	if resp.IsError() {
		return fallback, fmt.Errorf("sitegate.Status: backend answered %d", resp.StatusCode())
	}

	c.mu.Lock()
	c.entries[slug] = entry{status: out.Data, expires: c.now().Add(c.ttl)}
	c.mu.Unlock()

	return out.Data, nil
}
