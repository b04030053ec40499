package revalidate

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"

	redisstore "github.com/gosuda/folio/internal/store/redis"
)

// Invalidator drops cached read payloads of one website.
type Invalidator interface {
	InvalidateWebsite(ctx context.Context, websiteID uuid.UUID) error
}

// CacheSink clears the website's cached public reads. Page scopes clear the
// whole website because listings embed page data too.
type CacheSink struct {
	cache Invalidator
}

func NewCacheSink(cache Invalidator) *CacheSink { return &CacheSink{cache: cache} }

func (s *CacheSink) Name() string { return "cache" }

func (s *CacheSink) Revalidate(ctx context.Context, t Target) error {
	if err := s.cache.InvalidateWebsite(ctx, t.WebsiteID); err != nil {
		return fmt.Errorf("revalidate.CacheSink: %w", err)
	}
	return nil
}

// Event is the payload announced on a website's revalidation channel.
type Event struct {
	Kind        Kind      `json:"kind"`
	WebsiteID   uuid.UUID `json:"websiteId"`
	WebsiteSlug string    `json:"websiteSlug,omitempty"`
	PageID      uuid.UUID `json:"pageId,omitzero"`
	PageSlug    string    `json:"pageSlug,omitempty"`
	At          time.Time `json:"at"`
}

func newEvent(t Target, now time.Time) Event {
	ev := Event{Kind: t.Scope.Kind, WebsiteID: t.WebsiteID, At: now}
	if t.Website != nil {
		ev.WebsiteSlug = t.Website.Slug
	}
	if t.Page != nil {
		ev.PageID = t.Page.ID
		ev.PageSlug = t.Page.Slug
	}
	return ev
}

type Publisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

// PubSubSink announces the change to live subscribers such as dashboard
// previews.
type PubSubSink struct {
	pub Publisher
	now func() time.Time
}

func NewPubSubSink(pub Publisher) *PubSubSink {
	return &PubSubSink{pub: pub, now: time.Now}
}

func (s *PubSubSink) Name() string { return "pubsub" }

func (s *PubSubSink) Revalidate(ctx context.Context, t Target) error {
	payload, err := json.Marshal(newEvent(t, s.now().UTC()))
	if err != nil {
		return fmt.Errorf("revalidate.PubSubSink: marshal: %w", err)
	}
	if err := s.pub.Publish(ctx, redisstore.RevalidationChannel(t.WebsiteID), payload); err != nil {
		return fmt.Errorf("revalidate.PubSubSink: %w", err)
	}
	return nil
}

// SecretOpener decrypts a website's stored webhook secret.
type SecretOpener interface {
	Decrypt(owner uuid.UUID, ciphertext string) (string, error)
}

// SecretHeader carries the shared secret on webhook calls.
const SecretHeader = "X-Revalidate-Secret"

// WebhookSink asks the website's front-end to rebuild its cached pages.
// Websites without a revalidate URL are skipped.
type WebhookSink struct {
	client *resty.Client
	vault  SecretOpener
	now    func() time.Time
}

func NewWebhookSink(vault SecretOpener, timeout time.Duration) *WebhookSink {
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("User-Agent", "folio-revalidate/1")
	return &WebhookSink{client: client, vault: vault, now: time.Now}
}

func (s *WebhookSink) Name() string { return "webhook" }

func (s *WebhookSink) Revalidate(ctx context.Context, t Target) error {
	if t.Website == nil || t.Website.RevalidateURL == "" {
		return nil
	}

	secret, err := s.vault.Decrypt(t.WebsiteID, t.Website.RevalidateSecret)
	if err != nil {
		return fmt.Errorf("revalidate.WebhookSink: secret: %w", err)
	}

	req := s.client.R().SetContext(ctx).SetBody(newEvent(t, s.now().UTC()))
	if secret != "" {
		req.SetHeader(SecretHeader, secret)
	}
	resp, err := req.Post(t.Website.RevalidateURL)
	if err != nil {
		return fmt.Errorf("revalidate.WebhookSink: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("revalidate.WebhookSink: %s answered %d", t.Website.RevalidateURL, resp.StatusCode())
	}
	return nil
}
