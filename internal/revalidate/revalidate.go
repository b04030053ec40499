// Package revalidate propagates content changes to caches and front-ends.
//
// Triggers are fire-and-forget: a mutation enqueues a scope and returns. Pending
// scopes are coalesced, so a burst of edits to one page costs one pass over the
// sinks. Every sink must be idempotent; a scope may be delivered more than once
// and failures only leave content stale until the next trigger.
package revalidate

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/folio/internal/domain"
)

type Kind string

const (
	KindWebsite Kind = "website"
	KindPage    Kind = "page"
)

// Scope names what changed: a whole website or a single page.
type Scope struct {
	Kind Kind      `json:"kind"`
	ID   uuid.UUID `json:"id"`
}

func WebsiteScope(id uuid.UUID) Scope { return Scope{Kind: KindWebsite, ID: id} }
func PageScope(id uuid.UUID) Scope    { return Scope{Kind: KindPage, ID: id} }

func (s Scope) String() string { return string(s.Kind) + ":" + s.ID.String() }

// Target is a scope resolved against the store. Website is nil when the
// website no longer exists, which happens for deletions.
type Target struct {
	Scope     Scope
	WebsiteID uuid.UUID
	Website   *domain.Website
	Page      *domain.Page
}

// Sink is one place that holds derived content.
type Sink interface {
	Name() string
	Revalidate(ctx context.Context, t Target) error
}

// SinkResult reports the outcome of one sink for a synchronous call.
type SinkResult struct {
	Sink     string `json:"sink"`
	OK       bool   `json:"ok"`
	Attempts int    `json:"attempts"`
	Error    string `json:"error,omitempty"`
}

// Ack acknowledges a revalidation request. Results is empty for queued
// requests.
type Ack struct {
	Accepted bool         `json:"accepted"`
	Scope    Scope        `json:"scope"`
	Results  []SinkResult `json:"results,omitempty"`
}

type Options struct {
	Workers     int
	MaxAttempts int
	Backoff     time.Duration
	Timeout     time.Duration
}

func (o Options) withDefaults() Options {
	if o.Workers <= 0 {
		o.Workers = 2
	}
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = 3
	}
	if o.Backoff <= 0 {
		o.Backoff = 200 * time.Millisecond
	}
	if o.Timeout <= 0 {
		o.Timeout = 10 * time.Second
	}
	return o
}

type Revalidator struct {
	websites domain.WebsiteRepository
	pages    domain.PageRepository
	sinks    []Sink
	opts     Options

	mu      sync.Mutex
	pending map[Scope]struct{}
	queue   []Scope
	wake    chan struct{}
}

func New(websites domain.WebsiteRepository, pages domain.PageRepository, opts Options, sinks ...Sink) *Revalidator {
	return &Revalidator{
		websites: websites,
		pages:    pages,
		sinks:    sinks,
		opts:     opts.withDefaults(),
		pending:  make(map[Scope]struct{}),
		wake:     make(chan struct{}, 1),
	}
}

// Trigger enqueues scope and returns immediately. A scope already waiting
// is not queued twice.
func (r *Revalidator) Trigger(scope Scope) {
	r.mu.Lock()
	if _, ok := r.pending[scope]; ok {
		r.mu.Unlock()
		return
	}
	r.pending[scope] = struct{}{}
	r.queue = append(r.queue, scope)
	r.mu.Unlock()

	select {
	case r.wake <- struct{}{}:
	default:
	}
}

// Pending returns the number of queued scopes.
func (r *Revalidator) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.queue)
}

func (r *Revalidator) next() (Scope, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.queue) == 0 {
		return Scope{}, false
	}
	s := r.queue[0]
	r.queue = r.queue[1:]
	delete(r.pending, s)
	return s, true
}

// Run drains the queue with the configured number of workers until ctx is
// cancelled.
func (r *Revalidator) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for range r.opts.Workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.work(ctx)
		}()
	}
	wg.Wait()
}

func (r *Revalidator) work(ctx context.Context) {
	for {
		scope, ok := r.next()
		if !ok {
			select {
			case <-ctx.Done():
				return
			case <-r.wake:
				continue
			}
		}

		callCtx, cancel := context.WithTimeout(ctx, r.opts.Timeout)
		ack, err := r.Revalidate(callCtx, scope)
		cancel()
		if err != nil {
			log.Warn().Err(err).Str("scope", scope.String()).Msg("revalidate: resolve scope")
			continue
		}
		for _, res := range ack.Results {
			if !res.OK {
				log.Error().Str("scope", scope.String()).Str("sink", res.Sink).
					Int("attempts", res.Attempts).Str("error", res.Error).Msg("revalidate: sink failed")
			}
		}
	}
}

// Revalidate runs every sink for scope now. Sink failures are reported in
// the Ack, not as an error; the error is only for a scope that cannot be
// resolved.
func (r *Revalidator) Revalidate(ctx context.Context, scope Scope) (Ack, error) {
	target, err := r.resolve(ctx, scope)
	if err != nil {
		return Ack{Scope: scope}, err
	}

	ack := Ack{Accepted: true, Scope: scope, Results: make([]SinkResult, 0, len(r.sinks))}
	for _, sink := range r.sinks {
		ack.Results = append(ack.Results, r.runSink(ctx, sink, target))
	}
	log.Debug().Str("scope", scope.String()).Int("sinks", len(r.sinks)).Msg("revalidate: done")
	return ack, nil
}

func (r *Revalidator) resolve(ctx context.Context, scope Scope) (Target, error) {
	t := Target{Scope: scope}
	switch scope.Kind {
	case KindPage:
		p, err := r.pages.GetByID(ctx, scope.ID)
		if err != nil {
			return t, fmt.Errorf("revalidate.resolve: %w", err)
		}
		t.Page = p
		t.WebsiteID = p.WebsiteID
	case KindWebsite:
		t.WebsiteID = scope.ID
	default:
		return t, fmt.Errorf("revalidate.resolve: unknown scope kind %q: %w", scope.Kind, domain.ErrInvalidInput)
	}

	w, err := r.websites.GetByID(ctx, t.WebsiteID)
	switch {
	case err == nil:
		t.Website = w
	case errors.Is(err, domain.ErrNotFound):
	default:
		return t, fmt.Errorf("revalidate.resolve: %w", err)
	}
	return t, nil
}

func (r *Revalidator) runSink(ctx context.Context, sink Sink, t Target) SinkResult {
	res := SinkResult{Sink: sink.Name()}
	delay := r.opts.Backoff
	var err error
	for res.Attempts < r.opts.MaxAttempts {
		res.Attempts++
		if err = sink.Revalidate(ctx, t); err == nil {
			res.OK = true
			return res
		}
		if res.Attempts == r.opts.MaxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			res.Error = ctx.Err().Error()
			return res
		case <-time.After(delay):
		}
		delay *= 2
	}
	res.Error = err.Error()
	return res
}
