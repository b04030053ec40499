package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type keyedLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// limiterSet hands out one token bucket per key. Entries idle for 30 minutes
// are swept every 10 minutes until ctx is done.
type limiterSet struct {
	mu       sync.Mutex
	limiters map[string]*keyedLimiter
	rps      rate.Limit
	burst    int
}

func newLimiterSet(ctx context.Context, requestsPerSecond float64, burst int) *limiterSet {
	ls := &limiterSet{
		limiters: make(map[string]*keyedLimiter),
		rps:      rate.Limit(requestsPerSecond),
		burst:    burst,
	}

	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				ls.sweep(time.Now().Add(-30 * time.Minute))
			case <-ctx.Done():
				return
			}
		}
	}()

	return ls
}

func (ls *limiterSet) sweep(cutoff time.Time) {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	for k, kl := range ls.limiters {
		if kl.lastAccess.Before(cutoff) {
			delete(ls.limiters, k)
		}
	}
}

func (ls *limiterSet) allow(key string) bool {
	ls.mu.Lock()
	kl, ok := ls.limiters[key]
	if !ok {
		kl = &keyedLimiter{limiter: rate.NewLimiter(ls.rps, ls.burst)}
		ls.limiters[key] = kl
	}
	kl.lastAccess = time.Now()
	ls.mu.Unlock()
	return kl.limiter.Allow()
}

func tooManyRequests(w http.ResponseWriter) {
	w.Header().Set("Retry-After", "1")
	http.Error(w, `{"title":"Too Many Requests","status":429,"detail":"rate limit exceeded"}`, http.StatusTooManyRequests)
}

// RateLimitByIP applies per-IP rate limiting for unauthenticated endpoints
// (public reads, logins). Chain after chi's RealIP so RemoteAddr is the
// client address.
func RateLimitByIP(ctx context.Context, requestsPerSecond float64, burst int) func(http.Handler) http.Handler {
	ls := newLimiterSet(ctx, requestsPerSecond, burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !ls.allow(r.RemoteAddr) {
				tooManyRequests(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RateLimit applies per-principal rate limiting after Auth: one bucket per
// platform user and one per site-admin website.
func RateLimit(ctx context.Context, requestsPerSecond float64, burst int) func(http.Handler) http.Handler {
	ls := newLimiterSet(ctx, requestsPerSecond, burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := principalKey(r.Context())
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}
			if !ls.allow(key) {
				tooManyRequests(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func principalKey(ctx context.Context) string {
	if id, ok := UserIDFromContext(ctx); ok {
		return "user:" + id.String()
	}
	if sess, ok := SiteSessionFromContext(ctx); ok {
		return "site:" + sess.WebsiteID.String()
	}
	return ""
}
