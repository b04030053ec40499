package sitegate

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
)

// StatusSource reports a website's flags. *Client satisfies this interface.
type StatusSource interface {
	Status(ctx context.Context, slug string) (Status, error)
}

const offlinePage = `<!doctype html>
<html lang="en">
<head><meta charset="utf-8"><title>Temporarily offline</title></head>
<body style="font-family:sans-serif;text-align:center;padding:4rem">
<h1>This website is temporarily offline</h1>
<p>Please check back soon.</p>
</body>
</html>
`

// Middleware serves an offline page while the website is inactive and hides
// the embedded admin under /admin while admin is disabled. Lookup failures
// let the request through.
func Middleware(src StatusSource, slug string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			st, err := src.Status(r.Context(), slug)
			if err != nil {
				log.Warn().Err(err).Str("website", slug).Msg("sitegate: status unavailable, failing open")
			}

			if !st.IsActive {
				w.Header().Set("Content-Type", "text/html; charset=utf-8")
				w.Header().Set("Cache-Control", "no-store")
				w.Header().Set("Retry-After", "300")
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte(offlinePage))
				return
			}

			if !st.IsAdminEnabled && isAdminPath(r.URL.Path) {
				http.NotFound(w, r)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func isAdminPath(p string) bool {
	return p == "/admin" || strings.HasPrefix(p, "/admin/")
}
