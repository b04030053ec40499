package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/folio/internal/api/public"
	v1 "github.com/gosuda/folio/internal/api/v1"
	"github.com/gosuda/folio/internal/api/ws"
)

func registerPublicRoutes(api huma.API, deps Deps) {
	public.RegisterContentRoutes(api, deps.Reader, deps.Renderer)
	public.RegisterSiteAdminRoutes(api, deps.SiteAdmins)
}

func registerAuthRoutes(api huma.API, deps Deps) {
	v1.RegisterAuthRoutes(api, deps.Auth)
}

func registerAPIRoutes(api huma.API, deps Deps) {
	v1.RegisterAccountRoutes(api, deps.Auth)
	v1.RegisterWebsiteRoutes(api, deps.Content)
	v1.RegisterPageRoutes(api, deps.Content)
	v1.RegisterSectionRoutes(api, deps.Content)
	v1.RegisterRevalidationRoutes(api, deps.Content, deps.Revalidator)
	v1.RegisterSiteAdminRoutes(api, deps.SiteAdmins)
}

func registerWSRoutes(r chi.Router, hub *ws.Hub) {
	r.Get("/revalidations/{websiteID}", hub.ServeRevalidations)
}

const readinessTimeout = 2 * time.Second

// readiness answers 503 while any check fails. Failure detail goes to the
// log, not to the caller.
func readiness(checks map[string]Checker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		status := http.StatusOK
		report := make(map[string]string, len(checks))
		for name, c := range checks {
			if err := c.Ping(ctx); err != nil {
				log.Warn().Err(err).Str("check", name).Msg("readiness check failed")
				report[name] = "down"
				status = http.StatusServiceUnavailable
				continue
			}
			report[name] = "up"
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status": http.StatusText(status),
			"checks": report,
		})
	}
}
