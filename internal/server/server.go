package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/folio/internal/api/public"
	v1 "github.com/gosuda/folio/internal/api/v1"
	"github.com/gosuda/folio/internal/api/ws"
	"github.com/gosuda/folio/internal/config"
	"github.com/gosuda/folio/internal/content"
	"github.com/gosuda/folio/internal/render"
	"github.com/gosuda/folio/internal/server/middleware"
)

// SiteAdminService covers both halves of site-admin handling: sessions on the
// public surface and credential management on the admin API.
// *siteadmin.Service satisfies this interface.
type SiteAdminService interface {
	public.SiteAdminService
	v1.SiteAdminService
}

// Checker is a dependency probed by /readyz.
type Checker interface {
	Ping(ctx context.Context) error
}

// Deps are the services the routes are built on.
type Deps struct {
	Content     v1.ContentService
	Reader      content.Reader
	Renderer    *render.Renderer
	Auth        v1.AuthService
	SiteAdmins  SiteAdminService
	Revalidator v1.Revalidator
	// Events feeds the revalidation WebSocket. Nil leaves /ws unmounted.
	Events ws.Subscriber
	Checks map[string]Checker
}

// Server is the HTTP server that wires all application routes and middleware.
type Server struct {
	router     chi.Router
	httpServer *http.Server
}

// New creates a Server with all routes wired. ctx bounds the background
// sweepers of the rate limiters.
func New(ctx context.Context, cfg *config.Config, deps Deps) *Server {
	router := chi.NewRouter()

	// Global middleware stack.
	router.Use(chimw.RequestID)
	router.Use(chimw.RealIP)
	router.Use(middleware.RequestLogger)
	router.Use(chimw.Recoverer)
	router.Use(cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler)

	s := &Server{
		router: router,
		httpServer: &http.Server{
			Addr:         cfg.Server.Addr,
			Handler:      router,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
	}

	// Public site reads and site-admin sessions, limited per client IP.
	router.Group(func(r chi.Router) {
		r.Use(middleware.RateLimitByIP(ctx, cfg.Server.RateLimit, cfg.Server.RateBurst))

		api := humachi.New(r, apiConfig("Folio Public API", "", "/public"))
		registerPublicRoutes(api, deps)
	})

	// Mount the admin API on /api/v1 with two sub-groups:
	// 1. Unauthenticated group for platform login.
	// 2. Authenticated group for everything else.
	router.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimitByIP(ctx, cfg.Server.RateLimit, cfg.Server.RateBurst))

			authAPI := humachi.New(r, apiConfig("Folio Auth API", "/api/v1", "/auth"))
			registerAuthRoutes(authAPI, deps)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT.Secret, deps.SiteAdmins))
			r.Use(middleware.RateLimit(ctx, cfg.Server.RateLimit, cfg.Server.RateBurst))

			api := humachi.New(r, apiConfig("Folio Admin API", "/api/v1", ""))
			registerAPIRoutes(api, deps)
		})
	})

	if deps.Events != nil {
		router.Route("/ws", func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT.Secret, deps.SiteAdmins))
			registerWSRoutes(r, ws.NewHub(deps.Events))
		})
	} else {
		log.Info().Msg("redis disabled, revalidation websocket not mounted")
	}

	// Health check (unauthenticated).
	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	router.Get("/readyz", readiness(deps.Checks))

	return s
}

// apiConfig builds a huma config whose docs live under docsPrefix, so that
// several APIs can share one router.
func apiConfig(title, serverURL, docsPrefix string) huma.Config {
	c := huma.DefaultConfig(title, "1.0.0")
	if serverURL != "" {
		c.Servers = []*huma.Server{{URL: serverURL}}
	}
	c.OpenAPIPath = docsPrefix + "/openapi"
	c.DocsPath = docsPrefix + "/docs"
	c.SchemasPath = docsPrefix + "/schemas"
	return c
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start begins listening for HTTP requests.
func (s *Server) Start(_ context.Context) error {
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server.Start: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}
