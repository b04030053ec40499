package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/folio/internal/config"
	"github.com/gosuda/folio/internal/server/middleware"
	"github.com/gosuda/folio/internal/sitegate"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("sitegate failed")
	}
}

func run() error {
	cfg, err := config.LoadGate()
	if err != nil {
		return err
	}
	cfg.Log.Apply()

	upstream, err := url.Parse(cfg.Upstream)
	if err != nil {
		return fmt.Errorf("sitegate: upstream: %w", err)
	}
	proxy := httputil.NewSingleHostReverseProxy(upstream)
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		log.Error().Err(err).Str("path", r.URL.Path).Msg("sitegate: upstream error")
		w.WriteHeader(http.StatusBadGateway)
	}

	status := sitegate.NewClient(cfg.BackendURL, cfg.Timeout, cfg.CacheTTL)

	router := chi.NewRouter()
	router.Use(chimw.RequestID)
	router.Use(chimw.RealIP)
	router.Use(middleware.RequestLogger)
	router.Use(chimw.Recoverer)
	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	router.Group(func(r chi.Router) {
		r.Use(sitegate.Middleware(status, cfg.WebsiteSlug))
		r.Handle("/*", proxy)
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	go func() {
		log.Info().
			Str("addr", cfg.Addr).
			Str("upstream", cfg.Upstream).
			Str("website", cfg.WebsiteSlug).
			Msg("starting sitegate")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("sitegate server error")
			cancel()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("sitegate: shutdown: %w", err)
	}
	return nil
}
