package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/gosuda/folio/internal/auth"
	"github.com/gosuda/folio/internal/config"
	"github.com/gosuda/folio/internal/content"
	"github.com/gosuda/folio/internal/domain"
	"github.com/gosuda/folio/internal/render"
	"github.com/gosuda/folio/internal/revalidate"
	"github.com/gosuda/folio/internal/secrets"
	"github.com/gosuda/folio/internal/server"
	"github.com/gosuda/folio/internal/siteadmin"
	"github.com/gosuda/folio/internal/store/memory"
	"github.com/gosuda/folio/internal/store/postgres"
	redisstore "github.com/gosuda/folio/internal/store/redis"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("startup failed")
	}
}

// dataStore is the subset of the Postgres and memory stores main relies on.
type dataStore interface {
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close()
	Users() domain.UserRepository
	Websites() domain.WebsiteRepository
	Pages() domain.PageRepository
	Sections() domain.SectionRepository
	SiteAdmins() domain.SiteAdminRepository
}

func run() error {
	// Load configuration from environment.
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	cfg.Log.Apply()

	// Graceful shutdown on SIGINT / SIGTERM.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Migrate(ctx); err != nil {
		return err
	}

	checks := map[string]server.Checker{"store": store}

	// Redis is optional; without it reads are uncached and no events are
	// published.
	var rdb *redisstore.Client
	if cfg.Redis.Addr != "" {
		rdb, err = redisstore.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return err
		}
		defer rdb.Close()
		checks["redis"] = rdb
	}

	vault, err := openVault(cfg.Secrets.Key)
	if err != nil {
		return err
	}

	// Revalidation sinks, in the order they run.
	var sinks []revalidate.Sink
	var cache *redisstore.PageCache
	if rdb != nil {
		cache = redisstore.NewPageCache(rdb)
		sinks = append(sinks, revalidate.NewCacheSink(cache), revalidate.NewPubSubSink(rdb))
	}
	sinks = append(sinks, revalidate.NewWebhookSink(vault, cfg.Revalidate.WebhookTimeout))

	reval := revalidate.New(store.Websites(), store.Pages(), revalidate.Options{
		Workers:     cfg.Revalidate.Workers,
		MaxAttempts: cfg.Revalidate.MaxAttempts,
		Backoff:     cfg.Revalidate.Backoff,
		Timeout:     cfg.Revalidate.Timeout,
	}, sinks...)
	go reval.Run(ctx)

	resolver := content.NewResolver(store.Websites(), store.Pages(), store.Sections())
	var reader content.Reader = resolver
	if cache != nil && cfg.Cache.Enabled {
		reader = content.NewCachedResolver(resolver, cache, cfg.Cache.TTL)
		log.Info().Dur("ttl", cfg.Cache.TTL).Msg("public read cache enabled")
	}

	authSvc := auth.NewService(store.Users(), cfg.JWT.Secret, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)
	if _, err := authSvc.EnsureAdmin(ctx, cfg.Bootstrap.AdminEmail, cfg.Bootstrap.AdminPassword, cfg.Bootstrap.AdminName); err != nil {
		return err
	}

	deps := server.Deps{
		Content:     content.NewService(store.Websites(), store.Pages(), store.Sections(), vault, reval),
		Reader:      reader,
		Renderer:    render.New(),
		Auth:        authSvc,
		SiteAdmins:  siteadmin.NewService(store.SiteAdmins(), store.Websites(), cfg.SiteAdmin.Secret, cfg.SiteAdmin.AccessTTL, cfg.SiteAdmin.RefreshTTL),
		Revalidator: reval,
		Checks:      checks,
	}
	if rdb != nil {
		deps.Events = rdb
	}

	// Create HTTP server with all routes wired.
	srv := server.New(ctx, cfg, deps)

	// Start server in background goroutine.
	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Str("store", cfg.Store).Msg("starting server")
		if startErr := srv.Start(ctx); startErr != nil {
			log.Error().Err(startErr).Msg("server error")
			cancel()
		}
	}()

	// Block until shutdown signal.
	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if shutdownErr := srv.Shutdown(shutdownCtx); shutdownErr != nil {
		return shutdownErr
	}

	log.Info().Msg("stopped")
	return nil
}

func openStore(ctx context.Context, cfg *config.Config) (dataStore, error) {
	if cfg.Store == config.StoreMemory {
		log.Warn().Msg("using in-memory store, data is lost on restart")
		return memory.New(), nil
	}

	if cfg.Database.MaxConns < 0 || cfg.Database.MaxConns > math.MaxInt32 {
		return nil, fmt.Errorf("database max_conns %d out of int32 range", cfg.Database.MaxConns)
	}

	// Connect to PostgreSQL.
	return postgres.New(ctx, cfg.Database.DSN(), int32(cfg.Database.MaxConns)) //nolint:gosec // bounds checked above
}

// openVault uses the configured key, or an ephemeral one outside production.
// Secrets sealed with an ephemeral key do not survive a restart.
func openVault(hexKey string) (*secrets.Vault, error) {
	if hexKey != "" {
		return secrets.NewVaultHex(hexKey)
	}

	key, err := secrets.GenerateKey()
	if err != nil {
		return nil, err
	}
	log.Warn().Msg("FOLIO_SECRETS_KEY not set, using an ephemeral key; stored webhook secrets will not decrypt after restart")
	return secrets.NewVault(key)
}
