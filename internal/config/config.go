package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Env        string
	Store      string
	Database   DatabaseConfig
	Redis      RedisConfig
	JWT        JWTConfig
	SiteAdmin  JWTConfig
	Server     ServerConfig
	Revalidate RevalidateConfig
	Cache      CacheConfig
	Secrets    SecretsConfig
	Bootstrap  BootstrapConfig
	Log        LogConfig
}

// Store backends.
const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string //nolint:gosec // G117: DB connection config
	DBName   string
	SSLMode  string
	MaxConns int
}

// RedisConfig holds Redis connection settings. An empty Addr disables Redis.
type RedisConfig struct {
	Addr     string
	Password string //nolint:gosec // G117: Redis connection config
	DB       int
}

// JWTConfig holds token signing settings.
type JWTConfig struct {
	Secret     string //nolint:gosec // G117: JWT signing secret config
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	CORSOrigins  []string
	RateLimit    float64
	RateBurst    int
}

// RevalidateConfig tunes the background revalidation workers.
type RevalidateConfig struct {
	Workers        int
	MaxAttempts    int
	Backoff        time.Duration
	Timeout        time.Duration
	WebhookTimeout time.Duration
}

// CacheConfig controls the public read cache.
type CacheConfig struct {
	Enabled bool
	TTL     time.Duration
}

// SecretsConfig holds the vault key used to seal per-website secrets.
type SecretsConfig struct {
	Key string //nolint:gosec // hex-encoded AES-256 key
}

// BootstrapConfig seeds the first platform admin on startup.
type BootstrapConfig struct {
	AdminEmail    string
	AdminPassword string //nolint:gosec // bootstrap credential
	AdminName     string
}

// LogConfig selects the zerolog level and output format.
type LogConfig struct {
	Level  string
	Format string
}

// Load reads configuration from environment variables.
// Defaults are safe for local development only. In production,
// sensitive values (JWT secrets, DB password, vault key) must be set explicitly.
func Load() (*Config, error) {
	dbPort, err := getEnvInt("FOLIO_DB_PORT", 5432)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	dbMaxConns, err := getEnvInt("FOLIO_DB_MAX_CONNS", 25)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	redisDB, err := getEnvInt("FOLIO_REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	accessTTL, err := getEnvDuration("FOLIO_JWT_ACCESS_TTL", 15*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	refreshTTL, err := getEnvDuration("FOLIO_JWT_REFRESH_TTL", 7*24*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	siteAccessTTL, err := getEnvDuration("FOLIO_SITE_JWT_ACCESS_TTL", time.Hour)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	siteRefreshTTL, err := getEnvDuration("FOLIO_SITE_JWT_REFRESH_TTL", 7*24*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	readTimeout, err := getEnvDuration("FOLIO_SERVER_READ_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	writeTimeout, err := getEnvDuration("FOLIO_SERVER_WRITE_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	rateLimit, err := getEnvFloat("FOLIO_RATE_LIMIT", 20)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	rateBurst, err := getEnvInt("FOLIO_RATE_BURST", 40)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	workers, err := getEnvInt("FOLIO_REVALIDATE_WORKERS", 2)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	attempts, err := getEnvInt("FOLIO_REVALIDATE_MAX_ATTEMPTS", 3)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	backoff, err := getEnvDuration("FOLIO_REVALIDATE_BACKOFF", 200*time.Millisecond)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	revalTimeout, err := getEnvDuration("FOLIO_REVALIDATE_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	webhookTimeout, err := getEnvDuration("FOLIO_REVALIDATE_WEBHOOK_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	cacheEnabled, err := getEnvBool("FOLIO_CACHE_ENABLED", true)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	cacheTTL, err := getEnvDuration("FOLIO_CACHE_TTL", time.Minute)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	corsOrigins := getEnvList("FOLIO_CORS_ORIGINS", []string{"http://localhost:3000"})

	cfg := &Config{
		Env:   getEnv("FOLIO_ENV", "development"),
		Store: getEnv("FOLIO_STORE", StorePostgres),
		Database: DatabaseConfig{
			Host:     getEnv("FOLIO_DB_HOST", "localhost"),
			Port:     dbPort,
			User:     getEnv("FOLIO_DB_USER", "folio"),
			Password: getEnv("FOLIO_DB_PASSWORD", ""),
			DBName:   getEnv("FOLIO_DB_NAME", "folio_dev"),
			SSLMode:  getEnv("FOLIO_DB_SSLMODE", "disable"),
			MaxConns: dbMaxConns,
		},
		Redis: RedisConfig{
			Addr:     getEnv("FOLIO_REDIS_ADDR", ""),
			Password: getEnv("FOLIO_REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		JWT: JWTConfig{
			Secret:     getEnv("FOLIO_JWT_SECRET", ""),
			AccessTTL:  accessTTL,
			RefreshTTL: refreshTTL,
		},
		SiteAdmin: JWTConfig{
			Secret:     getEnv("FOLIO_SITE_JWT_SECRET", ""),
			AccessTTL:  siteAccessTTL,
			RefreshTTL: siteRefreshTTL,
		},
		Server: ServerConfig{
			Addr:         getEnv("FOLIO_SERVER_ADDR", ":8080"),
			ReadTimeout:  readTimeout,
			WriteTimeout: writeTimeout,
			CORSOrigins:  corsOrigins,
			RateLimit:    rateLimit,
			RateBurst:    rateBurst,
		},
		Revalidate: RevalidateConfig{
			Workers:        workers,
			MaxAttempts:    attempts,
			Backoff:        backoff,
			Timeout:        revalTimeout,
			WebhookTimeout: webhookTimeout,
		},
		Cache: CacheConfig{
			Enabled: cacheEnabled,
			TTL:     cacheTTL,
		},
		Secrets: SecretsConfig{
			Key: getEnv("FOLIO_SECRETS_KEY", ""),
		},
		Bootstrap: BootstrapConfig{
			AdminEmail:    getEnv("FOLIO_ADMIN_EMAIL", ""),
			AdminPassword: getEnv("FOLIO_ADMIN_PASSWORD", ""),
			AdminName:     getEnv("FOLIO_ADMIN_NAME", "Administrator"),
		},
		Log: LogConfig{
			Level:  getEnv("FOLIO_LOG_LEVEL", "info"),
			Format: getEnv("FOLIO_LOG_FORMAT", "json"),
		},
	}

	err = cfg.validate()
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	return cfg, nil
}

// Production reports whether FOLIO_ENV names a production deployment.
func (c *Config) Production() bool {
	return c.Env == "production"
}

// validate checks required fields and value bounds.
func (c *Config) validate() error {
	if c.JWT.Secret == "" {
		return errors.New("FOLIO_JWT_SECRET is required")
	}
	if len(c.JWT.Secret) < 32 {
		return errors.New("FOLIO_JWT_SECRET must be at least 32 characters")
	}
	if c.SiteAdmin.Secret == "" {
		return errors.New("FOLIO_SITE_JWT_SECRET is required")
	}
	if len(c.SiteAdmin.Secret) < 32 {
		return errors.New("FOLIO_SITE_JWT_SECRET must be at least 32 characters")
	}
	if c.SiteAdmin.Secret == c.JWT.Secret {
		return errors.New("FOLIO_SITE_JWT_SECRET must differ from FOLIO_JWT_SECRET")
	}

	switch c.Store {
	case StorePostgres, StoreMemory:
	default:
		return fmt.Errorf("FOLIO_STORE must be %q or %q, got %q", StorePostgres, StoreMemory, c.Store)
	}

	if c.Secrets.Key == "" {
		if c.Production() {
			return errors.New("FOLIO_SECRETS_KEY is required in production")
		}
	} else if key, err := hex.DecodeString(c.Secrets.Key); err != nil || len(key) != 32 {
		return errors.New("FOLIO_SECRETS_KEY must be 64 hex characters")
	}

	if c.Store == StorePostgres && c.Database.SSLMode == "disable" && c.Production() {
		log.Warn().Msg("FOLIO_DB_SSLMODE=disable is insecure for production; set to 'require' or 'verify-full'")
	}

	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("FOLIO_DB_PORT must be 1-65535, got %d", c.Database.Port)
	}
	if c.Database.MaxConns < 1 {
		return fmt.Errorf("FOLIO_DB_MAX_CONNS must be >= 1, got %d", c.Database.MaxConns)
	}
	if c.JWT.AccessTTL <= 0 {
		return fmt.Errorf("FOLIO_JWT_ACCESS_TTL must be positive, got %s", c.JWT.AccessTTL)
	}
	if c.JWT.RefreshTTL <= 0 {
		return fmt.Errorf("FOLIO_JWT_REFRESH_TTL must be positive, got %s", c.JWT.RefreshTTL)
	}
	if c.SiteAdmin.AccessTTL <= 0 {
		return fmt.Errorf("FOLIO_SITE_JWT_ACCESS_TTL must be positive, got %s", c.SiteAdmin.AccessTTL)
	}
	if c.SiteAdmin.RefreshTTL <= 0 {
		return fmt.Errorf("FOLIO_SITE_JWT_REFRESH_TTL must be positive, got %s", c.SiteAdmin.RefreshTTL)
	}
	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("FOLIO_SERVER_READ_TIMEOUT must be positive, got %s", c.Server.ReadTimeout)
	}
	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("FOLIO_SERVER_WRITE_TIMEOUT must be positive, got %s", c.Server.WriteTimeout)
	}
	if c.Server.RateLimit <= 0 {
		return fmt.Errorf("FOLIO_RATE_LIMIT must be positive, got %g", c.Server.RateLimit)
	}
	if c.Server.RateBurst < 1 {
		return fmt.Errorf("FOLIO_RATE_BURST must be >= 1, got %d", c.Server.RateBurst)
	}
	if c.Revalidate.Workers < 1 {
		return fmt.Errorf("FOLIO_REVALIDATE_WORKERS must be >= 1, got %d", c.Revalidate.Workers)
	}
	if c.Revalidate.MaxAttempts < 1 {
		return fmt.Errorf("FOLIO_REVALIDATE_MAX_ATTEMPTS must be >= 1, got %d", c.Revalidate.MaxAttempts)
	}
	if c.Revalidate.Backoff < 0 {
		return fmt.Errorf("FOLIO_REVALIDATE_BACKOFF must not be negative, got %s", c.Revalidate.Backoff)
	}
	if c.Revalidate.Timeout <= 0 {
		return fmt.Errorf("FOLIO_REVALIDATE_TIMEOUT must be positive, got %s", c.Revalidate.Timeout)
	}
	if c.Revalidate.WebhookTimeout <= 0 {
		return fmt.Errorf("FOLIO_REVALIDATE_WEBHOOK_TIMEOUT must be positive, got %s", c.Revalidate.WebhookTimeout)
	}
	if c.Cache.Enabled && c.Cache.TTL <= 0 {
		return fmt.Errorf("FOLIO_CACHE_TTL must be positive, got %s", c.Cache.TTL)
	}
	if (c.Bootstrap.AdminEmail == "") != (c.Bootstrap.AdminPassword == "") {
		return errors.New("FOLIO_ADMIN_EMAIL and FOLIO_ADMIN_PASSWORD must be set together")
	}

	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("FOLIO_LOG_FORMAT must be json or console, got %q", c.Log.Format)
	}

	return nil
}

// DSN returns the PostgreSQL connection string.
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parsing %s=%q as int: %w", key, v, err)
	}
	return n, nil
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing %s=%q as float: %w", key, v, err)
	}
	return f, nil
}

func getEnvBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("parsing %s=%q as bool: %w", key, v, err)
	}
	return b, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("parsing %s=%q as duration: %w", key, v, err)
	}
	return d, nil
}

func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parts := strings.Split(v, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
