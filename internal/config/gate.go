package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"
)

// GateConfig configures cmd/sitegate, the status-aware proxy placed in front
// of one tenant front-end.
type GateConfig struct {
	Addr        string
	Upstream    string
	BackendURL  string
	WebsiteSlug string
	CacheTTL    time.Duration
	Timeout     time.Duration
	Log         LogConfig
}

// LoadGate reads the sitegate configuration from environment variables.
func LoadGate() (*GateConfig, error) {
	cacheTTL, err := getEnvDuration("FOLIO_GATE_CACHE_TTL", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("config.LoadGate: %w", err)
	}

	timeout, err := getEnvDuration("FOLIO_GATE_TIMEOUT", 2*time.Second)
	if err != nil {
		return nil, fmt.Errorf("config.LoadGate: %w", err)
	}

	cfg := &GateConfig{
		Addr:        getEnv("FOLIO_GATE_ADDR", ":8081"),
		Upstream:    getEnv("FOLIO_GATE_UPSTREAM", ""),
		BackendURL:  getEnv("FOLIO_GATE_BACKEND_URL", "http://localhost:8080"),
		WebsiteSlug: getEnv("FOLIO_GATE_WEBSITE_SLUG", ""),
		CacheTTL:    cacheTTL,
		Timeout:     timeout,
		Log: LogConfig{
			Level:  getEnv("FOLIO_LOG_LEVEL", "info"),
			Format: getEnv("FOLIO_LOG_FORMAT", "json"),
		},
	}

	err = cfg.validate()
	if err != nil {
		return nil, fmt.Errorf("config.LoadGate: %w", err)
	}

	return cfg, nil
}

func (c *GateConfig) validate() error {
	if c.WebsiteSlug == "" {
		return errors.New("FOLIO_GATE_WEBSITE_SLUG is required")
	}
	if err := absoluteURL(c.Upstream); err != nil {
		return fmt.Errorf("FOLIO_GATE_UPSTREAM: %w", err)
	}
	if err := absoluteURL(c.BackendURL); err != nil {
		return fmt.Errorf("FOLIO_GATE_BACKEND_URL: %w", err)
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("FOLIO_GATE_CACHE_TTL must not be negative, got %s", c.CacheTTL)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("FOLIO_GATE_TIMEOUT must be positive, got %s", c.Timeout)
	}
	return nil
}

func absoluteURL(raw string) error {
	if raw == "" {
		return errors.New("is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("must be an absolute http(s) URL, got %q", raw)
	}
	return nil
}
