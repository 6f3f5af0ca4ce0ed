// Package config loads application configuration from environment variables.
package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/ericfisherdev/clagate/internal/domain/model"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	ListenAddr        string        `env:"CLAGATE_LISTEN_ADDR" env-default:"127.0.0.1:8080" env-description:"HTTP bind address"`
	DBPath            string        `env:"CLAGATE_DB_PATH" env-default:"clagate.db" env-description:"SQLite database file"`
	PublicURL         string        `env:"CLAGATE_PUBLIC_URL" env-default:"http://localhost:8080" env-description:"Base URL of status links and the webhook endpoint"`
	WebhookSecret     string        `env:"CLAGATE_WEBHOOK_SECRET" env-description:"HMAC secret for webhook deliveries"`
	SecretKeyHex      string        `env:"CLAGATE_SECRET_KEY" env-description:"64 hex chars, AES-256 key for OAuth tokens at rest"`
	AdminRepoName     string        `env:"CLAGATE_ADMIN_REPO" env-description:"owner/repo whose collaborators may register agreements"`
	GitHubAPIURL      string        `env:"CLAGATE_GITHUB_API_URL" env-default:"https://api.github.com/" env-description:"GitHub REST base URL"`
	StatusConcurrency int           `env:"CLAGATE_STATUS_CONCURRENCY" env-default:"1" env-description:"Parallel status reports per delivery"`
	GitHubTimeout     time.Duration `env:"CLAGATE_GITHUB_TIMEOUT" env-default:"15s" env-description:"Per-request GitHub timeout"`

	// SecretKey is SecretKeyHex decoded; nil when unset.
	SecretKey []byte
	// AdminRepo is AdminRepoName split; zero when unset.
	AdminRepo model.Repository
}

// HasSecretKey reports whether OAuth tokens can be stored and read.
func (c *Config) HasSecretKey() bool {
	return len(c.SecretKey) > 0
}

// Load reads configuration from environment variables and returns a validated Config.
func Load() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}

	cfg.PublicURL = strings.TrimRight(cfg.PublicURL, "/")
	if err := checkURL("CLAGATE_PUBLIC_URL", cfg.PublicURL); err != nil {
		return nil, err
	}
	if err := checkURL("CLAGATE_GITHUB_API_URL", cfg.GitHubAPIURL); err != nil {
		return nil, err
	}

	if cfg.SecretKeyHex != "" {
		key, err := hex.DecodeString(cfg.SecretKeyHex)
		if err != nil || len(key) != 32 {
			return nil, errors.New("CLAGATE_SECRET_KEY must be 64 hex characters")
		}
		cfg.SecretKey = key
	}

	if cfg.AdminRepoName != "" {
		owner, name, ok := strings.Cut(cfg.AdminRepoName, "/")
		repo := model.Repository{Owner: strings.TrimSpace(owner), Name: strings.TrimSpace(name)}
		if !ok || repo.IsZero() || strings.Contains(repo.Name, "/") {
			return nil, fmt.Errorf("CLAGATE_ADMIN_REPO %q is not owner/repo", cfg.AdminRepoName)
		}
		cfg.AdminRepo = repo
	}

	if cfg.StatusConcurrency < 1 {
		return nil, fmt.Errorf("CLAGATE_STATUS_CONCURRENCY must be at least 1, got %d", cfg.StatusConcurrency)
	}
	if cfg.GitHubTimeout <= 0 {
		return nil, fmt.Errorf("CLAGATE_GITHUB_TIMEOUT must be positive, got %s", cfg.GitHubTimeout)
	}

	return &cfg, nil
}

// Usage describes every variable Load reads, for CLI help output.
func Usage() string {
	var cfg Config
	text, err := cleanenv.GetDescription(&cfg, nil)
	if err != nil {
		return ""
	}
	return text
}

func checkURL(name, raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%s %q is not an absolute URL", name, raw)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s %q must use http or https", name, raw)
	}
	return nil
}
