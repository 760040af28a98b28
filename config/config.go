package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all service configuration, loaded from environment variables.
type Config struct {
	Port int `env:"PORT" envDefault:"8100"`

	// Telegram
	BotToken       string `env:"TELEGRAM_BOT_TOKEN"`
	WebhookSecret  string `env:"TELEGRAM_WEBHOOK_SECRET"`
	OperatorChatID int64  `env:"TELEGRAM_OPERATOR_CHAT_ID"`

	// GitHub content repository (catalog document + images)
	GitHubToken  string `env:"GITHUB_TOKEN"`
	GitHubOwner  string `env:"GITHUB_OWNER"`
	GitHubRepo   string `env:"GITHUB_REPO"`
	GitHubBranch string `env:"GITHUB_BRANCH" envDefault:"main"`
	CatalogPath  string `env:"CATALOG_PATH" envDefault:"data/events.json"`
	ImagesPrefix string `env:"IMAGES_PREFIX" envDefault:"images/events"`

	// Ollama
	OllamaURL   string `env:"OLLAMA_URL" envDefault:"http://127.0.0.1:11434"`
	OllamaModel string `env:"OLLAMA_MODEL" envDefault:"llama3.1:8b"`

	// Redis (pending actions + webhook dedup)
	RedisAddr     string `env:"REDIS_ADDR" envDefault:"127.0.0.1:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	PendingTTLMinutes int `env:"PENDING_TTL_MINUTES" envDefault:"5"`
}

// Load reads configuration from the environment and validates it.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.BotToken == "" {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}
	if c.WebhookSecret == "" {
		return fmt.Errorf("TELEGRAM_WEBHOOK_SECRET is required")
	}
	if c.OperatorChatID == 0 {
		return fmt.Errorf("TELEGRAM_OPERATOR_CHAT_ID is required")
	}
	if c.GitHubToken == "" {
		return fmt.Errorf("GITHUB_TOKEN is required")
	}
	if c.GitHubOwner == "" || c.GitHubRepo == "" {
		return fmt.Errorf("GITHUB_OWNER and GITHUB_REPO are required")
	}
	return nil
}

// PendingTTL returns the pending-action expiry as a duration.
func (c *Config) PendingTTL() time.Duration {
	return time.Duration(c.PendingTTLMinutes) * time.Minute
}
