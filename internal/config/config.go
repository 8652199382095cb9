// Package config holds all JakeyBot configuration, read once from the
// environment at startup. There is no hot-reload.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all JakeyBot configuration.
type Config struct {
	// Discord connection settings
	Discord DiscordConfig

	// Third-party API providers
	Providers ProvidersConfig

	// Document database settings
	Database DatabaseConfig

	// Outbound HTTP behavior
	HTTP HTTPConfig

	// Logging
	Logging LoggingConfig
}

// DiscordConfig configures the chat platform connection.
type DiscordConfig struct {
	// Token is the bot token. Required to run the bot, not the admin
	// subcommands.
	Token string

	// GuildID scopes slash command registration to one guild when set.
	// Empty means global registration.
	GuildID string
}

// ProvidersConfig holds per-provider API keys. A missing key is reported
// by the tool that needs it, at call time.
type ProvidersConfig struct {
	// CoinMarketCapKey authenticates price quote lookups.
	CoinMarketCapKey string

	// GeminiKey authenticates image generation.
	GeminiKey string
}

// DatabaseConfig configures the MongoDB document store.
type DatabaseConfig struct {
	// URL is the Mongo connection string.
	URL string

	// Name is the database name.
	Name string

	// Collection holds the per-guild default tool documents.
	Collection string
}

// HTTPConfig configures outbound HTTP calls.
type HTTPConfig struct {
	// Timeout bounds a single price or rate lookup.
	Timeout time.Duration

	// ImageTimeout bounds a single image generation call, which can run
	// far longer than a quote lookup.
	ImageTimeout time.Duration
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level string // debug, info, warn, error
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{
			Name:       "jakey",
			Collection: "default_tool",
		},
		HTTP: HTTPConfig{
			Timeout:      10 * time.Second,
			ImageTimeout: 120 * time.Second,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from the environment, applying values over the
// defaults. A .env file in the working directory is honored when present.
func Load() (*Config, error) {
	// Missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := Default()

	if v := os.Getenv("DISCORD_TOKEN"); v != "" {
		cfg.Discord.Token = v
	}
	if v := os.Getenv("DISCORD_GUILD_ID"); v != "" {
		cfg.Discord.GuildID = v
	}
	if v := os.Getenv("COINMARKETCAP_API_KEY"); v != "" {
		cfg.Providers.CoinMarketCapKey = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		cfg.Providers.GeminiKey = v
	}
	if v := os.Getenv("MONGO_DB_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("MONGO_DB_NAME"); v != "" {
		cfg.Database.Name = v
	}
	if v := os.Getenv("MONGO_DB_COLLECTION"); v != "" {
		cfg.Database.Collection = v
	}
	if v := os.Getenv("HTTP_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid HTTP_TIMEOUT %q: %w", v, err)
		}
		cfg.HTTP.Timeout = d
	}
	if v := os.Getenv("IMAGE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid IMAGE_TIMEOUT %q: %w", v, err)
		}
		cfg.HTTP.ImageTimeout = d
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}

	return cfg, nil
}

// ValidateBot checks the settings the bot entry point cannot run without.
// Admin subcommands have their own, narrower requirements.
func (c *Config) ValidateBot() error {
	if c.Discord.Token == "" {
		return fmt.Errorf("DISCORD_TOKEN is required to run the bot")
	}
	return nil
}

// ValidateDatabase checks the settings the store-backed subcommands need.
func (c *Config) ValidateDatabase() error {
	if c.Database.URL == "" {
		return fmt.Errorf("MONGO_DB_URL is required")
	}
	if c.Database.Name == "" || c.Database.Collection == "" {
		return fmt.Errorf("database name and collection must not be empty")
	}
	return nil
}
