package config

import (
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Database.Name != "jakey" {
		t.Errorf("default database name = %q, want %q", cfg.Database.Name, "jakey")
	}
	if cfg.Database.Collection != "default_tool" {
		t.Errorf("default collection = %q, want %q", cfg.Database.Collection, "default_tool")
	}
	if cfg.HTTP.Timeout != 10*time.Second {
		t.Errorf("default timeout = %v, want 10s", cfg.HTTP.Timeout)
	}
	if cfg.HTTP.ImageTimeout != 120*time.Second {
		t.Errorf("default image timeout = %v, want 120s", cfg.HTTP.ImageTimeout)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "token-from-env")
	t.Setenv("MONGO_DB_URL", "mongodb://localhost:27017")
	t.Setenv("MONGO_DB_NAME", "jakey_test")
	t.Setenv("HTTP_TIMEOUT", "30s")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Discord.Token != "token-from-env" {
		t.Errorf("token = %q, want env value", cfg.Discord.Token)
	}
	if cfg.Database.URL != "mongodb://localhost:27017" {
		t.Errorf("db url = %q", cfg.Database.URL)
	}
	if cfg.Database.Name != "jakey_test" {
		t.Errorf("db name = %q, want jakey_test", cfg.Database.Name)
	}
	// Unset values keep defaults.
	if cfg.Database.Collection != "default_tool" {
		t.Errorf("collection = %q, want default", cfg.Database.Collection)
	}
	if cfg.HTTP.Timeout != 30*time.Second {
		t.Errorf("timeout = %v, want 30s", cfg.HTTP.Timeout)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("level = %q, want debug", cfg.Logging.Level)
	}
}

func TestLoadInvalidTimeout(t *testing.T) {
	t.Setenv("HTTP_TIMEOUT", "not-a-duration")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for invalid HTTP_TIMEOUT")
	}
}

func TestValidateBot(t *testing.T) {
	cfg := Default()
	if err := cfg.ValidateBot(); err == nil {
		t.Error("expected error when DISCORD_TOKEN is empty")
	}

	cfg.Discord.Token = "x"
	if err := cfg.ValidateBot(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidateDatabase(t *testing.T) {
	cfg := Default()
	if err := cfg.ValidateDatabase(); err == nil {
		t.Error("expected error when MONGO_DB_URL is empty")
	}

	cfg.Database.URL = "mongodb://localhost:27017"
	if err := cfg.ValidateDatabase(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
