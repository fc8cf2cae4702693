package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadCreatesTemplateAndDefaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "config.toml")); err != nil {
		t.Errorf("template config.toml not created: %v", err)
	}
	if cfg.Poll.Interval != 10*time.Minute {
		t.Errorf("poll interval = %v, want 10m default", cfg.Poll.Interval)
	}
	if cfg.Poll.FirstDelay != 10*time.Second {
		t.Errorf("first delay = %v, want 10s default", cfg.Poll.FirstDelay)
	}
	if cfg.Notify.Concurrency != 8 {
		t.Errorf("concurrency = %d, want 8 default", cfg.Notify.Concurrency)
	}
	if cfg.Database.Path == "" {
		t.Error("database path default missing")
	}
}

func TestLoadReadsConfigFile(t *testing.T) {
	dir := t.TempDir()
	content := `
[telegram]
bot_token = "123:abc"

[poll]
interval = "5m"

[notify]
concurrency = 2
`
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0o600); err != nil {
		t.Fatalf("write config failed: %v", err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Telegram.BotToken != "123:abc" {
		t.Errorf("token = %q", cfg.Telegram.BotToken)
	}
	if cfg.Poll.Interval != 5*time.Minute {
		t.Errorf("interval = %v, want 5m", cfg.Poll.Interval)
	}
	if cfg.Notify.Concurrency != 2 {
		t.Errorf("concurrency = %d, want 2", cfg.Notify.Concurrency)
	}
}

func TestBotTokenEnvOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("BOT_TOKEN", "env-token")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Telegram.BotToken != "env-token" {
		t.Errorf("token = %q, want env override", cfg.Telegram.BotToken)
	}
}

func TestValidateRejectsShortInterval(t *testing.T) {
	cfg := &Config{
		Poll:     PollConfig{Interval: 5 * time.Second},
		Notify:   NotifyConfig{Concurrency: 4},
		Database: DatabaseConfig{Path: "x.db"},
	}
	if err := cfg.Validate(); err == nil {
		t.Error("sub-minute interval should fail validation")
	}
}
