package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const configTemplate = `# IDX disclosure bot configuration

[telegram]
# Bot API token from @BotFather. Can also be set via the BOT_TOKEN
# environment variable, which takes precedence over this file.
bot_token = ""

[poll]
# How often to poll the IDX announcement feed.
interval = "10m"
# Delay before the first poll after startup.
first_delay = "10s"

[database]
# path = "~/.config/idx-disclosure-bot/idx_disclosures.db"

[notify]
# Maximum concurrent Telegram sends during fanout.
concurrency = 8

[metrics]
# Prometheus listen address, e.g. ":9090". Empty disables the listener.
listen = ""

[logging]
level = "info"
console = true
file = true
# file_path = "~/.config/idx-disclosure-bot/logs/idxbot.log"
max_size = 100
max_backups = 7
max_age = 30
`

// createTemplateConfig writes a commented config.toml so a fresh install
// has something to edit instead of a cryptic "file not found" error.
func createTemplateConfig(configDir string) error {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	path := filepath.Join(configDir, "config.toml")
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	if err := os.WriteFile(path, []byte(configTemplate), 0o600); err != nil {
		return fmt.Errorf("writing config template: %w", err)
	}
	return nil
}
