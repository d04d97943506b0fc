package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all configuration for the application
type Config struct {
	Discord DiscordConfig
	Sheets  SheetsConfig
	Store   StoreConfig
	Redis   RedisConfig
	Metrics MetricsConfig
}

// DiscordConfig holds Discord-specific configuration
type DiscordConfig struct {
	Token   string `env:"DISCORD_TOKEN,required,notEmpty"`
	AppID   string `env:"DISCORD_APP_ID,required,notEmpty"`
	GuildID string `env:"DISCORD_GUILD_ID"` // Optional: for guild-specific commands
}

// SheetsConfig holds the spreadsheet and the credentials used to read it
type SheetsConfig struct {
	CredentialsFile  string        `env:"GOOGLE_APPLICATION_CREDENTIALS,required,notEmpty"`
	SpreadsheetID    string        `env:"CHARACTER_SPREADSHEET_ID,required,notEmpty"`
	RowLimit         int           `env:"SHEETS_ROW_LIMIT" envDefault:"3"`
	RetryMaxElapsed  time.Duration `env:"SHEETS_RETRY_MAX_ELAPSED" envDefault:"2m"`
	RetryMaxAttempts uint64        `env:"SHEETS_RETRY_MAX_ATTEMPTS" envDefault:"8"`
}

// StoreConfig holds the SQLite claims store location
type StoreConfig struct {
	Path string `env:"CLAIMS_DB_PATH" envDefault:"db.sqlite"`
}

// RedisConfig selects the Redis claims store when URL is set
type RedisConfig struct {
	URL string `env:"REDIS_URL"`
}

// MetricsConfig enables the Prometheus endpoint when Addr is set
type MetricsConfig struct {
	Addr string `env:"METRICS_ADDR"`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	return LoadWith(env.Options{})
}

// LoadWith loads configuration using explicit parser options, e.g. a fixed environment in tests
func LoadWith(opts env.Options) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.Sheets.RowLimit < 1 {
		return nil, fmt.Errorf("SHEETS_ROW_LIMIT must be positive, got %d", cfg.Sheets.RowLimit)
	}

	return cfg, nil
}
