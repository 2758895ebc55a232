package conf

import (
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Config represents application configuration
type Config struct {
	// Discord configuration
	Discord DiscordConfig

	// Store configuration
	Store StoreConfig

	// Rewrite pipeline configuration
	Rewrite RewriteConfig

	// Metrics configuration
	Metrics MetricsConfig

	// Debug mode
	Debug bool
}

// DiscordConfig contains Discord configuration
type DiscordConfig struct {
	BotToken string
}

// StoreConfig contains storage configuration
type StoreConfig struct {
	DBPath string
}

// RewriteConfig contains rewrite pipeline configuration
type RewriteConfig struct {
	PromptEmoji    string
	UnknownTZEmoji string
	ConfirmTimeout time.Duration
}

// MetricsConfig contains metrics listener configuration
type MetricsConfig struct {
	Addr string
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() *Config {
	// Store DB path
	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		homeDir, _ := os.UserHomeDir()
		dbPath = filepath.Join(homeDir, ".hourglass", "hourglass.db")
	}

	// Confirmation wait deadline
	confirmSecs := 120
	if val := os.Getenv("CONFIRM_TIMEOUT_SECONDS"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			confirmSecs = parsed
		}
	}

	promptEmoji := os.Getenv("PROMPT_EMOJI")
	if promptEmoji == "" {
		promptEmoji = "⏰"
	}

	unknownTZEmoji := os.Getenv("UNKNOWN_TZ_EMOJI")
	if unknownTZEmoji == "" {
		unknownTZEmoji = "🌍"
	}

	metricsAddr := os.Getenv("METRICS_ADDR")
	if metricsAddr == "" {
		metricsAddr = ":9100"
	}

	return &Config{
		Discord: DiscordConfig{
			BotToken: os.Getenv("DISCORD_BOT_TOKEN"),
		},
		Store: StoreConfig{
			DBPath: dbPath,
		},
		Rewrite: RewriteConfig{
			PromptEmoji:    promptEmoji,
			UnknownTZEmoji: unknownTZEmoji,
			ConfirmTimeout: time.Duration(confirmSecs) * time.Second,
		},
		Metrics: MetricsConfig{
			Addr: metricsAddr,
		},
		Debug: os.Getenv("DEBUG") == "true",
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Discord.BotToken == "" {
		return &ConfigError{Field: "DISCORD_BOT_TOKEN", Message: "required"}
	}
	if c.Rewrite.ConfirmTimeout <= 0 {
		return &ConfigError{Field: "CONFIRM_TIMEOUT_SECONDS", Message: "must be positive"}
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}
