// Package config loads and watches the application configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration.
type Config struct {
	// HTTP server configuration
	Server ServerConfig `toml:"server"`

	// Clash Royale API configuration
	Royale RoyaleConfig `toml:"royale"`

	// LLM provider configuration
	LLM LLMConfig `toml:"llm"`

	// Deck generation configuration
	Deck DeckConfig `toml:"deck"`

	// Logging configuration
	Log LogConfig `toml:"log"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port int `toml:"port"` // Listen port
}

// RoyaleConfig contains Clash Royale API client settings.
type RoyaleConfig struct {
	BaseURL   string  `toml:"base_url"`   // API base URL
	Token     string  `toml:"token"`      // Bearer token
	RateLimit float64 `toml:"rate_limit"` // Requests per second
	Timeout   string  `toml:"timeout"`    // Request timeout (e.g., "10s")
}

// LLMConfig contains LLM provider settings.
type LLMConfig struct {
	BaseURL        string  `toml:"base_url"`        // Provider base URL
	APIKey         string  `toml:"api_key"`         // Bearer key
	Model          string  `toml:"model"`           // Model identifier
	Temperature    float64 `toml:"temperature"`     // Sampling temperature
	MaxTokens      int     `toml:"max_tokens"`      // Response token cap (0 = provider default)
	RequestTimeout string  `toml:"request_timeout"` // Per-request timeout (e.g., "90s")
}

// DeckConfig contains deck generation settings.
type DeckConfig struct {
	MaxRetries     int    `toml:"max_retries"`     // Generator attempts per request
	AttemptTimeout string `toml:"attempt_timeout"` // Per-attempt timeout (e.g., "30s")
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level      string `toml:"level"`       // debug|info|warn|error
	Format     string `toml:"format"`      // text|json
	FilePath   string `toml:"file_path"`   // Log file ("" = stderr)
	MaxSizeMB  int    `toml:"max_size"`    // Rotate after this many megabytes
	MaxBackups int    `toml:"max_backups"` // Rotated files to keep
	MaxAgeDays int    `toml:"max_age"`     // Days to keep rotated files
	Compress   bool   `toml:"compress"`    // Gzip rotated files
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port: 8080,
		},
		Royale: RoyaleConfig{
			BaseURL:   "https://api.clashroyale.com/v1",
			Token:     "",
			RateLimit: 10,
			Timeout:   "10s",
		},
		LLM: LLMConfig{
			BaseURL:        "https://openrouter.ai/api/v1",
			APIKey:         "",
			Model:          "deepseek/deepseek-chat",
			Temperature:    0.7,
			MaxTokens:      0,
			RequestTimeout: "90s",
		},
		Deck: DeckConfig{
			MaxRetries:     3,
			AttemptTimeout: "30s",
		},
		Log: LogConfig{
			Level:      "info",
			Format:     "text",
			FilePath:   "",
			MaxSizeMB:  20,
			MaxBackups: 3,
			MaxAgeDays: 14,
			Compress:   false,
		},
	}
}

// Path returns the path to the configuration file.
func Path() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}

	configDir := filepath.Join(homeDir, ".clashproxy")
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return "", fmt.Errorf("create config directory: %w", err)
	}

	return filepath.Join(configDir, "config.toml"), nil
}

// Load loads the configuration from the default path. Returns default config
// if the file doesn't exist. Secrets in the environment override the file.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom loads the configuration from an explicit path.
func LoadFrom(path string) (*Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			config.applyEnv()
			return config, nil
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}

	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	config.applyEnv()
	return config, nil
}

// applyEnv lets secrets live outside the config file.
func (c *Config) applyEnv() {
	if key := os.Getenv("OPENROUTER_API_KEY"); key != "" {
		c.LLM.APIKey = key
	}
	if token := os.Getenv("CLASH_API_TOKEN"); token != "" {
		c.Royale.Token = token
	}
}

// Save saves the configuration to disk.
func (c *Config) Save() error {
	path, err := Path()
	if err != nil {
		return err
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration values.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Royale.RateLimit <= 0 {
		return fmt.Errorf("royale rate limit must be positive: %v", c.Royale.RateLimit)
	}
	if _, err := time.ParseDuration(c.Royale.Timeout); err != nil {
		return fmt.Errorf("invalid royale timeout %q: %w", c.Royale.Timeout, err)
	}

	if c.LLM.Model == "" {
		return fmt.Errorf("llm model is required")
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return fmt.Errorf("llm temperature out of range: %v", c.LLM.Temperature)
	}
	if _, err := time.ParseDuration(c.LLM.RequestTimeout); err != nil {
		return fmt.Errorf("invalid llm request timeout %q: %w", c.LLM.RequestTimeout, err)
	}

	if c.Deck.MaxRetries < 1 {
		return fmt.Errorf("deck max retries must be at least 1: %d", c.Deck.MaxRetries)
	}
	if _, err := time.ParseDuration(c.Deck.AttemptTimeout); err != nil {
		return fmt.Errorf("invalid deck attempt timeout %q: %w", c.Deck.AttemptTimeout, err)
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format: %q", c.Log.Format)
	}

	return nil
}

// GetRoyaleTimeout returns the Clash Royale request timeout as a duration.
func (c *Config) GetRoyaleTimeout() (time.Duration, error) {
	return time.ParseDuration(c.Royale.Timeout)
}

// GetLLMRequestTimeout returns the LLM request timeout as a duration.
func (c *Config) GetLLMRequestTimeout() (time.Duration, error) {
	return time.ParseDuration(c.LLM.RequestTimeout)
}

// GetAttemptTimeout returns the per-attempt generator timeout as a duration.
func (c *Config) GetAttemptTimeout() (time.Duration, error) {
	return time.ParseDuration(c.Deck.AttemptTimeout)
}
