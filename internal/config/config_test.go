package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfigIsValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadFromMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("port = %d, want default 8080", cfg.Server.Port)
	}
	if cfg.LLM.Model != "deepseek/deepseek-chat" {
		t.Errorf("model = %q, want default", cfg.LLM.Model)
	}
}

func TestLoadFromMergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[server]
port = 9090

[llm]
model = "anthropic/claude-sonnet"
temperature = 0.2
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.LLM.Model != "anthropic/claude-sonnet" {
		t.Errorf("model = %q", cfg.LLM.Model)
	}
	if cfg.LLM.Temperature != 0.2 {
		t.Errorf("temperature = %v", cfg.LLM.Temperature)
	}
	// Untouched sections keep their defaults.
	if cfg.Deck.MaxRetries != 3 {
		t.Errorf("max retries = %d, want 3", cfg.Deck.MaxRetries)
	}
}

func TestLoadFromBadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[server\nport ="), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadFrom(path); err == nil {
		t.Error("expected a parse error")
	}
}

func TestEnvOverridesSecrets(t *testing.T) {
	t.Setenv("OPENROUTER_API_KEY", "sk-or-test")
	t.Setenv("CLASH_API_TOKEN", "eyJ-test")

	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.LLM.APIKey != "sk-or-test" {
		t.Errorf("api key = %q", cfg.LLM.APIKey)
	}
	if cfg.Royale.Token != "eyJ-test" {
		t.Errorf("royale token = %q", cfg.Royale.Token)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"zero port", func(c *Config) { c.Server.Port = 0 }, true},
		{"port too high", func(c *Config) { c.Server.Port = 70000 }, true},
		{"zero rate limit", func(c *Config) { c.Royale.RateLimit = 0 }, true},
		{"bad royale timeout", func(c *Config) { c.Royale.Timeout = "soon" }, true},
		{"empty model", func(c *Config) { c.LLM.Model = "" }, true},
		{"temperature too high", func(c *Config) { c.LLM.Temperature = 3 }, true},
		{"bad llm timeout", func(c *Config) { c.LLM.RequestTimeout = "ninety" }, true},
		{"zero retries", func(c *Config) { c.Deck.MaxRetries = 0 }, true},
		{"bad attempt timeout", func(c *Config) { c.Deck.AttemptTimeout = "x" }, true},
		{"bad log level", func(c *Config) { c.Log.Level = "verbose" }, true},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr && err == nil {
				t.Error("expected validation error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestGetDurations(t *testing.T) {
	cfg := DefaultConfig()

	if d, err := cfg.GetRoyaleTimeout(); err != nil || d.Seconds() != 10 {
		t.Errorf("royale timeout = %v, %v", d, err)
	}
	if d, err := cfg.GetLLMRequestTimeout(); err != nil || d.Seconds() != 90 {
		t.Errorf("llm timeout = %v, %v", d, err)
	}
	if d, err := cfg.GetAttemptTimeout(); err != nil || d.Seconds() != 30 {
		t.Errorf("attempt timeout = %v, %v", d, err)
	}
}
