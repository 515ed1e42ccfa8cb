package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// Helper to create a temp config file.
func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	tmpDir := t.TempDir()

	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to create temp config file: %v", err)
	}

	return configPath
}

// validConfigYAML is a minimal valid configuration.
const validConfigYAML = `
doi:
  publisher: "Natural History Museum"
  prefix: "10.5072"
  validate_schema: true
site:
  url: "https://data.example.org/"
  locale: "en_GB"
licenses:
  url: "https://licenses.example.org/licenses.json"
  cache_ttl_sec: 600
  retry:
    max_attempts: 3
    initial_delay_ms: 100
    max_delay_ms: 5000
    backoff_multiplier: 2.0
    timeout_sec: 30
extensions:
  defaults:
    resource_type: "Dataset"
    title_from_name: true
logging:
  level: "debug"
  format: "json"
`

func TestLoadConfig_Valid(t *testing.T) {
	configPath := createTempConfigFile(t, validConfigYAML)

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.DOI.Publisher != "Natural History Museum" {
		t.Errorf("Expected publisher 'Natural History Museum', got '%s'", cfg.DOI.Publisher)
	}

	if cfg.Extensions.Defaults.ResourceType != "Dataset" {
		t.Errorf("Expected default resource type 'Dataset', got '%s'", cfg.Extensions.Defaults.ResourceType)
	}

	if cfg.Licenses.CacheTTL() != 10*time.Minute {
		t.Errorf("Expected cache TTL 10m, got %v", cfg.Licenses.CacheTTL())
	}
}

func TestLoadConfig_DefaultsFillGaps(t *testing.T) {
	configPath := createTempConfigFile(t, "doi:\n  publisher: \"Museum\"\n")

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Logging.Level != "info" {
		t.Errorf("Expected default log level 'info', got '%s'", cfg.Logging.Level)
	}

	if cfg.Site.Locale != "en" {
		t.Errorf("Expected default locale 'en', got '%s'", cfg.Site.Locale)
	}
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	_, err := LoadConfig("/nonexistent/path/config.yaml")
	if err == nil {
		t.Fatal("Expected error for nonexistent file, got nil")
	}
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	configPath := createTempConfigFile(t, "invalid: yaml: content: [}")

	_, err := LoadConfig(configPath)
	if err == nil {
		t.Fatal("Expected error for invalid YAML, got nil")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr error
	}{
		{"default is valid", func(c *Config) {}, nil},
		{"relative site url", func(c *Config) { c.Site.URL = "data.example.org" }, ErrInvalidSiteURL},
		{"both license sources", func(c *Config) {
			c.Licenses.File = "licenses.json"
			c.Licenses.URL = "https://example.org/licenses.json"
		}, ErrLicenseSourceConflict},
		{"bad license url", func(c *Config) { c.Licenses.URL = "ftp://example.org/l.json" }, ErrInvalidLicenseURL},
		{"negative ttl", func(c *Config) { c.Licenses.CacheTTLSec = -1 }, ErrInvalidCacheTTL},
		{"zero attempts", func(c *Config) {
			c.Licenses.URL = "https://example.org/licenses.json"
			c.Licenses.Retry.MaxAttempts = 0
		}, ErrInvalidMaxAttempts},
		{"small multiplier", func(c *Config) {
			c.Licenses.URL = "https://example.org/licenses.json"
			c.Licenses.Retry.BackoffMultiplier = 0.5
		}, ErrInvalidBackoffMultiplier},
		{"retry ignored without url", func(c *Config) { c.Licenses.Retry.MaxAttempts = 0 }, nil},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }, ErrInvalidLogLevel},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, ErrInvalidLogFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_Publisher(t *testing.T) {
	cfg := Default()

	if _, err := cfg.Publisher(); !errors.Is(err, ErrMissingPublisher) {
		t.Errorf("Expected ErrMissingPublisher, got %v", err)
	}

	cfg.DOI.Publisher = "Museum"

	got, err := cfg.Publisher()
	if err != nil || got != "Museum" {
		t.Errorf("Publisher() = %q, %v", got, err)
	}
}

func TestConfig_SiteURL(t *testing.T) {
	cfg := Default()

	if _, err := cfg.SiteURL(); !errors.Is(err, ErrMissingSiteURL) {
		t.Errorf("Expected ErrMissingSiteURL, got %v", err)
	}

	cfg.Site.URL = "https://data.example.org//"

	got, err := cfg.SiteURL()
	if err != nil {
		t.Fatalf("SiteURL failed: %v", err)
	}

	if got != "https://data.example.org" {
		t.Errorf("SiteURL() = %q, want trailing slashes trimmed", got)
	}
}

// --- RetryPolicy Tests ---

func TestRetryPolicy_GetRetryDelay(t *testing.T) {
	rp := RetryPolicy{
		InitialDelayMs:    100,
		MaxDelayMs:        1000,
		BackoffMultiplier: 2.0,
	}

	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{1, 0},
		{2, 200 * time.Millisecond},
		{3, 400 * time.Millisecond},
		{4, 800 * time.Millisecond},
		{5, 1000 * time.Millisecond},
		{10, 1000 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run("", func(t *testing.T) {
			got := rp.GetRetryDelay(tt.attempt)
			if got != tt.expected {
				t.Errorf("GetRetryDelay(%d) = %v, want %v", tt.attempt, got, tt.expected)
			}
		})
	}
}

func TestRetryPolicy_GetTimeout(t *testing.T) {
	rp := RetryPolicy{TimeoutSec: 30}
	expected := 30 * time.Second

	if got := rp.GetTimeout(); got != expected {
		t.Errorf("GetTimeout() = %v, want %v", got, expected)
	}
}

func TestConfig_String(t *testing.T) {
	cfg := Default()
	cfg.Licenses.File = "licenses.yaml"

	if str := cfg.String(); str == "" {
		t.Error("Expected non-empty string representation")
	}
}

func TestConfig_SaveConfig(t *testing.T) {
	cfg := Default()
	cfg.DOI.Publisher = "Museum"
	cfg.Site.URL = "https://data.example.org"

	savePath := filepath.Join(t.TempDir(), "saved_config.yaml")

	if err := cfg.SaveConfig(savePath); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	loaded, err := LoadConfig(savePath)
	if err != nil {
		t.Fatalf("Failed to load saved config: %v", err)
	}

	if loaded.DOI.Publisher != "Museum" || loaded.Site.URL != "https://data.example.org" {
		t.Error("Loaded config does not match saved config")
	}
}
