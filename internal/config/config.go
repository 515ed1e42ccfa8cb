// Package config provides configuration management for the DOI metadata builder.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Configuration validation errors.
var (
	ErrInvalidSiteURL           = errors.New("site.url must be an absolute http(s) URL")
	ErrInvalidLogLevel          = errors.New("logging.level must be one of: debug, info, warn, error")
	ErrInvalidLogFormat         = errors.New("logging.format must be 'text' or 'json'")
	ErrLicenseSourceConflict    = errors.New("licenses.file and licenses.url are mutually exclusive")
	ErrInvalidLicenseURL        = errors.New("licenses.url must be an absolute http(s) URL")
	ErrInvalidCacheTTL          = errors.New("licenses.cache_ttl_sec must be non-negative")
	ErrInvalidMaxAttempts       = errors.New("licenses.retry.max_attempts must be at least 1")
	ErrInvalidInitialDelay      = errors.New("licenses.retry.initial_delay_ms must be non-negative")
	ErrInvalidBackoffMultiplier = errors.New("licenses.retry.backoff_multiplier must be >= 1.0")
	ErrInvalidTimeout           = errors.New("licenses.retry.timeout_sec must be at least 1")
)

// Lookup errors returned to the metadata extractor.
var (
	ErrMissingPublisher = errors.New("doi.publisher is not configured")
	ErrMissingSiteURL   = errors.New("site.url is not configured")
)

// Config represents the complete builder configuration.
type Config struct {
	DOI        DOIConfig        `yaml:"doi"`
	Site       SiteConfig       `yaml:"site"`
	Licenses   LicensesConfig   `yaml:"licenses"`
	Extensions ExtensionsConfig `yaml:"extensions"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// DOIConfig contains registration settings.
type DOIConfig struct {
	Publisher      string `yaml:"publisher"`
	Prefix         string `yaml:"prefix"`
	ValidateSchema bool   `yaml:"validate_schema"`
}

// SiteConfig describes the catalogue hosting the datasets.
type SiteConfig struct {
	URL    string `yaml:"url"`
	Locale string `yaml:"locale"`
}

// LicensesConfig selects the license registry. With neither File nor URL set
// the built-in registry is used.
type LicensesConfig struct {
	File        string      `yaml:"file"`
	URL         string      `yaml:"url"`
	CacheTTLSec int         `yaml:"cache_ttl_sec"`
	Retry       RetryPolicy `yaml:"retry"`
}

// RetryPolicy defines retry behavior.
type RetryPolicy struct {
	MaxAttempts       int     `yaml:"max_attempts"`
	InitialDelayMs    int     `yaml:"initial_delay_ms"`
	MaxDelayMs        int     `yaml:"max_delay_ms"`
	BackoffMultiplier float64 `yaml:"backoff_multiplier"`
	TimeoutSec        int     `yaml:"timeout_sec"`
}

// ExtensionsConfig configures the built-in extensions. Extensions with no
// settings are not registered.
type ExtensionsConfig struct {
	Defaults            DefaultsConfig `yaml:"defaults"`
	ResourceTypeGeneral string         `yaml:"resource_type_general"`
}

// DefaultsConfig holds fallbacks for required fields.
type DefaultsConfig struct {
	ResourceType  string `yaml:"resource_type"`
	TitleFromName bool   `yaml:"title_from_name"`
}

// LoggingConfig defines logging behavior.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns a configuration that passes Validate.
func Default() *Config {
	return &Config{
		Site: SiteConfig{Locale: "en"},
		Licenses: LicensesConfig{
			CacheTTLSec: 3600,
			Retry: RetryPolicy{
				MaxAttempts:       3,
				InitialDelayMs:    500,
				MaxDelayMs:        30000,
				BackoffMultiplier: 2.0,
				TimeoutSec:        30,
			},
		},
		Logging: LoggingConfig{Level: "info", Format: "text"},
	}
}

// LoadConfig loads configuration from YAML file on top of Default.
func LoadConfig(filepath string) (*Config, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves configuration to YAML file.
func (c *Config) SaveConfig(filepath string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filepath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration. Publisher and site URL may be empty:
// their absence surfaces later as a per-field extraction error.
func (c *Config) Validate() error {
	if c.Site.URL != "" && !isHTTPURL(c.Site.URL) {
		return ErrInvalidSiteURL
	}

	if c.Licenses.File != "" && c.Licenses.URL != "" {
		return ErrLicenseSourceConflict
	}

	if c.Licenses.URL != "" {
		if !isHTTPURL(c.Licenses.URL) {
			return ErrInvalidLicenseURL
		}

		if err := c.Licenses.Retry.Validate(); err != nil {
			return err
		}
	}

	if c.Licenses.CacheTTLSec < 0 {
		return ErrInvalidCacheTTL
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return ErrInvalidLogLevel
	}

	if c.Logging.Format != "" && c.Logging.Format != "text" && c.Logging.Format != "json" {
		return ErrInvalidLogFormat
	}

	return nil
}

// Validate checks the retry policy bounds.
func (rp *RetryPolicy) Validate() error {
	if rp.MaxAttempts < 1 {
		return ErrInvalidMaxAttempts
	}

	if rp.InitialDelayMs < 0 {
		return ErrInvalidInitialDelay
	}

	if rp.BackoffMultiplier < 1.0 {
		return ErrInvalidBackoffMultiplier
	}

	if rp.TimeoutSec < 1 {
		return ErrInvalidTimeout
	}

	return nil
}

// Publisher returns the configured publisher name.
func (c *Config) Publisher() (string, error) {
	if strings.TrimSpace(c.DOI.Publisher) == "" {
		return "", ErrMissingPublisher
	}

	return c.DOI.Publisher, nil
}

// SiteURL returns the catalogue base URL without a trailing slash.
func (c *Config) SiteURL() (string, error) {
	if c.Site.URL == "" {
		return "", ErrMissingSiteURL
	}

	return strings.TrimRight(c.Site.URL, "/"), nil
}

// CacheTTL returns how long a fetched license list stays fresh.
func (lc *LicensesConfig) CacheTTL() time.Duration {
	return time.Duration(lc.CacheTTLSec) * time.Second
}

// GetRetryDelay calculates exponential backoff delay for attempt number.
func (rp *RetryPolicy) GetRetryDelay(attempt int) time.Duration {
	if attempt <= 1 {
		return 0
	}

	delayMs := float64(rp.InitialDelayMs)
	for i := 1; i < attempt; i++ {
		delayMs *= rp.BackoffMultiplier
	}

	// Cap at max delay
	if int(delayMs) > rp.MaxDelayMs {
		delayMs = float64(rp.MaxDelayMs)
	}

	return time.Duration(int(delayMs)) * time.Millisecond
}

// GetTimeout returns the timeout duration.
func (rp *RetryPolicy) GetTimeout() time.Duration {
	return time.Duration(rp.TimeoutSec) * time.Second
}

// String returns a string representation of the config.
func (c *Config) String() string {
	source := "builtin"

	switch {
	case c.Licenses.File != "":
		source = c.Licenses.File
	case c.Licenses.URL != "":
		source = c.Licenses.URL
	}

	return fmt.Sprintf(
		"Config{Publisher: %q, Site: %s, Locale: %s, Licenses: %s}",
		c.DOI.Publisher,
		c.Site.URL,
		c.Site.Locale,
		source,
	)
}

func isHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}

	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
