package config

import (
	"fmt"
	"net/url"
)

// Validate checks the configuration for invalid values.
func Validate(cfg *Config) error {
	if cfg.Format == "" {
		return fmt.Errorf("format must not be empty")
	}
	if cfg.RequestInterval < 0 {
		return fmt.Errorf("request_interval must be >= 0")
	}
	if cfg.BatchSize < 0 {
		return fmt.Errorf("batch_size must be >= 0, got %d", cfg.BatchSize)
	}
	if cfg.BatchInterval < 0 {
		return fmt.Errorf("batch_interval must be >= 0")
	}
	if cfg.DataDirectory == "" {
		return fmt.Errorf("data_directory must not be empty")
	}
	if cfg.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be > 0")
	}
	if cfg.MaxBodySize <= 0 {
		return fmt.Errorf("max_body_size must be > 0")
	}
	if cfg.UseBrowser && cfg.Browser.PageLoadTimeout <= 0 {
		return fmt.Errorf("browser.page_load_timeout must be > 0")
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[cfg.Logging.Level] {
		return fmt.Errorf("logging.level must be debug/info/warn/error, got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" && cfg.Logging.Format != "json" {
		return fmt.Errorf("logging.format must be 'text' or 'json', got %q", cfg.Logging.Format)
	}

	return nil
}

// ValidateURL checks if a URL string is usable as a crawl target.
func ValidateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("URL scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("URL must have a host")
	}
	return nil
}
