package config

import (
	"time"

	"dario.cat/mergo"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Config is the root configuration for one Scraper instance. It is
// immutable after construction; a crawl never mutates it.
type Config struct {
	// Format names the output formatter used to persist records.
	Format string `mapstructure:"format" yaml:"format"`

	// UserAgent is sent with every HTTP fetch and download.
	UserAgent string `mapstructure:"user_agent" yaml:"user_agent"`

	// RequestInterval is the pause after each successful page fetch.
	RequestInterval time.Duration `mapstructure:"request_interval" yaml:"request_interval"`

	// BatchSize is the number of fetches after which BatchInterval is
	// applied instead of RequestInterval.
	BatchSize int `mapstructure:"batch_size" yaml:"batch_size"`

	// BatchInterval is the longer pause applied at each batch boundary.
	BatchInterval time.Duration `mapstructure:"batch_interval" yaml:"batch_interval"`

	// DataDirectory is where output files are written.
	DataDirectory string `mapstructure:"data_directory" yaml:"data_directory"`

	// FilesDirectory is the subdirectory of DataDirectory used for
	// downloaded files.
	FilesDirectory string `mapstructure:"files_directory" yaml:"files_directory"`

	// UseBrowser selects the headless-browser fetch strategy instead of
	// the plain HTTP client.
	UseBrowser bool `mapstructure:"use_browser" yaml:"use_browser"`

	// RequestTimeout bounds a single fetch.
	RequestTimeout time.Duration `mapstructure:"request_timeout" yaml:"request_timeout"`

	// MaxBodySize caps the number of response bytes read per page.
	MaxBodySize int64 `mapstructure:"max_body_size" yaml:"max_body_size"`

	Browser BrowserConfig `mapstructure:"browser" yaml:"browser"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
}

// BrowserConfig controls the headless-browser fetch strategy.
type BrowserConfig struct {
	// Headless runs the browser without a UI.
	Headless bool `mapstructure:"headless" yaml:"headless"`

	// Stealth applies anti-bot-detection patches to each page.
	Stealth bool `mapstructure:"stealth" yaml:"stealth"`

	// WaitSelector, when set, is waited for before reading rendered HTML.
	WaitSelector string `mapstructure:"wait_selector" yaml:"wait_selector"`

	// PageLoadTimeout bounds navigation plus selector wait.
	PageLoadTimeout time.Duration `mapstructure:"page_load_timeout" yaml:"page_load_timeout"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Format:          "json",
		UserAgent:       "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		RequestInterval: 200 * time.Millisecond,
		BatchSize:       10,
		BatchInterval:   2 * time.Second,
		DataDirectory:   "./data",
		FilesDirectory:  "files",
		UseBrowser:      false,
		RequestTimeout:  30 * time.Second,
		MaxBodySize:     10 * 1024 * 1024, // 10MB
		Browser: BrowserConfig{
			Headless:        true,
			PageLoadTimeout: 30 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Merge deep-merges user overrides into defaults and returns the result.
// Fields the overrides leave at their zero value keep the default.
func Merge(overrides *Config) (*Config, error) {
	cfg := Default()
	if overrides == nil {
		return cfg, nil
	}
	if err := mergo.Merge(cfg, overrides, mergo.WithOverride); err != nil {
		return nil, err
	}
	return cfg, nil
}
