package scraper

import (
	"time"

	"github.com/tjodalv/libscraper/internal/config"
)

// Option configures a Scraper at construction time.
type Option func(*config.Config)

// WithFormat selects the output formatter by name.
func WithFormat(name string) Option {
	return func(c *config.Config) { c.Format = name }
}

// WithUserAgent sets the User-Agent sent with every fetch and download.
func WithUserAgent(ua string) Option {
	return func(c *config.Config) { c.UserAgent = ua }
}

// WithRequestInterval sets the pause after each successful page fetch.
func WithRequestInterval(d time.Duration) Option {
	return func(c *config.Config) { c.RequestInterval = d }
}

// WithBatch sets the batch size and the longer pause applied at each
// batch boundary.
func WithBatch(size int, interval time.Duration) Option {
	return func(c *config.Config) {
		c.BatchSize = size
		c.BatchInterval = interval
	}
}

// WithDataDirectory sets the directory output files are written to.
func WithDataDirectory(dir string) Option {
	return func(c *config.Config) { c.DataDirectory = dir }
}

// WithFilesDirectory sets the downloads subdirectory of the data
// directory.
func WithFilesDirectory(dir string) Option {
	return func(c *config.Config) { c.FilesDirectory = dir }
}

// WithBrowser switches fetching to the headless-browser strategy.
func WithBrowser() Option {
	return func(c *config.Config) { c.UseBrowser = true }
}

// WithWaitSelector makes the browser strategy wait for the selector to
// appear before reading rendered content. Implies WithBrowser.
func WithWaitSelector(selector string) Option {
	return func(c *config.Config) {
		c.UseBrowser = true
		c.Browser.WaitSelector = selector
	}
}

// WithStealth applies anti-bot-detection patches to browser pages.
// Implies WithBrowser.
func WithStealth() Option {
	return func(c *config.Config) {
		c.UseBrowser = true
		c.Browser.Stealth = true
	}
}

// WithRequestTimeout bounds a single fetch.
func WithRequestTimeout(d time.Duration) Option {
	return func(c *config.Config) { c.RequestTimeout = d }
}

// WithVerbose enables debug-level logging.
func WithVerbose() Option {
	return func(c *config.Config) { c.Logging.Level = "debug" }
}
