// Package scraper is the public facade of libscraper: a configurable
// web-scraping toolkit driven by four pluggable callbacks (pagination
// finder, items-link finder, item extractor, filename formatter) and
// pluggable output formatters.
//
// Example usage:
//
//	s, _ := scraper.New(
//	    scraper.WithFormat("csv"),
//	    scraper.WithDataDirectory("./data"),
//	)
//
//	s.OnPagination(func(p *scraper.Page, seedURL string) []string {
//	    return p.Find(".pager a").Map(func(_ int, sel *goquery.Selection) string {
//	        href, _ := sel.Attr("href")
//	        return href
//	    })
//	})
//
//	s.OnItemData(func(ctx context.Context, p *scraper.Page, dl *scraper.Downloader,
//	    url string, follow scraper.FollowFunc, extra map[string]any) (scraper.ExtractResult, error) {
//	    r := scraper.NewRecord().Set("title", p.Text("h1"))
//	    return scraper.One(r), nil
//	})
//
//	s.Scrape(ctx, scraper.NewSeed("https://example.com/shoes"))
package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/tjodalv/libscraper/internal/config"
	"github.com/tjodalv/libscraper/internal/download"
	"github.com/tjodalv/libscraper/internal/engine"
	"github.com/tjodalv/libscraper/internal/fetcher"
	"github.com/tjodalv/libscraper/internal/format"
	"github.com/tjodalv/libscraper/internal/page"
	"github.com/tjodalv/libscraper/internal/types"
)

// Re-exported types so user callbacks can be written against this
// package alone.
type (
	Page          = page.Page
	Record        = types.Record
	Seed          = types.Seed
	ExtractResult = types.ExtractResult
	Downloader    = download.Downloader
	FollowFunc    = engine.FollowFunc
	ExtractFunc   = engine.ExtractFunc
	Formatter     = format.Formatter
	FormatterFunc = format.Func
	Config        = config.Config
)

// Re-exported constructors and sentinels.
var (
	NewRecord        = types.NewRecord
	RecordFromMap    = types.FromMap
	NewSeed          = types.NewSeed
	NewSeedWithData  = types.NewSeedWithData
	One              = types.One
	Many             = types.Many
	Empty            = types.Empty
	ErrUnknownFormat = types.ErrUnknownFormat
	ErrNoRecords     = types.ErrNoRecords
)

// Scraper holds the configuration, the formatter registry, and the four
// registered callbacks, and drives one crawl per seed URL.
type Scraper struct {
	cfg       *config.Config
	logger    *slog.Logger
	registry  *format.Registry
	callbacks engine.Callbacks
}

// New creates a Scraper from default configuration plus options.
func New(opts ...Option) (*Scraper, error) {
	cfg := config.Default()
	for _, opt := range opts {
		opt(cfg)
	}
	return newScraper(cfg)
}

// NewFromConfig creates a Scraper from user overrides deep-merged into
// defaults.
func NewFromConfig(overrides *Config) (*Scraper, error) {
	cfg, err := config.Merge(overrides)
	if err != nil {
		return nil, fmt.Errorf("merge config: %w", err)
	}
	return newScraper(cfg)
}

func newScraper(cfg *config.Config) (*Scraper, error) {
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	logger := newLogger(cfg)
	return &Scraper{
		cfg:      cfg,
		logger:   logger,
		registry: format.NewRegistry(logger),
	}, nil
}

// OnPagination registers the pagination-finder callback, invoked with
// the fetched seed page to discover additional listing pages.
func (s *Scraper) OnPagination(fn func(p *Page, seedURL string) []string) *Scraper {
	s.callbacks.FindPagination = fn
	return s
}

// OnItems registers the items-link-finder callback, invoked with each
// listing page to discover item detail-page URLs. Without it, every
// listing page is treated as an item page itself.
func (s *Scraper) OnItems(fn func(p *Page, seedURL string) []string) *Scraper {
	s.callbacks.FindItems = fn
	return s
}

// OnItemData registers the item-data-extractor callback. Required.
func (s *Scraper) OnItemData(fn ExtractFunc) *Scraper {
	s.callbacks.ExtractItem = fn
	return s
}

// OnFilename registers the filename-formatter callback, overriding the
// default output filename per seed.
func (s *Scraper) OnFilename(fn func(defaultName, seedURL string, records []*Record) string) *Scraper {
	s.callbacks.FormatFilename = fn
	return s
}

// RegisterFormatter adds a named output formatter.
func (s *Scraper) RegisterFormatter(name string, f Formatter) error {
	return s.registry.Register(name, f)
}

// RegisterFormatterFunc adds a named output formatter from a plain
// function.
func (s *Scraper) RegisterFormatterFunc(name string, fn FormatterFunc) error {
	return s.registry.Register(name, fn)
}

// RegisterMongoFormatter connects to MongoDB and registers a formatter
// writing each seed's records to a collection in the given database.
func (s *Scraper) RegisterMongoFormatter(name, uri, database string) (*format.Mongo, error) {
	m, err := format.NewMongo(uri, database, s.logger)
	if err != nil {
		return nil, err
	}
	if err := s.registry.Register(name, m); err != nil {
		m.Close()
		return nil, err
	}
	return m, nil
}

// Result reports the outcome of one seed crawl.
type Result struct {
	// Seed is the seed URL.
	Seed string

	// Records is the number of merged records produced.
	Records int

	// SavedTo is the location the formatter reported, empty when
	// nothing was saved.
	SavedTo string

	// Err is the seed's crawl or format error, if any.
	Err error
}

// Scrape crawls each seed URL in order and persists each seed's records
// through the configured formatter. The formatter is resolved before any
// fetching, so an unknown format name aborts the whole run. The fetch
// strategy (browser session included) is closed after all seeds finish.
func (s *Scraper) Scrape(ctx context.Context, seeds ...Seed) ([]Result, error) {
	fmtr, err := s.registry.Get(s.cfg.Format)
	if err != nil {
		s.logger.Error("unknown output format, aborting run", "format", s.cfg.Format)
		return nil, err
	}
	if s.callbacks.ExtractItem == nil {
		return nil, types.ErrNoExtractor
	}

	f, err := s.newFetcher()
	if err != nil {
		return nil, fmt.Errorf("create fetcher: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			s.logger.Error("fetcher close error", "error", cerr)
		}
	}()

	dl := download.NewDownloader(s.cfg, s.logger)
	orch := engine.New(s.cfg, f, dl, s.callbacks, s.logger)

	results := make([]Result, 0, len(seeds))
	for _, seed := range seeds {
		res := Result{Seed: seed.URL}

		records, err := orch.CrawlSeed(ctx, seed)
		if err != nil {
			s.logger.Error("seed crawl failed", "seed", seed.URL, "error", err)
			res.Err = err
			results = append(results, res)
			if ctx.Err() != nil {
				return results, ctx.Err()
			}
			continue
		}
		res.Records = len(records)

		name := DefaultFilename(seed.URL)
		if s.callbacks.FormatFilename != nil {
			name = s.callbacks.FormatFilename(name, seed.URL, records)
		}

		saved, err := fmtr.Format(filepath.Join(s.cfg.DataDirectory, name), records)
		switch {
		case errors.Is(err, types.ErrNoRecords):
			s.logger.Info("no records extracted, no file saved", "seed", seed.URL)
		case err != nil:
			s.logger.Error("formatter failed, output not saved", "seed", seed.URL, "error", err)
			res.Err = err
		default:
			s.logger.Info("output saved", "seed", seed.URL, "path", saved, "records", res.Records)
			res.SavedTo = saved
		}
		results = append(results, res)
	}

	return results, nil
}

// Config returns the scraper's effective configuration.
func (s *Scraper) Config() *Config {
	return s.cfg
}

// newFetcher selects the fetch strategy from configuration.
func (s *Scraper) newFetcher() (fetcher.Fetcher, error) {
	if s.cfg.UseBrowser {
		return fetcher.NewBrowserFetcher(s.cfg, s.logger), nil
	}
	return fetcher.NewHTTPFetcher(s.cfg, s.logger)
}

var nonWord = regexp.MustCompile(`\W+`)

// DefaultFilename derives the default output base name for a seed URL:
// scheme stripped, non-word character runs collapsed to single
// underscores, prefixed "items_".
func DefaultFilename(rawURL string) string {
	s := rawURL
	if i := strings.Index(s, "://"); i >= 0 {
		s = s[i+3:]
	}
	s = nonWord.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	return "items_" + s
}

func newLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.Logging.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Logging.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}
