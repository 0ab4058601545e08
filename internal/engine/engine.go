// Package engine implements the crawl orchestration core: the URL work
// queue, per-crawl deduplication, pagination and item-link discovery,
// request throttling, and merging of static and supplemental data into
// extracted records.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/tjodalv/libscraper/internal/config"
	"github.com/tjodalv/libscraper/internal/download"
	"github.com/tjodalv/libscraper/internal/fetcher"
	"github.com/tjodalv/libscraper/internal/page"
	"github.com/tjodalv/libscraper/internal/types"
)

// FollowFunc re-queues one or more URLs discovered inside an extractor
// callback, optionally attaching supplemental data merged into the
// record(s) produced when each URL is later processed. Invalid URLs and
// URLs already scraped or already pending are skipped.
type FollowFunc func(extra map[string]any, urls ...string)

// ExtractFunc is the item-data-extractor callback. It receives the item
// page, the file downloader, the item URL, a re-queueing callback, and
// any supplemental data attached when the URL was enqueued.
type ExtractFunc func(ctx context.Context, p *page.Page, dl *download.Downloader, url string, follow FollowFunc, extra map[string]any) (types.ExtractResult, error)

// Callbacks holds the user-supplied extraction callbacks. Only
// ExtractItem is required; the rest are optional.
type Callbacks struct {
	// FindPagination returns additional listing-page URLs discovered on
	// the seed page.
	FindPagination func(p *page.Page, seedURL string) []string

	// FindItems returns item detail-page URLs discovered on a listing
	// page. When nil, each listing page is itself treated as the item.
	FindItems func(p *page.Page, seedURL string) []string

	// ExtractItem produces the record(s) for one item page.
	ExtractItem ExtractFunc

	// FormatFilename overrides the default output filename for a seed.
	FormatFilename func(defaultName, seedURL string, records []*types.Record) string
}

// Orchestrator runs the crawl loop for one Scraper instance. The work
// queue and scraped-URL set are rebuilt for every CrawlSeed call; the
// throttle counter spans all of the instance's fetches.
type Orchestrator struct {
	cfg        *config.Config
	fetcher    fetcher.Fetcher
	downloader *download.Downloader
	callbacks  Callbacks
	throttle   *Throttle
	logger     *slog.Logger
}

// New creates an Orchestrator.
func New(cfg *config.Config, f fetcher.Fetcher, dl *download.Downloader, cb Callbacks, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		cfg:        cfg,
		fetcher:    f,
		downloader: dl,
		callbacks:  cb,
		throttle:   NewThrottle(cfg.RequestInterval, cfg.BatchSize, cfg.BatchInterval),
		logger:     logger.With("component", "engine"),
	}
}

// CrawlSeed crawls one seed URL to completion and returns the merged
// records. A seed-page fetch failure aborts the whole seed; any other
// fetch failure skips the affected URL, with no retry.
func (o *Orchestrator) CrawlSeed(ctx context.Context, seed types.Seed) ([]*types.Record, error) {
	if o.callbacks.ExtractItem == nil {
		return nil, types.ErrNoExtractor
	}

	base, err := url.Parse(seed.URL)
	if err != nil || !base.IsAbs() || base.Host == "" {
		return nil, fmt.Errorf("%w: %q", types.ErrInvalidURL, seed.URL)
	}

	seedPage, err := o.fetcher.Fetch(ctx, seed.URL)
	if err != nil {
		return nil, fmt.Errorf("fetch seed %s: %w", seed.URL, err)
	}
	if err := o.throttle.Wait(ctx); err != nil {
		return nil, err
	}

	queue := NewQueue()
	queue.Push(seed.URL)
	visited := make(map[string]struct{})
	extras := make(map[string]map[string]any)
	var records []*types.Record

	if o.callbacks.FindPagination != nil {
		for _, u := range o.callbacks.FindPagination(seedPage, seed.URL) {
			queue.Push(u)
		}
		o.logger.Debug("pagination discovered", "seed", seed.URL, "queued", queue.Len())
	}

	for queue.Len() > 0 {
		if err := ctx.Err(); err != nil {
			return records, err
		}

		current, _ := queue.Pop()
		if _, seen := visited[current]; seen {
			o.logger.Debug("skipping already scraped URL", "url", current)
			continue
		}
		visited[current] = struct{}{}

		// Reuse the seed page content instead of fetching it again.
		var pg *page.Page
		if current == seed.URL {
			pg = seedPage
		} else {
			pg, err = o.fetcher.Fetch(ctx, current)
			if err != nil {
				o.logger.Warn("page fetch failed, skipping", "url", current, "error", err)
				continue
			}
			if err := o.throttle.Wait(ctx); err != nil {
				return records, err
			}
		}

		if o.callbacks.FindItems != nil {
			recs, err := o.scrapeItems(ctx, pg, seed, base, visited, extras)
			if err != nil {
				return records, err
			}
			records = append(records, recs...)
		} else {
			follow := o.follower(queue, visited, extras)
			recs := o.extract(ctx, pg, current, follow, seed, extras)
			records = append(records, recs...)
		}
	}

	o.logger.Info("seed crawl complete",
		"seed", seed.URL,
		"pages", len(visited),
		"records", len(records),
	)
	return records, nil
}

// scrapeItems walks the item links discovered on one listing page. The
// item list is its own transient queue: URLs re-queued by the extractor
// are appended to it and visited before control returns to the outer
// work queue.
func (o *Orchestrator) scrapeItems(ctx context.Context, listing *page.Page, seed types.Seed, base *url.URL, visited map[string]struct{}, extras map[string]map[string]any) ([]*types.Record, error) {
	items := NewQueue()
	for _, raw := range o.callbacks.FindItems(listing, seed.URL) {
		resolved, err := resolveURL(base, raw)
		if err != nil {
			o.logger.Warn("invalid item URL, skipping", "url", raw, "error", err)
			continue
		}
		items.Push(resolved)
	}

	follow := o.follower(items, visited, extras)
	var records []*types.Record

	for items.Len() > 0 {
		if err := ctx.Err(); err != nil {
			return records, err
		}

		itemURL, _ := items.Pop()
		if _, seen := visited[itemURL]; seen {
			o.logger.Debug("skipping already scraped item", "url", itemURL)
			continue
		}
		visited[itemURL] = struct{}{}

		itemPage, err := o.fetcher.Fetch(ctx, itemURL)
		if err != nil {
			o.logger.Warn("item fetch failed, skipping", "url", itemURL, "error", err)
			continue
		}
		if err := o.throttle.Wait(ctx); err != nil {
			return records, err
		}

		records = append(records, o.extract(ctx, itemPage, itemURL, follow, seed, extras)...)
	}

	return records, nil
}

// extract invokes the item-data-extractor on one page and merges the
// results with seed static data and per-URL supplemental data.
func (o *Orchestrator) extract(ctx context.Context, pg *page.Page, pageURL string, follow FollowFunc, seed types.Seed, extras map[string]map[string]any) []*types.Record {
	extra := extras[pageURL]
	delete(extras, pageURL)

	res, err := o.callbacks.ExtractItem(ctx, pg, o.downloader, pageURL, follow, extra)
	if err != nil {
		o.logger.Warn("extractor error, skipping page", "url", pageURL, "error", err)
		return nil
	}

	out := res.Records()
	for _, r := range out {
		mergeRecord(r, seed.Static, extra)
	}
	return out
}

// follower builds the re-queueing callback bound to a specific queue.
func (o *Orchestrator) follower(q *Queue, visited map[string]struct{}, extras map[string]map[string]any) FollowFunc {
	return func(extra map[string]any, urls ...string) {
		for _, raw := range urls {
			u, err := url.Parse(raw)
			if err != nil || !u.IsAbs() || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
				o.logger.Warn("refusing to enqueue invalid URL", "url", raw)
				continue
			}
			if _, seen := visited[raw]; seen {
				continue
			}
			if !q.Push(raw) {
				continue
			}
			if extra != nil {
				extras[raw] = extra
			}
			o.logger.Debug("URL enqueued by extractor", "url", raw)
		}
	}
}

// mergeRecord applies the merge precedence: extracted fields first, then
// seed static data, then per-URL supplemental data — later wins, so
// static data overrides extracted fields and supplemental data overrides
// both.
func mergeRecord(r *types.Record, static, extra map[string]any) {
	if len(static) > 0 {
		r.MergeMap(static)
	}
	if len(extra) > 0 {
		r.MergeMap(extra)
	}
}

// resolveURL turns a possibly relative URL into an absolute one using
// the seed's scheme and host.
func resolveURL(base *url.URL, raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.IsAbs() {
		if u.Host == "" {
			return "", fmt.Errorf("%w: %q", types.ErrInvalidURL, raw)
		}
		return u.String(), nil
	}
	root := &url.URL{Scheme: base.Scheme, Host: base.Host}
	return root.ResolveReference(u).String(), nil
}
