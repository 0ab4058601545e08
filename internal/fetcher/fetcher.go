// Package fetcher provides the two interchangeable page-fetch strategies:
// a plain HTTP client and a headless-browser-driven fetch.
package fetcher

import (
	"context"

	"github.com/tjodalv/libscraper/internal/page"
)

// Fetcher retrieves and parses pages for the crawl orchestrator.
type Fetcher interface {
	// Fetch retrieves the content at the given URL and parses it into a
	// Page. A non-2xx response, network error, or unparseable body is
	// returned as an error.
	Fetch(ctx context.Context, url string) (*page.Page, error)

	// Close releases any resources held by the fetcher.
	Close() error

	// Type returns the fetcher type identifier.
	Type() string
}
