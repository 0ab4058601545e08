package fetcher

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"github.com/tjodalv/libscraper/internal/config"
	"github.com/tjodalv/libscraper/internal/page"
	"github.com/tjodalv/libscraper/internal/types"
)

// BrowserFetcher implements Fetcher using a headless browser via Rod.
// The browser is launched lazily on the first fetch and reused for every
// fetch until Close, so one session spans a whole multi-seed scrape.
type BrowserFetcher struct {
	cfg     *config.Config
	logger  *slog.Logger
	mu      sync.Mutex
	browser *rod.Browser
}

// NewBrowserFetcher creates a headless browser fetcher. No browser
// process is started until the first Fetch call.
func NewBrowserFetcher(cfg *config.Config, logger *slog.Logger) *BrowserFetcher {
	return &BrowserFetcher{
		cfg:    cfg,
		logger: logger.With("component", "browser_fetcher"),
	}
}

// Fetch navigates to a URL, optionally waits for the configured selector,
// and parses the rendered HTML into a Page.
func (bf *BrowserFetcher) Fetch(ctx context.Context, rawURL string) (*page.Page, error) {
	browser, err := bf.ensureBrowser()
	if err != nil {
		return nil, &types.FetchError{URL: rawURL, Err: err}
	}

	start := time.Now()

	var pg *rod.Page
	if bf.cfg.Browser.Stealth {
		pg, err = stealth.Page(browser)
	} else {
		pg, err = browser.Page(proto.TargetCreateTarget{})
	}
	if err != nil {
		return nil, &types.FetchError{URL: rawURL, Err: fmt.Errorf("open page: %w", err)}
	}
	defer pg.Close()

	pg = pg.Context(ctx)

	timeout := bf.cfg.Browser.PageLoadTimeout
	if timeout <= 0 {
		timeout = bf.cfg.RequestTimeout
	}

	if ua := bf.cfg.UserAgent; ua != "" {
		if err := pg.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: ua}); err != nil {
			bf.logger.Warn("failed to set user agent", "error", err)
		}
	}

	if err := pg.Timeout(timeout).Navigate(rawURL); err != nil {
		return nil, &types.FetchError{URL: rawURL, Err: err}
	}

	if err := pg.Timeout(timeout).WaitLoad(); err != nil {
		bf.logger.Warn("page load timeout, continuing", "url", rawURL, "error", err)
	}

	if sel := bf.cfg.Browser.WaitSelector; sel != "" {
		el, err := pg.Timeout(timeout).Element(sel)
		if err != nil {
			return nil, &types.FetchError{URL: rawURL, Err: fmt.Errorf("wait for selector %q: %w", sel, err)}
		}
		if err := el.WaitVisible(); err != nil {
			bf.logger.Warn("wait selector not visible, continuing", "selector", sel, "error", err)
		}
	}

	html, err := pg.HTML()
	if err != nil {
		return nil, &types.FetchError{URL: rawURL, Err: err}
	}

	p, err := page.New(rawURL, []byte(html))
	if err != nil {
		return nil, &types.FetchError{URL: rawURL, Err: err}
	}

	bf.logger.Debug("browser fetch complete",
		"url", rawURL,
		"size", len(html),
		"duration", time.Since(start),
	)

	return p, nil
}

// Close shuts down the browser session, if one was started.
func (bf *BrowserFetcher) Close() error {
	bf.mu.Lock()
	defer bf.mu.Unlock()

	if bf.browser == nil {
		return nil
	}
	err := bf.browser.Close()
	bf.browser = nil
	return err
}

// Type returns the fetcher type identifier.
func (bf *BrowserFetcher) Type() string {
	return "browser"
}

// ensureBrowser launches and connects the browser on first use.
func (bf *BrowserFetcher) ensureBrowser() (*rod.Browser, error) {
	bf.mu.Lock()
	defer bf.mu.Unlock()

	if bf.browser != nil {
		return bf.browser, nil
	}

	l := launcher.New().
		Headless(bf.cfg.Browser.Headless).
		Set("disable-gpu").
		Set("disable-dev-shm-usage").
		Set("no-sandbox").
		Set("disable-blink-features", "AutomationControlled")

	launchURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	browser := rod.New().ControlURL(launchURL)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("connect browser: %w", err)
	}

	bf.browser = browser
	bf.logger.Info("browser session started",
		"headless", bf.cfg.Browser.Headless,
		"stealth", bf.cfg.Browser.Stealth,
	)
	return browser, nil
}
