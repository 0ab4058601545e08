package fetcher

import (
	"compress/gzip"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/tjodalv/libscraper/internal/config"
	"github.com/tjodalv/libscraper/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func newTestHTTPFetcher(t *testing.T, cfg *config.Config) *HTTPFetcher {
	t.Helper()
	f, err := NewHTTPFetcher(cfg, testLogger)
	if err != nil {
		t.Fatalf("new fetcher: %v", err)
	}
	t.Cleanup(func() { f.Close() })
	return f
}

// --- HTTP Fetcher Tests ---

func TestHTTPFetchParsesPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body><h1>hello</h1></body></html>"))
	}))
	defer srv.Close()

	f := newTestHTTPFetcher(t, config.Default())
	p, err := f.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if got := p.Text("h1"); got != "hello" {
		t.Errorf("expected parsed heading, got %q", got)
	}
	if p.URL != srv.URL {
		t.Errorf("page URL %q, want %q", p.URL, srv.URL)
	}
}

func TestHTTPFetchSendsUserAgent(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Write([]byte("<html></html>"))
	}))
	defer srv.Close()

	cfg := config.Default()
	cfg.UserAgent = "custom-agent/2.0"
	f := newTestHTTPFetcher(t, cfg)

	if _, err := f.Fetch(context.Background(), srv.URL); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if gotUA != "custom-agent/2.0" {
		t.Errorf("expected configured user agent, got %q", gotUA)
	}
}

func TestHTTPFetchNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	f := newTestHTTPFetcher(t, config.Default())
	_, err := f.Fetch(context.Background(), srv.URL)
	if err == nil {
		t.Fatal("expected error for 500 response")
	}

	var ferr *types.FetchError
	if !errors.As(err, &ferr) {
		t.Fatalf("expected FetchError, got %T", err)
	}
	if ferr.StatusCode != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", ferr.StatusCode)
	}
}

func TestHTTPFetchEmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	f := newTestHTTPFetcher(t, config.Default())
	_, err := f.Fetch(context.Background(), srv.URL)
	if !errors.Is(err, types.ErrEmptyResponse) {
		t.Errorf("expected ErrEmptyResponse, got %v", err)
	}
}

func TestHTTPFetchGzipBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Encoding", "gzip")
		gz := gzip.NewWriter(w)
		gz.Write([]byte("<html><body><h1>compressed</h1></body></html>"))
		gz.Close()
	}))
	defer srv.Close()

	f := newTestHTTPFetcher(t, config.Default())
	p, err := f.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if got := p.Text("h1"); got != "compressed" {
		t.Errorf("gzip body not decompressed, got %q", got)
	}
}

func TestHTTPFetchMaxBodySize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body>" + strings.Repeat("x", 4096) + "</body></html>"))
	}))
	defer srv.Close()

	cfg := config.Default()
	cfg.MaxBodySize = 64
	f := newTestHTTPFetcher(t, cfg)

	p, err := f.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(p.Body) > 64 {
		t.Errorf("body not truncated: %d bytes", len(p.Body))
	}
}

func TestHTTPFetcherType(t *testing.T) {
	f := newTestHTTPFetcher(t, config.Default())
	if f.Type() != "http" {
		t.Errorf("unexpected type %q", f.Type())
	}
}
