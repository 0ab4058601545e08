// Package download streams remote files to local storage for use from
// inside extraction callbacks.
package download

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/tjodalv/libscraper/internal/config"
	"github.com/tjodalv/libscraper/internal/types"
)

// DefaultExtension is used when neither the URL path nor the response
// content type yields a file extension.
const DefaultExtension = ".pdf"

// Preferred extensions for common content types, since
// mime.ExtensionsByType can return several candidates.
var preferredExt = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/gif":       ".gif",
	"image/webp":      ".webp",
	"application/pdf": ".pdf",
	"text/html":       ".html",
	"text/plain":      ".txt",
}

// Downloader streams remote resources into the files subdirectory of the
// configured data directory.
type Downloader struct {
	dataDir  string
	filesDir string
	client   *http.Client
	ua       string
	logger   *slog.Logger
}

// NewDownloader creates a Downloader rooted at cfg.DataDirectory, saving
// into cfg.FilesDirectory beneath it.
func NewDownloader(cfg *config.Config, logger *slog.Logger) *Downloader {
	return &Downloader{
		dataDir:  cfg.DataDirectory,
		filesDir: cfg.FilesDirectory,
		client:   &http.Client{Timeout: 60 * time.Second},
		ua:       cfg.UserAgent,
		logger:   logger.With("component", "downloader"),
	}
}

// Download streams the resource at rawURL to local storage and returns
// the saved path relative to the data directory. The path is returned
// only after the stream has fully completed and the file is closed. If
// filename is empty it is inferred from the URL's path segment with the
// query string stripped; a missing extension is derived from the
// response content type, falling back to DefaultExtension.
func (d *Downloader) Download(ctx context.Context, rawURL, filename string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", &types.DownloadError{URL: rawURL, Err: err}
	}
	if d.ua != "" {
		req.Header.Set("User-Agent", d.ua)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return "", &types.DownloadError{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &types.DownloadError{
			URL:        rawURL,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("HTTP %d", resp.StatusCode),
		}
	}

	contentType := resp.Header.Get("Content-Type")
	if filename == "" {
		filename = inferFilename(rawURL)
	}
	if filepath.Ext(filename) == "" {
		filename += extensionFor(contentType)
	}

	dir := filepath.Join(d.dataDir, d.filesDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", &types.DownloadError{URL: rawURL, Err: err}
	}
	localPath := filepath.Join(dir, filename)

	f, err := os.Create(localPath)
	if err != nil {
		return "", &types.DownloadError{URL: rawURL, Err: err}
	}

	size, err := io.Copy(f, resp.Body)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(localPath)
		return "", &types.DownloadError{URL: rawURL, Err: err}
	}

	d.logger.Debug("file downloaded",
		"url", rawURL,
		"path", localPath,
		"size", size,
	)

	return filepath.Join(d.filesDir, filename), nil
}

// inferFilename derives a filename from the URL's path segment. URLs
// with no usable path segment get a hash-derived name.
func inferFilename(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return hashName(rawURL)
	}
	name := path.Base(parsed.Path)
	if name == "" || name == "." || name == "/" {
		return hashName(rawURL)
	}
	return name
}

// extensionFor maps a response content type to a file extension.
func extensionFor(contentType string) string {
	ct, _, err := mime.ParseMediaType(contentType)
	if err != nil || ct == "" {
		return DefaultExtension
	}
	ct = strings.ToLower(ct)
	if ext, ok := preferredExt[ct]; ok {
		return ext
	}
	if exts, _ := mime.ExtensionsByType(ct); len(exts) > 0 {
		return exts[0]
	}
	return DefaultExtension
}

func hashName(rawURL string) string {
	h := sha256.Sum256([]byte(rawURL))
	return hex.EncodeToString(h[:8])
}
