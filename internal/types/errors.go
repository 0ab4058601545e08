package types

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure modes.
var (
	ErrInvalidURL    = errors.New("invalid URL")
	ErrUnknownFormat = errors.New("unknown output format")
	ErrNoRecords     = errors.New("no records: no file saved")
	ErrNoExtractor   = errors.New("no item extractor registered")
	ErrEmptyResponse = errors.New("empty response body")
)

// FetchError wraps errors that occur while fetching a page. A parse
// failure of fetched content is reported the same way.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("fetch error for %s (status %d): %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch error for %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// DownloadError wraps errors that occur while downloading a file. The
// partial file, if any, has already been removed when this is returned.
type DownloadError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *DownloadError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("download error for %s (status %d): %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("download error for %s: %v", e.URL, e.Err)
}

func (e *DownloadError) Unwrap() error { return e.Err }

// FormatError wraps errors that occur while serializing records.
type FormatError struct {
	Format string
	Err    error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("format error (%s): %v", e.Format, e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }
