package format

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/tjodalv/libscraper/internal/types"
)

// JSON writes records as a pretty-printed JSON array. Field order within
// each object follows the record's insertion order.
type JSON struct {
	logger *slog.Logger
}

// NewJSON creates the JSON formatter.
func NewJSON(logger *slog.Logger) *JSON {
	return &JSON{logger: logger.With("component", "json_formatter")}
}

// Format implements Formatter. A path without an extension gets ".json"
// appended.
func (j *JSON) Format(path string, records []*types.Record) (string, error) {
	if len(records) == 0 {
		return "", types.ErrNoRecords
	}

	if filepath.Ext(path) == "" {
		path += ".json"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", &types.FormatError{Format: "json", Err: err}
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return "", &types.FormatError{Format: "json", Err: err}
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", &types.FormatError{Format: "json", Err: err}
	}

	j.logger.Info("JSON written", "path", path, "records", len(records))
	return path, nil
}
