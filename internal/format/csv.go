package format

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/tjodalv/libscraper/internal/types"
)

// CSV writes records as comma-separated rows. The header is the union of
// all field names across all records, in order of first appearance;
// fields absent from a record render as empty cells.
type CSV struct {
	logger *slog.Logger
}

// NewCSV creates the CSV formatter.
func NewCSV(logger *slog.Logger) *CSV {
	return &CSV{logger: logger.With("component", "csv_formatter")}
}

// Format implements Formatter. A path without an extension gets ".csv"
// appended.
func (c *CSV) Format(path string, records []*types.Record) (string, error) {
	if len(records) == 0 {
		return "", types.ErrNoRecords
	}

	if filepath.Ext(path) == "" {
		path += ".csv"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", &types.FormatError{Format: "csv", Err: err}
	}

	headers := headerUnion(records)

	f, err := os.Create(path)
	if err != nil {
		return "", &types.FormatError{Format: "csv", Err: err}
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(headers); err != nil {
		return "", &types.FormatError{Format: "csv", Err: err}
	}

	row := make([]string, len(headers))
	for _, r := range records {
		for i, h := range headers {
			row[i] = cellValue(r, h)
		}
		if err := w.Write(row); err != nil {
			return "", &types.FormatError{Format: "csv", Err: err}
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", &types.FormatError{Format: "csv", Err: err}
	}

	c.logger.Info("CSV written", "path", path, "records", len(records))
	return path, nil
}

// headerUnion collects all field names across records in order of first
// appearance.
func headerUnion(records []*types.Record) []string {
	var headers []string
	seen := make(map[string]struct{})
	for _, r := range records {
		for _, k := range r.Keys() {
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			headers = append(headers, k)
		}
	}
	return headers
}

// cellValue renders one field as a CSV cell. Missing fields are blank;
// non-string values serialize as JSON.
func cellValue(r *types.Record, key string) string {
	v, ok := r.Get(key)
	if !ok || v == nil {
		return ""
	}
	switch val := v.(type) {
	case string:
		return val
	case []byte:
		return string(val)
	case fmt.Stringer:
		return val.String()
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		return string(b)
	}
}
