package format

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tjodalv/libscraper/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// --- Registry Tests ---

func TestRegistryBuiltins(t *testing.T) {
	r := NewRegistry(testLogger)

	for _, name := range []string{"json", "csv"} {
		if _, err := r.Get(name); err != nil {
			t.Errorf("built-in formatter %q missing: %v", name, err)
		}
	}
}

func TestRegistryUnknownFormat(t *testing.T) {
	r := NewRegistry(testLogger)

	_, err := r.Get("parquet")
	if !errors.Is(err, types.ErrUnknownFormat) {
		t.Errorf("expected ErrUnknownFormat, got %v", err)
	}
}

func TestRegistryCustomFormatter(t *testing.T) {
	r := NewRegistry(testLogger)

	called := false
	custom := Func(func(path string, records []*types.Record) (string, error) {
		called = true
		return path, nil
	})
	if err := r.Register("custom", custom); err != nil {
		t.Fatalf("register: %v", err)
	}

	f, err := r.Get("custom")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if _, err := f.Format("out", nil); err != nil {
		t.Fatalf("format: %v", err)
	}
	if !called {
		t.Error("custom formatter was not invoked")
	}
}

func TestRegistryRejectsEmptyNameAndNil(t *testing.T) {
	r := NewRegistry(testLogger)

	if err := r.Register("", Func(func(string, []*types.Record) (string, error) { return "", nil })); err == nil {
		t.Error("expected error for empty name")
	}
	if err := r.Register("x", nil); err == nil {
		t.Error("expected error for nil formatter")
	}
}

// --- JSON Formatter Tests ---

func TestJSONZeroRecordsNoFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.json")

	_, err := NewJSON(testLogger).Format(path, nil)
	if !errors.Is(err, types.ErrNoRecords) {
		t.Fatalf("expected ErrNoRecords, got %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("file must not be created for zero records")
	}
}

func TestJSONKeyOrderPreserved(t *testing.T) {
	dir := t.TempDir()

	r := types.NewRecord()
	r.Set("zeta", "1")
	r.Set("alpha", "2")
	r.Set("mid", "3")

	path, err := NewJSON(testLogger).Format(filepath.Join(dir, "out.json"), []*types.Record{r})
	if err != nil {
		t.Fatalf("format: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	s := string(data)
	zi, ai, mi := strings.Index(s, `"zeta"`), strings.Index(s, `"alpha"`), strings.Index(s, `"mid"`)
	if zi < 0 || ai < 0 || mi < 0 {
		t.Fatalf("missing keys in output:\n%s", s)
	}
	if !(zi < ai && ai < mi) {
		t.Errorf("key order not preserved:\n%s", s)
	}
}

func TestJSONExtensionAppended(t *testing.T) {
	dir := t.TempDir()

	r := types.NewRecord().Set("a", "1")
	path, err := NewJSON(testLogger).Format(filepath.Join(dir, "items"), []*types.Record{r})
	if err != nil {
		t.Fatalf("format: %v", err)
	}
	if filepath.Ext(path) != ".json" {
		t.Errorf("expected .json extension, got %q", path)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("output file missing: %v", err)
	}
}

// --- CSV Formatter Tests ---

func TestCSVZeroRecordsNoFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.csv")

	_, err := NewCSV(testLogger).Format(path, nil)
	if !errors.Is(err, types.ErrNoRecords) {
		t.Fatalf("expected ErrNoRecords, got %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("file must not be created for zero records")
	}
}

func TestCSVHeaderUnionAndMissingFields(t *testing.T) {
	dir := t.TempDir()

	r1 := types.NewRecord().Set("a", "1").Set("b", "2")
	r2 := types.NewRecord().Set("a", "3")

	path, err := NewCSV(testLogger).Format(filepath.Join(dir, "out.csv"), []*types.Record{r1, r2})
	if err != nil {
		t.Fatalf("format: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	want := []string{"a,b", "1,2", "3,"}
	if len(lines) != len(want) {
		t.Fatalf("expected %d lines, got %d:\n%s", len(want), len(lines), data)
	}
	for i, w := range want {
		if lines[i] != w {
			t.Errorf("line %d: expected %q, got %q", i, w, lines[i])
		}
	}
}

func TestCSVHeaderFirstAppearanceOrder(t *testing.T) {
	r1 := types.NewRecord().Set("title", "x").Set("price", "1")
	r2 := types.NewRecord().Set("price", "2").Set("sku", "y")

	got := headerUnion([]*types.Record{r1, r2})
	want := []string{"title", "price", "sku"}
	if len(got) != len(want) {
		t.Fatalf("expected headers %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected headers %v, got %v", want, got)
		}
	}
}

func TestCSVNonStringCells(t *testing.T) {
	r := types.NewRecord().Set("n", 42).Set("tags", []string{"a", "b"}).Set("raw", []byte("bytes"))

	if got := cellValue(r, "n"); got != "42" {
		t.Errorf("int cell: %q", got)
	}
	if got := cellValue(r, "tags"); got != `["a","b"]` {
		t.Errorf("slice cell: %q", got)
	}
	if got := cellValue(r, "raw"); got != "bytes" {
		t.Errorf("byte cell: %q", got)
	}
	if got := cellValue(r, "missing"); got != "" {
		t.Errorf("missing cell: %q", got)
	}
}

func TestCSVExtensionAppended(t *testing.T) {
	dir := t.TempDir()

	r := types.NewRecord().Set("a", "1")
	path, err := NewCSV(testLogger).Format(filepath.Join(dir, "items"), []*types.Record{r})
	if err != nil {
		t.Fatalf("format: %v", err)
	}
	if filepath.Ext(path) != ".csv" {
		t.Errorf("expected .csv extension, got %q", path)
	}
}
