// Package format provides pluggable output formatters that persist a
// record sequence, selected by name at write time.
package format

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/tjodalv/libscraper/internal/types"
)

// Formatter persists a sequence of records to the given path and returns
// the path actually written. Given zero records it must not create a
// file and must return types.ErrNoRecords.
type Formatter interface {
	Format(path string, records []*types.Record) (string, error)
}

// Func adapts a plain function to the Formatter interface.
type Func func(path string, records []*types.Record) (string, error)

// Format implements Formatter.
func (f Func) Format(path string, records []*types.Record) (string, error) {
	return f(path, records)
}

// Registry manages named formatters. JSON and CSV are registered by
// default.
type Registry struct {
	mu         sync.RWMutex
	formatters map[string]Formatter
	logger     *slog.Logger
}

// NewRegistry creates a Registry with the built-in formatters.
func NewRegistry(logger *slog.Logger) *Registry {
	r := &Registry{
		formatters: make(map[string]Formatter),
		logger:     logger.With("component", "format_registry"),
	}
	r.formatters["json"] = NewJSON(logger)
	r.formatters["csv"] = NewCSV(logger)
	return r
}

// Register adds a formatter under the given name, replacing any existing
// registration with that name.
func (r *Registry) Register(name string, f Formatter) error {
	if name == "" {
		return fmt.Errorf("formatter name must not be empty")
	}
	if f == nil {
		return fmt.Errorf("formatter %q is nil", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.formatters[name] = f
	r.logger.Debug("formatter registered", "name", name)
	return nil
}

// Get returns the formatter registered under name. An unknown name is an
// error so a run can abort before any fetching starts.
func (r *Registry) Get(name string) (Formatter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.formatters[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", types.ErrUnknownFormat, name)
	}
	return f, nil
}

// Names returns the registered formatter names.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.formatters))
	for name := range r.formatters {
		names = append(names, name)
	}
	return names
}
