// Package parsers turns the report files of static analysis tools into issues.
package parsers

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"

	"warntrace/internal/issues"
)

// Parser reads one tool report.
type Parser interface {
	Name() string
	Parse(ctx context.Context, r io.Reader) (issues.Collection, error)
}

// Registry manages available parsers.
type Registry struct {
	parsers map[string]Parser
	mu      sync.RWMutex
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		parsers: make(map[string]Parser),
	}
}

// Default returns a registry with every built-in parser. A nil logger
// discards parser diagnostics.
func Default(logger *slog.Logger) *Registry {
	r := NewRegistry()
	r.Register(NewCheckstyleParser(logger))
	r.Register(NewDoxygenParser())
	r.Register(NewJSONParser())
	return r
}

// Register adds a parser under its name, replacing any previous one.
func (r *Registry) Register(p Parser) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.parsers[p.Name()] = p
}

// Get returns a parser by name.
func (r *Registry) Get(name string) (Parser, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.parsers[name]
	if !ok {
		return nil, fmt.Errorf("unknown report format %q (available: %v)", name, r.namesLocked())
	}
	return p, nil
}

// Names lists the registered parser names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.namesLocked()
}

func (r *Registry) namesLocked() []string {
	names := make([]string, 0, len(r.parsers))
	for name := range r.parsers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
