// Package datatype holds the named converters applied to variable values via
// the `data-type` attribute. A converter turns the raw value (rendered text
// or an evaluated expression result) into a typed value.
package datatype

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Built-in data type names.
const (
	String   = "string"
	JSON     = "json"
	YAML     = "yaml"
	Number   = "number"
	Boolean  = "boolean"
	Markdown = "markdown"
)

// ErrUnknown is returned when a converter name is not registered.
var ErrUnknown = errors.New("datatype: unknown data type")

// Converter coerces a raw value into a typed one.
type Converter func(raw any) (any, error)

// Registry stores converters by name. Registration is append-only: duplicate
// names are rejected.
type Registry struct {
	mu         sync.RWMutex
	converters map[string]Converter
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{converters: make(map[string]Converter)}
}

// Default creates a registry populated with the built-in converters.
func Default() *Registry {
	r := NewRegistry()
	r.MustRegister(String, convertString)
	r.MustRegister(JSON, convertJSON)
	r.MustRegister(YAML, convertYAML)
	r.MustRegister(Number, convertNumber)
	r.MustRegister(Boolean, convertBoolean)
	r.MustRegister(Markdown, convertMarkdown)
	return r
}

// Register adds a converter. Duplicate names return an error.
func (r *Registry) Register(name string, fn Converter) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("datatype: name is required")
	}
	if fn == nil {
		return fmt.Errorf("datatype: converter for %q is required", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.converters[name]; exists {
		return fmt.Errorf("datatype: %q already registered", name)
	}
	r.converters[name] = fn
	return nil
}

// MustRegister panics on registration failure. Useful for init-time wiring.
func (r *Registry) MustRegister(name string, fn Converter) {
	if err := r.Register(name, fn); err != nil {
		panic(err)
	}
}

// Get retrieves a converter by name.
func (r *Registry) Get(name string) (Converter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	fn, ok := r.converters[name]
	return fn, ok
}

// Has reports whether a converter is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.Get(name)
	return ok
}

// Convert applies the named converter to raw.
func (r *Registry) Convert(name string, raw any) (any, error) {
	fn, ok := r.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknown, name)
	}
	out, err := fn(raw)
	if err != nil {
		return nil, fmt.Errorf("datatype: %s: %w", name, err)
	}
	return out, nil
}

// List returns the registered names, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.converters))
	for name := range r.converters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
