// Package sorting holds the named key strategies used by for-each sorts. A
// strategy maps an evaluated sort value to a comparable key; Compare orders
// the keys.
package sorting

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-jdsl/pkg/value"
)

// Built-in strategy names.
const (
	Text   = "text"
	Number = "number"
)

// ErrUnknown is returned when a strategy name is not registered.
var ErrUnknown = errors.New("sorting: unknown sort type")

// KeyFunc derives a sort key from an evaluated value. A nil key sorts after
// every non-nil key.
type KeyFunc func(raw any) any

// Registry stores key strategies by name.
type Registry struct {
	mu         sync.RWMutex
	strategies map[string]KeyFunc
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{strategies: make(map[string]KeyFunc)}
}

// Default creates a registry populated with the built-in strategies.
func Default() *Registry {
	r := NewRegistry()
	r.MustRegister(Text, TextKey)
	r.MustRegister(Number, NumberKey)
	return r
}

// Register adds a strategy. Duplicate names return an error.
func (r *Registry) Register(name string, fn KeyFunc) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("sorting: name is required")
	}
	if fn == nil {
		return fmt.Errorf("sorting: key func for %q is required", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.strategies[name]; exists {
		return fmt.Errorf("sorting: %q already registered", name)
	}
	r.strategies[name] = fn
	return nil
}

// MustRegister panics on registration failure.
func (r *Registry) MustRegister(name string, fn KeyFunc) {
	if err := r.Register(name, fn); err != nil {
		panic(err)
	}
}

// Get retrieves a strategy by name.
func (r *Registry) Get(name string) (KeyFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	fn, ok := r.strategies[name]
	return fn, ok
}

// Has reports whether a strategy is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.Get(name)
	return ok
}

// List returns the registered names, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.strategies))
	for name := range r.strategies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// TextKey orders by the textual form of the value.
func TextKey(raw any) any {
	return value.String(raw)
}

// NumberKey orders by the leading integer of the value's text. Values without
// one yield nil.
func NumberKey(raw any) any {
	if value.IsNumeric(raw) {
		f, _ := value.Number(raw)
		return f
	}
	n, ok := value.LeadingInt(value.String(raw))
	if !ok {
		return nil
	}
	return float64(n)
}
