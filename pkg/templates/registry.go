// Package templates stores named templates that call-template resolves by
// identifier.
package templates

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-jdsl/pkg/tree"
)

// IDPrefix is prepended to a template element's id when it is registered,
// so `<j:template id="row">` is called with `rel="#row"`.
const IDPrefix = "#"

// Key returns the registry key for a template id.
func Key(id string) string {
	id = strings.TrimSpace(id)
	if strings.HasPrefix(id, IDPrefix) {
		return id
	}
	return IDPrefix + id
}

// Registry maps identifiers to template nodes. The interpreter only reads
// from it; loaders populate it. Stored trees must not be mutated after
// registration.
type Registry struct {
	mu        sync.RWMutex
	templates map[string]*tree.Node
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{templates: make(map[string]*tree.Node)}
}

// Register stores node under id. Duplicate ids return an error.
func (r *Registry) Register(id string, node *tree.Node) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("templates: id is required")
	}
	if node == nil {
		return fmt.Errorf("templates: template %q is nil", id)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.templates[id]; exists {
		return fmt.Errorf("templates: template %q already registered", id)
	}
	r.templates[id] = node
	return nil
}

// MustRegister panics on registration failure.
func (r *Registry) MustRegister(id string, node *tree.Node) {
	if err := r.Register(id, node); err != nil {
		panic(err)
	}
}

// Get retrieves a template by id.
func (r *Registry) Get(id string) (*tree.Node, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	node, ok := r.templates[id]
	return node, ok
}

// Has reports whether id is registered.
func (r *Registry) Has(id string) bool {
	_, ok := r.Get(id)
	return ok
}

// Len returns the number of registered templates.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.templates)
}

// List returns the registered ids, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.templates))
	for id := range r.templates {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
