package backend

import (
	"errors"
	"sync"

	"github.com/mturchin/tfjs-converter/internal/locator"
)

// ErrNotFound indicates no backend is registered for a locator kind.
var ErrNotFound = errors.New("backend: no backend registered for locator kind")

// Registry maps locator kinds to backends.
type Registry struct {
	backends map[locator.Kind]GraphBackend
	mu       sync.RWMutex
}

// NewRegistry creates an empty backend registry.
func NewRegistry() *Registry {
	return &Registry{
		backends: make(map[locator.Kind]GraphBackend),
	}
}

// Register adds a backend under its own kind.
func (r *Registry) Register(b GraphBackend) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.backends[b.Kind()] = b
}

// RegisterFor adds a backend under an explicit kind, for backends that serve
// more than one locator shape.
func (r *Registry) RegisterFor(kind locator.Kind, b GraphBackend) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.backends[kind] = b
}

// Get retrieves the backend for a kind.
func (r *Registry) Get(kind locator.Kind) (GraphBackend, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.backends[kind]
	return b, ok
}

// Kinds returns all registered kinds.
func (r *Registry) Kinds() []locator.Kind {
	r.mu.RLock()
	defer r.mu.RUnlock()

	kinds := make([]locator.Kind, 0, len(r.backends))
	for k := range r.backends {
		kinds = append(kinds, k)
	}
	return kinds
}
