package backend

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrUnknownBackend is returned by Catalog.Get for unregistered names.
var ErrUnknownBackend = errors.New("unknown backend")

// Catalog maps backend names to backends.
type Catalog struct {
	mu       sync.RWMutex
	backends map[string]Backend
}

// NewCatalog creates a catalog holding the given backends.
func NewCatalog(backends ...Backend) *Catalog {
	c := &Catalog{backends: make(map[string]Backend)}
	for _, b := range backends {
		c.Register(b)
	}
	return c
}

// Register adds b. It panics if the name is taken, like duplicate handler
// registration in the primitive registry.
func (c *Catalog) Register(b Backend) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.backends[b.Name()]; exists {
		panic(fmt.Sprintf("backend %q is already registered", b.Name()))
	}
	c.backends[b.Name()] = b
}

// Get returns the backend registered as name.
func (c *Catalog) Get(name string) (Backend, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	b, ok := c.backends[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, name)
	}
	return b, nil
}

// Names returns the registered names in ascending order.
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.backends))
	for name := range c.backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
