// internal/component/registry.go
//
// Component registry (cycle-free).
//
// Each sub-API lives under components/<name> and calls component.Register()
// in an init() function.  The cms registrar mounts every component's
// Routes() at "/cms/<name>" and, before mounting, invokes Init() with the
// shared Env.

package component

import (
	"fmt"
	"sort"
	"sync"

	"github.com/go-chi/chi/v5"
)

// Initializer is called once, before Routes, with process-wide resources.
type Initializer interface {
	Init(Env) error
}

// Component contract.
//
// Routes() returns a router relative to the component prefix, e.g.:
//
//	r := chi.NewRouter()
//	r.Get("/search", c.search)
//	r.Put("/{id}", c.update)
//	return r
type Component interface {
	Name() string
	Routes() chi.Router
	Initializer
}

var (
	mu       sync.RWMutex
	registry = map[string]Component{}
)

// Register is invoked from component init() functions.  Registering the
// same name twice is a programming error.
func Register(c Component) {
	mu.Lock()
	defer mu.Unlock()
	if _, dup := registry[c.Name()]; dup {
		panic(fmt.Sprintf("component: %q registered twice", c.Name()))
	}
	registry[c.Name()] = c
}

// All returns every registered component ordered by name.
func All() []Component {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]Component, 0, len(registry))
	for _, c := range registry {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}
