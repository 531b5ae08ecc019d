package gateway

import (
	"sync"

	"github.com/rs/zerolog/log"
)

// Registry is the catalogue of registered tools. It is read-mostly: lookups
// take a read lock, registration takes the write lock so a reader can never
// observe a half-populated entry. Listing preserves insertion order.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]*ToolDescriptor
	order []string
}

// NewRegistry creates an empty tool registry.
func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]*ToolDescriptor),
	}
}

// Register adds a descriptor to the registry. Registering a name that
// already exists fails; descriptors are never replaced in place.
func (r *Registry) Register(d ToolDescriptor) error {
	if err := d.Validate(); err != nil {
		return NewError(FailureValidation, "invalid tool descriptor: %v", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[d.Name]; exists {
		return NewError(FailureDuplicateTool, "tool %q is already registered", d.Name)
	}

	r.tools[d.Name] = &d
	r.order = append(r.order, d.Name)

	log.Info().Str("tool", d.Name).Msg("Tool registered")

	return nil
}

// Deregister removes the descriptor registered under name. Used when a
// plugin manifest is updated or removed at runtime.
func (r *Registry) Deregister(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[name]; !exists {
		return NewError(FailureToolNotFound, "tool %q not found", name)
	}

	delete(r.tools, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}

	log.Info().Str("tool", name).Msg("Tool deregistered")

	return nil
}

// Get returns the descriptor registered under name.
func (r *Registry) Get(name string) (*ToolDescriptor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, exists := r.tools[name]
	if !exists {
		return nil, NewError(FailureToolNotFound, "tool %q not found", name)
	}
	return d, nil
}

// List returns all descriptors in registration order. The order is stable
// across calls as long as no registration happens in between.
func (r *Registry) List() []*ToolDescriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*ToolDescriptor, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.tools[name])
	}
	return out
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.tools)
}
