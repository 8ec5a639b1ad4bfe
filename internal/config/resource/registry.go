package resource

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"k8s.io/apimachinery/pkg/runtime/schema"
)

// Registry manages resource definitions
type Registry struct {
	mu          sync.RWMutex
	definitions map[string]*ResourceDefinition                  // key: metadata name
	byGVK       map[schema.GroupVersionKind]*ResourceDefinition // key: GVK
	byAlias     map[string]*ResourceDefinition                  // key: name, plural or alias, lowercase
}

// NewRegistry creates a new resource registry
func NewRegistry() *Registry {
	return &Registry{
		definitions: make(map[string]*ResourceDefinition),
		byGVK:       make(map[schema.GroupVersionKind]*ResourceDefinition),
		byAlias:     make(map[string]*ResourceDefinition),
	}
}

// Register adds or updates a resource definition in the registry
func (r *Registry) Register(def *ResourceDefinition) error {
	if def == nil {
		return fmt.Errorf("definition cannot be nil")
	}

	if err := def.Validate(); err != nil {
		return fmt.Errorf("invalid resource definition %q: %w", def.Metadata.Name, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if old, ok := r.definitions[def.Metadata.Name]; ok {
		for _, name := range old.Names() {
			delete(r.byAlias, strings.ToLower(name))
		}
		delete(r.byGVK, old.GetGroupVersionKind())
	}

	r.definitions[def.Metadata.Name] = def
	r.byGVK[def.GetGroupVersionKind()] = def
	for _, name := range def.Names() {
		r.byAlias[strings.ToLower(name)] = def
	}

	return nil
}

// Lookup finds a definition by name, plural or alias
func (r *Registry) Lookup(name string) (*ResourceDefinition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if def, ok := r.byAlias[strings.ToLower(name)]; ok {
		return def, nil
	}
	return nil, fmt.Errorf("unknown resource %q (known: %s)", name, strings.Join(r.namesLocked(), ", "))
}

// GetByGVK retrieves a resource definition by its GroupVersionKind
func (r *Registry) GetByGVK(gvk schema.GroupVersionKind) *ResourceDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.byGVK[gvk]
}

// Names returns the sorted metadata names of all definitions
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.namesLocked()
}

func (r *Registry) namesLocked() []string {
	result := make([]string, 0, len(r.definitions))
	for name := range r.definitions {
		result = append(result, name)
	}
	sort.Strings(result)
	return result
}

// Count returns the number of registered resource definitions
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.definitions)
}
