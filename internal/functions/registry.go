package functions

import (
	"slices"
	"strings"
	"sync"

	"github.com/goliatone/go-templatefn/pkg/interfaces"
)

// Registry is the thread-safe in-memory implementation of interfaces.FunctionRegistry.
type Registry struct {
	mu          sync.RWMutex
	definitions map[string]interfaces.FunctionDefinition
	validator   DefinitionValidator
	listeners   []func(name string)
}

// DefinitionValidator abstracts definition validation so callers can customise behaviour in tests.
type DefinitionValidator interface {
	ValidateDefinition(def interfaces.FunctionDefinition) error
}

// NewRegistry constructs a registry using the supplied validator. A nil validator
// accepts every definition with a name.
func NewRegistry(validator DefinitionValidator) *Registry {
	return &Registry{
		definitions: make(map[string]interfaces.FunctionDefinition),
		validator:   validator,
	}
}

// NormalizeName returns the canonical registry key for a function name.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Register stores def under its normalized name if it validates and the name is free.
func (r *Registry) Register(def interfaces.FunctionDefinition) error {
	def.Name = NormalizeName(def.Name)
	if def.Name == "" {
		return ErrInvalidDefinition
	}

	if r.validator != nil {
		if err := r.validator.ValidateDefinition(def); err != nil {
			return err
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.definitions[def.Name]; exists {
		return ErrDuplicateDefinition
	}
	r.definitions[def.Name] = def
	return nil
}

// Replace stores def, overwriting any definition with the same name.
func (r *Registry) Replace(def interfaces.FunctionDefinition) error {
	def.Name = NormalizeName(def.Name)
	if def.Name == "" {
		return ErrInvalidDefinition
	}
	if r.validator != nil {
		if err := r.validator.ValidateDefinition(def); err != nil {
			return err
		}
	}

	r.mu.Lock()
	_, existed := r.definitions[def.Name]
	r.definitions[def.Name] = def
	r.mu.Unlock()

	if existed {
		r.notify(def.Name)
	}
	return nil
}

// Get returns the stored definition.
func (r *Registry) Get(name string) (interfaces.FunctionDefinition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	def, ok := r.definitions[NormalizeName(name)]
	return def, ok
}

// List returns all registered definitions in name order.
func (r *Registry) List() []interfaces.FunctionDefinition {
	r.mu.RLock()
	result := make([]interfaces.FunctionDefinition, 0, len(r.definitions))
	for _, def := range r.definitions {
		result = append(result, def)
	}
	r.mu.RUnlock()

	slices.SortFunc(result, func(a, b interfaces.FunctionDefinition) int {
		return strings.Compare(a.Name, b.Name)
	})
	return result
}

// Remove deletes the definition if it exists.
func (r *Registry) Remove(name string) {
	key := NormalizeName(name)
	r.mu.Lock()
	_, existed := r.definitions[key]
	delete(r.definitions, key)
	r.mu.Unlock()

	if existed {
		r.notify(key)
	}
}

// OnChange registers fn to run after a definition is replaced or removed.
func (r *Registry) OnChange(fn func(name string)) {
	if fn == nil {
		return
	}
	r.mu.Lock()
	r.listeners = append(r.listeners, fn)
	r.mu.Unlock()
}

func (r *Registry) notify(name string) {
	r.mu.RLock()
	listeners := slices.Clone(r.listeners)
	r.mu.RUnlock()
	for _, fn := range listeners {
		fn(name)
	}
}

var _ interfaces.FunctionRegistry = (*Registry)(nil)
