package core

import (
	"fmt"
	"sort"
	"sync"
)

// EntityDefinition describes an importable entity kind.
type EntityDefinition struct {
	Kind   EntityKind
	Label  string
	Fields []FieldSpec

	// Build assembles a draft from the parsed values of a valid row.
	Build func(values FieldValues) EntityDraft
}

// Catalog returns the field names in declaration order.
func (d EntityDefinition) Catalog() []string {
	names := make([]string, len(d.Fields))
	for i, f := range d.Fields {
		names[i] = f.Name
	}
	return names
}

// RequiredFields returns the names of required fields in declaration order.
func (d EntityDefinition) RequiredFields() []string {
	var names []string
	for _, f := range d.Fields {
		if f.Required {
			names = append(names, f.Name)
		}
	}
	return names
}

var (
	registry   = make(map[EntityKind]EntityDefinition)
	registryMu sync.RWMutex
)

// Register adds an entity definition to the registry.
// Panics if the kind is already registered.
func Register(def EntityDefinition) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := registry[def.Kind]; exists {
		panic(fmt.Sprintf("entity kind already registered: %s", def.Kind))
	}
	if def.Build == nil {
		panic(fmt.Sprintf("entity kind %s has no Build func", def.Kind))
	}

	registry[def.Kind] = def
}

// Get returns the definition for kind.
// Returns false if not found.
func Get(kind EntityKind) (EntityDefinition, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	def, ok := registry[kind]
	return def, ok
}

// Lookup is Get with an ErrUnknownKind error for missing kinds.
func Lookup(kind EntityKind) (EntityDefinition, error) {
	def, ok := Get(kind)
	if !ok {
		return EntityDefinition{}, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return def, nil
}

// All returns all registered definitions sorted by kind.
func All() []EntityDefinition {
	registryMu.RLock()
	defer registryMu.RUnlock()

	result := make([]EntityDefinition, 0, len(registry))
	for _, def := range registry {
		result = append(result, def)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Kind < result[j].Kind
	})

	return result
}

// Kinds returns the registered kinds in sorted order.
func Kinds() []EntityKind {
	defs := All()
	kinds := make([]EntityKind, len(defs))
	for i, d := range defs {
		kinds[i] = d.Kind
	}
	return kinds
}
