package dagtype

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/zclconf/go-cty/cty"
)

// Registry holds the declared types for a single engine instance, plus the
// interop table mapping native Go types onto declared types.
type Registry struct {
	mu      sync.RWMutex
	types   map[string]*Type
	goTypes map[reflect.Type]string
}

// NewRegistry creates a registry pre-populated with the builtin types and
// their native Go mappings.
func NewRegistry() *Registry {
	r := &Registry{
		types:   make(map[string]*Type),
		goTypes: make(map[reflect.Type]string),
	}
	for _, t := range []*Type{Any(), Nothing(), String(), Number(), Bool()} {
		r.types[t.Name] = t
	}
	r.goTypes[reflect.TypeOf("")] = StringTypeName
	r.goTypes[reflect.TypeOf(int(0))] = NumberTypeName
	r.goTypes[reflect.TypeOf(int64(0))] = NumberTypeName
	r.goTypes[reflect.TypeOf(float64(0))] = NumberTypeName
	r.goTypes[reflect.TypeOf(false)] = BoolTypeName
	return r
}

// Define registers a declared type. Names are unique per registry; the
// builtin names are reserved and cannot be redefined.
func (r *Registry) Define(t *Type) error {
	if t == nil || t.Name == "" {
		return fmt.Errorf("type must have a name")
	}
	if t.Loader != nil && t.ConfigSchema == cty.NilType {
		return fmt.Errorf("type %q declares a loader but no config schema", t.Name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.types[t.Name]; exists {
		return fmt.Errorf("type %q already defined", t.Name)
	}
	r.types[t.Name] = t
	return nil
}

// Lookup returns the declared type with the given name.
func (r *Registry) Lookup(name string) (*Type, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.types[name]
	return t, ok
}

// Len returns the number of declared types, builtins included.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.types)
}

// MapGoType records that native values of goType belong to the declared type
// with the given name. The declared type must already exist, and a Go type
// can only map to one declared type.
func (r *Registry) MapGoType(goType reflect.Type, typeName string) error {
	if goType == nil {
		return fmt.Errorf("go type must not be nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.types[typeName]; !ok {
		return fmt.Errorf("cannot map %s to undeclared type %q", goType, typeName)
	}
	if existing, ok := r.goTypes[goType]; ok {
		return fmt.Errorf("go type %s is already mapped to %q", goType, existing)
	}
	r.goTypes[goType] = typeName
	return nil
}

// TypeForGoValue resolves the declared type for a native Go value via the
// interop table. Unmapped types fall back to Any, keeping the system gradual:
// an unannotated value passes through unchecked rather than failing.
func (r *Registry) TypeForGoValue(v any) *Type {
	if v == nil {
		return r.mustLookup(AnyTypeName)
	}
	r.mu.RLock()
	name, ok := r.goTypes[reflect.TypeOf(v)]
	r.mu.RUnlock()
	if !ok {
		return r.mustLookup(AnyTypeName)
	}
	return r.mustLookup(name)
}

func (r *Registry) mustLookup(name string) *Type {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.types[name]
	if !ok {
		panic(fmt.Sprintf("builtin type %q missing from registry", name))
	}
	return t
}
