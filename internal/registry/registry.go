package registry

import (
	"fmt"
	"log/slog"
	"reflect"

	"github.com/zkan/dagster/internal/config"
	"github.com/zkan/dagster/internal/dagtype"
)

// Module is the interface that all compiled-in solid packages implement to
// be registered.
type Module interface {
	Register(r *Registry)
}

// RegisteredSolid holds the compiled Go parts of a solid's compute function.
type RegisteredSolid struct {
	// NewInput returns a fresh pointer to the handler's input struct, or nil
	// for solids that take no arguments.
	NewInput func() any
	// InputType is the struct type behind NewInput, used for manifest parity checks.
	InputType reflect.Type
	// Fn is the compute function: func(ctx, *Input) (any, error).
	Fn any
}

// Registry holds all registered handlers, hooks, and definitions for a
// single application instance.
type Registry struct {
	HandlerRegistry      map[string]*RegisteredSolid
	CheckRegistry        map[string]dagtype.CheckFn
	LoaderRegistry       map[string]dagtype.LoaderFn
	MaterializerRegistry map[string]dagtype.MaterializerFn
	DefinitionRegistry   map[string]*config.SolidDefinition
	Types                *dagtype.Registry
}

// New creates and initializes a new Registry instance.
func New() *Registry {
	return &Registry{
		HandlerRegistry:      make(map[string]*RegisteredSolid),
		CheckRegistry:        make(map[string]dagtype.CheckFn),
		LoaderRegistry:       make(map[string]dagtype.LoaderFn),
		MaterializerRegistry: make(map[string]dagtype.MaterializerFn),
		DefinitionRegistry:   make(map[string]*config.SolidDefinition),
		Types:                dagtype.NewRegistry(),
	}
}

// RegisterSolid registers a Go function for a solid's compute event.
func (r *Registry) RegisterSolid(name string, handler *RegisteredSolid) {
	if _, exists := r.HandlerRegistry[name]; exists {
		panic(fmt.Sprintf("solid handler with name '%s' already registered", name))
	}
	slog.Debug("Registering solid handler.", "name", name)
	r.HandlerRegistry[name] = handler
}

// RegisterCheck registers a type check predicate under a handler name.
func (r *Registry) RegisterCheck(name string, fn dagtype.CheckFn) {
	if _, exists := r.CheckRegistry[name]; exists {
		panic(fmt.Sprintf("check handler with name '%s' already registered", name))
	}
	slog.Debug("Registering type check handler.", "name", name)
	r.CheckRegistry[name] = fn
}

// RegisterLoader registers a config hydration function under a handler name.
func (r *Registry) RegisterLoader(name string, fn dagtype.LoaderFn) {
	if _, exists := r.LoaderRegistry[name]; exists {
		panic(fmt.Sprintf("loader handler with name '%s' already registered", name))
	}
	slog.Debug("Registering type loader handler.", "name", name)
	r.LoaderRegistry[name] = fn
}

// RegisterMaterializer registers an output materializer under a handler name.
func (r *Registry) RegisterMaterializer(name string, fn dagtype.MaterializerFn) {
	if _, exists := r.MaterializerRegistry[name]; exists {
		panic(fmt.Sprintf("materializer handler with name '%s' already registered", name))
	}
	slog.Debug("Registering type materializer handler.", "name", name)
	r.MaterializerRegistry[name] = fn
}
