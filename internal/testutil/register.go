package testutil

import (
	"context"
	"reflect"

	"github.com/zkan/dagster/internal/dagtype"
	"github.com/zkan/dagster/internal/registry"
)

// SimpleModule is a test helper for easily creating a mock module that
// registers a single solid handler and any type hooks a fixture declares.
type SimpleModule struct {
	SolidName string
	Solid     *registry.RegisteredSolid

	Checks        map[string]dagtype.CheckFn
	Loaders       map[string]dagtype.LoaderFn
	Materializers map[string]dagtype.MaterializerFn
}

// Register implements the registry.Module interface.
func (m *SimpleModule) Register(r *registry.Registry) {
	if m.SolidName != "" && m.Solid != nil {
		r.RegisterSolid(m.SolidName, m.Solid)
	}
	for name, fn := range m.Checks {
		r.RegisterCheck(name, fn)
	}
	for name, fn := range m.Loaders {
		r.RegisterLoader(name, fn)
	}
	for name, fn := range m.Materializers {
		r.RegisterMaterializer(name, fn)
	}
}

// NoOpModule registers a single "NoOp" solid handler. It's useful for tests
// that should fail before execution begins but still need valid HCL that can
// pass registry validation.
type NoOpModule struct{}

// Register registers a "NoOp" handler that takes no inputs and does nothing.
func (m *NoOpModule) Register(r *registry.Registry) {
	r.RegisterSolid("NoOp", &registry.RegisteredSolid{
		NewInput:  func() any { return new(struct{}) },
		InputType: reflect.TypeOf(struct{}{}),
		Fn: func(ctx context.Context, input *struct{}) (any, error) {
			return nil, nil
		},
	})
}
