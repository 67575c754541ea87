// Package emit provides a solid that produces a constant value, useful as a
// pipeline source and in tests.
package emit

import (
	"context"
	"reflect"

	"github.com/zkan/dagster/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Input defines the arguments for the emit solid.
type Input struct {
	Text string `hcl:"text"`
}

// OnComputeEmit is the handler for the 'emit' solid's on_compute event.
func OnComputeEmit(ctx context.Context, input *Input) (any, error) {
	return input.Text, nil
}

// Register registers the handler with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterSolid("OnComputeEmit", &registry.RegisteredSolid{
		NewInput:  func() any { return new(Input) },
		InputType: reflect.TypeOf(Input{}),
		Fn:        OnComputeEmit,
	})
}
