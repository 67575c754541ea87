// Package print provides a solid that writes a value to stdout. It declares
// a nothing-typed output so downstream steps can order themselves after the
// print without consuming a value.
package print

import (
	"context"
	"fmt"
	"reflect"

	"github.com/zkan/dagster/internal/ctxlog"
	"github.com/zkan/dagster/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Input defines the arguments for the print solid.
type Input struct {
	Value string `hcl:"value"`
}

// OnComputePrint is the handler for the 'print' solid's on_compute event.
func OnComputePrint(ctx context.Context, input *Input) (any, error) {
	ctxlog.FromContext(ctx).Info("Printing value")
	fmt.Printf("      %s\n", input.Value)
	return nil, nil
}

// Register registers the handler with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterSolid("OnComputePrint", &registry.RegisteredSolid{
		NewInput:  func() any { return new(Input) },
		InputType: reflect.TypeOf(Input{}),
		Fn:        OnComputePrint,
	})
}
