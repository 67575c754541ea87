package registry

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"

	"github.com/zkan/dagster/internal/ctxlog"
	"github.com/zkan/dagster/internal/dagtype"
)

// ValidateRegistry performs a strict parity check between manifests and Go
// code. It checks the presence of compute handlers, the correspondence of
// manifest inputs to Go struct fields, and the compatibility of their types.
// Nothing-typed inputs are ordering-only and must not appear in the Go struct.
func (r *Registry) ValidateRegistry(ctx context.Context) error {
	var errs *multierror.Error
	logger := ctxlog.FromContext(ctx)

	for solidType, def := range r.DefinitionRegistry {
		if def.Lifecycle == nil || def.Lifecycle.OnCompute == "" {
			errs = multierror.Append(errs, fmt.Errorf("solid '%s': manifest declares no compute handler", solidType))
			continue
		}
		handler, ok := r.HandlerRegistry[def.Lifecycle.OnCompute]
		if !ok {
			errs = multierror.Append(errs, fmt.Errorf("solid '%s': compute handler '%s' not registered", solidType, def.Lifecycle.OnCompute))
			continue
		}

		// Split manifest inputs into value-carrying and ordering-only.
		valueInputs := make(map[string]*dagtype.Type)
		for name, in := range def.Inputs {
			t, found := r.Types.Lookup(in.TypeName)
			if !found {
				errs = multierror.Append(errs, fmt.Errorf("solid '%s': input '%s' references undeclared type %q", solidType, name, in.TypeName))
				continue
			}
			if !t.IsNothing() {
				valueInputs[name] = t
			}
		}

		if handler.InputType == nil {
			if len(valueInputs) > 0 {
				errs = multierror.Append(errs, fmt.Errorf("solid '%s': manifest declares inputs, but Go handler has no input struct", solidType))
			}
			continue
		}

		goInputs := make(map[string]reflect.StructField)
		inputType := handler.InputType
		for i := 0; i < inputType.NumField(); i++ {
			field := inputType.Field(i)
			if !field.IsExported() {
				continue
			}
			tag := field.Tag.Get("hcl")
			tagName := strings.Split(tag, ",")[0]
			if tagName != "" && tagName != "-" {
				goInputs[tagName] = field
			}
		}

		// Presence mismatches in both directions.
		for name := range goInputs {
			if _, ok := valueInputs[name]; !ok {
				if in, declared := def.Inputs[name]; declared && in.TypeName == dagtype.NothingTypeName {
					errs = multierror.Append(errs, fmt.Errorf("solid '%s': input '%s' is ordering-only ('nothing') and must not have a Go struct field", solidType, name))
					continue
				}
				errs = multierror.Append(errs, fmt.Errorf("solid '%s': Go struct has field for input '%s' which is not declared in manifest", solidType, name))
			}
		}
		for name := range valueInputs {
			if _, ok := goInputs[name]; !ok {
				errs = multierror.Append(errs, fmt.Errorf("solid '%s': manifest declares input '%s' which is not found in Go struct", solidType, name))
			}
		}

		// Type mismatches where both sides constrain the type.
		for name, declared := range valueInputs {
			goField, ok := goInputs[name]
			if !ok {
				continue // Already handled by presence check.
			}

			schema := declared.ConfigSchema
			if schema == cty.NilType || schema.Equals(cty.DynamicPseudoType) {
				logger.Debug("Input has unconstrained schema, skipping static type check.", "solid", solidType, "input", name, "type", declared.Name)
				continue
			}

			goFieldType, err := gocty.ImpliedType(reflect.Zero(goField.Type).Interface())
			if err != nil {
				errs = multierror.Append(errs, fmt.Errorf("solid '%s', input '%s': could not imply cty type from Go field type %s: %w", solidType, name, goField.Type, err))
				continue
			}

			if !schema.Equals(goFieldType) {
				errs = multierror.Append(errs, fmt.Errorf("solid '%s', input '%s': type mismatch. manifest type %q requires '%s' but Go struct field '%s' provides '%s'",
					solidType, name, declared.Name, schema.FriendlyName(), goField.Name, goFieldType.FriendlyName()))
			}
		}
	}

	return errs.ErrorOrNil()
}
