package executor

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"

	"github.com/zkan/dagster/internal/config"
	"github.com/zkan/dagster/internal/ctxlog"
	"github.com/zkan/dagster/internal/dagtype"
)

// decodeInputs resolves, hydrates, and type-checks every declared input of a
// step, then populates the handler's input struct.
//
// Each value-carrying input takes one of three paths:
//   - a literal argument is a configuration value: it is hydrated through
//     the declared type (schema validation plus loader);
//   - an argument referencing upstream state is a runtime value: it is
//     evaluated and checked, but never hydrated;
//   - an absent argument falls back to the manifest default, hydrated like
//     any other configuration value.
//
// Nothing-typed inputs carry no value and are skipped entirely.
func (e *Executor) decodeInputs(
	ctx context.Context,
	inputStruct any,
	def *config.SolidDefinition,
	args map[string]hcl.Expression,
	evalCtx *hcl.EvalContext,
) error {
	logger := ctxlog.FromContext(ctx)

	var structVal reflect.Value
	if inputStruct != nil {
		structVal = reflect.ValueOf(inputStruct)
		if structVal.Kind() != reflect.Ptr || structVal.IsNil() {
			return fmt.Errorf("input struct must be a non-nil pointer")
		}
		structVal = structVal.Elem()
	}

	for name, inputDef := range def.Inputs {
		declared, ok := e.registry.Types.Lookup(inputDef.TypeName)
		if !ok {
			return fmt.Errorf("input %q references undeclared type %q", name, inputDef.TypeName)
		}
		if declared.IsNothing() {
			if _, provided := args[name]; provided {
				return fmt.Errorf("input %q is ordering-only ('nothing') and cannot be given a value", name)
			}
			continue
		}

		val, err := e.resolveInputValue(ctx, name, inputDef, declared, args, evalCtx)
		if err != nil {
			return err
		}

		result := declared.CheckValue(ctx, val)
		logCheckResult(logger, "input", name, declared, result)
		if !result.Success {
			return fmt.Errorf("type check failed for input %q (type %q): %s", name, declared.Name, result.Reason)
		}

		if err := setStructField(structVal, name, val); err != nil {
			return fmt.Errorf("input %q: %w", name, err)
		}
	}
	return nil
}

// resolveInputValue produces the final runtime value of one input.
func (e *Executor) resolveInputValue(
	ctx context.Context,
	name string,
	inputDef *config.InputDefinition,
	declared *dagtype.Type,
	args map[string]hcl.Expression,
	evalCtx *hcl.EvalContext,
) (cty.Value, error) {
	if expr, provided := args[name]; provided {
		val, diags := expr.Value(evalCtx)
		if diags.HasErrors() {
			return cty.NilVal, fmt.Errorf("evaluating argument %q: %w", name, diags)
		}
		// A literal expression is a configuration value and goes through
		// hydration; anything referencing upstream state is already runtime.
		if len(expr.Variables()) == 0 {
			hydrated, err := declared.Hydrate(ctx, val)
			if err != nil {
				return cty.NilVal, fmt.Errorf("hydrating argument %q: %w", name, err)
			}
			return hydrated, nil
		}
		return val, nil
	}

	if inputDef.Default != nil {
		hydrated, err := declared.Hydrate(ctx, *inputDef.Default)
		if err != nil {
			return cty.NilVal, fmt.Errorf("hydrating default for %q: %w", name, err)
		}
		return hydrated, nil
	}

	return cty.NilVal, fmt.Errorf("missing required argument %q", name)
}

// setStructField writes a cty value into the struct field tagged with the
// given input name.
func setStructField(structVal reflect.Value, name string, val cty.Value) error {
	if !structVal.IsValid() {
		return fmt.Errorf("handler has no input struct to receive value")
	}
	structType := structVal.Type()
	for i := 0; i < structType.NumField(); i++ {
		field := structType.Field(i)
		tagName := strings.Split(field.Tag.Get("hcl"), ",")[0]
		if tagName != name {
			continue
		}
		fieldVal := structVal.Field(i)
		if !fieldVal.CanSet() {
			return fmt.Errorf("field %s is not settable", field.Name)
		}
		if err := gocty.FromCtyValue(val, fieldVal.Addr().Interface()); err != nil {
			return fmt.Errorf("converting value to Go field %s: %w", field.Name, err)
		}
		return nil
	}
	return fmt.Errorf("no struct field tagged for input")
}

// logCheckResult surfaces a check verdict and its structured metadata.
func logCheckResult(logger *slog.Logger, boundary, name string, t *dagtype.Type, result dagtype.CheckResult) {
	attrs := []any{boundary, name, "type", t.Name, "success", result.Success}
	for _, md := range result.Metadata {
		attrs = append(attrs, "meta."+md.Label, md.Value.GoString())
	}
	if result.Success {
		logger.Debug("Type check passed.", attrs...)
	} else {
		logger.Warn("Type check failed.", append(attrs, "reason", result.Reason)...)
	}
}
