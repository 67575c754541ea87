package executor

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"

	"github.com/zkan/dagster/internal/config"
	"github.com/zkan/dagster/internal/ctxlog"
	"github.com/zkan/dagster/internal/dag"
	"github.com/zkan/dagster/internal/dagtype"
)

// resolveOutputs maps a handler's return value onto the solid's declared
// outputs, running each declared type's check and any requested
// materializations. Nothing-typed outputs carry no value and are skipped.
func (e *Executor) resolveOutputs(
	ctx context.Context,
	node *dag.Node,
	def *config.SolidDefinition,
	raw any,
	evalCtx *hcl.EvalContext,
) (map[string]cty.Value, error) {
	logger := ctxlog.FromContext(ctx)

	valueOutputs := make(map[string]*dagtype.Type)
	for name, out := range def.Outputs {
		t, ok := e.registry.Types.Lookup(out.TypeName)
		if !ok {
			return nil, fmt.Errorf("output %q references undeclared type %q", name, out.TypeName)
		}
		if !t.IsNothing() {
			valueOutputs[name] = t
		}
	}

	for name := range node.StepConfig.Materialize {
		if _, declared := valueOutputs[name]; !declared {
			return nil, fmt.Errorf("materialize block names %q, which is not a value-carrying output of solid %q", name, def.Type)
		}
	}

	if len(valueOutputs) == 0 {
		if raw != nil {
			return nil, fmt.Errorf("handler for step %s returned a value, but solid %q declares no value-carrying outputs", node.ID, def.Type)
		}
		return map[string]cty.Value{}, nil
	}
	if raw == nil {
		return nil, fmt.Errorf("handler for step %s returned nothing, but solid %q declares value-carrying outputs", node.ID, def.Type)
	}

	rawVal, isCty := raw.(cty.Value)
	if !isCty {
		impliedType, err := gocty.ImpliedType(raw)
		if err != nil {
			return nil, fmt.Errorf("handler for step %s returned Go type %T with no cty equivalent: %w", node.ID, raw, err)
		}
		rawVal, err = gocty.ToCtyValue(raw, impliedType)
		if err != nil {
			return nil, fmt.Errorf("converting handler return value for step %s: %w", node.ID, err)
		}
	}

	byName := make(map[string]cty.Value, len(valueOutputs))
	if len(valueOutputs) == 1 {
		for name := range valueOutputs {
			byName[name] = rawVal
		}
	} else {
		if !rawVal.Type().IsObjectType() {
			return nil, fmt.Errorf("solid %q declares %d outputs, so its handler must return an object keyed by output name, got %s",
				def.Type, len(valueOutputs), rawVal.Type().FriendlyName())
		}
		for name := range valueOutputs {
			if !rawVal.Type().HasAttribute(name) {
				return nil, fmt.Errorf("handler for step %s returned no value for declared output %q", node.ID, name)
			}
			byName[name] = rawVal.GetAttr(name)
		}
	}

	results := make(map[string]cty.Value, len(byName))
	for name, val := range byName {
		declared := valueOutputs[name]

		// Gradual native interop: a handler returning a plain Go value on an
		// 'any' output is checked against the type its Go type maps to.
		checkType := declared
		if declared.IsAny() && !isCty && len(valueOutputs) == 1 {
			checkType = e.registry.Types.TypeForGoValue(raw)
		}

		result := checkType.CheckValue(ctx, val)
		logCheckResult(logger, "output", name, checkType, result)
		if !result.Success {
			return nil, fmt.Errorf("type check failed for output %q (type %q): %s", name, checkType.Name, result.Reason)
		}

		if specExpr, wanted := node.StepConfig.Materialize[name]; wanted {
			spec, diags := specExpr.Value(evalCtx)
			if diags.HasErrors() {
				return nil, fmt.Errorf("evaluating materialization spec for output %q: %w", name, diags)
			}
			mat, err := e.materializeOutput(ctx, declared, val, spec)
			if err != nil {
				return nil, fmt.Errorf("materializing output %q: %w", name, err)
			}
			logger.Info("💾 Materialized output", "output", name, "label", mat.Label, "path", mat.Path)
		}

		results[name] = val
	}
	return results, nil
}

// materializeOutput persists one output value, preferring the type's own
// materializer and falling back to the stock JSON file materializer.
func (e *Executor) materializeOutput(ctx context.Context, t *dagtype.Type, val cty.Value, spec cty.Value) (*dagtype.Materialization, error) {
	if t.Materializer != nil {
		return t.Materialize(ctx, val, spec)
	}
	return dagtype.JSONFileMaterializer(ctx, val, spec)
}
