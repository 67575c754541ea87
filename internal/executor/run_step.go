package executor

import (
	"context"
	"fmt"
	"reflect"

	"github.com/zkan/dagster/internal/ctxlog"
	"github.com/zkan/dagster/internal/dag"
)

// executeStepNode runs one step: inputs are resolved and checked, the
// registered compute handler is invoked, and outputs are checked, optionally
// materialized, and recorded for downstream steps.
func (e *Executor) executeStepNode(ctx context.Context, node *dag.Node) error {
	logger := ctxlog.FromContext(ctx).With("step", node.ID)
	ctx = ctxlog.WithLogger(ctx, logger)
	logger.Info("▶️ Starting step")

	solidDef, ok := e.registry.DefinitionRegistry[node.StepConfig.SolidType]
	if !ok {
		return fmt.Errorf("unknown solid type '%s'", node.StepConfig.SolidType)
	}
	handlerName := solidDef.Lifecycle.OnCompute
	handler, ok := e.registry.HandlerRegistry[handlerName]
	if !ok {
		return fmt.Errorf("handler '%s' not registered", handlerName)
	}

	logger.Debug("Resolving step inputs.")
	evalCtx := e.buildEvalContext(ctx, node)
	var inputStruct any
	if handler.NewInput != nil {
		inputStruct = handler.NewInput()
	}
	if err := e.decodeInputs(ctx, inputStruct, solidDef, node.StepConfig.Arguments, evalCtx); err != nil {
		return err
	}

	logger.Debug("Calling compute handler.", "handler", handlerName)
	handlerFunc := reflect.ValueOf(handler.Fn)
	callArgs := []reflect.Value{reflect.ValueOf(ctx)}
	if inputStruct == nil {
		callArgs = append(callArgs, reflect.Zero(handlerFunc.Type().In(1)))
	} else {
		callArgs = append(callArgs, reflect.ValueOf(inputStruct))
	}

	results := handlerFunc.Call(callArgs)
	rawOutput, errResult := results[0].Interface(), results[1].Interface()
	if errResult != nil {
		return errResult.(error)
	}

	outputs, err := e.resolveOutputs(ctx, node, solidDef, rawOutput, evalCtx)
	if err != nil {
		return err
	}

	node.Outputs = outputs
	e.store.Record(node.ID, outputs)

	logger.Info("✅ Finished step")
	return nil
}
