package executor

import (
	"context"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"

	"github.com/zkan/dagster/internal/ctxlog"
	"github.com/zkan/dagster/internal/dag"
)

// buildEvalContext creates the HCL evaluation context for a node. Only the
// outputs of the node's direct, completed dependencies are visible: anything
// else would be an undeclared dependency that execution order cannot protect.
func (e *Executor) buildEvalContext(ctx context.Context, node *dag.Node) *hcl.EvalContext {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Building evaluation context.", "node", node.ID)
	vars := make(map[string]cty.Value)

	stepOutputsBySolid := make(map[string]map[string]cty.Value)

	for _, depNode := range node.Deps {
		if depNode.GetState() != dag.Done {
			continue
		}
		outputs, ok := e.store.Get(depNode.ID)
		if !ok || len(outputs) == 0 {
			continue
		}
		solidType := depNode.StepConfig.SolidType
		if _, ok := stepOutputsBySolid[solidType]; !ok {
			stepOutputsBySolid[solidType] = make(map[string]cty.Value)
		}
		stepOutputsBySolid[solidType][depNode.Name] = cty.ObjectVal(map[string]cty.Value{
			"output": cty.ObjectVal(outputs),
		})
	}

	finalStepOutputs := make(map[string]cty.Value)
	for solidType, instancesMap := range stepOutputsBySolid {
		finalStepOutputs[solidType] = cty.ObjectVal(instancesMap)
	}

	vars["step"] = cty.ObjectVal(finalStepOutputs)
	logger.Debug("Finished building evaluation context.", "node", node.ID, "vars_count", len(vars))
	return &hcl.EvalContext{Variables: vars}
}
