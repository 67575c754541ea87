package dag

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"

	"github.com/zkan/dagster/internal/ctxlog"
	"github.com/zkan/dagster/internal/registry"
)

// linkNodes performs the second pass, establishing dependency links from
// both explicit depends_on entries and expression traversals.
func linkNodes(ctx context.Context, graph *Graph, r *registry.Registry) error {
	for _, node := range graph.Nodes {
		if err := linkExplicitDeps(ctx, node, node.StepConfig.DependsOn, graph); err != nil {
			return err
		}

		var expressions []hcl.Expression
		for _, expr := range node.StepConfig.Arguments {
			expressions = append(expressions, expr)
		}
		for _, expr := range node.StepConfig.Materialize {
			expressions = append(expressions, expr)
		}
		for _, expr := range expressions {
			if err := linkImplicitDeps(ctx, node, expr, graph, r); err != nil {
				return err
			}
		}
	}
	return nil
}

// linkExplicitDeps resolves dependencies from a `depends_on` list. These are
// ordering-only edges: no value flows along them.
func linkExplicitDeps(ctx context.Context, node *Node, dependsOn []string, graph *Graph) error {
	logger := ctxlog.FromContext(ctx)
	for _, depAddr := range dependsOn {
		depID := "step." + depAddr
		depNode, found := graph.Nodes[depID]
		if !found {
			return fmt.Errorf("node '%s' depends on non-existent identifier '%s'", node.ID, depAddr)
		}
		if depNode == node {
			return fmt.Errorf("node '%s' cannot depend on itself", node.ID)
		}

		if _, exists := node.Deps[depNode.ID]; !exists {
			logger.Debug("Linking explicit dependency.", "from", node.ID, "to", depNode.ID)
			node.Deps[depNode.ID] = depNode
			depNode.Dependents[node.ID] = node
		}
	}
	return nil
}

// linkImplicitDeps parses an expression for variable traversals to create
// dependency links. References look like step.<solid_type>.<name>.output.<out>.
func linkImplicitDeps(ctx context.Context, node *Node, expr hcl.Expression, graph *Graph, r *registry.Registry) error {
	logger := ctxlog.FromContext(ctx)
	for _, traversal := range expr.Variables() {
		if len(traversal) < 3 || traversal.RootName() != "step" {
			continue
		}
		typeAttr, typeOk := traversal[1].(hcl.TraverseAttr)
		nameAttr, nameOk := traversal[2].(hcl.TraverseAttr)
		if !typeOk || !nameOk {
			continue
		}
		depID := fmt.Sprintf("step.%s.%s", typeAttr.Name, nameAttr.Name)
		depNode, ok := graph.Nodes[depID]
		if !ok {
			return fmt.Errorf("implicit dependency error in '%s': referenced step '%s' does not exist", node.ID, depID)
		}
		if depNode == node {
			return fmt.Errorf("node '%s' cannot reference its own outputs", node.ID)
		}

		if err := validateOutputReference(traversal, depNode, r); err != nil {
			return err
		}

		if _, exists := node.Deps[depID]; !exists {
			logger.Debug("Linking implicit dependency.", "from", node.ID, "to", depID)
			node.Deps[depID] = depNode
			depNode.Dependents[node.ID] = node
		}
	}
	return nil
}

// validateOutputReference checks a reference to an upstream output against
// the solid's manifest. Only declared, value-carrying outputs may be read.
func validateOutputReference(traversal hcl.Traversal, depNode *Node, r *registry.Registry) error {
	if len(traversal) < 5 {
		return nil // A bare step reference is ordering-only, nothing to validate.
	}
	outputKeyword, ok := traversal[3].(hcl.TraverseAttr)
	if !ok || outputKeyword.Name != "output" {
		return nil
	}
	outputNameAttr, ok := traversal[4].(hcl.TraverseAttr)
	if !ok {
		return nil
	}
	outputName := outputNameAttr.Name

	solidDef, ok := r.DefinitionRegistry[depNode.StepConfig.SolidType]
	if !ok {
		return fmt.Errorf("internal error: could not find definition for solid type %s", depNode.StepConfig.SolidType)
	}

	out, declared := solidDef.Outputs[outputName]
	if !declared {
		return fmt.Errorf("reference to undeclared output %q on step %q", outputName, depNode.ID)
	}
	if out.TypeName == "nothing" {
		return fmt.Errorf("output %q on step %q is ordering-only ('nothing') and carries no value", outputName, depNode.ID)
	}
	return nil
}
