package hcl

import (
	"context"

	"github.com/hashicorp/hcl/v2"

	"github.com/zkan/dagster/internal/config"
	"github.com/zkan/dagster/internal/schema"
)

// translateStep converts the HCL-specific step schema into the agnostic model.
func (l *Loader) translateStep(s *schema.Step) *config.Step {
	return &config.Step{
		SolidType:   s.SolidType,
		Name:        s.Name,
		Arguments:   extractBodyAttributes(stepArgsBody(s.Arguments)),
		Materialize: extractBodyAttributes(materializeBody(s.Materialize)),
		DependsOn:   s.DependsOn,
	}
}

// translateSolidDefinition converts the HCL-specific solid schema into the agnostic model.
func (l *Loader) translateSolidDefinition(ctx context.Context, s *schema.SolidDefinition) (*config.SolidDefinition, error) {
	def := &config.SolidDefinition{
		Type:        s.Type,
		Description: s.Description,
		Inputs:      make(map[string]*config.InputDefinition),
		Outputs:     make(map[string]*config.OutputDefinition),
	}
	if s.Lifecycle != nil {
		def.Lifecycle = &config.Lifecycle{OnCompute: s.Lifecycle.OnCompute}
	}
	for _, in := range s.Inputs {
		// A default is only meaningful if it is present and non-null; only
		// then does the input become optional.
		isOptional := in.Default != nil && !in.Default.IsNull()
		def.Inputs[in.Name] = &config.InputDefinition{
			Name:        in.Name,
			TypeName:    in.Type,
			Description: in.Description,
			Default:     in.Default,
			Optional:    isOptional,
		}
	}
	for _, out := range s.Outputs {
		def.Outputs[out.Name] = &config.OutputDefinition{
			Name:        out.Name,
			TypeName:    out.Type,
			Description: out.Description,
		}
	}
	return def, nil
}

// translateTypeDefinition converts the HCL-specific type schema into the agnostic model.
func (l *Loader) translateTypeDefinition(ctx context.Context, s *schema.TypeDefinition) (*config.TypeDefinition, error) {
	base, err := typeExprToCtyType(ctx, s.Base)
	if err != nil {
		return nil, err
	}
	def := &config.TypeDefinition{
		Name:        s.Name,
		Description: s.Description,
		Base:        base,
	}
	if s.Lifecycle != nil {
		def.Lifecycle = &config.TypeLifecycle{
			Check:        s.Lifecycle.Check,
			Loader:       s.Lifecycle.Loader,
			Materializer: s.Lifecycle.Materializer,
		}
	}
	return def, nil
}

func stepArgsBody(b *schema.StepArgs) hcl.Body {
	if b == nil {
		return nil
	}
	return b.Body
}

func materializeBody(b *schema.MaterializeBlock) hcl.Body {
	if b == nil {
		return nil
	}
	return b.Body
}

// extractBodyAttributes flattens a block body into a name -> expression map,
// leaving evaluation to the executor.
func extractBodyAttributes(body hcl.Body) map[string]hcl.Expression {
	if body == nil {
		return nil
	}
	attrs, _ := body.JustAttributes()
	if len(attrs) == 0 {
		return nil
	}
	exprMap := make(map[string]hcl.Expression, len(attrs))
	for name, attr := range attrs {
		exprMap[name] = attr.Expr
	}
	return exprMap
}
