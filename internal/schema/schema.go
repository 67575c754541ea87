// Package schema declares the HCL block structures for manifests and
// pipeline files, as decoded by gohcl. The loader translates these into the
// format-agnostic config model.
package schema

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
)

// --- Pipeline structures ---

// StepArgs represents the content of the 'arguments' block within a step.
type StepArgs struct {
	Body hcl.Body `hcl:",remain"`
}

// MaterializeBlock represents the content of the 'materialize' block within
// a step, mapping output names to materialization specs.
type MaterializeBlock struct {
	Body hcl.Body `hcl:",remain"`
}

// Step represents a `step` block from a pipeline file. It is a runnable
// instance of a defined solid.
type Step struct {
	SolidType   string            `hcl:"solid_type,label"`
	Name        string            `hcl:"instance_name,label"`
	Arguments   *StepArgs         `hcl:"arguments,block"`
	Materialize *MaterializeBlock `hcl:"materialize,block"`
	DependsOn   []string          `hcl:"depends_on,optional"`
}

// Schedule represents a `schedule` block: a named cron trigger for a
// pipeline file.
type Schedule struct {
	Name            string            `hcl:"name,label"`
	CronSchedule    string            `hcl:"cron_schedule"`
	Pipeline        string            `hcl:"pipeline,optional"`
	EnvironmentVars map[string]string `hcl:"environment_vars,optional"`
}

// --- Solid manifest schemas ---

// Lifecycle defines the mapping from a solid's compute event to a
// registered Go handler function.
type Lifecycle struct {
	OnCompute string `hcl:"on_compute"`
}

// InputDefinition defines a single input of a solid.
type InputDefinition struct {
	Name        string     `hcl:"name,label"`
	Type        string     `hcl:"type"`
	Description string     `hcl:"description,optional"`
	Default     *cty.Value `hcl:"default,optional"`
}

// OutputDefinition defines a single output value produced by a solid.
type OutputDefinition struct {
	Name        string `hcl:"name,label"`
	Type        string `hcl:"type"`
	Description string `hcl:"description,optional"`
}

// SolidDefinition represents the HCL manifest for a `solid` type.
type SolidDefinition struct {
	Type        string              `hcl:"type,label"`
	Description string              `hcl:"description,optional"`
	Lifecycle   *Lifecycle          `hcl:"lifecycle,block"`
	Inputs      []*InputDefinition  `hcl:"input,block"`
	Outputs     []*OutputDefinition `hcl:"output,block"`
}

// --- Type manifest schemas ---

// TypeLifecycle maps a declared type's hooks to registered Go handlers.
type TypeLifecycle struct {
	Check        string `hcl:"check,optional"`
	Loader       string `hcl:"loader,optional"`
	Materializer string `hcl:"materializer,optional"`
}

// TypeDefinition represents the HCL manifest for a user-declared `type`.
// Base is a type expression (e.g. `number`, `list(string)`), kept
// unevaluated here because type keywords are not ordinary values.
type TypeDefinition struct {
	Name        string         `hcl:"name,label"`
	Description string         `hcl:"description,optional"`
	Base        hcl.Expression `hcl:"base,optional"`
	Lifecycle   *TypeLifecycle `hcl:"lifecycle,block"`
}
