// Package config defines the format-agnostic model of everything the user
// declares: solid manifests, type manifests, and the pipeline itself. The
// HCL loader translates parsed files into this model so the rest of the
// engine never touches a parser-specific structure.
package config

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
)

// Model is the unified representation of the entire loaded configuration.
type Model struct {
	Solids    map[string]*SolidDefinition
	Types     map[string]*TypeDefinition
	Pipeline  *Pipeline
	Schedules []*ScheduleDefinition
}

// ScheduleDefinition declares a cron trigger for a pipeline.
type ScheduleDefinition struct {
	Name            string
	CronSchedule    string
	Pipeline        string
	EnvironmentVars map[string]string
}

// Pipeline holds the runnable step instances declared by the user.
type Pipeline struct {
	Steps []*Step
}

// Step is one instance of a solid within a pipeline.
type Step struct {
	SolidType string
	Name      string
	// Arguments maps input names to their unevaluated expressions. Evaluation
	// is deferred until upstream outputs are available.
	Arguments map[string]hcl.Expression
	// Materialize maps output names to materialization spec expressions.
	Materialize map[string]hcl.Expression
	// DependsOn lists ordering-only dependencies ("solid_type.instance_name").
	DependsOn []string
}

// --- Manifest models ---

// SolidDefinition is the manifest of one solid type.
type SolidDefinition struct {
	Type        string
	Description string
	Lifecycle   *Lifecycle
	Inputs      map[string]*InputDefinition
	Outputs     map[string]*OutputDefinition
}

// Lifecycle maps a solid's compute event to a registered Go handler name.
type Lifecycle struct {
	OnCompute string
}

// InputDefinition declares one input of a solid.
type InputDefinition struct {
	Name        string
	TypeName    string
	Description string
	// Default, when present, makes the input optional. The raw default is a
	// config value: it is hydrated through the declared type's loader before
	// reaching the handler.
	Default  *cty.Value
	Optional bool
}

// OutputDefinition declares one output of a solid.
type OutputDefinition struct {
	Name        string
	TypeName    string
	Description string
}

// TypeDefinition is the manifest of one user-declared type.
type TypeDefinition struct {
	Name        string
	Description string
	// Base is the declared config/value schema. cty.NilType when omitted.
	Base      cty.Type
	Lifecycle *TypeLifecycle
}

// TypeLifecycle maps a type's hooks to registered Go handler names. All
// three are optional.
type TypeLifecycle struct {
	Check        string
	Loader       string
	Materializer string
}
