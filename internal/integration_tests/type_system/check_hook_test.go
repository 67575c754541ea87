package type_system_test

import (
	"context"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"github.com/zkan/dagster/internal/dagtype"
	"github.com/zkan/dagster/internal/registry"
	"github.com/zkan/dagster/internal/testutil"
)

// rowCountModule declares the handlers backing the row_count fixtures: a
// check that rejects negative counts and a loader that passes config through.
func rowCountModule(producedValue int64) *testutil.SimpleModule {
	type loadInput struct {
		Limit int `hcl:"limit"`
	}
	return &testutil.SimpleModule{
		SolidName: "OnComputeLoad",
		Solid: &registry.RegisteredSolid{
			NewInput:  func() any { return new(loadInput) },
			InputType: reflect.TypeOf(loadInput{}),
			Fn: func(ctx context.Context, input *loadInput) (any, error) {
				return cty.NumberIntVal(producedValue), nil
			},
		},
		Checks: map[string]dagtype.CheckFn{
			"CheckRowCount": func(ctx context.Context, v cty.Value) dagtype.CheckResult {
				if v.Type() != cty.Number {
					return dagtype.Failure("row count must be a number")
				}
				if v.AsBigFloat().Sign() < 0 {
					return dagtype.Failure("row count cannot be negative",
						dagtype.MetadataEntry{Label: "observed", Value: v})
				}
				return dagtype.Success(dagtype.MetadataEntry{Label: "observed", Value: v})
			},
		},
	}
}

const rowCountManifests = `
	type "row_count" {
		description = "A non-negative count of rows."
		base        = number

		lifecycle {
			check = "CheckRowCount"
		}
	}

	solid "load" {
		lifecycle { on_compute = "OnComputeLoad" }
		input "limit" {
			type    = "number"
			default = 100
		}
		output "rows" {
			type = "row_count"
		}
	}
`

// TestTypeSystem_OutputCheckPasses verifies a passing check lets the run
// complete and surfaces its metadata in the logs.
func TestTypeSystem_OutputCheckPasses(t *testing.T) {
	t.Parallel()

	files := map[string]string{
		"solids/manifests.hcl": rowCountManifests,
		"pipeline/main.hcl": `
			step "load" "ok" {
				arguments {}
			}
		`,
	}

	result := testutil.RunIntegrationTest(t, files, rowCountModule(42))
	require.NoError(t, result.Err)
	testutil.AssertStepRan(t, result, "load", "ok")
	assert.Contains(t, result.LogOutput, "meta.observed")
}

// TestTypeSystem_OutputCheckFailureFailsRun verifies a failing output check
// fails the producing step with the check's reason.
func TestTypeSystem_OutputCheckFailureFailsRun(t *testing.T) {
	t.Parallel()

	files := map[string]string{
		"solids/manifests.hcl": rowCountManifests,
		"pipeline/main.hcl": `
			step "load" "bad" {
				arguments {}
			}
		`,
	}

	result := testutil.RunIntegrationTest(t, files, rowCountModule(-5))
	require.Error(t, result.Err)
	assert.Contains(t, result.Err.Error(), `type check failed for output "rows"`)
	assert.Contains(t, result.Err.Error(), "row count cannot be negative")
}

// TestTypeSystem_InputCheckRunsForUserTypes verifies a declared type on an
// input validates the argument value before the handler sees it.
func TestTypeSystem_InputCheckFailureFailsRun(t *testing.T) {
	t.Parallel()

	manifests := `
		type "row_count" {
			base = number
			lifecycle { check = "CheckRowCount" }
		}

		solid "report" {
			lifecycle { on_compute = "OnComputeReport" }
			input "rows" {
				type = "row_count"
			}
		}
	`
	files := map[string]string{
		"solids/manifests.hcl": manifests,
		"pipeline/main.hcl": `
			step "report" "r" {
				arguments {
					rows = -3
				}
			}
		`,
	}

	type reportInput struct {
		Rows int `hcl:"rows"`
	}
	mod := &testutil.SimpleModule{
		SolidName: "OnComputeReport",
		Solid: &registry.RegisteredSolid{
			NewInput:  func() any { return new(reportInput) },
			InputType: reflect.TypeOf(reportInput{}),
			Fn: func(ctx context.Context, input *reportInput) (any, error) {
				t.Error("handler must not run when the input check fails")
				return nil, nil
			},
		},
		Checks: map[string]dagtype.CheckFn{
			"CheckRowCount": func(ctx context.Context, v cty.Value) dagtype.CheckResult {
				if v.AsBigFloat().Sign() < 0 {
					return dagtype.Failure("row count cannot be negative")
				}
				return dagtype.Success()
			},
		},
	}

	result := testutil.RunIntegrationTest(t, files, mod)
	require.Error(t, result.Err)
	assert.Contains(t, result.Err.Error(), `type check failed for input "rows"`)
}
