package error_handling_test

import (
	"context"
	"errors"
	"reflect"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zkan/dagster/internal/registry"
	"github.com/zkan/dagster/internal/testutil"
)

// TestErrorHandling_FailingStepSkipsDependents verifies that when a step
// fails, every transitive dependent is skipped and the run reports only the
// root cause.
func TestErrorHandling_FailingStepSkipsDependents(t *testing.T) {
	t.Parallel()

	files := map[string]string{
		"solids/manifests.hcl": `
			solid "fetch" {
				lifecycle { on_compute = "OnComputeFetch" }
				output "value" {
					type = "string"
				}
			}

			solid "store" {
				lifecycle { on_compute = "OnComputeStore" }
				input "value" {
					type = "string"
				}
				output "done" {
					type = "nothing"
				}
			}

			solid "notify" {
				lifecycle { on_compute = "OnComputeNotify" }
			}
		`,
		"pipeline/main.hcl": `
			step "fetch" "source" {}

			step "store" "sink" {
				arguments {
					value = step.fetch.source.output.value
				}
			}

			step "notify" "team" {
				depends_on = ["store.sink"]
			}
		`,
	}

	type emptyInput struct{}
	type storeInput struct {
		Value string `hcl:"value"`
	}
	var downstreamRuns atomic.Int32

	fetch := &testutil.SimpleModule{
		SolidName: "OnComputeFetch",
		Solid: &registry.RegisteredSolid{
			NewInput:  func() any { return new(emptyInput) },
			InputType: reflect.TypeOf(emptyInput{}),
			Fn: func(ctx context.Context, input *emptyInput) (any, error) {
				return nil, errors.New("upstream service unavailable")
			},
		},
	}
	store := &testutil.SimpleModule{
		SolidName: "OnComputeStore",
		Solid: &registry.RegisteredSolid{
			NewInput:  func() any { return new(storeInput) },
			InputType: reflect.TypeOf(storeInput{}),
			Fn: func(ctx context.Context, input *storeInput) (any, error) {
				downstreamRuns.Add(1)
				return nil, nil
			},
		},
	}
	notify := &testutil.SimpleModule{
		SolidName: "OnComputeNotify",
		Solid: &registry.RegisteredSolid{
			NewInput:  func() any { return new(emptyInput) },
			InputType: reflect.TypeOf(emptyInput{}),
			Fn: func(ctx context.Context, input *emptyInput) (any, error) {
				downstreamRuns.Add(1)
				return nil, nil
			},
		},
	}

	result := testutil.RunIntegrationTest(t, files, fetch, store, notify)
	require.Error(t, result.Err)

	assert.Contains(t, result.Err.Error(), "execution failed for step.fetch.source")
	assert.Contains(t, result.Err.Error(), "upstream service unavailable")
	assert.NotContains(t, result.Err.Error(), "skipped due to upstream failure")

	testutil.AssertStepSkipped(t, result, "store", "sink")
	testutil.AssertStepSkipped(t, result, "notify", "team")
	assert.Equal(t, int32(0), downstreamRuns.Load())
}

// TestErrorHandling_IndependentBranchStillRuns verifies a failure in one
// branch does not stop unrelated steps.
func TestErrorHandling_IndependentBranchStillRuns(t *testing.T) {
	t.Parallel()

	files := map[string]string{
		"solids/manifests.hcl": `
			solid "fail" {
				lifecycle { on_compute = "OnComputeFail" }
			}

			solid "steady" {
				lifecycle { on_compute = "OnComputeSteady" }
			}
		`,
		"pipeline/main.hcl": `
			step "fail" "f" {}

			step "steady" "s" {}
		`,
	}

	type emptyInput struct{}
	var steadyRan atomic.Bool
	steadyDone := make(chan struct{})

	// The failure is held back until the other branch has finished so the
	// run-wide cancellation cannot race it.
	fail := &testutil.SimpleModule{
		SolidName: "OnComputeFail",
		Solid: &registry.RegisteredSolid{
			NewInput:  func() any { return new(emptyInput) },
			InputType: reflect.TypeOf(emptyInput{}),
			Fn: func(ctx context.Context, input *emptyInput) (any, error) {
				<-steadyDone
				return nil, errors.New("deliberate failure")
			},
		},
	}
	steady := &testutil.SimpleModule{
		SolidName: "OnComputeSteady",
		Solid: &registry.RegisteredSolid{
			NewInput:  func() any { return new(emptyInput) },
			InputType: reflect.TypeOf(emptyInput{}),
			Fn: func(ctx context.Context, input *emptyInput) (any, error) {
				steadyRan.Store(true)
				close(steadyDone)
				return nil, nil
			},
		},
	}

	result := testutil.RunIntegrationTest(t, files, fail, steady)
	require.Error(t, result.Err)
	assert.Contains(t, result.Err.Error(), "deliberate failure")
	assert.True(t, steadyRan.Load())
	testutil.AssertStepRan(t, result, "steady", "s")
}
