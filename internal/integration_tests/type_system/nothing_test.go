package type_system_test

import (
	"context"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zkan/dagster/internal/registry"
	"github.com/zkan/dagster/internal/testutil"
)

const orderingManifests = `
	solid "prepare" {
		lifecycle { on_compute = "OnComputePrepare" }
		output "done" {
			type = "nothing"
		}
	}

	solid "finish" {
		lifecycle { on_compute = "OnComputeFinish" }
		input "ready" {
			type = "nothing"
		}
	}
`

func orderingModules(mu *sync.Mutex, order *[]string) []registry.Module {
	type emptyInput struct{}
	record := func(name string) {
		mu.Lock()
		*order = append(*order, name)
		mu.Unlock()
	}
	return []registry.Module{
		&testutil.SimpleModule{
			SolidName: "OnComputePrepare",
			Solid: &registry.RegisteredSolid{
				NewInput:  func() any { return new(emptyInput) },
				InputType: reflect.TypeOf(emptyInput{}),
				Fn: func(ctx context.Context, input *emptyInput) (any, error) {
					time.Sleep(10 * time.Millisecond)
					record("prepare")
					return nil, nil
				},
			},
		},
		&testutil.SimpleModule{
			SolidName: "OnComputeFinish",
			Solid: &registry.RegisteredSolid{
				NewInput:  func() any { return new(emptyInput) },
				InputType: reflect.TypeOf(emptyInput{}),
				Fn: func(ctx context.Context, input *emptyInput) (any, error) {
					record("finish")
					return nil, nil
				},
			},
		},
	}
}

// TestTypeSystem_NothingInputOrdersViaDependsOn verifies ordering-only inputs
// are satisfied by an explicit dependency and never receive a value.
func TestTypeSystem_NothingInputOrdersViaDependsOn(t *testing.T) {
	t.Parallel()

	files := map[string]string{
		"solids/manifests.hcl": orderingManifests,
		"pipeline/main.hcl": `
			step "prepare" "p" {}

			step "finish" "f" {
				depends_on = ["prepare.p"]
			}
		`,
	}

	var mu sync.Mutex
	var order []string
	result := testutil.RunIntegrationTest(t, files, orderingModules(&mu, &order)...)
	require.NoError(t, result.Err)

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []string{"prepare", "finish"}, order)
}

// TestTypeSystem_NothingInputRejectsValue verifies giving an argument to an
// ordering-only input fails the step.
func TestTypeSystem_NothingInputRejectsValue(t *testing.T) {
	t.Parallel()

	files := map[string]string{
		"solids/manifests.hcl": orderingManifests,
		"pipeline/main.hcl": `
			step "finish" "f" {
				arguments {
					ready = "now"
				}
			}
		`,
	}

	var mu sync.Mutex
	var order []string
	result := testutil.RunIntegrationTest(t, files, orderingModules(&mu, &order)...)
	require.Error(t, result.Err)
	assert.Contains(t, result.Err.Error(), `input "ready" is ordering-only ('nothing') and cannot be given a value`)
}

// TestTypeSystem_NothingOutputCannotBeReferenced verifies a reference to an
// ordering-only output is rejected when the graph is built.
func TestTypeSystem_NothingOutputCannotBeReferenced(t *testing.T) {
	t.Parallel()

	manifests := orderingManifests + `
		solid "consume" {
			lifecycle { on_compute = "OnComputeConsume" }
			input "value" {
				type = "string"
			}
		}
	`
	files := map[string]string{
		"solids/manifests.hcl": manifests,
		"pipeline/main.hcl": `
			step "prepare" "p" {}

			step "consume" "c" {
				arguments {
					value = step.prepare.p.output.done
				}
			}
		`,
	}

	type consumeInput struct {
		Value string `hcl:"value"`
	}
	consume := &testutil.SimpleModule{
		SolidName: "OnComputeConsume",
		Solid: &registry.RegisteredSolid{
			NewInput:  func() any { return new(consumeInput) },
			InputType: reflect.TypeOf(consumeInput{}),
			Fn: func(ctx context.Context, input *consumeInput) (any, error) {
				return nil, nil
			},
		},
	}

	var mu sync.Mutex
	var order []string
	modules := append(orderingModules(&mu, &order), consume)
	result := testutil.RunIntegrationTest(t, files, modules...)
	require.Error(t, result.Err)
	assert.Contains(t, result.Err.Error(), "carries no value")
}
