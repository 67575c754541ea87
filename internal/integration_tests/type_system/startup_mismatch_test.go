package type_system_test

import (
	"context"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zkan/dagster/internal/registry"
	"github.com/zkan/dagster/internal/testutil"
)

// TestTypeSystem_ManifestGoMismatchFailsStartup verifies a manifest input
// whose declared type disagrees with the Go struct field is caught before
// anything runs.
func TestTypeSystem_ManifestGoMismatchFailsStartup(t *testing.T) {
	t.Parallel()

	files := map[string]string{
		"solids/manifests.hcl": `
			solid "threshold" {
				lifecycle { on_compute = "OnComputeThreshold" }
				input "limit" {
					type = "number"
				}
			}
		`,
		"pipeline/main.hcl": `
			step "threshold" "t" {
				arguments {
					limit = 10
				}
			}
		`,
	}

	type thresholdInput struct {
		Limit string `hcl:"limit"`
	}
	module := &testutil.SimpleModule{
		SolidName: "OnComputeThreshold",
		Solid: &registry.RegisteredSolid{
			NewInput:  func() any { return new(thresholdInput) },
			InputType: reflect.TypeOf(thresholdInput{}),
			Fn: func(ctx context.Context, input *thresholdInput) (any, error) {
				return nil, nil
			},
		},
	}

	result := testutil.RunIntegrationTest(t, files, module)
	require.Error(t, result.Err)
	assert.Contains(t, result.Err.Error(), "application startup panicked")
	assert.Contains(t, result.Err.Error(), "type mismatch")
}

// TestTypeSystem_UndeclaredManifestInputFailsStartup verifies a Go struct
// field with no matching manifest input is caught at startup.
func TestTypeSystem_UndeclaredManifestInputFailsStartup(t *testing.T) {
	t.Parallel()

	files := map[string]string{
		"solids/manifests.hcl": `
			solid "threshold" {
				lifecycle { on_compute = "OnComputeThreshold" }
			}
		`,
		"pipeline/main.hcl": `
			step "threshold" "t" {}
		`,
	}

	type thresholdInput struct {
		Limit int `hcl:"limit"`
	}
	module := &testutil.SimpleModule{
		SolidName: "OnComputeThreshold",
		Solid: &registry.RegisteredSolid{
			NewInput:  func() any { return new(thresholdInput) },
			InputType: reflect.TypeOf(thresholdInput{}),
			Fn: func(ctx context.Context, input *thresholdInput) (any, error) {
				return nil, nil
			},
		},
	}

	result := testutil.RunIntegrationTest(t, files, module)
	require.Error(t, result.Err)
	assert.Contains(t, result.Err.Error(), "application startup panicked")
	assert.Contains(t, result.Err.Error(), "not declared in manifest")
}
