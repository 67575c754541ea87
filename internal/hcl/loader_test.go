package hcl

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func writeHCL(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_FullConfiguration(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	writeHCL(t, dir, "manifest.hcl", `
		type "row_count" {
			description = "A non-negative row count."
			base        = number

			lifecycle {
				check = "CheckRowCount"
			}
		}

		solid "load_rows" {
			description = "Loads rows from somewhere."

			lifecycle {
				on_compute = "OnComputeLoadRows"
			}

			input "limit" {
				type    = "number"
				default = 100
			}

			output "count" {
				type = "row_count"
			}
		}
	`)
	writeHCL(t, dir, "pipeline.hcl", `
		step "load_rows" "main" {
			arguments {
				limit = 10
			}
			materialize {
				count = "/tmp/count.json"
			}
		}

		schedule "nightly_load" {
			cron_schedule = "0 2 * * *"
			pipeline      = "pipeline.hcl"

			environment_vars = {
				ENV = "prod"
			}
		}
	`)

	model, err := NewLoader().Load(context.Background(), dir)
	require.NoError(t, err)

	// Type manifest.
	rowCount, ok := model.Types["row_count"]
	require.True(t, ok)
	assert.True(t, rowCount.Base.Equals(cty.Number))
	require.NotNil(t, rowCount.Lifecycle)
	assert.Equal(t, "CheckRowCount", rowCount.Lifecycle.Check)
	assert.Empty(t, rowCount.Lifecycle.Loader)

	// Solid manifest.
	loadRows, ok := model.Solids["load_rows"]
	require.True(t, ok)
	require.NotNil(t, loadRows.Lifecycle)
	assert.Equal(t, "OnComputeLoadRows", loadRows.Lifecycle.OnCompute)

	limit, ok := loadRows.Inputs["limit"]
	require.True(t, ok)
	assert.Equal(t, "number", limit.TypeName)
	assert.True(t, limit.Optional)
	require.NotNil(t, limit.Default)

	count, ok := loadRows.Outputs["count"]
	require.True(t, ok)
	assert.Equal(t, "row_count", count.TypeName)

	// Pipeline.
	require.Len(t, model.Pipeline.Steps, 1)
	step := model.Pipeline.Steps[0]
	assert.Equal(t, "load_rows", step.SolidType)
	assert.Equal(t, "main", step.Name)
	assert.Contains(t, step.Arguments, "limit")
	assert.Contains(t, step.Materialize, "count")

	// Schedules.
	require.Len(t, model.Schedules, 1)
	sched := model.Schedules[0]
	assert.Equal(t, "nightly_load", sched.Name)
	assert.Equal(t, "0 2 * * *", sched.CronSchedule)
	assert.Equal(t, "pipeline.hcl", sched.Pipeline)
	assert.Equal(t, map[string]string{"ENV": "prod"}, sched.EnvironmentVars)
}

func TestLoad_DuplicateTypeFails(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	writeHCL(t, dir, "a.hcl", `
		type "csv" { base = string }
	`)
	writeHCL(t, dir, "b.hcl", `
		type "csv" { base = string }
	`)

	_, err := NewLoader().Load(context.Background(), dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `type "csv" declared more than once`)
}

func TestLoad_DuplicateSolidFails(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	writeHCL(t, dir, "a.hcl", `
		solid "emit" {
			lifecycle { on_compute = "OnComputeEmit" }
		}
		solid "emit" {
			lifecycle { on_compute = "OnComputeEmit" }
		}
	`)

	_, err := NewLoader().Load(context.Background(), dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `solid "emit" declared more than once`)
}

func TestLoad_UnknownInputTypeFails(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	writeHCL(t, dir, "a.hcl", `
		solid "emit" {
			lifecycle { on_compute = "OnComputeEmit" }
			input "text" {
				type = "mystery"
			}
		}
	`)

	_, err := NewLoader().Load(context.Background(), dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `references undeclared type "mystery"`)
}

func TestLoad_NothingInputWithDefaultFails(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	writeHCL(t, dir, "a.hcl", `
		solid "waiter" {
			lifecycle { on_compute = "OnComputeWait" }
			input "start" {
				type    = "nothing"
				default = "x"
			}
		}
	`)

	_, err := NewLoader().Load(context.Background(), dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot declare a default")
}

func TestLoad_MissingPathIsIgnored(t *testing.T) {
	t.Parallel()

	model, err := NewLoader().Load(context.Background(), filepath.Join(t.TempDir(), "does-not-exist"))
	require.NoError(t, err)
	assert.Empty(t, model.Solids)
	assert.Empty(t, model.Pipeline.Steps)
}

func TestLoad_InvalidHCLFails(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeHCL(t, dir, "broken.hcl", `solid "emit" {`)

	_, err := NewLoader().Load(context.Background(), dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse HCL file")
}
