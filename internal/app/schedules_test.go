package app_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zkan/dagster/internal/app"
	"github.com/zkan/dagster/internal/scheduler"
	"github.com/zkan/dagster/internal/schedulestore"
	"github.com/zkan/dagster/internal/testutil"
)

// TestSchedulesUp_PersistsDeclaredSchedules verifies `schedule` blocks in the
// pipeline configuration end up in the schedule database as stopped
// schedules.
func TestSchedulesUp_PersistsDeclaredSchedules(t *testing.T) {
	t.Parallel()

	files := map[string]string{
		"pipeline/main.hcl": `
			schedule "nightly_report" {
				cron_schedule = "0 2 * * *"
			}

			schedule "hourly_sync" {
				cron_schedule = "0 * * * *"
				environment_vars = {
					REGION = "eu-west-1"
				}
			}
		`,
	}

	result := testutil.RunIntegrationTest(t, files, &testutil.NoOpModule{})
	require.NoError(t, result.Err)
	require.NotNil(t, result.App)

	dbPath := filepath.Join(t.TempDir(), "schedules.db")
	appConfig := &app.Config{PipelinePath: "unused", SchedulesDB: dbPath}
	require.NoError(t, result.App.SchedulesUp(context.Background(), appConfig))

	store, err := schedulestore.NewSQLite(dbPath)
	require.NoError(t, err)
	defer store.Close()

	all, err := store.All()
	require.NoError(t, err)
	require.Len(t, all, 2)

	assert.Equal(t, "hourly_sync", all[0].Name())
	assert.Equal(t, scheduler.StatusStopped, all[0].Status)
	assert.Equal(t, "eu-west-1", all[0].Definition.EnvironmentVars["REGION"])
	assert.Equal(t, "nightly_report", all[1].Name())
	assert.Equal(t, "0 2 * * *", all[1].Definition.CronSchedule)
}

// TestSchedulesUp_EndsRemovedSchedules verifies a stored schedule with no
// matching declaration is deleted by reconciliation.
func TestSchedulesUp_EndsRemovedSchedules(t *testing.T) {
	t.Parallel()

	dbPath := filepath.Join(t.TempDir(), "schedules.db")
	store, err := schedulestore.NewSQLite(dbPath)
	require.NoError(t, err)
	require.NoError(t, store.Add(scheduler.Schedule{
		Definition: scheduler.Definition{Name: "stale", CronSchedule: "* * * * *"},
		Status:     scheduler.StatusStopped,
	}))
	require.NoError(t, store.Close())

	files := map[string]string{
		"pipeline/main.hcl": `
			schedule "kept" {
				cron_schedule = "0 0 * * *"
			}
		`,
	}

	result := testutil.RunIntegrationTest(t, files, &testutil.NoOpModule{})
	require.NoError(t, result.Err)

	appConfig := &app.Config{PipelinePath: "unused", SchedulesDB: dbPath}
	require.NoError(t, result.App.SchedulesUp(context.Background(), appConfig))

	reopened, err := schedulestore.NewSQLite(dbPath)
	require.NoError(t, err)
	defer reopened.Close()

	all, err := reopened.All()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "kept", all[0].Name())
}
