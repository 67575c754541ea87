package schedulestore_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zkan/dagster/internal/scheduler"
	"github.com/zkan/dagster/internal/schedulestore"
)

// storeFactories lets every contract test run against both backends.
func storeFactories(t *testing.T) map[string]func(t *testing.T) scheduler.Storage {
	return map[string]func(t *testing.T) scheduler.Storage{
		"inmemory": func(t *testing.T) scheduler.Storage {
			return schedulestore.NewInMemory()
		},
		"sqlite": func(t *testing.T) scheduler.Storage {
			store, err := schedulestore.NewSQLite(filepath.Join(t.TempDir(), "schedules.db"))
			require.NoError(t, err)
			t.Cleanup(func() { store.Close() })
			return store
		},
	}
}

func sampleSchedule(name string) scheduler.Schedule {
	return scheduler.Schedule{
		Definition: scheduler.Definition{
			Name:         name,
			CronSchedule: "0 * * * *",
			PipelinePath: "pipelines/main.hcl",
			EnvironmentVars: map[string]string{
				"ENV": "test",
			},
		},
		Status: scheduler.StatusStopped,
	}
}

func TestStorage_AddGetRoundTrip(t *testing.T) {
	for backend, newStore := range storeFactories(t) {
		t.Run(backend, func(t *testing.T) {
			storage := newStore(t)
			require.NoError(t, storage.Add(sampleSchedule("hourly")))

			got, found, err := storage.Get("hourly")
			require.NoError(t, err)
			require.True(t, found)
			assert.Equal(t, "hourly", got.Name())
			assert.Equal(t, "0 * * * *", got.CronSchedule())
			assert.Equal(t, "pipelines/main.hcl", got.Definition.PipelinePath)
			assert.Equal(t, map[string]string{"ENV": "test"}, got.Definition.EnvironmentVars)
			assert.Equal(t, scheduler.StatusStopped, got.Status)
		})
	}
}

func TestStorage_GetMissing(t *testing.T) {
	for backend, newStore := range storeFactories(t) {
		t.Run(backend, func(t *testing.T) {
			storage := newStore(t)
			_, found, err := storage.Get("missing")
			require.NoError(t, err)
			assert.False(t, found)
		})
	}
}

func TestStorage_AddDuplicateFails(t *testing.T) {
	for backend, newStore := range storeFactories(t) {
		t.Run(backend, func(t *testing.T) {
			storage := newStore(t)
			require.NoError(t, storage.Add(sampleSchedule("hourly")))
			require.Error(t, storage.Add(sampleSchedule("hourly")))
		})
	}
}

func TestStorage_Update(t *testing.T) {
	for backend, newStore := range storeFactories(t) {
		t.Run(backend, func(t *testing.T) {
			storage := newStore(t)
			require.NoError(t, storage.Add(sampleSchedule("hourly")))

			updated := sampleSchedule("hourly").WithStatus(scheduler.StatusRunning)
			require.NoError(t, storage.Update(updated))

			got, found, err := storage.Get("hourly")
			require.NoError(t, err)
			require.True(t, found)
			assert.Equal(t, scheduler.StatusRunning, got.Status)
		})
	}
}

func TestStorage_UpdateMissingFails(t *testing.T) {
	for backend, newStore := range storeFactories(t) {
		t.Run(backend, func(t *testing.T) {
			storage := newStore(t)
			err := storage.Update(sampleSchedule("ghost"))
			require.Error(t, err)

			var notFound *scheduler.ErrScheduleNotFound
			assert.True(t, errors.As(err, &notFound))
		})
	}
}

func TestStorage_DeleteAndAll(t *testing.T) {
	for backend, newStore := range storeFactories(t) {
		t.Run(backend, func(t *testing.T) {
			storage := newStore(t)
			require.NoError(t, storage.Add(sampleSchedule("beta")))
			require.NoError(t, storage.Add(sampleSchedule("alpha")))

			all, err := storage.All()
			require.NoError(t, err)
			require.Len(t, all, 2)
			assert.Equal(t, "alpha", all[0].Name())
			assert.Equal(t, "beta", all[1].Name())

			require.NoError(t, storage.Delete("alpha"))
			all, err = storage.All()
			require.NoError(t, err)
			require.Len(t, all, 1)
			assert.Equal(t, "beta", all[0].Name())

			require.Error(t, storage.Delete("alpha"))
		})
	}
}

func TestSQLite_PersistsAcrossReopen(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "schedules.db")

	store, err := schedulestore.NewSQLite(path)
	require.NoError(t, err)
	require.NoError(t, store.Add(sampleSchedule("hourly").WithStatus(scheduler.StatusRunning)))
	require.NoError(t, store.Close())

	reopened, err := schedulestore.NewSQLite(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, found, err := reopened.Get("hourly")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, scheduler.StatusRunning, got.Status)
}
