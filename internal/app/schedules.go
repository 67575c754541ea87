package app

import (
	"context"
	"fmt"

	"github.com/zkan/dagster/internal/ctxlog"
	"github.com/zkan/dagster/internal/scheduler"
	"github.com/zkan/dagster/internal/schedulestore"
)

// openScheduleStorage picks the schedule backend: SQLite when a database
// path is configured, in-memory otherwise.
func openScheduleStorage(appConfig *Config) (scheduler.Storage, func() error, error) {
	if appConfig.SchedulesDB == "" {
		return schedulestore.NewInMemory(), func() error { return nil }, nil
	}
	store, err := schedulestore.NewSQLite(appConfig.SchedulesDB)
	if err != nil {
		return nil, nil, err
	}
	return store, store.Close, nil
}

// scheduleHandle builds the reconciliation handle from the schedule blocks
// in the loaded configuration.
func (a *App) scheduleHandle() (*scheduler.Handle, error) {
	defs := make([]scheduler.Definition, 0, len(a.config.Schedules))
	for _, s := range a.config.Schedules {
		defs = append(defs, scheduler.Definition{
			Name:            s.Name,
			CronSchedule:    s.CronSchedule,
			PipelinePath:    s.Pipeline,
			EnvironmentVars: s.EnvironmentVars,
		})
	}
	return scheduler.NewHandle(defs)
}

// SchedulesUp reconciles declared schedules against storage. New schedules
// are added stopped, changed ones are updated (and restarted when running),
// and schedules whose declaration is gone are ended.
func (a *App) SchedulesUp(ctx context.Context, appConfig *Config) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)

	handle, err := a.scheduleHandle()
	if err != nil {
		return err
	}
	storage, closeStorage, err := openScheduleStorage(appConfig)
	if err != nil {
		return err
	}
	defer closeStorage()

	changes, err := handle.ChangeSet(storage)
	if err != nil {
		return err
	}
	for _, change := range changes {
		a.logger.Info("Schedule change detected.", "kind", string(change.Kind), "schedule", change.Name)
	}

	if err := handle.Up(ctx, scheduler.NewLocalScheduler(), storage); err != nil {
		return fmt.Errorf("reconciling schedules: %w", err)
	}
	return a.printSchedules(storage)
}

// ScheduleStart resumes the named schedule.
func (a *App) ScheduleStart(ctx context.Context, appConfig *Config, name string) error {
	return a.withScheduleStorage(ctx, appConfig, func(ctx context.Context, storage scheduler.Storage) error {
		_, err := scheduler.NewLocalScheduler().StartSchedule(ctx, storage, name)
		return err
	})
}

// ScheduleStop pauses the named schedule without deleting it.
func (a *App) ScheduleStop(ctx context.Context, appConfig *Config, name string) error {
	return a.withScheduleStorage(ctx, appConfig, func(ctx context.Context, storage scheduler.Storage) error {
		_, err := scheduler.NewLocalScheduler().StopSchedule(ctx, storage, name)
		return err
	})
}

// SchedulesList prints all stored schedules with their status.
func (a *App) SchedulesList(ctx context.Context, appConfig *Config) error {
	return a.withScheduleStorage(ctx, appConfig, func(ctx context.Context, storage scheduler.Storage) error {
		return a.printSchedules(storage)
	})
}

func (a *App) withScheduleStorage(ctx context.Context, appConfig *Config, fn func(context.Context, scheduler.Storage) error) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	storage, closeStorage, err := openScheduleStorage(appConfig)
	if err != nil {
		return err
	}
	defer closeStorage()
	return fn(ctx, storage)
}

func (a *App) printSchedules(storage scheduler.Storage) error {
	all, err := storage.All()
	if err != nil {
		return err
	}
	if len(all) == 0 {
		fmt.Fprintln(a.outW, "No schedules stored.")
		return nil
	}
	for _, sched := range all {
		fmt.Fprintf(a.outW, "%s\t%s\t%s\n", sched.Name(), sched.Status, sched.CronSchedule())
	}
	return nil
}
