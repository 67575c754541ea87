package scheduler

import (
	"context"
	"fmt"

	"github.com/zkan/dagster/internal/ctxlog"
)

// LocalScheduler drives schedules through status transitions in storage
// only. It installs no external artifacts, which makes it suitable for
// single-process deployments and tests.
type LocalScheduler struct{}

// NewLocalScheduler returns a scheduler backed purely by storage state.
func NewLocalScheduler() *LocalScheduler { return &LocalScheduler{} }

// StartSchedule marks a schedule running. Starting an already running
// schedule is an error.
func (l *LocalScheduler) StartSchedule(ctx context.Context, storage Storage, name string) (Schedule, error) {
	sched, found, err := storage.Get(name)
	if err != nil {
		return Schedule{}, err
	}
	if !found {
		return Schedule{}, &ErrScheduleNotFound{Name: name}
	}
	if sched.Status == StatusRunning {
		return Schedule{}, fmt.Errorf("schedule '%s' is already running", name)
	}

	started := sched.WithStatus(StatusRunning)
	if err := storage.Update(started); err != nil {
		return Schedule{}, err
	}
	ctxlog.FromContext(ctx).Info("▶️ Started schedule", "schedule", name, "cron", started.CronSchedule())
	return started, nil
}

// StopSchedule marks a schedule stopped. Stopping an already stopped
// schedule is an error.
func (l *LocalScheduler) StopSchedule(ctx context.Context, storage Storage, name string) (Schedule, error) {
	sched, found, err := storage.Get(name)
	if err != nil {
		return Schedule{}, err
	}
	if !found {
		return Schedule{}, &ErrScheduleNotFound{Name: name}
	}
	if sched.Status == StatusStopped {
		return Schedule{}, fmt.Errorf("schedule '%s' is already stopped", name)
	}

	stopped := sched.WithStatus(StatusStopped)
	if err := storage.Update(stopped); err != nil {
		return Schedule{}, err
	}
	ctxlog.FromContext(ctx).Info("⏸️ Stopped schedule", "schedule", name)
	return stopped, nil
}

// EndSchedule retires a schedule and deletes it from storage.
func (l *LocalScheduler) EndSchedule(ctx context.Context, storage Storage, name string) (Schedule, error) {
	sched, found, err := storage.Get(name)
	if err != nil {
		return Schedule{}, err
	}
	if !found {
		return Schedule{}, &ErrScheduleNotFound{Name: name}
	}

	ended := sched.WithStatus(StatusEnded)
	if err := storage.Delete(name); err != nil {
		return Schedule{}, err
	}
	ctxlog.FromContext(ctx).Info("🏁 Ended schedule", "schedule", name)
	return ended, nil
}
